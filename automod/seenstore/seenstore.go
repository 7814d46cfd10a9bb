// Automod component tracking which submissions have already been processed.
//
// Includes an interface and implementations using in-process memory, redis, and SQL (via gorm).
package seenstore

import (
	"context"
)

type SeenStore interface {
	Seen(ctx context.Context, id string) (bool, error)
	// marks a submission as processed; marking twice is not an error
	MarkSeen(ctx context.Context, id string) error
}
