// Small helpers for fixtures and built-in values which are known to be valid.
package util

// Returns v, or panics with err. For package-level values and test fixtures only.
func MustResult[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
