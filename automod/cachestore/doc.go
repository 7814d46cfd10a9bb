// Automod component for caching arbitrary data (as JSON strings) with a fixed TTL and purging.
//
// Includes an interface and implementations using redis and in-process memory.
//
// The submission consumer caches author metadata (karma, account age, flags, recent links) here, so that repeat posters don't cost a round of platform API calls per submission.
package cachestore
