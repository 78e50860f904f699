// Package cache provides the optional Redis cache for the most recent
// sensor reading.
//
// The /sensors/current endpoint answers from here when possible, sparing
// the time-series store a query per dashboard refresh. Entries carry a
// TTL so a silent collector ages out of the cache instead of serving
// stale air indefinitely; on a miss the API falls back to the store.
package cache
