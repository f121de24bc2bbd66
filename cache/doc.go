// Package cache memoizes resolved credentials in process memory.
//
// It provides a Cache interface with a memory implementation, a Keyer that
// derives opaque keys from service URLs, and a TTL Policy. Caching is off
// unless a Policy with a positive DefaultTTL is supplied.
package cache
