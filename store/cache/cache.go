// Package cache provides a small key/value cache seam used by the API
// layer to memoize rendered schedule responses. Production uses Redis;
// tests and single-node deployments use the in-memory implementation.
package cache

import "time"

// Cache stores serialized values under string keys with a TTL.
type Cache interface {
	Get(key string) (string, bool)
	Set(key string, value string, ttl time.Duration) error
	Delete(key string) error
}
