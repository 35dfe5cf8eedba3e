package cache

import "time"

// Cache defines the interface for cache backends. Values that must
// survive the Redis backend should be stored as JSON strings; the memory
// backend keeps any value as-is.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	SetWithTTL(key string, value interface{}, ttl time.Duration)
	Delete(key string)
}
