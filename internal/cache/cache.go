package cache

// Cache is a bounded key/value store. Implementations must be safe for
// concurrent use; the fetch path shares one instance across all requests.
type Cache[T any] interface {
	// Get retrieves a value from the cache
	Get(key string) (T, bool)

	// Set stores a value in the cache
	Set(key string, data T)

	// Delete removes a key from the cache
	Delete(key string)

	// Size returns the current number of items in the cache
	Size() int
}
