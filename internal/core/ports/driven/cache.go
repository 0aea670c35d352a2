package driven

// Cache is a keyed cache with explicit invalidation. It replaces the
// hidden process-wide dictionaries of earlier designs with an
// injectable abstraction.
type Cache interface {
	// Put stores a value under key, replacing any existing entry.
	Put(key string, value any)

	// Get returns the value for key and whether it was present and
	// still live.
	Get(key string) (any, bool)

	// Delete removes a single entry.
	Delete(key string)

	// Clear removes every entry.
	Clear()
}
