// Package memory provides conversation history storage with pluggable
// backends. The default store keeps history in process memory; the
// badger subpackage persists it on disk.
package memory

// Store is the interface for history storage backends.
//
// Keys identify conversations (typically session IDs); values are opaque
// byte payloads. Implementations must be safe for concurrent use.
type Store interface {
	// Get retrieves data for a key, returns nil if not found
	Get(key string) ([]byte, error)

	// Set stores data for a key
	Set(key string, value []byte) error

	// Delete removes data for a key
	Delete(key string) error

	// Exists checks if a key exists
	Exists(key string) bool

	// List returns all stored keys
	List() []string
}
