package credstore

import "context"

// Store defines durable key-value storage for credentials. Implementations
// must treat an absent key as a normal outcome, not an error: Get returns
// ("", nil) and Delete returns nil. Only infrastructure failures surface
// ErrUnavailable (wrapped with the underlying cause).
//
// No transactional guarantee across keys is assumed; callers that persist
// related keys order their writes and tolerate partial state on read.
type Store interface {
	// Get retrieves the value stored under key, or "" if the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, atomically per key.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
