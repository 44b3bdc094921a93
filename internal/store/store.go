package store

import "context"

// Well-known keys. Each holds one serialized record (or record array).
const (
	KeyTasks     = "tasks"
	KeyProfile   = "profile"
	KeyReminders = "reminders"
)

// Store is the persistent string-keyed blob store everything above sits on.
// Backends are interchangeable; repositories never see which one is wired.
type Store interface {
	// Get returns the value for key, or ErrNotFound if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}
