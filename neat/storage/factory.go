package storage

import (
	"fmt"

	"github.com/google/uuid"
)

// NewStore returns an uninitialized backend by name: "memory" (the default
// when kind is empty) or "sqlite", which stores its database at sqlitePath.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(sqlitePath), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

// CloseIfSupported closes store if its backend holds resources.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}

// NewRunID returns a fresh identifier for grouping the records of one run.
func NewRunID() string {
	return uuid.NewString()
}
