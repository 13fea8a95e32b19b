// Package blob persists the serialized database snapshot across sessions.
//
// Every backend satisfies the same save/load contract; a Stack composes
// them into a priority-ordered list. Writes fan out to all backends so
// that any one of them can restore the database on the next start.
package blob

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNotFound is returned by Load when a backend holds no snapshot.
var ErrNotFound = errors.New("snapshot not found")

// Store is a durable home for the database snapshot bytes.
type Store interface {
	// Save replaces the stored snapshot.
	Save(ctx context.Context, data []byte) error

	// Load returns the stored snapshot, or ErrNotFound if the backend
	// has never been written to.
	Load(ctx context.Context) ([]byte, error)

	// Name identifies the backend in logs.
	Name() string
}

// Stack is a priority-ordered list of snapshot backends.
type Stack struct {
	stores []Store
}

// NewStack composes backends, highest priority first.
func NewStack(stores ...Store) *Stack {
	return &Stack{stores: stores}
}

// Stores returns the backends in priority order. Callers that need to
// validate restored bytes walk this list themselves.
func (s *Stack) Stores() []Store {
	return s.stores
}

// Save writes the snapshot to every backend. Individual failures are
// logged and swallowed; an error is returned only when every backend
// rejected the write.
func (s *Stack) Save(ctx context.Context, data []byte) error {
	if len(s.stores) == 0 {
		return fmt.Errorf("no snapshot backends configured")
	}
	failed := 0
	for _, store := range s.stores {
		if err := store.Save(ctx, data); err != nil {
			failed++
			slog.Warn("snapshot save failed", "backend", store.Name(), "error", err)
		}
	}
	if failed == len(s.stores) {
		return fmt.Errorf("all %d snapshot backends failed", failed)
	}
	return nil
}
