package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Session owns the process-wide store connection. It is created once at
// process start and must be closed at shutdown; every repository sharing
// it performs fresh round trips, so the session itself is the only shared
// resource of this layer.
type Session struct {
	mu     sync.RWMutex
	store  Store
	logger *slog.Logger
	closed bool
}

// NewSession wraps an already connected store.
func NewSession(store Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{store: store, logger: logger}
}

// Collection returns a handle for one named collection.
// A closed session fails with ErrConnection.
func (s *Session) Collection(name string) (Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("%w: session is closed", ErrConnection)
	}
	return s.store.Collection(name), nil
}

// Ping verifies the underlying connection is usable.
func (s *Session) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("%w: session is closed", ErrConnection)
	}
	return s.store.Ping(ctx)
}

// Close releases the underlying connection. Closing twice is a no-op.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Debug("closing store session")
	return s.store.Close(ctx)
}
