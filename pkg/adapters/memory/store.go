// Package memory implements the core store contract in process memory.
// Data is lost when the process exits. It is the reference adapter used
// by tests and the default backend of the factory.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/aretw0/marl/pkg/core"
)

// Store keeps every collection as an insertion-ordered slice of documents.
// Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	data   map[string][]core.Document
	closed bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{data: make(map[string][]core.Document)}
}

// Collection returns a handle scoped to one named collection.
func (s *Store) Collection(name string) core.Collection {
	return &collection{store: s, name: name}
}

// Ping reports whether the store is still usable.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("%w: store is closed", core.ErrConnection)
	}
	return nil
}

// Close discards all data. Further calls on any collection handle fail
// with core.ErrConnection.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.data = nil
	return nil
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "memory"
}

type collection struct {
	store *Store
	name  string
}

func (c *collection) Name() string {
	return c.name
}

func (c *collection) Upsert(ctx context.Context, doc core.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if c.store.closed {
		return "", fmt.Errorf("%w: store is closed", core.ErrConnection)
	}

	stored := doc.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
		c.store.data[c.name] = append(c.store.data[c.name], stored)
		return stored.ID, nil
	}

	docs := c.store.data[c.name]
	for i := range docs {
		if docs[i].ID == stored.ID {
			docs[i] = stored
			return stored.ID, nil
		}
	}
	c.store.data[c.name] = append(docs, stored)
	return stored.ID, nil
}

func (c *collection) Find(ctx context.Context, filter core.Filter) ([]core.Document, error) {
	docs, err := c.snapshot(ctx, filter)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *collection) Count(ctx context.Context, filter core.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	if c.store.closed {
		return 0, fmt.Errorf("%w: store is closed", core.ErrConnection)
	}

	var n int64
	for _, doc := range c.store.data[c.name] {
		if filter.Matches(doc) {
			n++
		}
	}
	return n, nil
}

func (c *collection) DeleteByID(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if c.store.closed {
		return false, fmt.Errorf("%w: store is closed", core.ErrConnection)
	}

	docs := c.store.data[c.name]
	for i := range docs {
		if docs[i].ID == id {
			c.store.data[c.name] = append(docs[:i:i], docs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (c *collection) DeleteMatching(ctx context.Context, filter core.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if c.store.closed {
		return 0, fmt.Errorf("%w: store is closed", core.ErrConnection)
	}

	docs := c.store.data[c.name]
	kept := docs[:0:0]
	var removed int64
	for _, doc := range docs {
		if filter.Matches(doc) {
			removed++
			continue
		}
		kept = append(kept, doc)
	}
	c.store.data[c.name] = kept
	return removed, nil
}

func (c *collection) Reduce(ctx context.Context, filter core.Filter, job core.MapReduceJob) (map[string]int64, error) {
	docs, err := c.snapshot(ctx, filter)
	if err != nil {
		return nil, err
	}
	return core.RunMapReduce(ctx, docs, job)
}

// snapshot returns clones of every matching document so callers can never
// mutate stored state.
func (c *collection) snapshot(ctx context.Context, filter core.Filter) ([]core.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	if c.store.closed {
		return nil, fmt.Errorf("%w: store is closed", core.ErrConnection)
	}

	var out []core.Document
	for _, doc := range c.store.data[c.name] {
		if filter.Matches(doc) {
			out = append(out, doc.Clone())
		}
	}
	return out, nil
}
