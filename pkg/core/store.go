package core

import "context"

// Collection is a handle scoped to one named collection of documents.
// Adhering to this interface allows the core to be independent of the
// underlying storage mechanism (memory, Redis, MongoDB, ...).
//
// Implementations must be safe for concurrent use and must honor context
// cancellation on every call.
type Collection interface {
	// Name returns the collection name.
	Name() string

	// Upsert persists a document keyed by its identifier. It assigns an
	// identifier if the document has none and returns the effective one.
	// Upserting an unchanged document is a no-op on stored state.
	Upsert(ctx context.Context, doc Document) (string, error)

	// Find returns every document matching the filter, in store order.
	// Callers must not rely on that order.
	Find(ctx context.Context, filter Filter) ([]Document, error)

	// Count returns the number of documents matching the filter.
	Count(ctx context.Context, filter Filter) (int64, error)

	// DeleteByID removes the document with the given identifier.
	// Absence is a valid terminal state: it reports removed=false, no error.
	DeleteByID(ctx context.Context, id string) (bool, error)

	// DeleteMatching removes every document matching the filter and
	// returns the count removed. A nil filter removes everything.
	DeleteMatching(ctx context.Context, filter Filter) (int64, error)

	// Reduce executes a map/reduce job over the matching documents and
	// returns one scalar per group key. Zero matching documents yield
	// zero groups, not an error.
	Reduce(ctx context.Context, filter Filter, job MapReduceJob) (map[string]int64, error)
}

// Store is the gateway to a document store: a process-wide connection (or
// pool) handing out collection handles. It is created once at startup and
// must be closed at shutdown.
type Store interface {
	// Collection returns a handle scoped to one named collection.
	Collection(name string) Collection

	// Ping verifies the connection is usable.
	Ping(ctx context.Context) error

	// Close releases the connection. The store must not be used afterwards.
	Close(ctx context.Context) error
}
