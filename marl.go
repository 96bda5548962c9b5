package marl

import (
	"context"
	"log/slog"

	"github.com/aretw0/marl/internal/platform"
	"github.com/aretw0/marl/pkg/aggregate"
	"github.com/aretw0/marl/pkg/core"
	"github.com/aretw0/marl/pkg/typed"
)

// Version exposes the version of the library.
// See version.go for the implementation using go:embed.

// --- Types ---

// Document is a public alias for the raw document form.
type Document = core.Document

// Fields is a public alias for a document's key-value pairs.
type Fields = core.Fields

// Filter is a public alias for the equality filter.
type Filter = core.Filter

// Session is a public alias for the store session.
type Session = core.Session

// MapReduceJob is a public alias for the raw two-phase reduction.
type MapReduceJob = core.MapReduceJob

// Repository is a public alias for the typed generic repository.
type Repository[T any] = typed.Repository[T]

// Mapping is a public alias for the per-type field-name registry.
type Mapping[T any] = typed.Mapping[T]

// Field is a public alias for one field binding.
type Field[T any] = typed.Field[T]

// IDField is a public alias for the identifier binding.
type IDField[T any] = typed.IDField[T]

// Stats is a public alias for the per-group aggregation summary.
type Stats = aggregate.Stats

// IDKey is the reserved filter key addressing a document's identifier.
const IDKey = core.IDKey

// --- Errors ---

var (
	ErrConnection   = core.ErrConnection
	ErrUnknownField = core.ErrUnknownField
	ErrNotFound     = core.ErrNotFound
	ErrValidation   = core.ErrValidation
	ErrBadJob       = core.ErrBadJob
)

// --- Configuration ---

// Option defines a functional option for configuring the connection.
type Option = platform.Option

// WithLogger sets the logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStore injects an already connected store adapter.
func WithStore(store core.Store) Option {
	return platform.WithStore(store)
}

// WithMongoDatabase sets the database name used by the mongo adapter.
func WithMongoDatabase(name string) Option {
	return platform.WithMongoDatabase(name)
}

// WithRedisPassword sets the password used by the redis adapter.
func WithRedisPassword(password string) Option {
	return platform.WithRedisPassword(password)
}

// WithRedisDB selects the redis logical database.
func WithRedisDB(db int) Option {
	return platform.WithRedisDB(db)
}

// --- Factory ---

// Connect establishes the process-wide store session for an endpoint
// (memory://, mongodb://, redis://). Close it at shutdown.
func Connect(ctx context.Context, endpoint string, opts ...Option) (*core.Session, error) {
	return platform.Connect(ctx, endpoint, opts...)
}

// --- Typed factories ---

// NewRepository binds a field mapping to one named collection of the session.
func NewRepository[T any](session *core.Session, collection string, mapping typed.Mapping[T]) (*typed.Repository[T], error) {
	coll, err := session.Collection(collection)
	if err != nil {
		return nil, err
	}
	return typed.NewRepository[T](coll, mapping)
}
