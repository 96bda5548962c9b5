package platform

import (
	"log/slog"

	"github.com/aretw0/marl/pkg/core"
)

// options holds the internal configuration for connecting a session.
type options struct {
	store         core.Store
	logger        *slog.Logger
	mongoDatabase string
	redisPassword string
	redisDB       int
}

// Option defines a functional option for configuring the connection.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		mongoDatabase: "marl",
	}
}

// WithLogger sets the logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore injects an already connected store adapter (e.g. a mock).
// If provided, the endpoint is ignored.
func WithStore(store core.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithMongoDatabase sets the database name used by the mongo adapter when
// the endpoint path does not name one.
func WithMongoDatabase(name string) Option {
	return func(o *options) {
		o.mongoDatabase = name
	}
}

// WithRedisPassword sets the password used by the redis adapter.
func WithRedisPassword(password string) Option {
	return func(o *options) {
		o.redisPassword = password
	}
}

// WithRedisDB selects the redis logical database.
func WithRedisDB(db int) Option {
	return func(o *options) {
		o.redisDB = db
	}
}
