package platform

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aretw0/marl/pkg/adapters/memory"
	"github.com/aretw0/marl/pkg/adapters/mongo"
	"github.com/aretw0/marl/pkg/adapters/redis"
	"github.com/aretw0/marl/pkg/core"
)

// Connect builds a Session for the endpoint. The scheme selects the
// adapter:
//
//	memory://                  in-process store (default)
//	mongodb://host:port/db     MongoDB deployment
//	redis://host:port          Redis server
//
// The returned session owns the connection and must be closed at shutdown.
func Connect(ctx context.Context, endpoint string, opts ...Option) (*core.Session, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if o.store != nil {
		return core.NewSession(o.store, o.logger), nil
	}

	store, err := dial(ctx, endpoint, o)
	if err != nil {
		return nil, err
	}
	return core.NewSession(store, o.logger), nil
}

func dial(ctx context.Context, endpoint string, o *options) (core.Store, error) {
	if endpoint == "" {
		return memory.New(), nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed endpoint %q", core.ErrValidation, endpoint)
	}

	switch u.Scheme {
	case "memory":
		return memory.New(), nil
	case "mongodb", "mongodb+srv":
		database := o.mongoDatabase
		if p := strings.Trim(u.Path, "/"); p != "" {
			database = p
		}
		return mongo.Connect(ctx, endpoint, database)
	case "redis", "rediss":
		return redis.Connect(ctx, endpoint, o.redisPassword, o.redisDB)
	default:
		return nil, fmt.Errorf("%w: unknown store scheme %q", core.ErrValidation, u.Scheme)
	}
}
