// Package redis adapts a Redis server to the core store contract.
// Each collection lives in one hash: the field is the document identifier
// and the value its JSON-encoded attributes.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/aretw0/marl/pkg/core"
)

// keyPrefix namespaces every collection hash.
const keyPrefix = "marl"

// Store wraps one connected client.
type Store struct {
	client *redis.Client
}

// Connect dials a redis:// or rediss:// URL and verifies the server is
// reachable. A non-empty password or a non-zero db overrides whatever the
// URL itself embeds.
func Connect(ctx context.Context, rawURL, password string, db int) (*Store, error) {
	opts, err := clientOptions(rawURL, password, db)
	if err != nil {
		return nil, err
	}
	return verify(ctx, redis.NewClient(opts))
}

func clientOptions(rawURL, password string, db int) (*redis.Options, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrValidation, err)
	}
	if password != "" {
		opts.Password = password
	}
	if db != 0 {
		opts.DB = db
	}
	return opts, nil
}

func verify(ctx context.Context, client *redis.Client) (*Store, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", core.ErrConnection, err)
	}
	return &Store{client: client}, nil
}

// Collection returns a handle scoped to one named collection.
func (s *Store) Collection(name string) core.Collection {
	return &collection{client: s.client, name: name, key: keyPrefix + ":" + name}
}

// Ping verifies the connection is usable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrConnection, err)
	}
	return nil
}

// Close releases the client's connection pool.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Close()
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "redis"
}

type collection struct {
	client *redis.Client
	name   string
	key    string
}

func (c *collection) Name() string {
	return c.name
}

func (c *collection) Upsert(ctx context.Context, doc core.Document) (string, error) {
	id := doc.ID
	if id == "" {
		id = uuid.NewString()
	}
	payload, err := json.Marshal(doc.Fields)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrValidation, err)
	}
	if err := c.client.HSet(ctx, c.key, id, payload).Err(); err != nil {
		return "", wrap(err)
	}
	return id, nil
}

func (c *collection) Find(ctx context.Context, filter core.Filter) ([]core.Document, error) {
	return c.snapshot(ctx, filter)
}

func (c *collection) Count(ctx context.Context, filter core.Filter) (int64, error) {
	if len(filter) == 0 {
		n, err := c.client.HLen(ctx, c.key).Result()
		if err != nil {
			return 0, wrap(err)
		}
		return n, nil
	}
	docs, err := c.snapshot(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func (c *collection) DeleteByID(ctx context.Context, id string) (bool, error) {
	n, err := c.client.HDel(ctx, c.key, id).Result()
	if err != nil {
		return false, wrap(err)
	}
	return n > 0, nil
}

func (c *collection) DeleteMatching(ctx context.Context, filter core.Filter) (int64, error) {
	docs, err := c.snapshot(ctx, filter)
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}
	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}
	n, err := c.client.HDel(ctx, c.key, ids...).Result()
	if err != nil {
		return 0, wrap(err)
	}
	return n, nil
}

func (c *collection) Reduce(ctx context.Context, filter core.Filter, job core.MapReduceJob) (map[string]int64, error) {
	docs, err := c.snapshot(ctx, filter)
	if err != nil {
		return nil, err
	}
	return core.RunMapReduce(ctx, docs, job)
}

// snapshot loads the whole hash and filters client-side. Hash field order
// is unspecified, so documents are sorted by identifier to give callers a
// stable view.
func (c *collection) snapshot(ctx context.Context, filter core.Filter) ([]core.Document, error) {
	raw, err := c.client.HGetAll(ctx, c.key).Result()
	if err != nil {
		return nil, wrap(err)
	}
	docs := make([]core.Document, 0, len(raw))
	for id, payload := range raw {
		var fields core.Fields
		if err := json.Unmarshal([]byte(payload), &fields); err != nil {
			return nil, fmt.Errorf("%w: document %s: %v", core.ErrValidation, id, err)
		}
		doc := core.Document{ID: id, Fields: fields}
		if filter.Matches(doc) {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func wrap(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", core.ErrConnection, err)
}
