// Package mongo adapts a MongoDB deployment to the core store contract,
// the kind of deployment this layer was originally written against.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aretw0/marl/pkg/core"
)

// Store wraps one database handle of a connected client.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials the deployment and verifies it is reachable.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrConnection, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: %v", core.ErrConnection, err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

// Collection returns a handle scoped to one named collection.
func (s *Store) Collection(name string) core.Collection {
	return &collection{coll: s.db.Collection(name)}
}

// Ping verifies the connection is usable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: %v", core.ErrConnection, err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "mongo"
}

type collection struct {
	coll *mongo.Collection
}

func (c *collection) Name() string {
	return c.coll.Name()
}

func (c *collection) Upsert(ctx context.Context, doc core.Document) (string, error) {
	if doc.ID == "" {
		res, err := c.coll.InsertOne(ctx, toBson(doc.Fields))
		if err != nil {
			return "", wrap(err)
		}
		oid, ok := res.InsertedID.(primitive.ObjectID)
		if !ok {
			return "", fmt.Errorf("%w: unexpected identifier type %T", core.ErrValidation, res.InsertedID)
		}
		return oid.Hex(), nil
	}

	oid, err := primitive.ObjectIDFromHex(doc.ID)
	if err != nil {
		return "", fmt.Errorf("%w: malformed identifier %q", core.ErrValidation, doc.ID)
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := c.coll.ReplaceOne(ctx, bson.M{"_id": oid}, toBson(doc.Fields), opts); err != nil {
		return "", wrap(err)
	}
	return doc.ID, nil
}

func (c *collection) Find(ctx context.Context, filter core.Filter) ([]core.Document, error) {
	cursor, err := c.coll.Find(ctx, toSelector(filter))
	if err != nil {
		return nil, wrap(err)
	}
	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, wrap(err)
	}
	docs := make([]core.Document, 0, len(raw))
	for _, m := range raw {
		docs = append(docs, fromBson(m))
	}
	return docs, nil
}

func (c *collection) Count(ctx context.Context, filter core.Filter) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, toSelector(filter))
	if err != nil {
		return 0, wrap(err)
	}
	return n, nil
}

func (c *collection) DeleteByID(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// A malformed identifier cannot name a stored document.
		return false, nil
	}
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, wrap(err)
	}
	return res.DeletedCount > 0, nil
}

func (c *collection) DeleteMatching(ctx context.Context, filter core.Filter) (int64, error) {
	res, err := c.coll.DeleteMany(ctx, toSelector(filter))
	if err != nil {
		return 0, wrap(err)
	}
	return res.DeletedCount, nil
}

// Reduce runs the job engine-side over a cursor snapshot. The driver no
// longer exposes the server's mapReduce command, so the map and reduce
// functions stay in Go and execute here.
func (c *collection) Reduce(ctx context.Context, filter core.Filter, job core.MapReduceJob) (map[string]int64, error) {
	docs, err := c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return core.RunMapReduce(ctx, docs, job)
}

func wrap(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", core.ErrConnection, err)
}
