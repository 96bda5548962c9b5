package typed

import (
	"context"
	"fmt"

	"github.com/aretw0/marl/pkg/core"
)

// Repository provides identifier- and field-keyed access to one collection
// of a single document type T, hiding the store's native query form.
//
// The repository keeps no state between calls: every operation is a fresh
// round trip through the store gateway, so one instance is safe for
// concurrent use. Read-your-writes and any stronger consistency are the
// store's to guarantee, not this layer's.
type Repository[T any] struct {
	coll    core.Collection
	mapping Mapping[T]
}

// NewRepository binds a field mapping to a collection handle. The mapping
// is validated here, once: a malformed registry fails fast with
// core.ErrValidation instead of surfacing on first use.
func NewRepository[T any](coll core.Collection, mapping Mapping[T]) (*Repository[T], error) {
	if coll == nil {
		return nil, fmt.Errorf("%w: nil collection", core.ErrValidation)
	}
	if err := mapping.Validate(); err != nil {
		return nil, err
	}
	return &Repository[T]{coll: coll, mapping: mapping}, nil
}

// Collection exposes the underlying gateway handle.
func (r *Repository[T]) Collection() core.Collection {
	return r.coll
}

// InsertOne persists an entity. The store assigns an identifier if the
// entity has none; the effective identifier is written back into the
// entity and returned. Stores treat writes as upserts, so inserting an
// entity that already carries a known identifier overwrites it.
func (r *Repository[T]) InsertOne(ctx context.Context, entity *T) (string, error) {
	return r.Save(ctx, entity)
}

// Save upserts by identifier: insert when the entity has no identifier
// yet, otherwise overwrite the stored document with that identifier.
// Saving an unchanged entity twice leaves the store as if saved once.
func (r *Repository[T]) Save(ctx context.Context, entity *T) (string, error) {
	if entity == nil {
		return "", fmt.Errorf("%w: nil entity", core.ErrValidation)
	}
	id, err := r.coll.Upsert(ctx, r.mapping.encode(entity))
	if err != nil {
		return "", err
	}
	r.mapping.ID.Set(entity, id)
	return id, nil
}

// GetAll returns every document in the collection, in store order.
// The order is not part of the contract.
func (r *Repository[T]) GetAll(ctx context.Context) ([]*T, error) {
	return r.find(ctx, nil)
}

// GetByField returns the documents whose attribute mapped to fieldName
// equals value. The identifier is addressed with core.IDKey. Unknown
// names fail with core.ErrUnknownField before any store round trip.
func (r *Repository[T]) GetByField(ctx context.Context, fieldName string, value any) ([]*T, error) {
	if err := r.resolve(fieldName); err != nil {
		return nil, err
	}
	return r.find(ctx, core.Filter{fieldName: value})
}

// UpdateField sets one attribute of the document with the given identifier
// and leaves every other attribute untouched. A missing identifier reports
// core.ErrNotFound without writing anything; a value the field's mutator
// cannot decode reports core.ErrValidation without writing anything.
func (r *Repository[T]) UpdateField(ctx context.Context, id, fieldName string, value any) error {
	if err := r.resolve(fieldName); err != nil {
		return err
	}
	if fieldName == core.IDKey {
		return fmt.Errorf("%w: identifier is immutable", core.ErrValidation)
	}
	// A value the mutator cannot decode must never reach the store, or
	// every later read of the document would fail.
	var scratch T
	if err := r.mapping.Fields[fieldName].Set(&scratch, value); err != nil {
		return fmt.Errorf("%w: field %q: %v", core.ErrValidation, fieldName, err)
	}
	docs, err := r.coll.Find(ctx, core.Filter{core.IDKey: id})
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("%w: id %q", core.ErrNotFound, id)
	}
	doc := docs[0]
	doc.Fields[fieldName] = value
	_, err = r.coll.Upsert(ctx, doc)
	return err
}

// DeleteByID removes the document with the given identifier. Absence is a
// valid terminal state: removed=false, no error.
func (r *Repository[T]) DeleteByID(ctx context.Context, id string) (bool, error) {
	return r.coll.DeleteByID(ctx, id)
}

// DeleteWhere removes every document matching the filter (all of them for
// a nil filter) and returns the count removed.
func (r *Repository[T]) DeleteWhere(ctx context.Context, filter core.Filter) (int64, error) {
	if err := r.resolveFilter(filter); err != nil {
		return 0, err
	}
	return r.coll.DeleteMatching(ctx, filter)
}

// Count returns the number of documents, optionally filtered.
func (r *Repository[T]) Count(ctx context.Context, filter core.Filter) (int64, error) {
	if err := r.resolveFilter(filter); err != nil {
		return 0, err
	}
	return r.coll.Count(ctx, filter)
}

// Reduce pushes a map/reduce job through the store gateway and returns
// one scalar per group key.
func (r *Repository[T]) Reduce(ctx context.Context, job core.MapReduceJob) (map[string]int64, error) {
	return r.coll.Reduce(ctx, nil, job)
}

func (r *Repository[T]) find(ctx context.Context, filter core.Filter) ([]*T, error) {
	docs, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(docs))
	for _, doc := range docs {
		entity, err := r.mapping.decode(doc)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.ID, err)
		}
		out = append(out, entity)
	}
	return out, nil
}

func (r *Repository[T]) resolve(fieldName string) error {
	if fieldName == core.IDKey {
		return nil
	}
	if _, ok := r.mapping.Fields[fieldName]; !ok {
		return fmt.Errorf("%w: %q has no mapping", core.ErrUnknownField, fieldName)
	}
	return nil
}

func (r *Repository[T]) resolveFilter(filter core.Filter) error {
	for name := range filter {
		if err := r.resolve(name); err != nil {
			return err
		}
	}
	return nil
}
