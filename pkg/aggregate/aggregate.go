// Package aggregate computes grouped summary statistics over a collection
// of typed documents.
//
// Two interchangeable strategies are provided: a two-phase reduction job
// (RunJob, Total) and a direct single-pass aggregation (GroupStats). For
// the same snapshot both agree on sum; tests hold them to that.
package aggregate

import (
	"context"
	"fmt"

	"github.com/aretw0/marl/pkg/core"
)

// Source yields the document snapshot an aggregation runs over.
// *typed.Repository[T] satisfies it.
type Source[T any] interface {
	GetAll(ctx context.Context) ([]*T, error)
}

// Job is a two-phase reduction over typed documents: Map emits a
// (group key, value) pair per document and Reduce combines values sharing
// a key. Reduce must be associative and commutative; the engine folds each
// group in two opposite orders and rejects a combiner whose results
// disagree with core.ErrBadJob.
type Job[T any, K comparable] struct {
	// Filter keeps only matching documents before mapping. Optional.
	// It is evaluated per document and must not mutate it.
	Filter func(*T) bool

	Map    func(*T) (K, int64)
	Reduce func(a, b int64) int64
}

// RunJob executes the reduction over a snapshot of src.
// An empty snapshot yields zero groups, not an error.
func RunJob[T any, K comparable](ctx context.Context, src Source[T], job Job[T, K]) (map[K]int64, error) {
	if job.Map == nil {
		return nil, fmt.Errorf("%w: missing map function", core.ErrBadJob)
	}
	if job.Reduce == nil {
		return nil, fmt.Errorf("%w: missing reduce function", core.ErrBadJob)
	}
	docs, err := src.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	groups := make(map[K][]int64)
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if job.Filter != nil && !job.Filter(doc) {
			continue
		}
		key, value := job.Map(doc)
		groups[key] = append(groups[key], value)
	}

	out := make(map[K]int64, len(groups))
	for key, values := range groups {
		forward := fold(values, job.Reduce, false)
		backward := fold(values, job.Reduce, true)
		if forward != backward {
			return nil, fmt.Errorf("%w: combiner is order dependent", core.ErrBadJob)
		}
		out[key] = forward
	}
	return out, nil
}

// Total sums value over every document of src: a reduction job with a
// constant group key.
func Total[T any](ctx context.Context, src Source[T], value func(*T) int64) (int64, error) {
	result, err := RunJob(ctx, src, Job[T, struct{}]{
		Map:    func(doc *T) (struct{}, int64) { return struct{}{}, value(doc) },
		Reduce: func(a, b int64) int64 { return a + b },
	})
	if err != nil {
		return 0, err
	}
	return result[struct{}{}], nil
}

// Stats is the per-group summary computed by GroupStats. Empty groups are
// never emitted, so Count is always positive and Average well defined.
type Stats struct {
	Count   int64
	Sum     int64
	Average float64
	Min     int64
	Max     int64
}

// View describes the direct-aggregation pass: an optional filter, the
// grouping key and the numeric attribute to summarize.
type View[T any, K comparable] struct {
	// Filter keeps only matching documents. Optional, non-mutating.
	Filter func(*T) bool

	Key   func(*T) K
	Value func(*T) int64
}

// GroupStats partitions a snapshot of src by the view's key and computes
// count, sum, average, min and max of the value for each partition in a
// single pass. An empty snapshot yields zero groups.
func GroupStats[T any, K comparable](ctx context.Context, src Source[T], view View[T, K]) (map[K]Stats, error) {
	if view.Key == nil || view.Value == nil {
		return nil, fmt.Errorf("%w: view needs key and value functions", core.ErrBadJob)
	}
	docs, err := src.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[K]Stats)
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if view.Filter != nil && !view.Filter(doc) {
			continue
		}
		key := view.Key(doc)
		value := view.Value(doc)

		stats, ok := out[key]
		if !ok {
			stats = Stats{Min: value, Max: value}
		}
		stats.Count++
		stats.Sum += value
		if value < stats.Min {
			stats.Min = value
		}
		if value > stats.Max {
			stats.Max = value
		}
		out[key] = stats
	}

	for key, stats := range out {
		stats.Average = float64(stats.Sum) / float64(stats.Count)
		out[key] = stats
	}
	return out, nil
}

func fold(values []int64, reduce func(int64, int64) int64, reversed bool) int64 {
	if reversed {
		acc := values[len(values)-1]
		for i := len(values) - 2; i >= 0; i-- {
			acc = reduce(acc, values[i])
		}
		return acc
	}
	acc := values[0]
	for _, v := range values[1:] {
		acc = reduce(acc, v)
	}
	return acc
}
