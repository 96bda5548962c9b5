package core

import (
	"context"
	"fmt"
)

// MapFunc emits a (group key, value) pair for one document.
// Returning ok=false skips the document.
type MapFunc func(doc Document) (key string, value int64, ok bool)

// ReduceFunc combines two values of the same group. It must be associative
// and commutative: the reduction order is unspecified.
type ReduceFunc func(a, b int64) int64

// MapReduceJob is a two-phase reduction over a collection: a map step that
// emits per-document key/value pairs and a reduce step that combines all
// values sharing a key into one scalar.
type MapReduceJob struct {
	Map    MapFunc
	Reduce ReduceFunc
}

// Validate reports ErrBadJob if the job is missing a phase.
func (j MapReduceJob) Validate() error {
	if j.Map == nil {
		return fmt.Errorf("%w: missing map function", ErrBadJob)
	}
	if j.Reduce == nil {
		return fmt.Errorf("%w: missing reduce function", ErrBadJob)
	}
	return nil
}

// RunMapReduce folds documents into per-key scalars. It is the engine-side
// implementation of Collection.Reduce shared by the adapters.
//
// As a guard against silently wrong numbers, each group is folded in two
// opposite orders; a combiner that is not order independent produces
// disagreeing results and fails with ErrBadJob.
func RunMapReduce(ctx context.Context, docs []Document, job MapReduceJob) (map[string]int64, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	groups := make(map[string][]int64)
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		key, value, ok := job.Map(doc)
		if !ok {
			continue
		}
		groups[key] = append(groups[key], value)
	}

	out := make(map[string]int64, len(groups))
	for key, values := range groups {
		forward := values[0]
		for _, v := range values[1:] {
			forward = job.Reduce(forward, v)
		}
		backward := values[len(values)-1]
		for i := len(values) - 2; i >= 0; i-- {
			backward = job.Reduce(backward, values[i])
		}
		if forward != backward {
			return nil, fmt.Errorf("%w: combiner for key %q is order dependent", ErrBadJob, key)
		}
		out[key] = forward
	}
	return out, nil
}
