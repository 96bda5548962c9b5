package memory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/aretw0/marl/pkg/adapters/memory"
	"github.com/aretw0/marl/pkg/core"
)

func TestUpsert(t *testing.T) {
	ctx := context.Background()

	t.Run("Assigns Identifier When Absent", func(t *testing.T) {
		coll := memory.New().Collection("posts")

		id, err := coll.Upsert(ctx, core.Document{Fields: core.Fields{"title": "first"}})
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
		if id == "" {
			t.Fatal("expected an assigned identifier")
		}

		docs, err := coll.Find(ctx, nil)
		if err != nil {
			t.Fatalf("Find failed: %v", err)
		}
		if len(docs) != 1 || docs[0].ID != id {
			t.Errorf("unexpected documents: %+v", docs)
		}
	})

	t.Run("Overwrites By Identifier", func(t *testing.T) {
		coll := memory.New().Collection("posts")

		id, err := coll.Upsert(ctx, core.Document{Fields: core.Fields{"title": "first"}})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := coll.Upsert(ctx, core.Document{ID: id, Fields: core.Fields{"title": "edited"}}); err != nil {
			t.Fatal(err)
		}

		n, err := coll.Count(ctx, nil)
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Errorf("expected 1 document after overwrite, got %d", n)
		}

		docs, _ := coll.Find(ctx, core.Filter{core.IDKey: id})
		if got := docs[0].Fields["title"]; got != "edited" {
			t.Errorf("expected edited title, got %v", got)
		}
	})

	t.Run("Keeps Preset Identifiers", func(t *testing.T) {
		coll := memory.New().Collection("posts")

		id, err := coll.Upsert(ctx, core.Document{ID: "custom-1", Fields: core.Fields{}})
		if err != nil {
			t.Fatal(err)
		}
		if id != "custom-1" {
			t.Errorf("expected preset identifier to survive, got %q", id)
		}
	})
}

func TestFindReturnsClones(t *testing.T) {
	ctx := context.Background()
	coll := memory.New().Collection("posts")

	id, err := coll.Upsert(ctx, core.Document{Fields: core.Fields{"title": "original"}})
	if err != nil {
		t.Fatal(err)
	}

	docs, err := coll.Find(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	docs[0].Fields["title"] = "mutated"

	fresh, err := coll.Find(ctx, core.Filter{core.IDKey: id})
	if err != nil {
		t.Fatal(err)
	}
	if fresh[0].Fields["title"] != "original" {
		t.Error("mutating a returned document leaked into the store")
	}
}

func TestDeleteMatching(t *testing.T) {
	ctx := context.Background()
	coll := memory.New().Collection("posts")

	for i := 0; i < 3; i++ {
		if _, err := coll.Upsert(ctx, core.Document{Fields: core.Fields{"kind": "draft"}}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := coll.Upsert(ctx, core.Document{Fields: core.Fields{"kind": "published"}}); err != nil {
		t.Fatal(err)
	}

	removed, err := coll.DeleteMatching(ctx, core.Filter{"kind": "draft"})
	if err != nil {
		t.Fatal(err)
	}
	if removed != 3 {
		t.Errorf("expected 3 removed, got %d", removed)
	}

	// A nil filter clears the collection.
	removed, err = coll.DeleteMatching(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
}

func TestDeleteByIDAbsent(t *testing.T) {
	coll := memory.New().Collection("posts")

	removed, err := coll.DeleteByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("absence must not be an error: %v", err)
	}
	if removed {
		t.Error("expected removed=false")
	}
}

func TestReduce(t *testing.T) {
	ctx := context.Background()
	coll := memory.New().Collection("posts")

	for _, n := range []int{27, 9, 12} {
		if _, err := coll.Upsert(ctx, core.Document{Fields: core.Fields{"charCount": n}}); err != nil {
			t.Fatal(err)
		}
	}

	result, err := coll.Reduce(ctx, nil, core.MapReduceJob{
		Map: func(doc core.Document) (string, int64, bool) {
			// Cloned documents carry JSON-decoded numbers.
			n, ok := doc.Fields["charCount"].(float64)
			return "total", int64(n), ok
		},
		Reduce: func(a, b int64) int64 { return a + b },
	})
	if err != nil {
		t.Fatalf("Reduce failed: %v", err)
	}
	if result["total"] != 48 {
		t.Errorf("expected 48, got %d", result["total"])
	}
}

func TestClosedStore(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	coll := store.Collection("posts")

	if err := store.Close(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := coll.Upsert(ctx, core.Document{}); !errors.Is(err, core.ErrConnection) {
		t.Errorf("expected ErrConnection, got %v", err)
	}
	if _, err := coll.Find(ctx, nil); !errors.Is(err, core.ErrConnection) {
		t.Errorf("expected ErrConnection, got %v", err)
	}
	if err := store.Ping(ctx); !errors.Is(err, core.ErrConnection) {
		t.Errorf("expected ErrConnection, got %v", err)
	}
}

func TestConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	coll := memory.New().Collection("posts")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := coll.Upsert(ctx, core.Document{Fields: core.Fields{"n": i}})
			if err != nil {
				t.Errorf("concurrent Upsert failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	n, err := coll.Count(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 16 {
		t.Errorf("expected 16 documents, got %d", n)
	}
}

func TestCollectionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	for i := 0; i < 2; i++ {
		name := fmt.Sprintf("coll-%d", i)
		if _, err := store.Collection(name).Upsert(ctx, core.Document{Fields: core.Fields{}}); err != nil {
			t.Fatal(err)
		}
	}

	n, err := store.Collection("coll-0").Count(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 document in coll-0, got %d", n)
	}
}
