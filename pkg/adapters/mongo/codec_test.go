package mongo

import (
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aretw0/marl/pkg/core"
)

func TestToSelector(t *testing.T) {
	t.Run("Empty Filter Selects Everything", func(t *testing.T) {
		if got := toSelector(nil); len(got) != 0 {
			t.Errorf("expected empty selector, got %v", got)
		}
	})

	t.Run("Identifier Becomes ObjectID", func(t *testing.T) {
		oid := primitive.NewObjectID()
		got := toSelector(core.Filter{core.IDKey: oid.Hex(), "name": "Béla"})
		if got["_id"] != oid {
			t.Errorf("expected %v, got %v", oid, got["_id"])
		}
		if got["name"] != "Béla" {
			t.Errorf("name clause lost: %v", got)
		}
	})

	t.Run("Malformed Identifier Matches Nothing", func(t *testing.T) {
		got := toSelector(core.Filter{core.IDKey: "not-hex"})
		if !reflect.DeepEqual(got, nothingMatches) {
			t.Errorf("expected the impossible selector, got %v", got)
		}
	})
}

func TestFromBson(t *testing.T) {
	oid := primitive.NewObjectID()
	posted := time.Date(2018, 1, 2, 0, 0, 0, 0, time.UTC)

	doc := fromBson(bson.M{
		"_id":   oid,
		"title": "My First Post",
		"comments": primitive.A{
			bson.M{
				"email":      "gipsz.jakab@gmail.com",
				"timePosted": primitive.NewDateTimeFromTime(posted),
			},
		},
	})

	if doc.ID != oid.Hex() {
		t.Errorf("expected hex id %s, got %s", oid.Hex(), doc.ID)
	}
	if _, ok := doc.Fields["_id"]; ok {
		t.Error("identifier must not leak into fields")
	}

	comments, ok := doc.Fields["comments"].([]any)
	if !ok || len(comments) != 1 {
		t.Fatalf("expected plain slice of comments, got %T", doc.Fields["comments"])
	}
	first, ok := comments[0].(map[string]any)
	if !ok {
		t.Fatalf("expected plain map comment, got %T", comments[0])
	}
	if got, ok := first["timePosted"].(time.Time); !ok || !got.Equal(posted) {
		t.Errorf("expected %v, got %v", posted, first["timePosted"])
	}
}
