package mongo

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aretw0/marl/pkg/core"
)

// nothingMatches is a selector no stored document can satisfy, used when a
// filter names an identifier that cannot exist.
var nothingMatches = bson.M{"_id": bson.M{"$exists": false}}

// toSelector translates an equality filter into its native query form.
func toSelector(filter core.Filter) bson.M {
	selector := bson.M{}
	for name, value := range filter {
		if name == core.IDKey {
			id, ok := value.(string)
			if !ok {
				return nothingMatches
			}
			oid, err := primitive.ObjectIDFromHex(id)
			if err != nil {
				return nothingMatches
			}
			selector["_id"] = oid
			continue
		}
		selector[name] = value
	}
	return selector
}

func toBson(fields core.Fields) bson.M {
	out := make(bson.M, len(fields))
	for name, value := range fields {
		out[name] = value
	}
	return out
}

// fromBson converts a decoded document into its domain form: the object id
// becomes a hex string and driver container types become plain Go values.
func fromBson(m bson.M) core.Document {
	doc := core.Document{Fields: make(core.Fields, len(m))}
	for name, value := range m {
		if name == "_id" {
			if oid, ok := value.(primitive.ObjectID); ok {
				doc.ID = oid.Hex()
			}
			continue
		}
		doc.Fields[name] = fromBsonValue(value)
	}
	return doc
}

func fromBsonValue(value any) any {
	switch v := value.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case primitive.DateTime:
		return v.Time().UTC()
	case primitive.A:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = fromBsonValue(item)
		}
		return out
	case bson.M:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = fromBsonValue(item)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(v))
		for _, e := range v {
			out[e.Key] = fromBsonValue(e.Value)
		}
		return out
	default:
		return v
	}
}
