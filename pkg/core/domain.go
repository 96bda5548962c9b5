// Document is the central entity of the domain.
package core

import (
	"encoding/json"
	"reflect"
)

// Fields represents the flexible key-value pairs of a document, keyed by
// external field name.
type Fields map[string]any

// Document is the central entity of the domain.
// It represents a semi-structured record belonging to a named collection,
// identified by a store-assigned ID. It is agnostic to the backing store
// (memory, Redis, MongoDB).
type Document struct {
	ID     string
	Fields Fields
}

// Clone returns a deep copy of the document. Adapters hand out clones so
// callers can never mutate stored state through a returned document.
func (d Document) Clone() Document {
	return Document{ID: d.ID, Fields: cloneFields(d.Fields)}
}

// IDKey is the reserved filter key that addresses a document's identifier.
const IDKey = "_id"

// Filter selects documents by equality on external field names.
// A nil or empty Filter matches every document. The identifier is
// addressed with IDKey. Equality is store-native: case-sensitive for text,
// by magnitude for numbers.
type Filter map[string]any

// Matches reports whether doc satisfies every clause of the filter.
func (f Filter) Matches(doc Document) bool {
	for name, want := range f {
		if name == IDKey {
			s, ok := want.(string)
			if !ok || doc.ID != s {
				return false
			}
			continue
		}
		got, ok := doc.Fields[name]
		if !ok || !equalValues(got, want) {
			return false
		}
	}
	return true
}

func cloneFields(src Fields) Fields {
	if src == nil {
		return nil
	}
	raw, err := json.Marshal(src)
	if err != nil {
		// Non-serializable values are copied shallowly.
		dst := make(Fields, len(src))
		for k, v := range src {
			dst[k] = v
		}
		return dst
	}
	var dst Fields
	_ = json.Unmarshal(raw, &dst)
	return dst
}

// equalValues compares a stored value with a filter value. Numbers compare
// by magnitude so an int clause matches a float64 decoded from JSON;
// everything else compares structurally after JSON normalization.
func equalValues(got, want any) bool {
	if gn, ok := asNumber(got); ok {
		wn, ok := asNumber(want)
		return ok && gn == wn
	}
	if reflect.DeepEqual(got, want) {
		return true
	}
	return reflect.DeepEqual(normalize(got), normalize(want))
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func normalize(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}
