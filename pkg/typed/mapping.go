package typed

import (
	"fmt"

	"github.com/aretw0/marl/pkg/core"
)

// Field binds one external field name to a typed accessor/mutator pair.
// Both directions are explicit: no reflection is involved at any point.
type Field[T any] struct {
	// Get reads the attribute's current value.
	Get func(*T) any

	// Set writes a stored value back into the attribute. Values arrive in
	// their store-decoded form (e.g. float64 for JSON numbers); Set must
	// reject values of the wrong shape with an error. See the As* helpers.
	Set func(*T, any) error
}

// IDField binds the store-assigned identifier of T.
type IDField[T any] struct {
	Get func(*T) string
	Set func(*T, string)
}

// Mapping is the per-type field-name registry: external field name to
// typed accessor pair, plus the identifier accessors. It is validated
// once, when the repository is constructed, so a half-bound or reserved
// name fails at startup rather than on first use.
type Mapping[T any] struct {
	ID     IDField[T]
	Fields map[string]Field[T]
}

// Validate checks the mapping is fully bound.
func (m Mapping[T]) Validate() error {
	if m.ID.Get == nil || m.ID.Set == nil {
		return fmt.Errorf("%w: identifier accessors are required", core.ErrValidation)
	}
	if len(m.Fields) == 0 {
		return fmt.Errorf("%w: mapping has no fields", core.ErrValidation)
	}
	for name, f := range m.Fields {
		if name == "" {
			return fmt.Errorf("%w: empty field name", core.ErrValidation)
		}
		if name == core.IDKey {
			return fmt.Errorf("%w: field name %q is reserved for the identifier", core.ErrValidation, name)
		}
		if f.Get == nil || f.Set == nil {
			return fmt.Errorf("%w: field %q must bind both accessor and mutator", core.ErrValidation, name)
		}
	}
	return nil
}

// encode projects an entity into its raw document form.
func (m Mapping[T]) encode(entity *T) core.Document {
	fields := make(core.Fields, len(m.Fields))
	for name, f := range m.Fields {
		fields[name] = f.Get(entity)
	}
	return core.Document{ID: m.ID.Get(entity), Fields: fields}
}

// decode rebuilds an entity from its raw document form. Fields absent
// from the document keep their zero value.
func (m Mapping[T]) decode(doc core.Document) (*T, error) {
	entity := new(T)
	m.ID.Set(entity, doc.ID)
	for name, f := range m.Fields {
		raw, ok := doc.Fields[name]
		if !ok || raw == nil {
			continue
		}
		if err := f.Set(entity, raw); err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", core.ErrValidation, name, err)
		}
	}
	return entity, nil
}
