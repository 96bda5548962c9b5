package typed_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/marl/pkg/core"
	"github.com/aretw0/marl/pkg/typed"
)

type profile struct {
	ID   string
	Name string
}

func profileMapping() typed.Mapping[profile] {
	return typed.Mapping[profile]{
		ID: typed.IDField[profile]{
			Get: func(p *profile) string { return p.ID },
			Set: func(p *profile, id string) { p.ID = id },
		},
		Fields: map[string]typed.Field[profile]{
			"name": {
				Get: func(p *profile) any { return p.Name },
				Set: func(p *profile, v any) error {
					s, err := typed.AsString(v)
					if err != nil {
						return err
					}
					p.Name = s
					return nil
				},
			},
		},
	}
}

func TestMappingValidate(t *testing.T) {
	t.Run("Accepts Fully Bound Mapping", func(t *testing.T) {
		require.NoError(t, profileMapping().Validate())
	})

	t.Run("Rejects Missing Identifier Accessors", func(t *testing.T) {
		m := profileMapping()
		m.ID.Set = nil
		assert.ErrorIs(t, m.Validate(), core.ErrValidation)
	})

	t.Run("Rejects Empty Registry", func(t *testing.T) {
		m := profileMapping()
		m.Fields = nil
		assert.ErrorIs(t, m.Validate(), core.ErrValidation)
	})

	t.Run("Rejects Half Bound Field", func(t *testing.T) {
		m := profileMapping()
		m.Fields["broken"] = typed.Field[profile]{Get: func(p *profile) any { return nil }}
		assert.ErrorIs(t, m.Validate(), core.ErrValidation)
	})

	t.Run("Rejects Reserved Identifier Name", func(t *testing.T) {
		m := profileMapping()
		m.Fields[core.IDKey] = m.Fields["name"]
		assert.ErrorIs(t, m.Validate(), core.ErrValidation)
	})
}

func TestConverters(t *testing.T) {
	t.Run("AsString", func(t *testing.T) {
		s, err := typed.AsString("hello")
		require.NoError(t, err)
		assert.Equal(t, "hello", s)

		_, err = typed.AsString(42)
		assert.Error(t, err)
	})

	t.Run("AsInt Accepts Whole Floats", func(t *testing.T) {
		n, err := typed.AsInt(float64(27))
		require.NoError(t, err)
		assert.Equal(t, 27, n)

		_, err = typed.AsInt(27.5)
		assert.Error(t, err)
	})

	t.Run("AsInt Accepts Driver Integers", func(t *testing.T) {
		n, err := typed.AsInt(int64(9))
		require.NoError(t, err)
		assert.Equal(t, 9, n)

		n, err = typed.AsInt(int32(12))
		require.NoError(t, err)
		assert.Equal(t, 12, n)
	})

	t.Run("AsTime Parses RFC3339", func(t *testing.T) {
		want := time.Date(2018, 1, 2, 0, 0, 0, 0, time.UTC)
		got, err := typed.AsTime(want.Format(time.RFC3339))
		require.NoError(t, err)
		assert.True(t, got.Equal(want))

		_, err = typed.AsTime("yesterday")
		assert.Error(t, err)
	})

	t.Run("Remarshal Rebuilds Nested Structures", func(t *testing.T) {
		raw := []any{
			map[string]any{"email": "gipsz.jakab@gmail.com", "body": "Awesome"},
		}
		var comments []struct {
			Email string `json:"email"`
			Body  string `json:"body"`
		}
		require.NoError(t, typed.Remarshal(raw, &comments))
		require.Len(t, comments, 1)
		assert.Equal(t, "gipsz.jakab@gmail.com", comments[0].Email)
	})
}
