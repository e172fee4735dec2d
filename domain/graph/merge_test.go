package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarven-note/tarven-core/pkg/sqljson"
)

func TestApplyPropertiesRoutesByType(t *testing.T) {
	rec := &EntityRecord{Type: "Location"}

	warnings := applyProperties(rec, map[string]any{
		"description":   "a damp basement",
		"location_type": "building",
		"address":       "17 Mill Lane",
		// Character-only field on a Location goes to ext.
		"occupation": "n/a",
	})
	assert.Empty(t, warnings)

	require.NotNil(t, rec.Description)
	assert.Equal(t, "a damp basement", *rec.Description)
	require.NotNil(t, rec.LocationType)
	assert.Equal(t, "building", *rec.LocationType)
	require.NotNil(t, rec.Address)
	assert.Nil(t, rec.Occupation)

	ext, ok := asObject(rec.Attributes["ext"])
	require.True(t, ok)
	assert.Equal(t, "n/a", ext["occupation"])
}

func TestApplyPropertiesAdditiveLists(t *testing.T) {
	rec := &EntityRecord{Type: "Character", Notes: sqljson.List{"met in session 1"}}

	applyProperties(rec, map[string]any{
		"notes":   "betrayed the party",
		"aliases": []any{"the stranger", "old man"},
	})

	assert.Equal(t, []string{"met in session 1", "betrayed the party"}, rec.Notes.Strings())
	assert.Equal(t, []string{"the stranger", "old man"}, rec.Aliases.Strings())
}

func TestApplyPropertiesAgeCoercion(t *testing.T) {
	rec := &EntityRecord{Type: "Character"}

	warnings := applyProperties(rec, map[string]any{"age": float64(47)})
	assert.Empty(t, warnings)
	require.NotNil(t, rec.Age)
	assert.Equal(t, 47, *rec.Age)

	warnings = applyProperties(rec, map[string]any{"age": "unknown"})
	assert.Len(t, warnings, 1)
	assert.Equal(t, 47, *rec.Age)

	ext, ok := asObject(rec.Attributes["ext"])
	require.True(t, ok)
	assert.Equal(t, "unknown", ext["age"])
}

func TestApplyPropertiesTypedLists(t *testing.T) {
	rec := &EntityRecord{Type: "Event", Participants: sqljson.List{"Ada"}}

	// Typed list columns overwrite wholesale, unlike the additive lists.
	applyProperties(rec, map[string]any{"participants": []any{"Mina", "Bram"}})
	assert.Equal(t, []string{"Mina", "Bram"}, rec.Participants.Strings())
}

func TestMergeAttributesExtNesting(t *testing.T) {
	rec := &EntityRecord{Type: "Character"}

	warnings := mergeAttributes(rec, map[string]any{
		"hp":          9,
		"spell_slots": 3,
		"ext":         map[string]any{"custom": true},
	})
	assert.Empty(t, warnings)

	assert.Equal(t, 9, rec.Attributes["hp"])
	ext, ok := asObject(rec.Attributes["ext"])
	require.True(t, ok)
	assert.Equal(t, 3, ext["spell_slots"])
	assert.Equal(t, true, ext["custom"])
}

func TestCoerceList(t *testing.T) {
	assert.Nil(t, coerceList(nil))
	assert.Equal(t, sqljson.List{"a"}, coerceList("a"))
	assert.Equal(t, sqljson.List{"a", "b"}, coerceList([]any{"a", "b"}))
	assert.Equal(t, sqljson.List{"a", "b"}, coerceList([]string{"a", "b"}))
	assert.Equal(t, sqljson.List{42}, coerceList(42))
}

func TestIntValue(t *testing.T) {
	tests := []struct {
		in   any
		want int
		ok   bool
	}{
		{47, 47, true},
		{int64(47), 47, true},
		{float64(47), 47, true},
		{"47", 47, true},
		{"forty-seven", 0, false},
		{true, 0, false},
	}
	for _, tt := range tests {
		got, ok := intValue(tt.in)
		assert.Equal(t, tt.ok, ok)
		if ok {
			assert.Equal(t, tt.want, got)
		}
	}
}
