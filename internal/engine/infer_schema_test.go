package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldByName(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// A field present with consistent scalar types across all records
// infers a single NULLABLE scalar field.
func TestInferFromRecords_ConsistentScalar(t *testing.T) {
	records := []map[string]interface{}{
		{"user_id": "abc"},
		{"user_id": "def"},
	}
	fields, log := InferFromRecords(records, InferOptions{})
	require.Empty(t, log)

	f, ok := fieldByName(fields, "user_id")
	require.True(t, ok)
	assert.Equal(t, "STRING", f.Type)
	assert.Equal(t, "NULLABLE", f.Mode)
}

// S1: integer and float observations of the same field widen to FLOAT.
func TestInferFromRecords_NumericWidening(t *testing.T) {
	records := []map[string]interface{}{
		{"amount": 3},
		{"amount": 4.5},
	}
	fields, _ := InferFromRecords(records, InferOptions{})

	f, ok := fieldByName(fields, "amount")
	require.True(t, ok)
	assert.Equal(t, "FLOAT", f.Type)
}

// A field present in some records but absent in others stays
// NULLABLE, never REQUIRED, unless infer_mode is set.
func TestInferFromRecords_AbsentFieldStaysNullable(t *testing.T) {
	records := []map[string]interface{}{
		{"a": 1, "b": 2},
		{"a": 1},
	}
	fields, _ := InferFromRecords(records, InferOptions{})

	a, ok := fieldByName(fields, "a")
	require.True(t, ok)
	assert.Equal(t, "NULLABLE", a.Mode)

	b, ok := fieldByName(fields, "b")
	require.True(t, ok)
	assert.Equal(t, "NULLABLE", b.Mode)
}

// S5 (promotion part): infer_mode promotes always-filled fields to REQUIRED, but never
// an unresolved (always-empty) record.
func TestInferFromRecords_InferMode(t *testing.T) {
	records := []map[string]interface{}{
		{"a": 1, "meta": map[string]interface{}{}},
		{"a": 2, "meta": map[string]interface{}{}},
	}
	fields, _ := InferFromRecords(records, InferOptions{InferMode: true})

	a, ok := fieldByName(fields, "a")
	require.True(t, ok)
	assert.Equal(t, "REQUIRED", a.Mode)

	// meta was always an empty record; never observed concretely, so it
	// must not be promoted even though it was present on every record.
	if meta, ok := fieldByName(fields, "meta"); ok {
		assert.NotEqual(t, "REQUIRED", meta.Mode)
	}
}

// Nested records merge field-by-field, not replace wholesale.
func TestInferFromRecords_NestedRecordMerge(t *testing.T) {
	records := []map[string]interface{}{
		{"user": map[string]interface{}{"id": 1}},
		{"user": map[string]interface{}{"name": "a"}},
	}
	fields, _ := InferFromRecords(records, InferOptions{})

	user, ok := fieldByName(fields, "user")
	require.True(t, ok)
	assert.Equal(t, "RECORD", user.Type)
	_, hasID := fieldByName(user.Fields, "id")
	_, hasName := fieldByName(user.Fields, "name")
	assert.True(t, hasID)
	assert.True(t, hasName)
}

// A quoted numeric string resolves to the native numeric type it
// shadows, whether it meets only other quoted numbers, a native
// numeric value of the same field, or nothing at all — but absorbs
// down to STRING the moment it meets a genuinely non-numeric string.
func TestInferFromRecords_QuotedNumericShadow(t *testing.T) {
	onlyQuoted := []map[string]interface{}{
		{"count": "3"},
		{"count": "4"},
	}
	fields, _ := InferFromRecords(onlyQuoted, InferOptions{})
	f, ok := fieldByName(fields, "count")
	require.True(t, ok)
	assert.Equal(t, "INTEGER", f.Type)

	mixed := []map[string]interface{}{
		{"count": "3"},
		{"count": 4},
	}
	fields, _ = InferFromRecords(mixed, InferOptions{})
	f, ok = fieldByName(fields, "count")
	require.True(t, ok)
	assert.Equal(t, "INTEGER", f.Type)

	absorbed := []map[string]interface{}{
		{"count": "3"},
		{"count": "not-a-number"},
	}
	fields, _ = InferFromRecords(absorbed, InferOptions{})
	f, ok = fieldByName(fields, "count")
	require.True(t, ok)
	assert.Equal(t, "STRING", f.Type)
}

func TestInferFromRecords_KeepNulls(t *testing.T) {
	records := []map[string]interface{}{
		{"always_null": nil},
	}

	dropped, _ := InferFromRecords(records, InferOptions{KeepNulls: false})
	_, ok := fieldByName(dropped, "always_null")
	assert.False(t, ok)

	kept, _ := InferFromRecords(records, InferOptions{KeepNulls: true})
	f, ok := fieldByName(kept, "always_null")
	require.True(t, ok)
	assert.Equal(t, "STRING", f.Type)
}

func TestInferFromRecords_SanitizeNames(t *testing.T) {
	records := []map[string]interface{}{
		{"weird name!": 1, "weird-name!": 2},
	}
	fields, _ := InferFromRecords(records, InferOptions{SanitizeNames: true})
	seen := map[string]bool{}
	for _, f := range fields {
		seen[f.Name] = true
	}
	assert.True(t, seen["weird_name_"])
	assert.True(t, seen["weird_name__2"])
}

func TestInferFromRecords_ExistingSchemaSeeding(t *testing.T) {
	existing := []Field{
		{Name: "id", Type: "INTEGER", Mode: "NULLABLE"},
	}
	records := []map[string]interface{}{
		{"id": 1},
	}
	fields, _ := InferFromRecords(records, InferOptions{ExistingSchema: existing})
	f, ok := fieldByName(fields, "id")
	require.True(t, ok)
	assert.Equal(t, "INTEGER", f.Type)
}
