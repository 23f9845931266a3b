package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reduceOf(t *testing.T, record map[string]interface{}) *Schema {
	t.Helper()
	var log Log
	return Reduce(record, false, "", &log)
}

// Canonical key folding: the map key is lowercased for identity but
// the original casing survives as DisplayName (spec.md §3, §4.3).
func TestReduce_CanonicalKeyFoldsCaseDisplayNameRetainsIt(t *testing.T) {
	s := reduceOf(t, map[string]interface{}{"UserID": 1})
	e, ok := s.Get("userid")
	require.True(t, ok)
	assert.Equal(t, "UserID", e.DisplayName)
}

func TestReduce_ScalarModeAndStatus(t *testing.T) {
	s := reduceOf(t, map[string]interface{}{"a": 1, "b": nil})
	a, _ := s.Get("a")
	assert.Equal(t, Nullable, a.Mode)
	assert.Equal(t, Hard, a.Status)
	assert.True(t, a.Filled)

	b, _ := s.Get("b")
	assert.Equal(t, Soft, b.Status)
	assert.False(t, b.Filled)
}

// Arrays set mode REPEATED; an array with concrete elements is Hard,
// while an array of only placeholders (or an empty array, whose element
// type is the placeholder EmptyArray) is Soft.
func TestReduce_ArrayModeRepeated(t *testing.T) {
	s := reduceOf(t, map[string]interface{}{"xs": []interface{}{float64(1), float64(2)}})
	xs, ok := s.Get("xs")
	require.True(t, ok)
	assert.Equal(t, Repeated, xs.Mode)
	assert.Equal(t, Hard, xs.Status)
	assert.Equal(t, KindInteger, xs.Type.Kind)
	assert.True(t, xs.Filled)
}

func TestReduce_EmptyArrayIsSoftAndUnfilled(t *testing.T) {
	s := reduceOf(t, map[string]interface{}{"xs": []interface{}{}})
	xs, ok := s.Get("xs")
	require.True(t, ok)
	assert.Equal(t, Repeated, xs.Mode)
	assert.Equal(t, Soft, xs.Status)
	assert.False(t, xs.Filled)
}

// Objects recurse into a nested Record field with mode NULLABLE
// (spec.md §4.3).
func TestReduce_NestedObjectBecomesRecord(t *testing.T) {
	s := reduceOf(t, map[string]interface{}{"user": map[string]interface{}{"id": 1}})
	user, ok := s.Get("user")
	require.True(t, ok)
	assert.Equal(t, Nullable, user.Mode)
	assert.Equal(t, Hard, user.Status)
	require.Equal(t, KindRecord, user.Type.Kind)
	_, hasID := user.Type.Fields.Get("id")
	assert.True(t, hasID)
}

func TestReduce_EmptyObjectBecomesSoftEmptyRecord(t *testing.T) {
	s := reduceOf(t, map[string]interface{}{"meta": map[string]interface{}{}})
	meta, ok := s.Get("meta")
	require.True(t, ok)
	assert.Equal(t, Soft, meta.Status)
	assert.Equal(t, KindEmptyRecord, meta.Type.Kind)
	assert.False(t, meta.Filled)
}

// filled is true iff the value is not null, [], or {} (spec.md §4.3).
func TestReduce_FilledExcludesNullEmptyArrayEmptyObject(t *testing.T) {
	s := reduceOf(t, map[string]interface{}{
		"a": nil,
		"b": []interface{}{},
		"c": map[string]interface{}{},
		"d": "x",
	})
	for _, k := range []string{"a", "b", "c"} {
		e, _ := s.Get(k)
		assert.False(t, e.Filled, "key %s", k)
	}
	d, _ := s.Get("d")
	assert.True(t, d.Filled)
}

// An array containing an array transitions the field to Ignore rather
// than failing the whole reduction (spec.md §4.2, §7).
func TestReduce_NestedRepeatedArrayBecomesIgnore(t *testing.T) {
	s := reduceOf(t, map[string]interface{}{"xs": []interface{}{[]interface{}{1}}})
	xs, ok := s.Get("xs")
	require.True(t, ok)
	assert.Equal(t, Ignore, xs.Status)
}
