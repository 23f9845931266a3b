package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inferOf(t *testing.T, v Value, quoted bool) Type {
	t.Helper()
	var log Log
	typ, err := Infer(v, quoted, "", &log)
	require.NoError(t, err)
	return typ
}

func TestInfer_Primitives(t *testing.T) {
	assert.Equal(t, KindNull, inferOf(t, nil, false).Kind)
	assert.Equal(t, KindBoolean, inferOf(t, true, false).Kind)
	assert.Equal(t, KindInteger, inferOf(t, float64(42), false).Kind)
	assert.Equal(t, KindFloat, inferOf(t, 3.14, false).Kind)
}

// Scale overflow: an integer-valued number outside the 64-bit signed
// range silently widens to Float, not an error (spec.md §4.2, §7).
func TestInfer_IntegerOverflowWidensToFloat(t *testing.T) {
	assert.Equal(t, KindFloat, inferOf(t, 1e19, false).Kind)
	assert.Equal(t, KindInteger, inferOf(t, 9007199254740992.0, false).Kind)
}

// Temporal regexes are the sole source of truth and are tried before
// any Q-type classification (spec.md §4.2).
func TestInfer_TemporalStrings(t *testing.T) {
	assert.Equal(t, KindDate, inferOf(t, "2024-01-01", false).Kind)
	assert.Equal(t, KindTime, inferOf(t, "13:45:00", false).Kind)
	assert.Equal(t, KindTime, inferOf(t, "13:45:00.500", false).Kind)
	assert.Equal(t, KindTimestamp, inferOf(t, "2024-01-01T13:45:00", false).Kind)
	assert.Equal(t, KindTimestamp, inferOf(t, "2024-01-01 13:45:00Z", false).Kind)
	assert.Equal(t, KindTimestamp, inferOf(t, "2024-01-01T13:45:00.123+05:00", false).Kind)
}

func TestInfer_QuotedShadowTypes(t *testing.T) {
	assert.Equal(t, KindQBoolean, inferOf(t, "true", false).Kind)
	assert.Equal(t, KindQBoolean, inferOf(t, "FALSE", false).Kind)
	assert.Equal(t, KindQInteger, inferOf(t, "42", false).Kind)
	assert.Equal(t, KindQInteger, inferOf(t, "-7", false).Kind)
	assert.Equal(t, KindQFloat, inferOf(t, "3.14", false).Kind)
	assert.Equal(t, KindString, inferOf(t, "hello", false).Kind)
}

// quoted_values_are_strings disables Q-type inference entirely
// (spec.md §4.2, §6).
func TestInfer_QuotedValuesAreStringsDisablesShadows(t *testing.T) {
	assert.Equal(t, KindString, inferOf(t, "42", true).Kind)
	assert.Equal(t, KindString, inferOf(t, "true", true).Kind)
	assert.Equal(t, KindString, inferOf(t, "3.14", true).Kind)
	// Temporal detection still applies regardless of the flag.
	assert.Equal(t, KindDate, inferOf(t, "2024-01-01", true).Kind)
}

func TestInfer_EmptyObjectAndArray(t *testing.T) {
	assert.Equal(t, KindEmptyRecord, inferOf(t, map[string]interface{}{}, false).Kind)
	assert.Equal(t, KindEmptyArray, inferOf(t, []interface{}{}, false).Kind)
}

func TestInfer_NonEmptyObjectBecomesRecord(t *testing.T) {
	typ := inferOf(t, map[string]interface{}{"a": 1}, false)
	require.Equal(t, KindRecord, typ.Kind)
	_, ok := typ.Fields.Get("a")
	assert.True(t, ok)
}

// S3 (spec.md §8): a homogeneous array of integers infers INTEGER.
func TestInfer_HomogeneousArrayJoinsElements(t *testing.T) {
	typ := inferOf(t, []interface{}{float64(1), float64(2)}, false)
	assert.Equal(t, KindInteger, typ.Kind)
}

func TestInfer_MixedNumericArrayWidensToFloat(t *testing.T) {
	typ := inferOf(t, []interface{}{float64(1), 2.5}, false)
	assert.Equal(t, KindFloat, typ.Kind)
}

// Nested repeated fields are forbidden: an array containing an array
// fails inference (spec.md §4.2, §7).
func TestInfer_NestedArrayFails(t *testing.T) {
	var log Log
	_, err := Infer([]interface{}{[]interface{}{1}}, false, "xs", &log)
	assert.Error(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, "xs", log[0].Path)
}

func TestInfer_IncompatibleArrayElementsFails(t *testing.T) {
	var log Log
	_, err := Infer([]interface{}{true, float64(1)}, false, "flags", &log)
	assert.Error(t, err)
}
