package engine

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Regex singletons for temporal and quoted-literal detection (spec.md
// §4.2, §5). They are compiled once, at package initialization rather
// than on first use, and never mutated. They are the sole source of
// truth for temporal inference.
var (
	dateRe      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe      = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}(\.\d+)?$`)
	timestampRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})?$`)
	boolLitRe   = regexp.MustCompile(`(?i)^(true|false)$`)
	intLitRe    = regexp.MustCompile(`^[+-]?\d+$`)
	floatLitRe  = regexp.MustCompile(`^[+-]?(\d+\.\d*|\.\d+|\d+)([eE][+-]?\d+)?$`)
)

const (
	minInt64Float = -9223372036854775808.0
	maxInt64Float = 9223372036854775808.0 // 2^63, exclusive upper bound
)

// Value is the JSON-value-like node the Inference and Reducer
// components consume: nil, bool, string, float64/json.Number for
// numbers, []interface{}, or map[string]interface{}.
type Value = interface{}

// Infer classifies a primitive or quoted value into a lattice element
// (spec.md §4.2). Arrays and objects recurse through the Reducer; this
// function handles the scalar/array/object dispatch that the Reducer
// needs when inferring the type of a single value.
func Infer(v Value, quotedValuesAreStrings bool, path string, log *Log) (Type, error) {
	switch val := v.(type) {
	case nil:
		return Type{Kind: KindNull}, nil
	case bool:
		return Type{Kind: KindBoolean}, nil
	case string:
		return inferString(val, quotedValuesAreStrings), nil
	case float64:
		return inferNumber(val), nil
	case int:
		return inferNumber(float64(val)), nil
	case int64:
		return inferNumber(float64(val)), nil
	case []interface{}:
		return inferArray(val, quotedValuesAreStrings, path, log)
	case map[string]interface{}:
		return inferObject(val, quotedValuesAreStrings, path, log)
	default:
		// Unrecognized concrete Go type (e.g. json.Number): fall back
		// to string parsing of its textual form.
		return inferString(toText(v), quotedValuesAreStrings), nil
	}
}

func toText(v Value) string {
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return ""
}

func inferNumber(f float64) Type {
	if f == math.Trunc(f) && f >= minInt64Float && f < maxInt64Float {
		return Type{Kind: KindInteger}
	}
	return Type{Kind: KindFloat}
}

func inferString(s string, quotedValuesAreStrings bool) Type {
	switch {
	case timestampRe.MatchString(s):
		return Type{Kind: KindTimestamp}
	case dateRe.MatchString(s):
		return Type{Kind: KindDate}
	case timeRe.MatchString(s):
		return Type{Kind: KindTime}
	}
	if quotedValuesAreStrings {
		return Type{Kind: KindString}
	}
	switch {
	case boolLitRe.MatchString(s):
		return Type{Kind: KindQBoolean}
	case intLitRe.MatchString(s):
		if n, err := strconv.ParseFloat(s, 64); err == nil && n >= minInt64Float && n < maxInt64Float {
			return Type{Kind: KindQInteger}
		}
		return Type{Kind: KindQFloat}
	case floatLitRe.MatchString(s):
		return Type{Kind: KindQFloat}
	}
	return Type{Kind: KindString}
}

// inferArray infers the homogeneous join of an array's element types
// (spec.md §4.2/§4.3). An empty array yields EmptyArray. An array
// containing an array is rejected: BigQuery forbids nested repeated
// fields.
func inferArray(items []interface{}, quotedValuesAreStrings bool, path string, log *Log) (Type, error) {
	if len(items) == 0 {
		return Type{Kind: KindEmptyArray}, nil
	}
	var acc Type
	first := true
	for _, item := range items {
		if _, isArray := item.([]interface{}); isArray {
			log.add(path, "array contains array: nested repeated fields are not supported")
			return Type{}, ErrIncompatible{A: Type{Kind: KindEmptyArray}, B: Type{Kind: KindEmptyArray}}
		}
		t, err := Infer(item, quotedValuesAreStrings, path, log)
		if err != nil {
			return Type{}, err
		}
		if first {
			acc = t
			first = false
			continue
		}
		joined, err := Join(acc, t, path, log)
		if err != nil {
			log.add(path, "type conflict within array: %v", err)
			return Type{}, err
		}
		acc = joined
	}
	return acc, nil
}

func inferObject(obj map[string]interface{}, quotedValuesAreStrings bool, path string, log *Log) (Type, error) {
	if len(obj) == 0 {
		return Type{Kind: KindEmptyRecord}, nil
	}
	frag := Reduce(obj, quotedValuesAreStrings, path, log)
	return recordType(frag), nil
}

func childPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + strings.ToLower(key)
}
