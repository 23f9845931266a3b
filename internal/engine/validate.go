package engine

import "strings"

// Violation is one deviation of a record from a canonical schema
// (spec.md §4.7).
type Violation struct {
	RecordIndex int
	Path        string
	Kind        string // "MissingRequired", "TypeMismatch", "NotArray", "UnknownField"
	Severity    string // "error" or "warning"
	Message     string
}

// ValidateOptions configures the Validator (spec.md §4.7, §6).
type ValidateOptions struct {
	Strict       bool
	AllowUnknown bool
	MaxErrors    int
}

// Validate checks a sequence of records against a canonical schema,
// returning violations up to opts.MaxErrors (0 means unlimited).
func Validate(schema []Field, records []map[string]interface{}, opts ValidateOptions) []Violation {
	var violations []Violation
	for i, record := range records {
		if opts.MaxErrors > 0 && countErrors(violations) >= opts.MaxErrors {
			break
		}
		validateObject(schema, record, opts, i, "", &violations)
	}
	if opts.MaxErrors > 0 {
		n := 0
		for i, v := range violations {
			if v.Severity == "error" {
				n++
				if n == opts.MaxErrors {
					return violations[:i+1]
				}
			}
		}
	}
	return violations
}

func countErrors(violations []Violation) int {
	n := 0
	for _, v := range violations {
		if v.Severity == "error" {
			n++
		}
	}
	return n
}

func validateObject(schema []Field, record map[string]interface{}, opts ValidateOptions, recordIdx int, basePath string, violations *[]Violation) {
	matched := make(map[string]bool, len(record))

	for _, f := range schema {
		if opts.MaxErrors > 0 && countErrors(*violations) >= opts.MaxErrors {
			return
		}
		path := childPath(basePath, f.Name)
		rawKey, val, present := lookupCaseInsensitive(record, f.Name)
		if rawKey != "" {
			matched[CanonicalKey(rawKey)] = true
		}

		if f.Mode == "REQUIRED" && (!present || val == nil) {
			*violations = append(*violations, Violation{
				RecordIndex: recordIdx, Path: path, Kind: "MissingRequired", Severity: "error",
				Message: "required field is missing or null",
			})
			continue
		}
		if !present || val == nil {
			continue
		}

		checkFieldValue(f, val, opts, recordIdx, path, violations)
	}

	for rawKey, val := range record {
		key := CanonicalKey(rawKey)
		if matched[key] {
			continue
		}
		_ = val
		sev := "error"
		if opts.AllowUnknown {
			sev = "warning"
		}
		*violations = append(*violations, Violation{
			RecordIndex: recordIdx, Path: childPath(basePath, rawKey), Kind: "UnknownField", Severity: sev,
			Message: "field not present in schema",
		})
	}
}

func checkFieldValue(f Field, val interface{}, opts ValidateOptions, recordIdx int, path string, violations *[]Violation) {
	if f.Mode == "REPEATED" {
		arr, ok := val.([]interface{})
		if !ok {
			*violations = append(*violations, Violation{
				RecordIndex: recordIdx, Path: path, Kind: "NotArray", Severity: "error",
				Message: "repeated field value is not an array",
			})
			return
		}
		elem := f
		elem.Mode = "NULLABLE"
		for _, item := range arr {
			if item == nil {
				continue
			}
			checkScalarOrRecord(elem, item, opts, recordIdx, path, violations)
		}
		return
	}
	checkScalarOrRecord(f, val, opts, recordIdx, path, violations)
}

func checkScalarOrRecord(f Field, val interface{}, opts ValidateOptions, recordIdx int, path string, violations *[]Violation) {
	if f.Type == "RECORD" {
		obj, ok := val.(map[string]interface{})
		if !ok {
			*violations = append(*violations, Violation{
				RecordIndex: recordIdx, Path: path, Kind: "TypeMismatch", Severity: "error",
				Message: "expected an object for RECORD field",
			})
			return
		}
		validateObject(f.Fields, obj, opts, recordIdx, path, violations)
		return
	}

	var ok bool
	if opts.Strict {
		ok = checkStrictScalar(f.Type, val)
	} else {
		ok = checkLenientScalar(f.Type, val)
	}
	if !ok {
		*violations = append(*violations, Violation{
			RecordIndex: recordIdx, Path: path, Kind: "TypeMismatch", Severity: "error",
			Message: "value does not match field type " + f.Type,
		})
	}
}

func checkStrictScalar(canonicalType string, val interface{}) bool {
	switch canonicalType {
	case "BOOLEAN":
		_, ok := val.(bool)
		return ok
	case "INTEGER":
		f, ok := numericValue(val)
		if !ok {
			return false
		}
		return f == float64(int64(f)) && f >= minInt64Float && f < maxInt64Float
	case "FLOAT":
		_, ok := numericValue(val)
		return ok
	case "STRING", "DATE", "TIME", "TIMESTAMP":
		_, ok := val.(string)
		return ok
	default:
		return true
	}
}

func checkLenientScalar(canonicalType string, val interface{}) bool {
	switch canonicalType {
	case "BOOLEAN":
		if _, ok := val.(bool); ok {
			return true
		}
		s, ok := val.(string)
		return ok && boolLitRe.MatchString(s)
	case "INTEGER":
		if f, ok := numericValue(val); ok {
			return f == float64(int64(f))
		}
		s, ok := val.(string)
		if !ok {
			return false
		}
		t := inferString(s, false)
		return t.Kind == KindQInteger
	case "FLOAT":
		if _, ok := numericValue(val); ok {
			return true
		}
		s, ok := val.(string)
		if !ok {
			return false
		}
		t := inferString(s, false)
		return t.Kind == KindQInteger || t.Kind == KindQFloat
	case "DATE", "TIME", "TIMESTAMP":
		s, ok := val.(string)
		if !ok {
			return false
		}
		t := inferString(s, false)
		switch canonicalType {
		case "DATE":
			return t.Kind == KindDate
		case "TIME":
			return t.Kind == KindTime
		default:
			return t.Kind == KindTimestamp
		}
	case "STRING":
		_, ok := val.(string)
		return ok
	default:
		return true
	}
}

func numericValue(val interface{}) (float64, bool) {
	switch n := val.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func lookupCaseInsensitive(record map[string]interface{}, name string) (string, interface{}, bool) {
	if v, ok := record[name]; ok {
		return name, v, true
	}
	canonical := CanonicalKey(name)
	for k, v := range record {
		if strings.EqualFold(CanonicalKey(k), canonical) {
			return k, v, true
		}
	}
	return "", nil, false
}
