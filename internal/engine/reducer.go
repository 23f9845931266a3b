package engine

// Reduce walks a record (JSON object) and produces a schema fragment:
// one SchemaEntry per (key, value) pair (spec.md §4.3). The resulting
// fragment is folded into an accumulator by Merge.
func Reduce(record map[string]interface{}, quotedValuesAreStrings bool, path string, log *Log) *Schema {
	out := NewSchema()
	for key, value := range record {
		canonical := CanonicalKey(key)
		fieldPath := childPath(path, key)
		entry := reduceField(key, value, quotedValuesAreStrings, fieldPath, log)
		out.Set(canonical, entry)
	}
	return out
}

func reduceField(displayName string, value interface{}, quotedValuesAreStrings bool, path string, log *Log) *SchemaEntry {
	if arr, ok := value.([]interface{}); ok {
		t, err := inferArray(arr, quotedValuesAreStrings, path, log)
		if err != nil {
			return &SchemaEntry{
				Status:      Ignore,
				DisplayName: displayName,
				Mode:        Repeated,
				Filled:      len(arr) > 0,
			}
		}
		status := Hard
		if t.Kind.isPlaceholder() {
			status = Soft
		}
		return &SchemaEntry{
			Status:      status,
			DisplayName: displayName,
			Type:        t,
			Mode:        Repeated,
			Filled:      len(arr) > 0,
		}
	}

	if obj, ok := value.(map[string]interface{}); ok {
		if len(obj) == 0 {
			return &SchemaEntry{
				Status:      Soft,
				DisplayName: displayName,
				Type:        Type{Kind: KindEmptyRecord},
				Mode:        Nullable,
				Filled:      false,
			}
		}
		nested := Reduce(obj, quotedValuesAreStrings, path, log)
		return &SchemaEntry{
			Status:      Hard,
			DisplayName: displayName,
			Type:        recordType(nested),
			Mode:        Nullable,
			Filled:      true,
		}
	}

	t, _ := Infer(value, quotedValuesAreStrings, path, log)
	status := Hard
	if value == nil {
		status = Soft
	}
	return &SchemaEntry{
		Status:      status,
		DisplayName: displayName,
		Type:        t,
		Mode:        Nullable,
		Filled:      value != nil,
	}
}
