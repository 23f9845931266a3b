package engine

// InferOptions bundles the configuration table from spec.md §6 that
// governs a single inference run.
type InferOptions struct {
	QuotedValuesAreStrings bool
	InferMode              bool
	KeepNulls              bool
	SanitizeNames          bool
	PreserveInputSortOrder bool
	ExistingSchema         []Field
}

// InferFromRecords drives the Reducer + Merger + Flattener pipeline
// over a batch of already-decoded records (spec.md §2 control flow).
// It is the sequential reference path; MergeAllConcurrent offers the
// parallel fold over pre-reduced fragments for callers feeding records
// from multiple partitions.
func InferFromRecords(records []map[string]interface{}, opts InferOptions) ([]Field, Log) {
	var log Log
	acc := NewSchema()
	if len(opts.ExistingSchema) > 0 {
		acc = seedFromCanonical(opts.ExistingSchema)
	}
	for _, r := range records {
		frag := Reduce(r, opts.QuotedValuesAreStrings, "", &log)
		acc = Merge(acc, frag, "", &log)
	}
	if opts.InferMode {
		ApplyInferMode(acc)
	}
	fields := Flatten(acc, FlattenOptions{
		KeepNulls:              opts.KeepNulls,
		SanitizeNames:          opts.SanitizeNames,
		PreserveInputSortOrder: opts.PreserveInputSortOrder,
	})
	return fields, log
}

// seedFromCanonical converts a canonical schema into a Hard, unfilled
// accumulator (spec.md §6 "Existing-schema seeding"), so later
// observations can only widen it, never shrink it back to placeholder
// state.
func seedFromCanonical(fields []Field) *Schema {
	s := NewSchema()
	for _, f := range fields {
		s.Set(CanonicalKey(f.Name), entryFromField(f))
	}
	return s
}

func entryFromField(f Field) *SchemaEntry {
	var mode Mode
	switch f.Mode {
	case "REQUIRED":
		mode = Required
	case "REPEATED":
		mode = Repeated
	default:
		mode = Nullable
	}

	var t Type
	switch f.Type {
	case "BOOLEAN":
		t = Type{Kind: KindBoolean}
	case "INTEGER":
		t = Type{Kind: KindInteger}
	case "FLOAT":
		t = Type{Kind: KindFloat}
	case "DATE":
		t = Type{Kind: KindDate}
	case "TIME":
		t = Type{Kind: KindTime}
	case "TIMESTAMP":
		t = Type{Kind: KindTimestamp}
	case "RECORD":
		sub := NewSchema()
		for _, sf := range f.Fields {
			sub.Set(CanonicalKey(sf.Name), entryFromField(sf))
		}
		t = recordType(sub)
	default:
		t = Type{Kind: KindString}
	}

	return &SchemaEntry{Status: Hard, Filled: false, DisplayName: f.Name, Type: t, Mode: mode}
}
