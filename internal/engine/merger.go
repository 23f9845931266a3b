package engine

import "context"

// Merge merges two schema fragments under the lattice, maintaining the
// Hard/Soft/Ignore entry state machine (spec.md §4.4). It never
// returns an error: incompatibilities are recorded in log and the
// offending entry transitions to Ignore. Merge is associative and
// commutative up to the left-biased display_name (spec.md §4.4/§8),
// which is why the caller controls fold order rather than Merge
// itself.
func Merge(a, b *Schema, path string, log *Log) *Schema {
	if a == nil {
		a = NewSchema()
	}
	if b == nil {
		b = NewSchema()
	}
	// The empty schema is the identity: the other side's entries are
	// copied unchanged, Filled included.
	if a.Len() == 0 || b.Len() == 0 {
		src := a
		if a.Len() == 0 {
			src = b
		}
		out := NewSchema()
		for _, k := range src.keys {
			cp := *src.entries[k]
			out.Set(k, &cp)
		}
		return out
	}
	out := NewSchema()
	for _, k := range a.keys {
		ae := a.entries[k]
		if be, ok := b.entries[k]; ok {
			out.Set(k, mergeEntry(childPath(path, ae.DisplayName), ae, be, log))
		} else {
			cp := *ae
			cp.Filled = false
			out.Set(k, &cp)
		}
	}
	for _, k := range b.keys {
		if _, exists := a.entries[k]; exists {
			continue
		}
		be := b.entries[k]
		cp := *be
		cp.Filled = false
		out.Set(k, &cp)
	}
	return out
}

func mergeEntry(fieldPath string, a, b *SchemaEntry, log *Log) *SchemaEntry {
	if a.Status == Ignore || b.Status == Ignore {
		out := *a
		out.Status = Ignore
		return &out
	}

	mode, ignore, warn := joinMode(a.Mode, b.Mode, a.Type, b.Type)
	if warn {
		log.add(fieldPath, "NULLABLE RECORD widened to REPEATED RECORD")
	}
	if ignore {
		log.add(fieldPath, "mode conflict: %s vs %s", a.Mode, b.Mode)
		out := *a
		out.Status = Ignore
		return &out
	}

	t, err := Join(a.Type, b.Type, fieldPath, log)
	if err != nil {
		log.add(fieldPath, "type conflict: %v", err)
		out := *a
		out.Status = Ignore
		return &out
	}

	status := Soft
	if a.Status == Hard || b.Status == Hard {
		status = Hard
	}

	return &SchemaEntry{
		Status:      status,
		Filled:      a.Filled && b.Filled,
		DisplayName: a.DisplayName,
		Type:        t,
		Mode:        mode,
	}
}

// joinMode reconciles two field modes (spec.md §4.4). ignore signals
// the whole entry must transition to Ignore; warn signals a widening
// that should be logged but not fail.
func joinMode(a, b Mode, aType, bType Type) (mode Mode, ignore bool, warn bool) {
	if a == b {
		return a, false, false
	}
	if (a == Nullable && b == Required) || (a == Required && b == Nullable) {
		return Nullable, false, false
	}
	bothRecord := aType.Kind == KindRecord && bType.Kind == KindRecord
	if bothRecord && ((a == Nullable && b == Repeated) || (a == Repeated && b == Nullable)) {
		return Repeated, false, true
	}
	return Nullable, true, false
}

// MergeAll folds a sequence of fragments in order, the sequential case
// of the parallel/incremental merge algebra (spec.md §5).
func MergeAll(fragments []*Schema, log *Log) *Schema {
	acc := NewSchema()
	for _, f := range fragments {
		acc = Merge(acc, f, "", log)
	}
	return acc
}

// MergeAllConcurrent partitions fragments into workers contiguous,
// order-preserving slices, folds each partition in its own goroutine,
// then combines the partial results pairwise in partition order so
// display_name stays deterministic across runs (spec.md §5, §9). It
// contains no I/O and no cancellation beyond the passed context; the
// only shared mutation is each goroutine's own Log, concatenated after
// all partitions complete.
func MergeAllConcurrent(ctx context.Context, fragments []*Schema, workers int) (*Schema, Log) {
	if workers < 1 {
		workers = 1
	}
	if workers > len(fragments) {
		workers = len(fragments)
	}
	if workers <= 1 || len(fragments) == 0 {
		var log Log
		return MergeAll(fragments, &log), log
	}

	partitions := partition(fragments, workers)
	partial := make([]*Schema, len(partitions))
	logs := make([]Log, len(partitions))

	type result struct {
		idx    int
		schema *Schema
		log    Log
	}
	results := make(chan result, len(partitions))
	for i, part := range partitions {
		go func(i int, part []*Schema) {
			var log Log
			select {
			case <-ctx.Done():
				results <- result{idx: i, schema: NewSchema(), log: log}
				return
			default:
			}
			results <- result{idx: i, schema: MergeAll(part, &log), log: log}
		}(i, part)
	}
	for range partitions {
		r := <-results
		partial[r.idx] = r.schema
		logs[r.idx] = r.log
	}

	var combinedLog Log
	for _, l := range logs {
		combinedLog = append(combinedLog, l...)
	}
	acc := NewSchema()
	for _, p := range partial {
		acc = Merge(acc, p, "", &combinedLog)
	}
	return acc, combinedLog
}

func partition(fragments []*Schema, workers int) [][]*Schema {
	out := make([][]*Schema, workers)
	n := len(fragments)
	base := n / workers
	rem := n % workers
	idx := 0
	for i := 0; i < workers; i++ {
		size := base
		if i < rem {
			size++
		}
		out[i] = fragments[idx : idx+size]
		idx += size
	}
	return out
}

// isUnresolvedRecord reports whether a type is a record that never
// received a concrete field (spec.md §4.4 REQUIRED inference, §9 open
// question).
func isUnresolvedRecord(t Type) bool {
	if t.Kind == KindEmptyRecord {
		return true
	}
	if t.Kind == KindRecord {
		return t.Fields == nil || t.Fields.Len() == 0
	}
	return false
}

// ApplyInferMode implements the CSV-only REQUIRED inference pass
// (spec.md §4.4): after the final fold, any entry with filled=true
// that isn't an unresolved record becomes REQUIRED.
func ApplyInferMode(s *Schema) {
	for _, k := range s.keys {
		e := s.entries[k]
		if e.Status == Ignore || e.Mode != Nullable {
			continue
		}
		if e.Filled && !isUnresolvedRecord(e.Type) {
			e.Mode = Required
		}
		if e.Type.Kind == KindRecord && e.Type.Fields != nil {
			ApplyInferMode(e.Type.Fields)
		}
	}
}
