package engine

import "sort"

// Change is one field-level delta between two canonical schemas
// (spec.md §4.6).
type Change struct {
	Path     string
	Kind     string // "added", "removed", "modified"
	OldType  string
	NewType  string
	OldMode  string
	NewMode  string
	Breaking bool
}

// DiffResult is the structured output of the Diff Engine.
type DiffResult struct {
	Changes  []Change
	Breaking bool
}

// ExitCode follows spec.md §4.6: 1 if any breaking change exists, else
// 0. Exit-code derivation is an external-collaborator concern, but the
// rule is one line and cheap for callers to reuse.
func (r DiffResult) ExitCode() int {
	if r.Breaking {
		return 1
	}
	return 0
}

// Diff computes the field-level delta between old and new canonical
// schemas and classifies each change as breaking or not (spec.md
// §4.6). strict flags every change, including non-breaking ones, as
// breaking. The result is stable-ordered by canonical path.
func Diff(old, new []Field, strict bool) DiffResult {
	return diffLevel("", old, new, strict)
}

func diffLevel(prefix string, old, new []Field, strict bool) DiffResult {
	oldByKey := indexFields(old)
	newByKey := indexFields(new)
	keys := unionSortedKeys(oldByKey, newByKey)

	var changes []Change
	for _, k := range keys {
		of, hasOld := oldByKey[k]
		nf, hasNew := newByKey[k]
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}

		switch {
		case hasOld && !hasNew:
			changes = append(changes, Change{
				Path: path, Kind: "removed", OldType: of.Type, OldMode: of.Mode, Breaking: true,
			})

		case !hasOld && hasNew:
			changes = append(changes, Change{
				Path: path, Kind: "added", NewType: nf.Type, NewMode: nf.Mode,
				Breaking: nf.Mode == "REQUIRED",
			})

		default:
			typeBreaking := classifyTypeChange(of.Type, nf.Type)
			modeBreaking := classifyModeChange(of.Mode, nf.Mode)
			changed := of.Type != nf.Type || of.Mode != nf.Mode

			var nested []Change
			nestedBreaking := false
			if of.Type == "RECORD" && nf.Type == "RECORD" {
				sub := diffLevel(path, of.Fields, nf.Fields, strict)
				nested = sub.Changes
				nestedBreaking = sub.Breaking
			}

			if changed {
				changes = append(changes, Change{
					Path: path, Kind: "modified",
					OldType: of.Type, NewType: nf.Type,
					OldMode: of.Mode, NewMode: nf.Mode,
					Breaking: typeBreaking || modeBreaking || nestedBreaking,
				})
			}
			changes = append(changes, nested...)
		}
	}

	breaking := false
	for i := range changes {
		if strict {
			changes[i].Breaking = true
		}
		if changes[i].Breaking {
			breaking = true
		}
	}
	return DiffResult{Changes: changes, Breaking: breaking}
}

func classifyTypeChange(old, new string) bool {
	if old == new {
		return false
	}
	if old == "INTEGER" && new == "FLOAT" {
		return false
	}
	if new == "STRING" {
		return false
	}
	return true
}

func classifyModeChange(old, new string) bool {
	if old == new {
		return false
	}
	if old == "REPEATED" || new == "REPEATED" {
		return true
	}
	if old == "REQUIRED" && new == "NULLABLE" {
		return false
	}
	if old == "NULLABLE" && new == "REQUIRED" {
		return true
	}
	return false
}

func indexFields(fields []Field) map[string]Field {
	out := make(map[string]Field, len(fields))
	for _, f := range fields {
		out[CanonicalKey(f.Name)] = f
	}
	return out
}

func unionSortedKeys(a, b map[string]Field) []string {
	seen := make(map[string]bool, len(a)+len(b))
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for k := range b {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
