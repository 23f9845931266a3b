package engine

import (
	"sort"
)

// Field is the canonical output shape (spec.md §3's BqSchemaField):
// {name, type, mode, fields?}. Fields is non-nil exactly when
// Type == "RECORD".
type Field struct {
	Name   string
	Type   string
	Mode   string
	Fields []Field
}

// FlattenOptions configures the projection from the internal schema to
// the canonical output (spec.md §6 configuration table).
type FlattenOptions struct {
	KeepNulls              bool
	SanitizeNames          bool
	PreserveInputSortOrder bool
}

// Flatten walks the internal schema to produce the canonical output
// (spec.md §4.5).
func Flatten(s *Schema, opts FlattenOptions) []Field {
	keys := orderedKeys(s, opts.PreserveInputSortOrder)

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		e := s.entries[k]
		if e.Status == Ignore {
			continue
		}
		if e.Status == Soft && !opts.KeepNulls {
			// Never hardened and the caller didn't ask to keep
			// placeholder entries (spec.md §6 "keep_nulls").
			continue
		}
		fields = append(fields, flattenEntry(e, opts))
	}

	if opts.SanitizeNames {
		sanitizeCollisions(fields)
	}
	return fields
}

func orderedKeys(s *Schema, preserveOrder bool) []string {
	keys := s.Keys()
	if preserveOrder {
		return keys
	}
	sort.Strings(keys)
	return keys
}

func flattenEntry(e *SchemaEntry, opts FlattenOptions) Field {
	f := Field{Name: e.DisplayName, Mode: e.Mode.String()}

	if e.Status == Soft {
		// Placeholder kept only because KeepNulls is set (invariant:
		// Soft implies a placeholder Kind — see DESIGN.md).
		if e.Type.Kind == KindEmptyRecord {
			f.Type = "RECORD"
			f.Fields = []Field{}
		} else {
			f.Type = "STRING"
		}
		return f
	}

	switch e.Type.Kind {
	case KindBoolean, KindQBoolean:
		f.Type = "BOOLEAN"
	case KindInteger, KindQInteger:
		f.Type = "INTEGER"
	case KindFloat, KindQFloat:
		f.Type = "FLOAT"
	case KindString:
		f.Type = "STRING"
	case KindDate:
		f.Type = "DATE"
	case KindTime:
		f.Type = "TIME"
	case KindTimestamp:
		f.Type = "TIMESTAMP"
	case KindRecord:
		f.Type = "RECORD"
		if e.Type.Fields != nil {
			f.Fields = Flatten(e.Type.Fields, opts)
		} else {
			f.Fields = []Field{}
		}
	default:
		f.Type = "STRING"
	}
	return f
}

// sanitizeNameChar replaces characters outside [A-Za-z0-9_] with '_'
// and truncates to 128 bytes (spec.md §4.5). It is idempotent (spec.md
// §8 property 8): running it twice yields the same result.
func sanitizeNameChar(name string) string {
	b := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_':
			b = append(b, c)
		default:
			b = append(b, '_')
		}
	}
	if len(b) > 128 {
		b = b[:128]
	}
	return string(b)
}

func sanitizeCollisions(fields []Field) {
	seen := make(map[string]int)
	for i := range fields {
		base := sanitizeNameChar(fields[i].Name)
		name := base
		if n, ok := seen[base]; ok {
			n++
			name = disambiguate(base, n)
			seen[base] = n
		} else {
			seen[base] = 1
		}
		fields[i].Name = name
		if fields[i].Type == "RECORD" {
			sanitizeCollisions(fields[i].Fields)
		}
	}
}

func disambiguate(base string, n int) string {
	suffix := "_" + itoa(n)
	max := 128 - len(suffix)
	if max < 0 {
		max = 0
	}
	truncated := base
	if len(truncated) > max {
		truncated = truncated[:max]
	}
	return truncated + suffix
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	return string(b)
}
