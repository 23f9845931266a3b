// Package engine implements the schema inference, merge, diff, and
// validation algebra described in the project specification: it turns a
// corpus of semi-structured records into a BigQuery-shaped schema,
// reasons about compatibility between two such schemas, and checks new
// records against one.
package engine

import "fmt"

// Kind is the internal inference vocabulary (spec.md §3), richer than
// the canonical output vocabulary so the Merger can distinguish
// "probably stringly-typed" values from natively typed ones.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindInteger
	KindFloat
	KindString
	KindDate
	KindTime
	KindTimestamp
	KindRecord
	KindQBoolean
	KindQInteger
	KindQFloat
	KindEmptyArray
	KindEmptyRecord
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBoolean:
		return "Boolean"
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindDate:
		return "Date"
	case KindTime:
		return "Time"
	case KindTimestamp:
		return "Timestamp"
	case KindRecord:
		return "Record"
	case KindQBoolean:
		return "QBoolean"
	case KindQInteger:
		return "QInteger"
	case KindQFloat:
		return "QFloat"
	case KindEmptyArray:
		return "EmptyArray"
	case KindEmptyRecord:
		return "EmptyRecord"
	default:
		return "Unknown"
	}
}

// isPlaceholder reports whether a kind is "soft" — freely overwritten
// by any concrete observation (spec.md §3).
func (k Kind) isPlaceholder() bool {
	return k == KindNull || k == KindEmptyArray || k == KindEmptyRecord
}

func (k Kind) isQuoted() bool {
	return k == KindQBoolean || k == KindQInteger || k == KindQFloat
}

func (k Kind) isTemporal() bool {
	return k == KindDate || k == KindTime || k == KindTimestamp
}

// Type is one internal-vocabulary type. Fields is only meaningful when
// Kind == KindRecord, carrying the nested schema recursively.
type Type struct {
	Kind   Kind
	Fields *Schema
}

func recordType(s *Schema) Type { return Type{Kind: KindRecord, Fields: s} }

func (t Type) String() string {
	if t.Kind == KindRecord {
		return fmt.Sprintf("Record(%d fields)", t.Fields.Len())
	}
	return t.Kind.String()
}

// Mode is one of the three BigQuery field modes.
type Mode int

const (
	Nullable Mode = iota
	Required
	Repeated
)

func (m Mode) String() string {
	switch m {
	case Required:
		return "REQUIRED"
	case Repeated:
		return "REPEATED"
	default:
		return "NULLABLE"
	}
}

// Status governs whether an entry's type may still be overwritten
// (spec.md §3).
type Status int

const (
	Hard Status = iota
	Soft
	Ignore
)

// SchemaEntry is one inferred field.
type SchemaEntry struct {
	Status      Status
	Filled      bool
	DisplayName string
	Type        Type
	Mode        Mode
}

// CanonicalSchema is the flattened, canonical-output form of a schema
// — what the Flattener produces and what the Schema Store persists.
type CanonicalSchema = []Field

// LogEntry is one non-fatal diagnostic raised while reducing or
// merging. The engine never logs directly (spec.md §5/§7); it
// accumulates entries for the caller to forward.
type LogEntry struct {
	Path    string
	Message string
}

// Log is an unordered collection of diagnostics (spec.md §5: "the log
// is an unordered collection"). Concatenation on merge is simple
// append.
type Log []LogEntry

func (l *Log) add(path, format string, args ...interface{}) {
	*l = append(*l, LogEntry{Path: path, Message: fmt.Sprintf(format, args...)})
}
