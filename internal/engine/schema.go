package engine

import "strings"

// Schema is an order-preserving map from canonical key to SchemaEntry
// (spec.md §3). Insertion order is retained so callers can opt into
// input field order instead of lexicographic sort at flatten time.
type Schema struct {
	keys    []string
	entries map[string]*SchemaEntry
}

// NewSchema returns an empty schema, the identity element of Merge.
func NewSchema() *Schema {
	return &Schema{entries: make(map[string]*SchemaEntry)}
}

// CanonicalKey folds a display name to its identity key (spec.md §3).
func CanonicalKey(name string) string {
	return strings.ToLower(name)
}

// Get returns the entry for a canonical key, if present.
func (s *Schema) Get(key string) (*SchemaEntry, bool) {
	e, ok := s.entries[key]
	return e, ok
}

// Set inserts or overwrites the entry for key, preserving first-seen
// insertion order.
func (s *Schema) Set(key string, entry *SchemaEntry) {
	if _, exists := s.entries[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.entries[key] = entry
}

// Keys returns canonical keys in insertion order.
func (s *Schema) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of fields, including Ignore-status ones.
func (s *Schema) Len() int {
	return len(s.keys)
}
