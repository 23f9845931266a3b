// Package store persists canonical schemas produced by internal/engine
// across process runs, keeping a version history per schema name.
package store

import (
	"context"
	"time"

	"github.com/bqschema/infer/internal/engine"
)

// SchemaVersion is one saved snapshot of a named schema.
type SchemaVersion struct {
	Name      string                 `json:"name"`
	Version   int64                  `json:"version"`
	Schema    engine.CanonicalSchema `json:"schema"`
	CreatedAt time.Time              `json:"created_at"`
	Log       []engine.LogEntry      `json:"log,omitempty"`
}

// SchemaStore persists canonical schemas under a name, keeping every
// version ever saved so callers can diff across history. Grounded on
// internal/storage/repository.go's narrow, one-verb-per-method
// repository interface.
type SchemaStore interface {
	// Save appends a new version for name and returns its version
	// number, one greater than the highest existing version for name,
	// starting at 1.
	Save(ctx context.Context, name string, schema engine.CanonicalSchema, log []engine.LogEntry) (int64, error)

	// Load returns the latest version for name.
	Load(ctx context.Context, name string) (SchemaVersion, error)

	// LoadVersion returns a specific version for name.
	LoadVersion(ctx context.Context, name string, version int64) (SchemaVersion, error)

	// History returns every saved version for name, oldest first.
	History(ctx context.Context, name string) ([]SchemaVersion, error)

	Close() error
}
