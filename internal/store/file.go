package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bqschema/infer/internal/engine"
)

// FileVersionStore persists schema versions as one JSON file per named
// schema under a base directory, each file holding the full version
// history. Grounded on the teacher's Delta-log metadata file: a single
// JSON document per table, rewritten atomically on every save.
type FileVersionStore struct {
	basePath string
	mutex    sync.Mutex
}

func NewFileVersionStore(basePath string) (*FileVersionStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FileVersionStore{basePath: basePath}, nil
}

func (f *FileVersionStore) pathFor(name string) string {
	return filepath.Join(f.basePath, name+".json")
}

func (f *FileVersionStore) readAll(name string) ([]SchemaVersion, error) {
	data, err := os.ReadFile(f.pathFor(name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	var versions []SchemaVersion
	if err := json.Unmarshal(data, &versions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema file: %w", err)
	}
	return versions, nil
}

func (f *FileVersionStore) writeAll(name string, versions []SchemaVersion) error {
	data, err := json.MarshalIndent(versions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema file: %w", err)
	}
	tmp := f.pathFor(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}
	return os.Rename(tmp, f.pathFor(name))
}

func (f *FileVersionStore) Save(ctx context.Context, name string, schema engine.CanonicalSchema, log []engine.LogEntry) (int64, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	versions, err := f.readAll(name)
	if err != nil {
		return 0, err
	}

	v := SchemaVersion{
		Name:      name,
		Version:   int64(len(versions)) + 1,
		Schema:    schema,
		CreatedAt: time.Now(),
		Log:       log,
	}
	versions = append(versions, v)

	if err := f.writeAll(name, versions); err != nil {
		return 0, err
	}
	return v.Version, nil
}

func (f *FileVersionStore) Load(ctx context.Context, name string) (SchemaVersion, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	versions, err := f.readAll(name)
	if err != nil {
		return SchemaVersion{}, err
	}
	if len(versions) == 0 {
		return SchemaVersion{}, fmt.Errorf("schema %q not found", name)
	}
	return versions[len(versions)-1], nil
}

func (f *FileVersionStore) LoadVersion(ctx context.Context, name string, version int64) (SchemaVersion, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	versions, err := f.readAll(name)
	if err != nil {
		return SchemaVersion{}, err
	}
	for _, v := range versions {
		if v.Version == version {
			return v, nil
		}
	}
	return SchemaVersion{}, fmt.Errorf("schema %q version %d not found", name, version)
}

func (f *FileVersionStore) History(ctx context.Context, name string) ([]SchemaVersion, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	versions, err := f.readAll(name)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("schema %q not found", name)
	}
	return versions, nil
}

func (f *FileVersionStore) Close() error {
	return nil
}
