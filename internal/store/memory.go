package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bqschema/infer/internal/engine"
)

// MemoryStore is an in-process SchemaStore backed by a mutex-guarded
// map, grounded on internal/storage/memory.go's sync.RWMutex pattern.
// Versions are never compacted; History returns every one ever saved.
type MemoryStore struct {
	versions map[string][]SchemaVersion
	mutex    sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{versions: make(map[string][]SchemaVersion)}
}

func (m *MemoryStore) Save(ctx context.Context, name string, schema engine.CanonicalSchema, log []engine.LogEntry) (int64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	v := SchemaVersion{
		Name:      name,
		Version:   int64(len(m.versions[name])) + 1,
		Schema:    schema,
		CreatedAt: time.Now(),
		Log:       log,
	}
	m.versions[name] = append(m.versions[name], v)
	return v.Version, nil
}

func (m *MemoryStore) Load(ctx context.Context, name string) (SchemaVersion, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	vs := m.versions[name]
	if len(vs) == 0 {
		return SchemaVersion{}, fmt.Errorf("schema %q not found", name)
	}
	return vs[len(vs)-1], nil
}

func (m *MemoryStore) LoadVersion(ctx context.Context, name string, version int64) (SchemaVersion, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, v := range m.versions[name] {
		if v.Version == version {
			return v, nil
		}
	}
	return SchemaVersion{}, fmt.Errorf("schema %q version %d not found", name, version)
}

func (m *MemoryStore) History(ctx context.Context, name string) ([]SchemaVersion, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	vs := m.versions[name]
	if len(vs) == 0 {
		return nil, fmt.Errorf("schema %q not found", name)
	}
	out := make([]SchemaVersion, len(vs))
	copy(out, vs)
	return out, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
