package store

import (
	"context"
	"testing"

	"github.com/bqschema/infer/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveAndLoad(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	schema := []engine.Field{{Name: "id", Type: "INTEGER", Mode: "REQUIRED"}}

	v, err := s.Save(ctx, "events", schema, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	loaded, err := s.Load(ctx, "events")
	require.NoError(t, err)
	assert.Equal(t, schema, loaded.Schema)
}

func TestMemoryStore_SaveIncrementsVersion(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	schema1 := []engine.Field{{Name: "id", Type: "INTEGER", Mode: "NULLABLE"}}
	schema2 := []engine.Field{{Name: "id", Type: "INTEGER", Mode: "REQUIRED"}}

	_, err := s.Save(ctx, "events", schema1, nil)
	require.NoError(t, err)
	v2, err := s.Save(ctx, "events", schema2, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v2)

	latest, err := s.Load(ctx, "events")
	require.NoError(t, err)
	assert.Equal(t, schema2, latest.Schema)
}

func TestMemoryStore_LoadVersion(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	schema1 := []engine.Field{{Name: "id", Type: "INTEGER", Mode: "NULLABLE"}}
	schema2 := []engine.Field{{Name: "id", Type: "INTEGER", Mode: "REQUIRED"}}

	_, err := s.Save(ctx, "events", schema1, nil)
	require.NoError(t, err)
	_, err = s.Save(ctx, "events", schema2, nil)
	require.NoError(t, err)

	v1, err := s.LoadVersion(ctx, "events", 1)
	require.NoError(t, err)
	assert.Equal(t, schema1, v1.Schema)
}

func TestMemoryStore_History(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.Save(ctx, "events", []engine.Field{{Name: "a", Type: "STRING", Mode: "NULLABLE"}}, nil)
	require.NoError(t, err)
	_, err = s.Save(ctx, "events", []engine.Field{{Name: "a", Type: "STRING", Mode: "REQUIRED"}}, nil)
	require.NoError(t, err)

	history, err := s.History(ctx, "events")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, int64(1), history[0].Version)
	assert.Equal(t, int64(2), history[1].Version)
}

func TestMemoryStore_LoadUnknownSchemaErrors(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Load(context.Background(), "missing")
	assert.Error(t, err)
}
