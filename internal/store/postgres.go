package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bqschema/infer/internal/engine"
	_ "github.com/lib/pq"
)

// PostgresStore persists schema versions in a Postgres table, keyed by
// name and an auto-incrementing version number per name. Grounded on
// internal/storage/postgres.go's connection-string assembly,
// db.Ping() on open, and CREATE TABLE IF NOT EXISTS pattern.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

func (p *PostgresStore) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_versions (
		name VARCHAR(255) NOT NULL,
		version BIGINT NOT NULL,
		schema JSONB NOT NULL,
		log JSONB,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (name, version)
	)`

	_, err := p.db.Exec(query)
	return err
}

func (p *PostgresStore) Save(ctx context.Context, name string, schema engine.CanonicalSchema, log []engine.LogEntry) (int64, error) {
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal schema: %w", err)
	}
	logJSON, err := json.Marshal(log)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal log: %w", err)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var next int64
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) + 1 FROM schema_versions WHERE name = $1`, name).Scan(&next)
	if err != nil {
		return 0, err
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO schema_versions (name, version, schema, log, created_at)
	VALUES ($1, $2, $3, $4, $5)`, name, next, schemaJSON, logJSON, time.Now())
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return next, nil
}

func (p *PostgresStore) Load(ctx context.Context, name string) (SchemaVersion, error) {
	query := `
	SELECT version, schema, log, created_at FROM schema_versions
	WHERE name = $1 ORDER BY version DESC LIMIT 1`
	return p.scanOne(p.db.QueryRowContext(ctx, query, name), name)
}

func (p *PostgresStore) LoadVersion(ctx context.Context, name string, version int64) (SchemaVersion, error) {
	query := `SELECT version, schema, log, created_at FROM schema_versions WHERE name = $1 AND version = $2`
	return p.scanOne(p.db.QueryRowContext(ctx, query, name, version), name)
}

func (p *PostgresStore) scanOne(row *sql.Row, name string) (SchemaVersion, error) {
	var v SchemaVersion
	var schemaJSON, logJSON []byte
	v.Name = name

	err := row.Scan(&v.Version, &schemaJSON, &logJSON, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return SchemaVersion{}, fmt.Errorf("schema %q not found", name)
	}
	if err != nil {
		return SchemaVersion{}, err
	}
	if err := json.Unmarshal(schemaJSON, &v.Schema); err != nil {
		return SchemaVersion{}, fmt.Errorf("failed to unmarshal schema: %w", err)
	}
	if len(logJSON) > 0 {
		if err := json.Unmarshal(logJSON, &v.Log); err != nil {
			return SchemaVersion{}, fmt.Errorf("failed to unmarshal log: %w", err)
		}
	}
	return v, nil
}

func (p *PostgresStore) History(ctx context.Context, name string) ([]SchemaVersion, error) {
	query := `SELECT version, schema, log, created_at FROM schema_versions WHERE name = $1 ORDER BY version ASC`
	rows, err := p.db.QueryContext(ctx, query, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SchemaVersion
	for rows.Next() {
		var v SchemaVersion
		var schemaJSON, logJSON []byte
		v.Name = name
		if err := rows.Scan(&v.Version, &schemaJSON, &logJSON, &v.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(schemaJSON, &v.Schema); err != nil {
			return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
		}
		if len(logJSON) > 0 {
			if err := json.Unmarshal(logJSON, &v.Log); err != nil {
				return nil, fmt.Errorf("failed to unmarshal log: %w", err)
			}
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("schema %q not found", name)
	}
	return out, nil
}

func (p *PostgresStore) Close() error {
	return p.db.Close()
}
