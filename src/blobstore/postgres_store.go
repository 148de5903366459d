package blobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements BlobStore over a single table: one row per blob,
// bytea payload, jsonb metadata filtered with containment queries.
type PostgresStore struct {
	DB *pgxpool.Pool
}

// NewPostgresStore connects to Postgres and returns a Postgres-backed
// BlobStore implementation.
func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	return &PostgresStore{DB: db}, nil
}

func (ps *PostgresStore) Put(ctx context.Context, content []byte, filename string, metadata map[string]any) (string, error) {
	now := time.Now().UTC()
	meta := EnsureCreatedAt(CloneMetadata(metadata), now)
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encode metadata for %q: %w", filename, err)
	}
	id := uuid.NewString()
	_, err = ps.DB.Exec(ctx, `
                INSERT INTO chunk_blobs (id, filename, content, metadata, length, upload_date)
                VALUES ($1, $2, $3, $4::jsonb, $5, $6)
        `, id, filename, content, string(metaJSON), len(content), now)
	if err != nil {
		return "", fmt.Errorf("insert blob %q: %w", filename, err)
	}
	return id, nil
}

func (ps *PostgresStore) Get(ctx context.Context, blobID string) ([]byte, error) {
	var content []byte
	err := ps.DB.QueryRow(ctx, `SELECT content FROM chunk_blobs WHERE id = $1`, blobID).Scan(&content)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, blobID)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch blob %s: %w", blobID, err)
	}
	return content, nil
}

func (ps *PostgresStore) List(ctx context.Context, filter map[string]any) ([]BlobInfo, error) {
	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}
	if filter == nil {
		filterJSON = []byte("{}")
	}
	rows, err := ps.DB.Query(ctx, `
                SELECT id, filename, length, upload_date, metadata::text
                FROM chunk_blobs
                WHERE metadata @> $1::jsonb
        `, string(filterJSON))
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}
	defer rows.Close()

	var infos []BlobInfo
	for rows.Next() {
		var info BlobInfo
		var metaText string
		if err := rows.Scan(&info.ID, &info.Filename, &info.Length, &info.UploadDate, &metaText); err != nil {
			return nil, err
		}
		meta := map[string]any{}
		if err := json.Unmarshal([]byte(metaText), &meta); err != nil {
			return nil, fmt.Errorf("decode metadata of %s: %w", info.ID, err)
		}
		info.Metadata = meta
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

func (ps *PostgresStore) Delete(ctx context.Context, blobID string) (bool, error) {
	tag, err := ps.DB.Exec(ctx, `DELETE FROM chunk_blobs WHERE id = $1`, blobID)
	if err != nil {
		return false, fmt.Errorf("delete blob %s: %w", blobID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// CreateSchema ensures the blob table and its metadata indexes exist.
func (ps *PostgresStore) CreateSchema(ctx context.Context, schemaPath string) error {
	schema := defaultPostgresSchema
	if schemaPath != "" {
		data, err := os.ReadFile(schemaPath)
		if err != nil {
			return fmt.Errorf("failed to read schema file: %w", err)
		}
		schema = string(data)
	}
	if _, err := ps.DB.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Close releases the underlying Postgres connection pool.
func (ps *PostgresStore) Close() error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	ps.DB.Close()
	return nil
}

const defaultPostgresSchema = `
CREATE TABLE IF NOT EXISTS chunk_blobs (
    id UUID PRIMARY KEY,
    filename TEXT NOT NULL,
    content BYTEA NOT NULL,
    metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
    length BIGINT NOT NULL,
    upload_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS chunk_blobs_content_id_idx ON chunk_blobs ((metadata->>'content_id'));
CREATE INDEX IF NOT EXISTS chunk_blobs_metadata_idx ON chunk_blobs USING gin (metadata);
`
