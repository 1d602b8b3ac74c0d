package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PgSchema holds one table per collection.
const PgSchema = "vectors"

// PgVector is an Index backed by PostgreSQL with the pgvector extension.
// Each collection is a table in PgSchema with an HNSW cosine index. The
// connection pool is owned by the caller.
type PgVector struct {
	db *sql.DB
}

// NewPgVector creates a pgvector index over an open database.
func NewPgVector(db *sql.DB) *PgVector {
	return &PgVector{db: db}
}

func (s *PgVector) Exists(ctx context.Context, collection string) (bool, error) {
	if err := ValidateCollection(collection); err != nil {
		return false, err
	}

	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = $1 AND table_name = $2
		)`, PgSchema, collection,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check collection: %w", err)
	}
	return exists, nil
}

func (s *PgVector) Create(ctx context.Context, collection string, dimension int) error {
	if err := ValidateCollection(collection); err != nil {
		return err
	}
	if dimension <= 0 {
		return fmt.Errorf("%w: dimension %d", ErrDimensionMismatch, dimension)
	}

	table := pgTable(collection)
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, PgSchema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			embedding vector(%d) NOT NULL,
			payload JSONB NOT NULL DEFAULT '{}',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, table, dimension),
		fmt.Sprintf(
			`CREATE INDEX IF NOT EXISTS idx_%s_embedding ON %s USING hnsw (embedding vector_cosine_ops)`,
			collection, table,
		),
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create collection %s: %w", collection, err)
		}
	}
	return nil
}

func (s *PgVector) Count(ctx context.Context, collection string) (int, error) {
	exists, err := s.Exists(ctx, collection)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, pgTable(collection))
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count collection: %w", err)
	}
	return count, nil
}

// Upsert writes points in a single transaction, replacing existing IDs.
func (s *PgVector) Upsert(ctx context.Context, collection string, points []Point) error {
	if err := ValidateCollection(collection); err != nil {
		return err
	}
	if len(points) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO %s (id, embedding, payload)
		VALUES ($1, $2::vector, $3)
		ON CONFLICT (id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			payload = EXCLUDED.payload,
			updated_at = NOW()`, pgTable(collection))

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		payload, err := json.Marshal(p.Payload)
		if err != nil {
			return fmt.Errorf("marshal payload %s: %w", p.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, p.ID, FormatVector(p.Vector), payload); err != nil {
			return fmt.Errorf("upsert point %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

func (s *PgVector) Query(ctx context.Context, collection string, vector []float64, limit int) ([]Hit, error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, payload, 1 - (embedding <=> $1::vector) AS score
		FROM %s
		ORDER BY embedding <=> $1::vector
		LIMIT $2`, pgTable(collection))

	rows, err := s.db.QueryContext(ctx, query, FormatVector(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}
	defer rows.Close()

	hits := make([]Hit, 0, limit)
	for rows.Next() {
		var (
			hit     Hit
			payload []byte
		)
		if err := rows.Scan(&hit.ID, &payload, &hit.Score); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &hit.Payload); err != nil {
				return nil, fmt.Errorf("decode payload %s: %w", hit.ID, err)
			}
		}
		hits = append(hits, hit)
	}

	return hits, rows.Err()
}

// Close does not close the shared pool.
func (s *PgVector) Close() error {
	return nil
}

// FormatVector renders v in pgvector text form: "[0.1,0.2,0.3]".
func FormatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func pgTable(collection string) string {
	return PgSchema + "." + collection
}
