package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS collections (
	name TEXT PRIMARY KEY,
	dimension INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS points (
	collection TEXT NOT NULL REFERENCES collections(name) ON DELETE CASCADE,
	id TEXT NOT NULL,
	embedding TEXT NOT NULL,
	payload TEXT NOT NULL DEFAULT '{}',
	PRIMARY KEY (collection, id)
);`

// SQLite is an embedded Index stored in a single database file. Queries scan
// the collection and rank by cosine similarity in process, which suits the
// small reference collections this service indexes.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Exists(ctx context.Context, collection string) (bool, error) {
	_, err := s.dimension(ctx, collection)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, err
}

func (s *SQLite) Create(ctx context.Context, collection string, dimension int) error {
	if err := ValidateCollection(collection); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO collections (name, dimension) VALUES (?, ?)`,
		collection, dimension,
	)
	if err != nil {
		return fmt.Errorf("create collection %s: %w", collection, err)
	}
	return nil
}

func (s *SQLite) Count(ctx context.Context, collection string) (int, error) {
	if ok, err := s.Exists(ctx, collection); err != nil {
		return 0, err
	} else if !ok {
		return 0, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM points WHERE collection = ?`, collection,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count collection: %w", err)
	}
	return count, nil
}

func (s *SQLite) Upsert(ctx context.Context, collection string, points []Point) error {
	dim, err := s.dimension(ctx, collection)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	for _, p := range points {
		if len(p.Vector) != dim {
			return fmt.Errorf("%w: point %s has %d, collection has %d", ErrDimensionMismatch, p.ID, len(p.Vector), dim)
		}

		embedding, err := json.Marshal(p.Vector)
		if err != nil {
			return fmt.Errorf("marshal embedding %s: %w", p.ID, err)
		}
		payload, err := json.Marshal(p.Payload)
		if err != nil {
			return fmt.Errorf("marshal payload %s: %w", p.ID, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO points (collection, id, embedding, payload) VALUES (?, ?, ?, ?)
			ON CONFLICT (collection, id) DO UPDATE SET
				embedding = excluded.embedding,
				payload = excluded.payload`,
			collection, p.ID, string(embedding), string(payload),
		)
		if err != nil {
			return fmt.Errorf("upsert point %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLite) Query(ctx context.Context, collection string, vector []float64, limit int) ([]Hit, error) {
	dim, err := s.dimension(ctx, collection)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	if err != nil {
		return nil, err
	}
	if len(vector) != dim {
		return nil, fmt.Errorf("%w: query has %d, collection has %d", ErrDimensionMismatch, len(vector), dim)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, embedding, payload FROM points WHERE collection = ?`, collection,
	)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var (
			p                  Point
			embedding, payload string
		)
		if err := rows.Scan(&p.ID, &embedding, &payload); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		if err := json.Unmarshal([]byte(embedding), &p.Vector); err != nil {
			return nil, fmt.Errorf("decode embedding %s: %w", p.ID, err)
		}
		if err := json.Unmarshal([]byte(payload), &p.Payload); err != nil {
			return nil, fmt.Errorf("decode payload %s: %w", p.ID, err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rank(points, vector, limit), nil
}

// Close closes the database file.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) dimension(ctx context.Context, collection string) (int, error) {
	var dim int
	err := s.db.QueryRowContext(ctx,
		`SELECT dimension FROM collections WHERE name = ?`, collection,
	).Scan(&dim)
	return dim, err
}
