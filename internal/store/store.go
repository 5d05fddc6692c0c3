// Package store caches extraction results in a SQLite database
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/alevsk/tagview/internal/types"
)

// ErrNotFound is returned when no extraction is cached for a digest and variant
var ErrNotFound = errors.New("extraction not cached")

// Store is a SQLite backed extraction cache
type Store struct {
	db   *sql.DB
	path string
}

// openDB opens a SQLite database at the given path
func openDB(dbPath string) (*sql.DB, error) {
	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// :memory: databases exist per connection
	sqlDB.SetMaxOpenConns(1)
	return sqlDB, nil
}

// Open opens or creates the cache database at path
func Open(path string) (*Store, error) {
	sqlDB, err := openDB(path)
	if err != nil {
		return nil, err
	}

	s := &Store{db: sqlDB, path: path}
	if err := s.ensureSchemaExists(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// ensureSchemaExists initializes the schema when the extractions table is missing.
// Tables written before results were keyed by variant are dropped and recreated.
func (s *Store) ensureSchemaExists() error {
	var tableName string
	err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='extractions'").Scan(&tableName)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = s.db.Exec(schema)
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to check schema: %w", err)
	}

	var hasVariant int
	err = s.db.QueryRow("SELECT COUNT(*) FROM pragma_table_info('extractions') WHERE name = 'variant'").Scan(&hasVariant)
	if err != nil {
		return fmt.Errorf("failed to check schema: %w", err)
	}
	if hasVariant == 0 {
		if _, err := s.db.Exec("DROP TABLE extractions"); err != nil {
			return fmt.Errorf("failed to drop outdated cache: %w", err)
		}
		_, err = s.db.Exec(schema)
		return err
	}
	return nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// Digest returns the cache key of an image
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns the extraction cached for digest under variant, or ErrNotFound.
// variant identifies the extractor options the result depends on.
func (s *Store) Get(ctx context.Context, digest, variant string) (*types.Extraction, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT extraction FROM extractions WHERE digest = ? AND variant = ?", digest, variant).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query extraction: %w", err)
	}

	var ext types.Extraction
	if err := json.Unmarshal([]byte(raw), &ext); err != nil {
		return nil, fmt.Errorf("failed to decode cached extraction: %w", err)
	}
	return &ext, nil
}

// Put stores ext under digest and variant, replacing any previous entry
func (s *Store) Put(ctx context.Context, digest, variant, source string, ext *types.Extraction) error {
	if ext == nil {
		return fmt.Errorf("nil extraction for %s", digest)
	}
	raw, err := json.Marshal(ext)
	if err != nil {
		return fmt.Errorf("failed to encode extraction: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO extractions (digest, variant, source, status, extraction)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(digest, variant) DO UPDATE SET
			source = excluded.source,
			status = excluded.status,
			extraction = excluded.extraction,
			updated_at = CURRENT_TIMESTAMP
	`, digest, variant, source, int(ext.Status), string(raw))
	if err != nil {
		return fmt.Errorf("failed to store extraction: %w", err)
	}
	return nil
}

// Count returns the number of cached extractions per status
func (s *Store) Count(ctx context.Context) (map[types.Status]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM extractions GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count extractions: %w", err)
	}
	defer rows.Close()

	counts := make(map[types.Status]int)
	for rows.Next() {
		var status, n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[types.Status(status)] = n
	}
	return counts, rows.Err()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
