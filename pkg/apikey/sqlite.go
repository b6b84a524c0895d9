package apikey

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/openlocale/lingogate/pkg/quota"
)

// Store is the Principal Quota Directory over a local SQLite database. API
// keys are provisioned out of band; this process only reads them.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open api key db: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS api_keys (
		api_key TEXT PRIMARY KEY,
		req_limit INTEGER NOT NULL,
		char_limit INTEGER
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate api key db: %w", err)
	}
	return nil
}

// Lookup returns the limit overrides for one API key, or (nil, nil) when the
// key is not provisioned.
func (s *Store) Lookup(ctx context.Context, apiKey string) (*quota.PrincipalLimits, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT req_limit, char_limit FROM api_keys WHERE api_key = ?", apiKey)

	var limits quota.PrincipalLimits
	var charLimit sql.NullInt64
	if err := row.Scan(&limits.RequestRate, &charLimit); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("api key lookup: %w", err)
	}
	if charLimit.Valid {
		limits.CharLimit = &charLimit.Int64
	}
	return &limits, nil
}

// Add provisions a key. Used by operators and tests; the request path never
// writes.
func (s *Store) Add(ctx context.Context, apiKey string, reqLimit int64, charLimit *int64) error {
	var cl sql.NullInt64
	if charLimit != nil {
		cl = sql.NullInt64{Int64: *charLimit, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO api_keys (api_key, req_limit, char_limit) VALUES (?, ?, ?)",
		apiKey, reqLimit, cl)
	if err != nil {
		return fmt.Errorf("add api key: %w", err)
	}
	return nil
}

// Remove deletes a provisioned key.
func (s *Store) Remove(ctx context.Context, apiKey string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM api_keys WHERE api_key = ?", apiKey); err != nil {
		return fmt.Errorf("remove api key: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
