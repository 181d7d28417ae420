package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"phetools/internal/template"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var _ Repository = (*SQLite)(nil)

// SQLite persists cohort templates to a single table as JSON blobs. Reads are
// served from the embedded in-memory repository; the table is rewritten after
// every successful write.
type SQLite struct {
	*Memory
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewSQLite opens (or creates) a SQLite-backed repository at path.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = "phetools.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS cohorts (
		name TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create cohorts table: %w", err)
	}
	s := &SQLite{Memory: NewMemory(), db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLite) load() error {
	rows, err := s.db.Query(`SELECT name, payload FROM cohorts`)
	if err != nil {
		return fmt.Errorf("select cohorts: %w", err)
	}
	defer func() { _ = rows.Close() }()
	state := make(map[string][]byte)
	for rows.Next() {
		var name string
		var payload []byte
		if err := rows.Scan(&name, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		state[name] = payload
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate cohorts: %w", err)
	}
	s.importState(state)
	return nil
}

func (s *SQLite) persist(ctx context.Context) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.exportState()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM cohorts`); err != nil {
		retErr = fmt.Errorf("clear cohorts: %w", err)
		return retErr
	}
	for name, payload := range state {
		if _, err := tx.ExecContext(ctx, `INSERT INTO cohorts(name,payload) VALUES(?,?) ON CONFLICT(name) DO UPDATE SET payload=excluded.payload`, name, payload); err != nil {
			retErr = fmt.Errorf("upsert %s: %w", name, err)
			return retErr
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	return nil
}

// Save stores the template in memory, then snapshots to SQLite.
func (s *SQLite) Save(ctx context.Context, name string, tpl template.TemplateDTO) error {
	if err := s.Memory.Save(ctx, name, tpl); err != nil {
		return err
	}
	return s.persist(ctx)
}

// Delete removes the cohort, then snapshots to SQLite.
func (s *SQLite) Delete(ctx context.Context, name string) error {
	if err := s.Memory.Delete(ctx, name); err != nil {
		return err
	}
	return s.persist(ctx)
}

func (s *SQLite) Close() error { return s.db.Close() }

// Path reports the backing file location.
func (s *SQLite) Path() string { return s.path }
