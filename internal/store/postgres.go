package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"phetools/internal/template"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

var _ Repository = (*Postgres)(nil)

const (
	postgresDriver = "pgx"
	// Default DSN keeps parity with Open defaults while allowing overrides via env.
	defaultPostgresDSN = "postgres://localhost/phetools?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Postgres mirrors the in-memory semantics while snapshotting cohort
// templates to a Postgres table after every successful write.
type Postgres struct {
	*Memory
	db *sql.DB
	mu sync.Mutex
}

// NewPostgres opens a Postgres-backed repository using the provided DSN
// (falls back to a local default) and hydrates the in-memory state from any
// existing rows.
func NewPostgres(dsn string) (*Postgres, error) {
	if dsn == "" {
		dsn = defaultPostgresDSN
	}
	openMu.Lock()
	db, err := sqlOpen(postgresDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS cohorts (
		name TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("ensure cohorts table: %w", err)
	}
	p := &Postgres{Memory: NewMemory(), db: db}
	if err := p.load(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Postgres) load(ctx context.Context) error {
	rows, err := p.db.QueryContext(ctx, `SELECT name, payload FROM cohorts`)
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
	p.importState(state)
	return nil
}

func (p *Postgres) persist(ctx context.Context) (retErr error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	state := p.exportState()
	tx, err := p.db.BeginTx(ctx, nil)
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
		if _, err := tx.ExecContext(ctx, `INSERT INTO cohorts(name,payload) VALUES($1,$2) ON CONFLICT(name) DO UPDATE SET payload=excluded.payload`, name, payload); err != nil {
			retErr = fmt.Errorf("upsert %s: %w", name, err)
			return retErr
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	return nil
}

// Save stores the template in memory, then snapshots to Postgres.
func (p *Postgres) Save(ctx context.Context, name string, tpl template.TemplateDTO) error {
	if err := p.Memory.Save(ctx, name, tpl); err != nil {
		return err
	}
	return p.persist(ctx)
}

// Delete removes the cohort, then snapshots to Postgres.
func (p *Postgres) Delete(ctx context.Context, name string) error {
	if err := p.Memory.Delete(ctx, name); err != nil {
		return err
	}
	return p.persist(ctx)
}

func (p *Postgres) Close() error { return p.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (p *Postgres) DB() *sql.DB { return p.db }
