// Package store persists curated cohort templates keyed by cohort name.
// Backends share the in-memory implementation and snapshot to their medium
// after every successful write.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"phetools/internal/template"
)

// Driver identifies a concrete repository implementation.
type Driver string

const (
	DriverMemory   Driver = "memory"   // in-memory only (tests / ephemeral)
	DriverSQLite   Driver = "sqlite"   // embedded sqlite file
	DriverPostgres Driver = "postgres" // PostgreSQL server
)

// ErrNotFound is returned when a cohort name has no stored template.
var ErrNotFound = errors.New("cohort not found")

// Repository stores cohort templates as their serialized form.
type Repository interface {
	Save(ctx context.Context, name string, tpl template.TemplateDTO) error
	Load(ctx context.Context, name string) (template.TemplateDTO, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
	Close() error
}

// Open selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	PHETOOLS_STORE_DRIVER: memory|sqlite|postgres (default sqlite)
//	PHETOOLS_SQLITE_PATH: path to sqlite file (default ./phetools.db)
//	PHETOOLS_POSTGRES_DSN: postgres DSN when driver=postgres
func Open() (Repository, error) {
	driver := os.Getenv("PHETOOLS_STORE_DRIVER")
	if driver == "" {
		driver = string(DriverSQLite)
	}
	switch Driver(driver) {
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return NewSQLite(os.Getenv("PHETOOLS_SQLITE_PATH"))
	case DriverPostgres:
		return NewPostgres(os.Getenv("PHETOOLS_POSTGRES_DSN"))
	default:
		return nil, fmt.Errorf("unknown store driver %s", driver)
	}
}
