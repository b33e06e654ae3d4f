// Package repomanager provides RepositoryManager implementations for
// PostgreSQL and for the in-memory store, wiring repository constructors and
// database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/devlogs/internal/server/migrations"
	"github.com/dmitrijs2005/devlogs/internal/server/repositories/logs"
	"github.com/dmitrijs2005/devlogs/internal/server/repositories/sessions"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories and exposes
// a schema migration hook.
type PostgresRepositoryManager struct{}

// Logs returns a logs.Repository bound to db.
func (m *PostgresRepositoryManager) Logs(db *sql.DB) logs.Repository {
	return logs.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Sessions(db *sql.DB) sessions.Repository {
	return sessions.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against db.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

// MemoryRepositoryManager hands out shared in-memory stores. There is no
// schema, so RunMigrations does nothing.
type MemoryRepositoryManager struct {
	repo     *logs.MemoryRepository
	sessions *sessions.MemoryRepository
}

func NewMemoryRepositoryManager() RepositoryManager {
	return &MemoryRepositoryManager{
		repo:     logs.NewMemoryRepository(),
		sessions: sessions.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Logs(*sql.DB) logs.Repository { return m.repo }

func (m *MemoryRepositoryManager) Sessions(*sql.DB) sessions.Repository { return m.sessions }
