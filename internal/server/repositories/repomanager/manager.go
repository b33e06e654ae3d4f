package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/devlogs/internal/common"
	"github.com/dmitrijs2005/devlogs/internal/server/repositories/logs"
	"github.com/dmitrijs2005/devlogs/internal/server/repositories/sessions"
)

// RepositoryManager vends the log record and session stores and prepares
// their schema.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Logs(db *sql.DB) logs.Repository
	Sessions(db *sql.DB) sessions.Repository
}

var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

// Open picks the store for dsn and brings its schema up to date. The
// memory DSN yields a nil *sql.DB.
func Open(ctx context.Context, dsn string) (*sql.DB, RepositoryManager, error) {
	if dsn == common.MemoryDSN {
		return nil, NewMemoryRepositoryManager(), nil
	}

	db, err := openDB(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	rm := NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, rm, nil
}
