// Package repomanager provides the RepositoryManager used by services, wiring
// repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/bikram73/My-Bank/internal/dbx"
	"github.com/bikram73/My-Bank/internal/server/migrations"
	"github.com/bikram73/My-Bank/internal/server/repositories/accounts"
	"github.com/bikram73/My-Bank/internal/server/repositories/sessiontokens"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Accounts returns an accounts.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewPostgresRepository(db)
}

// SessionTokens returns a sessiontokens.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) SessionTokens(db dbx.DBTX) sessiontokens.Repository {
	return sessiontokens.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations to db.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
