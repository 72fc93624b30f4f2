package repomanager

import (
	"context"
	"database/sql"

	"github.com/bikram73/My-Bank/internal/dbx"
	"github.com/bikram73/My-Bank/internal/server/repositories/accounts"
	"github.com/bikram73/My-Bank/internal/server/repositories/sessiontokens"
)

// RepositoryManager vends repositories bound to a DBTX and owns schema setup.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	SessionTokens(db dbx.DBTX) sessiontokens.Repository
}
