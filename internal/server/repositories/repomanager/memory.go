package repomanager

import (
	"context"
	"database/sql"

	"github.com/bikram73/My-Bank/internal/dbx"
	"github.com/bikram73/My-Bank/internal/server/repositories/accounts"
	"github.com/bikram73/My-Bank/internal/server/repositories/memory"
	"github.com/bikram73/My-Bank/internal/server/repositories/sessiontokens"
)

// InMemoryRepositoryManager serves repositories from a memory.Store and
// ignores the DBTX it is given.
type InMemoryRepositoryManager struct {
	store *memory.Store
}

func NewInMemoryRepositoryManager(store *memory.Store) *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{store: store}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Accounts(dbx.DBTX) accounts.Repository {
	return m.store.Accounts()
}

func (m *InMemoryRepositoryManager) SessionTokens(dbx.DBTX) sessiontokens.Repository {
	return m.store.SessionTokens()
}
