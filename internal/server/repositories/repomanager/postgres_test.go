package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bikram73/My-Bank/internal/server/repositories/accounts"
	"github.com/bikram73/My-Bank/internal/server/repositories/memory"
	"github.com/bikram73/My-Bank/internal/server/repositories/sessiontokens"
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestNewPostgresRepositoryManager_ReturnsInterface(t *testing.T) {
	var _ RepositoryManager = NewPostgresRepositoryManager()
	var _ RepositoryManager = NewInMemoryRepositoryManager(memory.NewStore())
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := &PostgresRepositoryManager{}

	if a := m.Accounts(db); a == nil {
		t.Fatal("Accounts() nil")
	}
	if st := m.SessionTokens(db); st == nil {
		t.Fatal("SessionTokens() nil")
	}

	if _, ok := m.Accounts(db).(*accounts.PostgresRepository); !ok {
		t.Fatal("Accounts() must be the PostgreSQL implementation")
	}
	if _, ok := m.SessionTokens(db).(*sessiontokens.PostgresRepository); !ok {
		t.Fatal("SessionTokens() must be the PostgreSQL implementation")
	}
}

func TestInMemoryManager_SharesStore(t *testing.T) {
	store := memory.NewStore()
	m := NewInMemoryRepositoryManager(store)

	if err := m.RunMigrations(context.Background(), nil); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
	if _, ok := m.Accounts(nil).(*memory.AccountRepository); !ok {
		t.Fatal("Accounts() must be the memory implementation")
	}
	if _, ok := m.SessionTokens(nil).(*memory.SessionTokenRepository); !ok {
		t.Fatal("SessionTokens() must be the memory implementation")
	}
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}
