// Package memory provides in-process implementations of the account and
// session token repositories. They enforce the same contracts as the
// PostgreSQL ones (email uniqueness, not-found, cascade on account removal)
// and back tests and the -memory server mode.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bikram73/My-Bank/internal/common"
	"github.com/bikram73/My-Bank/internal/server/models"
)

// Store holds the shared state behind both repositories so that account
// removal can cascade to session tokens.
type Store struct {
	mu       sync.Mutex
	accounts []models.Account
	tokens   []models.SessionToken
	nextAcc  int64
	nextTok  int64

	// RecordErr, when set, is returned by every Record call.
	RecordErr error
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{nextAcc: 1, nextTok: 1}
}

// Accounts returns the account repository view of the store.
func (s *Store) Accounts() *AccountRepository { return &AccountRepository{s: s} }

// SessionTokens returns the session token repository view of the store.
func (s *Store) SessionTokens() *SessionTokenRepository { return &SessionTokenRepository{s: s} }

// DeleteAccount removes an account and its session tokens.
func (s *Store) DeleteAccount(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := s.accounts[:0]
	for _, a := range s.accounts {
		if a.ID != id {
			accounts = append(accounts, a)
		}
	}
	s.accounts = accounts

	tokens := s.tokens[:0]
	for _, t := range s.tokens {
		if t.AccountID != id {
			tokens = append(tokens, t)
		}
	}
	s.tokens = tokens
}

type AccountRepository struct {
	s *Store
}

func (r *AccountRepository) NextIdentifierHint(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var highest int64
	for _, a := range r.s.accounts {
		if a.ID > highest {
			highest = a.ID
		}
	}
	return highest + 1, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, a := range r.s.accounts {
		if a.Email == account.Email {
			return nil, common.ErrDuplicateEmail
		}
	}

	account.ID = r.s.nextAcc
	r.s.nextAcc++
	if account.Role == "" {
		account.Role = common.DefaultRole
	}
	r.s.accounts = append(r.s.accounts, *account)

	return account, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.find(func(a models.Account) bool { return a.Email == email })
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.find(func(a models.Account) bool { return a.UserName == username })
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, username string, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.accounts {
		if r.s.accounts[i].UserName == username {
			r.s.accounts[i].PasswordHash = passwordHash
			return nil
		}
	}
	return common.ErrorNotFound
}

// accounts are kept in insertion (id) order, so the first match is the oldest.
func (r *AccountRepository) find(match func(models.Account) bool) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, a := range r.s.accounts {
		if match(a) {
			found := a
			return &found, nil
		}
	}
	return nil, common.ErrorNotFound
}

type SessionTokenRepository struct {
	s *Store
}

func (r *SessionTokenRepository) Record(ctx context.Context, tokenValue string, accountID int64, issuedAt, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.RecordErr != nil {
		return r.s.RecordErr
	}

	exists := false
	for _, a := range r.s.accounts {
		if a.ID == accountID {
			exists = true
			break
		}
	}
	if !exists {
		return fmt.Errorf("%w: account %d does not exist", common.ErrStorage, accountID)
	}

	r.s.tokens = append(r.s.tokens, models.SessionToken{
		ID:         r.s.nextTok,
		TokenValue: tokenValue,
		AccountID:  accountID,
		ExpiresAt:  expiresAt.UTC(),
		CreatedAt:  issuedAt.UTC(),
	})
	r.s.nextTok++
	return nil
}

func (r *SessionTokenRepository) ListByAccount(ctx context.Context, accountID int64) ([]models.SessionToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.SessionToken
	for _, t := range r.s.tokens {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
