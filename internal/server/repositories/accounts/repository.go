// Package accounts declares the account storage contract and its PostgreSQL
// implementation.
package accounts

import (
	"context"

	"github.com/bikram73/My-Bank/internal/server/models"
)

// Repository stores accounts. Email uniqueness is enforced by storage and
// surfaced as common.ErrDuplicateEmail; lookups that match nothing return
// common.ErrorNotFound; any other failure wraps common.ErrStorage.
type Repository interface {
	// NextIdentifierHint returns max(id)+1, or 1 when empty. It is advisory
	// only and never reserves the identifier.
	NextIdentifierHint(ctx context.Context) (int64, error)

	// Create inserts the account and fills in the assigned ID and Role.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	FindByEmail(ctx context.Context, email string) (*models.Account, error)

	// FindByUsername returns the oldest account with that username.
	FindByUsername(ctx context.Context, username string) (*models.Account, error)

	// UpdatePassword overwrites the hash of the account FindByUsername would
	// return. Last writer wins.
	UpdatePassword(ctx context.Context, username string, passwordHash string) error
}
