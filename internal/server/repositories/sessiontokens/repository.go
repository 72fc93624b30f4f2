// Package sessiontokens declares the append-only audit store for issued
// session tokens.
package sessiontokens

import (
	"context"
	"time"

	"github.com/bikram73/My-Bank/internal/server/models"
)

// Repository records every issued session token. Rows are never consulted
// when a token is verified.
type Repository interface {
	// Record appends one audit row stamped with the token's issue and expiry
	// times. Failures wrap common.ErrStorage.
	Record(ctx context.Context, tokenValue string, accountID int64, issuedAt, expiresAt time.Time) error

	// ListByAccount returns the audit rows of an account, newest first.
	ListByAccount(ctx context.Context, accountID int64) ([]models.SessionToken, error)
}
