package sessiontokens

import (
	"context"
	"fmt"
	"time"

	"github.com/bikram73/My-Bank/internal/common"
	"github.com/bikram73/My-Bank/internal/dbx"
	"github.com/bikram73/My-Bank/internal/server/models"
)

// PostgresRepository writes audit rows to session_tokens over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Record inserts a new audit row.
func (r *PostgresRepository) Record(ctx context.Context, tokenValue string, accountID int64, issuedAt, expiresAt time.Time) error {
	query := `
		INSERT INTO session_tokens (token_value, account_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, tokenValue, accountID, expiresAt.UTC(), issuedAt.UTC()); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	return nil
}

// ListByAccount returns the audit rows of accountID, newest first.
func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID int64) ([]models.SessionToken, error) {
	query := `
		SELECT id, token_value, account_id, expires_at, created_at
		FROM session_tokens
		WHERE account_id = $1
		ORDER BY id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	defer rows.Close()

	var tokens []models.SessionToken
	for rows.Next() {
		var t models.SessionToken
		if err := rows.Scan(&t.ID, &t.TokenValue, &t.AccountID, &t.ExpiresAt, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	return tokens, nil
}
