package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bikram73/My-Bank/internal/common"
	"github.com/bikram73/My-Bank/internal/dbx"
	"github.com/bikram73/My-Bank/internal/server/models"
)

// emailConstraint is the unique constraint declared by the accounts migration.
const emailConstraint = "accounts_email_key"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) NextIdentifierHint(ctx context.Context) (int64, error) {
	query := `SELECT COALESCE(MAX(id), 0) + 1 FROM accounts`

	var next int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&next); err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	return next, nil
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {

	query :=
		`INSERT INTO accounts (username, email, password_hash, balance, phone, role)
         VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, role
		 `

	role := account.Role
	if role == "" {
		role = common.DefaultRole
	}

	err := r.db.QueryRowContext(ctx, query,
		account.UserName, account.Email, account.PasswordHash, account.Balance, nullString(account.Phone), role,
	).Scan(&account.ID, &account.Role)

	if err != nil {
		if dbx.IsUniqueViolation(err, emailConstraint) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	return account, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query :=
		`SELECT id, username, email, password_hash, balance, phone, role FROM accounts
		 WHERE email = $1
		 `
	return r.findOne(ctx, query, email)
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	query :=
		`SELECT id, username, email, password_hash, balance, phone, role FROM accounts
		 WHERE username = $1
		 ORDER BY id
		 LIMIT 1
		 `
	return r.findOne(ctx, query, username)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, username string, passwordHash string) error {
	query :=
		`UPDATE accounts SET password_hash = $2
		 WHERE id = (SELECT id FROM accounts WHERE username = $1 ORDER BY id LIMIT 1)
		 `

	res, err := r.db.ExecContext(ctx, query, username, passwordHash)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg string) (*models.Account, error) {
	account := &models.Account{}
	var phone sql.NullString

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&account.ID, &account.UserName, &account.Email, &account.PasswordHash, &account.Balance, &phone, &account.Role,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	account.Phone = phone.String
	return account, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
