// Package auth provides credential hashing and session token signing for
// the server.
package auth

import (
	"errors"
	"fmt"

	"github.com/bikram73/My-Bank/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used in production.
const DefaultBcryptCost = 10

// MaxPasswordBytes is the longest input bcrypt consumes.
const MaxPasswordBytes = 72

// PasswordHasher provides one-way password hashing and verification.
type PasswordHasher interface {
	// Hash produces a salted digest of the password. Length rules are the
	// caller's responsibility.
	Hash(password string) (string, error)

	// Verify returns (true, nil) on match, (false, nil) on mismatch, or an
	// error when digest is malformed.
	Verify(password, digest string) (bool, error)
}

// BcryptHasher implements PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with the given cost, clamped to bcrypt's
// accepted range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: hash password: %w", common.ErrorInternal, err)
	}
	return string(digest), nil
}

func (h *BcryptHasher) Verify(password, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: malformed password hash: %w", common.ErrorInternal, err)
	}
}
