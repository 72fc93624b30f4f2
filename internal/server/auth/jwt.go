package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/bikram73/My-Bank/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the set of claims a session token vouches for.
type Identity struct {
	Username string
	Role     string
}

// Claims is the JWT payload: username, role and exp. Nothing else is set.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// IssuedToken is a freshly signed session token.
type IssuedToken struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(id Identity, ttl time.Duration) (*IssuedToken, error)
}

// TokenVerifier validates session tokens. It returns common.ErrTokenExpired
// for a well-signed token past its expiry and common.ErrInvalidToken for
// anything else.
type TokenVerifier interface {
	Verify(tokenValue string) (*Identity, error)
}

// TokenManager issues and verifies HS256 session tokens with a secret fixed
// at construction.
type TokenManager struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

// TokenOption configures a TokenManager.
type TokenOption func(*TokenManager)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) { m.now = now }
}

// NewTokenManager copies secret and returns a manager. An empty secret is rejected.
func NewTokenManager(secret []byte, opts ...TokenOption) (*TokenManager, error) {
	if len(secret) == 0 {
		return nil, errors.New("token signing secret must not be empty")
	}

	m := &TokenManager{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(m.now),
	)
	return m, nil
}

// Issue signs a token for id valid for ttl. Times are truncated to whole
// seconds so the embedded exp equals ExpiresAt exactly.
func (m *TokenManager) Issue(id Identity, ttl time.Duration) (*IssuedToken, error) {
	issuedAt := m.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: id.Username,
		Role:     id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	value, err := token.SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: sign token: %w", common.ErrorInternal, err)
	}

	return &IssuedToken{Value: value, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// Verify checks the signature first and expiry second.
func (m *TokenManager) Verify(tokenValue string) (*Identity, error) {
	claims := &Claims{}

	token, err := m.parser.ParseWithClaims(tokenValue, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Username == "" {
		return nil, common.ErrInvalidToken
	}

	return &Identity{Username: claims.Username, Role: claims.Role}, nil
}
