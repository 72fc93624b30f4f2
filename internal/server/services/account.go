// Package services contains server-side business logic. This file implements
// AccountService, which handles registration, login, the protected profile,
// password changes and the login history, with signed session tokens and a
// best-effort token audit trail.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bikram73/My-Bank/internal/common"
	"github.com/bikram73/My-Bank/internal/logging"
	"github.com/bikram73/My-Bank/internal/money"
	"github.com/bikram73/My-Bank/internal/server/auth"
	"github.com/bikram73/My-Bank/internal/server/config"
	"github.com/bikram73/My-Bank/internal/server/metrics"
	"github.com/bikram73/My-Bank/internal/server/models"
	"github.com/bikram73/My-Bank/internal/server/repositories/repomanager"
)

// MinPasswordLength is counted in characters, not bytes.
const MinPasswordLength = 10

// Opening balances are drawn uniformly from [minOpeningBalance, maxOpeningBalance).
const (
	minOpeningBalance = 100000
	maxOpeningBalance = 1000000
)

// Validation failures. All wrap common.ErrValidation.
var (
	ErrPasswordTooShort = fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, MinPasswordLength)
	ErrPasswordTooLong  = fmt.Errorf("%w: password must be at most %d bytes", common.ErrValidation, auth.MaxPasswordBytes)
	ErrMissingIdentity  = fmt.Errorf("%w: username and email are required", common.ErrValidation)
)

// RegisterRequest carries the registration form.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
	Phone    string
}

// Session is the result of a successful login. Token goes into the
// auth_token cookie; MaxAge is its lifetime.
type Session struct {
	Token     string
	ExpiresAt time.Time
	MaxAge    time.Duration
}

// Profile is what an authenticated caller may see about their account.
type Profile struct {
	ID       int64
	Username string
	Email    string
	Phone    string
	Role     string
	Balance  money.Amount
}

// SessionRecord is one row of the caller's login history. The token value
// itself is never exposed.
type SessionRecord struct {
	ID        int64
	IssuedAt  time.Time
	ExpiresAt time.Time
	Active    bool
}

// AccountService provides account and session operations:
// - NextUID: advisory next account id
// - Register: create accounts with a random opening balance
// - Login: verify credentials, mint a session token, audit it
// - Profile, ChangePassword, Sessions: token-protected operations
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	hasher      auth.PasswordHasher
	issuer      auth.TokenIssuer
	verifier    auth.TokenVerifier
	metrics     *metrics.Metrics
	balance     func() money.Amount
	now         func() time.Time

	sessionTTL   time.Duration
	queryTimeout time.Duration

	dummyOnce sync.Once
	dummyHash string
}

// Option customises an AccountService.
type Option func(*AccountService)

// WithMetrics records auth events and audit failures on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *AccountService) { s.metrics = m }
}

// WithHasher replaces the default bcrypt hasher.
func WithHasher(h auth.PasswordHasher) Option {
	return func(s *AccountService) { s.hasher = h }
}

// WithTokens replaces the token issuer and verifier built from the config secret.
func WithTokens(issuer auth.TokenIssuer, verifier auth.TokenVerifier) Option {
	return func(s *AccountService) {
		s.issuer = issuer
		s.verifier = verifier
	}
}

// WithBalanceSource replaces the random opening balance generator.
func WithBalanceSource(f func() money.Amount) Option {
	return func(s *AccountService) { s.balance = f }
}

// WithClock sets the time source used to flag sessions as active.
func WithClock(now func() time.Time) Option {
	return func(s *AccountService) { s.now = now }
}

// NewAccountService constructs an AccountService using repositories and
// server config. The signing secret is taken from cfg once and never read again.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger, opts ...Option) (*AccountService, error) {
	s := &AccountService{
		db:           db,
		repomanager:  m,
		logger:       logger,
		hasher:       auth.NewBcryptHasher(bcryptCost(cfg.BcryptCost)),
		balance:      randomOpeningBalance,
		now:          time.Now,
		sessionTTL:   cfg.SessionTokenValidityDuration,
		queryTimeout: cfg.DBQueryTimeout,
	}
	if s.logger == nil {
		s.logger = logging.Nop{}
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.issuer == nil || s.verifier == nil {
		tm, err := auth.NewTokenManager([]byte(cfg.SecretKey))
		if err != nil {
			return nil, err
		}
		if s.issuer == nil {
			s.issuer = tm
		}
		if s.verifier == nil {
			s.verifier = tm
		}
	}

	return s, nil
}

func bcryptCost(cost int) int {
	if cost == 0 {
		return auth.DefaultBcryptCost
	}
	return cost
}

// NextUID returns a display-only hint of the next account id. It is not a
// reservation and must never be used as a key.
func (s *AccountService) NextUID(ctx context.Context) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	id, err := s.repomanager.Accounts(s.db).NextIdentifierHint(ctx)
	if err != nil {
		s.logger.Error(ctx, "error fetching next account id", "error", err)
		return 0, fmt.Errorf("error fetching next account id: %w", err)
	}
	return id, nil
}

// Register validates the request, hashes the password and creates the
// account with a random opening balance.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*models.Account, error) {
	if err := validatePassword(req.Password); err != nil {
		s.metrics.AuthEvent(metrics.OperationRegister, metrics.OutcomeRejected)
		return nil, err
	}
	if req.Username == "" || req.Email == "" {
		s.metrics.AuthEvent(metrics.OperationRegister, metrics.OutcomeRejected)
		return nil, ErrMissingIdentity
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.metrics.AuthEvent(metrics.OperationRegister, metrics.OutcomeError)
		s.logger.Error(ctx, "error hashing password", "error", err)
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	account := &models.Account{
		UserName:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Balance:      s.balance(),
		Phone:        req.Phone,
	}

	created, err := s.repomanager.Accounts(s.db).Create(ctx, account)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			s.metrics.AuthEvent(metrics.OperationRegister, metrics.OutcomeRejected)
			return nil, common.ErrDuplicateEmail
		}
		s.metrics.AuthEvent(metrics.OperationRegister, metrics.OutcomeError)
		s.logger.Error(ctx, "error creating account", "error", err)
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	s.metrics.AuthEvent(metrics.OperationRegister, metrics.OutcomeSuccess)
	s.logger.Info(ctx, "account registered", "account_id", created.ID)
	return created, nil
}

// Login verifies the credentials and, on success, returns a new session.
// Unknown email and wrong password are indistinguishable to the caller,
// including in timing: an unknown email is still checked against a dummy hash.
func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	lookupCtx, cancel := s.withTimeout(ctx)
	account, err := s.repomanager.Accounts(s.db).FindByEmail(lookupCtx, email)
	cancel()
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = s.hasher.Verify(password, s.dummyDigest())
			s.metrics.AuthEvent(metrics.OperationLogin, metrics.OutcomeRejected)
			return nil, common.ErrInvalidCredentials
		}
		s.metrics.AuthEvent(metrics.OperationLogin, metrics.OutcomeError)
		s.logger.Error(ctx, "error searching account", "error", err)
		return nil, fmt.Errorf("error searching account: %w", err)
	}

	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		s.metrics.AuthEvent(metrics.OperationLogin, metrics.OutcomeError)
		s.logger.Error(ctx, "stored password hash is unusable", "account_id", account.ID, "error", err)
		return nil, err
	}
	if !ok {
		s.metrics.AuthEvent(metrics.OperationLogin, metrics.OutcomeRejected)
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(auth.Identity{Username: account.UserName, Role: account.Role}, s.sessionTTL)
	if err != nil {
		s.metrics.AuthEvent(metrics.OperationLogin, metrics.OutcomeError)
		s.logger.Error(ctx, "error issuing session token", "error", err)
		return nil, err
	}

	s.recordToken(ctx, token, account.ID)

	s.metrics.AuthEvent(metrics.OperationLogin, metrics.OutcomeSuccess)
	s.logger.Info(ctx, "login succeeded", "account_id", account.ID)
	return &Session{Token: token.Value, ExpiresAt: token.ExpiresAt, MaxAge: s.sessionTTL}, nil
}

// Profile returns the account behind a session token. An expired token
// yields common.ErrorUnauthorized, a bad one common.ErrForbidden, and an
// account removed since the token was issued common.ErrorNotFound.
func (s *AccountService) Profile(ctx context.Context, tokenValue string) (*Profile, error) {
	account, err := s.authenticate(ctx, metrics.OperationProfile, tokenValue)
	if err != nil {
		return nil, err
	}

	s.metrics.AuthEvent(metrics.OperationProfile, metrics.OutcomeSuccess)
	return &Profile{
		ID:       account.ID,
		Username: account.UserName,
		Email:    account.Email,
		Phone:    account.Phone,
		Role:     account.Role,
		Balance:  account.Balance,
	}, nil
}

// ChangePassword replaces the password of the token's account. Existing
// session tokens stay valid until they expire.
func (s *AccountService) ChangePassword(ctx context.Context, tokenValue, newPassword string) error {
	id, err := s.verify(metrics.OperationChangePassword, tokenValue)
	if err != nil {
		return err
	}

	if err := validatePassword(newPassword); err != nil {
		s.metrics.AuthEvent(metrics.OperationChangePassword, metrics.OutcomeRejected)
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.metrics.AuthEvent(metrics.OperationChangePassword, metrics.OutcomeError)
		s.logger.Error(ctx, "error hashing password", "error", err)
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.repomanager.Accounts(s.db).UpdatePassword(ctx, id.Username, hash); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.metrics.AuthEvent(metrics.OperationChangePassword, metrics.OutcomeRejected)
			return common.ErrorNotFound
		}
		s.metrics.AuthEvent(metrics.OperationChangePassword, metrics.OutcomeError)
		s.logger.Error(ctx, "error updating password", "error", err)
		return fmt.Errorf("error updating password: %w", err)
	}

	s.metrics.AuthEvent(metrics.OperationChangePassword, metrics.OutcomeSuccess)
	s.logger.Info(ctx, "password changed", "username", id.Username)
	return nil
}

// Sessions returns the caller's login history, newest first.
func (s *AccountService) Sessions(ctx context.Context, tokenValue string) ([]SessionRecord, error) {
	account, err := s.authenticate(ctx, metrics.OperationSessions, tokenValue)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tokens, err := s.repomanager.SessionTokens(s.db).ListByAccount(ctx, account.ID)
	if err != nil {
		s.metrics.AuthEvent(metrics.OperationSessions, metrics.OutcomeError)
		s.logger.Error(ctx, "error listing session tokens", "account_id", account.ID, "error", err)
		return nil, fmt.Errorf("error listing session tokens: %w", err)
	}

	now := s.now()
	records := make([]SessionRecord, 0, len(tokens))
	for _, t := range tokens {
		records = append(records, SessionRecord{
			ID:        t.ID,
			IssuedAt:  t.CreatedAt,
			ExpiresAt: t.ExpiresAt,
			Active:    now.Before(t.ExpiresAt),
		})
	}

	s.metrics.AuthEvent(metrics.OperationSessions, metrics.OutcomeSuccess)
	return records, nil
}

// --- helpers below ---

// verify maps token failures onto the service taxonomy.
func (s *AccountService) verify(operation, tokenValue string) (*auth.Identity, error) {
	id, err := s.verifier.Verify(tokenValue)
	if err != nil {
		s.metrics.AuthEvent(operation, metrics.OutcomeRejected)
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrForbidden, err)
	}
	return id, nil
}

func (s *AccountService) authenticate(ctx context.Context, operation, tokenValue string) (*models.Account, error) {
	id, err := s.verify(operation, tokenValue)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	account, err := s.repomanager.Accounts(s.db).FindByUsername(ctx, id.Username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.metrics.AuthEvent(operation, metrics.OutcomeRejected)
			return nil, common.ErrorNotFound
		}
		s.metrics.AuthEvent(operation, metrics.OutcomeError)
		s.logger.Error(ctx, "error searching account", "error", err)
		return nil, fmt.Errorf("error searching account: %w", err)
	}
	return account, nil
}

// recordToken writes the audit row. Failure is logged and counted but does
// not fail the login.
func (s *AccountService) recordToken(ctx context.Context, token *auth.IssuedToken, accountID int64) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.repomanager.SessionTokens(s.db).Record(ctx, token.Value, accountID, token.IssuedAt, token.ExpiresAt); err != nil {
		s.metrics.TokenAuditFailure()
		s.logger.Error(ctx, "error recording session token", "account_id", accountID, "error", err)
	}
}

func (s *AccountService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

// dummyDigest is hashed lazily at the service's own cost so unknown-email
// logins pay the same comparison price as real ones.
func (s *AccountService) dummyDigest() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("mybank-dummy-password")
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > auth.MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

func randomOpeningBalance() money.Amount {
	return money.FromUnits(minOpeningBalance + rand.Int64N(maxOpeningBalance-minOpeningBalance))
}
