package models

import "time"

// SessionToken is the audit row written for every successful login.
type SessionToken struct {
	ID         int64
	TokenValue string
	AccountID  int64
	ExpiresAt  time.Time
	CreatedAt  time.Time
}
