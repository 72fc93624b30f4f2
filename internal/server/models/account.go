// Package models defines server-side data models persisted in the database.
package models

import "github.com/bikram73/My-Bank/internal/money"

// Account is a registered bank customer.
type Account struct {
	// ID is assigned by storage on insert.
	ID int64
	// UserName is a display name. It is not unique; Email is.
	UserName string
	// Email is the unique login identifier.
	Email string
	// PasswordHash is the bcrypt digest. The plaintext is never stored.
	PasswordHash string
	// Balance is fixed at registration.
	Balance money.Amount
	// Phone is free-form and optional.
	Phone string
	// Role is carried into session tokens as an authorization claim.
	Role string
}
