// Package common defines shared constants and sentinel errors used across
// the MyBank server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound     = errors.New("not found")
	ErrStorage        = errors.New("db error")
	ErrDuplicateEmail = errors.New("email already exists")

	// Service-level errors.
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrorInternal         = errors.New("internal error")

	// Session token errors. Only expiry is distinguished; every other
	// verification failure collapses into ErrInvalidToken.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
