package domain

import "errors"

// Auth failures. The HTTP layer maps each of these to a status and message
// in one table; callers match them with errors.Is.
var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrWrongTokenClass   = errors.New("wrong token class")
	ErrUnknownIdentity   = errors.New("unknown identity")
	ErrPasswordMismatch  = errors.New("password mismatch")
	// ErrInvalidLogin replaces ErrUnknownIdentity and ErrPasswordMismatch at
	// sign-in when login errors are masked.
	ErrInvalidLogin = errors.New("invalid email or password")
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
	ErrForbidden    = errors.New("access forbidden")
	ErrInvalidInput = errors.New("invalid input")

	ErrInsufficientBalance = errors.New("insufficient balance")
)
