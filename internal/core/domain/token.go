package domain

import (
	"fmt"
	"time"
)

// TokenClass separates short-lived access tokens from long-lived refresh tokens.
type TokenClass string

const (
	TokenClassAccess  TokenClass = "access"
	TokenClassRefresh TokenClass = "refresh"
)

// AccessClaims is the decoded payload of a verified access token.
type AccessClaims struct {
	UserID    string
	Role      string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Principal returns the identity the claims vouch for.
func (c *AccessClaims) Principal() *Principal {
	return &Principal{UserID: c.UserID, Role: c.Role}
}

// RefreshClaims is the decoded payload of a verified refresh token.
type RefreshClaims struct {
	UserID    string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// FailureReason tags why a token did not verify.
type FailureReason string

const (
	ReasonMalformed  FailureReason = "malformed"
	ReasonSignature  FailureReason = "signature"
	ReasonExpired    FailureReason = "expired"
	ReasonWrongClass FailureReason = "wrong_class"
	ReasonClaims     FailureReason = "claims"
)

// VerificationError is the failure side of token verification. It unwraps to
// ErrWrongTokenClass for ReasonWrongClass and to ErrInvalidCredential for
// every other reason, plus the underlying cause when there is one.
type VerificationError struct {
	Class  TokenClass
	Reason FailureReason
	Cause  error
}

func (e *VerificationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s token rejected (%s): %v", e.Class, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s token rejected (%s)", e.Class, e.Reason)
}

func (e *VerificationError) Unwrap() []error {
	sentinel := ErrInvalidCredential
	if e.Reason == ReasonWrongClass {
		sentinel = ErrWrongTokenClass
	}
	if e.Cause == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Cause}
}
