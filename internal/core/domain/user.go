package domain

import "time"

const (
	RoleCustomer = "customer"
	RoleExecutor = "executor"
)

// Password bounds. bcrypt ignores input past 72 bytes, so longer passwords
// are refused rather than silently truncated.
const (
	MinPasswordLength = 8
	MaxPasswordBytes  = 72
)

// ValidRole reports whether role is one of the two marketplace roles.
func ValidRole(role string) bool {
	return role == RoleCustomer || role == RoleExecutor
}

// User models an identity held by the credential store.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	Balance      int64  `json:"balance"`
	Logo         string `json:"logo,omitempty"`
	// Every user carries both profiles so a role change never loses data.
	Customer  CustomerProfile `json:"customer"`
	Executor  ExecutorProfile `json:"executor"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Principal is the verified identity attached to an authenticated request.
type Principal struct {
	UserID string
	Role   string
}

// HasRole reports whether the principal holds any of roles.
func (p *Principal) HasRole(roles ...string) bool {
	if p == nil {
		return false
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}
