package models

import "time"

// Roles a user account can hold. The role is embedded as a JWT claim and
// checked by the admin-only HTTP routes.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the credential-store record. Username and email are unique
// (case-insensitive); PasswordHash is never empty for an active account.
type User struct {
	ID               string
	Username         string
	Email            string
	PasswordHash     string
	FullName         string
	Bio              string
	AvatarKey        string
	Role             string
	IsActive         bool
	IsVerified       bool
	FailedLoginCount int
	LockedUntil      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	LastLoginAt      *time.Time
	LastLoginIP      string
}

// IsLocked reports whether the account is under an active lockout at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}
