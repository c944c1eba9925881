package models

import "time"

// Audit actions recorded by the user service.
const (
	AuditUserRegistered  = "user_registered"
	AuditLoginSucceeded  = "login_succeeded"
	AuditLoginFailed     = "login_failed"
	AuditLoginRejected   = "login_rejected_locked"
	AuditAccountLocked   = "account_locked"
	AuditLogout          = "logout"
	AuditAccountUpdated  = "account_updated"
	AuditAccountDisabled = "account_disabled"
)

// AuditEvent is one row of the security audit trail. UserID is empty when
// the attempt could not be tied to an account (unknown login).
type AuditEvent struct {
	ID        int64
	Timestamp time.Time
	UserID    string
	Action    string
	IPAddress string
	UserAgent string
	Success   bool
	Detail    string
}
