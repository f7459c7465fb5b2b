package domain

import "time"

// Identity is an authenticatable principal: a master-scope admin
// (TenantID nil) or a tenant employee.
type Identity struct {
	ID                 string
	TenantID           *string
	Email              string
	Role               string
	PasswordHash       string
	FailedLoginCount   int
	LockoutUntil       *time.Time
	PasswordChangedAt  time.Time
	PasswordExpiresAt  *time.Time
	MustChangePassword bool
	MfaEnabled         bool
	MfaSecretEncrypted []byte
	IsActive           bool
	LastLoginAt        *time.Time
	LastFailedLoginAt  *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// LockedUntil reports the active lockout expiry, if any.
func (i *Identity) LockedUntil(now time.Time) (time.Time, bool) {
	if i.LockoutUntil != nil && i.LockoutUntil.After(now) {
		return *i.LockoutUntil, true
	}
	return time.Time{}, false
}

// PasswordExpired reports whether the password rotation deadline has passed.
func (i *Identity) PasswordExpired(now time.Time) bool {
	return i.PasswordExpiresAt != nil && !i.PasswordExpiresAt.After(now)
}

// BackupCode is a single-use MFA fallback credential. The plaintext is shown
// once at setup; only the hash is stored.
type BackupCode struct {
	ID         string
	IdentityID string
	CodeHash   string
	Used       bool
	UsedAt     *time.Time
	CreatedAt  time.Time
}

// PasswordResetToken is a single-use credential for the forgot-password
// flow. Only the hash of the opaque token is stored.
type PasswordResetToken struct {
	ID         string
	IdentityID string
	TokenHash  string
	ExpiresAt  time.Time
	UsedAt     *time.Time
	CreatedAt  time.Time
}

// LoginAttempt is the audit trail row written for every authentication try.
type LoginAttempt struct {
	ID          string
	Email       string
	TenantID    *string
	IPAddress   string
	AttemptTime time.Time
	Successful  bool
}

// FailedAttemptOutcome is returned by the atomic failed-counter update.
type FailedAttemptOutcome struct {
	FailedCount  int
	LockoutUntil *time.Time
}
