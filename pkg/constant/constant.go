package constant

const (
	// RoleAdmin is the master-scope administrator role.
	RoleAdmin = "admin"
	// RoleEmployee is the default tenant employee role.
	RoleEmployee = "employee"

	// DefaultFailedLoginThreshold locks an account after this many
	// consecutive failures.
	DefaultFailedLoginThreshold = 5
	// DefaultLockoutMinutes is how long a locked account stays locked.
	DefaultLockoutMinutes = 15

	// PasswordHistoryDepth is how many previous hashes a new password is
	// checked against.
	PasswordHistoryDepth = 5
	// PasswordExpiryDays is the rotation policy applied on every change.
	PasswordExpiryDays = 90

	// BackupCodeBatchSize is how many backup codes one MFA setup yields.
	BackupCodeBatchSize = 10
	// BackupCodeLength is the fixed length of a backup code (4 letters
	// followed by 4 digits, stored without the display dash).
	BackupCodeLength = 8

	// RefreshTokenBytes is the entropy of an opaque refresh token.
	RefreshTokenBytes = 32

	// PasswordResetExpiryMinutes is how long a password reset token stays
	// redeemable.
	PasswordResetExpiryMinutes = 30

	// RevocationReasonRotated marks a token spent by a successful refresh.
	RevocationReasonRotated = "rotated"
	// RevocationReasonReuse marks tokens revoked by the reuse cascade.
	RevocationReasonReuse = "reuse detected"
	// RevocationReasonLogout marks tokens revoked by the owner.
	RevocationReasonLogout = "revoked by user"
	// RevocationReasonPasswordChange marks tokens revoked after a
	// password change.
	RevocationReasonPasswordChange = "password changed"
	// RevocationReasonPasswordReset marks tokens revoked when a forgotten
	// password is reset through a one-time token.
	RevocationReasonPasswordReset = "password reset"
	// RevocationReasonSessionLimit marks the oldest session revoked to
	// make room for a new login.
	RevocationReasonSessionLimit = "concurrent session limit exceeded"
)
