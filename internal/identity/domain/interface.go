package domain

import (
	"context"
	"time"
)

type IdentityRepository interface {
	GetByEmail(ctx context.Context, tenantID *string, email string) (*Identity, error)
	GetByID(ctx context.Context, id string) (*Identity, error)
	RecordLoginAttempt(ctx context.Context, email string, tenantID *string, ip string, success bool) error

	// RegisterFailedAttempt atomically increments the failed counter and,
	// when it reaches threshold, sets the lockout and resets the counter.
	RegisterFailedAttempt(ctx context.Context, id string, threshold int, lockout time.Duration, now time.Time) (*FailedAttemptOutcome, error)
	// ResetLoginState zeroes the failed counter, clears the lockout and
	// stamps the last successful login.
	ResetLoginState(ctx context.Context, id string, now time.Time) error
	// ClearLockout lifts an active lockout without touching login stamps.
	ClearLockout(ctx context.Context, id string) error

	// UpdatePassword swaps the hash, stamps password-changed-at, sets the
	// next expiry and appends the old hash to the history.
	UpdatePassword(ctx context.Context, id, newHash string, changedAt, expiresAt time.Time) error
	PasswordHistory(ctx context.Context, id string, depth int) ([]string, error)

	// EnableMfa persists the encrypted secret, replaces any backup codes
	// and flips the enabled flag in a single transaction.
	EnableMfa(ctx context.Context, id string, encryptedSecret []byte, codeHashes []string, now time.Time) error
	BackupCodes(ctx context.Context, identityID string) ([]BackupCode, error)
	// MarkBackupCodeUsed burns a code. Returns false when the code was
	// already used, so a race between two presenters has one winner.
	MarkBackupCodeUsed(ctx context.Context, codeID string, usedAt time.Time) (bool, error)
	// DisableMfa clears the secret, flips the flag off and deletes the
	// backup codes in a single transaction.
	DisableMfa(ctx context.Context, id string) error

	CreatePasswordReset(ctx context.Context, token *PasswordResetToken) error
	// ConsumePasswordReset burns the reset token matching hash if it is
	// still live. Returns nil when no live token matched.
	ConsumePasswordReset(ctx context.Context, tokenHash string, now time.Time) (*PasswordResetToken, error)
}

type TokenRepository interface {
	Store(ctx context.Context, token *RefreshToken) error
	GetByHash(ctx context.Context, hash string) (*RefreshToken, error)
	// Rotate revokes the presented token (reason "rotated", linked to its
	// successor) and inserts the successor in one transaction. The revoke
	// is conditional on the token still being live; Rotate returns false
	// without inserting when another rotation won the race.
	Rotate(ctx context.Context, oldID string, successor *RefreshToken, now time.Time) (bool, error)
	Revoke(ctx context.Context, id, reason string, now time.Time) error
	// RevokeDescendants walks the replaced-by chain forward from id and
	// revokes every still-live descendant. Returns how many were revoked.
	RevokeDescendants(ctx context.Context, id, reason string, now time.Time) (int, error)
	RevokeAllForIdentity(ctx context.Context, identityID, reason string, now time.Time) (int, error)
	CountActive(ctx context.Context, identityID string, now time.Time) (int, error)
	// RevokeOldest revokes the oldest live token for the identity, used to
	// enforce the concurrent-session cap.
	RevokeOldest(ctx context.Context, identityID, reason string, now time.Time) error
	ListActive(ctx context.Context, identityID string, now time.Time) ([]RefreshToken, error)
}

type RateLimitRepository interface {
	// Hit atomically starts or increments the window for key and returns
	// its resulting state, including any blacklist entry.
	Hit(ctx context.Context, key string, window time.Duration, now time.Time) (*RateLimitWindow, error)
	Blacklist(ctx context.Context, key string, until time.Time) error
	BlacklistedUntil(ctx context.Context, key string) (*time.Time, error)
}
