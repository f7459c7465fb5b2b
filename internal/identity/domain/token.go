package domain

import "time"

// RefreshToken is one link in a rotation chain. The opaque value handed to
// the client is never stored; TokenHash is its SHA-256.
type RefreshToken struct {
	ID               string
	IdentityID       string
	TenantID         *string
	TokenHash        string
	IssuedAt         time.Time
	ExpiresAt        time.Time
	RevokedAt        *time.Time
	RevocationReason string
	ReplacedByID     *string
	SourceIP         string
}

// Revoked reports whether the token has been revoked. Revocation is
// monotonic and never undone.
func (t *RefreshToken) Revoked() bool {
	return t.RevokedAt != nil
}

// Expired reports whether the token is past its fixed TTL.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
