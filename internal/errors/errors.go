package errors

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAccountInactive      = errors.New("account is inactive")
	ErrMfaRequired          = errors.New("mfa verification required")
	ErrMfaSetupRequired     = errors.New("mfa setup required")
	ErrInvalidMfaCode       = errors.New("invalid mfa code")
	ErrInvalidMfaTicket     = errors.New("invalid or expired mfa ticket")
	ErrMfaNotEnabled        = errors.New("mfa is not enabled")
	ErrMfaAlreadyEnabled    = errors.New("mfa is already enabled")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenExpired  = errors.New("refresh token expired")
	ErrTokenReuseDetected   = errors.New("refresh token reuse detected")
	ErrPasswordExpired      = errors.New("password has expired")
	ErrPasswordRecentlyUsed = errors.New("new password was used recently")
	ErrResetTokenInvalid    = errors.New("invalid or expired reset token")
	ErrIdentityNotFound     = errors.New("identity not found")
)

// AccountLockedError reports a temporary lockout and when the caller may retry.
type AccountLockedError struct {
	RetryAfter time.Duration
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked, retry after %s", e.RetryAfter)
}

// RateLimitedError reports a denied rate-limit check.
type RateLimitedError struct {
	RetryAfter time.Duration
	Key        string
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry after %s", e.Key, e.RetryAfter)
}

// ValidationError carries per-field messages for 400-class responses.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}
