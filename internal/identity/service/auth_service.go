package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/MorisHR/HRAPP-sub003/config"
	"github.com/MorisHR/HRAPP-sub003/internal/audit"
	autherror "github.com/MorisHR/HRAPP-sub003/internal/errors"
	"github.com/MorisHR/HRAPP-sub003/internal/identity/domain"
	"github.com/MorisHR/HRAPP-sub003/internal/identity/dto"
	authconstant "github.com/MorisHR/HRAPP-sub003/pkg/constant"
)

// Rate-limit key prefixes. The limiter itself is policy-free; the façade
// owns which limits apply to which flows.
const (
	loginRateKeyPrefix    = "login:"
	mfaRateKeyPrefix      = "mfa:"
	passwordRateKeyPrefix = "pwchange:"
	resetRateKeyPrefix    = "pwreset:"
)

// AuthService orchestrates the login, MFA, refresh and password-change
// flows. It is the external boundary of the credential and session core.
type AuthService struct {
	repo      domain.IdentityRepository
	tokens    *TokenManager
	mfa       *MFAService
	limiter   *RateLimiter
	auditSink audit.Sink
	cfg       *config.Config
	dummyHash []byte
	now       func() time.Time
}

func NewAuthService(
	repo domain.IdentityRepository,
	tokens *TokenManager,
	mfa *MFAService,
	limiter *RateLimiter,
	auditSink audit.Sink,
	cfg *config.Config,
) *AuthService {
	// Compared against whenever the identity lookup misses, so the
	// unknown-email path costs the same as a wrong password.
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("dummy-timing-equalizer"), bcrypt.DefaultCost)
	if err != nil {
		// bcrypt only fails on invalid cost; this cannot happen with DefaultCost.
		panic(fmt.Sprintf("failed to precompute dummy hash: %v", err))
	}

	return &AuthService{
		repo:      repo,
		tokens:    tokens,
		mfa:       mfa,
		limiter:   limiter,
		auditSink: auditSink,
		cfg:       cfg,
		dummyHash: dummyHash,
		now:       time.Now,
	}
}

// WithClock overrides the service's time source. Test hook.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Login runs the password leg of the state machine. On success the result
// is either a token pair or a short-lived MFA ticket the client must spend
// at the verify or setup endpoint. Those endpoints accept only the ticket,
// never a bare identity id.
func (s *AuthService) Login(ctx context.Context, input dto.LoginInput) (*dto.LoginResult, error) {
	if err := s.checkRate(ctx, loginRateKeyPrefix+input.IPAddress, s.cfg.LoginRateLimit,
		time.Duration(s.cfg.LoginRateWindowMin)*time.Minute); err != nil {
		return nil, err
	}

	identity, err := s.authenticate(ctx, input)
	if err != nil {
		return nil, err
	}

	switch {
	case identity.MfaEnabled:
		ticket, err := s.tokens.generator.GenerateMfaTicket(identity.ID, MfaTicketPurposeVerify, s.now().UTC())
		if err != nil {
			return nil, fmt.Errorf("failed to mint mfa ticket: %w", err)
		}
		return &dto.LoginResult{State: dto.LoginStateMfaRequired, MfaTicket: ticket}, nil
	case s.cfg.MfaEnforced:
		ticket, err := s.tokens.generator.GenerateMfaTicket(identity.ID, MfaTicketPurposeSetup, s.now().UTC())
		if err != nil {
			return nil, fmt.Errorf("failed to mint mfa ticket: %w", err)
		}
		return &dto.LoginResult{State: dto.LoginStateMfaSetupRequired, MfaTicket: ticket}, nil
	}

	return s.finishLogin(ctx, identity, input.IPAddress)
}

// authenticate performs the credential check with lockout policy. Every
// failure reads as invalid credentials; only an active lockout and an
// inactive account are distinguishable, and that choice is deliberate.
func (s *AuthService) authenticate(ctx context.Context, input dto.LoginInput) (*domain.Identity, error) {
	tenantID := tenantPtr(input.TenantID)

	identity, err := s.repo.GetByEmail(ctx, tenantID, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up identity: %w", err)
	}

	if identity == nil {
		// Burn the same bcrypt cost as a real comparison so response
		// timing does not leak account existence.
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(input.Password))
		s.recordAttempt(ctx, input, "", false, "unknown identity")
		return nil, autherror.ErrInvalidCredentials
	}

	now := s.now().UTC()

	if until, locked := identity.LockedUntil(now); locked {
		// Locked attempts touch neither counters nor rate limits.
		s.recordAttempt(ctx, input, identity.ID, false, "account locked")
		return nil, &autherror.AccountLockedError{RetryAfter: until.Sub(now)}
	}

	if !identity.IsActive {
		s.recordAttempt(ctx, input, identity.ID, false, "account inactive")
		return nil, autherror.ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(input.Password)); err != nil {
		outcome, ferr := s.repo.RegisterFailedAttempt(ctx, identity.ID,
			s.cfg.FailedLoginThreshold, time.Duration(s.cfg.LockoutMinutes)*time.Minute, now)
		if ferr != nil {
			zap.L().Error("failed to register failed attempt", zap.String("identity_id", identity.ID), zap.Error(ferr))
		} else if outcome.LockoutUntil != nil {
			s.auditSink.Record(audit.Event{
				Action:     "login.lockout",
				IdentityID: identity.ID,
				Email:      input.Email,
				IPAddress:  input.IPAddress,
				Success:    false,
				Detail:     fmt.Sprintf("locked until %s", outcome.LockoutUntil.Format(time.RFC3339)),
			})
		}
		s.recordAttempt(ctx, input, identity.ID, false, "wrong password")
		return nil, autherror.ErrInvalidCredentials
	}

	if identity.MustChangePassword || identity.PasswordExpired(now) {
		s.recordAttempt(ctx, input, identity.ID, false, "password change required")
		return nil, autherror.ErrPasswordExpired
	}

	if err := s.repo.ResetLoginState(ctx, identity.ID, now); err != nil {
		zap.L().Error("failed to reset login state", zap.String("identity_id", identity.ID), zap.Error(err))
	}
	s.recordAttempt(ctx, input, identity.ID, true, "password verified")

	return identity, nil
}

// VerifyMfa completes a login held at the MFA gate, accepting either a
// TOTP code or an unused backup code. The caller proves it passed the
// password leg by presenting the ticket Login minted.
func (s *AuthService) VerifyMfa(ctx context.Context, input dto.MfaVerifyInput) (*dto.MfaVerifyResult, error) {
	if err := s.checkRate(ctx, mfaRateKeyPrefix+input.IPAddress, s.cfg.LoginRateLimit,
		time.Duration(s.cfg.LoginRateWindowMin)*time.Minute); err != nil {
		return nil, err
	}

	identityID, err := s.tokens.generator.VerifyMfaTicket(input.Ticket, MfaTicketPurposeVerify)
	if err != nil {
		return nil, autherror.ErrInvalidMfaTicket
	}

	identity, err := s.repo.GetByID(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}
	if identity == nil || !identity.IsActive {
		return nil, autherror.ErrInvalidMfaCode
	}
	if !identity.MfaEnabled {
		return nil, autherror.ErrMfaNotEnabled
	}

	usedBackup := false
	remaining := 0

	if !s.mfa.VerifyTotp(identity, input.Code) {
		ok, left, berr := s.mfa.VerifyBackupCode(ctx, identity, input.Code)
		if berr != nil {
			return nil, berr
		}
		if !ok {
			s.auditSink.Record(audit.Event{
				Action:     "mfa.verify_failed",
				IdentityID: identity.ID,
				IPAddress:  input.IPAddress,
				Success:    false,
			})
			return nil, autherror.ErrInvalidMfaCode
		}
		usedBackup = true
		remaining = left
	} else {
		remaining, err = s.mfa.RemainingBackupCodes(ctx, identity.ID)
		if err != nil {
			zap.L().Warn("failed to count backup codes", zap.String("identity_id", identity.ID), zap.Error(err))
		}
	}

	result, err := s.finishLogin(ctx, identity, input.IPAddress)
	if err != nil {
		return nil, err
	}

	s.auditSink.Record(audit.Event{
		Action:     "mfa.verified",
		IdentityID: identity.ID,
		IPAddress:  input.IPAddress,
		Success:    true,
		Detail:     fmt.Sprintf("backup_code=%t", usedBackup),
	})

	return &dto.MfaVerifyResult{
		Tokens:               result.Tokens,
		UsedBackupCode:       usedBackup,
		RemainingBackupCodes: remaining,
	}, nil
}

// BeginMfaSetup generates a fresh candidate secret and backup codes for an
// identity that passed the password leg. Nothing persists until
// CompleteMfaSetup; the returned ticket authorizes that call.
func (s *AuthService) BeginMfaSetup(ctx context.Context, identityID string) (*dto.MfaSetupOutput, error) {
	identity, err := s.repo.GetByID(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}
	if identity == nil || !identity.IsActive {
		return nil, autherror.ErrIdentityNotFound
	}
	if identity.MfaEnabled {
		return nil, autherror.ErrMfaAlreadyEnabled
	}

	out, err := s.mfa.Setup(identity)
	if err != nil {
		return nil, err
	}

	out.Ticket, err = s.tokens.generator.GenerateMfaTicket(identity.ID, MfaTicketPurposeSetup, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to mint mfa ticket: %w", err)
	}
	return out, nil
}

// CompleteMfaSetup verifies the submitted code against the candidate
// secret, enables MFA and finishes the login with a token pair. The setup
// ticket is the only accepted proof of who is enrolling; an identity with
// MFA already on cannot be re-enrolled through this path.
func (s *AuthService) CompleteMfaSetup(ctx context.Context, input dto.MfaCompleteSetupInput) (*dto.LoginResult, error) {
	if err := s.checkRate(ctx, mfaRateKeyPrefix+input.IPAddress, s.cfg.LoginRateLimit,
		time.Duration(s.cfg.LoginRateWindowMin)*time.Minute); err != nil {
		return nil, err
	}

	identityID, err := s.tokens.generator.VerifyMfaTicket(input.Ticket, MfaTicketPurposeSetup)
	if err != nil {
		return nil, autherror.ErrInvalidMfaTicket
	}

	identity, err := s.repo.GetByID(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}
	if identity == nil || !identity.IsActive {
		return nil, autherror.ErrIdentityNotFound
	}
	if identity.MfaEnabled {
		return nil, autherror.ErrMfaAlreadyEnabled
	}

	if err := s.mfa.CompleteSetup(ctx, identity, input.Code, input.Secret, input.BackupCodes); err != nil {
		return nil, err
	}

	s.auditSink.Record(audit.Event{
		Action:     "mfa.setup_completed",
		IdentityID: identity.ID,
		IPAddress:  input.IPAddress,
		Success:    true,
	})

	identity.MfaEnabled = true
	return s.finishLogin(ctx, identity, input.IPAddress)
}

// Refresh rotates a refresh token. Reuse of a spent token fails the whole
// chain; the handler maps that to a generic unauthorized.
func (s *AuthService) Refresh(ctx context.Context, input dto.RefreshInput) (*dto.TokenPair, error) {
	return s.tokens.Refresh(ctx, input.RefreshToken, input.IPAddress)
}

// Revoke invalidates one refresh token (logout).
func (s *AuthService) Revoke(ctx context.Context, input dto.RevokeInput) error {
	return s.tokens.Revoke(ctx, input.RefreshToken, authconstant.RevocationReasonLogout, input.IPAddress)
}

// RevokeAll invalidates every session the identity holds.
func (s *AuthService) RevokeAll(ctx context.Context, identityID, reason, sourceIP string) (int, error) {
	return s.tokens.RevokeAll(ctx, identityID, reason, sourceIP)
}

// ListSessions returns the identity's live sessions (admin surface).
func (s *AuthService) ListSessions(ctx context.Context, identityID string) ([]dto.SessionOutput, error) {
	return s.tokens.ListSessions(ctx, identityID)
}

// Unlock clears an active lockout (admin recovery path).
func (s *AuthService) Unlock(ctx context.Context, identityID, adminID string) error {
	identity, err := s.repo.GetByID(ctx, identityID)
	if err != nil {
		return fmt.Errorf("failed to load identity: %w", err)
	}
	if identity == nil {
		return autherror.ErrIdentityNotFound
	}

	if err := s.repo.ClearLockout(ctx, identityID); err != nil {
		return fmt.Errorf("failed to clear lockout: %w", err)
	}

	s.auditSink.Record(audit.Event{
		Action:     "account.unlocked",
		IdentityID: identityID,
		Success:    true,
		Detail:     "unlocked by admin " + adminID,
	})
	return nil
}

// BlacklistRateKey force-denies a rate-limit key for the given duration
// (admin abuse-response path).
func (s *AuthService) BlacklistRateKey(ctx context.Context, input dto.BlacklistInput, adminID string) error {
	until := s.now().UTC().Add(time.Duration(input.DurationMin) * time.Minute)
	if err := s.limiter.Blacklist(ctx, input.Key, until, input.Reason); err != nil {
		return err
	}

	s.auditSink.Record(audit.Event{
		Action:  "ratelimit.blacklisted",
		Success: true,
		Detail: fmt.Sprintf("key %s blacklisted until %s by admin %s: %s",
			input.Key, until.Format(time.RFC3339), adminID, input.Reason),
	})
	return nil
}

// ChangePassword verifies the current password, rejects recently used
// hashes and revokes every live session afterwards.
func (s *AuthService) ChangePassword(ctx context.Context, input dto.ChangePasswordInput) (*dto.ChangePasswordResult, error) {
	if err := s.checkRate(ctx, passwordRateKeyPrefix+input.IPAddress, s.cfg.PasswordRateLimit,
		time.Duration(s.cfg.PasswordRateWindowMin)*time.Minute); err != nil {
		return nil, err
	}

	identity, err := s.repo.GetByID(ctx, input.IdentityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}
	if identity == nil || !identity.IsActive {
		return nil, autherror.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		s.auditSink.Record(audit.Event{
			Action:     "password.change_failed",
			IdentityID: identity.ID,
			IPAddress:  input.IPAddress,
			Success:    false,
			Detail:     "current password mismatch",
		})
		return nil, autherror.ErrInvalidCredentials
	}

	if err := s.rotatePassword(ctx, identity, input.NewPassword, input.IPAddress,
		authconstant.RevocationReasonPasswordChange); err != nil {
		return nil, err
	}

	s.auditSink.Record(audit.Event{
		Action:     "password.changed",
		IdentityID: identity.ID,
		IPAddress:  input.IPAddress,
		Success:    true,
	})

	return &dto.ChangePasswordResult{
		Success: true,
		Message: "password changed, please sign in again",
	}, nil
}

// ForgotPassword mints a single-use reset token for the account, when one
// exists. Unknown and inactive emails succeed silently so the endpoint
// cannot be used to probe for accounts; the raw token goes out through the
// delivery channel, never in the response.
func (s *AuthService) ForgotPassword(ctx context.Context, input dto.ForgotPasswordInput) (string, error) {
	if err := s.checkRate(ctx, resetRateKeyPrefix+input.IPAddress, s.cfg.PasswordRateLimit,
		time.Duration(s.cfg.PasswordRateWindowMin)*time.Minute); err != nil {
		return "", err
	}

	identity, err := s.repo.GetByEmail(ctx, tenantPtr(input.TenantID), input.Email)
	if err != nil {
		return "", fmt.Errorf("failed to look up identity: %w", err)
	}
	if identity == nil || !identity.IsActive {
		s.auditSink.Record(audit.Event{
			Action:    "password.reset_requested",
			Email:     input.Email,
			TenantID:  input.TenantID,
			IPAddress: input.IPAddress,
			Success:   false,
			Detail:    "unknown or inactive identity",
		})
		return "", nil
	}

	raw, hash, err := newOpaqueToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	now := s.now().UTC()
	record := &domain.PasswordResetToken{
		ID:         uuid.NewString(),
		IdentityID: identity.ID,
		TokenHash:  hash,
		ExpiresAt:  now.Add(time.Duration(authconstant.PasswordResetExpiryMinutes) * time.Minute),
		CreatedAt:  now,
	}
	if err := s.repo.CreatePasswordReset(ctx, record); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	s.auditSink.Record(audit.Event{
		Action:     "password.reset_requested",
		IdentityID: identity.ID,
		Email:      identity.Email,
		IPAddress:  input.IPAddress,
		Success:    true,
	})
	return raw, nil
}

// ResetPassword spends a reset token and installs the new password. The
// burn is conditional on the token being live, so replaying a spent or
// expired token always fails the same way.
func (s *AuthService) ResetPassword(ctx context.Context, input dto.ResetPasswordInput) (*dto.ChangePasswordResult, error) {
	if err := s.checkRate(ctx, resetRateKeyPrefix+input.IPAddress, s.cfg.PasswordRateLimit,
		time.Duration(s.cfg.PasswordRateWindowMin)*time.Minute); err != nil {
		return nil, err
	}

	token, err := s.repo.ConsumePasswordReset(ctx, hashOpaqueToken(input.Token), s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to consume reset token: %w", err)
	}
	if token == nil {
		return nil, autherror.ErrResetTokenInvalid
	}

	identity, err := s.repo.GetByID(ctx, token.IdentityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}
	if identity == nil || !identity.IsActive {
		return nil, autherror.ErrResetTokenInvalid
	}

	if err := s.rotatePassword(ctx, identity, input.NewPassword, input.IPAddress,
		authconstant.RevocationReasonPasswordReset); err != nil {
		return nil, err
	}

	s.auditSink.Record(audit.Event{
		Action:     "password.reset_completed",
		IdentityID: identity.ID,
		IPAddress:  input.IPAddress,
		Success:    true,
	})

	return &dto.ChangePasswordResult{
		Success: true,
		Message: "password reset, please sign in again",
	}, nil
}

// DisableMfa turns MFA off for an identity (admin recovery path, for a
// lost authenticator). The secret and backup codes are destroyed.
func (s *AuthService) DisableMfa(ctx context.Context, identityID, adminID string) error {
	identity, err := s.repo.GetByID(ctx, identityID)
	if err != nil {
		return fmt.Errorf("failed to load identity: %w", err)
	}
	if identity == nil {
		return autherror.ErrIdentityNotFound
	}
	if !identity.MfaEnabled {
		return autherror.ErrMfaNotEnabled
	}

	if err := s.repo.DisableMfa(ctx, identityID); err != nil {
		return fmt.Errorf("failed to disable mfa: %w", err)
	}

	s.auditSink.Record(audit.Event{
		Action:     "mfa.disabled",
		IdentityID: identityID,
		Success:    true,
		Detail:     "disabled by admin " + adminID,
	})
	return nil
}

// rotatePassword enforces the reuse window, installs the new hash and
// revokes every live session. Shared by the change and reset paths.
func (s *AuthService) rotatePassword(ctx context.Context, identity *domain.Identity, newPassword, sourceIP, revocationReason string) error {
	history, err := s.repo.PasswordHistory(ctx, identity.ID, authconstant.PasswordHistoryDepth)
	if err != nil {
		return fmt.Errorf("failed to load password history: %w", err)
	}
	for _, oldHash := range append(history, identity.PasswordHash) {
		if bcrypt.CompareHashAndPassword([]byte(oldHash), []byte(newPassword)) == nil {
			return autherror.ErrPasswordRecentlyUsed
		}
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	expiresAt := now.AddDate(0, 0, authconstant.PasswordExpiryDays)
	if err := s.repo.UpdatePassword(ctx, identity.ID, string(newHash), now, expiresAt); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if _, err := s.tokens.RevokeAll(ctx, identity.ID, revocationReason, sourceIP); err != nil {
		zap.L().Error("failed to revoke sessions after password rotation",
			zap.String("identity_id", identity.ID), zap.Error(err))
	}
	return nil
}

func (s *AuthService) finishLogin(ctx context.Context, identity *domain.Identity, sourceIP string) (*dto.LoginResult, error) {
	pair, err := s.tokens.Issue(ctx, identity, sourceIP)
	if err != nil {
		return nil, err
	}

	s.auditSink.Record(audit.Event{
		Action:     "login.success",
		IdentityID: identity.ID,
		Email:      identity.Email,
		TenantID:   tenantString(identity.TenantID),
		IPAddress:  sourceIP,
		Success:    true,
	})

	return &dto.LoginResult{
		State:    dto.LoginStateAuthenticated,
		Tokens:   pair,
		Identity: &dto.IdentitySummary{
			ID:       identity.ID,
			Email:    identity.Email,
			Role:     identity.Role,
			TenantID: identity.TenantID,
		},
	}, nil
}

func (s *AuthService) checkRate(ctx context.Context, key string, limit int, window time.Duration) error {
	decision, err := s.limiter.Check(ctx, key, limit, window)
	if err != nil {
		return fmt.Errorf("rate limit check failed: %w", err)
	}
	if !decision.Allowed {
		return &autherror.RateLimitedError{
			RetryAfter: time.Duration(decision.RetryAfterSeconds) * time.Second,
			Key:        key,
		}
	}
	return nil
}

func (s *AuthService) recordAttempt(ctx context.Context, input dto.LoginInput, identityID string, success bool, detail string) {
	if err := s.repo.RecordLoginAttempt(ctx, input.Email, tenantPtr(input.TenantID), input.IPAddress, success); err != nil {
		zap.L().Warn("failed to record login attempt", zap.String("email", input.Email), zap.Error(err))
	}
	s.auditSink.Record(audit.Event{
		Action:     "login.attempt",
		IdentityID: identityID,
		Email:      input.Email,
		TenantID:   input.TenantID,
		IPAddress:  input.IPAddress,
		Success:    success,
		Detail:     detail,
	})
}

func tenantPtr(tenantID string) *string {
	if tenantID == "" {
		return nil
	}
	return &tenantID
}

func tenantString(tenantID *string) string {
	if tenantID == nil {
		return ""
	}
	return *tenantID
}
