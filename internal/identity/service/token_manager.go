package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MorisHR/HRAPP-sub003/internal/audit"
	autherror "github.com/MorisHR/HRAPP-sub003/internal/errors"
	"github.com/MorisHR/HRAPP-sub003/internal/identity/domain"
	"github.com/MorisHR/HRAPP-sub003/internal/identity/dto"
	authconstant "github.com/MorisHR/HRAPP-sub003/pkg/constant"
)

// TokenManager mints access/refresh pairs, rotates refresh tokens and
// detects reuse. Every refresh token ever issued stays in the ledger; a
// rotation links the spent token to its successor so the chain can be
// walked and poisoned when a spent token comes back.
type TokenManager struct {
	ledger             domain.TokenRepository
	identities         domain.IdentityRepository
	generator          TokenGenerator
	auditSink          audit.Sink
	refreshTokenExpiry time.Duration
	maxActiveSessions  int
	now                func() time.Time
}

func NewTokenManager(
	ledger domain.TokenRepository,
	identities domain.IdentityRepository,
	generator TokenGenerator,
	auditSink audit.Sink,
	refreshExpiryMin int,
	maxActiveSessions int,
) *TokenManager {
	return &TokenManager{
		ledger:             ledger,
		identities:         identities,
		generator:          generator,
		auditSink:          auditSink,
		refreshTokenExpiry: time.Duration(refreshExpiryMin) * time.Minute,
		maxActiveSessions:  maxActiveSessions,
		now:                time.Now,
	}
}

// WithClock overrides the manager's time source. Test hook.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	tm.now = now
	return tm
}

// Issue mints a signed access token and an opaque refresh token recorded as
// a new chain head. Exceeding the concurrent-session cap revokes the
// identity's oldest live session.
func (tm *TokenManager) Issue(ctx context.Context, identity *domain.Identity, sourceIP string) (*dto.TokenPair, error) {
	now := tm.now().UTC()

	accessToken, expiresAt, err := tm.generator.GenerateAccessToken(identity, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	raw, hash, err := newOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	record := &domain.RefreshToken{
		ID:         uuid.NewString(),
		IdentityID: identity.ID,
		TenantID:   identity.TenantID,
		TokenHash:  hash,
		IssuedAt:   now,
		ExpiresAt:  now.Add(tm.refreshTokenExpiry),
		SourceIP:   sourceIP,
	}

	if err := tm.ledger.Store(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	if tm.maxActiveSessions > 0 {
		active, err := tm.ledger.CountActive(ctx, identity.ID, now)
		if err != nil {
			zap.L().Warn("failed to count active sessions", zap.String("identity_id", identity.ID), zap.Error(err))
		} else if active > tm.maxActiveSessions {
			if err := tm.ledger.RevokeOldest(ctx, identity.ID, authconstant.RevocationReasonSessionLimit, now); err != nil {
				zap.L().Warn("failed to revoke oldest session", zap.String("identity_id", identity.ID), zap.Error(err))
			}
		}
	}

	return &dto.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: raw,
		ExpiresAt:    expiresAt,
	}, nil
}

// Refresh exchanges a presented refresh token for a new pair. A revoked
// token presented again is reuse: the whole forward chain is revoked and
// the caller must log in again. The rotate step is atomic; two concurrent
// refreshes of one token yield exactly one success.
func (tm *TokenManager) Refresh(ctx context.Context, presented, sourceIP string) (*dto.TokenPair, error) {
	now := tm.now().UTC()

	token, err := tm.ledger.GetByHash(ctx, hashOpaqueToken(presented))
	if err != nil {
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if token == nil {
		return nil, autherror.ErrRefreshTokenNotFound
	}

	if token.Revoked() {
		return nil, tm.poisonChain(ctx, token, sourceIP, now)
	}

	if token.Expired(now) {
		return nil, autherror.ErrRefreshTokenExpired
	}

	identity, err := tm.identities.GetByID(ctx, token.IdentityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load identity for refresh: %w", err)
	}
	if identity == nil || !identity.IsActive {
		return nil, autherror.ErrAccountInactive
	}

	accessToken, expiresAt, err := tm.generator.GenerateAccessToken(identity, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	raw, hash, err := newOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	successor := &domain.RefreshToken{
		ID:         uuid.NewString(),
		IdentityID: token.IdentityID,
		TenantID:   token.TenantID,
		TokenHash:  hash,
		IssuedAt:   now,
		ExpiresAt:  now.Add(tm.refreshTokenExpiry),
		SourceIP:   sourceIP,
	}

	rotated, err := tm.ledger.Rotate(ctx, token.ID, successor, now)
	if err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	if !rotated {
		// Lost the race: someone else spent this token between our lookup
		// and the conditional revoke. Treat exactly like replayed reuse.
		return nil, tm.poisonChain(ctx, token, sourceIP, now)
	}

	return &dto.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: raw,
		ExpiresAt:    expiresAt,
	}, nil
}

// Revoke marks the presented token revoked. Revocation is monotonic;
// revoking an already-revoked token is a no-op.
func (tm *TokenManager) Revoke(ctx context.Context, presented, reason, sourceIP string) error {
	token, err := tm.ledger.GetByHash(ctx, hashOpaqueToken(presented))
	if err != nil {
		return fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if token == nil {
		return autherror.ErrRefreshTokenNotFound
	}
	if token.Revoked() {
		return nil
	}

	if err := tm.ledger.Revoke(ctx, token.ID, reason, tm.now().UTC()); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	tm.auditSink.Record(audit.Event{
		Action:     "token.revoked",
		IdentityID: token.IdentityID,
		IPAddress:  sourceIP,
		Success:    true,
		Detail:     reason,
	})
	return nil
}

// RevokeAll revokes every live refresh token the identity holds.
func (tm *TokenManager) RevokeAll(ctx context.Context, identityID, reason, sourceIP string) (int, error) {
	count, err := tm.ledger.RevokeAllForIdentity(ctx, identityID, reason, tm.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to revoke tokens: %w", err)
	}

	tm.auditSink.Record(audit.Event{
		Action:     "token.revoke_all",
		IdentityID: identityID,
		IPAddress:  sourceIP,
		Success:    true,
		Detail:     fmt.Sprintf("%s (%d tokens)", reason, count),
	})
	return count, nil
}

// ListSessions returns the identity's live refresh tokens.
func (tm *TokenManager) ListSessions(ctx context.Context, identityID string) ([]dto.SessionOutput, error) {
	tokens, err := tm.ledger.ListActive(ctx, identityID, tm.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]dto.SessionOutput, 0, len(tokens))
	for _, t := range tokens {
		sessions = append(sessions, dto.SessionOutput{
			ID:        t.ID,
			IPAddress: t.SourceIP,
			IssuedAt:  t.IssuedAt,
			ExpiresAt: t.ExpiresAt,
		})
	}
	return sessions, nil
}

// poisonChain handles a spent token being presented again: every live
// descendant is revoked so the thief's rotated-ahead token dies too. The
// caller always receives ErrTokenReuseDetected.
func (tm *TokenManager) poisonChain(ctx context.Context, token *domain.RefreshToken, sourceIP string, now time.Time) error {
	revoked, err := tm.ledger.RevokeDescendants(ctx, token.ID, authconstant.RevocationReasonReuse, now)
	if err != nil {
		zap.L().Error("failed to revoke token chain after reuse",
			zap.String("token_id", token.ID), zap.Error(err))
	}

	zap.L().Warn("refresh token reuse detected",
		zap.String("token_id", token.ID),
		zap.String("identity_id", token.IdentityID),
		zap.String("ip", sourceIP),
		zap.Int("descendants_revoked", revoked))

	tm.auditSink.Record(audit.Event{
		Action:     "token.reuse_detected",
		IdentityID: token.IdentityID,
		IPAddress:  sourceIP,
		Success:    false,
		Detail:     fmt.Sprintf("chain poisoned, %d descendants revoked", revoked),
	})

	return autherror.ErrTokenReuseDetected
}

// newOpaqueToken returns a fresh refresh token and its storage hash.
func newOpaqueToken() (raw, hash string, err error) {
	buf := make([]byte, authconstant.RefreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = base64.RawURLEncoding.EncodeToString(buf)
	return raw, hashOpaqueToken(raw), nil
}

func hashOpaqueToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
