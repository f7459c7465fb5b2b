package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MorisHR/HRAPP-sub003/internal/cache"
	"github.com/MorisHR/HRAPP-sub003/internal/identity/domain"
)

const blacklistCachePrefix = "ratelimit:blacklist:"

// RateLimiter admits or denies actions against a fixed time window counter.
// It is policy-free: callers supply the limit and window per use. A
// persistence failure denies the request rather than letting it through.
type RateLimiter struct {
	repo  domain.RateLimitRepository
	cache cache.Client
	now   func() time.Time
}

func NewRateLimiter(repo domain.RateLimitRepository, cacheClient cache.Client) *RateLimiter {
	return &RateLimiter{
		repo:  repo,
		cache: cacheClient,
		now:   time.Now,
	}
}

// WithClock overrides the limiter's time source. Test hook.
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	rl.now = now
	return rl
}

// Check records one hit for key and decides whether it is allowed. A
// blacklisted key is denied before the window counter moves, so a
// blacklisted caller does not burn window capacity.
func (rl *RateLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) (*domain.RateLimitDecision, error) {
	now := rl.now().UTC()

	if until, ok := rl.cachedBlacklist(ctx, key, now); ok {
		return denied(limit, until, now, true), nil
	}

	until, err := rl.repo.BlacklistedUntil(ctx, key)
	if err != nil {
		// Fail closed: an unreachable store must not disable the limiter.
		zap.L().Error("blacklist lookup failed, denying", zap.String("key", key), zap.Error(err))
		return denied(limit, now.Add(window), now, false), nil
	}
	if until != nil && until.After(now) {
		rl.primeBlacklistCache(ctx, key, *until, now)
		return denied(limit, *until, now, true), nil
	}

	win, err := rl.repo.Hit(ctx, key, window, now)
	if err != nil {
		zap.L().Error("rate limit check failed, denying", zap.String("key", key), zap.Error(err))
		return denied(limit, now.Add(window), now, false), nil
	}

	resetsAt := win.WindowStart.Add(window)

	remaining := limit - win.Count
	if remaining < 0 {
		remaining = 0
	}

	decision := &domain.RateLimitDecision{
		Allowed:      win.Count <= limit,
		CurrentCount: win.Count,
		Limit:        limit,
		Remaining:    remaining,
		ResetsAt:     resetsAt,
	}
	if !decision.Allowed {
		decision.RetryAfterSeconds = retryAfterSeconds(resetsAt, now)
	}

	return decision, nil
}

// Blacklist forces denial for key until the given time, regardless of count.
func (rl *RateLimiter) Blacklist(ctx context.Context, key string, until time.Time, reason string) error {
	if err := rl.repo.Blacklist(ctx, key, until); err != nil {
		return fmt.Errorf("failed to blacklist %s: %w", key, err)
	}
	zap.L().Warn("rate limit key blacklisted",
		zap.String("key", key), zap.Time("until", until), zap.String("reason", reason))
	rl.primeBlacklistCache(ctx, key, until, rl.now().UTC())
	return nil
}

func (rl *RateLimiter) cachedBlacklist(ctx context.Context, key string, now time.Time) (time.Time, bool) {
	if rl.cache == nil {
		return time.Time{}, false
	}
	val, ok, err := rl.cache.Get(ctx, blacklistCachePrefix+key)
	if err != nil || !ok {
		return time.Time{}, false
	}
	until, err := time.Parse(time.RFC3339, val)
	if err != nil || !until.After(now) {
		return time.Time{}, false
	}
	return until, true
}

func (rl *RateLimiter) primeBlacklistCache(ctx context.Context, key string, until, now time.Time) {
	if rl.cache == nil || !until.After(now) {
		return
	}
	// Cache misses fall back to the store; errors here are non-fatal.
	_ = rl.cache.Set(ctx, blacklistCachePrefix+key, until.Format(time.RFC3339), until.Sub(now))
}

func denied(limit int, resetsAt, now time.Time, blacklisted bool) *domain.RateLimitDecision {
	return &domain.RateLimitDecision{
		Allowed:           false,
		Limit:             limit,
		Remaining:         0,
		ResetsAt:          resetsAt,
		RetryAfterSeconds: retryAfterSeconds(resetsAt, now),
		IsBlacklisted:     blacklisted,
	}
}

func retryAfterSeconds(resetsAt, now time.Time) int {
	secs := int(resetsAt.Sub(now).Seconds())
	if secs < 1 {
		secs = 1
	}
	return secs
}
