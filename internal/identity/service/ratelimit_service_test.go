package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MorisHR/HRAPP-sub003/internal/identity/domain"
	"github.com/MorisHR/HRAPP-sub003/internal/identity/service"
	"github.com/MorisHR/HRAPP-sub003/internal/mocks"
)

func newRateLimiterFixture(ctrl *gomock.Controller) (*mocks.MockRateLimitRepository, *mocks.MockCacheClient, *service.RateLimiter) {
	repo := mocks.NewMockRateLimitRepository(ctrl)
	cacheClient := mocks.NewMockCacheClient(ctrl)
	rl := service.NewRateLimiter(repo, cacheClient).
		WithClock(func() time.Time { return testNow })
	return repo, cacheClient, rl
}

func TestCheckAllowsUnderLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo, cacheClient, rl := newRateLimiterFixture(ctrl)

	cacheClient.EXPECT().Get(gomock.Any(), "ratelimit:blacklist:login:10.0.0.1").Return("", false, nil)
	repo.EXPECT().BlacklistedUntil(gomock.Any(), "login:10.0.0.1").Return(nil, nil)
	repo.EXPECT().Hit(gomock.Any(), "login:10.0.0.1", 15*time.Minute, testNow).
		Return(&domain.RateLimitWindow{WindowStart: testNow.Add(-time.Minute), Count: 3}, nil)

	decision, err := rl.Check(context.Background(), "login:10.0.0.1", 5, 15*time.Minute)

	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 3, decision.CurrentCount)
	assert.Equal(t, 2, decision.Remaining)
}

func TestCheckDeniesOverLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo, cacheClient, rl := newRateLimiterFixture(ctrl)

	windowStart := testNow.Add(-5 * time.Minute)
	cacheClient.EXPECT().Get(gomock.Any(), gomock.Any()).Return("", false, nil)
	repo.EXPECT().BlacklistedUntil(gomock.Any(), gomock.Any()).Return(nil, nil)
	repo.EXPECT().Hit(gomock.Any(), "login:10.0.0.1", 15*time.Minute, testNow).
		Return(&domain.RateLimitWindow{WindowStart: windowStart, Count: 6}, nil)

	decision, err := rl.Check(context.Background(), "login:10.0.0.1", 5, 15*time.Minute)

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)
	assert.Equal(t, 600, decision.RetryAfterSeconds)
	assert.Equal(t, windowStart.Add(15*time.Minute), decision.ResetsAt)
}

func TestCheckLimitBoundaryIsInclusive(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo, cacheClient, rl := newRateLimiterFixture(ctrl)

	cacheClient.EXPECT().Get(gomock.Any(), gomock.Any()).Return("", false, nil)
	repo.EXPECT().BlacklistedUntil(gomock.Any(), gomock.Any()).Return(nil, nil)
	repo.EXPECT().Hit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.RateLimitWindow{WindowStart: testNow, Count: 5}, nil)

	decision, err := rl.Check(context.Background(), "login:10.0.0.1", 5, 15*time.Minute)

	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)
}

func TestCheckFailsClosedOnStoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo, cacheClient, rl := newRateLimiterFixture(ctrl)

	cacheClient.EXPECT().Get(gomock.Any(), gomock.Any()).Return("", false, nil)
	repo.EXPECT().BlacklistedUntil(gomock.Any(), gomock.Any()).Return(nil, nil)
	repo.EXPECT().Hit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused"))

	decision, err := rl.Check(context.Background(), "login:10.0.0.1", 5, 15*time.Minute)

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Greater(t, decision.RetryAfterSeconds, 0)
}

func TestCheckFailsClosedOnBlacklistLookupError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo, cacheClient, rl := newRateLimiterFixture(ctrl)

	// No Hit expectation: a broken blacklist lookup denies without counting.
	cacheClient.EXPECT().Get(gomock.Any(), gomock.Any()).Return("", false, nil)
	repo.EXPECT().BlacklistedUntil(gomock.Any(), "login:10.0.0.1").
		Return(nil, errors.New("connection refused"))

	decision, err := rl.Check(context.Background(), "login:10.0.0.1", 5, 15*time.Minute)

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.False(t, decision.IsBlacklisted)
	assert.Greater(t, decision.RetryAfterSeconds, 0)
}

func TestCheckBlacklistedKeySkipsCounterAndPrimesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo, cacheClient, rl := newRateLimiterFixture(ctrl)

	// No Hit expectation: a blacklisted key must not move the window counter.
	until := testNow.Add(time.Hour)
	cacheClient.EXPECT().Get(gomock.Any(), gomock.Any()).Return("", false, nil)
	repo.EXPECT().BlacklistedUntil(gomock.Any(), "login:10.0.0.1").Return(&until, nil)
	cacheClient.EXPECT().Set(gomock.Any(), "ratelimit:blacklist:login:10.0.0.1",
		until.Format(time.RFC3339), time.Hour).Return(nil)

	decision, err := rl.Check(context.Background(), "login:10.0.0.1", 5, 15*time.Minute)

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.True(t, decision.IsBlacklisted)
	assert.Equal(t, 3600, decision.RetryAfterSeconds)
}

func TestCheckExpiredStoreBlacklistFallsThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo, cacheClient, rl := newRateLimiterFixture(ctrl)

	expired := testNow.Add(-time.Minute)
	cacheClient.EXPECT().Get(gomock.Any(), gomock.Any()).Return("", false, nil)
	repo.EXPECT().BlacklistedUntil(gomock.Any(), gomock.Any()).Return(&expired, nil)
	repo.EXPECT().Hit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.RateLimitWindow{WindowStart: testNow, Count: 1}, nil)

	decision, err := rl.Check(context.Background(), "login:10.0.0.1", 5, 15*time.Minute)

	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestCheckBlacklistCacheFastPathSkipsStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	_, cacheClient, rl := newRateLimiterFixture(ctrl)

	until := testNow.Add(30 * time.Minute)
	cacheClient.EXPECT().Get(gomock.Any(), "ratelimit:blacklist:login:10.0.0.1").
		Return(until.Format(time.RFC3339), true, nil)

	decision, err := rl.Check(context.Background(), "login:10.0.0.1", 5, 15*time.Minute)

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.True(t, decision.IsBlacklisted)
	assert.Equal(t, 1800, decision.RetryAfterSeconds)
}

func TestCheckStaleCachedBlacklistFallsThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo, cacheClient, rl := newRateLimiterFixture(ctrl)

	expired := testNow.Add(-time.Minute)
	cacheClient.EXPECT().Get(gomock.Any(), gomock.Any()).
		Return(expired.Format(time.RFC3339), true, nil)
	repo.EXPECT().BlacklistedUntil(gomock.Any(), gomock.Any()).Return(nil, nil)
	repo.EXPECT().Hit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.RateLimitWindow{WindowStart: testNow, Count: 1}, nil)

	decision, err := rl.Check(context.Background(), "login:10.0.0.1", 5, 15*time.Minute)

	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestCheckWithoutCacheGoesStraightToStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := mocks.NewMockRateLimitRepository(ctrl)
	rl := service.NewRateLimiter(repo, nil).
		WithClock(func() time.Time { return testNow })

	repo.EXPECT().BlacklistedUntil(gomock.Any(), gomock.Any()).Return(nil, nil)
	repo.EXPECT().Hit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.RateLimitWindow{WindowStart: testNow, Count: 1}, nil)

	decision, err := rl.Check(context.Background(), "login:10.0.0.1", 5, 15*time.Minute)

	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestBlacklistWritesStoreAndCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo, cacheClient, rl := newRateLimiterFixture(ctrl)

	until := testNow.Add(24 * time.Hour)
	repo.EXPECT().Blacklist(gomock.Any(), "login:10.0.0.66", until).Return(nil)
	cacheClient.EXPECT().Set(gomock.Any(), "ratelimit:blacklist:login:10.0.0.66",
		until.Format(time.RFC3339), 24*time.Hour).Return(nil)

	err := rl.Blacklist(context.Background(), "login:10.0.0.66", until, "sustained brute force")
	assert.NoError(t, err)
}
