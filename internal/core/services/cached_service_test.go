package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poll/analytics/internal/adapters/cache"
	"github.com/poll/analytics/internal/core/domain"
)

// countingService records how many times each product was computed.
type countingService struct {
	overviewCalls int
	pollCalls     int
	activityCalls int
	trendsCalls   int
	popularCalls  int
	err           error
}

func (c *countingService) UserOverview(_ context.Context, userID int64) (*domain.AnalyticsOverview, error) {
	c.overviewCalls++
	if c.err != nil {
		return nil, c.err
	}
	return &domain.AnalyticsOverview{TotalPolls: int(userID)}, nil
}

func (c *countingService) PollAnalytics(_ context.Context, pollID int64) (*domain.PollAnalytics, error) {
	c.pollCalls++
	return &domain.PollAnalytics{PollID: pollID}, nil
}

func (c *countingService) PollActivity(_ context.Context, pollID int64) (*domain.PollActivity, error) {
	c.activityCalls++
	return &domain.PollActivity{PollID: pollID}, nil
}

func (c *countingService) VotingTrends(_ context.Context, _ int64, days int) (*domain.VotingTrends, error) {
	c.trendsCalls++
	return &domain.VotingTrends{TotalVotesPeriod: days}, nil
}

func (c *countingService) PopularPolls(_ context.Context, limit int, _ string) ([]domain.PopularPoll, error) {
	c.popularCalls++
	return make([]domain.PopularPoll, limit), nil
}

func newCached(t *testing.T) (*CachedAnalyticsService, *countingService) {
	t.Helper()
	inner := &countingService{}
	return NewCachedAnalyticsService(inner, cache.NewTTLCache(64, time.Minute)), inner
}

func TestCachedServiceReuse(t *testing.T) {
	ctx := context.Background()

	t.Run("overview is computed once per user", func(t *testing.T) {
		svc, inner := newCached(t)

		first, err := svc.UserOverview(ctx, 1)
		require.NoError(t, err)
		second, err := svc.UserOverview(ctx, 1)
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, 1, inner.overviewCalls)
	})

	t.Run("distinct users miss independently", func(t *testing.T) {
		svc, inner := newCached(t)

		_, err := svc.UserOverview(ctx, 1)
		require.NoError(t, err)
		_, err = svc.UserOverview(ctx, 2)
		require.NoError(t, err)

		assert.Equal(t, 2, inner.overviewCalls)
	})

	t.Run("trends key includes the window", func(t *testing.T) {
		svc, inner := newCached(t)

		_, err := svc.VotingTrends(ctx, 1, 7)
		require.NoError(t, err)
		_, err = svc.VotingTrends(ctx, 1, 30)
		require.NoError(t, err)
		_, err = svc.VotingTrends(ctx, 1, 7)
		require.NoError(t, err)

		assert.Equal(t, 2, inner.trendsCalls)
	})

	t.Run("popular key includes limit and timeframe", func(t *testing.T) {
		svc, inner := newCached(t)

		_, err := svc.PopularPolls(ctx, 10, "week")
		require.NoError(t, err)
		_, err = svc.PopularPolls(ctx, 10, "month")
		require.NoError(t, err)
		_, err = svc.PopularPolls(ctx, 10, "week")
		require.NoError(t, err)

		assert.Equal(t, 2, inner.popularCalls)
	})

	t.Run("errors are not cached", func(t *testing.T) {
		inner := &countingService{err: domain.ErrInvalidUserID}
		svc := NewCachedAnalyticsService(inner, cache.NewTTLCache(64, time.Minute))

		_, err := svc.UserOverview(ctx, 1)
		require.ErrorIs(t, err, domain.ErrInvalidUserID)
		_, err = svc.UserOverview(ctx, 1)
		require.ErrorIs(t, err, domain.ErrInvalidUserID)

		assert.Equal(t, 2, inner.overviewCalls)
	})
}

func TestCachedServiceInvalidation(t *testing.T) {
	ctx := context.Background()

	t.Run("user invalidation drops overview and trends", func(t *testing.T) {
		svc, inner := newCached(t)

		_, err := svc.UserOverview(ctx, 1)
		require.NoError(t, err)
		_, err = svc.VotingTrends(ctx, 1, 7)
		require.NoError(t, err)

		svc.InvalidateUser(1)

		_, err = svc.UserOverview(ctx, 1)
		require.NoError(t, err)
		_, err = svc.VotingTrends(ctx, 1, 7)
		require.NoError(t, err)

		assert.Equal(t, 2, inner.overviewCalls)
		assert.Equal(t, 2, inner.trendsCalls)
	})

	t.Run("user invalidation leaves other users cached", func(t *testing.T) {
		svc, inner := newCached(t)

		// Ids 1 and 10 share a digit prefix; only the exact user drops.
		_, err := svc.UserOverview(ctx, 1)
		require.NoError(t, err)
		_, err = svc.UserOverview(ctx, 10)
		require.NoError(t, err)
		_, err = svc.VotingTrends(ctx, 10, 7)
		require.NoError(t, err)

		svc.InvalidateUser(1)

		_, err = svc.UserOverview(ctx, 10)
		require.NoError(t, err)
		_, err = svc.VotingTrends(ctx, 10, 7)
		require.NoError(t, err)

		assert.Equal(t, 3, inner.overviewCalls)
		assert.Equal(t, 1, inner.trendsCalls)
	})

	t.Run("poll invalidation drops poll products and rankings", func(t *testing.T) {
		svc, inner := newCached(t)

		_, err := svc.PollAnalytics(ctx, 5)
		require.NoError(t, err)
		_, err = svc.PollActivity(ctx, 5)
		require.NoError(t, err)
		_, err = svc.PopularPolls(ctx, 10, "week")
		require.NoError(t, err)

		svc.InvalidatePoll(5)

		_, err = svc.PollAnalytics(ctx, 5)
		require.NoError(t, err)
		_, err = svc.PollActivity(ctx, 5)
		require.NoError(t, err)
		_, err = svc.PopularPolls(ctx, 10, "week")
		require.NoError(t, err)

		assert.Equal(t, 2, inner.pollCalls)
		assert.Equal(t, 2, inner.activityCalls)
		assert.Equal(t, 2, inner.popularCalls)
	})

	t.Run("poll invalidation leaves other polls cached", func(t *testing.T) {
		svc, inner := newCached(t)

		_, err := svc.PollAnalytics(ctx, 5)
		require.NoError(t, err)
		_, err = svc.PollAnalytics(ctx, 50)
		require.NoError(t, err)

		svc.InvalidatePoll(5)

		_, err = svc.PollAnalytics(ctx, 50)
		require.NoError(t, err)

		assert.Equal(t, 2, inner.pollCalls)
	})
}
