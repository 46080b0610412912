package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/poll/analytics/internal/core/domain"
	"github.com/poll/analytics/internal/core/ports"
	"github.com/poll/analytics/internal/metrics"
)

// CachedAnalyticsService decorates an AnalyticsService with a bounded
// TTL result cache. It is opt-in: when no cache is configured the plain
// service is wired instead and every call recomputes from a fresh
// snapshot. Invalidation is explicit; expiry otherwise bounds staleness
// to the cache TTL.
type CachedAnalyticsService struct {
	inner ports.AnalyticsService
	cache ports.ResultCache
}

func NewCachedAnalyticsService(inner ports.AnalyticsService, cache ports.ResultCache) *CachedAnalyticsService {
	return &CachedAnalyticsService{inner: inner, cache: cache}
}

func (s *CachedAnalyticsService) UserOverview(ctx context.Context, userID int64) (*domain.AnalyticsOverview, error) {
	key := fmt.Sprintf("overview:%d", userID)
	if cached, ok := s.cache.Get(key); ok {
		metrics.CacheEvent(true)
		return cached.(*domain.AnalyticsOverview), nil
	}
	metrics.CacheEvent(false)

	result, err := s.inner.UserOverview(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, result)
	return result, nil
}

func (s *CachedAnalyticsService) PollAnalytics(ctx context.Context, pollID int64) (*domain.PollAnalytics, error) {
	key := fmt.Sprintf("poll:%d", pollID)
	if cached, ok := s.cache.Get(key); ok {
		metrics.CacheEvent(true)
		return cached.(*domain.PollAnalytics), nil
	}
	metrics.CacheEvent(false)

	result, err := s.inner.PollAnalytics(ctx, pollID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, result)
	return result, nil
}

func (s *CachedAnalyticsService) PollActivity(ctx context.Context, pollID int64) (*domain.PollActivity, error) {
	key := fmt.Sprintf("activity:%d", pollID)
	if cached, ok := s.cache.Get(key); ok {
		metrics.CacheEvent(true)
		return cached.(*domain.PollActivity), nil
	}
	metrics.CacheEvent(false)

	result, err := s.inner.PollActivity(ctx, pollID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, result)
	return result, nil
}

func (s *CachedAnalyticsService) VotingTrends(ctx context.Context, userID int64, days int) (*domain.VotingTrends, error) {
	key := fmt.Sprintf("trends:%d:%d", userID, days)
	if cached, ok := s.cache.Get(key); ok {
		metrics.CacheEvent(true)
		return cached.(*domain.VotingTrends), nil
	}
	metrics.CacheEvent(false)

	result, err := s.inner.VotingTrends(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, result)
	return result, nil
}

func (s *CachedAnalyticsService) PopularPolls(ctx context.Context, limit int, timeframe string) ([]domain.PopularPoll, error) {
	key := fmt.Sprintf("popular:%d:%s", limit, timeframe)
	if cached, ok := s.cache.Get(key); ok {
		metrics.CacheEvent(true)
		return cached.([]domain.PopularPoll), nil
	}
	metrics.CacheEvent(false)

	result, err := s.inner.PopularPolls(ctx, limit, timeframe)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, result)
	return result, nil
}

// InvalidateUser drops every cached product scoped to one user.
func (s *CachedAnalyticsService) InvalidateUser(userID int64) {
	s.cache.Remove(fmt.Sprintf("overview:%d", userID))
	s.removeByPrefix(fmt.Sprintf("trends:%d:", userID))
}

// InvalidatePoll drops the poll-scoped products and every ranking,
// since a ranking may include the poll.
func (s *CachedAnalyticsService) InvalidatePoll(pollID int64) {
	s.cache.Remove(fmt.Sprintf("poll:%d", pollID))
	s.cache.Remove(fmt.Sprintf("activity:%d", pollID))
	s.removeByPrefix("popular:")
}

func (s *CachedAnalyticsService) removeByPrefix(prefixes ...string) {
	for _, key := range s.cache.Keys() {
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix) {
				s.cache.Remove(key)
				break
			}
		}
	}
}
