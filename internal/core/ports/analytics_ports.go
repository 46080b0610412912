package ports

import (
	"context"
	"time"

	"github.com/poll/analytics/internal/core/domain"
)

// VoteFilter narrows vote queries to one poll or to every poll owned by
// one user. Exactly one field should be set.
type VoteFilter struct {
	PollID  int64
	OwnerID int64
}

// PeriodQuery describes a store-side grouping of votes by truncated
// time period.
type PeriodQuery struct {
	Period  string // hour, day, week, month
	Start   time.Time
	End     time.Time
	PollID  int64 // optional equality filter
	OwnerID int64 // optional equality filter
}

// AnalyticsStore is the read-only view of the transactional poll store
// that the analytics core consumes. Implementations never write.
type AnalyticsStore interface {
	ListPolls(ctx context.Context, ownerID int64) ([]domain.Poll, error)
	GetPoll(ctx context.Context, pollID int64) (*domain.Poll, error)
	CountVotes(ctx context.Context, f VoteFilter) (int, error)
	CountDistinctVoters(ctx context.Context, f VoteFilter) (int, error)
	VoteDistribution(ctx context.Context, pollID int64) (map[string]int, error)
	DailyVoteCounts(ctx context.Context, ownerID int64, start, end time.Time) ([]domain.DailyVoteCount, error)
	HourlyVoteCounts(ctx context.Context, ownerID int64, start, end time.Time) ([]domain.HourVoteCount, error)
	PopularPolls(ctx context.Context, limit int, cutoff time.Time) ([]domain.PopularPollRow, error)
	RecentVotes(ctx context.Context, ownerID int64, limit int) ([]domain.RecentVote, error)
	VoteTimes(ctx context.Context, pollID int64) ([]time.Time, error)
	PeriodCounts(ctx context.Context, q PeriodQuery) ([]domain.PeriodCount, error)
}

// AnalyticsService exposes the derived analytics products. Every method
// is a pure function of the store snapshot, the current time and its
// parameters.
type AnalyticsService interface {
	UserOverview(ctx context.Context, userID int64) (*domain.AnalyticsOverview, error)
	PollAnalytics(ctx context.Context, pollID int64) (*domain.PollAnalytics, error)
	PollActivity(ctx context.Context, pollID int64) (*domain.PollActivity, error)
	VotingTrends(ctx context.Context, userID int64, days int) (*domain.VotingTrends, error)
	PopularPolls(ctx context.Context, limit int, timeframe string) ([]domain.PopularPoll, error)
}

// ResultCache stores computed analytics products for a bounded TTL.
type ResultCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Remove(key string)
	Keys() []string
}
