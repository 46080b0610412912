package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/poll/analytics/internal/core/domain"
	"github.com/poll/analytics/internal/core/ports"
	"github.com/poll/analytics/internal/core/stats"
	"github.com/poll/analytics/internal/metrics"
)

// recentActivityLimit bounds the overview activity feed.
const recentActivityLimit = 10

// popularHoursLimit is how many hour-of-day entries a trend report
// carries.
const popularHoursLimit = 3

type analyticsService struct {
	store ports.AnalyticsStore
	log   *zap.Logger
	now   func() time.Time
}

// NewAnalyticsService builds the stateless analytics core. All working
// data is fetched fresh from the store on every call.
func NewAnalyticsService(store ports.AnalyticsStore, log *zap.Logger) ports.AnalyticsService {
	return &analyticsService{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

func (s *analyticsService) UserOverview(ctx context.Context, userID int64) (*domain.AnalyticsOverview, error) {
	if userID <= 0 {
		return nil, domain.ErrInvalidUserID
	}
	defer metrics.ObserveQuery("overview", time.Now())
	s.log.Info("generating analytics overview", zap.Int64("user_id", userID))

	polls, err := s.store.ListPolls(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls for user %d: %w", userID, err)
	}

	if len(polls) == 0 {
		return &domain.AnalyticsOverview{RecentActivity: []domain.ActivityItem{}}, nil
	}

	totalVotes, err := s.store.CountVotes(ctx, ports.VoteFilter{OwnerID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to count votes for user %d: %w", userID, err)
	}

	var (
		totalViews    int
		engagementSum float64
		engagedPolls  int
		mostPopular   *domain.PollSummary
		maxVotes      int
	)
	for i := range polls {
		poll := polls[i]
		totalViews += poll.ViewCount

		count, err := s.store.CountVotes(ctx, ports.VoteFilter{PollID: poll.ID})
		if err != nil {
			return nil, fmt.Errorf("failed to count votes for poll %d: %w", poll.ID, err)
		}

		// Zero-view polls are excluded from the average, not counted
		// as zero.
		if poll.ViewCount > 0 {
			engagementSum += float64(count) / float64(poll.ViewCount) * 100
			engagedPolls++
		}

		// Strict comparison: on equal counts the first poll
		// encountered stays the most popular one.
		if count > maxVotes {
			maxVotes = count
			mostPopular = &domain.PollSummary{
				ID:        poll.ID,
				Question:  poll.Question,
				CreatedAt: poll.CreatedAt,
			}
		}
	}

	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	pollsThisMonth := 0
	for _, poll := range polls {
		if !poll.CreatedAt.UTC().Before(monthStart) {
			pollsThisMonth++
		}
	}

	recentVotes, err := s.store.RecentVotes(ctx, userID, recentActivityLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent votes for user %d: %w", userID, err)
	}
	activity := make([]domain.ActivityItem, 0, len(recentVotes))
	for _, vote := range recentVotes {
		activity = append(activity, domain.ActivityItem{
			PollID:       vote.PollID,
			PollQuestion: vote.PollQuestion,
			ActivityType: "vote",
			Timestamp:    vote.CreatedAt,
			Count:        1,
		})
	}

	return &domain.AnalyticsOverview{
		TotalPolls:            len(polls),
		TotalVotesReceived:    totalVotes,
		AverageEngagementRate: stats.SafeDivide(engagementSum, float64(engagedPolls), 0),
		MostPopularPoll:       mostPopular,
		RecentActivity:        activity,
		PollsCreatedThisMonth: pollsThisMonth,
		TotalPollViews:        totalViews,
	}, nil
}

func (s *analyticsService) PollAnalytics(ctx context.Context, pollID int64) (*domain.PollAnalytics, error) {
	if pollID <= 0 {
		return nil, domain.ErrInvalidPollID
	}
	defer metrics.ObserveQuery("poll", time.Now())
	s.log.Info("generating poll analytics", zap.Int64("poll_id", pollID))

	poll, err := s.store.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}

	distribution, err := s.store.VoteDistribution(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vote distribution for poll %d: %w", pollID, err)
	}
	totalVotes := 0
	for _, count := range distribution {
		totalVotes += count
	}

	uniqueVoters, err := s.store.CountDistinctVoters(ctx, ports.VoteFilter{PollID: pollID})
	if err != nil {
		return nil, fmt.Errorf("failed to count distinct voters for poll %d: %w", pollID, err)
	}

	voteTimes, err := s.store.VoteTimes(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vote times for poll %d: %w", pollID, err)
	}
	var lastVoteAt *time.Time
	if len(voteTimes) > 0 {
		last := voteTimes[len(voteTimes)-1]
		lastVoteAt = &last
	}

	now := s.now().UTC()
	hoursSinceCreation := now.Sub(poll.CreatedAt).Hours()
	velocity := 0.0
	if hoursSinceCreation > 0 {
		velocity = float64(totalVotes) / hoursSinceCreation
	}

	return &domain.PollAnalytics{
		PollID:           poll.ID,
		PollQuestion:     poll.Question,
		TotalVotes:       totalVotes,
		EngagementRate:   stats.SafeDivide(float64(totalVotes), float64(poll.ViewCount), 0) * 100,
		VoteDistribution: distribution,
		PerformanceScore: stats.PerformanceScore(totalVotes, poll.ViewCount, poll.CreatedAt, now),
		CreatedAt:        poll.CreatedAt,
		LastVoteAt:       lastVoteAt,
		TotalViews:       poll.ViewCount,
		UniqueVoters:     uniqueVoters,
		VoteVelocity:     velocity,
	}, nil
}

func (s *analyticsService) PollActivity(ctx context.Context, pollID int64) (*domain.PollActivity, error) {
	if pollID <= 0 {
		return nil, domain.ErrInvalidPollID
	}
	defer metrics.ObserveQuery("activity", time.Now())
	s.log.Info("generating poll activity report", zap.Int64("poll_id", pollID))

	if _, err := s.store.GetPoll(ctx, pollID); err != nil {
		return nil, err
	}

	voteTimes, err := s.store.VoteTimes(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vote times for poll %d: %w", pollID, err)
	}

	dailyCounts, err := s.store.PeriodCounts(ctx, ports.PeriodQuery{Period: "day", PollID: pollID})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate votes for poll %d: %w", pollID, err)
	}

	counts := make([]float64, len(dailyCounts))
	for i, day := range dailyCounts {
		counts[i] = float64(day.Count)
	}

	peakHours, err := stats.PeakActivityPeriods(voteTimes, "hour", popularHoursLimit)
	if err != nil {
		return nil, err
	}

	return &domain.PollActivity{
		PollID:        pollID,
		DailyCounts:   dailyCounts,
		SmoothedDaily: stats.MovingAverage(counts, 3),
		PeakHours:     peakHours,
		Velocity:      stats.ActivityVelocity(voteTimes, 24),
		Anomalies:     stats.DetectAnomalies(counts, 2.0),
	}, nil
}

func (s *analyticsService) VotingTrends(ctx context.Context, userID int64, days int) (*domain.VotingTrends, error) {
	if userID <= 0 {
		return nil, domain.ErrInvalidUserID
	}
	if days < 1 || days > 365 {
		return nil, domain.ErrInvalidDays
	}
	defer metrics.ObserveQuery("trends", time.Now())
	s.log.Info("generating voting trends", zap.Int64("user_id", userID), zap.Int("days", days))

	now := s.now().UTC()
	start := now.AddDate(0, 0, -days)

	dailyVotes, err := s.store.DailyVoteCounts(ctx, userID, start, now)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daily vote counts for user %d: %w", userID, err)
	}

	totalVotes := 0
	counts := make([]int, len(dailyVotes))
	for i, day := range dailyVotes {
		totalVotes += day.VoteCount
		counts[i] = day.VoteCount
	}

	// Strict comparison keeps the earliest day on ties.
	peakDay := ""
	maxVotes := 0
	for _, day := range dailyVotes {
		if day.VoteCount > maxVotes {
			maxVotes = day.VoteCount
			peakDay = day.Date
		}
	}

	hourCounts, err := s.store.HourlyVoteCounts(ctx, userID, start, now)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hourly vote counts for user %d: %w", userID, err)
	}
	if len(hourCounts) > popularHoursLimit {
		hourCounts = hourCounts[:popularHoursLimit]
	}
	popularTimes := make([]string, 0, len(hourCounts))
	for _, hour := range hourCounts {
		popularTimes = append(popularTimes, fmt.Sprintf("%02d:00", hour.Hour))
	}

	timeframe := fmt.Sprintf("%d days", days)
	if days == 7 {
		timeframe = "week"
	}

	return &domain.VotingTrends{
		Timeframe:         timeframe,
		DailyVotes:        dailyVotes,
		PopularTimes:      popularTimes,
		EngagementTrend:   stats.EngagementTrend(counts),
		TotalVotesPeriod:  totalVotes,
		AverageDailyVotes: float64(totalVotes) / float64(days),
		PeakDay:           peakDay,
	}, nil
}

func (s *analyticsService) PopularPolls(ctx context.Context, limit int, timeframe string) ([]domain.PopularPoll, error) {
	if limit < 1 || limit > 50 {
		return nil, domain.ErrInvalidLimit
	}
	defer metrics.ObserveQuery("popular", time.Now())

	cutoff, err := stats.CutoffDate(timeframe, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, timeframe)
	}
	s.log.Info("ranking popular polls", zap.String("timeframe", timeframe), zap.Int("limit", limit))

	rows, err := s.store.PopularPolls(ctx, limit, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to rank popular polls: %w", err)
	}

	results := make([]domain.PopularPoll, 0, len(rows))
	for _, row := range rows {
		results = append(results, domain.PopularPoll{
			PollID:          row.Poll.ID,
			Question:        row.Poll.Question,
			VoteCount:       row.VoteCount,
			EngagementRate:  stats.SafeDivide(float64(row.VoteCount), float64(row.Poll.ViewCount), 0) * 100,
			CreatedAt:       row.Poll.CreatedAt,
			CreatorUsername: row.OwnerUsername,
			OptionCount:     row.OptionCount,
		})
	}
	return results, nil
}
