package domain

import "time"

// Derived analytics value objects. All of them are built per request
// from a fresh store snapshot and are never persisted or mutated.

// PollSummary identifies a poll inside an overview.
type PollSummary struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityItem is one entry of the recent-activity feed.
type ActivityItem struct {
	PollID       int64     `json:"poll_id"`
	PollQuestion string    `json:"poll_question"`
	ActivityType string    `json:"activity_type"`
	Timestamp    time.Time `json:"timestamp"`
	Count        int       `json:"count"`
}

// AnalyticsOverview aggregates across all polls owned by one user.
type AnalyticsOverview struct {
	TotalPolls            int            `json:"total_polls"`
	TotalVotesReceived    int            `json:"total_votes_received"`
	AverageEngagementRate float64        `json:"average_engagement_rate"`
	MostPopularPoll       *PollSummary   `json:"most_popular_poll,omitempty"`
	RecentActivity        []ActivityItem `json:"recent_activity"`
	PollsCreatedThisMonth int            `json:"polls_created_this_month"`
	TotalPollViews        int            `json:"total_poll_views"`
}

// PollAnalytics is the per-poll snapshot. LastVoteAt is the timestamp
// of the most recent vote, not a bucketed peak.
type PollAnalytics struct {
	PollID           int64          `json:"poll_id"`
	PollQuestion     string         `json:"poll_question"`
	TotalVotes       int            `json:"total_votes"`
	EngagementRate   float64        `json:"engagement_rate"`
	VoteDistribution map[string]int `json:"vote_distribution"`
	PerformanceScore float64        `json:"performance_score"`
	CreatedAt        time.Time      `json:"created_at"`
	LastVoteAt       *time.Time     `json:"last_vote_at,omitempty"`
	TotalViews       int            `json:"total_views"`
	UniqueVoters     int            `json:"unique_voters"`
	VoteVelocity     float64        `json:"vote_velocity"`
}

// DailyVoteCount is one populated day of a trend series. Days with zero
// votes are absent from the series; averages still divide by the full
// requested window.
type DailyVoteCount struct {
	Date         string `json:"date"`
	VoteCount    int    `json:"vote_count"`
	UniqueVoters int    `json:"unique_voters"`
}

// VotingTrends is a per-user time series over a requested window.
type VotingTrends struct {
	Timeframe         string           `json:"timeframe"`
	DailyVotes        []DailyVoteCount `json:"daily_votes"`
	PopularTimes      []string         `json:"popular_times"`
	EngagementTrend   string           `json:"engagement_trend"`
	TotalVotesPeriod  int              `json:"total_votes_period"`
	AverageDailyVotes float64          `json:"average_daily_votes"`
	PeakDay           string           `json:"peak_day,omitempty"`
}

// PopularPoll is one platform-wide ranking entry.
type PopularPoll struct {
	PollID          int64     `json:"poll_id"`
	Question        string    `json:"question"`
	VoteCount       int       `json:"vote_count"`
	EngagementRate  float64   `json:"engagement_rate"`
	CreatedAt       time.Time `json:"created_at"`
	CreatorUsername string    `json:"creator_username"`
	OptionCount     int       `json:"option_count"`
}

// PeriodCount is one (period label, count) pair of an aggregation.
type PeriodCount struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
}

// VelocitySample is one point of an hourly activity-velocity series.
type VelocitySample struct {
	WindowStart time.Time `json:"window_start"`
	Velocity    float64   `json:"velocity"`
}

// Anomaly flags one point of a series that deviates from the mean by
// more than the configured number of standard deviations.
type Anomaly struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// PollActivity is the temporal activity report for a single poll.
type PollActivity struct {
	PollID        int64            `json:"poll_id"`
	DailyCounts   []PeriodCount    `json:"daily_counts"`
	SmoothedDaily []float64        `json:"smoothed_daily"`
	PeakHours     []PeriodCount    `json:"peak_hours"`
	Velocity      []VelocitySample `json:"velocity"`
	Anomalies     []Anomaly        `json:"anomalies"`
}

// HourVoteCount is a per-hour-of-day vote count.
type HourVoteCount struct {
	Hour      int `json:"hour"`
	VoteCount int `json:"vote_count"`
}

// RecentVote is a raw recent-vote row from the store.
type RecentVote struct {
	PollID       int64
	PollQuestion string
	CreatedAt    time.Time
}

// PopularPollRow is a raw ranking row from the store.
type PopularPollRow struct {
	Poll          Poll
	VoteCount     int
	OptionCount   int
	OwnerUsername string
}
