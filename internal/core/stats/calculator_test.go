package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poll/analytics/internal/core/domain"
)

func TestPerformanceScore(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("fresh poll with no votes scores only recency", func(t *testing.T) {
		score := PerformanceScore(0, 0, now, now)
		assert.Equal(t, 20.0, score)
	})

	t.Run("combines votes, engagement and recency", func(t *testing.T) {
		// 3 votes, 10 views, created today: 30 + 0.3*50 + 20 = 65.
		score := PerformanceScore(3, 10, now, now)
		assert.Equal(t, 65.0, score)
	})

	t.Run("clamps at 100", func(t *testing.T) {
		score := PerformanceScore(50, 10, now, now)
		assert.Equal(t, 100.0, score)
	})

	t.Run("recency decays to zero after 30 days", func(t *testing.T) {
		created := now.AddDate(0, 0, -45)
		score := PerformanceScore(2, 10, created, now)
		// 20 + 0.2*50 + 0 = 30.
		assert.Equal(t, 30.0, score)
	})

	t.Run("zero views contributes no engagement", func(t *testing.T) {
		score := PerformanceScore(3, 0, now, now)
		assert.Equal(t, 50.0, score)
	})

	t.Run("always within bounds", func(t *testing.T) {
		for _, votes := range []int{0, 1, 500} {
			for _, views := range []int{0, 1, 10000} {
				score := PerformanceScore(votes, views, now.AddDate(0, 0, -10), now)
				assert.GreaterOrEqual(t, score, 0.0)
				assert.LessOrEqual(t, score, 100.0)
			}
		}
	})
}

func TestEngagementScore(t *testing.T) {
	t.Run("clamps at 100", func(t *testing.T) {
		score := EngagementScore(500, 100, 500, 1, 4)
		assert.Equal(t, 100.0, score)
	})

	t.Run("zero views still scores diversity and recency", func(t *testing.T) {
		// base 0, diversity (3/3)*10 = 10, recency 10, complexity 1.0.
		score := EngagementScore(3, 0, 3, 0, 2)
		assert.Equal(t, 20.0, score)
	})

	t.Run("zero votes yields no diversity bonus", func(t *testing.T) {
		score := EngagementScore(0, 100, 0, 0, 2)
		assert.Equal(t, 10.0, score)
	})

	t.Run("complexity factor stays within bounds", func(t *testing.T) {
		// 2 options: factor 1.0; 10 options: capped at 1.2.
		low := EngagementScore(10, 100, 10, 480, 2)
		high := EngagementScore(10, 100, 10, 480, 10)
		assert.Equal(t, 20.0, low) // (10 + 10 + 0) * 1.0
		assert.InDelta(t, 24.0, high, 1e-9)
	})
}

func TestTrendDirection(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		window int
		want   string
	}{
		{"too short", []float64{1, 2, 3}, 3, "stable"},
		{"increasing", []float64{1, 1, 1, 5, 5, 5}, 3, "increasing"},
		{"decreasing", []float64{5, 5, 5, 1, 1, 1}, 3, "decreasing"},
		{"flat", []float64{4, 4, 4, 4, 4, 4}, 3, "stable"},
		{"within threshold", []float64{10, 10, 10, 10.5, 10.5, 10.5}, 3, "stable"},
		{"zero first window", []float64{0, 0, 0, 0}, 2, "stable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrendDirection(tt.values, tt.window))
		})
	}
}

func TestEngagementTrend(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		want   string
	}{
		{"single day is stable", []int{10}, "stable"},
		{"empty is stable", nil, "stable"},
		{"second half tripled", []int{10, 5, 20, 25}, "increasing"},
		{"second half collapsed", []int{20, 25, 2, 3}, "decreasing"},
		{"flat", []int{10, 10, 10, 10}, "stable"},
		{"odd length gives extra day to second half", []int{2, 10, 10}, "increasing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EngagementTrend(tt.counts))
		})
	}
}

func TestPercentileRank(t *testing.T) {
	t.Run("empty dataset is neutral", func(t *testing.T) {
		assert.Equal(t, 50.0, PercentileRank(42, nil))
	})

	t.Run("all ties rank at 50", func(t *testing.T) {
		assert.Equal(t, 50.0, PercentileRank(5, []float64{5, 5, 5, 5}))
	})

	t.Run("maximum value", func(t *testing.T) {
		// 4 below + half of 1 tie over 5 = 90.
		assert.Equal(t, 90.0, PercentileRank(10, []float64{1, 2, 3, 4, 10}))
	})

	t.Run("minimum value", func(t *testing.T) {
		assert.Equal(t, 10.0, PercentileRank(1, []float64{1, 2, 3, 4, 10}))
	})
}

func TestCutoffDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("week", func(t *testing.T) {
		cutoff, err := CutoffDate("week", now)
		require.NoError(t, err)
		assert.Equal(t, now.AddDate(0, 0, -7), cutoff)
	})

	t.Run("all is unbounded", func(t *testing.T) {
		cutoff, err := CutoffDate("all", now)
		require.NoError(t, err)
		assert.True(t, cutoff.IsZero())
	})

	t.Run("unknown timeframe fails", func(t *testing.T) {
		_, err := CutoffDate("fortnight", now)
		require.ErrorIs(t, err, domain.ErrInvalidTimeframe)
	})
}
