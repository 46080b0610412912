// Package stats holds the pure numeric formulas behind the analytics
// products: scoring, trend classification, ranking and time-series
// helpers. Nothing here touches a store or a clock.
package stats

import (
	"math"
	"time"

	"github.com/poll/analytics/internal/core/domain"
)

// Fixed design constants of the performance score. The weights are a
// heuristic, not a calibrated model.
const (
	voteCountWeight  = 10.0
	engagementWeight = 50.0
	recencyWeight    = 20.0
	recencyDecayDays = 30.0
)

// trendThreshold is the relative change below which a series counts as
// stable.
const trendThreshold = 0.1

// SafeDivide returns n/d, or fallback when d is zero.
func SafeDivide(n, d, fallback float64) float64 {
	if d == 0 {
		return fallback
	}
	return n / d
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// PerformanceScore rates a poll 0-100 from its raw vote count, its
// votes-per-view fraction and its age. The recency factor decays
// linearly to zero over 30 days.
func PerformanceScore(votes, views int, createdAt, now time.Time) float64 {
	engagement := SafeDivide(float64(votes), float64(views), 0)

	daysOld := math.Floor(now.Sub(createdAt).Hours() / 24)
	recency := math.Max(0, 1-daysOld/recencyDecayDays)

	score := float64(votes)*voteCountWeight + engagement*engagementWeight + recency*recencyWeight
	return round2(math.Min(100, score))
}

// EngagementScore rates a poll 0-100 from engagement, voter diversity,
// recency and option-count complexity. Each denominator has its own
// zero fallback; a poll with zero views can still score through the
// diversity and recency terms.
func EngagementScore(votes, views, uniqueVoters int, ageHours float64, optionCount int) float64 {
	base := SafeDivide(float64(votes), float64(views), 0) * 100
	diversity := SafeDivide(float64(uniqueVoters), float64(votes), 0) * 10
	recency := math.Max(0, 10-ageHours/24)
	complexity := Clamp(1+float64(optionCount-2)*0.1, 1.0, 1.2)

	return Clamp((base+diversity+recency)*complexity, 0, 100)
}

// TrendDirection classifies a chronological series by comparing the
// mean of the first window against the mean of the last window with a
// 10% relative threshold. Series shorter than two windows are stable.
func TrendDirection(values []float64, window int) string {
	if window < 1 || len(values) < window*2 {
		return "stable"
	}

	first := mean(values[:window])
	last := mean(values[len(values)-window:])

	change := SafeDivide(last-first, first, 0)
	switch {
	case change > trendThreshold:
		return "increasing"
	case change < -trendThreshold:
		return "decreasing"
	default:
		return "stable"
	}
}

// EngagementTrend classifies a daily vote-count series by splitting it
// in half chronologically; with an odd length the extra day goes to the
// second half. The second half must exceed the first by more than 10%
// to count as increasing, or fall short by more than 10% to count as
// decreasing.
func EngagementTrend(counts []int) string {
	if len(counts) < 2 {
		return "stable"
	}

	half := len(counts) / 2
	first := meanInt(counts[:half])
	second := meanInt(counts[half:])

	switch {
	case second > first*1.1:
		return "increasing"
	case second < first*0.9:
		return "decreasing"
	default:
		return "stable"
	}
}

// PercentileRank places value within dataset as a 0-100 percentile,
// counting ties as half a rank. An empty dataset yields the neutral
// 50.0.
func PercentileRank(value float64, dataset []float64) float64 {
	if len(dataset) == 0 {
		return 50.0
	}

	var below, equal int
	for _, x := range dataset {
		switch {
		case x < value:
			below++
		case x == value:
			equal++
		}
	}

	return round2((float64(below) + float64(equal)/2) / float64(len(dataset)) * 100)
}

// CutoffDate maps a ranking timeframe to the earliest creation
// timestamp still included. "all" yields the zero time.
func CutoffDate(timeframe string, now time.Time) (time.Time, error) {
	switch timeframe {
	case "day":
		return now.AddDate(0, 0, -1), nil
	case "week":
		return now.AddDate(0, 0, -7), nil
	case "month":
		return now.AddDate(0, 0, -30), nil
	case "year":
		return now.AddDate(0, 0, -365), nil
	case "all":
		return time.Time{}, nil
	default:
		return time.Time{}, domain.ErrInvalidTimeframe
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func meanInt(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum int
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}
