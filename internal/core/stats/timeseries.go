package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/poll/analytics/internal/core/domain"
)

// maxVelocitySamples bounds the hourly velocity series to 90 days of
// samples so a poll with years between its first and last vote cannot
// make the report unbounded.
const maxVelocitySamples = 90 * 24

// TimeBuckets generates boundary timestamps from start to end inclusive
// at the given step.
func TimeBuckets(start, end time.Time, bucket string) ([]time.Time, error) {
	var step time.Duration
	switch bucket {
	case "hour":
		step = time.Hour
	case "day":
		step = 24 * time.Hour
	case "week":
		step = 7 * 24 * time.Hour
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidBucketSize, bucket)
	}

	var buckets []time.Time
	for current := start; !current.After(end); current = current.Add(step) {
		buckets = append(buckets, current)
	}
	return buckets, nil
}

// PeakActivityPeriods groups timestamps into labeled buckets and
// returns the topN buckets by count. Buckets: "hour" labels by
// hour-of-day ("HH:00"), "day" by weekday name, "date" by calendar
// date. Equal counts order by label for a stable result.
func PeakActivityPeriods(timestamps []time.Time, bucket string, topN int) ([]domain.PeriodCount, error) {
	if bucket != "hour" && bucket != "day" && bucket != "date" {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidBucketSize, bucket)
	}
	if len(timestamps) == 0 {
		return nil, nil
	}

	counts := make(map[string]int)
	for _, ts := range timestamps {
		var key string
		switch bucket {
		case "hour":
			key = fmt.Sprintf("%02d:00", ts.Hour())
		case "day":
			key = ts.Weekday().String()
		case "date":
			key = ts.Format("2006-01-02")
		}
		counts[key]++
	}

	periods := make([]domain.PeriodCount, 0, len(counts))
	for label, count := range counts {
		periods = append(periods, domain.PeriodCount{Period: label, Count: count})
	}
	sort.Slice(periods, func(i, j int) bool {
		if periods[i].Count != periods[j].Count {
			return periods[i].Count > periods[j].Count
		}
		return periods[i].Period < periods[j].Period
	})

	if topN < len(periods) {
		periods = periods[:topN]
	}
	return periods, nil
}

// ActivityVelocity slides a window of windowHours across the timestamp
// span, advancing one hour per sample regardless of sparsity, and
// reports events-per-hour for each window. The series is capped at
// maxVelocitySamples.
func ActivityVelocity(timestamps []time.Time, windowHours int) []domain.VelocitySample {
	if len(timestamps) == 0 || windowHours <= 0 {
		return nil
	}

	sorted := make([]time.Time, len(timestamps))
	copy(sorted, timestamps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	window := time.Duration(windowHours) * time.Hour
	end := sorted[len(sorted)-1]

	var samples []domain.VelocitySample
	for current := sorted[0]; !current.After(end); current = current.Add(time.Hour) {
		windowEnd := current.Add(window)

		count := 0
		for _, ts := range sorted {
			if !ts.Before(current) && ts.Before(windowEnd) {
				count++
			}
		}

		samples = append(samples, domain.VelocitySample{
			WindowStart: current,
			Velocity:    float64(count) / float64(windowHours),
		})
		if len(samples) >= maxVelocitySamples {
			break
		}
	}
	return samples
}

// MovingAverage computes a simple trailing-window mean. A series
// shorter than the window is returned unchanged.
func MovingAverage(values []float64, window int) []float64 {
	if window < 1 || len(values) < window {
		return values
	}

	averages := make([]float64, 0, len(values)-window+1)
	for i := 0; i+window <= len(values); i++ {
		averages = append(averages, mean(values[i:i+window]))
	}
	return averages
}

// DetectAnomalies flags points whose absolute deviation from the mean
// exceeds thresholdStd population standard deviations. Series shorter
// than 3 points yield nothing.
func DetectAnomalies(values []float64, thresholdStd float64) []domain.Anomaly {
	if len(values) < 3 {
		return nil
	}

	m := mean(values)
	var variance float64
	for _, v := range values {
		variance += (v - m) * (v - m)
	}
	variance /= float64(len(values))
	stddev := math.Sqrt(variance)
	if stddev == 0 {
		return nil
	}
	threshold := thresholdStd * stddev

	// Relative tolerance so a point sitting exactly at the threshold is
	// flagged regardless of rounding in the stddev computation.
	const eps = 1e-9

	var anomalies []domain.Anomaly
	for i, v := range values {
		if math.Abs(v-m) >= threshold*(1-eps) {
			anomalies = append(anomalies, domain.Anomaly{Index: i, Value: v})
		}
	}
	return anomalies
}
