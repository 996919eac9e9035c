// Package stats computes interval, percentile, and burst metrics over
// ordered timestamp sequences.
package stats

import (
	"math"
	"sort"
	"time"
)

// Summary holds the timing metrics for one timestamp sequence.
//
// All interval values are seconds. With fewer than two timestamps the
// summary is a defined zero state, never an error. Percentiles are index
// conventions, not interpolations: below 100 samples p99 clamps to the
// maximum observed gap and p1 to the minimum.
type Summary struct {
	TotalRequests int
	FirstSeen     time.Time
	LastSeen      time.Time

	TotalDuration     float64
	RequestsPerMinute float64

	AvgInterval    float64
	MedianInterval float64
	MinInterval    float64
	MaxInterval    float64
	StdevInterval  float64 // population stdev; 0 below two intervals

	MinNonzeroInterval float64 // 0 when every gap is zero
	NonzeroCount       int

	ZeroIntervalCount int
	ZeroIntervalPct   float64

	MaxConcurrent   int       // most requests sharing one second
	MaxConcurrentAt time.Time // earliest second holding that maximum

	BurstAvgInterval       float64 // mean of the smallest 10% of gaps
	BurstRequestsPerMinute float64

	P1Interval  float64
	P50Interval float64
	P90Interval float64
	P99Interval float64
}

// Intervals returns the consecutive gaps (seconds) between sorted
// timestamps. Length is N-1 for N inputs; negative deltas are dropped,
// which cannot occur on correctly sorted input.
func Intervals(timestamps []time.Time) []float64 {
	if len(timestamps) < 2 {
		return nil
	}
	gaps := make([]float64, 0, len(timestamps)-1)
	for i := 1; i < len(timestamps); i++ {
		d := timestamps[i].Sub(timestamps[i-1]).Seconds()
		if d >= 0 {
			gaps = append(gaps, d)
		}
	}
	return gaps
}

// Compute derives the full summary from timestamps sorted ascending.
func Compute(timestamps []time.Time) Summary {
	n := len(timestamps)
	s := Summary{TotalRequests: n}
	if n == 0 {
		return s
	}
	s.FirstSeen = timestamps[0]
	s.LastSeen = timestamps[n-1]
	if n < 2 {
		return s
	}

	gaps := Intervals(timestamps)
	if len(gaps) == 0 {
		return s
	}

	s.TotalDuration = s.LastSeen.Sub(s.FirstSeen).Seconds()
	if s.TotalDuration > 0 {
		s.RequestsPerMinute = float64(n) / s.TotalDuration * 60
	} else {
		// All traffic in an instant: a convention, not an error guard.
		s.RequestsPerMinute = float64(n) * 60
	}

	s.AvgInterval = mean(gaps)
	s.StdevInterval = populationStdev(gaps, s.AvgInterval)

	sorted := append([]float64(nil), gaps...)
	sort.Float64s(sorted)

	s.MinInterval = sorted[0]
	s.MaxInterval = sorted[len(sorted)-1]
	s.MedianInterval = median(sorted)

	var nonzero []float64
	for _, g := range gaps {
		if g > 0 {
			nonzero = append(nonzero, g)
		} else {
			s.ZeroIntervalCount++
		}
	}
	s.NonzeroCount = len(nonzero)
	s.ZeroIntervalPct = float64(s.ZeroIntervalCount) / float64(len(gaps)) * 100

	s.MaxConcurrent, s.MaxConcurrentAt = maxPerSecond(timestamps)

	burst := sorted[:smallestTenth(len(sorted))]
	s.BurstAvgInterval = mean(burst)

	if len(nonzero) > 0 {
		sort.Float64s(nonzero)
		s.MinNonzeroInterval = nonzero[0]
		s.BurstRequestsPerMinute = 60 / mean(nonzero[:smallestTenth(len(nonzero))])
	} else {
		s.BurstRequestsPerMinute = float64(s.MaxConcurrent) * 60
	}

	s.P50Interval = sorted[len(sorted)/2]
	s.P90Interval = sorted[int(float64(len(sorted))*0.9)]
	if len(sorted) >= 100 {
		s.P99Interval = sorted[int(float64(len(sorted))*0.99)]
		s.P1Interval = sorted[int(float64(len(sorted))*0.01)]
	} else {
		// Low-sample policy: clamp instead of interpolating.
		s.P99Interval = sorted[len(sorted)-1]
		s.P1Interval = sorted[0]
	}

	return s
}

// maxPerSecond buckets timestamps into whole seconds and returns the
// highest bucket count with the earliest second reaching it. The earliest-
// bucket tie-break keeps the result independent of map iteration order.
// Keys are UTC so equal instants under different zone offsets share a
// bucket; time.Time map keys compare location and wall clock otherwise.
func maxPerSecond(timestamps []time.Time) (int, time.Time) {
	buckets := make(map[time.Time]int)
	for _, ts := range timestamps {
		buckets[ts.Truncate(time.Second).UTC()]++
	}
	var (
		best   int
		bestAt time.Time
	)
	for sec, count := range buckets {
		if count > best || (count == best && sec.Before(bestAt)) {
			best = count
			bestAt = sec
		}
	}
	return best, bestAt
}

// smallestTenth is the burst window size: a tenth of the samples, at least one.
func smallestTenth(n int) int {
	if n/10 < 1 {
		return 1
	}
	return n / 10
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// median over an already-sorted slice; even lengths average the middle pair.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// populationStdev is the N-denominator standard deviation.
// Below two samples it is defined as 0.
func populationStdev(xs []float64, mu float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		d := x - mu
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}
