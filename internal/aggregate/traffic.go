package aggregate

import (
	"sort"
	"time"

	"github.com/graylag/scutter/internal/geo"
	"github.com/graylag/scutter/internal/model"
)

// Traffic is the per-bucket request/byte/status histogram.
// Buckets exist only for observed traffic; gaps are not zero-filled.
type Traffic struct {
	Requests  map[time.Time]int64
	Bytes     map[time.Time]int64
	Status    map[time.Time]map[string]int64
	Seconds   map[time.Time]int64 // whole-second counts across all traffic
	countries map[time.Time]map[string]int64 // nil when country rollup disabled

	CountryNames map[string]string

	StatusTotals  map[string]int64
	CountryTotals map[string]int64

	TotalRequests int64
	TotalBytes    int64
}

func newTraffic(countries bool) *Traffic {
	t := &Traffic{
		Requests:     map[time.Time]int64{},
		Bytes:        map[time.Time]int64{},
		Status:       map[time.Time]map[string]int64{},
		Seconds:      map[time.Time]int64{},
		StatusTotals: map[string]int64{},
	}
	if countries {
		t.countries = map[time.Time]map[string]int64{}
		t.CountryNames = map[string]string{}
		t.CountryTotals = map[string]int64{}
	}
	return t
}

func (t *Traffic) add(bucket time.Time, rec model.Record, country geo.Country) {
	t.TotalRequests++
	t.TotalBytes += rec.Size
	t.StatusTotals[rec.Status]++

	if bucket.IsZero() {
		// Timeless records contribute to totals only.
		return
	}

	t.Requests[bucket]++
	t.Bytes[bucket] += rec.Size
	t.Seconds[rec.Time.Truncate(time.Second).UTC()]++

	st := t.Status[bucket]
	if st == nil {
		st = map[string]int64{}
		t.Status[bucket] = st
	}
	st[rec.Status]++

	if t.countries == nil {
		return
	}
	code := country.Code
	if code == "" {
		code = UnknownCountry
	} else {
		t.CountryNames[code] = country.Name
	}
	cc := t.countries[bucket]
	if cc == nil {
		cc = map[string]int64{}
		t.countries[bucket] = cc
	}
	cc[code]++
	t.CountryTotals[code]++
}

// UnknownCountry is the bucket code for IPs the locator cannot attribute.
const UnknownCountry = "??"

func (t *Traffic) merge(other *Traffic) {
	t.TotalRequests += other.TotalRequests
	t.TotalBytes += other.TotalBytes
	for k, v := range other.Requests {
		t.Requests[k] += v
	}
	for k, v := range other.Bytes {
		t.Bytes[k] += v
	}
	for k, v := range other.Seconds {
		t.Seconds[k] += v
	}
	for k, m := range other.Status {
		dst := t.Status[k]
		if dst == nil {
			dst = map[string]int64{}
			t.Status[k] = dst
		}
		for s, v := range m {
			dst[s] += v
		}
	}
	for s, v := range other.StatusTotals {
		t.StatusTotals[s] += v
	}
	if t.countries != nil && other.countries != nil {
		for k, m := range other.countries {
			dst := t.countries[k]
			if dst == nil {
				dst = map[string]int64{}
				t.countries[k] = dst
			}
			for c, v := range m {
				dst[c] += v
			}
		}
		for c, v := range other.CountryTotals {
			t.CountryTotals[c] += v
		}
		for c, n := range other.CountryNames {
			t.CountryNames[c] = n
		}
	}
}

// Buckets returns the observed buckets sorted ascending.
func (t *Traffic) Buckets() []time.Time {
	out := make([]time.Time, 0, len(t.Requests))
	for b := range t.Requests {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// PeakSecond returns the most requests sharing one second across all
// timed traffic, with the earliest second reaching that count.
func (t *Traffic) PeakSecond() (int64, time.Time) {
	var (
		best   int64
		bestAt time.Time
	)
	for sec, n := range t.Seconds {
		if n > best || (n == best && n > 0 && sec.Before(bestAt)) {
			best = n
			bestAt = sec
		}
	}
	return best, bestAt
}

// CountriesAt returns the country counts for one bucket (nil when the
// country rollup is disabled or the bucket is empty).
func (t *Traffic) CountriesAt(bucket time.Time) map[string]int64 {
	if t.countries == nil {
		return nil
	}
	return t.countries[bucket]
}

// TrafficStats is the snapshot summary over all buckets.
type TrafficStats struct {
	TotalRequests int64
	TotalBytes    int64
	AvgPerBucket  float64
	MaxPerBucket  int64
	MinPerBucket  int64
	PeakBucket    time.Time
	PeakRequests  int64
}

// Stats summarizes the histogram. Division happens here, once, on exact
// integer accumulations. The peak tie-break is the earliest bucket.
func (t *Traffic) Stats() TrafficStats {
	s := TrafficStats{TotalRequests: t.TotalRequests, TotalBytes: t.TotalBytes}
	if len(t.Requests) == 0 {
		return s
	}
	var sum int64
	first := true
	for bucket, n := range t.Requests {
		sum += n
		if first {
			s.MaxPerBucket, s.MinPerBucket = n, n
			s.PeakBucket, s.PeakRequests = bucket, n
			first = false
			continue
		}
		if n > s.MaxPerBucket {
			s.MaxPerBucket = n
		}
		if n < s.MinPerBucket {
			s.MinPerBucket = n
		}
		if n > s.PeakRequests || (n == s.PeakRequests && bucket.Before(s.PeakBucket)) {
			s.PeakBucket, s.PeakRequests = bucket, n
		}
	}
	s.AvgPerBucket = float64(sum) / float64(len(t.Requests))
	return s
}
