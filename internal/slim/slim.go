// Package slim re-encodes per-minute histograms into the compact
// positional-array transport form: a small header block declares how to
// decode rows, rows carry numbers only. The compression is deliberately
// lossy: only the top-K category detail survives per bucket.
package slim

import (
	"math"
	"sort"
	"time"

	"github.com/graylag/scutter/internal/aggregate"
)

// Header is the "m" block: enough to reconstruct bucket timestamps.
type Header struct {
	Start    int64 `json:"start"`    // unix seconds of the first bucket
	Buckets  int   `json:"minutes"`  // observed buckets (gaps excluded)
	Interval int   `json:"interval"` // seconds per bucket
}

// Stats is the "s" block of a country series.
type Stats struct {
	Total      int64   `json:"total"`
	Avg        float64 `json:"avg"`
	Max        int64   `json:"max"`
	Min        int64   `json:"min"`
	PeakOffset int64   `json:"peak_offset"`
}

// Series is the country-annotated traffic series.
// Rows are [minute_offset, requests, c1..cK, other]; the "top" list gives
// the country code for each cI column. Requests with no resolvable
// country count toward requests but neither a cI column nor other, so
// c1+…+cK+other <= requests, with equality only when every request
// resolved.
type Series struct {
	Meta          Header            `json:"m"`
	Stats         Stats             `json:"s"`
	Countries     map[string]string `json:"countries"`
	Top           []string          `json:"top"`
	Status        map[string]int64  `json:"status"`
	CountryTotals map[string]int64  `json:"country_totals"`
	Data          [][]int64         `json:"d"`
}

// EncodeTraffic compresses a country-enabled traffic histogram,
// keeping per-bucket detail for the topK countries by total volume.
func EncodeTraffic(t *aggregate.Traffic, topK int) Series {
	buckets := t.Buckets()
	s := Series{
		Countries:     t.CountryNames,
		Top:           topCountries(t.CountryTotals, topK),
		Status:        t.StatusTotals,
		CountryTotals: t.CountryTotals,
		Data:          make([][]int64, 0, len(buckets)),
	}
	if len(buckets) == 0 {
		return s
	}

	start := buckets[0].Unix()
	s.Meta = Header{Start: start, Buckets: len(buckets), Interval: 60}

	topSet := make(map[string]int, len(s.Top))
	for i, code := range s.Top {
		topSet[code] = i
	}

	var sum int64
	maxN, minN := int64(math.MinInt64), int64(math.MaxInt64)
	var peak time.Time
	var peakN int64

	for _, bucket := range buckets {
		n := t.Requests[bucket]
		sum += n
		if n > maxN {
			maxN = n
		}
		if n < minN {
			minN = n
		}
		if n > peakN {
			peakN, peak = n, bucket
		}

		row := make([]int64, 2+len(s.Top)+1)
		row[0] = (bucket.Unix() - start) / 60
		row[1] = n
		var other int64
		for code, count := range t.CountriesAt(bucket) {
			if code == aggregate.UnknownCountry {
				continue
			}
			if i, ok := topSet[code]; ok {
				row[2+i] = count
			} else {
				other += count
			}
		}
		row[len(row)-1] = other
		s.Data = append(s.Data, row)
	}

	s.Stats = Stats{
		Total:      sum,
		Avg:        round2(float64(sum) / float64(len(buckets))),
		Max:        maxN,
		Min:        minN,
		PeakOffset: (peak.Unix() - start) / 60,
	}
	return s
}

// topCountries ranks codes by descending count, ties by code, and keeps
// the first k. The unknown bucket never ranks: it is not a category.
func topCountries(totals map[string]int64, k int) []string {
	codes := make([]string, 0, len(totals))
	for code := range totals {
		if code == aggregate.UnknownCountry {
			continue
		}
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		if totals[codes[i]] != totals[codes[j]] {
			return totals[codes[i]] > totals[codes[j]]
		}
		return codes[i] < codes[j]
	})
	if len(codes) > k {
		codes = codes[:k]
	}
	return codes
}

// BucketTime reconstructs the timestamp of row i.
func (s Series) BucketTime(i int) time.Time {
	return time.Unix(s.Meta.Start+s.Data[i][0]*int64(s.Meta.Interval), 0).UTC()
}

// CountryRow decodes row i back into a per-country map plus the
// aggregated other count.
func (s Series) CountryRow(i int) (counts map[string]int64, other int64) {
	row := s.Data[i]
	counts = make(map[string]int64, len(s.Top))
	for j, code := range s.Top {
		counts[code] = row[2+j]
	}
	return counts, row[len(row)-1]
}

// ClassStats is the "s" block of a bot/browser series.
type ClassStats struct {
	TotalBot      int64   `json:"total_bot"`
	TotalBrowser  int64   `json:"total_browser"`
	BotPct        float64 `json:"bot_pct"`
	BrowserPct    float64 `json:"browser_pct"`
	AvgBotPerMin  float64 `json:"avg_bot_per_min"`
	AvgBrowserMin float64 `json:"avg_browser_per_min"`
	MaxBotPerMin  int64   `json:"max_bot_per_min"`
	MaxBrowserMin int64   `json:"max_browser_per_min"`
	PeakBot       string  `json:"peak_bot_minute"`
	PeakBrowser   string  `json:"peak_browser_minute"`
}

// ClassSeries is the bot/browser split in slim form.
// Rows are [minute_offset, bot_count, browser_count].
type ClassSeries struct {
	Meta  Header     `json:"m"`
	Stats ClassStats `json:"s"`
	Data  [][]int64  `json:"d"`
}

const minuteLayout = "2006-01-02T15:04:05"

// EncodeClasses compresses the per-minute bot/browser split.
func EncodeClasses(c *aggregate.Classes) ClassSeries {
	buckets := c.SortedBuckets()
	out := ClassSeries{Data: make([][]int64, 0, len(buckets))}

	cs := c.Stats()
	out.Stats = ClassStats{
		TotalBot:      cs.TotalBot,
		TotalBrowser:  cs.TotalBrowser,
		BotPct:        round2(cs.BotPct),
		BrowserPct:    round2(cs.BrowserPct),
		AvgBotPerMin:  round2(cs.AvgBotPerMin),
		AvgBrowserMin: round2(cs.AvgBrowserMin),
		MaxBotPerMin:  cs.MaxBotPerMin,
		MaxBrowserMin: cs.MaxBrowserMin,
	}
	if len(buckets) == 0 {
		return out
	}
	out.Stats.PeakBot = cs.PeakBot.Format(minuteLayout)
	out.Stats.PeakBrowser = cs.PeakBrowser.Format(minuteLayout)

	start := buckets[0].Unix()
	out.Meta = Header{Start: start, Buckets: len(buckets), Interval: 60}
	for _, bucket := range buckets {
		cc := c.Buckets[bucket]
		out.Data = append(out.Data, []int64{(bucket.Unix() - start) / 60, cc.Bot, cc.Browser})
	}
	return out
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
