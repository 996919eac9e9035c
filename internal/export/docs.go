package export

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/graylag/scutter/internal/aggregate"
	"github.com/graylag/scutter/internal/paths"
	"github.com/graylag/scutter/internal/stats"
)

const (
	topInstanceCap  = 50  // instances listed in the bot summary artifact
	sampleURLCap    = 100 // URLs retained per listed instance
	entitySampleCap = 20  // entity ids listed per category
	topURLCap       = 20  // URLs listed in the most-requested ranking
)

// Metadata heads every artifact: run identity plus the line tallies that
// tell a reader how much input survived parsing.
type Metadata struct {
	RunID         string `json:"run_id"`
	GeneratedAt   string `json:"generated_at"`
	Source        string `json:"source,omitempty"`
	Files         int    `json:"files"`
	TotalLines    int64  `json:"total_lines"`
	ParsedLines   int64  `json:"parsed_lines"`
	UnparsedLines int64  `json:"unparsed_lines"`
	TimelessLines int64  `json:"timeless_lines"`
	FailedFiles   int64  `json:"failed_files,omitempty"`
}

// NewMetadata stamps a fresh run id and generation time.
func NewMetadata(source string, files int, tally aggregate.Tally) Metadata {
	return Metadata{
		RunID:         uuid.NewString(),
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
		Source:        source,
		Files:         files,
		TotalLines:    tally.TotalLines,
		ParsedLines:   tally.ParsedLines,
		UnparsedLines: tally.UnparsedLines,
		TimelessLines: tally.TimelessLines,
		FailedFiles:   tally.FailedFiles,
	}
}

// BotSplit is the top-level bot/browser accounting shared by the bot
// artifacts.
type BotSplit struct {
	BotRequests      int64   `json:"bot_requests"`
	BrowserRequests  int64   `json:"browser_requests"`
	BotPct           float64 `json:"bot_pct"`
	UniqueIdentities int     `json:"unique_identities"`
	UniqueInstances  int     `json:"unique_instances"`
}

func newBotSplit(bots *aggregate.Bots, instances int) BotSplit {
	s := BotSplit{
		BotRequests:      bots.BotRequests,
		BrowserRequests:  bots.BrowserRequests,
		UniqueIdentities: len(bots.Summary),
		UniqueInstances:  instances,
	}
	if total := s.BotRequests + s.BrowserRequests; total > 0 {
		s.BotPct = float64(s.BotRequests) / float64(total) * 100
	}
	return s
}

// PathStep is one request inside a bot instance's chronological path.
type PathStep struct {
	Time   string `json:"time"`
	Method string `json:"method"`
	URL    string `json:"url"`
	Status string `json:"status"`
}

// BotPathsDoc is the full per-instance path artifact, keyed "Identity|IP".
type BotPathsDoc struct {
	Metadata Metadata              `json:"metadata"`
	Summary  BotSplit              `json:"bot_summary"`
	Paths    map[string][]PathStep `json:"bot_paths"`
}

// BotPaths builds the chronological-path artifact.
func BotPaths(meta Metadata, bots *aggregate.Bots, ps []paths.Path) BotPathsDoc {
	doc := BotPathsDoc{
		Metadata: meta,
		Summary:  newBotSplit(bots, len(ps)),
		Paths:    make(map[string][]PathStep, len(ps)),
	}
	for _, p := range ps {
		steps := make([]PathStep, 0, len(p.Records))
		for _, r := range p.Records {
			steps = append(steps, PathStep{
				Time:   r.Time.Format(time.RFC3339),
				Method: r.Method,
				URL:    r.URL,
				Status: r.Status,
			})
		}
		doc.Paths[p.Key.String()] = steps
	}
	return doc
}

// IdentityDoc is one bot identity rolled up across all of its IPs.
type IdentityDoc struct {
	Identity   string   `json:"identity"`
	Requests   int64    `json:"requests"`
	Pct        float64  `json:"pct"`
	UniqueIPs  int      `json:"unique_ips"`
	UserAgents []string `json:"user_agents"`
	InfoURLs   []string `json:"info_urls,omitempty"`
}

// InstanceDoc is one bot instance with a bounded URL sample.
type InstanceDoc struct {
	Identity   string   `json:"identity"`
	IP         string   `json:"ip"`
	Requests   int      `json:"requests"`
	FirstSeen  string   `json:"first_seen"`
	LastSeen   string   `json:"last_seen"`
	SampleURLs []string `json:"sample_urls"`
}

// BotSummaryDoc is the identity/instance rollup artifact.
type BotSummaryDoc struct {
	Metadata     Metadata      `json:"metadata"`
	Summary      BotSplit      `json:"bot_summary"`
	Identities   []IdentityDoc `json:"identities"`
	TopInstances []InstanceDoc `json:"top_instances"`
}

// BotSummary builds the identity rollup. Instances arrive pre-sorted by
// descending request count; the top 50 are listed with at most 100
// sample URLs each.
func BotSummary(meta Metadata, bots *aggregate.Bots, ps []paths.Path) BotSummaryDoc {
	doc := BotSummaryDoc{
		Metadata: meta,
		Summary:  newBotSplit(bots, len(ps)),
	}

	for _, id := range bots.Identities() {
		s := bots.Summary[id]
		d := IdentityDoc{
			Identity:   id,
			Requests:   s.Count,
			UniqueIPs:  len(s.IPs),
			UserAgents: sortedKeys(s.UserAgents),
			InfoURLs:   sortedKeys(s.InfoURLs),
		}
		if bots.BotRequests > 0 {
			d.Pct = float64(s.Count) / float64(bots.BotRequests) * 100
		}
		doc.Identities = append(doc.Identities, d)
	}

	for i, p := range ps {
		if i >= topInstanceCap {
			break
		}
		inst := InstanceDoc{
			Identity: p.Key.Identity,
			IP:       p.Key.IP,
			Requests: len(p.Records),
		}
		if n := len(p.Records); n > 0 {
			inst.FirstSeen = p.Records[0].Time.Format(time.RFC3339)
			inst.LastSeen = p.Records[n-1].Time.Format(time.RFC3339)
		}
		for _, r := range p.Records {
			if len(inst.SampleURLs) >= sampleURLCap {
				break
			}
			inst.SampleURLs = append(inst.SampleURLs, r.URL)
		}
		doc.TopInstances = append(doc.TopInstances, inst)
	}
	return doc
}

// SpeedEntry is the timing profile of one bot instance.
// Interval values are seconds. MinNonzeroInterval is null when every
// observed gap was zero.
type SpeedEntry struct {
	Identity string `json:"identity"`
	IP       string `json:"ip,omitempty"`

	TotalRequests     int     `json:"total_requests"`
	FirstSeen         string  `json:"first_seen"`
	LastSeen          string  `json:"last_seen"`
	DurationSeconds   float64 `json:"duration_seconds"`
	RequestsPerMinute float64 `json:"requests_per_minute"`

	AvgInterval    float64 `json:"avg_interval"`
	MedianInterval float64 `json:"median_interval"`
	MinInterval    float64 `json:"min_interval"`
	MaxInterval    float64 `json:"max_interval"`
	StdevInterval  float64 `json:"stdev_interval"`

	MinNonzeroInterval *float64 `json:"min_nonzero_interval"`
	ZeroIntervalCount  int      `json:"zero_interval_count"`
	ZeroIntervalPct    float64  `json:"zero_interval_pct"`

	MaxConcurrent   int    `json:"max_concurrent"`
	MaxConcurrentAt string `json:"max_concurrent_at,omitempty"`

	BurstAvgInterval       float64 `json:"burst_avg_interval"`
	BurstRequestsPerMinute float64 `json:"burst_requests_per_minute"`

	P1Interval  float64 `json:"p1_interval"`
	P50Interval float64 `json:"p50_interval"`
	P90Interval float64 `json:"p90_interval"`
	P99Interval float64 `json:"p99_interval"`
}

// SpeedDoc is the request-timing artifact. Instances are profiled per
// identity+IP; Identities merge every IP of one named bot, so they show
// fleet-level pacing rather than single-host pacing.
type SpeedDoc struct {
	Metadata   Metadata     `json:"metadata"`
	Instances  []SpeedEntry `json:"instances"`
	Identities []SpeedEntry `json:"identities"`
}

// Speed profiles each bot instance and each identity with at least two
// timed requests.
func Speed(meta Metadata, ps []paths.Path) SpeedDoc {
	doc := SpeedDoc{Metadata: meta}
	byIdentity := map[string][]time.Time{}
	var order []string
	for _, p := range ps {
		ts := make([]time.Time, 0, len(p.Records))
		for _, r := range p.Records {
			ts = append(ts, r.Time)
		}
		if _, seen := byIdentity[p.Key.Identity]; !seen {
			order = append(order, p.Key.Identity)
		}
		byIdentity[p.Key.Identity] = append(byIdentity[p.Key.Identity], ts...)
		if len(ts) < 2 {
			continue
		}
		doc.Instances = append(doc.Instances, speedEntry(p.Key.Identity, p.Key.IP, stats.Compute(ts)))
	}
	for _, id := range order {
		ts := byIdentity[id]
		if len(ts) < 2 {
			continue
		}
		sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
		doc.Identities = append(doc.Identities, speedEntry(id, "", stats.Compute(ts)))
	}
	sort.Slice(doc.Identities, func(i, j int) bool {
		if doc.Identities[i].TotalRequests != doc.Identities[j].TotalRequests {
			return doc.Identities[i].TotalRequests > doc.Identities[j].TotalRequests
		}
		return doc.Identities[i].Identity < doc.Identities[j].Identity
	})
	return doc
}

func speedEntry(identity, ip string, s stats.Summary) SpeedEntry {
	e := SpeedEntry{
		Identity:               identity,
		IP:                     ip,
		TotalRequests:          s.TotalRequests,
		FirstSeen:              s.FirstSeen.Format(time.RFC3339),
		LastSeen:               s.LastSeen.Format(time.RFC3339),
		DurationSeconds:        s.TotalDuration,
		RequestsPerMinute:      s.RequestsPerMinute,
		AvgInterval:            s.AvgInterval,
		MedianInterval:         s.MedianInterval,
		MinInterval:            s.MinInterval,
		MaxInterval:            s.MaxInterval,
		StdevInterval:          s.StdevInterval,
		ZeroIntervalCount:      s.ZeroIntervalCount,
		ZeroIntervalPct:        s.ZeroIntervalPct,
		MaxConcurrent:          s.MaxConcurrent,
		BurstAvgInterval:       s.BurstAvgInterval,
		BurstRequestsPerMinute: s.BurstRequestsPerMinute,
		P1Interval:             s.P1Interval,
		P50Interval:            s.P50Interval,
		P90Interval:            s.P90Interval,
		P99Interval:            s.P99Interval,
	}
	if s.NonzeroCount > 0 {
		v := s.MinNonzeroInterval
		e.MinNonzeroInterval = &v
	}
	if !s.MaxConcurrentAt.IsZero() {
		e.MaxConcurrentAt = s.MaxConcurrentAt.Format(time.RFC3339)
	}
	return e
}

// TrafficPoint is one time-series bucket.
type TrafficPoint struct {
	Time      string           `json:"time"`
	Requests  int64            `json:"requests"`
	Bytes     int64            `json:"bytes"`
	Status    map[string]int64 `json:"status"`
	Countries map[string]int64 `json:"countries,omitempty"`
}

// TrafficStatsDoc is the histogram summary block.
type TrafficStatsDoc struct {
	TotalRequests int64   `json:"total_requests"`
	TotalBytes    int64   `json:"total_bytes"`
	AvgPerBucket  float64 `json:"avg_per_bucket"`
	MaxPerBucket  int64   `json:"max_per_bucket"`
	MinPerBucket  int64   `json:"min_per_bucket"`
	PeakBucket    string  `json:"peak_bucket,omitempty"`
	PeakRequests  int64   `json:"peak_requests"`

	MaxConcurrent   int64  `json:"max_concurrent"`
	MaxConcurrentAt string `json:"max_concurrent_at,omitempty"`
}

// TrafficDoc is the time-series artifact. Buckets with no traffic are
// absent, not zero-filled.
type TrafficDoc struct {
	Metadata      Metadata          `json:"metadata"`
	Statistics    TrafficStatsDoc   `json:"statistics"`
	StatusTotals  map[string]int64  `json:"status_totals"`
	CountryTotals map[string]int64  `json:"country_totals,omitempty"`
	CountryNames  map[string]string `json:"country_names,omitempty"`
	TimeSeries    []TrafficPoint    `json:"time_series"`
}

// TrafficSeries builds the time-series artifact in chronological order.
func TrafficSeries(meta Metadata, t *aggregate.Traffic) TrafficDoc {
	ts := t.Stats()
	doc := TrafficDoc{
		Metadata: meta,
		Statistics: TrafficStatsDoc{
			TotalRequests: ts.TotalRequests,
			TotalBytes:    ts.TotalBytes,
			AvgPerBucket:  ts.AvgPerBucket,
			MaxPerBucket:  ts.MaxPerBucket,
			MinPerBucket:  ts.MinPerBucket,
			PeakRequests:  ts.PeakRequests,
		},
		StatusTotals:  t.StatusTotals,
		CountryTotals: t.CountryTotals,
		CountryNames:  t.CountryNames,
	}
	if !ts.PeakBucket.IsZero() {
		doc.Statistics.PeakBucket = ts.PeakBucket.Format(time.RFC3339)
	}
	if n, at := t.PeakSecond(); n > 0 {
		doc.Statistics.MaxConcurrent = n
		doc.Statistics.MaxConcurrentAt = at.Format(time.RFC3339)
	}
	for _, bucket := range t.Buckets() {
		doc.TimeSeries = append(doc.TimeSeries, TrafficPoint{
			Time:      bucket.Format(time.RFC3339),
			Requests:  t.Requests[bucket],
			Bytes:     t.Bytes[bucket],
			Status:    t.Status[bucket],
			Countries: t.CountriesAt(bucket),
		})
	}
	return doc
}

// CategoryDoc is one URL category rollup.
type CategoryDoc struct {
	Name           string           `json:"name"`
	Requests       int64            `json:"requests"`
	Pct            float64          `json:"pct"`
	Bytes          int64            `json:"bytes"`
	AvgBytes       float64          `json:"avg_bytes"`
	Subcategories  map[string]int64 `json:"subcategories"`
	SampleURLs     []string         `json:"sample_urls,omitempty"`
	UniqueEntities int              `json:"unique_entities,omitempty"`
	EntitySample   []string         `json:"entity_sample,omitempty"`
}

// TopURLDoc is one entry of the most-requested URL ranking.
type TopURLDoc struct {
	URL      string `json:"url"`
	Requests int64  `json:"requests"`
}

// URLsDoc is the URL-categorization artifact.
type URLsDoc struct {
	Metadata      Metadata         `json:"metadata"`
	TotalRequests int64            `json:"total_requests"`
	TotalBytes    int64            `json:"total_bytes"`
	StatusCounts  map[string]int64 `json:"status_counts"`
	MethodCounts  map[string]int64 `json:"method_counts"`
	Hourly        [24]int64        `json:"hourly"`
	TopURLs       []TopURLDoc      `json:"top_urls"`
	Categories    []CategoryDoc    `json:"categories"`
}

// URLReport builds the categorization artifact, categories sorted by
// descending request count.
func URLReport(meta Metadata, u *aggregate.URLs) URLsDoc {
	doc := URLsDoc{
		Metadata:      meta,
		TotalRequests: u.TotalRequests,
		TotalBytes:    u.TotalBytes,
		StatusCounts:  u.StatusCounts,
		MethodCounts:  u.MethodCounts,
	}
	for h, n := range u.Hourly {
		doc.Hourly[h] = n
	}
	for _, top := range u.TopURLs(topURLCap) {
		doc.TopURLs = append(doc.TopURLs, TopURLDoc{URL: top.URL, Requests: top.Count})
	}
	for _, name := range u.Categories() {
		count := u.CategoryCounts[name]
		d := CategoryDoc{
			Name:          name,
			Requests:      count,
			Bytes:         u.BytesByCategory[name],
			Subcategories: u.Subcategories[name],
			SampleURLs:    u.Samples[name],
		}
		if u.TotalRequests > 0 {
			d.Pct = float64(count) / float64(u.TotalRequests) * 100
		}
		if count > 0 {
			d.AvgBytes = float64(d.Bytes) / float64(count)
		}
		if set := u.Entities[name]; len(set) > 0 {
			d.UniqueEntities = len(set)
			sample := sortedKeys(set)
			if len(sample) > entitySampleCap {
				sample = sample[:entitySampleCap]
			}
			d.EntitySample = sample
		}
		doc.Categories = append(doc.Categories, d)
	}
	return doc
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
