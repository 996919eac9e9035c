// Package aggregate folds classified records into rollups in a single
// pass. Each reducer is owned by exactly one Context; parallel workers
// each build a private Context and the results are merged afterwards.
// Merging is associative and commutative for every count, and a set union
// for every distinct-value set, so merge order never changes totals.
package aggregate

import (
	"time"

	"github.com/graylag/scutter/internal/geo"
	"github.com/graylag/scutter/internal/model"
)

// Option configures which reducers a Context carries.
type Option func(*Context)

// WithGranularity sets the time-bucket width. Default: one minute.
func WithGranularity(d time.Duration) Option {
	return func(c *Context) { c.granularity = d }
}

// WithTraffic enables the per-bucket traffic histogram.
// countries toggles per-bucket country counts (fed by the caller's locator).
func WithTraffic(countries bool) Option {
	return func(c *Context) { c.Traffic = newTraffic(countries) }
}

// WithClasses enables the per-bucket bot/browser split.
func WithClasses() Option {
	return func(c *Context) { c.Classes = newClasses() }
}

// WithBots enables per-identity bot summaries. retain keeps every timed
// bot record for chronological path building; leave it off for rollups
// that only need counts, or memory grows with the record count.
func WithBots(retain bool) Option {
	return func(c *Context) { c.Bots = newBots(retain) }
}

// WithURLs enables URL categorization rollups. sampleCap bounds the
// retained sample URLs per category.
func WithURLs(sampleCap int) Option {
	return func(c *Context) { c.URLs = newURLs(sampleCap) }
}

// Context is one aggregation pass. Not safe for concurrent mutation;
// give each worker its own and Merge at the barrier.
type Context struct {
	granularity time.Duration

	Tally   Tally
	Traffic *Traffic
	Classes *Classes
	Bots    *Bots
	URLs    *URLs
}

// NewContext builds a Context with the requested reducers.
func NewContext(opts ...Option) *Context {
	c := &Context{granularity: time.Minute}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add folds one classified record into every enabled reducer.
// O(1) amortized; byte and request totals accumulate as integers, with
// any division deferred to snapshot time.
func (c *Context) Add(rec model.Record, cls model.Classification, country geo.Country) {
	c.Tally.ParsedLines++
	if !rec.HasTime() {
		c.Tally.TimelessLines++
	}

	var bucket time.Time
	if rec.HasTime() {
		// UTC normalization makes the key a pure instant: parsed numeric
		// offsets carry fresh Location pointers, and time.Time map keys
		// compare location and wall clock, not the instant.
		bucket = rec.Time.Truncate(c.granularity).UTC()
	}

	if c.Traffic != nil {
		c.Traffic.add(bucket, rec, country)
	}
	if c.Classes != nil {
		c.Classes.add(bucket, cls)
	}
	if c.Bots != nil {
		c.Bots.add(rec, cls)
	}
	if c.URLs != nil {
		c.URLs.add(rec)
	}
}

// Merge folds other into c. Other must have the same reducers enabled;
// reducers missing on either side are skipped.
func (c *Context) Merge(other *Context) {
	c.Tally.Merge(other.Tally)
	if c.Traffic != nil && other.Traffic != nil {
		c.Traffic.merge(other.Traffic)
	}
	if c.Classes != nil && other.Classes != nil {
		c.Classes.merge(other.Classes)
	}
	if c.Bots != nil && other.Bots != nil {
		c.Bots.merge(other.Bots)
	}
	if c.URLs != nil && other.URLs != nil {
		c.URLs.merge(other.URLs)
	}
}

// Clone returns an empty Context with the same configuration,
// for handing to a parallel worker.
func (c *Context) Clone() *Context {
	n := &Context{granularity: c.granularity}
	if c.Traffic != nil {
		n.Traffic = newTraffic(c.Traffic.countries != nil)
	}
	if c.Classes != nil {
		n.Classes = newClasses()
	}
	if c.Bots != nil {
		n.Bots = newBots(c.Bots.retain)
	}
	if c.URLs != nil {
		n.URLs = newURLs(c.URLs.sampleCap)
	}
	return n
}

// Tally counts per-line and per-file failures. Absorbed failures surface
// only here, never as errors that stop a run.
type Tally struct {
	TotalLines    int64
	ParsedLines   int64
	UnparsedLines int64
	TimelessLines int64
	FailedFiles   int64
}

// Merge adds other's counters into t.
func (t *Tally) Merge(other Tally) {
	t.TotalLines += other.TotalLines
	t.ParsedLines += other.ParsedLines
	t.UnparsedLines += other.UnparsedLines
	t.TimelessLines += other.TimelessLines
	t.FailedFiles += other.FailedFiles
}
