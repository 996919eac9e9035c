package scutter

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/graylag/scutter/internal/aggregate"
	"github.com/graylag/scutter/internal/classifier"
	"github.com/graylag/scutter/internal/geo"
	"github.com/graylag/scutter/internal/paths"
	"github.com/graylag/scutter/internal/pipeline"
	"github.com/graylag/scutter/internal/source"
)

// ErrNoData reports input that held no parseable log lines.
var ErrNoData = pipeline.ErrNoData

// Analyzer runs batch access-log analysis passes.
type Analyzer struct {
	opts options
	cls  *classifier.Classifier
}

// New creates an Analyzer. The classification rule table compiles once
// here; reuse the Analyzer across runs.
func New(opts ...Option) *Analyzer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Analyzer{opts: o, cls: classifier.Default()}
}

// Classification is the verdict for one user agent.
type Classification struct {
	IsBot    bool
	Identity string // named bot identity; empty for browsers
}

// Classify applies the bot/browser rules to a single user agent string.
func (a *Analyzer) Classify(userAgent string) Classification {
	c := a.cls.Classify(userAgent)
	return Classification{IsBot: c.IsBot, Identity: c.Identity}
}

// Identity is one named bot rolled up across its source IPs.
type Identity struct {
	Name      string
	Requests  int64
	UniqueIPs int
}

// Instance is one bot instance (identity plus IP) with its request
// sequence already in chronological order.
type Instance struct {
	Identity  string
	IP        string
	Requests  int
	FirstSeen time.Time
	LastSeen  time.Time
}

// Summary is the public result of one analysis pass.
type Summary struct {
	Files         int
	TotalLines    int64
	ParsedLines   int64
	UnparsedLines int64
	FailedFiles   int64

	BotRequests     int64
	BrowserRequests int64
	BotPct          float64

	Identities []Identity // descending by request count
	Instances  []Instance // descending by path length
}

// AnalyzeDir discovers prefix-matched log files under dir and analyzes
// them. Returns ErrNoData when nothing parsed.
func (a *Analyzer) AnalyzeDir(ctx context.Context, dir string) (*Summary, error) {
	agg, p, closeFn, err := a.newRun()
	if err != nil {
		return nil, err
	}
	defer closeFn()

	files, err := p.RunDir(ctx, dir, a.opts.prefix, agg)
	if err != nil {
		return nil, err
	}
	return a.summarize(agg, len(files)), nil
}

// AnalyzeFiles analyzes an explicit file list in order.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, files []string) (*Summary, error) {
	agg, p, closeFn, err := a.newRun()
	if err != nil {
		return nil, err
	}
	defer closeFn()

	if err := p.Run(ctx, files, agg); err != nil {
		return nil, err
	}
	return a.summarize(agg, len(files)), nil
}

// AnalyzeReader analyzes a single log stream.
func (a *Analyzer) AnalyzeReader(ctx context.Context, r io.Reader) (*Summary, error) {
	agg, p, closeFn, err := a.newRun()
	if err != nil {
		return nil, err
	}
	defer closeFn()

	err = source.EachLine(r, func(line string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.Consume(line, agg)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scutter: %w", err)
	}
	if agg.Tally.ParsedLines == 0 {
		return nil, ErrNoData
	}
	return a.summarize(agg, 1), nil
}

func (a *Analyzer) newRun() (*aggregate.Context, *pipeline.Pipeline, func() error, error) {
	agg := aggregate.NewContext(
		aggregate.WithGranularity(a.opts.granularity),
		aggregate.WithTraffic(a.opts.geoDBPath != ""),
		aggregate.WithClasses(),
		aggregate.WithBots(true),
		aggregate.WithURLs(a.opts.sampleCap),
	)

	popts := []pipeline.Option{pipeline.WithWorkers(a.opts.workers)}
	closeFn := func() error { return nil }
	if a.opts.geoDBPath != "" {
		loc, err := geo.OpenMMDB(a.opts.geoDBPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("scutter: %w", err)
		}
		popts = append(popts, pipeline.WithLocator(loc))
		closeFn = loc.Close
	}
	return agg, pipeline.New(a.cls, popts...), closeFn, nil
}

func (a *Analyzer) summarize(agg *aggregate.Context, files int) *Summary {
	s := &Summary{
		Files:           files,
		TotalLines:      agg.Tally.TotalLines,
		ParsedLines:     agg.Tally.ParsedLines,
		UnparsedLines:   agg.Tally.UnparsedLines,
		FailedFiles:     agg.Tally.FailedFiles,
		BotRequests:     agg.Bots.BotRequests,
		BrowserRequests: agg.Bots.BrowserRequests,
	}
	if total := s.BotRequests + s.BrowserRequests; total > 0 {
		s.BotPct = float64(s.BotRequests) / float64(total) * 100
	}
	for _, id := range agg.Bots.Identities() {
		sum := agg.Bots.Summary[id]
		s.Identities = append(s.Identities, Identity{
			Name:      id,
			Requests:  sum.Count,
			UniqueIPs: len(sum.IPs),
		})
	}
	for _, p := range paths.Build(agg.Bots.Entries) {
		inst := Instance{
			Identity: p.Key.Identity,
			IP:       p.Key.IP,
			Requests: len(p.Records),
		}
		if n := len(p.Records); n > 0 {
			inst.FirstSeen = p.Records[0].Time
			inst.LastSeen = p.Records[n-1].Time
		}
		s.Instances = append(s.Instances, inst)
	}
	return s
}
