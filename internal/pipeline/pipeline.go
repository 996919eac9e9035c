// Package pipeline drives a full analysis run: discover files, parse and
// classify lines, fold everything into one merged aggregate.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/graylag/scutter/internal/aggregate"
	"github.com/graylag/scutter/internal/classifier"
	"github.com/graylag/scutter/internal/geo"
	"github.com/graylag/scutter/internal/parser"
	"github.com/graylag/scutter/internal/source"
)

// ErrNoData reports a run in which no line parsed. Callers distinguish it
// from I/O failures: the input existed but held nothing usable.
var ErrNoData = errors.New("pipeline: no parseable log lines")

// ctxCheckStride is how many lines pass between context checks.
const ctxCheckStride = 4096

// Pipeline holds the per-run collaborators shared by every worker.
// Classifier and Locator must be safe for concurrent reads; both are.
type Pipeline struct {
	classifier *classifier.Classifier
	locator    geo.Locator
	workers    int
	reduced    bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLocator sets the IP-to-country locator. Default: none (every
// request counts as unattributed).
func WithLocator(loc geo.Locator) Option {
	return func(p *Pipeline) { p.locator = loc }
}

// WithWorkers caps parallel file workers. 0 (default) means one per CPU.
func WithWorkers(n int) Option {
	return func(p *Pipeline) { p.workers = n }
}

// WithReducedFallback also accepts the reduced line variant that stops at
// the size column. Such records carry no user agent and classify as
// "Empty User Agent", so enable this only for rollups that ignore
// classification, like the URL categorization run.
func WithReducedFallback() Option {
	return func(p *Pipeline) { p.reduced = true }
}

// New builds a Pipeline around the given classifier.
func New(cls *classifier.Classifier, opts ...Option) *Pipeline {
	p := &Pipeline{classifier: cls}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes the files in parallel and merges every per-file aggregate
// into base, in file order. A file that cannot be opened is logged,
// counted in the tally, and skipped; the run continues. Returns ErrNoData
// when nothing parsed across all files.
func (p *Pipeline) Run(ctx context.Context, files []string, base *aggregate.Context) error {
	if len(files) == 0 {
		return ErrNoData
	}

	workers := p.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(files) {
		workers = len(files)
	}

	// One private Context per file: no shared mutation, and merging by
	// file index keeps results independent of scheduling.
	parts := make([]*aggregate.Context, len(files))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				part := base.Clone()
				p.processFile(ctx, files[i], part)
				parts[i] = part
			}
		}()
	}

	for i := range files {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	for _, part := range parts {
		if part != nil {
			base.Merge(part)
		}
	}

	if base.Tally.ParsedLines == 0 {
		return ErrNoData
	}
	return nil
}

// RunDir discovers log files under dir by prefix and runs over them.
func (p *Pipeline) RunDir(ctx context.Context, dir, prefix string, base *aggregate.Context) ([]string, error) {
	files, err := source.Discover(dir, prefix)
	if err != nil {
		return nil, fmt.Errorf("pipeline: discover: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("pipeline: no %s* files under %s: %w", prefix, dir, ErrNoData)
	}
	return files, p.Run(ctx, files, base)
}

func (p *Pipeline) processFile(ctx context.Context, path string, agg *aggregate.Context) {
	r, err := source.Open(path)
	if err != nil {
		slog.Warn("skipping unreadable log file", "path", path, "error", err)
		agg.Tally.FailedFiles++
		return
	}
	defer r.Close()

	var lines int64
	err = source.EachLine(r, func(line string) error {
		lines++
		if lines%ctxCheckStride == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		p.consume(line, agg)
		return nil
	})
	if err != nil && ctx.Err() == nil {
		slog.Warn("log file truncated mid-read", "path", path, "lines", lines, "error", err)
		agg.Tally.FailedFiles++
	}
	slog.Debug("processed log file", "path", path, "lines", lines)
}

// Consume folds one raw line into agg. Exported for reader-based runs
// where the caller owns line iteration.
func (p *Pipeline) Consume(line string, agg *aggregate.Context) {
	p.consume(line, agg)
}

func (p *Pipeline) consume(line string, agg *aggregate.Context) {
	agg.Tally.TotalLines++
	rec, ok := parser.Parse(line)
	if !ok && p.reduced {
		rec, ok = parser.ParseReduced(line)
	}
	if !ok {
		agg.Tally.UnparsedLines++
		return
	}
	agg.Add(rec, p.classifier.Classify(rec.UserAgent), p.lookup(rec.IP))
}

func (p *Pipeline) lookup(ip string) geo.Country {
	if p.locator == nil {
		return geo.Country{}
	}
	return p.locator.Lookup(ip)
}
