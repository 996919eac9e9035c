// Command scutter analyzes web server access logs: it classifies traffic
// into bots and browsers, attributes bot requests to named crawlers, and
// writes time-bucketed JSON artifacts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/graylag/scutter/internal/aggregate"
	"github.com/graylag/scutter/internal/classifier"
	"github.com/graylag/scutter/internal/config"
	"github.com/graylag/scutter/internal/export"
	"github.com/graylag/scutter/internal/geo"
	"github.com/graylag/scutter/internal/logging"
	"github.com/graylag/scutter/internal/paths"
	"github.com/graylag/scutter/internal/pipeline"
	"github.com/graylag/scutter/internal/report"
	"github.com/graylag/scutter/internal/slim"
)

const usage = `usage: scutter <command> [flags]

commands:
  bots     export per-instance chronological bot paths
  speed    export per-instance request timing profiles
  traffic  export the time-bucketed traffic series
  split    export the bot/browser split in slim form
  urls     export the URL categorization rollup
  slim     export the country traffic series in slim form
  report   print console summaries of a full run

common flags (every command):
  -logs     log directory        (SCUTTER_LOG_DIR)
  -prefix   log file prefix      (SCUTTER_LOG_PREFIX)
  -out      artifact directory, "-" for stdout (SCUTTER_OUTPUT_DIR)
  -mmdb     GeoIP2 country database path (SCUTTER_MMDB_PATH)
  -workers  parallel file workers (SCUTTER_WORKERS)
  -version  print version and exit
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd := os.Args[1]
	if cmd == "-version" || cmd == "--version" || cmd == "version" {
		fmt.Println("scutter " + config.Version)
		return
	}

	cfg := config.Load()

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.StringVar(&cfg.Input.Dir, "logs", cfg.Input.Dir, "log directory")
	fs.StringVar(&cfg.Input.Prefix, "prefix", cfg.Input.Prefix, "log file prefix")
	fs.StringVar(&cfg.Output.Dir, "out", cfg.Output.Dir, `artifact directory, "-" for stdout`)
	fs.BoolVar(&cfg.Output.Pretty, "pretty", cfg.Output.Pretty, "indent artifacts")
	fs.StringVar(&cfg.Analysis.MMDBPath, "mmdb", cfg.Analysis.MMDBPath, "GeoIP2 country database path")
	fs.IntVar(&cfg.Analysis.Workers, "workers", cfg.Analysis.Workers, "parallel file workers (0 = one per CPU)")
	fs.IntVar(&cfg.Analysis.TopCountries, "top", cfg.Analysis.TopCountries, "top countries kept in slim series")
	fs.DurationVar(&cfg.Analysis.Granularity, "granularity", cfg.Analysis.Granularity, "time bucket width")
	debug := fs.Bool("debug", false, "also write indented _debug artifacts")
	fs.Parse(os.Args[2:])

	// Artifacts on stdout force structured logs so the streams stay
	// machine-separable.
	logging.Init(cfg.Output.Dir == "-", logging.ParseLevel(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	run, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "scutter: unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig.String())
		cancel()
	}()

	if err := run(ctx, cfg, *debug); err != nil {
		if err == context.Canceled {
			os.Exit(1)
		}
		slog.Error("run failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

type runFunc func(ctx context.Context, cfg config.Config, debug bool) error

var commands = map[string]runFunc{
	"bots":    runBots,
	"speed":   runSpeed,
	"traffic": runTraffic,
	"split":   runSplit,
	"urls":    runURLs,
	"slim":    runSlim,
	"report":  runReport,
}

// analyze runs the shared parse/classify/aggregate pass and returns the
// merged aggregate plus run metadata.
func analyze(ctx context.Context, cfg config.Config, popts []pipeline.Option, opts ...aggregate.Option) (*aggregate.Context, export.Metadata, error) {
	opts = append([]aggregate.Option{aggregate.WithGranularity(cfg.Analysis.Granularity)}, opts...)
	agg := aggregate.NewContext(opts...)

	popts = append(popts, pipeline.WithWorkers(cfg.Analysis.Workers))
	if cfg.Analysis.MMDBPath != "" {
		loc, err := geo.OpenMMDB(cfg.Analysis.MMDBPath)
		if err != nil {
			return nil, export.Metadata{}, err
		}
		defer loc.Close()
		popts = append(popts, pipeline.WithLocator(loc))
	}

	start := time.Now()
	p := pipeline.New(classifier.Default(), popts...)
	files, err := p.RunDir(ctx, cfg.Input.Dir, cfg.Input.Prefix, agg)
	if err != nil {
		return nil, export.Metadata{}, err
	}

	slog.Info("analysis complete",
		"files", len(files),
		"lines", agg.Tally.TotalLines,
		"parsed", agg.Tally.ParsedLines,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return agg, export.NewMetadata(cfg.Input.Dir, len(files), agg.Tally), nil
}

func write(cfg config.Config, debug bool, name string, doc any) error {
	w, err := export.NewWriter(cfg.Output.Dir, cfg.Output.Pretty)
	if err != nil {
		return err
	}
	path, err := w.Write(name, doc)
	if err != nil {
		return err
	}
	slog.Info("artifact written", "path", path)
	if debug && cfg.Output.Dir != "-" {
		if path, err = w.WriteDebug(name, doc); err != nil {
			return err
		}
		slog.Info("artifact written", "path", path)
	}
	return nil
}

func runBots(ctx context.Context, cfg config.Config, debug bool) error {
	agg, meta, err := analyze(ctx, cfg, nil, aggregate.WithBots(true))
	if err != nil {
		return err
	}
	ps := paths.Build(agg.Bots.Entries)
	if err := write(cfg, debug, "bot_paths.json", export.BotPaths(meta, agg.Bots, ps)); err != nil {
		return err
	}
	return write(cfg, debug, "bot_summary.json", export.BotSummary(meta, agg.Bots, ps))
}

func runSpeed(ctx context.Context, cfg config.Config, debug bool) error {
	agg, meta, err := analyze(ctx, cfg, nil, aggregate.WithBots(true))
	if err != nil {
		return err
	}
	doc := export.Speed(meta, paths.Build(agg.Bots.Entries))
	return write(cfg, debug, "bot_speed.json", doc)
}

func runTraffic(ctx context.Context, cfg config.Config, debug bool) error {
	agg, meta, err := analyze(ctx, cfg, nil, aggregate.WithTraffic(cfg.Analysis.MMDBPath != ""))
	if err != nil {
		return err
	}
	return write(cfg, debug, "traffic.json", export.TrafficSeries(meta, agg.Traffic))
}

func runSplit(ctx context.Context, cfg config.Config, debug bool) error {
	agg, _, err := analyze(ctx, cfg, nil, aggregate.WithClasses())
	if err != nil {
		return err
	}
	return write(cfg, debug, "split_slim.json", slim.EncodeClasses(agg.Classes))
}

func runURLs(ctx context.Context, cfg config.Config, debug bool) error {
	agg, meta, err := analyze(ctx, cfg,
		[]pipeline.Option{pipeline.WithReducedFallback()},
		aggregate.WithURLs(cfg.Analysis.SampleCap))
	if err != nil {
		return err
	}
	return write(cfg, debug, "urls.json", export.URLReport(meta, agg.URLs))
}

func runSlim(ctx context.Context, cfg config.Config, debug bool) error {
	agg, _, err := analyze(ctx, cfg, nil, aggregate.WithTraffic(true))
	if err != nil {
		return err
	}
	return write(cfg, debug, "traffic_slim.json", slim.EncodeTraffic(agg.Traffic, cfg.Analysis.TopCountries))
}

func runReport(ctx context.Context, cfg config.Config, _ bool) error {
	agg, meta, err := analyze(ctx, cfg, nil,
		aggregate.WithTraffic(cfg.Analysis.MMDBPath != ""),
		aggregate.WithClasses(),
		aggregate.WithBots(true),
		aggregate.WithURLs(cfg.Analysis.SampleCap),
	)
	if err != nil {
		return err
	}
	ps := paths.Build(agg.Bots.Entries)
	report.Bots(os.Stdout, export.BotSummary(meta, agg.Bots, ps))
	report.Speed(os.Stdout, export.Speed(meta, ps))
	report.Traffic(os.Stdout, export.TrafficSeries(meta, agg.Traffic))
	report.URLs(os.Stdout, export.URLReport(meta, agg.URLs))
	return nil
}
