package scutter

import "time"

type options struct {
	granularity time.Duration
	workers     int
	sampleCap   int
	geoDBPath   string
	prefix      string
}

// Option configures an Analyzer.
type Option func(*options)

// WithGranularity sets the time-bucket width for traffic rollups.
// Default: one minute.
func WithGranularity(d time.Duration) Option {
	return func(o *options) { o.granularity = d }
}

// WithWorkers caps parallel file workers. Default 0 means one per CPU.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithSampleCap bounds the retained sample URLs per category. Default: 5.
func WithSampleCap(n int) Option {
	return func(o *options) { o.sampleCap = n }
}

// WithGeoDatabase enables country attribution via a MaxMind
// GeoLite2/GeoIP2 country .mmdb file.
func WithGeoDatabase(path string) Option {
	return func(o *options) { o.geoDBPath = path }
}

// WithFilePrefix sets the log file name prefix matched during directory
// discovery. Default: "access.log".
func WithFilePrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

func defaultOptions() options {
	return options{
		granularity: time.Minute,
		sampleCap:   5,
		prefix:      "access.log",
	}
}
