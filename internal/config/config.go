// Package config loads scutter settings from environment variables,
// with an optional .env file for local runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Version is the scutter release version.
const Version = "0.3.0"

// Config holds all scutter configuration.
type Config struct {
	Input    InputConfig
	Output   OutputConfig
	Analysis AnalysisConfig
	LogLevel string
}

// InputConfig locates the access log files.
type InputConfig struct {
	Dir    string // directory scanned for log files
	Prefix string // file name prefix, e.g. "access.log"
}

// OutputConfig holds artifact destination settings.
type OutputConfig struct {
	Dir    string // directory for JSON artifacts
	Pretty bool   // indent artifacts (debug variants are always indented)
}

// AnalysisConfig tunes the aggregation pass.
type AnalysisConfig struct {
	Granularity  time.Duration // time-bucket width
	TopCountries int           // top-K countries kept in slim series
	SampleCap    int           // retained sample URLs per category
	Workers      int           // parallel file workers; 0 = one per file up to GOMAXPROCS
	MMDBPath     string        // GeoIP2/GeoLite2 country database, optional
}

// Load reads configuration from environment variables with sensible
// defaults. A .env file in the working directory is honored when present;
// real environment variables win over .env entries.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Input: InputConfig{
			Dir:    getenv("SCUTTER_LOG_DIR", "access_logs"),
			Prefix: getenv("SCUTTER_LOG_PREFIX", "access.log"),
		},
		Output: OutputConfig{
			Dir:    getenv("SCUTTER_OUTPUT_DIR", "data"),
			Pretty: getenvBool("SCUTTER_OUTPUT_PRETTY", false),
		},
		Analysis: AnalysisConfig{
			Granularity:  getenvDuration("SCUTTER_GRANULARITY", time.Minute),
			TopCountries: getenvInt("SCUTTER_TOP_COUNTRIES", 5),
			SampleCap:    getenvInt("SCUTTER_SAMPLE_CAP", 5),
			Workers:      getenvInt("SCUTTER_WORKERS", 0),
			MMDBPath:     os.Getenv("SCUTTER_MMDB_PATH"),
		},
		LogLevel: getenv("SCUTTER_LOG_LEVEL", "info"),
	}
}

// Validate checks the configuration for values that would make a run
// fail partway through. All problems are reported at once.
func (c Config) Validate() error {
	var errs []error

	if c.Input.Dir == "" {
		errs = append(errs, errors.New("log dir must not be empty (SCUTTER_LOG_DIR)"))
	}
	if c.Input.Prefix == "" {
		errs = append(errs, errors.New("log prefix must not be empty (SCUTTER_LOG_PREFIX)"))
	}
	if c.Analysis.Granularity < time.Second {
		errs = append(errs, fmt.Errorf("granularity must be at least 1s, got %v", c.Analysis.Granularity))
	}
	if c.Analysis.TopCountries < 1 {
		errs = append(errs, fmt.Errorf("top countries must be at least 1, got %d", c.Analysis.TopCountries))
	}
	if c.Analysis.SampleCap < 0 {
		errs = append(errs, fmt.Errorf("sample cap must not be negative, got %d", c.Analysis.SampleCap))
	}
	if c.Analysis.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Analysis.Workers))
	}
	if p := c.Analysis.MMDBPath; p != "" {
		if _, err := os.Stat(p); err != nil {
			errs = append(errs, fmt.Errorf("mmdb file not found: %s", p))
		}
	}

	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
