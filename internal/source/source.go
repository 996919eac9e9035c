// Package source discovers log files and streams their lines.
//
// Reads are tolerant: bytes that are not valid UTF-8 are replaced with
// U+FFFD instead of failing, so one corrupt byte never costs a whole file.
package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultPrefix is the conventional access-log file name prefix.
const DefaultPrefix = "access.log"

const (
	initialBufSize = 64 * 1024
	maxLineSize    = 1024 * 1024
)

// Discover lists the regular files in dir whose name begins with prefix,
// sorted by name. Rotated logs (access.log.1, access.log.2.gz …) sort
// after the live file, which keeps per-file processing order stable.
func Discover(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("source: read dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Open opens path for tolerant text reading.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: open %s: %w", path, err)
	}
	return &reader{
		Reader: transform.NewReader(f, unicode.UTF8.NewDecoder()),
		closer: f,
	}, nil
}

type reader struct {
	io.Reader
	closer io.Closer
}

func (r *reader) Close() error {
	return r.closer.Close()
}

// EachLine calls fn for every line of r, stopping at the first error fn
// returns. Per-line data problems belong in the caller's counters, not
// here; fn should only fail to abort the whole read, e.g. on a cancelled
// context.
func EachLine(r io.Reader, fn func(line string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, initialBufSize), maxLineSize)
	for sc.Scan() {
		if err := fn(sc.Text()); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("source: scan: %w", err)
	}
	return nil
}
