// Package export builds and writes the JSON artifacts of an analysis run.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const defaultBufSize = 64 * 1024 // 64KB

// Writer writes artifact documents into a directory with buffered I/O,
// or onto a single stream when the directory is "-".
type Writer struct {
	dir    string
	stream io.Writer // when set, documents go here instead of files
	pretty bool
}

// NewWriter creates the artifact directory if needed. The directory "-"
// streams every document to stdout instead.
func NewWriter(dir string, pretty bool) (*Writer, error) {
	if dir == "-" {
		return NewStreamWriter(os.Stdout, pretty), nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("export: mkdir %s: %w", dir, err)
	}
	return &Writer{dir: dir, pretty: pretty}, nil
}

// NewStreamWriter writes every document onto out, one JSON value per
// document.
func NewStreamWriter(out io.Writer, pretty bool) *Writer {
	return &Writer{stream: out, pretty: pretty}
}

// Write JSON-encodes doc into name within the artifact directory and
// returns the full path. URLs pass through unescaped.
func (w *Writer) Write(name string, doc any) (string, error) {
	return w.write(name, doc, w.pretty)
}

// WriteDebug writes an always-indented companion artifact named
// <base>_debug.json, for eyeballing alongside the compact form.
func (w *Writer) WriteDebug(name string, doc any) (string, error) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return w.write(base+"_debug.json", doc, true)
}

func (w *Writer) write(name string, doc any, indent bool) (string, error) {
	if w.stream != nil {
		if err := encode(w.stream, doc, indent); err != nil {
			return "", fmt.Errorf("export: encode %s: %w", name, err)
		}
		return name, nil
	}

	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("export: create %s: %w", path, err)
	}

	bw := bufio.NewWriterSize(f, defaultBufSize)
	if err := encode(bw, doc, indent); err != nil {
		f.Close()
		return "", fmt.Errorf("export: encode %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return "", fmt.Errorf("export: flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("export: close %s: %w", path, err)
	}
	return path, nil
}

func encode(out io.Writer, doc any, indent bool) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(doc)
}
