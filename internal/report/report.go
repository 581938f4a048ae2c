// Package report writes scan and preview documents as JSON and renders
// console summaries of them.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dbsmedya/piiscan/internal/config"
	"github.com/dbsmedya/piiscan/internal/engine"
)

// File name prefixes; a run's start time is appended.
const (
	ScanFilePrefix    = "privacy_scan_"
	PreviewFilePrefix = "db_analysis_"
	timestampLayout   = "20060102_150405"
)

// Writer stores documents in an output directory.
type Writer struct {
	Dir    string
	Pretty bool
}

// NewWriter creates a writer from the output configuration.
func NewWriter(cfg config.OutputConfig) *Writer {
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	return &Writer{Dir: dir, Pretty: cfg.Pretty}
}

// WriteScan writes the scan document, an array of container scans, and
// returns its path.
func (w *Writer) WriteScan(res *engine.ScanResult) (string, error) {
	docs := res.Containers
	if docs == nil {
		docs = []engine.ContainerScan{}
	}
	return w.write(ScanFilePrefix, res.StartedAt, docs)
}

// WritePreview writes the preview document and returns its path.
func (w *Writer) WritePreview(res *engine.PreviewResult) (string, error) {
	docs := res.Containers
	if docs == nil {
		docs = []engine.StructureAnalysis{}
	}
	return w.write(PreviewFilePrefix, res.StartedAt, docs)
}

// write goes through a temporary file so readers never see a partial
// document.
func (w *Writer) write(prefix string, started time.Time, v any) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(w.Dir, FileName(prefix, started))
	tmp, err := os.CreateTemp(w.Dir, ".piiscan-*.json")
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := Encode(tmp, v, w.Pretty); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	return path, nil
}

// FileName returns prefix followed by the local timestamp of t.
func FileName(prefix string, t time.Time) string {
	return prefix + t.Format(timestampLayout) + ".json"
}

// Encode writes v as JSON. Non-ASCII identifiers are written as-is.
func Encode(out io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return nil
}
