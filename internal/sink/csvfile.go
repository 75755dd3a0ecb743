package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ahrav/go-breakdown/internal/domain"
)

// CSVFile writes results with a header line to a single CSV file.
type CSVFile struct {
	path string
}

// NewCSVFile creates a sink writing to path. Parent directories are created
// on write and an existing file is replaced.
func NewCSVFile(path string) *CSVFile {
	return &CSVFile{path: path}
}

// Write implements Sink.
func (s *CSVFile) Write(_ context.Context, rows []domain.ResultRow) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	return os.Rename(tmp, s.path)
}

// WriteCSV encodes rows with a header line to w.
func WriteCSV(w io.Writer, rows []domain.ResultRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(record(r)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
