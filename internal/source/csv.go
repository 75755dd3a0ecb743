// Package source reads breakdown input tables.
//
// The CSV layout is positional: the first column is the row identifier, the
// last column is the integer measure, and every column in between is a
// categorical feature named Feature_A, Feature_B, ... in order.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ahrav/go-breakdown/internal/domain"
)

// MaxFeatures is the number of feature columns that can be named Feature_A..Feature_Z.
const MaxFeatures = 26

// Column names of the derived schema.
const (
	IDColumn      = "Id"
	MeasureColumn = "N"
)

var (
	// ErrEmptyInput indicates an input without any record.
	ErrEmptyInput = errors.New("input table is empty")

	// ErrTooManyFeatures indicates more feature columns than MaxFeatures.
	ErrTooManyFeatures = errors.New("unsupported number of features in input table")

	// ErrTooFewColumns indicates records without room for an id and a measure.
	ErrTooFewColumns = errors.New("input table needs an id and a measure column")
)

// Options controls CSV parsing.
type Options struct {
	// HasHeader skips the first record instead of treating it as data.
	HasHeader bool
}

// FeatureName returns the name of the i-th feature column.
func FeatureName(i int) string {
	return "Feature_" + string(rune('A'+i))
}

// Schema derives the table columns for records of the given width.
func Schema(width int) ([]domain.Column, error) {
	if width < 2 {
		return nil, fmt.Errorf("%w: got %d columns", ErrTooFewColumns, width)
	}
	features := width - 2
	if features > MaxFeatures {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyFeatures, features, MaxFeatures)
	}

	cols := make([]domain.Column, 0, width)
	cols = append(cols, domain.Column{Name: IDColumn, Type: domain.ColumnText})
	for i := range features {
		cols = append(cols, domain.Column{Name: FeatureName(i), Type: domain.ColumnText})
	}
	cols = append(cols, domain.Column{Name: MeasureColumn, Type: domain.ColumnInteger})
	return cols, nil
}

// ReadCSV parses r into a table. The number of features is deduced from the
// width of the first record; every later record must have the same width.
// Whitespace following a comma is ignored.
func ReadCSV(r io.Reader, opts Options) (*domain.Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read first record: %w", err)
	}

	cols, err := Schema(len(first))
	if err != nil {
		return nil, err
	}
	table := &domain.Table{Columns: cols}

	line := 1
	if !opts.HasHeader {
		row, err := toRow(cols, first, line)
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, row)
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		line++
		row, err := toRow(cols, record, line)
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ReadFile opens path and parses it with ReadCSV.
func ReadFile(path string, opts Options) (*domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input table: %w", err)
	}
	defer f.Close()

	table, err := ReadCSV(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

func toRow(cols []domain.Column, record []string, line int) (domain.Row, error) {
	row := make(domain.Row, len(cols))
	for i, col := range cols {
		value := record[i]
		if trimmed := strings.TrimSpace(value); col.Type == domain.ColumnInteger && trimmed != "" {
			if _, err := strconv.ParseInt(trimmed, 10, 64); err != nil {
				return nil, fmt.Errorf("%w: line %d column %s: %q is not an integer",
					domain.ErrInvalidRow, line, col.Name, value)
			}
		}
		row[col.Name] = value
	}
	return row, nil
}

// Features lists the feature columns of a table derived by this package, in
// column order.
func Features(t *domain.Table) []string {
	var out []string
	for _, c := range t.Columns {
		if c.Type == domain.ColumnText && c.Name != IDColumn {
			out = append(out, c.Name)
		}
	}
	return out
}
