// Package sink writes breakdown results to their destinations: the console,
// CSV files and SQLite databases.
package sink

import (
	"context"
	"errors"
	"strconv"

	"github.com/ahrav/go-breakdown/internal/domain"
)

// Header is the column header shared by every tabular sink.
var Header = []string{"Feature_Name", "Feature_Value", "Total", "Percentage"}

// Sink consumes the rows of a completed breakdown.
type Sink interface {
	Write(ctx context.Context, rows []domain.ResultRow) error
}

// Multi writes to every sink in order and joins their errors.
type Multi []Sink

// Write implements Sink.
func (m Multi) Write(ctx context.Context, rows []domain.ResultRow) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, rows); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// record renders a result row as text fields in Header order.
func record(r domain.ResultRow) []string {
	return []string{r.FeatureName, r.FeatureValue, strconv.FormatInt(r.Total, 10), r.Percentage.String()}
}
