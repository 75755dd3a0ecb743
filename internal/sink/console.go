package sink

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ahrav/go-breakdown/internal/domain"
)

// DefaultConsoleRows is how many rows the console sink shows by default.
const DefaultConsoleRows = 100

// Console prints results as a bordered text table.
type Console struct {
	w     io.Writer
	limit int
}

// NewConsole creates a console sink printing at most limit rows to w.
// A non-positive limit prints every row.
func NewConsole(w io.Writer, limit int) *Console {
	return &Console{w: w, limit: limit}
}

// Write implements Sink.
func (c *Console) Write(_ context.Context, rows []domain.ResultRow) error {
	shown := rows
	if c.limit > 0 && len(rows) > c.limit {
		shown = rows[:c.limit]
	}

	records := make([][]string, 0, len(shown)+1)
	records = append(records, Header)
	for _, r := range shown {
		records = append(records, record(r))
	}

	widths := make([]int, len(Header))
	for _, rec := range records {
		for i, field := range rec {
			widths[i] = max(widths[i], len(field))
		}
	}

	var b strings.Builder
	border := func() {
		for _, w := range widths {
			b.WriteString("+")
			b.WriteString(strings.Repeat("-", w))
		}
		b.WriteString("+\n")
	}
	line := func(rec []string) {
		for i, field := range rec {
			fmt.Fprintf(&b, "|%*s", widths[i], field)
		}
		b.WriteString("|\n")
	}

	border()
	line(records[0])
	border()
	for _, rec := range records[1:] {
		line(rec)
	}
	border()
	if len(shown) < len(rows) {
		fmt.Fprintf(&b, "only showing top %d rows\n", len(shown))
	}

	_, err := io.WriteString(c.w, b.String())
	return err
}
