package domain

import "slices"

// ColumnType is the declared type of a table column.
type ColumnType string

const (
	// ColumnText holds category labels and identifiers.
	ColumnText ColumnType = "text"

	// ColumnInteger holds whole numbers usable by SumNumeric.
	ColumnInteger ColumnType = "integer"
)

// Column describes one column of a table.
type Column struct {
	Name string     `json:"name" validate:"required"`
	Type ColumnType `json:"type" validate:"required,oneof=text integer"`
}

// Row maps column names to raw field values. A missing column and the empty
// string both denote null.
type Row map[string]string

// Table is an ordered collection of rows with a declared schema.
type Table struct {
	Columns []Column `json:"columns" validate:"required,min=1,dive"`
	Rows    []Row    `json:"rows"`
}

// Validate checks the schema of the table.
func (t *Table) Validate() error { return validate.Struct(t) }

// Column returns the column named name.
func (t *Table) Column(name string) (Column, bool) {
	i := slices.IndexFunc(t.Columns, func(c Column) bool { return c.Name == name })
	if i < 0 {
		return Column{}, false
	}
	return t.Columns[i], true
}
