package dataset

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrRaggedColumns is returned when columns differ in length.
	ErrRaggedColumns = errors.New("columns have different row counts")
	// ErrDuplicateColumn is returned when two columns share a name.
	ErrDuplicateColumn = errors.New("duplicate column name")
	// ErrEmptyColumnName is returned for a blank header.
	ErrEmptyColumnName = errors.New("empty column name")
)

// Column is a named, read-only sequence of values.
type Column struct {
	name    string
	values  []Value
	missing int
}

// NewColumn copies values into a new column.
func NewColumn(name string, values []Value) Column {
	cp := make([]Value, len(values))
	copy(cp, values)
	miss := 0
	for _, v := range cp {
		if v.IsMissing() {
			miss++
		}
	}
	return Column{name: name, values: cp, missing: miss}
}

func (c *Column) Name() string      { return c.name }
func (c *Column) Len() int          { return len(c.values) }
func (c *Column) At(i int) Value    { return c.values[i] }
func (c *Column) MissingCount() int { return c.missing }

// Floats returns a fresh slice with NaN in place of missing or non-numeric cells.
func (c *Column) Floats() []float64 {
	out := make([]float64, len(c.values))
	for i, v := range c.values {
		if f, ok := v.Float(); ok {
			out[i] = f
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// Dataset is an ordered set of equally long columns. It is never mutated
// after New returns, so it can be shared freely between goroutines.
type Dataset struct {
	name    string
	columns []Column
	index   map[string]int
	rows    int
}

// New validates the columns and builds a Dataset.
func New(name string, columns ...Column) (*Dataset, error) {
	ds := &Dataset{name: name, index: make(map[string]int, len(columns))}
	for i, c := range columns {
		if strings.TrimSpace(c.name) == "" {
			return nil, fmt.Errorf("column %d: %w", i+1, ErrEmptyColumnName)
		}
		if _, dup := ds.index[c.name]; dup {
			return nil, fmt.Errorf("%q: %w", c.name, ErrDuplicateColumn)
		}
		if i == 0 {
			ds.rows = c.Len()
		} else if c.Len() != ds.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d: %w", c.name, c.Len(), ds.rows, ErrRaggedColumns)
		}
		ds.index[c.name] = i
	}
	ds.columns = make([]Column, len(columns))
	copy(ds.columns, columns)
	return ds, nil
}

// Name is the source name, usually the file base name.
func (d *Dataset) Name() string { return d.name }
func (d *Dataset) NumRows() int { return d.rows }
func (d *Dataset) NumCols() int { return len(d.columns) }

// ColumnNames returns the column names in original order.
func (d *Dataset) ColumnNames() []string {
	out := make([]string, len(d.columns))
	for i := range d.columns {
		out[i] = d.columns[i].name
	}
	return out
}

// Column looks a column up by exact name.
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return &d.columns[i], true
}

// ColumnAt returns the i-th column.
func (d *Dataset) ColumnAt(i int) *Column { return &d.columns[i] }

// Head renders the first n rows as strings, for previews.
func (d *Dataset) Head(n int) [][]string {
	if n > d.rows {
		n = d.rows
	}
	if n <= 0 {
		return nil
	}
	out := make([][]string, n)
	for r := 0; r < n; r++ {
		row := make([]string, len(d.columns))
		for c := range d.columns {
			row[c] = d.columns[c].values[r].String()
		}
		out[r] = row
	}
	return out
}
