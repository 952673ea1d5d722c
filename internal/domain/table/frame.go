package table

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frame is the canonical, typed dataset produced by validation. Cell
// values are string, decimal.Decimal, int64, time.Time, bool, or nil
// for a coerced-away value.
type Frame struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`

	Source Provenance `json:"source"`
}

// NewFrame creates an empty frame with the given column set.
func NewFrame(columns []string) *Frame {
	return &Frame{
		Columns: columns,
		Rows:    make([]map[string]any, 0),
	}
}

// RowCount returns the number of rows.
func (f *Frame) RowCount() int {
	return len(f.Rows)
}

// HasColumn reports whether the frame carries a column. Downstream
// consumers use this to skip sub-analyses for absent optional fields.
func (f *Frame) HasColumn(name string) bool {
	for _, c := range f.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// String returns the string value of a cell, or "" when absent or of a
// different type.
func (f *Frame) String(row int, name string) string {
	if row < 0 || row >= len(f.Rows) {
		return ""
	}
	s, _ := f.Rows[row][name].(string)
	return s
}

// Decimal returns the decimal value of a cell.
func (f *Frame) Decimal(row int, name string) (decimal.Decimal, bool) {
	if row < 0 || row >= len(f.Rows) {
		return decimal.Zero, false
	}
	d, ok := f.Rows[row][name].(decimal.Decimal)
	return d, ok
}

// Time returns the time value of a cell.
func (f *Frame) Time(row int, name string) (time.Time, bool) {
	if row < 0 || row >= len(f.Rows) {
		return time.Time{}, false
	}
	t, ok := f.Rows[row][name].(time.Time)
	return t, ok
}

// SumDecimal sums a decimal column over all rows, skipping nulls.
func (f *Frame) SumDecimal(name string) decimal.Decimal {
	total := decimal.Zero
	for i := range f.Rows {
		if d, ok := f.Decimal(i, name); ok {
			total = total.Add(d)
		}
	}
	return total
}
