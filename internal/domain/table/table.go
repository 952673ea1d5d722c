// Package table defines the tabular data structures that flow through
// the ingestion pipeline: the raw Table handed over by the reader and
// the typed canonical Frame produced by validation.
package table

import (
	"fmt"

	"github.com/commercelens/backend/internal/domain/shared"
)

// Provenance carries basic origin information for an uploaded table.
type Provenance struct {
	Filename string `json:"filename,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
	UploadID string `json:"upload_id,omitempty"`
}

// Table is an ordered tabular dataset with string cells. Column names
// are unique; duplicate-name resolution happens upstream in the reader.
type Table struct {
	headers  []string
	rows     [][]string
	colIndex map[string]int

	Source Provenance
}

// New creates a Table from a header row and data rows. Header names
// must be unique and non-empty; rows shorter than the header are padded
// with empty cells, longer rows are truncated.
func New(headers []string, rows [][]string) (*Table, error) {
	if len(headers) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "table must have at least one column")
	}

	colIndex := make(map[string]int, len(headers))
	for i, h := range headers {
		if h == "" {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "column %d has an empty name", i+1)
		}
		if _, dup := colIndex[h]; dup {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "duplicate column name %q", h)
		}
		colIndex[h] = i
	}

	normalized := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) == len(headers) {
			normalized[i] = row
			continue
		}
		fixed := make([]string, len(headers))
		copy(fixed, row)
		normalized[i] = fixed
	}

	return &Table{
		headers:  headers,
		rows:     normalized,
		colIndex: colIndex,
	}, nil
}

// MustNew is like New but panics on error. Intended for tests and
// static fixtures.
func MustNew(headers []string, rows [][]string) *Table {
	t, err := New(headers, rows)
	if err != nil {
		panic(fmt.Sprintf("table.MustNew: %v", err))
	}
	return t
}

// Headers returns the ordered column names.
func (t *Table) Headers() []string {
	return t.headers
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.rows)
}

// HasColumn reports whether a column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.colIndex[name]
	return ok
}

// Cell returns the value at (row, column name). The second return is
// false when the column does not exist or the row is out of range.
func (t *Table) Cell(row int, name string) (string, bool) {
	idx, ok := t.colIndex[name]
	if !ok || row < 0 || row >= len(t.rows) {
		return "", false
	}
	return t.rows[row][idx], true
}

// Column returns all values of a column in row order.
func (t *Table) Column(name string) ([]string, bool) {
	idx, ok := t.colIndex[name]
	if !ok {
		return nil, false
	}
	values := make([]string, len(t.rows))
	for i, row := range t.rows {
		values[i] = row[idx]
	}
	return values, true
}

// Row returns a single row as a column-name -> value map.
func (t *Table) Row(i int) map[string]string {
	if i < 0 || i >= len(t.rows) {
		return nil
	}
	out := make(map[string]string, len(t.headers))
	for j, h := range t.headers {
		out[h] = t.rows[i][j]
	}
	return out
}

// Sample returns up to n non-empty values from a column, used for type
// inference on unmapped columns.
func (t *Table) Sample(name string, n int) []string {
	idx, ok := t.colIndex[name]
	if !ok || n <= 0 {
		return nil
	}
	samples := make([]string, 0, n)
	for _, row := range t.rows {
		if v := row[idx]; v != "" {
			samples = append(samples, v)
			if len(samples) == n {
				break
			}
		}
	}
	return samples
}

// Project builds a new table whose columns are the canonical field
// names of the mapping, sourced from the mapped columns of t. Mapped
// columns missing from t are skipped; callers are expected to have
// validated the mapping first.
func (t *Table) Project(mapping map[string]string) *Table {
	headers := make([]string, 0, len(mapping))
	srcIdx := make([]int, 0, len(mapping))
	for canonical, source := range mapping {
		idx, ok := t.colIndex[source]
		if !ok {
			continue
		}
		headers = append(headers, canonical)
		srcIdx = append(srcIdx, idx)
	}
	sortByHeaders(headers, srcIdx)

	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		projected := make([]string, len(headers))
		for j, idx := range srcIdx {
			projected[j] = row[idx]
		}
		rows[i] = projected
	}

	colIndex := make(map[string]int, len(headers))
	for i, h := range headers {
		colIndex[h] = i
	}

	return &Table{
		headers:  headers,
		rows:     rows,
		colIndex: colIndex,
		Source:   t.Source,
	}
}

// sortByHeaders keeps projection output deterministic regardless of map
// iteration order.
func sortByHeaders(headers []string, srcIdx []int) {
	for i := 1; i < len(headers); i++ {
		for j := i; j > 0 && headers[j] < headers[j-1]; j-- {
			headers[j], headers[j-1] = headers[j-1], headers[j]
			srcIdx[j], srcIdx[j-1] = srcIdx[j-1], srcIdx[j]
		}
	}
}

// AppendRow adds a row to the table. Intended for builders that
// synthesize tables (the aggregation engine); the row must match the
// header width.
func (t *Table) AppendRow(row []string) error {
	if len(row) != len(t.headers) {
		return shared.NewDomainErrorf(shared.CodeInvalidInput,
			"row has %d cells, table has %d columns", len(row), len(t.headers))
	}
	t.rows = append(t.rows, row)
	return nil
}
