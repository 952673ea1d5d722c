package csvimport

import (
	"io"

	"github.com/commercelens/backend/internal/domain/table"
)

// ReadTable parses an entire CSV stream into a domain table. Completely
// empty rows are dropped. A maxRows of zero disables the row limit.
func ReadTable(r io.Reader, maxRows int, opts ...ParserOption) (*table.Table, error) {
	parser, err := NewCSVParser(r, opts...)
	if err != nil {
		return nil, err
	}

	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}

	var rows [][]string
	for {
		row, err := parser.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if row.IsEmpty() {
			continue
		}
		if maxRows > 0 && len(rows) >= maxRows {
			return nil, ErrTooManyRows
		}

		cells := make([]string, len(parser.Headers()))
		for i, h := range parser.Headers() {
			cells[i] = row.Data[h]
		}
		rows = append(rows, cells)
	}

	if len(rows) == 0 {
		return nil, ErrNoDataRows
	}

	return table.New(parser.Headers(), rows)
}
