// Package sheet gives the processing workflows a schema-free view of a
// spreadsheet: a rectangular grid of formatted cell strings, plus label-based
// and header-based lookup on top of it. Vendor purchase-order forms have no
// fixed cell layout, so everything above this package addresses cells through
// labels and ranked header candidates rather than hard-coded types.
package sheet

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

var ErrNoSheets = errors.New("workbook has no sheets")

// Sheet is read-only (row, col) access to one worksheet. Coordinates are
// zero-based. Out-of-range access returns the empty string.
type Sheet interface {
	Rows() int
	Cols() int
	Cell(row, col int) string
}

// Grid is an in-memory Sheet. Row slices may be ragged; Cell pads with "".
type Grid struct {
	rows [][]string
	cols int
}

func NewGrid(rows [][]string) *Grid {
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	return &Grid{rows: rows, cols: cols}
}

func (g *Grid) Rows() int { return len(g.rows) }
func (g *Grid) Cols() int { return g.cols }

func (g *Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g.rows) {
		return ""
	}
	r := g.rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Open reads the first worksheet of an xlsx byte stream into a Grid.
// Values are the formatted cell strings, so date-styled cells arrive as
// formatted dates rather than raw serial numbers.
func Open(data []byte) (*Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return NewGrid(rows), nil
}
