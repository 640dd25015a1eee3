package sheet

import (
	"strings"
)

// FindValueByLabel scans rows 0..maxRow and columns 0..maxCol in row-major
// order for a cell whose whitespace-stripped content contains the
// whitespace-stripped label, and returns the value of the cell immediately to
// its right. First match wins. Absence is not an error: the caller falls back
// to a fixed cell when the form defines one.
func FindValueByLabel(s Sheet, label string, maxRow, maxCol int) (string, bool) {
	target := stripSpace(label)
	if target == "" {
		return "", false
	}
	rows := minInt(maxRow, s.Rows()-1)
	cols := minInt(maxCol, s.Cols()-1)
	for r := 0; r <= rows; r++ {
		for c := 0; c <= cols; c++ {
			cell := s.Cell(r, c)
			if cell == "" {
				continue
			}
			if strings.Contains(stripSpace(cell), target) {
				return s.Cell(r, c+1), true
			}
		}
	}
	return "", false
}

// FieldSpec declares where one form field lives: a label to scan for, and a
// fixed fallback cell for forms that drop the label. Label may be empty for
// fields that only ever appear at a fixed position.
type FieldSpec struct {
	Label       string
	FallbackRow int
	FallbackCol int
}

// Resolve evaluates the spec against a sheet: label scan first, fixed cell
// second. An empty label-scan hit still falls through to the fixed cell.
func (fs FieldSpec) Resolve(s Sheet, maxRow, maxCol int) string {
	if fs.Label != "" {
		if v, ok := FindValueByLabel(s, fs.Label, maxRow, maxCol); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return strings.TrimSpace(s.Cell(fs.FallbackRow, fs.FallbackCol))
}

// ColumnSpec names one logical column and the header substrings that identify
// it, in priority order.
type ColumnSpec struct {
	Field      string
	Candidates []string
}

// ResolveColumns maps each spec to a column index in the header row, trying
// candidates in order and taking the first header that contains one as a
// substring. Missing columns resolve to -1.
func ResolveColumns(header []string, specs []ColumnSpec) map[string]int {
	out := make(map[string]int, len(specs))
	for _, spec := range specs {
		out[spec.Field] = findColumn(header, spec.Candidates)
	}
	return out
}

func findColumn(header []string, candidates []string) int {
	for _, cand := range candidates {
		for i, h := range header {
			if h != "" && strings.Contains(h, cand) {
				return i
			}
		}
	}
	return -1
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
