// Package grid implements the spreadsheet engine behind the pricing widget:
// a sparse cell map with one-shot formula evaluation, a rectangular selection
// model, and the pointer/keyboard interaction state machine.
package grid

import "strconv"

// Columns is the fixed, ordered column alphabet.
var Columns = []string{"A", "B", "C", "D", "E", "F", "G"}

// Rows is the number of grid rows (1-based keys, so B3 is column B, row 3).
const Rows = 25

// MinColumnWidth is the resize floor in pixels.
const MinColumnWidth = 40

// CellStyle carries the presentation attributes of a cell. The engine never
// interprets these; they ride along for rendering.
type CellStyle struct {
	Bold       bool   `json:"bold,omitempty"`
	Background string `json:"background,omitempty"`
	Align      string `json:"align,omitempty"`
}

// CellData is one cell. Formula cells keep the literal formula text (shown
// while editing) alongside the last-evaluated Value. Locked cells hold the
// canonical pricing rows and are excluded from every mutation.
type CellData struct {
	Value   string     `json:"value"`
	Formula string     `json:"formula,omitempty"`
	Style   *CellStyle `json:"style,omitempty"`
	Locked  bool       `json:"locked,omitempty"`
}

// Data is the sparse cell map; an absent key is an empty cell.
type Data map[string]CellData

// CellID builds the string key for zero-based column/row indices, e.g. (1,2)
// yields "B3".
func CellID(col, row int) string {
	return Columns[col] + strconv.Itoa(row+1)
}

// Range is an anchored selection rectangle. Start is the anchor (the active
// cell); End is the drag endpoint. Both are inclusive and either corner may
// be the smaller one.
type Range struct {
	StartCol int
	StartRow int
	EndCol   int
	EndRow   int
}

// CellRange collapses to the single cell at (col, row).
func CellRange(col, row int) Range {
	return Range{StartCol: col, StartRow: row, EndCol: col, EndRow: row}
}

// Normalize returns the min/max rectangle for iteration.
func (r Range) Normalize() (minCol, minRow, maxCol, maxRow int) {
	minCol, maxCol = r.StartCol, r.EndCol
	if minCol > maxCol {
		minCol, maxCol = maxCol, minCol
	}
	minRow, maxRow = r.StartRow, r.EndRow
	if minRow > maxRow {
		minRow, maxRow = maxRow, minRow
	}
	return minCol, minRow, maxCol, maxRow
}

// Contains reports whether (col, row) falls inside the normalized rectangle.
func (r Range) Contains(col, row int) bool {
	minCol, minRow, maxCol, maxRow := r.Normalize()
	return col >= minCol && col <= maxCol && row >= minRow && row <= maxRow
}

// Store owns the cell map and the column widths. All mutation goes through
// its methods, which uniformly refuse to touch locked cells.
type Store struct {
	data   Data
	widths map[string]int
}

// NewStore returns a store seeded with the canonical pricing table and the
// default column widths.
func NewStore() *Store {
	data := make(Data, len(seedData))
	for id, cell := range seedData {
		data[id] = cell
	}
	widths := make(map[string]int, len(defaultWidths))
	for col, w := range defaultWidths {
		widths[col] = w
	}
	return &Store{data: data, widths: widths}
}

// Cell returns the cell at id, if present.
func (s *Store) Cell(id string) (CellData, bool) {
	cell, ok := s.data[id]
	return cell, ok
}

// Locked reports whether the cell at id exists and is locked.
func (s *Store) Locked(id string) bool {
	cell, ok := s.data[id]
	return ok && cell.Locked
}

// Snapshot returns a copy of the cell map.
func (s *Store) Snapshot() Data {
	out := make(Data, len(s.data))
	for id, cell := range s.data {
		out[id] = cell
	}
	return out
}

// CommitEdit stores raw input into the cell at id. Input starting with "="
// is kept as the formula and evaluated once against the current grid; other
// input is stored verbatim and clears any prior formula. Returns false
// without mutating when the target is locked.
func (s *Store) CommitEdit(id, raw string) bool {
	if s.Locked(id) {
		return false
	}
	cell := s.data[id]
	if len(raw) > 0 && raw[0] == '=' {
		cell.Formula = raw
		cell.Value = Evaluate(raw, s.data)
	} else {
		cell.Formula = ""
		cell.Value = raw
	}
	s.data[id] = cell
	return true
}

// ClearRange deletes every unlocked cell in the normalized rectangle.
// Locked cells are untouched.
func (s *Store) ClearRange(r Range) {
	minCol, minRow, maxCol, maxRow := r.Normalize()
	for c := minCol; c <= maxCol; c++ {
		for row := minRow; row <= maxRow; row++ {
			id := CellID(c, row)
			if s.Locked(id) {
				continue
			}
			delete(s.data, id)
		}
	}
}

// PasteValue writes value verbatim into the cell at id, preserving its style.
// Returns false without mutating when the target is locked.
func (s *Store) PasteValue(id, value string) bool {
	if s.Locked(id) {
		return false
	}
	cell := s.data[id]
	cell.Value = value
	s.data[id] = cell
	return true
}

// ResizeColumn sets a column width, clamped to the 40px floor. Called live
// during a resize drag; the last value sticks after release.
func (s *Store) ResizeColumn(col string, width int) {
	if width < MinColumnWidth {
		width = MinColumnWidth
	}
	s.widths[col] = width
}

// ColumnWidth returns the current width of col.
func (s *Store) ColumnWidth(col string) int {
	return s.widths[col]
}

// ColumnWidths returns a copy of the width map.
func (s *Store) ColumnWidths() map[string]int {
	out := make(map[string]int, len(s.widths))
	for col, w := range s.widths {
		out[col] = w
	}
	return out
}
