// Package sheet is the spreadsheet engine core: the cell model, the
// reference grammar, the formula evaluator, the recalculation engine, the
// structural editor, the formatter, and the CSV codec.
package sheet

import "fmt"

// Selection describes the current range selection. It is purely descriptive
// state; it owns nothing beyond its coordinates and active flag.
type Selection struct {
	Start, End Ref
	Active     bool
}

// Clipboard is a detached rectangular block of cell copies.
type Clipboard struct {
	Cells  [][]*Cell // Cells[i][j] may be nil (empty slot)
	Rows   int
	Cols   int
	Active bool
}

// Sheet owns a rectangular grid of rows x cols cell slots plus column
// widths, row heights, selection and clipboard state.
type Sheet struct {
	Name string

	rows, cols int
	grid       [][]*Cell // grid[row][col], nil = unallocated slot

	colWidths  []int
	rowHeights []int

	Selection Selection
	Clipboard Clipboard

	singleClipboard *Cell // single-cell clipboard; held per sheet, not shared between sheets

	needsRecalc bool
}

// NewSheet allocates an empty rows x cols sheet with default sizing.
func NewSheet(name string, rows, cols int) *Sheet {
	s := &Sheet{
		Name: name,
		rows: rows, cols: cols,
		grid:       make([][]*Cell, rows),
		colWidths:  make([]int, cols),
		rowHeights: make([]int, rows),
	}
	for r := range s.grid {
		s.grid[r] = make([]*Cell, cols)
	}
	for c := range s.colWidths {
		s.colWidths[c] = DefaultColumnWidth
	}
	for r := range s.rowHeights {
		s.rowHeights[r] = DefaultRowHeight
	}
	return s
}

func (s *Sheet) Rows() int { return s.rows }
func (s *Sheet) Cols() int { return s.cols }

func (s *Sheet) inBounds(ref Ref) bool {
	return ref.Row >= 0 && ref.Row < s.rows && ref.Col >= 0 && ref.Col < s.cols
}

// Get returns the cell at ref, or a transient read-only empty cell if the
// slot is unallocated. The returned pointer must not be mutated.
func (s *Sheet) Get(ref Ref) *Cell {
	if !s.inBounds(ref) {
		return emptyCellAt(ref.Row, ref.Col)
	}
	if c := s.grid[ref.Row][ref.Col]; c != nil {
		return c
	}
	return emptyCellAt(ref.Row, ref.Col)
}

// GetOrCreate ensures a cell is allocated at ref and returns it.
func (s *Sheet) GetOrCreate(ref Ref) *Cell {
	if !s.inBounds(ref) {
		return emptyCellAt(ref.Row, ref.Col)
	}
	c := s.grid[ref.Row][ref.Col]
	if c == nil {
		c = newCell(ref.Row, ref.Col)
		s.grid[ref.Row][ref.Col] = c
	}
	return c
}

func (s *Sheet) markDirty() { s.needsRecalc = true }

// NeedsRecalc reports whether a mutation has happened since the last
// Recalculate.
func (s *Sheet) NeedsRecalc() bool { return s.needsRecalc }

// SetNumber writes a numeric value, preserving the cell's format.
func (s *Sheet) SetNumber(ref Ref, v float64) error {
	if !s.inBounds(ref) {
		return fmt.Errorf("sheet: %s out of bounds", ref)
	}
	c := s.GetOrCreate(ref)
	s.clearDependencies(c)
	c.Kind = KindNumber
	c.Number = v
	c.Text = ""
	c.IsTextResult = false
	c.CachedText = ""
	c.Err = ErrorNone
	s.markDirty()
	return nil
}

// SetText writes a text value, preserving the cell's format.
func (s *Sheet) SetText(ref Ref, v string) error {
	if !s.inBounds(ref) {
		return fmt.Errorf("sheet: %s out of bounds", ref)
	}
	c := s.GetOrCreate(ref)
	s.clearDependencies(c)
	c.Kind = KindText
	c.Text = v
	c.Number = 0
	c.IsTextResult = false
	c.CachedText = ""
	c.Err = ErrorNone
	s.markDirty()
	return nil
}

// SetFormula stores raw formula text (beginning with "="), preserving the
// cell's format. It does not evaluate the formula; call Recalculate.
func (s *Sheet) SetFormula(ref Ref, expr string) error {
	if !s.inBounds(ref) {
		return fmt.Errorf("sheet: %s out of bounds", ref)
	}
	c := s.GetOrCreate(ref)
	s.clearDependencies(c)
	c.Kind = KindFormula
	c.Text = expr
	c.Number = 0
	c.IsTextResult = false
	c.CachedText = ""
	c.Err = ErrorNone
	s.markDirty()
	return nil
}

// Clear resets a cell to empty, retaining its format descriptor and display
// attributes.
func (s *Sheet) Clear(ref Ref) {
	if !s.inBounds(ref) {
		return
	}
	c := s.grid[ref.Row][ref.Col]
	if c == nil {
		return
	}
	s.clearDependencies(c)
	c.Kind = KindEmpty
	c.Number = 0
	c.Text = ""
	c.IsTextResult = false
	c.CachedText = ""
	c.Err = ErrorNone
	s.markDirty()
}

// SetFormat sets a cell's format descriptor.
func (s *Sheet) SetFormat(ref Ref, kind FormatKind, style string) {
	c := s.GetOrCreate(ref)
	c.Format = Format{Kind: kind, Style: style}
}

// SetTextColor sets a cell's foreground color index (-1 = inherit default).
func (s *Sheet) SetTextColor(ref Ref, i int) {
	c := s.GetOrCreate(ref)
	c.TextColor = i
}

// SetBgColor sets a cell's background color index (-1 = inherit default).
func (s *Sheet) SetBgColor(ref Ref, i int) {
	c := s.GetOrCreate(ref)
	c.BgColor = i
}

// CopyCell deep-copies src's value, format and display attributes directly
// onto dst, bypassing the clipboard.
func (s *Sheet) CopyCell(src, dst Ref) error {
	if !s.inBounds(dst) {
		return fmt.Errorf("sheet: %s out of bounds", dst)
	}
	source := s.Get(src)
	cp := source.clone()
	cp.Row, cp.Col = dst.Row, dst.Col
	old := s.grid[dst.Row][dst.Col]
	if old != nil {
		s.clearDependencies(old)
	}
	s.grid[dst.Row][dst.Col] = cp
	s.markDirty()
	return nil
}

// ClipboardStore deep-copies cell into this sheet's single-cell clipboard.
// Each Sheet has its own; a cell stored on one sheet is not visible to
// ClipboardRetrieve on another.
func (s *Sheet) ClipboardStore(ref Ref) {
	s.singleClipboard = s.Get(ref).clone()
}

// ClipboardRetrieve returns the most recently stored single-cell clipboard
// entry, or nil if none has been stored.
func (s *Sheet) ClipboardRetrieve() *Cell {
	return s.singleClipboard
}

// --- selection ---

func (s *Sheet) SelectionStart(ref Ref) {
	s.Selection = Selection{Start: ref, End: ref, Active: true}
}

func (s *Sheet) SelectionExtend(ref Ref) {
	if !s.Selection.Active {
		s.SelectionStart(ref)
		return
	}
	s.Selection.End = ref
}

func (s *Sheet) SelectionClear() {
	s.Selection = Selection{}
}

func (s *Sheet) SelectionContains(ref Ref) bool {
	if !s.Selection.Active {
		return false
	}
	r := normalizeRange(s.Selection.Start, s.Selection.End)
	return ref.Row >= r.Start.Row && ref.Row <= r.End.Row &&
		ref.Col >= r.Start.Col && ref.Col <= r.End.Col
}

// --- sizing ---

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (s *Sheet) SetColWidth(col, w int) {
	if col < 0 || col >= s.cols {
		return
	}
	s.colWidths[col] = clamp(w, MinColumnWidth, MaxColumnWidth)
}

func (s *Sheet) GetColWidth(col int) int {
	if col < 0 || col >= s.cols {
		return DefaultColumnWidth
	}
	return s.colWidths[col]
}

func (s *Sheet) SetRowHeight(row, h int) {
	if row < 0 || row >= s.rows {
		return
	}
	s.rowHeights[row] = clamp(h, MinRowHeight, MaxRowHeight)
}

func (s *Sheet) GetRowHeight(row int) int {
	if row < 0 || row >= s.rows {
		return DefaultRowHeight
	}
	return s.rowHeights[row]
}

func (s *Sheet) ResizeColsInRange(a, b, delta int) {
	if a > b {
		a, b = b, a
	}
	for c := a; c <= b; c++ {
		s.SetColWidth(c, s.GetColWidth(c)+delta)
	}
}

func (s *Sheet) ResizeRowsInRange(a, b, delta int) {
	if a > b {
		a, b = b, a
	}
	for r := a; r <= b; r++ {
		s.SetRowHeight(r, s.GetRowHeight(r)+delta)
	}
}
