package sheet

import "fmt"

// freeCell releases a cell that is being dropped off the grid (by a
// structural edit). It only needs to unlink the cell's outgoing dependency
// edges — Recalculate rebuilds the whole graph from current formula text on
// its next call, so stale Dependents entries elsewhere are harmless until
// then.
func (s *Sheet) freeCell(c *Cell) {
	s.clearDependencies(c)
}

// InsertRow shifts rows [r, rows-1] down by one; the last row's contents
// are freed. Row heights shift in parallel; row r becomes empty with the
// default height. Every moved cell is re-stamped with its new row.
func (s *Sheet) InsertRow(r int) error {
	if r < 0 || r >= s.rows {
		return fmt.Errorf("sheet: row %d out of bounds", r)
	}
	for _, c := range s.grid[s.rows-1] {
		if c != nil {
			s.freeCell(c)
		}
	}
	for row := s.rows - 1; row > r; row-- {
		s.grid[row] = s.grid[row-1]
		for _, c := range s.grid[row] {
			if c != nil {
				c.Row = row
			}
		}
		s.rowHeights[row] = s.rowHeights[row-1]
	}
	s.grid[r] = make([]*Cell, s.cols)
	s.rowHeights[r] = DefaultRowHeight
	s.markDirty()
	return nil
}

// DeleteRow frees row r, shifts rows [r+1, rows-1] up by one, and leaves
// the last row empty with the default height.
func (s *Sheet) DeleteRow(r int) error {
	if r < 0 || r >= s.rows {
		return fmt.Errorf("sheet: row %d out of bounds", r)
	}
	for _, c := range s.grid[r] {
		if c != nil {
			s.freeCell(c)
		}
	}
	for row := r; row < s.rows-1; row++ {
		s.grid[row] = s.grid[row+1]
		for _, c := range s.grid[row] {
			if c != nil {
				c.Row = row
			}
		}
		s.rowHeights[row] = s.rowHeights[row+1]
	}
	s.grid[s.rows-1] = make([]*Cell, s.cols)
	s.rowHeights[s.rows-1] = DefaultRowHeight
	s.markDirty()
	return nil
}

// InsertColumn is InsertRow's column-axis twin.
func (s *Sheet) InsertColumn(col int) error {
	if col < 0 || col >= s.cols {
		return fmt.Errorf("sheet: column %d out of bounds", col)
	}
	for row := 0; row < s.rows; row++ {
		rowSlice := s.grid[row]
		if last := rowSlice[s.cols-1]; last != nil {
			s.freeCell(last)
		}
		for c := s.cols - 1; c > col; c-- {
			rowSlice[c] = rowSlice[c-1]
			if rowSlice[c] != nil {
				rowSlice[c].Col = c
			}
		}
		rowSlice[col] = nil
	}
	for c := s.cols - 1; c > col; c-- {
		s.colWidths[c] = s.colWidths[c-1]
	}
	s.colWidths[col] = DefaultColumnWidth
	s.markDirty()
	return nil
}

// DeleteColumn is DeleteRow's column-axis twin.
func (s *Sheet) DeleteColumn(col int) error {
	if col < 0 || col >= s.cols {
		return fmt.Errorf("sheet: column %d out of bounds", col)
	}
	for row := 0; row < s.rows; row++ {
		rowSlice := s.grid[row]
		if cur := rowSlice[col]; cur != nil {
			s.freeCell(cur)
		}
		for c := col; c < s.cols-1; c++ {
			rowSlice[c] = rowSlice[c+1]
			if rowSlice[c] != nil {
				rowSlice[c].Col = c
			}
		}
		rowSlice[s.cols-1] = nil
	}
	for c := col; c < s.cols-1; c++ {
		s.colWidths[c] = s.colWidths[c+1]
	}
	s.colWidths[s.cols-1] = DefaultColumnWidth
	s.markDirty()
	return nil
}

// RangeCopy captures a deep copy of the active selection into the range
// clipboard. Formula cells are copied by their original expression text;
// resetFormulaCache strips the (untrustworthy, pre-paste) cached value.
func (s *Sheet) RangeCopy() error {
	if !s.Selection.Active {
		return fmt.Errorf("sheet: no active selection to copy")
	}
	rg := normalizeRange(s.Selection.Start, s.Selection.End)
	rows := rg.End.Row - rg.Start.Row + 1
	cols := rg.End.Col - rg.Start.Col + 1

	block := make([][]*Cell, rows)
	for i := 0; i < rows; i++ {
		block[i] = make([]*Cell, cols)
		for j := 0; j < cols; j++ {
			src := s.grid[rg.Start.Row+i][rg.Start.Col+j]
			if src == nil {
				continue
			}
			cp := src.clone()
			resetFormulaCache(cp)
			block[i][j] = cp
		}
	}
	s.Clipboard = Clipboard{Cells: block, Rows: rows, Cols: cols, Active: true}
	return nil
}

// RangePaste writes the clipboard block with its top-left at `at`, clipping
// silently at sheet bounds, and triggers a recalculation so any pasted
// formula gets a fresh value.
func (s *Sheet) RangePaste(at Ref) error {
	if !s.Clipboard.Active {
		return fmt.Errorf("sheet: clipboard is empty")
	}
	for i := 0; i < s.Clipboard.Rows; i++ {
		for j := 0; j < s.Clipboard.Cols; j++ {
			dst := Ref{Row: at.Row + i, Col: at.Col + j}
			if !s.inBounds(dst) {
				continue
			}
			src := s.Clipboard.Cells[i][j]
			if src == nil {
				s.Clear(dst)
				continue
			}
			cp := src.clone()
			cp.Row, cp.Col = dst.Row, dst.Col
			if old := s.grid[dst.Row][dst.Col]; old != nil {
				s.clearDependencies(old)
			}
			s.grid[dst.Row][dst.Col] = cp
		}
	}
	s.markDirty()
	s.Recalculate()
	return nil
}

func resetFormulaCache(c *Cell) {
	if c.Kind != KindFormula {
		return
	}
	c.Number = 0
	c.CachedText = ""
	c.IsTextResult = false
	c.Err = ErrorNone
}
