package sheet

import "testing"

func TestInsertDeleteRowRestampsCells(t *testing.T) {
	s := NewSheet("sheet1", 5, 5)
	mustSetNumber(t, s, "A3", 42)

	if err := s.InsertRow(0); err != nil {
		t.Fatalf("InsertRow: %v", err)
	}
	cell := s.Get(Ref{Row: 3, Col: 0})
	if cell.Kind != KindNumber || cell.Number != 42 {
		t.Fatalf("expected 42 shifted to A4, got %+v", cell)
	}
	if cell.Row != 3 || cell.Col != 0 {
		t.Fatalf("cell not re-stamped: %+v", cell)
	}

	if err := s.DeleteRow(3); err != nil {
		t.Fatalf("DeleteRow: %v", err)
	}
	if s.Get(Ref{Row: 3, Col: 0}).Kind != KindEmpty {
		t.Fatalf("expected row 3 empty after delete")
	}
}

func TestInsertDeleteColumn(t *testing.T) {
	s := NewSheet("sheet1", 3, 5)
	mustSetNumber(t, s, "C1", 7)

	if err := s.InsertColumn(0); err != nil {
		t.Fatalf("InsertColumn: %v", err)
	}
	if got := s.Get(Ref{Row: 0, Col: 3}); got.Kind != KindNumber || got.Number != 7 {
		t.Fatalf("expected 7 shifted to D1, got %+v", got)
	}

	if err := s.DeleteColumn(3); err != nil {
		t.Fatalf("DeleteColumn: %v", err)
	}
	if s.Get(Ref{Row: 0, Col: 3}).Kind != KindEmpty {
		t.Fatalf("expected column 3 empty after delete")
	}
}

func TestRangeCopyPaste(t *testing.T) {
	s := NewSheet("sheet1", 10, 10)
	mustSetNumber(t, s, "A1", 1)
	mustSetNumber(t, s, "A2", 2)
	mustSet(t, s, "A3", "=A1+A2")
	s.Recalculate()

	s.SelectionStart(Ref{Row: 0, Col: 0})
	s.SelectionExtend(Ref{Row: 2, Col: 0})
	if err := s.RangeCopy(); err != nil {
		t.Fatalf("RangeCopy: %v", err)
	}
	if err := s.RangePaste(Ref{Row: 0, Col: 2}); err != nil {
		t.Fatalf("RangePaste: %v", err)
	}

	if got := display(t, s, "C3"); got != "3" {
		t.Fatalf("C3 = %q, want 3 (pasted formula re-evaluated in place)", got)
	}
	if s.Get(Ref{Row: 2, Col: 2}).Text != "=A1+A2" {
		t.Fatalf("pasted formula text should be copied verbatim, not rewritten")
	}
}

func TestRangePasteClipsAtBounds(t *testing.T) {
	s := NewSheet("sheet1", 3, 3)
	mustSetNumber(t, s, "A1", 1)
	mustSetNumber(t, s, "A2", 2)
	mustSetNumber(t, s, "A3", 3)

	s.SelectionStart(Ref{Row: 0, Col: 0})
	s.SelectionExtend(Ref{Row: 2, Col: 0})
	if err := s.RangeCopy(); err != nil {
		t.Fatalf("RangeCopy: %v", err)
	}
	if err := s.RangePaste(Ref{Row: 2, Col: 0}); err != nil {
		t.Fatalf("RangePaste: %v", err)
	}
	// Only the first row of the block fits; the rest is clipped silently.
	if got := s.Get(Ref{Row: 2, Col: 0}).Number; got != 1 {
		t.Fatalf("A3 = %v, want 1", got)
	}
}

func TestColWidthClampedToBounds(t *testing.T) {
	s := NewSheet("sheet1", 3, 3)
	s.SetColWidth(0, 1000)
	if got := s.GetColWidth(0); got != MaxColumnWidth {
		t.Fatalf("GetColWidth = %d, want clamped to %d", got, MaxColumnWidth)
	}
	s.SetColWidth(0, -5)
	if got := s.GetColWidth(0); got != MinColumnWidth {
		t.Fatalf("GetColWidth = %d, want clamped to %d", got, MinColumnWidth)
	}
}
