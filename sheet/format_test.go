package sheet

import "testing"

func TestFormatGeneralStripsTrailingZeros(t *testing.T) {
	s := NewSheet("sheet1", 2, 2)
	mustSetNumber(t, s, "A1", 3.5)
	mustSetNumber(t, s, "A2", 4.0)
	if got := display(t, s, "A1"); got != "3.5" {
		t.Errorf("A1 = %q, want 3.5", got)
	}
	if got := display(t, s, "A2"); got != "4" {
		t.Errorf("A2 = %q, want 4 (trailing zeros and dot stripped)", got)
	}
}

func TestFormatPercentage(t *testing.T) {
	s := NewSheet("sheet1", 2, 2)
	ref, _ := ParseRef("A1")
	s.SetNumber(ref, 0.4567)
	s.SetFormat(ref, FormatPercentage, "")
	s.GetOrCreate(ref).Precision = 1
	if got := s.Display(ref); got != "45.7%" {
		t.Errorf("A1 = %q, want 45.7%%", got)
	}
}

func TestFormatCurrencyNegative(t *testing.T) {
	s := NewSheet("sheet1", 2, 2)
	ref, _ := ParseRef("A1")
	s.SetNumber(ref, -12.5)
	s.SetFormat(ref, FormatCurrency, "")
	if got := s.Display(ref); got != "-$12.50" {
		t.Errorf("A1 = %q, want -$12.50", got)
	}
}

func TestFormatDateSerial(t *testing.T) {
	s := NewSheet("sheet1", 2, 2)
	ref, _ := ParseRef("A1")
	// 25 serial days after the 1899-12-30 base is 1900-01-24.
	s.SetNumber(ref, 25)
	s.SetFormat(ref, FormatDate, "YYYY-MM-DD")
	if got := s.Display(ref); got != "1900-01-24" {
		t.Errorf("A1 = %q, want 1900-01-24", got)
	}
}

func TestFormatClearedCellRetainsFormat(t *testing.T) {
	s := NewSheet("sheet1", 2, 2)
	ref, _ := ParseRef("A1")
	s.SetNumber(ref, 5)
	s.SetFormat(ref, FormatCurrency, "")
	s.Clear(ref)
	if got := s.Get(ref).Format.Kind; got != FormatCurrency {
		t.Errorf("format kind after clear = %v, want FormatCurrency retained", got)
	}
	if got := s.Display(ref); got != "" {
		t.Errorf("display after clear = %q, want empty", got)
	}
}

func TestParseColorNames(t *testing.T) {
	idx, err := ParseColor("red")
	if err != nil || idx != 1 {
		t.Errorf("ParseColor(red) = %d, %v, want 1, nil", idx, err)
	}
}

func TestParseColorHexNearest(t *testing.T) {
	idx, err := ParseColor("#FF0000")
	if err != nil {
		t.Fatalf("ParseColor error: %v", err)
	}
	if idx != 9 {
		t.Errorf("ParseColor(#FF0000) = %d, want 9 (bright red)", idx)
	}
}

func TestSetTextColorAndBgColor(t *testing.T) {
	s := NewSheet("sheet1", 2, 2)
	ref, _ := ParseRef("A1")
	idx, err := ParseColor("blue")
	if err != nil {
		t.Fatalf("ParseColor error: %v", err)
	}
	s.SetTextColor(ref, idx)
	s.SetBgColor(ref, 0)
	cell := s.Get(ref)
	if cell.TextColor != idx {
		t.Errorf("TextColor = %d, want %d", cell.TextColor, idx)
	}
	if cell.BgColor != 0 {
		t.Errorf("BgColor = %d, want 0", cell.BgColor)
	}
}

func TestSetTextColorDefaultsToInherit(t *testing.T) {
	s := NewSheet("sheet1", 2, 2)
	ref, _ := ParseRef("A1")
	if got := s.GetOrCreate(ref).TextColor; got != -1 {
		t.Errorf("default TextColor = %d, want -1 (inherit)", got)
	}
	s.SetTextColor(ref, 3)
	if got := s.Get(ref).TextColor; got != 3 {
		t.Errorf("TextColor after set = %d, want 3", got)
	}
}
