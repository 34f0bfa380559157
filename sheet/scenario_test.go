package sheet

import (
	"strconv"
	"testing"
)

func mustSet(t *testing.T, s *Sheet, a1, v string) {
	t.Helper()
	ref, err := ParseRef(a1)
	if err != nil {
		t.Fatalf("ParseRef(%q): %v", a1, err)
	}
	if len(v) > 0 && v[0] == '=' {
		if err := s.SetFormula(ref, v); err != nil {
			t.Fatalf("SetFormula(%q, %q): %v", a1, v, err)
		}
		return
	}
	if err := s.SetText(ref, v); err != nil {
		t.Fatalf("SetText(%q, %q): %v", a1, v, err)
	}
}

func mustSetNumber(t *testing.T, s *Sheet, a1 string, v float64) {
	t.Helper()
	ref, err := ParseRef(a1)
	if err != nil {
		t.Fatalf("ParseRef(%q): %v", a1, err)
	}
	if err := s.SetNumber(ref, v); err != nil {
		t.Fatalf("SetNumber(%q, %v): %v", a1, v, err)
	}
}

func display(t *testing.T, s *Sheet, a1 string) string {
	t.Helper()
	ref, err := ParseRef(a1)
	if err != nil {
		t.Fatalf("ParseRef(%q): %v", a1, err)
	}
	return s.Display(ref)
}

func TestScenarioLinearChainPropagation(t *testing.T) {
	s := NewSheet("sheet1", 20, 10)
	mustSetNumber(t, s, "A1", 1)
	for i := 2; i <= 11; i++ {
		mustSet(t, s, refName(i), "=A"+strconv.Itoa(i-1)+"*2")
	}
	s.Recalculate()
	if got := display(t, s, "A11"); got != "1024" {
		t.Fatalf("A11 = %q, want 1024", got)
	}

	mustSetNumber(t, s, "A1", 5)
	s.Recalculate()
	if got := display(t, s, "A11"); got != "5120" {
		t.Fatalf("A11 = %q, want 5120", got)
	}
}

func TestScenarioRangeAggregation(t *testing.T) {
	s := NewSheet("sheet1", 10, 10)
	for i, v := range []float64{10, 20, 30, 40, 50} {
		mustSetNumber(t, s, refName(i+1), v)
	}
	mustSet(t, s, "B1", "=SUM(A1:A5)")
	mustSet(t, s, "B2", "=AVG(A1:A5)")
	mustSet(t, s, "B3", "=MAX(A1:A5)")
	mustSet(t, s, "B4", "=MIN(A1:A5)")
	s.Recalculate()

	want := map[string]string{"B1": "150", "B2": "30", "B3": "50", "B4": "10"}
	for ref, w := range want {
		if got := display(t, s, ref); got != w {
			t.Errorf("%s = %q, want %q", ref, got, w)
		}
	}
}

func TestScenarioDivisionByZero(t *testing.T) {
	s := NewSheet("sheet1", 5, 5)
	mustSet(t, s, "A1", "=1/0")
	s.Recalculate()
	if got := display(t, s, "A1"); got != "#DIV/0!" {
		t.Fatalf("A1 = %q, want #DIV/0!", got)
	}
}

func TestScenarioStringIf(t *testing.T) {
	s := NewSheet("sheet1", 5, 5)
	mustSetNumber(t, s, "A1", 10)
	mustSet(t, s, "B1", `=IF(A1>5, "High", "Low")`)
	s.Recalculate()
	if got := display(t, s, "B1"); got != "High" {
		t.Fatalf("B1 = %q, want High", got)
	}
}

func TestScenarioXLookupTextKey(t *testing.T) {
	s := NewSheet("sheet1", 5, 5)
	mustSet(t, s, "A1", "Apple")
	mustSet(t, s, "A2", "Orange")
	mustSet(t, s, "A3", "Banana")
	mustSetNumber(t, s, "B1", 0.5)
	mustSetNumber(t, s, "B2", 0.75)
	mustSetNumber(t, s, "B3", 0.3)
	mustSet(t, s, "C1", `=XLOOKUP("Orange", A1:A3, B1:B3, 0)`)
	s.Recalculate()
	if got := display(t, s, "C1"); got != "0.75" {
		t.Fatalf("C1 = %q, want 0.75", got)
	}

	mustSet(t, s, "C1", `=XLOOKUP("Grape", A1:A3, B1:B3, 0)`)
	s.Recalculate()
	if got := display(t, s, "C1"); got != "#N/A!" {
		t.Fatalf("C1 = %q, want #N/A!", got)
	}
}

func TestScenarioInsertRowDoesNotRewriteReferences(t *testing.T) {
	s := NewSheet("sheet1", 10, 10)
	mustSetNumber(t, s, "A1", 1)
	mustSetNumber(t, s, "A2", 2)
	mustSet(t, s, "B1", "=A2")
	s.Recalculate()
	if got := display(t, s, "B1"); got != "2" {
		t.Fatalf("B1 before insert = %q, want 2", got)
	}

	if err := s.InsertRow(1); err != nil {
		t.Fatalf("InsertRow: %v", err)
	}
	s.Recalculate()
	if got := display(t, s, "A3"); got != "2" {
		t.Fatalf("A3 after insert = %q, want 2 (shifted)", got)
	}
	if got := display(t, s, "B1"); got != "0" {
		t.Fatalf("B1 after insert = %q, want 0 (now reads empty A2)", got)
	}
}

func refName(row int) string {
	return "A" + strconv.Itoa(row)
}
