package sheet

import (
	"bytes"
	"testing"
)

func TestCSVRoundTripWithFormulas(t *testing.T) {
	s := NewSheet("sheet1", 5, 5)
	mustSetNumber(t, s, "A1", 5)
	mustSetNumber(t, s, "A2", 10)
	mustSet(t, s, "A3", "=A1+A2")
	s.Recalculate()

	var buf bytes.Buffer
	if err := s.SaveCSV(&buf, true); err != nil {
		t.Fatalf("SaveCSV: %v", err)
	}

	loaded := NewSheet("sheet1", 5, 5)
	if err := loaded.LoadCSV(&buf, true); err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	loaded.Recalculate()

	if got := display(t, loaded, "A3"); got != "15" {
		t.Fatalf("A3 after round trip = %q, want 15", got)
	}
}

func TestCSVFlattenedModeStoresValues(t *testing.T) {
	s := NewSheet("sheet1", 3, 3)
	mustSetNumber(t, s, "A1", 2)
	mustSetNumber(t, s, "A2", 3)
	mustSet(t, s, "A3", "=A1*A2")
	s.Recalculate()

	var buf bytes.Buffer
	if err := s.SaveCSV(&buf, false); err != nil {
		t.Fatalf("SaveCSV: %v", err)
	}
	if bytes.Contains(buf.Bytes(), []byte("=")) {
		t.Fatalf("flattened CSV should not contain formula text, got %q", buf.String())
	}
}

func TestCSVEscaping(t *testing.T) {
	s := NewSheet("sheet1", 2, 2)
	mustSet(t, s, "A1", "hello, world")

	var buf bytes.Buffer
	if err := s.SaveCSV(&buf, false); err != nil {
		t.Fatalf("SaveCSV: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"hello, world"`)) {
		t.Fatalf("expected quoted field, got %q", buf.String())
	}
}

func TestCSVUsedRangeOnly(t *testing.T) {
	s := NewSheet("sheet1", 20, 20)
	mustSetNumber(t, s, "A1", 1)
	mustSetNumber(t, s, "B2", 2)

	var buf bytes.Buffer
	if err := s.SaveCSV(&buf, false); err != nil {
		t.Fatalf("SaveCSV: %v", err)
	}
	lines := bytes.Split(bytes.TrimRight(buf.Bytes(), "\n"), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 rows (used range), got %d: %q", len(lines), buf.String())
	}
}
