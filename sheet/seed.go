package sheet

import "fmt"

// Seed builders populate a freshly created sheet with example content, for
// the REPL's -seed flag and for exercising the engine end to end. Adapted
// from the reference implementation's demo_spreadsheet and the teacher's
// populateIntro/populateHeavy/populateMatrix/populateRanges — rewritten for
// this engine's plain arithmetic grammar (the teacher's versions lean on
// Karl-language closures this engine doesn't have).
var seedBuilders = map[string]func(*Sheet){
	"intro":  seedIntro,
	"ranges": seedRanges,
	"chain":  seedChain,
	"matrix": seedMatrix,
}

// SeedNames lists the available seed builder names, for -seed's help text.
func SeedNames() []string {
	names := make([]string, 0, len(seedBuilders))
	for name := range seedBuilders {
		names = append(names, name)
	}
	return names
}

// Seed populates s using the named builder and recalculates it. Unknown
// names are a no-op.
func Seed(name string, s *Sheet) {
	if b, ok := seedBuilders[name]; ok {
		b(s)
		s.Recalculate()
	}
}

func set(s *Sheet, a1 string, v interface{}) {
	ref, err := ParseRef(a1)
	if err != nil {
		panic(err) // seed data is a compile-time constant; a bad ref is a bug
	}
	switch val := v.(type) {
	case float64:
		_ = s.SetNumber(ref, val)
	case int:
		_ = s.SetNumber(ref, float64(val))
	case string:
		if len(val) > 0 && val[0] == '=' {
			_ = s.SetFormula(ref, val)
		} else {
			_ = s.SetText(ref, val)
		}
	}
}

func seedIntro(s *Sheet) {
	set(s, "A1", "Welcome")
	set(s, "A2", 10)
	set(s, "A3", 20)
	set(s, "A4", "=A2+A3")
	set(s, "A5", "=IF(A4>25, \"big\", \"small\")")
}

func seedRanges(s *Sheet) {
	for i, v := range []float64{10, 20, 30, 40, 50} {
		set(s, fmt.Sprintf("A%d", i+1), v)
	}
	set(s, "B1", "=SUM(A1:A5)")
	set(s, "B2", "=AVG(A1:A5)")
	set(s, "B3", "=MAX(A1:A5)")
	set(s, "B4", "=MIN(A1:A5)")
	set(s, "B5", "=MEDIAN(A1:A5)")
}

func seedChain(s *Sheet) {
	set(s, "A1", 1)
	for i := 2; i <= 11; i++ {
		set(s, fmt.Sprintf("A%d", i), fmt.Sprintf("=A%d*2", i-1))
	}
}

func seedMatrix(s *Sheet) {
	for r := 1; r <= 3; r++ {
		for c := 0; c < 3; c++ {
			col := string(rune('A' + c))
			set(s, fmt.Sprintf("%s%d", col, r), r*3+c)
		}
	}
	set(s, "D1", "=SUM(A1:C1)")
	set(s, "D2", "=SUM(A2:C2)")
	set(s, "D3", "=SUM(A3:C3)")
}
