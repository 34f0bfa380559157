package sheet

import (
	"math"
	"sort"

	"liveledger/ast"
)

// evalCall dispatches a built-in function call. Function names are
// case-insensitive in formula text (the lexer upper-cases identifiers), so
// matching here is a plain switch on the upper-cased name.
func (ev *Evaluator) evalCall(n *ast.Call, deps map[Ref]bool) (Value, error) {
	switch n.Name {
	case "SUM":
		return ev.aggregate(n, deps, func(vs []float64) float64 {
			sum := 0.0
			for _, v := range vs {
				sum += v
			}
			return sum
		})
	case "AVG":
		return ev.aggregate(n, deps, func(vs []float64) float64 {
			if len(vs) == 0 {
				return 0
			}
			sum := 0.0
			for _, v := range vs {
				sum += v
			}
			return sum / float64(len(vs))
		})
	case "MAX":
		return ev.aggregate(n, deps, func(vs []float64) float64 {
			if len(vs) == 0 {
				return 0
			}
			m := vs[0]
			for _, v := range vs[1:] {
				if v > m {
					m = v
				}
			}
			return m
		})
	case "MIN":
		return ev.aggregate(n, deps, func(vs []float64) float64 {
			if len(vs) == 0 {
				return 0
			}
			m := vs[0]
			for _, v := range vs[1:] {
				if v < m {
					m = v
				}
			}
			return m
		})
	case "MEDIAN":
		return ev.aggregate(n, deps, median)
	case "MODE":
		return ev.aggregate(n, deps, mode)
	case "POWER":
		return ev.power(n, deps)
	case "IF":
		return ev.ifFn(n, deps)
	case "XLOOKUP":
		return ev.xlookup(n, deps)
	default:
		return Value{}, fail(ErrorParse)
	}
}

func (ev *Evaluator) aggregate(n *ast.Call, deps map[Ref]bool, fn func([]float64) float64) (Value, error) {
	if len(n.Args) != 1 {
		return Value{}, fail(ErrorParse)
	}
	rangeText, ok := rangeTextOf(n.Args[0])
	if !ok {
		return Value{}, fail(ErrorRef)
	}
	vals, err := ev.rangeValues(rangeText, deps)
	if err != nil {
		return Value{}, err
	}
	return numVal(fn(vals)), nil
}

// rangeTextOf extracts the textual reference/range from a factor node
// without evaluating it, for functions that need the range shape itself
// rather than its collapsed sum (SUM/AVG/.../XLOOKUP's lookup/return args).
func rangeTextOf(e ast.Expr) (string, bool) {
	switch n := e.(type) {
	case *ast.RangeRef:
		return n.Text, true
	case *ast.CellRef:
		return n.Text, true
	default:
		return "", false
	}
}

func median(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vs...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// mode returns the most frequent value, ties broken by first occurrence,
// with equality within FloatEpsilon.
func mode(vs []float64) float64 {
	type bucket struct {
		value float64
		count int
		first int
	}
	var buckets []bucket
	for i, v := range vs {
		found := false
		for bi := range buckets {
			if math.Abs(buckets[bi].value-v) <= FloatEpsilon {
				buckets[bi].count++
				found = true
				break
			}
		}
		if !found {
			buckets = append(buckets, bucket{value: v, count: 1, first: i})
		}
	}
	if len(buckets) == 0 {
		return 0
	}
	best := buckets[0]
	for _, b := range buckets[1:] {
		if b.count > best.count || (b.count == best.count && b.first < best.first) {
			best = b
		}
	}
	return best.value
}

func (ev *Evaluator) power(n *ast.Call, deps map[Ref]bool) (Value, error) {
	if len(n.Args) != 2 {
		return Value{}, fail(ErrorParse)
	}
	base, err := ev.eval(n.Args[0], deps)
	if err != nil {
		return Value{}, err
	}
	exp, err := ev.eval(n.Args[1], deps)
	if err != nil {
		return Value{}, err
	}
	if base.IsText || exp.IsText {
		return Value{}, fail(ErrorValue)
	}
	return numVal(math.Pow(base.Number, exp.Number)), nil
}

// ifFn evaluates c as a truth value (non-zero is true) and returns whichever
// branch is selected. A string-literal branch marks the resulting Value as
// text; the recalculation engine is responsible for caching that onto the
// cell (see Evaluate's caller in recalc.go).
func (ev *Evaluator) ifFn(n *ast.Call, deps map[Ref]bool) (Value, error) {
	if len(n.Args) != 3 {
		return Value{}, fail(ErrorParse)
	}
	cond, err := ev.eval(n.Args[0], deps)
	if err != nil {
		return Value{}, err
	}
	if cond.IsText {
		return Value{}, fail(ErrorValue)
	}
	if cond.Number != 0 {
		return ev.eval(n.Args[1], deps)
	}
	return ev.eval(n.Args[2], deps)
}

// xlookup searches the lookup range for key and returns the parallel
// element from the return range. Direction is vertical when lookup has more
// than one row, horizontal otherwise. mode 0 = exact match, 1 = approximate
// (largest value <= key, numeric keys only).
func (ev *Evaluator) xlookup(n *ast.Call, deps map[Ref]bool) (Value, error) {
	if len(n.Args) != 3 && len(n.Args) != 4 {
		return Value{}, fail(ErrorParse)
	}
	key, err := ev.eval(n.Args[0], deps)
	if err != nil {
		return Value{}, err
	}
	lookupText, ok := rangeTextOf(n.Args[1])
	if !ok {
		return Value{}, fail(ErrorRef)
	}
	returnText, ok := rangeTextOf(n.Args[2])
	if !ok {
		return Value{}, fail(ErrorRef)
	}
	mode := 0
	if len(n.Args) == 4 {
		mv, err := ev.eval(n.Args[3], deps)
		if err != nil {
			return Value{}, err
		}
		if mv.IsText {
			return Value{}, fail(ErrorValue)
		}
		mode = int(mv.Number)
	}

	lookupCells, lRows, lCols, err := ev.rangeCells(lookupText, deps)
	if err != nil {
		return Value{}, err
	}
	returnCells, rRows, rCols, err := ev.rangeCells(returnText, deps)
	if err != nil {
		return Value{}, err
	}

	vertical := lRows > 1
	lookupLen := lCols
	returnLen := rCols
	if vertical {
		lookupLen = lRows
		returnLen = rRows
	}
	if lookupLen != returnLen {
		return Value{}, fail(ErrorRef)
	}

	idx, found := findMatch(key, lookupCells, mode)
	if !found {
		return Value{}, fail(ErrorNA)
	}
	if idx >= len(returnCells) {
		return Value{}, fail(ErrorRef)
	}
	return cellValue(returnCells[idx]), nil
}

func cellValue(c *Cell) Value {
	if s, ok := cellText(c); ok {
		return textVal(s)
	}
	n, _ := cellNumber(c)
	return numVal(n)
}

func findMatch(key Value, cells []*Cell, mode int) (int, bool) {
	if key.IsText {
		for i, c := range cells {
			if s, ok := cellText(c); ok && s == key.Text {
				return i, true
			}
		}
		return 0, false
	}

	if mode == 0 {
		for i, c := range cells {
			if n, ok := cellNumber(c); ok && math.Abs(n-key.Number) <= FloatEpsilon {
				return i, true
			}
		}
		return 0, false
	}

	// approximate: largest numeric value <= key
	bestIdx := -1
	bestVal := math.Inf(-1)
	for i, c := range cells {
		n, ok := cellNumber(c)
		if !ok || n > key.Number+FloatEpsilon {
			continue
		}
		if n > bestVal {
			bestVal = n
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return 0, false
	}
	return bestIdx, true
}
