package sheet

import (
	"math"

	"liveledger/ast"
	"liveledger/lexer"
	"liveledger/parser"
)

// Value is the evaluator's result sum type: either a number or text, never
// both. The recalculation engine is responsible for placing it onto a cell;
// the evaluator never reaches back into its caller's cell (spec §9's note
// on the IF/cached-text coupling).
type Value struct {
	IsText bool
	Number float64
	Text   string
}

func numVal(n float64) Value  { return Value{Number: n} }
func textVal(s string) Value  { return Value{IsText: true, Text: s} }
func boolVal(b bool) Value {
	if b {
		return numVal(1)
	}
	return numVal(0)
}

// evalError is returned internally to short-circuit evaluation; it carries
// the ErrorKind that should be attached to the cell under evaluation.
type evalError struct {
	kind ErrorKind
}

func (e *evalError) Error() string { return e.kind.String() }

func fail(kind ErrorKind) error { return &evalError{kind: kind} }

// Evaluator drives formula evaluation against a Sheet. cur tracks the cell
// currently being evaluated, mirroring the reference implementation's
// process-wide "currently evaluating cell" but scoped to one Evaluator
// instance rather than a global.
type Evaluator struct {
	sheet *Sheet
	cur   Ref
}

func NewEvaluator(s *Sheet) *Evaluator {
	return &Evaluator{sheet: s}
}

// Evaluate parses and evaluates formula text (without its leading '='),
// returning the resulting Value and the set of cell references it read
// (for dependency tracking), or an ErrorKind on failure.
func (ev *Evaluator) Evaluate(at Ref, exprText string) (Value, []Ref, ErrorKind) {
	ev.cur = at
	p := parser.New(lexer.New(exprText))
	tree, err := p.Parse()
	if err != nil {
		return Value{}, nil, ErrorParse
	}
	deps := map[Ref]bool{}
	v, err := ev.eval(tree, deps)
	if err != nil {
		if ee, ok := err.(*evalError); ok {
			return Value{}, refsOf(deps), ee.kind
		}
		return Value{}, refsOf(deps), ErrorValue
	}
	return v, refsOf(deps), ErrorNone
}

func refsOf(m map[Ref]bool) []Ref {
	out := make([]Ref, 0, len(m))
	for r := range m {
		out = append(out, r)
	}
	return out
}

func (ev *Evaluator) eval(e ast.Expr, deps map[Ref]bool) (Value, error) {
	switch n := e.(type) {
	case *ast.Number:
		return numVal(n.Value), nil
	case *ast.String:
		return textVal(n.Value), nil
	case *ast.CellRef:
		ref, err := ParseRef(n.Text)
		if err != nil {
			return Value{}, fail(ErrorRef)
		}
		deps[ref] = true
		return ev.lookupRef(ref)
	case *ast.RangeRef:
		// A bare range used as a factor collapses to SUM of its contents.
		vals, err := ev.rangeValues(n.Text, deps)
		if err != nil {
			return Value{}, err
		}
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		return numVal(sum), nil
	case *ast.Binary:
		return ev.evalBinary(n, deps)
	case *ast.Call:
		return ev.evalCall(n, deps)
	default:
		return Value{}, fail(ErrorParse)
	}
}

func (ev *Evaluator) lookupRef(ref Ref) (Value, error) {
	c := ev.sheet.Get(ref)
	switch c.Kind {
	case KindEmpty:
		return numVal(0), nil
	case KindNumber:
		return numVal(c.Number), nil
	case KindText:
		return textVal(c.Text), nil
	case KindFormula:
		if c.Err != ErrorNone {
			return Value{}, fail(c.Err)
		}
		if c.IsTextResult {
			return textVal(c.CachedText), nil
		}
		return numVal(c.Number), nil
	default:
		return numVal(0), nil
	}
}

// isComparisonOp reports whether op is one of the comparison operators.
func isComparisonOp(op string) bool {
	switch op {
	case "=", "<>", "<", "<=", ">", ">=":
		return true
	}
	return false
}

func (ev *Evaluator) evalBinary(n *ast.Binary, deps map[Ref]bool) (Value, error) {
	if isComparisonOp(n.Op) {
		return ev.evalComparison(n, deps)
	}

	l, err := ev.eval(n.Left, deps)
	if err != nil {
		return Value{}, err
	}
	r, err := ev.eval(n.Right, deps)
	if err != nil {
		return Value{}, err
	}
	if l.IsText || r.IsText {
		return Value{}, fail(ErrorValue)
	}
	switch n.Op {
	case "+":
		return numVal(l.Number + r.Number), nil
	case "-":
		return numVal(l.Number - r.Number), nil
	case "*":
		return numVal(l.Number * r.Number), nil
	case "/":
		if r.Number == 0 {
			return Value{}, fail(ErrorDivZero)
		}
		return numVal(l.Number / r.Number), nil
	default:
		return Value{}, fail(ErrorParse)
	}
}

// evalComparison implements spec §4.2's string-vs-number overload: the
// evaluator peeks at the *syntactic* shape "<operand> <op> <string literal>"
// (in either operand order, mirroring the original's is_right_string /
// is_left_string checks) and only then compares lexicographically, using
// the other operand's text value ("" when it is not text). A comparison with
// no string literal operand — including a bare text cell compared against a
// number — falls through to numeric comparison, where a text operand is
// ERROR_VALUE per spec §4.2(d).
func (ev *Evaluator) evalComparison(n *ast.Binary, deps map[Ref]bool) (Value, error) {
	if lit, other, litOnLeft := stringLiteralOperand(n); lit != nil {
		otherText, err := ev.evalComparisonText(other, deps)
		if err != nil {
			return Value{}, err
		}
		if litOnLeft {
			return boolVal(compareStrings(lit.Value, otherText, n.Op)), nil
		}
		return boolVal(compareStrings(otherText, lit.Value, n.Op)), nil
	}

	l, err := ev.eval(n.Left, deps)
	if err != nil {
		return Value{}, err
	}
	r, err := ev.eval(n.Right, deps)
	if err != nil {
		return Value{}, err
	}

	if l.IsText || r.IsText {
		return Value{}, fail(ErrorValue)
	}
	return boolVal(compareNumbers(l.Number, r.Number, n.Op)), nil
}

// stringLiteralOperand reports whether one side of a comparison is a raw
// string literal, returning that literal, the other operand, and whether
// the literal was on the left.
func stringLiteralOperand(n *ast.Binary) (*ast.String, ast.Expr, bool) {
	if s, ok := n.Left.(*ast.String); ok {
		return s, n.Right, true
	}
	if s, ok := n.Right.(*ast.String); ok {
		return s, n.Left, false
	}
	return nil, nil, false
}

// evalComparisonText evaluates the non-literal side of a string comparison,
// yielding the referenced cell's text (empty string if the cell is empty or
// numeric, per spec §4.2) rather than failing on a non-text value.
func (ev *Evaluator) evalComparisonText(e ast.Expr, deps map[Ref]bool) (string, error) {
	v, err := ev.eval(e, deps)
	if err != nil {
		return "", err
	}
	if v.IsText {
		return v.Text, nil
	}
	return "", nil
}

func compareStrings(a, b, op string) bool {
	switch op {
	case "=":
		return a == b
	case "<>":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	return false
}

func compareNumbers(a, b float64, op string) bool {
	switch op {
	case "=":
		return math.Abs(a-b) <= FloatEpsilon
	case "<>":
		return math.Abs(a-b) > FloatEpsilon
	case "<":
		return a < b
	case "<=":
		return a <= b+FloatEpsilon
	case ">":
		return a > b
	case ">=":
		return a >= b-FloatEpsilon
	}
	return false
}

// rangeValues collects the numeric contributions of a range: empty cells,
// text cells and text-valued formulas are skipped, and (per the pinned aggregate
// policy) a formula cell currently in error is skipped rather than
// propagating. Capped at MaxRangeValues.
func (ev *Evaluator) rangeValues(rangeText string, deps map[Ref]bool) ([]float64, error) {
	rg, err := ParseRange(rangeText)
	if err != nil {
		single, perr := ParseRef(rangeText)
		if perr != nil {
			return nil, fail(ErrorRef)
		}
		rg = Range{Start: single, End: single}
	}
	var out []float64
	for r := rg.Start.Row; r <= rg.End.Row; r++ {
		for c := rg.Start.Col; c <= rg.End.Col; c++ {
			if len(out) >= MaxRangeValues {
				return out, nil
			}
			ref := Ref{Row: r, Col: c}
			deps[ref] = true
			cell := ev.sheet.Get(ref)
			switch cell.Kind {
			case KindNumber:
				out = append(out, cell.Number)
			case KindEmpty, KindText:
				// skipped silently
			case KindFormula:
				if cell.Err != ErrorNone {
					continue
				}
				if !cell.IsTextResult {
					out = append(out, cell.Number)
				}
			}
		}
	}
	return out, nil
}

// rangeCells returns every cell of the range in row-major order (for
// XLOOKUP's lookup and return arrays, which may hold text) together with the
// range's row and column counts. Capped at MaxRangeValues cells.
func (ev *Evaluator) rangeCells(rangeText string, deps map[Ref]bool) ([]*Cell, int, int, error) {
	rg, err := ParseRange(rangeText)
	if err != nil {
		single, perr := ParseRef(rangeText)
		if perr != nil {
			return nil, 0, 0, fail(ErrorRef)
		}
		rg = Range{Start: single, End: single}
	}
	rows := rg.End.Row - rg.Start.Row + 1
	cols := rg.End.Col - rg.Start.Col + 1
	var out []*Cell
	for r := rg.Start.Row; r <= rg.End.Row; r++ {
		for c := rg.Start.Col; c <= rg.End.Col; c++ {
			if len(out) >= MaxRangeValues {
				return out, rows, cols, nil
			}
			ref := Ref{Row: r, Col: c}
			deps[ref] = true
			out = append(out, ev.sheet.Get(ref))
		}
	}
	return out, rows, cols, nil
}

func cellNumber(c *Cell) (float64, bool) {
	switch c.Kind {
	case KindNumber:
		return c.Number, true
	case KindFormula:
		if c.Err == ErrorNone && !c.IsTextResult {
			return c.Number, true
		}
	}
	return 0, false
}

func cellText(c *Cell) (string, bool) {
	switch c.Kind {
	case KindText:
		return c.Text, true
	case KindFormula:
		if c.Err == ErrorNone && c.IsTextResult {
			return c.CachedText, true
		}
	}
	return "", false
}

