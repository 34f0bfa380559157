package sheet

import (
	"sort"
	"strings"

	"liveledger/ast"
	"liveledger/lexer"
	"liveledger/parser"
)

// clearDependencies removes c from every cell it currently depends on's
// Dependents list, and clears c.Dependencies. Called before a cell's
// content changes so stale edges don't linger.
func (s *Sheet) clearDependencies(c *Cell) {
	self := Ref{Row: c.Row, Col: c.Col}
	for _, dep := range c.Dependencies {
		target := s.grid[dep.Row][dep.Col]
		if target == nil {
			continue
		}
		target.Dependents = removeRef(target.Dependents, self)
	}
	c.Dependencies = nil
}

// setDependencies replaces c's dependency edges with refs, updating the
// Dependents list of every referenced cell (allocating it if necessary, so
// a later write to that address finds its dependents already linked).
func (s *Sheet) setDependencies(c *Cell, refs []Ref) {
	s.clearDependencies(c)
	self := Ref{Row: c.Row, Col: c.Col}
	c.Dependencies = refs
	for _, dep := range refs {
		if !s.inBounds(dep) {
			continue
		}
		target := s.GetOrCreate(dep)
		if !containsRef(target.Dependents, self) {
			target.Dependents = append(target.Dependents, self)
		}
	}
}

func removeRef(list []Ref, ref Ref) []Ref {
	out := list[:0]
	for _, r := range list {
		if r != ref {
			out = append(out, r)
		}
	}
	return out
}

func containsRef(list []Ref, ref Ref) bool {
	for _, r := range list {
		if r == ref {
			return true
		}
	}
	return false
}

// CollectAffected returns the transitive closure of ref's dependents (cells
// whose formulas read ref, directly or indirectly), guarding against cycles
// with a visited set. Used by external callers (e.g. a push transport) that
// want to rebroadcast only what changed after a targeted edit.
func (s *Sheet) CollectAffected(ref Ref) []Ref {
	visited := map[Ref]bool{}
	var walk func(Ref)
	var out []Ref
	walk = func(r Ref) {
		cell := s.grid[r.Row][r.Col]
		if cell == nil {
			return
		}
		for _, dep := range cell.Dependents {
			if visited[dep] {
				continue
			}
			visited[dep] = true
			out = append(out, dep)
			walk(dep)
		}
	}
	walk(ref)
	return out
}

func stripFormula(text string) string {
	return strings.TrimPrefix(text, "=")
}

// formulaRefs statically extracts the cell/range references a formula's
// text mentions, without evaluating it — used to build the dependency
// graph before any cell in it has been (re)computed. Ranges expand to their
// individual cells, bounded by MaxRangeValues, matching the evaluator's own
// cap.
func formulaRefs(exprText string) ([]Ref, error) {
	p := parser.New(lexer.New(stripFormula(exprText)))
	tree, err := p.Parse()
	if err != nil {
		return nil, err
	}
	seen := map[Ref]bool{}
	walkRefs(tree, seen)
	out := make([]Ref, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	return out, nil
}

func walkRefs(e ast.Expr, seen map[Ref]bool) {
	switch n := e.(type) {
	case *ast.CellRef:
		if ref, err := ParseRef(n.Text); err == nil {
			seen[ref] = true
		}
	case *ast.RangeRef:
		rg, err := ParseRange(n.Text)
		if err != nil {
			return
		}
		count := 0
		for r := rg.Start.Row; r <= rg.End.Row; r++ {
			for c := rg.Start.Col; c <= rg.End.Col; c++ {
				if count >= MaxRangeValues {
					return
				}
				seen[Ref{Row: r, Col: c}] = true
				count++
			}
		}
	case *ast.Binary:
		walkRefs(n.Left, seen)
		walkRefs(n.Right, seen)
	case *ast.Call:
		for _, a := range n.Args {
			walkRefs(a, seen)
		}
	}
}

// Recalculate re-evaluates every formula cell in dependency order (a
// topological sort over the graph derived from each formula's static
// references, per the design recommended in spec.md's notes on the unused
// calc_order slot). Cells in a dependency cycle all receive ErrorRef. A
// no-op when no mutation has happened since the last call.
func (s *Sheet) Recalculate() {
	if !s.needsRecalc {
		return
	}

	type node struct {
		ref  Ref
		refs []Ref // static references, parse errors yield no edges
		err  error
	}
	var formulaRefsByCell []node
	isFormula := map[Ref]bool{}

	for r := 0; r < s.rows; r++ {
		for c := 0; c < s.cols; c++ {
			cell := s.grid[r][c]
			if cell == nil || cell.Kind != KindFormula {
				continue
			}
			self := Ref{Row: r, Col: c}
			isFormula[self] = true
			refs, err := formulaRefs(cell.Text)
			formulaRefsByCell = append(formulaRefsByCell, node{ref: self, refs: refs, err: err})
		}
	}

	indegree := map[Ref]int{}
	adj := map[Ref][]Ref{} // Y -> cells depending on Y
	for _, n := range formulaRefsByCell {
		indegree[n.ref] = 0
	}
	for _, n := range formulaRefsByCell {
		for _, dep := range n.refs {
			if isFormula[dep] {
				adj[dep] = append(adj[dep], n.ref)
				indegree[n.ref]++
			}
		}
	}

	var queue []Ref
	for ref, d := range indegree {
		if d == 0 {
			queue = append(queue, ref)
		}
	}
	sort.Slice(queue, func(i, j int) bool { return lessRef(queue[i], queue[j]) })

	var order []Ref
	visited := map[Ref]bool{}
	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]
		if visited[ref] {
			continue
		}
		visited[ref] = true
		order = append(order, ref)

		var next []Ref
		for _, dependent := range adj[ref] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				next = append(next, dependent)
			}
		}
		sort.Slice(next, func(i, j int) bool { return lessRef(next[i], next[j]) })
		queue = append(queue, next...)
	}

	for ref, d := range indegree {
		if d > 0 && !visited[ref] {
			s.grid[ref.Row][ref.Col].Err = ErrorRef
		}
	}

	// formula cells whose text itself failed to parse get ErrorParse
	// regardless of graph position.
	parseFailed := map[Ref]bool{}
	for _, n := range formulaRefsByCell {
		if n.err != nil {
			parseFailed[n.ref] = true
		}
	}

	ev := NewEvaluator(s)
	for _, ref := range order {
		cell := s.grid[ref.Row][ref.Col]
		if parseFailed[ref] {
			cell.Err = ErrorParse
			continue
		}
		val, refs, errKind := ev.Evaluate(ref, stripFormula(cell.Text))
		s.setDependencies(cell, refs)
		if errKind != ErrorNone {
			cell.Err = errKind
			continue
		}
		cell.Err = ErrorNone
		if val.IsText {
			cell.IsTextResult = true
			cell.CachedText = val.Text
			cell.Number = 0
		} else {
			cell.IsTextResult = false
			cell.Number = val.Number
			cell.CachedText = ""
		}
	}

	s.needsRecalc = false
}

func lessRef(a, b Ref) bool {
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Col < b.Col
}
