package parser

import (
	"testing"

	"liveledger/ast"
	"liveledger/lexer"
)

func mustParse(t *testing.T, input string) ast.Expr {
	t.Helper()
	p := New(lexer.New(input))
	expr, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", input, err)
	}
	return expr
}

func TestParsePrecedence(t *testing.T) {
	expr := mustParse(t, "1+2*3")
	bin, ok := expr.(*ast.Binary)
	if !ok || bin.Op != "+" {
		t.Fatalf("expected top-level '+', got %#v", expr)
	}
	rhs, ok := bin.Right.(*ast.Binary)
	if !ok || rhs.Op != "*" {
		t.Fatalf("expected '*' nested on the right, got %#v", bin.Right)
	}
}

func TestParseParens(t *testing.T) {
	expr := mustParse(t, "(1+2)*3")
	bin, ok := expr.(*ast.Binary)
	if !ok || bin.Op != "*" {
		t.Fatalf("expected top-level '*', got %#v", expr)
	}
	lhs, ok := bin.Left.(*ast.Binary)
	if !ok || lhs.Op != "+" {
		t.Fatalf("expected '+' nested on the left, got %#v", bin.Left)
	}
}

func TestParseComparison(t *testing.T) {
	cases := []string{"A1=1", "A1<>1", "A1<1", "A1<=1", "A1>1", "A1>=1"}
	for _, in := range cases {
		expr := mustParse(t, in)
		if _, ok := expr.(*ast.Binary); !ok {
			t.Errorf("%q: expected Binary, got %#v", in, expr)
		}
	}
}

func TestParseRefAndRange(t *testing.T) {
	expr := mustParse(t, "A1")
	if ref, ok := expr.(*ast.CellRef); !ok || ref.Text != "A1" {
		t.Fatalf("expected CellRef A1, got %#v", expr)
	}

	expr = mustParse(t, "A1:C3")
	if rng, ok := expr.(*ast.RangeRef); !ok || rng.Text != "A1:C3" {
		t.Fatalf("expected RangeRef A1:C3, got %#v", expr)
	}
}

func TestParseCall(t *testing.T) {
	expr := mustParse(t, `IF(A1>5,"High","Low")`)
	call, ok := expr.(*ast.Call)
	if !ok || call.Name != "IF" {
		t.Fatalf("expected Call IF, got %#v", expr)
	}
	if len(call.Args) != 3 {
		t.Fatalf("expected 3 args, got %d", len(call.Args))
	}
	if _, ok := call.Args[0].(*ast.Binary); !ok {
		t.Errorf("arg 0: expected Binary comparison, got %#v", call.Args[0])
	}
	if s, ok := call.Args[1].(*ast.String); !ok || s.Value != "High" {
		t.Errorf("arg 1: expected String(High), got %#v", call.Args[1])
	}
}

func TestParseNestedRangeCall(t *testing.T) {
	expr := mustParse(t, "SUM(A1:A5)*2")
	bin, ok := expr.(*ast.Binary)
	if !ok || bin.Op != "*" {
		t.Fatalf("expected top-level '*', got %#v", expr)
	}
	call, ok := bin.Left.(*ast.Call)
	if !ok || call.Name != "SUM" {
		t.Fatalf("expected Call SUM on the left, got %#v", bin.Left)
	}
	if _, ok := call.Args[0].(*ast.RangeRef); !ok {
		t.Errorf("expected RangeRef arg, got %#v", call.Args[0])
	}
}

func TestParseUnaryMinus(t *testing.T) {
	expr := mustParse(t, "-A1+3")
	bin, ok := expr.(*ast.Binary)
	if !ok || bin.Op != "+" {
		t.Fatalf("expected top-level '+', got %#v", expr)
	}
	neg, ok := bin.Left.(*ast.Binary)
	if !ok || neg.Op != "-" {
		t.Fatalf("expected unary minus desugared to '-', got %#v", bin.Left)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{"1+", "(1+2", "SUM(A1:A5", "1 2"}
	for _, in := range cases {
		p := New(lexer.New(in))
		if _, err := p.Parse(); err == nil {
			t.Errorf("%q: expected parse error, got none", in)
		}
	}
}
