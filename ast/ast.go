// Package ast defines the expression tree produced by the formula parser
// (spec grammar: comparison → arith → term → factor).
package ast

// Expr is any node in a formula expression tree.
type Expr interface {
	exprNode()
}

// Number is a numeric literal.
type Number struct {
	Value float64
}

// String is a string literal, used as a comparison operand or a function
// argument (e.g. the key in XLOOKUP).
type String struct {
	Value string
}

// CellRef is a single-cell reference such as A1 or AB23.
type CellRef struct {
	Text string // original textual form, e.g. "A1"
}

// RangeRef is a two-cell range reference such as A1:C3.
type RangeRef struct {
	Text string
}

// Binary is a binary operator application: arithmetic (+ - * /) or
// comparison (= <> < <= > >=).
type Binary struct {
	Op    string
	Left  Expr
	Right Expr
}

// Call is a built-in function application, e.g. SUM(A1:A5) or IF(A1>5,"a","b").
type Call struct {
	Name string
	Args []Expr
}

func (*Number) exprNode()   {}
func (*String) exprNode()   {}
func (*CellRef) exprNode()  {}
func (*RangeRef) exprNode() {}
func (*Binary) exprNode()   {}
func (*Call) exprNode()     {}
