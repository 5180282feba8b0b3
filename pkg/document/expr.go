package document

import (
	"fmt"
	"strings"
)

// Expr is a parsed expression from a $(...) form. Expressions are inert
// values: no evaluation is implied anywhere in the core. Each node carries
// the source span of the text it was parsed from.
type Expr interface {
	// Span returns the source span of this expression node.
	Span() Span
	// String renders the expression in canonical surface form, without the
	// surrounding $( ).
	String() string

	exprNode()
}

// IdentExpr is a bare identifier, e.g. $(total).
type IdentExpr struct {
	Name string
	Pos  Span
}

// CallExpr is a call form, e.g. $(sum(a, b)).
type CallExpr struct {
	Name string
	Args []Expr
	Pos  Span
}

// FieldExpr is a field access, e.g. $(order.total).
type FieldExpr struct {
	Inner Expr
	Field string
	Pos   Span
}

// LiteralExpr is a literal argument inside an expression, stored as its
// original lexeme, e.g. the 2 in $(pow(x, 2)).
type LiteralExpr struct {
	Text string
	Pos  Span
}

func (e *IdentExpr) Span() Span   { return e.Pos }
func (e *CallExpr) Span() Span    { return e.Pos }
func (e *FieldExpr) Span() Span   { return e.Pos }
func (e *LiteralExpr) Span() Span { return e.Pos }

func (e *IdentExpr) String() string { return e.Name }

func (e *CallExpr) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", e.Name, strings.Join(args, ", "))
}

func (e *FieldExpr) String() string {
	return e.Inner.String() + "." + e.Field
}

func (e *LiteralExpr) String() string { return e.Text }

func (e *IdentExpr) exprNode()   {}
func (e *CallExpr) exprNode()    {}
func (e *FieldExpr) exprNode()   {}
func (e *LiteralExpr) exprNode() {}

// ExprEqual reports structural equality of two expressions, ignoring source
// spans. Two textually identical expressions parsed from different rows
// compare equal, which is what the ditto optimizer needs.
func ExprEqual(a, b Expr) bool {
	switch x := a.(type) {
	case *IdentExpr:
		y, ok := b.(*IdentExpr)
		return ok && x.Name == y.Name
	case *CallExpr:
		y, ok := b.(*CallExpr)
		if !ok || x.Name != y.Name || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !ExprEqual(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case *FieldExpr:
		y, ok := b.(*FieldExpr)
		return ok && x.Field == y.Field && ExprEqual(x.Inner, y.Inner)
	case *LiteralExpr:
		y, ok := b.(*LiteralExpr)
		return ok && x.Text == y.Text
	default:
		return false
	}
}
