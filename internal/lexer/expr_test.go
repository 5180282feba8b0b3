package lexer

import (
	"testing"

	"github.com/hedl-dev/hedl/pkg/document"
)

func TestScanExpressionIdentifier(t *testing.T) {
	e, err := ScanExpression("$(total)", 1, DefaultLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ident, ok := e.(*document.IdentExpr)
	if !ok {
		t.Fatalf("expected identifier, got %T", e)
	}
	if ident.Name != "total" {
		t.Errorf("name wrong. expected=%q, got=%q", "total", ident.Name)
	}
}

func TestScanExpressionCall(t *testing.T) {
	e, err := ScanExpression("$(sum(a, b, 2))", 1, DefaultLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	call, ok := e.(*document.CallExpr)
	if !ok {
		t.Fatalf("expected call, got %T", e)
	}
	if call.Name != "sum" {
		t.Errorf("name wrong. expected=%q, got=%q", "sum", call.Name)
	}
	if len(call.Args) != 3 {
		t.Fatalf("arg count wrong. expected=3, got=%d", len(call.Args))
	}
	if _, ok := call.Args[0].(*document.IdentExpr); !ok {
		t.Errorf("args[0] expected identifier, got %T", call.Args[0])
	}
	if lit, ok := call.Args[2].(*document.LiteralExpr); !ok || lit.Text != "2" {
		t.Errorf("args[2] expected literal 2, got %T", call.Args[2])
	}
}

func TestScanExpressionFieldAccess(t *testing.T) {
	e, err := ScanExpression("$(order.total)", 1, DefaultLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	field, ok := e.(*document.FieldExpr)
	if !ok {
		t.Fatalf("expected field access, got %T", e)
	}
	if field.Field != "total" {
		t.Errorf("field wrong. expected=%q, got=%q", "total", field.Field)
	}
	inner, ok := field.Inner.(*document.IdentExpr)
	if !ok || inner.Name != "order" {
		t.Errorf("inner wrong: %v", field.Inner)
	}
}

func TestScanExpressionNestedCall(t *testing.T) {
	e, err := ScanExpression("$(max(len(items), 10))", 1, DefaultLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	call := e.(*document.CallExpr)
	if len(call.Args) != 2 {
		t.Fatalf("arg count wrong. expected=2, got=%d", len(call.Args))
	}
	if inner, ok := call.Args[0].(*document.CallExpr); !ok || inner.Name != "len" {
		t.Errorf("nested call wrong: %T", call.Args[0])
	}
}

func TestScanExpressionRoundTripString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"$(total)", "total"},
		{"$(sum(a, b))", "sum(a, b)"},
		{"$(order.total)", "order.total"},
		{"$(f())", "f()"},
	}
	for i, tt := range tests {
		e, err := ScanExpression(tt.input, 1, DefaultLimits())
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}
		if got := e.String(); got != tt.want {
			t.Errorf("tests[%d] - expected=%q, got=%q", i, tt.want, got)
		}
	}
}

func TestScanExpressionSpans(t *testing.T) {
	e, err := ScanExpression("$(order.total)", 3, DefaultLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	span := e.Span()
	if span.Start.Line != 3 {
		t.Errorf("span line wrong. expected=3, got=%d", span.Start.Line)
	}
}

func TestScanExpressionErrors(t *testing.T) {
	invalid := []string{"$(", "$()", "$(f(a)", "$(f(a,))", "$(.x)", "$(a..b)", "$(a b)"}
	for i, input := range invalid {
		if _, err := ScanExpression(input, 1, DefaultLimits()); err == nil {
			t.Errorf("invalid[%d] - expected error for %q", i, input)
		}
	}
}

func TestScanExpressionDepthLimit(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxParenDepth = 2
	if _, err := ScanExpression("$(a(b(c(d))))", 1, limits); err == nil {
		t.Fatal("expected depth error")
	}
}
