package lexer

import (
	"reflect"
	"testing"

	hedlerr "github.com/hedl-dev/hedl/internal/errors"
)

func TestSplitRowFields(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{" alice, engineer, NYC", []string{"alice", "engineer", "NYC"}},
		{"alice,engineer,NYC", []string{"alice", "engineer", "NYC"}},
		{" bob, ^, ^", []string{"bob", "^", "^"}},
		{` a, "x, y", b`, []string{"a", `"x, y"`, "b"}},
		{" single", []string{"single"}},
		{" a, ~, 42", []string{"a", "~", "42"}},
		{` q, "with \"escape\"", end`, []string{"q", `"with \"escape\""`, "end"}},
	}
	for i, tt := range tests {
		got, err := SplitRowFields(tt.input, 1, DefaultLimits())
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("tests[%d] - expected=%q, got=%q", i, tt.want, got)
		}
	}
}

func TestSplitRowFieldsTrailingComma(t *testing.T) {
	_, err := SplitRowFields(" a, b,", 1, DefaultLimits())
	if err == nil {
		t.Fatal("expected error for trailing comma")
	}
}

func TestSplitRowFieldsInteriorQuote(t *testing.T) {
	_, err := SplitRowFields(` a, bad"field, c`, 1, DefaultLimits())
	if err == nil {
		t.Fatal("expected error for interior quote")
	}
}

func TestSplitRowFieldsUnclosedQuote(t *testing.T) {
	_, err := SplitRowFields(` a, "unclosed`, 1, DefaultLimits())
	if err == nil {
		t.Fatal("expected error for unclosed quote")
	}
}

func TestSplitRowFieldsEmptyRow(t *testing.T) {
	_, err := SplitRowFields("  ", 1, DefaultLimits())
	if err == nil {
		t.Fatal("expected error for empty row")
	}
}

func TestSplitRowFieldsFieldLimit(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxFieldCount = 2
	_, err := SplitRowFields(" a, b, c", 1, limits)
	if err == nil {
		t.Fatal("expected error for too many fields")
	}
	if kind, _ := hedlerr.KindOf(err); kind != hedlerr.Security {
		t.Errorf("kind wrong. expected=%v, got=%v", hedlerr.Security, kind)
	}
}
