package lexer

import (
	"testing"

	hedlerr "github.com/hedl-dev/hedl/internal/errors"
)

func TestCalculateIndent(t *testing.T) {
	tests := []struct {
		input      string
		wantSpaces int
		wantLevel  int
	}{
		{"hello", 0, 0},
		{"  hello", 2, 1},
		{"    hello", 4, 2},
		{"          hello", 10, 5},
		{"  key: value", 2, 1},
		{"  | row, data", 2, 1},
		{"  @reference", 2, 1},
	}

	for i, tt := range tests {
		info, err := CalculateIndent(tt.input, 1)
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}
		if info == nil {
			t.Fatalf("tests[%d] - got blank line for %q", i, tt.input)
		}
		if info.Spaces != tt.wantSpaces {
			t.Errorf("tests[%d] - spaces wrong. expected=%d, got=%d", i, tt.wantSpaces, info.Spaces)
		}
		if info.Level != tt.wantLevel {
			t.Errorf("tests[%d] - level wrong. expected=%d, got=%d", i, tt.wantLevel, info.Level)
		}
	}
}

func TestCalculateIndentBlankLines(t *testing.T) {
	blanks := []string{"", "   ", "\t", "  \t  ", "\t\t"}
	for i, input := range blanks {
		info, err := CalculateIndent(input, 1)
		if err != nil {
			t.Fatalf("blanks[%d] - unexpected error: %v", i, err)
		}
		if info != nil {
			t.Errorf("blanks[%d] - expected blank for %q, got %+v", i, input, info)
		}
	}
}

func TestCalculateIndentOddSpaces(t *testing.T) {
	_, err := CalculateIndent(" hello", 3)
	if err == nil {
		t.Fatal("expected error for odd indentation")
	}
	if kind, _ := hedlerr.KindOf(err); kind != hedlerr.Syntax {
		t.Errorf("kind wrong. expected=%v, got=%v", hedlerr.Syntax, kind)
	}
}

func TestCalculateIndentTab(t *testing.T) {
	_, err := CalculateIndent("\thello", 2)
	if err == nil {
		t.Fatal("expected error for tab in indentation")
	}
	_, err = CalculateIndent("  \thello", 2)
	if err == nil {
		t.Fatal("expected error for tab after spaces")
	}
}

func TestValidateIndent(t *testing.T) {
	info := &IndentInfo{Spaces: 10, Level: 5}
	if err := ValidateIndent(info, 5, 1); err != nil {
		t.Errorf("level at limit should pass, got %v", err)
	}
	err := ValidateIndent(info, 4, 1)
	if err == nil {
		t.Fatal("expected error for indent too deep")
	}
	if kind, _ := hedlerr.KindOf(err); kind != hedlerr.Security {
		t.Errorf("kind wrong. expected=%v, got=%v", hedlerr.Security, kind)
	}
}
