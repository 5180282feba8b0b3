package lexer

import (
	"testing"

	hedlerr "github.com/hedl-dev/hedl/internal/errors"
)

func TestTryStartBlockString(t *testing.T) {
	tests := []struct {
		input   string
		wantKey string
		wantOK  bool
	}{
		{`description: """`, "description", true},
		{`notes: """ `, "notes", true},
		{`key: "value"`, "", false},
		{`key: """inline"""`, "", false},
		{`no colon here`, "", false},
	}
	for i, tt := range tests {
		key, ok := TryStartBlockString(tt.input)
		if ok != tt.wantOK {
			t.Fatalf("tests[%d] - ok wrong for %q. expected=%v, got=%v", i, tt.input, tt.wantOK, ok)
		}
		if ok && key != tt.wantKey {
			t.Errorf("tests[%d] - key wrong. expected=%q, got=%q", i, tt.wantKey, key)
		}
	}
}

func TestBlockStringAccumulation(t *testing.T) {
	state := NewBlockStringState("desc", 1, 0)
	limits := DefaultLimits()

	for i, line := range []string{"first line", "  indented", ""} {
		done, _, err := state.ProcessLine(line, i+2, limits)
		if err != nil {
			t.Fatalf("line %d - unexpected error: %v", i, err)
		}
		if done {
			t.Fatalf("line %d - completed early", i)
		}
	}

	done, content, err := state.ProcessLine(`"""`, 5, limits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !done {
		t.Fatal("expected completion on closing delimiter")
	}
	want := "first line\n  indented\n\n"
	if content != want {
		t.Errorf("content wrong. expected=%q, got=%q", want, content)
	}
}

func TestBlockStringContentAfterClose(t *testing.T) {
	state := NewBlockStringState("desc", 1, 0)
	_, _, err := state.ProcessLine(`""" trailing`, 2, DefaultLimits())
	if err == nil {
		t.Fatal("expected error for content after closing delimiter")
	}
}

func TestBlockStringCommentAfterClose(t *testing.T) {
	state := NewBlockStringState("desc", 1, 0)
	done, _, err := state.ProcessLine(`""" # fine`, 2, DefaultLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !done {
		t.Fatal("expected completion")
	}
}

func TestBlockStringSizeLimit(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxBlockStringBytes = 10
	state := NewBlockStringState("desc", 1, 0)
	_, _, err := state.ProcessLine("0123456789abcdef", 2, limits)
	if err == nil {
		t.Fatal("expected size error")
	}
	if kind, _ := hedlerr.KindOf(err); kind != hedlerr.Security {
		t.Errorf("kind wrong. expected=%v, got=%v", hedlerr.Security, kind)
	}
}
