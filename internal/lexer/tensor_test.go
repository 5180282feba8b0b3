package lexer

import (
	"testing"

	hedlerr "github.com/hedl-dev/hedl/internal/errors"
)

func TestScanTensorVector(t *testing.T) {
	tensor, err := ScanTensor("[1, 2.5, -3]", 1, DefaultLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tensor.Rank() != 1 {
		t.Errorf("rank wrong. expected=1, got=%d", tensor.Rank())
	}
	elems := tensor.Elems()
	if len(elems) != 3 {
		t.Fatalf("length wrong. expected=3, got=%d", len(elems))
	}
	want := []float64{1, 2.5, -3}
	for i, w := range want {
		if elems[i].Scalar() != w {
			t.Errorf("elems[%d] expected=%v, got=%v", i, w, elems[i].Scalar())
		}
	}
}

func TestScanTensorMatrix(t *testing.T) {
	tensor, err := ScanTensor("[[1, 2], [3, 4], [5, 6]]", 1, DefaultLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tensor.Rank() != 2 {
		t.Errorf("rank wrong. expected=2, got=%d", tensor.Rank())
	}
	shape := tensor.Shape()
	if len(shape) != 2 || shape[0] != 3 || shape[1] != 2 {
		t.Errorf("shape wrong. expected=[3 2], got=%v", shape)
	}
	if tensor.ElementCount() != 6 {
		t.Errorf("element count wrong. expected=6, got=%d", tensor.ElementCount())
	}
}

func TestScanTensorInvalid(t *testing.T) {
	tests := []struct {
		input string
		desc  string
	}{
		{"[]", "empty tensor"},
		{"[1, [2]]", "mixed scalar and array"},
		{"[[1, 2], [3]]", "ragged rows"},
		{"[1, 2] extra", "trailing content"},
		{"[1, x]", "invalid number"},
		{"[1, 2", "unclosed"},
		{"[1,, 2]", "missing element"},
	}
	for i, tt := range tests {
		if _, err := ScanTensor(tt.input, 1, DefaultLimits()); err == nil {
			t.Errorf("tests[%d] - expected error for %s: %q", i, tt.desc, tt.input)
		}
	}
}

func TestScanTensorDepthLimit(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxParenDepth = 2
	_, err := ScanTensor("[[[1]]]", 1, limits)
	if err == nil {
		t.Fatal("expected depth error")
	}
	if kind, _ := hedlerr.KindOf(err); kind != hedlerr.Security {
		t.Errorf("kind wrong. expected=%v, got=%v", hedlerr.Security, kind)
	}
}

func TestScanTensorElementLimit(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxTensorElements = 3
	_, err := ScanTensor("[1, 2, 3, 4]", 1, limits)
	if err == nil {
		t.Fatal("expected element count error")
	}
	if kind, _ := hedlerr.KindOf(err); kind != hedlerr.Security {
		t.Errorf("kind wrong. expected=%v, got=%v", hedlerr.Security, kind)
	}
}
