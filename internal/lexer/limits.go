// Package lexer implements the HEDL lexical primitives: indentation
// handling, token predicates, and the resource-bounded scanners for scalars,
// tensors, expressions, references, matrix rows, and block strings. The
// parser drives these over logical lines; none of the scanners look past the
// text they are given.
package lexer

import "time"

// Limits bounds every unbounded construct the scanners can meet. Each limit
// is a separate field; failure modes differ (a huge tensor is not the same
// problem as many small rows), so they are never folded into one byte budget.
type Limits struct {
	// MaxIndentDepth is the maximum nesting level before indent-too-deep.
	MaxIndentDepth int
	// MaxLineLength is the maximum length in bytes of a single line.
	MaxLineLength int
	// MaxStringLength is the maximum length of any single string scalar.
	MaxStringLength int
	// MaxFieldCount is the maximum number of columns per row.
	MaxFieldCount int
	// MaxParenDepth is the maximum paren/bracket depth in expressions and
	// tensors.
	MaxParenDepth int
	// MaxBlockStringBytes is the cumulative byte budget of one block string.
	MaxBlockStringBytes int
	// MaxListSize is the maximum number of rows per list.
	MaxListSize int
	// MaxTensorElements is the maximum total scalar count across all
	// dimensions of one tensor.
	MaxTensorElements int
	// Timeout is the optional wall-clock limit for a whole parse; zero
	// disables it.
	Timeout time.Duration
}

// DefaultLimits returns the limits applied when the caller does not choose a
// preset.
func DefaultLimits() Limits {
	return Limits{
		MaxIndentDepth:      32,
		MaxLineLength:       1 << 20,
		MaxStringLength:     1 << 20,
		MaxFieldCount:       256,
		MaxParenDepth:       32,
		MaxBlockStringBytes: 4 << 20,
		MaxListSize:         1_000_000,
		MaxTensorElements:   1_000_000,
	}
}

// UntrustedLimits returns a tightened preset for adversarial input.
func UntrustedLimits() Limits {
	return Limits{
		MaxIndentDepth:      16,
		MaxLineLength:       64 << 10,
		MaxStringLength:     64 << 10,
		MaxFieldCount:       64,
		MaxParenDepth:       8,
		MaxBlockStringBytes: 256 << 10,
		MaxListSize:         100_000,
		MaxTensorElements:   10_000,
		Timeout:             5 * time.Second,
	}
}

// TrustedLimits returns a loosened preset for input the caller controls.
func TrustedLimits() Limits {
	return Limits{
		MaxIndentDepth:      128,
		MaxLineLength:       64 << 20,
		MaxStringLength:     64 << 20,
		MaxFieldCount:       4096,
		MaxParenDepth:       128,
		MaxBlockStringBytes: 256 << 20,
		MaxListSize:         100_000_000,
		MaxTensorElements:   100_000_000,
	}
}
