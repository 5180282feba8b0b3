package parser

import "github.com/hedl-dev/hedl/internal/lexer"

// PartialOptions configures error accumulation. When Enabled, the parser
// records item-level errors instead of failing on the first one; invalid
// rows are dropped, and invalid scalar items are dropped when
// SkipInvalidItems is set and replaced by null otherwise. The parser does
// not read ReplaceWithNull.
// Security errors always abort, partial mode or not.
type PartialOptions struct {
	Enabled          bool
	StopOnFirst      bool
	MaxErrors        int
	SkipInvalidItems bool
	ReplaceWithNull  bool
}

// Options configures a parse.
type Options struct {
	// Limits bounds every unbounded construct; see lexer.Limits.
	Limits lexer.Limits
	// StrictRefs makes unresolved references fatal. When false, unresolved
	// references become null values and are recorded as warnings.
	StrictRefs bool
	// Partial enables error accumulation.
	Partial PartialOptions
}

// Option mutates Options; the pattern follows the lexer's functional
// options.
type Option func(*Options)

// WithLimits sets the resource limits.
func WithLimits(limits lexer.Limits) Option {
	return func(o *Options) { o.Limits = limits }
}

// WithStrictRefs toggles strict reference resolution.
func WithStrictRefs(strict bool) Option {
	return func(o *Options) { o.StrictRefs = strict }
}

// WithPartialParse enables partial parsing with the given error budget.
func WithPartialParse(maxErrors int) Option {
	return func(o *Options) {
		o.Partial = PartialOptions{
			Enabled:         true,
			MaxErrors:       maxErrors,
			ReplaceWithNull: true,
		}
	}
}

// DefaultOptions returns the default configuration: default limits, strict
// references, fail on first error.
func DefaultOptions() Options {
	return Options{
		Limits:     lexer.DefaultLimits(),
		StrictRefs: true,
	}
}
