// Package hedl is the public entry point for working with HEDL documents:
// parsing, canonicalization, streaming, and format conversion.
//
//	doc, err := hedl.Parse(input)
//	canonical, err := hedl.Canonicalize(doc)
//	json, err := hedl.ToJSON(doc)
package hedl

import (
	"io"

	"github.com/hedl-dev/hedl/internal/jsonconv"
	"github.com/hedl-dev/hedl/internal/lexer"
	"github.com/hedl-dev/hedl/internal/parser"
	"github.com/hedl-dev/hedl/internal/stream"
	"github.com/hedl-dev/hedl/internal/yamlconv"
	"github.com/hedl-dev/hedl/pkg/document"
	"github.com/hedl-dev/hedl/pkg/printer"
)

// Re-exported core types, so most callers only import this package and
// pkg/document.
type (
	// Document is a parsed HEDL document.
	Document = document.Document
	// Value is a HEDL scalar value.
	Value = document.Value
	// Limits bounds parser resource use.
	Limits = lexer.Limits
	// ParseOptions configures parsing.
	ParseOptions = parser.Options
	// ParseResult carries the document plus partial-mode errors and
	// lenient-resolution warnings.
	ParseResult = parser.Result
	// PrintOptions configures canonicalization.
	PrintOptions = printer.Options
	// StreamReader yields top-level items incrementally.
	StreamReader = stream.Reader
)

// DefaultLimits returns the default resource limits.
func DefaultLimits() Limits { return lexer.DefaultLimits() }

// UntrustedLimits returns the tightened preset for adversarial input.
func UntrustedLimits() Limits { return lexer.UntrustedLimits() }

// TrustedLimits returns the loosened preset for input the caller controls.
func TrustedLimits() Limits { return lexer.TrustedLimits() }

// Parse parses input with default options: default limits, strict
// references.
func Parse(input string) (*Document, error) {
	return parser.Parse(input)
}

// ParseWithOptions parses input under the given options.
func ParseWithOptions(input string, opts ParseOptions) (*ParseResult, error) {
	return parser.ParseWithOptions(input, opts)
}

// DefaultParseOptions returns the default parse configuration.
func DefaultParseOptions() ParseOptions { return parser.DefaultOptions() }

// Canonicalize renders doc in canonical form.
func Canonicalize(doc *Document) (string, error) {
	return printer.Canonicalize(doc)
}

// CanonicalizeWithOptions renders doc with explicit canonicalization
// options.
func CanonicalizeWithOptions(doc *Document, opts PrintOptions) (string, error) {
	return printer.CanonicalizeWithOptions(doc, opts)
}

// NewStreamReader wraps src for incremental reading. The prelude is parsed
// eagerly; each Scan yields one top-level item.
func NewStreamReader(src io.Reader, options ...stream.Option) (*StreamReader, error) {
	return stream.NewReader(src, options...)
}

// ToJSON converts doc to a JSON object string.
func ToJSON(doc *Document) (string, error) { return jsonconv.ToJSON(doc) }

// FromJSON imports a JSON object as a HEDL document.
func FromJSON(input string) (*Document, error) { return jsonconv.FromJSON(input) }

// ToYAML converts doc to YAML.
func ToYAML(doc *Document) (string, error) { return yamlconv.ToYAML(doc) }

// FromYAML imports a YAML mapping as a HEDL document.
func FromYAML(input string) (*Document, error) { return yamlconv.FromYAML(input) }
