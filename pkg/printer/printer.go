// Package printer implements HEDL canonicalization: deterministic
// re-emission of a document as UTF-8 text. The prelude is alphabetized per
// directive kind; the body preserves insertion order; matrix rows are
// compressed with the ditto operator. Canonicalization is a pure function
// of the document, so byte-identical output is produced for semantically
// equivalent inputs.
package printer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hedl-dev/hedl/pkg/document"
)

// QuotingMode selects the string quoting policy.
type QuotingMode int

const (
	// QuotingMinimal quotes only strings the grammar requires to be quoted.
	QuotingMinimal QuotingMode = iota
	// QuotingAlways quotes every string.
	QuotingAlways
)

// Options configures canonicalization.
type Options struct {
	// UseDitto compresses repeated row values to ^. On by default.
	UseDitto bool
	// Quoting selects the string quoting policy.
	Quoting QuotingMode
	// IncludeCounts emits row-count hints on list headers.
	IncludeCounts bool
}

// DefaultOptions returns the canonical defaults: ditto on, minimal quoting,
// no count hints.
func DefaultOptions() Options {
	return Options{UseDitto: true}
}

// Canonicalize renders doc with the default options.
func Canonicalize(doc *document.Document) (string, error) {
	return CanonicalizeWithOptions(doc, DefaultOptions())
}

// CanonicalizeWithOptions renders doc as canonical HEDL text.
func CanonicalizeWithOptions(doc *document.Document, opts Options) (string, error) {
	p := &printer{opts: opts, doc: doc}
	if err := p.emitDocument(); err != nil {
		return "", err
	}
	return p.sb.String(), nil
}

type printer struct {
	sb   strings.Builder
	opts Options
	doc  *document.Document
}

func (p *printer) emitDocument() error {
	p.emitPrelude()
	for _, key := range p.doc.Root.Keys() {
		item, _ := p.doc.Root.Get(key)
		if err := p.emitItem(key, item, 0); err != nil {
			return err
		}
	}
	return nil
}

// emitPrelude writes the version line, then %STRUCT, %NEST, and %ALIAS
// directives each in lexicographic order, then the --- delimiter. The
// alphabetized prelude is what makes output independent of declaration
// order.
func (p *printer) emitPrelude() {
	fmt.Fprintf(&p.sb, "%%VERSION: %d.%d\n", p.doc.VersionMajor, p.doc.VersionMinor)

	for _, typeName := range sortedKeys(p.doc.Structs) {
		p.sb.WriteString("%STRUCT: ")
		p.sb.WriteString(typeName)
		if count, ok := p.doc.StructCounts[typeName]; ok {
			fmt.Fprintf(&p.sb, " (%d)", count)
		}
		p.sb.WriteString(": [")
		p.sb.WriteString(strings.Join(p.doc.Structs[typeName], ", "))
		p.sb.WriteString("]\n")
	}

	for _, parent := range sortedKeys(p.doc.Nests) {
		fmt.Fprintf(&p.sb, "%%NEST: %s > %s\n", parent, p.doc.Nests[parent])
	}

	for _, name := range sortedKeys(p.doc.Aliases) {
		fmt.Fprintf(&p.sb, "%%ALIAS: %s = %s\n", name, p.doc.Aliases[name])
	}

	p.sb.WriteString("---\n")
}

func (p *printer) emitItem(key string, item document.Item, indent int) error {
	switch it := item.(type) {
	case *document.ScalarItem:
		return p.emitScalarItem(key, it.Value, indent)

	case *document.Object:
		p.indent(indent)
		p.sb.WriteString(key)
		p.sb.WriteString(":\n")
		for _, childKey := range it.Keys() {
			child, _ := it.Get(childKey)
			if err := p.emitItem(childKey, child, indent+1); err != nil {
				return err
			}
		}
		return nil

	case *document.MatrixList:
		return p.emitList(key, it, indent)

	default:
		return fmt.Errorf("unknown item kind for key %q", key)
	}
}

func (p *printer) emitScalarItem(key string, v document.Value, indent int) error {
	// Multi-line strings prefer the block form when it reproduces the value
	// exactly (content must end in a newline, which the block grammar
	// guarantees on re-parse).
	if s, ok := v.AsString(); ok && strings.Contains(s, "\n") && strings.HasSuffix(s, "\n") {
		p.indent(indent)
		p.sb.WriteString(key)
		p.sb.WriteString(": \"\"\"\n")
		p.sb.WriteString(s)
		p.sb.WriteString("\"\"\"\n")
		return nil
	}

	text, err := p.formatValue(v)
	if err != nil {
		return err
	}
	p.indent(indent)
	p.sb.WriteString(key)
	p.sb.WriteString(": ")
	p.sb.WriteString(text)
	p.sb.WriteString("\n")
	return nil
}

func (p *printer) emitList(key string, list *document.MatrixList, indent int) error {
	p.indent(indent)
	p.sb.WriteString(key)
	p.sb.WriteString(": @")
	p.sb.WriteString(list.TypeName)
	if p.opts.IncludeCounts {
		fmt.Fprintf(&p.sb, " (%d)", len(list.Rows))
	}
	p.sb.WriteString("\n")

	var prev *document.Node
	for _, row := range list.Rows {
		if err := p.emitRow(row, prev, indent+1); err != nil {
			return err
		}
		prev = row
	}
	return nil
}

func (p *printer) emitRow(row *document.Node, prev *document.Node, indent int) error {
	p.indent(indent)
	p.sb.WriteString("|")

	for i, v := range row.Fields {
		if i > 0 {
			p.sb.WriteString(",")
		}
		p.sb.WriteString(" ")
		// The ditto pass runs on resolved values: a field value-equal to the
		// previous row's same column compresses to ^, never in the
		// identifier column.
		if p.opts.UseDitto && i > 0 && prev != nil && i < len(prev.Fields) && v.Equal(prev.Fields[i]) {
			p.sb.WriteString("^")
			continue
		}
		text, err := p.formatValue(v)
		if err != nil {
			return err
		}
		p.sb.WriteString(text)
	}
	p.sb.WriteString("\n")

	childTypes := make([]string, 0, len(row.Children))
	for childType := range row.Children {
		childTypes = append(childTypes, childType)
	}
	sort.Strings(childTypes)
	for _, childType := range childTypes {
		var childPrev *document.Node
		for _, child := range row.Children[childType] {
			if err := p.emitRow(child, childPrev, indent+1); err != nil {
				return err
			}
			childPrev = child
		}
	}
	return nil
}

func (p *printer) indent(level int) {
	for i := 0; i < level; i++ {
		p.sb.WriteString("  ")
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
