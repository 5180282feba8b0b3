// Package parser turns HEDL surface text into a document. It is a
// line-oriented state machine: a prelude of % directives, a mandatory ---
// delimiter, then a body of keyed items where matrix rows, nested child
// rows, and the ditto operator are recognized per line. Reference
// resolution runs as a second phase over the finished document.
package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	hedlerr "github.com/hedl-dev/hedl/internal/errors"
	"github.com/hedl-dev/hedl/internal/lexer"
	"github.com/hedl-dev/hedl/pkg/document"
)

// Result is the outcome of a parse. Errors is populated only in partial
// mode; Warnings records unresolved references nulled under lenient
// resolution.
type Result struct {
	Doc      *document.Document
	Errors   []*hedlerr.Error
	Warnings []*hedlerr.Error
}

// Parse parses input with the default options (default limits, strict
// references).
func Parse(input string) (*document.Document, error) {
	res, err := ParseWithOptions(input, DefaultOptions())
	if err != nil {
		return nil, err
	}
	return res.Doc, nil
}

// ParseWithOptions parses input under the given options. In partial mode
// the returned Result carries the recorded errors; otherwise the first
// error aborts the parse.
func ParseWithOptions(input string, opts Options) (*Result, error) {
	p := &parser{opts: opts}
	if opts.Limits.Timeout > 0 {
		p.deadline = time.Now().Add(opts.Limits.Timeout)
	}

	p.lines = splitLines(input)
	for i, line := range p.lines {
		if len(line) > opts.Limits.MaxLineLength {
			return nil, hedlerr.Newf(hedlerr.Security, i+1,
				"line length %d exceeds limit %d", len(line), opts.Limits.MaxLineLength)
		}
	}

	pre, bodyStart, err := p.parsePrelude()
	if err != nil {
		return nil, err
	}
	p.doc = pre.doc
	p.pre = pre
	for typeName, count := range pre.countHints {
		p.doc.StructCounts[typeName] = count
	}
	p.reg = newRegistry()

	if err := p.parseBody(bodyStart); err != nil {
		return nil, err
	}

	if err := p.resolveReferences(); err != nil {
		return nil, err
	}

	return &Result{Doc: p.doc, Errors: p.errs, Warnings: p.warnings}, nil
}

type parser struct {
	opts     Options
	lines    []string
	deadline time.Time

	doc         *document.Document
	pre         *prelude
	reg         *registry
	pendingRefs []pendingRef
	errs        []*hedlerr.Error
	warnings    []*hedlerr.Error
}

type frameKind int

const (
	frameObject frameKind = iota
	frameList
)

// frame is one level of the body context stack. The root object sits at
// indent -1 and is never popped.
type frame struct {
	kind      frameKind
	indent    int
	key       string
	obj       *document.Object
	list      *document.MatrixList
	lastRow   *document.Node // last direct row of the list
	lastChild *document.Node // last child row under lastRow
	startLine int
}

func (p *parser) parseBody(bodyStart int) error {
	stack := []*frame{{kind: frameObject, indent: -1, obj: p.doc.Root}}
	var block *lexer.BlockStringState
	var blockTarget *document.Object

	for i := bodyStart; i < len(p.lines); i++ {
		lineNum := i + 1
		if err := p.checkDeadline(lineNum); err != nil {
			return err
		}
		raw := p.lines[i]

		if block != nil {
			done, content, err := block.ProcessLine(raw, lineNum, p.opts.Limits)
			if err != nil {
				return err
			}
			if done {
				blockTarget.Set(block.Key, &document.ScalarItem{Value: document.String(content)})
				block = nil
				blockTarget = nil
			}
			continue
		}

		stripped := lexer.StripComment(raw)
		info, err := lexer.CalculateIndent(stripped, lineNum)
		if err != nil {
			return err
		}
		if info == nil {
			continue // blank or comment line
		}
		if err := lexer.ValidateIndent(info, p.opts.Limits.MaxIndentDepth, lineNum); err != nil {
			return err
		}
		content := stripped[info.Spaces:]

		if content == "---" {
			// A stray delimiter closes any open list; at the root it is an
			// error.
			if top := stack[len(stack)-1]; top.kind == frameList {
				stack = stack[:len(stack)-1]
				continue
			}
			return hedlerr.NewSyntax("unexpected --- delimiter in body", lineNum)
		}

		if strings.HasPrefix(content, "|") {
			if err := p.parseRow(stack, content, info.Level, lineNum); err != nil {
				if err = p.report(err); err != nil {
					return err
				}
			}
			continue
		}

		// Key line: close every frame at this indent or deeper.
		for top := stack[len(stack)-1]; top.indent >= info.Level; top = stack[len(stack)-1] {
			stack = stack[:len(stack)-1]
		}
		top := stack[len(stack)-1]
		if top.kind == frameList {
			return hedlerr.Newf(hedlerr.Syntax, lineNum,
				"expected row in list %s", top.list.TypeName).
				WithContext(listContext(top))
		}
		if info.Level != top.indent+1 {
			return hedlerr.Newf(hedlerr.Syntax, lineNum,
				"indentation jump: level %d under level %d", info.Level, top.indent)
		}

		key, value, ok := strings.Cut(content, ":")
		if !ok {
			return hedlerr.Newf(hedlerr.Syntax, lineNum, "missing ':' in %q", content)
		}
		if !lexer.IsValidKeyToken(key) {
			return hedlerr.Newf(hedlerr.Syntax, lineNum, "invalid key %q", key)
		}
		value = strings.TrimSpace(value)

		switch {
		case value == "":
			obj := document.NewObject()
			top.obj.Set(key, obj)
			stack = append(stack, &frame{
				kind:      frameObject,
				indent:    info.Level,
				key:       key,
				obj:       obj,
				startLine: lineNum,
			})

		case value == `"""`:
			block = lexer.NewBlockStringState(key, lineNum, info.Level)
			blockTarget = top.obj

		case isListHeader(value):
			list, err := p.parseListHeader(value, lineNum)
			if err != nil {
				return err
			}
			top.obj.Set(key, list)
			stack = append(stack, &frame{
				kind:      frameList,
				indent:    info.Level,
				key:       key,
				list:      list,
				startLine: lineNum,
			})

		default:
			item, err := p.parseScalarItem(value, lineNum)
			if err != nil {
				if err = p.report(err); err != nil {
					return err
				}
				if p.opts.Partial.SkipInvalidItems {
					continue
				}
				item = &document.ScalarItem{Value: document.Null()}
			}
			top.obj.Set(key, item)
		}
	}

	if block != nil {
		return hedlerr.Newf(hedlerr.Syntax, len(p.lines),
			"unclosed block string started at line %d", block.StartLine)
	}
	return nil
}

// isListHeader distinguishes a matrix list header "@TypeName" (optionally
// "@TypeName (N)") from a reference scalar such as "@User:alice" or
// "@some_id": a header is a bare PascalCase type name with no id part.
func isListHeader(value string) bool {
	if !strings.HasPrefix(value, "@") || strings.Contains(value, ":") {
		return false
	}
	typeName := strings.TrimPrefix(value, "@")
	if open := strings.Index(typeName, "("); open >= 0 {
		typeName = strings.TrimSpace(typeName[:open])
	}
	return lexer.IsValidTypeName(typeName)
}

// parseListHeader handles the "@TypeName" value of a matrix list header,
// with an optional "(N)" row-count hint.
func (p *parser) parseListHeader(value string, lineNum int) (*document.MatrixList, error) {
	typeName := strings.TrimPrefix(value, "@")
	var hint *int

	if open := strings.Index(typeName, "("); open >= 0 {
		countPart := strings.TrimSpace(typeName[open:])
		if !strings.HasSuffix(countPart, ")") {
			return nil, hedlerr.Newf(hedlerr.Syntax, lineNum, "malformed count in list header %q", value)
		}
		n, err := strconv.Atoi(strings.TrimSpace(countPart[1 : len(countPart)-1]))
		if err != nil || n < 0 {
			return nil, hedlerr.Newf(hedlerr.Syntax, lineNum, "malformed count in list header %q", value)
		}
		hint = &n
		typeName = strings.TrimSpace(typeName[:open])
	}

	if !lexer.IsValidTypeName(typeName) {
		return nil, hedlerr.Newf(hedlerr.Syntax, lineNum, "invalid type name %q in list header", typeName)
	}

	if hint == nil {
		if n, ok := p.pre.countHints[typeName]; ok {
			hint = &n
		}
	}

	// The schema may be absent; a list referencing an undeclared type is
	// accepted at parse time.
	return &document.MatrixList{
		TypeName:  typeName,
		Schema:    p.doc.Structs[typeName],
		CountHint: hint,
	}, nil
}

func (p *parser) parseScalarItem(value string, lineNum int) (*document.ScalarItem, error) {
	if value == "^" {
		return nil, hedlerr.NewSemantic("ditto marker outside a matrix row", lineNum)
	}
	substituted, err := p.substituteAlias(value, lineNum)
	if err != nil {
		return nil, err
	}
	v, err := lexer.ScanScalar(substituted, lineNum, p.opts.Limits)
	if err != nil {
		return nil, err
	}
	item := &document.ScalarItem{Value: v}
	p.addPendingRef(v, func(nv document.Value) { item.Value = nv }, lineNum, "")
	return item, nil
}

// parseRow handles a "|"-introduced line: a direct row one level below the
// list header, or a child row two levels below attached to the preceding
// direct row.
func (p *parser) parseRow(stack []*frame, content string, level, lineNum int) error {
	top := stack[len(stack)-1]
	if top.kind != frameList {
		return hedlerr.NewOrphanRow("row outside any list context", lineNum)
	}
	list := top.list
	ctx := listContext(top)

	switch level - top.indent {
	case 1: // direct row
		node, err := p.buildRow(content, list.TypeName, list.Schema, top.lastRow, lineNum, ctx)
		if err != nil {
			return err
		}
		list.Rows = append(list.Rows, node)
		if len(list.Rows) > p.opts.Limits.MaxListSize {
			return hedlerr.Newf(hedlerr.Security, lineNum,
				"list size %d exceeds limit %d", len(list.Rows), p.opts.Limits.MaxListSize).
				WithContext(ctx)
		}
		top.lastRow = node
		top.lastChild = nil
		return nil

	case 2: // child row
		parent := top.lastRow
		if parent == nil {
			return hedlerr.NewOrphanRow("child row before any parent row", lineNum).WithContext(ctx)
		}
		childType, ok := p.doc.Nests[parent.TypeName]
		if !ok {
			return hedlerr.Newf(hedlerr.OrphanRow, lineNum,
				"child row without a %%NEST rule for type %s", parent.TypeName).WithContext(ctx)
		}
		node, err := p.buildRow(content, childType, p.doc.Structs[childType], top.lastChild, lineNum, ctx)
		if err != nil {
			return err
		}
		parent.Children[childType] = append(parent.Children[childType], node)
		if len(parent.Children[childType]) > p.opts.Limits.MaxListSize {
			return hedlerr.Newf(hedlerr.Security, lineNum,
				"child list size %d exceeds limit %d",
				len(parent.Children[childType]), p.opts.Limits.MaxListSize).WithContext(ctx)
		}
		top.lastChild = node
		return nil

	default:
		if level <= top.indent {
			return hedlerr.NewOrphanRow("row outside any list context", lineNum)
		}
		return hedlerr.Newf(hedlerr.Syntax, lineNum,
			"row indented %d levels below its list header", level-top.indent).WithContext(ctx)
	}
}

// buildRow scans one row's fields, expands ditto markers against prev, and
// registers the row's identifier.
func (p *parser) buildRow(content, typeName string, schema []string, prev *document.Node, lineNum int, ctx string) (*document.Node, error) {
	fields, err := lexer.SplitRowFields(content[1:], lineNum, p.opts.Limits)
	if err != nil {
		return nil, err
	}
	if len(schema) > 0 && len(fields) != len(schema) {
		return nil, hedlerr.Newf(hedlerr.Shape, lineNum,
			"row has %d cells, schema %s has %d columns", len(fields), typeName, len(schema)).
			WithContext(ctx)
	}

	values := make([]document.Value, len(fields))
	for i, field := range fields {
		if field == "^" {
			if i == 0 {
				return nil, hedlerr.NewSemantic("ditto marker in identifier column", lineNum).WithContext(ctx)
			}
			if prev == nil {
				return nil, hedlerr.NewSemantic("ditto marker in first row of list", lineNum).WithContext(ctx)
			}
			values[i] = prev.Fields[i]
			continue
		}
		substituted, err := p.substituteAlias(field, lineNum)
		if err != nil {
			return nil, err
		}
		v, err := lexer.ScanScalar(substituted, lineNum, p.opts.Limits)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	id, ok := values[0].AsString()
	if !ok {
		return nil, hedlerr.Newf(hedlerr.Semantic, lineNum,
			"identifier column must hold a string, got %s", values[0].Kind()).WithContext(ctx)
	}
	if !lexer.IsValidIDToken(id) {
		return nil, hedlerr.Newf(hedlerr.Semantic, lineNum, "invalid identifier %q", id).WithContext(ctx)
	}
	if err := p.reg.insert(typeName, id, lineNum); err != nil {
		return nil, err
	}

	node := document.NewNode(typeName, id, values)
	for i := range node.Fields {
		i := i
		p.addPendingRef(node.Fields[i], func(nv document.Value) { node.Fields[i] = nv }, lineNum, ctx)
	}
	return node, nil
}

// substituteAlias replaces a whole-field %name occurrence with its alias
// value before scalar scanning.
func (p *parser) substituteAlias(field string, lineNum int) (string, error) {
	if !strings.HasPrefix(field, "%") {
		return field, nil
	}
	name := field[1:]
	if !lexer.IsValidKeyToken(name) {
		return field, nil
	}
	value, ok := p.doc.Aliases[name]
	if !ok {
		return "", hedlerr.Newf(hedlerr.Alias, lineNum, "unknown alias %%%s", name)
	}
	return value, nil
}

// report records err in partial mode or passes it through. Security errors
// are always fatal, and the error budget aborts the parse when exhausted.
func (p *parser) report(err error) error {
	he, ok := err.(*hedlerr.Error)
	if !ok {
		return err
	}
	partial := p.opts.Partial
	if !partial.Enabled || partial.StopOnFirst || he.Kind == hedlerr.Security {
		return err
	}
	p.errs = append(p.errs, he)
	if partial.MaxErrors > 0 && len(p.errs) >= partial.MaxErrors {
		return hedlerr.Newf(hedlerr.Syntax, he.Line,
			"error budget of %d exhausted; last: %s", partial.MaxErrors, he.Message)
	}
	return nil
}

func (p *parser) checkDeadline(lineNum int) error {
	if p.deadline.IsZero() {
		return nil
	}
	if time.Now().After(p.deadline) {
		return hedlerr.Newf(hedlerr.Security, lineNum,
			"parse timeout: exceeded limit of %s", p.opts.Limits.Timeout)
	}
	return nil
}

func listContext(f *frame) string {
	return fmt.Sprintf("in list %s started at line %d", f.list.TypeName, f.startLine)
}

// splitLines splits input on \n and drops one trailing \r per line so CRLF
// input parses like LF input.
func splitLines(input string) []string {
	lines := strings.Split(input, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
