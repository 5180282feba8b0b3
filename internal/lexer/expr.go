package lexer

import (
	"strings"

	hedlerr "github.com/hedl-dev/hedl/internal/errors"
	"github.com/hedl-dev/hedl/pkg/document"
)

// ScanExpression parses a deferred-expression form "$(...)" into an inert
// expression tree. The grammar recognizes literals, identifiers, calls
// "name(args)", and field accesses "expr.field". Columns in spans are byte
// offsets from the start of the "$(" form, 1-indexed.
func ScanExpression(s string, lineNum int, limits Limits) (document.Expr, error) {
	if !strings.HasPrefix(s, "$(") {
		return nil, hedlerr.Newf(hedlerr.Syntax, lineNum, "invalid expression %q", s)
	}
	if !strings.HasSuffix(s, ")") || len(s) < 4 {
		return nil, hedlerr.NewSyntax("unclosed expression", lineNum)
	}

	p := &exprScanner{input: s, pos: 2, line: lineNum, limits: limits}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpaces()
	if p.pos >= len(s) {
		// The final ')' closed an inner call, so the form itself is open.
		return nil, hedlerr.NewSyntax("unclosed expression", lineNum)
	}
	if p.pos != len(s)-1 {
		return nil, hedlerr.Newf(hedlerr.Syntax, lineNum,
			"unexpected content in expression: %q", s[p.pos:len(s)-1])
	}
	return e, nil
}

type exprScanner struct {
	input  string
	pos    int
	line   int
	depth  int
	limits Limits
}

func (p *exprScanner) parseExpr() (document.Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpaces()
		if p.pos >= len(p.input) || p.input[p.pos] != '.' {
			return e, nil
		}
		p.pos++
		field, _, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		e = &document.FieldExpr{
			Inner: e,
			Field: field,
			Pos:   e.Span().Merge(p.spanTo(p.pos)),
		}
	}
}

func (p *exprScanner) parsePrimary() (document.Expr, error) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return nil, hedlerr.NewSyntax("unclosed expression", p.line)
	}
	c := p.input[p.pos]

	if c == '"' || c == '\'' || (c >= '0' && c <= '9') || c == '-' || c == '+' {
		return p.parseLiteral()
	}
	if !isIdentStart(c) {
		return nil, hedlerr.Newf(hedlerr.Syntax, p.line,
			"unexpected character %q in expression", c)
	}

	name, start, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	p.skipSpaces()
	if p.pos < len(p.input) && p.input[p.pos] == '(' {
		return p.parseCall(name, start)
	}
	return &document.IdentExpr{Name: name, Pos: p.span(start, p.pos)}, nil
}

func (p *exprScanner) parseCall(name string, start int) (document.Expr, error) {
	p.depth++
	if p.depth > p.limits.MaxParenDepth {
		return nil, hedlerr.Newf(hedlerr.Security, p.line,
			"expression paren depth %d exceeds limit %d", p.depth, p.limits.MaxParenDepth)
	}
	defer func() { p.depth-- }()

	p.pos++ // consume '('
	var args []document.Expr
	p.skipSpaces()
	if p.pos < len(p.input) && p.input[p.pos] == ')' {
		p.pos++
		return &document.CallExpr{Name: name, Pos: p.span(start, p.pos)}, nil
	}
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipSpaces()
		if p.pos >= len(p.input) {
			return nil, hedlerr.NewSyntax("unclosed expression", p.line)
		}
		switch p.input[p.pos] {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return &document.CallExpr{Name: name, Args: args, Pos: p.span(start, p.pos)}, nil
		default:
			return nil, hedlerr.Newf(hedlerr.Syntax, p.line,
				"unexpected character %q in expression arguments", p.input[p.pos])
		}
	}
}

func (p *exprScanner) parseLiteral() (document.Expr, error) {
	start := p.pos
	c := p.input[p.pos]
	if c == '"' || c == '\'' {
		quote := c
		p.pos++
		for p.pos < len(p.input) {
			if p.input[p.pos] == '\\' {
				p.pos += 2
				continue
			}
			if p.input[p.pos] == quote {
				p.pos++
				return &document.LiteralExpr{
					Text: p.input[start:p.pos],
					Pos:  p.span(start, p.pos),
				}, nil
			}
			p.pos++
		}
		return nil, hedlerr.NewSyntax("unclosed string literal in expression", p.line)
	}

	// Numeric literal: consume sign, digits, dots, exponent characters.
	p.pos++
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' ||
			((c == '+' || c == '-') && (p.input[p.pos-1] == 'e' || p.input[p.pos-1] == 'E')) {
			p.pos++
			continue
		}
		break
	}
	text := p.input[start:p.pos]
	if text == "+" || text == "-" {
		return nil, hedlerr.Newf(hedlerr.Syntax, p.line, "invalid literal %q in expression", text)
	}
	return &document.LiteralExpr{Text: text, Pos: p.span(start, p.pos)}, nil
}

func (p *exprScanner) parseIdent() (string, int, error) {
	p.skipSpaces()
	start := p.pos
	if p.pos >= len(p.input) || !isIdentStart(p.input[p.pos]) {
		return "", start, hedlerr.NewSyntax("expected identifier in expression", p.line)
	}
	p.pos++
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if isIdentStart(c) || (c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	return p.input[start:p.pos], start, nil
}

func (p *exprScanner) skipSpaces() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *exprScanner) span(start, end int) document.Span {
	return document.NewSpan(
		document.NewPosition(p.line, start+1),
		document.NewPosition(p.line, end+1),
	)
}

func (p *exprScanner) spanTo(end int) document.Span {
	return document.NewSpan(
		document.NewPosition(p.line, end),
		document.NewPosition(p.line, end+1),
	)
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}
