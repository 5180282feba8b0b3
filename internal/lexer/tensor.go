package lexer

import (
	"strconv"
	"strings"

	hedlerr "github.com/hedl-dev/hedl/internal/errors"
	"github.com/hedl-dev/hedl/pkg/document"
)

// ScanTensor parses a tensor literal such as "[1, 2, 3]" or
// "[[1.0, 2.0], [3.0, 4.0]]". Validation rejects empty tensors, mixed
// scalar/array elements at one level, inconsistent inner lengths, trailing
// content after the closing bracket, and invalid numbers.
func ScanTensor(s string, lineNum int, limits Limits) (*document.Tensor, error) {
	p := &tensorScanner{input: s, line: lineNum, limits: limits}
	t, err := p.parse()
	if err != nil {
		return nil, err
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return nil, hedlerr.Newf(hedlerr.Syntax, lineNum,
			"unexpected content after tensor: %q", p.input[p.pos:])
	}
	return t, nil
}

type tensorScanner struct {
	input    string
	pos      int
	line     int
	depth    int
	elements int
	limits   Limits
}

func (p *tensorScanner) parse() (*document.Tensor, error) {
	p.skipSpaces()
	if p.pos >= len(p.input) || p.input[p.pos] != '[' {
		return nil, hedlerr.NewSyntax("tensor must start with '['", p.line)
	}
	p.pos++
	p.depth++
	if p.depth > p.limits.MaxParenDepth {
		return nil, hedlerr.Newf(hedlerr.Security, p.line,
			"tensor nesting depth %d exceeds limit %d", p.depth, p.limits.MaxParenDepth)
	}
	defer func() { p.depth-- }()

	p.skipSpaces()
	if p.pos < len(p.input) && p.input[p.pos] == ']' {
		return nil, hedlerr.NewSyntax("empty tensor", p.line)
	}

	var elems []*document.Tensor
	sawArray := false
	sawScalar := false
	for {
		p.skipSpaces()
		if p.pos >= len(p.input) {
			return nil, hedlerr.NewSyntax("unclosed tensor literal", p.line)
		}
		var elem *document.Tensor
		var err error
		if p.input[p.pos] == '[' {
			sawArray = true
			elem, err = p.parse()
		} else {
			sawScalar = true
			elem, err = p.parseScalar()
		}
		if err != nil {
			return nil, err
		}
		if sawArray && sawScalar {
			return nil, hedlerr.NewSyntax("tensor mixes scalars and arrays at one level", p.line)
		}
		elems = append(elems, elem)

		p.skipSpaces()
		if p.pos >= len(p.input) {
			return nil, hedlerr.NewSyntax("unclosed tensor literal", p.line)
		}
		switch p.input[p.pos] {
		case ',':
			p.pos++
		case ']':
			p.pos++
			if err := p.validateUniform(elems); err != nil {
				return nil, err
			}
			return document.TensorArray(elems), nil
		default:
			return nil, hedlerr.Newf(hedlerr.Syntax, p.line,
				"unexpected character %q in tensor", p.input[p.pos])
		}
	}
}

func (p *tensorScanner) parseScalar() (*document.Tensor, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == ',' || c == ']' {
			break
		}
		p.pos++
	}
	text := strings.TrimSpace(p.input[start:p.pos])
	if text == "" {
		return nil, hedlerr.NewSyntax("missing tensor element", p.line)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, hedlerr.Newf(hedlerr.Syntax, p.line, "invalid tensor number %q", text)
	}
	p.elements++
	if p.elements > p.limits.MaxTensorElements {
		return nil, hedlerr.Newf(hedlerr.Security, p.line,
			"tensor element count %d exceeds limit %d", p.elements, p.limits.MaxTensorElements)
	}
	return document.TensorScalar(f), nil
}

// validateUniform rejects ragged inner arrays.
func (p *tensorScanner) validateUniform(elems []*document.Tensor) error {
	if len(elems) == 0 || elems[0].IsScalar() {
		return nil
	}
	want := len(elems[0].Elems())
	for _, e := range elems[1:] {
		if len(e.Elems()) != want {
			return hedlerr.Newf(hedlerr.Syntax, p.line,
				"inconsistent tensor row lengths: %d vs %d", want, len(e.Elems()))
		}
	}
	return nil
}

func (p *tensorScanner) skipSpaces() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}
