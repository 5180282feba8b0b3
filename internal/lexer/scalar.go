package lexer

import (
	"strconv"
	"strings"

	hedlerr "github.com/hedl-dev/hedl/internal/errors"
	"github.com/hedl-dev/hedl/pkg/document"
)

// ScanScalar scans one field's text into a value. The input is a complete
// field as produced by SplitRowFields (or the text after "key: " on a scalar
// line), with surrounding spaces already trimmed. Recognition order: null,
// booleans, integer, float, tensor, expression, quoted string, reference,
// unquoted string. Ditto markers are handled by the row parser before this
// is called; block strings are handled by the line parser.
func ScanScalar(field string, lineNum int, limits Limits) (document.Value, error) {
	switch {
	case field == "~":
		return document.Null(), nil
	case field == "true":
		return document.Bool(true), nil
	case field == "false":
		return document.Bool(false), nil
	}

	if isIntLiteral(field) {
		n, err := strconv.ParseInt(field, 10, 64)
		if err == nil {
			return document.Int(n), nil
		}
		// Out of int64 range; fall through to float handling below.
	}

	if isFloatLiteral(field) {
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return document.Value{}, hedlerr.Newf(hedlerr.Syntax, lineNum,
				"invalid number %q", field)
		}
		return document.Float(f), nil
	}

	switch {
	case strings.HasPrefix(field, "["):
		t, err := ScanTensor(field, lineNum, limits)
		if err != nil {
			return document.Value{}, err
		}
		return document.TensorValue(t), nil

	case strings.HasPrefix(field, "$("):
		e, err := ScanExpression(field, lineNum, limits)
		if err != nil {
			return document.Value{}, err
		}
		return document.Expression(e), nil

	case strings.HasPrefix(field, "\""):
		s, err := unquoteString(field, lineNum)
		if err != nil {
			return document.Value{}, err
		}
		if len(s) > limits.MaxStringLength {
			return document.Value{}, hedlerr.Newf(hedlerr.Security, lineNum,
				"string length %d exceeds limit %d", len(s), limits.MaxStringLength)
		}
		return document.String(s), nil

	case strings.HasPrefix(field, "@"):
		ref, err := ParseReference(field, lineNum)
		if err != nil {
			return document.Value{}, err
		}
		return document.Ref(ref), nil
	}

	if len(field) > limits.MaxStringLength {
		return document.Value{}, hedlerr.Newf(hedlerr.Security, lineNum,
			"string length %d exceeds limit %d", len(field), limits.MaxStringLength)
	}
	return document.String(field), nil
}

// isIntLiteral reports an optional sign followed by one or more digits, with
// no decimal point or exponent.
func isIntLiteral(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '+' || s[0] == '-' {
		i = 1
	}
	if i == len(s) {
		return false
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isFloatLiteral reports an optional sign and digits with a mandatory
// decimal point flanked by digits, or an exponent form. An integer that
// overflowed int64 also lands here via ParseFloat.
func isFloatLiteral(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '+' || s[0] == '-' {
		i = 1
	}
	digitsBefore := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		digitsBefore++
		i++
	}
	if digitsBefore == 0 {
		return false
	}
	if i == len(s) {
		// All digits: an integer literal, possibly out of int64 range.
		return isIntLiteral(s)
	}
	if s[i] == '.' {
		i++
		digitsAfter := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			digitsAfter++
			i++
		}
		if digitsAfter == 0 {
			return false
		}
	}
	if i == len(s) {
		return true
	}
	if s[i] != 'e' && s[i] != 'E' {
		return false
	}
	i++
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	expDigits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		expDigits++
		i++
	}
	return expDigits > 0 && i == len(s)
}

// unquoteString decodes a double-quoted string with standard backslash
// escapes: \" \\ \/ \n \t \r and \uXXXX.
func unquoteString(s string, lineNum int) (string, error) {
	if len(s) < 2 || s[0] != '"' {
		return "", hedlerr.Newf(hedlerr.Syntax, lineNum, "invalid quoted string %q", s)
	}
	var sb strings.Builder
	i := 1
	for i < len(s) {
		c := s[i]
		switch c {
		case '"':
			if i != len(s)-1 {
				return "", hedlerr.Newf(hedlerr.Syntax, lineNum,
					"unexpected content after closing quote in %q", s)
			}
			return sb.String(), nil
		case '\\':
			i++
			if i >= len(s) {
				return "", hedlerr.NewSyntax("unterminated escape in quoted string", lineNum)
			}
			switch s[i] {
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			case '/':
				sb.WriteByte('/')
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case 'u':
				if i+4 >= len(s) {
					return "", hedlerr.NewSyntax("truncated \\u escape in quoted string", lineNum)
				}
				code, err := strconv.ParseUint(s[i+1:i+5], 16, 32)
				if err != nil {
					return "", hedlerr.Newf(hedlerr.Syntax, lineNum,
						"invalid \\u escape %q", s[i-1:i+5])
				}
				sb.WriteRune(rune(code))
				i += 4
			default:
				return "", hedlerr.Newf(hedlerr.Syntax, lineNum,
					"unknown escape \\%c in quoted string", s[i])
			}
			i++
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return "", hedlerr.NewSyntax("unclosed quoted string", lineNum)
}
