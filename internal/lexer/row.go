package lexer

import (
	"strings"

	hedlerr "github.com/hedl-dev/hedl/internal/errors"
)

// SplitRowFields splits the text after a row's leading '|' into raw field
// strings. Quoted fields keep their quotes for the scalar scanner. One
// optional space is ignored after the '|' and after each comma; quoted
// fields may contain commas; an unquoted field that starts with '[' or "$("
// (a tensor or expression) keeps the commas inside its brackets; trailing
// commas are rejected; an unescaped interior quote in an unquoted field is
// rejected.
func SplitRowFields(content string, lineNum int, limits Limits) ([]string, error) {
	var fields []string
	rest := content
	if strings.HasPrefix(rest, " ") {
		rest = rest[1:]
	}

	if strings.TrimSpace(rest) == "" {
		return nil, hedlerr.NewSyntax("empty row", lineNum)
	}

	for {
		field, remainder, err := scanRowField(rest, lineNum)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
		if len(fields) > limits.MaxFieldCount {
			return nil, hedlerr.Newf(hedlerr.Security, lineNum,
				"field count %d exceeds limit %d", len(fields), limits.MaxFieldCount)
		}
		if remainder == "" {
			return fields, nil
		}
		// remainder starts with the separating comma.
		rest = remainder[1:]
		if strings.HasPrefix(rest, " ") {
			rest = rest[1:]
		}
		if rest == "" {
			return nil, hedlerr.NewSyntax("trailing comma in row", lineNum)
		}
	}
}

// scanRowField consumes one field and returns it along with the unconsumed
// remainder ("" or a string starting with ',').
func scanRowField(s string, lineNum int) (string, string, error) {
	if strings.HasPrefix(s, "\"") {
		i := 1
		for i < len(s) {
			switch s[i] {
			case '\\':
				i += 2
				continue
			case '"':
				// Closing quote; only a comma or end may follow.
				end := i + 1
				if end < len(s) && s[end] != ',' {
					return "", "", hedlerr.Newf(hedlerr.Syntax, lineNum,
						"unexpected content after closing quote in field %q", s)
				}
				return s[:end], s[end:], nil
			}
			i++
		}
		return "", "", hedlerr.NewSyntax("unclosed quote in row field", lineNum)
	}

	nested := strings.HasPrefix(s, "[") || strings.HasPrefix(s, "$(")
	depth := 0
	comma := -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '(':
			if nested {
				depth++
			}
		case ']', ')':
			if nested && depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				comma = i
			}
		case '"':
			return "", "", hedlerr.Newf(hedlerr.Syntax, lineNum,
				"unescaped quote inside unquoted field %q", s)
		}
		if comma >= 0 {
			break
		}
	}
	if comma < 0 {
		return s, "", nil
	}
	return s[:comma], s[comma:], nil
}
