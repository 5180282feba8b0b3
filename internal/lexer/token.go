package lexer

import (
	"strings"

	hedlerr "github.com/hedl-dev/hedl/internal/errors"
	"github.com/hedl-dev/hedl/pkg/document"
)

// IsValidKeyToken reports whether s matches [a-z_][a-z0-9_]*. Key tokens are
// the lowercase snake_case identifiers used for field and root keys.
func IsValidKeyToken(s string) bool {
	if len(s) == 0 {
		return false
	}
	c := s[0]
	if !(c >= 'a' && c <= 'z') && c != '_' {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' {
			continue
		}
		return false
	}
	return true
}

// IsValidTypeName reports whether s matches [A-Z][A-Za-z0-9]*. Type names
// are PascalCase.
func IsValidTypeName(s string) bool {
	if len(s) == 0 {
		return false
	}
	if !(s[0] >= 'A' && s[0] <= 'Z') {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			continue
		}
		return false
	}
	return true
}

// IsValidIDToken reports whether s matches [A-Za-z_][A-Za-z0-9_-]*. The
// grammar is intentionally permissive so SKU-style identifiers like
// "SKU-4020" are accepted.
func IsValidIDToken(s string) bool {
	if len(s) == 0 {
		return false
	}
	c := s[0]
	if !isASCIIAlpha(c) && c != '_' {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if isASCIIAlpha(c) || (c >= '0' && c <= '9') || c == '_' || c == '-' {
			continue
		}
		return false
	}
	return true
}

func isASCIIAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// ParseReference parses a reference token, with or without the leading @.
// Accepted forms are "Type:id" (qualified) and "id" (local).
func ParseReference(s string, lineNum int) (*document.Reference, error) {
	body := strings.TrimPrefix(s, "@")
	if body == "" {
		return nil, hedlerr.NewSyntax("invalid reference: empty", lineNum)
	}

	if typeName, id, ok := strings.Cut(body, ":"); ok {
		if !IsValidTypeName(typeName) {
			return nil, hedlerr.Newf(hedlerr.Syntax, lineNum,
				"invalid reference %q: bad type name %q", s, typeName)
		}
		if !IsValidIDToken(id) {
			return nil, hedlerr.Newf(hedlerr.Syntax, lineNum,
				"invalid reference %q: bad id %q", s, id)
		}
		return document.QualifiedRef(typeName, id), nil
	}

	if !IsValidIDToken(body) {
		return nil, hedlerr.Newf(hedlerr.Syntax, lineNum,
			"invalid reference %q: bad id %q", s, body)
	}
	return document.LocalRef(body), nil
}

// StripComment removes a full-line comment. A line whose first non-space
// character is '#' becomes empty; other lines pass through untouched, so
// unquoted strings may contain '#'.
func StripComment(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "#") {
		return ""
	}
	return line
}
