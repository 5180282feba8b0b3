package parser

import (
	"strconv"
	"strings"

	hedlerr "github.com/hedl-dev/hedl/internal/errors"
	"github.com/hedl-dev/hedl/internal/lexer"
	"github.com/hedl-dev/hedl/pkg/document"
)

// prelude holds the directive state gathered before the --- delimiter.
type prelude struct {
	doc *document.Document
	// countHints carries the optional (N) from %STRUCT lines, by type.
	countHints map[string]int
}

// parsePrelude consumes directive lines up to and including the ---
// delimiter, returning the index of the first body line. The version
// directive is mandatory and must come first; every other directive may
// appear in any order, at most once per key.
func (p *parser) parsePrelude() (*prelude, int, error) {
	pre := &prelude{countHints: map[string]int{}}
	sawVersion := false

	for i := 0; i < len(p.lines); i++ {
		lineNum := i + 1
		if err := p.checkDeadline(lineNum); err != nil {
			return nil, 0, err
		}
		line := lexer.StripComment(p.lines[i])
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if trimmed == "---" {
			if !sawVersion {
				return nil, 0, hedlerr.NewVersion("missing %VERSION directive", lineNum)
			}
			return pre, i + 1, nil
		}

		if !strings.HasPrefix(trimmed, "%") {
			return nil, 0, hedlerr.Newf(hedlerr.Syntax, lineNum,
				"unexpected content before --- delimiter: %q", trimmed)
		}

		name, rest, _ := strings.Cut(trimmed, ":")
		rest = strings.TrimSpace(rest)

		if !sawVersion && name != "%VERSION" {
			return nil, 0, hedlerr.NewVersion("%VERSION must be the first directive", lineNum)
		}

		var err error
		switch name {
		case "%VERSION":
			if sawVersion {
				return nil, 0, hedlerr.NewVersion("duplicate %VERSION directive", lineNum)
			}
			err = pre.parseVersion(rest, lineNum)
			sawVersion = true
		case "%STRUCT":
			err = pre.parseStruct(rest, lineNum)
		case "%NEST":
			err = pre.parseNest(rest, lineNum)
		case "%ALIAS":
			err = pre.parseAlias(rest, lineNum)
		default:
			err = hedlerr.Newf(hedlerr.Syntax, lineNum, "unknown directive %s", name)
		}
		if err != nil {
			return nil, 0, err
		}
	}

	return nil, 0, hedlerr.NewSyntax("missing --- delimiter", len(p.lines))
}

func (pre *prelude) parseVersion(rest string, lineNum int) error {
	majorStr, minorStr, ok := strings.Cut(rest, ".")
	if !ok {
		return hedlerr.Newf(hedlerr.Version, lineNum, "malformed version %q", rest)
	}
	major, err1 := strconv.Atoi(strings.TrimSpace(majorStr))
	minor, err2 := strconv.Atoi(strings.TrimSpace(minorStr))
	if err1 != nil || err2 != nil || major < 0 || minor < 0 {
		return hedlerr.Newf(hedlerr.Version, lineNum, "malformed version %q", rest)
	}
	pre.doc = document.New(major, minor)
	return nil
}

// parseStruct handles "%STRUCT: TypeName: [a, b]" and the counted form
// "%STRUCT: TypeName (3): [a, b]". The count is an informational row hint.
func (pre *prelude) parseStruct(rest string, lineNum int) error {
	head, cols, ok := strings.Cut(rest, ":")
	if !ok {
		return hedlerr.Newf(hedlerr.Schema, lineNum, "malformed %%STRUCT directive: %q", rest)
	}

	typeName := strings.TrimSpace(head)
	if open := strings.Index(typeName, "("); open >= 0 {
		countPart := strings.TrimSpace(typeName[open:])
		if !strings.HasPrefix(countPart, "(") || !strings.HasSuffix(countPart, ")") {
			return hedlerr.Newf(hedlerr.Schema, lineNum, "malformed count in %%STRUCT: %q", rest)
		}
		count, err := strconv.Atoi(strings.TrimSpace(countPart[1 : len(countPart)-1]))
		if err != nil || count < 0 {
			return hedlerr.Newf(hedlerr.Schema, lineNum, "malformed count in %%STRUCT: %q", rest)
		}
		typeName = strings.TrimSpace(typeName[:open])
		pre.countHints[typeName] = count
	}

	if !lexer.IsValidTypeName(typeName) {
		return hedlerr.Newf(hedlerr.Schema, lineNum, "invalid type name %q", typeName)
	}
	if _, dup := pre.doc.Structs[typeName]; dup {
		return hedlerr.Newf(hedlerr.Schema, lineNum, "duplicate %%STRUCT for type %s", typeName)
	}

	cols = strings.TrimSpace(cols)
	if !strings.HasPrefix(cols, "[") || !strings.HasSuffix(cols, "]") {
		return hedlerr.Newf(hedlerr.Schema, lineNum, "malformed column list %q", cols)
	}
	var schema []string
	for _, col := range strings.Split(cols[1:len(cols)-1], ",") {
		col = strings.TrimSpace(col)
		if !lexer.IsValidKeyToken(col) {
			return hedlerr.Newf(hedlerr.Schema, lineNum, "invalid column name %q", col)
		}
		schema = append(schema, col)
	}
	if len(schema) == 0 {
		return hedlerr.Newf(hedlerr.Schema, lineNum, "empty column list for type %s", typeName)
	}

	pre.doc.Structs[typeName] = schema
	return nil
}

func (pre *prelude) parseNest(rest string, lineNum int) error {
	parent, child, ok := strings.Cut(rest, ">")
	if !ok {
		return hedlerr.Newf(hedlerr.Schema, lineNum, "malformed %%NEST directive: %q", rest)
	}
	parent = strings.TrimSpace(parent)
	child = strings.TrimSpace(child)
	if !lexer.IsValidTypeName(parent) || !lexer.IsValidTypeName(child) {
		return hedlerr.Newf(hedlerr.Schema, lineNum, "invalid %%NEST types %q > %q", parent, child)
	}
	if _, dup := pre.doc.Nests[parent]; dup {
		return hedlerr.Newf(hedlerr.Schema, lineNum, "duplicate %%NEST for parent %s", parent)
	}
	pre.doc.Nests[parent] = child
	return nil
}

func (pre *prelude) parseAlias(rest string, lineNum int) error {
	name, value, ok := strings.Cut(rest, "=")
	if !ok {
		return hedlerr.Newf(hedlerr.Alias, lineNum, "malformed %%ALIAS directive: %q", rest)
	}
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if !lexer.IsValidKeyToken(name) {
		return hedlerr.Newf(hedlerr.Alias, lineNum, "invalid alias name %q", name)
	}
	if _, dup := pre.doc.Aliases[name]; dup {
		return hedlerr.Newf(hedlerr.Alias, lineNum, "duplicate %%ALIAS %s", name)
	}
	if value == "" {
		return hedlerr.Newf(hedlerr.Alias, lineNum, "empty value for alias %s", name)
	}
	pre.doc.Aliases[name] = value
	return nil
}
