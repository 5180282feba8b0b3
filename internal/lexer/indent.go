package lexer

import (
	hedlerr "github.com/hedl-dev/hedl/internal/errors"
)

// IndentInfo describes a line's indentation.
type IndentInfo struct {
	// Spaces is the number of leading space characters.
	Spaces int
	// Level is the indentation level, Spaces / 2.
	Level int
}

// CalculateIndent computes the indentation of a line. It returns (nil, nil)
// for a blank line (one composed only of whitespace; tabs are permitted
// there). Tabs elsewhere in indentation and odd space counts are rejected.
func CalculateIndent(line string, lineNum int) (*IndentInfo, error) {
	spaces := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ':
			spaces++
			continue
		case '\t':
			if isBlankFrom(line, spaces) {
				return nil, nil
			}
			return nil, hedlerr.NewSyntax("tab character in indentation", lineNum).WithColumn(spaces + 1)
		}
		break
	}

	if isBlankFrom(line, spaces) {
		return nil, nil
	}

	if spaces%2 != 0 {
		return nil, hedlerr.Newf(hedlerr.Syntax, lineNum,
			"invalid indentation: %d spaces (must be a multiple of 2)", spaces).WithColumn(1)
	}

	return &IndentInfo{Spaces: spaces, Level: spaces / 2}, nil
}

// ValidateIndent rejects indentation deeper than maxDepth levels.
func ValidateIndent(info *IndentInfo, maxDepth, lineNum int) error {
	if info.Level > maxDepth {
		return hedlerr.Newf(hedlerr.Security, lineNum,
			"indent depth %d exceeds limit %d", info.Level, maxDepth).WithColumn(1)
	}
	return nil
}

func isBlankFrom(line string, start int) bool {
	for i := start; i < len(line); i++ {
		switch line[i] {
		case ' ', '\t', '\r', '\n', '\v', '\f':
		default:
			return false
		}
	}
	return true
}
