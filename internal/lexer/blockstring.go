package lexer

import (
	"strings"

	hedlerr "github.com/hedl-dev/hedl/internal/errors"
)

// BlockStringState accumulates the lines of a multi-line block string opened
// by a `key: """` line. Content between the delimiters is preserved as-is,
// including leading whitespace, so callers feed raw lines (not indent
// stripped ones).
type BlockStringState struct {
	// Key is the object key the completed string will be stored under.
	Key string
	// StartLine is the line number of the opening delimiter.
	StartLine int
	// Indent is the indent level of the opening line.
	Indent int

	lines []string
	total int
}

// TryStartBlockString checks whether a line's content (indent already
// stripped) opens a block string. It returns the key when the value part is
// exactly the opening delimiter.
func TryStartBlockString(content string) (string, bool) {
	key, value, ok := strings.Cut(content, ":")
	if !ok {
		return "", false
	}
	if strings.TrimSpace(value) != `"""` {
		return "", false
	}
	return strings.TrimSpace(key), true
}

// NewBlockStringState starts accumulating a block string for key.
func NewBlockStringState(key string, startLine, indent int) *BlockStringState {
	return &BlockStringState{Key: key, StartLine: startLine, Indent: indent}
}

// ProcessLine consumes one raw source line. When the closing delimiter is
// found it returns done=true and the full content; otherwise it accumulates
// the line. The cumulative size is checked against MaxBlockStringBytes.
func (b *BlockStringState) ProcessLine(line string, lineNum int, limits Limits) (bool, string, error) {
	if end := strings.Index(line, `"""`); end >= 0 {
		before := line[:end]
		if err := b.grow(len(before), lineNum, limits); err != nil {
			return false, "", err
		}
		b.lines = append(b.lines, before)

		after := strings.TrimSpace(line[end+3:])
		if after != "" && !strings.HasPrefix(after, "#") {
			return false, "", hedlerr.NewSyntax(`unexpected content after closing """`, lineNum)
		}
		return true, strings.Join(b.lines, "\n"), nil
	}

	if err := b.grow(len(line)+1, lineNum, limits); err != nil {
		return false, "", err
	}
	b.lines = append(b.lines, line)
	return false, "", nil
}

func (b *BlockStringState) grow(n, lineNum int, limits Limits) error {
	b.total += n
	if b.total > limits.MaxBlockStringBytes {
		return hedlerr.Newf(hedlerr.Security, lineNum,
			"block string size %d exceeds limit %d", b.total, limits.MaxBlockStringBytes)
	}
	return nil
}
