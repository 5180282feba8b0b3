// Package stream implements the incremental HEDL reader. It parses the
// prelude eagerly (schemas, nests, and aliases apply to every row), then
// yields top-level items one at a time without materializing the full
// document. Memory use is bounded by the prelude state plus the largest
// single top-level item.
package stream

import (
	"bufio"
	"io"
	"strings"
	"time"

	hedlerr "github.com/hedl-dev/hedl/internal/errors"
	"github.com/hedl-dev/hedl/internal/parser"
	"github.com/hedl-dev/hedl/pkg/document"
)

// Reader yields (key, item) pairs in insertion order, bufio.Scanner style:
//
//	r, err := stream.NewReader(src)
//	for r.Scan() {
//	    use(r.Key(), r.Item())
//	}
//	err = r.Err()
//
// References inside streamed items resolve only against rows of the same
// item; cross-item references are left lenient (nulled), as the registry
// for items not yet read cannot exist. The Reader does not expose the
// resulting warnings.
type Reader struct {
	br   *bufio.Reader
	opts parser.Options

	preludeText  string
	preludeLines int
	doc          *document.Document

	typeFilter string
	deadline   time.Time

	lineNum  int
	lookback *string // one pushed-back line
	key      string
	item     document.Item
	err      error
	done     bool
}

// Option configures a Reader.
type Option func(*Reader)

// WithParseOptions sets the parse options (limits, partial mode). Strict
// reference resolution is forced off; see the Reader doc.
func WithParseOptions(opts parser.Options) Option {
	return func(r *Reader) { r.opts = opts }
}

// WithTypeFilter makes Scan skip every top-level item that is not a matrix
// list of the given type.
func WithTypeFilter(typeName string) Option {
	return func(r *Reader) { r.typeFilter = typeName }
}

// NewReader wraps src and parses the prelude eagerly. The reader is not
// restartable once advanced unless src is seekable and re-wrapped.
func NewReader(src io.Reader, options ...Option) (*Reader, error) {
	r := &Reader{br: bufio.NewReader(src), opts: parser.DefaultOptions()}
	for _, opt := range options {
		opt(r)
	}
	r.opts.StrictRefs = false
	if r.opts.Limits.Timeout > 0 {
		r.deadline = time.Now().Add(r.opts.Limits.Timeout)
	}

	if err := r.readPrelude(); err != nil {
		return nil, err
	}
	return r, nil
}

// Document returns the prelude state: version, schemas, nests, and aliases.
// Its root stays empty.
func (r *Reader) Document() *document.Document {
	return r.doc
}

// readPrelude accumulates lines up to and including the --- delimiter and
// parses them with the batch parser.
func (r *Reader) readPrelude() error {
	var sb strings.Builder
	for {
		line, eof, err := r.readLine()
		if err != nil {
			return err
		}
		sb.WriteString(line)
		sb.WriteString("\n")
		if strings.TrimSpace(line) == "---" {
			break
		}
		if eof {
			return hedlerr.NewSyntax("missing --- delimiter", r.lineNum)
		}
	}

	r.preludeText = sb.String()
	r.preludeLines = r.lineNum

	res, err := parser.ParseWithOptions(r.preludeText, r.opts)
	if err != nil {
		return err
	}
	r.doc = res.Doc
	return nil
}

// Scan advances to the next top-level item. It returns false at end of
// input or on error; Err distinguishes the two.
func (r *Reader) Scan() bool {
	for {
		ok := r.scanOne()
		if !ok {
			return false
		}
		if r.typeFilter != "" {
			list, isList := r.item.(*document.MatrixList)
			if !isList || list.TypeName != r.typeFilter {
				continue
			}
		}
		return true
	}
}

func (r *Reader) scanOne() bool {
	if r.done || r.err != nil {
		return false
	}

	chunk, startLine, ok := r.nextChunk()
	if !ok {
		return false
	}

	// Re-parse prelude + padding + chunk so error line numbers match the
	// source; the padding lines are blank and skipped by the body parser.
	pad := startLine - r.preludeLines - 1
	if pad < 0 {
		pad = 0
	}
	input := r.preludeText + strings.Repeat("\n", pad) + chunk

	res, err := parser.ParseWithOptions(input, r.opts)
	if err != nil {
		r.err = err
		return false
	}
	keys := res.Doc.Root.Keys()
	if len(keys) == 0 {
		return r.scanOne()
	}
	r.key = keys[0]
	r.item, _ = res.Doc.Root.Get(keys[0])
	return true
}

// nextChunk collects the lines of one top-level item: an indent-0 line plus
// every following line until the next indent-0 line, which is pushed back.
func (r *Reader) nextChunk() (string, int, bool) {
	var sb strings.Builder
	startLine := 0
	inItem := false

	for {
		line, eof, err := r.readLine()
		if err != nil {
			r.err = err
			return "", 0, false
		}
		if eof && line == "" && sb.Len() == 0 {
			r.done = true
			return "", 0, false
		}

		blank := strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimLeft(line, " "), "#")
		topLevel := !blank && !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t")

		switch {
		case !inItem && blank:
			// skip leading blanks
		case !inItem:
			inItem = true
			startLine = r.lineNum
			sb.WriteString(line)
			sb.WriteString("\n")
		case topLevel:
			r.pushBack(line)
			return sb.String(), startLine, true
		default:
			sb.WriteString(line)
			sb.WriteString("\n")
		}

		if eof {
			if !inItem {
				r.done = true
				return "", 0, false
			}
			r.done = true
			return sb.String(), startLine, true
		}
	}
}

func (r *Reader) pushBack(line string) {
	r.lookback = &line
	r.lineNum--
}

// readLine returns the next line without its terminator. The timeout is
// checked at each newline boundary; line length is bounded while reading so
// a single huge line cannot exhaust memory.
func (r *Reader) readLine() (string, bool, error) {
	if r.lookback != nil {
		line := *r.lookback
		r.lookback = nil
		r.lineNum++
		return line, false, nil
	}

	if !r.deadline.IsZero() && time.Now().After(r.deadline) {
		r.done = true
		return "", false, hedlerr.Newf(hedlerr.Security, r.lineNum+1,
			"stream timeout: exceeded limit of %s", r.opts.Limits.Timeout)
	}

	var sb strings.Builder
	for {
		frag, err := r.br.ReadSlice('\n')
		sb.Write(frag)
		if sb.Len() > r.opts.Limits.MaxLineLength {
			return "", false, hedlerr.Newf(hedlerr.Security, r.lineNum+1,
				"line length %d exceeds limit %d", sb.Len(), r.opts.Limits.MaxLineLength)
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err == io.EOF {
			r.lineNum++
			return strings.TrimSuffix(sb.String(), "\r"), true, nil
		}
		if err != nil {
			return "", false, hedlerr.NewIO(err.Error())
		}
		r.lineNum++
		line := strings.TrimSuffix(sb.String(), "\n")
		return strings.TrimSuffix(line, "\r"), false, nil
	}
}

// Key returns the key of the current item.
func (r *Reader) Key() string {
	return r.key
}

// Item returns the current item.
func (r *Reader) Item() document.Item {
	return r.item
}

// Err returns the first error encountered, nil at clean end of input.
func (r *Reader) Err() error {
	return r.err
}
