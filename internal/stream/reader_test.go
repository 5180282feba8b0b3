package stream

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hedlerr "github.com/hedl-dev/hedl/internal/errors"
	"github.com/hedl-dev/hedl/internal/parser"
	"github.com/hedl-dev/hedl/pkg/document"
)

func buildManyLists(n int) string {
	var sb strings.Builder
	sb.WriteString("%VERSION: 1.0\n%STRUCT: Item: [id, rank]\n---\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "list%03d: @Item\n  | item%03d, %d\n", i, i, i)
	}
	return sb.String()
}

func TestStreamPagination(t *testing.T) {
	r, err := NewReader(strings.NewReader(buildManyLists(100)))
	require.NoError(t, err)

	var keys []string
	for i := 0; i < 10; i++ {
		require.True(t, r.Scan(), "scan %d should succeed", i)
		keys = append(keys, r.Key())
	}
	assert.Equal(t, "list000", keys[0])
	assert.Equal(t, "list009", keys[9])

	// The 11th advance yields the 11th item.
	require.True(t, r.Scan())
	assert.Equal(t, "list010", r.Key())

	// Drain to position 100; the next call reports end of input.
	count := 11
	for r.Scan() {
		count++
	}
	assert.Equal(t, 100, count)
	assert.NoError(t, r.Err())
	assert.False(t, r.Scan())
}

func TestStreamItemContent(t *testing.T) {
	input := `%VERSION: 1.0
%STRUCT: User: [id, role]
---
users: @User
  | alice, engineer
  | bob, ^
title: demo
`
	r, err := NewReader(strings.NewReader(input))
	require.NoError(t, err)

	require.True(t, r.Scan())
	assert.Equal(t, "users", r.Key())
	list, ok := r.Item().(*document.MatrixList)
	require.True(t, ok)
	require.Len(t, list.Rows, 2)
	role, _ := list.Rows[1].Fields[1].AsString()
	assert.Equal(t, "engineer", role, "ditto should expand in streamed rows")

	require.True(t, r.Scan())
	assert.Equal(t, "title", r.Key())
	scalar, ok := r.Item().(*document.ScalarItem)
	require.True(t, ok)
	s, _ := scalar.Value.AsString()
	assert.Equal(t, "demo", s)

	assert.False(t, r.Scan())
	assert.NoError(t, r.Err())
}

func TestStreamPreludeState(t *testing.T) {
	input := `%VERSION: 2.3
%STRUCT: User: [id, name]
%ALIAS: hq = NYC
---
`
	r, err := NewReader(strings.NewReader(input))
	require.NoError(t, err)

	doc := r.Document()
	assert.Equal(t, 2, doc.VersionMajor)
	assert.Equal(t, 3, doc.VersionMinor)
	assert.Equal(t, []string{"id", "name"}, doc.Structs["User"])
	assert.Equal(t, "NYC", doc.Aliases["hq"])

	assert.False(t, r.Scan())
	assert.NoError(t, r.Err())
}

func TestStreamTypeFilter(t *testing.T) {
	input := `%VERSION: 1.0
%STRUCT: User: [id]
%STRUCT: Post: [id]
---
users: @User
  | alice
posts: @Post
  | p1
admins: @User
  | root
note: skipped
`
	r, err := NewReader(strings.NewReader(input), WithTypeFilter("User"))
	require.NoError(t, err)

	var keys []string
	for r.Scan() {
		keys = append(keys, r.Key())
	}
	require.NoError(t, r.Err())
	assert.Equal(t, []string{"users", "admins"}, keys)
}

func TestStreamErrorLineNumbers(t *testing.T) {
	input := `%VERSION: 1.0
%STRUCT: User: [id, role]
---
users: @User
  | alice, engineer
bad: @User
  | alice, oops, extra
`
	r, err := NewReader(strings.NewReader(input))
	require.NoError(t, err)

	require.True(t, r.Scan()) // users
	assert.False(t, r.Scan()) // bad list fails

	require.Error(t, r.Err())
	he, ok := r.Err().(*hedlerr.Error)
	require.True(t, ok)
	assert.Equal(t, 7, he.Line, "error should cite the source line")
}

func TestStreamTimeout(t *testing.T) {
	opts := parser.DefaultOptions()
	opts.Limits.Timeout = 20 * time.Millisecond

	r, err := NewReader(strings.NewReader(buildManyLists(3)), WithParseOptions(opts))
	require.NoError(t, err)

	// Let the deadline expire; the next newline boundary reports it.
	time.Sleep(40 * time.Millisecond)
	assert.False(t, r.Scan())
	require.Error(t, r.Err())
	kind, ok := hedlerr.KindOf(r.Err())
	require.True(t, ok)
	assert.Equal(t, hedlerr.Security, kind)

	// Further calls keep reporting end of stream.
	assert.False(t, r.Scan())
}
