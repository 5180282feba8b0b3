package jsonconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/hedl-dev/hedl/internal/parser"
	"github.com/hedl-dev/hedl/pkg/document"
)

const blogInput = `%VERSION: 1.0
%STRUCT: User: [id, name, active]
%STRUCT: Post: [id, author, score]
---
users: @User
  | alice, Alice Smith, true
  | bob, Bob Jones, false
posts: @Post
  | p1, @User:alice, 4.5
title: demo
meta:
  topic: testing
`

func TestToJSON(t *testing.T) {
	doc, err := parser.Parse(blogInput)
	require.NoError(t, err)

	out, err := ToJSON(doc)
	require.NoError(t, err)
	require.True(t, gjson.Valid(out))

	assert.Equal(t, "alice", gjson.Get(out, "users.0.id").String())
	assert.Equal(t, "Alice Smith", gjson.Get(out, "users.0.name").String())
	assert.True(t, gjson.Get(out, "users.0.active").Bool())
	assert.False(t, gjson.Get(out, "users.1.active").Bool())
	assert.Equal(t, "@User:alice", gjson.Get(out, "posts.0.author").String())
	assert.Equal(t, 4.5, gjson.Get(out, "posts.0.score").Float())
	assert.Equal(t, "demo", gjson.Get(out, "title").String())
	assert.Equal(t, "testing", gjson.Get(out, "meta.topic").String())
}

func TestToJSONNestedChildren(t *testing.T) {
	input := `%VERSION: 1.0
%STRUCT: Order: [id, total]
%STRUCT: Line: [id, sku]
%NEST: Order > Line
---
orders: @Order
  | o1, 9.5
    | l1, SKU-1
    | l2, SKU-2
`
	doc, err := parser.Parse(input)
	require.NoError(t, err)

	out, err := ToJSON(doc)
	require.NoError(t, err)

	assert.Equal(t, int64(2), gjson.Get(out, "orders.0.Line.#").Int())
	assert.Equal(t, "SKU-2", gjson.Get(out, "orders.0.Line.1.sku").String())
}

func TestToJSONTensor(t *testing.T) {
	input := `%VERSION: 1.0
---
weights: [[1, 2], [3, 4]]
`
	doc, err := parser.Parse(input)
	require.NoError(t, err)

	out, err := ToJSON(doc)
	require.NoError(t, err)
	assert.Equal(t, float64(3), gjson.Get(out, "weights.1.0").Float())
}

func TestFromJSONEntityArrays(t *testing.T) {
	input := `{
		"users": [
			{"id": "alice", "name": "Alice", "age": 30},
			{"id": "bob", "name": "Bob", "age": 25}
		],
		"title": "demo"
	}`
	doc, err := FromJSON(input)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "age"}, doc.Structs["User"])

	item, ok := doc.Root.Get("users")
	require.True(t, ok)
	list := item.(*document.MatrixList)
	require.Len(t, list.Rows, 2)
	assert.Equal(t, "User", list.TypeName)
	assert.Equal(t, "alice", list.Rows[0].ID)
	age, _ := list.Rows[1].Fields[2].AsInt()
	assert.Equal(t, int64(25), age)
}

func TestFromJSONScalarTypes(t *testing.T) {
	input := `{"n": 42, "f": 2.5, "b": true, "s": "text", "z": null}`
	doc, err := FromJSON(input)
	require.NoError(t, err)
	require.Equal(t, 5, doc.Root.Len())

	scalar := func(key string) document.Value {
		item, ok := doc.Root.Get(key)
		require.True(t, ok)
		return item.(*document.ScalarItem).Value
	}
	n, _ := scalar("n").AsInt()
	assert.Equal(t, int64(42), n)
	f, _ := scalar("f").AsFloat()
	assert.Equal(t, 2.5, f)
	b, _ := scalar("b").AsBool()
	assert.True(t, b)
	s, _ := scalar("s").AsString()
	assert.Equal(t, "text", s)
	assert.True(t, scalar("z").IsNull())
}

func TestFromJSONRejectsNonObject(t *testing.T) {
	_, err := FromJSON(`[1, 2, 3]`)
	require.Error(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	doc, err := parser.Parse(blogInput)
	require.NoError(t, err)

	out, err := ToJSON(doc)
	require.NoError(t, err)

	restored, err := FromJSON(out)
	require.NoError(t, err)

	origUsers, _ := doc.Root.Get("users")
	restUsers, ok := restored.Root.Get("users")
	require.True(t, ok)

	ol := origUsers.(*document.MatrixList)
	rl := restUsers.(*document.MatrixList)
	require.Len(t, rl.Rows, len(ol.Rows))
	for i := range ol.Rows {
		assert.Equal(t, ol.Rows[i].ID, rl.Rows[i].ID)
		name1, _ := ol.Rows[i].Fields[1].AsString()
		name2, _ := rl.Rows[i].Fields[1].AsString()
		assert.Equal(t, name1, name2)
	}
}
