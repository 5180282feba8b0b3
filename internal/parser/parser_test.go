package parser

import (
	"strings"
	"testing"
	"time"

	hedlerr "github.com/hedl-dev/hedl/internal/errors"
	"github.com/hedl-dev/hedl/pkg/document"
)

func mustParse(t *testing.T, input string) *document.Document {
	t.Helper()
	doc, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return doc
}

func expectKind(t *testing.T, err error, want hedlerr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	kind, ok := hedlerr.KindOf(err)
	if !ok {
		t.Fatalf("expected HEDL error, got %T: %v", err, err)
	}
	if kind != want {
		t.Fatalf("kind wrong. expected=%v, got=%v (%v)", want, kind, err)
	}
}

func TestParseMinimalDocument(t *testing.T) {
	doc := mustParse(t, "%VERSION: 1.0\n---\n")
	if doc.VersionMajor != 1 || doc.VersionMinor != 0 {
		t.Errorf("version wrong: %d.%d", doc.VersionMajor, doc.VersionMinor)
	}
	if len(doc.Structs) != 0 || len(doc.Nests) != 0 || len(doc.Aliases) != 0 {
		t.Error("prelude maps should be empty")
	}
	if doc.Root.Len() != 0 {
		t.Errorf("root should be empty, got %d items", doc.Root.Len())
	}
}

func TestParseMatrixListWithDitto(t *testing.T) {
	input := `%VERSION: 1.0
%STRUCT: User: [id, role, city]
---
users: @User
  | alice, engineer, NYC
  | bob, ^, ^
`
	doc := mustParse(t, input)

	item, ok := doc.Root.Get("users")
	if !ok {
		t.Fatal("missing users list")
	}
	list := item.(*document.MatrixList)
	if len(list.Rows) != 2 {
		t.Fatalf("row count wrong. expected=2, got=%d", len(list.Rows))
	}

	bob := list.Rows[1]
	if bob.ID != "bob" {
		t.Errorf("id wrong. expected=%q, got=%q", "bob", bob.ID)
	}
	if role, _ := bob.Fields[1].AsString(); role != "engineer" {
		t.Errorf("role wrong. expected=%q, got=%q", "engineer", role)
	}
	if city, _ := bob.Fields[2].AsString(); city != "NYC" {
		t.Errorf("city wrong. expected=%q, got=%q", "NYC", city)
	}
}

func TestParseQualifiedReference(t *testing.T) {
	input := `%VERSION: 1.0
%STRUCT: User: [id, name]
%STRUCT: Post: [id, author]
---
users: @User
  | alice, Alice
posts: @Post
  | p1, @User:alice
`
	doc := mustParse(t, input)

	posts := itemList(t, doc, "posts")
	ref, ok := posts.Rows[0].Fields[1].AsReference()
	if !ok {
		t.Fatalf("expected reference, got %v", posts.Rows[0].Fields[1].Kind())
	}
	if ref.TypeName != "User" || ref.ID != "alice" {
		t.Errorf("reference wrong: %+v", ref)
	}
}

func TestParseLocalReferenceRewrittenToQualified(t *testing.T) {
	input := `%VERSION: 1.0
%STRUCT: User: [id, name]
%STRUCT: Post: [id, author]
---
users: @User
  | alice, Alice
posts: @Post
  | p1, @alice
`
	doc := mustParse(t, input)
	ref, _ := itemList(t, doc, "posts").Rows[0].Fields[1].AsReference()
	if ref.TypeName != "User" {
		t.Errorf("local reference should resolve to qualified User, got %q", ref.TypeName)
	}
}

func TestParseDittoInIdentifierColumn(t *testing.T) {
	input := `%VERSION: 1.0
%STRUCT: User: [id, role]
---
users: @User
  | alice, engineer
  | ^, designer
`
	_, err := Parse(input)
	expectKind(t, err, hedlerr.Semantic)
}

func TestParseDittoInFirstRow(t *testing.T) {
	input := `%VERSION: 1.0
%STRUCT: User: [id, role]
---
users: @User
  | alice, ^
`
	_, err := Parse(input)
	expectKind(t, err, hedlerr.Semantic)
}

func TestParseDuplicateIdentifier(t *testing.T) {
	input := `%VERSION: 1.0
%STRUCT: User: [id, role]
---
users: @User
  | alice, engineer
  | alice, designer
`
	_, err := Parse(input)
	expectKind(t, err, hedlerr.Collision)
	if !strings.Contains(err.Error(), "line 5") {
		t.Errorf("collision should cite the first definition line, got: %v", err)
	}
}

func TestParseSameIdentifierAcrossTypes(t *testing.T) {
	input := `%VERSION: 1.0
%STRUCT: User: [id, name]
%STRUCT: Post: [id, title]
---
users: @User
  | alice, Alice
posts: @Post
  | alice, "Hello world"
`
	doc := mustParse(t, input)
	if len(itemList(t, doc, "users").Rows) != 1 || len(itemList(t, doc, "posts").Rows) != 1 {
		t.Error("both rows should parse")
	}
}

func TestParseUnresolvedReferenceStrict(t *testing.T) {
	input := `%VERSION: 1.0
%STRUCT: Post: [id, author]
---
posts: @Post
  | p1, @ghost
`
	_, err := Parse(input)
	expectKind(t, err, hedlerr.Reference)
}

func TestParseUnresolvedReferenceLenient(t *testing.T) {
	input := `%VERSION: 1.0
%STRUCT: Post: [id, author]
---
posts: @Post
  | p1, @ghost
`
	opts := DefaultOptions()
	opts.StrictRefs = false
	res, err := ParseWithOptions(input, opts)
	if err != nil {
		t.Fatalf("lenient parse should succeed: %v", err)
	}
	if !itemList(t, res.Doc, "posts").Rows[0].Fields[1].IsNull() {
		t.Error("unresolved reference should become null")
	}
	if len(res.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %d", len(res.Warnings))
	}
}

func TestParseAmbiguousLocalReference(t *testing.T) {
	input := `%VERSION: 1.0
%STRUCT: User: [id, name]
%STRUCT: Admin: [id, name]
%STRUCT: Post: [id, author]
---
users: @User
  | sam, Sam
admins: @Admin
  | sam, Sam
posts: @Post
  | p1, @sam
`
	_, err := Parse(input)
	expectKind(t, err, hedlerr.Reference)
	if !strings.Contains(err.Error(), "Admin") || !strings.Contains(err.Error(), "User") {
		t.Errorf("ambiguity error should cite candidate types, got: %v", err)
	}
}

func TestParseListSizeLimit(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("%VERSION: 1.0\n%STRUCT: Item: [id]\n---\nitems: @Item\n")
	for i := 0; i < 5; i++ {
		sb.WriteString("  | item")
		sb.WriteByte(byte('0' + i))
		sb.WriteString("\n")
	}

	opts := DefaultOptions()
	opts.Limits.MaxListSize = 4
	_, err := ParseWithOptions(sb.String(), opts)
	expectKind(t, err, hedlerr.Security)
	if !strings.Contains(err.Error(), "5") || !strings.Contains(err.Error(), "4") {
		t.Errorf("limit error should cite count and limit, got: %v", err)
	}
}

func TestParseShapeMismatch(t *testing.T) {
	input := `%VERSION: 1.0
%STRUCT: User: [id, role, city]
---
users: @User
  | alice, engineer
`
	_, err := Parse(input)
	expectKind(t, err, hedlerr.Shape)
}

func TestParseOrphanRow(t *testing.T) {
	input := `%VERSION: 1.0
---
| stray, row
`
	_, err := Parse(input)
	expectKind(t, err, hedlerr.OrphanRow)
}

func TestParseNestedRows(t *testing.T) {
	input := `%VERSION: 1.0
%STRUCT: Order: [id, total]
%STRUCT: Line: [id, sku]
%NEST: Order > Line
---
orders: @Order
  | o1, 10.5
    | l1, SKU-1
    | l2, SKU-2
  | o2, 3.0
`
	doc := mustParse(t, input)
	orders := itemList(t, doc, "orders")
	if len(orders.Rows) != 2 {
		t.Fatalf("order count wrong. expected=2, got=%d", len(orders.Rows))
	}
	lines := orders.Rows[0].Children["Line"]
	if len(lines) != 2 {
		t.Fatalf("child count wrong. expected=2, got=%d", len(lines))
	}
	if lines[1].ID != "l2" {
		t.Errorf("child id wrong. expected=%q, got=%q", "l2", lines[1].ID)
	}
	if len(orders.Rows[1].Children) != 0 {
		t.Error("o2 should have no children")
	}
}

func TestParseChildRowWithoutNestRule(t *testing.T) {
	input := `%VERSION: 1.0
%STRUCT: Order: [id, total]
---
orders: @Order
  | o1, 10.5
    | l1, SKU-1
`
	_, err := Parse(input)
	expectKind(t, err, hedlerr.OrphanRow)
}

func TestParseAliasSubstitution(t *testing.T) {
	input := `%VERSION: 1.0
%STRUCT: User: [id, city]
%ALIAS: hq = NYC
---
users: @User
  | alice, %hq
`
	doc := mustParse(t, input)
	city, _ := itemList(t, doc, "users").Rows[0].Fields[1].AsString()
	if city != "NYC" {
		t.Errorf("alias substitution wrong. expected=%q, got=%q", "NYC", city)
	}
}

func TestParseUnknownAlias(t *testing.T) {
	input := `%VERSION: 1.0
%STRUCT: User: [id, city]
---
users: @User
  | alice, %nowhere
`
	_, err := Parse(input)
	expectKind(t, err, hedlerr.Alias)
}

func TestParseRootOrderPreserved(t *testing.T) {
	input := `%VERSION: 1.0
---
zebra: 1
apple: 2
mango: 3
`
	doc := mustParse(t, input)
	want := []string{"zebra", "apple", "mango"}
	keys := doc.Root.Keys()
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("keys[%d] wrong. expected=%q, got=%q", i, k, keys[i])
		}
	}
}

func TestParseObjectsAndScalars(t *testing.T) {
	input := `%VERSION: 1.0
---
title: Hello HEDL
count: 42
ratio: 0.5
flag: true
nothing: ~
meta:
  author: someone
  nested:
    depth: 2
`
	doc := mustParse(t, input)

	if s, _ := itemScalar(t, doc, "title").AsString(); s != "Hello HEDL" {
		t.Errorf("title wrong: %q", s)
	}
	if n, _ := itemScalar(t, doc, "count").AsInt(); n != 42 {
		t.Errorf("count wrong: %d", n)
	}
	if f, _ := itemScalar(t, doc, "ratio").AsFloat(); f != 0.5 {
		t.Errorf("ratio wrong: %v", f)
	}
	if !itemScalar(t, doc, "nothing").IsNull() {
		t.Error("nothing should be null")
	}

	metaItem, _ := doc.Root.Get("meta")
	meta := metaItem.(*document.Object)
	nestedItem, ok := meta.Get("nested")
	if !ok {
		t.Fatal("missing nested object")
	}
	nested := nestedItem.(*document.Object)
	depthItem, _ := nested.Get("depth")
	if n, _ := depthItem.(*document.ScalarItem).Value.AsInt(); n != 2 {
		t.Errorf("depth wrong: %d", n)
	}
}

func TestParseBlockString(t *testing.T) {
	input := "%VERSION: 1.0\n---\ndescription: \"\"\"\nline one\n  line two\n\"\"\"\n"
	doc := mustParse(t, input)
	s, _ := itemScalar(t, doc, "description").AsString()
	want := "line one\n  line two\n"
	if s != want {
		t.Errorf("block string wrong. expected=%q, got=%q", want, s)
	}
}

func TestParseTimeout(t *testing.T) {
	opts := DefaultOptions()
	opts.Limits.Timeout = time.Nanosecond
	_, err := ParseWithOptions("%VERSION: 1.0\n---\nkey: value\n", opts)
	expectKind(t, err, hedlerr.Security)
}

func TestParseLineLengthLimit(t *testing.T) {
	opts := DefaultOptions()
	opts.Limits.MaxLineLength = 10
	_, err := ParseWithOptions("%VERSION: 1.0\n---\n", opts)
	expectKind(t, err, hedlerr.Security)
}

func TestParseDeterminism(t *testing.T) {
	input := `%VERSION: 1.0
%STRUCT: User: [id, role]
---
users: @User
  | alice, engineer
  | bob, ^
`
	first := mustParse(t, input)
	second := mustParse(t, input)

	a := itemList(t, first, "users")
	b := itemList(t, second, "users")
	for i := range a.Rows {
		for j := range a.Rows[i].Fields {
			if !a.Rows[i].Fields[j].Equal(b.Rows[i].Fields[j]) {
				t.Fatalf("rows[%d].fields[%d] differ across runs", i, j)
			}
		}
	}
}

func itemList(t *testing.T, doc *document.Document, key string) *document.MatrixList {
	t.Helper()
	item, ok := doc.Root.Get(key)
	if !ok {
		t.Fatalf("missing root item %q", key)
	}
	list, ok := item.(*document.MatrixList)
	if !ok {
		t.Fatalf("root item %q is not a list: %T", key, item)
	}
	return list
}

func itemScalar(t *testing.T, doc *document.Document, key string) document.Value {
	t.Helper()
	item, ok := doc.Root.Get(key)
	if !ok {
		t.Fatalf("missing root item %q", key)
	}
	scalar, ok := item.(*document.ScalarItem)
	if !ok {
		t.Fatalf("root item %q is not a scalar: %T", key, item)
	}
	return scalar.Value
}
