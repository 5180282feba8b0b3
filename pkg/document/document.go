// Package document defines the HEDL in-memory document model: a typed
// entity graph with type-scoped identifiers, matrix lists of rows, nested
// hierarchies, scalar values, cross-row references, tensors, and deferred
// expressions. Documents are built by the parser and are immutable to the
// codecs that consume them; canonicalization is a pure function from
// document to string.
package document

// Document is a parsed HEDL document.
type Document struct {
	// VersionMajor and VersionMinor come from the mandatory %VERSION
	// directive.
	VersionMajor int
	VersionMinor int

	// Aliases maps alias name to its raw textual value (%ALIAS directives).
	Aliases map[string]string

	// Structs maps type name to its column schema. The first column is
	// always the identifier column.
	Structs map[string][]string

	// Nests maps parent type name to the single allowed child type name
	// (%NEST directives).
	Nests map[string]string

	// StructCounts holds the informational (N) row-count hints from %STRUCT
	// directives, by type name. Actual row counts are authoritative.
	StructCounts map[string]int

	// Root holds the top-level items in insertion order.
	Root *Object
}

// New creates an empty document with the given version.
func New(major, minor int) *Document {
	return &Document{
		VersionMajor: major,
		VersionMinor: minor,
		Aliases:      map[string]string{},
		Structs:      map[string][]string{},
		Nests:        map[string]string{},
		StructCounts: map[string]int{},
		Root:         NewObject(),
	}
}

// Item is one element of a document body: a scalar, an object, or a matrix
// list.
type Item interface {
	itemNode()
}

// ScalarItem wraps a scalar value as a body item.
type ScalarItem struct {
	Value Value
}

func (*ScalarItem) itemNode() {}

// Object is an ordered mapping from key to item. Insertion order is
// preserved through parsing and canonicalization.
type Object struct {
	keys    []string
	entries map[string]Item
}

func (*Object) itemNode() {}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{entries: map[string]Item{}}
}

// Set inserts or replaces the item for key. A new key is appended to the
// key order; replacing keeps the original position.
func (o *Object) Set(key string, item Item) {
	if _, ok := o.entries[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.entries[key] = item
}

// Get returns the item for key.
func (o *Object) Get(key string) (Item, bool) {
	item, ok := o.entries[key]
	return item, ok
}

// Keys returns the keys in insertion order. The caller must not modify the
// returned slice.
func (o *Object) Keys() []string {
	return o.keys
}

// Len returns the number of entries.
func (o *Object) Len() int {
	return len(o.keys)
}

// MatrixList is a typed table of rows sharing a column schema.
type MatrixList struct {
	// TypeName names the entity type of the rows. It should reference an
	// entry in the document's Structs map, though this is not enforced at
	// parse time.
	TypeName string

	// Schema is the ordered column names, duplicated from the document
	// schema. Schema[0] is the identifier column.
	Schema []string

	// Rows in authoring order.
	Rows []*Node

	// CountHint is the optional informational row count; the actual count
	// len(Rows) is authoritative. Nil when absent.
	CountHint *int
}

func (*MatrixList) itemNode() {}

// Node is a single row of a matrix list.
type Node struct {
	// TypeName of the owning list (or the nested child type).
	TypeName string

	// ID is the type-scoped identifier from the first column.
	ID string

	// Fields holds one value per schema column; Fields[0] duplicates ID as
	// a string value.
	Fields []Value

	// Children maps child type name to child rows. Non-empty only when the
	// type participates in a nesting rule.
	Children map[string][]*Node

	// ChildCount is the optional informational child count. Nil when absent.
	ChildCount *int
}

// NewNode creates a row with the given type, id, and fields.
func NewNode(typeName, id string, fields []Value) *Node {
	return &Node{
		TypeName: typeName,
		ID:       id,
		Fields:   fields,
		Children: map[string][]*Node{},
	}
}
