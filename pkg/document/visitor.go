package document

import (
	"sort"
	"strings"
)

// VisitorContext carries traversal state to visitor callbacks.
type VisitorContext struct {
	// Depth is the current nesting depth, 0 at root level.
	Depth int
	// Path is the chain of keys and identifiers from the root to the
	// current element.
	Path []string
	// Document is the document being traversed.
	Document *Document
	// Schema is the column schema of the currently active list, nil outside
	// lists.
	Schema []string
}

// PathString joins the path for error messages; "root" at the top level.
func (c *VisitorContext) PathString() string {
	if len(c.Path) == 0 {
		return "root"
	}
	return strings.Join(c.Path, ".")
}

func (c *VisitorContext) child(key string) *VisitorContext {
	path := make([]string, len(c.Path), len(c.Path)+1)
	copy(path, c.Path)
	return &VisitorContext{
		Depth:    c.Depth + 1,
		Path:     append(path, key),
		Document: c.Document,
		Schema:   c.Schema,
	}
}

func (c *VisitorContext) withSchema(schema []string) *VisitorContext {
	return &VisitorContext{
		Depth:    c.Depth,
		Path:     c.Path,
		Document: c.Document,
		Schema:   schema,
	}
}

// Visitor receives callbacks while a document is traversed. Codecs implement
// only the callbacks they need by embedding BaseVisitor, which defaults every
// callback to "descend".
type Visitor interface {
	BeginDocument(doc *Document, ctx *VisitorContext) error
	EndDocument(doc *Document, ctx *VisitorContext) error
	VisitScalar(key string, value Value, ctx *VisitorContext) error
	BeginObject(key string, ctx *VisitorContext) error
	EndObject(key string, ctx *VisitorContext) error
	BeginList(key string, list *MatrixList, ctx *VisitorContext) error
	EndList(key string, list *MatrixList, ctx *VisitorContext) error
	VisitNode(node *Node, schema []string, ctx *VisitorContext) error
	BeginNodeChildren(node *Node, ctx *VisitorContext) error
	EndNodeChildren(node *Node, ctx *VisitorContext) error
}

// BaseVisitor provides no-op implementations of every Visitor callback.
type BaseVisitor struct{}

func (BaseVisitor) BeginDocument(*Document, *VisitorContext) error       { return nil }
func (BaseVisitor) EndDocument(*Document, *VisitorContext) error         { return nil }
func (BaseVisitor) VisitScalar(string, Value, *VisitorContext) error     { return nil }
func (BaseVisitor) BeginObject(string, *VisitorContext) error            { return nil }
func (BaseVisitor) EndObject(string, *VisitorContext) error              { return nil }
func (BaseVisitor) BeginList(string, *MatrixList, *VisitorContext) error { return nil }
func (BaseVisitor) EndList(string, *MatrixList, *VisitorContext) error   { return nil }
func (BaseVisitor) VisitNode(*Node, []string, *VisitorContext) error     { return nil }
func (BaseVisitor) BeginNodeChildren(*Node, *VisitorContext) error       { return nil }
func (BaseVisitor) EndNodeChildren(*Node, *VisitorContext) error         { return nil }

// Traverse walks the document in insertion order, invoking the visitor's
// callbacks. Traversal stops at the first callback error.
func Traverse(doc *Document, v Visitor) error {
	ctx := &VisitorContext{Document: doc}
	if err := v.BeginDocument(doc, ctx); err != nil {
		return err
	}
	if err := traverseObject(doc.Root, v, ctx); err != nil {
		return err
	}
	return v.EndDocument(doc, ctx)
}

func traverseObject(obj *Object, v Visitor, ctx *VisitorContext) error {
	for _, key := range obj.Keys() {
		item, _ := obj.Get(key)
		if err := traverseItem(key, item, v, ctx); err != nil {
			return err
		}
	}
	return nil
}

func traverseItem(key string, item Item, v Visitor, ctx *VisitorContext) error {
	switch it := item.(type) {
	case *ScalarItem:
		return v.VisitScalar(key, it.Value, ctx)
	case *Object:
		if err := v.BeginObject(key, ctx); err != nil {
			return err
		}
		if err := traverseObject(it, v, ctx.child(key)); err != nil {
			return err
		}
		return v.EndObject(key, ctx)
	case *MatrixList:
		if err := v.BeginList(key, it, ctx); err != nil {
			return err
		}
		listCtx := ctx.child(key).withSchema(it.Schema)
		for _, row := range it.Rows {
			if err := traverseNode(row, it.Schema, v, listCtx); err != nil {
				return err
			}
		}
		return v.EndList(key, it, ctx)
	default:
		return nil
	}
}

func traverseNode(node *Node, schema []string, v Visitor, ctx *VisitorContext) error {
	if err := v.VisitNode(node, schema, ctx); err != nil {
		return err
	}
	if len(node.Children) == 0 {
		return nil
	}
	if err := v.BeginNodeChildren(node, ctx); err != nil {
		return err
	}
	// The nesting rule allows one child type per parent, but iterate sorted
	// anyway so traversal stays deterministic.
	childTypes := make([]string, 0, len(node.Children))
	for childType := range node.Children {
		childTypes = append(childTypes, childType)
	}
	sort.Strings(childTypes)
	for _, childType := range childTypes {
		children := node.Children[childType]
		childSchema := ctx.Document.Structs[childType]
		childCtx := ctx.child(node.ID).withSchema(childSchema)
		for _, child := range children {
			if err := traverseNode(child, childSchema, v, childCtx); err != nil {
				return err
			}
		}
	}
	return v.EndNodeChildren(node, ctx)
}
