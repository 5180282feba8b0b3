// Package jsonconv converts HEDL documents to and from JSON. Matrix lists
// become arrays of objects keyed by their schema columns; nested child rows
// appear under their child type name; references and expressions serialize
// as their surface strings. Import maps arrays of id-bearing objects back
// to matrix lists, deriving type names from the collection keys.
package jsonconv

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	hedlerr "github.com/hedl-dev/hedl/internal/errors"
	"github.com/hedl-dev/hedl/internal/lexer"
	"github.com/hedl-dev/hedl/pkg/document"
)

// ToJSON renders doc as a JSON object. Root keys keep insertion order.
func ToJSON(doc *document.Document) (string, error) {
	e := &jsonEmitter{out: "{}"}
	if err := document.Traverse(doc, e); err != nil {
		return "", err
	}
	return e.out, nil
}

// jsonEmitter builds the output with sjson, tracking the current path as a
// stack of segments.
type jsonEmitter struct {
	document.BaseVisitor
	out  string
	path []string
	// rowIndex tracks the next array index per list nesting level.
	rowIndex []int
}

func (e *jsonEmitter) setValue(path string, v any) error {
	out, err := sjson.Set(e.out, path, v)
	if err != nil {
		return hedlerr.NewConversion("json encode: " + err.Error())
	}
	e.out = out
	return nil
}

func (e *jsonEmitter) joined(segments ...string) string {
	all := append(append([]string{}, e.path...), segments...)
	return strings.Join(all, ".")
}

func (e *jsonEmitter) VisitScalar(key string, value document.Value, _ *document.VisitorContext) error {
	return e.setValue(e.joined(key), jsonValue(value))
}

func (e *jsonEmitter) BeginObject(key string, _ *document.VisitorContext) error {
	if err := e.setValue(e.joined(key), map[string]any{}); err != nil {
		return err
	}
	e.path = append(e.path, key)
	return nil
}

func (e *jsonEmitter) EndObject(string, *document.VisitorContext) error {
	e.path = e.path[:len(e.path)-1]
	return nil
}

func (e *jsonEmitter) BeginList(key string, _ *document.MatrixList, _ *document.VisitorContext) error {
	if err := e.setValue(e.joined(key), []any{}); err != nil {
		return err
	}
	e.path = append(e.path, key)
	e.rowIndex = append(e.rowIndex, 0)
	return nil
}

func (e *jsonEmitter) EndList(string, *document.MatrixList, *document.VisitorContext) error {
	e.path = e.path[:len(e.path)-1]
	e.rowIndex = e.rowIndex[:len(e.rowIndex)-1]
	return nil
}

func (e *jsonEmitter) VisitNode(node *document.Node, schema []string, _ *document.VisitorContext) error {
	idx := e.rowIndex[len(e.rowIndex)-1]
	e.rowIndex[len(e.rowIndex)-1]++

	row := strconv.Itoa(idx)
	for i, col := range schema {
		if i >= len(node.Fields) {
			break
		}
		if err := e.setValue(e.joined(row, col), jsonValue(node.Fields[i])); err != nil {
			return err
		}
	}
	return nil
}

func (e *jsonEmitter) BeginNodeChildren(node *document.Node, ctx *document.VisitorContext) error {
	// Children land under <row>.<ChildType> as a nested array.
	idx := e.rowIndex[len(e.rowIndex)-1] - 1
	childType := ctx.Document.Nests[node.TypeName]
	e.path = append(e.path, strconv.Itoa(idx), childType)
	e.rowIndex = append(e.rowIndex, 0)
	if err := e.setValue(strings.Join(e.path, "."), []any{}); err != nil {
		return err
	}
	return nil
}

func (e *jsonEmitter) EndNodeChildren(*document.Node, *document.VisitorContext) error {
	e.path = e.path[:len(e.path)-2]
	e.rowIndex = e.rowIndex[:len(e.rowIndex)-1]
	return nil
}

// jsonValue maps a HEDL scalar to a JSON-encodable Go value. Non-finite
// floats use their HEDL spellings, since JSON has no representation for
// them.
func jsonValue(v document.Value) any {
	switch v.Kind() {
	case document.KindNull:
		return nil
	case document.KindBool:
		b, _ := v.AsBool()
		return b
	case document.KindInt:
		n, _ := v.AsInt()
		return n
	case document.KindFloat:
		f, _ := v.AsFloat()
		if math.IsNaN(f) {
			return "nan"
		}
		if math.IsInf(f, 1) {
			return "inf"
		}
		if math.IsInf(f, -1) {
			return "-inf"
		}
		return f
	case document.KindString:
		s, _ := v.AsString()
		return s
	case document.KindTensor:
		t, _ := v.AsTensor()
		return tensorValue(t)
	case document.KindReference:
		r, _ := v.AsReference()
		return r.String()
	case document.KindExpr:
		e, _ := v.AsExpr()
		return "$(" + e.String() + ")"
	default:
		return nil
	}
}

func tensorValue(t *document.Tensor) any {
	if t.IsScalar() {
		return t.Scalar()
	}
	elems := make([]any, len(t.Elems()))
	for i, e := range t.Elems() {
		elems[i] = tensorValue(e)
	}
	return elems
}

// FromJSON imports a JSON object as a HEDL document. Arrays whose elements
// are all objects carrying an "id" field become matrix lists; their type
// name derives from the collection key ("users" becomes User). Other arrays
// must be numeric and become tensors.
func FromJSON(input string) (*document.Document, error) {
	root := gjson.Parse(input)
	if !root.IsObject() {
		return nil, hedlerr.NewConversion("top-level JSON value must be an object")
	}

	doc := document.New(1, 0)
	var convErr error
	root.ForEach(func(key, value gjson.Result) bool {
		item, err := importItem(doc, key.String(), value)
		if err != nil {
			convErr = err
			return false
		}
		doc.Root.Set(key.String(), item)
		return true
	})
	if convErr != nil {
		return nil, convErr
	}
	return doc, nil
}

func importItem(doc *document.Document, key string, value gjson.Result) (document.Item, error) {
	switch {
	case value.IsArray():
		if isEntityArray(value) {
			return importList(doc, key, value)
		}
		t, err := importTensor(value)
		if err != nil {
			return nil, err
		}
		return &document.ScalarItem{Value: document.TensorValue(t)}, nil

	case value.IsObject():
		obj := document.NewObject()
		var convErr error
		value.ForEach(func(k, v gjson.Result) bool {
			item, err := importItem(doc, k.String(), v)
			if err != nil {
				convErr = err
				return false
			}
			obj.Set(k.String(), item)
			return true
		})
		if convErr != nil {
			return nil, convErr
		}
		return obj, nil

	default:
		return &document.ScalarItem{Value: importScalar(value)}, nil
	}
}

// isEntityArray reports a non-empty array of objects that all carry an "id".
func isEntityArray(value gjson.Result) bool {
	rows := value.Array()
	if len(rows) == 0 {
		return false
	}
	for _, row := range rows {
		if !row.IsObject() || !row.Get("id").Exists() {
			return false
		}
	}
	return true
}

func importList(doc *document.Document, key string, value gjson.Result) (*document.MatrixList, error) {
	typeName := lexer.SingularizeAndCapitalize(key)

	// Schema from the first row's key order.
	var schema []string
	value.Array()[0].ForEach(func(k, _ gjson.Result) bool {
		schema = append(schema, k.String())
		return true
	})
	if _, ok := doc.Structs[typeName]; !ok {
		doc.Structs[typeName] = schema
	}

	list := &document.MatrixList{TypeName: typeName, Schema: schema}
	for _, row := range value.Array() {
		fields := make([]document.Value, len(schema))
		for i, col := range schema {
			fields[i] = importScalar(row.Get(col))
		}
		id, ok := fields[0].AsString()
		if !ok || id == "" {
			return nil, hedlerr.NewConversion("entity row in " + key + " has a non-string id")
		}
		list.Rows = append(list.Rows, document.NewNode(typeName, id, fields))
	}
	return list, nil
}

func importTensor(value gjson.Result) (*document.Tensor, error) {
	var elems []*document.Tensor
	var convErr error
	value.ForEach(func(_, v gjson.Result) bool {
		switch {
		case v.IsArray():
			t, err := importTensor(v)
			if err != nil {
				convErr = err
				return false
			}
			elems = append(elems, t)
		case v.Type == gjson.Number:
			elems = append(elems, document.TensorScalar(v.Float()))
		default:
			convErr = hedlerr.NewConversion("array element is neither numeric nor an entity row: " + v.Raw)
			return false
		}
		return true
	})
	if convErr != nil {
		return nil, convErr
	}
	if len(elems) == 0 {
		return nil, hedlerr.NewConversion("cannot import an empty array")
	}
	return document.TensorArray(elems), nil
}

func importScalar(value gjson.Result) document.Value {
	switch value.Type {
	case gjson.Null:
		return document.Null()
	case gjson.True:
		return document.Bool(true)
	case gjson.False:
		return document.Bool(false)
	case gjson.Number:
		raw := value.Raw
		if !strings.ContainsAny(raw, ".eE") {
			if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
				return document.Int(n)
			}
		}
		return document.Float(value.Float())
	default:
		return document.String(value.String())
	}
}
