// Package yamlconv converts HEDL documents to and from YAML using the same
// mapping as the JSON codec: matrix lists become sequences of mappings
// keyed by schema columns, nested child rows appear under their child type
// name, and references and expressions serialize as surface strings.
package yamlconv

import (
	"math"
	"sort"

	"github.com/goccy/go-yaml"

	hedlerr "github.com/hedl-dev/hedl/internal/errors"
	"github.com/hedl-dev/hedl/internal/lexer"
	"github.com/hedl-dev/hedl/pkg/document"
)

// ToYAML renders doc as YAML. Root keys keep insertion order via
// yaml.MapSlice.
func ToYAML(doc *document.Document) (string, error) {
	ms, err := objectSlice(doc, doc.Root)
	if err != nil {
		return "", err
	}
	out, err := yaml.Marshal(ms)
	if err != nil {
		return "", hedlerr.NewConversion("yaml encode: " + err.Error())
	}
	return string(out), nil
}

func objectSlice(doc *document.Document, obj *document.Object) (yaml.MapSlice, error) {
	var ms yaml.MapSlice
	for _, key := range obj.Keys() {
		item, _ := obj.Get(key)
		v, err := itemValue(doc, item)
		if err != nil {
			return nil, err
		}
		ms = append(ms, yaml.MapItem{Key: key, Value: v})
	}
	return ms, nil
}

func itemValue(doc *document.Document, item document.Item) (any, error) {
	switch it := item.(type) {
	case *document.ScalarItem:
		return scalarValue(it.Value), nil
	case *document.Object:
		return objectSlice(doc, it)
	case *document.MatrixList:
		rows := make([]any, len(it.Rows))
		for i, row := range it.Rows {
			m, err := nodeSlice(doc, row, it.Schema)
			if err != nil {
				return nil, err
			}
			rows[i] = m
		}
		return rows, nil
	default:
		return nil, hedlerr.NewConversion("unknown item kind")
	}
}

func nodeSlice(doc *document.Document, node *document.Node, schema []string) (yaml.MapSlice, error) {
	var ms yaml.MapSlice
	for i, col := range schema {
		if i >= len(node.Fields) {
			break
		}
		ms = append(ms, yaml.MapItem{Key: col, Value: scalarValue(node.Fields[i])})
	}
	childTypes := make([]string, 0, len(node.Children))
	for childType := range node.Children {
		childTypes = append(childTypes, childType)
	}
	sort.Strings(childTypes)
	for _, childType := range childTypes {
		children := node.Children[childType]
		childSchema := doc.Structs[childType]
		rows := make([]any, len(children))
		for i, child := range children {
			m, err := nodeSlice(doc, child, childSchema)
			if err != nil {
				return nil, err
			}
			rows[i] = m
		}
		ms = append(ms, yaml.MapItem{Key: childType, Value: rows})
	}
	return ms, nil
}

func scalarValue(v document.Value) any {
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

// FromYAML imports a YAML mapping as a HEDL document, mirroring the JSON
// import: sequences of id-bearing mappings become matrix lists with type
// names derived from the collection key; other sequences must be numeric
// and become tensors.
func FromYAML(input string) (*document.Document, error) {
	var ms yaml.MapSlice
	// UseOrderedMap keeps nested mappings as MapSlice so key order survives.
	if err := yaml.UnmarshalWithOptions([]byte(input), &ms, yaml.UseOrderedMap()); err != nil {
		return nil, hedlerr.NewConversion("yaml decode: " + err.Error())
	}

	doc := document.New(1, 0)
	for _, entry := range ms {
		key, ok := entry.Key.(string)
		if !ok {
			return nil, hedlerr.NewConversion("top-level YAML keys must be strings")
		}
		item, err := importValue(doc, key, entry.Value)
		if err != nil {
			return nil, err
		}
		doc.Root.Set(key, item)
	}
	return doc, nil
}

func importValue(doc *document.Document, key string, value any) (document.Item, error) {
	switch v := value.(type) {
	case []any:
		if isEntitySeq(v) {
			return importList(doc, key, v)
		}
		t, err := importTensor(v)
		if err != nil {
			return nil, err
		}
		return &document.ScalarItem{Value: document.TensorValue(t)}, nil

	case yaml.MapSlice:
		obj := document.NewObject()
		for _, entry := range v {
			k, ok := entry.Key.(string)
			if !ok {
				return nil, hedlerr.NewConversion("YAML mapping keys must be strings")
			}
			item, err := importValue(doc, k, entry.Value)
			if err != nil {
				return nil, err
			}
			obj.Set(k, item)
		}
		return obj, nil

	default:
		return &document.ScalarItem{Value: importScalar(value)}, nil
	}
}

func isEntitySeq(seq []any) bool {
	if len(seq) == 0 {
		return false
	}
	for _, elem := range seq {
		ms, ok := elem.(yaml.MapSlice)
		if !ok {
			return false
		}
		hasID := false
		for _, entry := range ms {
			if k, ok := entry.Key.(string); ok && k == "id" {
				hasID = true
				break
			}
		}
		if !hasID {
			return false
		}
	}
	return true
}

func importList(doc *document.Document, key string, seq []any) (*document.MatrixList, error) {
	typeName := lexer.SingularizeAndCapitalize(key)

	first := seq[0].(yaml.MapSlice)
	schema := make([]string, 0, len(first))
	for _, entry := range first {
		schema = append(schema, entry.Key.(string))
	}
	if _, ok := doc.Structs[typeName]; !ok {
		doc.Structs[typeName] = schema
	}

	list := &document.MatrixList{TypeName: typeName, Schema: schema}
	for _, elem := range seq {
		ms := elem.(yaml.MapSlice)
		byKey := map[string]any{}
		for _, entry := range ms {
			if k, ok := entry.Key.(string); ok {
				byKey[k] = entry.Value
			}
		}
		fields := make([]document.Value, len(schema))
		for i, col := range schema {
			fields[i] = importScalar(byKey[col])
		}
		id, ok := fields[0].AsString()
		if !ok || id == "" {
			return nil, hedlerr.NewConversion("entity row in " + key + " has a non-string id")
		}
		list.Rows = append(list.Rows, document.NewNode(typeName, id, fields))
	}
	return list, nil
}

func importTensor(seq []any) (*document.Tensor, error) {
	if len(seq) == 0 {
		return nil, hedlerr.NewConversion("cannot import an empty sequence")
	}
	elems := make([]*document.Tensor, 0, len(seq))
	for _, elem := range seq {
		switch v := elem.(type) {
		case []any:
			t, err := importTensor(v)
			if err != nil {
				return nil, err
			}
			elems = append(elems, t)
		case int:
			elems = append(elems, document.TensorScalar(float64(v)))
		case int64:
			elems = append(elems, document.TensorScalar(float64(v)))
		case uint64:
			elems = append(elems, document.TensorScalar(float64(v)))
		case float64:
			elems = append(elems, document.TensorScalar(v))
		default:
			return nil, hedlerr.NewConversion("sequence element is neither numeric nor an entity row")
		}
	}
	return document.TensorArray(elems), nil
}

func importScalar(value any) document.Value {
	switch v := value.(type) {
	case nil:
		return document.Null()
	case bool:
		return document.Bool(v)
	case int:
		return document.Int(int64(v))
	case int64:
		return document.Int(v)
	case uint64:
		if v <= math.MaxInt64 {
			return document.Int(int64(v))
		}
		return document.Float(float64(v))
	case float64:
		return document.Float(v)
	case string:
		return document.String(v)
	default:
		return document.Null()
	}
}
