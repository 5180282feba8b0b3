package document

import (
	"math"
	"strconv"
)

// ValueKind identifies the variant held by a Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTensor
	KindReference
	KindExpr
)

// String returns a human-readable form of the kind.
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindTensor:
		return "Tensor"
	case KindReference:
		return "Reference"
	case KindExpr:
		return "Expression"
	default:
		return "Unknown"
	}
}

// Reference is an identifier-based link to a row in the same document. A
// reference is qualified when TypeName is non-empty, otherwise local.
type Reference struct {
	TypeName string
	ID       string
}

// LocalRef creates a local reference (no type qualifier).
func LocalRef(id string) *Reference {
	return &Reference{ID: id}
}

// QualifiedRef creates a qualified reference.
func QualifiedRef(typeName, id string) *Reference {
	return &Reference{TypeName: typeName, ID: id}
}

// IsQualified reports whether the reference has a type qualifier.
func (r *Reference) IsQualified() bool {
	return r.TypeName != ""
}

// String renders the reference in surface form, with the leading @.
func (r *Reference) String() string {
	if r.TypeName != "" {
		return "@" + r.TypeName + ":" + r.ID
	}
	return "@" + r.ID
}

// Equal reports whether two references target the same (type, id).
func (r *Reference) Equal(other *Reference) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.TypeName == other.TypeName && r.ID == other.ID
}

// Value is a HEDL scalar: a tagged union of null, bool, int, float, string,
// tensor, reference, and expression. It intentionally avoids interface{} so
// downstream use stays type-safe; the pattern follows the way the document
// object keeps its entries alongside an explicit key order.
type Value struct {
	kind ValueKind

	b      bool
	i64    int64
	f64    float64
	str    string
	tensor *Tensor
	ref    *Reference
	expr   Expr
}

// Null returns the null value (~).
func Null() Value {
	return Value{kind: KindNull}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Int returns a 64-bit integer value.
func Int(n int64) Value {
	return Value{kind: KindInt, i64: n}
}

// Float returns a 64-bit float value. NaN and infinities are permitted.
func Float(f float64) Value {
	return Value{kind: KindFloat, f64: f}
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// TensorValue returns a tensor value.
func TensorValue(t *Tensor) Value {
	return Value{kind: KindTensor, tensor: t}
}

// Ref returns a reference value.
func Ref(r *Reference) Value {
	return Value{kind: KindReference, ref: r}
}

// Expression returns an expression value.
func Expression(e Expr) Value {
	return Value{kind: KindExpr, expr: e}
}

// Kind returns the variant held by the value.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsInt returns the integer payload.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i64, true
}

// AsFloat returns the float payload. Integers convert.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f64, true
	case KindInt:
		return float64(v.i64), true
	default:
		return 0, false
	}
}

// AsString returns the string payload.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsTensor returns the tensor payload.
func (v Value) AsTensor() (*Tensor, bool) {
	if v.kind != KindTensor {
		return nil, false
	}
	return v.tensor, true
}

// AsReference returns the reference payload.
func (v Value) AsReference() (*Reference, bool) {
	if v.kind != KindReference {
		return nil, false
	}
	return v.ref, true
}

// AsExpr returns the expression payload.
func (v Value) AsExpr() (Expr, bool) {
	if v.kind != KindExpr {
		return nil, false
	}
	return v.expr, true
}

// Equal reports structural, type-exact equality. This is the equality the
// ditto optimizer uses: Int(42) never equals Float(42.0), and String("42")
// never equals Int(42). Two float special cases apply: NaN equals NaN, and
// +0.0 equals -0.0. Expressions compare structurally with spans ignored.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i64 == other.i64
	case KindFloat:
		return (math.IsNaN(v.f64) && math.IsNaN(other.f64)) || v.f64 == other.f64
	case KindString:
		return v.str == other.str
	case KindTensor:
		return v.tensor.Equal(other.tensor)
	case KindReference:
		return v.ref.Equal(other.ref)
	case KindExpr:
		return ExprEqual(v.expr, other.expr)
	default:
		return false
	}
}

// String renders a debug form of the value. The canonicalizer has its own
// emission rules; this is for messages and logs only.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "~"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i64, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f64, 'g', -1, 64)
	case KindString:
		return v.str
	case KindTensor:
		return "[tensor]"
	case KindReference:
		return v.ref.String()
	case KindExpr:
		return "$(" + v.expr.String() + ")"
	default:
		return "?"
	}
}
