package printer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hedl-dev/hedl/pkg/document"
)

// formatValue renders one scalar value in surface form.
func (p *printer) formatValue(v document.Value) (string, error) {
	switch v.Kind() {
	case document.KindNull:
		return "~", nil
	case document.KindBool:
		b, _ := v.AsBool()
		return strconv.FormatBool(b), nil
	case document.KindInt:
		n, _ := v.AsInt()
		return strconv.FormatInt(n, 10), nil
	case document.KindFloat:
		f, _ := v.AsFloat()
		return formatFloat(f), nil
	case document.KindString:
		s, _ := v.AsString()
		return p.formatString(s), nil
	case document.KindTensor:
		t, _ := v.AsTensor()
		return formatTensor(t), nil
	case document.KindReference:
		r, _ := v.AsReference()
		return r.String(), nil
	case document.KindExpr:
		e, _ := v.AsExpr()
		return "$(" + e.String() + ")", nil
	default:
		return "", fmt.Errorf("unknown value kind %v", v.Kind())
	}
}

// formatFloat uses the shortest round-tripping decimal representation. A
// float holding an integral value keeps a trailing .0 so the type survives
// re-parsing.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func formatTensor(t *document.Tensor) string {
	var sb strings.Builder
	writeTensor(&sb, t)
	return sb.String()
}

func writeTensor(sb *strings.Builder, t *document.Tensor) {
	if t.IsScalar() {
		sb.WriteString(formatFloat(t.Scalar()))
		return
	}
	sb.WriteString("[")
	for i, e := range t.Elems() {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeTensor(sb, e)
	}
	sb.WriteString("]")
}
