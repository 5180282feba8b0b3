package document

// Stats summarizes a document for reporting.
type Stats struct {
	RootItems  int
	Lists      int
	Rows       int // includes nested child rows
	Scalars    int
	Objects    int
	References int
	Tensors    int
	Exprs      int
	Types      int // declared %STRUCT entries
	Aliases    int
	Nests      int
}

type statsVisitor struct {
	BaseVisitor
	s *Stats
}

func (v *statsVisitor) VisitScalar(_ string, value Value, ctx *VisitorContext) error {
	if ctx.Depth == 0 {
		v.s.RootItems++
	}
	v.s.Scalars++
	v.countValue(value)
	return nil
}

func (v *statsVisitor) BeginObject(_ string, ctx *VisitorContext) error {
	if ctx.Depth == 0 {
		v.s.RootItems++
	}
	v.s.Objects++
	return nil
}

func (v *statsVisitor) BeginList(_ string, _ *MatrixList, ctx *VisitorContext) error {
	if ctx.Depth == 0 {
		v.s.RootItems++
	}
	v.s.Lists++
	return nil
}

func (v *statsVisitor) VisitNode(node *Node, _ []string, _ *VisitorContext) error {
	v.s.Rows++
	for _, f := range node.Fields {
		v.countValue(f)
	}
	return nil
}

func (v *statsVisitor) countValue(value Value) {
	switch value.Kind() {
	case KindReference:
		v.s.References++
	case KindTensor:
		v.s.Tensors++
	case KindExpr:
		v.s.Exprs++
	}
}

// CollectStats walks the document and returns summary counts.
func CollectStats(doc *Document) Stats {
	s := Stats{
		Types:   len(doc.Structs),
		Aliases: len(doc.Aliases),
		Nests:   len(doc.Nests),
	}
	_ = Traverse(doc, &statsVisitor{s: &s})
	return s
}
