package document

// Tensor is a uniformly shaped, recursively nested array of 64-bit floats.
// A tensor is either a scalar leaf or an ordered sequence of sub-tensors of
// identical shape. Shape validation happens in the scanner; a Tensor built
// through the constructors is assumed well formed.
type Tensor struct {
	leaf   bool
	scalar float64
	elems  []*Tensor
}

// TensorScalar creates a scalar leaf tensor.
func TensorScalar(v float64) *Tensor {
	return &Tensor{leaf: true, scalar: v}
}

// TensorArray creates an array tensor from the given elements.
func TensorArray(elems []*Tensor) *Tensor {
	return &Tensor{elems: elems}
}

// IsScalar reports whether the tensor is a scalar leaf.
func (t *Tensor) IsScalar() bool {
	return t.leaf
}

// Scalar returns the leaf value. Only meaningful when IsScalar is true.
func (t *Tensor) Scalar() float64 {
	return t.scalar
}

// Elems returns the sub-tensors of an array tensor.
func (t *Tensor) Elems() []*Tensor {
	return t.elems
}

// Rank returns the nesting depth: 0 for a scalar, 1 for a vector, and so on.
func (t *Tensor) Rank() int {
	if t.leaf {
		return 0
	}
	if len(t.elems) == 0 {
		return 1
	}
	return 1 + t.elems[0].Rank()
}

// Shape returns the length of each dimension, outermost first. A scalar has
// an empty shape.
func (t *Tensor) Shape() []int {
	if t.leaf {
		return nil
	}
	shape := []int{len(t.elems)}
	if len(t.elems) > 0 {
		shape = append(shape, t.elems[0].Shape()...)
	}
	return shape
}

// ElementCount returns the total number of scalar elements.
func (t *Tensor) ElementCount() int {
	if t.leaf {
		return 1
	}
	n := 0
	for _, e := range t.elems {
		n += e.ElementCount()
	}
	return n
}

// Equal reports structural equality. Floats compare with ==, so tensors
// containing NaN never compare equal; the NaN special case applies to float
// scalars only, not tensor elements.
func (t *Tensor) Equal(other *Tensor) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.leaf != other.leaf {
		return false
	}
	if t.leaf {
		return t.scalar == other.scalar
	}
	if len(t.elems) != len(other.elems) {
		return false
	}
	for i, e := range t.elems {
		if !e.Equal(other.elems[i]) {
			return false
		}
	}
	return true
}
