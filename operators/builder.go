package operators

import "fmt"

// Builder composes operators and keeps the first error, so a composite
// expression can be written in one piece and checked once:
//
//	b := NewBuilder()
//	fullB := b.Product(Eu, b.Sum(Bel, b.Product(Btr, Tr)), b.T(Ep))
//	if err := b.Err(); err != nil { ... }
type Builder struct {
	err error
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) Err() error { return b.err }

func (b *Builder) failed(ops ...Operator) bool {
	if b.err != nil {
		return true
	}
	for i, op := range ops {
		if op == nil {
			b.err = fmt.Errorf("nil operand %d of %d", i, len(ops))
			return true
		}
	}
	return false
}

func (b *Builder) Product(ops ...Operator) Operator {
	if b.failed(ops...) {
		return nil
	}
	P, err := NewProduct(ops...)
	if err != nil {
		b.err = err
		return nil
	}
	return P
}

// Sum adds the terms with unit coefficients
func (b *Builder) Sum(terms ...Operator) Operator {
	return b.LinearCombination(nil, terms...)
}

func (b *Builder) LinearCombination(coeffs []float64, terms ...Operator) Operator {
	if b.failed(terms...) {
		return nil
	}
	S, err := NewSum(coeffs, terms...)
	if err != nil {
		b.err = err
		return nil
	}
	return S
}

func (b *Builder) Scale(alpha float64, A Operator) Operator {
	return b.LinearCombination([]float64{alpha}, A)
}

func (b *Builder) T(A Operator) Operator {
	if b.failed(A) {
		return nil
	}
	At, err := Transpose(A)
	if err != nil {
		b.err = err
		return nil
	}
	return At
}

// Keep records err if it is the first one and passes A through, so that
// constructors returning (Operator, error) can be used inline.
func (b *Builder) Keep(A Operator, err error) Operator {
	if b.err == nil && err != nil {
		b.err = err
	}
	if b.err != nil {
		return nil
	}
	return A
}
