// Package operators provides linear maps over flat float64 vectors and the
// means to compose them once, at setup, into the operators used every time
// step.
package operators

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Operator is a linear map from vectors of length cols to vectors of length
// rows. Apply overwrites dst with A*src; dst and src must not alias.
type Operator interface {
	Dims() (rows, cols int)
	Apply(dst, src []float64)
}

// Transposer is implemented by operators that can produce their adjoint
type Transposer interface {
	T() Operator
}

// Diagonaler is implemented by operators whose diagonal is cheap to extract
type Diagonaler interface {
	Diagonal() []float64
}

// AddApplier is implemented by operators that can accumulate alpha*A*src into
// dst without a scratch vector
type AddApplier interface {
	ApplyAdd(dst []float64, alpha float64, src []float64)
}

func checkApply(op Operator, dst, src []float64) {
	nr, nc := op.Dims()
	if len(dst) != nr || len(src) != nc {
		panic(fmt.Sprintf("operator of dims %dx%d applied with len(dst) = %d, len(src) = %d",
			nr, nc, len(dst), len(src)))
	}
}

// ApplyAdd computes dst += alpha*A*src, using scratch (length rows) when the
// operator cannot accumulate directly.
func ApplyAdd(A Operator, dst []float64, alpha float64, src, scratch []float64) {
	if aa, ok := A.(AddApplier); ok {
		aa.ApplyAdd(dst, alpha, src)
		return
	}
	A.Apply(scratch, src)
	floats.AddScaled(dst, alpha, scratch)
}

// Transpose returns the adjoint of A
func Transpose(A Operator) (Operator, error) {
	if ft, ok := A.(fallibleTransposer); ok {
		return ft.transpose()
	}
	if t, ok := A.(Transposer); ok {
		return t.T(), nil
	}
	return nil, fmt.Errorf("operator of type %T has no transpose", A)
}

// Materialize returns the dense matrix of A by applying it to unit vectors.
// Intended for verification of small operators.
func Materialize(A Operator) (M *mat.Dense) {
	var (
		nr, nc = A.Dims()
		e      = make([]float64, nc)
		col    = make([]float64, nr)
	)
	M = mat.NewDense(nr, nc, nil)
	for j := 0; j < nc; j++ {
		e[j] = 1
		A.Apply(col, e)
		M.SetCol(j, col)
		e[j] = 0
	}
	return
}

// DiagonalOf extracts the diagonal of a square operator, materializing one
// column at a time when the operator does not expose its diagonal.
func DiagonalOf(A Operator) (d []float64, err error) {
	nr, nc := A.Dims()
	if nr != nc {
		err = fmt.Errorf("diagonal requested of non square operator %dx%d", nr, nc)
		return
	}
	if dg, ok := A.(Diagonaler); ok {
		d = dg.Diagonal()
		return
	}
	var (
		e   = make([]float64, nc)
		col = make([]float64, nr)
	)
	d = make([]float64, nr)
	for j := 0; j < nc; j++ {
		e[j] = 1
		A.Apply(col, e)
		d[j] = col[j]
		e[j] = 0
	}
	return
}
