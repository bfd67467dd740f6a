package operators

import (
	"fmt"

	"github.com/notargets/gohdg/utils"
)

/*
	Composite operators own their scratch vectors, allocated once at
	construction. A composite must therefore not be applied from two
	goroutines at the same time; the time loop applies each composite
	sequentially and parallelizes inside the leaf operators instead.
*/

// fallibleTransposer is implemented by composites, whose transpose exists
// only when every factor is transposable
type fallibleTransposer interface {
	transpose() (Operator, error)
}

// Product applies Ops[0] * Ops[1] * ... * Ops[n-1]
type Product struct {
	Ops     []Operator
	scratch [][]float64 // scratch[i] holds the output of Ops[i+1]
	out     []float64
}

func NewProduct(ops ...Operator) (P *Product, err error) {
	if len(ops) == 0 {
		err = fmt.Errorf("product of zero operators")
		return
	}
	for i := 0; i < len(ops)-1; i++ {
		_, nc := ops[i].Dims()
		nr, _ := ops[i+1].Dims()
		if nc != nr {
			err = fmt.Errorf("dimension mismatch in product at factor %d: %T has %d columns, %T has %d rows",
				i, ops[i], nc, ops[i+1], nr)
			return
		}
	}
	P = &Product{
		Ops:     ops,
		scratch: make([][]float64, len(ops)-1),
	}
	for i := range P.scratch {
		nr, _ := ops[i+1].Dims()
		P.scratch[i] = make([]float64, nr)
	}
	return
}

func (P *Product) Dims() (rows, cols int) {
	rows, _ = P.Ops[0].Dims()
	_, cols = P.Ops[len(P.Ops)-1].Dims()
	return
}

// inner applies every factor but the first and returns the vector the first
// factor has to act on
func (P *Product) inner(src []float64) (x []float64) {
	x = src
	for i := len(P.Ops) - 1; i > 0; i-- {
		P.Ops[i].Apply(P.scratch[i-1], x)
		x = P.scratch[i-1]
	}
	return
}

func (P *Product) Apply(dst, src []float64) {
	checkApply(P, dst, src)
	P.Ops[0].Apply(dst, P.inner(src))
}

func (P *Product) ApplyAdd(dst []float64, alpha float64, src []float64) {
	checkApply(P, dst, src)
	x := P.inner(src)
	if P.out == nil {
		nr, _ := P.Dims()
		P.out = make([]float64, nr)
	}
	ApplyAdd(P.Ops[0], dst, alpha, x, P.out)
}

func (P *Product) transpose() (Operator, error) {
	var (
		n   = len(P.Ops)
		ops = make([]Operator, n)
		err error
	)
	for i, op := range P.Ops {
		if ops[n-1-i], err = Transpose(op); err != nil {
			return nil, err
		}
	}
	return NewProduct(ops...)
}

// Sum applies sum_i Coeffs[i] * Terms[i]
type Sum struct {
	Terms   []Operator
	Coeffs  []float64
	scratch []float64
}

func NewSum(coeffs []float64, terms ...Operator) (S *Sum, err error) {
	if len(terms) == 0 {
		err = fmt.Errorf("sum of zero operators")
		return
	}
	if coeffs == nil {
		coeffs = utils.ConstArray(len(terms), 1)
	}
	if len(coeffs) != len(terms) {
		err = fmt.Errorf("sum has %d coefficients for %d terms", len(coeffs), len(terms))
		return
	}
	nr, nc := terms[0].Dims()
	for i, term := range terms {
		r, c := term.Dims()
		if r != nr || c != nc {
			err = fmt.Errorf("dimension mismatch in sum: term %d is %dx%d, expected %dx%d",
				i, r, c, nr, nc)
			return
		}
	}
	S = &Sum{
		Terms:   terms,
		Coeffs:  coeffs,
		scratch: make([]float64, nr),
	}
	return
}

// NewScaled returns alpha*A
func NewScaled(alpha float64, A Operator) (*Sum, error) {
	return NewSum([]float64{alpha}, A)
}

func (S *Sum) Dims() (rows, cols int) { return S.Terms[0].Dims() }

func (S *Sum) Apply(dst, src []float64) {
	checkApply(S, dst, src)
	utils.Zero(dst)
	S.ApplyAdd(dst, 1, src)
}

func (S *Sum) ApplyAdd(dst []float64, alpha float64, src []float64) {
	for i, term := range S.Terms {
		ApplyAdd(term, dst, alpha*S.Coeffs[i], src, S.scratch)
	}
}

func (S *Sum) transpose() (Operator, error) {
	var (
		terms = make([]Operator, len(S.Terms))
		err   error
	)
	for i, term := range S.Terms {
		if terms[i], err = Transpose(term); err != nil {
			return nil, err
		}
	}
	coeffs := make([]float64, len(S.Coeffs))
	copy(coeffs, S.Coeffs)
	return NewSum(coeffs, terms...)
}
