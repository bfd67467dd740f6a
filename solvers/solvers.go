// Package solvers provides the linear solves applied once per time step:
// factorizations computed at setup and reused, Jacobi-preconditioned CG and
// diagonal or block-diagonal inverses.
package solvers

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gohdg/operators"
	"github.com/notargets/gohdg/utils"
)

// Solver computes dst = A⁻¹ rhs for the operator it was set up with
type Solver interface {
	Dims() (rows, cols int)
	Solve(dst, rhs []float64) error
}

var ErrNotConverged = errors.New("iterative solver did not converge")

func checkSolve(s Solver, dst, rhs []float64) {
	nr, nc := s.Dims()
	if len(dst) != nc || len(rhs) != nr {
		panic(fmt.Sprintf("solver of dims %dx%d called with len(dst) = %d, len(rhs) = %d",
			nr, nc, len(dst), len(rhs)))
	}
}

func squareDims(A operators.Operator) (n int, err error) {
	nr, nc := A.Dims()
	if nr != nc {
		err = fmt.Errorf("solver requires a square operator, have %dx%d", nr, nc)
		return
	}
	n = nr
	return
}

// freeIndex lists the unconstrained dofs. A nil mask frees every dof.
func freeIndex(n int, free []bool) (idx []int, err error) {
	if free == nil {
		idx = make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return
	}
	if len(free) != n {
		err = fmt.Errorf("free dof mask has length %d, operator has %d dofs", len(free), n)
		return
	}
	for i, f := range free {
		if f {
			idx = append(idx, i)
		}
	}
	return
}

// Cholesky holds the factorization of the restriction of a symmetric
// positive definite operator to its free dofs. Constrained dofs of the
// solution are zero.
type Cholesky struct {
	N    int
	Free []int
	chol mat.Cholesky
	b, x *mat.VecDense
}

func NewCholesky(A operators.Operator, free []bool) (C *Cholesky, err error) {
	var n int
	if n, err = squareDims(A); err != nil {
		return
	}
	C = &Cholesky{N: n}
	if C.Free, err = freeIndex(n, free); err != nil {
		return nil, err
	}
	nf := len(C.Free)
	if nf == 0 {
		err = fmt.Errorf("cholesky: no free dofs")
		return nil, err
	}
	Af := restrict(A, n, C.Free)
	var scale float64
	for _, v := range Af.RawMatrix().Data {
		scale = math.Max(scale, math.Abs(v))
	}
	sym := mat.NewSymDense(nf, nil)
	for i := 0; i < nf; i++ {
		for j := i; j < nf; j++ {
			aij, aji := Af.At(i, j), Af.At(j, i)
			if math.Abs(aij-aji) > 1.e-12*scale {
				err = fmt.Errorf("cholesky: operator is not symmetric at free dofs (%d,%d): %g != %g",
					C.Free[i], C.Free[j], aij, aji)
				return nil, err
			}
			sym.SetSym(i, j, 0.5*(aij+aji))
		}
	}
	if ok := C.chol.Factorize(sym); !ok {
		err = fmt.Errorf("cholesky: operator restricted to %d free dofs is not positive definite", nf)
		return nil, err
	}
	C.b, C.x = mat.NewVecDense(nf, nil), mat.NewVecDense(nf, nil)
	return
}

// restrict materializes the free rows and columns of A
func restrict(A operators.Operator, n int, free []int) (Af *mat.Dense) {
	var (
		nf  = len(free)
		pos = make([]int, n)
	)
	for i := range pos {
		pos[i] = -1
	}
	for i, f := range free {
		pos[f] = i
	}
	Af = mat.NewDense(nf, nf, nil)
	if S, ok := A.(*operators.Sparse); ok {
		S.DoNonZero(func(i, j int, v float64) {
			if pi, pj := pos[i], pos[j]; pi >= 0 && pj >= 0 {
				Af.Set(pi, pj, Af.At(pi, pj)+v)
			}
		})
		return
	}
	var (
		e   = make([]float64, n)
		col = make([]float64, n)
	)
	for jj, j := range free {
		e[j] = 1
		A.Apply(col, e)
		for ii, i := range free {
			Af.Set(ii, jj, col[i])
		}
		e[j] = 0
	}
	return
}

func (C *Cholesky) Dims() (rows, cols int) { return C.N, C.N }

func (C *Cholesky) Solve(dst, rhs []float64) (err error) {
	checkSolve(C, dst, rhs)
	for i, f := range C.Free {
		C.b.SetVec(i, rhs[f])
	}
	if err = C.chol.SolveVecTo(C.x, C.b); err != nil {
		return fmt.Errorf("cholesky solve: %w", err)
	}
	utils.Zero(dst)
	for i, f := range C.Free {
		dst[f] = C.x.AtVec(i)
	}
	return
}

// PCG is a Jacobi-preconditioned conjugate gradient solver on the free dofs
type PCG struct {
	A       operators.Operator
	N       int
	Tol     float64
	MaxIter int
	// Iterations and Residual report the last solve
	Iterations int
	Residual   float64

	free              []bool
	dinv              []float64
	r, z, p, q, xFull []float64
}

func NewPCG(A operators.Operator, free []bool, tol float64, maxIter int) (P *PCG, err error) {
	var n int
	if n, err = squareDims(A); err != nil {
		return
	}
	if tol <= 0 || maxIter < 1 {
		err = fmt.Errorf("pcg: invalid tolerance %g or iteration limit %d", tol, maxIter)
		return
	}
	if free != nil && len(free) != n {
		err = fmt.Errorf("free dof mask has length %d, operator has %d dofs", len(free), n)
		return
	}
	var d []float64
	if d, err = operators.DiagonalOf(A); err != nil {
		return
	}
	P = &PCG{
		A: A, N: n, Tol: tol, MaxIter: maxIter,
		free: free,
		dinv: make([]float64, n),
		r:    make([]float64, n), z: make([]float64, n),
		p: make([]float64, n), q: make([]float64, n),
		xFull: make([]float64, n),
	}
	for i, di := range d {
		if !P.isFree(i) {
			continue
		}
		if di <= 0 || math.IsNaN(di) {
			err = fmt.Errorf("pcg: diagonal entry %d = %v is not positive", i, di)
			return nil, err
		}
		P.dinv[i] = 1. / di
	}
	return
}

func (P *PCG) isFree(i int) bool { return P.free == nil || P.free[i] }

func (P *PCG) mask(v []float64) {
	if P.free == nil {
		return
	}
	for i, f := range P.free {
		if !f {
			v[i] = 0
		}
	}
}

func (P *PCG) Dims() (rows, cols int) { return P.N, P.N }

// Solve starts from a zero initial guess and stops when the residual norm
// falls below Tol times the norm of the right hand side
func (P *PCG) Solve(dst, rhs []float64) (err error) {
	checkSolve(P, dst, rhs)
	x := P.xFull
	utils.Zero(x)
	copy(P.r, rhs)
	P.mask(P.r)
	bnorm := floats.Norm(P.r, 2)
	P.Iterations, P.Residual = 0, 0
	if bnorm == 0 {
		utils.Zero(dst)
		return
	}
	floats.MulTo(P.z, P.dinv, P.r)
	copy(P.p, P.z)
	rz := floats.Dot(P.r, P.z)
	for it := 1; it <= P.MaxIter; it++ {
		P.A.Apply(P.q, P.p)
		P.mask(P.q)
		pq := floats.Dot(P.p, P.q)
		if pq <= 0 {
			return fmt.Errorf("pcg: operator is not positive definite (pᵀAp = %g)", pq)
		}
		alpha := rz / pq
		floats.AddScaled(x, alpha, P.p)
		floats.AddScaled(P.r, -alpha, P.q)
		P.Iterations = it
		P.Residual = floats.Norm(P.r, 2) / bnorm
		if P.Residual < P.Tol {
			copy(dst, x)
			return
		}
		floats.MulTo(P.z, P.dinv, P.r)
		rzNew := floats.Dot(P.r, P.z)
		beta := rzNew / rz
		rz = rzNew
		floats.Scale(beta, P.p)
		floats.Add(P.p, P.z)
	}
	copy(dst, x)
	return fmt.Errorf("%w: relative residual %g after %d iterations", ErrNotConverged,
		P.Residual, P.MaxIter)
}

// Jacobi is the inverse of the diagonal of an operator. For diagonal masses
// it is the exact inverse.
type Jacobi struct {
	Dinv *operators.Diagonal
}

func NewJacobi(A operators.Operator) (J *Jacobi, err error) {
	if _, err = squareDims(A); err != nil {
		return
	}
	var d []float64
	if d, err = operators.DiagonalOf(A); err != nil {
		return
	}
	var Dinv *operators.Diagonal
	if Dinv, err = operators.NewDiagonal(d).Inverse(); err != nil {
		return nil, fmt.Errorf("jacobi: %w", err)
	}
	J = &Jacobi{Dinv: Dinv}
	return
}

func (J *Jacobi) Dims() (rows, cols int) { return J.Dinv.Dims() }

func (J *Jacobi) Solve(dst, rhs []float64) error {
	checkSolve(J, dst, rhs)
	J.Dinv.Apply(dst, rhs)
	return nil
}

// Apply lets the inverse be composed with other operators
func (J *Jacobi) Apply(dst, src []float64) { J.Dinv.Apply(dst, src) }

func (J *Jacobi) ApplyAdd(dst []float64, alpha float64, src []float64) {
	J.Dinv.ApplyAdd(dst, alpha, src)
}

func (J *Jacobi) T() operators.Operator { return J }

// BlockJacobi holds the exact inverse of a block-diagonal operator
type BlockJacobi struct {
	Binv *operators.BlockDiagonal
}

func NewBlockJacobi(B *operators.BlockDiagonal) (BJ *BlockJacobi, err error) {
	var Binv *operators.BlockDiagonal
	if Binv, err = B.Inverse(); err != nil {
		return nil, fmt.Errorf("block jacobi: %w", err)
	}
	BJ = &BlockJacobi{Binv: Binv}
	return
}

func (BJ *BlockJacobi) Dims() (rows, cols int) { return BJ.Binv.Dims() }

func (BJ *BlockJacobi) Solve(dst, rhs []float64) error {
	checkSolve(BJ, dst, rhs)
	BJ.Binv.Apply(dst, rhs)
	return nil
}

func (BJ *BlockJacobi) Apply(dst, src []float64) { BJ.Binv.Apply(dst, src) }

func (BJ *BlockJacobi) ApplyAdd(dst []float64, alpha float64, src []float64) {
	BJ.Binv.ApplyAdd(dst, alpha, src)
}

func (BJ *BlockJacobi) T() operators.Operator { return BJ.Binv.T() }

// OperatorSolver applies an already inverted operator, such as a composite of
// embedded block inverses
type OperatorSolver struct {
	Inv operators.Operator
}

func (s OperatorSolver) Dims() (rows, cols int) {
	nr, nc := s.Inv.Dims()
	return nc, nr
}

func (s OperatorSolver) Solve(dst, rhs []float64) error {
	checkSolve(s, dst, rhs)
	s.Inv.Apply(dst, rhs)
	return nil
}
