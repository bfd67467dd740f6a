package timestepper

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gohdg/operators"
	"github.com/notargets/gohdg/solvers"
	"github.com/notargets/gohdg/utils"
)

/*
Explicit is the forward Euler step of M x' = f - F(x) - A x:

	r = f - F x - A x
	w = M⁻¹ r
	x = x + dt w

Flux is applied matrix free, Implicit stands for any assembled part such as a
diffusion that is still treated explicitly, and Solver inverts the mass type
system. Forcing and Implicit may be nil.
*/
type Explicit struct {
	Flux     operators.Operator
	Implicit operators.Operator
	Forcing  []float64
	Solver   solvers.Solver

	flux, r, w []float64
}

func NewExplicit(flux, implicit operators.Operator, forcing []float64, solver solvers.Solver) (ex *Explicit, err error) {
	if flux == nil || solver == nil {
		err = fmt.Errorf("explicit scheme needs a flux operator and a solver")
		return
	}
	nr, nc := flux.Dims()
	if nr != nc {
		err = fmt.Errorf("flux operator is not square: %dx%d", nr, nc)
		return
	}
	if sr, sc := solver.Dims(); sr != nr || sc != nr {
		err = fmt.Errorf("solver of dims %dx%d does not match state of length %d", sr, sc, nr)
		return
	}
	if implicit != nil {
		if ir, ic := implicit.Dims(); ir != nr || ic != nr {
			err = fmt.Errorf("operator of dims %dx%d does not match state of length %d", ir, ic, nr)
			return
		}
	}
	if forcing != nil && len(forcing) != nr {
		err = fmt.Errorf("forcing of length %d does not match state of length %d", len(forcing), nr)
		return
	}
	ex = &Explicit{
		Flux:     flux,
		Implicit: implicit,
		Forcing:  forcing,
		Solver:   solver,
		flux:     make([]float64, nr),
		r:        make([]float64, nr),
		w:        make([]float64, nr),
	}
	return
}

func (ex *Explicit) Step(x []float64, _, dt float64) (err error) {
	if len(x) != len(ex.r) {
		return fmt.Errorf("state of length %d, scheme built for %d", len(x), len(ex.r))
	}
	ex.Flux.Apply(ex.flux, x)
	if ex.Forcing != nil {
		floats.SubTo(ex.r, ex.Forcing, ex.flux)
	} else {
		floats.ScaleTo(ex.r, -1, ex.flux)
	}
	if ex.Implicit != nil {
		operators.ApplyAdd(ex.Implicit, ex.r, -1, x, ex.flux)
	}
	if err = ex.Solver.Solve(ex.w, ex.r); err != nil {
		return
	}
	utils.Axpy(dt, ex.w, x)
	return
}

/*
Staggered advances a first order wave system with damping, a time dependent
source and a stabilization field s carried alongside the state:

	w = -Bᵀ x + env(t) L - σ Dp x - Sᵀ s
	x = x + dt Pinv w
	w = B x - σ Du x,  h = S x
	x = x + dt Uinv w
	s = s + dt Sinv h

Pinv and Uinv act on complementary blocks of x, so the velocity update sees
the new pressure.
*/
type Staggered struct {
	B, BT    operators.Operator // State to state coupling and its transpose
	Dp, Du   operators.Operator // Damping of pressure and velocity blocks
	Pinv     operators.Operator
	Uinv     operators.Operator
	S, ST    operators.Operator // Stabilization coupling (stab x state) and its transpose
	Sinv     operators.Operator
	L        []float64
	Envelope Envelope
	Sigma    float64
	Stab     []float64 // Stabilization field, starts at zero

	w, tmp, h, hs []float64
}

type StaggeredOperators struct {
	B, Dp, Du, Pinv, Uinv, S, Sinv operators.Operator
	L                              []float64
	Envelope                       Envelope
	Sigma                          float64
}

func NewStaggered(ops StaggeredOperators) (sg *Staggered, err error) {
	for _, op := range []operators.Operator{ops.B, ops.Dp, ops.Du, ops.Pinv, ops.Uinv, ops.S, ops.Sinv} {
		if op == nil {
			return nil, fmt.Errorf("staggered scheme: missing operator")
		}
	}
	b := operators.NewBuilder()
	sg = &Staggered{
		B:        ops.B,
		BT:       b.T(ops.B),
		Dp:       ops.Dp,
		Du:       ops.Du,
		Pinv:     ops.Pinv,
		Uinv:     ops.Uinv,
		S:        ops.S,
		ST:       b.T(ops.S),
		Sinv:     ops.Sinv,
		L:        ops.L,
		Envelope: ops.Envelope,
		Sigma:    ops.Sigma,
	}
	if err = b.Err(); err != nil {
		return nil, fmt.Errorf("staggered scheme: %w", err)
	}
	n, _ := ops.B.Dims()
	for _, op := range []operators.Operator{ops.B, ops.Dp, ops.Du, ops.Pinv, ops.Uinv} {
		if r, c := op.Dims(); r != n || c != n {
			return nil, fmt.Errorf("staggered scheme: operator %T of dims %dx%d, state has length %d", op, r, c, n)
		}
	}
	ns, nc := ops.S.Dims()
	if nc != n {
		return nil, fmt.Errorf("staggered scheme: stabilization coupling has %d columns, state has length %d", nc, n)
	}
	if r, c := ops.Sinv.Dims(); r != ns || c != ns {
		return nil, fmt.Errorf("staggered scheme: stabilization inverse of dims %dx%d, need %dx%d", r, c, ns, ns)
	}
	if ops.L != nil && len(ops.L) != n {
		return nil, fmt.Errorf("staggered scheme: source of length %d, state has length %d", len(ops.L), n)
	}
	if ops.L != nil && ops.Envelope == nil {
		return nil, fmt.Errorf("staggered scheme: source without an envelope")
	}
	sg.Stab = make([]float64, ns)
	sg.w, sg.tmp = make([]float64, n), make([]float64, n)
	sg.h, sg.hs = make([]float64, ns), make([]float64, ns)
	return
}

func (sg *Staggered) Step(x []float64, t, dt float64) (err error) {
	if len(x) != len(sg.w) {
		return fmt.Errorf("state of length %d, scheme built for %d", len(x), len(sg.w))
	}
	var (
		w, tmp = sg.w, sg.tmp
	)
	sg.BT.Apply(w, x)
	floats.Scale(-1, w)
	if sg.L != nil {
		if env := sg.Envelope(t); env != 0 {
			floats.AddScaled(w, env, sg.L)
		}
	}
	operators.ApplyAdd(sg.Dp, w, -sg.Sigma, x, tmp)
	operators.ApplyAdd(sg.ST, w, -1, sg.Stab, tmp)
	operators.ApplyAdd(sg.Pinv, x, dt, w, tmp)

	sg.B.Apply(w, x)
	sg.S.Apply(sg.h, x)
	operators.ApplyAdd(sg.Du, w, -sg.Sigma, x, tmp)
	operators.ApplyAdd(sg.Uinv, x, dt, w, tmp)

	operators.ApplyAdd(sg.Sinv, sg.Stab, dt, sg.h, sg.hs)
	return
}
