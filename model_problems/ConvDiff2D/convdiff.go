package ConvDiff2D

import (
	"fmt"

	"github.com/notargets/gohdg/DG2D"
	"github.com/notargets/gohdg/InputParameters"
	"github.com/notargets/gohdg/geometry2D"
	"github.com/notargets/gohdg/model_problems/Transport2D"
	"github.com/notargets/gohdg/operators"
	"github.com/notargets/gohdg/solvers"
	"github.com/notargets/gohdg/timestepper"
	"github.com/notargets/gohdg/utils"
)

/*
ConvDiff is convection diffusion on the hybrid state x = [u | û], with
homogeneous Dirichlet values on the boundary traces. Convection is explicit
and matrix free, the diffusion enters the mass system:

	M* = M + dt A
	r  = f - E_u C E_uᵀ x - A x
	x  = x + dt M*⁻¹ r

M* is factored once on the free dofs.
*/
type ConvDiff struct {
	Mesh   *geometry2D.Mesh
	Params *InputParameters.ConvDiffParameters
	Layout *utils.BlockLayout
	Free   []bool
	C      *DG2D.Convection
	A      *operators.Sparse
	MStar  *operators.Sparse
	Solver solvers.Solver
	Scheme *timestepper.Explicit
	X      []float64
}

func NewConvDiff(m *geometry2D.Mesh, cp *InputParameters.ConvDiffParameters) (c *ConvDiff, err error) {
	if err = cp.Validate(); err != nil {
		return
	}
	c = &ConvDiff{
		Mesh:   m,
		Params: cp,
		Layout: DG2D.NewHybridLayout(m),
		C:      DG2D.NewConvection(m, Transport2D.Rotation, utils.DefaultParallelDegree(cp.ParallelDegree, m.K())),
	}
	c.Free = DG2D.FreeDofs(m, c.Layout)
	if c.A, err = DG2D.HDGDiffusion(m, c.Layout, cp.Epsilon, cp.Alpha, cp.PolynomialOrder); err != nil {
		return nil, err
	}
	if c.MStar, err = DG2D.ShiftedSystem(DG2D.HybridMass(m, c.Layout), cp.Dt, c.A); err != nil {
		return nil, err
	}
	switch cp.Solver {
	case "pcg":
		c.Solver, err = solvers.NewPCG(c.MStar, c.Free, cp.Tolerance, cp.MaxIterations)
	default:
		c.Solver, err = solvers.NewCholesky(c.MStar, c.Free)
	}
	if err != nil {
		return nil, fmt.Errorf("mass system M + %g A: %w", cp.Dt, err)
	}
	b := operators.NewBuilder()
	Eu := b.Keep(operators.NewBlockEmbedding(c.Layout, DG2D.BlockU))
	flux := b.Product(Eu, c.C, b.T(Eu))
	if err = b.Err(); err != nil {
		return nil, err
	}
	if c.Scheme, err = timestepper.NewExplicit(flux, c.A, nil, c.Solver); err != nil {
		return nil, err
	}
	c.X = c.Layout.NewVector()
	copy(c.U(), DG2D.Project(m, Transport2D.Bump(cp.BumpCenter, cp.BumpWidth)))
	return
}

// U is the element block of the state
func (c *ConvDiff) U() []float64 { return c.Layout.View(DG2D.BlockU, c.X) }

// UHat is the trace block of the state
func (c *ConvDiff) UHat() []float64 { return c.Layout.View(DG2D.BlockUHat, c.X) }

func (c *ConvDiff) Run(sink timestepper.Sink, verbose bool) (res timestepper.Result, err error) {
	var (
		cp = c.Params
		st *timestepper.Stepper
	)
	cfg := timestepper.Config{
		Dt:         cp.Dt,
		FinalTime:  cp.FinalTime,
		PlotEvery:  cp.PlotEvery,
		PrintEvery: cp.PrintEvery,
		Blocking:   cp.Blocking,
		Verbose:    verbose,
	}
	if st, err = timestepper.NewStepper(cfg, c.Scheme, c.X); err != nil {
		return
	}
	st.Field = func(x []float64) []float64 { return c.Layout.View(DG2D.BlockU, x) }
	if sink != nil {
		st.Publisher = timestepper.NewPublisher(sink)
	}
	if res, err = st.Run(); err != nil {
		return
	}
	if verbose {
		fmt.Printf("Steps = %d, t = %8.5f, |u| = %8.5f, dropped frames = %d, elapsed = %v\n",
			res.Steps, res.Time, DG2D.L2Norm(c.Mesh, c.U()), res.DroppedFrames, res.Elapsed)
		if pcg, ok := c.Solver.(*solvers.PCG); ok {
			fmt.Printf("Last solve: %d iterations, residual %8.3e\n", pcg.Iterations, pcg.Residual)
		}
	}
	return
}
