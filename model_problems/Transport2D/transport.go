package Transport2D

import (
	"fmt"
	"math"

	"github.com/notargets/gohdg/DG2D"
	"github.com/notargets/gohdg/InputParameters"
	"github.com/notargets/gohdg/geometry2D"
	"github.com/notargets/gohdg/operators"
	"github.com/notargets/gohdg/solvers"
	"github.com/notargets/gohdg/timestepper"
	"github.com/notargets/gohdg/utils"
)

// Rotation turns the unit square clockwise about its center with unit
// angular speed
func Rotation(x, y float64) [2]float64 { return [2]float64{y - 0.5, 0.5 - x} }

// Bump is the initial condition exp(-width |x - center|²)
func Bump(center [2]float64, width float64) DG2D.Field {
	return func(x, y float64) float64 {
		dx, dy := x-center[0], y-center[1]
		return math.Exp(-width * (dx*dx + dy*dy))
	}
}

/*
Transport advects a piecewise constant field with forward Euler:

	u = u - dt M⁻¹ C u

C is the matrix free upwind operator and M⁻¹ the exact inverse of the
diagonal mass, both set up once.
*/
type Transport struct {
	Mesh   *geometry2D.Mesh
	Params *InputParameters.TransportParameters
	C      *DG2D.Convection
	M      *operators.Diagonal
	Scheme *timestepper.Explicit
	U      []float64
}

func NewTransport(m *geometry2D.Mesh, tp *InputParameters.TransportParameters) (c *Transport, err error) {
	if err = tp.Validate(); err != nil {
		return
	}
	c = &Transport{
		Mesh:   m,
		Params: tp,
		C:      DG2D.NewConvection(m, Rotation, utils.DefaultParallelDegree(tp.ParallelDegree, m.K())),
		M:      DG2D.Mass(m, DG2D.Constant(1), nil),
		U:      DG2D.Project(m, Bump(tp.BumpCenter, tp.BumpWidth)),
	}
	var J *solvers.Jacobi
	if J, err = solvers.NewJacobi(c.M); err != nil {
		return nil, err
	}
	if c.Scheme, err = timestepper.NewExplicit(c.C, nil, nil, J); err != nil {
		return nil, err
	}
	if dtMax := c.C.MaxStableStep(); dtMax > 0 && tp.Dt > dtMax {
		fmt.Printf("warning: time step %g exceeds the upwind stability estimate %g\n", tp.Dt, dtMax)
	}
	return
}

// Run advances U to the final time, handing frames to sink when it is not nil
func (c *Transport) Run(sink timestepper.Sink, verbose bool) (res timestepper.Result, err error) {
	var (
		tp = c.Params
		st *timestepper.Stepper
	)
	cfg := timestepper.Config{
		Dt:         tp.Dt,
		FinalTime:  tp.FinalTime,
		PlotEvery:  tp.PlotEvery,
		PrintEvery: tp.PrintEvery,
		Blocking:   tp.Blocking,
		Verbose:    verbose,
	}
	if st, err = timestepper.NewStepper(cfg, c.Scheme, c.U); err != nil {
		return
	}
	if sink != nil {
		st.Publisher = timestepper.NewPublisher(sink)
	}
	norm0 := DG2D.L2Norm(c.Mesh, c.U)
	if res, err = st.Run(); err != nil {
		return
	}
	if verbose {
		fmt.Printf("Steps = %d, t = %8.5f, |u|/|u0| = %8.5f, dropped frames = %d, elapsed = %v\n",
			res.Steps, res.Time, DG2D.L2Norm(c.Mesh, c.U)/norm0, res.DroppedFrames, res.Elapsed)
	}
	return
}
