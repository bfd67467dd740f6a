package Wave2D

import (
	"fmt"
	"strings"

	"github.com/notargets/gohdg/DG2D"
	"github.com/notargets/gohdg/InputParameters"
	"github.com/notargets/gohdg/geometry2D"
	"github.com/notargets/gohdg/operators"
	"github.com/notargets/gohdg/solvers"
	"github.com/notargets/gohdg/timestepper"
	"github.com/notargets/gohdg/utils"
)

/*
Wave is the first order wave system of the ring resonator on the state
x = [p | p̂ | u | û]. The hatted blocks are the auxiliary fields of the
absorbing layers. All operators are composed once through block embeddings:

	B  = E_u (B_el + B_tr Tr) E_pᵀ
	Dp = E_p Dp1 E_pᵀ + E_p Dp2 (2E_pᵀ - E_p̂ᵀ) + E_p̂ Dp2 E_pᵀ
	Du = E_u Du1 E_uᵀ + (E_û - E_u) Du2 (E_uᵀ + E_ûᵀ)
	P⁻¹ = E_p Mp⁻¹ E_pᵀ + E_p̂ Mp⁻¹ E_p̂ᵀ
	U⁻¹ = E_u Mu⁻¹ E_uᵀ + E_û Mu⁻¹ E_ûᵀ

Dp1 and Du1, Du2 live on the one dimensional layers, Dp2 on the corners.
*/
type Wave struct {
	Mesh    *geometry2D.Mesh
	Params  *InputParameters.WaveParameters
	Layout  *utils.BlockLayout
	Eps     []float64
	Normals [][2]float64
	Mp      *operators.Diagonal
	Mu      *operators.BlockDiagonal
	Mstab   *operators.Diagonal

	FullB, DampingP, DampingU operators.Operator
	InvP, InvU                operators.Operator
	Stab                      operators.Operator // B_stab E_pᵀ
	Lsrc                      []float64          // Source load in the full state
	SourceFaces               int

	Scheme *timestepper.Staggered
	X      []float64
	// PlotField selects the displayed block of the state, the pressure by default
	PlotField func(x []float64) []float64
}

func NewWave(m *geometry2D.Mesh, wp *InputParameters.WaveParameters) (c *Wave, err error) {
	if err = wp.Validate(); err != nil {
		return
	}
	var (
		K = m.K()
	)
	c = &Wave{
		Mesh:    m,
		Params:  wp,
		Layout:  DG2D.NewWaveLayout(m),
		Eps:     make([]float64, K),
		Normals: make([][2]float64, K),
	}
	for k, r := range m.Region {
		c.Eps[k] = Permittivity(r, wp.EpsSlab)
		c.Normals[k] = PMLNormal(r)
	}
	var (
		pml1d, corner func(string) bool
	)
	if pml1d, err = geometry2D.RegionMatcher(PML1DPattern); err != nil {
		return nil, err
	}
	if corner, err = geometry2D.RegionMatcher(PMLCornerMatch); err != nil {
		return nil, err
	}
	var (
		eps      = func(k int) float64 { return c.Eps[k] }
		normal   = func(k int) [2]float64 { return c.Normals[k] }
		tangent  = func(k int) [2]float64 { n := c.Normals[k]; return [2]float64{n[1], -n[0]} }
		layerMsk = m.RegionMask(pml1d)
		np       = utils.DefaultParallelDegree(wp.ParallelDegree, K)
		Dp1      = DG2D.Mass(m, eps, layerMsk)
		Dp2      = DG2D.Mass(m, eps, m.RegionMask(corner))
		Du1      = DG2D.VectorMass(m, DG2D.OuterProduct(normal), layerMsk)
		Du2      = DG2D.VectorMass(m, DG2D.OuterProduct(tangent), layerMsk)
	)
	c.Mp = DG2D.Mass(m, eps, nil)
	c.Mu = DG2D.VectorMass(m, DG2D.Identity, nil)
	c.Mu.SetParallelDegree(np)
	c.Mstab = DG2D.StabilizationMass(m)

	var (
		MpInv *solvers.Jacobi
		MuInv *solvers.BlockJacobi
		MsInv *solvers.Jacobi
	)
	if MpInv, err = solvers.NewJacobi(c.Mp); err != nil {
		return nil, fmt.Errorf("pressure mass: %w", err)
	}
	if MuInv, err = solvers.NewBlockJacobi(c.Mu); err != nil {
		return nil, fmt.Errorf("velocity mass: %w", err)
	}
	if MsInv, err = solvers.NewJacobi(c.Mstab); err != nil {
		return nil, fmt.Errorf("stabilization mass: %w", err)
	}

	b := operators.NewBuilder()
	var (
		bl    = c.Layout
		Ep    = b.Keep(operators.NewBlockEmbedding(bl, DG2D.BlockP))
		Ephat = b.Keep(operators.NewBlockEmbedding(bl, DG2D.BlockPHat))
		Eu    = b.Keep(operators.NewBlockEmbedding(bl, DG2D.BlockU))
		Euhat = b.Keep(operators.NewBlockEmbedding(bl, DG2D.BlockUHat))
		EpT   = b.T(Ep)
		EuT   = b.T(Eu)
	)
	c.FullB = b.Product(Eu,
		b.Sum(DG2D.ElementGradient(m), b.Product(DG2D.TraceCoupling(m), DG2D.TraceOperator(m))),
		EpT)
	c.DampingP = b.Sum(
		b.Product(Ep, Dp1, EpT),
		b.Product(Ep, Dp2, b.LinearCombination([]float64{2, -1}, EpT, b.T(Ephat))),
		b.Product(Ephat, Dp2, EpT),
	)
	c.DampingU = b.Sum(
		b.Product(Eu, Du1, EuT),
		b.Product(b.LinearCombination([]float64{-1, 1}, Eu, Euhat), Du2, b.Sum(EuT, b.T(Euhat))),
	)
	c.InvP = b.Sum(b.Product(Ep, MpInv, EpT), b.Product(Ephat, MpInv, b.T(Ephat)))
	c.InvU = b.Sum(b.Product(Eu, MuInv, EuT), b.Product(Euhat, MuInv, b.T(Euhat)))
	c.Stab = b.Product(DG2D.StabilizationCoupling(m), EpT)
	if err = b.Err(); err != nil {
		return nil, fmt.Errorf("composing wave operators: %w", err)
	}

	var L []float64
	L, c.SourceFaces = DG2D.BoundarySource(m, SourceTag, SourceProfile)
	if c.SourceFaces == 0 {
		return nil, fmt.Errorf("no faces tagged %s for the source", SourceTag)
	}
	c.Lsrc = bl.NewVector()
	Ep.Apply(c.Lsrc, L)

	var env timestepper.Envelope
	switch wp.Envelope {
	case "gaussian":
		env, err = timestepper.NewGaussianEnvelope(wp.TPeak, wp.Fcen(), wp.Df)
	default:
		env, err = timestepper.NewSourceEnvelope(wp.TPeak, wp.Fcen())
	}
	if err != nil {
		return nil, err
	}
	if c.Scheme, err = timestepper.NewStaggered(timestepper.StaggeredOperators{
		B:        c.FullB,
		Dp:       c.DampingP,
		Du:       c.DampingU,
		Pinv:     c.InvP,
		Uinv:     c.InvU,
		S:        c.Stab,
		Sinv:     MsInv,
		L:        c.Lsrc,
		Envelope: env,
		Sigma:    wp.Sigma,
	}); err != nil {
		return nil, err
	}
	c.X = bl.NewVector()
	c.PlotField = c.Pressure
	return
}

// Pressure is the element pressure block of a state
func (c *Wave) Pressure(x []float64) []float64 { return c.Layout.View(DG2D.BlockP, x) }

// Velocity is the [ux, uy] per element block of a state
func (c *Wave) Velocity(x []float64) []float64 { return c.Layout.View(DG2D.BlockU, x) }

// Energy is pᵀ Mp p + uᵀ Mu u
func (c *Wave) Energy(x []float64) float64 { return c.EnergyOn(x, nil) }

// EnergyOn restricts Energy to the elements of mask, nil for all
func (c *Wave) EnergyOn(x []float64, mask []bool) (e float64) {
	var (
		p   = c.Pressure(x)
		u   = c.Velocity(x)
		tmp = make([]float64, len(u))
	)
	c.Mu.Apply(tmp, u)
	for k, pk := range p {
		if mask != nil && !mask[k] {
			continue
		}
		e += pk*c.Mp.D[k]*pk + u[2*k]*tmp[2*k] + u[2*k+1]*tmp[2*k+1]
	}
	return
}

// Interior marks the elements of the physical box, outside the absorbing frame
func (c *Wave) Interior() (mask []bool) {
	mask = make([]bool, c.Mesh.K())
	for k, r := range c.Mesh.Region {
		mask[k] = !strings.HasPrefix(r, "pml_")
	}
	return
}

func (c *Wave) Run(sink timestepper.Sink, verbose bool) (res timestepper.Result, err error) {
	var (
		wp = c.Params
		st *timestepper.Stepper
	)
	cfg := timestepper.Config{
		Dt:         wp.Dt,
		FinalTime:  wp.FinalTime,
		PlotEvery:  wp.PlotEvery,
		PrintEvery: wp.PrintEvery,
		Blocking:   wp.Blocking,
		Verbose:    verbose,
	}
	if st, err = timestepper.NewStepper(cfg, c.Scheme, c.X); err != nil {
		return
	}
	st.Field = c.PlotField
	if sink != nil {
		st.Publisher = timestepper.NewPublisher(sink)
	}
	if verbose {
		interior := c.Interior()
		st.OnStep = func(step int, t float64, x []float64) {
			if wp.PrintEvery > 0 && step%wp.PrintEvery == 0 {
				fmt.Printf("Time = %8.4f, energy = %12.6e, interior = %12.6e\n",
					t, c.Energy(x), c.EnergyOn(x, interior))
			}
		}
	}
	if res, err = st.Run(); err != nil {
		return
	}
	if verbose {
		fmt.Printf("Steps = %d, t = %8.5f, energy = %12.6e, dropped frames = %d, elapsed = %v\n",
			res.Steps, res.Time, c.Energy(c.X), res.DroppedFrames, res.Elapsed)
	}
	return
}
