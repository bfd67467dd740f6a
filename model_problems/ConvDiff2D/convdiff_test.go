package ConvDiff2D

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gohdg/DG2D"
	"github.com/notargets/gohdg/InputParameters"
	"github.com/notargets/gohdg/geometry2D"
	"github.com/notargets/gohdg/utils"
)

func shortRun(FinalTime float64) *InputParameters.ConvDiffParameters {
	cp := InputParameters.NewConvDiffDefaults()
	cp.FinalTime = FinalTime
	cp.PlotEvery = 0
	return cp
}

func TestConvDiff(t *testing.T) {
	m, err := geometry2D.NewDelaunayMesh(0, 1, 0, 1, 10, 10, 0.2, 3)
	require.NoError(t, err)
	c, err := NewConvDiff(m, shortRun(0.1))
	require.NoError(t, err)
	norm0 := DG2D.L2Norm(m, c.U())
	res, err := c.Run(nil, false)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Steps)
	assert.Equal(t, -1, utils.FirstNonFinite(c.X))
	norm := DG2D.L2Norm(m, c.U())
	assert.True(t, norm < norm0 && norm > 0.2*norm0, "norm %g of %g", norm, norm0)
	// Boundary traces stay at their Dirichlet value
	uhat := c.UHat()
	for _, f := range m.BoundaryFaces() {
		assert.Equal(t, 0., uhat[f])
	}

	// The iterative solver reaches the same state
	cp := shortRun(0.1)
	cp.Solver = "pcg"
	cp.Tolerance = 1.e-13
	cpg, err := NewConvDiff(m, cp)
	require.NoError(t, err)
	_, err = cpg.Run(nil, true)
	require.NoError(t, err)
	for i := range c.X {
		assert.InDelta(t, c.X[i], cpg.X[i], 1.e-9)
	}

	// More diffusion damps more
	cp = shortRun(0.1)
	cp.Epsilon = 1.e-2
	cd, err := NewConvDiff(m, cp)
	require.NoError(t, err)
	_, err = cd.Run(nil, false)
	require.NoError(t, err)
	assert.Less(t, DG2D.L2Norm(m, cd.U()), norm)
}

func TestConvDiffSetup(t *testing.T) {
	m, err := geometry2D.NewRectangleMesh(0, 1, 0, 1, 4, 4)
	require.NoError(t, err)
	// Without diffusion the traces carry no mass and M* is singular
	cp := shortRun(0.1)
	cp.Epsilon = 0
	_, err = NewConvDiff(m, cp)
	assert.Error(t, err)

	cp = shortRun(0.1)
	cp.Solver = "lu"
	_, err = NewConvDiff(m, cp)
	assert.Error(t, err)

	c, err := NewConvDiff(m, shortRun(0))
	require.NoError(t, err)
	assert.Equal(t, c.Layout.NDof, len(c.X))
	assert.Equal(t, m.K(), len(c.U()))
	assert.Equal(t, m.NFaces(), len(c.UHat()))
	for _, v := range c.UHat() {
		assert.Equal(t, 0., v)
	}
}
