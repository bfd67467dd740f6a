package Transport2D

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gohdg/DG2D"
	"github.com/notargets/gohdg/InputParameters"
	"github.com/notargets/gohdg/geometry2D"
	"github.com/notargets/gohdg/timestepper"
)

func TestRotation(t *testing.T) {
	m, err := geometry2D.NewRectangleMesh(0, 1, 0, 1, 20, 20)
	require.NoError(t, err)
	tp := InputParameters.NewTransportDefaults()
	tp.FinalTime = 1
	tp.PlotEvery = 100
	c, err := NewTransport(m, tp)
	require.NoError(t, err)

	var (
		mass0  = DG2D.Integral(m, c.U)
		norm0  = DG2D.L2Norm(m, c.U)
		mu     sync.Mutex
		frames int
	)
	res, err := c.Run(timestepper.FuncSink(func(f timestepper.Frame) error {
		mu.Lock()
		frames++
		mu.Unlock()
		return nil
	}), false)
	require.NoError(t, err)
	assert.Equal(t, 1000, res.Steps)
	assert.InDelta(t, 1., res.Time, 1.e-12)
	mu.Lock()
	assert.Equal(t, 11, frames+res.DroppedFrames)
	mu.Unlock()

	// Upwinding with zero inflow only loses mass, and its numerical diffusion
	// spreads the bump over a few cells
	ratio := DG2D.L2Norm(m, c.U) / norm0
	assert.True(t, ratio > 0.25 && ratio < 0.85, "norm ratio %g", ratio)
	massRatio := DG2D.Integral(m, c.U) / mass0
	assert.True(t, massRatio > 0.95 && massRatio <= 1+1.e-9, "mass ratio %g", massRatio)
	for _, u := range c.U {
		assert.True(t, u >= -1.e-14)
	}
	// The bump has turned one radian clockwise about the center
	cent, err := DG2D.Centroid(m, c.U)
	require.NoError(t, err)
	assert.InDelta(t, 0.5+0.25*math.Sin(1), cent[0], 0.05)
	assert.InDelta(t, 0.5+0.25*math.Cos(1), cent[1], 0.05)
}

func TestTransportSetup(t *testing.T) {
	m, err := geometry2D.NewRectangleMesh(0, 1, 0, 1, 4, 4)
	require.NoError(t, err)
	tp := InputParameters.NewTransportDefaults()
	tp.Dt = 0
	_, err = NewTransport(m, tp)
	assert.Error(t, err)

	tp = InputParameters.NewTransportDefaults()
	tp.FinalTime = 0
	c, err := NewTransport(m, tp)
	require.NoError(t, err)
	u0 := append([]float64{}, c.U...)
	res, err := c.Run(nil, true)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Steps)
	assert.Equal(t, u0, c.U)
}
