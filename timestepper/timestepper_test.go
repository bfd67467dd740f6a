package timestepper

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gohdg/operators"
	"github.com/notargets/gohdg/solvers"
)

func TestNumSteps(t *testing.T) {
	assert.Equal(t, 4, NumSteps(1, 0.3))
	assert.Equal(t, 1000, NumSteps(1, 1.e-3))
	assert.Equal(t, 3, NumSteps(0.3, 0.1))
	assert.Equal(t, 7, NumSteps(0.7, 0.1))
	assert.Equal(t, 0, NumSteps(0, 0.1))
	assert.Equal(t, 1, NumSteps(0.05, 0.1))
	// The final time is within one step of T
	for _, T := range []float64{0.33, 1, 2.5, 10} {
		dt := 0.07
		n := NumSteps(T, dt)
		assert.True(t, float64(n)*dt >= T-1.e-12 && float64(n)*dt < T+dt)
	}
}

func TestEnvelopes(t *testing.T) {
	var (
		tpeak = 1.
		fcen  = 5 / 1.542
	)
	// Exactly zero outside the support
	for _, tt := range []float64{-1, 0, 2, 2.5, 100} {
		assert.Equal(t, 0., SourceEnvelope(tt, tpeak, fcen))
	}
	// Continuous at the support boundary
	assert.InDelta(t, 0., SourceEnvelope(1.e-6, tpeak, fcen), 1.e-12)
	assert.InDelta(t, 0., SourceEnvelope(2-1.e-6, tpeak, fcen), 1.e-12)
	// Scaled so that the bump exp(-1/(1-s²)) reaches 2/√π at the peak
	tq := tpeak + 1/(4*fcen) // sin(2π fcen t) is close to ±1 near here
	s := (tq - tpeak) / tpeak
	expected := (2 * math.E / math.Sqrt(math.Pi)) * math.Sin(2*math.Pi*fcen*tq) * math.Exp(-1/(1-s*s))
	assert.InDelta(t, expected, SourceEnvelope(tq, tpeak, fcen), 1.e-15)
	assert.InDelta(t, 2/math.Sqrt(math.Pi)*math.Sin(2*math.Pi*fcen), SourceEnvelope(tpeak, tpeak, fcen), 1.e-14)
	assert.Equal(t, 0., SourceEnvelope(1, 0, fcen))

	env, err := NewSourceEnvelope(tpeak, fcen)
	require.NoError(t, err)
	assert.Equal(t, SourceEnvelope(0.7, tpeak, fcen), env(0.7))
	_, err = NewSourceEnvelope(0, fcen)
	assert.Error(t, err)
	_, err = NewSourceEnvelope(-1, fcen)
	assert.Error(t, err)

	assert.InDelta(t, math.Sin(2*math.Pi*fcen*tpeak), GaussianEnvelope(tpeak, tpeak, fcen, 0.1), 1.e-15)
	assert.Less(t, math.Abs(GaussianEnvelope(tpeak+1, tpeak, fcen, 0.1)), 1.e-20)
	_, err = NewGaussianEnvelope(tpeak, fcen, 0)
	assert.Error(t, err)
}

// decay multiplies the state by (1 - dt) every step
type decay struct {
	failAt   int
	nanAt    int
	step     int
	lastTime float64
}

func (d *decay) Step(x []float64, t, dt float64) error {
	d.step++
	d.lastTime = t
	if d.step == d.failAt {
		return fmt.Errorf("solver failed")
	}
	for i := range x {
		x[i] *= 1 - dt
	}
	if d.step == d.nanAt {
		x[0] = math.NaN()
	}
	return nil
}

func TestStepper(t *testing.T) {
	{
		var (
			mu     sync.Mutex
			frames []Frame
		)
		sink := FuncSink(func(f Frame) error {
			mu.Lock()
			frames = append(frames, f)
			mu.Unlock()
			return nil
		})
		sch := &decay{}
		st, err := NewStepper(Config{Dt: 0.1, FinalTime: 1, PlotEvery: 2}, sch, []float64{1, 2})
		require.NoError(t, err)
		st.Publisher = NewPublisher(sink)
		var steps []int
		st.OnStep = func(step int, tt float64, state []float64) {
			steps = append(steps, step)
			assert.InDelta(t, float64(step)*0.1, tt, 1.e-15)
		}
		res, err := st.Run()
		require.NoError(t, err)
		assert.Equal(t, 10, res.Steps)
		assert.Equal(t, 1., res.Time)
		assert.Equal(t, 10, len(steps))
		assert.InDelta(t, 0.9, sch.lastTime, 1.e-15)
		assert.InDelta(t, math.Pow(0.9, 10), st.State[0], 1.e-14)
		// Frames are copies of the state at the step they were taken
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 6, len(frames)+res.DroppedFrames)
		for _, f := range frames {
			assert.Equal(t, 0, f.Step%2)
			assert.InDelta(t, 2*math.Pow(0.9, float64(f.Step)), f.Field[1], 1.e-14)
		}
	}
	{ // Selected field
		sch := &decay{}
		st, err := NewStepper(Config{Dt: 0.5, FinalTime: 1, PlotEvery: 1}, sch, []float64{1, 2})
		require.NoError(t, err)
		got := make(chan Frame, 10)
		st.Publisher = NewPublisher(FuncSink(func(f Frame) error {
			got <- f
			return nil
		}))
		st.Field = func(state []float64) []float64 { return state[1:] }
		_, err = st.Run()
		require.NoError(t, err)
		close(got)
		for f := range got {
			assert.Equal(t, 1, len(f.Field))
		}
	}
	{ // A scheme error aborts with the step number
		st, err := NewStepper(Config{Dt: 0.1, FinalTime: 1}, &decay{failAt: 3}, []float64{1})
		require.NoError(t, err)
		res, err := st.Run()
		require.Error(t, err)
		var se *StepError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, 3, se.Step)
		assert.InDelta(t, 0.2, se.Time, 1.e-15)
		assert.Equal(t, 2, res.Steps)
	}
	{ // Non finite state aborts
		st, err := NewStepper(Config{Dt: 0.1, FinalTime: 1}, &decay{nanAt: 4}, []float64{1, 1})
		require.NoError(t, err)
		_, err = st.Run()
		var se *StepError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, 4, se.Step)
		assert.True(t, errors.Is(err, ErrNonFinite))
	}
	{ // Setup errors
		_, err := NewStepper(Config{Dt: 0, FinalTime: 1}, &decay{}, []float64{1})
		assert.Error(t, err)
		_, err = NewStepper(Config{Dt: 0.1, FinalTime: -1}, &decay{}, []float64{1})
		assert.Error(t, err)
		_, err = NewStepper(Config{Dt: 0.1, FinalTime: 1}, nil, []float64{1})
		assert.Error(t, err)
		_, err = NewStepper(Config{Dt: 0.1, FinalTime: 1}, &decay{}, []float64{math.Inf(1)})
		assert.Error(t, err)
	}
}

func TestPublisher(t *testing.T) {
	{ // A busy sink drops frames instead of blocking the caller
		var (
			entered = make(chan struct{}, 10)
			release = make(chan struct{})
		)
		p := NewPublisher(FuncSink(func(f Frame) error {
			entered <- struct{}{}
			<-release
			return nil
		}))
		assert.True(t, p.Publish(Frame{Step: 1}))
		<-entered // First frame is being shown
		assert.True(t, p.Publish(Frame{Step: 2}))
		assert.False(t, p.Publish(Frame{Step: 3}))
		assert.Equal(t, 1, p.Dropped())
		close(release)
		p.Close()
		assert.Equal(t, 2, p.Shown())
		p.Close() // Idempotent
	}
	{ // Sink failures are counted, not fatal
		p := NewPublisher(FuncSink(func(f Frame) error { return fmt.Errorf("no display") }))
		p.Publish(Frame{Step: 1, Field: []float64{1}})
		p.Close()
		assert.Equal(t, 1, p.Failed())
		assert.Equal(t, 0, p.Shown())
	}
	{
		p := NewPublisher(LogSink{})
		p.Publish(Frame{Step: 5, Time: 0.5, Field: []float64{-1, 3}})
		p.Close()
		assert.Equal(t, 1, p.Shown())
		// Frames after Close are dropped
		assert.False(t, p.Publish(Frame{Step: 6}))
		assert.Equal(t, 1, p.Dropped())
	}
}

func TestPanickingSink(t *testing.T) {
	sink := FuncSink(func(f Frame) error {
		if f.Step%4 == 0 {
			panic("render context lost")
		}
		return nil
	})
	shown := make(chan int, 10)
	st, err := NewStepper(Config{Dt: 0.1, FinalTime: 1, PlotEvery: 2, Blocking: true}, &decay{}, []float64{1})
	require.NoError(t, err)
	st.Publisher = NewPublisher(FuncSink(func(f Frame) error {
		defer func() { shown <- f.Step }()
		assert.True(t, f.Blocking)
		return sink.Show(f)
	}))
	res, err := st.Run()
	require.NoError(t, err)
	assert.Equal(t, 10, res.Steps)
	assert.InDelta(t, math.Pow(0.9, 10), st.State[0], 1.e-14)
	// Steps 0, 4 and 8 panic when they reach the sink; the others are shown
	close(shown)
	var nPanic, nShown int
	for step := range shown {
		if step%4 == 0 {
			nPanic++
		} else {
			nShown++
		}
	}
	assert.Equal(t, nPanic, st.Publisher.Failed())
	assert.Equal(t, nShown, st.Publisher.Shown())
	assert.Equal(t, 6, nPanic+nShown+res.DroppedFrames)

	// Running again on the closed publisher drops the frames
	st.State[0] = 1
	res, err = st.Run()
	require.NoError(t, err)
	assert.Equal(t, 10, res.Steps)
	assert.True(t, res.DroppedFrames >= 6)
}

func TestExplicit(t *testing.T) {
	F := operators.NewDiagonal([]float64{1, 2})
	J, err := solvers.NewJacobi(operators.NewDiagonal([]float64{2, 4}))
	require.NoError(t, err)
	{
		ex, err := NewExplicit(F, nil, nil, J)
		require.NoError(t, err)
		x := []float64{1, 1}
		require.NoError(t, ex.Step(x, 0, 0.1))
		assert.InDeltaSlice(t, []float64{0.95, 0.95}, x, 1.e-15)
	}
	{
		ex, err := NewExplicit(F, nil, []float64{1, 1}, J)
		require.NoError(t, err)
		x := []float64{1, 1}
		require.NoError(t, ex.Step(x, 0, 0.1))
		assert.InDeltaSlice(t, []float64{1, 0.975}, x, 1.e-15)
	}
	{
		ex, err := NewExplicit(F, operators.NewDiagonal([]float64{1, 1}), []float64{1, 1}, J)
		require.NoError(t, err)
		x := []float64{1, 1}
		require.NoError(t, ex.Step(x, 0, 0.1))
		assert.InDeltaSlice(t, []float64{0.95, 0.95}, x, 1.e-15)
	}
	{ // Solver failures propagate
		lap := dense(3, 3, 2, -1, 0, -1, 2, -1, 0, -1, 2)
		P, err := solvers.NewPCG(lap, nil, 1.e-14, 1)
		require.NoError(t, err)
		ex, err := NewExplicit(operators.NewDiagonal([]float64{1, 1, 1}), nil, nil, P)
		require.NoError(t, err)
		err = ex.Step([]float64{1, 1, 1}, 0, 0.1)
		assert.True(t, errors.Is(err, solvers.ErrNotConverged))
	}
	_, err = NewExplicit(F, nil, []float64{1}, J)
	assert.Error(t, err)
	_, err = NewExplicit(operators.NewDiagonal([]float64{1}), nil, nil, J)
	assert.Error(t, err)
	_, err = NewExplicit(nil, nil, nil, J)
	assert.Error(t, err)
}

func dense(r, c int, data ...float64) operators.Operator {
	return operators.NewDense(mat.NewDense(r, c, data))
}

func TestStaggered(t *testing.T) {
	var (
		B    = dense(2, 2, 0, 0, 1, 0) // B x = (0, p)
		Pinv = operators.NewDiagonal([]float64{1, 0})
		Uinv = operators.NewDiagonal([]float64{0, 1})
		zero = operators.NewDiagonal([]float64{0, 0})
	)
	{ // Source and stabilization, checked by hand
		sg, err := NewStaggered(StaggeredOperators{
			B: B, Dp: zero, Du: zero, Pinv: Pinv, Uinv: Uinv,
			S: dense(1, 2, 1, 0), Sinv: operators.NewDiagonal([]float64{1}),
			L: []float64{1, 0}, Envelope: func(float64) float64 { return 2 },
		})
		require.NoError(t, err)
		x := []float64{1, 0}
		require.NoError(t, sg.Step(x, 0, 0.1))
		assert.InDeltaSlice(t, []float64{1.2, 0.12}, x, 1.e-15)
		assert.InDeltaSlice(t, []float64{0.12}, sg.Stab, 1.e-15)
		require.NoError(t, sg.Step(x, 0.1, 0.1))
		assert.InDeltaSlice(t, []float64{1.376, 0.2576}, x, 1.e-14)
		assert.InDeltaSlice(t, []float64{0.2576}, sg.Stab, 1.e-14)
	}
	energy := func(sigma float64) float64 {
		sg, err := NewStaggered(StaggeredOperators{
			B: B, Dp: Pinv, Du: Uinv, Pinv: Pinv, Uinv: Uinv,
			S: dense(1, 2, 0, 0), Sinv: operators.NewDiagonal([]float64{1}),
			Sigma: sigma,
		})
		require.NoError(t, err)
		st, err := NewStepper(Config{Dt: 0.01, FinalTime: 10}, sg, []float64{1, 0})
		require.NoError(t, err)
		_, err = st.Run()
		require.NoError(t, err)
		return st.State[0]*st.State[0] + st.State[1]*st.State[1]
	}
	// Symplectic Euler keeps the oscillator energy bounded, damping removes it
	e0 := energy(0)
	assert.InDelta(t, 1., e0, 0.02)
	assert.Less(t, energy(0.5), 0.05*e0)
	{
		_, err := NewStaggered(StaggeredOperators{B: B, Dp: zero, Du: zero, Pinv: Pinv, Uinv: Uinv,
			S: dense(1, 3, 0, 0, 0), Sinv: operators.NewDiagonal([]float64{1})})
		assert.Error(t, err)
		_, err = NewStaggered(StaggeredOperators{B: B, Dp: zero, Du: zero, Pinv: Pinv})
		assert.Error(t, err)
		_, err = NewStaggered(StaggeredOperators{B: B, Dp: zero, Du: zero, Pinv: Pinv, Uinv: Uinv,
			S: dense(1, 2, 0, 0), Sinv: operators.NewDiagonal([]float64{1}), L: []float64{1, 0}})
		assert.Error(t, err)
	}
}
