// Package timestepper advances semi-discrete systems with a fixed step,
// applying pre-built operators and solvers once per step, and feeds
// snapshots to a visualization sink without ever waiting on it.
package timestepper

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/notargets/gohdg/utils"
)

var ErrNonFinite = errors.New("state is not finite")

// StepError reports the step at which a run was aborted
type StepError struct {
	Step int
	Time float64
	Err  error
}

func (se *StepError) Error() string {
	return fmt.Sprintf("step %d at t = %g: %v", se.Step, se.Time, se.Err)
}

func (se *StepError) Unwrap() error { return se.Err }

// Scheme advances the state in place by one step of size dt starting at t
type Scheme interface {
	Step(state []float64, t, dt float64) error
}

// NumSteps is ceil(T/dt), with quotients within round off of an integer
// taken as that integer
func NumSteps(T, dt float64) int {
	q := T / dt
	n := math.Round(q)
	if math.Abs(q-n) <= 1.e-9*math.Max(1, math.Abs(q)) {
		return int(n)
	}
	return int(math.Ceil(q))
}

type Config struct {
	Dt, FinalTime float64
	PlotEvery     int  // Steps between frames, 0 disables plotting
	PrintEvery    int  // Steps between progress lines when Verbose
	Blocking      bool // Mark frames blocking for the sink
	Verbose       bool
}

func (c Config) Validate() (err error) {
	switch {
	case !(c.Dt > 0) || math.IsInf(c.Dt, 0):
		err = fmt.Errorf("time step must be positive, have %g", c.Dt)
	case !(c.FinalTime >= 0) || math.IsInf(c.FinalTime, 0):
		err = fmt.Errorf("final time must be non negative, have %g", c.FinalTime)
	case c.PlotEvery < 0 || c.PrintEvery < 0:
		err = fmt.Errorf("plot and print intervals must be non negative")
	}
	return
}

type Result struct {
	Steps         int
	Time          float64
	DroppedFrames int
	Elapsed       time.Duration
}

/*
Stepper runs a scheme from t = 0 to FinalTime. Steps are strictly
sequential; the scheme may parallelize inside a step. Every PlotEvery steps
Field selects what is shown, a copy of it goes to the publisher.
*/
type Stepper struct {
	Config
	Scheme    Scheme
	State     []float64
	Field     func(state []float64) []float64 // Defaults to the whole state
	Publisher *Publisher
	// OnStep is called after every completed step, on the stepping goroutine
	OnStep func(step int, t float64, state []float64)
}

func NewStepper(cfg Config, scheme Scheme, state []float64) (st *Stepper, err error) {
	if err = cfg.Validate(); err != nil {
		return
	}
	if scheme == nil {
		err = fmt.Errorf("stepper needs a scheme")
		return
	}
	if len(state) == 0 {
		err = fmt.Errorf("stepper needs a non empty state")
		return
	}
	if i := utils.FirstNonFinite(state); i >= 0 {
		err = fmt.Errorf("initial state entry %d is %v", i, state[i])
		return
	}
	st = &Stepper{
		Config: cfg,
		Scheme: scheme,
		State:  state,
	}
	return
}

func (st *Stepper) publish(step int, t float64) {
	if st.Publisher == nil || st.PlotEvery == 0 || step%st.PlotEvery != 0 {
		return
	}
	field := st.State
	if st.Field != nil {
		field = st.Field(st.State)
	}
	f := Frame{
		Step:     step,
		Time:     t,
		Field:    make([]float64, len(field)),
		Blocking: st.Blocking,
	}
	copy(f.Field, field)
	st.Publisher.Publish(f)
}

// Run executes NumSteps(FinalTime, Dt) steps. The time after step n is n*Dt.
// The publisher, if any, is closed before Run returns.
func (st *Stepper) Run() (res Result, err error) {
	var (
		nSteps = NumSteps(st.FinalTime, st.Dt)
		start  = time.Now()
	)
	defer func() {
		if st.Publisher != nil {
			st.Publisher.Close()
			res.DroppedFrames = st.Publisher.Dropped()
		}
		res.Elapsed = time.Since(start)
	}()
	if st.Verbose {
		fmt.Printf("Running %d steps of size %g to t = %g\n", nSteps, st.Dt, st.FinalTime)
	}
	st.publish(0, 0)
	for n := 1; n <= nSteps; n++ {
		t0 := float64(n-1) * st.Dt
		if err = st.Scheme.Step(st.State, t0, st.Dt); err != nil {
			err = &StepError{Step: n, Time: t0, Err: err}
			return
		}
		t := float64(n) * st.Dt
		if i := utils.FirstNonFinite(st.State); i >= 0 {
			err = &StepError{Step: n, Time: t,
				Err: fmt.Errorf("%w: entry %d is %v", ErrNonFinite, i, st.State[i])}
			return
		}
		res.Steps, res.Time = n, t
		if st.OnStep != nil {
			st.OnStep(n, t, st.State)
		}
		st.publish(n, t)
		if st.Verbose && st.PrintEvery > 0 && n%st.PrintEvery == 0 {
			fmt.Printf("Time = %8.4f, step %d of %d\n", t, n, nSteps)
		}
	}
	return
}
