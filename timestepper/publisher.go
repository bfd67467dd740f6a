package timestepper

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/notargets/gohdg/utils"
)

// Frame is a snapshot of the displayed field. Field is owned by the frame.
type Frame struct {
	Step     int
	Time     float64
	Field    []float64
	Blocking bool // Forwarded to the sink, which may wait until the frame is drawn
}

// Sink displays frames. Errors are reported and otherwise ignored.
type Sink interface {
	Show(f Frame) error
}

// FuncSink adapts a function to a Sink
type FuncSink func(f Frame) error

func (fs FuncSink) Show(f Frame) error { return fs(f) }

// LogSink writes a one line summary of each frame
type LogSink struct {
	Logger *log.Logger
}

func (ls LogSink) Show(f Frame) error {
	fMin, fMax := utils.MinMax(f.Field)
	logger := ls.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("frame at step %d, t = %8.5f: min = %10.6f, max = %10.6f", f.Step, f.Time, fMin, fMax)
	return nil
}

/*
Publisher hands frames to a sink on its own goroutine. It holds at most one
pending frame; a frame offered while one is pending is dropped and counted,
so the time loop never waits on the sink. A sink that fails or panics is
counted and logged, the next frame is still offered to it.

A Publisher is used for one run: frames published after Close are dropped.
*/
type Publisher struct {
	sink    Sink
	frames  chan Frame
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
	dropped atomic.Int64
	shown   atomic.Int64
	failed  atomic.Int64
}

func NewPublisher(sink Sink) (p *Publisher) {
	p = &Publisher{
		sink:   sink,
		frames: make(chan Frame, 1),
	}
	p.wg.Add(1)
	go p.run()
	return
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for f := range p.frames {
		if err := p.show(f); err != nil {
			p.failed.Add(1)
			log.Printf("visualization of step %d failed: %v", f.Step, err)
			continue
		}
		p.shown.Add(1)
	}
}

func (p *Publisher) show(f Frame) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panicked: %v", r)
		}
	}()
	return p.sink.Show(f)
}

// Publish offers a frame without blocking and reports whether it was queued
func (p *Publisher) Publish(f Frame) (queued bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.dropped.Add(1)
		return false
	}
	select {
	case p.frames <- f:
		return true
	default:
		p.dropped.Add(1)
		return false
	}
}

// Close waits for the pending frame to be shown and stops the publisher
func (p *Publisher) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.frames)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Publisher) Dropped() int { return int(p.dropped.Load()) }
func (p *Publisher) Shown() int   { return int(p.shown.Load()) }
func (p *Publisher) Failed() int  { return int(p.failed.Load()) }
