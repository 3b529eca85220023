// Package cancel tracks the in-flight request and turns interrupts into cooperative cancellation.
package cancel

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
)

var (
	ErrRequestAlreadyActive = errors.New("a request is already running")
	ErrCancelled            = errors.New("request cancelled")
	ErrAlreadyListening     = errors.New("interrupt handler already installed")
)

// State is the lifecycle phase of the active request.
type State int

const (
	Idle State = iota
	Running
	CancelRequested
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case CancelRequested:
		return "cancel_requested"
	default:
		return "unknown"
	}
}

// Controller enforces at most one active request.
type Controller struct {
	mu        sync.Mutex
	state     State
	cancel    context.CancelFunc
	listening bool
}

// NewController creates a Controller in the Idle state.
func NewController() *Controller {
	return &Controller{}
}

// Begin moves Idle to Running and returns the context the request must observe.
func (c *Controller) Begin(parent context.Context) (context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Idle {
		return nil, ErrRequestAlreadyActive
	}
	ctx, cancel := context.WithCancel(parent)
	c.state = Running
	c.cancel = cancel
	return ctx, nil
}

// Interrupt asks the running request to unwind at its next suspension point.
// It returns false when there was nothing to cancel; repeated calls are no-ops.
func (c *Controller) Interrupt() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Running {
		return false
	}
	c.state = CancelRequested
	c.cancel()
	return true
}

// Finish returns the controller to Idle once the request has unwound.
func (c *Controller) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = Idle
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Listen consumes interrupt signals until ctx is done. A signal while a request runs
// cancels it; a signal while idle calls onIdle. Only one listener may be installed.
func (c *Controller) Listen(ctx context.Context, signals <-chan os.Signal, onIdle func()) error {
	c.mu.Lock()
	if c.listening {
		c.mu.Unlock()
		return ErrAlreadyListening
	}
	c.listening = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.listening = false
		c.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-signals:
			if !ok {
				return nil
			}
			if c.Interrupt() {
				continue
			}
			if c.State() == Idle && onIdle != nil {
				onIdle()
			}
		}
	}
}

// NotifyInterrupts installs the process SIGINT handler and blocks until ctx is done.
func (c *Controller) NotifyInterrupts(ctx context.Context, onIdle func()) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	return c.Listen(ctx, sigCh, onIdle)
}
