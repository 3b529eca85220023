// Package controller is the entry point for user input. It runs one request at
// a time and turns the outcome into something the user can read.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Cyclone1070/terminus/internal/cancel"
	"github.com/Cyclone1070/terminus/internal/command"
	"github.com/Cyclone1070/terminus/internal/display"
	"github.com/Cyclone1070/terminus/internal/logging"
	"github.com/Cyclone1070/terminus/internal/provider"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// CancelledMessage is shown when a request is interrupted.
const CancelledMessage = "Request cancelled."

const retryHint = "Check your network and credentials, then send the request again."

type orchestrator interface {
	Run(ctx context.Context, userMessage string) error
}

type commandHandler interface {
	Handle(ctx context.Context, line string) (bool, error)
}

// Controller serialises requests and reports their outcome.
type Controller struct {
	requests *cancel.Controller
	orch     orchestrator
	commands commandHandler
	sink     display.Sink
	logger   *log.Logger
	newID    func() string
}

// New creates a Controller. commands may be nil, in which case every line is a request.
func New(requests *cancel.Controller, orch orchestrator, commands commandHandler, sink display.Sink, logger *log.Logger) *Controller {
	return &Controller{
		requests: requests,
		orch:     orch,
		commands: commands,
		sink:     display.OrDiscard(sink),
		logger:   logging.OrDiscard(logger),
		newID:    uuid.NewString,
	}
}

// Submit routes a line typed by the user. Built-in commands run directly;
// anything else becomes a request. command.ErrExit is returned untouched.
func (c *Controller) Submit(ctx context.Context, line string) error {
	if c.commands != nil {
		handled, err := c.commands.Handle(ctx, line)
		if handled {
			if err != nil && !errors.Is(err, command.ErrExit) {
				c.sink.RenderError(err)
			}
			return err
		}
	}
	return c.Handle(ctx, line)
}

// Handle runs input as a request and blocks until it ends. A second request
// while one is active is rejected with cancel.ErrRequestAlreadyActive.
// Cancellation returns cancel.ErrCancelled after the user has been told.
func (c *Controller) Handle(ctx context.Context, input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	reqCtx, err := c.requests.Begin(ctx)
	if err != nil {
		c.sink.RenderError(err)
		return err
	}
	defer c.requests.Finish()

	logger := c.logger.With("request", c.newID())
	logger.Info("request started", "length", len(input))
	start := time.Now()

	err = c.orch.Run(reqCtx, input)
	return c.report(logger, err, time.Since(start))
}

// Interrupt asks the active request to stop. It reports whether one was running.
func (c *Controller) Interrupt() bool {
	return c.requests.Interrupt()
}

// State returns the request lifecycle state.
func (c *Controller) State() cancel.State {
	return c.requests.State()
}

func (c *Controller) report(logger *log.Logger, err error, elapsed time.Duration) error {
	switch {
	case err == nil:
		logger.Info("request finished", "elapsed", elapsed.Round(time.Millisecond))
		return nil

	case errors.Is(err, cancel.ErrCancelled), errors.Is(err, context.Canceled):
		logger.Info("request cancelled", "elapsed", elapsed.Round(time.Millisecond))
		c.sink.RenderStatus(CancelledMessage)
		if !errors.Is(err, cancel.ErrCancelled) {
			err = fmt.Errorf("%w: %v", cancel.ErrCancelled, err)
		}
		return err

	case errors.Is(err, provider.ErrProviderUnavailable):
		logger.Error("provider unavailable", "err", err)
		c.sink.RenderError(fmt.Errorf("%w\n%s", err, retryHint))
		return err

	default:
		logger.Error("request failed", "err", err)
		c.sink.RenderError(err)
		return err
	}
}
