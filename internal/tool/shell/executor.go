package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// ErrTimeout is returned when a command outlives its timeout.
var ErrTimeout = errors.New("command timed out")

// Result is the outcome of one command.
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
}

// CommandError reports a command that could not be started.
type CommandError struct {
	Cmd   string
	Cause error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("start %s: %v", e.Cmd, e.Cause)
}

func (e *CommandError) Unwrap() error { return e.Cause }

// Executor runs commands directly, without a shell, capturing capped output.
type Executor struct {
	maxOutput   int
	sampleSize  int
	gracePeriod time.Duration
}

// NewExecutor creates an Executor keeping at most maxOutput bytes per stream.
func NewExecutor(maxOutput int64) *Executor {
	return &Executor{
		maxOutput:   int(maxOutput),
		sampleSize:  8000,
		gracePeriod: 2 * time.Second,
	}
}

// Run executes command in dir. A ctx that is already done stops the command
// from starting; once started it runs to completion and only the timeout stops
// it, by sending an interrupt first and killing the process if it is still alive
// after the grace period. A non-zero exit is reported in Result, not as an error.
func (e *Executor) Run(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*Result, error) {
	if len(command) == 0 {
		return nil, os.ErrInvalid
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stdout := newCollector(e.maxOutput, e.sampleSize)
	stderr := newCollector(e.maxOutput, e.sampleSize)

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdin = nil
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	// Children that inherit the pipes must not hold Wait open forever.
	cmd.WaitDelay = e.gracePeriod

	if err := cmd.Start(); err != nil {
		return nil, &CommandError{Cmd: command[0], Cause: err}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	var runErr error
	select {
	case runErr = <-done:
		if errors.Is(runErr, exec.ErrWaitDelay) {
			runErr = nil
		}
	case <-timer:
		_ = cmd.Process.Signal(os.Interrupt)
		select {
		case <-done:
		case <-time.After(e.gracePeriod):
			_ = cmd.Process.Kill()
			<-done
		}
		runErr = ErrTimeout
	}

	res := &Result{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Truncated: stdout.Truncated() || stderr.Truncated(),
		ExitCode:  exitCode(runErr),
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return res, nil
	}
	return res, runErr
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
