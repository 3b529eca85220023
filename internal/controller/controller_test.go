package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Cyclone1070/terminus/internal/cancel"
	"github.com/Cyclone1070/terminus/internal/command"
	orchpkg "github.com/Cyclone1070/terminus/internal/orchestrator"
	"github.com/Cyclone1070/terminus/internal/orchestrator/models"
	"github.com/Cyclone1070/terminus/internal/provider"
	"github.com/Cyclone1070/terminus/internal/session"
	"github.com/Cyclone1070/terminus/internal/testing/testhelpers"
	"github.com/Cyclone1070/terminus/internal/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type MockOrchestrator struct {
	RunFunc func(ctx context.Context, msg string) error
}

func (m *MockOrchestrator) Run(ctx context.Context, msg string) error {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, msg)
	}
	return nil
}

type MockCommands struct {
	HandleFunc func(ctx context.Context, line string) (bool, error)
}

func (m *MockCommands) Handle(ctx context.Context, line string) (bool, error) {
	if m.HandleFunc != nil {
		return m.HandleFunc(ctx, line)
	}
	return false, nil
}

func newController(orch orchestrator, commands commandHandler) (*Controller, *testhelpers.MockUI) {
	ui := &testhelpers.MockUI{}
	c := New(cancel.NewController(), orch, commands, ui, nil)
	c.newID = func() string { return "req-1" }
	return c, ui
}

func TestHandle_Success(t *testing.T) {
	var got string
	c, ui := newController(&MockOrchestrator{RunFunc: func(ctx context.Context, msg string) error {
		got = msg
		return nil
	}}, nil)

	err := c.Handle(context.Background(), "  list files  ")

	require.NoError(t, err)
	assert.Equal(t, "list files", got)
	assert.Equal(t, cancel.Idle, c.State())
	assert.Empty(t, ui.GetErrors())
}

func TestHandle_EmptyInputIgnored(t *testing.T) {
	called := false
	c, _ := newController(&MockOrchestrator{RunFunc: func(context.Context, string) error {
		called = true
		return nil
	}}, nil)

	require.NoError(t, c.Handle(context.Background(), "   "))
	assert.False(t, called)
}

func TestHandle_RejectsConcurrentRequest(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c, ui := newController(&MockOrchestrator{RunFunc: func(ctx context.Context, msg string) error {
		close(started)
		<-release
		return nil
	}}, nil)

	done := make(chan error, 1)
	go func() { done <- c.Handle(context.Background(), "first") }()
	<-started

	err := c.Handle(context.Background(), "second")

	assert.ErrorIs(t, err, cancel.ErrRequestAlreadyActive)
	assert.Equal(t, cancel.Running, c.State())
	require.Len(t, ui.GetErrors(), 1)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, cancel.Idle, c.State())
}

func TestInterrupt_CancelsRunningRequest(t *testing.T) {
	started := make(chan struct{})
	c, ui := newController(&MockOrchestrator{RunFunc: func(ctx context.Context, msg string) error {
		close(started)
		<-ctx.Done()
		return fmt.Errorf("%w: %v", cancel.ErrCancelled, ctx.Err())
	}}, nil)

	done := make(chan error, 1)
	go func() { done <- c.Handle(context.Background(), "long task") }()
	<-started

	assert.True(t, c.Interrupt())
	err := <-done

	assert.ErrorIs(t, err, cancel.ErrCancelled)
	assert.Equal(t, cancel.Idle, c.State())
	assert.Equal(t, []string{CancelledMessage}, ui.GetStatuses())
	assert.Empty(t, ui.GetErrors())
}

func TestInterrupt_IdleIsNoop(t *testing.T) {
	c, _ := newController(&MockOrchestrator{}, nil)

	assert.False(t, c.Interrupt())
	assert.Equal(t, cancel.Idle, c.State())
}

func TestHandle_BareContextCanceledReportedAsCancellation(t *testing.T) {
	c, ui := newController(&MockOrchestrator{RunFunc: func(ctx context.Context, msg string) error {
		return context.Canceled
	}}, nil)

	err := c.Handle(context.Background(), "x")

	assert.ErrorIs(t, err, cancel.ErrCancelled)
	assert.Equal(t, []string{CancelledMessage}, ui.GetStatuses())
}

func TestHandle_ProviderErrorShowsRetryHint(t *testing.T) {
	c, ui := newController(&MockOrchestrator{RunFunc: func(ctx context.Context, msg string) error {
		return &provider.ProviderError{Code: provider.ErrorCodeRateLimit, Message: "slow down", Retryable: true}
	}}, nil)

	err := c.Handle(context.Background(), "x")

	assert.ErrorIs(t, err, provider.ErrProviderUnavailable)
	errs := ui.GetErrors()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], provider.ErrProviderUnavailable)
	assert.Contains(t, errs[0].Error(), retryHint)
	assert.Equal(t, cancel.Idle, c.State())
}

func TestHandle_OtherErrorRendered(t *testing.T) {
	c, ui := newController(&MockOrchestrator{RunFunc: func(ctx context.Context, msg string) error {
		return orchpkg.ErrMaxIterations
	}}, nil)

	err := c.Handle(context.Background(), "x")

	assert.ErrorIs(t, err, orchpkg.ErrMaxIterations)
	require.Len(t, ui.GetErrors(), 1)
}

func TestSubmit_RoutesCommands(t *testing.T) {
	ran := false
	commands := &MockCommands{HandleFunc: func(ctx context.Context, line string) (bool, error) {
		return line == "/pwd", nil
	}}
	c, _ := newController(&MockOrchestrator{RunFunc: func(context.Context, string) error {
		ran = true
		return nil
	}}, commands)

	require.NoError(t, c.Submit(context.Background(), "/pwd"))
	assert.False(t, ran)

	require.NoError(t, c.Submit(context.Background(), "hello"))
	assert.True(t, ran)
}

func TestSubmit_CommandErrorRendered(t *testing.T) {
	commands := &MockCommands{HandleFunc: func(ctx context.Context, line string) (bool, error) {
		return true, command.ErrUnknownCommand
	}}
	c, ui := newController(&MockOrchestrator{}, commands)

	err := c.Submit(context.Background(), "/nope")

	assert.ErrorIs(t, err, command.ErrUnknownCommand)
	assert.Len(t, ui.GetErrors(), 1)
}

func TestSubmit_ExitNotRendered(t *testing.T) {
	commands := &MockCommands{HandleFunc: func(ctx context.Context, line string) (bool, error) {
		return true, command.ErrExit
	}}
	c, ui := newController(&MockOrchestrator{}, commands)

	err := c.Submit(context.Background(), "exit")

	assert.ErrorIs(t, err, command.ErrExit)
	assert.Empty(t, ui.GetErrors())
}

// Scenario tests below run the real orchestrator against a scripted provider.

type recordingEngine struct {
	mu    sync.Mutex
	calls []string
}

func (e *recordingEngine) Execute(ctx context.Context, call models.ToolCall) models.ToolResult {
	e.mu.Lock()
	e.calls = append(e.calls, call.ID)
	e.mu.Unlock()
	return models.ToolResult{ID: call.ID, Name: call.Name, Status: models.StatusSuccess, Content: "ok"}
}

func (e *recordingEngine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

type staticCatalog struct{}

func (staticCatalog) Descriptors() []tool.Descriptor { return []tool.Descriptor{{Name: "read_file"}} }

func newScenario(t *testing.T, p *testhelpers.MockProvider) (*Controller, *session.Store, *recordingEngine, *testhelpers.MockUI) {
	t.Helper()
	s, err := session.New(session.Options{WorkingDir: t.TempDir(), Model: p.Model()})
	require.NoError(t, err)
	engine := &recordingEngine{}
	ui := &testhelpers.MockUI{}
	orch := orchpkg.New(p, staticCatalog{}, engine, s, ui, orchpkg.Options{}, nil)
	return New(cancel.NewController(), orch, nil, ui, nil), s, engine, ui
}

func TestScenario_InterruptDuringSecondProviderCall(t *testing.T) {
	p := testhelpers.NewMockProvider().
		WithToolCallResponse("", models.ToolCall{ID: "step1", Name: "read_file", Args: map[string]any{}}).
		WithBlockingStep().
		WithToolCallResponse("", models.ToolCall{ID: "step3", Name: "read_file", Args: map[string]any{}})
	c, s, engine, ui := newScenario(t, p)

	second := make(chan struct{})
	var once sync.Once
	p.OnGenerateCalled = func(*provider.Request) {
		if p.Calls() == 1 {
			once.Do(func() { close(second) })
		}
	}

	done := make(chan error, 1)
	go func() { done <- c.Handle(context.Background(), "three steps") }()

	select {
	case <-second:
	case <-time.After(2 * time.Second):
		t.Fatal("second provider call never started")
	}
	require.Eventually(t, func() bool { return c.Interrupt() }, time.Second, time.Millisecond)

	err := <-done
	assert.ErrorIs(t, err, cancel.ErrCancelled)
	assert.Equal(t, cancel.Idle, c.State())
	assert.Equal(t, []string{"step1"}, engine.Calls())
	assert.Equal(t, 2, p.Calls())
	assert.Contains(t, ui.GetStatuses(), CancelledMessage)

	history := s.History()
	require.Len(t, history, 3)
	require.Len(t, history[2].ToolResults, 1)
	assert.Equal(t, "step1", history[2].ToolResults[0].ID)
}

func TestScenario_ProviderFailureMidPlan(t *testing.T) {
	p := testhelpers.NewMockProvider().
		WithToolCallResponse("", models.ToolCall{ID: "step1", Name: "read_file", Args: map[string]any{}}).
		WithError(errors.New("connection reset by peer"))
	c, s, engine, ui := newScenario(t, p)

	err := c.Handle(context.Background(), "two steps")

	assert.ErrorIs(t, err, provider.ErrProviderUnavailable)
	assert.Equal(t, cancel.Idle, c.State())
	assert.Equal(t, []string{"step1"}, engine.Calls())
	assert.Len(t, s.History(), 3)
	require.Len(t, ui.GetErrors(), 1)
}
