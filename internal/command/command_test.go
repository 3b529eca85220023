package command

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Cyclone1070/terminus/internal/cancel"
	"github.com/Cyclone1070/terminus/internal/orchestrator/models"
	"github.com/Cyclone1070/terminus/internal/provider"
	"github.com/Cyclone1070/terminus/internal/session"
	"github.com/Cyclone1070/terminus/internal/testing/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockRequests struct {
	state cancel.State
}

func (m *MockRequests) State() cancel.State { return m.state }

type MockBuilder struct {
	BuildFunc func(ctx context.Context, model string) (provider.Provider, error)
}

func (m *MockBuilder) Build(ctx context.Context, model string) (provider.Provider, error) {
	if m.BuildFunc != nil {
		return m.BuildFunc(ctx, model)
	}
	return testhelpers.NewMockProvider().WithModel(model), nil
}

type MockHolder struct {
	current provider.Provider
}

func (m *MockHolder) Provider() provider.Provider     { return m.current }
func (m *MockHolder) SetProvider(p provider.Provider) { m.current = p }

type listingProvider struct {
	*testhelpers.MockProvider
	names []string
	err   error
}

func (p *listingProvider) ListModels(context.Context) ([]string, error) {
	return p.names, p.err
}

type fixture struct {
	session  *session.Store
	requests *MockRequests
	builder  *MockBuilder
	holder   *MockHolder
	ui       *testhelpers.MockUI
	handler  *Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := session.New(session.Options{
		WorkingDir:          t.TempDir(),
		Model:               "gemini-2.5-flash",
		AllowedCommands:     []string{"ls", "cat"},
		ConfirmationEnabled: true,
	})
	require.NoError(t, err)
	f := &fixture{
		session:  s,
		requests: &MockRequests{},
		builder:  &MockBuilder{},
		holder:   &MockHolder{current: testhelpers.NewMockProvider().WithModel("gemini-2.5-flash")},
		ui:       &testhelpers.MockUI{},
	}
	f.handler = New(Deps{
		Session:   s,
		Requests:  f.requests,
		Builder:   f.builder,
		Providers: f.holder,
		Sink:      f.ui,
		Version:   "1.2.3",
	})
	return f
}

func (f *fixture) lastText(t *testing.T) string {
	t.Helper()
	texts := f.ui.GetTexts()
	require.NotEmpty(t, texts)
	return texts[len(texts)-1]
}

func TestHandle_PlainTextIsNotACommand(t *testing.T) {
	f := newFixture(t)

	handled, err := f.handler.Handle(context.Background(), "list the files")

	assert.False(t, handled)
	assert.NoError(t, err)
	assert.False(t, IsCommand("list the files"))
}

func TestHandle_ExitWords(t *testing.T) {
	f := newFixture(t)
	for _, line := range []string{"exit", "quit", "  QUIT ", "/exit"} {
		handled, err := f.handler.Handle(context.Background(), line)
		assert.True(t, handled, line)
		assert.ErrorIs(t, err, ErrExit, line)
		assert.True(t, IsCommand(line), line)
	}
}

func TestHandle_Unknown(t *testing.T) {
	f := newFixture(t)

	handled, err := f.handler.Handle(context.Background(), "/nope")

	assert.True(t, handled)
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.Contains(t, err.Error(), "/help")
}

func TestHelp_ListsCommands(t *testing.T) {
	f := newFixture(t)

	_, err := f.handler.Handle(context.Background(), "/help")

	require.NoError(t, err)
	text := f.lastText(t)
	for _, name := range []string{"/clear", "/yolo", "/dump", "/status", "/pwd", "/model [name]", "/exit"} {
		assert.Contains(t, text, name)
	}
}

func TestClear(t *testing.T) {
	f := newFixture(t)
	f.session.Append(models.UserMessage("hi"), models.Message{Role: models.RoleAssistant, Content: "hello"})

	_, err := f.handler.Handle(context.Background(), "/clear")

	require.NoError(t, err)
	assert.Equal(t, 0, f.session.Len())
	assert.Contains(t, f.ui.GetStatuses(), "Conversation history cleared")
}

func TestClear_RefusedWhileRunning(t *testing.T) {
	f := newFixture(t)
	f.session.Append(models.UserMessage("hi"))
	f.requests.state = cancel.Running

	handled, err := f.handler.Handle(context.Background(), "/clear")

	assert.True(t, handled)
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 1, f.session.Len())
}

func TestYolo_Toggles(t *testing.T) {
	f := newFixture(t)

	_, err := f.handler.Handle(context.Background(), "/yolo")
	require.NoError(t, err)
	assert.False(t, f.session.ConfirmationEnabled())

	_, err = f.handler.Handle(context.Background(), "/yolo")
	require.NoError(t, err)
	assert.True(t, f.session.ConfirmationEnabled())

	assert.Equal(t, []string{
		"Tool confirmations disabled (yolo mode)",
		"Tool confirmations enabled",
	}, f.ui.GetStatuses())
}

func TestDump(t *testing.T) {
	f := newFixture(t)
	f.session.Append(
		models.UserMessage("read main.go"),
		models.Message{Role: models.RoleAssistant, ToolCalls: []models.ToolCall{{ID: "1", Name: "read_file", Args: map[string]any{"path": "main.go"}}}},
		models.ToolMessage(models.ToolResult{ID: "1", Name: "read_file", Status: models.StatusSuccess, Content: "package main"}),
	)

	_, err := f.handler.Handle(context.Background(), "/dump")

	require.NoError(t, err)
	text := f.lastText(t)
	assert.Contains(t, text, "(3)")
	assert.Contains(t, text, "read main.go")
	assert.Contains(t, text, "call `read_file` {\"path\":\"main.go\"}")
	assert.Contains(t, text, "result `read_file` [success] package main")
}

func TestDump_Empty(t *testing.T) {
	f := newFixture(t)

	_, err := f.handler.Handle(context.Background(), "/dump")

	require.NoError(t, err)
	assert.Equal(t, "No messages yet.", f.lastText(t))
}

func TestHistory_OnlyUserQuestions(t *testing.T) {
	f := newFixture(t)
	f.session.Append(
		models.UserMessage("first question"),
		models.Message{Role: models.RoleAssistant, Content: "answer"},
		models.UserMessage(strings.Repeat("x", 200)),
	)

	_, err := f.handler.Handle(context.Background(), "/history")

	require.NoError(t, err)
	text := f.lastText(t)
	assert.Contains(t, text, "1. first question")
	assert.Contains(t, text, "2. "+strings.Repeat("x", previewLength)+"...")
	assert.NotContains(t, text, "answer")
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	f.session.AllowToolAlways("write_file")

	_, err := f.handler.Handle(context.Background(), "/status")

	require.NoError(t, err)
	text := f.lastText(t)
	assert.Contains(t, text, "Model: gemini-2.5-flash")
	assert.Contains(t, text, "Confirmations: enabled")
	assert.Contains(t, text, "Always allowed tools: write_file")
	assert.Contains(t, text, "Allowed commands: 2")
	assert.Contains(t, text, "Request: idle")
	assert.Contains(t, text, f.session.WorkingDir())
}

func TestPwd(t *testing.T) {
	f := newFixture(t)

	_, err := f.handler.Handle(context.Background(), "/pwd")

	require.NoError(t, err)
	assert.Equal(t, "Current directory: "+f.session.WorkingDir(), f.lastText(t))
}

func TestModel_ShowsCurrent(t *testing.T) {
	f := newFixture(t)

	_, err := f.handler.Handle(context.Background(), "/model")

	require.NoError(t, err)
	assert.Contains(t, f.lastText(t), "Current model: gemini-2.5-flash")
}

func TestModel_Switches(t *testing.T) {
	f := newFixture(t)
	var built string
	f.builder.BuildFunc = func(ctx context.Context, model string) (provider.Provider, error) {
		built = model
		return testhelpers.NewMockProvider().WithModel("claude-sonnet-4"), nil
	}

	_, err := f.handler.Handle(context.Background(), "/model claude-sonnet-4")

	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4", built)
	assert.Equal(t, "claude-sonnet-4", f.session.Model())
	assert.Equal(t, "claude-sonnet-4", f.holder.Provider().Model())
	assert.Contains(t, f.ui.GetStatuses(), "Switched model from gemini-2.5-flash to claude-sonnet-4")
}

func TestModel_BuildFailureKeepsCurrent(t *testing.T) {
	f := newFixture(t)
	previous := f.holder.Provider()
	f.builder.BuildFunc = func(ctx context.Context, model string) (provider.Provider, error) {
		return nil, &provider.ProviderError{Code: provider.ErrorCodeConfig, Message: "ANTHROPIC_API_KEY is not set"}
	}

	_, err := f.handler.Handle(context.Background(), "/model claude-sonnet-4")

	assert.ErrorIs(t, err, provider.ErrProviderUnavailable)
	assert.Equal(t, "gemini-2.5-flash", f.session.Model())
	assert.Same(t, previous, f.holder.Provider())
}

func TestModel_TooManyArgs(t *testing.T) {
	f := newFixture(t)

	_, err := f.handler.Handle(context.Background(), "/model a b")

	assert.ErrorIs(t, err, ErrUsage)
}

func TestModels_ListsAndMarksCurrent(t *testing.T) {
	f := newFixture(t)
	f.holder.current = &listingProvider{
		MockProvider: testhelpers.NewMockProvider().WithModel("gemini-2.5-flash"),
		names:        []string{"gemini-2.5-pro", "gemini-2.5-flash"},
	}

	_, err := f.handler.Handle(context.Background(), "/models")

	require.NoError(t, err)
	text := f.lastText(t)
	assert.Contains(t, text, "- gemini-2.5-flash (current)")
	assert.Contains(t, text, "- gemini-2.5-pro\n")
	assert.Less(t, strings.Index(text, "flash"), strings.Index(text, "pro"))
}

func TestModels_ListFailure(t *testing.T) {
	f := newFixture(t)
	f.holder.current = &listingProvider{
		MockProvider: testhelpers.NewMockProvider(),
		err:          errors.New("dial tcp: timeout"),
	}

	_, err := f.handler.Handle(context.Background(), "/models")

	assert.ErrorIs(t, err, provider.ErrProviderUnavailable)
}

func TestModels_NotSupported(t *testing.T) {
	f := newFixture(t)

	_, err := f.handler.Handle(context.Background(), "/models")

	require.NoError(t, err)
	assert.Contains(t, f.lastText(t), "cannot list")
}

func TestVersion(t *testing.T) {
	f := newFixture(t)

	_, err := f.handler.Handle(context.Background(), "/version")

	require.NoError(t, err)
	assert.Contains(t, f.lastText(t), "terminus 1.2.3")
}
