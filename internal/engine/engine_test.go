package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Cyclone1070/terminus/internal/gate"
	"github.com/Cyclone1070/terminus/internal/orchestrator/models"
	"github.com/Cyclone1070/terminus/internal/session"
	"github.com/Cyclone1070/terminus/internal/testing/testhelpers"
	"github.com/Cyclone1070/terminus/internal/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Text string `json:"text"`
}

type commandRequest struct {
	Command []string `json:"command"`
}

func (r *commandRequest) CommandRoot() string { return filepath.Base(r.Command[0]) }

type dirRequest struct {
	Path string `json:"path"`
}

type fixture struct {
	engine  *Engine
	session *session.Store
	ui      *testhelpers.MockUI
	runs    map[string]int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{ui: &testhelpers.MockUI{}, runs: map[string]int{}}

	s, err := session.New(session.Options{
		WorkingDir:          t.TempDir(),
		AllowedCommands:     []string{"ls"},
		ConfirmationEnabled: true,
	})
	require.NoError(t, err)
	f.session = s

	textSchema := &tool.Schema{
		Type:       tool.TypeObject,
		Properties: map[string]*tool.Schema{"text": {Type: tool.TypeString}},
		Required:   []string{"text"},
	}
	reg := tool.NewRegistry()
	tools := []tool.Tool{
		tool.New(tool.Descriptor{Name: "echo", Safety: tool.SafetySafe, Parameters: textSchema},
			func(ctx context.Context, tc tool.Context, req *echoRequest) (string, error) {
				f.runs["echo"]++
				return req.Text, nil
			}),
		tool.New(tool.Descriptor{Name: "write", Safety: tool.SafetyConfirm, Parameters: textSchema},
			func(ctx context.Context, tc tool.Context, req *echoRequest) (string, error) {
				f.runs["write"]++
				return "wrote " + req.Text, nil
			},
			tool.WithPreview(func(tc tool.Context, req *echoRequest) (tool.Preview, error) {
				return tool.Preview{Kind: tool.PreviewDiff, Title: "Write it", Body: "+" + req.Text}, nil
			})),
		tool.New(tool.Descriptor{Name: "shell", Safety: tool.SafetyConfirm, Parameters: &tool.Schema{
			Type:       tool.TypeObject,
			Properties: map[string]*tool.Schema{"command": {Type: tool.TypeArray, Items: &tool.Schema{Type: tool.TypeString}}},
			Required:   []string{"command"},
		}}, func(ctx context.Context, tc tool.Context, req *commandRequest) (string, error) {
			f.runs["shell"]++
			return "ok", nil
		}),
		tool.New(tool.Descriptor{Name: "boom", Safety: tool.SafetySafe},
			func(ctx context.Context, tc tool.Context, req *struct{}) (string, error) {
				return "", errors.New("disk on fire")
			}),
		tool.New(tool.Descriptor{Name: "panics", Safety: tool.SafetySafe},
			func(ctx context.Context, tc tool.Context, req *struct{}) (string, error) {
				panic("nil map")
			}),
		tool.New(tool.Descriptor{Name: "slow", Safety: tool.SafetySafe},
			func(ctx context.Context, tc tool.Context, req *struct{}) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			}),
		tool.New(tool.Descriptor{Name: "finishes", Safety: tool.SafetySafe},
			func(ctx context.Context, tc tool.Context, req *struct{}) (string, error) {
				<-ctx.Done()
				return "finished", nil
			}),
		tool.New(tool.Descriptor{Name: "cd", Safety: tool.SafetySafe, Parameters: &tool.Schema{
			Type:       tool.TypeObject,
			Properties: map[string]*tool.Schema{"path": {Type: tool.TypeString}},
		}}, func(ctx context.Context, tc tool.Context, req *dirRequest) (string, error) {
			if err := tc.ChangeDir(req.Path); err != nil {
				return "", err
			}
			tc.ReportStatus("moved")
			return tc.WorkingDir(), nil
		}),
		tool.New(tool.Descriptor{Name: "asks", Safety: tool.SafetySafe},
			func(ctx context.Context, tc tool.Context, req *struct{}) (string, error) {
				d, err := tc.ConfirmRequest(ctx, tool.Preview{Title: "Touch outside?"})
				if err != nil {
					return "", err
				}
				return string(d), nil
			}),
	}
	for _, tl := range tools {
		require.NoError(t, reg.Register(tl))
	}

	g := gate.New(s, f.ui, nil)
	f.engine = New(reg, g, s, f.ui, nil)
	return f
}

func call(name string, args map[string]any) models.ToolCall {
	return models.ToolCall{ID: "call-1", Name: name, Args: args}
}

func TestExecute_Success(t *testing.T) {
	f := newFixture(t)

	res := f.engine.Execute(context.Background(), call("echo", map[string]any{"text": "hi"}))

	assert.Equal(t, models.ToolResult{ID: "call-1", Name: "echo", Status: models.StatusSuccess, Content: "hi"}, res)
	assert.Empty(t, f.ui.GetPrompts())
	assert.Equal(t, []string{"executing echo", "done echo"}, f.ui.GetStatuses())
}

func TestExecute_UnknownTool(t *testing.T) {
	f := newFixture(t)

	res := f.engine.Execute(context.Background(), call("nope", nil))

	assert.Equal(t, models.StatusFailure, res.Status)
	assert.Equal(t, KindUnknownTool, res.ErrorKind)
	assert.Contains(t, res.Content, `tool "nope" does not exist`)
	assert.Contains(t, res.Content, "asks, boom, cd, echo")
}

func TestExecute_InvalidArgumentsNeverRuns(t *testing.T) {
	f := newFixture(t)

	for _, args := range []map[string]any{
		{},
		{"text": 3},
		{"text": "x", "extra": true},
	} {
		res := f.engine.Execute(context.Background(), call("echo", args))
		assert.Equal(t, models.StatusFailure, res.Status)
		assert.Equal(t, KindInvalidArguments, res.ErrorKind)
		assert.Contains(t, res.Content, "Expected schema for echo")
	}
	assert.Zero(t, f.runs["echo"])
}

func TestExecute_ConfirmApproved(t *testing.T) {
	f := newFixture(t)

	res := f.engine.Execute(context.Background(), call("write", map[string]any{"text": "a"}))

	assert.Equal(t, models.StatusSuccess, res.Status)
	assert.Equal(t, "wrote a", res.Content)
	assert.Equal(t, []string{"Allow write?"}, f.ui.GetPrompts())
	assert.Equal(t, []tool.Preview{{Kind: tool.PreviewDiff, Title: "Write it", Body: "+a"}}, f.ui.GetPreviews())
}

func TestExecute_Denied(t *testing.T) {
	f := newFixture(t)
	f.ui.ReadPermissionFunc = func(ctx context.Context, prompt string, preview *tool.Preview) (tool.Decision, error) {
		return tool.DecisionDeny, nil
	}

	res := f.engine.Execute(context.Background(), call("write", map[string]any{"text": "a"}))

	assert.Equal(t, models.StatusCancelled, res.Status)
	assert.Contains(t, res.Content, "User denied")
	assert.Zero(t, f.runs["write"])
}

func TestExecute_ApproveAlwaysSkipsLaterPrompts(t *testing.T) {
	f := newFixture(t)
	f.ui.ReadPermissionFunc = func(ctx context.Context, prompt string, preview *tool.Preview) (tool.Decision, error) {
		return tool.DecisionApproveAlways, nil
	}

	f.engine.Execute(context.Background(), call("write", map[string]any{"text": "a"}))
	f.engine.Execute(context.Background(), call("write", map[string]any{"text": "b"}))

	assert.Len(t, f.ui.GetPrompts(), 1)
	assert.Equal(t, 2, f.runs["write"])
	assert.True(t, f.session.IsToolAlwaysAllowed("write"))
}

func TestExecute_CommandRoots(t *testing.T) {
	f := newFixture(t)

	res := f.engine.Execute(context.Background(), call("shell", map[string]any{"command": []any{"/bin/ls", "-la"}}))
	assert.Equal(t, models.StatusSuccess, res.Status)
	assert.Empty(t, f.ui.GetPrompts())

	f.ui.ReadPermissionFunc = func(ctx context.Context, prompt string, preview *tool.Preview) (tool.Decision, error) {
		return tool.DecisionApproveAlways, nil
	}
	f.engine.Execute(context.Background(), call("shell", map[string]any{"command": []any{"make", "build"}}))
	f.engine.Execute(context.Background(), call("shell", map[string]any{"command": []any{"make", "test"}}))
	f.engine.Execute(context.Background(), call("shell", map[string]any{"command": []any{"rm", "x"}}))

	assert.Equal(t, []string{"Allow shell command make?", "Allow shell command rm?"}, f.ui.GetPrompts())
	assert.True(t, f.session.IsCommandAllowed("make"))
	assert.False(t, f.session.IsToolAlwaysAllowed("shell"))

	previews := f.ui.GetPreviews()
	require.NotEmpty(t, previews)
	assert.Equal(t, "Run shell?", previews[0].Title)
	assert.Contains(t, previews[0].Body, `"make"`)
}

func TestExecute_ConfirmationDisabled(t *testing.T) {
	f := newFixture(t)
	f.session.SetConfirmationEnabled(false)

	res := f.engine.Execute(context.Background(), call("write", map[string]any{"text": "a"}))

	assert.Equal(t, models.StatusSuccess, res.Status)
	assert.Empty(t, f.ui.GetPrompts())
}

func TestExecute_CancelledWhileConfirming(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	f.ui.ReadPermissionFunc = func(ctx context.Context, prompt string, preview *tool.Preview) (tool.Decision, error) {
		cancel()
		<-ctx.Done()
		return tool.DecisionDeny, ctx.Err()
	}

	res := f.engine.Execute(ctx, call("write", map[string]any{"text": "a"}))

	assert.Equal(t, models.StatusCancelled, res.Status)
	assert.Contains(t, res.Content, "waiting for confirmation")
	assert.Zero(t, f.runs["write"])
}

func TestExecute_PrompterFailure(t *testing.T) {
	f := newFixture(t)
	f.ui.ReadPermissionFunc = func(ctx context.Context, prompt string, preview *tool.Preview) (tool.Decision, error) {
		return "", errors.New("ui closed")
	}

	res := f.engine.Execute(context.Background(), call("write", map[string]any{"text": "a"}))

	assert.Equal(t, models.StatusFailure, res.Status)
	assert.Equal(t, KindConfirmationFailure, res.ErrorKind)
	assert.Zero(t, f.runs["write"])
}

func TestExecute_ToolErrorAndPanic(t *testing.T) {
	f := newFixture(t)

	res := f.engine.Execute(context.Background(), call("boom", nil))
	assert.Equal(t, models.StatusFailure, res.Status)
	assert.Equal(t, KindToolExecution, res.ErrorKind)
	assert.Contains(t, res.Content, "disk on fire")

	res = f.engine.Execute(context.Background(), call("panics", nil))
	assert.Equal(t, models.StatusFailure, res.Status)
	assert.Equal(t, KindToolExecution, res.ErrorKind)
	assert.Contains(t, res.Content, "tool panicked: nil map")
}

func TestExecute_InterruptedTool(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	f.ui.ReadPermissionFunc = nil
	go cancel()

	res := f.engine.Execute(ctx, call("slow", nil))

	assert.Equal(t, models.StatusCancelled, res.Status)
}

func TestExecute_InterruptedToolThatCompletesIsRecorded(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	go cancel()

	res := f.engine.Execute(ctx, call("finishes", nil))

	assert.Equal(t, models.StatusSuccess, res.Status)
	assert.Equal(t, "finished", res.Content)
}

func TestExecute_AlreadyCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := f.engine.Execute(ctx, call("echo", map[string]any{"text": "x"}))

	assert.Equal(t, models.StatusCancelled, res.Status)
	assert.Zero(t, f.runs["echo"])
}

func TestToolContext_ChangeDir(t *testing.T) {
	f := newFixture(t)
	sub := filepath.Join(f.session.WorkingDir(), "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	res := f.engine.Execute(context.Background(), call("cd", map[string]any{"path": "sub"}))

	assert.Equal(t, models.StatusSuccess, res.Status)
	assert.Equal(t, sub, res.Content)
	assert.Equal(t, sub, f.session.WorkingDir())
	assert.Contains(t, f.ui.GetStatuses(), "moved")

	res = f.engine.Execute(context.Background(), call("cd", map[string]any{"path": "missing"}))
	assert.Equal(t, models.StatusFailure, res.Status)
	assert.Equal(t, sub, f.session.WorkingDir())
}

func TestToolContext_ConfirmRequestNeverRecordsOverride(t *testing.T) {
	f := newFixture(t)
	f.ui.ReadPermissionFunc = func(ctx context.Context, prompt string, preview *tool.Preview) (tool.Decision, error) {
		return tool.DecisionApproveAlways, nil
	}

	res := f.engine.Execute(context.Background(), call("asks", nil))

	assert.Equal(t, "approve", res.Content)
	assert.Equal(t, []string{"Touch outside?"}, f.ui.GetPrompts())
	assert.False(t, f.session.IsToolAlwaysAllowed("asks"))
}

func TestToolContext_ConfirmRequestSkippedWhenConfirmationDisabled(t *testing.T) {
	f := newFixture(t)
	f.session.SetConfirmationEnabled(false)
	f.ui.ReadPermissionFunc = func(ctx context.Context, prompt string, preview *tool.Preview) (tool.Decision, error) {
		return tool.DecisionDeny, nil
	}

	res := f.engine.Execute(context.Background(), call("asks", nil))

	assert.Equal(t, models.StatusSuccess, res.Status)
	assert.Equal(t, "approve", res.Content)
	assert.Empty(t, f.ui.GetPrompts())
	assert.Empty(t, f.ui.GetPreviews())
}
