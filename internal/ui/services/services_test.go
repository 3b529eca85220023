package services

import (
	"errors"
	"testing"

	"github.com/Cyclone1070/terminus/internal/tool"
	"github.com/charmbracelet/glamour"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockMarkdownRenderer struct {
	RenderFunc func(string, int) (string, error)
}

func (m *MockMarkdownRenderer) Render(content string, width int) (string, error) {
	if m.RenderFunc != nil {
		return m.RenderFunc(content, width)
	}
	return content, nil
}

func TestRenderPreview_Nil(t *testing.T) {
	assert.Empty(t, RenderPreview(nil))
}

func TestRenderPreview_Diff(t *testing.T) {
	out := RenderPreview(&tool.Preview{
		Kind:  tool.PreviewDiff,
		Title: "Update main.go",
		Body:  "--- a/main.go\n+++ b/main.go\n@@ -1,1 +1,1 @@\n-old\n+new\n",
	})

	assert.Contains(t, out, "Update main.go")
	assert.Contains(t, out, "-old")
	assert.Contains(t, out, "+new")
	assert.Contains(t, out, "@@ -1,1 +1,1 @@")
}

func TestRenderPreview_Shell(t *testing.T) {
	out := RenderPreview(&tool.Preview{Kind: tool.PreviewShell, Title: "Run ls?", Body: "$ ls -la\nin /tmp"})

	assert.Contains(t, out, "Run ls?")
	assert.Contains(t, out, "$ ls -la")
	assert.Contains(t, out, "in /tmp")
}

func TestRenderPreview_TitleOnly(t *testing.T) {
	assert.Contains(t, RenderPreview(&tool.Preview{Title: "Create commit?"}), "Create commit?")
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in, phase, message string
	}{
		{"executing read_file", PhaseExecuting, "read_file"},
		{"done read_file", PhaseDone, "read_file"},
		{"Running go test ./...", PhaseExecuting, "Running go test ./..."},
		{"Request cancelled.", "", "Request cancelled."},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			phase, message := ParseStatus(tt.in)
			assert.Equal(t, tt.phase, phase)
			assert.Equal(t, tt.message, message)
		})
	}
}

func TestRenderMarkdown_Fallback(t *testing.T) {
	renderer := &MockMarkdownRenderer{RenderFunc: func(string, int) (string, error) {
		return "", errors.New("broken")
	}}

	out, err := RenderMarkdown("**hi**", 80, renderer)

	assert.Error(t, err)
	assert.Equal(t, "**hi**", out)
}

func TestRenderMarkdown_NilRenderer(t *testing.T) {
	out, err := RenderMarkdown("plain", 80, nil)

	require.NoError(t, err)
	assert.Equal(t, "plain", out)
}

func TestGlamourRenderer_RendersAndCaches(t *testing.T) {
	r := NewGlamourRendererWithOptions(glamour.WithStandardStyle("notty"))

	out, err := r.Render("# Title\n\nSome *text*.", 60)
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "text")

	_, err = r.Render("again", 60)
	require.NoError(t, err)
	assert.Len(t, r.renderers, 1)
}
