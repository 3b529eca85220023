package services

import (
	"strings"

	"github.com/Cyclone1070/terminus/internal/tool"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	fileStyle    = lipgloss.NewStyle().Faint(true)
	shellStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// RenderPreview renders a tool preview for the transcript.
func RenderPreview(preview *tool.Preview) string {
	if preview == nil {
		return ""
	}

	var body string
	switch preview.Kind {
	case tool.PreviewDiff:
		body = renderDiff(preview.Body)
	case tool.PreviewShell:
		body = renderShell(preview.Body)
	default:
		body = preview.Body
	}

	if preview.Title == "" {
		return body
	}
	if body == "" {
		return titleStyle.Render(preview.Title)
	}
	return titleStyle.Render(preview.Title) + "\n" + body
}

func renderDiff(diff string) string {
	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			lines[i] = fileStyle.Render(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = hunkStyle.Render(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = addedStyle.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = removedStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

func renderShell(body string) string {
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "$ ") {
			lines[i] = shellStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// Status phases shown in the status bar.
const (
	PhaseReady     = "ready"
	PhaseThinking  = "thinking"
	PhaseExecuting = "executing"
	PhaseDone      = "done"
)

// ParseStatus maps a status line to a status bar phase. An empty phase means
// the text is a notice for the transcript rather than progress.
func ParseStatus(text string) (phase, message string) {
	switch {
	case strings.HasPrefix(text, "executing "):
		return PhaseExecuting, strings.TrimPrefix(text, "executing ")
	case strings.HasPrefix(text, "done "):
		return PhaseDone, strings.TrimPrefix(text, "done ")
	case strings.HasPrefix(text, "Running "):
		return PhaseExecuting, text
	}
	return "", text
}
