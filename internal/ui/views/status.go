package views

import (
	"fmt"
	"strings"

	"github.com/Cyclone1070/terminus/internal/ui/models"
	"github.com/Cyclone1070/terminus/internal/ui/services"
)

// RenderStatus renders the status bar
func RenderStatus(s models.State) string {
	var left string
	switch s.StatusPhase {
	case services.PhaseExecuting:
		left = StatusExecutingStyle.Render(fmt.Sprintf("%s %s", s.Spinner.View(), s.StatusMessage))
	case services.PhaseDone:
		left = StatusDoneStyle.Render(fmt.Sprintf("✔ %s", s.StatusMessage))
	case services.PhaseThinking:
		dots := strings.Repeat(".", s.DotCount)
		left = StatusThinkingStyle.Render(fmt.Sprintf("%s Thinking%s", s.Spinner.View(), dots))
	default:
		left = StatusDefaultStyle.Render("Ready")
	}

	if s.Busy && s.StatusPhase != services.PhaseThinking {
		left += StatusDefaultStyle.Render("  (esc to interrupt)")
	}
	if s.CurrentModel == "" {
		return left
	}
	return fmt.Sprintf("%s  %s", left, StatusDefaultStyle.Render(s.CurrentModel))
}
