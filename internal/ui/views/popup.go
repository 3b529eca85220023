package views

import (
	"strings"

	"github.com/Cyclone1070/terminus/internal/ui/models"
	"github.com/charmbracelet/lipgloss"
)

// RenderPermissionPopup renders the pending confirmation prompt.
func RenderPermissionPopup(s models.State) string {
	req := s.PendingPermission
	if req == nil {
		return ""
	}

	lines := []string{
		lipgloss.NewStyle().Bold(true).Render(req.Prompt),
		"",
		lipgloss.NewStyle().Faint(true).Render("y: allow  a: always allow  n/esc: deny"),
	}
	return PermissionBoxStyle.Render(strings.Join(lines, "\n"))
}
