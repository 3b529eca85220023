package views

import (
	"github.com/Cyclone1070/terminus/internal/ui/models"
	"github.com/charmbracelet/lipgloss"
)

// RenderRoot renders the complete UI layout
func RenderRoot(s models.State) string {
	bottom := RenderInput(s)
	if s.PendingPermission != nil {
		bottom = RenderPermissionPopup(s)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		RenderChat(s),
		bottom,
		RenderStatus(s),
	)
}
