package views

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary = lipgloss.Color("63")
	ColorMuted   = lipgloss.Color("241")
	ColorError   = lipgloss.Color("196")
	ColorSuccess = lipgloss.Color("42")
	ColorWarning = lipgloss.Color("214")

	UserMessageStyle      = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	AssistantMessageStyle = lipgloss.NewStyle()
	PreviewMessageStyle   = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorMuted).
				Padding(0, 1)
	ErrorMessageStyle  = lipgloss.NewStyle().Foreground(ColorError)
	NoticeMessageStyle = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false).
			BorderForeground(ColorMuted)

	PermissionBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorWarning).
				Padding(0, 1)

	StatusDefaultStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	StatusThinkingStyle  = lipgloss.NewStyle().Foreground(ColorPrimary)
	StatusExecutingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	StatusDoneStyle      = lipgloss.NewStyle().Foreground(ColorSuccess)
)
