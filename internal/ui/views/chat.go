package views

import (
	"strings"

	"github.com/Cyclone1070/terminus/internal/ui/models"
	"github.com/Cyclone1070/terminus/internal/ui/services"
)

// RenderChat renders the message history
func RenderChat(s models.State) string {
	if len(s.Messages) == 0 {
		return "No messages yet. Type a message or /help to start."
	}
	return s.Viewport.View()
}

// FormatChatContent formats the messages for the viewport
func FormatChatContent(messages []models.Message, width int, renderer services.MarkdownRenderer) string {
	var lines []string
	for _, msg := range messages {
		switch msg.Role {
		case models.RoleUser:
			lines = append(lines, UserMessageStyle.Render("> "+msg.Content))
		case models.RolePreview:
			lines = append(lines, PreviewMessageStyle.Render(msg.Content))
		case models.RoleError:
			lines = append(lines, ErrorMessageStyle.Render("Error: "+msg.Content))
		case models.RoleNotice:
			lines = append(lines, NoticeMessageStyle.Render(msg.Content))
		default:
			rendered, err := services.RenderMarkdown(msg.Content, width, renderer)
			if err != nil {
				rendered = msg.Content
			}
			lines = append(lines, AssistantMessageStyle.Render(strings.TrimRight(rendered, "\n")))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
