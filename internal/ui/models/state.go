// Package models holds the state rendered by the terminal UI.
package models

import (
	"context"

	"github.com/Cyclone1070/terminus/internal/tool"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
)

// Role selects how a chat entry is styled.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RolePreview   Role = "preview"
	RoleError     Role = "error"
	RoleNotice    Role = "notice"
)

// Message is one entry in the chat transcript.
type Message struct {
	Role    Role
	Content string
}

// PermissionRequest is a pending confirmation prompt. Reply is buffered so
// answering never blocks the UI.
type PermissionRequest struct {
	Prompt  string
	Preview *tool.Preview
	Reply   chan<- tool.Decision
	Ctx     context.Context
}

// Expired reports whether the requester stopped waiting.
func (p *PermissionRequest) Expired() bool {
	return p.Ctx != nil && p.Ctx.Err() != nil
}

// State is everything the views need.
type State struct {
	Width  int
	Height int

	Input    textinput.Model
	Viewport viewport.Model
	Spinner  spinner.Model

	Messages []Message

	// Busy is true while a request is running.
	Busy          bool
	StatusPhase   string
	StatusMessage string
	DotCount      int
	CurrentModel  string

	PendingPermission *PermissionRequest
}
