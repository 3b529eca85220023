// Package ui is the interactive terminal front end. It implements display.Sink
// and gate.Prompter on top of a Bubble Tea program.
package ui

import (
	"context"
	"errors"
	"sync"

	"github.com/Cyclone1070/terminus/internal/tool"
	"github.com/Cyclone1070/terminus/internal/ui/models"
	"github.com/Cyclone1070/terminus/internal/ui/services"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrClosed is returned by prompts once the program has exited.
var ErrClosed = errors.New("ui closed")

// SpinnerFactory creates a new spinner
type SpinnerFactory func() spinner.Model

// Options configure the UI.
type Options struct {
	// Interrupt stops the running request and reports whether one was running.
	Interrupt func() bool
	// Model names the active model for the status bar.
	Model          func() string
	Renderer       services.MarkdownRenderer
	SpinnerFactory SpinnerFactory
}

// Channels connect request goroutines with the Bubble Tea program.
type Channels struct {
	// Inputs carries submitted lines out of the UI.
	Inputs  chan string
	PermReq chan *models.PermissionRequest
	Events  chan tea.Msg
	// Ready is closed once the program is running.
	Ready chan struct{}
}

// NewChannels creates the channel set with default buffers.
func NewChannels() *Channels {
	return &Channels{
		Inputs:  make(chan string, 16),
		PermReq: make(chan *models.PermissionRequest),
		Events:  make(chan tea.Msg, 64),
		Ready:   make(chan struct{}),
	}
}

// UI implements display.Sink and gate.Prompter using Bubble Tea.
type UI struct {
	program *tea.Program
	ch      *Channels

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a UI. Call Run to start it.
func New(ch *Channels, opts Options) *UI {
	if opts.Renderer == nil {
		opts.Renderer = services.NewGlamourRenderer()
	}
	if opts.SpinnerFactory == nil {
		opts.SpinnerFactory = func() spinner.Model {
			return spinner.New(spinner.WithSpinner(spinner.Dot))
		}
	}
	u := &UI{ch: ch, done: make(chan struct{})}
	u.program = tea.NewProgram(newBubbleTeaModel(ch, opts), tea.WithAltScreen())
	return u
}

// Run blocks until the program exits.
func (u *UI) Run() error {
	defer u.close()
	_, err := u.program.Run()
	return err
}

// Quit stops the program.
func (u *UI) Quit() {
	u.program.Quit()
}

// Inputs delivers every line the user submits.
func (u *UI) Inputs() <-chan string {
	return u.ch.Inputs
}

// Ready is closed when the UI can accept output.
func (u *UI) Ready() <-chan struct{} {
	return u.ch.Ready
}

// Done is closed when the program has exited.
func (u *UI) Done() <-chan struct{} {
	return u.done
}

func (u *UI) close() {
	u.closeOnce.Do(func() { close(u.done) })
}

func (u *UI) RenderText(text string) {
	u.send(entryMsg{Role: models.RoleAssistant, Content: text})
}

func (u *UI) RenderToolPreview(preview tool.Preview) {
	u.send(entryMsg{Role: models.RolePreview, Content: services.RenderPreview(&preview)})
}

func (u *UI) RenderError(err error) {
	if err == nil {
		return
	}
	u.send(entryMsg{Role: models.RoleError, Content: err.Error()})
}

// RenderStatus routes tool progress to the status bar and everything else to the transcript.
func (u *UI) RenderStatus(text string) {
	phase, message := services.ParseStatus(text)
	if phase == "" {
		u.send(entryMsg{Role: models.RoleNotice, Content: message})
		return
	}
	u.send(statusMsg{phase: phase, message: message})
}

// SetBusy tells the status bar whether a request is running.
func (u *UI) SetBusy(busy bool) {
	u.send(busyMsg(busy))
}

// ReadPermission shows a confirmation prompt and waits for the answer.
func (u *UI) ReadPermission(ctx context.Context, prompt string, preview *tool.Preview) (tool.Decision, error) {
	reply := make(chan tool.Decision, 1)
	req := &models.PermissionRequest{Prompt: prompt, Preview: preview, Reply: reply, Ctx: ctx}

	select {
	case <-ctx.Done():
		return tool.DecisionDeny, ctx.Err()
	case <-u.done:
		return tool.DecisionDeny, ErrClosed
	case u.ch.PermReq <- req:
	}

	select {
	case <-ctx.Done():
		return tool.DecisionDeny, ctx.Err()
	case <-u.done:
		return tool.DecisionDeny, ErrClosed
	case decision := <-reply:
		return decision, nil
	}
}

// send blocks until the program takes msg or exits.
func (u *UI) send(msg tea.Msg) {
	select {
	case u.ch.Events <- msg:
	case <-u.done:
	}
}
