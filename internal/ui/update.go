package ui

import (
	"strings"
	"time"

	"github.com/Cyclone1070/terminus/internal/tool"
	"github.com/Cyclone1070/terminus/internal/ui/models"
	"github.com/Cyclone1070/terminus/internal/ui/services"
	"github.com/Cyclone1070/terminus/internal/ui/views"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// reserved rows for input, status and borders
const chromeHeight = 5

// BubbleTeaModel implements tea.Model
type BubbleTeaModel struct {
	state models.State

	renderer  services.MarkdownRenderer
	interrupt func() bool
	modelName func() string

	inputs  chan<- string
	permReq <-chan *models.PermissionRequest
	events  <-chan tea.Msg
	ready   chan<- struct{}
}

type tickMsg time.Time
type permRequestMsg *models.PermissionRequest

type entryMsg models.Message

type statusMsg struct {
	phase   string
	message string
}

type busyMsg bool

func newBubbleTeaModel(ch *Channels, opts Options) BubbleTeaModel {
	ti := textinput.New()
	ti.Placeholder = "Ask something, or /help"
	ti.Focus()

	m := BubbleTeaModel{
		state: models.State{
			Input:       ti,
			Viewport:    viewport.New(80, 20),
			Spinner:     opts.SpinnerFactory(),
			StatusPhase: services.PhaseReady,
		},
		renderer:  opts.Renderer,
		interrupt: opts.Interrupt,
		modelName: opts.Model,
		inputs:    ch.Inputs,
		permReq:   ch.PermReq,
		events:    ch.Events,
		ready:     ch.Ready,
	}
	if m.modelName != nil {
		m.state.CurrentModel = m.modelName()
	}
	return m
}

// Init signals readiness and starts the listeners.
func (m BubbleTeaModel) Init() tea.Cmd {
	if m.ready != nil {
		close(m.ready)
	}
	return tea.Batch(
		textinput.Blink,
		m.state.Spinner.Tick,
		tick(),
		listenForPermRequests(m.permReq),
		listenForEvents(m.events),
	)
}

// Update handles messages
func (m BubbleTeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.state.Width = msg.Width
		m.state.Height = msg.Height
		m.state.Viewport.Width = msg.Width
		m.state.Viewport.Height = max(msg.Height-chromeHeight, 1)
		m.state.Input.Width = max(msg.Width-4, 10)
		m.updateViewport()
		return m, nil

	case tickMsg:
		m.state.DotCount = (m.state.DotCount + 1) % 4
		if m.modelName != nil {
			m.state.CurrentModel = m.modelName()
		}
		if p := m.state.PendingPermission; p != nil && p.Expired() {
			m.state.PendingPermission = nil
		}
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.state.Spinner, cmd = m.state.Spinner.Update(msg)
		return m, cmd

	case permRequestMsg:
		m.state.PendingPermission = msg
		return m, listenForPermRequests(m.permReq)

	case entryMsg:
		m.state.Messages = append(m.state.Messages, models.Message(msg))
		m.updateViewport()
		return m, listenForEvents(m.events)

	case statusMsg:
		m.state.StatusPhase = msg.phase
		m.state.StatusMessage = msg.message
		return m, listenForEvents(m.events)

	case busyMsg:
		m.state.Busy = bool(msg)
		if m.state.Busy {
			m.state.StatusPhase = services.PhaseThinking
		} else {
			m.state.StatusPhase = services.PhaseReady
			m.state.StatusMessage = ""
		}
		return m, listenForEvents(m.events)
	}

	var cmd tea.Cmd
	m.state.Input, cmd = m.state.Input.Update(msg)
	return m, cmd
}

func (m BubbleTeaModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state.PendingPermission != nil {
		return m.handlePermissionKey(msg)
	}

	switch msg.String() {
	case "ctrl+c":
		if m.interrupt != nil && m.interrupt() {
			return m, nil
		}
		return m, tea.Quit

	case "esc":
		if m.interrupt != nil {
			m.interrupt()
		}
		return m, nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.state.Viewport, cmd = m.state.Viewport.Update(msg)
		return m, cmd

	case "enter":
		input := strings.TrimSpace(m.state.Input.Value())
		if input == "" {
			return m, nil
		}
		m.state.Messages = append(m.state.Messages, models.Message{Role: models.RoleUser, Content: input})
		m.updateViewport()
		m.state.Input.SetValue("")
		m.inputs <- input
		return m, nil
	}

	var cmd tea.Cmd
	m.state.Input, cmd = m.state.Input.Update(msg)
	return m, cmd
}

func (m BubbleTeaModel) handlePermissionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var decision tool.Decision
	switch msg.String() {
	case "y":
		decision = tool.DecisionApprove
	case "a":
		decision = tool.DecisionApproveAlways
	case "n", "esc":
		decision = tool.DecisionDeny
	case "ctrl+c":
		decision = tool.DecisionDeny
		if m.interrupt != nil {
			m.interrupt()
		}
	default:
		return m, nil
	}
	m.state.PendingPermission.Reply <- decision
	m.state.PendingPermission = nil
	return m, nil
}

// View renders the UI
func (m BubbleTeaModel) View() string {
	return views.RenderRoot(m.state)
}

func (m *BubbleTeaModel) updateViewport() {
	content := views.FormatChatContent(m.state.Messages, max(m.state.Width-4, 20), m.renderer)
	m.state.Viewport.SetContent(content)
	m.state.Viewport.GotoBottom()
}

func listenForPermRequests(ch <-chan *models.PermissionRequest) tea.Cmd {
	return func() tea.Msg {
		return permRequestMsg(<-ch)
	}
}

func listenForEvents(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

func tick() tea.Cmd {
	return tea.Tick(300*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
