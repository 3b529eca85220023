// Package testhelpers provides shared doubles for orchestrator, controller and command tests.
package testhelpers

import (
	"context"
	"sync"

	"github.com/Cyclone1070/terminus/internal/orchestrator/models"
	"github.com/Cyclone1070/terminus/internal/provider"
	"github.com/Cyclone1070/terminus/internal/tool"
)

// Step is one scripted provider reply. Exactly one of Response or Err is used.
type Step struct {
	Response *provider.Response
	Err      error
	// Block waits for ctx cancellation before replying with ctx.Err().
	Block bool
}

// MockProvider replays scripted steps and records every request.
type MockProvider struct {
	mu        sync.Mutex
	steps     []Step
	index     int
	requests  []provider.Request
	modelName string

	// OnGenerateCalled observes each request before it is answered.
	OnGenerateCalled func(*provider.Request)
}

// NewMockProvider creates a new mock provider with default settings
func NewMockProvider() *MockProvider {
	return &MockProvider{modelName: "mock-model"}
}

// WithTextResponse adds a text response to the queue
func (m *MockProvider) WithTextResponse(text string) *MockProvider {
	return m.WithStep(Step{Response: &provider.Response{Text: text}})
}

// WithToolCallResponse adds a tool call response to the queue
func (m *MockProvider) WithToolCallResponse(text string, calls ...models.ToolCall) *MockProvider {
	return m.WithStep(Step{Response: &provider.Response{Text: text, ToolCalls: calls}})
}

// WithError adds a failing step to the queue
func (m *MockProvider) WithError(err error) *MockProvider {
	return m.WithStep(Step{Err: err})
}

// WithBlockingStep adds a step that only returns once the request is cancelled.
func (m *MockProvider) WithBlockingStep() *MockProvider {
	return m.WithStep(Step{Block: true})
}

func (m *MockProvider) WithStep(s Step) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, s)
	return m
}

// WithModel sets the reported model name
func (m *MockProvider) WithModel(name string) *MockProvider {
	m.modelName = name
	return m
}

// Generate implements provider.Provider. Running out of steps yields "Done".
func (m *MockProvider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	if m.OnGenerateCalled != nil {
		m.OnGenerateCalled(req)
	}

	m.mu.Lock()
	m.requests = append(m.requests, cloneRequest(req))
	var step Step
	if m.index < len(m.steps) {
		step = m.steps[m.index]
		m.index++
	} else {
		step = Step{Response: &provider.Response{Text: "Done"}}
	}
	m.mu.Unlock()

	if step.Block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if step.Err != nil {
		return nil, step.Err
	}
	resp := *step.Response
	return &resp, nil
}

func (m *MockProvider) Model() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modelName
}

// Requests returns a copy of every request received.
func (m *MockProvider) Requests() []provider.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]provider.Request(nil), m.requests...)
}

// Calls returns the number of Generate calls.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func cloneRequest(req *provider.Request) provider.Request {
	out := *req
	out.History = append([]models.Message(nil), req.History...)
	out.Tools = append([]tool.Descriptor(nil), req.Tools...)
	return out
}

// MockUI implements display.Sink and gate.Prompter, recording everything.
type MockUI struct {
	mu       sync.Mutex
	Texts    []string
	Previews []tool.Preview
	Errors   []error
	Statuses []string
	Prompts  []string

	ReadPermissionFunc func(ctx context.Context, prompt string, preview *tool.Preview) (tool.Decision, error)
}

func (m *MockUI) RenderText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Texts = append(m.Texts, text)
}

func (m *MockUI) RenderToolPreview(preview tool.Preview) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Previews = append(m.Previews, preview)
}

func (m *MockUI) RenderError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors = append(m.Errors, err)
}

func (m *MockUI) RenderStatus(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Statuses = append(m.Statuses, text)
}

func (m *MockUI) ReadPermission(ctx context.Context, prompt string, preview *tool.Preview) (tool.Decision, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()
	if m.ReadPermissionFunc != nil {
		return m.ReadPermissionFunc(ctx, prompt, preview)
	}
	return tool.DecisionApprove, nil
}

// GetTexts returns a copy of rendered assistant text.
func (m *MockUI) GetTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Texts...)
}

// GetErrors returns a copy of rendered errors.
func (m *MockUI) GetErrors() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]error(nil), m.Errors...)
}

// GetStatuses returns a copy of rendered statuses.
func (m *MockUI) GetStatuses() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Statuses...)
}

// GetPrompts returns a copy of every permission prompt.
func (m *MockUI) GetPrompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Prompts...)
}

// GetPreviews returns a copy of rendered previews.
func (m *MockUI) GetPreviews() []tool.Preview {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]tool.Preview(nil), m.Previews...)
}
