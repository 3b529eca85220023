// Package orchestrator runs the reasoning loop for one request.
package orchestrator

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Cyclone1070/terminus/internal/cancel"
	"github.com/Cyclone1070/terminus/internal/display"
	"github.com/Cyclone1070/terminus/internal/logging"
	"github.com/Cyclone1070/terminus/internal/orchestrator/models"
	"github.com/Cyclone1070/terminus/internal/provider"
	"github.com/Cyclone1070/terminus/internal/tool"
	"github.com/charmbracelet/log"
)

//go:embed prompts/system.md
var systemPrompt string

//go:embed prompts/local_model.md
var localModelPrompt string

// ErrMaxIterations ends a request whose model keeps calling tools.
var ErrMaxIterations = errors.New("maximum iterations reached")

// DefaultMaxIterations bounds the loop when Options leaves it unset.
const DefaultMaxIterations = 20

// toolExecutor runs one call and always returns its result.
type toolExecutor interface {
	Execute(ctx context.Context, call models.ToolCall) models.ToolResult
}

// toolCatalog lists the tools offered to the model.
type toolCatalog interface {
	Descriptors() []tool.Descriptor
}

// sessionState is the conversation the loop extends.
type sessionState interface {
	History() []models.Message
	Append(msgs ...models.Message)
	WorkingDir() string
	Model() string
}

// Options tunes the loop.
type Options struct {
	// GuideFile is read from the working directory before every request. Empty disables it.
	GuideFile     string
	MaxIterations int
}

// Orchestrator drives provider calls and tool execution until the model answers with text.
type Orchestrator struct {
	mu       sync.RWMutex
	provider provider.Provider

	tools         toolCatalog
	engine        toolExecutor
	session       sessionState
	sink          display.Sink
	guideFile     string
	maxIterations int
	readFile      func(string) ([]byte, error)
	logger        *log.Logger
}

// New creates an Orchestrator.
func New(p provider.Provider, tools toolCatalog, engine toolExecutor, session sessionState, sink display.Sink, opts Options, logger *log.Logger) *Orchestrator {
	maxIterations := opts.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Orchestrator{
		provider:      p,
		tools:         tools,
		engine:        engine,
		session:       session,
		sink:          display.OrDiscard(sink),
		guideFile:     opts.GuideFile,
		maxIterations: maxIterations,
		readFile:      os.ReadFile,
		logger:        logging.OrDiscard(logger),
	}
}

// Provider returns the provider used for the next request.
func (o *Orchestrator) Provider() provider.Provider {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.provider
}

// SetProvider switches the provider. A request already running keeps the old one.
func (o *Orchestrator) SetProvider(p provider.Provider) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.provider = p
}

// Run handles one user message. It returns nil once the model answers without tool calls.
// Cancellation is reported as cancel.ErrCancelled and provider failures wrap
// provider.ErrProviderUnavailable.
func (o *Orchestrator) Run(ctx context.Context, userMessage string) error {
	p := o.Provider()
	if p == nil {
		return &provider.ProviderError{Code: provider.ErrorCodeConfig, Message: "no model configured"}
	}

	o.session.Append(models.UserMessage(userMessage))

	model := o.session.Model()
	if model == "" {
		model = p.Model()
	}
	system := SystemPrompt(model)
	tools := o.tools.Descriptors()

	for i := 0; i < o.maxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return cancelled(err)
		}

		req := &provider.Request{
			System:  system,
			Tools:   tools,
			History: o.outboundHistory(),
		}
		o.logger.Debug("generate", "model", model, "iteration", i, "messages", len(req.History))

		resp, err := p.Generate(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return cancelled(ctx.Err())
			}
			o.logger.Error("provider failed", "model", model, "err", err)
			return provider.Normalize(err)
		}
		if resp.Usage.TotalTokens > 0 {
			o.logger.Debug("usage", "prompt", resp.Usage.PromptTokens, "completion", resp.Usage.CompletionTokens)
		}

		o.session.Append(models.Message{
			Role:      models.RoleAssistant,
			Content:   resp.Text,
			ToolCalls: resp.ToolCalls,
		})
		if strings.TrimSpace(resp.Text) != "" {
			o.sink.RenderText(resp.Text)
		}
		if !resp.HasToolCalls() {
			return nil
		}

		o.session.Append(models.ToolMessage(o.executeAll(ctx, resp.ToolCalls)...))

		if err := ctx.Err(); err != nil {
			return cancelled(err)
		}
	}

	o.logger.Warn("iteration limit reached", "limit", o.maxIterations)
	return fmt.Errorf("%w (%d)", ErrMaxIterations, o.maxIterations)
}

// executeAll runs calls in order. Once ctx is cancelled the remaining calls
// are answered with cancelled results without running.
func (o *Orchestrator) executeAll(ctx context.Context, calls []models.ToolCall) []models.ToolResult {
	results := make([]models.ToolResult, 0, len(calls))
	for _, call := range calls {
		if ctx.Err() != nil {
			results = append(results, models.ToolResult{
				ID:      call.ID,
				Name:    call.Name,
				Status:  models.StatusCancelled,
				Content: "Request cancelled before the tool ran.",
			})
			continue
		}
		results = append(results, o.engine.Execute(ctx, call))
	}
	return results
}

// outboundHistory is the session history with the project guide in front.
func (o *Orchestrator) outboundHistory() []models.Message {
	history := o.session.History()
	guide := o.loadGuide()
	if guide == "" {
		return history
	}
	return append([]models.Message{models.UserMessage(guide)}, history...)
}

func (o *Orchestrator) loadGuide() string {
	if o.guideFile == "" {
		return ""
	}
	path := o.guideFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(o.session.WorkingDir(), path)
	}
	data, err := o.readFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			o.logger.Warn("guide file unreadable", "path", path, "err", err)
		}
		return ""
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return ""
	}
	return fmt.Sprintf("Project guide from %s. Follow it while working in this project.\n\n%s", filepath.Base(path), content)
}

// SystemPrompt returns the instructions for model. Local models get extra
// guidance on tool use.
func SystemPrompt(model string) string {
	base := strings.TrimSpace(systemPrompt)
	lower := strings.ToLower(model)
	if strings.HasPrefix(lower, "ollama:") || strings.Contains(lower, "qwen") {
		return base + "\n\n" + strings.TrimSpace(localModelPrompt)
	}
	return base
}

func cancelled(err error) error {
	return fmt.Errorf("%w: %v", cancel.ErrCancelled, err)
}
