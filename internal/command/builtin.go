package command

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/Cyclone1070/terminus/internal/orchestrator/models"
	"github.com/Cyclone1070/terminus/internal/provider"
)

const previewLength = 150

func (h *Handler) builtins() []*Command {
	return []*Command{
		{Name: "/help", Summary: "Show this help", Run: h.help},
		{Name: "/clear", Summary: "Clear conversation history", Idle: true, Run: h.clear},
		{Name: "/yolo", Summary: "Toggle tool confirmations", Run: h.yolo},
		{Name: "/dump", Summary: "Show the full message history", Run: h.dump},
		{Name: "/history", Summary: "Show the questions asked this session", Run: h.history},
		{Name: "/status", Summary: "Show session status", Run: h.status},
		{Name: "/pwd", Summary: "Show the working directory", Run: h.pwd},
		{Name: "/model", Args: "[name]", Summary: "Show or switch the model", Idle: true, Run: h.model},
		{Name: "/models", Summary: "List models offered by the current provider", Run: h.listModels},
		{Name: "/version", Summary: "Show version information", Run: h.version},
		{Name: "/exit", Summary: "Quit (also exit or quit)", Run: func(context.Context, []string) error { return ErrExit }},
	}
}

func (h *Handler) help(_ context.Context, _ []string) error {
	var b strings.Builder
	b.WriteString("**Available commands**\n\n")
	for _, c := range h.Commands() {
		usage := c.Name
		if c.Args != "" {
			usage += " " + c.Args
		}
		fmt.Fprintf(&b, "- `%s` %s\n", usage, c.Summary)
	}
	b.WriteString("\nAnything else is sent to the model.")
	h.sink.RenderText(b.String())
	return nil
}

func (h *Handler) clear(_ context.Context, _ []string) error {
	n := h.deps.Session.Len()
	h.deps.Session.Clear()
	h.logger.Info("history cleared", "messages", n)
	h.sink.RenderStatus("Conversation history cleared")
	return nil
}

func (h *Handler) yolo(_ context.Context, _ []string) error {
	if h.deps.Session.ToggleConfirmation() {
		h.sink.RenderStatus("Tool confirmations enabled")
	} else {
		h.sink.RenderStatus("Tool confirmations disabled (yolo mode)")
	}
	return nil
}

func (h *Handler) dump(_ context.Context, _ []string) error {
	history := h.deps.Session.History()
	if len(history) == 0 {
		h.sink.RenderText("No messages yet.")
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Message history** (%d)\n\n", len(history))
	for i, msg := range history {
		fmt.Fprintf(&b, "%d. **%s**", i+1, msg.Role)
		if msg.Content != "" {
			fmt.Fprintf(&b, ": %s", preview(msg.Content))
		}
		b.WriteString("\n")
		for _, call := range msg.ToolCalls {
			fmt.Fprintf(&b, "   - call `%s` %s\n", call.Name, formatArgs(call.Args))
		}
		for _, res := range msg.ToolResults {
			fmt.Fprintf(&b, "   - result `%s` [%s] %s\n", res.Name, res.Status, preview(res.Content))
		}
	}
	h.sink.RenderText(b.String())
	return nil
}

func (h *Handler) history(_ context.Context, _ []string) error {
	var questions []string
	for _, msg := range h.deps.Session.History() {
		if msg.Role == models.RoleUser && strings.TrimSpace(msg.Content) != "" {
			questions = append(questions, preview(msg.Content))
		}
	}
	if len(questions) == 0 {
		h.sink.RenderText("No questions in history.")
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Questions** (%d)\n\n", len(questions))
	for i, q := range questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	h.sink.RenderText(b.String())
	return nil
}

func (h *Handler) status(_ context.Context, _ []string) error {
	s := h.deps.Session
	confirmations := "enabled"
	if !s.ConfirmationEnabled() {
		confirmations = "disabled (yolo mode)"
	}
	always := "none"
	if tools := s.AlwaysAllowedTools(); len(tools) > 0 {
		always = strings.Join(tools, ", ")
	}
	request := "idle"
	if h.deps.Requests != nil {
		request = h.deps.Requests.State().String()
	}

	var b strings.Builder
	b.WriteString("**Status**\n\n")
	fmt.Fprintf(&b, "- Model: %s\n", s.Model())
	fmt.Fprintf(&b, "- Messages in history: %d\n", s.Len())
	fmt.Fprintf(&b, "- Confirmations: %s\n", confirmations)
	fmt.Fprintf(&b, "- Always allowed tools: %s\n", always)
	fmt.Fprintf(&b, "- Allowed commands: %d\n", len(s.AllowedCommands()))
	fmt.Fprintf(&b, "- Request: %s\n", request)
	fmt.Fprintf(&b, "- Working directory: %s\n", s.WorkingDir())
	fmt.Fprintf(&b, "- Platform: %s/%s %s\n", runtime.GOOS, runtime.GOARCH, runtime.Version())
	h.sink.RenderText(b.String())
	return nil
}

func (h *Handler) pwd(_ context.Context, _ []string) error {
	h.sink.RenderText(fmt.Sprintf("Current directory: %s", h.deps.Session.WorkingDir()))
	return nil
}

func (h *Handler) model(ctx context.Context, args []string) error {
	if len(args) == 0 {
		h.sink.RenderText(fmt.Sprintf("Current model: %s\n\nUse `/model <name>` to switch. Names starting with `claude` use Anthropic, `gpt-` and `o1` use OpenAI, `ollama:` uses a local Ollama server. Anything else goes to Gemini.", h.deps.Session.Model()))
		return nil
	}
	if len(args) > 1 {
		return fmt.Errorf("%w: /model [name]", ErrUsage)
	}
	if h.deps.Builder == nil || h.deps.Providers == nil {
		return fmt.Errorf("model switching is not available")
	}

	name := args[0]
	p, err := h.deps.Builder.Build(ctx, name)
	if err != nil {
		return fmt.Errorf("switch to %s: %w", name, err)
	}
	old := h.deps.Session.Model()
	h.deps.Providers.SetProvider(p)
	h.deps.Session.SetModel(name)
	h.logger.Info("model switched", "from", old, "to", name)
	h.sink.RenderStatus(fmt.Sprintf("Switched model from %s to %s", old, name))
	return nil
}

func (h *Handler) listModels(ctx context.Context, _ []string) error {
	if h.deps.Providers == nil || h.deps.Providers.Provider() == nil {
		return fmt.Errorf("no model configured")
	}
	current := h.deps.Providers.Provider()
	lister, ok := current.(provider.ModelLister)
	if !ok {
		h.sink.RenderText(fmt.Sprintf("Current model: %s\n\nThis provider cannot list its models.", current.Model()))
		return nil
	}

	names, err := lister.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", provider.Normalize(err))
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "**Available models** (%d)\n\n", len(names))
	for _, name := range names {
		marker := ""
		if name == current.Model() {
			marker = " (current)"
		}
		fmt.Fprintf(&b, "- %s%s\n", name, marker)
	}
	h.sink.RenderText(b.String())
	return nil
}

func (h *Handler) version(_ context.Context, _ []string) error {
	v := h.deps.Version
	if v == "" {
		v = "dev"
	}
	h.sink.RenderText(fmt.Sprintf("terminus %s (%s, %s/%s)", v, runtime.Version(), runtime.GOOS, runtime.GOARCH))
	return nil
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= previewLength {
		return s
	}
	return string(r[:previewLength]) + "..."
}

func formatArgs(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprintf("%v", args)
	}
	return preview(string(data))
}
