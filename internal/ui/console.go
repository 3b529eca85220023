package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Cyclone1070/terminus/internal/tool"
	"github.com/Cyclone1070/terminus/internal/ui/services"
	"github.com/Cyclone1070/terminus/internal/ui/views"
)

// Console writes request output as plain lines. It backs one-shot runs where
// no full screen program owns the terminal.
type Console struct {
	mu       sync.Mutex
	out      io.Writer
	in       *bufio.Reader
	renderer services.MarkdownRenderer
	width    int
}

// NewConsole creates a Console. in may be nil, in which case every prompt is denied.
func NewConsole(out io.Writer, in io.Reader, renderer services.MarkdownRenderer) *Console {
	c := &Console{out: out, renderer: renderer, width: 80}
	if in != nil {
		c.in = bufio.NewReader(in)
	}
	return c
}

func (c *Console) RenderText(text string) {
	rendered, err := services.RenderMarkdown(text, c.width, c.renderer)
	if err != nil {
		rendered = text
	}
	c.println(strings.TrimRight(rendered, "\n"))
}

func (c *Console) RenderToolPreview(preview tool.Preview) {
	c.println(views.PreviewMessageStyle.Render(services.RenderPreview(&preview)))
}

func (c *Console) RenderError(err error) {
	if err == nil {
		return
	}
	c.println(views.ErrorMessageStyle.Render("Error: " + err.Error()))
}

func (c *Console) RenderStatus(text string) {
	phase, message := services.ParseStatus(text)
	switch phase {
	case services.PhaseExecuting:
		c.println(views.StatusExecutingStyle.Render("• " + message))
	case services.PhaseDone:
		// the executing line is enough on a scrolling console
	default:
		c.println(views.NoticeMessageStyle.Render(message))
	}
}

// ReadPermission asks on the console and reads one line of input.
func (c *Console) ReadPermission(ctx context.Context, prompt string, _ *tool.Preview) (tool.Decision, error) {
	if c.in == nil {
		c.println(views.NoticeMessageStyle.Render(prompt + " denied (no input available)"))
		return tool.DecisionDeny, nil
	}

	c.mu.Lock()
	fmt.Fprintf(c.out, "%s [y]es / [n]o / [a]lways: ", prompt)
	c.mu.Unlock()

	type answer struct {
		line string
		err  error
	}
	answers := make(chan answer, 1)
	go func() {
		line, err := c.in.ReadString('\n')
		answers <- answer{line, err}
	}()

	select {
	case <-ctx.Done():
		c.println("")
		return tool.DecisionDeny, ctx.Err()
	case a := <-answers:
		if a.err != nil && a.line == "" {
			if a.err == io.EOF {
				return tool.DecisionDeny, nil
			}
			return tool.DecisionDeny, a.err
		}
		return ParseDecision(a.line), nil
	}
}

// ParseDecision maps a typed answer to a decision. Anything unrecognised denies.
func ParseDecision(answer string) tool.Decision {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return tool.DecisionApprove
	case "a", "always":
		return tool.DecisionApproveAlways
	default:
		return tool.DecisionDeny
	}
}

func (c *Console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, s)
}
