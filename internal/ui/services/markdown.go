// Package services holds rendering helpers used by the views.
package services

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders markdown for a given terminal width.
type MarkdownRenderer interface {
	Render(content string, width int) (string, error)
}

// GlamourRenderer renders with glamour, keeping one renderer per width.
type GlamourRenderer struct {
	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer
	options   []glamour.TermRendererOption
}

// NewGlamourRenderer creates a renderer that picks its style from the terminal background.
func NewGlamourRenderer() *GlamourRenderer {
	return NewGlamourRendererWithOptions(glamour.WithAutoStyle())
}

// NewGlamourRendererWithOptions creates a renderer with explicit glamour options.
// Word wrap is always set from the width passed to Render.
func NewGlamourRendererWithOptions(opts ...glamour.TermRendererOption) *GlamourRenderer {
	return &GlamourRenderer{
		renderers: make(map[int]*glamour.TermRenderer),
		options:   opts,
	}
}

func (g *GlamourRenderer) Render(content string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := g.renderer(width)
	if err != nil {
		return "", err
	}
	return r.Render(content)
}

func (g *GlamourRenderer) renderer(width int) (*glamour.TermRenderer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if r, ok := g.renderers[width]; ok {
		return r, nil
	}
	opts := append(append([]glamour.TermRendererOption(nil), g.options...), glamour.WithWordWrap(width))
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	g.renderers[width] = r
	return r, nil
}

// RenderMarkdown renders content, falling back to the raw text when rendering fails.
func RenderMarkdown(content string, width int, renderer MarkdownRenderer) (string, error) {
	if renderer == nil {
		return content, nil
	}
	out, err := renderer.Render(content, width)
	if err != nil {
		return content, err
	}
	return out, nil
}
