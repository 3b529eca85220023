// Package display defines where request output goes. Rendering is fire and forget.
package display

import (
	"github.com/Cyclone1070/terminus/internal/tool"
)

// Sink receives everything a request shows the user.
type Sink interface {
	// RenderText shows assistant text.
	RenderText(text string)
	// RenderToolPreview shows what a tool is about to do.
	RenderToolPreview(preview tool.Preview)
	// RenderError shows a failure that ended the request.
	RenderError(err error)
	// RenderStatus shows transient progress and notices.
	RenderStatus(text string)
}

// Discard drops everything.
type Discard struct{}

func (Discard) RenderText(string)              {}
func (Discard) RenderToolPreview(tool.Preview) {}
func (Discard) RenderError(error)              {}
func (Discard) RenderStatus(string)            {}

// OrDiscard returns s, or Discard when s is nil.
func OrDiscard(s Sink) Sink {
	if s == nil {
		return Discard{}
	}
	return s
}
