package engine

import (
	"context"

	"github.com/Cyclone1070/terminus/internal/tool"
)

// toolContext is the tool.Context handed to running tools.
type toolContext struct {
	engine *Engine
}

func (c *toolContext) ConfirmRequest(ctx context.Context, preview tool.Preview) (tool.Decision, error) {
	if c.engine.session.ConfirmationEnabled() {
		c.engine.sink.RenderToolPreview(preview)
	}
	return c.engine.gate.Ask(ctx, preview)
}

func (c *toolContext) ReportStatus(text string) {
	c.engine.sink.RenderStatus(text)
}

func (c *toolContext) WorkingDir() string {
	return c.engine.session.WorkingDir()
}

func (c *toolContext) Resolve(path string) string {
	return c.engine.resolver.Resolve(c.engine.session.WorkingDir(), path)
}

func (c *toolContext) ChangeDir(path string) error {
	_, err := c.engine.session.SetWorkingDir(c.Resolve(path))
	if err == nil {
		c.engine.logger.Info("working directory changed", "dir", c.engine.session.WorkingDir())
	}
	return err
}
