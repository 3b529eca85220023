package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/Cyclone1070/terminus/internal/command"
	"github.com/Cyclone1070/terminus/internal/config"
	"github.com/Cyclone1070/terminus/internal/ui"
	"github.com/Cyclone1070/terminus/internal/ui/services"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

type onceOptions struct {
	Out      io.Writer
	In       io.Reader
	Renderer services.MarkdownRenderer
	// WorkDir roots the session. Empty means the process directory.
	WorkDir string
	// Signals replaces the process interrupt handler when set.
	Signals <-chan os.Signal
}

// runOnce handles a single line on the console and returns when it ends.
// An interrupt cancels the request; a second one while idle stops the listener.
func runOnce(ctx context.Context, cfg *config.Config, builder providerBuilder, logger *log.Logger, line string, opts onceOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	console := ui.NewConsole(opts.Out, opts.In, opts.Renderer)

	a, err := newApp(cfg, builder, console, logger, opts.WorkDir)
	if err != nil {
		console.RenderError(err)
		return err
	}
	if err := a.connect(ctx); err != nil {
		console.RenderError(err)
		return err
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if opts.Signals != nil {
			return a.requests.Listen(gctx, opts.Signals, stop)
		}
		return a.requests.NotifyInterrupts(gctx, stop)
	})
	g.Go(func() error {
		defer stop()
		err := a.controller.Submit(gctx, line)
		if errors.Is(err, command.ErrExit) {
			return nil
		}
		return err
	})
	return g.Wait()
}
