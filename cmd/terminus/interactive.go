package main

import (
	"context"
	"errors"
	"sync"

	"github.com/Cyclone1070/terminus/internal/cancel"
	"github.com/Cyclone1070/terminus/internal/command"
	"github.com/Cyclone1070/terminus/internal/config"
	"github.com/Cyclone1070/terminus/internal/ui"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

const modelHint = "Use /model <name> to choose another model."

// terminal is the part of the interactive UI the serve loop drives.
type terminal interface {
	Inputs() <-chan string
	Ready() <-chan struct{}
	Done() <-chan struct{}
	Quit()
	SetBusy(busy bool)
}

func runInteractive(ctx context.Context, cfg *config.Config, builder providerBuilder, logger *log.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var a *app
	u := ui.New(ui.NewChannels(), ui.Options{
		Interrupt: func() bool { return a.controller.Interrupt() },
		Model:     func() string { return a.session.Model() },
	})

	a, err := newApp(cfg, builder, u, logger, "")
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(u.Run)
	g.Go(func() error { return a.serve(gctx, u) })
	return g.Wait()
}

// serve feeds submitted lines to the controller until the terminal closes.
// Each line runs on its own goroutine so the UI keeps reading input and an
// interrupt can reach a running request.
func (a *app) serve(ctx context.Context, t terminal) error {
	defer t.Quit()

	select {
	case <-t.Ready():
	case <-t.Done():
		return nil
	case <-ctx.Done():
		return nil
	}

	if err := a.connect(ctx); err != nil {
		a.logger.Warn("starting without a provider", "err", err)
		a.sink.RenderError(err)
		a.sink.RenderStatus(modelHint)
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			a.controller.Interrupt()
			return nil
		case <-t.Done():
			a.controller.Interrupt()
			return nil
		case line := <-t.Inputs():
			wg.Add(1)
			go func() {
				defer wg.Done()
				a.submit(ctx, t, line)
			}()
		}
	}
}

func (a *app) submit(ctx context.Context, t terminal, line string) {
	request := !command.IsCommand(line)
	if request {
		t.SetBusy(true)
	}
	err := a.controller.Submit(ctx, line)
	if request {
		t.SetBusy(a.controller.State() != cancel.Idle)
	}
	if errors.Is(err, command.ErrExit) {
		t.Quit()
	}
}
