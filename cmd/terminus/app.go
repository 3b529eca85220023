package main

import (
	"context"
	"fmt"

	"github.com/Cyclone1070/terminus/internal/cancel"
	"github.com/Cyclone1070/terminus/internal/catalog"
	"github.com/Cyclone1070/terminus/internal/command"
	"github.com/Cyclone1070/terminus/internal/config"
	"github.com/Cyclone1070/terminus/internal/controller"
	"github.com/Cyclone1070/terminus/internal/display"
	"github.com/Cyclone1070/terminus/internal/engine"
	"github.com/Cyclone1070/terminus/internal/gate"
	"github.com/Cyclone1070/terminus/internal/orchestrator"
	"github.com/Cyclone1070/terminus/internal/provider"
	"github.com/Cyclone1070/terminus/internal/session"
	"github.com/Cyclone1070/terminus/internal/tool"
	"github.com/Cyclone1070/terminus/internal/tool/todo"
	"github.com/charmbracelet/log"
)

type providerBuilder interface {
	Build(ctx context.Context, model string) (provider.Provider, error)
}

// frontend is where a request shows output and asks for permission.
type frontend interface {
	display.Sink
	gate.Prompter
}

// app is one fully wired assistant session.
type app struct {
	cfg        *config.Config
	session    *session.Store
	builder    providerBuilder
	requests   *cancel.Controller
	orch       *orchestrator.Orchestrator
	commands   *command.Handler
	controller *controller.Controller
	sink       display.Sink
	logger     *log.Logger
}

// newApp wires a session rooted at workDir, or the process directory when empty.
func newApp(cfg *config.Config, builder providerBuilder, front frontend, logger *log.Logger, workDir string) (*app, error) {
	store, err := session.New(session.Options{
		WorkingDir:          workDir,
		Model:               cfg.DefaultModel,
		AllowedCommands:     cfg.Settings.AllowedCommands,
		ConfirmationEnabled: cfg.Settings.ConfirmationEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	registry := tool.NewRegistry()
	if err := catalog.Register(registry, cfg, todo.NewStore()); err != nil {
		return nil, err
	}

	g := gate.New(store, front, logger.WithPrefix("gate"))
	eng := engine.New(registry, g, store, front, logger.WithPrefix("engine"))
	orch := orchestrator.New(nil, registry, eng, store, front, orchestrator.Options{
		GuideFile:     cfg.Settings.GuideFile,
		MaxIterations: cfg.Tools.MaxIterations,
	}, logger.WithPrefix("orchestrator"))

	requests := cancel.NewController()
	commands := command.New(command.Deps{
		Session:   store,
		Requests:  requests,
		Builder:   builder,
		Providers: orch,
		Sink:      front,
		Version:   version,
		Logger:    logger.WithPrefix("command"),
	})

	return &app{
		cfg:        cfg,
		session:    store,
		builder:    builder,
		requests:   requests,
		orch:       orch,
		commands:   commands,
		controller: controller.New(requests, orch, commands, front, logger.WithPrefix("controller")),
		sink:       front,
		logger:     logger,
	}, nil
}

// connect builds the provider for the session's model.
func (a *app) connect(ctx context.Context) error {
	model := a.session.Model()
	p, err := a.builder.Build(ctx, model)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", model, provider.Normalize(err))
	}
	a.orch.SetProvider(p)
	a.logger.Info("provider ready", "model", model)
	return nil
}
