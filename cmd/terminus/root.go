package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Cyclone1070/terminus/internal/config"
	"github.com/Cyclone1070/terminus/internal/logging"
	"github.com/Cyclone1070/terminus/internal/provider/factory"
	"github.com/Cyclone1070/terminus/internal/ui/services"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type flags struct {
	model    string
	yolo     bool
	logLevel string
	logFile  string
}

func newRootCommand() *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:           "terminus",
		Short:         "A terminal assistant that works through tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(cmd.ErrOrStderr(), f)
			logger, closer, err := newLogger(cfg, nil)
			if err != nil {
				return err
			}
			defer closer.Close()

			if err := runInteractive(cmd.Context(), cfg, factory.New(cfg), logger); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
				return err
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&f.model, "model", "m", "", "model to use (default from config)")
	root.PersistentFlags().BoolVar(&f.yolo, "yolo", false, "run every tool without asking")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&f.logFile, "log-file", "", "log file path")

	root.AddCommand(newRunCommand(f), newVersionCommand())
	return root
}

func newRunCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "run <prompt...>",
		Short: "Handle a single request and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(cmd.ErrOrStderr(), f)
			logger, closer, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closer.Close()

			opts := onceOptions{
				Out:      cmd.OutOrStdout(),
				In:       cmd.InOrStdin(),
				Renderer: services.NewGlamourRenderer(),
			}
			// the console has already shown any failure; the error only sets the exit code
			return runOnce(cmd.Context(), cfg, factory.New(cfg), logger, strings.Join(args, " "), opts)
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "terminus %s\n", version)
		},
	}
}

// loadConfig reads the config file and applies flags. A broken config file is
// reported and replaced by defaults so the assistant still starts.
func loadConfig(stderr io.Writer, f *flags) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Warning: failed to load config: %v\n", err)
		fmt.Fprintln(stderr, "Using default configuration.")
		cfg = config.DefaultConfig()
	}
	applyFlags(cfg, f)
	return cfg
}

func applyFlags(cfg *config.Config, f *flags) {
	if f.model != "" {
		cfg.DefaultModel = f.model
	}
	if f.yolo {
		cfg.Settings.ConfirmationEnabled = false
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFile != "" {
		cfg.Log.File = f.logFile
	}
}

// newLogger writes to the log file; fallback is used only when no file is configured.
func newLogger(cfg *config.Config, fallback io.Writer) (*log.Logger, io.Closer, error) {
	logger, closer, err := logging.New(logging.Options{
		Level:    cfg.Log.Level,
		File:     cfg.Log.File,
		Fallback: fallback,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	return logger, closer, nil
}
