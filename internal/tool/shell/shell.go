// Package shell implements the run_command tool.
package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Cyclone1070/terminus/internal/config"
	"github.com/Cyclone1070/terminus/internal/tool"
	"github.com/joho/godotenv"
)

var (
	ErrCommandRequired  = errors.New("command is required")
	ErrNegativeTimeout  = errors.New("timeout_seconds must be >= 0")
	ErrWorkingDirectory = errors.New("working_dir is not a directory")
)

// runner is the process execution the tool needs.
type runner interface {
	Run(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*Result, error)
}

// Tool builds run_command.
type Tool struct {
	runner         runner
	defaultTimeout time.Duration
	environ        func() []string
}

// New creates the shell tool backed by r.
func New(r runner, cfg *config.Config) *Tool {
	return &Tool{
		runner:         r,
		defaultTimeout: time.Duration(cfg.Tools.DefaultShellTimeout) * time.Second,
		environ:        os.Environ,
	}
}

type RunCommandRequest struct {
	Command        []string          `json:"command"`
	WorkingDir     string            `json:"working_dir,omitempty"`
	TimeoutSeconds int               `json:"timeout_seconds,omitempty"`
	Env            map[string]string `json:"env,omitempty"`
	EnvFiles       []string          `json:"env_files,omitempty"`
}

func (r *RunCommandRequest) Validate() error {
	if len(r.Command) == 0 || strings.TrimSpace(r.Command[0]) == "" {
		return ErrCommandRequired
	}
	if r.TimeoutSeconds < 0 {
		return ErrNegativeTimeout
	}
	return nil
}

// RunCommand returns the run_command tool.
func (t *Tool) RunCommand() tool.Tool {
	return tool.New(tool.Descriptor{
		Name: "run_command",
		Description: "Run a program with arguments, without a shell: pipes, globs and redirects are not interpreted. " +
			"Wrap in [\"sh\", \"-c\", \"...\"] when shell features are needed. Returns the exit code, stdout and stderr.",
		Safety: tool.SafetyConfirm,
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"command": {
					Type:        tool.TypeArray,
					Description: "Program followed by its arguments, e.g. [\"go\", \"test\", \"./...\"]",
					Items:       &tool.Schema{Type: tool.TypeString},
				},
				"working_dir":     {Type: tool.TypeString, Description: "Directory to run in, defaults to the working directory"},
				"timeout_seconds": {Type: tool.TypeInteger, Description: "Kill the command after this many seconds"},
				"env": {
					Type:        tool.TypeObject,
					Description: "Extra environment variables",
				},
				"env_files": {
					Type:        tool.TypeArray,
					Description: ".env files to load before env is applied",
					Items:       &tool.Schema{Type: tool.TypeString},
				},
			},
			Required: []string{"command"},
		},
	}, t.run, tool.WithPreview(t.preview))
}

func (t *Tool) preview(tc tool.Context, req *RunCommandRequest) (tool.Preview, error) {
	body := FormatCommand(req.Command)
	dir := tc.WorkingDir()
	if req.WorkingDir != "" {
		dir = tc.Resolve(req.WorkingDir)
	}
	return tool.Preview{
		Kind:  tool.PreviewShell,
		Title: fmt.Sprintf("Run %s?", filepath.Base(req.Command[0])),
		Body:  fmt.Sprintf("$ %s\nin %s", body, dir),
	}, nil
}

func (t *Tool) run(ctx context.Context, tc tool.Context, req *RunCommandRequest) (string, error) {
	dir := tc.WorkingDir()
	if req.WorkingDir != "" {
		dir = tc.Resolve(req.WorkingDir)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrWorkingDirectory, dir)
	}

	env, err := t.buildEnv(tc, req)
	if err != nil {
		return "", err
	}

	timeout := t.defaultTimeout
	if req.TimeoutSeconds > 0 {
		timeout = time.Duration(req.TimeoutSeconds) * time.Second
	}

	tc.ReportStatus(fmt.Sprintf("Running %s", FormatCommand(req.Command)))
	res, err := t.runner.Run(ctx, req.Command, dir, env, timeout)
	if err != nil {
		if errors.Is(err, ErrTimeout) && res != nil {
			return "", fmt.Errorf("%w after %s\n%s", ErrTimeout, timeout, formatResult(res))
		}
		return "", err
	}
	return formatResult(res), nil
}

// buildEnv layers the process environment, then env files in order, then explicit env.
func (t *Tool) buildEnv(tc tool.Context, req *RunCommandRequest) ([]string, error) {
	env := t.environ()
	for _, file := range req.EnvFiles {
		vars, err := godotenv.Read(tc.Resolve(file))
		if err != nil {
			return nil, fmt.Errorf("load env file %s: %w", file, err)
		}
		env = appendSorted(env, vars)
	}
	return appendSorted(env, req.Env), nil
}

func appendSorted(env []string, vars map[string]string) []string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+vars[k])
	}
	return env
}

func formatResult(res *Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "exit code: %d", res.ExitCode)
	if out := strings.TrimRight(res.Stdout, "\n"); out != "" {
		fmt.Fprintf(&b, "\nstdout:\n%s", out)
	}
	if errOut := strings.TrimRight(res.Stderr, "\n"); errOut != "" {
		fmt.Fprintf(&b, "\nstderr:\n%s", errOut)
	}
	if res.Truncated {
		b.WriteString("\n[output truncated]")
	}
	return b.String()
}

// FormatCommand renders argv the way a user would type it.
func FormatCommand(command []string) string {
	parts := make([]string, len(command))
	for i, arg := range command {
		parts[i] = quote(arg)
	}
	return strings.Join(parts, " ")
}

func quote(arg string) string {
	if arg == "" {
		return "''"
	}
	if !strings.ContainsAny(arg, " \t\n'\"\\$`|&;<>()*?[]{}~#!") {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}
