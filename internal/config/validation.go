package config

import (
	"fmt"
	"strings"
)

// ValidationError lists every invalid field found by Validate.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: %s", strings.Join(e.Problems, "; "))
}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}

type limit struct {
	key   string
	value int64
}

// Validate reports every invalid value at once as a *ValidationError.
func (c *Config) Validate() error {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(c.DefaultModel) == "" {
		addf("default_model must not be empty")
	}
	for _, cmd := range c.Settings.AllowedCommands {
		if strings.TrimSpace(cmd) == "" || strings.ContainsAny(cmd, " \t/") {
			addf("settings.allowed_commands: %q is not a command name", cmd)
		}
	}

	t := c.Tools
	positive := []limit{
		{"provider.max_output_tokens", int64(c.Provider.MaxOutputTokens)},
		{"tools.max_file_size", t.MaxFileSize},
		{"tools.default_list_directory_limit", int64(t.DefaultListDirectoryLimit)},
		{"tools.max_list_directory_limit", int64(t.MaxListDirectoryLimit)},
		{"tools.default_max_command_output_size", t.DefaultMaxCommandOutputSize},
		{"tools.default_shell_timeout", int64(t.DefaultShellTimeout)},
		{"tools.max_line_length", int64(t.MaxLineLength)},
		{"tools.default_search_content_limit", int64(t.DefaultSearchContentLimit)},
		{"tools.max_search_content_limit", int64(t.MaxSearchContentLimit)},
		{"tools.default_find_file_limit", int64(t.DefaultFindFileLimit)},
		{"tools.max_find_file_limit", int64(t.MaxFindFileLimit)},
		{"tools.max_iterations", int64(t.MaxIterations)},
	}
	for _, l := range positive {
		if l.value < 1 {
			addf("%s must be >= 1", l.key)
		}
	}

	// each default must fit under its cap
	bounded := [][2]limit{
		{{"tools.default_list_directory_limit", int64(t.DefaultListDirectoryLimit)}, {"tools.max_list_directory_limit", int64(t.MaxListDirectoryLimit)}},
		{{"tools.default_search_content_limit", int64(t.DefaultSearchContentLimit)}, {"tools.max_search_content_limit", int64(t.MaxSearchContentLimit)}},
		{{"tools.default_find_file_limit", int64(t.DefaultFindFileLimit)}, {"tools.max_find_file_limit", int64(t.MaxFindFileLimit)}},
	}
	for _, pair := range bounded {
		if pair[0].value > pair[1].value {
			addf("%s must be <= %s", pair[0].key, pair[1].key)
		}
	}

	if !validLevels[strings.ToLower(c.Log.Level)] {
		addf("log.level %q must be one of debug, info, warn, error", c.Log.Level)
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
