package config

// Config is read once at startup. See Loader.Load for how the file overrides DefaultConfig.
type Config struct {
	DefaultModel string            `json:"default_model"`
	Settings     SettingsConfig    `json:"settings"`
	Provider     ProviderConfig    `json:"provider"`
	Tools        ToolsConfig       `json:"tools"`
	Log          LogConfig         `json:"log"`
	Env          map[string]string `json:"env"`
}

type SettingsConfig struct {
	// Command roots run without confirmation.
	AllowedCommands     []string `json:"allowed_commands"`
	ConfirmationEnabled bool     `json:"confirmation_enabled"` // Default: true
	// Project guide prepended to every request, relative to the working directory.
	GuideFile string `json:"guide_file"` // Default: TERMINUS.md
}

type ProviderConfig struct {
	OllamaBaseURL   string `json:"ollama_base_url"`
	MaxOutputTokens int    `json:"max_output_tokens"` // Default: 8192
}

type ToolsConfig struct {
	// File Operations
	MaxFileSize int64 `json:"max_file_size"` // Default: 20 * 1024 * 1024 (20MB)

	// Directory Listing
	DefaultListDirectoryLimit int `json:"default_list_directory_limit"` // Default: 1000
	MaxListDirectoryLimit     int `json:"max_list_directory_limit"`     // Default: 10000

	// Command Execution
	DefaultMaxCommandOutputSize int64 `json:"default_max_command_output_size"` // Default: 10 * 1024 * 1024 (10MB)
	DefaultShellTimeout         int   `json:"default_shell_timeout"`           // Default: 600 (10 minutes, in seconds)

	// Search
	MaxLineLength             int `json:"max_line_length"`              // Default: 10000
	DefaultSearchContentLimit int `json:"default_search_content_limit"` // Default: 100
	MaxSearchContentLimit     int `json:"max_search_content_limit"`     // Default: 1000
	DefaultFindFileLimit      int `json:"default_find_file_limit"`      // Default: 100
	MaxFindFileLimit          int `json:"max_find_file_limit"`          // Default: 1000

	// Reasoning loop
	MaxIterations int `json:"max_iterations"` // Default: 20
}

type LogConfig struct {
	Level string `json:"level"` // Default: info
	// Empty means the default file under the config directory.
	File string `json:"file"`
}

// DefaultModel is used when neither the dotfile nor --model names one.
const DefaultModel = "gemini-2.0-flash"

// DefaultAllowedCommands are read-only command roots that never prompt.
var DefaultAllowedCommands = []string{
	"ls", "cat", "grep", "rg", "find", "pwd", "echo", "which", "head", "tail",
	"wc", "sort", "uniq", "diff", "tree", "file", "stat", "du", "df", "ps",
	"top", "env", "date", "whoami", "hostname", "uname", "id", "groups", "history",
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultModel: DefaultModel,
		Settings: SettingsConfig{
			AllowedCommands:     append([]string(nil), DefaultAllowedCommands...),
			ConfirmationEnabled: true,
			GuideFile:           "TERMINUS.md",
		},
		Provider: ProviderConfig{
			MaxOutputTokens: 8192,
		},
		Tools: ToolsConfig{
			MaxFileSize:                 20 * 1024 * 1024,
			DefaultListDirectoryLimit:   1000,
			MaxListDirectoryLimit:       10000,
			DefaultMaxCommandOutputSize: 10 * 1024 * 1024,
			DefaultShellTimeout:         600,
			MaxLineLength:               10000,
			DefaultSearchContentLimit:   100,
			MaxSearchContentLimit:       1000,
			DefaultFindFileLimit:        100,
			MaxFindFileLimit:            1000,
			MaxIterations:               20,
		},
		Log: LogConfig{
			Level: "info",
		},
		Env: map[string]string{},
	}
}
