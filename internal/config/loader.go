package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	// ConfigDir lives under ~/.config.
	ConfigDir  = "terminus"
	ConfigFile = "config.json"
	// EnvFile holds credentials next to the config file and in the working directory.
	EnvFile = ".env"
	// LogFile is the default log file name under the config directory.
	LogFile = "terminus.log"
)

// Credential keys looked up by the provider factory.
const (
	GeminiAPIKey    = "GEMINI_API_KEY"
	OpenAIAPIKey    = "OPENAI_API_KEY"
	AnthropicAPIKey = "ANTHROPIC_API_KEY"
)

var credentialKeys = []string{GeminiAPIKey, OpenAIAPIKey, AnthropicAPIKey}

// FileSystem is the slice of the OS the loader reads.
type FileSystem interface {
	UserHomeDir() (string, error)
	ReadFile(path string) ([]byte, error)
	Getenv(key string) string
}

// ConfigFileReader reads the real OS.
type ConfigFileReader struct{}

func (ConfigFileReader) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

func (ConfigFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (ConfigFileReader) Getenv(key string) string {
	return os.Getenv(key)
}

// Loader builds a Config from defaults, the config file and credential sources.
type Loader struct {
	fs FileSystem
	// Directory searched for a project .env; empty skips it.
	workDir string
}

// NewLoader reads the real home directory and the process working directory.
func NewLoader() *Loader {
	wd, _ := os.Getwd()
	return &Loader{fs: ConfigFileReader{}, workDir: wd}
}

// NewLoaderWithFS reads through fs and looks for a project .env in workDir.
func NewLoaderWithFS(fs FileSystem, workDir string) *Loader {
	return &Loader{fs: fs, workDir: workDir}
}

// Load decodes ~/.config/terminus/config.json over DefaultConfig, so a key that is
// present wins even when it holds a zero value. A missing file is not an error.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	homeDir, err := l.fs.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	if homeDir != "" {
		configPath := filepath.Join(homeDir, ".config", ConfigDir, ConfigFile)

		data, err := l.fs.ReadFile(configPath)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", configPath, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, err
		}

		if cfg.Log.File == "" {
			cfg.Log.File = filepath.Join(homeDir, ".config", ConfigDir, LogFile)
		}
	}
	if cfg.Env == nil {
		cfg.Env = map[string]string{}
	}

	if err := l.loadCredentials(cfg, homeDir); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadCredentials fills missing credential keys. Precedence: config env map,
// ~/.config/terminus/.env, ./.env, then the process environment.
func (l *Loader) loadCredentials(cfg *Config, homeDir string) error {
	var envFiles []string
	if homeDir != "" {
		envFiles = append(envFiles, filepath.Join(homeDir, ".config", ConfigDir, EnvFile))
	}
	if l.workDir != "" {
		envFiles = append(envFiles, filepath.Join(l.workDir, EnvFile))
	}

	for _, path := range envFiles {
		data, err := l.fs.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
		values, err := godotenv.UnmarshalBytes(data)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		for k, v := range values {
			if _, ok := cfg.Env[k]; !ok {
				cfg.Env[k] = v
			}
		}
	}

	for _, key := range credentialKeys {
		if cfg.Env[key] != "" {
			continue
		}
		if v := l.fs.Getenv(key); v != "" {
			cfg.Env[key] = v
		}
	}
	return nil
}

// Credential returns a credential value, or "" when unset.
func (c *Config) Credential(key string) string {
	if c == nil || c.Env == nil {
		return ""
	}
	return c.Env[key]
}

// Load uses NewLoader.
func Load() (*Config, error) {
	return NewLoader().Load()
}
