// Package session holds the process-lifetime state shared across requests.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Cyclone1070/terminus/internal/orchestrator/models"
)

var ErrNotADirectory = errors.New("not a directory")

// Options seeds a Store at startup.
type Options struct {
	WorkingDir          string
	Model               string
	AllowedCommands     []string
	ConfirmationEnabled bool
}

// Store is the single session owned by the process.
// Request code is the only writer of history and the working directory; the mutex
// covers reads from UI commands running on other goroutines.
type Store struct {
	mu sync.RWMutex

	history             []models.Message
	workingDir          string
	model               string
	allowedCommands     map[string]bool
	alwaysAllowedTools  map[string]bool
	confirmationEnabled bool
}

// New creates a Store. WorkingDir is made absolute.
func New(opts Options) (*Store, error) {
	wd := opts.WorkingDir
	if wd == "" {
		var err error
		if wd, err = os.Getwd(); err != nil {
			return nil, err
		}
	}
	abs, err := filepath.Abs(wd)
	if err != nil {
		return nil, err
	}

	allowed := make(map[string]bool, len(opts.AllowedCommands))
	for _, c := range opts.AllowedCommands {
		allowed[c] = true
	}

	return &Store{
		workingDir:          abs,
		model:               opts.Model,
		allowedCommands:     allowed,
		alwaysAllowedTools:  make(map[string]bool),
		confirmationEnabled: opts.ConfirmationEnabled,
	}, nil
}

// History returns a copy of the conversation history.
func (s *Store) History() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Message, len(s.history))
	copy(out, s.history)
	return out
}

// Append adds messages to the end of the history.
func (s *Store) Append(msgs ...models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, msgs...)
}

// Clear drops the conversation history.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

// Len returns the number of messages in history.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

func (s *Store) WorkingDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workingDir
}

// SetWorkingDir changes the working directory. Relative paths resolve against the current one.
func (s *Store) SetWorkingDir(path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(s.workingDir, target)
	}
	target = filepath.Clean(target)

	info, err := os.Stat(target)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotADirectory, target)
	}

	s.workingDir = target
	return target, nil
}

func (s *Store) Model() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

func (s *Store) SetModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = model
}

func (s *Store) ConfirmationEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.confirmationEnabled
}

func (s *Store) SetConfirmationEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmationEnabled = enabled
}

// ToggleConfirmation flips confirmation and returns the new value.
func (s *Store) ToggleConfirmation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmationEnabled = !s.confirmationEnabled
	return s.confirmationEnabled
}

func (s *Store) IsCommandAllowed(root string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allowedCommands[root]
}

func (s *Store) AllowCommand(root string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allowedCommands[root] = true
}

// AllowCommandUnlessDone records root unless ctx is already done. The check and
// the insert happen under one lock. It reports whether root was recorded.
func (s *Store) AllowCommandUnlessDone(ctx context.Context, root string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	s.allowedCommands[root] = true
	return true
}

func (s *Store) IsToolAlwaysAllowed(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.alwaysAllowedTools[name]
}

func (s *Store) AllowToolAlways(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alwaysAllowedTools[name] = true
}

// AllowToolAlwaysUnlessDone is AllowCommandUnlessDone for tool overrides.
func (s *Store) AllowToolAlwaysUnlessDone(ctx context.Context, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	s.alwaysAllowedTools[name] = true
	return true
}

// AlwaysAllowedTools returns the override set, sorted.
func (s *Store) AlwaysAllowedTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.alwaysAllowedTools)
}

// AllowedCommands returns the shell allow list, sorted.
func (s *Store) AllowedCommands() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.allowedCommands)
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
