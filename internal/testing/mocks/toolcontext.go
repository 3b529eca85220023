// Package mocks holds hand-written test doubles shared across tool packages.
package mocks

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/Cyclone1070/terminus/internal/tool"
)

// MockToolContext implements tool.Context with configurable behaviour.
// By default ConfirmRequest approves and ChangeDir accepts any existing directory.
type MockToolContext struct {
	Dir string

	ConfirmRequestFunc func(ctx context.Context, preview tool.Preview) (tool.Decision, error)
	ChangeDirFunc      func(path string) error

	mu       sync.Mutex
	statuses []string
	prompts  []tool.Preview
}

// NewMockToolContext creates a context rooted at dir.
func NewMockToolContext(dir string) *MockToolContext {
	return &MockToolContext{Dir: dir}
}

func (m *MockToolContext) ConfirmRequest(ctx context.Context, preview tool.Preview) (tool.Decision, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, preview)
	m.mu.Unlock()
	if m.ConfirmRequestFunc != nil {
		return m.ConfirmRequestFunc(ctx, preview)
	}
	return tool.DecisionApprove, nil
}

func (m *MockToolContext) ReportStatus(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, text)
}

func (m *MockToolContext) WorkingDir() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Dir
}

func (m *MockToolContext) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(m.WorkingDir(), path)
}

func (m *MockToolContext) ChangeDir(path string) error {
	if m.ChangeDirFunc != nil {
		return m.ChangeDirFunc(path)
	}
	abs := m.Resolve(path)
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &os.PathError{Op: "chdir", Path: abs, Err: os.ErrInvalid}
	}
	m.mu.Lock()
	m.Dir = abs
	m.mu.Unlock()
	return nil
}

// Statuses returns every ReportStatus text in order.
func (m *MockToolContext) Statuses() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.statuses...)
}

// Prompts returns every preview passed to ConfirmRequest.
func (m *MockToolContext) Prompts() []tool.Preview {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]tool.Preview(nil), m.prompts...)
}
