package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIgnoreMatcher(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("*.log\nbuild/\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", ".gitignore"), []byte("secret.txt\n"), 0o644))

	m, err := NewIgnoreMatcher(root)
	require.NoError(t, err)

	assert.True(t, m.ShouldIgnore("app.log", false))
	assert.True(t, m.ShouldIgnore("build", true))
	assert.True(t, m.ShouldIgnore(".git", true))
	assert.True(t, m.ShouldIgnore(filepath.Join("sub", "secret.txt"), false))
	assert.False(t, m.ShouldIgnore("secret.txt", false))
	assert.False(t, m.ShouldIgnore("main.go", false))
	assert.False(t, m.ShouldIgnore(".", true))
}

func TestIgnoreMatcher_NoGitignore(t *testing.T) {
	m, err := NewIgnoreMatcher(t.TempDir())
	require.NoError(t, err)

	assert.False(t, m.ShouldIgnore("anything.log", false))
	assert.True(t, m.ShouldIgnore(".git", true))
}

func TestIgnoreMatcher_Nil(t *testing.T) {
	var m *IgnoreMatcher
	assert.False(t, m.ShouldIgnore("x", false))
}
