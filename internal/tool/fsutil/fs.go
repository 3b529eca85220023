// Package fsutil holds the filesystem primitives shared by the file, directory and search tools.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// writeSyncCloser is the slice of *os.File that atomic writes need.
type writeSyncCloser interface {
	io.Writer
	Sync() error
	Close() error
	Name() string
}

// OS implements filesystem operations on the local disk.
// Syscalls used by WriteFileAtomic are fields so tests can fail them.
type OS struct {
	createTemp func(dir, pattern string) (writeSyncCloser, error)
	rename     func(oldpath, newpath string) error
	chmod      func(name string, mode os.FileMode) error
	remove     func(name string) error
}

// NewOS creates an OS backed by real syscalls.
func NewOS() *OS {
	return &OS{
		createTemp: func(dir, pattern string) (writeSyncCloser, error) {
			return os.CreateTemp(dir, pattern)
		},
		rename: os.Rename,
		chmod:  os.Chmod,
		remove: os.Remove,
	}
}

func (o *OS) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

func (o *OS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// ReadFileRange reads at most limit bytes starting at offset.
// A zero limit reads to the end of the file.
func (o *OS) ReadFileRange(path string, offset, limit int64) ([]byte, error) {
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("invalid range offset=%d limit=%d", offset, limit)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return nil, err
		}
	}

	var r io.Reader = f
	if limit > 0 {
		r = io.LimitReader(f, limit)
	}
	return io.ReadAll(r)
}

// WriteFileAtomic writes through a temp file in the target directory and renames it into place,
// so a crash never leaves a half-written file.
func (o *OS) WriteFileAtomic(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := o.createTemp(dir, ".terminus-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	cleanup := true
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
		}
		if cleanup {
			_ = o.remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	closeErr := tmp.Close()
	tmp = nil
	if closeErr != nil {
		return fmt.Errorf("close temp file: %w", closeErr)
	}

	if err := o.rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	cleanup = false

	if err := o.chmod(path, perm); err != nil {
		return fmt.Errorf("set permissions on %s: %w", path, err)
	}
	return nil
}

// EnsureDirs creates path and its parents.
func (o *OS) EnsureDirs(path string) error {
	return os.MkdirAll(path, 0o755)
}

// ReadDir lists a directory sorted by name.
func (o *OS) ReadDir(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}
