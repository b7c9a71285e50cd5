package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
)

// ErrInjected is returned by FlakyFs for the calls it fails.
var ErrInjected = errors.New("injected failure")

// WriteFile writes content to path on fs and sets its modification time.
func WriteFile(t *testing.T, fs afero.Fs, path, content string, modTime time.Time) {
	t.Helper()
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := fs.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}
}

// Names returns the base names of the files on fs matching pattern,
// in lexical order.
func Names(t *testing.T, fs afero.Fs, pattern string) []string {
	t.Helper()
	matches, err := afero.Glob(fs, pattern)
	if err != nil {
		t.Fatalf("Glob() error = %v", err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	return names
}

// FlakyFs wraps an afero.Fs and fails the first failures calls to Open and
// to Remove with ErrInjected. A negative failures fails every call.
// Opening a directory always passes through and is not counted, so
// directory listings keep working. Safe for concurrent use.
type FlakyFs struct {
	afero.Fs

	mu          sync.Mutex
	failures    int
	openCalls   int
	removeCalls int
}

// NewFlakyFs creates a FlakyFs over base.
func NewFlakyFs(base afero.Fs, failures int) *FlakyFs {
	return &FlakyFs{Fs: base, failures: failures}
}

func (f *FlakyFs) Open(name string) (afero.File, error) {
	if isDir, _ := afero.IsDir(f.Fs, name); isDir {
		return f.Fs.Open(name)
	}
	f.mu.Lock()
	f.openCalls++
	fail := f.failures < 0 || f.openCalls <= f.failures
	f.mu.Unlock()
	if fail {
		return nil, &os.PathError{Op: "open", Path: name, Err: ErrInjected}
	}
	return f.Fs.Open(name)
}

func (f *FlakyFs) Remove(name string) error {
	f.mu.Lock()
	f.removeCalls++
	fail := f.failures < 0 || f.removeCalls <= f.failures
	f.mu.Unlock()
	if fail {
		return &os.PathError{Op: "remove", Path: name, Err: ErrInjected}
	}
	return f.Fs.Remove(name)
}

// OpenCalls returns how many times Open was called.
func (f *FlakyFs) OpenCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.openCalls
}

// RemoveCalls returns how many times Remove was called.
func (f *FlakyFs) RemoveCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.removeCalls
}
