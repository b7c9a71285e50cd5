package saves

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"

	"quicksave-guard/internal/guard"
)

// Files builds the copy and delete actions run by the retrying executor.
type Files struct {
	fs afero.Fs
}

// NewFiles creates a Files operating on fs.
func NewFiles(fs afero.Fs) *Files {
	return &Files{fs: fs}
}

// CopyAction copies src to dst. The copy is written to a temp file in dst's
// directory and renamed into place, so a failed attempt never leaves a
// partial dst behind. dst gets src's modification time.
func (f *Files) CopyAction(src, dst string) guard.Action {
	return guard.Action{
		Kind:   guard.ActionCopy,
		Target: filepath.Base(dst),
		Run: func(context.Context) error {
			return f.copyFile(src, dst)
		},
	}
}

// DeleteAction removes path. A file that is already gone counts as removed.
func (f *Files) DeleteAction(path string) guard.Action {
	return guard.Action{
		Kind:   guard.ActionDelete,
		Target: filepath.Base(path),
		Run: func(context.Context) error {
			if err := f.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("removing %s: %w", path, err)
			}
			return nil
		},
	}
}

func (f *Files) copyFile(src, dst string) error {
	in, err := f.fs.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	tmp, err := afero.TempFile(f.fs, filepath.Dir(dst), ".qsguard-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			f.fs.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, in)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if written != info.Size() {
		return fmt.Errorf("size mismatch copying %s: expected %d bytes, got %d", src, info.Size(), written)
	}

	if err := f.fs.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", dst, err)
	}
	success = true

	if err := f.fs.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("setting modification time on %s: %w", dst, err)
	}
	return nil
}

var _ guard.FileActions = (*Files)(nil)
