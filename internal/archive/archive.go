package archive

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Export encrypts the file at src into dst. dst must not exist.
func Export(fs afero.Fs, k *Keyring, src, dst string) error {
	if exists, err := afero.Exists(fs, dst); err != nil {
		return fmt.Errorf("checking %s: %w", dst, err)
	} else if exists {
		return fmt.Errorf("export destination already exists: %s", dst)
	}

	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	return writeAtomic(fs, dst, func(out afero.File) error {
		return k.Encrypt(in, out)
	})
}

// Import decrypts the file at src into dst, replacing any existing dst.
// A wrong key or a damaged file leaves dst untouched.
func Import(fs afero.Fs, u *Unlocked, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	return writeAtomic(fs, dst, func(out afero.File) error {
		return u.Decrypt(in, out)
	})
}

// writeAtomic runs fill on a temp file beside dst and renames it into
// place when fill succeeds.
func writeAtomic(fs afero.Fs, dst string, fill func(afero.File) error) error {
	dir := filepath.Dir(dst)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(fs, dir, ".qsguard-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := fill(tmp); err != nil {
		tmp.Close()
		fs.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := fs.Rename(tmpPath, dst); err != nil {
		fs.Remove(tmpPath)
		return fmt.Errorf("renaming temp file to %s: %w", dst, err)
	}
	return nil
}
