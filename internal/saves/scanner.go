// Package saves reads and writes the files in a save directory through afero.
package saves

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"quicksave-guard/internal/guard"
)

// Scanner lists quicksaves and backups in a save directory.
// It reads the directory on every call and keeps nothing between calls.
type Scanner struct {
	fs        afero.Fs
	saveExt   string
	backupExt string
}

// NewScanner creates a Scanner for the given extensions (with or without dot).
func NewScanner(fs afero.Fs, saveExt, backupExt string) *Scanner {
	return &Scanner{
		fs:        fs,
		saveExt:   strings.TrimPrefix(saveExt, "."),
		backupExt: strings.TrimPrefix(backupExt, "."),
	}
}

// LatestQuicksave returns the quicksave with the newest modification time,
// or nil if there is none. Equal times are broken by the larger name.
func (s *Scanner) LatestQuicksave(dir guard.SaveDirectory) (*guard.QuicksaveFile, error) {
	entries, err := s.match(dir, s.saveExt)
	if err != nil {
		return nil, err
	}

	var latest *guard.QuicksaveFile
	for _, e := range entries {
		if latest != nil {
			if e.ModTime().Before(latest.ModTime) {
				continue
			}
			if e.ModTime().Equal(latest.ModTime) && e.Name() < filepath.Base(latest.Path) {
				continue
			}
		}
		latest = &guard.QuicksaveFile{
			Path:     dir.Join(e.Name()),
			BaseName: strings.TrimSuffix(e.Name(), "."+s.saveExt),
			ModTime:  e.ModTime(),
		}
	}
	return latest, nil
}

// ListBackups returns the backups sorted oldest first. Equal times are
// ordered by name so the order is stable.
func (s *Scanner) ListBackups(dir guard.SaveDirectory) ([]guard.BackupFile, error) {
	entries, err := s.match(dir, s.backupExt)
	if err != nil {
		return nil, err
	}

	backups := make([]guard.BackupFile, 0, len(entries))
	for _, e := range entries {
		backups = append(backups, guard.BackupFile{
			Path:    dir.Join(e.Name()),
			Name:    e.Name(),
			ModTime: e.ModTime(),
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if !backups[i].ModTime.Equal(backups[j].ModTime) {
			return backups[i].ModTime.Before(backups[j].ModTime)
		}
		return backups[i].Name < backups[j].Name
	})
	return backups, nil
}

// match returns the regular files in dir whose names match Quicksave*.<ext>.
func (s *Scanner) match(dir guard.SaveDirectory, ext string) ([]os.FileInfo, error) {
	infos, err := afero.ReadDir(s.fs, dir.String())
	if err != nil {
		return nil, fmt.Errorf("reading save directory: %w", err)
	}

	pattern := guard.Pattern(ext)
	var out []os.FileInfo
	for _, info := range infos {
		if !info.Mode().IsRegular() {
			continue
		}
		ok, err := filepath.Match(pattern, info.Name())
		if err != nil {
			return nil, fmt.Errorf("matching %s: %w", pattern, err)
		}
		if ok {
			out = append(out, info)
		}
	}
	return out, nil
}

var _ guard.SaveScanner = (*Scanner)(nil)
