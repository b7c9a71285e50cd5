package guard

import (
	"path/filepath"
	"strings"
	"time"
)

// QuicksavePrefix is the file name prefix the game uses for quicksaves.
// Backups keep the prefix so both sets match "Quicksave*".
const QuicksavePrefix = "Quicksave"

// Settings is the core configuration, built once at startup and passed by
// value to every component. Nothing in this package mutates it.
type Settings struct {
	KeepCount    int           // max backups retained
	PollInterval time.Duration // sleep between cycles
	RetryCount   int           // attempts per filesystem action
	RetryDelay   time.Duration // wait between attempts
	ProcessName  string        // substring matched against running processes
	SaveExt      string        // quicksave extension, without dot
	BackupExt    string        // backup extension, without dot
}

// SaveDirectory is the resolved directory holding quicksaves and backups.
type SaveDirectory string

func (d SaveDirectory) String() string { return string(d) }

// Join returns the path of name inside the directory.
func (d SaveDirectory) Join(name string) string {
	return filepath.Join(string(d), name)
}

// QuicksaveFile is a quicksave written by the game. It is never written here.
type QuicksaveFile struct {
	Path     string
	BaseName string // file name without the save extension
	ModTime  time.Time
}

// BackupFile is a copy of a quicksave owned by the guard.
type BackupFile struct {
	Path    string
	Name    string
	ModTime time.Time
}

// BackupNameFor returns the backup file name for a quicksave.
func BackupNameFor(q QuicksaveFile, backupExt string) string {
	return q.BaseName + "." + strings.TrimPrefix(backupExt, ".")
}

// QuicksaveNameFor maps a backup name back to the quicksave name it was taken
// from. ok is false when name does not carry the backup extension.
func QuicksaveNameFor(backupName, backupExt, saveExt string) (name string, ok bool) {
	suffix := "." + strings.TrimPrefix(backupExt, ".")
	base, found := strings.CutSuffix(backupName, suffix)
	if !found || base == "" {
		return "", false
	}
	return base + "." + strings.TrimPrefix(saveExt, "."), true
}

// Pattern returns the glob matched by files with the given extension.
func Pattern(ext string) string {
	return QuicksavePrefix + "*." + strings.TrimPrefix(ext, ".")
}
