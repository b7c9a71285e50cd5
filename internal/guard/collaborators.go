package guard

import (
	"context"
	"time"
)

// ProcessWatcher reports whether the watched game is running.
type ProcessWatcher interface {
	// IsRunning returns true if any running process name contains pattern.
	IsRunning(ctx context.Context, pattern string) (bool, error)
}

// SaveScanner reads the quicksave and backup sets of a directory.
// Implementations must not cache: every call reflects the directory as it is.
type SaveScanner interface {
	// LatestQuicksave returns the most recently modified quicksave, or nil if
	// the directory has none.
	LatestQuicksave(dir SaveDirectory) (*QuicksaveFile, error)

	// ListBackups returns the existing backups, oldest first.
	ListBackups(dir SaveDirectory) ([]BackupFile, error)
}

// FileActions builds the two filesystem actions the executor runs.
type FileActions interface {
	CopyAction(src, dst string) Action
	DeleteAction(path string) Action
}

// Prompter asks the operator for a line of input.
type Prompter interface {
	Prompt(ctx context.Context, message string) (string, error)
}

// Notifier receives user-facing events from the loop. Errors are logged by
// the caller and never change control flow.
type Notifier interface {
	BackupCreated(ctx context.Context, backup BackupFile) error
	Fatal(ctx context.Context, err error) error
}

// NopNotifier ignores every event.
type NopNotifier struct{}

func (NopNotifier) BackupCreated(context.Context, BackupFile) error { return nil }
func (NopNotifier) Fatal(context.Context, error) error              { return nil }

// EventKind names an entry in the history ledger.
type EventKind string

const (
	EventRunStarted     EventKind = "run_started"
	EventRunStopped     EventKind = "run_stopped"
	EventBackupCreated  EventKind = "backup_created"
	EventBackupEvicted  EventKind = "backup_evicted"
	EventBackupRestored EventKind = "backup_restored"
	EventFatal          EventKind = "fatal"
)

// Event is one ledger entry.
type Event struct {
	RunID  string
	Kind   EventKind
	Target string
	Detail string
	At     time.Time
}

// Ledger records what the guard did. Errors are logged by the caller and
// never change control flow.
type Ledger interface {
	Record(ev Event) error
}

// NopLedger discards every event.
type NopLedger struct{}

func (NopLedger) Record(Event) error { return nil }
