package guard

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
)

// State is a poll loop state.
type State string

const (
	StateChecking  State = "checking"
	StateEvicting  State = "evicting"
	StateBackingUp State = "backing_up"
	StateSleeping  State = "sleeping"
	StateStopped   State = "stopped"
)

// Components holds the collaborators the poll loop drives.
// Notifier, Ledger, Logger and Clock may be nil; defaults are used.
type Components struct {
	Watcher  ProcessWatcher
	Scanner  SaveScanner
	Files    FileActions
	Executor *RetryingExecutor
	Notifier Notifier
	Ledger   Ledger
	Logger   Logger
	Clock    clockwork.Clock
}

// CycleResult describes what one cycle did.
type CycleResult struct {
	Stopped bool
	Evicted []BackupFile
	Created *BackupFile
}

// Guard is the poll loop. It keeps the newest quicksave copied into a capped
// set of backups while the watched process runs.
type Guard struct {
	dir      SaveDirectory
	settings Settings
	runID    string

	watcher  ProcessWatcher
	scanner  SaveScanner
	files    FileActions
	executor *RetryingExecutor
	notifier Notifier
	ledger   Ledger
	logger   Logger
	clock    clockwork.Clock

	state State
}

// New creates a Guard for dir. runID tags the ledger entries of this run.
func New(dir SaveDirectory, settings Settings, runID string, c Components) *Guard {
	g := &Guard{
		dir:      dir,
		settings: settings,
		runID:    runID,
		watcher:  c.Watcher,
		scanner:  c.Scanner,
		files:    c.Files,
		executor: c.Executor,
		notifier: c.Notifier,
		ledger:   c.Ledger,
		logger:   c.Logger,
		clock:    c.Clock,
		state:    StateChecking,
	}
	if g.notifier == nil {
		g.notifier = NopNotifier{}
	}
	if g.ledger == nil {
		g.ledger = NopLedger{}
	}
	if g.logger == nil {
		g.logger = NewNopLogger()
	}
	if g.clock == nil {
		g.clock = clockwork.NewRealClock()
	}
	if g.executor == nil {
		g.executor = NewRetryingExecutor(settings.RetryCount, settings.RetryDelay, g.clock, g.logger)
	}
	return g
}

// State returns the current loop state.
func (g *Guard) State() State { return g.state }

// Run cycles until the watched process is gone, ctx is done, or an action
// fails fatally. A stopped game returns nil. A fatal failure is recorded,
// notified, and returned as a *FatalError for the caller to exit on.
func (g *Guard) Run(ctx context.Context) error {
	g.logger.Info("guard started",
		"dir", g.dir.String(),
		"process", g.settings.ProcessName,
		"keep", g.settings.KeepCount,
		"interval", g.settings.PollInterval,
	)
	g.record(EventRunStarted, g.dir.String(), "")

	for {
		res, err := g.RunCycle(ctx)
		if err != nil {
			var fatal *FatalError
			if errors.As(err, &fatal) {
				g.logger.Error("fatal failure, stopping", "error", err)
				g.record(EventFatal, fatal.Target, err.Error())
				if nerr := g.notifier.Fatal(ctx, err); nerr != nil {
					g.logger.Warn("fatal notification failed", "error", nerr)
				}
			}
			return err
		}

		if res.Stopped {
			g.logger.Info("game not running, stopping", "process", g.settings.ProcessName)
			g.record(EventRunStopped, g.dir.String(), "process not running")
			return nil
		}

		g.setState(StateSleeping)
		if err := sleep(ctx, g.clock, g.settings.PollInterval); err != nil {
			return err
		}
	}
}

// RunCycle runs a single check / evict / back up pass without sleeping.
func (g *Guard) RunCycle(ctx context.Context) (CycleResult, error) {
	var res CycleResult
	g.setState(StateChecking)

	running, err := g.watcher.IsRunning(ctx, g.settings.ProcessName)
	if err != nil {
		g.logger.Warn("process check failed, skipping cycle", "error", err)
		return res, nil
	}
	if !running {
		g.setState(StateStopped)
		res.Stopped = true
		return res, nil
	}

	latest, err := g.scanner.LatestQuicksave(g.dir)
	if err != nil {
		g.logger.Error("scanning quicksaves failed, skipping cycle", "error", err)
		return res, nil
	}
	if latest == nil {
		g.logger.Debug("no quicksave found")
		return res, nil
	}

	backups, err := g.scanner.ListBackups(g.dir)
	if err != nil {
		g.logger.Error("scanning backups failed, skipping cycle", "error", err)
		return res, nil
	}

	name := BackupNameFor(*latest, g.settings.BackupExt)
	needed := !hasBackup(backups, name)

	// Make room first so the cap holds even between the two steps.
	target := g.settings.KeepCount
	if needed {
		target--
	}
	for len(backups) > target && len(backups) > 0 {
		g.setState(StateEvicting)
		oldest := backups[0]
		if err := g.executor.Execute(ctx, g.files.DeleteAction(oldest.Path)); err != nil {
			return res, fmt.Errorf("evicting %s: %w", oldest.Name, err)
		}
		g.logger.Info("backup evicted", "name", oldest.Name)
		g.record(EventBackupEvicted, oldest.Name, "")
		res.Evicted = append(res.Evicted, oldest)
		backups = backups[1:]
	}

	if !needed {
		g.logger.Debug("backup already exists", "name", name)
		return res, nil
	}

	g.setState(StateBackingUp)
	dst := g.dir.Join(name)
	if err := g.executor.Execute(ctx, g.files.CopyAction(latest.Path, dst)); err != nil {
		return res, fmt.Errorf("backing up %s: %w", latest.BaseName, err)
	}

	created := BackupFile{Path: dst, Name: name, ModTime: latest.ModTime}
	res.Created = &created
	g.logger.Info("backup created", "quicksave", latest.BaseName, "backup", name)
	g.record(EventBackupCreated, name, latest.BaseName)
	if err := g.notifier.BackupCreated(ctx, created); err != nil {
		g.logger.Warn("backup notification failed", "error", err)
	}

	return res, nil
}

func (g *Guard) setState(s State) {
	if g.state != s {
		g.logger.Debug("state", "from", g.state, "to", s)
		g.state = s
	}
}

func (g *Guard) record(kind EventKind, target, detail string) {
	ev := Event{RunID: g.runID, Kind: kind, Target: target, Detail: detail, At: g.clock.Now()}
	if err := g.ledger.Record(ev); err != nil {
		g.logger.Warn("recording history failed", "kind", kind, "error", err)
	}
}

func hasBackup(backups []BackupFile, name string) bool {
	for _, b := range backups {
		if b.Name == name {
			return true
		}
	}
	return false
}
