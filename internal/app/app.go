package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"

	"quicksave-guard/internal/archive"
	"quicksave-guard/internal/config"
	"quicksave-guard/internal/guard"
	"quicksave-guard/internal/history"
	"quicksave-guard/internal/notify"
	"quicksave-guard/internal/process"
	"quicksave-guard/internal/saves"
)

// Options overrides the collaborators NewGuardApp builds by default.
// Zero fields use the real implementations.
type Options struct {
	Fs         afero.Fs
	Watcher    guard.ProcessWatcher
	Prompter   guard.Prompter
	Player     notify.Player
	Clock      clockwork.Clock
	Console    io.Writer
	Candidates []string
}

// GuardApp is the application layer between the CLI and the guard.
// It constructs all dependencies from config, resolves the save directory on
// first use, and closes the history store and log file on Close.
type GuardApp struct {
	cfg      *config.Config
	settings guard.Settings
	runID    string

	fs         afero.Fs
	watcher    guard.ProcessWatcher
	prompter   guard.Prompter
	notifier   guard.Notifier
	clock      clockwork.Clock
	store      history.Store
	keyring    *archive.Keyring
	logger     *slogAdapter
	logFile    io.Closer
	candidates []string

	dir guard.SaveDirectory
}

// NewGuardApp creates a fully wired GuardApp from the given config.
// operation identifies the CLI command being run (e.g. "run", "restore").
// The caller must call Close when done.
func NewGuardApp(cfg *config.Config, operation string, opts Options) (*GuardApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Watcher == nil {
		opts.Watcher = process.NewWatcher()
	}
	if opts.Prompter == nil {
		opts.Prompter = NewStdinPrompter()
	}
	if opts.Player == nil {
		opts.Player = notify.MalgoPlayer{}
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Console == nil {
		opts.Console = os.Stderr
	}
	if opts.Candidates == nil {
		opts.Candidates = DefaultSaveDirCandidates(cfg.Game)
	}

	runID := uuid.New().String()
	l, logFile, err := newLogger(cfg.LogDir, runID, cfg.LogLevel, opts.Console)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: l.With(slog.String("op", operation))}

	store, err := history.NewStoreFromConfig(cfg.History)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("opening history: %w", err)
	}

	var notifier guard.Notifier = guard.NopNotifier{}
	if cfg.Sounds.Enabled {
		notifier = notify.NewSoundNotifier(opts.Player, cfg.Sounds.InfoVolume, cfg.Sounds.ErrorVolume, logger)
	}

	return &GuardApp{
		cfg:        cfg,
		settings:   Settings(cfg),
		runID:      runID,
		fs:         opts.Fs,
		watcher:    opts.Watcher,
		prompter:   opts.Prompter,
		notifier:   notifier,
		clock:      opts.Clock,
		store:      store,
		keyring:    archive.NewKeyring(opts.Fs, cfg.Keys),
		logger:     logger,
		logFile:    logFile,
		candidates: opts.Candidates,
	}, nil
}

// Settings converts a validated config into guard settings.
func Settings(cfg *config.Config) guard.Settings {
	return guard.Settings{
		KeepCount:    cfg.Backup.KeepCount,
		PollInterval: cfg.Backup.PollInterval.Std(),
		RetryCount:   cfg.Backup.RetryCount,
		RetryDelay:   cfg.Backup.RetryDelay.Std(),
		ProcessName:  cfg.Game.ProcessName,
		SaveExt:      cfg.Game.SaveExt,
		BackupExt:    cfg.Game.BackupExt,
	}
}

// RunID returns the identifier tagging this invocation's log lines and
// history entries.
func (a *GuardApp) RunID() string { return a.runID }

// SaveDir resolves the save directory, prompting if none of the candidates
// exist. The answer is kept for the life of the app.
func (a *GuardApp) SaveDir(ctx context.Context) (guard.SaveDirectory, error) {
	if a.dir != "" {
		return a.dir, nil
	}
	r := guard.NewPathResolver(a.fs, a.prompter, a.logger)
	dir, err := r.Resolve(ctx, a.candidates)
	if err != nil {
		return "", fmt.Errorf("resolving save directory: %w", err)
	}
	a.dir = dir
	return dir, nil
}

func (a *GuardApp) newGuard(dir guard.SaveDirectory) *guard.Guard {
	return guard.New(dir, a.settings, a.runID, guard.Components{
		Watcher:  a.watcher,
		Scanner:  a.scanner(),
		Files:    saves.NewFiles(a.fs),
		Notifier: a.notifier,
		Ledger:   a.store,
		Logger:   a.logger,
		Clock:    a.clock,
	})
}

func (a *GuardApp) scanner() *saves.Scanner {
	return saves.NewScanner(a.fs, a.settings.SaveExt, a.settings.BackupExt)
}

// Run resolves the save directory and guards it until the game exits, ctx
// is cancelled, or a filesystem action fails fatally. A fatal failure is
// returned as a *guard.FatalError.
func (a *GuardApp) Run(ctx context.Context) error {
	dir, err := a.SaveDir(ctx)
	if err != nil {
		return err
	}
	return a.newGuard(dir).Run(ctx)
}

// ListBackups returns the backups in the save directory, oldest first.
func (a *GuardApp) ListBackups(ctx context.Context) ([]guard.BackupFile, error) {
	dir, err := a.SaveDir(ctx)
	if err != nil {
		return nil, err
	}
	return a.scanner().ListBackups(dir)
}

// History returns up to limit ledger entries, newest first.
func (a *GuardApp) History(ctx context.Context, limit int) ([]guard.Event, error) {
	return a.store.List(ctx, limit)
}

// Restore copies the named backup over its quicksave. Returns the path written.
func (a *GuardApp) Restore(ctx context.Context, backupName string) (string, error) {
	dir, err := a.SaveDir(ctx)
	if err != nil {
		return "", err
	}
	return a.newGuard(dir).Restore(ctx, backupName)
}

// KeysConfigured reports whether an export key pair exists.
func (a *GuardApp) KeysConfigured() bool {
	return a.keyring.IsConfigured()
}

// InitKeys creates the export key pair protected by passphrase.
func (a *GuardApp) InitKeys(passphrase string) error {
	if err := a.keyring.Setup(passphrase); err != nil {
		return fmt.Errorf("creating keys: %w", err)
	}
	a.logger.Info("keys created", "public_key", a.cfg.Keys.PublicKeyPath)
	return nil
}

// Export encrypts the named backup to out.
func (a *GuardApp) Export(ctx context.Context, backupName, out string) error {
	if !a.keyring.IsConfigured() {
		return errors.New("no keys configured; run 'qsguard keys init' first")
	}
	backup, err := a.findBackup(ctx, backupName)
	if err != nil {
		return err
	}
	if err := archive.Export(a.fs, a.keyring, backup.Path, out); err != nil {
		return fmt.Errorf("exporting %s: %w", backupName, err)
	}
	a.logger.Info("backup exported", "backup", backupName, "out", out)
	return nil
}

// Import decrypts in into the save directory as backupName.
func (a *GuardApp) Import(ctx context.Context, in, backupName, passphrase string) (string, error) {
	if err := a.checkBackupName(backupName); err != nil {
		return "", err
	}
	dir, err := a.SaveDir(ctx)
	if err != nil {
		return "", err
	}

	unlocked, err := a.keyring.Unlock(passphrase)
	if err != nil {
		return "", fmt.Errorf("unlocking keys: %w", err)
	}

	dst := dir.Join(backupName)
	if err := archive.Import(a.fs, unlocked, in, dst); err != nil {
		return "", fmt.Errorf("importing %s: %w", in, err)
	}
	a.logger.Info("backup imported", "in", in, "backup", backupName)
	return dst, nil
}

func (a *GuardApp) findBackup(ctx context.Context, name string) (*guard.BackupFile, error) {
	backups, err := a.ListBackups(ctx)
	if err != nil {
		return nil, err
	}
	for i := range backups {
		if backups[i].Name == name {
			return &backups[i], nil
		}
	}
	return nil, fmt.Errorf("backup not found: %s", name)
}

// checkBackupName accepts only bare file names that the scanner would list
// as backups.
func (a *GuardApp) checkBackupName(name string) error {
	if name != filepath.Base(name) {
		return fmt.Errorf("backup name must be a file name, not a path: %s", name)
	}
	ok, err := filepath.Match(guard.Pattern(a.settings.BackupExt), name)
	if err != nil || !ok {
		return fmt.Errorf("backup name must match %s: %s", guard.Pattern(a.settings.BackupExt), name)
	}
	return nil
}

// Close closes the history store and the log file.
func (a *GuardApp) Close() error {
	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing history: %w", err)
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}
