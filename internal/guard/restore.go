package guard

import (
	"context"
	"errors"
	"fmt"
)

// ErrGameRunning is returned by Restore while the watched process runs.
var ErrGameRunning = errors.New("game is running")

// Restore copies the named backup back over its quicksave so the game can
// load it. It refuses while the game runs, since the game owns the
// quicksave slot then. Returns the path written.
func (g *Guard) Restore(ctx context.Context, backupName string) (string, error) {
	running, err := g.watcher.IsRunning(ctx, g.settings.ProcessName)
	if err != nil {
		return "", fmt.Errorf("checking process: %w", err)
	}
	if running {
		return "", fmt.Errorf("restoring %s: %w (quit %s first)", backupName, ErrGameRunning, g.settings.ProcessName)
	}

	backups, err := g.scanner.ListBackups(g.dir)
	if err != nil {
		return "", fmt.Errorf("listing backups: %w", err)
	}

	var found *BackupFile
	for i := range backups {
		if backups[i].Name == backupName {
			found = &backups[i]
			break
		}
	}
	if found == nil {
		return "", fmt.Errorf("backup not found: %s", backupName)
	}

	quicksave, ok := QuicksaveNameFor(found.Name, g.settings.BackupExt, g.settings.SaveExt)
	if !ok {
		return "", fmt.Errorf("not a backup file name: %s", found.Name)
	}

	dst := g.dir.Join(quicksave)
	if err := g.executor.Execute(ctx, g.files.CopyAction(found.Path, dst)); err != nil {
		return "", fmt.Errorf("restoring %s: %w", found.Name, err)
	}

	g.logger.Info("backup restored", "backup", found.Name, "quicksave", quicksave)
	g.record(EventBackupRestored, found.Name, quicksave)
	return dst, nil
}
