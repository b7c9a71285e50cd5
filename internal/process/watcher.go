// Package process reports whether the game is running by listing the
// operating system's processes with gopsutil.
package process

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/process"

	"quicksave-guard/internal/guard"
)

// ErrEmptyPattern is returned for an empty process name, which would match
// every process.
var ErrEmptyPattern = errors.New("empty process name")

// Watcher matches a name pattern against the running process names.
type Watcher struct {
	fold bool
	list func(ctx context.Context) ([]string, error)
}

// NewWatcher creates a Watcher over the live process table. Matching folds
// case on platforms whose executable names are case-insensitive.
func NewWatcher() *Watcher {
	return &Watcher{fold: PlatformFold(), list: listProcessNames}
}

// NewWatcherWithLister creates a Watcher over names returned by list.
func NewWatcherWithLister(fold bool, list func(ctx context.Context) ([]string, error)) *Watcher {
	return &Watcher{fold: fold, list: list}
}

// PlatformFold reports whether process names compare case-insensitively on
// this platform.
func PlatformFold() bool {
	return runtime.GOOS == "windows" || runtime.GOOS == "darwin"
}

// IsRunning reports whether any running process name contains pattern.
func (w *Watcher) IsRunning(ctx context.Context, pattern string) (bool, error) {
	if pattern == "" {
		return false, ErrEmptyPattern
	}
	names, err := w.list(ctx)
	if err != nil {
		return false, fmt.Errorf("listing processes: %w", err)
	}
	return Match(names, pattern, w.fold), nil
}

// Match reports whether any of names contains pattern.
func Match(names []string, pattern string, fold bool) bool {
	if fold {
		pattern = strings.ToLower(pattern)
	}
	for _, n := range names {
		if fold {
			n = strings.ToLower(n)
		}
		if strings.Contains(n, pattern) {
			return true
		}
	}
	return false
}

func listProcessNames(ctx context.Context) ([]string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(procs))
	for _, p := range procs {
		// Processes can exit between listing and lookup.
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

var _ guard.ProcessWatcher = (*Watcher)(nil)
