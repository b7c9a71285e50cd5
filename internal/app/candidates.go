package app

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"quicksave-guard/internal/config"
)

// SaveDirCandidates returns the places a save directory may live, in the
// order they are tried: the configured save_dir, the OneDrive documents
// folder, the local documents folder, then the iCloud Drive documents
// folder. Duplicates and unknown locations are dropped.
func SaveDirCandidates(cfg config.GameConfig, home, documents string) []string {
	saves := filepath.Join("My Games", cfg.GameFolder, "Saves")

	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if p == "" {
			return
		}
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	add(cfg.SaveDir)
	if home != "" {
		add(filepath.Join(home, "OneDrive", "Documents", saves))
	}
	if documents != "" {
		add(filepath.Join(documents, saves))
	}
	if home != "" {
		add(filepath.Join(home, "iCloudDrive", "Documents", saves))
	}
	return out
}

// DefaultSaveDirCandidates returns SaveDirCandidates for the current user.
func DefaultSaveDirCandidates(cfg config.GameConfig) []string {
	home, _ := os.UserHomeDir()
	documents := xdg.UserDirs.Documents
	if documents == "" && home != "" {
		documents = filepath.Join(home, "Documents")
	}
	return SaveDirCandidates(cfg, home, documents)
}
