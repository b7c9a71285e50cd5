package history

import (
	"fmt"
	"os"
	"path/filepath"

	"quicksave-guard/internal/config"
)

// FileName is the history database file under the configured data_dir.
const FileName = "history.db"

// NewStoreFromConfig creates a Store implementation based on the history config type.
func NewStoreFromConfig(cfg config.HistoryConfig) (Store, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite history")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, FileName))
	case "memory":
		return NewSQLiteStore(":memory:")
	case "none":
		return NopStore{}, nil
	default:
		return nil, fmt.Errorf("unknown history type: %s", cfg.Type)
	}
}
