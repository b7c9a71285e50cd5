package app

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName names the config file, data directory and log file.
const AppName = "qsguard"

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - QSGUARD_CONFIG_PATH: config file location (default: <XDG config>/qsguard.toml)
//   - QSGUARD_HOME: base directory for qsguard data (default: <XDG data>/qsguard)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the config file path, checking QSGUARD_CONFIG_PATH first,
// then falling back to the XDG config directory.
func getConfigPath() (string, error) {
	if path := os.Getenv("QSGUARD_CONFIG_PATH"); path != "" {
		return path, nil
	}
	if xdg.ConfigHome == "" {
		return "", errors.New("cannot determine config directory")
	}
	return filepath.Join(xdg.ConfigHome, AppName+".toml"), nil
}

// getBaseDir returns the base directory for qsguard data, checking QSGUARD_HOME
// first, then falling back to the XDG data directory.
func getBaseDir() (string, error) {
	if path := os.Getenv("QSGUARD_HOME"); path != "" {
		return path, nil
	}
	if xdg.DataHome == "" {
		return "", errors.New("cannot determine data directory")
	}
	return filepath.Join(xdg.DataHome, AppName), nil
}
