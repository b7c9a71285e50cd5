package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for qsguard.
type Config struct {
	BaseDir  string        `toml:"base_dir"`
	LogDir   string        `toml:"log_dir" validate:"required"`
	LogLevel string        `toml:"log_level" validate:"oneof=debug info warn error"`
	Game     GameConfig    `toml:"game"`
	Backup   BackupConfig  `toml:"backup"`
	History  HistoryConfig `toml:"history"`
	Sounds   SoundsConfig  `toml:"sounds"`
	Keys     KeysConfig    `toml:"keys"`
}

// GameConfig describes the watched game and where its saves live.
type GameConfig struct {
	ProcessName string `toml:"process_name" validate:"required"`
	// SaveDir skips discovery when set.
	SaveDir     string `toml:"save_dir,omitempty"`
	// GameFolder is the folder under "My Games" that holds Saves.
	GameFolder  string `toml:"game_folder" validate:"required"`
	SaveExt     string `toml:"save_ext" validate:"required,ext"`
	BackupExt   string `toml:"backup_ext" validate:"required,ext"`
}

// BackupConfig controls rotation and retries.
type BackupConfig struct {
	KeepCount    int      `toml:"keep_count" validate:"gte=1"`
	PollInterval Duration `toml:"poll_interval" validate:"gt=0"`
	RetryCount   int      `toml:"retry_count" validate:"gte=1"`
	RetryDelay   Duration `toml:"retry_delay" validate:"gte=0"`
}

// HistoryConfig represents configuration for the history ledger.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type HistoryConfig struct {
	Type    string `toml:"type" validate:"oneof=sqlite memory none"`
	DataDir string `toml:"data_dir,omitempty" validate:"required_if=Type sqlite"` // only used for type=sqlite
}

// SoundsConfig controls the notification tones.
type SoundsConfig struct {
	Enabled     bool    `toml:"enabled"`
	InfoVolume  float64 `toml:"info_volume" validate:"gte=0,lte=1"`
	ErrorVolume float64 `toml:"error_volume" validate:"gte=0,lte=1"`
}

// KeysConfig holds paths to the age key pair used for exported backups.
type KeysConfig struct {
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// Duration is a time.Duration written as a string such as "10s".
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns a Config with every default filled in for baseDir.
func Default(baseDir string) *Config {
	return &Config{
		BaseDir:  baseDir,
		LogDir:   filepath.Join(baseDir, "log"),
		LogLevel: "info",
		Game: GameConfig{
			ProcessName: "Starfield",
			GameFolder:  "Starfield",
			SaveExt:     "sfs",
			BackupExt:   "backup",
		},
		Backup: BackupConfig{
			KeepCount:    10,
			PollInterval: Duration(10 * time.Second),
			RetryCount:   3,
			RetryDelay:   Duration(time.Second),
		},
		History: HistoryConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Sounds: SoundsConfig{
			Enabled:     true,
			InfoVolume:  0.1,
			ErrorVolume: 0.5,
		},
		Keys: KeysConfig{
			PublicKeyPath:  filepath.Join(baseDir, "keys", "qsguard.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "qsguard.key"),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct {
	// BaseDir seeds the defaults that Read decodes onto.
	BaseDir string
}

// Read decodes a Config from the provided reader. Keys missing from the
// input keep their defaults.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	cfg := Default(m.BaseDir)
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads and validates a Config from the specified file path.
func ReadFromFile(path, baseDir string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{BaseDir: baseDir}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
