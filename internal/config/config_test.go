package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := Default("/home/user/.local/share/qsguard")
	original.LogLevel = "debug"
	original.Game.SaveDir = "/games/Starfield/Saves"
	original.Backup.KeepCount = 4
	original.Backup.PollInterval = Duration(30 * time.Second)
	original.History = HistoryConfig{Type: "memory"}
	original.Sounds.Enabled = false

	var buf bytes.Buffer
	m := &Manager{BaseDir: "/elsewhere"}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(buf.String(), `poll_interval = "30s"`) {
		t.Errorf("Write() output missing duration string:\n%s", buf.String())
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", got.LogLevel, "debug")
	}
	if got.Game.SaveDir != original.Game.SaveDir {
		t.Errorf("Game.SaveDir = %q, want %q", got.Game.SaveDir, original.Game.SaveDir)
	}
	if got.Backup.KeepCount != 4 {
		t.Errorf("Backup.KeepCount = %d, want %d", got.Backup.KeepCount, 4)
	}
	if got.Backup.PollInterval.Std() != 30*time.Second {
		t.Errorf("Backup.PollInterval = %v, want %v", got.Backup.PollInterval.Std(), 30*time.Second)
	}
	if got.History.Type != "memory" {
		t.Errorf("History.Type = %q, want %q", got.History.Type, "memory")
	}
	if got.Sounds.Enabled {
		t.Error("Sounds.Enabled = true, want false")
	}
	if got.Keys.PublicKeyPath != original.Keys.PublicKeyPath {
		t.Errorf("Keys.PublicKeyPath = %q, want %q", got.Keys.PublicKeyPath, original.Keys.PublicKeyPath)
	}
}

func TestManager_Read_Defaults(t *testing.T) {
	m := &Manager{BaseDir: "/data/qsguard"}
	got, err := m.Read(strings.NewReader("[backup]\nkeep_count = 3\n"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.Backup.KeepCount != 3 {
		t.Errorf("Backup.KeepCount = %d, want %d", got.Backup.KeepCount, 3)
	}
	if got.Backup.RetryCount != 3 {
		t.Errorf("Backup.RetryCount = %d, want default %d", got.Backup.RetryCount, 3)
	}
	if got.Backup.PollInterval.Std() != 10*time.Second {
		t.Errorf("Backup.PollInterval = %v, want default %v", got.Backup.PollInterval.Std(), 10*time.Second)
	}
	if got.Game.ProcessName != "Starfield" {
		t.Errorf("Game.ProcessName = %q, want %q", got.Game.ProcessName, "Starfield")
	}
	if want := filepath.Join("/data/qsguard", "db"); got.History.DataDir != want {
		t.Errorf("History.DataDir = %q, want %q", got.History.DataDir, want)
	}
}

func TestManager_Read_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad duration", "[backup]\npoll_interval = \"ten seconds\"\n"},
		{"unknown key", "[backup]\nkeep = 3\n"},
		{"not toml", "keep_count ="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Manager{}
			if _, err := m.Read(strings.NewReader(tt.input)); err == nil {
				t.Error("Read() expected error, got nil")
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default("/data/qsguard")

	if cfg.LogDir != filepath.Join("/data/qsguard", "log") {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, filepath.Join("/data/qsguard", "log"))
	}
	if cfg.Backup.KeepCount != 10 {
		t.Errorf("Backup.KeepCount = %d, want %d", cfg.Backup.KeepCount, 10)
	}
	if cfg.Backup.RetryDelay.Std() != time.Second {
		t.Errorf("Backup.RetryDelay = %v, want %v", cfg.Backup.RetryDelay.Std(), time.Second)
	}
	if cfg.Game.SaveExt != "sfs" || cfg.Game.BackupExt != "backup" {
		t.Errorf("extensions = %q/%q, want sfs/backup", cfg.Game.SaveExt, cfg.Game.BackupExt)
	}
	if want := filepath.Join("/data/qsguard", "keys", "qsguard.key"); cfg.Keys.PrivateKeyPath != want {
		t.Errorf("Keys.PrivateKeyPath = %q, want %q", cfg.Keys.PrivateKeyPath, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults error = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantKey string
	}{
		{"keep count zero", func(c *Config) { c.Backup.KeepCount = 0 }, "backup.keep_count"},
		{"retry count zero", func(c *Config) { c.Backup.RetryCount = 0 }, "backup.retry_count"},
		{"poll interval zero", func(c *Config) { c.Backup.PollInterval = 0 }, "backup.poll_interval"},
		{"negative retry delay", func(c *Config) { c.Backup.RetryDelay = Duration(-time.Second) }, "backup.retry_delay"},
		{"empty process", func(c *Config) { c.Game.ProcessName = "" }, "game.process_name"},
		{"extension with separator", func(c *Config) { c.Game.SaveExt = "s/fs" }, "game.save_ext"},
		{"same extensions", func(c *Config) { c.Game.BackupExt = "sfs" }, "game.backup_ext"},
		{"same extension with dot", func(c *Config) { c.Game.BackupExt = ".sfs" }, "game.backup_ext"},
		{"same extension other case", func(c *Config) { c.Game.BackupExt = "SFS" }, "game.backup_ext"},
		{"dotted save extension matches backup", func(c *Config) { c.Game.SaveExt = ".BACKUP" }, "game.backup_ext"},
		{"unknown history type", func(c *Config) { c.History.Type = "postgres" }, "history.type"},
		{"sqlite without data dir", func(c *Config) { c.History.DataDir = "" }, "history.data_dir"},
		{"volume too loud", func(c *Config) { c.Sounds.ErrorVolume = 1.5 }, "sounds.error_volume"},
		{"unknown log level", func(c *Config) { c.LogLevel = "trace" }, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("/data/qsguard")
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantKey) {
				t.Errorf("Validate() error = %q, want mention of %q", err.Error(), tt.wantKey)
			}
		})
	}

	t.Run("dotted extension accepted", func(t *testing.T) {
		cfg := Default("/data/qsguard")
		cfg.Game.SaveExt = ".sfs"
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("memory history needs no data dir", func(t *testing.T) {
		cfg := Default("/data/qsguard")
		cfg.History = HistoryConfig{Type: "memory"}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "qsguard.toml")
		content := "[game]\nsave_dir = \"/games/Saves\"\n\n[backup]\nkeep_count = 5\nretry_delay = \"250ms\"\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		cfg, err := ReadFromFile(path, "/data/qsguard")
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if cfg.Game.SaveDir != "/games/Saves" {
			t.Errorf("Game.SaveDir = %q, want %q", cfg.Game.SaveDir, "/games/Saves")
		}
		if cfg.Backup.RetryDelay.Std() != 250*time.Millisecond {
			t.Errorf("Backup.RetryDelay = %v, want %v", cfg.Backup.RetryDelay.Std(), 250*time.Millisecond)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "qsguard.toml")
		if err := os.WriteFile(path, []byte("[backup]\nkeep_count = 0\n"), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		if _, err := ReadFromFile(path, "/data/qsguard"); err == nil {
			t.Error("ReadFromFile() expected error, got nil")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := ReadFromFile(filepath.Join(t.TempDir(), "nope.toml"), "/data"); err == nil {
			t.Error("ReadFromFile() expected error, got nil")
		}
	})
}

func TestInit(t *testing.T) {
	t.Run("creates file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "sub", "qsguard.toml")

		if err := Init(path, Default(dir)); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		cfg, err := ReadFromFile(path, dir)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if cfg.BaseDir != dir {
			t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, dir)
		}
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "qsguard.toml")
		if err := os.WriteFile(path, []byte("existing"), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		if err := Init(path, Default("/data")); err == nil {
			t.Error("Init() expected error for existing file, got nil")
		}
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		cfg := Default("/data")
		cfg.Backup.KeepCount = 0
		if err := Init(filepath.Join(t.TempDir(), "qsguard.toml"), cfg); err == nil {
			t.Error("Init() expected error for invalid config, got nil")
		}
	})
}
