package guard_test

import (
	"errors"
	"fmt"
	"testing"

	"quicksave-guard/internal/guard"
)

func TestBackupNameFor(t *testing.T) {
	q := guard.QuicksaveFile{BaseName: "Quicksave0042"}
	for _, ext := range []string{"backup", ".backup"} {
		if got := guard.BackupNameFor(q, ext); got != "Quicksave0042.backup" {
			t.Errorf("BackupNameFor(%q) = %q, want %q", ext, got, "Quicksave0042.backup")
		}
	}
}

func TestQuicksaveNameFor(t *testing.T) {
	tests := []struct {
		name   string
		backup string
		want   string
		wantOK bool
	}{
		{"maps extension", "Quicksave0042.backup", "Quicksave0042.sfs", true},
		{"wrong extension", "Quicksave0042.sfs", "", false},
		{"extension only", ".backup", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := guard.QuicksaveNameFor(tt.backup, "backup", ".sfs")
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("QuicksaveNameFor(%q) = %q, %v, want %q, %v", tt.backup, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPattern(t *testing.T) {
	if got := guard.Pattern(".sfs"); got != "Quicksave*.sfs" {
		t.Errorf("Pattern() = %q, want %q", got, "Quicksave*.sfs")
	}
}

func TestFatalError(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("backing up: %w", &guard.FatalError{
		Kind:     guard.ActionCopy,
		Target:   "Quicksave0001.backup",
		Attempts: 3,
		Err:      cause,
	})

	if !errors.Is(err, guard.ErrFatal) {
		t.Error("errors.Is(err, ErrFatal) = false, want true")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	want := "backing up: copy Quicksave0001.backup failed after 3 attempt(s): disk full"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
