package process

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/shirou/gopsutil/v4/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	names := []string{"systemd", "Starfield.exe", "bash"}

	tests := []struct {
		name    string
		pattern string
		fold    bool
		want    bool
	}{
		{"exact substring", "Starfield", false, true},
		{"case mismatch without fold", "starfield", false, false},
		{"case mismatch with fold", "starfield", true, true},
		{"absent", "Fallout4", true, false},
		{"partial", "field.e", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(names, tt.pattern, tt.fold))
		})
	}
}

func TestWatcher_IsRunning(t *testing.T) {
	ctx := context.Background()

	t.Run("uses lister", func(t *testing.T) {
		w := NewWatcherWithLister(false, func(context.Context) ([]string, error) {
			return []string{"Starfield.exe"}, nil
		})
		running, err := w.IsRunning(ctx, "Starfield")
		require.NoError(t, err)
		assert.True(t, running)
	})

	t.Run("lister error", func(t *testing.T) {
		boom := errors.New("boom")
		w := NewWatcherWithLister(false, func(context.Context) ([]string, error) {
			return nil, boom
		})
		_, err := w.IsRunning(ctx, "Starfield")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("empty pattern", func(t *testing.T) {
		_, err := NewWatcher().IsRunning(ctx, "")
		assert.ErrorIs(t, err, ErrEmptyPattern)
	})

	t.Run("finds own process", func(t *testing.T) {
		self, err := process.NewProcess(int32(os.Getpid()))
		require.NoError(t, err)
		name, err := self.Name()
		require.NoError(t, err)
		require.NotEmpty(t, name)

		running, err := NewWatcher().IsRunning(ctx, name)
		require.NoError(t, err)
		assert.True(t, running)
	})
}
