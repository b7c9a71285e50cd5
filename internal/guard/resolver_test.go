package guard_test

import (
	"context"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quicksave-guard/internal/guard"
	"quicksave-guard/internal/testutil"
)

func TestPathResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	newFs := func(t *testing.T, dirs ...string) afero.Fs {
		fs := afero.NewMemMapFs()
		for _, d := range dirs {
			require.NoError(t, fs.MkdirAll(d, 0o755))
		}
		return fs
	}

	t.Run("first existing candidate wins", func(t *testing.T) {
		fs := newFs(t, "/b/Saves", "/c/Saves")
		prompter := testutil.NewStubPrompter()
		r := guard.NewPathResolver(fs, prompter, guard.NewNopLogger())

		got, err := r.Resolve(ctx, []string{"/a/Saves", "/b/Saves", "/c/Saves"})
		require.NoError(t, err)
		assert.Equal(t, guard.SaveDirectory("/b/Saves"), got)
		assert.Empty(t, prompter.Messages)
	})

	t.Run("empty candidates and files are skipped", func(t *testing.T) {
		fs := newFs(t, "/c/Saves")
		require.NoError(t, afero.WriteFile(fs, "/b/Saves", []byte("x"), 0o644))
		r := guard.NewPathResolver(fs, testutil.NewStubPrompter(), guard.NewNopLogger())

		got, err := r.Resolve(ctx, []string{"", "/b/Saves", "/c/Saves/"})
		require.NoError(t, err)
		assert.Equal(t, guard.SaveDirectory("/c/Saves"), got)
	})

	t.Run("prompts until an existing directory is entered", func(t *testing.T) {
		fs := newFs(t, "/games/Saves")
		prompter := testutil.NewStubPrompter("/wrong", "  \"/games/Saves\"  ")
		r := guard.NewPathResolver(fs, prompter, guard.NewNopLogger())

		got, err := r.Resolve(ctx, []string{"/a/Saves"})
		require.NoError(t, err)
		assert.Equal(t, guard.SaveDirectory("/games/Saves"), got)
		require.Len(t, prompter.Messages, 2)
		assert.Contains(t, prompter.Messages[1], `"/wrong" does not exist`)
	})

	t.Run("prompter error ends resolution", func(t *testing.T) {
		r := guard.NewPathResolver(newFs(t), testutil.NewStubPrompter(), guard.NewNopLogger())

		_, err := r.Resolve(ctx, []string{"/a/Saves"})
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r := guard.NewPathResolver(newFs(t), testutil.NewStubPrompter("/x"), guard.NewNopLogger())

		_, err := r.Resolve(ctx, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
