package saves

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"quicksave-guard/internal/guard"
	"quicksave-guard/internal/testutil"
)

const saveDir = "/saves"

var base = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func TestScanner_LatestQuicksave(t *testing.T) {
	t.Run("picks newest by modification time", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		testutil.WriteFile(t, fs, saveDir+"/Quicksave0001.sfs", "a", base)
		testutil.WriteFile(t, fs, saveDir+"/Quicksave0003.sfs", "c", base.Add(time.Minute))
		testutil.WriteFile(t, fs, saveDir+"/Quicksave0002.sfs", "b", base.Add(2*time.Minute))

		got, err := NewScanner(fs, "sfs", "backup").LatestQuicksave(guard.SaveDirectory(saveDir))
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Quicksave0002", got.BaseName)
		assert.Equal(t, saveDir+"/Quicksave0002.sfs", got.Path)
		assert.True(t, got.ModTime.Equal(base.Add(2*time.Minute)))
	})

	t.Run("ties broken by name", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		testutil.WriteFile(t, fs, saveDir+"/Quicksave0002.sfs", "b", base)
		testutil.WriteFile(t, fs, saveDir+"/Quicksave0001.sfs", "a", base)

		got, err := NewScanner(fs, ".sfs", ".backup").LatestQuicksave(guard.SaveDirectory(saveDir))
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Quicksave0002", got.BaseName)
	})

	t.Run("ignores other files", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		testutil.WriteFile(t, fs, saveDir+"/Autosave0001.sfs", "x", base.Add(time.Hour))
		testutil.WriteFile(t, fs, saveDir+"/Quicksave0001.sfs.tmp", "x", base.Add(time.Hour))
		testutil.WriteFile(t, fs, saveDir+"/Quicksave0001.backup", "x", base.Add(time.Hour))
		require.NoError(t, fs.MkdirAll(saveDir+"/Quicksave0009.sfs", 0o755))

		got, err := NewScanner(fs, "sfs", "backup").LatestQuicksave(guard.SaveDirectory(saveDir))
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("missing directory", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		_, err := NewScanner(fs, "sfs", "backup").LatestQuicksave(guard.SaveDirectory("/nope"))
		assert.Error(t, err)
	})
}

func TestScanner_ListBackups(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutil.WriteFile(t, fs, saveDir+"/Quicksave0003.backup", "c", base.Add(2*time.Minute))
	testutil.WriteFile(t, fs, saveDir+"/Quicksave0001.backup", "a", base)
	testutil.WriteFile(t, fs, saveDir+"/Quicksave0002.backup", "b", base.Add(time.Minute))
	testutil.WriteFile(t, fs, saveDir+"/Quicksave0004.sfs", "d", base.Add(3*time.Minute))
	testutil.WriteFile(t, fs, saveDir+"/notes.backup", "n", base)

	got, err := NewScanner(fs, "sfs", "backup").ListBackups(guard.SaveDirectory(saveDir))
	require.NoError(t, err)

	var names []string
	for _, b := range got {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"Quicksave0001.backup", "Quicksave0002.backup", "Quicksave0003.backup"}, names)
}

func TestScanner_ListBackupsSortedProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fs := afero.NewMemMapFs()
		n := rapid.IntRange(0, 20).Draw(t, "n")
		for i := 0; i < n; i++ {
			offset := rapid.IntRange(0, 5).Draw(t, fmt.Sprintf("offset%d", i))
			name := fmt.Sprintf("%s/Quicksave%04d.backup", saveDir, i)
			if err := afero.WriteFile(fs, name, []byte("x"), 0o644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			mt := base.Add(time.Duration(offset) * time.Second)
			if err := fs.Chtimes(name, mt, mt); err != nil {
				t.Fatalf("Chtimes() error = %v", err)
			}
		}
		if err := fs.MkdirAll(saveDir, 0o755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}

		got, err := NewScanner(fs, "sfs", "backup").ListBackups(guard.SaveDirectory(saveDir))
		if err != nil {
			t.Fatalf("ListBackups() error = %v", err)
		}
		if len(got) != n {
			t.Fatalf("ListBackups() returned %d, want %d", len(got), n)
		}
		sorted := sort.SliceIsSorted(got, func(i, j int) bool {
			if !got[i].ModTime.Equal(got[j].ModTime) {
				return got[i].ModTime.Before(got[j].ModTime)
			}
			return got[i].Name < got[j].Name
		})
		if !sorted {
			t.Fatalf("ListBackups() not sorted oldest first: %v", got)
		}
	})
}
