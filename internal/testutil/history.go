package testutil

import (
	"testing"

	"quicksave-guard/internal/history"
)

// NewTestHistory creates an in-memory SQLite history store with migrations
// applied. The store is closed when the test completes.
func NewTestHistory(t *testing.T) *history.SQLiteStore {
	t.Helper()

	s, err := history.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to open history store: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})

	return s
}
