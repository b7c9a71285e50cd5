package testutil

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/spf13/afero"
)

// FileSHA256 returns the SHA-256 checksum of the file at path as a lowercase
// hex string.
func FileSHA256(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", path, err)
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
