package guard

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// PathResolver picks the save directory at startup.
//
// It is the only component that may block on operator input, and only the
// application layer holds one; the poll loop never sees it.
type PathResolver struct {
	fs       afero.Fs
	prompter Prompter
	logger   Logger
}

// NewPathResolver creates a resolver that checks candidates on fs and falls
// back to prompter when none exist.
func NewPathResolver(fs afero.Fs, prompter Prompter, logger Logger) *PathResolver {
	return &PathResolver{fs: fs, prompter: prompter, logger: logger}
}

// Resolve returns the first candidate that exists as a directory, in order.
// Empty candidates are skipped. When none exist it prompts until the operator
// names an existing directory; only a prompter error or ctx ends that loop
// early.
func (r *PathResolver) Resolve(ctx context.Context, candidates []string) (SaveDirectory, error) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if r.isDir(c) {
			r.logger.Info("save directory found", "path", c)
			return SaveDirectory(filepath.Clean(c)), nil
		}
		r.logger.Debug("save directory candidate missing", "path", c)
	}

	r.logger.Warn("no save directory found", "candidates", len(candidates))

	message := "Save directory not found. Enter the full path to your save folder: "
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		answer, err := r.prompter.Prompt(ctx, message)
		if err != nil {
			return "", fmt.Errorf("reading save directory: %w", err)
		}

		p := trimAnswer(answer)
		if p != "" && r.isDir(p) {
			r.logger.Info("save directory entered", "path", p)
			return SaveDirectory(filepath.Clean(p)), nil
		}

		r.logger.Warn("entered save directory does not exist", "path", p)
		message = fmt.Sprintf("%q does not exist. Enter the full path to your save folder: ", p)
	}
}

func (r *PathResolver) isDir(p string) bool {
	ok, err := afero.IsDir(r.fs, p)
	return err == nil && ok
}

// trimAnswer drops surrounding whitespace and the quotes a file manager's
// "copy as path" adds.
func trimAnswer(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\'') {
		s = s[1 : len(s)-1]
	}
	return s
}
