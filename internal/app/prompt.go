package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"quicksave-guard/internal/guard"
)

// LinePrompter asks for a line of input on a reader. The prompt text is only
// written when interactive; piped input is read either way.
type LinePrompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewLinePrompter creates a LinePrompter reading from in and writing prompts to out.
func NewLinePrompter(in io.Reader, out io.Writer, interactive bool) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out, interactive: interactive}
}

// NewStdinPrompter creates a LinePrompter on the process's stdin. Prompt text
// is shown only when stdin is a terminal.
func NewStdinPrompter() *LinePrompter {
	return NewLinePrompter(os.Stdin, os.Stderr, term.IsTerminal(int(os.Stdin.Fd())))
}

// Prompt writes message and returns the next line without its line ending.
// Exhausted input returns io.EOF.
func (p *LinePrompter) Prompt(ctx context.Context, message string) (string, error) {
	if p.interactive {
		if _, err := fmt.Fprint(p.out, message); err != nil {
			return "", err
		}
	}

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		if err == io.EOF && line != "" {
			err = nil
		}
		ch <- result{strings.TrimRight(line, "\r\n"), err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.line, r.err
	}
}

// ReadPassphrase reads a passphrase from the terminal without echo.
func ReadPassphrase(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal; cannot read passphrase")
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

var _ guard.Prompter = (*LinePrompter)(nil)
