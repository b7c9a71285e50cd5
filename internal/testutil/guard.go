package testutil

import (
	"context"
	"io"
	"sync"

	"quicksave-guard/internal/guard"
)

// StubWatcher answers IsRunning from a scripted sequence. Once the
// sequence is used up the last answer repeats. Err, when set, is returned
// instead.
type StubWatcher struct {
	mu      sync.Mutex
	answers []bool
	calls   int
	Err     error
}

// NewStubWatcher creates a StubWatcher returning answers in order.
func NewStubWatcher(answers ...bool) *StubWatcher {
	return &StubWatcher{answers: answers}
}

func (w *StubWatcher) IsRunning(_ context.Context, _ string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if w.Err != nil {
		return false, w.Err
	}
	if len(w.answers) == 0 {
		return false, nil
	}
	i := w.calls - 1
	if i >= len(w.answers) {
		i = len(w.answers) - 1
	}
	return w.answers[i], nil
}

// Calls returns how many times IsRunning was called.
func (w *StubWatcher) Calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}

// RecordingNotifier remembers every notification.
type RecordingNotifier struct {
	mu      sync.Mutex
	Created []guard.BackupFile
	Fatals  []error
}

func (n *RecordingNotifier) BackupCreated(_ context.Context, b guard.BackupFile) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Created = append(n.Created, b)
	return nil
}

func (n *RecordingNotifier) Fatal(_ context.Context, err error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Fatals = append(n.Fatals, err)
	return nil
}

// RecordingLedger remembers every recorded event.
type RecordingLedger struct {
	mu     sync.Mutex
	events []guard.Event
}

func (l *RecordingLedger) Record(ev guard.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
	return nil
}

// Events returns a copy of the recorded events.
func (l *RecordingLedger) Events() []guard.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]guard.Event(nil), l.events...)
}

// Kinds returns the kinds of the recorded events in order.
func (l *RecordingLedger) Kinds() []guard.EventKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	kinds := make([]guard.EventKind, 0, len(l.events))
	for _, ev := range l.events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

// StubPrompter returns scripted answers in order and io.EOF once they run out.
type StubPrompter struct {
	mu       sync.Mutex
	answers  []string
	Messages []string
}

// NewStubPrompter creates a StubPrompter with the given answers.
func NewStubPrompter(answers ...string) *StubPrompter {
	return &StubPrompter{answers: answers}
}

func (p *StubPrompter) Prompt(_ context.Context, message string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Messages = append(p.Messages, message)
	if len(p.answers) == 0 {
		return "", io.EOF
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}
