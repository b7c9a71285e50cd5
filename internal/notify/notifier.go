package notify

import (
	"context"
	"fmt"
	"time"

	"quicksave-guard/internal/guard"
)

// playSlack is added to a sequence's length to bound a stuck device.
const playSlack = 2 * time.Second

// SoundNotifier plays SuccessNotes for new backups and ErrorNotes for fatal
// failures.
type SoundNotifier struct {
	player      Player
	infoVolume  float64
	errorVolume float64
	logger      guard.Logger
}

// NewSoundNotifier creates a SoundNotifier. Volumes range from 0 to 1.
func NewSoundNotifier(player Player, infoVolume, errorVolume float64, logger guard.Logger) *SoundNotifier {
	if logger == nil {
		logger = guard.NewNopLogger()
	}
	return &SoundNotifier{
		player:      player,
		infoVolume:  infoVolume,
		errorVolume: errorVolume,
		logger:      logger,
	}
}

func (n *SoundNotifier) BackupCreated(ctx context.Context, _ guard.BackupFile) error {
	n.logger.Debug("playing success sound")
	return n.play(ctx, SuccessNotes, n.infoVolume)
}

// Fatal plays even when ctx is already done, since it runs on the way out.
func (n *SoundNotifier) Fatal(ctx context.Context, _ error) error {
	n.logger.Debug("playing error sound")
	return n.play(context.WithoutCancel(ctx), ErrorNotes, n.errorVolume)
}

func (n *SoundNotifier) play(ctx context.Context, notes []Note, volume float64) error {
	s, err := Sequence(notes, volume)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, Length(notes)+playSlack)
	defer cancel()
	if err := n.player.Play(ctx, s); err != nil {
		return fmt.Errorf("playing sound: %w", err)
	}
	return nil
}

var _ guard.Notifier = (*SoundNotifier)(nil)
