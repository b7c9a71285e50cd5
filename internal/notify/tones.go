// Package notify plays short tones when the guard backs up a quicksave or
// stops on a fatal failure.
package notify

import (
	"fmt"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/generators"
)

// SampleRate is the output rate of every tone.
const SampleRate = beep.SampleRate(48000)

// Note is one tone followed by a rest.
type Note struct {
	Freq     float64
	Duration time.Duration
	Rest     time.Duration
}

// SuccessNotes is played after a backup is created.
var SuccessNotes = []Note{
	{Freq: 440, Duration: 50 * time.Millisecond},
}

// ErrorNotes is played once before the guard exits on a fatal failure.
var ErrorNotes = []Note{
	{Freq: 500, Duration: 200 * time.Millisecond, Rest: 100 * time.Millisecond},
	{Freq: 300, Duration: 300 * time.Millisecond, Rest: 200 * time.Millisecond},
	{Freq: 500, Duration: 200 * time.Millisecond, Rest: 100 * time.Millisecond},
	{Freq: 300, Duration: 300 * time.Millisecond, Rest: 200 * time.Millisecond},
}

// Sequence renders notes as one streamer at volume, where 1 is full scale.
func Sequence(notes []Note, volume float64) (beep.Streamer, error) {
	parts := make([]beep.Streamer, 0, 2*len(notes))
	for _, n := range notes {
		tone, err := generators.SineTone(SampleRate, n.Freq)
		if err != nil {
			return nil, fmt.Errorf("generating %v Hz tone: %w", n.Freq, err)
		}
		parts = append(parts, beep.Take(SampleRate.N(n.Duration), tone))
		if n.Rest > 0 {
			parts = append(parts, beep.Silence(SampleRate.N(n.Rest)))
		}
	}
	return &effects.Gain{Streamer: beep.Seq(parts...), Gain: volume - 1}, nil
}

// Length returns the total play time of notes.
func Length(notes []Note) time.Duration {
	var d time.Duration
	for _, n := range notes {
		d += n.Duration + n.Rest
	}
	return d
}
