package notify

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/gopxl/beep/v2"
)

// Player plays a streamer to completion.
type Player interface {
	Play(ctx context.Context, s beep.Streamer) error
}

// MalgoPlayer plays through the default audio output device.
type MalgoPlayer struct{}

// Play blocks until s is drained or ctx is done.
func (MalgoPlayer) Play(ctx context.Context, s beep.Streamer) error {
	malgoCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("initializing audio context: %w", err)
	}
	if malgoCtx == nil {
		return errors.New("audio context is nil after initialization")
	}
	defer func() {
		_ = malgoCtx.Uninit()
		malgoCtx.Free()
	}()

	// F32 avoids the S16 to S32 conversion path in miniaudio on PulseAudio.
	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatF32
	cfg.Playback.Channels = 2
	cfg.SampleRate = uint32(SampleRate)
	cfg.Alsa.NoMMap = 1

	done := make(chan struct{})
	var (
		mu       sync.Mutex
		finished bool
		buf      [][2]float64
	)

	onSamples := func(out, _ []byte, frames uint32) {
		mu.Lock()
		defer mu.Unlock()
		if finished {
			return
		}
		if ctx.Err() != nil {
			finished = true
			close(done)
			return
		}

		if len(buf) < int(frames) {
			buf = make([][2]float64, frames)
		}
		n, ok := s.Stream(buf[:frames])
		if !ok || n == 0 {
			finished = true
			close(done)
			return
		}

		offset := 0
		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint32(out[offset:], math.Float32bits(float32(buf[i][0])))
			binary.LittleEndian.PutUint32(out[offset+4:], math.Float32bits(float32(buf[i][1])))
			offset += 8
		}
		for i := offset; i < len(out); i++ {
			out[i] = 0
		}
	}

	device, err := malgo.InitDevice(malgoCtx.Context, cfg, malgo.DeviceCallbacks{Data: onSamples})
	if err != nil {
		return fmt.Errorf("initializing audio device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("starting audio device: %w", err)
	}

	select {
	case <-done:
	case <-ctx.Done():
		mu.Lock()
		finished = true
		mu.Unlock()
	}

	if err := device.Stop(); err != nil {
		return fmt.Errorf("stopping audio device: %w", err)
	}
	return ctx.Err()
}
