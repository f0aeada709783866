package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const audioSampleRate = 48000

// ringBufferCapacity is ~170ms at 48kHz stereo 16-bit.
const ringBufferCapacity = 32768

// AudioPlayer plays the interleaved int16 stereo stream produced by an
// emu.Source. Samples are queued into a ring buffer that oto pulls from.
type AudioPlayer struct {
	player     *oto.Player
	ringBuffer *AudioRingBuffer
	audioBytes []byte

	mu     sync.Mutex
	volume float64
	muted  bool
}

var (
	otoCtx      *oto.Context
	otoInitOnce sync.Once
	otoInitErr  error
)

// ensureOtoContext creates the process-wide oto context on first use.
func ensureOtoContext() (*oto.Context, error) {
	otoInitOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   audioSampleRate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   50 * time.Millisecond,
		}
		var ready chan struct{}
		otoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr != nil {
			return
		}
		<-ready
	})
	return otoCtx, otoInitErr
}

// NewAudioPlayer opens the audio device and starts playback at volume
// (0.0 to 1.0).
func NewAudioPlayer(volume float64) (*AudioPlayer, error) {
	ctx, err := ensureOtoContext()
	if err != nil {
		return nil, fmt.Errorf("oto audio not available: %w", err)
	}

	rb := NewAudioRingBuffer(ringBufferCapacity)
	player := ctx.NewPlayer(rb)
	player.SetBufferSize(19200)
	player.SetVolume(clampVolume(volume))
	player.Play()

	return &AudioPlayer{
		player:     player,
		ringBuffer: rb,
		audioBytes: make([]byte, 0, 4096),
		volume:     clampVolume(volume),
	}, nil
}

// QueueSamples encodes samples as s16le and queues them for playback.
func (a *AudioPlayer) QueueSamples(samples []int16) {
	if len(samples) == 0 {
		return
	}
	a.audioBytes = appendS16LE(a.audioBytes[:0], samples)
	a.ringBuffer.Write(a.audioBytes)
}

// appendS16LE appends samples to dst as little-endian bytes.
func appendS16LE(dst []byte, samples []int16) []byte {
	for _, s := range samples {
		dst = append(dst, byte(s), byte(s>>8))
	}
	return dst
}

// GetBufferLevel returns the bytes queued in the ring plus those held by
// oto. The runner paces frames against it.
func (a *AudioPlayer) GetBufferLevel() int {
	return a.ringBuffer.Buffered() + a.player.BufferedSize()
}

// SetVolume sets the playback volume. It is remembered while muted.
func (a *AudioPlayer) SetVolume(vol float64) {
	a.mu.Lock()
	a.volume = clampVolume(vol)
	if !a.muted {
		a.player.SetVolume(a.volume)
	}
	a.mu.Unlock()
}

// ToggleMute silences or restores output and reports the new state.
func (a *AudioPlayer) ToggleMute() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.muted = !a.muted
	if a.muted {
		a.player.SetVolume(0)
	} else {
		a.player.SetVolume(a.volume)
	}
	return a.muted
}

// Flush drops queued audio, used after a reset so stale sound is not heard.
func (a *AudioPlayer) Flush() {
	a.ringBuffer.Clear()
}

// Close stops playback.
func (a *AudioPlayer) Close() {
	if a.ringBuffer != nil {
		a.ringBuffer.Close()
	}
	if a.player != nil {
		a.player.Close()
	}
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
