package emu

import emucore "github.com/user-none/eblitui/api"

// Name is the display name used for window titles and frontends.
const Name = "eMSAA"

// Source is anything that produces one frame of SAA1099 audio at a time.
// The front ends drive a Source without knowing whether a Z80 program or a
// recorded register stream is behind it.
type Source interface {
	RunFrame()
	Reset()
	GetTiming() ModelTiming

	// GetAudioSamples returns interleaved stereo int16 samples at 48 kHz
	// for the last frame. The slice is reused by the next RunFrame.
	GetAudioSamples() []int16

	// GetChipSamples returns the raw chip output for the last frame.
	GetChipSamples() (left, right []uint8)

	GetFramebuffer() []byte
	GetFramebufferStride() int
}

// Compile-time interface checks.
var _ Source = (*Machine)(nil)
var _ Source = (*VGMPlayer)(nil)

var _ emucore.Emulator = (*Core)(nil)
var _ emucore.SaveStater = (*Core)(nil)
var _ emucore.BatterySaver = (*Core)(nil)
var _ emucore.MemoryInspector = (*Core)(nil)
var _ emucore.MemoryMapper = (*Core)(nil)
