package emu

import (
	"fmt"
	"strings"
)

// Model selects the host machine timing the chip is clocked against.
type Model int

const (
	Model48K Model = iota
	Model128K
	ModelPentagon
)

// ModelTiming holds timing constants for a host model. The chip is clocked
// once every TStatesPerSample CPU cycles, giving SamplesPerFrame chip ticks
// per video frame.
type ModelTiming struct {
	CPUClockHz       int // Z80 clock frequency
	TStatesPerFrame  int // CPU cycles between frame interrupts
	TStatesPerSample int // CPU cycles per chip tick
	SamplesPerFrame  int // Chip ticks per frame
	TStatesPerLine   int // CPU cycles per video scanline
	FPS              int // Nominal frames per second
}

// 48K timing: Z80 3.5 MHz, 69888 T-states per frame, 31250 Hz chip rate
var Timing48K = ModelTiming{
	CPUClockHz:       3500000,
	TStatesPerFrame:  69888,
	TStatesPerSample: 112,
	SamplesPerFrame:  624,
	TStatesPerLine:   224,
	FPS:              50,
}

// 128K timing: Z80 3.5469 MHz, 70908 T-states per frame, ~31113 Hz chip rate
var Timing128K = ModelTiming{
	CPUClockHz:       3546900,
	TStatesPerFrame:  70908,
	TStatesPerSample: 114,
	SamplesPerFrame:  622,
	TStatesPerLine:   228,
	FPS:              50,
}

// Pentagon timing: Z80 3.5 MHz, 71680 T-states per frame, 31250 Hz chip rate
var TimingPentagon = ModelTiming{
	CPUClockHz:       3500000,
	TStatesPerFrame:  71680,
	TStatesPerSample: 112,
	SamplesPerFrame:  640,
	TStatesPerLine:   224,
	FPS:              49,
}

// GetTimingForModel returns the timing constants for m.
func GetTimingForModel(m Model) ModelTiming {
	switch m {
	case Model128K:
		return Timing128K
	case ModelPentagon:
		return TimingPentagon
	default:
		return Timing48K
	}
}

// ChipRate returns the chip tick rate in Hz.
func (t ModelTiming) ChipRate() int {
	return t.CPUClockHz / t.TStatesPerSample
}

// Scanlines returns the number of video lines per frame.
func (t ModelTiming) Scanlines() int {
	return t.TStatesPerFrame / t.TStatesPerLine
}

// String returns the flag spelling of the model.
func (m Model) String() string {
	switch m {
	case Model128K:
		return "128k"
	case ModelPentagon:
		return "pentagon"
	default:
		return "48k"
	}
}

// ParseModel maps a command-line model name to a Model.
func ParseModel(s string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "48", "48k":
		return Model48K, nil
	case "128", "128k":
		return Model128K, nil
	case "pentagon":
		return ModelPentagon, nil
	}
	return Model48K, fmt.Errorf("unknown model %q (want 48k, 128k or pentagon)", s)
}
