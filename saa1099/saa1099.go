// Package saa1099 emulates the Philips SAA1099 six-channel sound generator.
//
// The chip is driven through a two-step bus: SelectRegister latches a
// register address and SetRegisterData writes to it. Samples are pulled by
// the host at the chip's internal tick rate (nominally 8 MHz / 256) with
// GenerateSamples, which returns unsigned 8-bit left/right values.
package saa1099

const (
	numChannels  = 6
	numNoise     = 2
	numEnvelopes = 2
	numRegisters = 32

	lfsrSeed  = 0x3FFFF // 18 bits, all ones
	lfsrTaps  = 0x20400 // x^18 + x^11 + 1
	maxPeriod = 511
)

// Register addresses.
const (
	RegAmplitude0   = 0x00 // 0x00-0x05: low nibble left, high nibble right
	RegFreqOffset0  = 0x08 // 0x08-0x0D
	RegOctave01     = 0x10 // 0x10-0x12: bits 0-2 even channel, bits 4-6 odd
	RegToneEnable   = 0x14
	RegNoiseEnable  = 0x15
	RegNoiseSource  = 0x16
	RegEnvelope0    = 0x18
	RegEnvelope1    = 0x19
	RegControl      = 0x1C // bit0 output enable, bit1 sync
	controlOutputOn = 0x01
	controlSync     = 0x02
)

// Mixer enable bits held in channel.mixMode.
const (
	mixTone  = 0x01
	mixNoise = 0x02
)

// channel holds the tone generator and mixer state for one of six voices.
type channel struct {
	// Frequency
	offset     uint8 // Current frequency offset (0-255)
	octave     uint8 // Current octave (0-7)
	nextOffset uint8 // Buffered offset, applied on a half-cycle boundary
	nextOctave uint8 // Buffered octave
	newData    bool  // Buffered frequency data waiting to land
	ignoreOnce bool  // Defer the buffered offset by one more half-cycle

	// Divider
	counter uint32 // Accumulates 2^octave per tick
	period  uint32 // 511 - offset, never below 1
	level   uint8  // Square wave output (0 or 1)

	// Mixer
	ampLeft  uint8 // 4-bit
	ampRight uint8 // 4-bit
	mixMode  uint8 // mixTone | mixNoise
}

// SAA1099 is one emulated chip. The zero value is not usable; use New.
type SAA1099 struct {
	ch    [numChannels]channel
	noise [numNoise]noiseGen
	env   [numEnvelopes]envelope

	regs     [numRegisters]uint8
	selected uint8

	outputEnabled bool
	sync          bool
}

// New creates a powered-on SAA1099.
func New() *SAA1099 {
	s := &SAA1099{}
	s.Reset()
	return s
}

// Reset returns every generator, the register file, and the control flags
// to power-on state.
func (s *SAA1099) Reset() {
	for i := range s.ch {
		s.ch[i] = channel{level: 1}
		s.ch[i].setPeriod()
	}
	for i := range s.noise {
		s.noise[i] = noiseGen{lfsr: lfsrSeed}
	}
	for i := range s.env {
		s.env[i] = envelope{
			ended:      true,
			resolution: 1,
			numPhases:  envShapes[0].numPhases,
			looping:    envShapes[0].looping,
		}
		s.env[i].setLevels()
	}
	s.regs = [numRegisters]uint8{}
	s.selected = 0
	s.outputEnabled = false
	s.sync = false
}

// SetSoundFormat accepts a host audio format description. Output is always
// unsigned 8-bit stereo at the tick rate, so the request has no effect.
func (s *SAA1099) SetSoundFormat(uint32) {}

// SelectRegister latches the register address for the next data access.
// Selecting an envelope control register clocks that envelope when it is
// enabled and set to external clocking.
func (s *SAA1099) SelectRegister(addr uint8) {
	s.selected = addr & 0x1F
	switch s.selected {
	case RegEnvelope0, RegEnvelope1:
		e := &s.env[s.selected-RegEnvelope0]
		if e.external && e.enabled {
			e.tick()
		}
	}
}

// SetRegisterData writes data to the selected register.
func (s *SAA1099) SetRegisterData(data uint8) {
	if int(s.selected) >= numRegisters {
		return
	}
	s.regs[s.selected] = data
	s.writeRegister(s.selected, data)
}

// GetRegisterData returns the last value written to the selected register.
func (s *SAA1099) GetRegisterData() uint8 {
	if int(s.selected) >= numRegisters {
		return 0xFF
	}
	return s.regs[s.selected]
}

func (s *SAA1099) writeRegister(reg, data uint8) {
	switch {
	case reg <= 0x05:
		c := &s.ch[reg]
		c.ampLeft = data & 0x0F
		c.ampRight = data >> 4

	case reg >= RegFreqOffset0 && reg <= 0x0D:
		s.ch[reg-RegFreqOffset0].writeOffset(data, s.sync)

	case reg >= RegOctave01 && reg <= 0x12:
		pair := int(reg-RegOctave01) * 2
		s.ch[pair].writeOctave(data&0x07, s.sync)
		s.ch[pair+1].writeOctave((data>>4)&0x07, s.sync)

	case reg == RegToneEnable:
		for i := range s.ch {
			s.ch[i].mixMode = s.ch[i].mixMode&^mixTone | (data>>i)&1
		}

	case reg == RegNoiseEnable:
		for i := range s.ch {
			s.ch[i].mixMode = s.ch[i].mixMode&^mixNoise | ((data>>i)&1)<<1
		}

	case reg == RegNoiseSource:
		s.noise[0].setSource(data & 0x03)
		s.noise[1].setSource((data >> 4) & 0x03)

	case reg == RegEnvelope0, reg == RegEnvelope1:
		s.env[reg-RegEnvelope0].setControl(data)

	case reg == RegControl:
		s.outputEnabled = data&controlOutputOn != 0
		sync := data&controlSync != 0
		if sync && !s.sync {
			s.startSync()
		}
		s.sync = sync
	}
}

// startSync holds every tone generator at the start of its cycle and lands
// any buffered frequency data. Envelopes keep running state.
func (s *SAA1099) startSync() {
	for i := range s.ch {
		c := &s.ch[i]
		c.counter = 0
		c.level = 1
		c.octave = c.nextOctave
		c.offset = c.nextOffset
		c.newData = false
		c.ignoreOnce = false
		c.setPeriod()
	}
	for i := range s.noise {
		s.noise[i].counter = 0
	}
}

// Amplitude returns the left and right 4-bit amplitudes of a channel.
func (s *SAA1099) Amplitude(ch int) (left, right uint8) {
	return s.ch[ch].ampLeft, s.ch[ch].ampRight
}

// Octave returns the octave currently in effect for a channel.
func (s *SAA1099) Octave(ch int) uint8 {
	return s.ch[ch].octave
}

// Offset returns the frequency offset currently in effect for a channel.
func (s *SAA1099) Offset(ch int) uint8 {
	return s.ch[ch].offset
}

// ToneLevel returns the square wave output of a channel (0 or 1).
func (s *SAA1099) ToneLevel(ch int) uint8 {
	return s.ch[ch].level
}

// NoiseSource returns the clock source of a noise generator (0-3).
func (s *SAA1099) NoiseSource(n int) uint8 {
	return s.noise[n].source
}

// NoiseLFSR returns the shift register of a noise generator.
func (s *SAA1099) NoiseLFSR(n int) uint32 {
	return s.noise[n].lfsr
}

// EnvelopeLevels returns the current left and right levels of an envelope.
func (s *SAA1099) EnvelopeLevels(e int) (left, right uint8) {
	return s.env[e].left, s.env[e].right
}

// EnvelopeEnabled reports whether an envelope is enabled.
func (s *SAA1099) EnvelopeEnabled(e int) bool {
	return s.env[e].enabled
}

// OutputEnabled reports whether register 0x1C bit 0 is set.
func (s *SAA1099) OutputEnabled() bool {
	return s.outputEnabled
}

// SyncActive reports whether register 0x1C bit 1 is set.
func (s *SAA1099) SyncActive() bool {
	return s.sync
}

// SelectedRegister returns the latched register address.
func (s *SAA1099) SelectedRegister() uint8 {
	return s.selected
}
