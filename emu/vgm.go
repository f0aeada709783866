package emu

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// VGM header and command constants
const (
	vgmSampleRate    = 44100
	vgmHeaderMin     = 0x40
	vgmSAAClockOff   = 0xC8
	vgmSAAClockEnd   = vgmSAAClockOff + 4
	vgmLoopOffsetPos = 0x1C
	vgmDataOffsetPos = 0x34

	vgmCmdSAA1099 = 0xBD
	vgmCmdWait    = 0x61
	vgmCmdWait60  = 0x62 // 735 samples (1/60 s)
	vgmCmdWait50  = 0x63 // 882 samples (1/50 s)
	vgmCmdEnd     = 0x66
	vgmCmdData    = 0x67
)

// VGMEvent is one SAA1099 register write at a position in 44.1 kHz VGM time.
type VGMEvent struct {
	Sample uint64
	Reg    uint8
	Value  uint8
}

// VGMFile holds the SAA1099 writes extracted from a VGM stream.
type VGMFile struct {
	Events       []VGMEvent
	ClockHz      uint32 // SAA1099 clock (0 if the header has none)
	TotalSamples uint64
	LoopSamples  uint64
	LoopSample   uint64 // VGM sample where the loop restarts
	LoopEvent    int    // Index of the first event at or after LoopSample
	HasLoop      bool
}

// ParseVGM parses a VGM or gzip-compressed VGZ stream.
func ParseVGM(data []byte) (*VGMFile, error) {
	if len(data) >= 2 && data[0] == 0x1F && data[1] == 0x8B {
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("vgz: %w", err)
		}
		defer gz.Close()
		data, err = io.ReadAll(gz)
		if err != nil {
			return nil, fmt.Errorf("vgz: %w", err)
		}
	}
	if len(data) < vgmHeaderMin {
		return nil, errors.New("vgm too short")
	}
	if !bytes.Equal(data[0:4], []byte("Vgm ")) {
		return nil, errors.New("invalid vgm header")
	}

	f := &VGMFile{
		TotalSamples: uint64(binary.LittleEndian.Uint32(data[0x18:0x1C])),
		LoopSamples:  uint64(binary.LittleEndian.Uint32(data[0x20:0x24])),
	}

	dataStart := uint32(vgmHeaderMin)
	if off := binary.LittleEndian.Uint32(data[vgmDataOffsetPos:]); off != 0 {
		dataStart = vgmDataOffsetPos + off
	}
	if int(dataStart) >= len(data) {
		return nil, errors.New("vgm data offset out of range")
	}
	// The SAA1099 clock field exists only in headers that reach it.
	if dataStart >= vgmSAAClockEnd && len(data) >= vgmSAAClockEnd {
		f.ClockHz = binary.LittleEndian.Uint32(data[vgmSAAClockOff:]) & 0x3FFFFFFF
	}

	loopStart := uint32(0)
	if off := binary.LittleEndian.Uint32(data[vgmLoopOffsetPos:]); off != 0 {
		loopStart = vgmLoopOffsetPos + off
	}

	var pos uint64
	loopFound := false
	i := int(dataStart)
loop:
	for i < len(data) {
		if loopStart != 0 && !loopFound && uint32(i) == loopStart {
			loopFound = true
			f.LoopSample = pos
			f.LoopEvent = len(f.Events)
		}

		cmd := data[i]
		n := vgmCommandLength(cmd)
		if n == 0 {
			return nil, fmt.Errorf("vgm unknown command 0x%02X at offset 0x%X", cmd, i)
		}
		if i+n > len(data) {
			return nil, fmt.Errorf("vgm truncated command 0x%02X at offset 0x%X", cmd, i)
		}

		switch {
		case cmd == vgmCmdEnd:
			break loop
		case cmd == vgmCmdSAA1099:
			// Bit 7 of the register byte selects the second chip, which
			// is not emulated.
			if data[i+1]&0x80 == 0 {
				f.Events = append(f.Events, VGMEvent{Sample: pos, Reg: data[i+1] & 0x1F, Value: data[i+2]})
			}
		case cmd == vgmCmdWait:
			pos += uint64(binary.LittleEndian.Uint16(data[i+1:]))
		case cmd == vgmCmdWait60:
			pos += 735
		case cmd == vgmCmdWait50:
			pos += 882
		case cmd >= 0x70 && cmd <= 0x7F:
			pos += uint64(cmd&0x0F) + 1
		case cmd >= 0x80 && cmd <= 0x8F:
			// YM2612 DAC write + wait n
			pos += uint64(cmd & 0x0F)
		case cmd == vgmCmdData:
			if data[i+1] != vgmCmdEnd {
				return nil, fmt.Errorf("vgm invalid data block at offset 0x%X", i)
			}
			size := int(binary.LittleEndian.Uint32(data[i+3:]) & 0x7FFFFFFF)
			if i+n+size > len(data) {
				return nil, fmt.Errorf("vgm truncated data block at offset 0x%X", i)
			}
			i += size
		}
		i += n
	}

	if n := len(f.Events); n > 0 && f.Events[n-1].Sample >= f.TotalSamples {
		f.TotalSamples = f.Events[n-1].Sample + 1
	}
	if pos > f.TotalSamples {
		f.TotalSamples = pos
	}
	f.HasLoop = loopFound && f.LoopSample < f.TotalSamples
	return f, nil
}

// vgmCommandLength returns the encoded size of a command including its
// opcode byte, or 0 for an unknown command.
func vgmCommandLength(cmd uint8) int {
	switch {
	case cmd == vgmCmdWait60, cmd == vgmCmdWait50, cmd == vgmCmdEnd:
		return 1
	case cmd >= 0x70 && cmd <= 0x8F:
		return 1
	case cmd == vgmCmdWait:
		return 3
	case cmd == vgmCmdData:
		return 7
	case cmd == 0x68:
		return 12
	case cmd >= 0x30 && cmd <= 0x3F, cmd == 0x4F, cmd == 0x50, cmd == 0x94:
		return 2
	case cmd >= 0x40 && cmd <= 0x4E, cmd >= 0x51 && cmd <= 0x5F, cmd >= 0xA0 && cmd <= 0xBF:
		return 3
	case cmd >= 0xC0 && cmd <= 0xDF:
		return 4
	case cmd == 0x90, cmd == 0x91, cmd == 0x95, cmd >= 0xE0:
		return 5
	case cmd == 0x92:
		return 6
	case cmd == 0x93:
		return 11
	}
	return 0
}

// VGMPlayer replays a VGMFile into an SAA1099, producing one frame of chip
// samples per RunFrame.
type VGMPlayer struct {
	file   *VGMFile
	chip   chipWriter
	timing ModelTiming
	rate   uint64 // Chip ticks per second

	next      int    // Next event index
	tick      uint64 // Chip ticks rendered since the start of this pass
	baseTick  uint64 // Chip tick the current pass is anchored to in VGM time
	baseVGM   uint64 // VGM sample the current pass is anchored to
	loops     int
	done      bool
	loopLimit int // 0 loops forever

	output
}

// chipWriter is the part of the SAA1099 the player drives.
type chipWriter interface {
	SelectRegister(addr uint8)
	SetRegisterData(data uint8)
	GenerateSamples(left, right []uint8, offset, count int)
	Reset()
}

// NewVGMPlayer creates a player for f. The chip rate comes from the file's
// SAA1099 clock (clock/256), falling back to the model's tick rate.
func NewVGMPlayer(f *VGMFile, chip chipWriter, model Model, loopLimit int) *VGMPlayer {
	timing := GetTimingForModel(model)
	rate := uint64(timing.ChipRate())
	if f.ClockHz >= 256 {
		rate = uint64(f.ClockHz) / 256
	}
	return &VGMPlayer{
		file:      f,
		chip:      chip,
		timing:    timing,
		rate:      rate,
		loopLimit: loopLimit,
		output:    newOutput(int(rate), timing.SamplesPerFrame),
	}
}

// RunFrame renders SamplesPerFrame chip samples, applying every register
// write whose VGM time falls inside the frame at its exact tick.
func (p *VGMPlayer) RunFrame() {
	p.beginFrame()
	for p.count < p.timing.SamplesPerFrame {
		if p.done {
			p.render(p.timing.SamplesPerFrame - p.count)
			break
		}

		// Writes due now
		for p.next < len(p.file.Events) && p.eventTick(p.file.Events[p.next]) <= p.tick {
			ev := p.file.Events[p.next]
			p.chip.SelectRegister(ev.Reg)
			p.chip.SetRegisterData(ev.Value)
			p.next++
		}

		end := p.vgmToTick(p.file.TotalSamples)
		if p.next >= len(p.file.Events) && p.tick >= end {
			p.restart()
			continue
		}

		// Render up to the next event, the end of the stream, or the end
		// of the frame, whichever comes first.
		target := end
		if p.next < len(p.file.Events) {
			target = p.eventTick(p.file.Events[p.next])
		}
		n := uint64(p.timing.SamplesPerFrame - p.count)
		if target-p.tick < n {
			n = target - p.tick
		}
		if n == 0 {
			n = 1
		}
		p.render(int(n))
	}
	p.endFrame()
}

func (p *VGMPlayer) render(n int) {
	p.chip.GenerateSamples(p.left, p.right, p.count, n)
	p.count += n
	p.tick += uint64(n)
}

// vgmToTick converts a VGM sample position to a chip tick in this pass.
func (p *VGMPlayer) vgmToTick(sample uint64) uint64 {
	return p.baseTick + (sample-p.baseVGM)*p.rate/vgmSampleRate
}

func (p *VGMPlayer) eventTick(ev VGMEvent) uint64 {
	return p.vgmToTick(ev.Sample)
}

// restart jumps to the loop point, or marks playback done.
func (p *VGMPlayer) restart() {
	if !p.file.HasLoop || (p.loopLimit > 0 && p.loops >= p.loopLimit) {
		p.done = true
		return
	}
	// A loop shorter than one chip tick would never advance.
	if (p.file.TotalSamples-p.file.LoopSample)*p.rate/vgmSampleRate == 0 {
		p.done = true
		return
	}
	p.loops++
	p.next = p.file.LoopEvent
	p.baseTick = p.tick
	p.baseVGM = p.file.LoopSample
}

// Done reports whether the stream has ended. The chip keeps running after
// the last write, so RunFrame still produces samples.
func (p *VGMPlayer) Done() bool {
	return p.done
}

// Loops returns how many times playback has jumped to the loop point.
func (p *VGMPlayer) Loops() int {
	return p.loops
}

// Reset rewinds to the start of the stream and resets the chip.
func (p *VGMPlayer) Reset() {
	p.chip.Reset()
	p.next = 0
	p.tick = 0
	p.baseTick = 0
	p.baseVGM = 0
	p.loops = 0
	p.done = false
	p.output.reset()
}

// GetTiming returns the timing constants used for frame sizing.
func (p *VGMPlayer) GetTiming() ModelTiming {
	return p.timing
}
