package emu

import (
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/user-none/emsaa/saa1099"
	"github.com/user-none/go-chip-z80"
)

// DefaultOrigin is the load address used when none is given.
const DefaultOrigin = 0x8000

// Boot stub written below programs that do not start at 0x0000:
//
//	0000  DI
//	0001  LD SP,0x0000
//	0004  JP origin
//	0038  EI
//	0039  RETI
const (
	bootVectorIM1 = 0x0038
	bootMinOrigin = 0x0040
)

// Machine is a Z80 host that drives an SAA1099 through I/O ports. The CPU
// receives a maskable interrupt at the start of every frame, and the chip
// is clocked once every TStatesPerSample CPU cycles.
type Machine struct {
	z80    *z80.CPU
	z80Mem *Z80Memory
	chip   *saa1099.SAA1099

	model  Model
	timing ModelTiming

	program []byte
	origin  uint16
	progCRC uint32

	// Frame INT pending delivery. Set at frame start, cleared when the
	// CPU acknowledges the interrupt (IFF1 transitions true->false).
	z80IntPending bool

	// CPU time within the current frame, and cycles the last instruction
	// ran past the previous frame boundary
	frameTStates int
	carryTStates int

	output
}

// NewMachine loads program at origin and powers the machine on.
func NewMachine(program []byte, origin uint16, model Model) (*Machine, error) {
	if len(program) == 0 {
		return nil, errors.New("empty program")
	}
	if int(origin)+len(program) > ramSize {
		return nil, fmt.Errorf("program of %d bytes does not fit at 0x%04X", len(program), origin)
	}

	timing := GetTimingForModel(model)
	chip := saa1099.New()
	z80Mem := NewZ80Memory(chip)

	m := &Machine{
		z80:     z80.New(z80Mem),
		z80Mem:  z80Mem,
		chip:    chip,
		model:   model,
		timing:  timing,
		program: append([]byte(nil), program...),
		origin:  origin,
		progCRC: crc32.ChecksumIEEE(program),
		output:  newOutput(timing.ChipRate(), timing.SamplesPerFrame),
	}
	z80Mem.beforeChipWrite = m.catchUp
	m.loadProgram()
	return m, nil
}

// loadProgram clears RAM and installs the boot stub and program.
func (m *Machine) loadProgram() {
	ram := &m.z80Mem.ram
	*ram = [ramSize]uint8{}
	if m.origin >= bootMinOrigin {
		copy(ram[0:], []uint8{
			0xF3,             // DI
			0x31, 0x00, 0x00, // LD SP,0x0000
			0xC3, uint8(m.origin), uint8(m.origin >> 8), // JP origin
		})
		copy(ram[bootVectorIM1:], []uint8{0xFB, 0xED, 0x4D}) // EI; RETI
	}
	copy(ram[m.origin:], m.program)
}

// RunFrame executes one frame: the CPU runs for TStatesPerFrame cycles and
// the chip produces exactly SamplesPerFrame samples.
func (m *Machine) RunFrame() {
	m.beginFrame()

	// Frame interrupt: INT stays asserted until the CPU acknowledges it.
	m.z80IntPending = true
	m.z80.INT(true, 0xFF)

	m.frameTStates = m.carryTStates
	for m.frameTStates < m.timing.TStatesPerFrame {
		var prevIFF1 bool
		if m.z80IntPending {
			prevIFF1 = m.z80.Registers().IFF1
		}

		consumed := m.z80.Step()
		if consumed == 0 {
			break
		}
		m.frameTStates += consumed

		if m.z80IntPending && prevIFF1 && !m.z80.Registers().IFF1 {
			m.z80IntPending = false
			m.z80.INT(false, 0xFF)
		}
	}
	m.carryTStates = 0
	if m.frameTStates > m.timing.TStatesPerFrame {
		m.carryTStates = m.frameTStates - m.timing.TStatesPerFrame
	}

	m.generateTo(m.timing.SamplesPerFrame)
	m.endFrame()
}

// catchUp generates chip samples up to the current CPU time.
func (m *Machine) catchUp() {
	m.generateTo(m.frameTStates / m.timing.TStatesPerSample)
}

func (m *Machine) generateTo(target int) {
	if target > m.timing.SamplesPerFrame {
		target = m.timing.SamplesPerFrame
	}
	if target <= m.count {
		return
	}
	m.chip.GenerateSamples(m.left, m.right, m.count, target-m.count)
	m.count = target
}

// Reset restarts the CPU and chip and reloads the program.
func (m *Machine) Reset() {
	m.z80.Reset()
	m.chip.Reset()
	m.loadProgram()
	m.z80IntPending = false
	m.z80.INT(false, 0xFF)
	m.frameTStates = 0
	m.carryTStates = 0
	m.output.reset()
}

// Chip returns the emulated SAA1099.
func (m *Machine) Chip() *saa1099.SAA1099 {
	return m.chip
}

// GetModel returns the machine model.
func (m *Machine) GetModel() Model {
	return m.model
}

// GetTiming returns the timing constants for the machine model.
func (m *Machine) GetTiming() ModelTiming {
	return m.timing
}

// ReadRAM reads a single byte of RAM.
func (m *Machine) ReadRAM(addr uint16) byte {
	return m.z80Mem.ram[addr]
}

// GetRAM returns a copy of the 64 KB address space.
func (m *Machine) GetRAM() []byte {
	out := make([]byte, ramSize)
	copy(out, m.z80Mem.ram[:])
	return out
}

// SetRAM writes data into RAM starting at address 0.
func (m *Machine) SetRAM(data []byte) {
	copy(m.z80Mem.ram[:], data)
}

// PC returns the CPU program counter.
func (m *Machine) PC() uint16 {
	return m.z80.Registers().PC
}
