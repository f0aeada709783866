package emu

import "github.com/user-none/emsaa/saa1099"

const ramSize = 0x10000

// SAA1099 I/O ports (SAM Coupé decoding). Only the low byte 0xFF selects
// the chip; bit 0 of the high byte picks address or data.
const (
	saaPortLow     = 0xFF
	saaAddressBit  = 0x0100
	saaAddressPort = 0x01FF
	saaDataPort    = 0x00FF
)

// Z80Memory implements z80.Bus for the host machine.
//
// Memory map (16-bit):
//
//	0x0000-0xFFFF  RAM (64KB), program loaded at the origin
//
// I/O map:
//
//	xxFF (bit 8 set)    SAA1099 register select (write-only)
//	xxFF (bit 8 clear)  SAA1099 register data
//	others              unused (reads return 0xFF)
type Z80Memory struct {
	ram  [ramSize]uint8
	chip *saa1099.SAA1099

	// beforeChipWrite brings the chip up to the current CPU time so the
	// write lands on the right sample.
	beforeChipWrite func()
}

// NewZ80Memory creates a Z80Memory wired to chip.
func NewZ80Memory(chip *saa1099.SAA1099) *Z80Memory {
	return &Z80Memory{chip: chip}
}

// Fetch reads an opcode byte during an M1 cycle. There is no M1-specific
// behavior, so this delegates to Read.
func (m *Z80Memory) Fetch(addr uint16) uint8 {
	return m.Read(addr)
}

// Read reads a byte from RAM.
func (m *Z80Memory) Read(addr uint16) uint8 {
	return m.ram[addr]
}

// Write writes a byte to RAM.
func (m *Z80Memory) Write(addr uint16, val uint8) {
	m.ram[addr] = val
}

// In reads from an I/O port. The SAA1099 data port returns the shadow of
// the selected register.
func (m *Z80Memory) In(port uint16) uint8 {
	if port&0xFF == saaPortLow && port&saaAddressBit == 0 {
		return m.chip.GetRegisterData()
	}
	return 0xFF
}

// Out writes to an I/O port.
func (m *Z80Memory) Out(port uint16, val uint8) {
	if port&0xFF != saaPortLow {
		return
	}
	if m.beforeChipWrite != nil {
		m.beforeChipWrite()
	}
	if port&saaAddressBit != 0 {
		m.chip.SelectRegister(val)
	} else {
		m.chip.SetRegisterData(val)
	}
}
