package emu

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"math"

	"github.com/user-none/emsaa/saa1099"
	"github.com/user-none/go-chip-z80"
)

// Save state format constants
const (
	stateVersion    = 1
	stateMagic      = "eMSAState\x00\x00\x00"
	stateHeaderSize = 22 // magic(12) + version(2) + progCRC(4) + dataCRC(4)
)

// machineSerializeSize covers the Machine inline state:
// z80IntPending(1) + carryTStates(4) + resampAccum(4) + filterPrevL(8) + filterPrevR(8)
const machineSerializeSize = 25

// boolByte converts a bool to a uint8 (0 or 1).
func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// SerializeSize returns the total size in bytes needed for a save state.
func SerializeSize() int {
	return stateHeaderSize +
		z80.SerializeSize +
		ramSize +
		saa1099.SerializeSize +
		machineSerializeSize
}

// Serialize creates a save state and returns it as a byte slice.
func (m *Machine) Serialize() ([]byte, error) {
	data := make([]byte, SerializeSize())

	// Write header
	copy(data[0:12], stateMagic)
	binary.LittleEndian.PutUint16(data[12:14], stateVersion)
	binary.LittleEndian.PutUint32(data[14:18], m.progCRC)

	offset := stateHeaderSize

	// Z80 CPU
	if err := m.z80.Serialize(data[offset:]); err != nil {
		return nil, err
	}
	offset += z80.SerializeSize

	// RAM (64KB)
	copy(data[offset:], m.z80Mem.ram[:])
	offset += ramSize

	// SAA1099
	if err := m.chip.Serialize(data[offset:]); err != nil {
		return nil, err
	}
	offset += saa1099.SerializeSize

	// Machine inline state
	m.serializeMachine(data, offset)

	// Calculate and write data CRC32 (over everything after header)
	dataCRC := crc32.ChecksumIEEE(data[stateHeaderSize:])
	binary.LittleEndian.PutUint32(data[18:22], dataCRC)

	return data, nil
}

// Deserialize restores machine state from a save state byte slice.
// The model is not restored; the current model setting is preserved.
func (m *Machine) Deserialize(data []byte) error {
	if err := m.VerifyState(data); err != nil {
		return err
	}

	offset := stateHeaderSize

	// Z80 CPU
	if err := m.z80.Deserialize(data[offset:]); err != nil {
		return err
	}
	offset += z80.SerializeSize

	// RAM (64KB)
	copy(m.z80Mem.ram[:], data[offset:offset+ramSize])
	offset += ramSize

	// SAA1099
	if err := m.chip.Deserialize(data[offset:]); err != nil {
		return err
	}
	offset += saa1099.SerializeSize

	// Machine inline state
	m.deserializeMachine(data, offset)

	// The INT line is not part of the CPU state; re-drive it.
	m.z80.INT(m.z80IntPending, 0xFF)

	return nil
}

// VerifyState checks if a save state is valid without loading it.
func (m *Machine) VerifyState(data []byte) error {
	if len(data) < SerializeSize() {
		return errors.New("save state too short")
	}

	if string(data[0:12]) != stateMagic {
		return errors.New("invalid save state magic")
	}

	version := binary.LittleEndian.Uint16(data[12:14])
	if version > stateVersion {
		return errors.New("unsupported save state version")
	}

	progCRC := binary.LittleEndian.Uint32(data[14:18])
	if progCRC != m.progCRC {
		return errors.New("save state is for a different program")
	}

	expectedCRC := binary.LittleEndian.Uint32(data[18:22])
	actualCRC := crc32.ChecksumIEEE(data[stateHeaderSize:])
	if expectedCRC != actualCRC {
		return errors.New("save state data is corrupted")
	}

	return nil
}

// serializeMachine writes Machine inline state to the data buffer.
func (m *Machine) serializeMachine(data []byte, offset int) int {
	data[offset] = boolByte(m.z80IntPending)
	offset++

	binary.LittleEndian.PutUint32(data[offset:], uint32(int32(m.carryTStates)))
	offset += 4

	binary.LittleEndian.PutUint32(data[offset:], uint32(int32(m.resampAccum)))
	offset += 4

	binary.LittleEndian.PutUint64(data[offset:], math.Float64bits(m.filterPrevL))
	offset += 8

	binary.LittleEndian.PutUint64(data[offset:], math.Float64bits(m.filterPrevR))
	offset += 8

	return offset
}

// deserializeMachine reads Machine inline state from the data buffer.
func (m *Machine) deserializeMachine(data []byte, offset int) int {
	m.z80IntPending = data[offset] != 0
	offset++

	m.carryTStates = int(int32(binary.LittleEndian.Uint32(data[offset:])))
	offset += 4

	m.resampAccum = int(int32(binary.LittleEndian.Uint32(data[offset:])))
	offset += 4

	m.filterPrevL = math.Float64frombits(binary.LittleEndian.Uint64(data[offset:]))
	offset += 8

	m.filterPrevR = math.Float64frombits(binary.LittleEndian.Uint64(data[offset:]))
	offset += 8

	return offset
}
