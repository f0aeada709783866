package saa1099

import (
	"encoding/binary"
	"errors"
)

const serializeVersion = 1

const (
	channelStateSize  = 16
	noiseStateSize    = 9
	envelopeStateSize = 14
	globalStateSize   = numRegisters + 3

	// SerializeSize is the number of bytes written by Serialize.
	SerializeSize = 1 + numChannels*channelStateSize + numNoise*noiseStateSize +
		numEnvelopes*envelopeStateSize + globalStateSize
)

// Serialize writes all mutable chip state into buf in little-endian order.
// Returns an error if len(buf) < SerializeSize.
func (s *SAA1099) Serialize(buf []byte) error {
	if len(buf) < SerializeSize {
		return errors.New("saa1099: serialize buffer too small")
	}

	buf[0] = serializeVersion
	off := 1
	for i := range s.ch {
		c := &s.ch[i]
		b := buf[off:]
		b[0] = c.offset
		b[1] = c.octave
		b[2] = c.nextOffset
		b[3] = c.nextOctave
		b[4] = boolByte(c.newData)
		b[5] = boolByte(c.ignoreOnce)
		binary.LittleEndian.PutUint32(b[6:], c.counter)
		binary.LittleEndian.PutUint16(b[10:], uint16(c.period))
		b[12] = c.level
		b[13] = c.ampLeft
		b[14] = c.ampRight
		b[15] = c.mixMode
		off += channelStateSize
	}
	for i := range s.noise {
		n := &s.noise[i]
		b := buf[off:]
		binary.LittleEndian.PutUint32(b[0:], n.counter)
		b[4] = n.source
		binary.LittleEndian.PutUint32(b[5:], n.lfsr)
		off += noiseStateSize
	}
	for i := range s.env {
		e := &s.env[i]
		b := buf[off:]
		b[0] = boolByte(e.enabled)
		b[1] = boolByte(e.invert)
		b[2] = boolByte(e.external)
		b[3] = boolByte(e.ended)
		b[4] = boolByte(e.looping)
		b[5] = e.numPhases
		b[6] = e.shape
		b[7] = e.phase
		b[8] = e.pos
		b[9] = e.resolution
		b[10] = boolByte(e.newData)
		b[11] = e.buffered
		b[12] = e.left
		b[13] = e.right
		off += envelopeStateSize
	}
	copy(buf[off:], s.regs[:])
	off += numRegisters
	buf[off] = s.selected
	buf[off+1] = boolByte(s.outputEnabled)
	buf[off+2] = boolByte(s.sync)
	return nil
}

// Deserialize restores chip state from buf, which must have been produced
// by Serialize.
func (s *SAA1099) Deserialize(buf []byte) error {
	if len(buf) < SerializeSize {
		return errors.New("saa1099: deserialize buffer too small")
	}
	if buf[0] != serializeVersion {
		return errors.New("saa1099: unsupported serialize version")
	}

	off := 1
	for i := range s.ch {
		c := &s.ch[i]
		b := buf[off:]
		c.offset = b[0]
		c.octave = b[1] & 0x07
		c.nextOffset = b[2]
		c.nextOctave = b[3] & 0x07
		c.newData = b[4] != 0
		c.ignoreOnce = b[5] != 0
		c.counter = binary.LittleEndian.Uint32(b[6:])
		c.level = b[12] & 1
		c.ampLeft = b[13] & 0x0F
		c.ampRight = b[14] & 0x0F
		c.mixMode = b[15] & (mixTone | mixNoise)
		// Period is derived; recompute rather than trust the stored copy.
		c.setPeriod()
		c.counter %= c.period
		off += channelStateSize
	}
	for i := range s.noise {
		n := &s.noise[i]
		b := buf[off:]
		n.counter = binary.LittleEndian.Uint32(b[0:])
		n.source = b[4] & 0x03
		n.lfsr = binary.LittleEndian.Uint32(b[5:]) & lfsrSeed
		if n.source != noiseSourceTone && n.counter >= noiseDividers[n.source] {
			n.counter = 0
		}
		off += noiseStateSize
	}
	for i := range s.env {
		e := &s.env[i]
		b := buf[off:]
		e.enabled = b[0] != 0
		e.invert = b[1] != 0
		e.external = b[2] != 0
		e.ended = b[3] != 0
		e.shape = b[6] & 0x07
		e.resolution = b[9]
		if e.resolution != 2 {
			e.resolution = 1
		}
		e.newData = b[10] != 0
		e.buffered = b[11]

		// Phase count, looping and levels follow from the shape. The stored
		// copies are ignored.
		e.numPhases = envShapes[e.shape].numPhases
		e.looping = envShapes[e.shape].looping
		e.phase = b[7]
		if e.phase >= e.numPhases {
			e.phase = e.numPhases - 1
		}
		e.pos = b[8] & 0x0F
		if e.resolution == 2 {
			e.pos &^= 1
		}
		e.setLevels()
		off += envelopeStateSize
	}
	copy(s.regs[:], buf[off:off+numRegisters])
	off += numRegisters
	s.selected = buf[off] & 0x1F
	s.outputEnabled = buf[off+1] != 0
	s.sync = buf[off+2] != 0
	return nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
