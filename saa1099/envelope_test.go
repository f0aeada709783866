package saa1099

import "testing"

// clockEnv clocks an externally clocked envelope through a register select.
func clockEnv(s *SAA1099, e int) {
	s.SelectRegister(uint8(RegEnvelope0 + e))
}

// Expected left levels right after the shape is applied and after each of
// numPhases*16/resolution external clocks.
var shapeLevels4 = [8][]uint8{
	{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	{15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15},
	{15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0, 0},
	{15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0, 15},
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0, 0},
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0, 0},
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 0},
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 0},
}

var shapeLevels3 = [8][]uint8{
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{14, 14, 14, 14, 14, 14, 14, 14, 14},
	{14, 12, 10, 8, 6, 4, 2, 0, 0},
	{14, 12, 10, 8, 6, 4, 2, 0, 14},
	{0, 2, 4, 6, 8, 10, 12, 14, 14, 12, 10, 8, 6, 4, 2, 0, 0},
	{0, 2, 4, 6, 8, 10, 12, 14, 14, 12, 10, 8, 6, 4, 2, 0, 0},
	{0, 2, 4, 6, 8, 10, 12, 14, 0},
	{0, 2, 4, 6, 8, 10, 12, 14, 0},
}

func TestEnvelope_ShapeFidelity(t *testing.T) {
	for _, res := range []uint8{1, 2} {
		table := shapeLevels4
		ctrl := uint8(envEnable | envExtClock)
		if res == 2 {
			table = shapeLevels3
			ctrl |= envResolution
		}

		for shape := uint8(0); shape < 8; shape++ {
			s := New()
			writeReg(s, RegEnvelope1, ctrl|shape<<1)

			want := table[shape]
			ticks := int(envShapes[shape].numPhases) * 16 / int(res)
			if len(want) != ticks+1 {
				t.Fatalf("shape %d res %d: table has %d entries, want %d", shape, res, len(want), ticks+1)
			}

			for k := 0; k <= ticks; k++ {
				if k > 0 {
					clockEnv(s, 1)
				}
				l, r := s.EnvelopeLevels(1)
				if l != want[k] || r != want[k] {
					t.Errorf("%s res %d tick %d: expected %d, got (%d,%d)",
						ShapeName(shape), res, k, want[k], l, r)
					break
				}
			}

			if envShapes[shape].looping == s.env[1].ended {
				t.Errorf("%s res %d: ended=%v after a full cycle", ShapeName(shape), res, s.env[1].ended)
			}
		}
	}
}

func TestEnvelope_InvertRight(t *testing.T) {
	s := New()
	writeReg(s, RegEnvelope0, envEnable|envExtClock|4<<1|envInvert)
	for i := 0; i < 3; i++ {
		clockEnv(s, 0)
	}
	if l, r := s.EnvelopeLevels(0); l != 3 || r != 12 {
		t.Errorf("4-bit invert: expected (3,12), got (%d,%d)", l, r)
	}

	s = New()
	writeReg(s, RegEnvelope0, envEnable|envExtClock|envResolution|4<<1|envInvert)
	for i := 0; i < 3; i++ {
		clockEnv(s, 0)
	}
	if l, r := s.EnvelopeLevels(0); l != 6 || r != 8 {
		t.Errorf("3-bit invert: expected (6,8), got (%d,%d)", l, r)
	}
}

func TestEnvelope_BufferedUntilPhaseEnd(t *testing.T) {
	s := New()
	// Repetitive decay, external clock.
	writeReg(s, RegEnvelope0, envEnable|envExtClock|3<<1)
	for i := 0; i < 3; i++ {
		clockEnv(s, 0)
	}
	if l, _ := s.EnvelopeLevels(0); l != 12 {
		t.Fatalf("expected level 12 after 3 clocks, got %d", l)
	}

	// Selecting the register clocks once more; the new shape is buffered.
	writeReg(s, RegEnvelope0, envEnable|envExtClock|1<<1)
	if l, _ := s.EnvelopeLevels(0); l != 11 {
		t.Errorf("shape change should be buffered: expected 11, got %d", l)
	}
	if !s.env[0].newData {
		t.Error("newData should be set")
	}

	for i := 0; i < 11; i++ {
		clockEnv(s, 0)
	}
	if l, _ := s.EnvelopeLevels(0); l != 0 {
		t.Errorf("end of decay: expected 0, got %d", l)
	}
	clockEnv(s, 0)
	if l, _ := s.EnvelopeLevels(0); l != 15 {
		t.Errorf("buffered maximum-amplitude shape: expected 15, got %d", l)
	}
	if s.env[0].shape != 1 || s.env[0].newData {
		t.Errorf("expected shape 1 applied, got shape %d newData %v", s.env[0].shape, s.env[0].newData)
	}
}

func TestEnvelope_EndedAppliesImmediately(t *testing.T) {
	s := New()
	writeReg(s, RegEnvelope0, envEnable|envExtClock|2<<1)
	for i := 0; i < 16; i++ {
		clockEnv(s, 0)
	}
	if !s.env[0].ended {
		t.Fatal("single decay should end after 16 clocks")
	}

	writeReg(s, RegEnvelope0, envEnable|envExtClock|3<<1)
	if s.env[0].ended || s.env[0].shape != 3 {
		t.Errorf("write to an ended envelope should apply: ended=%v shape=%d", s.env[0].ended, s.env[0].shape)
	}
	if l, _ := s.EnvelopeLevels(0); l != 15 {
		t.Errorf("expected level 15, got %d", l)
	}
}

func TestEnvelope_Disable(t *testing.T) {
	s := New()
	writeReg(s, RegEnvelope0, envEnable|envExtClock|5<<1)
	clockEnv(s, 0)

	writeReg(s, RegEnvelope0, 0x00)
	if s.EnvelopeEnabled(0) {
		t.Error("envelope should be disabled")
	}
	if !s.env[0].ended {
		t.Error("disabling should end the envelope")
	}

	// Disabled to disabled is a no-op.
	before := s.env[0]
	writeReg(s, RegEnvelope0, envResolution)
	if s.env[0] != before {
		t.Error("write while disabled changed envelope state")
	}

	// Ticking a disabled envelope parks it at the start.
	s.env[0].pos = 7
	s.env[0].tick()
	if s.env[0].pos != 0 || s.env[0].phase != 0 {
		t.Errorf("disabled tick: expected phase/pos 0, got %d/%d", s.env[0].phase, s.env[0].pos)
	}
}

func TestEnvelope_ResolutionChangeCorrectsPosition(t *testing.T) {
	s := New()
	writeReg(s, RegEnvelope0, envEnable|envExtClock|3<<1)
	for i := 0; i < 4; i++ {
		clockEnv(s, 0)
	}

	// Select clocks to position 5; switching to 3-bit clears bit 0.
	writeReg(s, RegEnvelope0, envEnable|envExtClock|envResolution|3<<1)
	if s.env[0].pos != 4 || s.env[0].resolution != 2 {
		t.Fatalf("4->3 bit: expected pos 4 res 2, got pos %d res %d", s.env[0].pos, s.env[0].resolution)
	}
	if l, _ := s.EnvelopeLevels(0); l != 10 {
		t.Errorf("4->3 bit level: expected 10, got %d", l)
	}
	clockEnv(s, 0)
	if s.env[0].pos != 6 {
		t.Errorf("3-bit step: expected pos 6, got %d", s.env[0].pos)
	}

	// Select clocks to position 8; switching to 4-bit sets bit 0.
	writeReg(s, RegEnvelope0, envEnable|envExtClock|3<<1)
	if s.env[0].pos != 9 || s.env[0].resolution != 1 {
		t.Fatalf("3->4 bit: expected pos 9 res 1, got pos %d res %d", s.env[0].pos, s.env[0].resolution)
	}
	if l, _ := s.EnvelopeLevels(0); l != 6 {
		t.Errorf("3->4 bit level: expected 6, got %d", l)
	}
}

func TestEnvelope_InternalClockFromChannel1(t *testing.T) {
	s := New()
	// Enabled, internal clock, repetitive attack.
	writeReg(s, RegEnvelope0, envEnable|7<<1)

	writeReg(s, RegControl, controlSync)
	writeReg(s, RegOctave01, 0x70)
	writeReg(s, RegControl, 0)

	// Channel 1 at octave 7, period 511: half-cycles at ticks 4 and 8.
	tickN(s, 3)
	if l, _ := s.EnvelopeLevels(0); l != 0 {
		t.Fatalf("envelope clocked early: level %d", l)
	}
	tickN(s, 1)
	if l, _ := s.EnvelopeLevels(0); l != 1 {
		t.Errorf("after first channel 1 half-cycle: expected 1, got %d", l)
	}
	tickN(s, 4)
	if l, _ := s.EnvelopeLevels(0); l != 2 {
		t.Errorf("after second channel 1 half-cycle: expected 2, got %d", l)
	}

	// Register selects do not clock an internally clocked envelope.
	clockEnv(s, 0)
	if l, _ := s.EnvelopeLevels(0); l != 2 {
		t.Errorf("select clocked an internal envelope: level %d", l)
	}
}

func TestEnvelope_InvariantsUnderRandomWrites(t *testing.T) {
	s := New()
	seq := uint32(12345)
	next := func() uint8 {
		seq = seq*1103515245 + 12345
		return uint8(seq >> 16)
	}
	for i := 0; i < 5000; i++ {
		e := int(next() & 1)
		if next()&3 == 0 {
			writeReg(s, uint8(RegEnvelope0+e), next())
		} else {
			clockEnv(s, e)
		}
		for j := 0; j < numEnvelopes; j++ {
			env := &s.env[j]
			if env.pos >= 16 {
				t.Fatalf("step %d env%d: position %d out of range", i, j, env.pos)
			}
			if env.resolution == 2 && env.pos&1 != 0 {
				t.Fatalf("step %d env%d: odd position %d at 3-bit resolution", i, j, env.pos)
			}
		}
	}
}
