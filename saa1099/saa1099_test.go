package saa1099

import (
	"bytes"
	"testing"
)

// writeReg selects reg and writes val, the way a host drives the chip bus.
func writeReg(s *SAA1099, reg, val uint8) {
	s.SelectRegister(reg)
	s.SetRegisterData(val)
}

// setupSquare configures channel 0 as a full-left tone at the lowest pitch.
func setupSquare(s *SAA1099) {
	writeReg(s, RegControl, controlOutputOn)
	writeReg(s, RegAmplitude0, 0x0F)
	writeReg(s, RegToneEnable, 0x01)
	writeReg(s, RegFreqOffset0, 0x00)
	writeReg(s, RegOctave01, 0x00)
}

func TestSAA1099_PowerOnState(t *testing.T) {
	s := New()

	for ch := 0; ch < numChannels; ch++ {
		c := &s.ch[ch]
		if c.period != maxPeriod {
			t.Errorf("ch%d period: expected %d, got %d", ch, maxPeriod, c.period)
		}
		if c.level != 1 {
			t.Errorf("ch%d level: expected 1, got %d", ch, c.level)
		}
	}
	for n := 0; n < numNoise; n++ {
		if got := s.NoiseLFSR(n); got != lfsrSeed {
			t.Errorf("noise%d LFSR: expected 0x%05X, got 0x%05X", n, lfsrSeed, got)
		}
	}
	for e := 0; e < numEnvelopes; e++ {
		if !s.env[e].ended {
			t.Errorf("env%d should start ended", e)
		}
		if s.env[e].resolution != 1 {
			t.Errorf("env%d resolution: expected 1, got %d", e, s.env[e].resolution)
		}
	}
	if s.OutputEnabled() || s.SyncActive() {
		t.Error("output and sync should start disabled")
	}
}

func TestSAA1099_ConcreteSquareWave(t *testing.T) {
	s := New()
	setupSquare(s)

	left := make([]uint8, 1100)
	right := make([]uint8, 1100)
	s.GenerateSamples(left, right, 0, len(left))

	for i := range left {
		want := uint8(0)
		if i < 510 || i >= 1021 {
			want = 30
		}
		if left[i] != want {
			t.Fatalf("left[%d]: expected %d, got %d", i, want, left[i])
		}
		if right[i] != 0 {
			t.Fatalf("right[%d]: expected 0, got %d", i, right[i])
		}
	}
}

func TestSAA1099_GenerateSamplesOffset(t *testing.T) {
	s := New()
	setupSquare(s)

	left := bytes.Repeat([]byte{0xAA}, 20)
	right := bytes.Repeat([]byte{0xAA}, 20)
	s.GenerateSamples(left, right, 5, 10)

	for i := 0; i < 20; i++ {
		inRange := i >= 5 && i < 15
		switch {
		case inRange && left[i] != 30:
			t.Errorf("left[%d]: expected 30, got %d", i, left[i])
		case inRange && right[i] != 0:
			t.Errorf("right[%d]: expected 0, got %d", i, right[i])
		case !inRange && (left[i] != 0xAA || right[i] != 0xAA):
			t.Errorf("sample %d outside the requested range was overwritten", i)
		}
	}
}

func TestSAA1099_OutputDisabledStillAdvances(t *testing.T) {
	s := New()
	writeReg(s, RegAmplitude0, 0xFF)
	writeReg(s, RegToneEnable, 0x01)

	left := make([]uint8, 600)
	right := make([]uint8, 600)
	s.GenerateSamples(left, right, 0, 600)

	for i := range left {
		if left[i] != 0 || right[i] != 0 {
			t.Fatalf("sample %d: expected silence with output disabled, got (%d,%d)", i, left[i], right[i])
		}
	}
	if s.ToneLevel(0) != 0 {
		t.Error("tone generator should keep running while output is disabled")
	}
}

func TestSAA1099_RegisterReadBack(t *testing.T) {
	s := New()

	writeReg(s, 0x05, 0x3C)
	if got := s.GetRegisterData(); got != 0x3C {
		t.Errorf("reg 0x05 read: expected 0x3C, got 0x%02X", got)
	}

	// Address is masked to 5 bits.
	s.SelectRegister(0x25)
	if got := s.SelectedRegister(); got != 0x05 {
		t.Errorf("selected: expected 0x05, got 0x%02X", got)
	}
	if got := s.GetRegisterData(); got != 0x3C {
		t.Errorf("masked read: expected 0x3C, got 0x%02X", got)
	}

	// Unused addresses only store the shadow byte.
	before := make([]byte, SerializeSize)
	after := make([]byte, SerializeSize)
	_ = s.Serialize(before)
	writeReg(s, 0x1F, 0x12)
	_ = s.Serialize(after)
	if got := s.GetRegisterData(); got != 0x12 {
		t.Errorf("unused reg read: expected 0x12, got 0x%02X", got)
	}
	regsOff := SerializeSize - globalStateSize
	if !bytes.Equal(before[:regsOff], after[:regsOff]) {
		t.Error("write to an unused register changed generator state")
	}
}

func TestSAA1099_InvalidSelection(t *testing.T) {
	s := New()
	s.selected = 40

	if got := s.GetRegisterData(); got != 0xFF {
		t.Errorf("invalid read: expected 0xFF, got 0x%02X", got)
	}
	s.SetRegisterData(0x55)
	for i, v := range s.regs {
		if v != 0 {
			t.Errorf("reg %d changed by write to invalid index: 0x%02X", i, v)
		}
	}
}

func TestSAA1099_AmplitudeAndMixRegisters(t *testing.T) {
	s := New()

	writeReg(s, 0x03, 0x9A)
	if l, r := s.Amplitude(3); l != 0x0A || r != 0x09 {
		t.Errorf("ch3 amplitude: expected (10,9), got (%d,%d)", l, r)
	}

	writeReg(s, RegToneEnable, 0x2A)
	writeReg(s, RegNoiseEnable, 0x15)
	expected := [numChannels]uint8{
		mixNoise, mixTone, mixNoise, mixTone, mixNoise, mixTone,
	}
	for ch, want := range expected {
		if got := s.ch[ch].mixMode; got != want {
			t.Errorf("ch%d mixMode: expected %d, got %d", ch, want, got)
		}
	}

	writeReg(s, RegNoiseSource, 0x21)
	if s.NoiseSource(0) != 1 || s.NoiseSource(1) != 2 {
		t.Errorf("noise sources: expected (1,2), got (%d,%d)", s.NoiseSource(0), s.NoiseSource(1))
	}
}

func TestSAA1099_OctavePairs(t *testing.T) {
	s := New()
	writeReg(s, RegControl, controlSync)

	writeReg(s, 0x10, 0x21)
	writeReg(s, 0x11, 0x53)
	writeReg(s, 0x12, 0x76)

	expected := [numChannels]uint8{1, 2, 3, 5, 6, 7}
	for ch, want := range expected {
		if got := s.Octave(ch); got != want {
			t.Errorf("ch%d octave: expected %d, got %d", ch, want, got)
		}
	}
}

func TestSAA1099_SyncSilencesAndHolds(t *testing.T) {
	s := New()
	setupSquare(s)

	left := make([]uint8, 600)
	right := make([]uint8, 600)
	s.GenerateSamples(left, right, 0, 100)

	writeReg(s, RegControl, controlOutputOn|controlSync)
	if s.ch[0].counter != 0 || s.ch[0].level != 1 {
		t.Fatalf("sync should reset counter/level, got counter=%d level=%d", s.ch[0].counter, s.ch[0].level)
	}

	lfsr := s.NoiseLFSR(0)
	s.GenerateSamples(left, right, 0, 50)
	for i := 0; i < 50; i++ {
		if left[i] != 0 || right[i] != 0 {
			t.Fatalf("sample %d during sync: expected (0,0), got (%d,%d)", i, left[i], right[i])
		}
	}
	if s.ch[0].counter != 0 {
		t.Errorf("counter advanced during sync: %d", s.ch[0].counter)
	}
	if s.NoiseLFSR(0) != lfsr {
		t.Error("noise advanced during sync")
	}

	writeReg(s, RegControl, controlOutputOn)
	s.GenerateSamples(left, right, 0, 511)
	for i := 0; i < 510; i++ {
		if left[i] != 30 {
			t.Fatalf("sample %d after sync release: expected 30, got %d", i, left[i])
		}
	}
	if left[510] != 0 {
		t.Errorf("sample 510 after sync release: expected 0, got %d", left[510])
	}
}

func TestSAA1099_SyncDoesNotTouchEnvelopes(t *testing.T) {
	s := New()
	// Enabled, external clock, single triangular.
	writeReg(s, RegEnvelope0, envEnable|envExtClock|4<<1)
	for i := 0; i < 5; i++ {
		s.SelectRegister(RegEnvelope0)
	}
	if l, _ := s.EnvelopeLevels(0); l != 5 {
		t.Fatalf("env0 level before sync: expected 5, got %d", l)
	}

	writeReg(s, RegControl, controlSync)
	writeReg(s, RegControl, 0)

	if s.env[0].pos != 5 {
		t.Errorf("env0 position changed by sync: %d", s.env[0].pos)
	}
	s.SelectRegister(RegEnvelope0)
	if l, _ := s.EnvelopeLevels(0); l != 6 {
		t.Errorf("env0 level after sync: expected 6, got %d", l)
	}
}

func TestSAA1099_SyncLandsBufferedData(t *testing.T) {
	s := New()
	writeReg(s, RegFreqOffset0, 0x80)
	writeReg(s, RegOctave01, 0x03)
	if s.Offset(0) != 0 || s.Octave(0) != 0 {
		t.Fatal("frequency data should be buffered outside sync")
	}

	writeReg(s, RegControl, controlSync)
	if s.Offset(0) != 0x80 || s.Octave(0) != 3 {
		t.Errorf("sync: expected offset 0x80 octave 3, got offset 0x%02X octave %d", s.Offset(0), s.Octave(0))
	}
	if s.ch[0].period != maxPeriod-0x80 {
		t.Errorf("sync: expected period %d, got %d", maxPeriod-0x80, s.ch[0].period)
	}
	if s.ch[0].newData || s.ch[0].ignoreOnce {
		t.Error("sync should clear pending frequency data")
	}
}

func TestSAA1099_ResetIdempotent(t *testing.T) {
	s := New()
	setupSquare(s)
	writeReg(s, RegNoiseEnable, 0x3F)
	writeReg(s, RegNoiseSource, 0x33)
	writeReg(s, RegEnvelope1, 0x9E)
	left := make([]uint8, 4000)
	right := make([]uint8, 4000)
	s.GenerateSamples(left, right, 0, 4000)

	s.Reset()
	once := make([]byte, SerializeSize)
	if err := s.Serialize(once); err != nil {
		t.Fatal(err)
	}
	s.Reset()
	twice := make([]byte, SerializeSize)
	if err := s.Serialize(twice); err != nil {
		t.Fatal(err)
	}
	fresh := make([]byte, SerializeSize)
	if err := New().Serialize(fresh); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(once, twice) {
		t.Error("second Reset changed state")
	}
	if !bytes.Equal(once, fresh) {
		t.Error("Reset state differs from New")
	}

	s.GenerateSamples(left, right, 0, 1000)
	for i := 0; i < 1000; i++ {
		if left[i] != 0 || right[i] != 0 {
			t.Fatalf("sample %d after reset: expected silence, got (%d,%d)", i, left[i], right[i])
		}
	}
}

func TestShapeName(t *testing.T) {
	if got := ShapeName(5); got != "repetitive triangular" {
		t.Errorf("ShapeName(5): got %q", got)
	}
	if got := ShapeName(0x0A); got != "single decay" {
		t.Errorf("ShapeName masks to 3 bits: got %q", got)
	}
}
