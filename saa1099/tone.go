package saa1099

func (c *channel) setPeriod() {
	c.period = maxPeriod - uint32(c.offset)
	if c.period < 1 {
		c.period = 1
	}
}

// writeOffset handles a frequency offset register write. Under sync the
// value lands immediately together with the buffered octave.
func (c *channel) writeOffset(v uint8, sync bool) {
	c.nextOffset = v
	if sync {
		c.offset = v
		c.octave = c.nextOctave
		c.newData = false
		c.ignoreOnce = false
		c.setPeriod()
		return
	}
	c.newData = true
	// Philips quirk: with no octave change pending, the new offset is held
	// back for one extra half-cycle.
	if c.nextOctave == c.octave {
		c.ignoreOnce = true
	}
}

// writeOctave handles one nibble of an octave register write.
func (c *channel) writeOctave(v uint8, sync bool) {
	c.nextOctave = v
	if sync {
		c.octave = v
		c.offset = c.nextOffset
		c.newData = false
		c.ignoreOnce = false
		c.setPeriod()
		return
	}
	c.newData = true
	c.ignoreOnce = false
}

// updateData lands buffered frequency data at a half-cycle boundary.
func (c *channel) updateData() {
	if c.newData {
		c.octave = c.nextOctave
		if !c.ignoreOnce {
			c.offset = c.nextOffset
			c.newData = false
		}
	}
	c.ignoreOnce = false
	c.setPeriod()
}

// stepTone advances channel idx by one tick and runs the half-cycle event
// for every output toggle.
func (s *SAA1099) stepTone(idx int) {
	c := &s.ch[idx]
	c.counter += 1 << c.octave
	for c.counter >= c.period {
		c.counter -= c.period
		c.level ^= 1
		s.halfCycle(idx)
	}
}

func (s *SAA1099) halfCycle(idx int) {
	switch idx {
	case 0, 3:
		n := &s.noise[idx/3]
		if n.source == noiseSourceTone {
			n.step()
		}
	case 1, 4:
		e := &s.env[idx/3]
		if e.enabled && !e.external {
			e.tick()
		}
	}
	s.ch[idx].updateData()
}
