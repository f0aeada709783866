package saa1099

// Envelope control register bits.
const (
	envEnable     = 0x80
	envExtClock   = 0x20
	envResolution = 0x10 // set: 3-bit (step 2)
	envShapeMask  = 0x0E
	envInvert     = 0x01
)

// envelope drives the amplitude of channel 2 (envelope 0) or channel 5
// (envelope 1). Shape, invert and clock source changes wait for the end of
// the current phase unless the envelope has ended.
type envelope struct {
	enabled  bool
	invert   bool // Right level is the complement of left
	external bool // Clocked by register selects instead of channel 1/4
	ended    bool
	looping  bool

	numPhases  uint8
	shape      uint8
	phase      uint8
	pos        uint8 // Position within the phase (0-15)
	resolution uint8 // 1 = 4-bit, 2 = 3-bit

	newData  bool
	buffered uint8 // Control byte waiting for the next completion

	left  uint8
	right uint8
}

func (e *envelope) setControl(data uint8) {
	enable := data&envEnable != 0
	if !enable {
		if e.enabled {
			e.enabled = false
			e.ended = true
		}
		return
	}

	res := uint8(1)
	if data&envResolution != 0 {
		res = 2
	}
	if res != e.resolution {
		if res == 2 {
			e.pos &^= 1
		} else {
			e.pos |= 1
		}
		e.resolution = res
		e.setLevels()
	}

	if e.ended {
		e.applyNewData(data)
		e.newData = false
		return
	}
	e.buffered = data
	e.newData = true
}

// tick advances the envelope by one step of its resolution.
func (e *envelope) tick() {
	if !e.enabled {
		e.ended = true
		e.phase = 0
		e.pos = 0
		return
	}
	if e.ended {
		return
	}

	completed := false
	e.pos += e.resolution
	if e.pos >= 16 {
		e.phase++
		switch {
		case e.phase < e.numPhases:
			e.pos -= 16
		case e.looping:
			e.phase = 0
			e.pos -= 16
			completed = true
		default:
			// Park on the last position of the final phase.
			e.ended = true
			e.phase = e.numPhases - 1
			e.pos = 16 - e.resolution
			completed = true
		}
	}

	if completed && e.newData {
		e.applyNewData(e.buffered)
		e.newData = false
		return
	}
	e.setLevels()
}

func (e *envelope) applyNewData(data uint8) {
	e.phase = 0
	e.pos = 0
	e.shape = (data & envShapeMask) >> 1
	e.invert = data&envInvert != 0
	e.external = data&envExtClock != 0
	e.numPhases = envShapes[e.shape].numPhases
	e.looping = envShapes[e.shape].looping
	if data&envResolution != 0 {
		e.resolution = 2
	} else {
		e.resolution = 1
	}
	e.enabled = data&envEnable != 0
	e.ended = !e.enabled
	e.setLevels()
}

func (e *envelope) setLevels() {
	if e.ended && !e.looping {
		e.left = 0
		e.right = 0
		return
	}
	e.left = envShapes[e.shape].levels[e.resolution-1][e.phase][e.pos]
	if !e.invert {
		e.right = e.left
		return
	}
	if e.resolution == 1 {
		e.right = 15 - e.left
	} else {
		e.right = 14 - e.left
	}
}
