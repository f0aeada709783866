package saa1099

// noiseSourceTone clocks the generator from the paired channel 0/3 tone.
const noiseSourceTone = 3

// noiseDividers holds the tick divisors for sources 0-2.
var noiseDividers = [3]uint32{1, 2, 4}

type noiseGen struct {
	counter uint32
	source  uint8
	lfsr    uint32 // 18-bit Galois LFSR
}

func (n *noiseGen) setSource(src uint8) {
	n.source = src
	if src != noiseSourceTone && n.counter >= noiseDividers[src] {
		n.counter = 0
	}
}

// tick advances a divider-clocked generator by one chip tick.
func (n *noiseGen) tick() {
	if n.source == noiseSourceTone {
		return
	}
	n.counter++
	if d := noiseDividers[n.source]; n.counter >= d {
		n.counter -= d
		n.step()
	}
}

func (n *noiseGen) step() {
	if n.lfsr&1 != 0 {
		n.lfsr = n.lfsr>>1 ^ lfsrTaps
	} else {
		n.lfsr >>= 1
	}
}

func (n *noiseGen) level() uint8 {
	return uint8(n.lfsr & 1)
}
