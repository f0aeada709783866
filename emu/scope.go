package emu

// Scope dimensions in pixels.
const (
	ScreenWidth  = 320
	ScreenHeight = 240
)

const scopeStride = ScreenWidth * 4

// Scope colors (RGBA)
var (
	scopeBackground = [4]uint8{0x10, 0x10, 0x18, 0xFF}
	scopeAxis       = [4]uint8{0x30, 0x30, 0x40, 0xFF}
	scopeLeft       = [4]uint8{0x40, 0xE0, 0x60, 0xFF}
	scopeRight      = [4]uint8{0xE0, 0xA0, 0x40, 0xFF}
)

// Scope draws the left channel in the top half and the right channel in the
// bottom half of an RGBA framebuffer.
type Scope struct {
	pix []byte
}

// NewScope creates a cleared scope.
func NewScope() *Scope {
	s := &Scope{pix: make([]byte, scopeStride*ScreenHeight)}
	s.clear()
	return s
}

// Pixels returns the RGBA framebuffer.
func (s *Scope) Pixels() []byte {
	return s.pix
}

// Stride returns bytes per row.
func (s *Scope) Stride() int {
	return scopeStride
}

// Render redraws the scope from one frame of chip output.
func (s *Scope) Render(left, right []uint8) {
	s.clear()
	half := ScreenHeight / 2
	s.trace(left, 0, half, scopeLeft)
	s.trace(right, half, half, scopeRight)
}

func (s *Scope) clear() {
	for i := 0; i < len(s.pix); i += 4 {
		copy(s.pix[i:i+4], scopeBackground[:])
	}
	for x := 0; x < ScreenWidth; x++ {
		s.set(x, ScreenHeight/2, scopeAxis)
	}
}

// trace plots samples into the band [top, top+height), joining neighbouring
// points with vertical runs so square edges stay visible.
func (s *Scope) trace(samples []uint8, top, height int, c [4]uint8) {
	if len(samples) == 0 {
		return
	}
	prevY := -1
	for x := 0; x < ScreenWidth; x++ {
		v := int(samples[x*len(samples)/ScreenWidth])
		y := top + height - 1 - v*(height-1)/255
		if prevY < 0 {
			prevY = y
		}
		lo, hi := prevY, y
		if lo > hi {
			lo, hi = hi, lo
		}
		for yy := lo; yy <= hi; yy++ {
			s.set(x, yy, c)
		}
		prevY = y
	}
}

func (s *Scope) set(x, y int, c [4]uint8) {
	if x < 0 || x >= ScreenWidth || y < 0 || y >= ScreenHeight {
		return
	}
	off := y*scopeStride + x*4
	copy(s.pix[off:off+4], c[:])
}
