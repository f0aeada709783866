package saa1099

// envShape describes one of the eight envelope waveforms selected by bits 1-3
// of an envelope control register.
type envShape struct {
	name      string
	numPhases uint8
	looping   bool
	// levels[res][phase][pos]: res 0 = 4-bit, 1 = 3-bit.
	levels [2][2][16]uint8
}

var (
	decay4  = [16]uint8{15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0}
	decay3  = [16]uint8{14, 14, 12, 12, 10, 10, 8, 8, 6, 6, 4, 4, 2, 2, 0, 0}
	attack4 = [16]uint8{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	attack3 = [16]uint8{0, 0, 2, 2, 4, 4, 6, 6, 8, 8, 10, 10, 12, 12, 14, 14}
	zeros   = [16]uint8{}
	max4    = [16]uint8{15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15}
	max3    = [16]uint8{14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14}
)

// envShapes is indexed by the 3-bit shape field.
var envShapes = [8]envShape{
	{"zero amplitude", 1, false, [2][2][16]uint8{{zeros, zeros}, {zeros, zeros}}},
	{"maximum amplitude", 1, true, [2][2][16]uint8{{max4, zeros}, {max3, zeros}}},
	{"single decay", 1, false, [2][2][16]uint8{{decay4, zeros}, {decay3, zeros}}},
	{"repetitive decay", 1, true, [2][2][16]uint8{{decay4, zeros}, {decay3, zeros}}},
	{"single triangular", 2, false, [2][2][16]uint8{{attack4, decay4}, {attack3, decay3}}},
	{"repetitive triangular", 2, true, [2][2][16]uint8{{attack4, decay4}, {attack3, decay3}}},
	{"single attack", 1, false, [2][2][16]uint8{{attack4, zeros}, {attack3, zeros}}},
	{"repetitive attack", 1, true, [2][2][16]uint8{{attack4, zeros}, {attack3, zeros}}},
}

// pdmTable maps (amplitude/2, envelope level) to the effective amplitude of
// an envelope-controlled channel, on the same x16 scale as the direct path.
// The real chip gates the amplitude through a binary rate multiplier whose
// measured output is not exactly linear; this table is the linear
// approximation 2*a*e, not a measured trace.
var pdmTable = [8][16]uint8{
	{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 2, 4, 6, 8, 10, 12, 14, 16, 18, 20, 22, 24, 26, 28, 30},
	{0, 4, 8, 12, 16, 20, 24, 28, 32, 36, 40, 44, 48, 52, 56, 60},
	{0, 6, 12, 18, 24, 30, 36, 42, 48, 54, 60, 66, 72, 78, 84, 90},
	{0, 8, 16, 24, 32, 40, 48, 56, 64, 72, 80, 88, 96, 104, 112, 120},
	{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 110, 120, 130, 140, 150},
	{0, 12, 24, 36, 48, 60, 72, 84, 96, 108, 120, 132, 144, 156, 168, 180},
	{0, 14, 28, 42, 56, 70, 84, 98, 112, 126, 140, 154, 168, 182, 196, 210},
}

// ShapeName returns a human readable name for an envelope shape (0-7).
func ShapeName(shape uint8) string {
	return envShapes[shape&0x07].name
}
