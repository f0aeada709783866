package saa1099

// GenerateSamples runs count chip ticks and stores the unsigned 8-bit output
// in left[offset:offset+count] and right[offset:offset+count]. Both slices
// must be large enough.
func (s *SAA1099) GenerateSamples(left, right []uint8, offset, count int) {
	l := left[offset : offset+count]
	r := right[offset : offset+count]
	for i := range l {
		l[i], r[i] = s.Tick()
	}
}

// Tick advances the chip by one sample and returns the stereo output.
func (s *SAA1099) Tick() (left, right uint8) {
	if s.sync {
		return 0, 0
	}

	for i := range s.noise {
		s.noise[i].tick()
	}
	for i := 0; i < numChannels; i++ {
		s.stepTone(i)
	}

	if !s.outputEnabled {
		return 0, 0
	}
	var sumL, sumR int32
	for i := 0; i < numChannels; i++ {
		l, r := s.channelOutput(i)
		sumL += l
		sumR += r
	}
	return scaleSample(sumL), scaleSample(sumR)
}

// channelOutput returns the unscaled left/right contribution of one channel.
func (s *SAA1099) channelOutput(idx int) (int32, int32) {
	c := &s.ch[idx]
	tone := int32(c.level)
	noise := int32(s.noise[idx/3].level())

	var inter int32
	switch c.mixMode {
	case mixTone:
		inter = 2 * tone
	case mixNoise:
		inter = 2 * noise
	case mixTone | mixNoise:
		inter = tone * (2 - noise)
	}

	if idx == 2 || idx == 5 {
		e := &s.env[idx/3]
		if e.enabled {
			l := int32(pdmTable[c.ampLeft/2][e.left]) * (2 - inter)
			r := int32(pdmTable[c.ampRight/2][e.right]) * (2 - inter)
			return l, r
		}
	}
	return int32(c.ampLeft) * inter * 16, int32(c.ampRight) * inter * 16
}

func scaleSample(sum int32) uint8 {
	v := (sum + 8) >> 4
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
