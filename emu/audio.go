package emu

import "math"

const (
	sampleRate  = 48000
	lpfCutoffHz = 12000.0
)

// lpfAlpha is the smoothing factor for the first-order RC low-pass filter.
// Derived from: alpha = dt / (RC + dt) where RC = 1/(2*pi*fc).
var lpfAlpha = 1.0 / (float64(sampleRate)/(2*math.Pi*lpfCutoffHz) + 1)

// output collects one frame of raw chip samples and turns them into host
// audio and a scope image. Shared by every sample source.
type output struct {
	chipRate int

	// Raw chip output for the current frame
	left  []uint8
	right []uint8
	count int

	// Bresenham accumulator for resampling chipRate to sampleRate
	resampAccum int

	// Pre-allocated audio buffer for external consumption
	audioBuffer []int16

	// Low-pass filter state (persists across frames)
	filterPrevL float64
	filterPrevR float64

	scope *Scope
}

func newOutput(chipRate, samplesPerFrame int) output {
	return output{
		chipRate:    chipRate,
		left:        make([]uint8, samplesPerFrame),
		right:       make([]uint8, samplesPerFrame),
		audioBuffer: make([]int16, 0, 2*(samplesPerFrame*sampleRate/chipRate+2)),
		scope:       NewScope(),
	}
}

// beginFrame discards the previous frame's output.
func (o *output) beginFrame() {
	o.count = 0
	o.audioBuffer = o.audioBuffer[:0]
}

// endFrame converts the collected chip samples to 16-bit PCM at sampleRate,
// filters them, and redraws the scope.
func (o *output) endFrame() {
	for i := 0; i < o.count; i++ {
		l := int16(o.left[i]) << 7
		r := int16(o.right[i]) << 7

		// Bresenham resample from the chip rate (~31kHz) up to sampleRate
		o.resampAccum += sampleRate
		for o.resampAccum >= o.chipRate {
			o.resampAccum -= o.chipRate
			o.audioBuffer = append(o.audioBuffer, l, r)
		}
	}
	o.applyLowPass()
	o.scope.Render(o.left[:o.count], o.right[:o.count])
}

// applyLowPass applies a first-order RC low-pass filter to the audio
// buffer, smoothing the stepped square waves of the resampled chip output.
// Applied per stereo channel with state persisting across frames.
func (o *output) applyLowPass() {
	for i := 0; i < len(o.audioBuffer); i += 2 {
		inL := float64(o.audioBuffer[i])
		inR := float64(o.audioBuffer[i+1])
		o.filterPrevL = lpfAlpha*inL + (1-lpfAlpha)*o.filterPrevL
		o.filterPrevR = lpfAlpha*inR + (1-lpfAlpha)*o.filterPrevR
		o.audioBuffer[i] = int16(clampInt32(int32(math.Round(o.filterPrevL)), -32768, 32767))
		o.audioBuffer[i+1] = int16(clampInt32(int32(math.Round(o.filterPrevR)), -32768, 32767))
	}
}

// reset clears the filter and resampler history.
func (o *output) reset() {
	o.beginFrame()
	o.resampAccum = 0
	o.filterPrevL = 0
	o.filterPrevR = 0
}

// GetAudioSamples returns accumulated audio samples as 16-bit stereo PCM.
func (o *output) GetAudioSamples() []int16 {
	return o.audioBuffer
}

// GetChipSamples returns the raw unsigned 8-bit chip output of the last frame.
func (o *output) GetChipSamples() (left, right []uint8) {
	return o.left[:o.count], o.right[:o.count]
}

// GetFramebuffer returns raw RGBA pixel data for the scope.
func (o *output) GetFramebuffer() []byte {
	return o.scope.Pixels()
}

// GetFramebufferStride returns the stride (bytes per row) of the framebuffer.
func (o *output) GetFramebufferStride() int {
	return o.scope.Stride()
}

// clampInt32 clamps v to [min, max].
func clampInt32(v, min, max int32) int32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
