package postfilter

import "celp-codec/pkg/dsp"

// HighPass is a second order high-pass section.
type HighPass struct {
	biquad *dsp.Biquad
}

// NewPreProcess returns the 140 Hz filter applied to encoder input.
func NewPreProcess() *HighPass {
	return &HighPass{biquad: dsp.NewBiquad(
		[3]float64{0.92727435, -1.8544941, 0.92727435},
		[3]float64{1, 1.9059465, -0.9114024},
	)}
}

// NewPostProcess returns the 100 Hz filter applied to decoder output.
func NewPostProcess() *HighPass {
	return &HighPass{biquad: dsp.NewBiquad(
		[3]float64{0.93980581, -1.8795834, 0.93980581},
		[3]float64{1, 1.9330735, -0.93589199},
	)}
}

// Process filters s in place.
func (h *HighPass) Process(s []float64) {
	h.biquad.Process(s)
}

// Reset clears the filter memory.
func (h *HighPass) Reset() {
	h.biquad.Reset()
}
