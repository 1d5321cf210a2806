// Package pitch implements the long term predictor of the codec: the open
// loop lag estimate on the weighted speech, the closed loop fractional search
// on the target signal, the adaptive codebook interpolation and the lag
// index coding.
package pitch

import "celp-codec/pkg/dsp"

const (
	// PitMin and PitMax bound every lag in samples.
	PitMin = 20
	PitMax = 143

	// UpSamp is the fractional resolution: lags are coded in thirds.
	UpSamp = 3
	// LInter10 and LInter4 are the half lengths of the two interpolation
	// kernels.
	LInter10 = 10
	LInter4  = 4
	// LInterpol is the number of samples the adaptive codebook reads past
	// PitMax.
	LInterpol = LInter10 + 1
	// HistoryLen is the excitation history the adaptive codebook needs.
	HistoryLen = PitMax + LInterpol

	// SubframeSize and FrameSize in samples.
	SubframeSize = 40
	FrameSize    = 2 * SubframeSize

	// GainMax caps the unquantized pitch gain.
	GainMax = 1.2

	// maxIntegerOnly is the largest first subframe lag that is still
	// searched with fractional resolution.
	maxIntegerOnly = 84
)

// Range is the inclusive lag interval searched for one subframe.
type Range struct {
	Min, Max int
}

// FirstRange centres a 7 lag window on the open loop estimate.
func FirstRange(openLoop int) Range {
	r := Range{Min: openLoop - 3}
	if r.Min < PitMin {
		r.Min = PitMin
	}
	r.Max = r.Min + 6
	if r.Max > PitMax {
		r.Max = PitMax
		r.Min = r.Max - 6
	}
	return r
}

// SecondRange is the window the second subframe lag is coded relative to.
func SecondRange(lag int) Range {
	r := Range{Min: lag - 5}
	if r.Min < PitMin {
		r.Min = PitMin
	}
	r.Max = r.Min + 9
	if r.Max > PitMax {
		r.Max = PitMax
		r.Min = r.Max - 9
	}
	return r
}

// EncodeLag returns the transmitted lag index. The first subframe uses 8
// bits: thirds up to 85 and integers above. The second subframe codes the
// lag in 5 bits relative to r.Min.
func EncodeLag(lag, frac int, first bool, r Range) int {
	if first {
		if lag <= 85 {
			return lag*3 - 58 + frac
		}
		return lag + 112
	}
	return (lag-r.Min)*3 + 2 + frac
}

// DecodeLag inverts EncodeLag. First subframe index 0 is never produced
// by the encoder, whose shortest lag is 20 - 1/3 at index 1; it decodes to
// 19 + 1/3, which PredLT3 still reads from inside the excitation history.
func DecodeLag(index int, first bool, r Range) (lag, frac int) {
	if first {
		if index < 197 {
			lag = (index+2)/3 + 19
			frac = index - lag*3 + 58
			return lag, frac
		}
		return index - 112, 0
	}
	i := (index+2)/3 - 1
	lag = i + r.Min
	frac = index - 2 - i*3
	return lag, frac
}

// Parity protects the six most significant bits of the first lag index.
func Parity(index int) int {
	tmp := index >> 1
	sum := 1
	for i := 0; i <= 5; i++ {
		tmp >>= 1
		sum += tmp & 1
	}
	return sum & 1
}

// CheckParity reports whether parity matches the received lag index.
func CheckParity(index, parity int) bool {
	return (Parity(index)+parity)&1 == 0
}

// Gain returns the adaptive codebook gain minimizing |xn - g*y1|^2, clipped
// to [0, GainMax], together with the energy and correlation terms the gain
// quantizer needs (y1.y1 and -2 xn.y1).
func Gain(xn, y1 []float64) (float64, [2]float64) {
	xy := dsp.Dot(xn, y1, SubframeSize)
	yy := 0.01 + dsp.Energy(y1, SubframeSize)

	g := xy / yy
	if g < 0 {
		g = 0
	}
	if g > GainMax {
		g = GainMax
	}
	return g, [2]float64{yy, -2*xy + 0.01}
}
