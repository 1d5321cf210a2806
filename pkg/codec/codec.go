// Package codec holds the encoder and decoder sessions of the CELP speech
// codec: 8 kHz narrowband input, 10 ms frames of 80 samples split into two
// subframes, 80-bit parameter frames and optional discontinuous
// transmission with comfort noise.
//
// Sessions are not safe for concurrent use. Independent sessions share only
// immutable tables.
package codec

import (
	"math"

	"celp-codec/pkg/lpc"
	"celp-codec/pkg/pitch"
)

const (
	// SampleRate is the PCM sampling rate in Hz.
	SampleRate = 8000
	// FrameSize is the number of samples per frame.
	FrameSize = pitch.FrameSize
	// SubframeSize is the number of samples per subframe.
	SubframeSize = pitch.SubframeSize
	// SpeechOctets is the packed size of a speech frame.
	SpeechOctets = 10

	order = lpc.Order

	// Analysis buffer: 120 past samples, the frame and a 40 sample look-ahead.
	lookahead  = 40
	speechBuf  = lpc.WindowSize
	speechOff  = speechBuf - FrameSize - lookahead
	newSamples = speechBuf - FrameSize

	excOff = pitch.HistoryLen
	wspOff = pitch.PitMax

	// gamma1 weights the perceptual filter and tilt its first order term.
	gamma1 = 0.75
	tilt   = 0.7

	sharpMin = 0.2
	sharpMax = 0.7945

	// overflowLimit is the synthesis magnitude that triggers rescaling.
	overflowLimit = 1 << 20
)

func clampSharp(gp float64) float64 {
	return math.Max(sharpMin, math.Min(sharpMax, gp))
}

// toPCM rounds half away from zero and saturates to 16 bits.
func toPCM(x float64) int16 {
	if x >= 0 {
		x += 0.5
	} else {
		x -= 0.5
	}
	switch {
	case x > math.MaxInt16:
		return math.MaxInt16
	case x < math.MinInt16:
		return math.MinInt16
	}
	return int16(x)
}
