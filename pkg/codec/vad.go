package codec

import (
	"math"

	"celp-codec/pkg/dsp"
)

const (
	// hangoverFrames is the number of speech frames kept after the
	// detector first reports silence.
	hangoverFrames = 7
	// elapsedThreshold skips the hangover when the decoder was updated by a
	// non-speech frame this recently.
	elapsedThreshold = 30
	elapsedMax       = math.MaxInt16

	// speechFloorDB is the level below which no frame counts as speech.
	speechFloorDB = 30.0
	initialNoise  = 35.0

	noiseDown      = 0.25
	noiseUpSilence = 0.05
	noiseUpSpeech  = 0.002
)

// vad is an energy detector with an adaptive noise floor followed by the
// hangover logic that decides when discontinuous transmission starts.
type vad struct {
	threshold float64
	noise     float64
	hangover  int
	elapsed   int
}

func newVAD(thresholdDB float64) *vad {
	v := &vad{threshold: thresholdDB}
	v.reset()
	return v
}

func (v *vad) reset() {
	v.noise = initialNoise
	v.hangover = hangoverFrames
	v.elapsed = elapsedMax
}

// frameLevel returns the mean power of x in dB.
func frameLevel(x []float64) float64 {
	return 10 * math.Log10(dsp.Energy(x, len(x))/float64(len(x))+1)
}

// detect reports whether x holds speech and tracks the noise floor.
func (v *vad) detect(x []float64) bool {
	e := frameLevel(x)
	speech := e > v.noise+v.threshold && e > speechFloorDB

	switch {
	case e < v.noise:
		v.noise += noiseDown * (e - v.noise)
	case speech:
		v.noise += noiseUpSpeech * (e - v.noise)
	default:
		v.noise += noiseUpSilence * (e - v.noise)
	}
	return speech
}

// silent applies the hangover to a detector decision and reports whether
// the frame is sent as non-speech.
func (v *vad) silent(speech bool) bool {
	if v.elapsed < elapsedMax {
		v.elapsed++
	}
	if speech {
		v.hangover = hangoverFrames
		return false
	}
	if v.hangover == 0 {
		v.elapsed = 0
		return true
	}
	v.hangover--
	return v.elapsed+v.hangover < elapsedThreshold
}
