package pitch

import (
	"math"

	"celp-codec/pkg/dsp"
)

// hysteresis favours the lag range that won the previous frame.
const hysteresis = 1.1

// OpenLoop estimates the pitch of one frame on the weighted speech. It
// remembers which of the three lag ranges won last time.
type OpenLoop struct {
	prevRange int
}

// NewOpenLoop returns an estimator with no range history.
func NewOpenLoop() *OpenLoop {
	return &OpenLoop{prevRange: -1}
}

// Reset forgets the previous range.
func (o *OpenLoop) Reset() {
	o.prevRange = -1
}

// Search returns the open loop lag of the FrameSize samples starting at
// wsp[off]. wsp[off-PitMax:off] must hold the weighted speech history.
// Correlations are computed on every second sample over [20,39], [40,79]
// and [80,143]; a range whose best lag is close to a multiple of a shorter
// range's best lag hands part of its score down.
func (o *OpenLoop) Search(wsp []float64, off int) int {
	var (
		lags  [3]int
		score [3]float64
	)
	lags[0], score[0] = o.searchRange(wsp, off, 20, 39, 1)
	lags[1], score[1] = o.searchRange(wsp, off, 40, 79, 1)
	lags[2], score[2] = o.searchRange(wsp, off, 80, PitMax, 2)

	if o.prevRange >= 0 && score[o.prevRange] > 0 {
		score[o.prevRange] *= hysteresis
	}

	if abs(lags[1]*2-lags[2]) < 5 {
		score[1] = dsp.Mac(score[1], score[2], 0.25)
	}
	if abs(lags[1]*3-lags[2]) < 7 {
		score[1] = dsp.Mac(score[1], score[2], 0.25)
	}
	if abs(lags[0]*2-lags[1]) < 5 {
		score[0] = dsp.Mac(score[0], score[1], 0.20)
	}
	if abs(lags[0]*3-lags[1]) < 7 {
		score[0] = dsp.Mac(score[0], score[1], 0.20)
	}

	best := 0
	if score[0] < score[1] {
		score[0] = score[1]
		best = 1
	}
	if score[0] < score[2] {
		best = 2
	}
	o.prevRange = best
	return lags[best]
}

// searchRange finds the lag in [lo, hi] (stepping by step, then refining
// by one around the winner when step > 1) with the largest decimated
// correlation and returns it with its energy normalized score.
func (o *OpenLoop) searchRange(wsp []float64, off, lo, hi, step int) (int, float64) {
	best := -math.MaxFloat64
	lag := lo
	for t := lo; t <= hi; t += step {
		if s := decimatedCorr(wsp, off, t); s > best {
			best = s
			lag = t
		}
	}
	if step > 1 {
		centre := lag
		for t := centre - 1; t <= centre+1; t += 2 {
			if t < lo || t > hi {
				continue
			}
			if s := decimatedCorr(wsp, off, t); s > best {
				best = s
				lag = t
			}
		}
	}

	energy := 0.01
	for j := 0; j < FrameSize; j += 2 {
		v := wsp[off+j-lag]
		energy = dsp.Mac(energy, v, v)
	}
	return lag, best * invSqrt(energy)
}

func decimatedCorr(wsp []float64, off, t int) float64 {
	var s float64
	for j := 0; j < FrameSize; j += 2 {
		s = dsp.Mac(s, wsp[off+j], wsp[off+j-t])
	}
	return s
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
