// Package acelp implements the 17 bit algebraic codebook: four signed unit
// pulses per 40 sample subframe, one per interleaved track.
package acelp

import "celp-codec/pkg/dsp"

const (
	// SubframeSize is the innovation vector length.
	SubframeSize = 40
	// Pulses per vector.
	Pulses = 4
	// IndexBits and SignBits are the widths of the transmitted words.
	IndexBits = 13
	SignBits  = 4

	step = 5
)

// Result is the outcome of one innovation search.
type Result struct {
	// Code is the innovation vector including pitch sharpening.
	Code [SubframeSize]float64
	// Filtered is Code passed through the weighted synthesis filter.
	Filtered [SubframeSize]float64
	// Index packs the pulse positions, Signs the pulse polarities.
	Index int
	Signs int
	// Positions of the four pulses, track order.
	Positions [Pulses]int
}

// Search finds the four pulse innovation that best matches the target xn
// after filtering by h. For lags shorter than a subframe the innovation is
// sharpened by the previous pitch gain so that the search sees the
// periodicity the decoder will add. h is not modified.
//
// The search is exhaustive over the pulse tracks
//
//	0: 0, 5, ..., 35
//	1: 1, 6, ..., 36
//	2: 2, 7, ..., 37
//	3: 3, 8, ..., 38 and 4, 9, ..., 39
//
// and maximizes C^2/E where C is the correlation of the pulses with the
// backward filtered target and E their filtered energy. Each pulse takes
// the sign of the backward filtered target at its position.
func Search(xn, h []float64, lag int, sharp float64) Result {
	var hs [SubframeSize]float64
	copy(hs[:], h[:SubframeSize])
	if lag < SubframeSize {
		for i := lag; i < SubframeSize; i++ {
			hs[i] = dsp.Mac(hs[i], sharp, hs[i-lag])
		}
	}

	var (
		d, dAbs [SubframeSize]float64
		sign    [SubframeSize]float64
	)
	backwardFilter(xn, hs[:], d[:])
	for n := range d {
		if d[n] >= 0 {
			sign[n], dAbs[n] = 1, d[n]
		} else {
			sign[n], dAbs[n] = -1, -d[n]
		}
	}

	rr := correlationMatrix(hs[:], &sign)

	pos := exhaustive(&dAbs, rr)

	var res Result
	res.Positions = pos
	for k, p := range pos {
		res.Code[p] = sign[p]
		if sign[p] > 0 {
			res.Signs |= 1 << k
		}
	}
	res.Index = encodePositions(pos)

	for k := range pos {
		p := pos[k]
		for n := p; n < SubframeSize; n++ {
			res.Filtered[n] = dsp.Mac(res.Filtered[n], sign[p], hs[n-p])
		}
	}

	Sharpen(&res.Code, lag, sharp)
	return res
}

// Decode rebuilds the unsharpened pulse vector from the transmitted words.
func Decode(index, signs int) [SubframeSize]float64 {
	var code [SubframeSize]float64
	for k, p := range decodePositions(index) {
		if (signs>>k)&1 == 1 {
			code[p] = 1
		} else {
			code[p] = -1
		}
	}
	return code
}

// Sharpen adds the periodic component sharp*code[n-lag] for lags shorter
// than a subframe.
func Sharpen(code *[SubframeSize]float64, lag int, sharp float64) {
	if lag >= SubframeSize {
		return
	}
	for i := lag; i < SubframeSize; i++ {
		code[i] = dsp.Mac(code[i], sharp, code[i-lag])
	}
}

// backwardFilter computes d[n] = sum_{i>=n} x[i]*h[i-n].
func backwardFilter(x, h, d []float64) {
	for n := 0; n < SubframeSize; n++ {
		var s float64
		for i := n; i < SubframeSize; i++ {
			s = dsp.Mac(s, x[i], h[i-n])
		}
		d[n] = s
	}
}

// correlationMatrix returns the sign folded autocorrelation of the filtered
// pulse basis: rr[i][j] = sign[i]*sign[j]*sum_k h[k-i]*h[k-j].
func correlationMatrix(h []float64, sign *[SubframeSize]float64) *[SubframeSize][SubframeSize]float64 {
	var rr [SubframeSize][SubframeSize]float64
	for i := 0; i < SubframeSize; i++ {
		for j := i; j < SubframeSize; j++ {
			var s float64
			for k := 0; k < SubframeSize-j; k++ {
				s = dsp.Mac(s, h[k], h[k+j-i])
			}
			s = float64(s * sign[i] * sign[j])
			rr[i][j] = s
			rr[j][i] = s
		}
	}
	return &rr
}

// exhaustive tries every position combination; the first best one wins.
func exhaustive(dAbs *[SubframeSize]float64, rr *[SubframeSize][SubframeSize]float64) [Pulses]int {
	bestC2, bestE := -1.0, 1.0
	var best [Pulses]int

	for i0 := 0; i0 < SubframeSize; i0 += step {
		c0 := dAbs[i0]
		e0 := rr[i0][i0]
		for i1 := 1; i1 < SubframeSize; i1 += step {
			c1 := c0 + dAbs[i1]
			e1 := e0 + rr[i1][i1] + 2*rr[i0][i1]
			for i2 := 2; i2 < SubframeSize; i2 += step {
				c2 := c1 + dAbs[i2]
				e2 := e1 + rr[i2][i2] + 2*(rr[i0][i2]+rr[i1][i2])
				for i3 := 3; i3 < SubframeSize; i3++ {
					if i3%step > 4 || i3%step < 3 {
						continue
					}
					c3 := c2 + dAbs[i3]
					e3 := e2 + rr[i3][i3] + 2*(rr[i0][i3]+rr[i1][i3]+rr[i2][i3])
					c3 = float64(c3 * c3)
					if float64(c3*bestE) > float64(bestC2*e3) {
						bestC2, bestE = c3, e3
						best = [Pulses]int{i0, i1, i2, i3}
					}
				}
			}
		}
	}
	return best
}

func encodePositions(pos [Pulses]int) int {
	jx := pos[3]%step - 3
	return pos[0]/step |
		(pos[1]/step)<<3 |
		(pos[2]/step)<<6 |
		(2*(pos[3]/step)+jx)<<9
}

func decodePositions(index int) [Pulses]int {
	var pos [Pulses]int
	pos[0] = (index & 7) * step
	index >>= 3
	pos[1] = (index&7)*step + 1
	index >>= 3
	pos[2] = (index&7)*step + 2
	index >>= 3
	jx := index & 1
	index >>= 1
	pos[3] = (index&7)*step + 3 + jx
	return pos
}
