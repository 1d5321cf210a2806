package pitch

import (
	"math"

	"celp-codec/pkg/dsp"
)

// PredLT3 writes the adaptive codebook vector for lag + frac/3 into
// exc[off:off+l]. The vector is built in place, so lags shorter than l
// repeat the freshly interpolated samples.
func PredLT3(exc []float64, off, lag, frac, l int) {
	x0 := off - lag
	frac = -frac
	if frac < 0 {
		frac += UpSamp
		x0--
	}

	for j := 0; j < l; j++ {
		x1 := x0 + j
		x2 := x1 + 1
		var s float64
		for i, k := 0, 0; i < LInter10; i, k = i+1, k+UpSamp {
			s = dsp.Mac(s, sample(exc, x1-i), interp31[frac+k])
			s = dsp.Mac(s, sample(exc, x2+i), interp31[UpSamp-frac+k])
		}
		exc[off+j] = s
	}
}

// sample reads exc[i], repeating the first sample for reads before the
// start of the buffer.
func sample(exc []float64, i int) float64 {
	if i < 0 {
		return exc[0]
	}
	return exc[i]
}

func invSqrt(x float64) float64 {
	return 1 / math.Sqrt(x)
}
