package pitch

import "celp-codec/pkg/dsp"

// tieRatio is how close to the maximum the previous lag's correlation must
// be for the search to keep it.
const tieRatio = 0.99

// ClosedLoop searches the lag in r that best predicts the target xn from the
// past excitation filtered by h. exc[off+n] is sample n of the current
// subframe and exc[off-HistoryLen:off] the history. When the previous lag
// lies in r and comes within 1% of the best integer lag it is preferred.
// The result is lag + frac/3 with frac in {-1, 0, 1}.
func ClosedLoop(exc []float64, off int, xn, h []float64, r Range, first bool, prevLag int) (lag, frac int) {
	tMin := r.Min - LInter4
	tMax := r.Max + LInter4

	var corrBuf [PitMax + 2*LInter4 + 1]float64
	corr := corrBuf[:tMax-tMin+1]
	normCorr(exc, off, xn, h, tMin, tMax, corr)
	at := func(t int) float64 { return corr[t-tMin] }

	best := at(r.Min)
	lag = r.Min
	for t := r.Min + 1; t <= r.Max; t++ {
		if at(t) > best {
			best = at(t)
			lag = t
		}
	}
	if prevLag != lag && prevLag >= r.Min && prevLag <= r.Max && best > 0 {
		if at(prevLag) >= tieRatio*best {
			lag = prevLag
		}
	}

	if first && lag > maxIntegerOnly {
		return lag, 0
	}

	c := lag - tMin
	best = interpolate(corr, c, -2)
	frac = -2
	for f := -1; f <= 2; f++ {
		if v := interpolate(corr, c, f); v > best {
			best = v
			frac = f
		}
	}
	switch frac {
	case -2:
		lag--
		frac = 1
	case 2:
		lag++
		frac = -1
	}

	if lag < PitMin {
		lag, frac = PitMin, 0
	}
	if lag > PitMax {
		lag, frac = PitMax, 0
	}
	return lag, frac
}

// normCorr fills corr[t-tMin] with the correlation between xn and the past
// excitation at lag t filtered through h, normalized by the energy of the
// filtered excitation.
func normCorr(exc []float64, off int, xn, h []float64, tMin, tMax int, corr []float64) {
	var excf [SubframeSize]float64

	k := off - tMin
	dsp.Convolve(exc[k:], h, excf[:], SubframeSize)

	for t := tMin; t <= tMax; t++ {
		alp := 0.01 + dsp.Energy(excf[:], SubframeSize)
		s := dsp.Dot(xn, excf[:], SubframeSize)
		corr[t-tMin] = s * invSqrt(alp)

		if t != tMax {
			k--
			for j := SubframeSize - 1; j > 0; j-- {
				excf[j] = dsp.Mac(excf[j-1], sample(exc, k), h[j])
			}
			excf[0] = float64(sample(exc, k) * h[0])
		}
	}
}

// interpolate evaluates the correlation at x[c] + frac/3 with the 13 tap
// kernel. x must hold LInter4 samples on each side of c.
func interpolate(x []float64, c, frac int) float64 {
	i0 := c
	if frac < 0 {
		frac += UpSamp
		i0--
	}
	var s float64
	for i, k := 0, 0; i < LInter4; i, k = i+1, k+UpSamp {
		s = dsp.Mac(s, x[i0-i], interp13[frac+k])
		s = dsp.Mac(s, x[i0+1+i], interp13[UpSamp-frac+k])
	}
	return s
}
