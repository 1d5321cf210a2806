// Package postfilter implements the adaptive post-filter of the decoder
// and the fixed high-pass filters applied before analysis and after
// synthesis.
package postfilter

import (
	"math"

	"celp-codec/pkg/dsp"
	"celp-codec/pkg/lpc"
	"celp-codec/pkg/pitch"
)

const (
	// GammaNum and GammaDen weight the formant post-filter
	// A(z/GammaNum)/A(z/GammaDen).
	GammaNum = 0.55
	GammaDen = 0.70
	// GammaPitch is the long term post-filter gain factor.
	GammaPitch = 0.5
	// Mu scales the tilt compensation.
	Mu = 0.8
	// AGCFactor smooths the output gain.
	AGCFactor = 0.9
	// ImpulseLen is the truncated impulse response length used for the
	// tilt estimate.
	ImpulseLen = 22

	subframe = pitch.SubframeSize
	order    = dsp.Order
)

// PostFilter holds the memories of the formant, long term and tilt stages
// and the AGC gain.
type PostFilter struct {
	// res is the numerator residual with PitMax samples of history.
	res      [pitch.PitMax + subframe]float64
	synHist  [order]float64
	synMem   [order]float64
	preMem   float64
	pastGain float64
}

// New returns a post-filter at rest.
func New() *PostFilter {
	p := &PostFilter{}
	p.Reset()
	return p
}

// Reset clears every memory and sets the AGC gain to one.
func (p *PostFilter) Reset() {
	*p = PostFilter{pastGain: 1}
}

// Process filters one frame of synthesized speech. a holds the decoded
// filter of each subframe and lags the integer pitch lag of each subframe.
// The result is written to out, which may not alias syn.
func (p *PostFilter) Process(syn []float64, a [2]lpc.Coeffs, lags [2]int, out []float64) {
	var (
		buf   [order + 2*subframe]float64
		apNum [order + 1]float64
		apDen [order + 1]float64
		pst   [subframe]float64
	)
	copy(buf[:order], p.synHist[:])
	copy(buf[order:], syn[:2*subframe])

	for sf := 0; sf < 2; sf++ {
		off := sf * subframe
		dsp.WeightAz(a[sf][:], GammaNum, apNum[:])
		dsp.WeightAz(a[sf][:], GammaDen, apDen[:])

		res := p.res[pitch.PitMax:]
		dsp.Residu(apNum[:], buf[:], order+off, res, subframe)

		p.longTerm(lags[sf], pst[:])
		p.tilt(apNum[:], apDen[:], pst[:])

		dsp.SynFilt(apDen[:], pst[:], out[off:], subframe, p.synMem[:], true)
		p.agc(syn[off:off+subframe], out[off:off+subframe])

		copy(p.res[:pitch.PitMax], p.res[subframe:])
	}
	copy(p.synHist[:], buf[2*subframe:])
}

// longTerm applies the integer lag harmonic filter around lag to the
// current residual.
func (p *PostFilter) longTerm(lag int, out []float64) {
	sig := p.res[:]
	cur := pitch.PitMax

	lo := lag - 3
	hi := lag + 3
	if hi > pitch.PitMax {
		hi = pitch.PitMax
	}
	if lo < 1 {
		lo = 1
	}

	best, bestCorr := lo, math.Inf(-1)
	for t := hi; t >= lo; t-- {
		var c float64
		for i := 0; i < subframe; i++ {
			c = dsp.Mac(c, sig[cur+i], sig[cur+i-t])
		}
		if c >= bestCorr {
			best, bestCorr = t, c
		}
	}

	var en, en0 float64
	for i := 0; i < subframe; i++ {
		en = dsp.Mac(en, sig[cur+i-best], sig[cur+i-best])
		en0 = dsp.Mac(en0, sig[cur+i], sig[cur+i])
	}
	en += 0.5
	en0 += 0.5

	cmax := math.Max(bestCorr, 0)
	// less than 3 dB of prediction gain
	if float64(cmax*cmax) < float64(0.5*en*en0) {
		copy(out, sig[cur:cur+subframe])
		return
	}

	var g0, g float64
	if cmax > en {
		g0 = 1 / (1 + GammaPitch)
		g = GammaPitch / (1 + GammaPitch)
	} else {
		cmax *= GammaPitch
		g0 = en / (en + cmax)
		g = cmax / (en + cmax)
	}
	for i := 0; i < subframe; i++ {
		out[i] = dsp.Mac(float64(g0*sig[cur+i]), g, sig[cur+i-best])
	}
}

// tilt compensates the spectral tilt of the formant filter with a first
// order FIR driven by the normalized first correlation of its truncated
// impulse response.
func (p *PostFilter) tilt(apNum, apDen []float64, sig []float64) {
	var h [ImpulseLen]float64
	copy(h[:], apNum)
	var zero [order]float64
	dsp.SynFilt(apDen, h[:], h[:], ImpulseLen, zero[:], false)

	rh0 := dsp.Energy(h[:], ImpulseLen)
	rh1 := dsp.Dot(h[:], h[1:], ImpulseLen-1)

	k := 0.0
	if rh1 > 0 {
		k = Mu * rh1 / rh0
	}

	prev := p.preMem
	p.preMem = sig[subframe-1]
	for i := subframe - 1; i > 0; i-- {
		sig[i] = dsp.Msu(sig[i], k, sig[i-1])
	}
	sig[0] = dsp.Msu(sig[0], k, prev)
}

// agc scales out so that its energy follows that of in, with the gain
// smoothed sample by sample.
func (p *PostFilter) agc(in, out []float64) {
	gainOut := dsp.Energy(out, len(out))
	if gainOut == 0 {
		p.pastGain = 0
		return
	}
	gainIn := dsp.Energy(in, len(in))
	g0 := 0.0
	if gainIn != 0 {
		g0 = (1 - AGCFactor) * math.Sqrt(gainIn/gainOut)
	}
	g := p.pastGain
	for i := range out {
		g = dsp.Mac(g0, g, AGCFactor)
		out[i] *= g
	}
	p.pastGain = g
}
