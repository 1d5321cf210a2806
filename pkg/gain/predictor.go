// Package gain quantizes the adaptive and fixed codebook gains jointly. The
// fixed codebook gain is predicted from the energy of past quantized
// innovations, so only a correction factor is transmitted. All of the
// prediction and the codebook search run on the fixed-point kernel.
package gain

import (
	"math"

	"celp-codec/pkg/basicop"
)

const (
	// PredOrder is the number of past energies the predictor uses.
	PredOrder = 4
	// SubframeSize is the innovation length.
	SubframeSize = 40

	// pastFloor is -14 dB in Q10, the reset value of the past energies.
	pastFloor int16 = -14336
	// meanEnergyQ14 is 36 dB plus 10*log10(SubframeSize) in Q14.
	meanEnergyQ14 int32 = 852306
)

// Predictor holds the quantized innovation energies of the last four
// subframes in dB (Q10), most recent first.
type Predictor struct {
	past [PredOrder]int16
}

// Reset restores the -14 dB floor.
func (p *Predictor) Reset() {
	for i := range p.past {
		p.past[i] = pastFloor
	}
}

// Past returns the stored energies in dB.
func (p *Predictor) Past() [PredOrder]float64 {
	var out [PredOrder]float64
	for i, v := range p.past {
		out[i] = float64(v) / 1024
	}
	return out
}

// Predict returns the predicted innovation gain for code as a Q15 style
// mantissa and exponent: gcode0 = mant * 2^-exp, with mant in
// [16384, 32767].
func (p *Predictor) Predict(code []float64) (mant, exp int16) {
	var cq [SubframeSize]int16
	for i := range cq {
		cq[i] = basicop.Saturate(int32(math.Round(code[i] * 4096)))
	}

	// sum(code^2) = ener * 2^(q-55) with code in Q12
	ener, q := basicop.DotProduct12(cq[:], cq[:])
	e, f := basicop.Log2(ener)
	e = basicop.Add(e, basicop.Sub(q, 55))

	// mean energy - 10*log10(sum(code^2)/40), Q14 then Q24
	acc := basicop.Mpy32x16(e, f, -24660)
	acc = basicop.LAdd(acc, meanEnergyQ14)
	acc = basicop.LShl(acc, 10)
	for i := 0; i < PredOrder; i++ {
		acc = basicop.LMac(acc, predCoeff[i], p.past[i])
	}
	db := basicop.ExtractH(acc) // Q8

	// 10^(db/20) = 2^(0.166*db)
	acc = basicop.LMult(db, 5443)
	acc = basicop.LShr(acc, 8)
	hi, lo := basicop.LExtract(acc)
	mant = basicop.ExtractL(basicop.Pow2(14, lo))
	exp = basicop.Sub(14, hi)
	return mant, exp
}

// Update pushes 20*log10 of the quantized correction factor (Q13).
func (p *Predictor) Update(gamma int32) {
	p.shift()
	e, f := basicop.Log2(gamma)
	acc := basicop.LComp(basicop.Sub(e, 13), f)
	tmp := basicop.ExtractH(basicop.LShl(acc, 13))
	p.past[0] = basicop.Mult(tmp, 24660)
}

// UpdateErasure pushes the average of the stored energies less 4 dB,
// floored at -14 dB.
func (p *Predictor) UpdateErasure() {
	var sum int32
	for _, v := range p.past {
		sum = basicop.LAdd(sum, int32(v))
	}
	avg := basicop.Sub(basicop.ExtractL(basicop.LShr(sum, 2)), 4096)
	if avg < pastFloor {
		avg = pastFloor
	}
	p.shift()
	p.past[0] = avg
}

func (p *Predictor) shift() {
	for i := PredOrder - 1; i > 0; i-- {
		p.past[i] = p.past[i-1]
	}
}

// Float returns mant * 2^-exp.
func Float(mant, exp int16) float64 {
	return math.Ldexp(float64(mant), -int(exp))
}
