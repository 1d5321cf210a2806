package gain

import (
	"math"

	"celp-codec/pkg/basicop"
	"celp-codec/pkg/dsp"
)

const (
	NCode1Bits = 3
	NCode1     = 1 << NCode1Bits
	NCode2Bits = 4
	NCode2     = 1 << NCode2Bits
	// IndexBits is the width of the transmitted gain index.
	IndexBits = NCode1Bits + NCode2Bits

	// gp0999 is the largest pitch gain (Q14) allowed while taming.
	gp0999 int16 = 16382

	// Erasure concealment attenuation.
	erasedPitchFactor = 0.9
	erasedPitchMax    = 0.9
	erasedCodeFactor  = 0.98
)

// Correlations returns the five coefficients of the gain error
//
//	E = c0*gp^2 + c1*gp + c2*gc^2 + c3*gc + c4*gp*gc
//
// where pitch holds c0 and c1 as returned by the pitch gain computation,
// y1 is the filtered adaptive vector and y2 the filtered innovation.
func Correlations(xn, y1, y2 []float64, pitch [2]float64) [5]float64 {
	return [5]float64{
		pitch[0],
		pitch[1],
		0.01 + dsp.Energy(y2, SubframeSize),
		-2 * (0.01 + dsp.Dot(xn, y2, SubframeSize)),
		2 * (0.01 + dsp.Dot(y1, y2, SubframeSize)),
	}
}

// Quantizer is the encoder side gain quantizer.
type Quantizer struct {
	pred Predictor
}

// NewQuantizer returns a quantizer with the energy history at its floor.
func NewQuantizer() *Quantizer {
	q := &Quantizer{}
	q.Reset()
	return q
}

// Reset restores the energy history.
func (q *Quantizer) Reset() {
	q.pred.Reset()
}

// Predictor exposes the energy history.
func (q *Quantizer) Predictor() *Predictor {
	return &q.pred
}

// Quantize searches the joint codebook for the pair minimizing the error
// described by coeff and returns the transmitted index with the quantized
// pitch and code gains. When tame is set entries with a pitch gain of
// 0.9999 or more are skipped.
func (q *Quantizer) Quantize(coeff [5]float64, code []float64, tame bool) (index int, gp, gc float64) {
	gcode0, expG := q.pred.Predict(code)

	// Scale factor of each product term, as a power of two.
	var mant, expMin [5]int16
	for i, c := range coeff {
		m, e := basicop.FromFloat(c)
		mant[i] = m
		expMin[i] = 15 - e
	}
	expMin[0] += 13
	expMin[1] += 14
	expMin[2] += 2*expG - 21
	expMin[3] += expG - 3
	expMin[4] += expG - 4

	eMin := expMin[0]
	for _, e := range expMin[1:] {
		if e < eMin {
			eMin = e
		}
	}

	// align the coefficients and keep them in double precision
	var hi, lo [5]int16
	for i := range coeff {
		acc := basicop.LShr(basicop.DepositH(mant[i]), expMin[i]-eMin)
		hi[i], lo[i] = basicop.LExtract(acc)
	}

	best1, best2 := 0, 0
	distMin := basicop.MaxInt32
	for i := 0; i < NCode1; i++ {
		for j := 0; j < NCode2; j++ {
			gPitch := basicop.Add(gbk1[i][0], gbk2[j][0])
			if tame && gPitch >= gp0999 {
				continue
			}
			gamma := basicop.ExtractL(basicop.LShr(int32(gbk1[i][1])+int32(gbk2[j][1]), 1))
			gCode := basicop.Mult(gcode0, gamma)
			g2Pitch := basicop.Mult(gPitch, gPitch)
			g2Code := basicop.Mult(gCode, gCode)
			gPitCod := basicop.Mult(gCode, gPitch)

			acc := basicop.Mpy32x16(hi[0], lo[0], g2Pitch)
			acc = basicop.LAdd(acc, basicop.Mpy32x16(hi[1], lo[1], gPitch))
			acc = basicop.LAdd(acc, basicop.Mpy32x16(hi[2], lo[2], g2Code))
			acc = basicop.LAdd(acc, basicop.Mpy32x16(hi[3], lo[3], gCode))
			acc = basicop.LAdd(acc, basicop.Mpy32x16(hi[4], lo[4], gPitCod))
			if acc < distMin {
				distMin = acc
				best1, best2 = i, j
			}
		}
	}

	gp, gc = applyPair(&q.pred, best1, best2, gcode0, expG)
	return map1[best1]*NCode2 + map2[best2], gp, gc
}

// applyPair converts a codebook pair into gains and advances the predictor.
func applyPair(pred *Predictor, i, j int, gcode0, expG int16) (gp, gc float64) {
	gp = float64(basicop.Add(gbk1[i][0], gbk2[j][0])) / 16384

	gbk12 := int32(gbk1[i][1]) + int32(gbk2[j][1]) // Q13
	gamma := basicop.ExtractL(basicop.LShr(gbk12, 1))
	gc = math.Ldexp(float64(basicop.LMult(gamma, gcode0)), -(int(expG) + 13))

	pred.Update(gbk12)
	return gp, gc
}

// Dequantizer is the decoder side gain quantizer. It remembers the last
// gains for erasure concealment.
type Dequantizer struct {
	pred   Predictor
	gp, gc float64
}

// NewDequantizer returns a dequantizer with the energy history at its
// floor.
func NewDequantizer() *Dequantizer {
	d := &Dequantizer{}
	d.Reset()
	return d
}

// Reset restores the energy history and forgets the last gains.
func (d *Dequantizer) Reset() {
	d.pred.Reset()
	d.gp, d.gc = 0, 0
}

// Predictor exposes the energy history.
func (d *Dequantizer) Predictor() *Predictor {
	return &d.pred
}

// Decode returns the gains of a received index. An erased frame attenuates
// the previous gains instead and ages the energy history.
func (d *Dequantizer) Decode(index int, code []float64, erased bool) (gp, gc float64) {
	if erased {
		d.gp = math.Min(d.gp*erasedPitchFactor, erasedPitchMax)
		d.gc *= erasedCodeFactor
		d.pred.UpdateErasure()
		return d.gp, d.gc
	}

	i := imap1[(index>>NCode2Bits)&(NCode1-1)]
	j := imap2[index&(NCode2-1)]
	gcode0, expG := d.pred.Predict(code)
	d.gp, d.gc = applyPair(&d.pred, i, j, gcode0, expG)
	return d.gp, d.gc
}

// Hold overrides the gains repeated by the next erasure.
func (d *Dequantizer) Hold(gp, gc float64) {
	d.gp, d.gc = gp, gc
}
