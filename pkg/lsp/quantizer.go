// Package lsp quantizes line spectral frequencies with a two stage vector
// quantizer and switched MA prediction, and reconstructs them on the
// decoder side.
package lsp

import (
	"math"

	"celp-codec/pkg/dsp"
	"celp-codec/pkg/lpc"
)

// Indices are the two transmitted LSP words: mode<<7 | L1 and L2<<5 | L3.
type Indices [2]int

// Split returns the mode and the three codebook indices.
func (idx Indices) Split() (mode, l1, l2, l3 int) {
	mode = (idx[0] >> NC0Bits) & 1
	l1 = idx[0] & (NC0 - 1)
	l2 = (idx[1] >> NC1Bits) & (NC1 - 1)
	l3 = idx[1] & (NC1 - 1)
	return mode, l1, l2, l3
}

// Quantizer is the encoder side of the LSP quantizer.
type Quantizer struct {
	mem Memory
}

// NewQuantizer returns a quantizer with a freshly reset memory.
func NewQuantizer() *Quantizer {
	q := &Quantizer{}
	q.Reset()
	return q
}

// Reset restores the initial predictor memory.
func (q *Quantizer) Reset() {
	q.mem.Reset()
}

// Memory exposes the predictor memory so silence frames can keep it aligned
// with the decoder.
func (q *Quantizer) Memory() *Memory {
	return &q.mem
}

// Quantize encodes a cosine domain LSP vector and returns the indices and
// the quantized LSP vector (cosine domain).
func (q *Quantizer) Quantize(lsp [Order]float64) (Indices, [Order]float64) {
	lsf := lpc.LSPToLSF(lsp)
	idx, lsfq := q.QuantizeLSF(lsf)
	return idx, lpc.LSFToLSP(lsfq)
}

// QuantizeLSF is Quantize on frequencies in radians.
func (q *Quantizer) QuantizeLSF(lsf [Order]float64) (Indices, [Order]float64) {
	w := weights(lsf)

	var (
		cand, low, high [Modes]int
		dist            [Modes]float64
	)
	for mode := 0; mode < Modes; mode++ {
		res := q.mem.extract(lsf, mode)
		cand[mode] = preSelect(&res)
		cb := &codebook1[cand[mode]]

		low[mode] = selectHalf(&res, cb, &w, 0, NC)
		var buf [Order]float64
		for j := 0; j < NC; j++ {
			buf[j] = cb[j] + codebook2[low[mode]][j]
		}
		expand(&buf, 1, NC, gap1)

		high[mode] = selectHalf(&res, cb, &w, NC, Order)
		for j := NC; j < Order; j++ {
			buf[j] = cb[j] + codebook2[high[mode]][j]
		}
		expand(&buf, NC, Order, gap1)
		expand(&buf, 1, Order, gap2)

		dist[mode] = totalDistortion(&w, &buf, &res, &predSum[mode])
	}

	mode := 0
	if dist[1] < dist[0] {
		mode = 1
	}

	idx := Indices{
		mode<<NC0Bits | cand[mode],
		low[mode]<<NC1Bits | high[mode],
	}
	return idx, reconstruct(&q.mem, mode, cand[mode], low[mode], high[mode])
}

// weights emphasizes coefficients whose neighbours are close.
func weights(lsf [Order]float64) [Order]float64 {
	var buf, w [Order]float64
	buf[0] = lsf[1] - math.Pi*0.04 - 1
	for i := 1; i < Order-1; i++ {
		buf[i] = lsf[i+1] - lsf[i-1] - 1
	}
	buf[Order-1] = math.Pi*0.92 - lsf[Order-2] - 1

	for i := 0; i < Order; i++ {
		if buf[i] > 0 {
			w[i] = 1
		} else {
			w[i] = dsp.Mac(1, float64(buf[i]*buf[i]), 10)
		}
	}
	w[4] *= 1.2
	w[5] *= 1.2
	return w
}

// preSelect returns the nearest first stage entry (unweighted).
func preSelect(res *[Order]float64) int {
	cand := 0
	dmin := math.MaxFloat64
	for i := 0; i < NC0; i++ {
		var d float64
		for j := 0; j < Order; j++ {
			t := res[j] - codebook1[i][j]
			d = dsp.Mac(d, t, t)
		}
		if d < dmin {
			dmin = d
			cand = i
		}
	}
	return cand
}

// selectHalf searches the second stage for coefficients [from, to).
func selectHalf(res, cb, w *[Order]float64, from, to int) int {
	var buf [Order]float64
	for j := from; j < to; j++ {
		buf[j] = res[j] - cb[j]
	}

	index := 0
	dmin := math.MaxFloat64
	for k := 0; k < NC1; k++ {
		var d float64
		for j := from; j < to; j++ {
			t := buf[j] - codebook2[k][j]
			d = dsp.Mac(d, w[j], float64(t*t))
		}
		if d < dmin {
			dmin = d
			index = k
		}
	}
	return index
}

func totalDistortion(w, buf, res, sum *[Order]float64) float64 {
	var d float64
	for j := 0; j < Order; j++ {
		t := float64((buf[j] - res[j]) * sum[j])
		d = dsp.Mac(d, w[j], float64(t*t))
	}
	return d
}

// Dequantizer is the decoder side of the LSP quantizer.
type Dequantizer struct {
	mem      Memory
	prevLSF  [Order]float64
	prevMode int
}

// NewDequantizer returns a dequantizer in its initial state.
func NewDequantizer() *Dequantizer {
	d := &Dequantizer{}
	d.Reset()
	return d
}

// Reset restores the initial predictor memory and the concealment vector.
func (d *Dequantizer) Reset() {
	d.mem.Reset()
	d.prevLSF = d.mem.prev[0]
	d.prevMode = 0
}

// Memory exposes the predictor memory.
func (d *Dequantizer) Memory() *Memory {
	return &d.mem
}

// Dequantize reconstructs the cosine domain LSP vector. An erased frame
// repeats the previous frequencies and shifts the matching residual into
// the memory.
func (d *Dequantizer) Dequantize(idx Indices, erased bool) [Order]float64 {
	if erased {
		d.mem.PushLSF(d.prevLSF, d.prevMode)
		return lpc.LSFToLSP(d.prevLSF)
	}
	mode, l1, l2, l3 := idx.Split()
	lsf := reconstruct(&d.mem, mode, l1, l2, l3)
	d.prevLSF = lsf
	d.prevMode = mode
	return lpc.LSFToLSP(lsf)
}

// Hold records lsf as the vector to repeat on the next erasure.
func (d *Dequantizer) Hold(lsf [Order]float64) {
	d.prevLSF = lsf
}
