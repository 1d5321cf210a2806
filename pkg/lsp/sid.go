package lsp

import (
	"math"

	"celp-codec/pkg/dsp"
)

// SID frames carry the comfort noise envelope without prediction: a first
// stage index and one second stage index applied to the whole vector.
const (
	SIDBits1 = NC0Bits
	SIDBits2 = NC1Bits
)

// QuantizeSID returns the silence descriptor indices for lsf and the
// frequencies the decoder will rebuild from them.
func QuantizeSID(lsf [Order]float64) (l1, l2 int, lsfq [Order]float64) {
	w := weights(lsf)
	l1 = preSelect(&lsf)

	dmin := math.MaxFloat64
	for k := 0; k < NC1; k++ {
		var d float64
		for j := 0; j < Order; j++ {
			t := lsf[j] - codebook1[l1][j] - codebook2[k][j]
			d = dsp.Mac(d, w[j], float64(t*t))
		}
		if d < dmin {
			dmin = d
			l2 = k
		}
	}
	return l1, l2, DecodeSID(l1, l2)
}

// DecodeSID rebuilds the silence descriptor frequencies.
func DecodeSID(l1, l2 int) [Order]float64 {
	l1 &= NC0 - 1
	l2 &= NC1 - 1
	var buf [Order]float64
	for j := 0; j < Order; j++ {
		buf[j] = codebook1[l1][j] + codebook2[l2][j]
	}
	expand(&buf, 1, Order, gap1)
	expand(&buf, 1, Order, gap2)
	Stabilize(&buf)
	return buf
}
