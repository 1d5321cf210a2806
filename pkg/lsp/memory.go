package lsp

import (
	"math"

	"celp-codec/pkg/dsp"
	"celp-codec/pkg/lpc"
)

const (
	Order = lpc.Order
	NC    = lpc.NC
	// MANP is the MA prediction order.
	MANP = 4
	// Modes is the number of MA predictor sets.
	Modes = 2

	NC0Bits = 7
	NC0     = 1 << NC0Bits
	NC1Bits = 5
	NC1     = 1 << NC1Bits

	gap1 = 0.0012
	gap2 = 0.0006
	gap3 = 0.0392

	// LowLimit and HighLimit bound every quantized frequency (radians).
	LowLimit  = 0.005
	HighLimit = 3.135
	// MinGap is the minimum distance between neighbouring quantized
	// frequencies.
	MinGap = gap3
)

// Memory is the MA predictor state: the last MANP second stage
// reconstructions, most recent first.
type Memory struct {
	prev [MANP][Order]float64
}

// NewMemory returns a memory holding the uniform reset spread.
func NewMemory() *Memory {
	m := &Memory{}
	m.Reset()
	return m
}

// Reset fills every row with pi*(j+1)/(M+1).
func (m *Memory) Reset() {
	for k := 0; k < MANP; k++ {
		for j := 0; j < Order; j++ {
			m.prev[k][j] = math.Pi * float64(j+1) / float64(Order+1)
		}
	}
}

// extract removes the mode's MA prediction from lsf.
func (m *Memory) extract(lsf [Order]float64, mode int) [Order]float64 {
	var res [Order]float64
	for j := 0; j < Order; j++ {
		t := lsf[j]
		for k := 0; k < MANP; k++ {
			t = dsp.Msu(t, predictors[mode][k][j], m.prev[k][j])
		}
		res[j] = float64(t * predSumInv[mode][j])
	}
	return res
}

// compose adds the mode's MA prediction back to buf.
func (m *Memory) compose(buf [Order]float64, mode int) [Order]float64 {
	var out [Order]float64
	for j := 0; j < Order; j++ {
		t := float64(buf[j] * predSum[mode][j])
		for k := 0; k < MANP; k++ {
			t = dsp.Mac(t, predictors[mode][k][j], m.prev[k][j])
		}
		out[j] = t
	}
	return out
}

// push shifts buf into the memory.
func (m *Memory) push(buf [Order]float64) {
	for k := MANP - 1; k > 0; k-- {
		m.prev[k] = m.prev[k-1]
	}
	m.prev[0] = buf
}

// PushLSF keeps the memory aligned with a frequency vector that was not
// produced by the quantizer (concealment, comfort noise): the residual that
// would have produced lsf under mode is shifted in.
func (m *Memory) PushLSF(lsf [Order]float64, mode int) {
	m.push(m.extract(lsf, mode))
}

// expand pushes apart neighbours in buf[from:to] closer than gap.
func expand(buf *[Order]float64, from, to int, gap float64) {
	for j := from; j < to; j++ {
		diff := buf[j-1] - buf[j]
		tmp := (diff + gap) * 0.5
		if tmp > 0 {
			buf[j-1] -= tmp
			buf[j] += tmp
		}
	}
}

// Stabilize orders the vector and enforces the frequency bounds and the
// minimum gap. The result is strictly increasing for any finite input.
func Stabilize(buf *[Order]float64) {
	for j := 0; j < Order; j++ {
		if math.IsNaN(buf[j]) {
			buf[j] = math.Pi * float64(j+1) / float64(Order+1)
		}
	}
	for j := 0; j < Order-1; j++ {
		if buf[j+1] < buf[j] {
			buf[j], buf[j+1] = buf[j+1], buf[j]
		}
	}
	if buf[0] < LowLimit {
		buf[0] = LowLimit
	}
	for j := 0; j < Order-1; j++ {
		if buf[j+1]-buf[j] < gap3 {
			buf[j+1] = buf[j] + gap3
		}
	}
	if buf[Order-1] > HighLimit {
		buf[Order-1] = HighLimit
	}
	// the ceiling can undo the forward pass near the top
	for j := Order - 2; j >= 0; j-- {
		if buf[j+1]-buf[j] < gap3 {
			buf[j] = buf[j+1] - gap3
		}
	}
}

// reconstruct rebuilds the quantized frequencies of one index set and
// advances the memory.
func reconstruct(m *Memory, mode, l1, l2, l3 int) [Order]float64 {
	var buf [Order]float64
	for j := 0; j < NC; j++ {
		buf[j] = codebook1[l1][j] + codebook2[l2][j]
	}
	for j := NC; j < Order; j++ {
		buf[j] = codebook1[l1][j] + codebook2[l3][j]
	}
	expand(&buf, 1, Order, gap1)
	expand(&buf, 1, Order, gap2)

	lsf := m.compose(buf, mode)
	m.push(buf)
	Stabilize(&lsf)
	return lsf
}
