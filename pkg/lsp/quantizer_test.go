package lsp

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"celp-codec/pkg/lpc"
)

func assertStable(t *testing.T, lsf [Order]float64) {
	t.Helper()
	assert.GreaterOrEqual(t, lsf[0], LowLimit)
	assert.LessOrEqual(t, lsf[Order-1], HighLimit)
	for j := 1; j < Order; j++ {
		assert.Greater(t, lsf[j], lsf[j-1], "lsf not increasing at %d: %v", j, lsf)
		assert.GreaterOrEqual(t, lsf[j]-lsf[j-1], MinGap-1e-9, "gap too small at %d", j)
	}
}

func uniformLSF() [Order]float64 {
	var lsf [Order]float64
	for j := range lsf {
		lsf[j] = math.Pi * float64(j+1) / float64(Order+1)
	}
	return lsf
}

func TestQuantizeStabilityAdversarial(t *testing.T) {
	nan := math.NaN()
	testCases := []struct {
		name string
		lsf  [Order]float64
	}{
		{"uniform", uniformLSF()},
		{"all zero", [Order]float64{}},
		{"all pi", [Order]float64{math.Pi, math.Pi, math.Pi, math.Pi, math.Pi, math.Pi, math.Pi, math.Pi, math.Pi, math.Pi}},
		{"descending", [Order]float64{3.1, 2.8, 2.5, 2.2, 1.9, 1.6, 1.3, 1.0, 0.7, 0.4}},
		{"low boundary cluster", [Order]float64{0.001, 0.002, 0.003, 0.004, 0.005, 0.006, 0.007, 0.008, 0.009, 0.01}},
		{"high boundary cluster", [Order]float64{3.13, 3.131, 3.132, 3.133, 3.134, 3.135, 3.136, 3.137, 3.138, 3.139}},
		{"pairs", [Order]float64{0.3, 0.3001, 0.9, 0.9001, 1.5, 1.5001, 2.1, 2.1001, 2.7, 2.7001}},
		{"not a number", [Order]float64{nan, nan, nan, nan, nan, nan, nan, nan, nan, nan}},
		{"huge", [Order]float64{1e300, -1e300, 1e300, -1e300, 1e300, -1e300, 1e300, -1e300, 1e300, -1e300}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q := NewQuantizer()
			d := NewDequantizer()
			for frame := 0; frame < 6; frame++ {
				idx, lsfq := q.QuantizeLSF(tc.lsf)
				assertStable(t, lsfq)

				dec := d.Dequantize(idx, false)
				want := lpc.LSFToLSP(lsfq)
				assert.Equal(t, want, dec, "decoder out of sync at frame %d", frame)
			}
		})
	}
}

func TestQuantizeStabilityRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	q := NewQuantizer()
	d := NewDequantizer()

	for frame := 0; frame < 500; frame++ {
		var lsf [Order]float64
		for j := range lsf {
			lsf[j] = rng.Float64() * math.Pi
		}
		if frame%2 == 0 {
			s := lsf[:]
			sort.Float64s(s)
		}

		idx, lsfq := q.QuantizeLSF(lsf)
		assertStable(t, lsfq)

		mode, l1, l2, l3 := idx.Split()
		require.Contains(t, []int{0, 1}, mode)
		require.Less(t, l1, NC0)
		require.Less(t, l2, NC1)
		require.Less(t, l3, NC1)

		assert.Equal(t, lpc.LSFToLSP(lsfq), d.Dequantize(idx, false))
	}
}

func TestQuantizeTracksInput(t *testing.T) {
	target := [Order]float64{0.25, 0.45, 0.8, 1.1, 1.4, 1.7, 2.0, 2.3, 2.6, 2.85}
	q := NewQuantizer()
	var lsfq [Order]float64
	for i := 0; i < 8; i++ {
		_, lsfq = q.QuantizeLSF(target)
	}
	for j := range target {
		assert.InDelta(t, target[j], lsfq[j], 0.2, "lsf[%d]", j)
	}
}

func TestDequantizeErasure(t *testing.T) {
	q := NewQuantizer()
	d := NewDequantizer()
	lsf := [Order]float64{0.25, 0.45, 0.8, 1.1, 1.4, 1.7, 2.0, 2.3, 2.6, 2.85}

	idx, _ := q.QuantizeLSF(lsf)
	good := d.Dequantize(idx, false)

	before := d.mem
	concealed := d.Dequantize(Indices{}, true)
	assert.Equal(t, good, concealed)
	assert.NotEqual(t, before, d.mem, "erasure must advance the predictor memory")
	assert.Equal(t, before.prev[0], d.mem.prev[1])
}

func TestResetRestoresMemory(t *testing.T) {
	q := NewQuantizer()
	fresh := q.mem
	q.QuantizeLSF([Order]float64{0.25, 0.45, 0.8, 1.1, 1.4, 1.7, 2.0, 2.3, 2.6, 2.85})
	assert.NotEqual(t, fresh, q.mem)
	q.Reset()
	assert.Equal(t, fresh, q.mem)
	assert.InDelta(t, 0.285599, q.mem.prev[3][0], 1e-6)
	assert.InDelta(t, 2.855993, q.mem.prev[3][9], 1e-6)
}

func TestSIDRoundTrip(t *testing.T) {
	lsf := [Order]float64{0.3, 0.5, 0.9, 1.2, 1.5, 1.8, 2.1, 2.4, 2.7, 2.9}
	l1, l2, lsfq := QuantizeSID(lsf)
	assertStable(t, lsfq)
	assert.Equal(t, lsfq, DecodeSID(l1, l2))
	assert.Less(t, l1, NC0)
	assert.Less(t, l2, NC1)
}

func TestCodebookOrdering(t *testing.T) {
	for i := 0; i < NC0; i++ {
		for j := 1; j < Order; j++ {
			require.Greater(t, codebook1[i][j], codebook1[i][j-1], "entry %d", i)
		}
	}
	for m := 0; m < Modes; m++ {
		for j := 0; j < Order; j++ {
			assert.Greater(t, predSum[m][j], 0.0)
		}
	}
}
