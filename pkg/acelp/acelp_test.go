package acelp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(decay float64) []float64 {
	h := make([]float64, SubframeSize)
	h[0] = 1
	for i := 1; i < SubframeSize; i++ {
		h[i] = h[i-1] * decay
	}
	return h
}

func filtered(code [SubframeSize]float64, h []float64) []float64 {
	y := make([]float64, SubframeSize)
	for n := 0; n < SubframeSize; n++ {
		for i := 0; i <= n; i++ {
			y[n] += code[i] * h[n-i]
		}
	}
	return y
}

func TestSearchRecoversPulses(t *testing.T) {
	testCases := []struct {
		name      string
		positions [Pulses]int
		signs     [Pulses]float64
		decay     float64
	}{
		{"delta response", [Pulses]int{5, 11, 22, 38}, [Pulses]float64{1, -1, 1, -1}, 0},
		{"decaying response", [Pulses]int{0, 16, 27, 39}, [Pulses]float64{-1, 1, 1, 1}, 0.5},
		{"last track odd slot", [Pulses]int{35, 1, 7, 4}, [Pulses]float64{1, 1, -1, -1}, 0.3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var code [SubframeSize]float64
			for k, p := range tc.positions {
				code[p] = 1000 * tc.signs[k]
			}
			h := response(tc.decay)
			xn := filtered(code, h)

			res := Search(xn, h, 60, 0.5)
			assert.Equal(t, tc.positions, res.Positions)
			for k, p := range tc.positions {
				assert.Equal(t, tc.signs[k], res.Code[p], "pulse %d", k)
				assert.Equal(t, tc.signs[k] > 0, (res.Signs>>k)&1 == 1)
			}

			assert.Less(t, res.Index, 1<<IndexBits)
			assert.Less(t, res.Signs, 1<<SignBits)
			assert.Equal(t, res.Code, Decode(res.Index, res.Signs))

			want := filtered(res.Code, h)
			for n := range want {
				assert.InDelta(t, want[n], res.Filtered[n], 1e-9)
			}
		})
	}
}

func TestSearchLeavesResponseUntouched(t *testing.T) {
	h := response(0.7)
	orig := append([]float64(nil), h...)
	xn := filtered(Decode(0x1abc, 0x5), h)

	Search(xn, h, 25, 0.8)
	assert.Equal(t, orig, h)
}

func TestSearchSharpensShortLags(t *testing.T) {
	h := response(0.4)
	var code [SubframeSize]float64
	code[0], code[6], code[12], code[18] = 1, 1, 1, 1
	xn := filtered(code, h)

	res := Search(xn, h, 20, 0.5)
	plain := Decode(res.Index, res.Signs)
	for i := 0; i < 20; i++ {
		assert.Equal(t, plain[i], res.Code[i])
	}
	for i := 20; i < SubframeSize; i++ {
		assert.InDelta(t, plain[i]+0.5*res.Code[i-20], res.Code[i], 1e-12)
	}
}

func TestPositionCoding(t *testing.T) {
	for index := 0; index < 1<<IndexBits; index++ {
		pos := decodePositions(index)
		require.Equal(t, 0, pos[0]%step)
		require.Equal(t, 1, pos[1]%step)
		require.Equal(t, 2, pos[2]%step)
		require.Contains(t, []int{3, 4}, pos[3]%step)
		require.Equal(t, index, encodePositions(pos))
	}
}

func TestZeroTargetIsStillValid(t *testing.T) {
	res := Search(make([]float64, SubframeSize), response(0.5), 80, 0.2)
	assert.Equal(t, [Pulses]int{0, 1, 2, 3}, res.Positions)
	nonzero := 0
	for _, v := range res.Code {
		if v != 0 {
			nonzero++
		}
	}
	assert.Equal(t, Pulses, nonzero)
}
