package codec

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"celp-codec/pkg/bitstream"
	"celp-codec/pkg/gain"
)

func TestEncodeFrameLength(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)

	testCases := []struct {
		name    string
		samples int
		wantErr bool
	}{
		{"empty", 0, true},
		{"short", FrameSize - 1, true},
		{"long", FrameSize + 1, true},
		{"packet", 2 * FrameSize, true},
		{"frame", FrameSize, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := enc.EncodeFrame(make([]int16, tc.samples))
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFrameLength)
				assert.Nil(t, f)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, bitstream.Speech, f.Type)
			assert.Equal(t, bitstream.SpeechBits, f.Size())
		})
	}
}

func TestEncodeDeterministic(t *testing.T) {
	a, err := NewEncoder()
	require.NoError(t, err)
	b, err := NewEncoder(WithSessionID("other"))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(3))
	var first [][]byte
	for k := 0; k < 30; k++ {
		pcm := speechLike(rng, k*FrameSize, FrameSize)
		fa, err := a.EncodeFrame(pcm)
		require.NoError(t, err)
		fb, err := b.EncodeFrame(pcm)
		require.NoError(t, err)
		assert.Equal(t, fa.MarshalSerial(), fb.MarshalSerial(), "frame %d", k)
		first = append(first, fa.MarshalSerial())
	}

	// a reset session reproduces the same stream
	a.Reset()
	rng = rand.New(rand.NewSource(3))
	for k := 0; k < 30; k++ {
		f, err := a.EncodeFrame(speechLike(rng, k*FrameSize, FrameSize))
		require.NoError(t, err)
		assert.Equal(t, first[k], f.MarshalSerial(), "frame %d", k)
	}
}

func TestEncoderDecoderStayAligned(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)
	dec, err := NewDecoder()
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(11))
	for k := 0; k < 40; k++ {
		f, err := enc.EncodeFrame(speechLike(rng, k*FrameSize, FrameSize))
		require.NoError(t, err)
		_, err = dec.DecodeFrame(f, false)
		require.NoError(t, err)

		require.Equal(t, enc.LastLags(), dec.LastLags(), "frame %d", k)
		require.InDeltaSlice(t, enc.oldExc[:], dec.oldExc[:], 1e-6, "frame %d", k)
		require.InDeltaSlice(t, enc.lspOldQ[:], dec.lspOld[:], 1e-12, "frame %d", k)
	}
}

func TestEncodeLoudInputStaysBounded(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)
	dec, err := NewDecoder()
	require.NoError(t, err)

	// full scale square wave drives the pitch gain towards its limit
	for k := 0; k < 40; k++ {
		pcm := make([]int16, FrameSize)
		for i := range pcm {
			if (k*FrameSize+i)/20%2 == 0 {
				pcm[i] = 32767
			} else {
				pcm[i] = -32768
			}
		}
		f, err := enc.EncodeFrame(pcm)
		require.NoError(t, err)
		out, err := dec.DecodeFrame(f, false)
		require.NoError(t, err)
		require.Len(t, out, FrameSize)
	}
	for i, v := range dec.oldExc {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "exc[%d]", i)
	}
}

func TestEncoderTamingLimitsPitchGain(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)

	// strongly voiced pulse train
	voiced := func(k int) []int16 {
		pcm := make([]int16, FrameSize)
		for i := range pcm {
			if (k*FrameSize+i)%57 == 0 {
				pcm[i] = 16000
			}
		}
		return pcm
	}

	code := make([]float64, SubframeSize)
	for _, pos := range []int{0, 11, 22, 33} {
		code[pos] = 1
	}
	firstGain := func(f *bitstream.Frame) float64 {
		t.Helper()
		prm, err := f.Params()
		require.NoError(t, err)
		gp, _ := gain.NewDequantizer().Decode(prm[6], code, false)
		return gp
	}

	for k := 0; k < 10; k++ {
		_, err := enc.EncodeFrame(voiced(k))
		require.NoError(t, err)
	}

	for k := 10; k < 20; k++ {
		// error growth as if every recent subframe had used a gain of 1.2
		for i := 0; i < 200; i++ {
			enc.taming.Update(1.2, 40)
		}
		require.Greater(t, enc.taming.Worst(), gain.ThreshErr)
		before := enc.taming.Worst()

		f, err := enc.EncodeFrame(voiced(k))
		require.NoError(t, err)
		assert.True(t, enc.TamingActive(), "frame %d", k)
		assert.Less(t, firstGain(f), 16382.0/16384, "frame %d", k)
		// a gain below one can only shrink the estimate
		assert.LessOrEqual(t, enc.taming.Worst(), before, "frame %d", k)
	}

	// a fresh estimate leaves the first frame alone
	enc.Reset()
	_, err = enc.EncodeFrame(voiced(0))
	require.NoError(t, err)
	assert.False(t, enc.TamingActive())
	assert.LessOrEqual(t, enc.taming.Worst(), gain.ThreshErr)
}
