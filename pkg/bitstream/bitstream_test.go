package bitstream

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var speechParams = []int{0xa5, 0x3ff, 0x7f, 1, 0x1234, 0x9, 0x55, 0x1f, 0x0abc, 0x6, 0x2a}

func TestPackUnpack(t *testing.T) {
	testCases := []struct {
		name   string
		prm    []int
		layout []int
		bits   int
	}{
		{"speech", speechParams, SpeechLayout, SpeechBits},
		{"sid", []int{0x41, 0x1e, 0x9}, SIDLayout, SIDBits},
		{"zero speech", make([]int, len(SpeechLayout)), SpeechLayout, SpeechBits},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bits, err := Pack(tc.prm, tc.layout)
			require.NoError(t, err)
			require.Len(t, bits, tc.bits)
			for _, b := range bits {
				assert.True(t, b == Bit0 || b == Bit1)
			}

			prm, err := Unpack(bits, tc.layout)
			require.NoError(t, err)
			assert.Equal(t, tc.prm, prm)
		})
	}
}

func TestPackMSBFirst(t *testing.T) {
	bits, err := Pack([]int{0x41, 0x1e, 0x9}, SIDLayout)
	require.NoError(t, err)

	want := []uint16{
		Bit1, Bit0, Bit0, Bit0, Bit0, Bit0, Bit1,
		Bit1, Bit1, Bit1, Bit1, Bit0,
		Bit1, Bit0, Bit0, Bit1,
	}
	assert.Equal(t, want, bits)
}

func TestPackErrors(t *testing.T) {
	_, err := Pack([]int{1, 2}, SIDLayout)
	assert.ErrorIs(t, err, ErrParamCount)

	_, err = Unpack(make([]uint16, 10), SIDLayout)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestUnpackLostSymbols(t *testing.T) {
	bits, _ := Pack([]int{0x7f, 0x1f, 0xf}, SIDLayout)
	bits[0] = 0
	bits[8] = Bit0

	prm, err := Unpack(bits, SIDLayout)
	require.NoError(t, err)
	assert.Equal(t, []int{0x3f, 0x17, 0xf}, prm)
}

func TestSerialRoundTrip(t *testing.T) {
	speech, err := NewSpeechFrame(speechParams)
	require.NoError(t, err)
	sid, err := NewSIDFrame(SIDUpdate, []int{3, 4, 5})
	require.NoError(t, err)

	testCases := []struct {
		name  string
		frame *Frame
		size  int
	}{
		{"speech", speech, 4 + 2*SpeechBits},
		{"sid", sid, 4 + 2*SIDBits},
		{"no data", NewNoDataFrame(), 4},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw := tc.frame.MarshalSerial()
			require.Len(t, raw, tc.size)
			assert.Equal(t, []byte{0x21, 0x6b}, raw[:2])

			f, n, err := UnmarshalSerial(raw)
			require.NoError(t, err)
			assert.Equal(t, tc.size, n)
			assert.Equal(t, tc.frame.Symbols, nilIfEmpty(f.Symbols, tc.frame.Symbols))
			assert.Equal(t, tc.frame.Type, f.Type)
		})
	}
}

func nilIfEmpty(got, want []uint16) []uint16 {
	if len(got) == 0 && want == nil {
		return nil
	}
	return got
}

func TestReadSerialStream(t *testing.T) {
	speech, _ := NewSpeechFrame(speechParams)
	var buf bytes.Buffer
	buf.Write(speech.MarshalSerial())
	buf.Write(NewNoDataFrame().MarshalSerial())

	f, err := ReadSerial(&buf)
	require.NoError(t, err)
	prm, err := f.Params()
	require.NoError(t, err)
	assert.Equal(t, speechParams, prm)

	f, err = ReadSerial(&buf)
	require.NoError(t, err)
	assert.Equal(t, NoData, f.Type)

	_, err = ReadSerial(&buf)
	assert.ErrorIs(t, err, io.EOF)

	raw := speech.MarshalSerial()
	_, err = ReadSerial(bytes.NewReader(raw[:50]))
	assert.ErrorIs(t, err, ErrTruncated)

	_, _, err = UnmarshalSerial(raw[:3])
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestOctetRoundTrip(t *testing.T) {
	speech, _ := NewSpeechFrame(speechParams)
	raw := speech.MarshalBytes()
	require.Len(t, raw, 10)
	assert.Equal(t, byte(0xa5), raw[0])

	f, err := UnmarshalBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, speech.Symbols, f.Symbols)
	assert.Equal(t, Speech, f.Type)

	sid, _ := NewSIDFrame(SIDFirst, []int{0x41, 0x1e, 0x9})
	raw = sid.MarshalBytes()
	assert.Equal(t, []byte{0x83, 0xe9}, raw)

	f, err = UnmarshalBytes(raw)
	require.NoError(t, err)
	prm, err := f.Params()
	require.NoError(t, err)
	assert.Equal(t, []int{0x41, 0x1e, 0x9}, prm)

	f, err = UnmarshalBytes(nil)
	require.NoError(t, err)
	assert.Equal(t, NoData, f.Type)

	_, err = UnmarshalBytes(make([]byte, 7))
	assert.ErrorIs(t, err, ErrFrameSize)
}

func TestSpeechFrameKnownBits(t *testing.T) {
	prm := []int{0xa5, 0x2f3, 0x7c, 0, 0x1abc, 0x9, 0x55, 0x13, 0x0f0f, 0x6, 0x2a}
	want := []byte{0xa5, 0xbc, 0xdf, 0x1a, 0xbc, 0x9a, 0xb3, 0x78, 0x7b, 0x2a}

	f, err := NewSpeechFrame(prm)
	require.NoError(t, err)
	assert.Equal(t, want, f.MarshalBytes())

	serial := f.MarshalSerial()
	require.Len(t, serial, 2*(2+SpeechBits))
	assert.Equal(t, []byte{0x21, 0x6b, 0x50, 0x00}, serial[:4])
	// 0xa5 opens with 1, 0, 1
	assert.Equal(t, []byte{0x81, 0x00, 0x7f, 0x00, 0x81, 0x00}, serial[4:10])

	back, err := UnmarshalBytes(want)
	require.NoError(t, err)
	got, err := back.Params()
	require.NoError(t, err)
	assert.Equal(t, prm, got)
}

func TestParamsBadSize(t *testing.T) {
	f := &Frame{Sync: SyncWord, Symbols: make([]uint16, 12)}
	_, err := f.Params()
	assert.ErrorIs(t, err, ErrFrameSize)
}
