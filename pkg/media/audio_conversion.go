package media

import (
	"encoding/binary"
	"fmt"
	"io"
)

// PCMToBytes encodes samples as 16-bit little-endian PCM.
func PCMToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// BytesToPCM decodes 16-bit little-endian PCM.
func BytesToPCM(data []byte) ([]int16, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("odd PCM byte count: %d", len(data))
	}
	out := make([]int16, len(data)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return out, nil
}

// ReadPCM reads exactly n samples from r. A clean end of stream returns
// io.EOF; a partial block is padded with silence and returned with
// io.ErrUnexpectedEOF.
func ReadPCM(r io.Reader, n int) ([]int16, error) {
	buf := make([]byte, n*2)
	read, err := io.ReadFull(r, buf)
	switch {
	case err == io.EOF:
		return nil, io.EOF
	case err == io.ErrUnexpectedEOF:
		clear(buf[read&^1:])
		pcm, _ := BytesToPCM(buf)
		return pcm, io.ErrUnexpectedEOF
	case err != nil:
		return nil, err
	}
	return BytesToPCM(buf)
}

func clampInt(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}
