package bitstream

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Frame is one transmitted unit in serial form.
type Frame struct {
	Sync    uint16
	Type    FrameType
	Symbols []uint16
}

// NewSpeechFrame packs the eleven speech parameters.
func NewSpeechFrame(prm []int) (*Frame, error) {
	bits, err := Pack(prm, SpeechLayout)
	if err != nil {
		return nil, err
	}
	return &Frame{Sync: SyncWord, Type: Speech, Symbols: bits}, nil
}

// NewSIDFrame packs a silence descriptor of type ft (SIDFirst or
// SIDUpdate).
func NewSIDFrame(ft FrameType, prm []int) (*Frame, error) {
	bits, err := Pack(prm, SIDLayout)
	if err != nil {
		return nil, err
	}
	return &Frame{Sync: SyncWord, Type: ft, Symbols: bits}, nil
}

// NewNoDataFrame returns an empty frame.
func NewNoDataFrame() *Frame {
	return &Frame{Sync: SyncWord, Type: NoData}
}

// Size is the number of payload bits.
func (f *Frame) Size() int {
	return len(f.Symbols)
}

// Damaged reports whether any payload symbol was lost.
func (f *Frame) Damaged() bool {
	for _, s := range f.Symbols {
		if s == 0 {
			return true
		}
	}
	return false
}

// Params unpacks the payload with the layout its size selects. No-data
// frames have no parameters.
func (f *Frame) Params() ([]int, error) {
	switch len(f.Symbols) {
	case SpeechBits:
		return Unpack(f.Symbols, SpeechLayout)
	case SIDBits:
		return Unpack(f.Symbols, SIDLayout)
	case 0:
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %d bits", ErrFrameSize, len(f.Symbols))
}

// MarshalSerial returns the frame as little-endian 16-bit words: sync,
// size, then one symbol per bit.
func (f *Frame) MarshalSerial() []byte {
	out := make([]byte, 2*(2+len(f.Symbols)))
	binary.LittleEndian.PutUint16(out[0:], f.Sync)
	binary.LittleEndian.PutUint16(out[2:], uint16(len(f.Symbols)))
	for i, s := range f.Symbols {
		binary.LittleEndian.PutUint16(out[4+2*i:], s)
	}
	return out
}

// UnmarshalSerial decodes one serial frame from the start of b and returns
// it with the number of bytes consumed. The sync word is kept as read so
// the receiver can classify a corrupt header.
func UnmarshalSerial(b []byte) (*Frame, int, error) {
	if len(b) < 4 {
		return nil, 0, fmt.Errorf("%w: header", ErrTruncated)
	}
	sync := binary.LittleEndian.Uint16(b[0:])
	size := int(binary.LittleEndian.Uint16(b[2:]))
	n := 4 + 2*size
	if len(b) < n {
		return nil, 0, fmt.Errorf("%w: want %d bytes, have %d", ErrTruncated, n, len(b))
	}
	f := &Frame{Sync: sync, Type: typeOfSize(size), Symbols: make([]uint16, size)}
	for i := range f.Symbols {
		f.Symbols[i] = binary.LittleEndian.Uint16(b[4+2*i:])
	}
	return f, n, nil
}

// ReadSerial reads one serial frame from r. It returns io.EOF only when r
// is exhausted at a frame boundary.
func ReadSerial(r io.Reader) (*Frame, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: header", ErrTruncated)
		}
		return nil, err
	}
	size := int(binary.LittleEndian.Uint16(hdr[2:]))
	buf := make([]byte, 4+2*size)
	copy(buf, hdr[:])
	if _, err := io.ReadFull(r, buf[4:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	f, _, err := UnmarshalSerial(buf)
	return f, err
}

// MarshalBytes packs the payload MSB first into octets: 10 for speech, 2
// for a silence descriptor and none for no data. Lost symbols pack as 0.
func (f *Frame) MarshalBytes() []byte {
	out := make([]byte, (len(f.Symbols)+7)/8)
	for i, s := range f.Symbols {
		if s == Bit1 {
			out[i/8] |= 0x80 >> (i % 8)
		}
	}
	return out
}

// UnmarshalBytes rebuilds a frame from its octet form. The length selects
// the frame type.
func UnmarshalBytes(b []byte) (*Frame, error) {
	var bits int
	switch len(b) {
	case SpeechBits / 8:
		bits = SpeechBits
	case SIDBits / 8:
		bits = SIDBits
	case 0:
		return NewNoDataFrame(), nil
	default:
		return nil, fmt.Errorf("%w: %d octets", ErrFrameSize, len(b))
	}
	f := &Frame{Sync: SyncWord, Type: typeOfSize(bits), Symbols: make([]uint16, bits)}
	for i := range f.Symbols {
		if b[i/8]&(0x80>>(i%8)) != 0 {
			f.Symbols[i] = Bit1
		} else {
			f.Symbols[i] = Bit0
		}
	}
	return f, nil
}

func typeOfSize(size int) FrameType {
	switch size {
	case SpeechBits:
		return Speech
	case SIDBits:
		return SIDUpdate
	case 0:
		return NoData
	}
	return Speech
}
