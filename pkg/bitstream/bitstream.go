// Package bitstream converts codec parameters to and from the serial bit
// frame format: a sync word, a size word and one 16-bit symbol per bit. It
// also carries the RFC 3551 octet packing and the frame type state machines
// of discontinuous transmission.
package bitstream

import (
	"errors"
	"fmt"
)

const (
	// Bit0 and Bit1 are the serial symbols of a 0 and a 1. A zero symbol
	// marks a bit the channel could not deliver.
	Bit0 uint16 = 0x007f
	Bit1 uint16 = 0x0081
	// SyncWord opens every serial frame.
	SyncWord uint16 = 0x6b21

	// SpeechBits and SIDBits are the payload sizes in bits.
	SpeechBits = 80
	SIDBits    = 16
)

var (
	// ErrTruncated is returned when a buffer ends inside a frame.
	ErrTruncated = errors.New("bitstream: truncated frame")
	// ErrFrameSize is returned for a payload size no layout matches.
	ErrFrameSize = errors.New("bitstream: unsupported frame size")
	// ErrParamCount is returned when parameters do not match a layout.
	ErrParamCount = errors.New("bitstream: parameter count mismatch")
)

// SpeechLayout lists the widths of the eleven speech parameters:
// LSP (mode and first stage, second stage), first lag, parity, first
// innovation and signs, first gains, relative second lag, second
// innovation and signs, second gains.
var SpeechLayout = []int{8, 10, 8, 1, 13, 4, 7, 5, 13, 4, 7}

// SIDLayout lists the widths of the silence descriptor parameters: LSP
// first stage, LSP second stage and quantized energy.
var SIDLayout = []int{7, 5, 4}

// Pack expands every parameter MSB first into serial symbols.
func Pack(prm []int, widths []int) ([]uint16, error) {
	if len(prm) != len(widths) {
		return nil, fmt.Errorf("%w: %d parameters for %d fields", ErrParamCount, len(prm), len(widths))
	}
	n := 0
	for _, w := range widths {
		n += w
	}
	bits := make([]uint16, n)
	pos := 0
	for i, w := range widths {
		v := prm[i]
		for b := w - 1; b >= 0; b-- {
			if v&1 == 0 {
				bits[pos+b] = Bit0
			} else {
				bits[pos+b] = Bit1
			}
			v >>= 1
		}
		pos += w
	}
	return bits, nil
}

// Unpack is the inverse of Pack. Any symbol other than Bit1 reads as 0.
func Unpack(bits []uint16, widths []int) ([]int, error) {
	n := 0
	for _, w := range widths {
		n += w
	}
	if len(bits) < n {
		return nil, fmt.Errorf("%w: %d symbols for %d bits", ErrTruncated, len(bits), n)
	}
	prm := make([]int, len(widths))
	pos := 0
	for i, w := range widths {
		v := 0
		for b := 0; b < w; b++ {
			v <<= 1
			if bits[pos] == Bit1 {
				v++
			}
			pos++
		}
		prm[i] = v
	}
	return prm, nil
}
