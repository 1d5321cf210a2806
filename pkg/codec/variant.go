package codec

import (
	"fmt"
	"sort"
)

// Variant describes how frames are grouped into packets.
type Variant struct {
	Name string
	// Frames is the number of 10 ms frames per packet.
	Frames int
	// PayloadType is the RTP payload type used unless a session
	// negotiates another dynamic one.
	PayloadType uint8
	// ClockRate is the RTP timestamp rate in Hz.
	ClockRate uint32
}

// Samples returns the number of PCM samples in one packet.
func (v Variant) Samples() int {
	return v.Frames * FrameSize
}

// MaxPayload returns the octet size of a packet of speech frames.
func (v Variant) MaxPayload() int {
	return v.Frames * SpeechOctets
}

const (
	VariantG729A   = "G729A"
	VariantG729A20 = "G729A20"
)

// The bit layout follows G.729 Annex A/B, but the quantizer tables are not
// the ITU ones, so streams are announced under their own encoding name on a
// dynamic payload type rather than as static type 18.
const (
	EncodingName       = "CELP"
	DefaultPayloadType = 96

	minDynamicPayloadType = 96
	maxDynamicPayloadType = 127
)

var variants = map[string]Variant{
	VariantG729A:   {Name: VariantG729A, Frames: 1, PayloadType: DefaultPayloadType, ClockRate: SampleRate},
	VariantG729A20: {Name: VariantG729A20, Frames: 2, PayloadType: DefaultPayloadType, ClockRate: SampleRate},
}

// LookupVariant returns the table entry for name.
func LookupVariant(name string) (Variant, error) {
	v, ok := variants[name]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
	}
	return v, nil
}

// Variants lists the known variant names in order.
func Variants() []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
