package media

import (
	"errors"
	"fmt"

	"github.com/pion/rtp"

	"celp-codec/pkg/codec"
)

var (
	// ErrUnsupportedPayloadType is returned for a payload type with no
	// codec entry.
	ErrUnsupportedPayloadType = errors.New("media: unsupported payload type")
	// ErrUnexpectedPayloadType is returned when a stream changes payload
	// type.
	ErrUnexpectedPayloadType = errors.New("media: unexpected payload type")
)

// CodecInfo represents information about a codec
type CodecInfo struct {
	Name        string
	PayloadType byte
	SampleRate  int
	Channels    int
	Description string
}

// SupportedCodecs maps payload types to codec information
var SupportedCodecs = map[byte]CodecInfo{
	codec.DefaultPayloadType: {
		Name:        codec.EncodingName,
		PayloadType: codec.DefaultPayloadType,
		SampleRate:  codec.SampleRate,
		Channels:    1,
		Description: "CELP narrowband with G.729 Annex A/B framing, not G.729 bit exact",
	},
}

// DetectCodec identifies the codec from an RTP packet
func DetectCodec(rtpPacket []byte) (string, error) {
	var header rtp.Header
	if _, err := header.Unmarshal(rtpPacket); err != nil {
		return "", fmt.Errorf("parse RTP header: %w", err)
	}

	if info, exists := SupportedCodecs[header.PayloadType]; exists {
		return info.Name, nil
	}

	return "unknown", fmt.Errorf("%w: %d", ErrUnsupportedPayloadType, header.PayloadType)
}

// GetCodecInfo returns detailed information about a codec by payload type
func GetCodecInfo(payloadType byte) (CodecInfo, bool) {
	info, exists := SupportedCodecs[payloadType]
	return info, exists
}

// VariantForPtime picks the codec variant carrying ptime milliseconds of
// audio per packet.
func VariantForPtime(ptime int) (string, error) {
	for _, name := range codec.Variants() {
		v, err := codec.LookupVariant(name)
		if err != nil {
			return "", err
		}
		if v.Samples()*1000/codec.SampleRate == ptime {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: no variant for ptime %d ms", codec.ErrUnknownVariant, ptime)
}
