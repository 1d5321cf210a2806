package media

import (
	"fmt"

	"celp-codec/pkg/bitstream"
	"celp-codec/pkg/codec"
)

// PayloadDecoder turns RTP payloads into PCM on top of a codec session.
// A payload that fits the session variant is decoded slot by slot, so
// frames left out of a short payload become no-data frames. A sender that
// bundles more frames than the variant holds is decoded frame by frame.
type PayloadDecoder struct {
	dec *codec.Decoder
}

// NewPayloadDecoder returns a decoder with its own codec session.
func NewPayloadDecoder(opts ...codec.Option) (*PayloadDecoder, error) {
	dec, err := codec.NewDecoder(opts...)
	if err != nil {
		return nil, err
	}
	return newPayloadDecoder(dec), nil
}

func newPayloadDecoder(dec *codec.Decoder) *PayloadDecoder {
	return &PayloadDecoder{dec: dec}
}

// Variant returns the session variant.
func (d *PayloadDecoder) Variant() codec.Variant {
	return d.dec.Variant()
}

// Decode converts one payload to PCM.
//   - 0-byte payload: no-data frames for every slot of the variant
//   - 2-byte payload: one SID frame
//   - N*10 bytes, optionally followed by a 2-byte SID: N or N+1 frames
//   - other lengths: error
func (d *PayloadDecoder) Decode(payload []byte) ([]int16, error) {
	if payloadFrames(len(payload)) <= d.dec.Variant().Frames {
		return d.dec.Decode(payload, false)
	}

	frames, err := splitPayload(payload)
	if err != nil {
		return nil, err
	}
	out := make([]int16, 0, len(frames)*codec.FrameSize)
	for _, f := range frames {
		pcm, err := d.dec.DecodeFrame(f, false)
		if err != nil {
			return nil, err
		}
		out = append(out, pcm...)
	}
	return out, nil
}

// DecodePayload is Decode with 16-bit little-endian output.
func (d *PayloadDecoder) DecodePayload(payload []byte) ([]byte, error) {
	pcm, err := d.Decode(payload)
	if err != nil {
		return nil, err
	}
	return PCMToBytes(pcm), nil
}

// ConcealFrames produces n frames of PCM for audio that never arrived.
func (d *PayloadDecoder) ConcealFrames(n int) []int16 {
	out := make([]int16, 0, n*codec.FrameSize)
	for i := 0; i < n; i++ {
		// an erased frame never fails
		pcm, _ := d.dec.DecodeFrame(nil, true)
		out = append(out, pcm...)
	}
	return out
}

// Conceal is ConcealFrames with 16-bit little-endian output.
func (d *PayloadDecoder) Conceal(frames int) []byte {
	return PCMToBytes(d.ConcealFrames(frames))
}

// SilenceFrames produces n frames the sender skipped during silence.
func (d *PayloadDecoder) SilenceFrames(n int) ([]int16, error) {
	out := make([]int16, 0, n*codec.FrameSize)
	for i := 0; i < n; i++ {
		pcm, err := d.dec.DecodeFrame(bitstream.NewNoDataFrame(), false)
		if err != nil {
			return nil, err
		}
		out = append(out, pcm...)
	}
	return out, nil
}

// LastRxType reports how the last frame was classified.
func (d *PayloadDecoder) LastRxType() bitstream.RxType {
	return d.dec.LastRxType()
}

// payloadFrames counts the frames an n-byte payload carries, a trailing
// partial frame included.
func payloadFrames(n int) int {
	frames := n / codec.SpeechOctets
	if n%codec.SpeechOctets != 0 {
		frames++
	}
	return frames
}

func splitPayload(payload []byte) ([]*bitstream.Frame, error) {
	n := len(payload)
	speech := n / codec.SpeechOctets
	rest := n % codec.SpeechOctets
	if rest != 0 && rest != bitstream.SIDBits/8 {
		return nil, fmt.Errorf("%w: %d octets", codec.ErrInvalidPayload, n)
	}

	frames := make([]*bitstream.Frame, 0, speech+1)
	for i := 0; i < speech; i++ {
		f, err := bitstream.UnmarshalBytes(payload[i*codec.SpeechOctets : (i+1)*codec.SpeechOctets])
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	if rest != 0 {
		f, err := bitstream.UnmarshalBytes(payload[speech*codec.SpeechOctets:])
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}
