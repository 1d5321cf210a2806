package codec

import (
	"fmt"

	"celp-codec/pkg/bitstream"
)

// Encode codes one packet of the session variant and returns its payload:
// the speech frames in octet form followed by at most one silence
// descriptor. Once a frame of the packet is non-speech the rest of the
// packet stays non-speech, and a descriptor that would follow a no-data
// frame waits for the next packet, so the receiver can place every frame.
func (e *Encoder) Encode(pcm []int16) ([]byte, error) {
	if len(pcm) != e.variant.Samples() {
		e.log.WithField("samples", len(pcm)).Warn("rejected packet")
		return nil, fmt.Errorf("%w: got %d samples, want %d", ErrInvalidFrameLength, len(pcm), e.variant.Samples())
	}

	payload := make([]byte, 0, e.variant.MaxPayload())
	silent := false
	for k := 0; k < e.variant.Frames; k++ {
		f, err := e.encodeFrame(pcm[k*FrameSize:(k+1)*FrameSize], silent, silent)
		if err != nil {
			return nil, err
		}
		if f.Type != bitstream.Speech {
			silent = true
		}
		payload = append(payload, f.MarshalBytes()...)
	}
	return payload, nil
}

// Decode reconstructs one packet of the session variant. Frames missing
// from a short payload are decoded as no-data frames; an erased packet is
// concealed frame by frame.
func (d *Decoder) Decode(payload []byte, erased bool) ([]int16, error) {
	frames, err := d.split(payload, erased)
	if err != nil {
		d.log.WithField("bytes", len(payload)).Warn("rejected payload")
		return nil, err
	}

	pcm := make([]int16, 0, d.variant.Samples())
	for _, f := range frames {
		out, err := d.DecodeFrame(f, erased)
		if err != nil {
			return nil, err
		}
		pcm = append(pcm, out...)
	}
	return pcm, nil
}

func (d *Decoder) split(payload []byte, erased bool) ([]*bitstream.Frame, error) {
	frames := make([]*bitstream.Frame, d.variant.Frames)
	if erased {
		return frames, nil
	}

	speech := len(payload) / SpeechOctets
	rest := len(payload) % SpeechOctets
	sid := rest == bitstream.SIDBits/8
	if rest != 0 && !sid {
		return nil, fmt.Errorf("%w: %d octets", ErrInvalidPayload, len(payload))
	}
	n := speech
	if sid {
		n++
	}
	if n > d.variant.Frames {
		return nil, fmt.Errorf("%w: %d frames for %d slots", ErrInvalidPayload, n, d.variant.Frames)
	}

	for k := range frames {
		var (
			f   *bitstream.Frame
			err error
		)
		switch {
		case k < speech:
			f, err = bitstream.UnmarshalBytes(payload[k*SpeechOctets : (k+1)*SpeechOctets])
		case k == speech && sid:
			f, err = bitstream.UnmarshalBytes(payload[speech*SpeechOctets:])
		default:
			f = bitstream.NewNoDataFrame()
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		frames[k] = f
	}
	return frames, nil
}
