package codec

import "errors"

var (
	// ErrInvalidFrameLength is returned when a PCM buffer does not hold
	// exactly one frame or one packet.
	ErrInvalidFrameLength = errors.New("codec: invalid frame length")
	// ErrInvalidFrame is returned for a missing bit frame.
	ErrInvalidFrame = errors.New("codec: invalid frame")
	// ErrInvalidPayload is returned when an octet payload cannot be split
	// into frames.
	ErrInvalidPayload = errors.New("codec: invalid payload")
	// ErrUnknownVariant is returned for a variant name with no table entry.
	ErrUnknownVariant = errors.New("codec: unknown variant")
	// ErrInvalidOption is returned when an option value is out of range.
	ErrInvalidOption = errors.New("codec: invalid option")
)
