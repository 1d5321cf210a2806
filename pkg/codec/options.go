package codec

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultVADThresholdDB is the margin above the noise floor at which a
// frame counts as speech.
const DefaultVADThresholdDB = 9.0

// Options configures an encoder or decoder session.
type Options struct {
	Logger         *logrus.Logger
	SessionID      string
	Variant        string
	DTX            bool
	PostFilter     bool
	VADThresholdDB float64
	// PayloadType overrides the variant's RTP payload type when non-zero.
	PayloadType uint8
}

// Option mutates Options.
type Option func(*Options)

// WithLogger sets the session logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// WithSessionID sets the identifier attached to every log entry.
func WithSessionID(id string) Option {
	return func(o *Options) { o.SessionID = id }
}

// WithVariant selects the packet layout by name.
func WithVariant(name string) Option {
	return func(o *Options) { o.Variant = name }
}

// WithDTX turns discontinuous transmission on or off.
func WithDTX(enabled bool) Option {
	return func(o *Options) { o.DTX = enabled }
}

// WithPostFilter turns the decoder post-filter on or off.
func WithPostFilter(enabled bool) Option {
	return func(o *Options) { o.PostFilter = enabled }
}

// WithVADThreshold sets the speech margin above the noise floor in dB.
func WithVADThreshold(db float64) Option {
	return func(o *Options) { o.VADThresholdDB = db }
}

// WithPayloadType sets a negotiated dynamic RTP payload type.
func WithPayloadType(pt uint8) Option {
	return func(o *Options) { o.PayloadType = pt }
}

func defaultOptions() Options {
	return Options{
		Variant:        VariantG729A,
		PostFilter:     true,
		VADThresholdDB: DefaultVADThresholdDB,
	}
}

// resolve applies opts over the defaults and validates the result.
func resolve(role string, opts []Option) (Options, Variant, *logrus.Entry, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	v, err := LookupVariant(o.Variant)
	if err != nil {
		return o, Variant{}, nil, err
	}
	if o.VADThresholdDB <= 0 || o.VADThresholdDB > 40 {
		return o, Variant{}, nil, fmt.Errorf("%w: vad threshold %.1f dB", ErrInvalidOption, o.VADThresholdDB)
	}
	if o.PayloadType != 0 {
		if o.PayloadType < minDynamicPayloadType || o.PayloadType > maxDynamicPayloadType {
			return o, Variant{}, nil, fmt.Errorf("%w: payload type %d is not dynamic", ErrInvalidOption, o.PayloadType)
		}
		v.PayloadType = o.PayloadType
	}

	if o.Logger == nil {
		o.Logger = logrus.New()
		o.Logger.SetOutput(io.Discard)
	}
	if o.SessionID == "" {
		o.SessionID = uuid.New().String()
	}

	entry := o.Logger.WithFields(logrus.Fields{
		"session": o.SessionID,
		"variant": v.Name,
		"role":    role,
	})
	return o, v, entry, nil
}
