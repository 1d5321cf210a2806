package media

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pion/sdp/v3"

	"celp-codec/pkg/codec"
)

// ErrNoAudioMedia is returned for a description without a usable audio
// line.
var ErrNoAudioMedia = errors.New("media: no CELP audio in session description")

// SessionParams is the outcome of reading a session description. DTX
// reports whether the peer accepts silence frames (annexb=yes) and
// PayloadType is the dynamic type the peer mapped the codec to.
type SessionParams struct {
	Variant     string
	DTX         bool
	PayloadType uint8
	Address     string
	Port        int
}

// Offer builds a session description advertising the variant and silence
// compression setting on ip:port.
func Offer(variant string, dtx bool, ip string, port int, sessionID uint64) ([]byte, error) {
	v, err := codec.LookupVariant(variant)
	if err != nil {
		return nil, err
	}
	info, ok := GetCodecInfo(v.PayloadType)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedPayloadType, v.PayloadType)
	}
	if ip == "" {
		ip = "127.0.0.1"
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("media: invalid RTP port %d", port)
	}

	annexb := "annexb=no"
	if dtx {
		annexb = "annexb=yes"
	}
	ptime := v.Samples() * 1000 / info.SampleRate

	md := &sdp.MediaDescription{
		MediaName: sdp.MediaName{
			Media:  "audio",
			Port:   sdp.RangedPort{Value: port},
			Protos: []string{"RTP", "AVP"},
		},
	}
	md.WithCodec(info.PayloadType, info.Name, uint32(info.SampleRate), 0, annexb).
		WithValueAttribute("ptime", strconv.Itoa(ptime)).
		WithPropertyAttribute("sendrecv")

	sd := &sdp.SessionDescription{
		Version: 0,
		Origin: sdp.Origin{
			Username:       "-",
			SessionID:      sessionID,
			SessionVersion: sessionID,
			NetworkType:    "IN",
			AddressType:    "IP4",
			UnicastAddress: ip,
		},
		SessionName: "celp",
		ConnectionInformation: &sdp.ConnectionInformation{
			NetworkType: "IN",
			AddressType: "IP4",
			Address:     &sdp.Address{Address: ip},
		},
		TimeDescriptions:  []sdp.TimeDescription{{Timing: sdp.Timing{}}},
		MediaDescriptions: []*sdp.MediaDescription{md},
	}
	return sd.Marshal()
}

// ParseSession picks the first audio line carrying the payload type mapped
// to the CELP encoding and maps its ptime and annexb parameters onto codec
// settings. A missing ptime means 20 ms and a missing annexb means yes.
func ParseSession(raw []byte) (*SessionParams, error) {
	var sd sdp.SessionDescription
	if err := sd.Unmarshal(raw); err != nil {
		return nil, fmt.Errorf("parse session description: %w", err)
	}

	pt, err := sd.GetPayloadTypeForCodec(sdp.Codec{Name: codec.EncodingName, ClockRate: codec.SampleRate})
	if err != nil {
		return nil, ErrNoAudioMedia
	}
	format := strconv.Itoa(int(pt))
	for _, md := range sd.MediaDescriptions {
		if md.MediaName.Media != "audio" || !hasFormat(md, format) {
			continue
		}

		ptime := 20
		if value, ok := md.Attribute("ptime"); ok {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("parse ptime %q: %w", value, err)
			}
			ptime = n
		}
		variant, err := VariantForPtime(ptime)
		if err != nil {
			return nil, err
		}

		params := &SessionParams{
			Variant:     variant,
			DTX:         true,
			PayloadType: pt,
			Port:        md.MediaName.Port.Value,
		}
		if c, err := sd.GetCodecForPayloadType(pt); err == nil {
			params.DTX = annexB(c.Fmtp)
		}
		switch {
		case md.ConnectionInformation != nil && md.ConnectionInformation.Address != nil:
			params.Address = md.ConnectionInformation.Address.Address
		case sd.ConnectionInformation != nil && sd.ConnectionInformation.Address != nil:
			params.Address = sd.ConnectionInformation.Address.Address
		}
		return params, nil
	}
	return nil, ErrNoAudioMedia
}

func hasFormat(md *sdp.MediaDescription, pt string) bool {
	for _, f := range md.MediaName.Formats {
		if f == pt {
			return true
		}
	}
	return false
}

// annexB reads the annexb parameter of an fmtp line, yes when absent.
func annexB(fmtp string) bool {
	for _, param := range strings.Split(fmtp, ";") {
		key, value, found := strings.Cut(strings.TrimSpace(param), "=")
		if found && strings.EqualFold(key, "annexb") {
			return strings.EqualFold(strings.TrimSpace(value), "yes")
		}
	}
	return true
}
