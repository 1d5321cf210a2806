package media

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"celp-codec/pkg/codec"
	"celp-codec/pkg/metrics"
	"celp-codec/pkg/telemetry/tracing"
)

const (
	rtpVersion = 2
	// maxGapPackets bounds the audio synthesized for a single gap.
	maxGapPackets = 50
	// rtcpInterval is the number of RTP packets between sender reports in
	// an encoded stream and between receiver reports while decoding one.
	rtcpInterval = 50
	// ntpEpochOffset is the number of seconds between 1900 and 1970.
	ntpEpochOffset = 2208988800
)

// ErrPacketTooLarge is returned when a packet does not fit the stream
// framing.
var ErrPacketTooLarge = errors.New("media: packet too large for stream framing")

// Packetizer codes PCM packets and wraps the payloads in RTP.
type Packetizer struct {
	enc         *codec.Encoder
	log         *logrus.Entry
	payloadType uint8
	ssrc        uint32
	seq         uint16
	timestamp   uint32
	started     bool
	silent      bool

	packetCount uint32
	octetCount  uint32
}

// NewPacketizer returns a packetizer that starts at seq and timestamp.
func NewPacketizer(enc *codec.Encoder, ssrc uint32, seq uint16, timestamp uint32, logger *logrus.Logger) *Packetizer {
	v := enc.Variant()
	return &Packetizer{
		enc:         enc,
		payloadType: v.PayloadType,
		ssrc:        ssrc,
		seq:         seq,
		timestamp:   timestamp,
		log: logger.WithFields(logrus.Fields{
			"ssrc":    ssrc,
			"variant": v.Name,
		}),
	}
}

// Packetize codes one packet worth of samples. It returns a nil packet when
// every frame was no-data: nothing is sent, but the timestamp advances so
// the receiver can tell silence from loss. The marker bit is set on the
// first packet and on the first speech packet after silence.
func (p *Packetizer) Packetize(pcm []int16) (*rtp.Packet, error) {
	payload, err := p.enc.Encode(pcm)
	if err != nil {
		return nil, err
	}
	ts := p.timestamp
	p.timestamp += uint32(len(pcm))

	if len(payload) == 0 {
		p.silent = true
		return nil, nil
	}

	speech := len(payload) >= codec.SpeechOctets
	pkt := &rtp.Packet{
		Header: rtp.Header{
			Version:        rtpVersion,
			Marker:         !p.started || (p.silent && speech),
			PayloadType:    p.payloadType,
			SequenceNumber: p.seq,
			Timestamp:      ts,
			SSRC:           p.ssrc,
		},
		Payload: payload,
	}
	if pkt.Marker {
		p.log.WithField("sequence", p.seq).Debug("talkspurt start")
	}

	p.seq++
	p.started = true
	p.silent = len(payload)%codec.SpeechOctets != 0
	p.packetCount++
	p.octetCount += uint32(len(payload))

	if metrics.IsMetricsEnabled() {
		metrics.RecordRTPPacket("tx", len(payload))
	}
	return pkt, nil
}

// SenderReport describes what was sent so far.
func (p *Packetizer) SenderReport(now time.Time) *rtcp.SenderReport {
	return &rtcp.SenderReport{
		SSRC:        p.ssrc,
		NTPTime:     toNTP(now),
		RTPTime:     p.timestamp,
		PacketCount: p.packetCount,
		OctetCount:  p.octetCount,
	}
}

// HandleReceiverReport reacts to reception feedback about the stream. Loss
// reported while the stream is in a silence period schedules one extra
// silence descriptor so the receiver's comfort noise catches up.
func (p *Packetizer) HandleReceiverReport(rr *rtcp.ReceiverReport) {
	for _, r := range rr.Reports {
		if r.SSRC != p.ssrc || r.FractionLost == 0 {
			continue
		}
		p.log.WithFields(logrus.Fields{
			"fraction_lost": r.FractionLost,
			"total_lost":    r.TotalLost,
			"silent":        p.silent,
		}).Debug("receiver reported loss")
		if p.silent {
			p.enc.RequestSIDUpdates(1)
		}
	}
}

// Depacketizer decodes RTP packets of one stream, filling sequence gaps
// with concealment and timestamp gaps with comfort noise.
type Depacketizer struct {
	dec         *PayloadDecoder
	log         *logrus.Entry
	payloadType uint8
	stats       *ReceiverStats

	reports   io.Writer
	localSSRC uint32

	started bool
	nextSeq uint16
	nextTS  uint32
}

// NewDepacketizer returns a depacketizer feeding dec.
func NewDepacketizer(dec *codec.Decoder, logger *logrus.Logger) *Depacketizer {
	v := dec.Variant()
	return &Depacketizer{
		dec:         newPayloadDecoder(dec),
		payloadType: v.PayloadType,
		stats:       NewReceiverStats(v.ClockRate),
		log:         logger.WithField("variant", v.Name),
	}
}

// SetReportWriter makes DecodeStream write its periodic receiver reports,
// sent from localSSRC, to w in the stream framing.
func (d *Depacketizer) SetReportWriter(w io.Writer, localSSRC uint32) {
	d.reports = w
	d.localSSRC = localSSRC
}

// Stats returns the reception statistics of the stream.
func (d *Depacketizer) Stats() *ReceiverStats {
	return d.stats
}

// Depacketize decodes pkt, preceded by the audio of any packets missing
// before it. Late and duplicate packets are dropped and yield no samples.
// A lost packet is concealed as one packet of the session variant.
func (d *Depacketizer) Depacketize(pkt *rtp.Packet, arrival time.Time) ([]int16, error) {
	if pkt.PayloadType != d.payloadType {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrUnexpectedPayloadType, pkt.PayloadType, d.payloadType)
	}
	d.stats.Update(pkt, arrival)

	v := d.dec.Variant()
	var out []int16
	if d.started {
		ahead := int16(pkt.SequenceNumber - d.nextSeq)
		if ahead < 0 {
			d.log.WithField("sequence", pkt.SequenceNumber).Debug("dropping late packet")
			return nil, nil
		}
		lost := clampInt(int(ahead), 0, maxGapPackets)
		missing := int(int32(pkt.Timestamp-d.nextTS)) / v.Samples()
		silent := clampInt(missing-int(ahead), 0, maxGapPackets-lost)

		if lost > 0 {
			d.log.WithFields(logrus.Fields{
				"sequence": pkt.SequenceNumber,
				"lost":     lost,
			}).Debug("concealing lost packets")
			if metrics.IsMetricsEnabled() {
				metrics.RecordRTPLost(lost)
			}
			out = append(out, d.dec.ConcealFrames(lost*v.Frames)...)
		}
		if silent > 0 {
			pcm, err := d.dec.SilenceFrames(silent * v.Frames)
			if err != nil {
				return nil, err
			}
			out = append(out, pcm...)
		}
	}

	pcm, err := d.dec.Decode(pkt.Payload)
	if err != nil {
		return nil, err
	}
	d.started = true
	d.nextSeq = pkt.SequenceNumber + 1
	d.nextTS = pkt.Timestamp + uint32(len(pcm))

	if metrics.IsMetricsEnabled() {
		metrics.RecordRTPPacket("rx", len(pkt.Payload))
	}
	return append(out, pcm...), nil
}

// report logs a reception report for the stream and, when a report writer
// is set, writes it as a compound RTCP packet.
func (d *Depacketizer) report(now time.Time) error {
	rr := d.stats.ReceiverReport(d.localSSRC, now)
	r := rr.Reports[0]
	d.log.WithFields(logrus.Fields{
		"ssrc":          r.SSRC,
		"fraction_lost": r.FractionLost,
		"total_lost":    r.TotalLost,
		"jitter":        r.Jitter,
	}).Debug("Reception report")
	if metrics.IsMetricsEnabled() {
		metrics.RecordRTPJitter(r.Jitter)
	}

	if d.reports == nil {
		return nil
	}
	raw, err := compoundReport(rr, d.localSSRC, fmt.Sprintf("celp-%08x", d.localSSRC))
	if err != nil {
		return fmt.Errorf("marshal RTCP: %w", err)
	}
	return writeFramed(d.reports, raw)
}

// ReceiverStats keeps the RFC 3550 reception counters of one source.
type ReceiverStats struct {
	mu sync.Mutex

	clockRate uint32
	ssrc      uint32
	started   bool
	baseSeq   uint16
	maxSeq    uint16
	cycles    uint32
	received  uint32

	expectedPrior uint32
	receivedPrior uint32

	jitter      float64
	lastTransit float64

	lastSR        uint32
	lastSRArrival time.Time
}

// NewReceiverStats returns empty counters for a stream clocked at
// clockRate.
func NewReceiverStats(clockRate uint32) *ReceiverStats {
	return &ReceiverStats{clockRate: clockRate}
}

// Update counts a received packet.
func (s *ReceiverStats) Update(pkt *rtp.Packet, arrival time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	transit := arrival.Sub(time.Unix(0, 0)).Seconds()*float64(s.clockRate) - float64(pkt.Timestamp)
	if !s.started {
		s.started = true
		s.ssrc = pkt.SSRC
		s.baseSeq = pkt.SequenceNumber
		s.maxSeq = pkt.SequenceNumber
		s.received = 1
		s.lastTransit = transit
		return
	}

	s.received++
	if delta := pkt.SequenceNumber - s.maxSeq; delta != 0 && delta < 0x8000 {
		if pkt.SequenceNumber < s.maxSeq {
			s.cycles += 1 << 16
		}
		s.maxSeq = pkt.SequenceNumber
	}

	d := transit - s.lastTransit
	if d < 0 {
		d = -d
	}
	s.jitter += (d - s.jitter) / 16
	s.lastTransit = transit
}

// OnSenderReport records the time of a sender report for the delay fields
// of the next reception report.
func (s *ReceiverStats) OnSenderReport(sr *rtcp.SenderReport, arrival time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSR = uint32(sr.NTPTime >> 16)
	s.lastSRArrival = arrival
}

// Lost returns the cumulative number of missing packets.
func (s *ReceiverStats) Lost() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.expected()) - int(s.received)
}

func (s *ReceiverStats) expected() uint32 {
	if !s.started {
		return 0
	}
	return s.cycles + uint32(s.maxSeq) - uint32(s.baseSeq) + 1
}

// Report builds a reception report and starts a new loss interval.
func (s *ReceiverStats) Report(now time.Time) rtcp.ReceptionReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	expected := s.expected()
	lost := int64(expected) - int64(s.received)
	totalLost := uint32(clampInt(int(lost), 0, 0x7fffff))

	expectedInterval := expected - s.expectedPrior
	receivedInterval := s.received - s.receivedPrior
	s.expectedPrior = expected
	s.receivedPrior = s.received

	var fraction uint8
	if lostInterval := int64(expectedInterval) - int64(receivedInterval); expectedInterval > 0 && lostInterval > 0 {
		fraction = uint8((lostInterval << 8) / int64(expectedInterval))
	}

	var delay uint32
	if !s.lastSRArrival.IsZero() {
		delay = uint32(now.Sub(s.lastSRArrival).Seconds() * 65536)
	}

	return rtcp.ReceptionReport{
		SSRC:               s.ssrc,
		FractionLost:       fraction,
		TotalLost:          totalLost,
		LastSequenceNumber: s.cycles + uint32(s.maxSeq),
		Jitter:             uint32(s.jitter),
		LastSenderReport:   s.lastSR,
		Delay:              delay,
	}
}

// ReceiverReport wraps Report in an RTCP receiver report from localSSRC.
func (s *ReceiverStats) ReceiverReport(localSSRC uint32, now time.Time) *rtcp.ReceiverReport {
	return &rtcp.ReceiverReport{
		SSRC:    localSSRC,
		Reports: []rtcp.ReceptionReport{s.Report(now)},
	}
}

// compoundReport marshals a report followed by an SDES CNAME chunk.
func compoundReport(report rtcp.Packet, ssrc uint32, cname string) ([]byte, error) {
	sdes := &rtcp.SourceDescription{
		Chunks: []rtcp.SourceDescriptionChunk{
			{
				Source: ssrc,
				Items: []rtcp.SourceDescriptionItem{
					{Type: rtcp.SDESCNAME, Text: cname},
				},
			},
		},
	}
	return rtcp.Marshal([]rtcp.Packet{report, sdes})
}

func isRTCPPacket(payload []byte) bool {
	if len(payload) < 2 {
		return false
	}
	packetType := payload[1]
	return packetType >= 200 && packetType <= 211
}

func (d *Depacketizer) handleRTCPPacket(data []byte, arrival time.Time) {
	packets, err := rtcp.Unmarshal(data)
	if err != nil {
		d.log.WithError(err).Debug("Failed to unmarshal RTCP packet")
		return
	}

	for _, pkt := range packets {
		switch p := pkt.(type) {
		case *rtcp.SenderReport:
			d.stats.OnSenderReport(p, arrival)
			d.log.WithFields(logrus.Fields{
				"ssrc":    p.SSRC,
				"packets": p.PacketCount,
				"octets":  p.OctetCount,
			}).Debug("Received RTCP Sender Report")
		case *rtcp.Goodbye:
			d.log.Info("Received RTCP BYE")
		default:
			d.log.WithField("type", fmt.Sprintf("%T", pkt)).Trace("Received RTCP packet")
		}
	}
}

// EncodeStream codes raw PCM from r into a stream of length-prefixed RTP
// and RTCP packets on w until r is exhausted or ctx is cancelled. A final
// partial packet is padded with silence.
func EncodeStream(ctx context.Context, r io.Reader, w io.Writer, p *Packetizer) error {
	_, span := tracing.StartSpan(ctx, "codec.encode_stream", trace.WithAttributes(
		attribute.String("codec.variant", p.enc.Variant().Name),
		attribute.Int64("rtp.ssrc", int64(p.ssrc)),
	))
	defer span.End()

	samples := p.enc.Variant().Samples()
	cname := fmt.Sprintf("celp-%08x", p.ssrc)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		pcm, readErr := ReadPCM(r, samples)
		if readErr == io.EOF {
			break
		}
		if readErr != nil && readErr != io.ErrUnexpectedEOF {
			return failSpan(span, fmt.Errorf("read PCM: %w", readErr))
		}

		pkt, err := p.Packetize(pcm)
		if err != nil {
			return failSpan(span, err)
		}
		if pkt != nil {
			raw, err := pkt.Marshal()
			if err != nil {
				return failSpan(span, fmt.Errorf("marshal RTP: %w", err))
			}
			if err := writeFramed(w, raw); err != nil {
				return failSpan(span, err)
			}
			if p.packetCount%rtcpInterval == 0 {
				raw, err := compoundReport(p.SenderReport(time.Now()), p.ssrc, cname)
				if err != nil {
					return failSpan(span, fmt.Errorf("marshal RTCP: %w", err))
				}
				if err := writeFramed(w, raw); err != nil {
					return failSpan(span, err)
				}
			}
		}
		if readErr == io.ErrUnexpectedEOF {
			break
		}
	}

	raw, err := rtcp.Marshal([]rtcp.Packet{&rtcp.Goodbye{Sources: []uint32{p.ssrc}}})
	if err != nil {
		return failSpan(span, fmt.Errorf("marshal RTCP: %w", err))
	}
	if err := writeFramed(w, raw); err != nil {
		return failSpan(span, err)
	}

	span.AddEvent("stream encoded", trace.WithAttributes(
		attribute.Int64("rtp.packets", int64(p.packetCount)),
		attribute.Int64("rtp.octets", int64(p.octetCount)),
	))
	p.log.WithFields(logrus.Fields{
		"packets": p.packetCount,
		"octets":  p.octetCount,
	}).Info("Encoded stream")
	return nil
}

// DecodeStream reads length-prefixed RTP and RTCP packets from r and
// writes decoded PCM to w until r is exhausted or ctx is cancelled.
// Packets of other payload types are skipped. A receiver report is issued
// every rtcpInterval decoded packets and once more at the end.
func DecodeStream(ctx context.Context, r io.Reader, w io.Writer, d *Depacketizer) error {
	_, span := tracing.StartSpan(ctx, "codec.decode_stream", trace.WithAttributes(
		attribute.String("codec.variant", d.dec.Variant().Name),
	))
	defer span.End()

	packets, skipped := 0, 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, err := readFramed(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return failSpan(span, err)
		}
		arrival := time.Now()

		if isRTCPPacket(raw) {
			d.handleRTCPPacket(raw, arrival)
			continue
		}

		name, err := DetectCodec(raw)
		if err != nil && !errors.Is(err, ErrUnsupportedPayloadType) {
			d.log.WithError(err).Warn("Failed to unmarshal RTP packet")
			continue
		}
		var pkt rtp.Packet
		if err := pkt.Unmarshal(raw); err != nil {
			d.log.WithError(err).Warn("Failed to unmarshal RTP packet")
			continue
		}
		if pkt.PayloadType != d.payloadType {
			d.log.WithFields(logrus.Fields{
				"sequence":     pkt.SequenceNumber,
				"payload_type": pkt.PayloadType,
				"codec":        name,
			}).Debug("Skipping packet of another payload type")
			skipped++
			continue
		}

		pcm, err := d.Depacketize(&pkt, arrival)
		if err != nil {
			d.log.WithError(err).WithFields(logrus.Fields{
				"sequence":     pkt.SequenceNumber,
				"payload_type": pkt.PayloadType,
			}).Warn("Failed to decode RTP packet")
			continue
		}
		if _, err := w.Write(PCMToBytes(pcm)); err != nil {
			return failSpan(span, fmt.Errorf("write PCM: %w", err))
		}
		packets++
		if packets%rtcpInterval == 0 {
			if err := d.report(arrival); err != nil {
				return failSpan(span, err)
			}
		}
	}
	if packets%rtcpInterval != 0 {
		if err := d.report(time.Now()); err != nil {
			return failSpan(span, err)
		}
	}

	lost := d.stats.Lost()
	span.AddEvent("stream decoded", trace.WithAttributes(
		attribute.Int("rtp.packets", packets),
		attribute.Int("rtp.skipped", skipped),
		attribute.Int("rtp.lost", lost),
	))
	d.log.WithFields(logrus.Fields{
		"packets": packets,
		"skipped": skipped,
		"lost":    lost,
	}).Info("Decoded stream")
	return nil
}

func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// writeFramed writes b behind a 2-byte big-endian length.
func writeFramed(w io.Writer, b []byte) error {
	if len(b) > 0xffff {
		return fmt.Errorf("%w: %d bytes", ErrPacketTooLarge, len(b))
	}
	var hdr [2]byte
	binary.BigEndian.PutUint16(hdr[:], uint16(len(b)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// readFramed reads one length-prefixed packet. io.EOF is returned only at
// a packet boundary.
func readFramed(r io.Reader) ([]byte, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("read packet length: %w", err)
		}
		return nil, err
	}
	b := make([]byte, binary.BigEndian.Uint16(hdr[:]))
	if _, err := io.ReadFull(r, b); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read packet: %w", err)
	}
	return b, nil
}

func toNTP(t time.Time) uint64 {
	secs := uint64(t.Unix() + ntpEpochOffset)
	frac := uint64(t.Nanosecond()) << 32 / 1e9
	return secs<<32 | frac
}
