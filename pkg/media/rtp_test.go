package media

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"celp-codec/pkg/codec"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newPair(t *testing.T, variant string, dtx bool) (*Packetizer, *Depacketizer) {
	t.Helper()
	enc, err := codec.NewEncoder(codec.WithVariant(variant), codec.WithDTX(dtx))
	require.NoError(t, err)
	dec, err := codec.NewDecoder(codec.WithVariant(variant))
	require.NoError(t, err)
	return NewPacketizer(enc, 0x1234, 1000, 5000, quietLogger()), NewDepacketizer(dec, quietLogger())
}

func TestPacketizerHeaders(t *testing.T) {
	p, _ := newPair(t, codec.VariantG729A20, false)

	for k := 0; k < 4; k++ {
		pkt, err := p.Packetize(tone(k*160, 160))
		require.NoError(t, err)
		require.NotNil(t, pkt)

		assert.Equal(t, uint8(2), pkt.Version)
		assert.Equal(t, uint8(codec.DefaultPayloadType), pkt.PayloadType)
		assert.Equal(t, uint16(1000+k), pkt.SequenceNumber)
		assert.Equal(t, uint32(5000+160*k), pkt.Timestamp)
		assert.Equal(t, uint32(0x1234), pkt.SSRC)
		assert.Equal(t, k == 0, pkt.Marker)
		assert.Len(t, pkt.Payload, 20)
	}

	sr := p.SenderReport(time.Unix(1700000000, 500000000))
	assert.Equal(t, uint32(4), sr.PacketCount)
	assert.Equal(t, uint32(80), sr.OctetCount)
	assert.Equal(t, uint32(5000+640), sr.RTPTime)
	assert.Equal(t, uint64(1700000000+ntpEpochOffset), sr.NTPTime>>32)
	assert.Equal(t, uint64(1)<<31, sr.NTPTime&0xffffffff)
}

func TestPacketizerSilence(t *testing.T) {
	p, _ := newPair(t, codec.VariantG729A, true)

	var sent []*rtp.Packet
	silence := make([]int16, codec.FrameSize)
	for k := 0; k < 12; k++ {
		pkt, err := p.Packetize(silence)
		require.NoError(t, err)
		if pkt != nil {
			sent = append(sent, pkt)
		}
	}
	// seven speech packets, SIDFirst, two skipped, SIDUpdate, one skipped
	require.Len(t, sent, 9)
	assert.Len(t, sent[7].Payload, 2)
	assert.Len(t, sent[8].Payload, 2)
	assert.Equal(t, uint32(5000+10*codec.FrameSize), sent[8].Timestamp)
	assert.Equal(t, sent[7].SequenceNumber+1, sent[8].SequenceNumber)

	pkt, err := p.Packetize(tone(0, codec.FrameSize))
	require.NoError(t, err)
	require.NotNil(t, pkt)
	assert.True(t, pkt.Marker)
	assert.Len(t, pkt.Payload, 10)
}

func TestPacketizerHandleReceiverReport(t *testing.T) {
	p, _ := newPair(t, codec.VariantG729A, true)

	silence := make([]int16, codec.FrameSize)
	packetize := func() *rtp.Packet {
		t.Helper()
		pkt, err := p.Packetize(silence)
		require.NoError(t, err)
		return pkt
	}
	for k := 0; k < 12; k++ {
		packetize()
	}

	p.HandleReceiverReport(&rtcp.ReceiverReport{
		SSRC: 0xbeef,
		Reports: []rtcp.ReceptionReport{
			{SSRC: 0x9999, FractionLost: 64},
			{SSRC: 0x1234, FractionLost: 0},
		},
	})
	assert.Nil(t, packetize(), "no loss on this stream keeps the silence period quiet")

	p.HandleReceiverReport(&rtcp.ReceiverReport{
		SSRC:    0xbeef,
		Reports: []rtcp.ReceptionReport{{SSRC: 0x1234, FractionLost: 32, TotalLost: 3}},
	})
	pkt := packetize()
	require.NotNil(t, pkt)
	assert.Len(t, pkt.Payload, 2)
	assert.False(t, pkt.Marker)
}

func TestDepacketizeLossAndSilence(t *testing.T) {
	p, d := newPair(t, codec.VariantG729A, true)
	now := time.Unix(1700000000, 0)

	var packets []*rtp.Packet
	for k := 0; k < 24; k++ {
		pcm := tone(k*codec.FrameSize, codec.FrameSize)
		if k >= 8 {
			pcm = make([]int16, codec.FrameSize)
		}
		pkt, err := p.Packetize(pcm)
		require.NoError(t, err)
		if pkt != nil {
			packets = append(packets, pkt)
		}
	}

	total := 0
	for i, pkt := range packets {
		if i == 3 {
			// lost in transit
			continue
		}
		pcm, err := d.Depacketize(pkt, now)
		require.NoError(t, err)
		total += len(pcm)
	}

	// every 10 ms slot up to the last packet is accounted for
	last := packets[len(packets)-1]
	slots := int(last.Timestamp-packets[0].Timestamp)/codec.FrameSize + 1
	assert.Equal(t, slots*codec.FrameSize, total)
	assert.Equal(t, 1, d.Stats().Lost())

	// a duplicate yields nothing
	pcm, err := d.Depacketize(packets[2], now)
	require.NoError(t, err)
	assert.Empty(t, pcm)
}

func TestDepacketizeBundledPayload(t *testing.T) {
	enc, err := codec.NewEncoder(codec.WithVariant(codec.VariantG729A20))
	require.NoError(t, err)
	p := NewPacketizer(enc, 0x1234, 1000, 5000, quietLogger())
	_, d := newPair(t, codec.VariantG729A, false)
	now := time.Unix(1700000000, 0)

	for k := 0; k < 3; k++ {
		pkt, err := p.Packetize(tone(k*160, 160))
		require.NoError(t, err)
		pcm, err := d.Depacketize(pkt, now)
		require.NoError(t, err)
		// two frames per packet, no gap filled in between
		assert.Len(t, pcm, 2*codec.FrameSize, "packet %d", k)
	}
	assert.Equal(t, 0, d.Stats().Lost())
}

func TestDepacketizeWrongPayloadType(t *testing.T) {
	_, d := newPair(t, codec.VariantG729A, false)
	pkt := &rtp.Packet{Header: rtp.Header{Version: 2, PayloadType: 0}, Payload: make([]byte, 10)}
	_, err := d.Depacketize(pkt, time.Now())
	assert.ErrorIs(t, err, ErrUnexpectedPayloadType)
}

func TestReceiverStatsWrap(t *testing.T) {
	s := NewReceiverStats(codec.SampleRate)
	now := time.Unix(1700000000, 0)
	for _, seq := range []uint16{65534, 65535, 0, 2} {
		s.Update(&rtp.Packet{Header: rtp.Header{SequenceNumber: seq, SSRC: 99}}, now)
	}

	assert.Equal(t, 1, s.Lost())
	report := s.Report(now)
	assert.Equal(t, uint32(99), report.SSRC)
	assert.Equal(t, uint32(1), report.TotalLost)
	assert.Equal(t, uint32(65536+2), report.LastSequenceNumber)
	assert.Equal(t, uint8(256/5), report.FractionLost)

	s.Update(&rtp.Packet{Header: rtp.Header{SequenceNumber: 3, SSRC: 99}}, now)
	report = s.Report(now)
	assert.Equal(t, uint8(0), report.FractionLost)
	assert.Equal(t, uint32(1), report.TotalLost)
}

func TestReceiverReportDelay(t *testing.T) {
	s := NewReceiverStats(codec.SampleRate)
	now := time.Unix(1700000000, 0)
	s.Update(&rtp.Packet{Header: rtp.Header{SequenceNumber: 1, SSRC: 5}}, now)
	s.OnSenderReport(&rtcp.SenderReport{SSRC: 5, NTPTime: 0x0001_2345_6789_0000}, now)

	rr := s.ReceiverReport(77, now.Add(2*time.Second))
	require.Len(t, rr.Reports, 1)
	assert.Equal(t, uint32(77), rr.SSRC)
	assert.Equal(t, uint32(0x2345_6789), rr.Reports[0].LastSenderReport)
	assert.Equal(t, uint32(2*65536), rr.Reports[0].Delay)

	raw, err := compoundReport(rr, 77, "celp-test")
	require.NoError(t, err)
	assert.True(t, isRTCPPacket(raw))
	packets, err := rtcp.Unmarshal(raw)
	require.NoError(t, err)
	require.Len(t, packets, 2)
	assert.IsType(t, &rtcp.ReceiverReport{}, packets[0])
	assert.IsType(t, &rtcp.SourceDescription{}, packets[1])
}

func TestStreamRoundTrip(t *testing.T) {
	testCases := []struct {
		name    string
		variant string
		samples int
	}{
		{"10 ms exact", codec.VariantG729A, 120 * codec.FrameSize},
		{"20 ms padded", codec.VariantG729A20, 61*codec.FrameSize + 5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, d := newPair(t, tc.variant, false)
			n := p.enc.Variant().Samples()

			var stream bytes.Buffer
			require.NoError(t, EncodeStream(context.Background(), bytes.NewReader(PCMToBytes(tone(0, tc.samples))), &stream, p))

			var out bytes.Buffer
			require.NoError(t, DecodeStream(context.Background(), &stream, &out, d))

			packets := (tc.samples + n - 1) / n
			assert.Equal(t, packets*n*2, out.Len())
			assert.Equal(t, 0, d.Stats().Lost())
		})
	}
}

func TestDecodeStreamReceiverReports(t *testing.T) {
	p, d := newPair(t, codec.VariantG729A, false)
	var reports bytes.Buffer
	d.SetReportWriter(&reports, 0xbeef)

	var stream bytes.Buffer
	require.NoError(t, EncodeStream(context.Background(), bytes.NewReader(PCMToBytes(tone(0, 120*codec.FrameSize))), &stream, p))
	require.NoError(t, DecodeStream(context.Background(), &stream, io.Discard, d))

	// after packets 50 and 100, then at the end of the stream
	var got []*rtcp.ReceiverReport
	for {
		raw, err := readFramed(&reports)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		packets, err := rtcp.Unmarshal(raw)
		require.NoError(t, err)
		require.Len(t, packets, 2)
		rr, ok := packets[0].(*rtcp.ReceiverReport)
		require.True(t, ok)
		assert.IsType(t, &rtcp.SourceDescription{}, packets[1])
		got = append(got, rr)
	}

	require.Len(t, got, 3)
	for _, rr := range got {
		assert.Equal(t, uint32(0xbeef), rr.SSRC)
		require.Len(t, rr.Reports, 1)
		assert.Equal(t, uint32(0x1234), rr.Reports[0].SSRC)
		assert.Equal(t, uint32(0), rr.Reports[0].TotalLost)
	}
	assert.Equal(t, uint32(1000+49), got[0].Reports[0].LastSequenceNumber)
	assert.Equal(t, uint32(1000+119), got[2].Reports[0].LastSequenceNumber)
	// the sender reports in the stream fill the delay fields
	assert.NotZero(t, got[2].Reports[0].LastSenderReport)
}

func TestDecodeStreamSkipsOtherPayloadTypes(t *testing.T) {
	p, d := newPair(t, codec.VariantG729A, false)
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	d.log = logger.WithField("variant", codec.VariantG729A)

	var stream bytes.Buffer
	for k := 0; k < 4; k++ {
		pkt, err := p.Packetize(tone(k*codec.FrameSize, codec.FrameSize))
		require.NoError(t, err)
		raw, err := pkt.Marshal()
		require.NoError(t, err)
		require.NoError(t, writeFramed(&stream, raw))

		if k == 1 {
			foreign := rtp.Packet{
				Header:  rtp.Header{Version: 2, PayloadType: 0, SequenceNumber: 7, SSRC: 0x99},
				Payload: make([]byte, 80),
			}
			raw, err := foreign.Marshal()
			require.NoError(t, err)
			require.NoError(t, writeFramed(&stream, raw))
		}
	}
	require.NoError(t, writeFramed(&stream, []byte{0x80}))

	var out bytes.Buffer
	require.NoError(t, DecodeStream(context.Background(), &stream, &out, d))
	assert.Equal(t, 4*codec.FrameSize*2, out.Len())
	assert.Equal(t, 0, d.Stats().Lost())

	var skipped *logrus.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Skipping packet of another payload type" {
			skipped = entry
		}
	}
	require.NotNil(t, skipped)
	assert.Equal(t, "unknown", skipped.Data["codec"])
	assert.Equal(t, uint8(0), skipped.Data["payload_type"])
}

func TestStreamNegotiatedPayloadType(t *testing.T) {
	enc, err := codec.NewEncoder(codec.WithPayloadType(110))
	require.NoError(t, err)
	dec, err := codec.NewDecoder(codec.WithPayloadType(110))
	require.NoError(t, err)
	p := NewPacketizer(enc, 1, 1, 1, quietLogger())
	d := NewDepacketizer(dec, quietLogger())

	var stream bytes.Buffer
	require.NoError(t, EncodeStream(context.Background(), bytes.NewReader(PCMToBytes(tone(0, 10*codec.FrameSize))), &stream, p))

	raw, err := readFramed(bytes.NewReader(stream.Bytes()))
	require.NoError(t, err)
	var first rtp.Packet
	require.NoError(t, first.Unmarshal(raw))
	assert.Equal(t, uint8(110), first.PayloadType)

	var out bytes.Buffer
	require.NoError(t, DecodeStream(context.Background(), &stream, &out, d))
	assert.Equal(t, 10*codec.FrameSize*2, out.Len())
}

func TestStreamSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	p, d := newPair(t, codec.VariantG729A, false)
	var stream bytes.Buffer
	require.NoError(t, EncodeStream(context.Background(), bytes.NewReader(PCMToBytes(tone(0, 800))), &stream, p))
	require.NoError(t, DecodeStream(context.Background(), &stream, io.Discard, d))

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "codec.encode_stream", ended[0].Name())
	assert.Equal(t, "codec.decode_stream", ended[1].Name())
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "stream encoded", ended[0].Events()[0].Name)
}

func TestStreamCancelled(t *testing.T) {
	p, d := newPair(t, codec.VariantG729A, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := EncodeStream(ctx, bytes.NewReader(make([]byte, 320)), io.Discard, p)
	assert.ErrorIs(t, err, context.Canceled)
	err = DecodeStream(ctx, bytes.NewReader(nil), io.Discard, d)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadFramedTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFramed(&buf, []byte{1, 2, 3}))
	raw := buf.Bytes()

	b, err := readFramed(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, b)

	_, err = readFramed(bytes.NewReader(raw[:4]))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	_, err = readFramed(bytes.NewReader(raw[:1]))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	_, err = readFramed(bytes.NewReader(nil))
	assert.Equal(t, io.EOF, err)
}
