// Package metrics exposes Prometheus counters for codec sessions and the
// RTP adapter. Recording is a no-op until Init has been called.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "celp"

var (
	enabled atomic.Bool

	// SessionsCreated counts encoder and decoder sessions.
	SessionsCreated *prometheus.CounterVec
	// FramesEncoded counts encoded frames by transmit type.
	FramesEncoded *prometheus.CounterVec
	// FramesDecoded counts decoded frames by receive type.
	FramesDecoded *prometheus.CounterVec
	// ConcealedFrames counts concealment events by reason.
	ConcealedFrames *prometheus.CounterVec
	// TamingActivations counts frames whose pitch gain was limited.
	TamingActivations *prometheus.CounterVec
	// OverflowRescales counts synthesis overflows.
	OverflowRescales *prometheus.CounterVec
	// RTPPackets counts packets through the RTP adapter.
	RTPPackets *prometheus.CounterVec
	// RTPBytes counts payload octets through the RTP adapter.
	RTPBytes *prometheus.CounterVec
	// RTPPacketsLost counts sequence gaps seen by the depacketizer.
	RTPPacketsLost prometheus.Counter
	// RTPJitter holds the interarrival jitter of the last reception report.
	RTPJitter prometheus.Gauge
)

// Init creates the collectors, registers them with reg and turns recording
// on. Calling it again replaces the collectors.
func Init(reg prometheus.Registerer) error {
	SessionsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_created_total",
		Help:      "Codec sessions created",
	}, []string{"role", "variant"})
	FramesEncoded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "frames_encoded_total",
		Help:      "Frames produced by encoders",
	}, []string{"variant", "frame_type"})
	FramesDecoded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "frames_decoded_total",
		Help:      "Frames consumed by decoders",
	}, []string{"variant", "rx_type"})
	ConcealedFrames = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "concealed_frames_total",
		Help:      "Frames or parameters replaced by concealment",
	}, []string{"variant", "reason"})
	TamingActivations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "taming_activations_total",
		Help:      "Frames coded with a limited pitch gain",
	}, []string{"variant"})
	OverflowRescales = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "synthesis_overflow_total",
		Help:      "Subframes re-synthesized after an overflow",
	}, []string{"variant"})
	RTPPackets = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rtp_packets_total",
		Help:      "RTP packets through the payload adapter",
	}, []string{"direction"})
	RTPBytes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rtp_payload_bytes_total",
		Help:      "RTP payload octets through the payload adapter",
	}, []string{"direction"})
	RTPPacketsLost = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rtp_packets_lost_total",
		Help:      "RTP packets missing from the received sequence",
	})
	RTPJitter = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rtp_jitter_samples",
		Help:      "Interarrival jitter in timestamp units",
	})

	collectors := []prometheus.Collector{
		SessionsCreated, FramesEncoded, FramesDecoded, ConcealedFrames,
		TamingActivations, OverflowRescales, RTPPackets, RTPBytes, RTPPacketsLost,
		RTPJitter,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	enabled.Store(true)
	return nil
}

// Disable turns recording off.
func Disable() {
	enabled.Store(false)
}

// IsMetricsEnabled reports whether Init has succeeded.
func IsMetricsEnabled() bool {
	return enabled.Load()
}

// RecordSession counts a new session.
func RecordSession(role, variant string) {
	SessionsCreated.WithLabelValues(role, variant).Inc()
}

// RecordFrameEncoded counts one encoded frame.
func RecordFrameEncoded(variant, frameType string) {
	FramesEncoded.WithLabelValues(variant, frameType).Inc()
}

// RecordFrameDecoded counts one decoded frame.
func RecordFrameDecoded(variant, rxType string) {
	FramesDecoded.WithLabelValues(variant, rxType).Inc()
}

// RecordConcealment counts a concealment event.
func RecordConcealment(variant, reason string) {
	ConcealedFrames.WithLabelValues(variant, reason).Inc()
}

// RecordTaming counts a tamed frame.
func RecordTaming(variant string) {
	TamingActivations.WithLabelValues(variant).Inc()
}

// RecordOverflowRescale counts a synthesis overflow.
func RecordOverflowRescale(variant string) {
	OverflowRescales.WithLabelValues(variant).Inc()
}

// RecordRTPPacket counts a packet and its payload size.
func RecordRTPPacket(direction string, payloadBytes int) {
	RTPPackets.WithLabelValues(direction).Inc()
	RTPBytes.WithLabelValues(direction).Add(float64(payloadBytes))
}

// RecordRTPLost counts missing packets.
func RecordRTPLost(n int) {
	RTPPacketsLost.Add(float64(n))
}

// RecordRTPJitter sets the current interarrival jitter.
func RecordRTPJitter(jitter uint32) {
	RTPJitter.Set(float64(jitter))
}
