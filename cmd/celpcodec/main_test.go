package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"celp-codec/pkg/codec"
	"celp-codec/pkg/config"
	"celp-codec/pkg/media"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvVariant, config.EnvDTX, config.EnvPostFilter, config.EnvVADThresholdDB,
		config.EnvLogLevel, config.EnvMetricsEnabled, config.EnvMetricsAddr, config.EnvOTLPEndpoint,
	} {
		t.Setenv(key, "")
	}
}

func writeTone(t *testing.T, dir string, frames int) string {
	t.Helper()
	pcm := make([]int16, frames*codec.FrameSize)
	for i := range pcm {
		pcm[i] = int16(6000 * math.Sin(2*math.Pi*300*float64(i)/codec.SampleRate))
	}
	path := filepath.Join(dir, "in.pcm")
	require.NoError(t, os.WriteFile(path, media.PCMToBytes(pcm), 0o600))
	return path
}

func TestRunRoundTrip(t *testing.T) {
	testCases := []struct {
		format    string
		codedSize int
	}{
		{"serial", 10 * 2 * (2 + 80)},
		{"rtp", -1},
	}

	for _, tc := range testCases {
		t.Run(tc.format, func(t *testing.T) {
			clearEnv(t)
			dir := t.TempDir()
			in := writeTone(t, dir, 10)
			coded := filepath.Join(dir, "coded")
			out := filepath.Join(dir, "out.pcm")
			envFile := filepath.Join(dir, "absent.env")
			ctx := context.Background()

			require.NoError(t, run(ctx, []string{"encode", "-format", tc.format, "-env", envFile, "-in", in, "-out", coded}, nil, io.Discard, io.Discard))
			require.NoError(t, run(ctx, []string{"decode", "-format", tc.format, "-env", envFile, "-in", coded, "-out", out}, nil, io.Discard, io.Discard))

			if tc.codedSize >= 0 {
				info, err := os.Stat(coded)
				require.NoError(t, err)
				assert.Equal(t, int64(tc.codedSize), info.Size())
			}
			decoded, err := os.ReadFile(out)
			require.NoError(t, err)
			assert.Len(t, decoded, 10*codec.FrameSize*2)
		})
	}
}

func TestRunStdio(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), "absent.env")

	var coded bytes.Buffer
	pcm := bytes.NewReader(make([]byte, 3*codec.FrameSize*2))
	require.NoError(t, run(context.Background(), []string{"encode", "-env", envFile}, pcm, &coded, io.Discard))
	assert.Equal(t, 3*2*(2+80), coded.Len())
}

func TestRunOffer(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvVariant, codec.VariantG729A20)
	t.Setenv(config.EnvDTX, "true")
	envFile := filepath.Join(t.TempDir(), "absent.env")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"offer", "-env", envFile, "-ip", "192.0.2.1", "-port", "5004"}, nil, &out, io.Discard))

	params, err := media.ParseSession(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, codec.VariantG729A20, params.Variant)
	assert.True(t, params.DTX)
	assert.Equal(t, 5004, params.Port)
}

func TestRunSessionDescriptionOverridesConfig(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, "absent.env")
	sdpFile := filepath.Join(dir, "answer.sdp")

	raw, err := media.Offer(codec.VariantG729A20, false, "192.0.2.1", 5004, 1)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(sdpFile, raw, 0o600))

	var coded bytes.Buffer
	pcm := bytes.NewReader(make([]byte, 4*codec.FrameSize*2))
	args := []string{"encode", "-format", "rtp", "-env", envFile, "-sdp", sdpFile}
	require.NoError(t, run(context.Background(), args, pcm, &coded, io.Discard))

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"decode", "-format", "rtp", "-env", envFile, "-sdp", sdpFile}, &coded, &out, io.Discard))
	assert.Equal(t, 4*codec.FrameSize*2, out.Len())
}

func TestRunRTCPReports(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	in := writeTone(t, dir, 60)
	coded := filepath.Join(dir, "coded.rtp")
	out := filepath.Join(dir, "out.pcm")
	reports := filepath.Join(dir, "reports.rtcp")
	envFile := filepath.Join(dir, "absent.env")
	ctx := context.Background()

	require.NoError(t, run(ctx, []string{"encode", "-format", "rtp", "-env", envFile, "-in", in, "-out", coded}, nil, io.Discard, io.Discard))
	require.NoError(t, run(ctx, []string{"decode", "-format", "rtp", "-env", envFile, "-in", coded, "-out", out, "-rtcp", reports}, nil, io.Discard, io.Discard))

	raw, err := os.ReadFile(reports)
	require.NoError(t, err)

	// one report after 50 packets and one at the end of the stream
	var kinds []rtcp.Packet
	for len(raw) > 0 {
		require.GreaterOrEqual(t, len(raw), 2)
		n := int(binary.BigEndian.Uint16(raw))
		require.GreaterOrEqual(t, len(raw), 2+n)
		packets, err := rtcp.Unmarshal(raw[2 : 2+n])
		require.NoError(t, err)
		kinds = append(kinds, packets[0])
		raw = raw[2+n:]
	}
	require.Len(t, kinds, 2)
	for _, p := range kinds {
		assert.IsType(t, &rtcp.ReceiverReport{}, p)
	}
}

func TestRunNegotiatedPayloadType(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, "absent.env")
	sdpFile := filepath.Join(dir, "answer.sdp")
	answer := strings.Join([]string{
		"v=0",
		"o=- 7 7 IN IP4 198.51.100.7",
		"s=call",
		"c=IN IP4 198.51.100.7",
		"t=0 0",
		"m=audio 5004 RTP/AVP 0 112",
		"a=rtpmap:112 CELP/8000",
		"a=fmtp:112 annexb=no",
		"a=ptime:10",
	}, "\r\n") + "\r\n"
	require.NoError(t, os.WriteFile(sdpFile, []byte(answer), 0o600))

	var coded bytes.Buffer
	pcm := bytes.NewReader(make([]byte, 4*codec.FrameSize*2))
	args := []string{"encode", "-format", "rtp", "-env", envFile, "-sdp", sdpFile}
	require.NoError(t, run(context.Background(), args, pcm, &coded, io.Discard))

	raw := coded.Bytes()
	n := int(binary.BigEndian.Uint16(raw))
	var first rtp.Packet
	require.NoError(t, first.Unmarshal(raw[2:2+n]))
	assert.Equal(t, uint8(112), first.PayloadType)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"decode", "-format", "rtp", "-env", envFile, "-sdp", sdpFile}, &coded, &out, io.Discard))
	assert.Equal(t, 4*codec.FrameSize*2, out.Len())
}

func TestRunErrors(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), "absent.env")

	testCases := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"transcode"}},
		{"unknown format", []string{"encode", "-env", envFile, "-format", "wav"}},
		{"unknown flag", []string{"encode", "-bogus"}},
		{"missing input", []string{"decode", "-env", envFile, "-in", filepath.Join(t.TempDir(), "none")}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := run(context.Background(), tc.args, bytes.NewReader(nil), io.Discard, io.Discard)
			assert.Error(t, err)
		})
	}

	assert.ErrorIs(t, run(context.Background(), nil, nil, io.Discard, io.Discard), errUsage)
}
