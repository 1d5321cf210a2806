// Command celpcodec encodes 16-bit 8 kHz PCM into CELP bit frames or RTP
// packet streams and decodes them back.
//
// Usage:
//
//	celpcodec encode -in speech.pcm -out speech.bit
//	celpcodec decode -in speech.bit -out decoded.pcm
//	celpcodec encode -format rtp -sdp answer.sdp -in speech.pcm -out speech.rtp
//	celpcodec decode -format rtp -rtcp reports.rtcp -in speech.rtp -out decoded.pcm
//	celpcodec offer -port 40000
//
// Settings come from the environment, optionally seeded from a .env file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"celp-codec/pkg/bitstream"
	"celp-codec/pkg/codec"
	"celp-codec/pkg/config"
	"celp-codec/pkg/media"
	"celp-codec/pkg/metrics"
	"celp-codec/pkg/telemetry/tracing"
)

const serviceName = "celpcodec"

var errUsage = errors.New("usage: celpcodec encode|decode|offer [flags]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "celpcodec:", err)
		os.Exit(1)
	}
}

type options struct {
	in       string
	out      string
	format   string
	envFile  string
	sdpFile  string
	rtcpFile string
	ip       string
	port     int

	// payloadType is the dynamic type a session description mapped the
	// codec to, zero for the default.
	payloadType uint8
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd := args[0]
	switch cmd {
	case "encode", "decode", "offer":
	default:
		return errUsage
	}

	var opts options
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.in, "in", "-", "Input file, - for stdin")
	fs.StringVar(&opts.out, "out", "-", "Output file, - for stdout")
	fs.StringVar(&opts.format, "format", "serial", "Coded format: serial or rtp")
	fs.StringVar(&opts.envFile, "env", ".env", "Environment file")
	fs.StringVar(&opts.sdpFile, "sdp", "", "Session description fixing variant, DTX and payload type")
	fs.StringVar(&opts.rtcpFile, "rtcp", "", "File receiving RTCP receiver reports when decoding rtp")
	fs.StringVar(&opts.ip, "ip", "127.0.0.1", "Address advertised by offer")
	fs.IntVar(&opts.port, "port", 40000, "RTP port advertised by offer")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if opts.format != "serial" && opts.format != "rtp" {
		return fmt.Errorf("unknown format %q", opts.format)
	}

	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return err
	}
	if opts.sdpFile != "" {
		raw, err := os.ReadFile(opts.sdpFile)
		if err != nil {
			return err
		}
		params, err := media.ParseSession(raw)
		if err != nil {
			return err
		}
		cfg.Variant = params.Variant
		cfg.DTX = params.DTX
		opts.payloadType = params.PayloadType
	}

	logger := cfg.NewLogger()
	logger.SetOutput(stderr)

	shutdown, err := tracing.Init(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.WithError(err).Warn("Failed to flush traces")
		}
	}()

	if cfg.MetricsEnabled {
		stopMetrics, err := serveMetrics(cfg.MetricsAddr, logger)
		if err != nil {
			return err
		}
		defer stopMetrics()
	}

	r, closeIn, err := openInput(opts.in, stdin)
	if err != nil {
		return err
	}
	defer closeIn()
	w, closeOut, err := openOutput(opts.out, stdout)
	if err != nil {
		return err
	}

	switch cmd {
	case "encode":
		err = encode(ctx, cfg, logger, opts, r, w)
	case "decode":
		err = decode(ctx, cfg, logger, opts, r, w)
	case "offer":
		err = offer(cfg, opts, w)
	}
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	return err
}

func codecOptions(cfg *config.Config, logger *logrus.Logger, opts options) []codec.Option {
	codecOpts := cfg.CodecOptions(logger)
	if opts.payloadType != 0 {
		codecOpts = append(codecOpts, codec.WithPayloadType(opts.payloadType))
	}
	return codecOpts
}

func encode(ctx context.Context, cfg *config.Config, logger *logrus.Logger, opts options, r io.Reader, w io.Writer) error {
	enc, err := codec.NewEncoder(codecOptions(cfg, logger, opts)...)
	if err != nil {
		return err
	}
	if opts.format == "rtp" {
		p := media.NewPacketizer(enc, rand.Uint32(), uint16(rand.Uint32()), rand.Uint32(), logger)
		return media.EncodeStream(ctx, r, w, p)
	}

	frames := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		pcm, readErr := media.ReadPCM(r, codec.FrameSize)
		if readErr == io.EOF {
			break
		}
		if readErr != nil && readErr != io.ErrUnexpectedEOF {
			return fmt.Errorf("read PCM: %w", readErr)
		}
		f, err := enc.EncodeFrame(pcm)
		if err != nil {
			return err
		}
		if _, err := w.Write(f.MarshalSerial()); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
		frames++
		if readErr == io.ErrUnexpectedEOF {
			break
		}
	}
	logger.WithField("frames", frames).Info("Encoded serial stream")
	return nil
}

func decode(ctx context.Context, cfg *config.Config, logger *logrus.Logger, opts options, r io.Reader, w io.Writer) error {
	dec, err := codec.NewDecoder(codecOptions(cfg, logger, opts)...)
	if err != nil {
		return err
	}
	if opts.format == "rtp" {
		d := media.NewDepacketizer(dec, logger)
		if opts.rtcpFile != "" {
			f, err := os.Create(opts.rtcpFile)
			if err != nil {
				return err
			}
			defer f.Close()
			d.SetReportWriter(f, rand.Uint32())
		}
		return media.DecodeStream(ctx, r, w, d)
	}

	frames := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		f, err := bitstream.ReadSerial(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read frame %d: %w", frames, err)
		}
		pcm, err := dec.DecodeFrame(f, false)
		if err != nil {
			return err
		}
		if _, err := w.Write(media.PCMToBytes(pcm)); err != nil {
			return fmt.Errorf("write PCM: %w", err)
		}
		frames++
	}
	logger.WithField("frames", frames).Info("Decoded serial stream")
	return nil
}

func offer(cfg *config.Config, opts options, w io.Writer) error {
	raw, err := media.Offer(cfg.Variant, cfg.DTX, opts.ip, opts.port, uint64(time.Now().Unix()))
	if err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}

// serveMetrics registers the codec collectors and, when addr is set,
// exposes them over HTTP until the returned stop is called.
func serveMetrics(addr string, logger *logrus.Logger) (func(), error) {
	reg := prometheus.NewRegistry()
	if err := metrics.Init(reg); err != nil {
		return nil, err
	}
	if addr == "" {
		return metrics.Disable, nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).WithField("addr", addr).Error("Metrics server failed")
		}
	}()
	logger.WithField("addr", addr).Info("Serving metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		metrics.Disable()
	}, nil
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
