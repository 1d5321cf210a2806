// Package config reads codec settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"celp-codec/pkg/codec"
)

// ErrInvalidConfig is returned for a setting that cannot be parsed or is
// out of range.
var ErrInvalidConfig = errors.New("config: invalid value")

// Environment variable names.
const (
	EnvVariant        = "CODEC_VARIANT"
	EnvDTX            = "CODEC_DTX"
	EnvPostFilter     = "CODEC_POSTFILTER"
	EnvVADThresholdDB = "CODEC_VAD_THRESHOLD_DB"
	EnvLogLevel       = "LOG_LEVEL"
	EnvMetricsEnabled = "METRICS_ENABLED"
	EnvMetricsAddr    = "METRICS_ADDR"
	EnvOTLPEndpoint   = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

// Config holds the settings shared by the command and the media layer.
// An empty MetricsAddr or OTLPEndpoint turns serving or export off.
type Config struct {
	Variant        string
	DTX            bool
	PostFilter     bool
	VADThresholdDB float64
	LogLevel       logrus.Level
	MetricsEnabled bool
	MetricsAddr    string
	OTLPEndpoint   string
}

// Load reads envFile when it exists, then the environment. Variables
// already set take precedence over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromEnv()
}

// FromEnv reads the settings from the environment and validates them.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Variant:        getEnv(EnvVariant, codec.VariantG729A),
		VADThresholdDB: codec.DefaultVADThresholdDB,
		PostFilter:     true,
		LogLevel:       logrus.InfoLevel,
		MetricsAddr:    getEnv(EnvMetricsAddr, ""),
		OTLPEndpoint:   getEnv(EnvOTLPEndpoint, ""),
	}

	var err error
	if cfg.DTX, err = getBool(EnvDTX, false); err != nil {
		return nil, err
	}
	if cfg.PostFilter, err = getBool(EnvPostFilter, true); err != nil {
		return nil, err
	}
	if cfg.MetricsEnabled, err = getBool(EnvMetricsEnabled, false); err != nil {
		return nil, err
	}
	if v := os.Getenv(EnvVADThresholdDB); v != "" {
		if cfg.VADThresholdDB, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvVADThresholdDB, v)
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		if cfg.LogLevel, err = logrus.ParseLevel(v); err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvLogLevel, v)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the variant name and the detector threshold.
func (c *Config) Validate() error {
	if _, err := codec.LookupVariant(c.Variant); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.VADThresholdDB <= 0 || c.VADThresholdDB > 40 {
		return fmt.Errorf("%w: vad threshold %.1f dB out of range", ErrInvalidConfig, c.VADThresholdDB)
	}
	return nil
}

// CodecOptions turns the settings into session options.
func (c *Config) CodecOptions(logger *logrus.Logger) []codec.Option {
	return []codec.Option{
		codec.WithLogger(logger),
		codec.WithVariant(c.Variant),
		codec.WithDTX(c.DTX),
		codec.WithPostFilter(c.PostFilter),
		codec.WithVADThreshold(c.VADThresholdDB),
	}
}

// NewLogger returns a logger at the configured level.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.LogLevel)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, key, v)
	}
	return b, nil
}
