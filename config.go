package edgemap

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/joho/godotenv"
)

// Environment variables read by LoadConfig.
const (
	EnvAlgorithm      = "EDGEMAP_ALGORITHM"
	EnvThresholdLow   = "EDGEMAP_THRESHOLD_LOW"
	EnvThresholdHigh  = "EDGEMAP_THRESHOLD_HIGH"
	EnvChannelOrder   = "EDGEMAP_CHANNEL_ORDER"
	EnvOutputChannels = "EDGEMAP_OUTPUT_CHANNELS"
	EnvWorkers        = "EDGEMAP_WORKERS"
	EnvLogLevel       = "EDGEMAP_LOG_LEVEL"
)

// Config holds the defaults of the command line tool. Command line flags
// take precedence over the values loaded from the environment.
type Config struct {
	Algorithm      Algorithm
	ThresholdLow   float64
	ThresholdHigh  float64
	ChannelOrder   ChannelOrder
	OutputChannels int
	Workers        int
	LogLevel       logger.Level
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Algorithm:      Canny,
		ThresholdLow:   DefaultThresholdLow,
		ThresholdHigh:  DefaultThresholdHigh,
		ChannelOrder:   OrderRGB,
		OutputChannels: 4,
		LogLevel:       logger.LevelWarning,
	}
}

// LoadConfig seeds the environment from envFile and reads the EDGEMAP_* variables.
// With an empty envFile a .env file of the working directory is loaded when present.
// Variables which are already set are not overridden by the file.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("unable to load the env file %q: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("unable to load the .env file: %w", err)
	}

	cfg := DefaultConfig()
	if v, ok := os.LookupEnv(EnvAlgorithm); ok {
		alg, err := ParseAlgorithm(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvAlgorithm, err)
		}
		cfg.Algorithm = alg
	}
	if err := lookupFloat(EnvThresholdLow, &cfg.ThresholdLow); err != nil {
		return Config{}, err
	}
	if err := lookupFloat(EnvThresholdHigh, &cfg.ThresholdHigh); err != nil {
		return Config{}, err
	}
	if v, ok := os.LookupEnv(EnvChannelOrder); ok {
		order, err := ParseChannelOrder(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvChannelOrder, err)
		}
		cfg.ChannelOrder = order
	}
	if err := lookupInt(EnvOutputChannels, &cfg.OutputChannels); err != nil {
		return Config{}, err
	}
	if FormatFromChannels(cfg.OutputChannels) == FormatUnknown {
		return Config{}, fmt.Errorf("%s: %w: %d", EnvOutputChannels, ErrUnsupportedChannels, cfg.OutputChannels)
	}
	if err := lookupInt(EnvWorkers, &cfg.Workers); err != nil {
		return Config{}, err
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		if err := cfg.LogLevel.Set(v); err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
	}
	return cfg, nil
}

// Processor returns a Processor initialized from the configuration.
func (c Config) Processor() *Processor {
	p := NewProcessor()
	p.Algorithm = c.Algorithm
	p.ThresholdLow = c.ThresholdLow
	p.ThresholdHigh = c.ThresholdHigh
	p.ChannelOrder = c.ChannelOrder
	p.OutputChannels = c.OutputChannels
	return p
}

func lookupFloat(key string, dst *float64) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func lookupInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
