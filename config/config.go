// Package config holds the file-backed settings for the detector, audio
// capture, tuner loop and logging.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/RyanBlaney/sonido-yin/algorithms/pitch"
	"github.com/RyanBlaney/sonido-yin/logging"
)

// Config is the complete application configuration.
type Config struct {
	Detector DetectorConfig `json:"detector" yaml:"detector"`
	Capture  CaptureConfig  `json:"capture" yaml:"capture"`
	Tuner    TunerConfig    `json:"tuner" yaml:"tuner"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging"`
}

// DetectorConfig configures YIN. The sample rate comes from CaptureConfig.
type DetectorConfig struct {
	WindowSize int     `json:"window_size" yaml:"window_size"`
	HopSize    int     `json:"hop_size" yaml:"hop_size"`
	MinFreq    float64 `json:"min_freq" yaml:"min_freq"`
	MaxFreq    float64 `json:"max_freq" yaml:"max_freq"`
	Threshold  float64 `json:"threshold" yaml:"threshold"`
	Method     string  `json:"method" yaml:"method"` // "direct", "fft"
	Workers    int     `json:"workers" yaml:"workers"`
}

// CaptureConfig controls where samples come from and how files are decoded.
type CaptureConfig struct {
	SampleRate int  `json:"sample_rate" yaml:"sample_rate"`
	Length     int  `json:"length" yaml:"length"` // samples per capture
	Loop       bool `json:"loop" yaml:"loop"`     // replay file sources from the start

	FFmpegPath         string  `json:"ffmpeg_path" yaml:"ffmpeg_path"`
	FFprobePath        string  `json:"ffprobe_path" yaml:"ffprobe_path"`
	TimeoutSeconds     int     `json:"timeout_seconds" yaml:"timeout_seconds"`
	MaxDurationSeconds float64 `json:"max_duration_seconds" yaml:"max_duration_seconds"` // decode at most this much audio, 0 means all
}

// TunerConfig sets the tuner loop period and optional pre-filter.
type TunerConfig struct {
	IntervalMS int     `json:"interval_ms" yaml:"interval_ms"`
	DCBlockHz  float64 `json:"dc_block_hz" yaml:"dc_block_hz"` // high-pass cutoff applied to captures, 0 disables
}

// LoggingConfig selects the log level and colored output.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Colors bool   `json:"colors" yaml:"colors"`
}

// DefaultConfig reproduces the handheld tuner: 1024 samples at 22 kHz every
// 100 ms, analysed in 512-sample windows over 50-500 Hz.
func DefaultConfig() Config {
	return Config{
		Detector: DefaultDetectorConfig(),
		Capture:  DefaultCaptureConfig(),
		Tuner:    TunerConfig{IntervalMS: 100},
		Logging:  LoggingConfig{Level: "info", Colors: true},
	}
}

// DefaultDetectorConfig returns the YIN settings of the handheld tuner.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		WindowSize: 512,
		HopSize:    256,
		MinFreq:    50,
		MaxFreq:    500,
		Threshold:  0.1,
		Method:     pitch.MethodDirect.String(),
		Workers:    1,
	}
}

// DefaultCaptureConfig captures 1024 samples at 22 kHz.
func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		SampleRate:     22000,
		Length:         1024,
		FFmpegPath:     "ffmpeg",
		FFprobePath:    "ffprobe",
		TimeoutSeconds: 30,
	}
}

// Params converts the detector settings to pitch.Params at sampleRate.
func (c DetectorConfig) Params(sampleRate int) (pitch.Params, error) {
	method, err := pitch.ParseDifferenceMethod(c.Method)
	if err != nil {
		return pitch.Params{}, err
	}
	return pitch.Params{
		SampleRate: sampleRate,
		WindowSize: c.WindowSize,
		HopSize:    c.HopSize,
		MinFreq:    c.MinFreq,
		MaxFreq:    c.MaxFreq,
		Threshold:  c.Threshold,
		Method:     method,
		Workers:    c.Workers,
	}, nil
}

// Params returns the detector parameters at the capture sample rate.
func (c Config) Params() (pitch.Params, error) {
	return c.Detector.Params(c.Capture.SampleRate)
}

// Interval returns the tuner loop period.
func (c TunerConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMS) * time.Millisecond
}

// Timeout returns the ffmpeg/ffprobe timeout, zero meaning none.
func (c CaptureConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MaxDuration returns the decode length limit, zero meaning none.
func (c CaptureConfig) MaxDuration() time.Duration {
	return time.Duration(c.MaxDurationSeconds * float64(time.Second))
}

// Validate checks every section and returns the first problem found.
func (c Config) Validate() error {
	params, err := c.Params()
	if err != nil {
		return fmt.Errorf("detector: %w", err)
	}
	if err := params.Validate(); err != nil {
		return fmt.Errorf("detector: %w", err)
	}
	if c.Capture.Length < c.Detector.WindowSize {
		return fmt.Errorf("capture: length (%d) must hold at least one window (%d)", c.Capture.Length, c.Detector.WindowSize)
	}
	if c.Capture.TimeoutSeconds < 0 {
		return fmt.Errorf("capture: timeout must not be negative: %d", c.Capture.TimeoutSeconds)
	}
	if c.Capture.MaxDurationSeconds < 0 {
		return fmt.Errorf("capture: max duration must not be negative: %v", c.Capture.MaxDurationSeconds)
	}
	if c.Tuner.IntervalMS <= 0 {
		return fmt.Errorf("tuner: interval must be positive: %d", c.Tuner.IntervalMS)
	}
	if c.Tuner.DCBlockHz < 0 || c.Tuner.DCBlockHz >= c.Detector.MinFreq {
		return fmt.Errorf("tuner: dc block cutoff (%v Hz) must be in [0, min_freq)", c.Tuner.DCBlockHz)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// Load reads a YAML or JSON file over DefaultConfig and validates the result.
// Keys missing from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := Decode(data, filepath.Ext(path), &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode unmarshals data into v according to the file extension ext.
// Unknown extensions try YAML first, then JSON.
func Decode(data []byte, ext string, v any) error {
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, v); err != nil {
			if err := json.Unmarshal(data, v); err != nil {
				return fmt.Errorf("failed to parse file (tried YAML and JSON): %w", err)
			}
		}
	}
	return nil
}

// Logger builds a logger from the logging section.
func (c LoggingConfig) Logger() (logging.Logger, error) {
	level, err := logging.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	var l *logging.DefaultLogger
	if c.Colors {
		l = logging.NewDefaultLogger()
	} else {
		l = logging.NewDefaultLoggerNoColor()
	}
	l.SetLevel(level)
	return l, nil
}
