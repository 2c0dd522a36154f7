package capture

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-yin/logging"
)

// AudioData is decoded mono PCM at a known sample rate.
type AudioData struct {
	PCM        []float64      `json:"-"`
	SampleRate int            `json:"sample_rate"`
	Duration   time.Duration  `json:"duration"`
	Source     *AudioMetadata `json:"source,omitempty"`
}

// AudioMetadata holds detected audio properties from FFprobe
type AudioMetadata struct {
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	Codec      string  `json:"codec"`
	Duration   float64 `json:"duration"`
	Bitrate    int     `json:"bitrate"`
	Format     string  `json:"format"`
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	TargetSampleRate int           `json:"target_sample_rate"`
	MaxDuration      time.Duration `json:"max_duration"`
	ResampleQuality  string        `json:"resample_quality"` // "fast", "medium", "high"
	FFmpegPath       string        `json:"ffmpeg_path"`
	FFprobePath      string        `json:"ffprobe_path"`
	Timeout          time.Duration `json:"timeout"` // per ffmpeg/ffprobe run, 0 disables
}

// DefaultDecoderConfig returns the decoder settings for the 22 kHz tuner.
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate: 22000,
		ResampleQuality:  "medium",
		FFmpegPath:       "ffmpeg",  // Assume in PATH
		FFprobePath:      "ffprobe", // Assume in PATH
		Timeout:          30 * time.Second,
	}
}

// Validate checks the configuration without touching the filesystem.
func (c *DecoderConfig) Validate() error {
	if c.TargetSampleRate <= 0 {
		return fmt.Errorf("target sample rate must be positive: %d", c.TargetSampleRate)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %v", c.Timeout)
	}
	if c.MaxDuration < 0 {
		return fmt.Errorf("max duration must not be negative: %v", c.MaxDuration)
	}
	if c.FFmpegPath == "" || c.FFprobePath == "" {
		return errors.New("ffmpeg and ffprobe paths are required")
	}
	switch c.ResampleQuality {
	case "", "fast", "medium", "high":
	default:
		return fmt.Errorf("unknown resample quality: %q", c.ResampleQuality)
	}
	return nil
}

// Decoder turns arbitrary audio files into mono PCM by shelling out to
// ffprobe and ffmpeg.
type Decoder struct {
	config *DecoderConfig
	logger logging.Logger
}

// NewDecoder creates a decoder. A nil config selects DefaultDecoderConfig.
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{
		config: config,
		logger: logging.WithFields(logging.Fields{"component": "audio_decoder"}),
	}
}

// DecodeFile probes and decodes filename to mono float64 PCM at the target
// sample rate.
func (d *Decoder) DecodeFile(ctx context.Context, filename string) (*AudioData, error) {
	logger := d.logger.WithFields(logging.Fields{
		"function": "DecodeFile",
		"filename": filename,
	})

	logger.Debug("Starting audio file decode")

	metadata, err := d.probe(ctx, filename, nil)
	if err != nil {
		logger.Error(err, "Failed to probe audio file")
		return nil, err
	}
	d.logMetadata(logger, metadata)

	args := append([]string{"-i", filename}, d.buildFFmpegArgs(metadata)...)
	return d.decode(ctx, args, nil, metadata, logger)
}

// DecodeReader decodes audio piped through ffmpeg's stdin.
func (d *Decoder) DecodeReader(ctx context.Context, r io.Reader) (*AudioData, error) {
	logger := d.logger.WithFields(logging.Fields{"function": "DecodeReader"})

	data, err := io.ReadAll(r)
	if err != nil {
		logger.Error(err, "Failed to read data from reader")
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyAudio
	}

	metadata, err := d.probe(ctx, "pipe:0", data)
	if err != nil {
		logger.Error(err, "Failed to probe audio metadata")
		return nil, err
	}
	d.logMetadata(logger, metadata)

	args := append([]string{"-i", "pipe:0"}, d.buildFFmpegArgs(metadata)...)
	return d.decode(ctx, args, data, metadata, logger)
}

func (d *Decoder) logMetadata(logger logging.Logger, m *AudioMetadata) {
	logger.Debug("Audio metadata detected", logging.Fields{
		"input_sample_rate": m.SampleRate,
		"input_channels":    m.Channels,
		"input_codec":       m.Codec,
		"input_duration":    m.Duration,
		"input_bitrate":     m.Bitrate,
	})
}

// run executes bin with a per-call timeout and optional stdin.
func (d *Decoder) run(ctx context.Context, bin string, args []string, stdin []byte) ([]byte, error) {
	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	output, err := cmd.Output()
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return nil, fmt.Errorf("%s failed: %w, stderr: %s", bin, err, strings.TrimSpace(string(exitError.Stderr)))
		}
		return nil, fmt.Errorf("%s failed: %w", bin, err)
	}
	return output, nil
}

func (d *Decoder) probe(ctx context.Context, input string, stdin []byte) (*AudioMetadata, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a:0", // First audio stream only
		input,
	}
	output, err := d.run(ctx, d.config.FFprobePath, args, stdin)
	if err != nil {
		return nil, err
	}
	return parseFFprobeOutput(output)
}

func (d *Decoder) decode(ctx context.Context, args []string, stdin []byte, metadata *AudioMetadata, logger logging.Logger) (*AudioData, error) {
	args = append(args, "pipe:1")

	logger.Debug("Running ffmpeg command", logging.Fields{
		"args": strings.Join(args, " "),
	})

	start := time.Now()
	output, err := d.run(ctx, d.config.FFmpegPath, args, stdin)
	if err != nil {
		logger.Error(err, "FFmpeg decode failed")
		return nil, fmt.Errorf("ffmpeg decode failed: %w", err)
	}

	samples := bytesToFloat64(output)
	if len(samples) == 0 {
		return nil, ErrEmptyAudio
	}
	duration := time.Duration(len(samples)) * time.Second / time.Duration(d.config.TargetSampleRate)

	logger.Debug("FFmpeg decode completed successfully", logging.Fields{
		"output_samples":     len(samples),
		"output_sample_rate": d.config.TargetSampleRate,
		"output_duration":    duration.Seconds(),
		"decode_time":        time.Since(start).Seconds(),
	})

	return &AudioData{
		PCM:        samples,
		SampleRate: d.config.TargetSampleRate,
		Duration:   duration,
		Source:     metadata,
	}, nil
}

// parseFFprobeOutput parses ffprobe JSON to extract audio metadata
func parseFFprobeOutput(jsonData []byte) (*AudioMetadata, error) {
	var probe struct {
		Streams []struct {
			CodecType     string `json:"codec_type"`
			CodecName     string `json:"codec_name"`
			SampleRate    string `json:"sample_rate"`
			Channels      int    `json:"channels"`
			Duration      string `json:"duration"`
			BitRate       string `json:"bit_rate"`
			CodecLongName string `json:"codec_long_name"`
		} `json:"streams"`
	}

	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 {
		return nil, errors.New("no audio streams found")
	}

	stream := probe.Streams[0]
	if stream.CodecType != "audio" {
		return nil, fmt.Errorf("stream is not audio type: %s", stream.CodecType)
	}
	if stream.Channels <= 0 || stream.Channels > 8 {
		return nil, fmt.Errorf("invalid channel count: %d", stream.Channels)
	}

	// ffprobe reports numbers as strings; unparseable ones stay zero
	sampleRate, _ := strconv.Atoi(stream.SampleRate)
	duration, _ := strconv.ParseFloat(stream.Duration, 64)
	bitrate, _ := strconv.Atoi(stream.BitRate)

	return &AudioMetadata{
		SampleRate: sampleRate,
		Channels:   stream.Channels,
		Codec:      stream.CodecName,
		Duration:   duration,
		Bitrate:    bitrate,
		Format:     stream.CodecLongName,
	}, nil
}

// buildFFmpegArgs builds the output half of the ffmpeg command line: mono
// f64le at the target rate, resampled with soxr when the rates differ.
func (d *Decoder) buildFFmpegArgs(metadata *AudioMetadata) []string {
	args := []string{
		"-vn",
		"-f", "f64le",
		"-ac", "1",
		"-ar", strconv.Itoa(d.config.TargetSampleRate),
	}

	if metadata.SampleRate != d.config.TargetSampleRate {
		switch d.config.ResampleQuality {
		case "fast":
			args = append(args, "-af", "aresample=resampler=soxr:precision=16")
		case "medium":
			args = append(args, "-af", "aresample=resampler=soxr:precision=20")
		case "high":
			args = append(args, "-af", "aresample=resampler=soxr:precision=28")
		}
	}

	if d.config.MaxDuration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.2f", d.config.MaxDuration.Seconds()))
	}

	return append(args, "-v", "error")
}

// bytesToFloat64 converts raw little-endian float64 bytes, dropping any
// trailing partial sample.
func bytesToFloat64(data []byte) []float64 {
	count := len(data) / 8
	if count == 0 {
		return nil
	}
	samples := make([]float64, count)
	for i := range samples {
		samples[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return samples
}

// CheckAvailability verifies that ffmpeg and ffprobe can be executed.
func (d *Decoder) CheckAvailability(ctx context.Context) error {
	for _, bin := range []string{d.config.FFmpegPath, d.config.FFprobePath} {
		if err := exec.CommandContext(ctx, bin, "-version").Run(); err != nil {
			return fmt.Errorf("%s not available: %w", bin, err)
		}
	}
	return nil
}
