package capture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/RyanBlaney/sonido-yin/logging"
)

// LoadFile decodes path to mono PCM at cfg.TargetSampleRate, truncated to
// cfg.MaxDuration when set. WAV files are decoded in-process; anything else
// goes through ffmpeg.
func LoadFile(ctx context.Context, path string, cfg *DecoderConfig) ([]float64, error) {
	if cfg == nil {
		cfg = DefaultDecoderConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("decoder config: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".wav") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		logging.Debug("Decoding wav in-process", logging.Fields{
			"component": "capture",
			"filename":  path,
		})
		return decodeWAVLimited(f, cfg)
	}

	dec := NewDecoder(cfg)
	if err := dec.CheckAvailability(ctx); err != nil {
		return nil, fmt.Errorf("decoding %s files requires ffmpeg: %w", filepath.Ext(path), err)
	}
	audio, err := dec.DecodeFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return audio.PCM, nil
}

// LoadReader decodes a whole stream the way LoadFile decodes a file. RIFF/WAVE
// data is recognised by its header; anything else is piped through ffmpeg.
func LoadReader(ctx context.Context, r io.Reader, cfg *DecoderConfig) ([]float64, error) {
	if cfg == nil {
		cfg = DefaultDecoderConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("decoder config: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyAudio
	}

	if isWAV(data) {
		logging.Debug("Decoding wav stream in-process", logging.Fields{
			"component": "capture",
			"bytes":     len(data),
		})
		return decodeWAVLimited(bytes.NewReader(data), cfg)
	}

	dec := NewDecoder(cfg)
	if err := dec.CheckAvailability(ctx); err != nil {
		return nil, fmt.Errorf("decoding non-WAV input requires ffmpeg: %w", err)
	}
	audio, err := dec.DecodeReader(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return audio.PCM, nil
}

func isWAV(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

// decodeWAVLimited applies cfg.MaxDuration to the in-process path, which
// ffmpeg otherwise handles with -t.
func decodeWAVLimited(r io.Reader, cfg *DecoderConfig) ([]float64, error) {
	pcm, err := DecodeWAV(r, cfg.TargetSampleRate)
	if err != nil {
		return nil, err
	}
	if cfg.MaxDuration > 0 {
		if n := int(cfg.MaxDuration.Seconds() * float64(cfg.TargetSampleRate)); n < len(pcm) {
			pcm = pcm[:n]
		}
	}
	return pcm, nil
}

// OpenFile decodes path and wraps the result in a BufferSource.
func OpenFile(ctx context.Context, path string, cfg *DecoderConfig, loop bool) (*BufferSource, error) {
	if cfg == nil {
		cfg = DefaultDecoderConfig()
	}
	pcm, err := LoadFile(ctx, path, cfg)
	if err != nil {
		return nil, err
	}
	return NewBufferSource(pcm, cfg.TargetSampleRate, loop), nil
}
