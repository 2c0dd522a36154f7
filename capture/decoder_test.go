package capture

import (
	"context"
	"encoding/binary"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestParseFFprobeOutput(t *testing.T) {
	out := []byte(`{"streams": [{
		"codec_type": "audio",
		"codec_name": "mp3",
		"codec_long_name": "MP3 (MPEG audio layer 3)",
		"sample_rate": "44100",
		"channels": 2,
		"duration": "12.5",
		"bit_rate": "128000"
	}]}`)

	m, err := parseFFprobeOutput(out)
	if err != nil {
		t.Fatalf("parseFFprobeOutput: %v", err)
	}
	want := AudioMetadata{
		SampleRate: 44100,
		Channels:   2,
		Codec:      "mp3",
		Duration:   12.5,
		Bitrate:    128000,
		Format:     "MP3 (MPEG audio layer 3)",
	}
	if *m != want {
		t.Fatalf("metadata = %+v, want %+v", *m, want)
	}
}

func TestParseFFprobeOutputErrors(t *testing.T) {
	tests := map[string]string{
		"not json":   `{`,
		"no streams": `{"streams": []}`,
		"video":      `{"streams": [{"codec_type": "video", "channels": 1}]}`,
		"channels":   `{"streams": [{"codec_type": "audio", "channels": 0}]}`,
	}
	for name, in := range tests {
		if _, err := parseFFprobeOutput([]byte(in)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestBuildFFmpegArgs(t *testing.T) {
	d := NewDecoder(nil)

	args := d.buildFFmpegArgs(&AudioMetadata{SampleRate: 44100})
	joined := strings.Join(args, " ")
	for _, want := range []string{"-f f64le", "-ac 1", "-ar 22000", "-af aresample=resampler=soxr:precision=20"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args %q missing %q", joined, want)
		}
	}

	// no resampling filter when the input already matches
	args = d.buildFFmpegArgs(&AudioMetadata{SampleRate: 22000})
	if slices.Contains(args, "-af") {
		t.Fatalf("unexpected filter in %v", args)
	}

	cfg := DefaultDecoderConfig()
	cfg.ResampleQuality = "high"
	cfg.MaxDuration = 1500 * time.Millisecond
	joined = strings.Join(NewDecoder(cfg).buildFFmpegArgs(&AudioMetadata{SampleRate: 48000}), " ")
	if !strings.Contains(joined, "-af aresample=resampler=soxr:precision=28") {
		t.Fatalf("resampler missing: %q", joined)
	}
	if !strings.Contains(joined, "-t 1.50") {
		t.Fatalf("duration limit missing: %q", joined)
	}
}

func TestBytesToFloat64(t *testing.T) {
	want := []float64{0, -0.25, 0.5}
	data := make([]byte, 8*len(want)+3)
	for i, v := range want {
		binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(v))
	}

	got := bytesToFloat64(data)
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if bytesToFloat64(data[:7]) != nil {
		t.Fatal("partial sample should decode to nil")
	}
}

func TestDecoderConfigValidate(t *testing.T) {
	if err := DefaultDecoderConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	tests := []func(*DecoderConfig){
		func(c *DecoderConfig) { c.TargetSampleRate = 0 },
		func(c *DecoderConfig) { c.Timeout = -time.Second },
		func(c *DecoderConfig) { c.FFmpegPath = "" },
		func(c *DecoderConfig) { c.ResampleQuality = "best" },
		func(c *DecoderConfig) { c.MaxDuration = -time.Second },
	}
	for i, mutate := range tests {
		cfg := DefaultDecoderConfig()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestDecodeFileMissingTools(t *testing.T) {
	cfg := DefaultDecoderConfig()
	cfg.FFprobePath = filepath.Join(t.TempDir(), "no-ffprobe")
	cfg.FFmpegPath = filepath.Join(t.TempDir(), "no-ffmpeg")
	d := NewDecoder(cfg)

	if _, err := d.DecodeFile(context.Background(), "clip.mp3"); err == nil {
		t.Fatal("expected error when ffprobe is missing")
	}
	if err := d.CheckAvailability(context.Background()); err == nil {
		t.Fatal("expected availability error")
	}
	if _, err := d.DecodeReader(context.Background(), strings.NewReader("")); err != ErrEmptyAudio {
		t.Fatalf("err = %v, want ErrEmptyAudio", err)
	}
}
