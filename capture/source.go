// Package capture supplies mono float64 sample blocks to the detector, from a
// microphone-style device, an in-memory buffer or a decoded audio file.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrEmptyAudio is returned when a decode yields no samples.
	ErrEmptyAudio = errors.New("capture: no audio samples")
	// ErrExhausted is returned by a non-looping BufferSource once fewer than
	// the requested samples remain.
	ErrExhausted = errors.New("capture: source exhausted")
)

// Source produces blocks of n mono samples at sampleRate.
type Source interface {
	Capture(ctx context.Context, n, sampleRate int) ([]float64, error)
}

// MidScale is the reading of an idle unsigned 16-bit microphone input.
const MidScale = 32767

// NormalizeU16 centres unsigned 16-bit readings on zero and scales them by
// 1/65536, so full swing maps to roughly [-0.5, 0.5].
func NormalizeU16(raw []uint16) []float64 {
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = (float64(v) - MidScale) / 65536
	}
	return out
}

// Device fills buf with consecutive unsigned 16-bit readings taken at rate Hz.
type Device interface {
	ReadInto(ctx context.Context, buf []uint16, rate int) error
}

// DeviceSource adapts a Device to Source.
type DeviceSource struct {
	dev Device
}

// NewDeviceSource reads from dev.
func NewDeviceSource(dev Device) *DeviceSource {
	return &DeviceSource{dev: dev}
}

// Capture reads n raw samples and normalizes them around mid-scale.
func (s *DeviceSource) Capture(ctx context.Context, n, sampleRate int) ([]float64, error) {
	if n <= 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("capture: invalid request of %d samples at %d Hz", n, sampleRate)
	}
	raw := make([]uint16, n)
	if err := s.dev.ReadInto(ctx, raw, sampleRate); err != nil {
		return nil, fmt.Errorf("capture: device read failed: %w", err)
	}
	return NormalizeU16(raw), nil
}

// BufferSource serves consecutive blocks from decoded PCM recorded at a fixed
// sample rate. It is safe for concurrent use.
type BufferSource struct {
	mu         sync.Mutex
	pcm        []float64
	sampleRate int
	pos        int
	loop       bool
}

// NewBufferSource serves pcm, recorded at sampleRate, from the start.
func NewBufferSource(pcm []float64, sampleRate int, loop bool) *BufferSource {
	return &BufferSource{pcm: pcm, sampleRate: sampleRate, loop: loop}
}

// SampleRate returns the rate the buffer was recorded at.
func (s *BufferSource) SampleRate() int {
	return s.sampleRate
}

// Len returns the total number of buffered samples.
func (s *BufferSource) Len() int {
	return len(s.pcm)
}

// Capture returns the next n samples. A looping source wraps to the start of
// the buffer; otherwise a short tail yields ErrExhausted.
func (s *BufferSource) Capture(ctx context.Context, n, sampleRate int) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, fmt.Errorf("capture: invalid request of %d samples", n)
	}
	if sampleRate != s.sampleRate {
		return nil, fmt.Errorf("capture: buffer holds %d Hz audio, %d Hz requested", s.sampleRate, sampleRate)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pcm) == 0 {
		return nil, ErrEmptyAudio
	}
	if !s.loop {
		if s.pos+n > len(s.pcm) {
			return nil, ErrExhausted
		}
		out := make([]float64, n)
		copy(out, s.pcm[s.pos:s.pos+n])
		s.pos += n
		return out, nil
	}

	out := make([]float64, n)
	for filled := 0; filled < n; {
		c := copy(out[filled:], s.pcm[s.pos:])
		filled += c
		s.pos = (s.pos + c) % len(s.pcm)
	}
	return out, nil
}

// Reset rewinds the source to the first sample.
func (s *BufferSource) Reset() {
	s.mu.Lock()
	s.pos = 0
	s.mu.Unlock()
}
