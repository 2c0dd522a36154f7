package capture

import (
	"context"
	"errors"
	"testing"

	"github.com/RyanBlaney/sonido-yin/internal/testutil"
)

func TestNormalizeU16(t *testing.T) {
	tests := []struct {
		raw  uint16
		want float64
	}{
		{32767, 0},
		{65535, 0.5},
		{0, -32767.0 / 65536},
		{33791, 1024.0 / 65536},
	}
	raw := make([]uint16, len(tests))
	for i, tt := range tests {
		raw[i] = tt.raw
	}

	got := NormalizeU16(raw)
	for i, tt := range tests {
		if got[i] != tt.want {
			t.Fatalf("NormalizeU16(%d) = %v, want %v", tt.raw, got[i], tt.want)
		}
	}
}

type fakeDevice struct {
	readings []uint16
	rate     int
	err      error
}

func (f *fakeDevice) ReadInto(ctx context.Context, buf []uint16, rate int) error {
	if f.err != nil {
		return f.err
	}
	f.rate = rate
	copy(buf, f.readings)
	return nil
}

func TestDeviceSource(t *testing.T) {
	dev := &fakeDevice{readings: testutil.MicU16(220, 22000, 8000, 1024)}
	src := NewDeviceSource(dev)

	got, err := src.Capture(context.Background(), 1024, 22000)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if dev.rate != 22000 {
		t.Fatalf("device read at %d Hz, want 22000", dev.rate)
	}
	if len(got) != 1024 {
		t.Fatalf("len = %d, want 1024", len(got))
	}
	if got[0] != 0 {
		t.Fatalf("first sample = %v, want 0", got[0])
	}
	for i, v := range got {
		if v < -0.125 || v > 0.125 {
			t.Fatalf("sample %d = %v outside the 8000-count swing", i, v)
		}
	}

	dev.err = errors.New("adc busy")
	if _, err := src.Capture(context.Background(), 1024, 22000); !errors.Is(err, dev.err) {
		t.Fatalf("err = %v, want wrapped device error", err)
	}
	if _, err := src.Capture(context.Background(), 0, 22000); err == nil {
		t.Fatal("expected error for zero-length capture")
	}
}

func TestBufferSourceSequential(t *testing.T) {
	pcm := []float64{0, 1, 2, 3, 4, 5, 6}
	src := NewBufferSource(pcm, 8000, false)
	ctx := context.Background()

	for _, want := range [][]float64{{0, 1, 2}, {3, 4, 5}} {
		got, err := src.Capture(ctx, 3, 8000)
		if err != nil {
			t.Fatalf("Capture: %v", err)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("got %v, want %v", got, want)
			}
		}
	}
	if _, err := src.Capture(ctx, 3, 8000); !errors.Is(err, ErrExhausted) {
		t.Fatalf("err = %v, want ErrExhausted", err)
	}

	src.Reset()
	got, err := src.Capture(ctx, 7, 8000)
	if err != nil || got[6] != 6 {
		t.Fatalf("after Reset: %v, %v", got, err)
	}
}

func TestBufferSourceCopies(t *testing.T) {
	pcm := []float64{1, 2, 3, 4}
	src := NewBufferSource(pcm, 8000, false)
	got, _ := src.Capture(context.Background(), 2, 8000)
	got[0] = 99
	if pcm[0] != 1 {
		t.Fatal("Capture must not alias the source buffer")
	}
}

func TestBufferSourceLoop(t *testing.T) {
	src := NewBufferSource([]float64{0, 1, 2}, 8000, true)
	ctx := context.Background()

	got, err := src.Capture(ctx, 7, 8000)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	want := []float64{0, 1, 2, 0, 1, 2, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	got, _ = src.Capture(ctx, 2, 8000)
	if got[0] != 1 || got[1] != 2 {
		t.Fatalf("second capture = %v, want [1 2]", got)
	}
}

func TestBufferSourceErrors(t *testing.T) {
	ctx := context.Background()

	if _, err := NewBufferSource([]float64{1, 2}, 8000, false).Capture(ctx, 1, 16000); err == nil {
		t.Fatal("expected sample rate mismatch error")
	}
	if _, err := NewBufferSource(nil, 8000, true).Capture(ctx, 1, 8000); !errors.Is(err, ErrEmptyAudio) {
		t.Fatalf("err = %v, want ErrEmptyAudio", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := NewBufferSource([]float64{1, 2}, 8000, false).Capture(cancelled, 1, 8000); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
