package tuner

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-yin/capture"
	"github.com/RyanBlaney/sonido-yin/config"
	"github.com/RyanBlaney/sonido-yin/internal/testutil"
	"github.com/RyanBlaney/sonido-yin/logging"
	"github.com/RyanBlaney/sonido-yin/notes"
)

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Tuner.IntervalMS = 1
	return cfg
}

func newTestTuner(t *testing.T, src capture.Source) *Tuner {
	t.Helper()
	tu, err := New(src, testConfig(), WithLogger(&logging.NoOpLogger{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tu
}

type micDevice struct {
	freq float64
	amp  uint16
}

func (m micDevice) ReadInto(ctx context.Context, buf []uint16, rate int) error {
	copy(buf, testutil.MicU16(m.freq, float64(rate), m.amp, len(buf)))
	return nil
}

func TestStepFromDevice(t *testing.T) {
	tu := newTestTuner(t, capture.NewDeviceSource(micDevice{freq: 330, amp: 8000}))

	r, err := tu.Step(context.Background())
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if r.Note != "E4" {
		t.Fatalf("note = %q (%v Hz), want E4", r.Note, r.Frequency)
	}
	if math.Abs(r.Frequency-330) > 22000.0/512 {
		t.Fatalf("frequency = %v, want near 330", r.Frequency)
	}
	e4, _ := notes.Lookup("E4")
	if r.Deviation != r.Frequency-e4.Frequency {
		t.Fatalf("deviation = %v, want %v", r.Deviation, r.Frequency-e4.Frequency)
	}
	// 8000 counts of 65536 is a 0.122 peak, so about 0.086 RMS
	if r.RMS < 0.08 || r.RMS > 0.09 {
		t.Fatalf("rms = %v, want about 0.086", r.RMS)
	}
	if len(r.Frames) != 3 || r.Seq != 1 {
		t.Fatalf("frames = %d, seq = %d", len(r.Frames), r.Seq)
	}
}

func TestStepSilenceIsUnknown(t *testing.T) {
	tu := newTestTuner(t, capture.NewBufferSource(make([]float64, 1024), 22000, false))

	r, err := tu.Step(context.Background())
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if r.Note != notes.Unknown || r.Voiced() || r.Deviation != 0 {
		t.Fatalf("reading = %+v, want unvoiced", r)
	}
	if r.HarmonicRate != 1.0 || r.RMS != 0 {
		t.Fatalf("harmonic rate = %v, rms = %v", r.HarmonicRate, r.RMS)
	}
}

func TestRunUntilExhausted(t *testing.T) {
	src := capture.NewBufferSource(testutil.Sine(220, 22000, 0.4, 3*1024+100), 22000, false)
	tu := newTestTuner(t, src)

	var got []Reading
	err := tu.Run(context.Background(), func(r Reading) error {
		got = append(got, r)
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("%d readings, want 3", len(got))
	}
	for i, r := range got {
		if r.Note != "A3" || r.Seq != i+1 {
			t.Fatalf("reading %d = %s (seq %d), want A3", i, r.Note, r.Seq)
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	src := capture.NewBufferSource(testutil.Sine(110, 22000, 0.4, 2048), 22000, true)
	tu := newTestTuner(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := 0
	err := tu.Run(ctx, func(r Reading) error {
		n++
		if n == 2 {
			cancel()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 2 {
		t.Fatalf("%d readings, want 2", n)
	}
}

func TestRunPropagatesCallbackError(t *testing.T) {
	src := capture.NewBufferSource(testutil.Sine(110, 22000, 0.4, 2048), 22000, true)
	tu := newTestTuner(t, src)

	stop := errors.New("stop")
	if err := tu.Run(context.Background(), func(Reading) error { return stop }); !errors.Is(err, stop) {
		t.Fatalf("err = %v, want %v", err, stop)
	}
}

func TestNewValidates(t *testing.T) {
	cfg := testConfig()
	cfg.Detector.MinFreq = 40
	if _, err := New(capture.NewBufferSource(nil, 22000, false), cfg); err == nil {
		t.Fatal("expected configuration error")
	}
	if _, err := New(nil, testConfig()); err == nil {
		t.Fatal("expected error for nil source")
	}
}

func TestStepWithDCBlock(t *testing.T) {
	cfg := testConfig()
	cfg.Tuner.DCBlockHz = 20

	signal := testutil.Sine(196, 22000, 0.3, 1024)
	for i := range signal {
		signal[i] += 0.25
	}
	tu, err := New(capture.NewBufferSource(signal, 22000, false), cfg, WithLogger(&logging.NoOpLogger{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	r, err := tu.Step(context.Background())
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if r.Note != "G3" {
		t.Fatalf("note = %q (%v Hz), want G3", r.Note, r.Frequency)
	}
	// the offset is excluded from the level
	if math.Abs(r.RMS-0.3/math.Sqrt2) > 0.01 {
		t.Fatalf("rms = %v, want about %v", r.RMS, 0.3/math.Sqrt2)
	}
}
