package common

import (
	"math"
	"testing"
)

func TestFrameCount(t *testing.T) {
	tests := []struct {
		n, win, hop int
		want        int
	}{
		{1024, 512, 256, 3},
		{1023, 512, 256, 2},
		{512, 512, 256, 1},
		{511, 512, 256, 0},
		{0, 512, 256, 0},
		{1000, 100, 300, 4},
		{1000, 100, 0, 0},
		{1000, 0, 10, 0},
	}

	for _, tt := range tests {
		if got := FrameCount(tt.n, tt.win, tt.hop); got != tt.want {
			t.Fatalf("FrameCount(%d, %d, %d) = %d, want %d", tt.n, tt.win, tt.hop, got, tt.want)
		}
	}
}

func TestFramesOffsetsAndTimes(t *testing.T) {
	signal := make([]float64, 1024)
	for i := range signal {
		signal[i] = float64(i)
	}

	frames := Frames(signal, 512, 256, 22000)
	if len(frames) != 3 {
		t.Fatalf("len(frames) = %d, want 3", len(frames))
	}

	for i, f := range frames {
		if f.Index != i {
			t.Fatalf("frames[%d].Index = %d", i, f.Index)
		}
		if f.Offset != i*256 {
			t.Fatalf("frames[%d].Offset = %d, want %d", i, f.Offset, i*256)
		}
		if want := float64(i*256) / float64(22000); f.Time != want {
			t.Fatalf("frames[%d].Time = %v, want %v", i, f.Time, want)
		}
		if len(f.Samples) != 512 {
			t.Fatalf("frames[%d] has %d samples, want 512", i, len(f.Samples))
		}
		if f.Samples[0] != float64(f.Offset) {
			t.Fatalf("frames[%d].Samples[0] = %v, want %v", i, f.Samples[0], float64(f.Offset))
		}
	}
}

func TestFramesShortSignal(t *testing.T) {
	if frames := Frames(make([]float64, 100), 512, 256, 22000); len(frames) != 0 {
		t.Fatalf("len(frames) = %d, want 0", len(frames))
	}
}

func TestFramesDoNotShareCapacity(t *testing.T) {
	signal := make([]float64, 8)
	frames := Frames(signal, 4, 2, 8000)
	if cap(frames[0].Samples) != 4 {
		t.Fatalf("cap = %d, want 4", cap(frames[0].Samples))
	}
}

func TestMinArgMin(t *testing.T) {
	data := []float64{1, 0.3, 0.7, 0.3, 0.9}
	if got := Min(data); got != 0.3 {
		t.Fatalf("Min = %v, want 0.3", got)
	}
	if got := ArgMin(data); got != 1 {
		t.Fatalf("ArgMin = %d, want first minimum at 1", got)
	}
	if got := ArgMin(nil); got != -1 {
		t.Fatalf("ArgMin(nil) = %d, want -1", got)
	}
	if got := Min(nil); !math.IsInf(got, 1) {
		t.Fatalf("Min(nil) = %v, want +Inf", got)
	}
}

func TestPrefixSumSquares(t *testing.T) {
	got := PrefixSumSquares([]float64{1, -2, 3})
	want := []float64{0, 1, 5, 14}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("s[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if empty := PrefixSumSquares(nil); len(empty) != 1 || empty[0] != 0 {
		t.Fatalf("PrefixSumSquares(nil) = %v, want [0]", empty)
	}
}

func TestRMSAndACRMS(t *testing.T) {
	data := []float64{1.5, 0.5, 1.5, 0.5}
	if got := RMS(data); math.Abs(got-math.Sqrt(1.25)) > 1e-12 {
		t.Fatalf("RMS = %v, want %v", got, math.Sqrt(1.25))
	}
	if got := ACRMS(data); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("ACRMS = %v, want 0.5", got)
	}
	if got := Mean(data); got != 1 {
		t.Fatalf("Mean = %v, want 1", got)
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := map[int]int{0: 1, 1: 1, 3: 4, 64: 64, 127: 128, 1023: 1024}
	for in, want := range tests {
		if got := NextPowerOfTwo(in); got != want {
			t.Fatalf("NextPowerOfTwo(%d) = %d, want %d", in, got, want)
		}
		if !IsPowerOfTwo(NextPowerOfTwo(in)) {
			t.Fatalf("NextPowerOfTwo(%d) not a power of two", in)
		}
	}
}
