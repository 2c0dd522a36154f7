package testutil

import (
	"math"
	"testing"
)

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireRelativeClose fails t if got and want differ in length or if any
// element pair differs by more than rel times max(|want|, floor).
func RequireRelativeClose(t *testing.T, got, want []float64, rel, floor float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		scale := math.Max(math.Abs(want[i]), floor)
		if diff := math.Abs(got[i] - want[i]); diff > rel*scale {
			t.Fatalf("index %d: got %v, want %v (diff %v > %v)", i, got[i], want[i], diff, rel*scale)
		}
	}
}
