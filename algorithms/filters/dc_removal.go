package filters

import (
	"fmt"
	"math"
)

// DCRemoval is the one-pole, one-zero DC blocker
//
//	y[n] = x[n] - x[n-1] + R*y[n-1]
//
// References:
//   - Julius O. Smith III, "Introduction to Digital Filters with Audio Applications"
//     https://ccrma.stanford.edu/~jos/filters/DC_Blocker.html
type DCRemoval struct {
	poleLocation float64 // R parameter (0 < R < 1)
	cutoffFreq   float64 // -3dB cutoff frequency in Hz
	sampleRate   int
}

// NewDCRemovalWithCutoff creates a DC blocker with the given -3 dB cutoff.
// The pole is placed at R = 1 - 2*pi*fc/fs.
func NewDCRemovalWithCutoff(sampleRate int, cutoffFreq float64) (*DCRemoval, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive: %d", sampleRate)
	}
	r := 1 - 2*math.Pi*cutoffFreq/float64(sampleRate)
	if !(cutoffFreq > 0) || !(r > 0) {
		return nil, fmt.Errorf("cutoff %v Hz is out of range for %d Hz sampling", cutoffFreq, sampleRate)
	}
	return &DCRemoval{poleLocation: r, cutoffFreq: cutoffFreq, sampleRate: sampleRate}, nil
}

// PoleLocation returns R.
func (dc *DCRemoval) PoleLocation() float64 {
	return dc.poleLocation
}

// CutoffFrequency returns the -3 dB point in Hz.
func (dc *DCRemoval) CutoffFrequency() float64 {
	return dc.cutoffFreq
}

// Process filters one block into a new slice. The filter starts at rest,
// primed with the first sample, so a constant block maps to zeros and no
// state carries over between calls.
func (dc *DCRemoval) Process(input []float64) []float64 {
	output := make([]float64, len(input))
	if len(input) == 0 {
		return output
	}

	x1, y1 := input[0], 0.0
	for i, x := range input {
		y := x - x1 + dc.poleLocation*y1
		output[i] = y
		x1, y1 = x, y
	}
	return output
}
