// Package testutil holds deterministic signal generators and tolerance
// helpers shared by the package tests.
package testutil

import (
	"math"
	"math/rand"
)

// Sine generates a deterministic sine wave starting at phase 0.
func Sine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// Noise generates white noise in [-amplitude, amplitude) with a fixed seed.
func Noise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// MicU16 renders a sine as unsigned 16-bit microphone readings centred on
// 32767, the way the capture device reports them.
func MicU16(freqHz, sampleRate float64, amplitude uint16, length int) []uint16 {
	out := make([]uint16, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = uint16(32767 + math.Round(float64(amplitude)*math.Sin(step*float64(i))))
	}
	return out
}
