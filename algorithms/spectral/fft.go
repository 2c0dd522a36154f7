package spectral

import (
	"github.com/mjibson/go-dsp/fft"

	"github.com/RyanBlaney/sonido-yin/algorithms/common"
)

// FFT provides Fast Fourier Transform functionality
type FFT struct {
	// No state needed for now
}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the forward transform of a real signal using mjibson/go-dsp
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	// mjibson/go-dsp handles all sizes, power-of-two lengths are fastest
	return fft.FFTReal(x)
}

// ComputeInverseReal computes inverse FFT and returns real part only
func (f *FFT) ComputeInverseReal(x []complex128) []float64 {
	if len(x) == 0 {
		return []float64{}
	}

	result := fft.IFFT(x)
	realResult := make([]float64, len(result))

	for i, val := range result {
		realResult[i] = real(val)
	}

	return realResult
}

// AutoCorrelate returns the linear (non-circular) autocorrelation
// r[k] = sum_j x[j]*x[j+k] for lags 0 <= k < maxLag, evaluated through the
// power spectrum of a zero-padded copy of x (Wiener-Khinchin).
// maxLag is clamped to len(x).
func (f *FFT) AutoCorrelate(x []float64, maxLag int) []float64 {
	n := len(x)
	if maxLag > n {
		maxLag = n
	}
	if n == 0 || maxLag <= 0 {
		return []float64{}
	}

	// 2n-1 points are needed for the circular product to equal the linear one
	size := common.NextPowerOfTwo(2*n - 1)
	padded := make([]float64, size)
	copy(padded, x)

	spectrum := f.Compute(padded)
	for i, c := range spectrum {
		spectrum[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}

	r := f.ComputeInverseReal(spectrum)
	return r[:maxLag:maxLag]
}
