package pitch

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-yin/algorithms/common"
	"github.com/RyanBlaney/sonido-yin/algorithms/spectral"
	"gonum.org/v1/gonum/floats"
)

// residue below snapUlps*W*eps*S(W) is rounding noise from the FFT path
const snapUlps = 4

// Difference computes the YIN squared-difference function of frame for lags
// [0, tauMax) with the selected method.
func Difference(frame []float64, tauMax int, method DifferenceMethod) ([]float64, error) {
	switch method {
	case MethodDirect:
		return DifferenceDirect(frame, tauMax)
	case MethodFFT:
		return DifferenceFFT(frame, tauMax)
	default:
		return nil, fmt.Errorf("%w: unknown difference method %d", ErrInvalidConfiguration, int(method))
	}
}

// DifferenceDirect evaluates
//
//	d(tau) = sum_{j=0}^{W-tau-1} (x[j] - x[j+tau])^2,  1 <= tau < tauMax
//
// with a double loop over the whole window W = len(frame). d(0) is 0.
func DifferenceDirect(frame []float64, tauMax int) ([]float64, error) {
	if err := checkLag(len(frame), tauMax); err != nil {
		return nil, err
	}

	w := len(frame)
	d := make([]float64, tauMax)
	for tau := 1; tau < tauMax; tau++ {
		sum := 0.0
		for j := 0; j < w-tau; j++ {
			delta := frame[j] - frame[j+tau]
			sum += delta * delta
		}
		d[tau] = sum
	}
	return d, nil
}

// DifferenceFFT evaluates the same function as DifferenceDirect through
//
//	d(tau) = S(W-tau) + S(W) - S(tau) - 2*r(tau)
//
// where S is the prefix sum of squares and r the linear autocorrelation of
// the frame, computed in O(W log W). The frame is centred first; d does not
// depend on a constant offset.
func DifferenceFFT(frame []float64, tauMax int) ([]float64, error) {
	if err := checkLag(len(frame), tauMax); err != nil {
		return nil, err
	}

	w := len(frame)
	centred := make([]float64, w)
	copy(centred, frame)
	floats.AddConst(-common.Mean(frame), centred)

	s := common.PrefixSumSquares(centred)
	r := spectral.NewFFT().AutoCorrelate(centred, tauMax)

	floor := snapUlps * float64(w) * eps * s[w]
	d := make([]float64, tauMax)
	for tau := 1; tau < tauMax; tau++ {
		v := s[w-tau] + s[w] - s[tau] - 2*r[tau]
		if v < floor {
			v = 0
		}
		d[tau] = v
	}
	return d, nil
}

var eps = math.Nextafter(1, 2) - 1

func checkLag(windowSize, tauMax int) error {
	if tauMax < 1 {
		return fmt.Errorf("%w: tau_max must be at least 1: %d", ErrInvalidConfiguration, tauMax)
	}
	if tauMax > windowSize {
		return fmt.Errorf("%w: tau_max (%d) exceeds frame length (%d)", ErrInvalidConfiguration, tauMax, windowSize)
	}
	return nil
}
