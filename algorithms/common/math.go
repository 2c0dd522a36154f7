package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Numeric helpers shared by the pitch engine and the tuner, backed by gonum.

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// RMS calculates root mean square
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return math.Sqrt(floats.Dot(data, data) / float64(len(data)))
}

// ACRMS calculates the RMS level after removing the DC offset, i.e. the
// population standard deviation of the samples.
func ACRMS(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	_, std := stat.PopMeanStdDev(data, nil)
	return std
}

// Min returns the smallest value. Empty input returns +Inf.
func Min(data []float64) float64 {
	if len(data) == 0 {
		return math.Inf(1)
	}
	return floats.Min(data)
}

// ArgMin returns the index of the first occurrence of the smallest value,
// or -1 for empty input.
func ArgMin(data []float64) int {
	if len(data) == 0 {
		return -1
	}
	return floats.MinIdx(data)
}

// PrefixSumSquares returns s with len(x)+1 entries where s[0] = 0 and
// s[k] is the sum of x[i]^2 for i < k.
func PrefixSumSquares(x []float64) []float64 {
	s := make([]float64, len(x)+1)
	if len(x) == 0 {
		return s
	}
	sq := make([]float64, len(x))
	floats.MulTo(sq, x, x)
	floats.CumSum(s[1:], sq)
	return s
}

// IsPowerOfTwo checks if n is a power of 2
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// NextPowerOfTwo finds the next power of 2 >= n
func NextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}

	power := 1
	for power < n {
		power <<= 1
	}
	return power
}
