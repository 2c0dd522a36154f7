package common

// Frame is one analysis window over a signal buffer. Samples aliases the
// caller's buffer and must be treated as read-only.
type Frame struct {
	Index   int
	Offset  int
	Time    float64 // seconds from the start of the buffer
	Samples []float64
}

// FrameCount returns the number of complete windows of length windowSize,
// hopSize apart, that fit in n samples. No partial trailing window is counted.
func FrameCount(n, windowSize, hopSize int) int {
	if windowSize <= 0 || hopSize <= 0 || n < windowSize {
		return 0
	}
	return (n-windowSize)/hopSize + 1
}

// FrameTime returns the start time in seconds of frame i.
func FrameTime(i, hopSize, sampleRate int) float64 {
	return float64(i*hopSize) / float64(sampleRate)
}

// Frames slices signal into overlapping windows at offsets 0, hopSize,
// 2*hopSize, ... while offset+windowSize <= len(signal). A signal shorter
// than one window yields no frames.
func Frames(signal []float64, windowSize, hopSize, sampleRate int) []Frame {
	count := FrameCount(len(signal), windowSize, hopSize)
	if count == 0 {
		return nil
	}

	frames := make([]Frame, count)
	for i := range frames {
		offset := i * hopSize
		frames[i] = Frame{
			Index:   i,
			Offset:  offset,
			Time:    FrameTime(i, hopSize, sampleRate),
			Samples: signal[offset : offset+windowSize : offset+windowSize],
		}
	}
	return frames
}
