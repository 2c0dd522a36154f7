package capture

import (
	"fmt"
	"io"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// resampleQuality trades speed for accuracy in beep.Resample (1 to 64).
const resampleQuality = 4

// DecodeWAV reads a PCM WAV stream, resamples it to sampleRate when the file
// rate differs, and downmixes to mono by averaging the channels.
func DecodeWAV(r io.Reader, sampleRate int) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("capture: target sample rate must be positive: %d", sampleRate)
	}

	stream, format, err := wav.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode wav: %w", err)
	}
	defer stream.Close()

	var s beep.Streamer = stream
	if target := beep.SampleRate(sampleRate); format.SampleRate != target {
		s = beep.Resample(resampleQuality, format.SampleRate, target, stream)
	}

	pcm, err := drainMono(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode wav: %w", err)
	}
	if len(pcm) == 0 {
		return nil, ErrEmptyAudio
	}
	return pcm, nil
}

func drainMono(s beep.Streamer) ([]float64, error) {
	var out []float64
	buf := make([][2]float64, 1024)
	for {
		n, ok := s.Stream(buf)
		for _, frame := range buf[:n] {
			out = append(out, (frame[0]+frame[1])/2)
		}
		if !ok {
			break
		}
	}
	return out, s.Err()
}
