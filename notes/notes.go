// Package notes maps detected frequencies onto the equal-tempered scale.
package notes

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

const (
	// A4 is the concert pitch reference.
	A4 = 440.0

	lowestMIDI  = 36 // C2
	highestMIDI = 83 // B5
)

// Unknown is displayed in place of a note name for unvoiced frames.
const Unknown = "??"

var pitchClasses = [12][2]string{
	{"C"}, {"C#", "Db"}, {"D"}, {"D#", "Eb"}, {"E"}, {"F"},
	{"F#", "Gb"}, {"G"}, {"G#", "Ab"}, {"A"}, {"A#", "Bb"}, {"B"},
}

// Note is one entry of the tuning table.
type Note struct {
	Name      string  `json:"name" yaml:"name"` // e.g. "A4" or "C#2/Db2"
	MIDI      int     `json:"midi" yaml:"midi"`
	Frequency float64 `json:"frequency_hz" yaml:"frequency_hz"`
}

// Match is a frequency resolved to its closest note.
type Match struct {
	Note      Note    `json:"note" yaml:"note"`
	Frequency float64 `json:"frequency_hz" yaml:"frequency_hz"` // the input frequency
	Deviation float64 `json:"deviation_hz" yaml:"deviation_hz"` // Frequency - Note.Frequency
	Cents     float64 `json:"cents" yaml:"cents"`
}

func (m Match) String() string {
	return fmt.Sprintf("%s %+.3f Hz (%+.1f cents)", m.Note.Name, m.Deviation, m.Cents)
}

var (
	table = buildTable()
	freqs = tableFrequencies(table)
)

func buildTable() []Note {
	out := make([]Note, 0, highestMIDI-lowestMIDI+1)
	for midi := lowestMIDI; midi <= highestMIDI; midi++ {
		out = append(out, Note{
			Name:      noteName(midi),
			MIDI:      midi,
			Frequency: MIDIFrequency(midi),
		})
	}
	return out
}

func tableFrequencies(t []Note) []float64 {
	out := make([]float64, len(t))
	for i, n := range t {
		out[i] = n.Frequency
	}
	return out
}

func noteName(midi int) string {
	octave := midi/12 - 1
	pc := pitchClasses[midi%12]
	if pc[1] == "" {
		return fmt.Sprintf("%s%d", pc[0], octave)
	}
	return fmt.Sprintf("%s%d/%s%d", pc[0], octave, pc[1], octave)
}

// MIDIFrequency returns the equal-tempered frequency of a MIDI note number.
func MIDIFrequency(midi int) float64 {
	return A4 * math.Pow(2, float64(midi-69)/12)
}

// Table returns a copy of the 48-note table from C2 to B5.
func Table() []Note {
	out := make([]Note, len(table))
	copy(out, table)
	return out
}

// Nearest returns the table note closest to freq in Hz. It reports false for
// freq <= 0, which is how the detector marks unvoiced frames.
func Nearest(freq float64) (Match, bool) {
	if !(freq > 0) || math.IsInf(freq, 0) {
		return Match{}, false
	}

	dist := make([]float64, len(freqs))
	for i, f := range freqs {
		dist[i] = math.Abs(freq - f)
	}
	n := table[floats.MinIdx(dist)]

	return Match{
		Note:      n,
		Frequency: freq,
		Deviation: freq - n.Frequency,
		Cents:     1200 * math.Log2(freq/n.Frequency),
	}, true
}

// Lookup finds a note by any of its spellings, ignoring case ("a#3", "Bb3"
// and "A#3/Bb3" all match).
func Lookup(name string) (Note, bool) {
	name = strings.TrimSpace(name)
	for _, n := range table {
		if strings.EqualFold(n.Name, name) {
			return n, true
		}
		for _, alias := range strings.Split(n.Name, "/") {
			if strings.EqualFold(alias, name) {
				return n, true
			}
		}
	}
	return Note{}, false
}
