// Package notefreq converts note-name strings to frequencies and holds the
// chord dictionary used by external sequencers. It is an upstream
// collaborator of the synthesis core (§6), not part of the DSP engine:
// the core never parses note names itself.
package notefreq

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-approx"
)

var semitoneIndex = map[string]int{
	"C": 0, "C#": 1, "D": 2, "D#": 3, "E": 4, "F": 5,
	"F#": 6, "G": 7, "G#": 8, "A": 9, "A#": 10, "B": 11,
}

// ParseError indicates a note-name string did not match
// `[A-G][#]?[-]?digit`.
type ParseError struct {
	Input string
	Cause string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("notefreq: invalid note %q: %s", e.Input, e.Cause)
}

// ToFrequency converts a note name such as "C#3" or "E2" to a frequency in
// Hz via f = 440 * 2^((n-69)/12), n = semitone_index + 12*(octave+1).
func ToFrequency(note string) (float64, error) {
	name, octave, err := splitNote(note)
	if err != nil {
		return 0, err
	}
	semitone, ok := semitoneIndex[name]
	if !ok {
		return 0, &ParseError{Input: note, Cause: "unknown pitch class " + name}
	}
	n := semitone + 12*(octave+1)
	exponent := float32(n-69) / 12.0
	return 440.0 * float64(pow2Approx(exponent)), nil
}

func splitNote(note string) (name string, octave int, err error) {
	s := strings.TrimSpace(note)
	if len(s) < 2 {
		return "", 0, &ParseError{Input: note, Cause: "too short"}
	}
	i := 1
	if s[0] < 'A' || s[0] > 'G' {
		return "", 0, &ParseError{Input: note, Cause: "must start with A-G"}
	}
	if i < len(s) && s[i] == '#' {
		i++
	}
	if i >= len(s) {
		return "", 0, &ParseError{Input: note, Cause: "missing octave"}
	}
	name = s[:i]
	octaveStr := s[i:]
	neg := false
	if len(octaveStr) > 0 && octaveStr[0] == '-' {
		neg = true
		octaveStr = octaveStr[1:]
	}
	if octaveStr == "" {
		return "", 0, &ParseError{Input: note, Cause: "missing octave digits"}
	}
	oct := 0
	for _, c := range octaveStr {
		if c < '0' || c > '9' {
			return "", 0, &ParseError{Input: note, Cause: "non-numeric octave"}
		}
		oct = oct*10 + int(c-'0')
	}
	if neg {
		oct = -oct
	}
	return name, oct, nil
}

func pow2Approx(x float32) float32 {
	const ln2 = 0.69314718055994530942
	return approx.FastExp(x * ln2)
}

// ChordShapes maps chord names to the six-string voicing (low E to high e),
// with "x" denoting a muted string. Mirrors the standard open-position
// voicings used by external sequencer scripts.
var ChordShapes = map[string][6]string{
	"C_Major": {"x", "C3", "E3", "G3", "C4", "E4"},
	"G_Major": {"G2", "B2", "D3", "G3", "B3", "G4"},
	"D_Major": {"x", "x", "D3", "A3", "D4", "F#4"},
	"A_Major": {"x", "A2", "E3", "A3", "C#4", "E4"},
	"E_Major": {"E2", "B2", "E3", "G#3", "B3", "E4"},
	"F_Major": {"F2", "C3", "F3", "A3", "C4", "F4"},
	"Am":      {"x", "A2", "E3", "A3", "C4", "E4"},
	"Em":      {"E2", "B2", "E3", "G3", "B3", "E4"},
	"Dm":      {"x", "x", "D3", "A3", "D4", "F4"},
	"Bm":      {"x", "B2", "F#3", "B3", "D4", "F#4"},
}

// ChordFrequencies resolves a named chord to the frequencies of its unmuted
// strings, in string order. The caller is expected to have already filtered
// "x" entries if it needs per-string alignment; this helper does the
// filtering for the common case of "just give me the frequencies to play".
func ChordFrequencies(chordName string) ([]float64, error) {
	shape, ok := ChordShapes[chordName]
	if !ok {
		return nil, fmt.Errorf("notefreq: unknown chord %q", chordName)
	}
	freqs := make([]float64, 0, len(shape))
	for _, note := range shape {
		if note == "x" {
			continue
		}
		f, err := ToFrequency(note)
		if err != nil {
			return nil, err
		}
		freqs = append(freqs, f)
	}
	return freqs, nil
}
