package notefreq

import (
	"math"
	"testing"
)

func approxEq(a, b, tolHz float64) bool {
	return math.Abs(a-b) <= tolHz
}

func TestToFrequencyKnownNotes(t *testing.T) {
	cases := []struct {
		note string
		want float64
	}{
		{"A4", 440.0},
		{"E2", 82.41},
		{"A2", 110.0},
		{"D3", 146.83},
		{"G3", 196.0},
		{"B3", 246.94},
		{"E4", 329.63},
		{"C#3", 138.59},
	}
	for _, c := range cases {
		got, err := ToFrequency(c.note)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", c.note, err)
		}
		if !approxEq(got, c.want, 0.05) {
			t.Errorf("%s: got %.3f want %.3f", c.note, got, c.want)
		}
	}
}

func TestToFrequencyRejectsInvalidStrings(t *testing.T) {
	invalid := []string{"", "H3", "C", "C##3", "C3X", "3C"}
	for _, s := range invalid {
		if _, err := ToFrequency(s); err == nil {
			t.Errorf("expected error for %q", s)
		} else if _, ok := err.(*ParseError); !ok {
			t.Errorf("expected *ParseError for %q, got %T", s, err)
		}
	}
}

func TestToFrequencyNegativeOctave(t *testing.T) {
	got, err := ToFrequency("A-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEq(got, 13.75, 0.05) {
		t.Fatalf("A-1 got %.3f want ~13.75", got)
	}
}

func TestChordFrequenciesFiltersMutedStrings(t *testing.T) {
	freqs, err := ChordFrequencies("E_Major")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(freqs) != 6 {
		t.Fatalf("E major has no muted strings, want 6 got %d", len(freqs))
	}

	freqs, err = ChordFrequencies("D_Major")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(freqs) != 4 {
		t.Fatalf("D major mutes 2 strings, want 4 got %d", len(freqs))
	}
}

func TestChordFrequenciesUnknownChord(t *testing.T) {
	if _, err := ChordFrequencies("Not_A_Chord"); err == nil {
		t.Fatal("expected error for unknown chord")
	}
}
