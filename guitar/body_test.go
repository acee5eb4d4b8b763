package guitar

import "testing"

func TestGuitarBodyOutputStaysBounded(t *testing.T) {
	b := NewGuitarBody(44100, 100.0, 42)
	signal := make([]float32, 8192)
	signal[0] = 1.0
	b.ProcessBlock(signal)

	for i, s := range signal {
		if !isFinite(s) {
			t.Fatalf("sample %d not finite: %v", i, s)
		}
		if s > 1.0 || s < -1.0 {
			t.Fatalf("sample %d exceeds tanh bound: %v", i, s)
		}
	}
}

func TestGuitarBodyKickProducesNonSilence(t *testing.T) {
	b := NewGuitarBody(44100, 95.0, 7)
	state := uint32(99)
	b.Kick(1.0, &state)

	var rng uint32 = 1
	signal := make([]float32, 256)
	for i := range signal {
		signal[i] = uniformNoise(&rng) * 0.01
	}
	b.ProcessBlock(signal)
	if rmsOf(signal) == 0 {
		t.Fatal("expected non-silent output after kick + tone burst")
	}
}

func TestGuitarBodyResetClearsFilterHistory(t *testing.T) {
	b := NewGuitarBody(44100, 100.0, 1)
	warm := make([]float32, 4096)
	warm[0] = 1.0
	b.ProcessBlock(warm)

	b.Reset()

	a := NewGuitarBody(44100, 100.0, 1)
	fresh := make([]float32, 4)
	a.ProcessBlock(fresh)

	probe := make([]float32, 4)
	b.ProcessBlock(probe)

	// Noise draws differ after the long warm-up (the PRNG state keeps
	// running across Reset), but with cleared filter history and a silent
	// probe both traces carry only the tiny noise floor, so they should stay
	// within tol of each other.
	const tol = 0.01
	for i := range probe {
		diff := probe[i] - fresh[i]
		if diff > tol || diff < -tol {
			t.Fatalf("sample %d differs too much after reset: probe=%v fresh=%v", i, probe[i], fresh[i])
		}
	}
}
