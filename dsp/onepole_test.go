package dsp

import "testing"

func TestOnePoleLowPassTransparentAtZero(t *testing.T) {
	f := NewOnePoleLowPass(0.0)
	for i, x := range []float32{0.5, -0.25, 1.0} {
		y := f.ProcessSample(x)
		if y != x {
			t.Fatalf("sample %d: alpha=0 should be transparent, got %v want %v", i, y, x)
		}
	}
}

func TestOnePoleLowPassConvergesToStep(t *testing.T) {
	f := NewOnePoleLowPass(0.9)
	var y float32
	for i := 0; i < 2000; i++ {
		y = f.ProcessSample(1.0)
	}
	if y < 0.99 || y > 1.0 {
		t.Fatalf("expected convergence near 1.0, got %v", y)
	}
}

func TestOnePoleLowPassResetClearsHistory(t *testing.T) {
	f := NewOnePoleLowPass(0.9)
	for i := 0; i < 100; i++ {
		f.ProcessSample(1.0)
	}
	f.Reset()
	y := f.ProcessSample(0.0)
	if y != 0 {
		t.Fatalf("expected 0 after reset+zero input, got %v", y)
	}
}

func TestOnePoleLowPassAlphaClamped(t *testing.T) {
	f := NewOnePoleLowPass(5.0)
	if f.Alpha() >= 1.0 {
		t.Fatalf("alpha should be clamped below 1.0, got %v", f.Alpha())
	}
	f.SetAlpha(-3.0)
	if f.Alpha() != 0 {
		t.Fatalf("alpha should clamp to 0, got %v", f.Alpha())
	}
}

func TestOnePoleLowPassProcessBlockMatchesSampleLoop(t *testing.T) {
	in := []float32{1, 0.5, -0.2, 0.3, 0, -1}
	fa := NewOnePoleLowPass(0.3)
	fb := NewOnePoleLowPass(0.3)

	want := make([]float32, len(in))
	for i, x := range in {
		want[i] = fa.ProcessSample(x)
	}

	got := append([]float32(nil), in...)
	fb.ProcessBlock(got)

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("block vs sample mismatch at %d: %v != %v", i, got[i], want[i])
		}
	}
}
