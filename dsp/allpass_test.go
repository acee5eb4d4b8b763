package dsp

import "testing"

func TestCoeffForDelayEndpoints(t *testing.T) {
	if c := CoeffForDelay(0); c != 1.0 {
		t.Fatalf("d=0 should give c=1, got %v", c)
	}
	if c := CoeffForDelay(1); c < 0 || c > 0.01 {
		t.Fatalf("d=1 should give c~0, got %v", c)
	}
}

func TestFractionalAllpassIsAllpassAtDC(t *testing.T) {
	c := CoeffForDelay(0.3)
	f := NewFractionalAllpass(c)
	var y float32
	for i := 0; i < 500; i++ {
		y = f.ProcessSample(1.0)
	}
	if y < 0.999 || y > 1.001 {
		t.Fatalf("all-pass DC gain should settle near 1.0, got %v", y)
	}
}

func TestFractionalAllpassResetClearsHistory(t *testing.T) {
	f := NewFractionalAllpass(CoeffForDelay(0.5))
	for i := 0; i < 50; i++ {
		f.ProcessSample(1.0)
	}
	f.Reset()
	y := f.ProcessSample(0.0)
	if y != 0 {
		t.Fatalf("expected 0 after reset, got %v", y)
	}
}
