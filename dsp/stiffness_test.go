package dsp

import "testing"

func TestStiffnessDispersionZeroIsPureDelay(t *testing.T) {
	s := NewStiffnessDispersion(4, 0.0)
	in := []float32{0.1, -0.4, 1.0, 0.0, 0.3, -0.2, 0.7, 0.5}
	for i, x := range in {
		y := s.ProcessSample(x)
		var want float32
		if i >= 4 {
			want = in[i-4]
		}
		if y != want {
			t.Fatalf("sample %d: a=0 should delay by one sample per stage, got %v want %v", i, y, want)
		}
	}
	if gd := s.GroupDelay(); gd != 4 {
		t.Fatalf("group delay at a=0 should be 4 (one sample per stage), got %v", gd)
	}
}

func TestStiffnessDispersionGroupDelayIncreasesWithMagnitude(t *testing.T) {
	s := NewStiffnessDispersion(4, 0.0)
	d0 := s.UpdateStiffness(0.0, 1000)
	d1 := s.UpdateStiffness(-0.5, 1000)
	d2 := s.UpdateStiffness(-0.9, 1000)
	if !(d0 < d1 && d1 < d2) {
		t.Fatalf("group delay should increase monotonically with |a| for negative a: %v %v %v", d0, d1, d2)
	}
}

func TestStiffnessDispersionUpdateRespectsBudget(t *testing.T) {
	s := NewStiffnessDispersion(4, 0.0)
	delay := s.UpdateStiffness(0.99, 0.5)
	if delay > 0.5+1e-3 {
		t.Fatalf("delay should be clamped to budget, got %v", delay)
	}
	if a := s.A(); a > 0.99 || a < -0.99 {
		t.Fatalf("coefficient should remain in range, got %v", a)
	}
}

func TestStiffnessDispersionClampsCoefficient(t *testing.T) {
	s := NewStiffnessDispersion(4, 5.0)
	if s.A() != 0.99 {
		t.Fatalf("expected clamp to 0.99, got %v", s.A())
	}
	s2 := NewStiffnessDispersion(4, -5.0)
	if s2.A() != -0.99 {
		t.Fatalf("expected clamp to -0.99, got %v", s2.A())
	}
}

func TestStiffnessDispersionReset(t *testing.T) {
	s := NewStiffnessDispersion(4, 0.5)
	for i := 0; i < 100; i++ {
		s.ProcessSample(1.0)
	}
	s.Reset()
	y := s.ProcessSample(0.0)
	if y != 0 {
		t.Fatalf("expected 0 after reset, got %v", y)
	}
}
