package dsp

import dspcore "github.com/cwbudde/algo-dsp/dsp/core"

// stiffnessStage is one first-order all-pass stage in the dispersion cascade.
type stiffnessStage struct {
	x1, y1 float32
}

// StiffnessDispersion cascades K identical first-order all-pass stages to
// model frequency-dependent propagation speed (inharmonicity). Each stage:
//
//	y = a*x + x_prev - a*y_prev
type StiffnessDispersion struct {
	a      float32
	stages []stiffnessStage
}

// NewStiffnessDispersion creates a K-stage cascade with initial coefficient a.
// a is clamped to [-0.99, 0.99].
func NewStiffnessDispersion(k int, a float32) *StiffnessDispersion {
	if k < 1 {
		k = 1
	}
	return &StiffnessDispersion{
		a:      clampStiffness(a),
		stages: make([]stiffnessStage, k),
	}
}

func clampStiffness(a float32) float32 {
	if a > 0.99 {
		return 0.99
	}
	if a < -0.99 {
		return -0.99
	}
	return a
}

// ProcessSample pushes one sample through all K cascaded stages.
func (s *StiffnessDispersion) ProcessSample(x float32) float32 {
	current := x
	for i := range s.stages {
		st := &s.stages[i]
		y := s.a*current + st.x1 - s.a*st.y1
		y = float32(dspcore.FlushDenormals(float64(y)))
		st.x1 = current
		st.y1 = y
		current = y
	}
	return current
}

// Reset clears every stage's history.
func (s *StiffnessDispersion) Reset() {
	for i := range s.stages {
		s.stages[i] = stiffnessStage{}
	}
}

// A returns the current stiffness coefficient.
func (s *StiffnessDispersion) A() float32 {
	return s.a
}

// Stages returns K, the number of cascaded all-pass stages.
func (s *StiffnessDispersion) Stages() int {
	return len(s.stages)
}

// GroupDelay returns the cascade's approximate group delay in samples:
// K * (1-a) / (1+a).
func (s *StiffnessDispersion) GroupDelay() float32 {
	return groupDelayFor(len(s.stages), s.a)
}

func groupDelayFor(k int, a float32) float32 {
	denom := 1.0 + a
	if denom > -1e-6 && denom < 1e-6 {
		denom = 1e-6
	}
	return float32(k) * (1.0 - a) / denom
}

// UpdateStiffness clamps |target_a| <= 0.99 and recomputes the delay. If the
// delay exceeds maxDelayBudget, it instead solves a = (K-D)/(K+D) with
// D = max(0.1, budget) so the voice's total delay never exceeds one string
// period. Returns the resulting (possibly clamped) group delay.
func (s *StiffnessDispersion) UpdateStiffness(targetA float32, maxDelayBudget float32) float32 {
	k := len(s.stages)
	a := clampStiffness(targetA)
	delay := groupDelayFor(k, a)
	if delay > maxDelayBudget {
		d := maxDelayBudget
		if d < 0.1 {
			d = 0.1
		}
		a = (float32(k) - d) / (float32(k) + d)
		delay = d
	}
	s.a = a
	return delay
}
