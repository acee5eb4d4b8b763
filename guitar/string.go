package guitar

// StringVoice is the abstract capability shared by the two plucked-string
// algorithms (§4.5, §4.6, §9 "Polymorphism over strategies"). The
// instrument dispatches against this interface once per block, never
// per-sample.
type StringVoice interface {
	// SetPitch retunes the voice to a target frequency with a requested
	// T60 sustain time in seconds.
	SetPitch(targetFreqHz, sustainSeconds float32)
	// Excite re-plucks the string at the given velocity in [0,1].
	Excite(velocity float32)
	// Render produces n mono samples, advancing internal state.
	Render(n int) []float32
	// EffectiveFrequency reports the actual resonant frequency implied by
	// the voice's integer delay-line length plus fractional corrections.
	EffectiveFrequency() float32
	// SetStiffness updates the dispersion coefficient and re-derives the
	// tuning (equivalent to re-calling SetPitch at the current frequency).
	SetStiffness(a float32)
	// SetSustain recomputes the per-sample damping gain for a new T60 sustain
	// time at the voice's current frequency, without re-plucking.
	SetSustain(sustainSeconds float32)
	// Reset clears all filter and delay-line state to silence.
	Reset()
}
