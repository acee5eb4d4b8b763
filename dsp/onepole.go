// Package dsp implements the generic filter primitives shared by the
// string voices and the guitar body: a one-pole damping filter, a
// fractional-delay all-pass, a cascaded stiffness-dispersion all-pass,
// and a Butterworth biquad pair.
package dsp

import dspcore "github.com/cwbudde/algo-dsp/dsp/core"

// OnePoleLowPass implements y[n] = (1-alpha)*x[n] + alpha*y[n-1].
// alpha -> 0 is transparent; alpha -> 1 is heavy damping.
type OnePoleLowPass struct {
	alpha float32
	y1    float32
}

// NewOnePoleLowPass creates a one-pole low-pass with the given coefficient.
func NewOnePoleLowPass(alpha float32) *OnePoleLowPass {
	return &OnePoleLowPass{alpha: clamp01Half(alpha)}
}

// SetAlpha updates the damping coefficient, clamped to [0, 1).
func (f *OnePoleLowPass) SetAlpha(alpha float32) {
	f.alpha = clamp01Half(alpha)
}

// Alpha returns the current damping coefficient.
func (f *OnePoleLowPass) Alpha() float32 {
	return f.alpha
}

// ProcessSample filters a single sample.
func (f *OnePoleLowPass) ProcessSample(x float32) float32 {
	y := (1.0-f.alpha)*x + f.alpha*f.y1
	y = float32(dspcore.FlushDenormals(float64(y)))
	f.y1 = y
	return y
}

// ProcessBlock filters a block in place.
func (f *OnePoleLowPass) ProcessBlock(buf []float32) {
	for i, x := range buf {
		buf[i] = f.ProcessSample(x)
	}
}

// Reset clears filter history.
func (f *OnePoleLowPass) Reset() {
	f.y1 = 0
}

func clamp01Half(a float32) float32 {
	if a < 0 {
		return 0
	}
	if a > 0.999999 {
		return 0.999999
	}
	return a
}
