package dsp

import dspcore "github.com/cwbudde/algo-dsp/dsp/core"

// FractionalAllpass implements a first-order all-pass fractional delay:
//
//	y[n] = c*x[n] + x[n-1] - c*y[n-1]
//
// For a desired fractional delay d in [0,1], c = (1-d)/(1+d).
type FractionalAllpass struct {
	c  float32
	x1 float32
	y1 float32
}

// NewFractionalAllpass creates an all-pass with the given coefficient.
func NewFractionalAllpass(c float32) *FractionalAllpass {
	return &FractionalAllpass{c: c}
}

// CoeffForDelay converts a fractional delay d in [0,1] to an all-pass coefficient.
func CoeffForDelay(d float32) float32 {
	return (1.0 - d) / (1.0 + d)
}

// SetCoeff sets the all-pass coefficient directly.
func (f *FractionalAllpass) SetCoeff(c float32) {
	f.c = c
}

// Coeff returns the current all-pass coefficient.
func (f *FractionalAllpass) Coeff() float32 {
	return f.c
}

// ProcessSample filters a single sample.
func (f *FractionalAllpass) ProcessSample(x float32) float32 {
	y := f.c*x + f.x1 - f.c*f.y1
	y = float32(dspcore.FlushDenormals(float64(y)))
	f.x1 = x
	f.y1 = y
	return y
}

// Reset clears the pair of history samples.
func (f *FractionalAllpass) Reset() {
	f.x1, f.y1 = 0, 0
}
