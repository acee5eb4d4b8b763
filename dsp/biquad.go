package dsp

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// Biquad implements a second-order IIR filter, Direct Form I, with
// streaming state preserved across Process calls/blocks.
type Biquad struct {
	b0, b1, b2 float32
	a1, a2     float32

	x1, x2 float32
	y1, y2 float32
}

// NewBiquad creates a biquad with explicit coefficients.
func NewBiquad(b0, b1, b2, a1, a2 float32) *Biquad {
	return &Biquad{b0: b0, b1: b1, b2: b2, a1: a1, a2: a2}
}

// Process filters one sample.
func (b *Biquad) Process(x float32) float32 {
	y := b.b0*x + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
	y = float32(dspcore.FlushDenormals(float64(y)))

	b.x2 = b.x1
	b.x1 = x
	b.y2 = b.y1
	b.y1 = y
	return y
}

// ProcessBlock filters a block in place, preserving state across calls.
func (b *Biquad) ProcessBlock(buf []float32) {
	for i, x := range buf {
		buf[i] = b.Process(x)
	}
}

// Reset clears the two-sample input/output history.
func (b *Biquad) Reset() {
	b.x1, b.x2 = 0, 0
	b.y1, b.y2 = 0, 0
}

// NewButterworthLowpass designs a 2nd-order Butterworth low-pass biquad
// using the RBJ cookbook formulas (Q = 1/sqrt(2) for a maximally-flat
// response), matching the body's "wood damping" shelf (§4.4).
func NewButterworthLowpass(cutoffHz, sampleRate float32) *Biquad {
	const q = 0.70710678 // 1/sqrt(2)
	w0 := 2.0 * math.Pi * float64(cutoffHz) / float64(sampleRate)
	alpha := math.Sin(w0) / (2.0 * q)
	cosw0 := math.Cos(w0)

	b0 := (1.0 - cosw0) / 2.0
	b1 := 1.0 - cosw0
	b2 := (1.0 - cosw0) / 2.0
	a0 := 1.0 + alpha
	a1 := -2.0 * cosw0
	a2 := 1.0 - alpha

	return NewBiquad(
		float32(b0/a0), float32(b1/a0), float32(b2/a0),
		float32(a1/a0), float32(a2/a0),
	)
}

// NewButterworthBandpass designs a 2nd-order constant-0dB-peak-gain
// band-pass biquad centered at centerHz with the given bandwidth in Hz,
// matching the body's narrow Helmholtz resonance (§4.4).
func NewButterworthBandpass(centerHz, bandwidthHz, sampleRate float32) *Biquad {
	w0 := 2.0 * math.Pi * float64(centerHz) / float64(sampleRate)
	// Q from bandwidth: BW (Hz) = f0/Q  =>  Q = f0/BW.
	q := float64(centerHz) / float64(bandwidthHz)
	if q < 0.1 {
		q = 0.1
	}
	alpha := math.Sin(w0) / (2.0 * q)
	cosw0 := math.Cos(w0)

	b0 := alpha
	b1 := 0.0
	b2 := -alpha
	a0 := 1.0 + alpha
	a1 := -2.0 * cosw0
	a2 := 1.0 - alpha

	return NewBiquad(
		float32(b0/a0), float32(b1/a0), float32(b2/a0),
		float32(a1/a0), float32(a2/a0),
	)
}
