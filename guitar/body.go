package guitar

import (
	"math"

	"github.com/cwbudde/algo-guitar/dsp"
)

// bodyNoiseFloor is the standard deviation of the simulated soundboard hiss
// injected on every sample (approximately -70 dBFS, §4.4), matching the
// prototype's noise_gain constant exactly.
const bodyNoiseFloor = 0.0002

// GuitarBody models the wooden soundboard as a wood-damping low-pass in
// parallel with a narrow Helmholtz-resonance band-pass, summed and
// soft-clipped (§4.4). Low-pass and band-pass each see the same raw string
// signal; they are not cascaded.
type GuitarBody struct {
	lowpass  *dsp.Biquad
	bandpass *dsp.Biquad

	noiseState uint32
	haveSpare  bool
	spare      float32
}

// NewGuitarBody builds a body resonator tuned around resonanceFreqHz, with a
// fixed 40Hz-wide Helmholtz band and a 3kHz wood-damping cutoff.
func NewGuitarBody(sampleRate, resonanceFreqHz float32, seed uint32) *GuitarBody {
	return &GuitarBody{
		lowpass:    dsp.NewButterworthLowpass(3000, sampleRate),
		bandpass:   dsp.NewButterworthBandpass(resonanceFreqHz, 40, sampleRate),
		noiseState: seed,
	}
}

// ProcessBlock filters signal in place through the body's resonance chain,
// matching the prototype's process(): filtered = lowpass(signal),
// boom = bandpass(signal), output = tanh(filtered + boom*1.5 + noise).
func (b *GuitarBody) ProcessBlock(signal []float32) {
	for i, x := range signal {
		filtered := b.lowpass.Process(x)
		boom := b.bandpass.Process(x)
		noise := b.gaussianNoise() * bodyNoiseFloor
		raw := filtered + boom*1.5 + noise
		signal[i] = float32(math.Tanh(float64(raw)))
	}
}

// gaussianNoise draws from a standard normal distribution via the Box-Muller
// transform seeded from the body's own deterministic PRNG, so body hiss is
// reproducible across identical renders.
func (b *GuitarBody) gaussianNoise() float32 {
	if b.haveSpare {
		b.haveSpare = false
		return b.spare
	}
	u1 := (uniformNoise(&b.noiseState) + 1) * 0.5
	u2 := (uniformNoise(&b.noiseState) + 1) * 0.5
	if u1 < 1e-9 {
		u1 = 1e-9
	}
	r := math.Sqrt(-2.0 * math.Log(float64(u1)))
	theta := 2.0 * math.Pi * float64(u2)
	z0 := float32(r * math.Cos(theta))
	z1 := float32(r * math.Sin(theta))
	b.spare = z1
	b.haveSpare = true
	return z0
}

// Reset clears filter history; noise state is left running so the hiss
// remains unpredictable-looking across successive strikes.
func (b *GuitarBody) Reset() {
	b.lowpass.Reset()
	b.bandpass.Reset()
}

// Kick injects a short burst of uniform noise into the body, used when a
// string is first struck to excite the soundboard's own transient before
// the string's resonance has propagated (mirrors the prototype's direct
// body kick in AcousticGuitar.play).
func (b *GuitarBody) Kick(velocity float32, state *uint32) {
	kick := make([]float32, 100)
	for i := range kick {
		kick[i] = uniformNoise(state) * 0.1 * velocity
	}
	b.ProcessBlock(kick)
}
