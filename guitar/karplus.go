package guitar

import (
	"math"

	"github.com/cwbudde/algo-guitar/dsp"
)

// stiffnessStages is the cascade depth used by every plucked-string voice,
// matching the dispersion filter length found effective for steel-string
// inharmonicity in the prototype.
const stiffnessStages = 12

var (
	_ StringVoice = (*KarplusVoice)(nil)
	_ StringVoice = (*WaveguideVoice)(nil)
)

// KarplusVoice is the classic Karplus-Strong plucked-string model: a single
// circular delay line, a two-tap averaging loop filter, a stiffness-dispersion
// all-pass cascade and a fractional-delay all-pass for sub-sample tuning
// (§4.5).
type KarplusVoice struct {
	sampleRate float32

	buf  []float32
	maxN int
	n    int
	p    int

	allpass    *dsp.FractionalAllpass
	stiffness  *dsp.StiffnessDispersion
	decay      float32
	pluckPos   float32
	exciteLP   *dsp.OnePoleLowPass

	freqHz float32
	rng    uint32
}

// NewKarplusVoice allocates a voice pre-sized for the lowest frequency the
// engine is expected to reproduce (20 Hz), so the audio thread never grows
// the delay line (§3 "Delay lines grow only").
func NewKarplusVoice(sampleRate float32, cfg InstrumentConfig) *KarplusVoice {
	maxN := int(sampleRate/20.0) + 4
	v := &KarplusVoice{
		sampleRate: sampleRate,
		buf:        make([]float32, maxN),
		maxN:       maxN,
		n:          2,
		allpass:    dsp.NewFractionalAllpass(0),
		stiffness:  dsp.NewStiffnessDispersion(stiffnessStages, cfg.Stiffness),
		decay:      cfg.StringDamping,
		pluckPos:   0.2,
		exciteLP:   dsp.NewOnePoleLowPass(0),
		rng:        0x1234abcd,
	}
	return v
}

// SetStiffness re-derives the tuning at the new dispersion coefficient.
func (v *KarplusVoice) SetStiffness(a float32) {
	v.stiffness = dsp.NewStiffnessDispersion(stiffnessStages, a)
	if v.freqHz > 0 {
		v.SetPitch(v.freqHz, v.sustainFromDecay())
	}
}

// sustainFromDecay inverts decayFactor->sustainSeconds approximately, used
// only to keep SetStiffness's re-tune call self-consistent; callers normally
// drive sustain explicitly through SetPitch.
func (v *KarplusVoice) sustainFromDecay() float32 {
	if v.decay <= 0 || v.decay >= 1 {
		return 1
	}
	return -3.0 / (v.freqHz * float32(math.Log10(float64(v.decay))))
}

// SetPitch retunes the delay line to targetFreqHz with the given T60 sustain,
// following the prototype's set_frequency exactly: an ideal period is split
// into an integer delay N, a stiffness-cascade group delay and a fractional
// all-pass remainder, with a fixed 0.52-sample budget reserved for the loop
// filter's own group delay.
func (v *KarplusVoice) SetPitch(targetFreqHz, sustainSeconds float32) {
	f := targetFreqHz
	if f < 20 {
		f = 20
	}
	if f > v.sampleRate/2.1 {
		f = v.sampleRate / 2.1
	}

	idealT := v.sampleRate / f
	stiffnessDelay := v.stiffness.UpdateStiffness(v.stiffness.A(), idealT*0.7-0.52)

	totalT := idealT - 0.52 - stiffnessDelay
	if totalT < 2.1 {
		totalT = 2.1
	}

	n := int(totalT)
	if n < 2 {
		n = 2
	}
	if n > v.maxN-1 {
		n = v.maxN - 1
	}
	residue := totalT - float32(n)

	v.n = n
	v.p = 0
	v.allpass.SetCoeff(dsp.CoeffForDelay(residue))
	v.freqHz = f

	w := 2.0 * math.Pi * float64(f) / float64(v.sampleRate)
	filterGain := float32(math.Sqrt(0.48*0.48 + 0.52*0.52 + 2*0.48*0.52*math.Cos(w)))
	if filterGain < 1e-6 {
		filterGain = 1e-6
	}
	if sustainSeconds <= 0 {
		sustainSeconds = 1
	}
	v.decay = decayGain(f, sustainSeconds, filterGain)
}

// decayGain computes the per-period loop-filter multiplier that achieves
// the requested T60 sustain at fundamental f, compensating for the loop
// filter's own magnitude response at that frequency.
func decayGain(f, sustainSeconds, filterGain float32) float32 {
	if sustainSeconds <= 0 {
		sustainSeconds = 1
	}
	targetGain := float32(math.Pow(10.0, -3.0/(float64(f)*float64(sustainSeconds))))
	d := targetGain / filterGain
	if d > 0.999 {
		d = 0.999
	}
	if d < 0 {
		d = 0
	}
	return d
}

// SetSustain recomputes the loop-filter decay gain for a new T60 sustain
// time at the voice's current frequency, leaving the delay-line tuning,
// read/write pointer and ringing state untouched.
func (v *KarplusVoice) SetSustain(sustainSeconds float32) {
	if v.freqHz <= 0 {
		return
	}
	w := 2.0 * math.Pi * float64(v.freqHz) / float64(v.sampleRate)
	filterGain := float32(math.Sqrt(0.48*0.48 + 0.52*0.52 + 2*0.48*0.52*math.Cos(w)))
	if filterGain < 1e-6 {
		filterGain = 1e-6
	}
	v.decay = decayGain(v.freqHz, sustainSeconds, filterGain)
}

// Excite re-plucks the string: a white-noise burst is leaky-integrated, run
// through a pluck-position comb and a one-pole low-pass at a fixed 4kHz
// brightness cutoff, then written into the (cleared) delay line.
func (v *KarplusVoice) Excite(velocity float32) {
	n := v.n
	if n < 2 {
		n = 2
	}
	burst := make([]float32, n)
	for i := 0; i < n; i++ {
		burst[i] = uniformNoise(&v.rng)
	}

	var prev float32
	for i := 0; i < n; i++ {
		x := (burst[i] + 0.5*prev) / 1.5
		prev = burst[i]
		burst[i] = x
	}

	p := int(v.pluckPos * float32(n))
	if p < 1 {
		p = 1
	}
	if p >= n {
		p = n - 1
	}
	combed := make([]float32, n)
	for i := 0; i < n; i++ {
		if i >= p {
			combed[i] = burst[i] - burst[i-p]
		} else {
			combed[i] = burst[i]
		}
	}

	cutoffHz := float32(4000.0)
	alphaOrig := 2.0 * math.Pi * cutoffHz / (v.sampleRate + 2.0*math.Pi*cutoffHz)
	v.exciteLP.SetAlpha(1.0 - alphaOrig)
	v.exciteLP.Reset()
	v.exciteLP.ProcessBlock(combed)

	vel := clampf(velocity, 0, 1)
	for i := 0; i < n; i++ {
		v.buf[i] = combed[i] * vel
	}
	for i := n; i < v.maxN; i++ {
		v.buf[i] = 0
	}
	v.p = 0
}

// Render produces count samples, advancing the delay line by one sample per
// output frame: a two-tap average (the loop filter) scaled by the damping
// gain, then the stiffness cascade, and finally the fractional all-pass.
func (v *KarplusVoice) Render(count int) []float32 {
	out := make([]float32, count)
	n := v.n
	if n < 2 {
		n = 2
	}
	for i := 0; i < count; i++ {
		v0 := v.buf[v.p]
		v1 := v.buf[(v.p+1)%n]
		lp := (0.48*v0 + 0.52*v1) * v.decay
		disp := v.stiffness.ProcessSample(lp)
		fed := v.allpass.ProcessSample(disp)
		v.buf[v.p] = fed
		out[i] = v0
		v.p = (v.p + 1) % n
	}
	return out
}

// EffectiveFrequency reports the resonant frequency implied by the current
// integer delay length plus the fractional-allpass and stiffness-cascade
// group delays, mirroring the prototype's get_effective_frequency.
func (v *KarplusVoice) EffectiveFrequency() float32 {
	c := v.allpass.Coeff()
	fracDelay := (1.0 - c) / (1.0 + c)
	total := float32(v.n) + fracDelay + v.stiffness.GroupDelay() + 0.52
	if total <= 0 {
		return 0
	}
	return v.sampleRate / total
}

// Reset clears the delay line and every filter's history to silence.
func (v *KarplusVoice) Reset() {
	for i := range v.buf {
		v.buf[i] = 0
	}
	v.p = 0
	v.allpass.Reset()
	v.stiffness.Reset()
	v.exciteLP.Reset()
}
