package guitar

import (
	"math"

	"github.com/cwbudde/algo-guitar/dsp"
)

// WaveguideVoice is the two-rail digital waveguide model: independent
// right-traveling (toward the bridge) and left-traveling (toward the nut)
// delay lines coupled by a damping low-pass at the bridge termination and a
// fractional-delay all-pass at the nut termination (§4.6).
type WaveguideVoice struct {
	sampleRate float32

	right []float32
	left  []float32
	maxN  int
	n     int

	ptr int

	dampingLP *dsp.OnePoleLowPass
	nutAP     *dsp.FractionalAllpass
	stiffness *dsp.StiffnessDispersion
	fracC     float32

	currentDamping float32
	freqHz         float32
	pluckWidth     int

	pickupPositions []float32
	useBridgeOutput bool
}

// NewWaveguideVoice allocates a voice pre-sized for the lowest frequency
// the engine is expected to reproduce.
func NewWaveguideVoice(sampleRate float32, cfg InstrumentConfig) *WaveguideVoice {
	maxN := int(sampleRate/40.0) + 4
	v := &WaveguideVoice{
		sampleRate:      sampleRate,
		right:           make([]float32, maxN),
		left:            make([]float32, maxN),
		maxN:            maxN,
		n:               2,
		dampingLP:       dsp.NewOnePoleLowPass(0.4),
		nutAP:           dsp.NewFractionalAllpass(0),
		stiffness:       dsp.NewStiffnessDispersion(stiffnessStages, cfg.Stiffness),
		pluckWidth:      cfg.PluckWidth,
		pickupPositions: append([]float32(nil), cfg.PickupPositions...),
		useBridgeOutput: cfg.UseBridgeOutput,
	}
	return v
}

// SetStiffness re-derives the tuning at the new dispersion coefficient.
func (v *WaveguideVoice) SetStiffness(a float32) {
	v.stiffness = dsp.NewStiffnessDispersion(stiffnessStages, a)
	if v.freqHz > 0 {
		v.SetPitch(v.freqHz, 4.0)
	}
}

// SetPitch retunes both rails to targetFreqHz with the given T60 sustain,
// following the prototype's set_frequency: each rail is half the total
// string length, so the period budget is halved before the stiffness and
// fractional corrections are subtracted.
func (v *WaveguideVoice) SetPitch(targetFreqHz, sustainSeconds float32) {
	f := targetFreqHz
	if f < 20 {
		f = 20
	}
	if f > v.sampleRate/2.1 {
		f = v.sampleRate / 2.1
	}
	if sustainSeconds <= 0 {
		sustainSeconds = 4
	}
	v.currentDamping = float32(math.Pow(10.0, -3.0/(float64(f)*float64(sustainSeconds))))

	v.dampingLP.SetAlpha(adaptiveDampingAlpha(f))

	idealN := (v.sampleRate / f) / 2.0
	stiffnessDelay := v.stiffness.UpdateStiffness(v.stiffness.A(), idealN*0.7-1.0)
	fixedDelays := 1.0 + stiffnessDelay
	totalN := idealN - 0.5*fixedDelays
	if totalN < 1.1 {
		totalN = 1.1
	}

	n := int(totalN)
	if n < 1 {
		n = 1
	}
	if n > v.maxN-1 {
		n = v.maxN - 1
	}
	residue := totalN - float32(n)

	v.n = n
	v.ptr = 0
	v.fracC = (1.0 - 2.0*residue) / (1.0 + 2.0*residue)
	v.nutAP.SetCoeff(v.fracC)
	v.freqHz = f
}

// adaptiveDampingAlpha implements the bright-highs/warm-lows damping curve
// (§4.6): 0.08 above 600 Hz, 0.20 below 300 Hz, linear in between.
func adaptiveDampingAlpha(f float32) float32 {
	switch {
	case f >= 600:
		return 0.08
	case f <= 300:
		return 0.20
	default:
		t := (f - 300) / (600 - 300)
		return 0.20 + t*(0.08-0.20)
	}
}

// SetSustain recomputes the bridge damping gain for a new T60 sustain time
// at the voice's current frequency, leaving the rail tuning and ringing
// state untouched.
func (v *WaveguideVoice) SetSustain(sustainSeconds float32) {
	if v.freqHz <= 0 {
		return
	}
	if sustainSeconds <= 0 {
		sustainSeconds = 4
	}
	v.currentDamping = float32(math.Pow(10.0, -3.0/(float64(v.freqHz)*float64(sustainSeconds))))
}

// Excite injects a triangular pluck shape into both rails simultaneously,
// peaking at the pluck-position index, overwriting whatever is still
// ringing there and resetting every filter's history so the new pluck
// starts from a clean state rather than blending with residual energy.
func (v *WaveguideVoice) Excite(velocity float32) {
	v.ExciteAt(velocity, 0.2)
}

// ExciteAt is Excite with an explicit pluck position in (0,1). The
// triangular displacement's sharp apex is rounded off by a quadratic
// smoothing window spanning pluckWidth samples, simulating the finger's
// contact area instead of an idealized point pluck.
func (v *WaveguideVoice) ExciteAt(velocity, pluckPosition float32) {
	v.dampingLP.Reset()
	v.nutAP.Reset()
	v.stiffness.Reset()

	n := v.n
	if n < 2 {
		n = 2
	}
	pluckPos := int(float32(n) * pluckPosition)
	if pluckPos < 1 {
		pluckPos = 1
	}
	if pluckPos > n-1 {
		pluckPos = n - 1
	}
	vel := clampf(velocity, 0, 1)
	peak := 0.5 * vel

	halfWidth := float32(v.pluckWidth) / 2.0
	if halfWidth < 1 {
		halfWidth = 1
	}

	for i := 0; i < n; i++ {
		idx := (v.ptr + i) % n
		var contrib float32
		if i <= pluckPos {
			contrib = peak * float32(i) / float32(pluckPos)
		} else {
			contrib = peak * float32(n-i) / float32(n-pluckPos)
		}

		dist := float32(i - pluckPos)
		if dist < 0 {
			dist = -dist
		}
		if dist < halfWidth {
			u := dist / halfWidth
			w := 1 - u*u
			contrib = contrib*(1-w) + peak*w
		}

		v.right[idx] = contrib
		v.left[idx] = contrib
	}
}

// Render produces count samples. Each sample reads the bridge rail (right)
// and the nut rail (left) at the read pointer, low-pass-damps and
// stiffness-disperses the bridge sample, inverts and fractional-delays the
// nut sample, and writes the two reflected values back into the opposite
// rail so energy continues circulating around the loop.
func (v *WaveguideVoice) Render(count int) []float32 {
	out := make([]float32, count)
	n := v.n
	if n < 1 {
		n = 1
	}

	var pickupOffsets []int
	if !v.useBridgeOutput {
		for _, r := range v.pickupPositions {
			pickupOffsets = append(pickupOffsets, int(float32(n)*r))
		}
	}

	ptr := v.ptr
	for i := 0; i < count; i++ {
		valBridge := v.right[ptr]
		valNut := v.left[ptr]

		filteredBridge := v.dampingLP.ProcessSample(valBridge)
		stiffBridge := v.stiffness.ProcessSample(filteredBridge)

		invNut := -valNut
		nutReflection := v.nutAP.ProcessSample(invNut)

		v.left[ptr] = -stiffBridge * v.currentDamping
		v.right[ptr] = nutReflection

		if v.useBridgeOutput || len(pickupOffsets) == 0 {
			out[i] = stiffBridge
		} else {
			var total float32
			for _, off := range pickupOffsets {
				idx := (ptr + off) % n
				total += v.right[idx] + v.left[idx]
			}
			out[i] = total / float32(len(pickupOffsets))
		}

		ptr = (ptr + 1) % n
	}
	v.ptr = ptr
	return out
}

// EffectiveFrequency mirrors the prototype's get_effective_frequency: the
// period is twice the rail length (round-trip) plus the fractional-delay and
// stiffness group delays plus the damping filter's own 1-sample budget.
func (v *WaveguideVoice) EffectiveFrequency() float32 {
	fracDelay := (1.0 - v.fracC) / (1.0 + v.fracC)
	total := 2.0*float32(v.n) + fracDelay + v.stiffness.GroupDelay() + 1.0
	if total <= 0 {
		return 0
	}
	return v.sampleRate / total
}

// Reset clears both rails and every filter's history to silence.
func (v *WaveguideVoice) Reset() {
	for i := range v.right {
		v.right[i] = 0
	}
	for i := range v.left {
		v.left[i] = 0
	}
	v.ptr = 0
	v.dampingLP.Reset()
	v.nutAP.Reset()
	v.stiffness.Reset()
}
