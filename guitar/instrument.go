package guitar

import (
	"fmt"

	"github.com/cwbudde/algo-guitar/notefreq"
)

// StrategyKind selects which plucked-string algorithm backs every string of
// an Instrument (§4.9 "Polymorphism over strategies").
type StrategyKind int

const (
	// StrategyWaveguide is the two-rail digital waveguide model (§4.6).
	StrategyWaveguide StrategyKind = iota
	// StrategyKarplus is the classic Karplus-Strong model (§4.5).
	StrategyKarplus
)

// standardTuningNotes names the six open strings of standard EADGBE guitar
// tuning, low to high.
var standardTuningNotes = [6]string{"E2", "A2", "D3", "G3", "B3", "E4"}

// StrumDirection selects which end of the chord voicing is struck first.
type StrumDirection int

const (
	// StrumDown strikes strings in ascending index order (low string to
	// high string), the ordinary downstrum.
	StrumDown StrumDirection = iota
	// StrumUp strikes strings in descending index order (high string to
	// low string).
	StrumUp
)

// strumSpreadSeconds is the nominal time between adjacent strings in a
// strum, matching a relaxed hand motion across six strings.
const strumSpreadSeconds = 0.012

// pendingExcite is a strum note whose excitation is deferred to a later
// ProcessBlock call so the strings ring out staggered in time rather than
// all starting on the same sample.
type pendingExcite struct {
	index       int
	freqHz      float32
	velocity    float32
	sustain     float32
	framesUntil int
}

// Instrument is the polyphonic six-string host (§4.7, §4.8): one voice per
// string, a stereo body pair (95Hz/105Hz resonance, matching an acoustic
// soundboard's asymmetric left/right radiation), and a string-selection
// policy that picks the highest-pitched open string not above the requested
// pitch (plus 1 Hz).
type Instrument struct {
	sampleRate float32
	cfg        InstrumentConfig
	strategy   StrategyKind

	strings         []StringVoice
	openFrequencies []float32

	bodyLeft         *GuitarBody
	bodyRight        *GuitarBody
	resonanceEnabled bool

	lastStringIndex   int
	kickState         uint32
	lastConfigWarning *ConfigError
	pending           []pendingExcite
	strumSpreadFrames int

	mixGain float32
}

// NewInstrument builds a standard-tuned six-string instrument at sampleRate
// using the given strategy and configuration.
func NewInstrument(sampleRate float32, strategy StrategyKind, cfg InstrumentConfig) (*Instrument, error) {
	cfg = cfg.sanitized()
	inst := &Instrument{
		sampleRate:        sampleRate,
		cfg:               cfg,
		strategy:          strategy,
		bodyLeft:          NewGuitarBody(sampleRate, 95.0, 0xA5A5A5A5),
		bodyRight:         NewGuitarBody(sampleRate, 105.0, 0x5A5A5A5A),
		resonanceEnabled:  true,
		kickState:         0xC0FFEE01,
		strumSpreadFrames: int(strumSpreadSeconds * sampleRate),
		mixGain:           0.3,
	}

	for _, note := range standardTuningNotes {
		freq, err := notefreq.ToFrequency(note)
		if err != nil {
			return nil, fmt.Errorf("guitar: building standard tuning: %w", err)
		}
		inst.openFrequencies = append(inst.openFrequencies, float32(freq))
		inst.strings = append(inst.strings, inst.newVoice(strategy, float32(freq)))
	}
	return inst, nil
}

func (inst *Instrument) newVoice(strategy StrategyKind, freqHz float32) StringVoice {
	switch strategy {
	case StrategyKarplus:
		return NewKarplusVoice(inst.sampleRate, inst.cfg)
	default:
		return NewWaveguideVoice(inst.sampleRate, inst.cfg)
	}
}

// SetStrategy swaps every string's synthesis engine while preserving the
// instrument's open tuning and configuration (§4.9).
func (inst *Instrument) SetStrategy(strategy StrategyKind) {
	if strategy == inst.strategy {
		return
	}
	newStrings := make([]StringVoice, len(inst.openFrequencies))
	for i, freq := range inst.openFrequencies {
		v := inst.newVoice(strategy, freq)
		v.SetPitch(freq, 4.0)
		newStrings[i] = v
	}
	inst.strings = newStrings
	inst.strategy = strategy
}

// SetSustain broadcasts a new sustain setting to every string (§5
// SetSustain event): s is a normalized 0..1 knob remapped to a T60 seconds
// value via ss = 10*(s-0.5)/0.5 + 0.1, and every voice recomputes its
// damping gain at its current pitch without re-plucking.
func (inst *Instrument) SetSustain(s float32) {
	ss := 10*(s-0.5)/0.5 + 0.1
	if ss <= 0 {
		ss = 0.1
	}
	for _, v := range inst.strings {
		v.SetSustain(ss)
	}
}

// SetInstrumentConfig stores cfg for voices built later (by SetStrategy) and
// applies its Stiffness to every existing string. The other fields (output
// mode, pickup positions, pluck width, string damping) do not change the
// existing strings.
func (inst *Instrument) SetInstrumentConfig(cfg InstrumentConfig) {
	inst.cfg = cfg.sanitized()
	for _, s := range inst.strings {
		s.SetStiffness(inst.cfg.Stiffness)
	}
}

// SetResonanceEnabled toggles whether the body resonator is applied; when
// disabled, both output channels carry the unfiltered string mix.
func (inst *Instrument) SetResonanceEnabled(enabled bool) {
	inst.resonanceEnabled = enabled
}

// TakeConfigWarning returns and clears the most recent frequency-clamp
// warning raised by Play, PlayString, or StrumChord, or nil if none is
// pending. The audio thread calls this after each applied event so clamped
// frequencies are reported exactly once via the non-blocking warning
// channel (§7) instead of silently end-to-end.
func (inst *Instrument) TakeConfigWarning() *ConfigError {
	w := inst.lastConfigWarning
	inst.lastConfigWarning = nil
	return w
}

// Play selects the highest-pitched open string whose open frequency is not
// above targetFreqHz+1 Hz (string 0 when none qualifies), retunes it, and
// excites it. It also
// injects a short noise kick into the body resonators to simulate the
// soundboard's own percussive attack transient.
func (inst *Instrument) Play(targetFreqHz, velocity, sustainSeconds float32) {
	bestIndex := 0
	minDist := float32(100000.0)
	found := false

	for i, openFreq := range inst.openFrequencies {
		if openFreq <= targetFreqHz+1.0 {
			dist := targetFreqHz - openFreq
			if dist < minDist {
				minDist = dist
				bestIndex = i
				found = true
			}
		}
	}
	_ = found // falls back to string 0 when no open string is low enough

	if _, warn := clampFrequencyForRate(targetFreqHz, inst.sampleRate); warn != nil {
		inst.lastConfigWarning = warn
	}

	v := inst.strings[bestIndex]
	v.SetPitch(targetFreqHz, sustainSeconds)
	v.Excite(clampf(velocity, 0, 1))
	inst.lastStringIndex = bestIndex

	inst.bodyLeft.Kick(velocity, &inst.kickState)
	inst.bodyRight.Kick(velocity, &inst.kickState)
}

// PlayString excites a specific string index directly, bypassing the
// open-string selection policy (used for chord voicings and explicit
// fretting).
func (inst *Instrument) PlayString(stringIndex int, targetFreqHz, velocity, sustainSeconds float32) error {
	if stringIndex < 0 || stringIndex >= len(inst.strings) {
		return fmt.Errorf("guitar: string index %d out of range [0,%d)", stringIndex, len(inst.strings))
	}

	var warnErr error
	if _, warn := clampFrequencyForRate(targetFreqHz, inst.sampleRate); warn != nil {
		inst.lastConfigWarning = warn
		warnErr = warn
	}

	v := inst.strings[stringIndex]
	v.SetPitch(targetFreqHz, sustainSeconds)
	v.Excite(clampf(velocity, 0, 1))
	inst.lastStringIndex = stringIndex
	inst.bodyLeft.Kick(velocity, &inst.kickState)
	inst.bodyRight.Kick(velocity, &inst.kickState)
	return warnErr
}

// strumOrder returns the string indices in strike order for direction:
// ascending (low string to high string) for StrumDown, descending for
// StrumUp.
func strumOrder(n int, direction StrumDirection) []int {
	order := make([]int, n)
	if direction == StrumUp {
		for i := 0; i < n; i++ {
			order[i] = n - 1 - i
		}
	} else {
		for i := 0; i < n; i++ {
			order[i] = i
		}
	}
	return order
}

// StrumChord excites every non-muted string in freqs (NaN-free entries only)
// with a small per-string velocity jitter, staggering each string's
// excitation by strumSpreadFrames so the strings ring in over time instead
// of all starting on the same sample. direction selects whether the lowest
// or highest string in freqs is struck first.
func (inst *Instrument) StrumChord(freqs []float32, velocity, sustainSeconds float32, direction StrumDirection, rngState *uint32) {
	order := strumOrder(len(freqs), direction)
	lastIndex := -1
	for pos, i := range order {
		f := freqs[i]
		if !(f > 0) || i >= len(inst.strings) {
			continue
		}
		if _, warn := clampFrequencyForRate(f, inst.sampleRate); warn != nil {
			inst.lastConfigWarning = warn
		}

		jitter := 0.8 + 0.2*(uniformNoise(rngState)+1)*0.5
		vel := clampf(velocity*jitter, 0, 1)
		lastIndex = i

		if pos == 0 {
			inst.strings[i].SetPitch(f, sustainSeconds)
			inst.strings[i].Excite(vel)
			continue
		}
		inst.pending = append(inst.pending, pendingExcite{
			index:       i,
			freqHz:      f,
			velocity:    vel,
			sustain:     sustainSeconds,
			framesUntil: pos * inst.strumSpreadFrames,
		})
	}
	if lastIndex >= 0 {
		inst.lastStringIndex = lastIndex
	}
	inst.bodyLeft.Kick(velocity, &inst.kickState)
	inst.bodyRight.Kick(velocity, &inst.kickState)
}

// advancePending fires, at the start of the coming block, every queued strum
// note that falls due within its numFrames frames, and shrinks the remaining
// delay on the rest by numFrames.
func (inst *Instrument) advancePending(numFrames int) {
	if len(inst.pending) == 0 {
		return
	}
	remaining := inst.pending[:0]
	for _, p := range inst.pending {
		p.framesUntil -= numFrames
		if p.framesUntil > 0 {
			remaining = append(remaining, p)
			continue
		}
		if p.index >= 0 && p.index < len(inst.strings) {
			inst.strings[p.index].SetPitch(p.freqHz, p.sustain)
			inst.strings[p.index].Excite(p.velocity)
		}
	}
	inst.pending = remaining
}

// ProcessBlock renders numFrames of stereo audio: every string voice is
// summed into a mono signal, which is then routed through the stereo body
// pair (or duplicated unfiltered when resonance is disabled) and scaled by
// the instrument's fixed output trim.
func (inst *Instrument) ProcessBlock(numFrames int) (left, right []float32) {
	inst.advancePending(numFrames)
	mix := make([]float32, numFrames)
	for _, s := range inst.strings {
		rendered := s.Render(numFrames)
		for i, v := range rendered {
			mix[i] += v
		}
	}

	left = make([]float32, numFrames)
	right = make([]float32, numFrames)
	copy(left, mix)
	copy(right, mix)

	if inst.resonanceEnabled {
		inst.bodyLeft.ProcessBlock(left)
		inst.bodyRight.ProcessBlock(right)
	}

	for i := range left {
		left[i] *= inst.mixGain
		right[i] *= inst.mixGain
	}
	return left, right
}

// EffectiveFrequency returns the actual resonant frequency of the last
// string played.
func (inst *Instrument) EffectiveFrequency() float32 {
	if inst.lastStringIndex < 0 || inst.lastStringIndex >= len(inst.strings) {
		return 0
	}
	return inst.strings[inst.lastStringIndex].EffectiveFrequency()
}

// Reset silences every string voice and both body resonators.
func (inst *Instrument) Reset() {
	for _, s := range inst.strings {
		s.Reset()
	}
	inst.bodyLeft.Reset()
	inst.bodyRight.Reset()
	inst.pending = inst.pending[:0]
	inst.lastConfigWarning = nil
}
