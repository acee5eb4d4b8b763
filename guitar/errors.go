package guitar

import "fmt"

// ConfigError reports a configuration anomaly on the control thread (§7):
// a requested frequency outside the representable range for the voice's
// delay-line budget. The core clamps silently on the audio thread and
// never raises there; ConfigError is only returned to callers that invoke
// SetPitch directly on the control thread (e.g. the Instrument's public
// API), never from inside Render.
type ConfigError struct {
	Requested float32
	Clamped   float32
	Reason    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("guitar: frequency %.3f Hz out of range, clamped to %.3f Hz (%s)", e.Requested, e.Clamped, e.Reason)
}

// StatusKind enumerates the one-slot status atomic read by the control
// thread (§7): the audio thread never blocks or raises, it only publishes
// the latest anomaly here.
type StatusKind int

const (
	// StatusNone means no anomaly is pending.
	StatusNone StatusKind = iota
	// StatusFrequencyClamped means a requested pitch was clamped to the
	// representable range.
	StatusFrequencyClamped
	// StatusInvalidStringIndex means a PlayString request named a string
	// index outside the instrument's string count.
	StatusInvalidStringIndex
	// StatusUnderrun means the host signaled an audio callback underrun.
	StatusUnderrun
)

// Status is a snapshot of the single-slot warning state.
type Status struct {
	Kind    StatusKind
	Message string
}

// clampFrequencyForRate mirrors the [20, sampleRate/2.1] clamp every
// StringVoice applies internally in SetPitch, and reports it as a
// *ConfigError when clamping actually changed the requested frequency, so
// the instrument-level callers that drive SetPitch can surface the one
// warning spec.md §7 asks for instead of clamping silently end-to-end.
func clampFrequencyForRate(requested, sampleRate float32) (clamped float32, warn *ConfigError) {
	f := requested
	if f < 20 {
		f = 20
	}
	if f > sampleRate/2.1 {
		f = sampleRate / 2.1
	}
	if f == requested {
		return f, nil
	}
	return f, &ConfigError{
		Requested: requested,
		Clamped:   f,
		Reason:    "target frequency outside representable range",
	}
}
