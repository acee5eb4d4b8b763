package guitar

// InstrumentConfig is the construction-time configuration for an Instrument,
// matching the external "Instrument configuration" surface (§6).
type InstrumentConfig struct {
	// PickupPositions are fractional string positions in (0,1) sampled for
	// the waveguide's pickup output mode. Ignored when UseBridgeOutput.
	PickupPositions []float32
	// UseBridgeOutput selects acoustic (bridge force) vs. electric (pickup
	// displacement) output for the waveguide voice.
	UseBridgeOutput bool
	// StringDamping is a per-period loop-loss gain in (0,1). The Karplus
	// voice uses it only as its initial loop gain, which SetPitch replaces
	// with a gain derived from the sustain time; the waveguide voice does not
	// read it. It does not change the rendered sound of a plucked note.
	StringDamping float32
	// PluckWidth is the smoothing window (samples) around the pluck apex.
	PluckWidth int
	// Stiffness is the initial dispersion coefficient in [-0.99, 0.99].
	Stiffness float32
}

// DefaultPickupPositions mirrors the waveguide voice's default multi-pickup
// tap locations (§4.6).
var DefaultPickupPositions = []float32{0.08, 0.2, 0.35}

// NewDefaultInstrumentConfig returns the acoustic-guitar default configuration.
func NewDefaultInstrumentConfig() InstrumentConfig {
	return InstrumentConfig{
		PickupPositions: append([]float32(nil), DefaultPickupPositions...),
		UseBridgeOutput: true,
		StringDamping:   0.999,
		PluckWidth:      10,
		Stiffness:       -0.2,
	}
}

// ElectricInstrumentConfig mirrors the prototype's "Electric" preset: pickup
// output; pluck width and damping are the same as the acoustic default.
func ElectricInstrumentConfig() InstrumentConfig {
	return InstrumentConfig{
		PickupPositions: append([]float32(nil), DefaultPickupPositions...),
		UseBridgeOutput: false,
		StringDamping:   0.999,
		PluckWidth:      10,
		Stiffness:       -0.2,
	}
}

func (c InstrumentConfig) sanitized() InstrumentConfig {
	if len(c.PickupPositions) == 0 {
		c.PickupPositions = append([]float32(nil), DefaultPickupPositions...)
	}
	if c.StringDamping <= 0 || c.StringDamping >= 1 {
		c.StringDamping = 0.999
	}
	if c.PluckWidth < 2 {
		c.PluckWidth = 2
	}
	if c.Stiffness > 0.99 {
		c.Stiffness = 0.99
	}
	if c.Stiffness < -0.99 {
		c.Stiffness = -0.99
	}
	return c
}
