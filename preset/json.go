package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/cwbudde/algo-guitar/guitar"
)

// File is the JSON schema for instrument presets. Every field is a pointer
// so that an absent key leaves the corresponding InstrumentConfig field at
// its default instead of zeroing it out.
type File struct {
	Strategy        *string             `json:"strategy"`
	PickupPositions []float32           `json:"pickup_positions"`
	UseBridgeOutput *bool               `json:"use_bridge_output"`
	StringDamping   *float32            `json:"string_damping"`
	PluckWidth      *int                `json:"pluck_width"`
	Stiffness       *float32            `json:"stiffness"`
	PerString       map[string]StringOverride `json:"per_string"`
}

// StringOverride is a per-string tuning/damping override, keyed by string
// index (0 = lowest, 5 = highest in standard tuning).
type StringOverride struct {
	OpenFreqHz    *float32 `json:"open_freq_hz"`
	StringDamping *float32 `json:"string_damping"`
	Stiffness     *float32 `json:"stiffness"`
}

// LoadJSON loads an instrument preset file and returns the resulting
// config, strategy and per-string overrides (applied separately since
// InstrumentConfig has no per-string slot).
func LoadJSON(path string) (guitar.InstrumentConfig, guitar.StrategyKind, map[int]StringOverride, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return guitar.InstrumentConfig{}, guitar.StrategyWaveguide, nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return guitar.InstrumentConfig{}, guitar.StrategyWaveguide, nil, err
	}

	cfg := guitar.NewDefaultInstrumentConfig()
	strategy := guitar.StrategyWaveguide
	if err := ApplyFile(&cfg, &strategy, &f); err != nil {
		return guitar.InstrumentConfig{}, guitar.StrategyWaveguide, nil, err
	}

	overrides, err := parsePerString(f.PerString)
	if err != nil {
		return guitar.InstrumentConfig{}, guitar.StrategyWaveguide, nil, err
	}
	return cfg, strategy, overrides, nil
}

// ApplyFile applies a parsed preset file onto an existing config and
// strategy in place.
func ApplyFile(dst *guitar.InstrumentConfig, strategy *guitar.StrategyKind, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination config")
	}
	if f == nil {
		return nil
	}

	if f.Strategy != nil {
		switch *f.Strategy {
		case "waveguide", "Digital Waveguide":
			*strategy = guitar.StrategyWaveguide
		case "karplus", "Karplus Strong":
			*strategy = guitar.StrategyKarplus
		default:
			return fmt.Errorf("unknown strategy %q", *f.Strategy)
		}
	}
	if len(f.PickupPositions) > 0 {
		for _, p := range f.PickupPositions {
			if p <= 0 || p >= 1 {
				return fmt.Errorf("pickup_positions entries must be in (0,1), got %v", p)
			}
		}
		dst.PickupPositions = append([]float32(nil), f.PickupPositions...)
	}
	if f.UseBridgeOutput != nil {
		dst.UseBridgeOutput = *f.UseBridgeOutput
	}
	if f.StringDamping != nil {
		if *f.StringDamping <= 0 || *f.StringDamping >= 1 {
			return fmt.Errorf("string_damping must be in (0,1)")
		}
		dst.StringDamping = *f.StringDamping
	}
	if f.PluckWidth != nil {
		if *f.PluckWidth < 2 {
			return fmt.Errorf("pluck_width must be >= 2")
		}
		dst.PluckWidth = *f.PluckWidth
	}
	if f.Stiffness != nil {
		if *f.Stiffness < -0.99 || *f.Stiffness > 0.99 {
			return fmt.Errorf("stiffness must be in [-0.99,0.99]")
		}
		dst.Stiffness = *f.Stiffness
	}
	return nil
}

func parsePerString(raw map[string]StringOverride) (map[int]StringOverride, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[int]StringOverride, len(raw))
	for _, k := range keys {
		idx, err := strconv.Atoi(k)
		if err != nil || idx < 0 || idx > 5 {
			return nil, fmt.Errorf("invalid per_string key %q (expected 0..5)", k)
		}
		ov := raw[k]
		if ov.OpenFreqHz != nil && *ov.OpenFreqHz <= 0 {
			return nil, fmt.Errorf("per_string[%d].open_freq_hz must be > 0", idx)
		}
		if ov.StringDamping != nil && (*ov.StringDamping <= 0 || *ov.StringDamping >= 1) {
			return nil, fmt.Errorf("per_string[%d].string_damping must be in (0,1)", idx)
		}
		if ov.Stiffness != nil && (*ov.Stiffness < -0.99 || *ov.Stiffness > 0.99) {
			return nil, fmt.Errorf("per_string[%d].stiffness must be in [-0.99,0.99]", idx)
		}
		out[idx] = ov
	}
	return out, nil
}
