package preset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-guitar/guitar"
)

func writeTempPreset(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "preset.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp preset: %v", err)
	}
	return path
}

func TestLoadJSONAppliesOverridesOnTopOfDefaults(t *testing.T) {
	path := writeTempPreset(t, `{
		"strategy": "karplus",
		"string_damping": 0.995,
		"stiffness": -0.3
	}`)

	cfg, strategy, overrides, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strategy != guitar.StrategyKarplus {
		t.Fatalf("expected karplus strategy, got %v", strategy)
	}
	if cfg.StringDamping != 0.995 {
		t.Fatalf("expected string damping 0.995, got %v", cfg.StringDamping)
	}
	if cfg.Stiffness != -0.3 {
		t.Fatalf("expected stiffness -0.3, got %v", cfg.Stiffness)
	}
	if overrides != nil {
		t.Fatalf("expected no per-string overrides, got %v", overrides)
	}
}

func TestLoadJSONParsesPerStringOverrides(t *testing.T) {
	path := writeTempPreset(t, `{
		"per_string": {
			"0": {"open_freq_hz": 80.0},
			"5": {"stiffness": 0.1}
		}
	}`)

	_, _, overrides, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(overrides) != 2 {
		t.Fatalf("expected 2 overrides, got %d", len(overrides))
	}
	if *overrides[0].OpenFreqHz != 80.0 {
		t.Fatalf("expected string 0 open_freq_hz 80.0, got %v", *overrides[0].OpenFreqHz)
	}
	if *overrides[5].Stiffness != 0.1 {
		t.Fatalf("expected string 5 stiffness 0.1, got %v", *overrides[5].Stiffness)
	}
}

func TestLoadJSONRejectsInvalidStiffness(t *testing.T) {
	path := writeTempPreset(t, `{"stiffness": 5.0}`)
	if _, _, _, err := LoadJSON(path); err == nil {
		t.Fatal("expected error for out-of-range stiffness")
	}
}

func TestLoadJSONRejectsUnknownStrategy(t *testing.T) {
	path := writeTempPreset(t, `{"strategy": "modal"}`)
	if _, _, _, err := LoadJSON(path); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestLoadJSONRejectsInvalidPerStringIndex(t *testing.T) {
	path := writeTempPreset(t, `{"per_string": {"9": {"stiffness": 0.1}}}`)
	if _, _, _, err := LoadJSON(path); err == nil {
		t.Fatal("expected error for out-of-range per_string index")
	}
}
