package guitar

import "testing"

func TestWaveguideVoiceTunesNearTargetFrequency(t *testing.T) {
	v := NewWaveguideVoice(44100, NewDefaultInstrumentConfig())
	v.SetPitch(220.0, 3.0)
	v.Excite(0.8)

	eff := v.EffectiveFrequency()
	if eff < 210 || eff > 230 {
		t.Fatalf("effective frequency %.3f too far from 220 Hz target", eff)
	}
}

func TestWaveguideVoiceRenderIsFinite(t *testing.T) {
	v := NewWaveguideVoice(44100, NewDefaultInstrumentConfig())
	v.SetPitch(110.0, 3.0)
	v.Excite(1.0)

	out := v.Render(4096)
	for i, s := range out {
		if !isFinite(s) {
			t.Fatalf("sample %d is not finite: %v", i, s)
		}
	}
}

func TestWaveguideVoiceDecaysOverTime(t *testing.T) {
	v := NewWaveguideVoice(44100, NewDefaultInstrumentConfig())
	v.SetPitch(196.0, 1.5)
	v.Excite(1.0)

	early := rmsOf(v.Render(2048))
	_ = v.Render(44100 * 2)
	late := rmsOf(v.Render(2048))

	if late >= early {
		t.Fatalf("expected amplitude to decay: early=%v late=%v", early, late)
	}
}

func TestWaveguideVoiceReExciteRestoresEnergy(t *testing.T) {
	v := NewWaveguideVoice(44100, NewDefaultInstrumentConfig())
	v.SetPitch(220.0, 3.0)
	v.Excite(0.5)
	_ = v.Render(512)

	beforeRMS := rmsOf(v.Render(256))
	v.Excite(0.5)
	afterRMS := rmsOf(v.Render(256))

	if afterRMS <= beforeRMS*0.5 {
		t.Fatalf("expected re-pluck to restore the string's energy, before=%v after=%v", beforeRMS, afterRMS)
	}
}

func TestWaveguideVoicePickupModeDiffersFromBridgeMode(t *testing.T) {
	cfg := NewDefaultInstrumentConfig()
	cfg.UseBridgeOutput = true
	bridge := NewWaveguideVoice(44100, cfg)
	bridge.SetPitch(220.0, 2.0)
	bridge.Excite(1.0)
	bridgeOut := bridge.Render(64)

	cfg.UseBridgeOutput = false
	pickup := NewWaveguideVoice(44100, cfg)
	pickup.SetPitch(220.0, 2.0)
	pickup.Excite(1.0)
	pickupOut := pickup.Render(64)

	identical := true
	for i := range bridgeOut {
		if bridgeOut[i] != pickupOut[i] {
			identical = false
			break
		}
	}
	if identical {
		t.Fatal("expected bridge and pickup output modes to differ")
	}
}

func TestWaveguideVoiceResetSilencesOutput(t *testing.T) {
	v := NewWaveguideVoice(44100, NewDefaultInstrumentConfig())
	v.SetPitch(220.0, 2.0)
	v.Excite(1.0)
	v.Reset()

	out := v.Render(512)
	for _, s := range out {
		if s != 0 {
			t.Fatalf("expected silence after reset, got %v", s)
		}
	}
}
