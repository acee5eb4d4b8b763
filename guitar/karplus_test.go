package guitar

import "testing"

func TestKarplusVoiceTunesNearTargetFrequency(t *testing.T) {
	v := NewKarplusVoice(44100, NewDefaultInstrumentConfig())
	v.SetPitch(220.0, 2.0)
	v.Excite(0.8)

	eff := v.EffectiveFrequency()
	if eff < 215 || eff > 225 {
		t.Fatalf("effective frequency %.3f too far from 220 Hz target", eff)
	}
}

func TestKarplusVoiceRenderIsFinite(t *testing.T) {
	v := NewKarplusVoice(44100, NewDefaultInstrumentConfig())
	v.SetPitch(110.0, 3.0)
	v.Excite(1.0)

	out := v.Render(4096)
	for i, s := range out {
		if !isFinite(s) {
			t.Fatalf("sample %d is not finite: %v", i, s)
		}
	}
}

func TestKarplusVoiceDecaysOverTime(t *testing.T) {
	v := NewKarplusVoice(44100, NewDefaultInstrumentConfig())
	v.SetPitch(196.0, 1.0)
	v.Excite(1.0)

	early := rmsOf(v.Render(2048))
	_ = v.Render(44100 * 2)
	late := rmsOf(v.Render(2048))

	if late >= early {
		t.Fatalf("expected amplitude to decay: early=%v late=%v", early, late)
	}
}

func TestKarplusVoiceResetSilencesOutput(t *testing.T) {
	v := NewKarplusVoice(44100, NewDefaultInstrumentConfig())
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

func TestKarplusVoiceIsDeterministic(t *testing.T) {
	cfg := NewDefaultInstrumentConfig()
	a := NewKarplusVoice(44100, cfg)
	b := NewKarplusVoice(44100, cfg)

	a.SetPitch(330.0, 2.0)
	b.SetPitch(330.0, 2.0)
	a.Excite(0.9)
	b.Excite(0.9)

	outA := a.Render(1024)
	outB := b.Render(1024)
	for i := range outA {
		if outA[i] != outB[i] {
			t.Fatalf("expected identical renders at sample %d: %v vs %v", i, outA[i], outB[i])
		}
	}
}

func rmsOf(buf []float32) float64 {
	var sum float64
	for _, s := range buf {
		sum += float64(s) * float64(s)
	}
	if len(buf) == 0 {
		return 0
	}
	return sum / float64(len(buf))
}
