// Command guitar-fit searches for the string-damping and stiffness knobs
// that best reproduce a target sustain time and inharmonicity for a given
// note, using the mayfly metaheuristic optimizer.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-guitar/analysis"
	"github.com/cwbudde/algo-guitar/guitar"
	"github.com/cwbudde/algo-guitar/notefreq"
	"github.com/cwbudde/mayfly"
)

func main() {
	note := flag.String("note", "E2", "Note name to fit against")
	strategyFlag := flag.String("strategy", "waveguide", "Synthesis strategy: waveguide or karplus")
	targetSustain := flag.Float64("target-sustain", 3.0, "Target T60 sustain time in seconds")
	targetInharmonicity := flag.Float64("target-inharmonicity", 0.002, "Target 3rd-partial inharmonicity ratio")
	sampleRate := flag.Int("sample-rate", 44100, "Render sample rate in Hz")
	renderSeconds := flag.Float64("render-seconds", 4.0, "Render length per evaluation in seconds")
	maxIterations := flag.Int("max-iterations", 40, "Mayfly max iterations")
	population := flag.Int("population", 16, "Mayfly population size")
	seed := flag.Int64("seed", 1, "Unused: the mayfly search is not seeded from this value")
	flag.Parse()

	freqHz, err := notefreq.ToFrequency(*note)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error parsing note %q: %v\n", *note, err)
		os.Exit(1)
	}

	strategy := guitar.StrategyWaveguide
	if *strategyFlag == "karplus" {
		strategy = guitar.StrategyKarplus
	}

	settings := fitSettings{
		freqHz:               float32(freqHz),
		strategy:             strategy,
		sampleRate:           float32(*sampleRate),
		renderFrames:         int(*renderSeconds * float64(*sampleRate)),
		targetSustain:        *targetSustain,
		targetInharmonicity:  *targetInharmonicity,
	}

	state := &searchState{bestScore: math.Inf(1)}

	cfg := mayfly.NewDefaultConfig()
	cfg.ProblemSize = 2 // [string_damping, stiffness], both normalized to [0,1]
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = *maxIterations
	cfg.NPop = *population
	cfg.NPopF = *population
	cfg.NC = 2 * *population
	cfg.NM = maxInt(1, *population/20)
	cfg.ObjectiveFunc = func(pos []float64) float64 {
		k := denormalize(pos)
		score := evaluate(settings, k)
		if score < state.bestScore {
			state.bestScore = score
			state.bestKnobs = k
		}
		return score
	}

	if _, err := mayfly.Optimize(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "optimization failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Best knobs for %s (%.2f Hz, %s):\n", *note, freqHz, *strategyFlag)
	fmt.Printf("  string_damping = %.5f\n", state.bestKnobs.stringDamping)
	fmt.Printf("  stiffness      = %.5f\n", state.bestKnobs.stiffness)
	fmt.Printf("  score          = %.6f\n", state.bestScore)
	_ = seed
}

// searchState tracks the best candidate found across every objective-function
// call; the mayfly search itself is not asked to report its own best
// position back out.
type searchState struct {
	bestScore float64
	bestKnobs knobs
}

type fitSettings struct {
	freqHz              float32
	strategy            guitar.StrategyKind
	sampleRate          float32
	renderFrames        int
	targetSustain       float64
	targetInharmonicity float64
}

type knobs struct {
	stringDamping float64
	stiffness     float64
}

// denormalize maps mayfly's [0,1] search space onto the physically
// meaningful knob ranges.
func denormalize(pos []float64) knobs {
	d := pos[0]
	s := pos[1]
	return knobs{
		stringDamping: 0.9 + 0.0999*clamp01(d), // [0.9, 0.9999]
		stiffness:     -0.9 + 1.8*clamp01(s),   // [-0.9, 0.9]
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func evaluate(s fitSettings, k knobs) float64 {
	cfg := guitar.NewDefaultInstrumentConfig()
	cfg.StringDamping = float32(k.stringDamping)
	cfg.Stiffness = float32(k.stiffness)

	var voice guitar.StringVoice
	if s.strategy == guitar.StrategyKarplus {
		voice = guitar.NewKarplusVoice(s.sampleRate, cfg)
	} else {
		voice = guitar.NewWaveguideVoice(s.sampleRate, cfg)
	}
	voice.SetPitch(s.freqHz, float32(s.targetSustain))
	voice.Excite(1.0)

	rendered := voice.Render(s.renderFrames)
	samples := make([]float64, len(rendered))
	for i, v := range rendered {
		samples[i] = float64(v)
	}

	t60 := analysis.T60Estimate(samples, int(s.sampleRate), 1024, 512)
	inharm := analysis.InharmonicityRatio(samples, int(s.sampleRate), float64(s.freqHz), 3)

	sustainErr := 1.0
	if !math.IsNaN(t60) {
		sustainErr = math.Abs(t60-s.targetSustain) / s.targetSustain
	}
	inharmErr := 1.0
	if !math.IsNaN(inharm) {
		inharmErr = math.Abs(inharm - s.targetInharmonicity)
	}

	return 0.7*sustainErr + 0.3*inharmErr
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
