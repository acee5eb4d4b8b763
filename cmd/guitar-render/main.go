// Command guitar-render renders a single note, a fretted string, or a
// strummed chord to a stereo WAV file using the guitar engine.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-guitar/guitar"
	"github.com/cwbudde/algo-guitar/internal/fitcommon"
	"github.com/cwbudde/algo-guitar/notefreq"
	"github.com/cwbudde/algo-guitar/preset"
)

func main() {
	note := flag.String("note", "A4", "Note name to pluck (e.g. A4, C#3) or a note matched against the open-string selection policy")
	chord := flag.String("chord", "", "Named chord voicing to strum instead of a single note (overrides -note)")
	velocity := flag.Float64("velocity", 0.9, "Pluck velocity in [0,1]")
	sustain := flag.Float64("sustain", 3.0, "Target T60 sustain time in seconds")
	duration := flag.Float64("duration", 4.0, "Fixed render duration in seconds")
	decayDBFS := flag.Float64("decay-dbfs", math.Inf(1), "Auto-stop rendering once stereo block RMS falls below this dBFS; disabled by default")
	decayHoldBlocks := flag.Int("decay-hold-blocks", 6, "Consecutive below-threshold blocks required to stop in auto-decay mode")
	minDuration := flag.Float64("min-duration", 0.5, "Minimum render duration when using -decay-dbfs")
	maxDuration := flag.Float64("max-duration", 20.0, "Maximum render duration when using -decay-dbfs")
	sampleRate := flag.Int("sample-rate", 44100, "Render sample rate in Hz")
	strategyFlag := flag.String("strategy", "waveguide", "Synthesis strategy: waveguide or karplus")
	presetPath := flag.String("preset", "", "Instrument preset JSON path (optional)")
	output := flag.String("output", "output.wav", "Output WAV file path")
	flag.Parse()

	cfg := guitar.NewDefaultInstrumentConfig()
	strategy := guitar.StrategyWaveguide
	if *strategyFlag == "karplus" {
		strategy = guitar.StrategyKarplus
	}

	if *presetPath != "" {
		loadedCfg, loadedStrategy, _, err := preset.LoadJSON(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
		cfg = loadedCfg
		strategy = loadedStrategy
	}

	inst, err := guitar.NewInstrument(float32(*sampleRate), strategy, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error building instrument: %v\n", err)
		os.Exit(1)
	}

	if *chord != "" {
		freqs, err := notefreq.ChordFrequencies(*chord)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error resolving chord %q: %v\n", *chord, err)
			os.Exit(1)
		}
		full := make([]float32, 6)
		for i, f := range freqs {
			if i < 6 {
				full[i] = float32(f)
			}
		}
		var rng uint32 = 0xD00D
		inst.StrumChord(full, float32(*velocity), float32(*sustain), guitar.StrumDown, &rng)
		fmt.Printf("Strumming chord %q at velocity %.2f\n", *chord, *velocity)
	} else {
		freqHz, err := notefreq.ToFrequency(*note)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error parsing note %q: %v\n", *note, err)
			os.Exit(1)
		}
		inst.Play(float32(freqHz), float32(*velocity), float32(*sustain))
		fmt.Printf("Playing %s (%.2f Hz) at velocity %.2f\n", *note, freqHz, *velocity)
	}

	blockSize := 128
	autoStop := !math.IsInf(*decayDBFS, 1)

	var left, right []float32
	if autoStop {
		minFrames := int(float64(*sampleRate) * (*minDuration))
		maxFrames := int(float64(*sampleRate) * (*maxDuration))
		if maxFrames < minFrames {
			maxFrames = minFrames
		}
		if maxFrames < 1 {
			maxFrames = blockSize
		}
		thresholdLin := math.Pow(10.0, *decayDBFS/20.0)
		if *decayHoldBlocks < 1 {
			*decayHoldBlocks = 1
		}
		belowCount := 0
		framesRendered := 0
		for framesRendered < maxFrames {
			n := blockSize
			if framesRendered+n > maxFrames {
				n = maxFrames - framesRendered
			}
			l, r := inst.ProcessBlock(n)
			left = append(left, l...)
			right = append(right, r...)
			framesRendered += n

			if framesRendered >= minFrames {
				if stereoBlockRMS(l, r) < thresholdLin {
					belowCount++
					if belowCount >= *decayHoldBlocks {
						break
					}
				} else {
					belowCount = 0
				}
			}
		}
		fmt.Printf("Auto-stop at %d frames (%.3fs)\n", framesRendered, float64(framesRendered)/float64(*sampleRate))
	} else {
		totalFrames := int(float64(*sampleRate) * (*duration))
		framesRendered := 0
		for framesRendered < totalFrames {
			n := blockSize
			if framesRendered+n > totalFrames {
				n = totalFrames - framesRendered
			}
			l, r := inst.ProcessBlock(n)
			left = append(left, l...)
			right = append(right, r...)
			framesRendered += n
		}
	}

	if err := fitcommon.WriteStereoWAVLR(*output, left, right, *sampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "error writing WAV file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d frames, effective frequency %.2f Hz)\n", *output, len(left), inst.EffectiveFrequency())
}

func stereoBlockRMS(left, right []float32) float64 {
	if len(left) == 0 {
		return 0
	}
	var sum float64
	for i := range left {
		l := float64(left[i])
		r := float64(right[i])
		sum += l*l + r*r
	}
	return math.Sqrt(sum / float64(2*len(left)))
}
