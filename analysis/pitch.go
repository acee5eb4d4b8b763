package analysis

import (
	"math"
	"math/cmplx"
)

// PeakFrequency returns the strongest spectral peak within [centerHz-spanHz,
// centerHz+spanHz] of a mono signal, using the cached FFT plan where the
// window length allows it and falling back to a direct DFT bin search
// otherwise (mirrors the piano package's findPeakNear test helper, promoted
// here to a reusable measurement so the guitar-fit CLI and tests share one
// implementation).
func PeakFrequency(samples []float64, sampleRate int, centerHz, spanHz float64) float64 {
	n := len(samples)
	if n == 0 || sampleRate <= 0 {
		return 0
	}

	minBin := int((centerHz - spanHz) * float64(n) / float64(sampleRate))
	maxBin := int((centerHz + spanHz) * float64(n) / float64(sampleRate))
	if minBin < 1 {
		minBin = 1
	}
	nyquist := n / 2
	if maxBin > nyquist-1 {
		maxBin = nyquist - 1
	}
	if minBin >= maxBin {
		return 0
	}

	mags := magnitudeSpectrum(samples)
	bestBin := minBin
	bestMag := 0.0
	for k := minBin; k <= maxBin && k < len(mags); k++ {
		if mags[k] > bestMag {
			bestMag = mags[k]
			bestBin = k
		}
	}
	return float64(bestBin) * float64(sampleRate) / float64(n)
}

// magnitudeSpectrum computes |FFT(x)| for bins [0, n/2], using the cached
// real-FFT plan when the buffer length has an available plan and a direct
// DFT otherwise. An odd-length input drops its last sample so the transform
// length is even; the O(n^2) direct fallback is only hit when no real-FFT
// plan can be built for that length.
func magnitudeSpectrum(x []float64) []float64 {
	n := len(x)
	if n < 2 {
		return nil
	}
	usable := n
	usable &^= 1
	if usable < 2 {
		return directMagnitudeSpectrum(x)
	}
	plan, err := getSpectralFFTPlan(usable)
	if err != nil {
		return directMagnitudeSpectrum(x)
	}
	spec := make([]complex128, usable/2+1)
	if err := plan.forward(spec, x[:usable]); err != nil {
		return directMagnitudeSpectrum(x)
	}
	mags := make([]float64, len(spec))
	for i, c := range spec {
		mags[i] = cmplx.Abs(c)
	}
	return mags
}

func directMagnitudeSpectrum(x []float64) []float64 {
	n := len(x)
	mags := make([]float64, n/2+1)
	for k := range mags {
		mags[k] = dftBinMag(x, k)
	}
	return mags
}

// T60Estimate fits a linear decay slope to the RMS envelope (in dB) of a
// ringing signal (decaySlopeDBPerS) and extrapolates the time to fall 60dB
// below its peak, reported as a duration instead of a slope. A signal whose
// envelope never falls 6dB below its peak is treated as non-decaying and
// yields NaN.
func T60Estimate(samples []float64, sampleRate int, frame, hop int) float64 {
	if sampleRate <= 0 || frame <= 0 || hop <= 0 {
		return math.NaN()
	}
	env := rmsEnvelope(samples, frame, hop)
	if len(env) < 8 {
		return math.NaN()
	}
	peakDB, minAfterPeakDB := math.Inf(-1), math.Inf(1)
	for _, v := range env {
		db := linToDB(v)
		if db > peakDB {
			peakDB, minAfterPeakDB = db, math.Inf(1)
		} else if db < minAfterPeakDB {
			minAfterPeakDB = db
		}
	}
	if minAfterPeakDB > peakDB-6.0 {
		return math.NaN()
	}
	hopSec := float64(hop) / float64(sampleRate)
	slope := decaySlopeDBPerS(env, hopSec)
	if math.IsNaN(slope) || slope >= 0 {
		return math.NaN()
	}
	return -60.0 / slope
}

// InharmonicityRatio compares the measured frequency of the nth partial
// against the ideal integer multiple of the fundamental, returning
// (measured-ideal)/ideal. Positive values mean stretched (sharp) partials,
// which is the expected sign for stiffness-dispersed steel strings.
func InharmonicityRatio(samples []float64, sampleRate int, fundamentalHz float64, partial int) float64 {
	if fundamentalHz <= 0 || partial < 1 {
		return math.NaN()
	}
	ideal := fundamentalHz * float64(partial)
	span := math.Max(5.0, ideal*0.05)
	measured := PeakFrequency(samples, sampleRate, ideal, span)
	if measured <= 0 {
		return math.NaN()
	}
	return (measured - ideal) / ideal
}
