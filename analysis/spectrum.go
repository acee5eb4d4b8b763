package analysis

import (
	"errors"
	"math"
	"sync"

	algofft "github.com/cwbudde/algo-fft"
)

var spectralPlanCache sync.Map // map[int]*spectralFFTPlan

// spectralFFTPlan caches the real-FFT plan for one transform length so
// repeated PeakFrequency/InharmonicityRatio calls during a guitar-fit search don't
// re-derive twiddle factors every evaluation.
type spectralFFTPlan struct {
	mu   sync.Mutex
	fast *algofft.FastPlanReal64
	safe *algofft.PlanRealT[float64, complex128]
}

func getSpectralFFTPlan(n int) (*spectralFFTPlan, error) {
	if v, ok := spectralPlanCache.Load(n); ok {
		return v.(*spectralFFTPlan), nil
	}

	p := &spectralFFTPlan{}

	fast, err := algofft.NewFastPlanReal64(n)
	if err == nil {
		p.fast = fast
	} else if !errors.Is(err, algofft.ErrNotImplemented) {
		// Ignore fast-plan setup errors and rely on the safe plan.
	}

	safe, err := algofft.NewPlanReal64(n)
	if err != nil {
		if p.fast == nil {
			return nil, err
		}
	} else {
		p.safe = safe
	}

	actual, _ := spectralPlanCache.LoadOrStore(n, p)
	return actual.(*spectralFFTPlan), nil
}

func (p *spectralFFTPlan) forward(dst []complex128, src []float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fast != nil {
		p.fast.Forward(dst, src)
		return nil
	}
	if p.safe != nil {
		return p.safe.Forward(dst, src)
	}
	return errors.New("analysis: missing FFT plan")
}

// dftBinMag computes the direct-DFT magnitude of x at bin, used as a
// fallback when a buffer length has no usable real-FFT plan.
func dftBinMag(x []float64, bin int) float64 {
	n := len(x)
	var re, im float64
	for i := 0; i < n; i++ {
		phi := -2.0 * math.Pi * float64(bin*i) / float64(n)
		re += x[i] * math.Cos(phi)
		im += x[i] * math.Sin(phi)
	}
	return math.Hypot(re, im)
}

func linToDB(x float64) float64 {
	if x < 1e-12 {
		x = 1e-12
	}
	return 20.0 * math.Log10(x)
}

func rms1(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

// rmsEnvelope computes the windowed RMS envelope of x using frame-length
// windows hopped by hop samples, used by T60Estimate's decay-slope fit.
func rmsEnvelope(x []float64, frame int, hop int) []float64 {
	if frame <= 0 || hop <= 0 || len(x) < frame {
		return nil
	}
	n := 1 + (len(x)-frame)/hop
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		start := i * hop
		out[i] = rms1(x[start : start+frame])
	}
	return out
}

// decaySlopeDBPerS fits a linear decay slope (dB/s) to an RMS envelope from
// just after its peak to the first frame 60dB below it, or to the end of the
// envelope if it never decays that far. Returns NaN when the peak sits in the
// last few frames or fewer than 6 frames are available for the fit.
func decaySlopeDBPerS(env []float64, hopSec float64) float64 {
	if len(env) < 8 || hopSec <= 0 {
		return math.NaN()
	}
	peak := -math.MaxFloat64
	peakIdx := 0
	for i, v := range env {
		db := linToDB(v)
		if db > peak {
			peak = db
			peakIdx = i
		}
	}
	start := peakIdx + 1
	if start >= len(env)-4 {
		return math.NaN()
	}

	threshold := peak - 60.0
	end := len(env)
	for i := start; i < len(env); i++ {
		if linToDB(env[i]) < threshold {
			end = i
			break
		}
	}
	if end-start < 6 {
		return math.NaN()
	}

	var sx, sy, sxx, sxy float64
	n := float64(end - start)
	for i := start; i < end; i++ {
		x := float64(i-start) * hopSec
		y := linToDB(env[i])
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	den := n*sxx - sx*sx
	if math.Abs(den) < 1e-12 {
		return math.NaN()
	}
	return (n*sxy - sx*sy) / den
}
