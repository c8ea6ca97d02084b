package audio

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
	"github.com/cwbudde/algo-dsp/dsp/signal"
)

// Hook transforms a block of samples at a given sample rate.
type Hook func(samples []float32, sampleRate int) []float32

// ApplyHooks runs hooks over the clip in order.
func ApplyHooks(c Clip, hooks ...Hook) Clip {
	out := c.Samples
	for _, hook := range hooks {
		out = hook(out, c.SampleRate)
	}

	return Clip{Samples: out, SampleRate: c.SampleRate}
}

// PeakNormalize scales samples so the peak amplitude reaches 1.0.
// Silence is returned unchanged.
func PeakNormalize(samples []float32) []float32 {
	if len(samples) == 0 {
		return samples
	}

	out, err := signal.Normalize(toFloat64(samples), 1.0)
	if err != nil {
		return samples
	}

	return toFloat32(out)
}

// dcCutoffHz sits far below speech content.
const dcCutoffHz = 5.0

// DCBlock removes DC offset from samples: the mean is subtracted first, then a
// second-order Butterworth high-pass at dcCutoffHz strips remaining drift.
func DCBlock(samples []float32, sampleRate int) []float32 {
	if len(samples) == 0 || sampleRate <= 0 {
		return samples
	}

	x, err := signal.RemoveDC(toFloat64(samples))
	if err != nil {
		return samples
	}

	hp := biquad.NewSection(design.Highpass(dcCutoffHz, 1/math.Sqrt2, float64(sampleRate)))
	hp.ProcessBlock(x)

	return toFloat32(x)
}

// FadeIn applies a linear fade-in ramp over the given duration in milliseconds.
func FadeIn(samples []float32, sampleRate int, ms float64) []float32 {
	n := fadeLength(len(samples), sampleRate, ms)
	out := append([]float32(nil), samples...)
	for i := range n {
		out[i] *= float32(i) / float32(n)
	}

	return out
}

// FadeOut applies a linear fade-out ramp over the given duration in milliseconds.
func FadeOut(samples []float32, sampleRate int, ms float64) []float32 {
	n := fadeLength(len(samples), sampleRate, ms)
	out := append([]float32(nil), samples...)
	start := len(out) - n
	for i := range n {
		out[start+i] *= float32(n-1-i) / float32(n)
	}

	return out
}

// NormalizeHook adapts PeakNormalize to a Hook.
func NormalizeHook(samples []float32, _ int) []float32 {
	return PeakNormalize(samples)
}

// FadeHook returns a Hook that fades both ends of a clip by ms milliseconds.
func FadeHook(ms float64) Hook {
	return func(samples []float32, sampleRate int) []float32 {
		return FadeOut(FadeIn(samples, sampleRate, ms), sampleRate, ms)
	}
}

func fadeLength(total, sampleRate int, ms float64) int {
	if sampleRate <= 0 || ms <= 0 {
		return 0
	}
	n := int(ms / 1000.0 * float64(sampleRate))
	if n > total {
		n = total
	}
	return n
}

func toFloat64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
