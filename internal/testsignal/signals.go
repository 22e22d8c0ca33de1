// Package testsignal generates deterministic synthetic recordings for tests.
package testsignal

import (
	"math"
	"math/rand/v2"
)

// SampleRate of every generated signal
const SampleRate = 16000

// ToneSpec describes a sinusoid embedded in silence
type ToneSpec struct {
	Frequency func(t float64) float64 // instantaneous frequency in Hz
	Duration  float64                 // tone length in seconds
	Pad       float64                 // silence before and after, seconds
	Amplitude float64
	Ramp      float64 // raised-cosine fade in and out, seconds
}

// Steady returns a constant frequency function
func Steady(hz float64) func(float64) float64 {
	return func(float64) float64 { return hz }
}

// FM returns a frequency swinging sinusoidally around centre by depth Hz at rate Hz
func FM(centre, depth, rate float64) func(float64) float64 {
	return func(t float64) float64 { return centre + depth*math.Sin(2*math.Pi*rate*t) }
}

// Tone renders a ToneSpec
func Tone(spec ToneSpec) []float64 {
	n := int(spec.Duration * SampleRate)
	pad := int(spec.Pad * SampleRate)
	ramp := int(spec.Ramp * SampleRate)

	out := make([]float64, 0, n+2*pad)
	out = append(out, make([]float64, pad)...)

	phase := 0.0
	for i := range n {
		t := float64(i) / SampleRate
		phase += 2 * math.Pi * spec.Frequency(t) / SampleRate

		gain := 1.0
		if ramp > 0 {
			switch {
			case i < ramp:
				gain = 0.5 * (1 - math.Cos(math.Pi*float64(i)/float64(ramp)))
			case i >= n-ramp:
				gain = 0.5 * (1 - math.Cos(math.Pi*float64(n-1-i)/float64(ramp)))
			}
		}
		out = append(out, spec.Amplitude*gain*math.Sin(phase))
	}

	return append(out, make([]float64, pad)...)
}

// Filler is a steady 0.5 s vowel-like tone padded by 0.5 s of silence on each side
func Filler(hz float64) []float64 {
	return Tone(ToneSpec{Frequency: Steady(hz), Duration: 0.5, Pad: 0.5, Amplitude: 0.5, Ramp: 0.02})
}

// Silence returns n zero samples
func Silence(seconds float64) []float64 {
	return make([]float64, int(seconds*SampleRate))
}

// Noise returns uniform noise in [-amp, amp] from a fixed seed
func Noise(seconds, amp float64, seed uint64) []float64 {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]float64, int(seconds*SampleRate))
	for i := range out {
		out[i] = (r.Float64()*2 - 1) * amp
	}
	return out
}

// Bursts returns count syllable-like tones of burst seconds, each padded by
// gap seconds of silence on both sides
func Bursts(count int, hz, burst, gap float64) []float64 {
	amps := make([]float64, count)
	for i := range amps {
		amps[i] = 0.5
	}
	return BurstsAt(hz, burst, gap, amps...)
}

// BurstsAt is Bursts with one burst per amplitude. Bursts fade in and out
// over 40 ms like a spoken syllable.
func BurstsAt(hz, burst, gap float64, amps ...float64) []float64 {
	out := []float64{}
	for _, amp := range amps {
		out = append(out, Tone(ToneSpec{
			Frequency: Steady(hz),
			Duration:  burst,
			Pad:       gap,
			Amplitude: amp,
			Ramp:      0.04,
		})...)
	}
	return out
}

// Concat joins signals
func Concat(parts ...[]float64) []float64 {
	out := []float64{}
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Add mixes b into a copy of a, truncating to the shorter length
func Add(a, b []float64) []float64 {
	out := make([]float64, min(len(a), len(b)))
	for i := range out {
		out[i] = a[i] + b[i]
	}
	return out
}
