package extractors

import (
	"fmt"
	"math"
)

// FeatureVectorVersion identifies the slot layout below. Bump it whenever
// slots are added, removed or reordered.
const FeatureVectorVersion = 1

// FeatureVectorLength is the number of slots in a FeatureVector
const FeatureVectorLength = 22

// NumMFCC is the number of cepstral means at the head of the vector
const NumMFCC = 13

// Slot indices
const (
	SlotMFCC0         = 0
	SlotAvgPitch      = 13
	SlotPitchVariance = 14
	SlotRMSEnergy     = 15
	SlotSpeechRate    = 16
	SlotSilenceRatio  = 17
	SlotJitter        = 18
	SlotShimmer       = 19
	SlotFillerCount   = 20
	SlotFillerRate    = 21
)

// FeatureVector is the fixed layout utterance summary
type FeatureVector [FeatureVectorLength]float64

var slotNames = func() [FeatureVectorLength]string {
	var names [FeatureVectorLength]string
	for i := range NumMFCC {
		names[SlotMFCC0+i] = fmt.Sprintf("mfcc_%02d", i+1)
	}
	names[SlotAvgPitch] = "avg_pitch"
	names[SlotPitchVariance] = "pitch_variance"
	names[SlotRMSEnergy] = "rms_energy"
	names[SlotSpeechRate] = "speech_rate"
	names[SlotSilenceRatio] = "silence_ratio"
	names[SlotJitter] = "jitter"
	names[SlotShimmer] = "shimmer"
	names[SlotFillerCount] = "filler_count"
	names[SlotFillerRate] = "filler_rate"
	return names
}()

// SlotName returns the stable name of a slot
func SlotName(i int) string {
	if i < 0 || i >= FeatureVectorLength {
		return ""
	}
	return slotNames[i]
}

// SlotNames returns every slot name in order
func SlotNames() []string {
	out := make([]string, FeatureVectorLength)
	copy(out, slotNames[:])
	return out
}

// Named returns the vector keyed by slot name
func (fv FeatureVector) Named() map[string]float64 {
	out := make(map[string]float64, FeatureVectorLength)
	for i, v := range fv {
		out[slotNames[i]] = v
	}
	return out
}

// Slice returns the vector as a slice
func (fv FeatureVector) Slice() []float64 {
	out := make([]float64, FeatureVectorLength)
	copy(out, fv[:])
	return out
}

// IsFinite reports whether every slot is a finite number
func (fv FeatureVector) IsFinite() bool {
	for _, v := range fv {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Assemble lays prosody and filler results out in slot order. Non-finite
// values are written as 0.
func Assemble(prosody ProsodyFeatures, fillers FillerDetectionResult) FeatureVector {
	var fv FeatureVector
	for i := 0; i < NumMFCC && i < len(prosody.MFCCMeans); i++ {
		fv[SlotMFCC0+i] = finite(prosody.MFCCMeans[i])
	}
	fv[SlotAvgPitch] = finite(prosody.AvgPitch)
	fv[SlotPitchVariance] = finite(prosody.PitchVariance)
	fv[SlotRMSEnergy] = finite(prosody.RMSEnergy)
	fv[SlotSpeechRate] = finite(prosody.SpeechRate)
	fv[SlotSilenceRatio] = finite(prosody.SilenceRatio)
	fv[SlotJitter] = finite(prosody.Jitter)
	fv[SlotShimmer] = finite(prosody.Shimmer)
	fv[SlotFillerCount] = float64(fillers.Count)
	fv[SlotFillerRate] = finite(fillers.RatePerMinute)
	return fv
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
