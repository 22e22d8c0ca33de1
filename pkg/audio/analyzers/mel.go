package analyzers

import (
	"fmt"
	"math"
)

// MelFilterBank is a set of triangular filters on the HTK mel scale,
// each normalised to unit sum
type MelFilterBank struct {
	Filters    [][]float64
	LowFreq    float64
	HighFreq   float64
	SampleRate int
}

// HzToMel converts a frequency to the HTK mel scale
func HzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

// MelToHz converts a mel value back to Hz
func MelToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10, mel/2595.0) - 1.0)
}

// NewMelFilterBank builds numFilters filters spanning lowFreq..highFreq over
// freqBins FFT bins of a frameLength-point transform
func NewMelFilterBank(numFilters int, lowFreq, highFreq float64, freqBins, frameLength, sampleRate int) (*MelFilterBank, error) {
	if numFilters <= 0 || freqBins <= 0 || frameLength <= 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("invalid parameters: filters=%d, bins=%d, frame=%d, rate=%d",
			numFilters, freqBins, frameLength, sampleRate)
	}

	nyquist := float64(sampleRate) / 2.0
	if highFreq <= 0 || highFreq > nyquist {
		highFreq = nyquist
	}
	if lowFreq < 0 || lowFreq >= highFreq {
		return nil, fmt.Errorf("invalid mel range: %.1f-%.1f Hz", lowFreq, highFreq)
	}

	lowMel := HzToMel(lowFreq)
	highMel := HzToMel(highFreq)
	melStep := (highMel - lowMel) / float64(numFilters+1)

	freqPoints := make([]float64, numFilters+2)
	for i := range freqPoints {
		freqPoints[i] = MelToHz(lowMel + float64(i)*melStep)
	}

	binHz := float64(sampleRate) / float64(frameLength)

	filters := make([][]float64, numFilters)
	for i := range numFilters {
		filter := make([]float64, freqBins)
		left, center, right := freqPoints[i], freqPoints[i+1], freqPoints[i+2]
		filterSum := 0.0

		for j := range freqBins {
			freq := float64(j) * binHz
			if freq < left || freq > right {
				continue
			}

			var weight float64
			if freq <= center {
				if center > left {
					weight = (freq - left) / (center - left)
				}
			} else if right > center {
				weight = (right - freq) / (right - center)
			}
			filter[j] = weight
			filterSum += weight
		}

		if filterSum > 0 {
			for j := range filter {
				filter[j] /= filterSum
			}
		}
		filters[i] = filter
	}

	return &MelFilterBank{
		Filters:    filters,
		LowFreq:    lowFreq,
		HighFreq:   highFreq,
		SampleRate: sampleRate,
	}, nil
}

// Apply projects a power spectrum onto the filter bank
func (mb *MelFilterBank) Apply(power []float64) []float64 {
	out := make([]float64, len(mb.Filters))
	for i, filter := range mb.Filters {
		sum := 0.0
		for j := 0; j < len(filter) && j < len(power); j++ {
			sum += power[j] * filter[j]
		}
		out[i] = sum
	}
	return out
}

// ApplyAll projects every row of a power spectrogram
func (mb *MelFilterBank) ApplyAll(power [][]float64) [][]float64 {
	out := make([][]float64, len(power))
	for t, row := range power {
		out[t] = mb.Apply(row)
	}
	return out
}

// minMelPower keeps the log of an empty band finite
const minMelPower = 1e-10

// PowerToDB converts mel band power to decibels, clamping every value to no
// less than topDB below the loudest value of the whole matrix
func PowerToDB(melPower [][]float64, topDB float64) [][]float64 {
	out := make([][]float64, len(melPower))
	peak := math.Inf(-1)
	for t, row := range melPower {
		out[t] = make([]float64, len(row))
		for b, p := range row {
			db := 10 * math.Log10(math.Max(p, minMelPower))
			out[t][b] = db
			peak = math.Max(peak, db)
		}
	}

	floor := peak - topDB
	for _, row := range out {
		for b, db := range row {
			if db < floor {
				row[b] = floor
			}
		}
	}
	return out
}
