package extractors

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/analyzers"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/config"
	"github.com/Anupamak004/Public-speaking-coach/pkg/logging"
)

// CepstralMatrix holds one row of coefficients per frame
type CepstralMatrix struct {
	Coefficients [][]float64 `json:"-"`
	NumCoeffs    int         `json:"num_coeffs"`
}

// NumFrames returns the row count
func (cm *CepstralMatrix) NumFrames() int {
	return len(cm.Coefficients)
}

// Column returns coefficient k across all frames
func (cm *CepstralMatrix) Column(k int) []float64 {
	col := make([]float64, len(cm.Coefficients))
	for t, row := range cm.Coefficients {
		col[t] = row[k]
	}
	return col
}

// Means returns the per-coefficient mean across frames, zeros when empty
func (cm *CepstralMatrix) Means() []float64 {
	means := make([]float64, cm.NumCoeffs)
	if cm.NumFrames() == 0 {
		return means
	}
	for k := range means {
		means[k] = stat.Mean(cm.Column(k), nil)
	}
	return means
}

// MeanVariance returns the mean over coefficients of each coefficient's
// population variance across frames
func (cm *CepstralMatrix) MeanVariance() float64 {
	if cm.NumFrames() == 0 || cm.NumCoeffs == 0 {
		return 0
	}
	sum := 0.0
	for k := range cm.NumCoeffs {
		sum += stat.PopVariance(cm.Column(k), nil)
	}
	return sum / float64(cm.NumCoeffs)
}

// CepstralExtractor turns power spectrograms into MFCCs: mel projection, log
// compression with a floor relative to the span's peak, then an orthonormal DCT-II
type CepstralExtractor struct {
	melBank    *analyzers.MelFilterBank
	dctBasis   [][]float64
	numCoeffs  int
	logFloorDB float64
	logger     logging.Logger
}

// NewCepstralExtractor precomputes the mel filter bank and DCT basis
func NewCepstralExtractor(cfg *config.FeatureConfig) (*CepstralExtractor, error) {
	bank, err := analyzers.NewMelFilterBank(cfg.NumMelFilters, 0, float64(cfg.SampleRate)/2,
		cfg.FrameLength/2+1, cfg.FrameLength, cfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to build mel filter bank: %w", err)
	}
	if cfg.MFCCCoefficients > cfg.NumMelFilters {
		return nil, fmt.Errorf("cannot take %d coefficients from %d mel bands",
			cfg.MFCCCoefficients, cfg.NumMelFilters)
	}

	ce := &CepstralExtractor{
		melBank:    bank,
		dctBasis:   dctBasis(cfg.MFCCCoefficients, cfg.NumMelFilters),
		numCoeffs:  cfg.MFCCCoefficients,
		logFloorDB: cfg.LogFloorDB,
	}
	return ce.WithLogger(logging.NewDefaultLogger()), nil
}

// WithLogger routes the extractor's logs to l
func (ce *CepstralExtractor) WithLogger(l logging.Logger) *CepstralExtractor {
	ce.logger = l.WithFields(logging.Fields{
		"component": "cepstral_extractor",
		"coeffs":    ce.numCoeffs,
	})
	return ce
}

// MelBank exposes the filter bank so onset detection shares the projection
func (ce *CepstralExtractor) MelBank() *analyzers.MelFilterBank {
	return ce.melBank
}

// LogMel projects a power spectrogram onto the mel bank in decibels, floored
// LogFloorDB below the loudest band of the span
func (ce *CepstralExtractor) LogMel(power [][]float64) [][]float64 {
	return analyzers.PowerToDB(ce.melBank.ApplyAll(power), ce.logFloorDB)
}

// FromPower computes MFCCs from a power spectrogram
func (ce *CepstralExtractor) FromPower(power [][]float64) *CepstralMatrix {
	return ce.FromLogMel(ce.LogMel(power))
}

// FromMelPower computes MFCCs from mel band power
func (ce *CepstralExtractor) FromMelPower(melPower [][]float64) *CepstralMatrix {
	return ce.FromLogMel(analyzers.PowerToDB(melPower, ce.logFloorDB))
}

// FromLogMel computes MFCCs from a decibel mel spectrogram
func (ce *CepstralExtractor) FromLogMel(logMel [][]float64) *CepstralMatrix {
	result := &CepstralMatrix{
		Coefficients: make([][]float64, len(logMel)),
		NumCoeffs:    ce.numCoeffs,
	}
	for t, row := range logMel {
		result.Coefficients[t] = ce.applyDCT(row)
	}

	if len(logMel) > 0 {
		ce.logger.Debug("MFCC extracted", logging.Fields{
			"frames": len(logMel),
		})
	}

	return result
}

func (ce *CepstralExtractor) applyDCT(logMel []float64) []float64 {
	out := make([]float64, ce.numCoeffs)
	for k, basis := range ce.dctBasis {
		sum := 0.0
		for n, v := range logMel {
			sum += v * basis[n]
		}
		out[k] = sum
	}
	return out
}

// dctBasis returns the first numCoeffs rows of the orthonormal DCT-II matrix
func dctBasis(numCoeffs, size int) [][]float64 {
	basis := make([][]float64, numCoeffs)
	for k := range numCoeffs {
		scale := math.Sqrt(2.0 / float64(size))
		if k == 0 {
			scale = math.Sqrt(1.0 / float64(size))
		}
		basis[k] = make([]float64, size)
		for n := range size {
			basis[k][n] = scale * math.Cos(math.Pi*float64(k)*(float64(n)+0.5)/float64(size))
		}
	}
	return basis
}
