package batch

import (
	"context"
	"errors"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/common"
	"github.com/Anupamak004/Public-speaking-coach/pkg/audio/extractors"
	"github.com/Anupamak004/Public-speaking-coach/pkg/logging"
)

// SlotStats summarizes one value across the successful recordings
type SlotStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}

// Metrics aggregates a batch run
type Metrics struct {
	SuccessRate       float64              `json:"success_rate"`
	TotalFillers      int                  `json:"total_fillers"`
	TotalSpeechSecs   float64              `json:"total_speech_seconds"`
	FillerRate        SlotStats            `json:"filler_rate"`
	Slots             map[string]SlotStats `json:"slots"`
	ErrorDistribution map[string]int       `json:"error_distribution"`
}

// MetricsCalculator builds batch metrics from results
type MetricsCalculator struct {
	logger logging.Logger
}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator(logger logging.Logger) *MetricsCalculator {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &MetricsCalculator{logger: logger}
}

// Calculate computes per-slot statistics over successful results and
// categorizes failures
func (mc *MetricsCalculator) Calculate(results []*Result) *Metrics {
	m := &Metrics{
		Slots:             make(map[string]SlotStats, extractors.FeatureVectorLength),
		ErrorDistribution: make(map[string]int),
	}

	columns := make([][]float64, extractors.FeatureVectorLength)
	var rates []float64
	total := 0

	for _, res := range results {
		if res == nil {
			continue
		}
		total++
		if res.err != nil || res.Report == nil {
			m.ErrorDistribution[categorizeError(res.err)]++
			continue
		}

		for slot, v := range res.Report.Vector.Slice() {
			columns[slot] = append(columns[slot], v)
		}
		rates = append(rates, res.Report.Fillers.RatePerMinute)
		m.TotalFillers += res.Report.Fillers.Count
		m.TotalSpeechSecs += res.Report.DurationSeconds
	}

	for slot, name := range extractors.SlotNames() {
		m.Slots[name] = calculateStats(columns[slot])
	}
	m.FillerRate = calculateStats(rates)

	if total > 0 {
		m.SuccessRate = float64(total-sumValues(m.ErrorDistribution)) / float64(total)
	}

	mc.logger.Debug("Batch metrics calculated", logging.Fields{
		"recordings":    total,
		"success_rate":  m.SuccessRate,
		"total_fillers": m.TotalFillers,
	})

	return m
}

func calculateStats(data []float64) SlotStats {
	if len(data) == 0 {
		return SlotStats{}
	}

	sorted := slices.Clone(data)
	slices.Sort(sorted)

	mean, std := stat.MeanStdDev(data, nil)
	stats := SlotStats{
		Mean:   mean,
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		StdDev: std,
		Min:    floats.Min(data),
		Max:    floats.Max(data),
		Count:  len(data),
	}
	// single observations have no spread
	if len(data) == 1 {
		stats.StdDev = 0
	}
	return sanitizeStats(stats)
}

func sanitizeStats(s SlotStats) SlotStats {
	for _, f := range []*float64{&s.Mean, &s.Median, &s.StdDev, &s.Min, &s.Max} {
		if math.IsInf(*f, 0) || math.IsNaN(*f) {
			*f = 0
		}
	}
	return s
}

// categorizeError buckets failures by their audio error code
func categorizeError(err error) string {
	switch {
	case err == nil:
		return "unknown"
	case errors.Is(err, context.DeadlineExceeded):
		return common.ErrCodeTimeout
	case errors.Is(err, context.Canceled):
		return "CANCELLED"
	}
	if code := common.ErrorCode(err); code != "" {
		return code
	}
	return "other"
}

func sumValues(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}
