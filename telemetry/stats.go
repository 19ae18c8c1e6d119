// Package telemetry provides CSV experiment output, rolling performance
// collection and window statistics for the steering simulation.
package telemetry

import (
	"log/slog"
	"sort"
)

// WindowStats holds aggregated steering statistics for a tick window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	Agents  int `csv:"agents"`
	Arrived int `csv:"arrived"`

	// Decision quality at window end
	DecisionMean float64 `csv:"decision_mean"`
	DecisionP10  float64 `csv:"decision_p10"`
	DecisionP50  float64 `csv:"decision_p50"`
	DecisionP90  float64 `csv:"decision_p90"`

	// Danger exposure at window end
	DangerMean float64 `csv:"danger_mean"`
	DangerP90  float64 `csv:"danger_p90"`

	SpeedMean float64 `csv:"speed_mean"`

	// Configuration problems skipped during the window
	ConfigErrors int `csv:"config_errors"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeValueStats calculates mean and percentiles from decision values.
func ComputeValueStats(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("agents", s.Agents),
		slog.Int("arrived", s.Arrived),
		slog.Float64("decision_mean", s.DecisionMean),
		slog.Float64("decision_p10", s.DecisionP10),
		slog.Float64("decision_p50", s.DecisionP50),
		slog.Float64("decision_p90", s.DecisionP90),
		slog.Float64("danger_mean", s.DangerMean),
		slog.Float64("danger_p90", s.DangerP90),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Int("config_errors", s.ConfigErrors),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"agents", s.Agents,
		"arrived", s.Arrived,
		"decision_mean", s.DecisionMean,
		"decision_p50", s.DecisionP50,
		"danger_mean", s.DangerMean,
		"speed_mean", s.SpeedMean,
		"config_errors", s.ConfigErrors,
	)
}
