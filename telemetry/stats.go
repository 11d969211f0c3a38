// Package telemetry provides windowed run statistics, milestone detection,
// performance timing, snapshots and CSV output.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	Session         string  `csv:"session"`
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Body state at window end
	Diameter float64 `csv:"diameter"`
	Phase    int     `csv:"phase"`
	Target   string  `csv:"target"`
	Score    int     `csv:"score"`
	Live     int     `csv:"live_entities"`

	// Spawns during window, by category
	SpawnsC1   int `csv:"spawns_c1"`
	SpawnsC2   int `csv:"spawns_c2"`
	SpawnsC3   int `csv:"spawns_c3"`
	SpawnsC4   int `csv:"spawns_c4"`
	SpawnsC5   int `csv:"spawns_c5"`
	Formations int `csv:"formations"`
	Skipped    int `csv:"skipped_spawns"`

	// Contacts
	Correct    int     `csv:"correct"`
	Incorrect  int     `csv:"incorrect"`
	Ineligible int     `csv:"ineligible"`
	Accuracy   float64 `csv:"accuracy"`
	Merges     int     `csv:"merges"`

	// Power-ups
	PowerUpsSpawned   int `csv:"powerups_spawned"`
	PowerUpsCollected int `csv:"powerups_collected"`

	// Diameter distribution over the window's ticks
	DiameterMean float64 `csv:"diameter_mean"`
	DiameterStd  float64 `csv:"diameter_std"`
	DiameterP10  float64 `csv:"diameter_p10"`
	DiameterP50  float64 `csv:"diameter_p50"`
	DiameterP90  float64 `csv:"diameter_p90"`
}

// Spawns returns the per-category spawn counts as a slice.
func (s WindowStats) Spawns() []int {
	return []int{s.SpawnsC1, s.SpawnsC2, s.SpawnsC3, s.SpawnsC4, s.SpawnsC5}
}

// Consumed returns the number of eligible contacts in the window.
func (s WindowStats) Consumed() int {
	return s.Correct + s.Incorrect
}

// Percentile returns the p-th quantile of a sorted slice, interpolating
// the empirical CDF. p is clamped to [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return stat.Quantile(min(max(p, 0), 1), stat.LinInterp, sorted, nil)
}

// ComputeDiameterStats calculates mean, sample std and percentiles.
func ComputeDiameterStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}
	if n == 1 {
		v := values[0]
		return v, 0, v, v, v
	}

	mean, std = stat.MeanStdDev(values, nil)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("session", s.Session),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Float64("diameter", s.Diameter),
		slog.Int("phase", s.Phase),
		slog.String("target", s.Target),
		slog.Int("score", s.Score),
		slog.Int("live_entities", s.Live),
		slog.Any("spawns", s.Spawns()),
		slog.Int("formations", s.Formations),
		slog.Int("skipped_spawns", s.Skipped),
		slog.Int("correct", s.Correct),
		slog.Int("incorrect", s.Incorrect),
		slog.Int("ineligible", s.Ineligible),
		slog.Float64("accuracy", s.Accuracy),
		slog.Int("merges", s.Merges),
		slog.Int("powerups_spawned", s.PowerUpsSpawned),
		slog.Int("powerups_collected", s.PowerUpsCollected),
		slog.Float64("diameter_mean", s.DiameterMean),
		slog.Float64("diameter_std", s.DiameterStd),
		slog.Float64("diameter_p10", s.DiameterP10),
		slog.Float64("diameter_p50", s.DiameterP50),
		slog.Float64("diameter_p90", s.DiameterP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
