// Package main provides CMA-ES tuning of gobble pacing parameters.
package main

import (
	"github.com/pthm-cable/gobble/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
// Ranges are chosen so every point passes config validation: the growth
// bounds never cross and the spawn interval floor stays below its base.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Growth
			{Name: "min_growth", Path: "body.min_growth_percent", Min: 0.01, Max: 0.09, Default: 0.05},
			{Name: "max_growth", Path: "body.max_growth_percent", Min: 0.10, Max: 0.45, Default: 0.30},
			{Name: "min_size_penalty", Path: "body.min_size_penalty", Min: 0.1, Max: 0.8, Default: 0.3},
			{Name: "shrink_multiplier", Path: "body.shrink_multiplier", Min: 0.6, Max: 0.98, Default: 0.85},
			{Name: "decay_rate", Path: "body.decay_rate", Min: 0.0, Max: 2.0, Default: 0.4},
			// Spawning
			{Name: "base_interval", Path: "spawn.base_interval", Min: 0.6, Max: 3.0, Default: 1.2},
			{Name: "min_interval", Path: "spawn.min_interval", Min: 0.1, Max: 0.55, Default: 0.35},
			{Name: "accel_threshold", Path: "spawn.accel_threshold", Min: 60, Max: 300, Default: 140},
			{Name: "max_entities", Path: "spawn.max_entities", Min: 20, Max: 120, Default: 60},
			{Name: "drift_speed_max", Path: "spawn.drift_speed_max", Min: 40, Max: 160, Default: 80},
			// Formations
			{Name: "formation_interval_min", Path: "formation.interval_min", Min: 8, Max: 30, Default: 25},
			{Name: "formation_interval_span", Path: "formation.interval_max - interval_min", Min: 2, Max: 30, Default: 20},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	i := 0

	cfg.Body.MinGrowthPercent = clamped[i]
	i++
	cfg.Body.MaxGrowthPercent = clamped[i]
	i++
	cfg.Body.MinSizePenalty = clamped[i]
	i++
	cfg.Body.ShrinkMultiplier = clamped[i]
	i++
	cfg.Body.DecayRate = clamped[i]
	i++

	cfg.Spawn.BaseInterval = clamped[i]
	i++
	cfg.Spawn.MinInterval = clamped[i]
	i++
	cfg.Spawn.AccelThreshold = clamped[i]
	i++
	cfg.Spawn.MaxEntities = int(clamped[i])
	i++
	cfg.Spawn.DriftSpeedMax = max(clamped[i], cfg.Spawn.DriftSpeedMin)
	i++

	cfg.Formation.IntervalMin = clamped[i]
	i++
	cfg.Formation.IntervalMax = cfg.Formation.IntervalMin + clamped[i]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Body.MinGrowthPercent,
		cfg.Body.MaxGrowthPercent,
		cfg.Body.MinSizePenalty,
		cfg.Body.ShrinkMultiplier,
		cfg.Body.DecayRate,
		cfg.Spawn.BaseInterval,
		cfg.Spawn.MinInterval,
		cfg.Spawn.AccelThreshold,
		float64(cfg.Spawn.MaxEntities),
		cfg.Spawn.DriftSpeedMax,
		cfg.Formation.IntervalMin,
		cfg.Formation.IntervalMax - cfg.Formation.IntervalMin,
	}
}
