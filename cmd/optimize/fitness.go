package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/gobble/config"
	"github.com/pthm-cable/gobble/game"
	"github.com/pthm-cable/gobble/telemetry"
)

// FitnessEvaluator runs headless autopilot sessions and scores their pacing.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	configPath  string
	statsWindow float64

	targetPhase int     // Phase the session should reach
	targetSec   float64 // Sim seconds at which it should reach it

	mu          sync.Mutex
	lastReached float64 // mean time-to-phase from the most recent Evaluate call
	lastQuality float64
}

// NewFitnessEvaluator creates a new evaluator. Each run reloads the base
// config from configPath so runs never share mutable config state.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, configPath string, targetPhase int, targetSec float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		configPath:  configPath,
		statsWindow: 5.0,
		targetPhase: targetPhase,
		targetSec:   targetSec,
	}
}

// LastReached returns the mean time-to-phase from the most recent evaluation.
func (fe *FitnessEvaluator) LastReached() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastReached
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single session.
type runResult struct {
	reachedSec  float64 // first sim time at targetPhase, or +Inf
	durationSec float64
	windowStats []telemetry.WindowStats
	maxEntities int
	invalid     bool
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	reached float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			quality := fe.computeQuality(result.windowStats, result.maxEntities)
			reached := result.reachedSec
			if math.IsInf(reached, 1) {
				reached = result.durationSec
			}
			results[idx] = seedResult{
				fitness: fe.computeFitness(result, quality),
				reached: reached,
				quality: quality,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalReached, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalReached += r.reached
		totalQuality += r.quality
	}
	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastReached = totalReached / n
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless session until maxTicks.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	result := &runResult{reachedSec: math.Inf(1)}

	cfg, err := config.Load(fe.configPath)
	if err != nil {
		result.invalid = true
		return result
	}
	fe.params.ApplyToConfig(cfg, x)
	if err := cfg.Validate(); err != nil {
		result.invalid = true
		return result
	}
	result.maxEntities = cfg.Spawn.MaxEntities

	g := game.NewGameWithOptions(game.Options{
		Config:         cfg,
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	defer g.Unload()

	for g.Tick() < fe.maxTicks {
		if !g.UpdateHeadless() {
			continue
		}
		if math.IsInf(result.reachedSec, 1) && g.Body().Phase() >= fe.targetPhase {
			result.reachedSec = g.Now()
		}
	}
	result.durationSec = g.Now()
	return result
}

// Fitness component weights.
const (
	missedPenalty = 4.0 // added when the target phase is never reached
	qualityWeight = 0.5
)

// computeFitness calculates the scalar fitness (lower = better).
// The squared relative pacing error dominates; quality breaks ties between
// configs with similar pacing.
func (fe *FitnessEvaluator) computeFitness(r *runResult, quality float64) float64 {
	if r.invalid {
		return math.MaxFloat64 / 4
	}
	var pacing float64
	if math.IsInf(r.reachedSec, 1) {
		// Rank misses by how close the body got
		pacing = missedPenalty + fe.shortfall(r.windowStats)
	} else {
		rel := (r.reachedSec - fe.targetSec) / fe.targetSec
		pacing = rel * rel
	}
	return pacing - qualityWeight*quality
}

// shortfall returns how far short of the target phase the best window was, in [0, 1].
func (fe *FitnessEvaluator) shortfall(windows []telemetry.WindowStats) float64 {
	best := 1
	for _, w := range windows {
		best = max(best, w.Phase)
	}
	if fe.targetPhase <= 1 {
		return 0
	}
	return clamp01(float64(fe.targetPhase-best) / float64(fe.targetPhase-1))
}

// Quality component weights.
const (
	qualityWeightDensity   = 0.35
	qualityWeightAccuracy  = 0.35
	qualityWeightSmoothing = 0.30

	qualityWarmupWindows = 2 // skip first N windows while the field fills
)

// computeQuality computes session quality in [0, 1] from window stats:
// a busy but uncrowded field, a mistake rate that keeps the player honest,
// and steady growth without violent swings.
func (fe *FitnessEvaluator) computeQuality(windows []telemetry.WindowStats, maxEntities int) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	var densitySum, accuracySum float64
	var accuracyCount int
	growth := make([]float64, 0, len(valid))

	prev := windows[qualityWarmupWindows-1].Diameter
	for _, w := range valid {
		// 1. Field density relative to the live cap
		fill := float64(w.Live) / float64(max(1, maxEntities))
		densitySum += math.Exp(-math.Pow((fill-0.7)/0.3, 2))

		// 2. Accuracy near 80%: some mistakes happen but are not the norm
		if w.Correct+w.Incorrect > 0 {
			accuracySum += math.Exp(-math.Pow((w.Accuracy-0.8)/0.15, 2))
			accuracyCount++
		}

		if prev > 0 {
			growth = append(growth, w.Diameter/prev)
		}
		prev = w.Diameter
	}

	densityScore := densitySum / float64(len(valid))

	accuracyScore := 0.0
	if accuracyCount > 0 {
		accuracyScore = accuracySum / float64(accuracyCount)
	}

	// 3. Growth smoothness (CV of window-to-window diameter ratios)
	smoothScore := 0.0
	if len(growth) >= 2 {
		c := cv(growth)
		smoothScore = math.Exp(-c * c * 25)
	}

	quality := qualityWeightDensity*densityScore +
		qualityWeightAccuracy*accuracyScore +
		qualityWeightSmoothing*smoothScore

	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
