package systems

import (
	"math/rand"

	"github.com/pthm-cable/gobble/components"
	"github.com/pthm-cable/gobble/config"
)

// GrowthEngine owns the consumer body: its diameter, target category and
// growth phase. The diameter only changes through Grow, Shrink and
// PassiveDecay, and never drops below the configured minimum.
type GrowthEngine struct {
	cfg        config.BodyConfig
	categories []config.CategoryConfig
	rng        *rand.Rand

	diameter float64
	target   components.Category
	phase    int

	phaseChanged bool
	nextTargetAt float64
}

// NewGrowthEngine creates a body at the configured initial diameter.
func NewGrowthEngine(cfg config.BodyConfig, categories []config.CategoryConfig, rng *rand.Rand) *GrowthEngine {
	g := &GrowthEngine{
		cfg:        cfg,
		categories: categories,
		rng:        rng,
	}
	g.Reset(cfg.InitialDiameter)
	return g
}

// Reset places the body at the given diameter (clamped to the minimum) and
// re-derives phase and target.
func (g *GrowthEngine) Reset(diameter float64) {
	if diameter < g.cfg.MinDiameter {
		diameter = g.cfg.MinDiameter
	}
	g.diameter = diameter
	g.phase = PhaseFor(diameter, g.cfg.PhaseThresholds)
	g.phaseChanged = false
	g.nextTargetAt = 0
	g.target = g.drawTarget()
}

// Diameter returns the current body diameter.
func (g *GrowthEngine) Diameter() float64 {
	return g.diameter
}

// Phase returns the current growth phase (1..5).
func (g *GrowthEngine) Phase() int {
	return g.phase
}

// Target returns the category the body currently scores bonus growth for.
func (g *GrowthEngine) Target() components.Category {
	return g.target
}

// CanConsume reports whether an entity of the given diameter fits.
// Category plays no part in eligibility.
func (g *GrowthEngine) CanConsume(entityDiameter float64) bool {
	return entityDiameter < g.diameter
}

// GrowthMultiplier returns the size penalty applied to a growth draw:
// 1.0 for a tiny body, falling linearly to MinSizePenalty at the threshold.
func (g *GrowthEngine) GrowthMultiplier() float64 {
	t := clamp01(g.diameter / g.cfg.PenaltyThreshold)
	return 1 - t*(1-g.cfg.MinSizePenalty)
}

// ScaledGrowth applies the size penalty to a raw growth percent.
func (g *GrowthEngine) ScaledGrowth(percent float64) float64 {
	return percent * g.GrowthMultiplier()
}

// Grow enlarges the body after a consumption and returns the applied
// growth fraction. The amount depends on the body's size, not on
// consumedDiameter; there is no upper cap.
func (g *GrowthEngine) Grow(consumedDiameter float64) float64 {
	percent := uniform(g.rng, g.cfg.MinGrowthPercent, g.cfg.MaxGrowthPercent)
	scaled := g.ScaledGrowth(percent)
	g.setDiameter(g.diameter * (1 + scaled))
	return scaled
}

// Shrink multiplies the diameter, clamping to the minimum.
func (g *GrowthEngine) Shrink(multiplier float64) {
	g.setDiameter(g.diameter * multiplier)
}

// PassiveDecay removes a constant amount per second, independent of size.
func (g *GrowthEngine) PassiveDecay(dt float64) {
	if dt <= 0 {
		return
	}
	g.setDiameter(g.diameter - g.cfg.DecayRate*dt)
}

// UpdateTarget re-draws the target category when the phase changed or the
// target interval elapsed. Returns true if the target changed.
func (g *GrowthEngine) UpdateTarget(now float64) bool {
	if !g.phaseChanged && now < g.nextTargetAt {
		return false
	}
	g.phaseChanged = false
	g.nextTargetAt = now + g.cfg.TargetInterval

	prev := g.target
	g.target = g.drawTarget()
	return g.target != prev
}

// EdibleCategories returns the categories whose smallest members fit the body.
func (g *GrowthEngine) EdibleCategories() []components.Category {
	var cats []components.Category
	for i, cat := range g.categories {
		if cat.MinDiameter < g.diameter {
			cats = append(cats, components.CategoryFromIndex(i))
		}
	}
	return cats
}

func (g *GrowthEngine) drawTarget() components.Category {
	edible := g.EdibleCategories()
	if len(edible) == 0 {
		return components.Category1
	}
	return edible[g.rng.Intn(len(edible))]
}

func (g *GrowthEngine) setDiameter(d float64) {
	if d < g.cfg.MinDiameter {
		d = g.cfg.MinDiameter
	}
	g.diameter = d
	if phase := PhaseFor(d, g.cfg.PhaseThresholds); phase != g.phase {
		g.phase = phase
		g.phaseChanged = true
	}
}

// PhaseFor buckets a diameter into a growth phase. thresholds holds the
// exclusive upper bounds of phases 1..n; anything above is phase n+1.
func PhaseFor(diameter float64, thresholds []float64) int {
	for i, t := range thresholds {
		if diameter < t {
			return i + 1
		}
	}
	return len(thresholds) + 1
}
