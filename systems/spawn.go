package systems

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gobble/components"
	"github.com/pthm-cable/gobble/config"
)

// SpawnSource records which producer created a spawn request.
type SpawnSource uint8

const (
	SourceDirector SpawnSource = iota
	SourceFormation
)

// SpawnRequest describes an entity for the world layer to realize.
type SpawnRequest struct {
	Category components.Category
	Diameter float64
	Score    int
	Mass     float64
	Position r2.Vec
	Velocity r2.Vec
	Lifetime float64 // Seconds until timeout (0 = no timeout)
	FadeIn   float64
	Source   SpawnSource
}

// PhaseSource exposes the body state the director conditions on.
type PhaseSource interface {
	Phase() int
	Diameter() float64
}

// BiasSource exposes the predictor output the director conditions on.
type BiasSource interface {
	CurrentSpawnWeights() []EdgeWeight
	PredictedPosition(ahead float64) r2.Vec
}

// SpawnDirector picks what to spawn and where. Categories come from the
// phase-weighted probability bands; positions come from the predictor's
// edge bias so entities tend to appear ahead of the player's motion.
type SpawnDirector struct {
	cfg        config.SpawnConfig
	categories []config.CategoryConfig
	cumulative [][]float64
	lookahead  float64
	rng        *rand.Rand

	nextSpawnAt float64
	skipped     int // attempts skipped at the entity cap
}

// NewSpawnDirector creates a director from the loaded config.
func NewSpawnDirector(cfg *config.Config, rng *rand.Rand) *SpawnDirector {
	return &SpawnDirector{
		cfg:        cfg.Spawn,
		categories: cfg.Categories,
		cumulative: cfg.Derived.CumulativeBands,
		lookahead:  cfg.Predictor.Lookahead,
		rng:        rng,
	}
}

// SelectEntityType draws a category for the given growth phase.
func (d *SpawnDirector) SelectEntityType(phase int) components.Category {
	return CategoryForDraw(d.cumulative, phase, d.rng.Float64())
}

// CategoryForDraw maps a uniform draw u in [0, 1) to a category using the
// cumulative bands of the given phase. Out-of-range phases are clamped.
func CategoryForDraw(cumulative [][]float64, phase int, u float64) components.Category {
	if len(cumulative) == 0 {
		return components.Category1
	}
	if phase < 1 {
		phase = 1
	}
	if phase > len(cumulative) {
		phase = len(cumulative)
	}
	return components.CategoryFromIndex(pickCumulative(cumulative[phase-1], u))
}

// SelectSpawnPosition draws an edge by cumulative weight and returns a point
// at distance from the player along that edge's normal, shifted randomly
// along the edge's tangent.
func (d *SpawnDirector) SelectSpawnPosition(weights []EdgeWeight, player r2.Vec, distance float64) (r2.Vec, Edge) {
	edge := pickEdge(weights, d.rng.Float64())
	normal := edge.Normal()
	tangent := r2.Vec{X: -normal.Y, Y: normal.X}
	offset := uniform(d.rng, -d.cfg.EdgeSpread, d.cfg.EdgeSpread)

	pos := r2.Add(player, r2.Scale(distance, normal))
	return r2.Add(pos, r2.Scale(offset, tangent)), edge
}

func pickEdge(weights []EdgeWeight, u float64) Edge {
	if len(weights) == 0 {
		return EdgeNorth
	}
	var cum float64
	for _, w := range weights {
		cum += w.Weight
		if u < cum {
			return w.Edge
		}
	}
	return weights[len(weights)-1].Edge
}

// SpawnInterval returns the delay between spawn attempts for a body of the
// given diameter. Past the acceleration threshold the interval shrinks in
// proportion to size, floored at MinInterval.
func (d *SpawnDirector) SpawnInterval(diameter float64) float64 {
	if diameter <= d.cfg.AccelThreshold {
		return d.cfg.BaseInterval
	}
	interval := d.cfg.BaseInterval * d.cfg.AccelThreshold / diameter
	if interval < d.cfg.MinInterval {
		return d.cfg.MinInterval
	}
	return interval
}

// Update runs one spawn attempt if the interval elapsed. At the entity cap
// the attempt is skipped and retried on the next tick.
func (d *SpawnDirector) Update(now float64, body PhaseSource, bias BiasSource, live int) (SpawnRequest, bool) {
	if now < d.nextSpawnAt {
		return SpawnRequest{}, false
	}
	if live >= d.cfg.MaxEntities {
		d.skipped++
		return SpawnRequest{}, false
	}
	d.nextSpawnAt = now + d.SpawnInterval(body.Diameter())

	cat := d.SelectEntityType(body.Phase())
	player := bias.PredictedPosition(0)
	frameCentre := bias.PredictedPosition(d.lookahead)
	pos, _ := d.SelectSpawnPosition(bias.CurrentSpawnWeights(), frameCentre, d.cfg.EdgeDistance)

	req := NewSpawnRequest(d.rng, d.categories, cat, pos)
	req.Source = SourceDirector
	req.Lifetime = d.cfg.Lifetime

	// Drift toward where the player was when the entity appeared
	toward := r2.Sub(player, pos)
	if n := r2.Norm(toward); n > 0 {
		speed := uniform(d.rng, d.cfg.DriftSpeedMin, d.cfg.DriftSpeedMax)
		req.Velocity = r2.Scale(speed/n, toward)
	}

	return req, true
}

// Skipped returns the number of attempts skipped at the entity cap.
func (d *SpawnDirector) Skipped() int {
	return d.skipped
}

// NewSpawnRequest builds a stationary request for a category at pos, with a
// diameter drawn from the category range and score/mass from the table.
func NewSpawnRequest(rng *rand.Rand, categories []config.CategoryConfig, cat components.Category, pos r2.Vec) SpawnRequest {
	if !cat.Valid() || cat.Index() >= len(categories) {
		cat = components.Category1
	}
	tier := categories[cat.Index()]
	return SpawnRequest{
		Category: cat,
		Diameter: uniform(rng, tier.MinDiameter, tier.MaxDiameter),
		Score:    tier.Score,
		Mass:     tier.Mass,
		Position: pos,
	}
}
