package systems

import (
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gobble/config"
)

// Pattern is a formation shape.
type Pattern uint8

// Order matches the cumulative pattern weights in config.
const (
	PatternCluster Pattern = iota
	PatternScattered
	PatternLine
	PatternArc
	NumPatterns
)

func (p Pattern) String() string {
	switch p {
	case PatternCluster:
		return "cluster"
	case PatternScattered:
		return "scattered"
	case PatternLine:
		return "line"
	case PatternArc:
		return "arc"
	default:
		return "unknown"
	}
}

// FormationGenerator periodically lays out dense groups of entities ahead
// of the player.
type FormationGenerator struct {
	cfg        config.FormationConfig
	categories []config.CategoryConfig
	bands      [][]float64
	patterns   []float64
	rng        *rand.Rand

	lastSpawn    float64
	nextInterval float64
	spawned      [NumPatterns]int
}

// NewFormationGenerator creates a generator whose first formation is due
// one random interval after now.
func NewFormationGenerator(cfg *config.Config, now float64, rng *rand.Rand) *FormationGenerator {
	g := &FormationGenerator{
		cfg:        cfg.Formation,
		categories: cfg.Categories,
		bands:      cfg.Derived.CumulativeBands,
		patterns:   cfg.Derived.PatternCumulative,
		rng:        rng,
		lastSpawn:  now,
	}
	g.nextInterval = g.drawInterval()
	return g
}

func (g *FormationGenerator) drawInterval() float64 {
	return uniform(g.rng, g.cfg.IntervalMin, g.cfg.IntervalMax)
}

// Due reports whether the formation timer has elapsed.
func (g *FormationGenerator) Due(now float64) bool {
	return now-g.lastSpawn >= g.nextInterval
}

// NextAt returns the time of the next formation.
func (g *FormationGenerator) NextAt() float64 {
	return g.lastSpawn + g.nextInterval
}

// Spawned returns how many formations of a pattern have been generated.
func (g *FormationGenerator) Spawned(p Pattern) int {
	if p >= NumPatterns {
		return 0
	}
	return g.spawned[p]
}

// SelectPattern draws a pattern by weight.
func (g *FormationGenerator) SelectPattern() Pattern {
	return Pattern(pickCumulative(g.patterns, g.rng.Float64()))
}

// Update emits a formation when the timer elapses. The centre sits at the
// formation distance beyond an edge chosen from the predictor's bias, so
// formations appear ahead of travel like single spawns do.
func (g *FormationGenerator) Update(now float64, body PhaseSource, bias BiasSource) (Pattern, []SpawnRequest, bool) {
	if !g.Due(now) {
		return 0, nil, false
	}
	g.lastSpawn = now
	g.nextInterval = g.drawInterval()

	edge := pickEdge(bias.CurrentSpawnWeights(), g.rng.Float64())
	centre := r2.Add(bias.PredictedPosition(0), r2.Scale(g.cfg.Distance, edge.Normal()))

	p := g.SelectPattern()
	reqs := g.Layout(p, centre, body.Phase())
	g.spawned[p]++

	slog.Debug("formation spawned", "pattern", p.String(), "count", len(reqs), "time", now, "next", g.NextAt())
	return p, reqs, true
}

// Layout places one formation of pattern p around centre. Categories are
// drawn from the phase-weighted bands.
func (g *FormationGenerator) Layout(p Pattern, centre r2.Vec, phase int) []SpawnRequest {
	var offsets []r2.Vec
	switch p {
	case PatternCluster:
		offsets = g.cluster()
	case PatternLine:
		offsets = g.line()
	case PatternArc:
		offsets = g.arc()
	default:
		offsets = g.scattered()
	}

	reqs := make([]SpawnRequest, len(offsets))
	for i, off := range offsets {
		cat := CategoryForDraw(g.bands, phase, g.rng.Float64())
		req := NewSpawnRequest(g.rng, g.categories, cat, r2.Add(centre, off))
		req.FadeIn = g.cfg.FadeIn
		req.Source = SourceFormation
		reqs[i] = req
	}
	return reqs
}

// cluster: evenly spaced around a ring of randomized radius, with per-entity
// radius jitter.
func (g *FormationGenerator) cluster() []r2.Vec {
	pc := g.cfg.Cluster
	n := intBetween(g.rng, pc.CountMin, pc.CountMax)
	ring := pc.Radius * uniform(g.rng, 0.6, 1.0)
	start := g.rng.Float64() * 2 * math.Pi
	step := 2 * math.Pi / float64(n)

	out := make([]r2.Vec, n)
	for i := range out {
		r := ring * (1 + uniform(g.rng, -g.cfg.RadiusJitter, g.cfg.RadiusJitter))
		out[i] = r2.Scale(r, unit(start+float64(i)*step))
	}
	return out
}

// line: evenly spaced along a random axis through the centre.
func (g *FormationGenerator) line() []r2.Vec {
	pc := g.cfg.Line
	n := intBetween(g.rng, pc.CountMin, pc.CountMax)
	axis := unit(g.rng.Float64() * math.Pi)
	mid := float64(n-1) / 2

	out := make([]r2.Vec, n)
	for i := range out {
		out[i] = r2.Scale((float64(i)-mid)*pc.Spacing, axis)
	}
	return out
}

// arc: spread over half a circle of fixed radius.
func (g *FormationGenerator) arc() []r2.Vec {
	pc := g.cfg.Arc
	n := intBetween(g.rng, pc.CountMin, pc.CountMax)
	start := g.rng.Float64() * 2 * math.Pi
	step := 0.0
	if n > 1 {
		step = math.Pi / float64(n-1)
	}

	out := make([]r2.Vec, n)
	for i := range out {
		out[i] = r2.Scale(pc.Radius, unit(start+float64(i)*step))
	}
	return out
}

func (g *FormationGenerator) scattered() []r2.Vec {
	pc := g.cfg.Scattered
	n := intBetween(g.rng, pc.CountMin, pc.CountMax)

	out := make([]r2.Vec, n)
	for i := range out {
		r := pc.Radius * uniform(g.rng, 0.3, 1.0)
		out[i] = r2.Scale(r, unit(g.rng.Float64()*2*math.Pi))
	}
	return out
}
