package systems

import (
	"log/slog"

	"github.com/pthm-cable/gobble/components"
	"github.com/pthm-cable/gobble/config"
	"github.com/pthm-cable/gobble/events"
)

// Consumer is the body side of a contact.
type Consumer interface {
	Diameter() float64
	Target() components.Category
	CanConsume(entityDiameter float64) bool
	Grow(consumedDiameter float64) float64
	Shrink(multiplier float64)
}

// Emitter receives resolution events.
type Emitter interface {
	Emit(t events.Type, now float64, payload any)
}

// Contact is a body/entity touch as seen by the resolver.
type Contact struct {
	Edible   components.Edible
	Merge    *components.Merge // Optional decoration state, reset on consumption
	InDanger bool
	Shielded bool // Active shield skips the shrink
}

// CollisionResolver decides what a contact does to the body. It mutates
// only the body and emits a ConsumptionResolved event per eligible contact;
// feedback collaborators react to the event.
type CollisionResolver struct {
	cfg    config.CollisionConfig
	shrink float64
	out    Emitter

	resolved [3]int // by outcome
}

// NewCollisionResolver creates a resolver. out may be nil.
func NewCollisionResolver(cfg *config.Config, out Emitter) *CollisionResolver {
	return &CollisionResolver{
		cfg:    cfg.Collision,
		shrink: cfg.Body.ShrinkMultiplier,
		out:    out,
	}
}

// Resolve applies one contact. Ineligible contacts change nothing and emit
// nothing; every other outcome ends with the entity removed by the caller.
func (r *CollisionResolver) Resolve(now float64, body Consumer, c Contact) events.Consumption {
	e := c.Edible
	res := events.Consumption{
		Category: e.Category,
		Diameter: e.Diameter,
		InDanger: c.InDanger,
	}

	if !body.CanConsume(e.Diameter) {
		res.Outcome = events.Ineligible
		res.BodyDiameter = body.Diameter()
		r.resolved[res.Outcome]++
		return res
	}

	if e.Category == body.Target() {
		res.Outcome = events.Correct
		res.ScoreDelta = e.Score
		res.GrowthPercent = body.Grow(e.Diameter)
		if c.Merge != nil {
			c.Merge.Reset()
		}
	} else {
		res.Outcome = events.Incorrect
		res.ScoreDelta = r.cfg.IncorrectScore
		if c.Shielded {
			res.Shielded = true
		} else {
			body.Shrink(r.shrink)
		}
	}
	res.BodyDiameter = body.Diameter()
	r.resolved[res.Outcome]++

	slog.Debug("contact resolved",
		"outcome", res.Outcome.String(),
		"category", e.Category.String(),
		"size", e.Diameter,
		"body", res.BodyDiameter,
	)

	if r.out != nil {
		r.out.Emit(events.ConsumptionResolved, now, res)
	}
	return res
}

// Resolved returns how many contacts ended in the given outcome.
func (r *CollisionResolver) Resolved(o events.Outcome) int {
	if int(o) >= len(r.resolved) {
		return 0
	}
	return r.resolved[o]
}

// ApplyScore adds delta to score, flooring at zero when configured.
func (r *CollisionResolver) ApplyScore(score, delta int) int {
	score += delta
	if r.cfg.ScoreFloorZero && score < 0 {
		return 0
	}
	return score
}
