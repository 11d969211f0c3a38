package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gobble/events"
	"github.com/pthm-cable/gobble/systems"
)

// updateSpatialGrid rebuilds the spatial index over edible entities.
func (g *Game) updateSpatialGrid() {
	g.spatialGrid.Clear()

	query := g.edibleFilter.Query()
	for query.Next() {
		pos, _, _, _, _ := query.Get()
		g.spatialGrid.Insert(query.Entity(), pos.X, pos.Y)
	}
}

// updateMerges lets touching same-category entities combine. Each pair is
// examined from its larger member, so a neighbour query of the larger
// diameter covers every possible contact.
func (g *Game) updateMerges() {
	if !g.cfg.Merge.Enabled {
		return
	}

	query := g.edibleFilter.Query()
	for query.Next() {
		e := query.Entity()
		if g.removed(e) {
			continue
		}
		pos, _, edible, _, merge := query.Get()

		g.neighbors = g.spatialGrid.QueryRadiusInto(g.neighbors[:0], pos.X, pos.Y, edible.Diameter, e, g.posMap)
		for _, n := range g.neighbors {
			if g.removed(n.E) {
				continue
			}
			other := g.edibleMap.Get(n.E)
			if other.Category != edible.Category || other.Diameter > edible.Diameter {
				continue
			}
			if other.Diameter == edible.Diameter && n.E.ID() < e.ID() {
				continue
			}
			contact := (edible.Diameter + other.Diameter) / 2
			if n.DistSq >= contact*contact {
				continue
			}

			a := systems.MergeCandidate{Edible: edible, Merge: merge, Pos: r2.Vec{X: pos.X, Y: pos.Y}}
			b := systems.MergeCandidate{
				Edible: other,
				Merge:  g.mergeMap.Get(n.E),
				Pos:    r2.Vec{X: pos.X + n.DX, Y: pos.Y + n.DY},
			}
			ok, keepA := g.mergeRule.TryMerge(g.now, a, b)
			if !ok {
				continue
			}

			survivor, loser := a, n.E
			if !keepA {
				survivor, loser = b, e
			}
			g.markRemoval(loser)
			g.queue.Emit(events.EntitiesMerged, g.now, events.Merged{
				Category: survivor.Edible.Category,
				Diameter: survivor.Edible.Diameter,
				Count:    survivor.Merge.Count,
			})
			if !keepA {
				break
			}
		}
	}
}

// updateContacts emits a Contact event for every entity the body starts
// touching this tick. An entity that stays in contact is reported once.
func (g *Game) updateContacts() {
	d := g.body.Diameter()
	radius := d/2 + g.maxEdibleRadius

	clear(g.touchingNext)
	g.neighbors = g.spatialGrid.QueryRadiusInto(g.neighbors[:0], g.player.X, g.player.Y, radius, ecs.Entity{}, g.posMap)
	for _, n := range g.neighbors {
		if g.removed(n.E) {
			continue
		}
		edible := g.edibleMap.Get(n.E)
		contact := (d + edible.Diameter) / 2
		if n.DistSq >= contact*contact {
			continue
		}
		g.touchingNext[n.E] = true
		if !g.touching[n.E] {
			g.queue.Emit(events.Contact, g.now, events.ContactPayload{Entity: n.E})
		}
	}
	g.touching, g.touchingNext = g.touchingNext, g.touching
}

// updatePowerUpContacts collects touched power-ups and expires those whose
// trajectory has completed.
func (g *Game) updatePowerUpContacts() {
	d := g.body.Diameter()

	query := g.powerUpFilter.Query()
	for query.Next() {
		e := query.Entity()
		pos, pu := query.Get()

		dx, dy := pos.X-g.player.X, pos.Y-g.player.Y
		contact := (d + pu.Diameter) / 2
		if dx*dx+dy*dy < contact*contact {
			g.queue.Emit(events.PowerUpCollected, g.now, events.PowerUp{Kind: pu.Kind})
			g.pendingPowerUps = append(g.pendingPowerUps, e)
			continue
		}
		if _, _, done := pu.At(g.now); done {
			g.queue.Emit(events.PowerUpExpired, g.now, events.PowerUp{Kind: pu.Kind})
			g.pendingPowerUps = append(g.pendingPowerUps, e)
		}
	}
}

// updateDanger tracks whether an entity too large to consume is near the
// body, and starts or cancels the repeating pulse on transitions.
func (g *Game) updateDanger() {
	inDanger := g.dangerNearby()
	if inDanger == g.inDanger {
		return
	}
	g.inDanger = inDanger

	if inDanger {
		interval := g.cfg.Danger.PulseInterval
		g.dangerPulse = g.tasks.Every(g.now, interval, func(now float64) {
			g.queue.Emit(events.DangerPulse, now, nil)
		})
		return
	}
	if g.dangerPulse != nil {
		g.dangerPulse.Cancel()
		g.dangerPulse = nil
	}
}

// dangerNearby reports whether any inedible entity's edge lies within the
// danger radius of the body's edge.
func (g *Game) dangerNearby() bool {
	d := g.body.Diameter()
	zone := g.cfg.Danger.Radius
	radius := d/2 + zone + g.maxEdibleRadius

	g.neighbors = g.spatialGrid.QueryRadiusInto(g.neighbors[:0], g.player.X, g.player.Y, radius, ecs.Entity{}, g.posMap)
	for _, n := range g.neighbors {
		if g.removed(n.E) {
			continue
		}
		edible := g.edibleMap.Get(n.E)
		if g.body.CanConsume(edible.Diameter) {
			continue
		}
		if math.Sqrt(n.DistSq)-(d+edible.Diameter)/2 < zone {
			return true
		}
	}
	return false
}

// shielded reports whether a shield power-up is active.
func (g *Game) shielded() bool {
	return g.now < g.shieldUntil
}

// contactFor builds the resolver input for a touched entity.
func (g *Game) contactFor(e ecs.Entity) (systems.Contact, bool) {
	if !g.world.Alive(e) || g.removed(e) {
		return systems.Contact{}, false
	}
	edible := g.edibleMap.Get(e)
	if edible == nil {
		return systems.Contact{}, false
	}
	return systems.Contact{
		Edible:   *edible,
		Merge:    g.mergeMap.Get(e),
		InDanger: g.inDanger,
		Shielded: g.shielded(),
	}, true
}
