package game

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/gobble/components"
	"github.com/pthm-cable/gobble/systems"
)

// spawnEdible realizes a spawn request as an entity. Returns false when
// the live entity cap is reached.
func (g *Game) spawnEdible(req systems.SpawnRequest) (ecs.Entity, bool) {
	if g.liveEdibles >= g.cfg.Spawn.MaxEntities {
		return ecs.Entity{}, false
	}

	pos := components.Position{X: req.Position.X, Y: req.Position.Y}
	vel := components.Velocity{X: req.Velocity.X, Y: req.Velocity.Y}
	edible := components.Edible{
		Category: req.Category,
		Diameter: req.Diameter,
		Score:    req.Score,
		Mass:     req.Mass,
	}
	life := components.Lifetime{SpawnedAt: g.now, FadeIn: req.FadeIn}
	if req.Lifetime > 0 {
		life.ExpiresAt = g.now + req.Lifetime
	}
	merge := components.Merge{}

	entity := g.edibleMapper.NewEntity(&pos, &vel, &edible, &life, &merge)
	g.liveEdibles++
	g.collector.RecordSpawn(req.Category)
	return entity, true
}

// updateSpawning runs the director's timer and realizes its request.
func (g *Game) updateSpawning() {
	req, ok := g.director.Update(g.now, g.body, g.predictor, g.liveEdibles)
	if !ok {
		return
	}
	g.spawnEdible(req)
}

// updateFormations runs the formation timer. Members past the entity cap
// are dropped.
func (g *Game) updateFormations() {
	pattern, reqs, ok := g.formation.Update(g.now, g.body, g.predictor)
	if !ok {
		return
	}

	spawned := 0
	for _, req := range reqs {
		if _, ok := g.spawnEdible(req); !ok {
			break
		}
		spawned++
	}
	g.collector.RecordFormation()

	slog.Info("formation",
		"tick", g.tick,
		"pattern", pattern.String(),
		"requested", len(reqs),
		"spawned", spawned,
	)
}

// updatePowerUps launches due power-ups and moves in-flight ones along
// their trajectories.
func (g *Game) updatePowerUps() {
	for _, pu := range g.powerUps.Update(g.now, g.player) {
		pu.Cosmetic = g.entitlements != nil && g.entitlements.AdsSuppressed()
		pos := components.Position{X: pu.StartX, Y: pu.StartY}
		g.powerUpMapper.NewEntity(&pos, &pu)
		g.collector.RecordPowerUpSpawn()

		slog.Info("powerup launched", "tick", g.tick, "kind", pu.Kind.String())
	}

	query := g.powerUpFilter.Query()
	for query.Next() {
		pos, pu := query.Get()
		pos.X, pos.Y, _ = pu.At(g.now)
	}
}

// updateEntities drifts edible entities and advances merge orbits.
func (g *Game) updateEntities(dt float64) {
	speed := g.cfg.Merge.OrbitalSpeed

	query := g.edibleFilter.Query()
	for query.Next() {
		pos, vel, _, _, merge := query.Get()

		if merge.Orbiting(g.now) {
			p := systems.AdvanceOrbit(merge, speed, dt)
			merge.OrbitX += vel.X * dt
			merge.OrbitY += vel.Y * dt
			pos.X, pos.Y = p.X, p.Y
			continue
		}
		pos.X += vel.X * dt
		pos.Y += vel.Y * dt
	}
}

// markRemoval queues an edible entity for removal at the end of the tick.
func (g *Game) markRemoval(e ecs.Entity) {
	if g.removalSet[e] {
		return
	}
	g.removalSet[e] = true
	g.pendingRemoval = append(g.pendingRemoval, e)
}

// removed reports whether an entity is queued for removal this tick.
func (g *Game) removed(e ecs.Entity) bool {
	return g.removalSet[e]
}

// cleanup removes consumed, merged, expired and distant entities, and
// finished power-ups. Structural changes happen only after all queries
// have completed.
func (g *Game) cleanup() {
	cleanupDistSq := g.cfg.Derived.CleanupDistSq

	query := g.edibleFilter.Query()
	for query.Next() {
		e := query.Entity()
		pos, _, _, life, _ := query.Get()

		dx, dy := pos.X-g.player.X, pos.Y-g.player.Y
		if life.Expired(g.now) || dx*dx+dy*dy > cleanupDistSq {
			g.markRemoval(e)
		}
	}

	for _, e := range g.pendingRemoval {
		if !g.world.Alive(e) {
			continue
		}
		g.world.RemoveEntity(e)
		g.liveEdibles--
		delete(g.touching, e)
	}
	g.pendingRemoval = g.pendingRemoval[:0]
	clear(g.removalSet)

	for _, e := range g.pendingPowerUps {
		if g.world.Alive(e) {
			g.world.RemoveEntity(e)
		}
	}
	g.pendingPowerUps = g.pendingPowerUps[:0]
}
