package game

import (
	"log/slog"

	"github.com/pthm-cable/gobble/components"
	"github.com/pthm-cable/gobble/events"
	"github.com/pthm-cable/gobble/store"
)

// registerHandlers wires event handlers to the router. Every cross-system
// reaction happens here, at the single dispatch point.
func (g *Game) registerHandlers() {
	g.router.On(events.Contact, g.onContact)
	g.router.On(events.ConsumptionResolved, g.onConsumption)
	g.router.On(events.PowerUpCollected, g.onPowerUpCollected)
	g.router.On(events.PowerUpExpired, g.onPowerUpExpired)
	g.router.On(events.EntitiesMerged, g.onEntitiesMerged)
	g.router.On(events.DangerPulse, g.onDangerPulse)
	g.router.On(events.PhaseChanged, g.onPhaseChanged)
	g.router.On(events.TargetChanged, g.onTargetChanged)
	g.router.On(events.Ready, g.onReadyEvent)
}

// onContact resolves a body/entity touch. The resolver emits
// ConsumptionResolved for eligible contacts, which are then removed.
// Ineligible touches only count toward the window stats.
func (g *Game) onContact(ev events.Event) {
	p := ev.Payload.(events.ContactPayload)
	c, ok := g.contactFor(p.Entity)
	if !ok {
		return
	}
	res := g.resolver.Resolve(ev.Time, g.body, c)
	if res.Outcome == events.Ineligible {
		g.collector.RecordOutcome(res.Outcome)
		return
	}
	g.markRemoval(p.Entity)
}

func (g *Game) onConsumption(ev events.Event) {
	res := ev.Payload.(events.Consumption)
	g.score = g.resolver.ApplyScore(g.score, res.ScoreDelta)
	g.collector.RecordOutcome(res.Outcome)

	switch res.Outcome {
	case events.Correct:
		g.feedback.OnCorrectConsumption(res.Diameter)
	case events.Incorrect:
		g.feedback.OnIncorrectConsumption(res.InDanger)
	}

	if g.stats != nil {
		g.stats.AddInt(store.AbsorbedKey(res.Category), 1)
		if g.stats.MaxInt(store.KeyHighScore, g.score) {
			slog.Debug("new high score", "score", g.score)
		}
	}

	g.checkPhase()
}

func (g *Game) onPowerUpCollected(ev events.Event) {
	p := ev.Payload.(events.PowerUp)

	switch p.Kind {
	case components.PowerUpSurge:
		g.body.Grow(g.body.Diameter())
		g.checkPhase()
	case components.PowerUpShield:
		g.shieldUntil = ev.Time + g.cfg.PowerUps.ShieldDuration
	}

	g.powerUps.OnCollected(ev.Time)
	g.collector.RecordPowerUpCollected()
	g.feedback.OnPowerUpCollected(p.Kind)

	slog.Info("powerup collected",
		"tick", g.tick,
		"kind", p.Kind.String(),
		"diameter", g.body.Diameter(),
	)
}

func (g *Game) onPowerUpExpired(ev events.Event) {
	g.powerUps.OnExpired()
}

func (g *Game) onEntitiesMerged(ev events.Event) {
	m := ev.Payload.(events.Merged)
	g.collector.RecordMerge()
	slog.Debug("entities merged", "category", m.Category.String(), "diameter", m.Diameter, "count", m.Count)
}

func (g *Game) onDangerPulse(ev events.Event) {
	g.feedback.OnDangerPulse()
}

// onPhaseChanged re-draws the target immediately so it tracks what the
// new size can eat.
func (g *Game) onPhaseChanged(ev events.Event) {
	p := ev.Payload.(events.PhaseChange)
	slog.Info("phase changed",
		"tick", g.tick,
		"from", p.From,
		"to", p.To,
		"diameter", p.Diameter,
	)
	if g.body.UpdateTarget(ev.Time) {
		g.queue.Emit(events.TargetChanged, ev.Time, g.body.Target())
	}
}

func (g *Game) onTargetChanged(ev events.Event) {
	cat := ev.Payload.(components.Category)
	slog.Debug("target changed", "tick", g.tick, "target", cat.String())
}

func (g *Game) onReadyEvent(ev events.Event) {
	slog.Debug("ready dispatched", "time", ev.Time)
}
