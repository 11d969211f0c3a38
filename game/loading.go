package game

import (
	"log/slog"

	"github.com/pthm-cable/gobble/events"
	"github.com/pthm-cable/gobble/feedback"
	"github.com/pthm-cable/gobble/sched"
	"github.com/pthm-cable/gobble/store"
)

// loadPrerequisites is the number of background loads gating readiness.
const loadPrerequisites = 2

// startLoading kicks off the stats store load and the entitlement query.
// Each result is posted back to the tick through the handoff; the barrier
// continuation runs on the tick once both have been applied.
func (g *Game) startLoading(statsPath string) {
	g.barrier = sched.NewBarrier(loadPrerequisites, g.onReady)

	go func() {
		s, err := store.Load(statsPath)
		if err != nil {
			slog.Error("failed to load stats store, starting fresh", "path", statsPath, "error", err)
			s = store.New(statsPath)
		}
		g.handoff.Post(func() {
			g.stats = s
			if g.settings != nil {
				g.settings.Bind(s)
			}
			g.barrier.Done()
		})
	}()

	go func() {
		ent := g.entitlements
		if ent == nil {
			ent = feedback.Static(false)
		}
		suppressed := ent.AdsSuppressed()
		g.handoff.Post(func() {
			g.entitlements = feedback.Static(suppressed)
			g.barrier.Done()
		})
	}()
}

// onReady runs once every prerequisite has completed.
func (g *Game) onReady() {
	g.ready = true
	g.queue.Emit(events.Ready, g.now, nil)
	slog.Info("game ready",
		"session", g.session,
		"high_score", g.stats.Int(store.KeyHighScore),
		"ads_suppressed", g.entitlements.AdsSuppressed(),
	)
}
