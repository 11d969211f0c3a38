package game

import (
	"log/slog"

	"github.com/pthm-cable/gobble/store"
	"github.com/pthm-cable/gobble/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles milestones.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, telemetry.BodySnapshot{
		Diameter: g.body.Diameter(),
		Phase:    g.body.Phase(),
		Target:   g.body.Target(),
		Score:    g.score,
		Live:     g.liveEdibles,
		Skipped:  g.director.Skipped(),
	})
	perfStats := g.perfCollector.Stats()

	// Play time is folded into the store once per window
	g.flushPlayTime()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	milestones := g.milestoneDetector.Check(stats)
	for _, m := range milestones {
		if g.logStats {
			m.LogMilestone()
		}

		if g.outputManager != nil {
			if err := g.outputManager.WriteMilestone(m); err != nil {
				slog.Error("failed to write milestone", "error", err)
			}
		}

		// Save snapshot on milestone
		if g.snapshotDir != "" {
			g.saveSnapshot(&m)
		}
	}
}

// flushPlayTime adds locally accumulated play time to the stats store.
func (g *Game) flushPlayTime() {
	if g.stats == nil || g.playTimeAccum == 0 {
		return
	}
	g.stats.AddFloat(store.KeyPlayTime, g.playTimeAccum)
	g.playTimeAccum = 0
}

// saveSnapshot creates and saves a snapshot to disk.
func (g *Game) saveSnapshot(milestone *telemetry.Milestone) {
	snapshot := g.createSnapshot(milestone)

	path, err := telemetry.SaveSnapshot(snapshot, g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", g.tick)
}

// createSnapshot builds a snapshot from the current state.
func (g *Game) createSnapshot(milestone *telemetry.Milestone) *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version: telemetry.SnapshotVersion,
		Session: g.session,
		RNGSeed: g.rngSeed,
		Tick:    g.tick,
		SimTime: g.now,
		Body: telemetry.BodyState{
			X:        g.player.X,
			Y:        g.player.Y,
			Diameter: g.body.Diameter(),
			Phase:    g.body.Phase(),
			Target:   g.body.Target(),
			Score:    g.score,
			Shielded: g.shielded(),
		},
		Milestone: milestone,
	}

	query := g.edibleFilter.Query()
	for query.Next() {
		pos, vel, edible, _, merge := query.Get()
		snapshot.Entities = append(snapshot.Entities, telemetry.EntityState{
			ID:       query.Entity().ID(),
			Category: edible.Category,
			Diameter: edible.Diameter,
			X:        pos.X,
			Y:        pos.Y,
			VelX:     vel.X,
			VelY:     vel.Y,
			Merges:   merge.Count,
		})
	}

	puQuery := g.powerUpFilter.Query()
	for puQuery.Next() {
		pos, pu := puQuery.Get()
		snapshot.PowerUps = append(snapshot.PowerUps, telemetry.PowerUpState{
			Kind: pu.Kind,
			X:    pos.X,
			Y:    pos.Y,
		})
	}

	return snapshot
}
