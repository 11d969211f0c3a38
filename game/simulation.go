package game

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gobble/events"
	"github.com/pthm-cable/gobble/telemetry"
)

// notReadyWait is how long a headless update sleeps while startup loads
// are still pending.
const notReadyWait = time.Millisecond

// Update runs input handling and simulation steps for one rendered frame.
func (g *Game) Update() {
	g.handleInput()
	g.handoff.Drain()

	if g.paused || !g.ready {
		return
	}

	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
	g.perfCollector.RecordFrame()
}

// UpdateHeadless runs simulation steps without rendering. It returns false
// if startup loading has not completed yet and nothing was simulated.
func (g *Game) UpdateHeadless() bool {
	g.handoff.Drain()
	if !g.ready {
		time.Sleep(notReadyWait)
		return false
	}

	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
	return true
}

// simulationStep runs a single tick of the simulation.
func (g *Game) simulationStep() {
	dt := g.cfg.Physics.DT
	perf := g.perfCollector
	perf.StartTick()

	// 1. Sample the player and rotate the target
	perf.StartPhase(telemetry.PhasePredictor)
	g.predictor.RecordPosition(g.player, g.now)
	if g.body.UpdateTarget(g.now) {
		g.queue.Emit(events.TargetChanged, g.now, g.body.Target())
	}

	// 2. Director spawns
	perf.StartPhase(telemetry.PhaseSpawn)
	g.updateSpawning()

	// 3. Formations
	perf.StartPhase(telemetry.PhaseFormation)
	g.updateFormations()

	// 4. Power-up launches and trajectories
	perf.StartPhase(telemetry.PhasePowerUps)
	g.updatePowerUps()

	// 5. Movement and passive decay
	perf.StartPhase(telemetry.PhaseMovement)
	g.updatePlayer(dt)
	g.updateEntities(dt)
	g.body.PassiveDecay(dt)
	g.checkPhase()

	// 6. Contacts
	perf.StartPhase(telemetry.PhaseContacts)
	g.updateSpatialGrid()
	g.updateMerges()
	g.updateContacts()
	g.updatePowerUpContacts()
	g.updateDanger()

	// 7. Scheduled tasks and event dispatch
	perf.StartPhase(telemetry.PhaseEvents)
	g.tasks.Tick(g.now)
	g.router.DispatchAll()

	// 8. Removals
	perf.StartPhase(telemetry.PhaseCleanup)
	g.cleanup()

	// 9. Telemetry and persistence
	perf.StartPhase(telemetry.PhaseTelemetry)
	g.collector.SampleDiameter(g.body.Diameter())
	g.playTimeAccum += dt
	g.tick++
	g.now = float64(g.tick) * dt
	g.flushTelemetry()
	g.saveStatsIfDirty()

	perf.EndTick()
}

// updatePlayer applies the input source's steering to the player position.
func (g *Game) updatePlayer(dt float64) {
	sense := g.buildSense()
	steer := g.input.Steer(&sense, dt)

	speed := g.cfg.Body.MoveSpeed
	if n := r2.Norm(steer); n > 1 {
		steer = r2.Scale(1/n, steer)
	}
	g.playerVel = r2.Scale(speed, steer)
	g.player = r2.Add(g.player, r2.Scale(dt, g.playerVel))
}

// checkPhase emits PhaseChanged when the body crossed a threshold since
// the last check.
func (g *Game) checkPhase() {
	phase := g.body.Phase()
	if phase == g.lastPhase {
		return
	}
	g.queue.Emit(events.PhaseChanged, g.now, events.PhaseChange{
		From:     g.lastPhase,
		To:       phase,
		Diameter: g.body.Diameter(),
	})
	g.lastPhase = phase
}

// saveStatsIfDirty persists the stats store after ticks that changed it.
func (g *Game) saveStatsIfDirty() {
	if g.stats == nil || !g.stats.Dirty() {
		return
	}
	if err := g.stats.Save(); err != nil {
		slog.Error("failed to save stats store", "error", err)
	}
}
