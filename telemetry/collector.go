package telemetry

import (
	"github.com/pthm-cable/gobble/components"
	"github.com/pthm-cable/gobble/events"
)

// BodySnapshot is the body state sampled when a window closes.
type BodySnapshot struct {
	Diameter float64
	Phase    int
	Target   components.Category
	Score    int
	Live     int
	Skipped  int // Cumulative spawn attempts skipped at the cap
}

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	session             string
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32
	skippedAtStart  int

	// Event counters for current window
	spawns            [components.CategoryCount]int
	formations        int
	outcomes          [3]int
	merges            int
	powerUpsSpawned   int
	powerUpsCollected int

	diameters []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(session string, windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		session:             session,
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		diameters:           make([]float64, 0, ticksPerWindow),
	}
}

// RecordSpawn records one spawned entity.
func (c *Collector) RecordSpawn(cat components.Category) {
	if cat.Valid() {
		c.spawns[cat.Index()]++
	}
}

// RecordFormation records one formation event.
func (c *Collector) RecordFormation() {
	c.formations++
}

// RecordOutcome records a resolved contact.
func (c *Collector) RecordOutcome(o events.Outcome) {
	if int(o) < len(c.outcomes) {
		c.outcomes[o]++
	}
}

// RecordMerge records an entity merge.
func (c *Collector) RecordMerge() {
	c.merges++
}

// RecordPowerUpSpawn records a power-up appearing.
func (c *Collector) RecordPowerUpSpawn() {
	c.powerUpsSpawned++
}

// RecordPowerUpCollected records a power-up collection.
func (c *Collector) RecordPowerUpCollected() {
	c.powerUpsCollected++
}

// SampleDiameter records the body diameter for this tick.
func (c *Collector) SampleDiameter(d float64) {
	c.diameters = append(c.diameters, d)
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, body BodySnapshot) WindowStats {
	correct := c.outcomes[events.Correct]
	incorrect := c.outcomes[events.Incorrect]
	var accuracy float64
	if correct+incorrect > 0 {
		accuracy = float64(correct) / float64(correct+incorrect)
	}

	mean, std, p10, p50, p90 := ComputeDiameterStats(c.diameters)

	stats := WindowStats{
		Session:         c.session,
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Diameter: body.Diameter,
		Phase:    body.Phase,
		Target:   body.Target.String(),
		Score:    body.Score,
		Live:     body.Live,

		SpawnsC1:   c.spawns[0],
		SpawnsC2:   c.spawns[1],
		SpawnsC3:   c.spawns[2],
		SpawnsC4:   c.spawns[3],
		SpawnsC5:   c.spawns[4],
		Formations: c.formations,
		Skipped:    body.Skipped - c.skippedAtStart,

		Correct:    correct,
		Incorrect:  incorrect,
		Ineligible: c.outcomes[events.Ineligible],
		Accuracy:   accuracy,
		Merges:     c.merges,

		PowerUpsSpawned:   c.powerUpsSpawned,
		PowerUpsCollected: c.powerUpsCollected,

		DiameterMean: mean,
		DiameterStd:  std,
		DiameterP10:  p10,
		DiameterP50:  p50,
		DiameterP90:  p90,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.skippedAtStart = body.Skipped
	c.spawns = [components.CategoryCount]int{}
	c.formations = 0
	c.outcomes = [3]int{}
	c.merges = 0
	c.powerUpsSpawned = 0
	c.powerUpsCollected = 0
	c.diameters = c.diameters[:0]

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
