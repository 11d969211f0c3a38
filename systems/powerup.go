package systems

import (
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gobble/components"
	"github.com/pthm-cable/gobble/config"
)

// trajectoryPresets are the unit directions a power-up can cross the
// screen along: horizontal, vertical and the two long diagonals.
var trajectoryPresets = []r2.Vec{
	{X: 1, Y: 0},
	{X: -1, Y: 0},
	{X: 0, Y: 1},
	{X: 0, Y: -1},
	{X: math.Sqrt2 / 2, Y: math.Sqrt2 / 2},
	{X: -math.Sqrt2 / 2, Y: -math.Sqrt2 / 2},
}

// PowerUpScheduler decides when power-ups appear. Each kind runs its own
// timer; a collection blocks every kind for the cooldown and pushes both
// timers past it. The second kind only spawns when nothing is active.
type PowerUpScheduler struct {
	cfg config.PowerUpConfig
	rng *rand.Rand

	next           [components.PowerUpKindCount]float64
	lastCollection float64
	active         int
}

// NewPowerUpScheduler schedules the first spawn of each kind after the
// initial delay.
func NewPowerUpScheduler(cfg config.PowerUpConfig, now float64, rng *rand.Rand) *PowerUpScheduler {
	s := &PowerUpScheduler{
		cfg:            cfg,
		rng:            rng,
		lastCollection: math.Inf(-1),
	}
	for k := range s.next {
		s.next[k] = now + s.drawInterval(k) + cfg.InitialDelay
	}
	return s
}

func (s *PowerUpScheduler) drawInterval(kind int) float64 {
	k := s.cfg.Kinds[kind]
	return uniform(s.rng, k.IntervalMin, k.IntervalMax)
}

// InCooldown reports whether a recent collection blocks spawning.
func (s *PowerUpScheduler) InCooldown(now float64) bool {
	return now-s.lastCollection < s.cfg.Cooldown
}

// Active returns the number of power-ups currently on screen.
func (s *PowerUpScheduler) Active() int {
	return s.active
}

// NextSpawnTime returns when the given kind is next due.
func (s *PowerUpScheduler) NextSpawnTime(kind components.PowerUpKind) float64 {
	return s.next[kind]
}

// Update spawns every due kind allowed by the cooldown, the concurrency
// cap and the second-kind rule. player anchors the trajectories.
func (s *PowerUpScheduler) Update(now float64, player r2.Vec) []components.PowerUp {
	if s.InCooldown(now) {
		return nil
	}
	if s.active >= s.cfg.MaxActive {
		return nil
	}

	var spawned []components.PowerUp
	for k := 0; k < components.PowerUpKindCount; k++ {
		if now < s.next[k] {
			continue
		}
		if s.active >= s.cfg.MaxActive {
			break
		}
		// The second kind never shares the screen with another power-up.
		if k == int(components.PowerUpShield) && s.active > 0 {
			continue
		}

		kind := components.PowerUpKind(k)
		spawned = append(spawned, s.launch(kind, now, player))
		s.active++
		s.next[k] = now + s.drawInterval(k)

		slog.Debug("powerup spawned", "kind", kind.String(), "time", now, "next", s.next[k])
	}
	return spawned
}

// launch builds a straight trajectory through the player's neighbourhood
// from one off-screen point to the opposite one.
func (s *PowerUpScheduler) launch(kind components.PowerUpKind, now float64, player r2.Vec) components.PowerUp {
	dir := trajectoryPresets[s.rng.Intn(len(trajectoryPresets))]
	normal := r2.Vec{X: -dir.Y, Y: dir.X}
	lateral := uniform(s.rng, -s.cfg.OffscreenDistance/4, s.cfg.OffscreenDistance/4)
	centre := r2.Add(player, r2.Scale(lateral, normal))

	start := r2.Sub(centre, r2.Scale(s.cfg.OffscreenDistance, dir))
	end := r2.Add(centre, r2.Scale(s.cfg.OffscreenDistance, dir))

	return components.PowerUp{
		Kind:     kind,
		StartX:   start.X,
		StartY:   start.Y,
		EndX:     end.X,
		EndY:     end.Y,
		Start:    now,
		Duration: r2.Norm(r2.Sub(end, start)) / s.cfg.Speed,
		Diameter: s.cfg.Diameter,
	}
}

// OnCollected starts the global cooldown, reschedules both kinds past it
// and releases the collected power-up's slot.
func (s *PowerUpScheduler) OnCollected(now float64) {
	s.lastCollection = now
	for k := range s.next {
		s.next[k] = now + s.cfg.Cooldown + s.drawInterval(k)
	}
	s.release()
}

// OnExpired releases the slot of a power-up whose trajectory completed.
func (s *PowerUpScheduler) OnExpired() {
	s.release()
}

func (s *PowerUpScheduler) release() {
	if s.active > 0 {
		s.active--
	}
}
