package game

import (
	"math"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gobble/components"
	"github.com/pthm-cable/gobble/config"
)

// maxStepsPerUpdate caps the speed-up keys.
const maxStepsPerUpdate = 10

// SensedEntity is an edible entity as seen by an input source.
type SensedEntity struct {
	Pos      r2.Vec
	Diameter float64
	Category components.Category
}

// Sense is the world as seen by an input source for one tick.
type Sense struct {
	Now      float64
	Player   r2.Vec
	Diameter float64
	Target   components.Category
	Nearby   []SensedEntity
	PowerUps []r2.Vec

	// Pointer position in world coordinates (viewer only)
	Pointer    r2.Vec
	HasPointer bool
}

// InputSource steers the player. Steer returns a direction whose length,
// clamped to 1, scales the configured move speed.
type InputSource interface {
	Steer(s *Sense, dt float64) r2.Vec
}

// buildSense gathers the entities within the autopilot's sense radius.
func (g *Game) buildSense() Sense {
	s := Sense{
		Now:      g.now,
		Player:   g.player,
		Diameter: g.body.Diameter(),
		Target:   g.body.Target(),
		Nearby:   g.sensed[:0],
	}
	radius := g.cfg.Autopilot.SenseRadius
	radiusSq := radius * radius

	query := g.edibleFilter.Query()
	for query.Next() {
		pos, _, edible, _, _ := query.Get()
		dx, dy := pos.X-g.player.X, pos.Y-g.player.Y
		if dx*dx+dy*dy > radiusSq {
			continue
		}
		s.Nearby = append(s.Nearby, SensedEntity{
			Pos:      r2.Vec{X: pos.X, Y: pos.Y},
			Diameter: edible.Diameter,
			Category: edible.Category,
		})
	}
	g.sensed = s.Nearby

	puQuery := g.powerUpFilter.Query()
	for puQuery.Next() {
		pos, _ := puQuery.Get()
		s.PowerUps = append(s.PowerUps, r2.Vec{X: pos.X, Y: pos.Y})
	}

	if g.camera != nil && !g.headless {
		m := rl.GetMousePosition()
		wx, wy := g.camera.ScreenToWorld(float64(m.X), float64(m.Y))
		s.Pointer = r2.Vec{X: wx, Y: wy}
		s.HasPointer = true
	}
	return s
}

// Autopilot wanders, seeks the nearest entity of the target category, and
// steers away from entities too large to consume.
type Autopilot struct {
	cfg     config.AutopilotConfig
	rng     *rand.Rand
	heading float64
}

// NewAutopilot creates a seeded autopilot.
func NewAutopilot(cfg config.AutopilotConfig, rng *rand.Rand) *Autopilot {
	return &Autopilot{cfg: cfg, rng: rng, heading: rng.Float64() * 2 * math.Pi}
}

// Steer implements InputSource.
func (a *Autopilot) Steer(s *Sense, dt float64) r2.Vec {
	a.heading += (a.rng.Float64()*2 - 1) * a.cfg.WanderChange * dt
	steer := r2.Vec{X: math.Cos(a.heading), Y: math.Sin(a.heading)}

	var (
		best     r2.Vec
		bestDist = math.Inf(1)
		flee     r2.Vec
	)
	for _, e := range s.Nearby {
		to := r2.Sub(e.Pos, s.Player)
		dist := r2.Norm(to)
		if dist == 0 {
			continue
		}
		if e.Diameter >= s.Diameter {
			// Inverse-distance push away from anything that cannot be eaten
			flee = r2.Sub(flee, r2.Scale(s.Diameter/(dist*dist), to))
			continue
		}
		if e.Category == s.Target && dist < bestDist {
			best, bestDist = to, dist
		}
	}
	for _, p := range s.PowerUps {
		to := r2.Sub(p, s.Player)
		if dist := r2.Norm(to); dist > 0 && dist < bestDist {
			best, bestDist = to, dist
		}
	}

	if !math.IsInf(bestDist, 1) {
		steer = r2.Scale(1/bestDist, best)
		a.heading = math.Atan2(steer.Y, steer.X)
	}
	steer = r2.Add(steer, flee)
	if n := r2.Norm(steer); n > 0 {
		steer = r2.Scale(1/n, steer)
	}
	return steer
}

// PointerInput steers toward the mouse, with arrow/WASD keys overriding.
type PointerInput struct{}

// Steer implements InputSource.
func (PointerInput) Steer(s *Sense, dt float64) r2.Vec {
	var key r2.Vec
	if rl.IsKeyDown(rl.KeyRight) || rl.IsKeyDown(rl.KeyD) {
		key.X++
	}
	if rl.IsKeyDown(rl.KeyLeft) || rl.IsKeyDown(rl.KeyA) {
		key.X--
	}
	if rl.IsKeyDown(rl.KeyUp) || rl.IsKeyDown(rl.KeyW) {
		key.Y++
	}
	if rl.IsKeyDown(rl.KeyDown) || rl.IsKeyDown(rl.KeyS) {
		key.Y--
	}
	if key != (r2.Vec{}) {
		return r2.Scale(1/r2.Norm(key), key)
	}

	if !s.HasPointer || !rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		return r2.Vec{}
	}
	to := r2.Sub(s.Pointer, s.Player)
	// Full speed once the pointer is a body-width away
	return r2.Scale(1/math.Max(s.Diameter, 1), to)
}

// handleInput processes keyboard input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < maxStepsPerUpdate {
		g.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyTab) && g.settings != nil {
		g.settings.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyF3) && g.hud != nil {
		g.hud.TogglePerf()
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
	g.camera.Resize(float64(w), float64(h))
}
