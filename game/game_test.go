package game

import (
	"math"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gobble/components"
	"github.com/pthm-cable/gobble/config"
	"github.com/pthm-cable/gobble/events"
	"github.com/pthm-cable/gobble/feedback"
	"github.com/pthm-cable/gobble/store"
	"github.com/pthm-cable/gobble/systems"
	"github.com/pthm-cable/gobble/telemetry"
)

// constInput steers in a fixed direction.
type constInput struct{ dir r2.Vec }

func (c constInput) Steer(*Sense, float64) r2.Vec { return c.dir }

func newHeadless(t *testing.T, opts Options) *Game {
	t.Helper()
	opts.Headless = true
	g := NewGameWithOptions(opts)
	t.Cleanup(g.Unload)
	waitReady(t, g)
	return g
}

// waitReady pumps the game until both startup loads have been applied.
func waitReady(t *testing.T, g *Game) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !g.Ready() {
		if time.Now().After(deadline) {
			t.Fatal("game did not become ready")
		}
		g.UpdateHeadless()
	}
}

func runTicks(g *Game, n int) {
	for range n {
		g.simulationStep()
	}
}

// placeEdible spawns a stationary entity offset from the player.
func placeEdible(t *testing.T, g *Game, cat components.Category, diameter float64, offset r2.Vec) ecs.Entity {
	t.Helper()
	e, ok := g.spawnEdible(systems.SpawnRequest{
		Category: cat,
		Diameter: diameter,
		Score:    g.cfg.Categories[cat.Index()].Score,
		Position: r2.Add(g.player, offset),
	})
	if !ok {
		t.Fatal("spawn refused")
	}
	return e
}

func TestSameSeedIsDeterministic(t *testing.T) {
	run := func() (int, float64, r2.Vec, int) {
		g := newHeadless(t, Options{Seed: 42, Feedback: &feedback.Recorder{}})
		runTicks(g, 1800)
		return g.Score(), g.Body().Diameter(), g.Player(), g.LiveEntities()
	}

	score1, d1, p1, live1 := run()
	score2, d2, p2, live2 := run()

	if score1 != score2 || d1 != d2 || p1 != p2 || live1 != live2 {
		t.Errorf("runs diverged: (%d, %v, %v, %d) vs (%d, %v, %v, %d)",
			score1, d1, p1, live1, score2, d2, p2, live2)
	}
}

func TestSessionInvariantsHold(t *testing.T) {
	cfg := config.Default()
	cfg.Spawn.MaxEntities = 8
	cfg.Spawn.BaseInterval = 0.2
	cfg.Spawn.MinInterval = 0.1

	g := newHeadless(t, Options{Config: cfg, Seed: 7, Feedback: &feedback.Recorder{}})

	for range 3600 {
		g.simulationStep()
		if g.LiveEntities() > cfg.Spawn.MaxEntities {
			t.Fatalf("tick %d: %d live entities, cap %d", g.Tick(), g.LiveEntities(), cfg.Spawn.MaxEntities)
		}
		if g.Score() < 0 {
			t.Fatalf("tick %d: score %d below zero", g.Tick(), g.Score())
		}
		if g.Body().Diameter() < cfg.Body.MinDiameter {
			t.Fatalf("tick %d: diameter %v below minimum", g.Tick(), g.Body().Diameter())
		}
	}
}

func TestPlayerMovesAtConfiguredSpeed(t *testing.T) {
	g := newHeadless(t, Options{Seed: 1, Input: constInput{dir: r2.Vec{X: 3}}})
	start := g.Player()

	const ticks = 120
	runTicks(g, ticks)

	// Steering longer than 1 is clamped to full speed
	want := start.X + ticks*g.cfg.Physics.DT*g.cfg.Body.MoveSpeed
	if got := g.Player().X; math.Abs(got-want) > 1e-6 {
		t.Errorf("player x = %v, want %v", got, want)
	}
	if g.Player().Y != start.Y {
		t.Errorf("player y moved to %v", g.Player().Y)
	}
}

func TestContactOutcomes(t *testing.T) {
	t.Run("correct grows and scores", func(t *testing.T) {
		rec := &feedback.Recorder{}
		g := newHeadless(t, Options{Seed: 3, Input: constInput{}, Feedback: rec})
		before := g.Body().Diameter()
		target := g.Body().Target()

		e := placeEdible(t, g, target, 10, r2.Vec{})
		runTicks(g, 1)

		if g.Resolved(events.Correct) != 1 {
			t.Fatalf("correct = %d, want 1", g.Resolved(events.Correct))
		}
		if g.Body().Diameter() <= before {
			t.Errorf("diameter %v did not grow from %v", g.Body().Diameter(), before)
		}
		if want := g.cfg.Categories[target.Index()].Score; g.Score() != want {
			t.Errorf("score = %d, want %d", g.Score(), want)
		}
		if correct, _, _, _ := rec.Counts(); correct != 1 {
			t.Errorf("feedback correct = %d, want 1", correct)
		}
		if g.world.Alive(e) {
			t.Errorf("consumed entity still alive")
		}
	})

	t.Run("incorrect shrinks", func(t *testing.T) {
		rec := &feedback.Recorder{}
		g := newHeadless(t, Options{Seed: 3, Input: constInput{}, Feedback: rec})
		before := g.Body().Diameter()

		wrong := components.CategoryFromIndex((g.Body().Target().Index() + 1) % components.CategoryCount)
		placeEdible(t, g, wrong, 10, r2.Vec{})
		runTicks(g, 1)

		if g.Resolved(events.Incorrect) != 1 {
			t.Fatalf("incorrect = %d, want 1", g.Resolved(events.Incorrect))
		}
		shrink := g.cfg.Body.ShrinkMultiplier
		if d := g.Body().Diameter(); d > before*shrink+1e-9 || d < before*shrink-1 {
			t.Errorf("diameter = %v, want about %v", d, before*shrink)
		}
		if g.Score() != 0 {
			t.Errorf("score = %d, want floor 0", g.Score())
		}
		if _, incorrect, _, _ := rec.Counts(); incorrect != 1 {
			t.Errorf("feedback incorrect = %d, want 1", incorrect)
		}
	})

	t.Run("too large is ignored", func(t *testing.T) {
		g := newHeadless(t, Options{Seed: 3, Input: constInput{}, Feedback: &feedback.Recorder{}})
		before := g.Body().Diameter()

		e := placeEdible(t, g, components.Category3, before+20, r2.Vec{})
		runTicks(g, 10)

		if g.Resolved(events.Ineligible) != 1 {
			t.Errorf("ineligible = %d, want 1 (reported once per touch)", g.Resolved(events.Ineligible))
		}
		if !g.world.Alive(e) {
			t.Errorf("ineligible entity was removed")
		}
		if g.Score() != 0 {
			t.Errorf("score changed to %d", g.Score())
		}
	})
}

func TestDangerPulses(t *testing.T) {
	rec := &feedback.Recorder{}
	g := newHeadless(t, Options{Seed: 5, Input: constInput{}, Feedback: rec})

	// Edge gap of 80 is inside the danger radius but not touching
	d := g.Body().Diameter()
	big := d + 60
	placeEdible(t, g, components.Category3, big, r2.Vec{X: (d+big)/2 + 80})

	runTicks(g, 60)

	if !g.inDanger {
		t.Fatal("expected danger state")
	}
	_, _, _, pulses := rec.Counts()
	want := int(60*g.cfg.Physics.DT/g.cfg.Danger.PulseInterval) + 1
	if pulses < want-1 || pulses > want {
		t.Errorf("pulses = %d, want about %d", pulses, want)
	}
}

func TestStatsCallbackWindows(t *testing.T) {
	var windows []telemetry.WindowStats
	g := newHeadless(t, Options{
		Seed:           9,
		StatsWindowSec: 1,
		Feedback:       &feedback.Recorder{},
		StatsCallback: func(s telemetry.WindowStats) {
			windows = append(windows, s)
		},
	})

	runTicks(g, 330)

	if len(windows) < 4 {
		t.Fatalf("got %d windows, want at least 4", len(windows))
	}
	for i, w := range windows {
		if w.Session != g.Session() {
			t.Errorf("window %d session = %q, want %q", i, w.Session, g.Session())
		}
		if i > 0 && w.WindowEndTick <= windows[i-1].WindowEndTick {
			t.Errorf("window %d ends at %d, not after %d", i, w.WindowEndTick, windows[i-1].WindowEndTick)
		}
	}
}

func TestIneligibleTouchReachesWindowStats(t *testing.T) {
	var windows []telemetry.WindowStats
	g := newHeadless(t, Options{
		Seed:           13,
		StatsWindowSec: 1,
		Input:          constInput{},
		Feedback:       &feedback.Recorder{},
		StatsCallback: func(s telemetry.WindowStats) {
			windows = append(windows, s)
		},
	})

	placeEdible(t, g, components.Category3, g.Body().Diameter()+20, r2.Vec{})
	runTicks(g, 130)

	if len(windows) == 0 {
		t.Fatal("no stats window flushed")
	}
	total := 0
	for _, w := range windows {
		total += w.Ineligible
	}
	if total < 1 || total > g.Resolved(events.Ineligible) {
		t.Errorf("windows counted %d ineligible touches, resolver saw %d", total, g.Resolved(events.Ineligible))
	}
}

func TestStatsPersistAcrossSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.yaml")

	g := NewGameWithOptions(Options{
		Seed:      11,
		Headless:  true,
		StatsPath: path,
		Input:     constInput{},
		Feedback:  &feedback.Recorder{},
	})
	waitReady(t, g)
	target := g.Body().Target()
	placeEdible(t, g, target, 10, r2.Vec{})
	runTicks(g, 30)
	g.Unload()

	s, err := store.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := s.Int(store.KeyHighScore); got != g.Score() || got == 0 {
		t.Errorf("high score = %d, want %d", got, g.Score())
	}
	if got := s.Int(store.AbsorbedKey(target)); got != 1 {
		t.Errorf("absorbed = %d, want 1", got)
	}
	want := float64(g.Tick()) * g.cfg.Physics.DT
	if got := s.Float(store.KeyPlayTime, 0); math.Abs(got-want) > 1e-6 {
		t.Errorf("play time = %v, want %v", got, want)
	}

	// The next session starts from the saved high score
	g2 := newHeadless(t, Options{Seed: 12, StatsPath: path, Input: constInput{}})
	if got := g2.Stats().Int(store.KeyHighScore); got != g.Score() {
		t.Errorf("reloaded high score = %d, want %d", got, g.Score())
	}
}

func TestAutopilot(t *testing.T) {
	cfg := config.Default().Autopilot

	t.Run("seeks target", func(t *testing.T) {
		a := NewAutopilot(cfg, rand.New(rand.NewSource(1)))
		s := &Sense{
			Diameter: 40,
			Target:   components.Category1,
			Nearby: []SensedEntity{
				{Pos: r2.Vec{X: 100}, Diameter: 20, Category: components.Category1},
				{Pos: r2.Vec{Y: 50}, Diameter: 20, Category: components.Category2},
			},
		}
		steer := a.Steer(s, 1.0/60)
		if steer.X < 0.99 {
			t.Errorf("steer = %v, want toward +x", steer)
		}
	})

	t.Run("flees large", func(t *testing.T) {
		a := NewAutopilot(cfg, rand.New(rand.NewSource(2)))
		s := &Sense{
			Diameter: 40,
			Target:   components.Category1,
			Nearby: []SensedEntity{
				{Pos: r2.Vec{X: 10}, Diameter: 200, Category: components.Category4},
			},
		}
		steer := a.Steer(s, 1.0/60)
		if steer.X > 0 {
			t.Errorf("steer = %v, want away from +x", steer)
		}
		if n := r2.Norm(steer); math.Abs(n-1) > 1e-9 {
			t.Errorf("|steer| = %v, want 1", n)
		}
	})
}
