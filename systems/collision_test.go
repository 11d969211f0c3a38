package systems

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gobble/components"
	"github.com/pthm-cable/gobble/config"
	"github.com/pthm-cable/gobble/events"
)

type recordingEmitter struct {
	events []events.Event
}

func (r *recordingEmitter) Emit(t events.Type, now float64, payload any) {
	r.events = append(r.events, events.Event{Type: t, Time: now, Payload: payload})
}

func newTestResolver(seed int64) (*CollisionResolver, *GrowthEngine, *recordingEmitter, *config.Config) {
	cfg := config.Default()
	out := &recordingEmitter{}
	body := NewGrowthEngine(cfg.Body, cfg.Categories, rand.New(rand.NewSource(seed)))
	return NewCollisionResolver(cfg, out), body, out, cfg
}

func TestResolveOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		diameter   float64
		targetHit  bool
		shielded   bool
		want       events.Outcome
		wantScore  int
		bodyChange int // -1 shrink, 0 same, 1 grow
	}{
		{"too large", 500, true, false, events.Ineligible, 0, 0},
		{"equal size is too large", 40, true, false, events.Ineligible, 0, 0},
		{"target category", 20, true, false, events.Correct, 10, 1},
		{"other category", 20, false, false, events.Incorrect, -5, -1},
		{"other category shielded", 20, false, true, events.Incorrect, -5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, body, out, cfg := newTestResolver(1)
			before := body.Diameter()

			cat := body.Target()
			if !tt.targetHit {
				cat = components.Category2
				if cat == body.Target() {
					cat = components.Category1
				}
			}
			e := components.Edible{Category: cat, Diameter: tt.diameter, Score: cfg.Categories[0].Score}
			res := r.Resolve(3, body, Contact{Edible: e, Shielded: tt.shielded})

			if res.Outcome != tt.want {
				t.Fatalf("Outcome = %v, want %v", res.Outcome, tt.want)
			}
			if res.ScoreDelta != tt.wantScore {
				t.Errorf("ScoreDelta = %d, want %d", res.ScoreDelta, tt.wantScore)
			}
			after := body.Diameter()
			switch tt.bodyChange {
			case 1:
				if after <= before {
					t.Errorf("body did not grow: %v -> %v", before, after)
				}
			case -1:
				want := math.Max(before*cfg.Body.ShrinkMultiplier, cfg.Body.MinDiameter)
				if math.Abs(after-want) > 1e-9 {
					t.Errorf("body = %v after shrink, want %v", after, want)
				}
			default:
				if after != before {
					t.Errorf("body changed %v -> %v", before, after)
				}
			}

			if tt.want == events.Ineligible {
				if len(out.events) != 0 {
					t.Errorf("ineligible contact emitted %d events", len(out.events))
				}
				return
			}
			if len(out.events) != 1 || out.events[0].Type != events.ConsumptionResolved {
				t.Fatalf("events = %v, want one ConsumptionResolved", out.events)
			}
			got := out.events[0].Payload.(events.Consumption)
			if got.Outcome != tt.want || got.Diameter != tt.diameter || got.Category != cat {
				t.Errorf("payload = %+v", got)
			}
			if got.Shielded != tt.shielded {
				t.Errorf("Shielded = %v, want %v", got.Shielded, tt.shielded)
			}
		})
	}
}

func TestResolveResetsMergeStateOnCorrect(t *testing.T) {
	r, body, _, _ := newTestResolver(2)
	m := &components.Merge{Count: 2, LastMerge: 1, OrbitUntil: 9}
	e := components.Edible{Category: body.Target(), Diameter: 10, Score: 10}
	r.Resolve(4, body, Contact{Edible: e, Merge: m})
	if *m != (components.Merge{}) {
		t.Errorf("merge state = %+v after consumption, want zero", *m)
	}
}

func TestResolveCarriesDangerFlag(t *testing.T) {
	r, body, out, _ := newTestResolver(3)
	other := components.Category2
	if other == body.Target() {
		other = components.Category1
	}
	r.Resolve(1, body, Contact{Edible: components.Edible{Category: other, Diameter: 10}, InDanger: true})
	if !out.events[0].Payload.(events.Consumption).InDanger {
		t.Error("danger flag lost")
	}
	if r.Resolved(events.Incorrect) != 1 || r.Resolved(events.Correct) != 0 {
		t.Error("outcome counters wrong")
	}
}

func TestShrinkNeverBelowMinimum(t *testing.T) {
	r, body, _, cfg := newTestResolver(4)
	other := components.Category2
	if other == body.Target() {
		other = components.Category1
	}
	for i := 0; i < 50; i++ {
		r.Resolve(float64(i), body, Contact{Edible: components.Edible{Category: other, Diameter: 1}})
		body.PassiveDecay(1)
		if body.Diameter() < cfg.Body.MinDiameter {
			t.Fatalf("diameter %v below minimum", body.Diameter())
		}
	}
}

func TestApplyScoreFloor(t *testing.T) {
	r, _, _, cfg := newTestResolver(5)
	if got := r.ApplyScore(3, -5); got != 0 {
		t.Errorf("ApplyScore(3, -5) = %d, want 0", got)
	}
	cfg.Collision.ScoreFloorZero = false
	noFloor := NewCollisionResolver(cfg, nil)
	if got := noFloor.ApplyScore(3, -5); got != -2 {
		t.Errorf("ApplyScore without floor = %d, want -2", got)
	}
}

func TestOrbitMerge(t *testing.T) {
	cfg := config.Default()
	rule := NewOrbitMerge(cfg)

	mk := func(cat components.Category, d float64, x float64) MergeCandidate {
		return MergeCandidate{
			Edible: &components.Edible{Category: cat, Diameter: d},
			Merge:  &components.Merge{},
			Pos:    r2.Vec{X: x},
		}
	}

	t.Run("same category merges into larger", func(t *testing.T) {
		a, b := mk(components.Category2, 42, 0), mk(components.Category2, 56, 30)
		ok, keepA := rule.TryMerge(5, a, b)
		if !ok || keepA {
			t.Fatalf("TryMerge = %v, %v; want b to survive", ok, keepA)
		}
		if want := 70.0; math.Abs(b.Edible.Diameter-want) > 1e-9 {
			t.Errorf("survivor diameter %v, want %v", b.Edible.Diameter, want)
		}
		if b.Merge.Count != 1 || b.Merge.LastMerge != 5 || !b.Merge.Orbiting(6) {
			t.Errorf("survivor merge state = %+v", *b.Merge)
		}
		if b.Merge.Orbiting(5 + cfg.Merge.OrbitalDuration) {
			t.Error("orbit outlived its duration")
		}
	})

	t.Run("area sum clamped to category range", func(t *testing.T) {
		a, b := mk(components.Category1, 28, 0), mk(components.Category1, 28, 10)
		rule.TryMerge(0, a, b)
		if a.Edible.Diameter != cfg.Categories[0].MaxDiameter {
			t.Errorf("diameter %v, want clamp %v", a.Edible.Diameter, cfg.Categories[0].MaxDiameter)
		}
	})

	t.Run("different categories do not merge", func(t *testing.T) {
		a, b := mk(components.Category1, 20, 0), mk(components.Category2, 50, 10)
		if ok, _ := rule.TryMerge(0, a, b); ok {
			t.Error("merged across categories")
		}
	})

	t.Run("cooldown and cap", func(t *testing.T) {
		a := mk(components.Category3, 100, 0)
		for i := 0; i < cfg.Merge.MaxMerges+2; i++ {
			now := float64(i) * (cfg.Merge.Cooldown + 0.1)
			b := mk(components.Category3, 80, 5)
			ok, _ := rule.TryMerge(now, a, b)
			if i < cfg.Merge.MaxMerges && !ok {
				t.Fatalf("merge %d refused", i)
			}
			if i >= cfg.Merge.MaxMerges && ok {
				t.Fatalf("merge %d past cap accepted", i)
			}
			a.Edible.Diameter = 100
		}
		c := mk(components.Category3, 100, 0)
		rule.TryMerge(0, c, mk(components.Category3, 80, 5))
		if ok, _ := rule.TryMerge(cfg.Merge.Cooldown/2, c, mk(components.Category3, 80, 5)); ok {
			t.Error("merged inside cooldown")
		}
	})
}

func TestAdvanceOrbitKeepsRadius(t *testing.T) {
	m := &components.Merge{OrbitX: 10, OrbitY: -4, OrbitRadius: 25}
	for i := 0; i < 100; i++ {
		p := AdvanceOrbit(m, 1.5, 0.05)
		if r := r2.Norm(r2.Sub(p, r2.Vec{X: 10, Y: -4})); math.Abs(r-25) > 1e-9 {
			t.Fatalf("orbit radius drifted to %v", r)
		}
	}
}
