package systems

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gobble/components"
	"github.com/pthm-cable/gobble/config"
)

type fakeBody struct {
	phase    int
	diameter float64
}

func (b fakeBody) Phase() int        { return b.phase }
func (b fakeBody) Diameter() float64 { return b.diameter }

type fakeBias struct {
	pos     r2.Vec
	weights []EdgeWeight
}

func (b fakeBias) CurrentSpawnWeights() []EdgeWeight { return b.weights }
func (b fakeBias) PredictedPosition(float64) r2.Vec  { return b.pos }

func newTestDirector(seed int64) (*SpawnDirector, *config.Config) {
	cfg := config.Default()
	return NewSpawnDirector(cfg, rand.New(rand.NewSource(seed))), cfg
}

func TestPhaseBandsSumToOne(t *testing.T) {
	cfg := config.Default()
	for i, row := range cfg.Spawn.PhaseBands {
		var sum float64
		for _, p := range row {
			sum += p
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("phase %d bands sum to %v", i+1, sum)
		}
	}
}

func TestCategoryForDrawBands(t *testing.T) {
	cum := config.Default().Derived.CumulativeBands
	tests := []struct {
		phase int
		u     float64
		want  components.Category
	}{
		{1, 0.0, components.Category1},
		{1, 0.69, components.Category1},
		{1, 0.71, components.Category2},
		{1, 0.9999, components.Category2},
		{2, 0.44, components.Category1},
		{2, 0.46, components.Category2},
		{2, 0.71, components.Category3},
		{3, 0.24, components.Category1},
		{3, 0.44, components.Category2},
		{3, 0.69, components.Category3},
		{3, 0.71, components.Category4},
		{4, 0.76, components.Category5},
		{5, 0.14, components.Category1},
		{5, 0.24, components.Category2},
		{5, 0.44, components.Category3},
		{5, 0.69, components.Category4},
		{5, 0.71, components.Category5},
		{0, 0.9, components.Category2}, // clamped to phase 1
		{9, 0.9, components.Category5}, // clamped to phase 5
	}
	for _, tt := range tests {
		if got := CategoryForDraw(cum, tt.phase, tt.u); got != tt.want {
			t.Errorf("CategoryForDraw(phase %d, %v) = %v, want %v", tt.phase, tt.u, got, tt.want)
		}
	}
}

func TestSelectEntityTypeFrequencies(t *testing.T) {
	d, cfg := newTestDirector(1)
	const n = 40000
	for phase := 1; phase <= config.NumPhases; phase++ {
		counts := make([]int, components.CategoryCount)
		for i := 0; i < n; i++ {
			counts[d.SelectEntityType(phase).Index()]++
		}
		for c, want := range cfg.Spawn.PhaseBands[phase-1] {
			got := float64(counts[c]) / n
			if math.Abs(got-want) > 0.015 {
				t.Errorf("phase %d category %d: frequency %.3f, want %.2f", phase, c+1, got, want)
			}
		}
	}
}

func TestSelectSpawnPositionOnEdge(t *testing.T) {
	d, _ := newTestDirector(2)
	player := r2.Vec{X: 100, Y: -50}

	for _, dir := range []Direction{DirNorth, DirSouthEast, DirStationary} {
		weights := SpawnWeights(dir)
		for i := 0; i < 200; i++ {
			pos, edge := d.SelectSpawnPosition(weights, player, 500)
			rel := r2.Sub(pos, player)
			along := r2.Dot(rel, edge.Normal())
			if math.Abs(along-500) > 1e-6 {
				t.Fatalf("%v: spawn %v is %.3f along edge %v normal, want 500", dir, pos, along, edge)
			}
			if dir == DirStationary && edge%2 == 1 {
				t.Fatalf("stationary bias picked diagonal edge %v", edge)
			}
		}
	}
}

func TestSelectSpawnPositionFollowsBias(t *testing.T) {
	d, _ := newTestDirector(3)
	counts := make(map[Edge]int)
	const n = 20000
	for i := 0; i < n; i++ {
		_, e := d.SelectSpawnPosition(SpawnWeights(DirEast), r2.Vec{}, 100)
		counts[e]++
	}
	if got := float64(counts[EdgeEast]) / n; math.Abs(got-0.5) > 0.02 {
		t.Errorf("east edge frequency %.3f, want 0.5", got)
	}
	if counts[EdgeWest] != 0 {
		t.Errorf("west edge chosen %d times while moving east", counts[EdgeWest])
	}
}

func TestSpawnIntervalAccelerates(t *testing.T) {
	d, cfg := newTestDirector(4)
	base := cfg.Spawn.BaseInterval

	if got := d.SpawnInterval(40); got != base {
		t.Errorf("small body interval = %v, want %v", got, base)
	}
	prev := d.SpawnInterval(cfg.Spawn.AccelThreshold)
	for _, diam := range []float64{200, 300, 400, 800, 5000} {
		got := d.SpawnInterval(diam)
		if got > prev {
			t.Errorf("interval increased from %v to %v at diameter %v", prev, got, diam)
		}
		if got < cfg.Spawn.MinInterval {
			t.Errorf("interval %v below minimum %v", got, cfg.Spawn.MinInterval)
		}
		prev = got
	}
	if got := d.SpawnInterval(1e6); got != cfg.Spawn.MinInterval {
		t.Errorf("huge body interval = %v, want floor %v", got, cfg.Spawn.MinInterval)
	}
}

func TestUpdateRespectsTimerAndCap(t *testing.T) {
	d, cfg := newTestDirector(5)
	body := fakeBody{phase: 1, diameter: 40}
	bias := fakeBias{pos: r2.Vec{X: 10, Y: 10}, weights: SpawnWeights(DirStationary)}

	req, ok := d.Update(0, body, bias, 0)
	if !ok {
		t.Fatal("first update should spawn")
	}
	if req.Category != components.Category1 && req.Category != components.Category2 {
		t.Errorf("phase 1 spawned %v", req.Category)
	}
	if req.Lifetime != cfg.Spawn.Lifetime || req.Source != SourceDirector {
		t.Errorf("request = %+v", req)
	}
	// Drifts toward the player
	toPlayer := r2.Sub(bias.pos, req.Position)
	if r2.Dot(toPlayer, req.Velocity) <= 0 {
		t.Errorf("velocity %v does not point toward player", req.Velocity)
	}

	if _, ok := d.Update(0.1, body, bias, 0); ok {
		t.Error("spawned before interval elapsed")
	}

	at := cfg.Spawn.BaseInterval + 0.01
	if _, ok := d.Update(at, body, bias, cfg.Spawn.MaxEntities); ok {
		t.Error("spawned at entity cap")
	}
	if d.Skipped() != 1 {
		t.Errorf("Skipped() = %d, want 1", d.Skipped())
	}
	// Capacity frees up: the very next tick spawns.
	if _, ok := d.Update(at+0.016, body, bias, cfg.Spawn.MaxEntities-1); !ok {
		t.Error("did not spawn once below cap")
	}
}

func TestNewSpawnRequestUsesCategoryTable(t *testing.T) {
	cfg := config.Default()
	rng := rand.New(rand.NewSource(6))
	for i := 0; i < components.CategoryCount; i++ {
		cat := components.CategoryFromIndex(i)
		tier := cfg.Categories[i]
		for j := 0; j < 50; j++ {
			req := NewSpawnRequest(rng, cfg.Categories, cat, r2.Vec{})
			if req.Diameter < tier.MinDiameter || req.Diameter > tier.MaxDiameter {
				t.Fatalf("%v diameter %v outside [%v, %v]", cat, req.Diameter, tier.MinDiameter, tier.MaxDiameter)
			}
			if req.Score != tier.Score || req.Mass != tier.Mass {
				t.Fatalf("%v score/mass = %d/%v", cat, req.Score, req.Mass)
			}
		}
	}
}
