package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestSpawnWeightsSumToOne(t *testing.T) {
	for d := Direction(0); d < NumDirections; d++ {
		var sum float64
		for _, w := range SpawnWeights(d) {
			sum += w.Weight
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("direction %v weights sum to %v, want 1", d, sum)
		}
	}
}

func TestSpawnWeightsShape(t *testing.T) {
	weightOf := func(ws []EdgeWeight, e Edge) float64 {
		for _, w := range ws {
			if w.Edge == e {
				return w.Weight
			}
		}
		return 0
	}

	north := SpawnWeights(DirNorth)
	if weightOf(north, EdgeNorth) != 0.5 || weightOf(north, EdgeNorthEast) != 0.2 ||
		weightOf(north, EdgeNorthWest) != 0.2 || weightOf(north, EdgeEast) != 0.05 ||
		weightOf(north, EdgeWest) != 0.05 || weightOf(north, EdgeSouth) != 0 {
		t.Errorf("north weights = %v", north)
	}

	sw := SpawnWeights(DirSouthWest)
	if weightOf(sw, EdgeSouth) != 0.35 || weightOf(sw, EdgeWest) != 0.35 || weightOf(sw, EdgeSouthWest) != 0.3 {
		t.Errorf("south-west weights = %v", sw)
	}

	still := SpawnWeights(DirStationary)
	for _, e := range []Edge{EdgeNorth, EdgeEast, EdgeSouth, EdgeWest} {
		if weightOf(still, e) != 0.25 {
			t.Errorf("stationary weight on %v = %v, want 0.25", e, weightOf(still, e))
		}
	}
	for _, e := range []Edge{EdgeNorthEast, EdgeNorthWest, EdgeSouthEast, EdgeSouthWest} {
		if weightOf(still, e) != 0 {
			t.Errorf("stationary weight on diagonal %v = %v, want 0", e, weightOf(still, e))
		}
	}

	// Mutating a returned copy must not affect the table.
	north[0].Weight = 99
	if SpawnWeights(DirNorth)[0].Weight == 99 {
		t.Error("SpawnWeights returned the shared table")
	}
}

func TestDirectionOf(t *testing.T) {
	tests := []struct {
		name string
		v    r2.Vec
		want Direction
	}{
		{"east", r2.Vec{X: 100, Y: 0}, DirEast},
		{"north", r2.Vec{X: 0, Y: 100}, DirNorth},
		{"west", r2.Vec{X: -100, Y: 0}, DirWest},
		{"south", r2.Vec{X: 0, Y: -100}, DirSouth},
		{"north-east", r2.Vec{X: 80, Y: 80}, DirNorthEast},
		{"south-east", r2.Vec{X: 80, Y: -80}, DirSouthEast},
		{"just below 2pi", r2.Vec{X: 100, Y: -1}, DirEast},
		{"slow diagonal is stationary", r2.Vec{X: 10, Y: 10}, DirStationary},
		{"rounds to nearest octant", r2.Vec{X: 100, Y: 30}, DirEast},
		{"rounds up", r2.Vec{X: 100, Y: 60}, DirNorthEast},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DirectionOf(tt.v, 50); got != tt.want {
				t.Errorf("DirectionOf(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestDirectionStableUnderScaling(t *testing.T) {
	for i := 0; i < 64; i++ {
		// Offset keeps angles away from octant boundaries.
		a := (float64(i) + 0.3) * 2 * math.Pi / 64
		v := r2.Vec{X: math.Cos(a) * 60, Y: math.Sin(a) * 60}
		want := DirectionOf(v, 50)
		for _, k := range []float64{1.5, 3, 10, 1000} {
			if got := DirectionOf(r2.Scale(k, v), 50); got != want {
				t.Errorf("angle %.3f scaled by %v: got %v, want %v", a, k, got, want)
			}
		}
	}
}

func TestPredictorBufferCapacity(t *testing.T) {
	p := NewMovementPredictor(5, 50)
	for i := 0; i < 12; i++ {
		p.RecordPosition(r2.Vec{X: float64(i)}, float64(i))
		if p.Len() > 5 {
			t.Fatalf("buffer grew to %d", p.Len())
		}
	}
	latest, ok := p.Latest()
	if !ok || latest.Pos.X != 11 {
		t.Errorf("Latest() = %v, %v; want X=11", latest, ok)
	}
	if oldest := p.recent(4); oldest.Pos.X != 7 {
		t.Errorf("oldest sample X = %v, want 7", oldest.Pos.X)
	}
}

func TestVelocityDegenerateInputs(t *testing.T) {
	p := NewMovementPredictor(5, 50)
	if v := p.Velocity(); v != (r2.Vec{}) {
		t.Errorf("empty Velocity() = %v", v)
	}
	p.RecordPosition(r2.Vec{X: 1, Y: 1}, 1)
	if v := p.Velocity(); v != (r2.Vec{}) {
		t.Errorf("single-sample Velocity() = %v", v)
	}
	p.RecordPosition(r2.Vec{X: 5, Y: 1}, 1)
	if v := p.Velocity(); v != (r2.Vec{}) {
		t.Errorf("zero-dt Velocity() = %v", v)
	}
	p.RecordPosition(r2.Vec{X: 9, Y: 1}, 0.5)
	if v := p.Velocity(); v != (r2.Vec{}) {
		t.Errorf("negative-dt Velocity() = %v", v)
	}
	if a := p.Acceleration(); a != (r2.Vec{}) {
		t.Errorf("Acceleration() with bad dt = %v", a)
	}
	if d := NewMovementPredictor(5, 50).MovementDirection(); d != DirStationary {
		t.Errorf("empty direction = %v, want stationary", d)
	}
}

func TestVelocityAndAcceleration(t *testing.T) {
	p := NewMovementPredictor(5, 50)
	// x = t² * 10  => v = 20t, a = 20
	for _, tm := range []float64{0, 0.5, 1.0} {
		p.RecordPosition(r2.Vec{X: 10 * tm * tm, Y: 3}, tm)
	}

	v := p.Velocity()
	// finite difference between t=0.5 and t=1: (10 - 2.5)/0.5 = 15
	if math.Abs(v.X-15) > 1e-9 || v.Y != 0 {
		t.Errorf("Velocity() = %v, want (15, 0)", v)
	}

	a := p.Acceleration()
	// v1 = 5, v2 = 15, averaged dt = 0.5 => 20
	if math.Abs(a.X-20) > 1e-9 || a.Y != 0 {
		t.Errorf("Acceleration() = %v, want (20, 0)", a)
	}

	pred := p.PredictedPosition(1)
	// 10 + 15*1 + 0.5*20*1 = 35
	if math.Abs(pred.X-35) > 1e-9 || math.Abs(pred.Y-3) > 1e-9 {
		t.Errorf("PredictedPosition(1) = %v, want (35, 3)", pred)
	}
}

func TestAccelerationUsesAveragedDelta(t *testing.T) {
	p := NewMovementPredictor(5, 50)
	p.RecordPosition(r2.Vec{X: 0}, 0)
	p.RecordPosition(r2.Vec{X: 10}, 1)   // v1 = 10
	p.RecordPosition(r2.Vec{X: 40}, 1.5) // v2 = 60
	a := p.Acceleration()
	// (60 - 10) / ((1 + 0.5) / 2) = 66.67
	if math.Abs(a.X-50/0.75) > 1e-9 {
		t.Errorf("Acceleration().X = %v, want %v", a.X, 50/0.75)
	}
}

func TestPredictorDirectionFromSamples(t *testing.T) {
	p := NewMovementPredictor(5, 50)
	p.RecordPosition(r2.Vec{X: 0, Y: 0}, 0)
	p.RecordPosition(r2.Vec{X: 0, Y: 10}, 0.1) // 100 units/s north
	if d := p.MovementDirection(); d != DirNorth {
		t.Errorf("MovementDirection() = %v, want N", d)
	}
	if ws := p.CurrentSpawnWeights(); ws[0].Edge != EdgeNorth {
		t.Errorf("first weight edge = %v, want N", ws[0].Edge)
	}
}

func TestEdgeNormal(t *testing.T) {
	n := EdgeNorth.Normal()
	if math.Abs(n.X) > 1e-9 || math.Abs(n.Y-1) > 1e-9 {
		t.Errorf("north normal = %v", n)
	}
	w := EdgeWest.Normal()
	if math.Abs(w.X+1) > 1e-9 || math.Abs(w.Y) > 1e-9 {
		t.Errorf("west normal = %v", w)
	}
}
