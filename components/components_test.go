package components

import (
	"math"
	"testing"
)

func TestCategoryIndexRoundTrip(t *testing.T) {
	for i := 0; i < CategoryCount; i++ {
		c := CategoryFromIndex(i)
		if !c.Valid() {
			t.Fatalf("CategoryFromIndex(%d) = %v, not valid", i, c)
		}
		if c.Index() != i {
			t.Errorf("Index() = %d, want %d", c.Index(), i)
		}
	}
	if CategoryNone.Valid() {
		t.Error("CategoryNone should not be valid")
	}
	if Category(6).Valid() {
		t.Error("Category(6) should not be valid")
	}
}

func TestLifetimeScale(t *testing.T) {
	tests := []struct {
		name string
		l    Lifetime
		now  float64
		want float64
	}{
		{"no fade", Lifetime{SpawnedAt: 5}, 5, 1},
		{"start", Lifetime{SpawnedAt: 5, FadeIn: 2}, 5, 0},
		{"halfway", Lifetime{SpawnedAt: 5, FadeIn: 2}, 6, 0.5},
		{"done", Lifetime{SpawnedAt: 5, FadeIn: 2}, 9, 1},
		{"before spawn", Lifetime{SpawnedAt: 5, FadeIn: 2}, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.l.Scale(tt.now); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Scale(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestLifetimeExpired(t *testing.T) {
	l := Lifetime{SpawnedAt: 0, ExpiresAt: 10}
	if l.Expired(9.9) {
		t.Error("expired too early")
	}
	if !l.Expired(10) {
		t.Error("should be expired at ExpiresAt")
	}
	forever := Lifetime{}
	if forever.Expired(1e9) {
		t.Error("zero ExpiresAt should never expire")
	}
}

func TestPowerUpAt(t *testing.T) {
	p := PowerUp{StartX: 0, StartY: 0, EndX: 100, EndY: 50, Start: 10, Duration: 4}

	x, y, done := p.At(12)
	if done || math.Abs(x-50) > 1e-9 || math.Abs(y-25) > 1e-9 {
		t.Errorf("At(12) = (%v, %v, %v), want (50, 25, false)", x, y, done)
	}

	x, y, done = p.At(14)
	if !done || x != 100 || y != 50 {
		t.Errorf("At(14) = (%v, %v, %v), want (100, 50, true)", x, y, done)
	}
}

func TestMergeReset(t *testing.T) {
	m := Merge{Count: 2, LastMerge: 3, OrbitUntil: 8}
	if !m.Orbiting(5) {
		t.Error("should be orbiting before OrbitUntil")
	}
	m.Reset()
	if m.Count != 0 || m.Orbiting(5) {
		t.Errorf("Reset left state %+v", m)
	}
}
