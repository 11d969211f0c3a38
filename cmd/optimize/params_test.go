package main

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/gobble/config"
	"github.com/pthm-cable/gobble/telemetry"
)

func TestDefaultsMatchEmbeddedConfig(t *testing.T) {
	pv := NewParamVector()
	got := pv.ExtractFromConfig(config.Default())
	if len(got) != pv.Dim() {
		t.Fatalf("extracted %d values, want %d", len(got), pv.Dim())
	}
	for i, spec := range pv.Specs {
		if math.Abs(got[i]-spec.Default) > 1e-9 {
			t.Errorf("%s: config has %v, spec default %v", spec.Name, got[i], spec.Default)
		}
	}
}

func TestAnyPointInRangeIsValid(t *testing.T) {
	pv := NewParamVector()
	rng := rand.New(rand.NewSource(7))

	corners := [][]float64{make([]float64, pv.Dim()), make([]float64, pv.Dim())}
	for i := range corners[1] {
		corners[1][i] = 1
	}
	for range 50 {
		x := make([]float64, pv.Dim())
		for i := range x {
			x[i] = rng.Float64()
		}
		corners = append(corners, x)
	}

	for _, x := range corners {
		cfg := config.Default()
		pv.ApplyToConfig(cfg, pv.Denormalize(x))
		if err := cfg.Validate(); err != nil {
			t.Fatalf("point %v produced invalid config: %v", x, err)
		}
	}
}

func TestApplyClampsOutOfRange(t *testing.T) {
	pv := NewParamVector()
	x := make([]float64, pv.Dim())
	for i := range x {
		x[i] = 5 // far outside [0, 1]
	}
	cfg := config.Default()
	pv.ApplyToConfig(cfg, pv.Denormalize(x))

	got := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		if got[i] > spec.Max+1e-9 {
			t.Errorf("%s = %v exceeds max %v", spec.Name, got[i], spec.Max)
		}
	}
}

func TestComputeQuality(t *testing.T) {
	fe := NewFitnessEvaluator(NewParamVector(), 100, []int64{1}, "", 4, 240)

	t.Run("too few windows", func(t *testing.T) {
		if q := fe.computeQuality(make([]telemetry.WindowStats, 2), 60); q != 0 {
			t.Errorf("quality = %v, want 0", q)
		}
	})

	t.Run("ideal session scores high", func(t *testing.T) {
		var windows []telemetry.WindowStats
		d := 40.0
		for range 10 {
			windows = append(windows, telemetry.WindowStats{
				Diameter:  d,
				Live:      42,
				Correct:   8,
				Incorrect: 2,
				Accuracy:  0.8,
			})
			d *= 1.1
		}
		q := fe.computeQuality(windows, 60)
		if q < 0.9 || q > 1 {
			t.Errorf("quality = %v, want in [0.9, 1]", q)
		}
	})
}

func TestComputeFitnessPrefersOnPace(t *testing.T) {
	fe := NewFitnessEvaluator(NewParamVector(), 100, []int64{1}, "", 4, 240)

	onPace := fe.computeFitness(&runResult{reachedSec: 240}, 0)
	late := fe.computeFitness(&runResult{reachedSec: 400}, 0)
	missed := fe.computeFitness(&runResult{
		reachedSec:  math.Inf(1),
		windowStats: []telemetry.WindowStats{{Phase: 3}},
	}, 0)
	invalid := fe.computeFitness(&runResult{invalid: true}, 1)

	if !(onPace < late && late < missed && missed < invalid) {
		t.Errorf("fitness ordering wrong: onPace=%v late=%v missed=%v invalid=%v", onPace, late, missed, invalid)
	}
}
