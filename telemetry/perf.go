package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for the simulation step.
const (
	PhasePredictor = "predictor"
	PhaseSpawn     = "spawn"
	PhaseFormation = "formation"
	PhasePowerUps  = "powerups"
	PhaseMovement  = "movement"
	PhaseContacts  = "contacts"
	PhaseEvents    = "events"
	PhaseCleanup   = "cleanup"
	PhaseTelemetry = "telemetry"
)

// phaseOrder lists phases in pipeline order. A phase's slot in tickTiming
// is its index here.
var phaseOrder = [...]string{
	PhasePredictor, PhaseSpawn, PhaseFormation,
	PhasePowerUps, PhaseMovement, PhaseContacts,
	PhaseEvents, PhaseCleanup, PhaseTelemetry,
}

const numPhases = len(phaseOrder)

// noPhase marks time outside any known phase.
const noPhase = -1

func phaseSlot(name string) int {
	for i, p := range phaseOrder {
		if p == name {
			return i
		}
	}
	return noPhase
}

// tickTiming is one recorded tick.
type tickTiming struct {
	total  time.Duration
	phases [numPhases]time.Duration
}

// PerfCollector times simulation ticks over a rolling window. Window sums
// are kept incrementally: a sample's durations are subtracted when the
// ring overwrites it.
type PerfCollector struct {
	now func() time.Time

	ring   []tickTiming
	next   int
	filled int

	sumTotal  time.Duration
	sumPhases [numPhases]time.Duration

	cur       tickTiming
	tickBegan time.Time
	slot      int
	slotBegan time.Time

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
// Non-positive sizes fall back to one second at 60 ticks per second.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		now:  time.Now,
		ring: make([]tickTiming, windowSize),
		slot: noPhase,
	}
}

// StartTick begins timing a tick.
func (p *PerfCollector) StartTick() {
	p.tickBegan = p.now()
	p.cur = tickTiming{}
	p.slot = noPhase
}

// StartPhase closes the running phase and opens the named one. Names
// outside the pipeline still count toward the tick total.
func (p *PerfCollector) StartPhase(phase string) {
	t := p.now()
	p.closePhase(t)
	p.slot = phaseSlot(phase)
	p.slotBegan = t
}

func (p *PerfCollector) closePhase(t time.Time) {
	if p.slot != noPhase {
		p.cur.phases[p.slot] += t.Sub(p.slotBegan)
	}
}

// EndTick closes the tick and pushes it into the window.
func (p *PerfCollector) EndTick() {
	t := p.now()
	p.closePhase(t)
	p.slot = noPhase
	p.cur.total = t.Sub(p.tickBegan)

	if p.filled == len(p.ring) {
		old := p.ring[p.next]
		p.sumTotal -= old.total
		for i := range numPhases {
			p.sumPhases[i] -= old.phases[i]
		}
	} else {
		p.filled++
	}

	p.ring[p.next] = p.cur
	p.sumTotal += p.cur.total
	for i := range numPhases {
		p.sumPhases[i] += p.cur.phases[i]
	}
	p.next = (p.next + 1) % len(p.ring)
}

// RecordFrame marks a rendered frame. Only the graphical loop calls it.
func (p *PerfCollector) RecordFrame() {
	t := p.now()
	if !p.lastFrame.IsZero() {
		p.frame = t.Sub(p.lastFrame)
	}
	p.lastFrame = t
}

// PerfStats aggregates the current window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Average duration and share of the tick, keyed by phase name.
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats computes the window aggregates.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		PhaseAvg:      make(map[string]time.Duration, numPhases),
		PhasePct:      make(map[string]float64, numPhases),
		FrameDuration: p.frame,
	}
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.filled == 0 {
		return s
	}

	n := time.Duration(p.filled)
	s.AvgTickDuration = p.sumTotal / n
	s.MinTickDuration = p.ring[0].total
	for _, tt := range p.ring[:p.filled] {
		s.MinTickDuration = min(s.MinTickDuration, tt.total)
		s.MaxTickDuration = max(s.MaxTickDuration, tt.total)
	}

	for i, name := range phaseOrder {
		if p.sumPhases[i] == 0 {
			continue
		}
		avg := p.sumPhases[i] / n
		s.PhaseAvg[name] = avg
		if s.AvgTickDuration > 0 {
			s.PhasePct[name] = float64(avg) / float64(s.AvgTickDuration) * 100
		}
	}

	if s.AvgTickDuration > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTickDuration)
	}
	return s
}

// LogStats logs a compact line; phases under 0.1% are left out.
func (s PerfStats) LogStats() {
	args := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"min_tick_us", s.MinTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	if s.FPS > 0 {
		args = append(args, "fps", int(s.FPS))
	}
	for _, name := range phaseOrder {
		if pct := s.PhasePct[name]; pct > 0.1 {
			args = append(args, name+"_pct", float64(int(pct*10))/10)
		}
	}
	slog.Info("perf", args...)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, name := range phaseOrder {
		if pct, ok := s.PhasePct[name]; ok {
			attrs = append(attrs, slog.Float64(name+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	PredictorPct float64 `csv:"predictor_pct"`
	SpawnPct     float64 `csv:"spawn_pct"`
	FormationPct float64 `csv:"formation_pct"`
	PowerUpsPct  float64 `csv:"powerups_pct"`
	MovementPct  float64 `csv:"movement_pct"`
	ContactsPct  float64 `csv:"contacts_pct"`
	EventsPct    float64 `csv:"events_pct"`
	CleanupPct   float64 `csv:"cleanup_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	pct := s.PhasePct
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		PredictorPct: pct[PhasePredictor],
		SpawnPct:     pct[PhaseSpawn],
		FormationPct: pct[PhaseFormation],
		PowerUpsPct:  pct[PhasePowerUps],
		MovementPct:  pct[PhaseMovement],
		ContactsPct:  pct[PhaseContacts],
		EventsPct:    pct[PhaseEvents],
		CleanupPct:   pct[PhaseCleanup],
		TelemetryPct: pct[PhaseTelemetry],
	}
}
