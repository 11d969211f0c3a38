// Package config provides configuration loading and validation for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// NumCategories is the number of ordered entity tiers.
const NumCategories = 5

// NumPhases is the number of growth phases.
const NumPhases = 5

// sumTolerance is the allowed drift when checking that probability tables sum to 1.
const sumTolerance = 1e-9

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Body       BodyConfig       `yaml:"body"`
	Categories []CategoryConfig `yaml:"categories"`
	Predictor  PredictorConfig  `yaml:"predictor"`
	Spawn      SpawnConfig      `yaml:"spawn"`
	PowerUps   PowerUpConfig    `yaml:"powerups"`
	Formation  FormationConfig  `yaml:"formation"`
	Collision  CollisionConfig  `yaml:"collision"`
	Merge      MergeConfig      `yaml:"merge"`
	Danger     DangerConfig     `yaml:"danger"`
	Camera     CameraConfig     `yaml:"camera"`
	Autopilot  AutopilotConfig  `yaml:"autopilot"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Milestones MilestonesConfig `yaml:"milestones"`
	Store      StoreConfig      `yaml:"store"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig holds simulation stepping parameters.
type PhysicsConfig struct {
	DT           float64 `yaml:"dt"`             // Seconds per tick
	GridCellSize float64 `yaml:"grid_cell_size"` // Spatial hash cell size in world units
}

// BodyConfig holds consumer body growth parameters.
type BodyConfig struct {
	InitialDiameter  float64   `yaml:"initial_diameter"`
	MinDiameter      float64   `yaml:"min_diameter"`
	MinGrowthPercent float64   `yaml:"min_growth_percent"` // Lower bound of the per-consumption growth draw
	MaxGrowthPercent float64   `yaml:"max_growth_percent"` // Upper bound of the per-consumption growth draw
	PenaltyThreshold float64   `yaml:"penalty_threshold"`  // Diameter at which growth is fully penalized
	MinSizePenalty   float64   `yaml:"min_size_penalty"`   // Growth multiplier at/above the threshold
	ShrinkMultiplier float64   `yaml:"shrink_multiplier"`  // Applied on wrong-category consumption
	DecayRate        float64   `yaml:"decay_rate"`         // Diameter lost per second regardless of size
	PhaseThresholds  []float64 `yaml:"phase_thresholds"`   // Upper diameter bounds of phases 1..4
	TargetInterval   float64   `yaml:"target_interval"`    // Seconds between target category re-draws
	MoveSpeed        float64   `yaml:"move_speed"`         // Max player speed in world units per second
}

// CategoryConfig describes one entity tier.
type CategoryConfig struct {
	Name        string  `yaml:"name"`
	MinDiameter float64 `yaml:"min_diameter"`
	MaxDiameter float64 `yaml:"max_diameter"`
	Score       int     `yaml:"score"` // Points for a correct consumption
	Mass        float64 `yaml:"mass"`  // Mass multiplier handed to the physics world
}

// PredictorConfig holds movement predictor parameters.
type PredictorConfig struct {
	Capacity            int     `yaml:"capacity"`             // Position history ring size
	StationaryThreshold float64 `yaml:"stationary_threshold"` // Speed below which the player counts as stationary
	Lookahead           float64 `yaml:"lookahead"`            // Seconds ahead used to centre the spawn frame
}

// SpawnConfig holds spawn director parameters.
type SpawnConfig struct {
	BaseInterval   float64     `yaml:"base_interval"`   // Seconds between spawn attempts for small bodies
	MinInterval    float64     `yaml:"min_interval"`    // Floor for the accelerated interval
	AccelThreshold float64     `yaml:"accel_threshold"` // Diameter past which spawns accelerate
	MaxEntities    int         `yaml:"max_entities"`    // Live entity cap
	EdgeDistance   float64     `yaml:"edge_distance"`   // Distance from the player to the spawn edge
	EdgeSpread     float64     `yaml:"edge_spread"`     // Max tangent offset along the edge
	DriftSpeedMin  float64     `yaml:"drift_speed_min"`
	DriftSpeedMax  float64     `yaml:"drift_speed_max"`
	Lifetime       float64     `yaml:"lifetime"`         // Seconds before an untouched entity times out
	CleanupDist    float64     `yaml:"cleanup_distance"` // Entities further than this from the player are removed
	PhaseBands     [][]float64 `yaml:"phase_bands"`      // Per-phase category probabilities (rows sum to 1)
}

// PowerUpKindConfig holds per-kind scheduling parameters.
type PowerUpKindConfig struct {
	Name        string  `yaml:"name"`
	IntervalMin float64 `yaml:"interval_min"`
	IntervalMax float64 `yaml:"interval_max"`
}

// PowerUpConfig holds power-up scheduler parameters.
type PowerUpConfig struct {
	Kinds             []PowerUpKindConfig `yaml:"kinds"`
	Cooldown          float64             `yaml:"cooldown"`      // Global block after a collection
	InitialDelay      float64             `yaml:"initial_delay"` // Added to the first schedule of each kind
	MaxActive         int                 `yaml:"max_active"`
	Speed             float64             `yaml:"speed"`              // Trajectory speed in world units per second
	OffscreenDistance float64             `yaml:"offscreen_distance"` // Start/end distance from the player
	Diameter          float64             `yaml:"diameter"`
	ShieldDuration    float64             `yaml:"shield_duration"`
}

// PatternConfig holds the parameters of one formation shape.
type PatternConfig struct {
	Weight   float64 `yaml:"weight"`
	CountMin int     `yaml:"count_min"`
	CountMax int     `yaml:"count_max"`
	Radius   float64 `yaml:"radius"`
	Spacing  float64 `yaml:"spacing"`
}

// FormationConfig holds formation generator parameters.
type FormationConfig struct {
	IntervalMin  float64       `yaml:"interval_min"`
	IntervalMax  float64       `yaml:"interval_max"`
	Distance     float64       `yaml:"distance"`      // Distance from the player to the formation centre
	FadeIn       float64       `yaml:"fade_in"`       // Seconds to scale entities in
	RadiusJitter float64       `yaml:"radius_jitter"` // Per-entity radius jitter for clusters (fraction)
	Cluster      PatternConfig `yaml:"cluster"`
	Line         PatternConfig `yaml:"line"`
	Arc          PatternConfig `yaml:"arc"`
	Scattered    PatternConfig `yaml:"scattered"`
}

// CollisionConfig holds scoring parameters.
type CollisionConfig struct {
	IncorrectScore int  `yaml:"incorrect_score"` // Negative points for wrong-category consumption
	ScoreFloorZero bool `yaml:"score_floor_zero"`
}

// MergeConfig holds entity-entity merge parameters.
type MergeConfig struct {
	Enabled         bool    `yaml:"enabled"`
	MaxMerges       int     `yaml:"max_merges"`
	Cooldown        float64 `yaml:"cooldown"`
	OrbitalSpeed    float64 `yaml:"orbital_speed"` // Radians per second
	OrbitalDuration float64 `yaml:"orbital_duration"`
}

// DangerConfig holds danger-zone detection parameters.
type DangerConfig struct {
	Radius        float64 `yaml:"radius"`         // Distance between edges counted as danger
	PulseInterval float64 `yaml:"pulse_interval"` // Seconds between haptic pulses
}

// CameraConfig holds follow camera parameters.
type CameraConfig struct {
	Smoothing   float64 `yaml:"smoothing"`     // Fraction of the remaining distance closed per second
	BaseZoom    float64 `yaml:"base_zoom"`     // Zoom at the initial diameter
	MinZoom     float64 `yaml:"min_zoom"`      // Zoom floor for large bodies
	ZoomPerUnit float64 `yaml:"zoom_per_unit"` // Zoom lost per unit of diameter above initial
}

// AutopilotConfig holds the headless input source parameters.
type AutopilotConfig struct {
	SenseRadius  float64 `yaml:"sense_radius"`
	WanderChange float64 `yaml:"wander_change"` // Max heading change per second while wandering
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	MilestoneHistory    int     `yaml:"milestone_history"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// MilestonesConfig holds milestone detection thresholds.
type MilestonesConfig struct {
	CrashDropPercent  float64 `yaml:"crash_drop_percent"`
	StreakAccuracy    float64 `yaml:"streak_accuracy"`
	StreakMinConsumed int     `yaml:"streak_min_consumed"`
}

// StoreConfig holds the persistent stats store location.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	CumulativeBands   [][]float64 // Per-phase cumulative category probabilities
	PatternCumulative []float64   // Cumulative cluster, scattered, line, arc weights
	CleanupDistSq     float64
}

// Default returns the embedded default configuration.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	cfg.computeDerived()

	return cfg, nil
}

// Validate checks the static tables and ranges. Malformed tables are
// configuration errors and must be caught here rather than during a run.
func (c *Config) Validate() error {
	b := c.Body
	if b.MinDiameter <= 0 {
		return fmt.Errorf("body.min_diameter must be positive, got %v", b.MinDiameter)
	}
	if b.InitialDiameter < b.MinDiameter {
		return fmt.Errorf("body.initial_diameter %v below min_diameter %v", b.InitialDiameter, b.MinDiameter)
	}
	if b.MinGrowthPercent < 0 || b.MaxGrowthPercent < b.MinGrowthPercent {
		return fmt.Errorf("body growth percent range [%v, %v] is invalid", b.MinGrowthPercent, b.MaxGrowthPercent)
	}
	if b.PenaltyThreshold <= 0 {
		return fmt.Errorf("body.penalty_threshold must be positive")
	}
	if b.MinSizePenalty < 0 || b.MinSizePenalty > 1 {
		return fmt.Errorf("body.min_size_penalty must be in [0, 1], got %v", b.MinSizePenalty)
	}
	if b.ShrinkMultiplier <= 0 || b.ShrinkMultiplier > 1 {
		return fmt.Errorf("body.shrink_multiplier must be in (0, 1], got %v", b.ShrinkMultiplier)
	}
	if len(b.PhaseThresholds) != NumPhases-1 {
		return fmt.Errorf("body.phase_thresholds needs %d entries, got %d", NumPhases-1, len(b.PhaseThresholds))
	}
	for i := 1; i < len(b.PhaseThresholds); i++ {
		if b.PhaseThresholds[i] <= b.PhaseThresholds[i-1] {
			return fmt.Errorf("body.phase_thresholds must be strictly increasing")
		}
	}

	if len(c.Categories) != NumCategories {
		return fmt.Errorf("categories needs %d entries, got %d", NumCategories, len(c.Categories))
	}
	for i, cat := range c.Categories {
		if cat.MinDiameter <= 0 || cat.MaxDiameter < cat.MinDiameter {
			return fmt.Errorf("category %q has invalid diameter range", cat.Name)
		}
		if i > 0 && cat.MinDiameter <= c.Categories[i-1].MinDiameter {
			return fmt.Errorf("category %q is not larger than %q", cat.Name, c.Categories[i-1].Name)
		}
		if i > 0 && cat.MinDiameter <= c.Categories[i-1].MaxDiameter {
			return fmt.Errorf("category %q overlaps %q", cat.Name, c.Categories[i-1].Name)
		}
	}

	if c.Predictor.Capacity < 3 {
		return fmt.Errorf("predictor.capacity must be at least 3, got %d", c.Predictor.Capacity)
	}

	s := c.Spawn
	if s.MinInterval <= 0 || s.BaseInterval < s.MinInterval {
		return fmt.Errorf("spawn interval range [%v, %v] is invalid", s.MinInterval, s.BaseInterval)
	}
	if len(s.PhaseBands) != NumPhases {
		return fmt.Errorf("spawn.phase_bands needs %d rows, got %d", NumPhases, len(s.PhaseBands))
	}
	for i, row := range s.PhaseBands {
		if len(row) != NumCategories {
			return fmt.Errorf("spawn.phase_bands[%d] needs %d columns, got %d", i, NumCategories, len(row))
		}
		for _, p := range row {
			if p < 0 {
				return fmt.Errorf("spawn.phase_bands[%d] has a negative probability", i)
			}
		}
		if sum := floats.Sum(row); math.Abs(sum-1) > sumTolerance {
			return fmt.Errorf("spawn.phase_bands[%d] sums to %v, want 1", i, sum)
		}
	}

	p := c.PowerUps
	if len(p.Kinds) != 2 {
		return fmt.Errorf("powerups.kinds needs 2 entries, got %d", len(p.Kinds))
	}
	for _, k := range p.Kinds {
		if k.IntervalMin < 0 || k.IntervalMax < k.IntervalMin {
			return fmt.Errorf("powerup %q has invalid interval range", k.Name)
		}
	}
	if p.MaxActive < 1 || p.Speed <= 0 {
		return fmt.Errorf("powerups.max_active and powerups.speed must be positive")
	}

	f := c.Formation
	if f.IntervalMin <= 0 || f.IntervalMax < f.IntervalMin {
		return fmt.Errorf("formation interval range [%v, %v] is invalid", f.IntervalMin, f.IntervalMax)
	}
	for name, pat := range f.patterns() {
		if pat.CountMin < 1 || pat.CountMax < pat.CountMin {
			return fmt.Errorf("formation.%s count range [%d, %d] is invalid", name, pat.CountMin, pat.CountMax)
		}
	}
	weights := f.weights()
	if sum := floats.Sum(weights); math.Abs(sum-1) > sumTolerance {
		return fmt.Errorf("formation pattern weights sum to %v, want 1", sum)
	}

	return nil
}

func (f FormationConfig) patterns() map[string]PatternConfig {
	return map[string]PatternConfig{
		"cluster":   f.Cluster,
		"line":      f.Line,
		"arc":       f.Arc,
		"scattered": f.Scattered,
	}
}

// weights returns pattern weights in selection order: cluster, scattered, line, arc.
func (f FormationConfig) weights() []float64 {
	return []float64{f.Cluster.Weight, f.Scattered.Weight, f.Line.Weight, f.Arc.Weight}
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.CumulativeBands = make([][]float64, len(c.Spawn.PhaseBands))
	for i, row := range c.Spawn.PhaseBands {
		c.Derived.CumulativeBands[i] = floats.CumSum(make([]float64, len(row)), row)
	}

	weights := c.Formation.weights()
	c.Derived.PatternCumulative = floats.CumSum(make([]float64, len(weights)), weights)

	c.Derived.CleanupDistSq = c.Spawn.CleanupDist * c.Spawn.CleanupDist
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
