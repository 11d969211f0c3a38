// Package game wires the simulation core into an ECS world and drives it
// one tick at a time, headless or behind a raylib window.
package game

import (
	"log/slog"
	"math/rand"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gobble/camera"
	"github.com/pthm-cable/gobble/components"
	"github.com/pthm-cable/gobble/config"
	"github.com/pthm-cable/gobble/events"
	"github.com/pthm-cable/gobble/feedback"
	"github.com/pthm-cable/gobble/sched"
	"github.com/pthm-cable/gobble/store"
	"github.com/pthm-cable/gobble/systems"
	"github.com/pthm-cable/gobble/telemetry"
	"github.com/pthm-cable/gobble/ui"
)

// Options configures game initialization.
type Options struct {
	Config         *config.Config // nil = embedded defaults
	Seed           int64
	Headless       bool
	LogStats       bool
	StatsWindowSec float64 // 0 = use config
	OutputDir      string
	SnapshotDir    string
	StatsPath      string // Stats store file (empty = config, then memory only)
	StepsPerUpdate int

	Feedback      feedback.Sink         // nil = LogSink
	Entitlements  feedback.Entitlements // nil = no purchases
	Input         InputSource           // nil = autopilot headless, pointer otherwise
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete game state.
type Game struct {
	cfg     *config.Config
	world   *ecs.World
	rng     *rand.Rand
	rngSeed int64
	session string

	// Entity mappers
	edibleMapper *ecs.Map5[
		components.Position,
		components.Velocity,
		components.Edible,
		components.Lifetime,
		components.Merge,
	]
	edibleFilter *ecs.Filter5[
		components.Position,
		components.Velocity,
		components.Edible,
		components.Lifetime,
		components.Merge,
	]
	powerUpMapper *ecs.Map2[components.Position, components.PowerUp]
	powerUpFilter *ecs.Filter2[components.Position, components.PowerUp]

	// Individual component mappers for lookups
	posMap    *ecs.Map[components.Position]
	edibleMap *ecs.Map[components.Edible]
	mergeMap  *ecs.Map[components.Merge]
	puMap     *ecs.Map[components.PowerUp]

	spatialGrid *systems.SpatialGrid
	neighbors   []systems.Neighbor
	sensed      []SensedEntity

	// Simulation core
	body      *systems.GrowthEngine
	predictor *systems.MovementPredictor
	director  *systems.SpawnDirector
	powerUps  *systems.PowerUpScheduler
	formation *systems.FormationGenerator
	resolver  *systems.CollisionResolver
	mergeRule systems.MergeRule

	// Event plumbing
	queue   *events.Queue
	router  *events.Router
	tasks   *sched.Scheduler
	handoff *sched.Handoff
	barrier *sched.Barrier

	// Collaborators
	feedback     feedback.Sink
	entitlements feedback.Entitlements
	stats        *store.Store
	input        InputSource

	// Player state
	player      r2.Vec
	playerVel   r2.Vec
	score       int
	shieldUntil float64
	lastPhase   int

	// Danger zone
	inDanger    bool
	dangerPulse *sched.Token

	// Contact bookkeeping
	touching        map[ecs.Entity]bool
	touchingNext    map[ecs.Entity]bool
	pendingRemoval  []ecs.Entity
	pendingPowerUps []ecs.Entity
	removalSet      map[ecs.Entity]bool
	liveEdibles     int
	maxEdibleRadius float64

	// State
	tick           int32
	now            float64
	ready          bool
	paused         bool
	stepsPerUpdate int
	headless       bool
	playTimeAccum  float64

	// Telemetry
	collector         *telemetry.Collector
	perfCollector     *telemetry.PerfCollector
	milestoneDetector *telemetry.MilestoneDetector
	outputManager     *telemetry.OutputManager
	snapshotDir       string
	logStats          bool
	statsCallback     func(telemetry.WindowStats)

	// Rendering (nil when headless)
	camera   *camera.Camera
	hud      *ui.HUD
	settings *ui.SettingsPanel
	registry *systems.SystemRegistry
}

// NewGameWithOptions creates a new game instance. Background loads start
// immediately; the simulation clock runs once they have all completed.
func NewGameWithOptions(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	world := ecs.NewWorld()
	rng := rand.New(rand.NewSource(opts.Seed))

	stepsPerUpdate := opts.StepsPerUpdate
	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}

	g := &Game{
		cfg:     cfg,
		world:   world,
		rng:     rng,
		rngSeed: opts.Seed,
		session: uuid.NewString(),
		edibleMapper: ecs.NewMap5[
			components.Position,
			components.Velocity,
			components.Edible,
			components.Lifetime,
			components.Merge,
		](world),
		edibleFilter: ecs.NewFilter5[
			components.Position,
			components.Velocity,
			components.Edible,
			components.Lifetime,
			components.Merge,
		](world),
		powerUpMapper: ecs.NewMap2[components.Position, components.PowerUp](world),
		powerUpFilter: ecs.NewFilter2[components.Position, components.PowerUp](world),
		posMap:        ecs.NewMap[components.Position](world),
		edibleMap:     ecs.NewMap[components.Edible](world),
		mergeMap:      ecs.NewMap[components.Merge](world),
		puMap:         ecs.NewMap[components.PowerUp](world),
		spatialGrid:   systems.NewSpatialGrid(cfg.Physics.GridCellSize),
		neighbors:     make([]systems.Neighbor, 0, systems.MaxQueryResults),

		tasks:   sched.NewScheduler(),
		handoff: sched.NewHandoff(),
		queue:   events.NewQueue(),

		feedback:     opts.Feedback,
		entitlements: opts.Entitlements,
		input:        opts.Input,

		touching:     make(map[ecs.Entity]bool),
		touchingNext: make(map[ecs.Entity]bool),
		removalSet:   make(map[ecs.Entity]bool),

		stepsPerUpdate: stepsPerUpdate,
		headless:       opts.Headless,
		snapshotDir:    opts.SnapshotDir,
		logStats:       opts.LogStats,
		statsCallback:  opts.StatsCallback,
	}
	g.router = events.NewRouter(g.queue)

	if g.feedback == nil {
		g.feedback = feedback.LogSink{}
	}

	// Simulation core, constructed once and injected
	g.body = systems.NewGrowthEngine(cfg.Body, cfg.Categories, rng)
	g.predictor = systems.NewMovementPredictor(cfg.Predictor.Capacity, cfg.Predictor.StationaryThreshold)
	g.director = systems.NewSpawnDirector(cfg, rng)
	g.powerUps = systems.NewPowerUpScheduler(cfg.PowerUps, 0, rng)
	g.formation = systems.NewFormationGenerator(cfg, 0, rng)
	g.resolver = systems.NewCollisionResolver(cfg, g.queue)
	g.mergeRule = systems.NewOrbitMerge(cfg)
	g.lastPhase = g.body.Phase()
	for _, cat := range cfg.Categories {
		g.maxEdibleRadius = max(g.maxEdibleRadius, cat.MaxDiameter/2)
	}
	g.predictor.RecordPosition(g.player, 0)

	if g.input == nil {
		if opts.Headless {
			g.input = NewAutopilot(cfg.Autopilot, rand.New(rand.NewSource(opts.Seed+1)))
		} else {
			g.input = &PointerInput{}
		}
	}

	// Telemetry
	statsWindowSec := opts.StatsWindowSec
	if statsWindowSec <= 0 {
		statsWindowSec = cfg.Telemetry.StatsWindow
	}
	g.collector = telemetry.NewCollector(g.session, statsWindowSec, cfg.Physics.DT)
	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	g.milestoneDetector = telemetry.NewMilestoneDetector(cfg.Milestones, cfg.Telemetry.MilestoneHistory)

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			slog.Error("failed to create output manager", "error", err)
		} else {
			g.outputManager = om
			if err := om.WriteConfig(cfg); err != nil {
				slog.Error("failed to write config", "error", err)
			}
		}
	}

	g.registerHandlers()

	if !opts.Headless {
		g.camera = camera.New(float64(cfg.Screen.Width), float64(cfg.Screen.Height), cfg.Camera, cfg.Body.InitialDiameter)
		g.hud = ui.NewHUD()
		g.settings = ui.NewSettingsPanel(int32(cfg.Screen.Width)-290, 40, 280)
		g.registry = systems.NewSystemRegistry()
	}

	statsPath := opts.StatsPath
	if statsPath == "" {
		statsPath = cfg.Store.Path
	}
	g.startLoading(statsPath)

	slog.Info("game created",
		"session", g.session,
		"seed", opts.Seed,
		"headless", opts.Headless,
		"stats_window", statsWindowSec,
	)

	return g
}

// Tick returns the number of simulated ticks.
func (g *Game) Tick() int32 {
	return g.tick
}

// Now returns the simulation clock in seconds.
func (g *Game) Now() float64 {
	return g.now
}

// Ready reports whether startup loading has completed.
func (g *Game) Ready() bool {
	return g.ready
}

// Session returns the session id stamped on telemetry.
func (g *Game) Session() string {
	return g.session
}

// Score returns the current score.
func (g *Game) Score() int {
	return g.score
}

// Body returns the growth engine that owns the body state.
func (g *Game) Body() *systems.GrowthEngine {
	return g.body
}

// Player returns the player's world position.
func (g *Game) Player() r2.Vec {
	return g.player
}

// LiveEntities returns the number of live edible entities.
func (g *Game) LiveEntities() int {
	return g.liveEdibles
}

// Stats returns the persistent stats store, or nil before loading completes.
func (g *Game) Stats() *store.Store {
	return g.stats
}

// Resolved returns how many contacts ended with the given outcome.
func (g *Game) Resolved(o events.Outcome) int {
	return g.resolver.Resolved(o)
}

// Unload releases resources and flushes persistent state.
func (g *Game) Unload() {
	g.flushPlayTime()
	if g.stats != nil {
		if err := g.stats.Save(); err != nil {
			slog.Error("failed to save stats store", "error", err)
		}
	}
	if g.outputManager != nil {
		if err := g.outputManager.Close(); err != nil {
			slog.Error("failed to close output files", "error", err)
		}
	}
}
