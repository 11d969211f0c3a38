package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Direction is one of the eight compass octants or stationary.
// Octants are numbered counter-clockwise starting at east.
type Direction uint8

const (
	DirEast Direction = iota
	DirNorthEast
	DirNorth
	DirNorthWest
	DirWest
	DirSouthWest
	DirSouth
	DirSouthEast
	DirStationary
)

// NumDirections counts the eight octants plus stationary.
const NumDirections = 9

var directionNames = [NumDirections]string{"E", "NE", "N", "NW", "W", "SW", "S", "SE", "stationary"}

// String returns the compass abbreviation.
func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "unknown"
}

// Edge identifies one of the eight sides and corners of the frame around
// the player. Edges share the octant numbering of Direction.
type Edge uint8

const (
	EdgeEast Edge = iota
	EdgeNorthEast
	EdgeNorth
	EdgeNorthWest
	EdgeWest
	EdgeSouthWest
	EdgeSouth
	EdgeSouthEast
)

// NumEdges is the number of frame edges.
const NumEdges = 8

// String returns the compass abbreviation.
func (e Edge) String() string {
	return Direction(e).String()
}

// Normal returns the outward unit vector of the edge.
func (e Edge) Normal() r2.Vec {
	return unit(float64(e) * math.Pi / 4)
}

// EdgeWeight biases spawning toward an edge.
type EdgeWeight struct {
	Edge   Edge
	Weight float64
}

// spawnWeights is the static bias table, indexed by Direction.
// Cardinal: 0.5 ahead, 0.2 on each adjacent diagonal, 0.05 on each perpendicular.
// Diagonal: 0.35 on each adjacent cardinal, 0.3 on the diagonal itself.
// Stationary: uniform over the four cardinals.
var spawnWeights = [NumDirections][]EdgeWeight{
	DirEast:       {{EdgeEast, 0.5}, {EdgeNorthEast, 0.2}, {EdgeSouthEast, 0.2}, {EdgeNorth, 0.05}, {EdgeSouth, 0.05}},
	DirNorthEast:  {{EdgeNorth, 0.35}, {EdgeEast, 0.35}, {EdgeNorthEast, 0.3}},
	DirNorth:      {{EdgeNorth, 0.5}, {EdgeNorthEast, 0.2}, {EdgeNorthWest, 0.2}, {EdgeEast, 0.05}, {EdgeWest, 0.05}},
	DirNorthWest:  {{EdgeNorth, 0.35}, {EdgeWest, 0.35}, {EdgeNorthWest, 0.3}},
	DirWest:       {{EdgeWest, 0.5}, {EdgeNorthWest, 0.2}, {EdgeSouthWest, 0.2}, {EdgeNorth, 0.05}, {EdgeSouth, 0.05}},
	DirSouthWest:  {{EdgeSouth, 0.35}, {EdgeWest, 0.35}, {EdgeSouthWest, 0.3}},
	DirSouth:      {{EdgeSouth, 0.5}, {EdgeSouthEast, 0.2}, {EdgeSouthWest, 0.2}, {EdgeEast, 0.05}, {EdgeWest, 0.05}},
	DirSouthEast:  {{EdgeSouth, 0.35}, {EdgeEast, 0.35}, {EdgeSouthEast, 0.3}},
	DirStationary: {{EdgeEast, 0.25}, {EdgeNorth, 0.25}, {EdgeWest, 0.25}, {EdgeSouth, 0.25}},
}

// SpawnWeights returns the edge bias for a movement direction.
// The returned slice is a fresh copy.
func SpawnWeights(d Direction) []EdgeWeight {
	if int(d) >= NumDirections {
		d = DirStationary
	}
	src := spawnWeights[d]
	out := make([]EdgeWeight, len(src))
	copy(out, src)
	return out
}

// PositionSample is a timestamped player position.
type PositionSample struct {
	Pos  r2.Vec
	Time float64
}

// MovementPredictor keeps a short position history and derives velocity,
// acceleration, predicted position and octant direction from it.
// Degenerate histories produce zero vectors rather than errors.
type MovementPredictor struct {
	// Rolling history (circular buffer)
	samples  []PositionSample
	capacity int
	head     int // index of the next write
	count    int

	stationaryThreshold float64
}

// NewMovementPredictor creates a predictor holding at most capacity samples.
func NewMovementPredictor(capacity int, stationaryThreshold float64) *MovementPredictor {
	if capacity < 1 {
		capacity = 5
	}
	return &MovementPredictor{
		samples:             make([]PositionSample, capacity),
		capacity:            capacity,
		stationaryThreshold: stationaryThreshold,
	}
}

// RecordPosition appends a sample, evicting the oldest beyond capacity.
func (p *MovementPredictor) RecordPosition(pos r2.Vec, t float64) {
	p.samples[p.head] = PositionSample{Pos: pos, Time: t}
	p.head = (p.head + 1) % p.capacity
	if p.count < p.capacity {
		p.count++
	}
}

// Len returns the number of samples held.
func (p *MovementPredictor) Len() int {
	return p.count
}

// Reset clears the history.
func (p *MovementPredictor) Reset() {
	p.head = 0
	p.count = 0
}

// recent returns the i-th most recent sample (0 = latest).
func (p *MovementPredictor) recent(i int) PositionSample {
	idx := (p.head - 1 - i + 2*p.capacity) % p.capacity
	return p.samples[idx]
}

// Latest returns the most recent sample, if any.
func (p *MovementPredictor) Latest() (PositionSample, bool) {
	if p.count == 0 {
		return PositionSample{}, false
	}
	return p.recent(0), true
}

// Velocity returns the finite difference of the two latest samples.
func (p *MovementPredictor) Velocity() r2.Vec {
	if p.count < 2 {
		return r2.Vec{}
	}
	return velocityBetween(p.recent(1), p.recent(0))
}

// Acceleration finite-differences the velocities of the three latest
// samples over their averaged time delta.
func (p *MovementPredictor) Acceleration() r2.Vec {
	if p.count < 3 {
		return r2.Vec{}
	}
	s0, s1, s2 := p.recent(2), p.recent(1), p.recent(0)
	dt1 := s1.Time - s0.Time
	dt2 := s2.Time - s1.Time
	if dt1 <= 0 || dt2 <= 0 {
		return r2.Vec{}
	}
	v1 := velocityBetween(s0, s1)
	v2 := velocityBetween(s1, s2)
	return r2.Scale(2/(dt1+dt2), r2.Sub(v2, v1))
}

// PredictedPosition extrapolates p + v*t + a*t²/2 from the latest sample.
func (p *MovementPredictor) PredictedPosition(ahead float64) r2.Vec {
	latest, ok := p.Latest()
	if !ok {
		return r2.Vec{}
	}
	v := p.Velocity()
	a := p.Acceleration()
	pos := r2.Add(latest.Pos, r2.Scale(ahead, v))
	return r2.Add(pos, r2.Scale(0.5*ahead*ahead, a))
}

// MovementDirection classifies the current velocity into an octant, or
// stationary when slower than the threshold.
func (p *MovementPredictor) MovementDirection() Direction {
	return DirectionOf(p.Velocity(), p.stationaryThreshold)
}

// CurrentSpawnWeights returns the edge bias for the current direction.
func (p *MovementPredictor) CurrentSpawnWeights() []EdgeWeight {
	return SpawnWeights(p.MovementDirection())
}

// DirectionOf maps a velocity to an octant. Only the angle matters once the
// speed reaches threshold.
func DirectionOf(v r2.Vec, threshold float64) Direction {
	if r2.Norm(v) < threshold {
		return DirStationary
	}
	angle := normalizeHeading(math.Atan2(v.Y, v.X))
	segment := int(math.Round(angle/(math.Pi/4))) % NumEdges
	return Direction(segment)
}

func velocityBetween(a, b PositionSample) r2.Vec {
	dt := b.Time - a.Time
	if dt <= 0 {
		return r2.Vec{}
	}
	return r2.Scale(1/dt, r2.Sub(b.Pos, a.Pos))
}
