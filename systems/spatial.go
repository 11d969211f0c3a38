// Package systems provides the simulation core: growth, prediction, spawn
// direction, power-up scheduling, formations, and contact resolution.
package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/gobble/components"
)

// Neighbor holds a nearby entity with precomputed spatial data.
type Neighbor struct {
	E      ecs.Entity
	DX, DY float64 // Delta from query origin
	DistSq float64
}

type cellKey struct {
	col, row int
}

// SpatialGrid provides neighbor lookups over an unbounded plane by hashing
// positions into fixed-size cells.
type SpatialGrid struct {
	cellSize float64
	cells    map[cellKey][]ecs.Entity
	count    int
}

// NewSpatialGrid creates a spatial grid with the given cell size.
func NewSpatialGrid(cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &SpatialGrid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]ecs.Entity),
	}
}

// Clear removes all entities from the grid. Cells that were occupied keep
// their storage; cells left empty since the previous clear are dropped so
// the map follows the player rather than growing with every cell visited.
func (g *SpatialGrid) Clear() {
	for k, c := range g.cells {
		if len(c) == 0 {
			delete(g.cells, k)
			continue
		}
		g.cells[k] = c[:0]
	}
	g.count = 0
}

// Len returns the number of inserted entities.
func (g *SpatialGrid) Len() int {
	return g.count
}

// Insert adds an entity to the grid at the given position.
func (g *SpatialGrid) Insert(e ecs.Entity, x, y float64) {
	k := g.key(x, y)
	g.cells[k] = append(g.cells[k], e)
	g.count++
}

// MaxQueryResults caps the number of neighbors returned by spatial queries.
// This prevents density spikes from causing unbounded work.
const MaxQueryResults = 128

// QueryRadiusInto finds entities within radius and appends to dst (up to MaxQueryResults).
// Returns the updated slice. Reuse dst across calls to avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, x, y, radius float64, exclude ecs.Entity, posMap *ecs.Map[components.Position]) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1
	centre := g.key(x, y)
	radiusSq := radius * radius

	for dc := -cellRadius; dc <= cellRadius; dc++ {
		for dr := -cellRadius; dr <= cellRadius; dr++ {
			for _, e := range g.cells[cellKey{centre.col + dc, centre.row + dr}] {
				if e == exclude {
					continue
				}
				pos := posMap.Get(e)
				if pos == nil {
					continue
				}

				dx, dy := pos.X-x, pos.Y-y
				distSq := dx*dx + dy*dy
				if distSq <= radiusSq {
					dst = append(dst, Neighbor{E: e, DX: dx, DY: dy, DistSq: distSq})
					if len(dst) >= MaxQueryResults {
						return dst
					}
				}
			}
		}
	}

	return dst
}

func (g *SpatialGrid) key(x, y float64) cellKey {
	return cellKey{
		col: int(math.Floor(x / g.cellSize)),
		row: int(math.Floor(y / g.cellSize)),
	}
}
