package sim

import "github.com/mlange-42/ark/ecs"

// Neighbor holds a nearby entity with precomputed spatial data so
// perception does not have to recompute deltas and distances.
type Neighbor struct {
	E      ecs.Entity
	DX, DY float64 // delta from query origin
	DistSq float64 // squared distance (avoid sqrt in hot path)
}

// SpatialGrid provides O(1) neighbor lookups using a cell-based grid over
// the bounded arena. Positions outside the arena clamp to the edge cells.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]gridEntry
}

type gridEntry struct {
	e    ecs.Entity
	x, y float64
}

// NewSpatialGrid creates a spatial grid covering the given arena size.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 64
	}
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]gridEntry, cols*rows)
	for i := range cells {
		cells[i] = make([]gridEntry, 0, 8) // pre-allocate small capacity
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity to the grid at the given position. Positions are
// stored alongside the entity so queries need no component lookups.
func (g *SpatialGrid) Insert(e ecs.Entity, x, y float64) {
	idx := g.cellIndex(x, y)
	g.cells[idx] = append(g.cells[idx], gridEntry{e: e, x: x, y: y})
}

// MaxQueryResults caps the number of neighbors returned by spatial queries.
// This prevents density spikes from causing unbounded work.
const MaxQueryResults = 128

// QueryRadiusInto finds entities within radius and appends to dst (up to
// MaxQueryResults). Returns the updated slice. Reuse dst across calls to
// avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, x, y, radius float64, exclude ecs.Entity) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1

	centerCol := clampInt(int(x/g.cellSize), 0, g.cols-1)
	centerRow := clampInt(int(y/g.cellSize), 0, g.rows-1)

	radiusSq := radius * radius

	for dc := -cellRadius; dc <= cellRadius; dc++ {
		col := centerCol + dc
		if col < 0 || col >= g.cols {
			continue
		}
		for dr := -cellRadius; dr <= cellRadius; dr++ {
			row := centerRow + dr
			if row < 0 || row >= g.rows {
				continue
			}

			for _, entry := range g.cells[row*g.cols+col] {
				if entry.e == exclude {
					continue
				}

				dx := entry.x - x
				dy := entry.y - y
				distSq := dx*dx + dy*dy

				if distSq <= radiusSq {
					dst = append(dst, Neighbor{E: entry.e, DX: dx, DY: dy, DistSq: distSq})
					if len(dst) >= MaxQueryResults {
						return dst
					}
				}
			}
		}
	}

	return dst
}

// cellIndex returns the flat index for a world position.
func (g *SpatialGrid) cellIndex(x, y float64) int {
	col := clampInt(int(x/g.cellSize), 0, g.cols-1)
	row := clampInt(int(y/g.cellSize), 0, g.rows-1)
	return row*g.cols + col
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
