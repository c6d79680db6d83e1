// Package systems holds the collision core and the per-tick simulation systems.
package systems

import "github.com/pthm-cable/blobs/components"

// Seen is what a blob can perceive about another entity.
type Seen struct {
	ID     uint64
	Kind   components.Kind
	X, Y   float64
	Radius float64
	Color  components.HSV
}

// Neighbor is a nearby entry with precomputed offset from the query origin.
type Neighbor struct {
	Index  int // into the slice the grid was built from
	DX, DY float64
	DistSq float64
}

// SpatialGrid answers radius queries for perception on the bounded plane.
// It indexes a slice of Seen entries rebuilt once per tick.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]int32
}

// NewSpatialGrid creates a grid covering the given world size.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]int32, cols*rows)
	for i := range cells {
		cells[i] = make([]int32, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all entries from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Build clears the grid and inserts every entry by index.
func (g *SpatialGrid) Build(entries []Seen) {
	g.Clear()
	for i := range entries {
		g.Insert(i, entries[i].X, entries[i].Y)
	}
}

// Insert adds an entry index at the given position.
func (g *SpatialGrid) Insert(index int, x, y float64) {
	if !finite(x, y) {
		return
	}
	idx := g.cellIndex(x, y)
	g.cells[idx] = append(g.cells[idx], int32(index))
}

// MaxQueryResults caps the number of neighbors returned by spatial queries.
// This prevents density spikes from causing unbounded work.
const MaxQueryResults = 128

// QueryRadiusInto appends entries within radius of (x, y) to dst, skipping the
// entry with id exclude, up to MaxQueryResults. Reuse dst across calls to avoid
// allocations. Safe for concurrent use once built.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, x, y, radius float64, exclude uint64, entries []Seen) []Neighbor {
	if radius <= 0 || !finite(x, y, radius) {
		return dst
	}
	minCol := g.col(x - radius)
	maxCol := g.col(x + radius)
	minRow := g.row(y - radius)
	maxRow := g.row(y + radius)

	radiusSq := radius * radius

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			for _, idx := range g.cells[row*g.cols+col] {
				e := &entries[idx]
				if e.ID == exclude {
					continue
				}

				dx := e.X - x
				dy := e.Y - y
				distSq := dx*dx + dy*dy
				if distSq <= radiusSq {
					dst = append(dst, Neighbor{Index: int(idx), DX: dx, DY: dy, DistSq: distSq})
					if len(dst) >= MaxQueryResults {
						return dst
					}
				}
			}
		}
	}

	return dst
}

func (g *SpatialGrid) col(x float64) int {
	return int(clamp(x/g.cellSize, 0, float64(g.cols-1)))
}

func (g *SpatialGrid) row(y float64) int {
	return int(clamp(y/g.cellSize, 0, float64(g.rows-1)))
}

// cellIndex returns the flat index for a world position, clamped to the grid.
func (g *SpatialGrid) cellIndex(x, y float64) int {
	return g.row(y)*g.cols + g.col(x)
}
