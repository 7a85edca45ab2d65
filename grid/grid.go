// Package grid implements a uniform grid: a single-level regular
// subdivision of the object set's bounds, built from a target object
// density, holding a flat per-cell object-id list (ids may repeat across
// cells, unlike bvh's leaf permutation), and traversed with 3D-DDA. Cell
// lists are laid out by a two-pass count/prefix-sum/scatter build so the
// whole grid lives in two contiguous arrays.
package grid

import (
	"math"

	"github.com/pkg/errors"
	"github.com/tinyrt/tinyrt/mailbox"
	"github.com/tinyrt/tinyrt/objset"
	"github.com/tinyrt/tinyrt/vecmath"
	"gonum.org/v1/gonum/floats"
)

// Grid is a built uniform grid.
type Grid struct {
	Bounds      vecmath.AABB
	Dims        [3]int32
	CellStart   []int32 // len == cellCount()+1; CellObjects[CellStart[c]:CellStart[c+1]] is cell c's ids
	CellObjects []int32
}

// ErrEmptyObjectSet is returned by Build over an empty object set.
var ErrEmptyObjectSet = errors.New("grid: cannot build over an empty object set")

// GetBoundingBox returns the world-space bounds the grid subdivides.
func (g *Grid) GetBoundingBox() vecmath.AABB {
	return g.Bounds
}

// GetMemoryUsage reports the bytes occupied by the cell-offset and
// object-id arrays.
func (g *Grid) GetMemoryUsage() (used, allocated int) {
	size := len(g.CellStart)*4 + len(g.CellObjects)*4
	return size, size
}

func (g *Grid) cellCount() int {
	return int(g.Dims[0]) * int(g.Dims[1]) * int(g.Dims[2])
}

func (g *Grid) cellSize() vecmath.Vec3 {
	e := g.Bounds.Extent()
	return vecmath.Vec3{e[0] / float32(g.Dims[0]), e[1] / float32(g.Dims[1]), e[2] / float32(g.Dims[2])}
}

func (g *Grid) cellIndex(c [3]int32) int {
	return int(c[0]) + int(g.Dims[0])*(int(c[1])+int(g.Dims[1])*int(c[2]))
}

// cellRange returns the inclusive [lo,hi] cell coordinates along axis
// that box overlaps, clamped to the grid's own extent.
func (g *Grid) cellRange(box vecmath.AABB, axis int) (lo, hi int32) {
	size := g.cellSize()[axis]
	relMin := (box.Min[axis] - g.Bounds.Min[axis]) / size
	relMax := (box.Max[axis] - g.Bounds.Min[axis]) / size

	lo = int32(math.Floor(float64(relMin)))
	hi = int32(math.Floor(float64(relMax)))
	if lo < 0 {
		lo = 0
	}
	if hi >= g.Dims[axis] {
		hi = g.Dims[axis] - 1
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// Build constructs a grid whose resolution on each axis is
// ceil(cbrt(density * objects.Count()) * extent / maxExtent), at least 1,
// so cells stay close to cubes and bounds shaped like a cube get about
// density * objects.Count() cells (flatter bounds get proportionally
// fewer). density is cells per object: below 1 yields
// coarser-than-one-cell-per-object grids; above 1 oversamples, trading
// build/memory cost for fewer objects tested per cell.
func Build(objects objset.Set, density float32) (*Grid, error) {
	n := objects.Count()
	if n == 0 {
		return nil, ErrEmptyObjectSet
	}
	if density <= 0 {
		density = 1.0
	}

	bounds := objects.AABB()
	extent := bounds.Extent()
	maxExtent := max(extent[0], extent[1], extent[2])
	perAxis := float32(math.Cbrt(float64(density * float32(n))))

	g := &Grid{Bounds: bounds}
	for axis := 0; axis < 3; axis++ {
		d := int32(1)
		if maxExtent > 0 {
			d = int32(math.Ceil(float64(perAxis * extent[axis] / maxExtent)))
		}
		if d < 1 {
			d = 1
		}
		g.Dims[axis] = d
	}

	cellCount := g.cellCount()
	counts := make([]int32, cellCount)

	forEachCellOverlap := func(id int, fn func(idx int)) {
		box := objects.ObjectAABB(id)
		loX, hiX := g.cellRange(box, 0)
		loY, hiY := g.cellRange(box, 1)
		loZ, hiZ := g.cellRange(box, 2)
		for z := loZ; z <= hiZ; z++ {
			for y := loY; y <= hiY; y++ {
				for x := loX; x <= hiX; x++ {
					fn(g.cellIndex([3]int32{x, y, z}))
				}
			}
		}
	}

	for id := 0; id < n; id++ {
		forEachCellOverlap(id, func(idx int) { counts[idx]++ })
	}

	g.CellStart = make([]int32, cellCount+1)
	for c := 0; c < cellCount; c++ {
		g.CellStart[c+1] = g.CellStart[c] + counts[c]
	}

	cursor := make([]int32, cellCount)
	copy(cursor, g.CellStart[:cellCount])
	g.CellObjects = make([]int32, g.CellStart[cellCount])
	for id := 0; id < n; id++ {
		forEachCellOverlap(id, func(idx int) {
			g.CellObjects[cursor[idx]] = int32(id)
			cursor[idx]++
		})
	}

	return g, nil
}

// Cost reports the grid's expected per-ray cost under the same
// surface-area heuristic bvh's builders use: each cell contributes its
// occupancy times intersectCost, weighted by the probability a ray
// entering the bounds reaches that cell (its surface area over the root's),
// plus one traversalCost for entering the structure. It is a diagnostic
// for comparing density choices, not a traversal-time computation.
func (g *Grid) Cost(traversalCost, intersectCost float32) float32 {
	cells := g.cellCount()
	if cells == 0 {
		return 0
	}

	size := g.cellSize()
	cellArea := float64(2 * (size[0]*size[1] + size[1]*size[2] + size[2]*size[0]))
	rootArea := float64(g.Bounds.SurfaceArea())
	if rootArea == 0 {
		return traversalCost
	}

	contributions := make([]float64, cells)
	for c := 0; c < cells; c++ {
		occupancy := float64(g.CellStart[c+1] - g.CellStart[c])
		contributions[c] = cellArea / rootArea * occupancy * float64(intersectCost)
	}
	return traversalCost + float32(floats.Sum(contributions))
}

// Raycast finds the closest intersection of ray against objects by
// stepping g's cells with 3D-DDA, updating hit and reporting whether it
// found one. mb suppresses re-testing an id already checked for this ray
// — grid cells routinely share objects whose AABB spans a cell boundary,
// so a non-Null mailbox matters here in a way it does not for bvh/qbvh.
func Raycast[M mailbox.Mailbox](g *Grid, objects objset.Set, ray *vecmath.Ray, hit *objset.TriangleRayHit, mb M) bool {
	ok, tMin, _ := vecmath.RayAABBTest(g.Bounds, ray)
	if !ok {
		return false
	}
	if tMin < ray.MinDistance {
		tMin = ray.MinDistance
	}

	entry := ray.At(tMin)
	size := g.cellSize()

	var cell, step [3]int32
	var tMaxAxis, tDelta [3]float32

	for axis := 0; axis < 3; axis++ {
		rel := (entry[axis] - g.Bounds.Min[axis]) / size[axis]
		c := int32(rel)
		if c < 0 {
			c = 0
		}
		if c >= g.Dims[axis] {
			c = g.Dims[axis] - 1
		}
		cell[axis] = c

		switch {
		case ray.Direction[axis] > 0:
			step[axis] = 1
			boundary := g.Bounds.Min[axis] + float32(c+1)*size[axis]
			tMaxAxis[axis] = tMin + (boundary-entry[axis])/ray.Direction[axis]
			tDelta[axis] = size[axis] / ray.Direction[axis]
		case ray.Direction[axis] < 0:
			step[axis] = -1
			boundary := g.Bounds.Min[axis] + float32(c)*size[axis]
			tMaxAxis[axis] = tMin + (boundary-entry[axis])/ray.Direction[axis]
			tDelta[axis] = size[axis] / -ray.Direction[axis]
		default:
			step[axis] = 0
			tMaxAxis[axis] = float32(math.Inf(1))
			tDelta[axis] = float32(math.Inf(1))
		}
	}

	updated := false
	for {
		idx := g.cellIndex(cell)
		start, end := g.CellStart[idx], g.CellStart[idx+1]
		for i := start; i < end; i++ {
			id := int(g.CellObjects[i])
			if mb.Check(id) {
				continue
			}
			if objects.RayIntersect(ray, hit, id) {
				updated = true
			}
		}

		axis := 0
		if tMaxAxis[1] < tMaxAxis[axis] {
			axis = 1
		}
		if tMaxAxis[2] < tMaxAxis[axis] {
			axis = 2
		}

		if tMaxAxis[axis] > ray.MaxDistance {
			break
		}

		cell[axis] += step[axis]
		if cell[axis] < 0 || cell[axis] >= g.Dims[axis] {
			break
		}
		tMaxAxis[axis] += tDelta[axis]
	}

	return updated
}
