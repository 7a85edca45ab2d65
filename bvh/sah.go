package bvh

import (
	"github.com/tinyrt/tinyrt/objset"
	"github.com/tinyrt/tinyrt/vecmath"
)

// SAHBuilder splits each range at the boundary minimizing the binned
// surface-area-heuristic cost, falling back to a leaf when no split beats
// the cost of not splitting.
type SAHBuilder struct {
	Options Options
	// Bins is the number of centroid buckets evaluated per axis. 16 is
	// the usual default in offline renderers; more bins cost more at
	// build time for a better-estimated split.
	Bins int
	// TraversalCost and IntersectCost are the relative costs of
	// descending one node versus testing one object.
	TraversalCost, IntersectCost float32
}

// NewSAHBuilder returns a builder with the given options and cost model.
func NewSAHBuilder(opts Options, bins int, traversalCost, intersectCost float32) *SAHBuilder {
	return &SAHBuilder{Options: opts, Bins: bins, TraversalCost: traversalCost, IntersectCost: intersectCost}
}

// Build implements Builder.
func (b *SAHBuilder) Build(objects objset.Set) (*Tree, error) {
	bins := b.Bins
	if bins < 2 {
		bins = 16
	}
	trav, isect := b.TraversalCost, b.IntersectCost
	if trav <= 0 {
		trav = 1.0
	}
	if isect <= 0 {
		isect = 1.0
	}

	partition := func(items []buildItem) (int, uint8, bool) {
		return sahPartition(items, bins, trav, isect)
	}
	return buildTree(objects, b.Options, partition)
}

type sahBin struct {
	count int
	box   vecmath.AABB
}

// sahPartition evaluates all three axes at `bins`-1 candidate boundaries
// each, picks the cheapest, and partitions items around it in place
// (quicksort-style, by bin membership). It returns ok=false when leaving
// the range unsplit is cheaper than every candidate.
func sahPartition(items []buildItem, bins int, trav, isect float32) (mid int, axis uint8, ok bool) {
	n := len(items)
	if n < 2 {
		return 0, 0, false
	}

	parentBox := boundsOf(items)
	parentArea := parentBox.SurfaceArea()
	leafCost := isect * float32(n)

	centroidBox := vecmath.EmptyAABB()
	for _, it := range items {
		centroidBox = centroidBox.ExpandPoint(it.centroid)
	}

	bestCost := leafCost
	bestAxis := -1
	var bestBoundary float32

	for ax := 0; ax < 3; ax++ {
		lo, hi := centroidBox.Min[ax], centroidBox.Max[ax]
		if hi-lo < 1e-12 {
			continue
		}
		scale := float32(bins) / (hi - lo)

		binOf := func(c float32) int {
			b := int((c - lo) * scale)
			if b < 0 {
				b = 0
			}
			if b >= bins {
				b = bins - 1
			}
			return b
		}

		counts := make([]int, bins)
		boxes := make([]vecmath.AABB, bins)
		for i := range boxes {
			boxes[i] = vecmath.EmptyAABB()
		}
		for _, it := range items {
			b := binOf(it.centroid[ax])
			counts[b]++
			boxes[b] = boxes[b].Union(it.box)
		}

		// Prefix sweep left-to-right and right-to-left to get, for every
		// boundary k (split after bin k), the cost of sending bins
		// [0,k] left and (k,bins) right.
		leftCount := make([]int, bins)
		leftArea := make([]float32, bins)
		runningBox := vecmath.EmptyAABB()
		running := 0
		for k := 0; k < bins; k++ {
			running += counts[k]
			runningBox = runningBox.Union(boxes[k])
			leftCount[k] = running
			leftArea[k] = runningBox.SurfaceArea()
		}

		rightCount := make([]int, bins)
		rightArea := make([]float32, bins)
		runningBox = vecmath.EmptyAABB()
		running = 0
		for k := bins - 1; k >= 0; k-- {
			running += counts[k]
			runningBox = runningBox.Union(boxes[k])
			rightCount[k] = running
			rightArea[k] = runningBox.SurfaceArea()
		}

		for k := 0; k < bins-1; k++ {
			lc, rc := leftCount[k], rightCount[k+1]
			if lc == 0 || rc == 0 {
				continue
			}
			cost := trav + isect*(leftArea[k]*float32(lc)+rightArea[k+1]*float32(rc))/parentArea
			if cost < bestCost {
				bestCost = cost
				bestAxis = ax
				bestBoundary = lo + float32(k+1)/scale
			}
		}
	}

	if bestAxis < 0 {
		return 0, 0, false
	}

	// Partition items in place: everything with centroid[bestAxis] <
	// bestBoundary goes left.
	i, j := 0, n-1
	for i <= j {
		if items[i].centroid[bestAxis] < bestBoundary {
			i++
			continue
		}
		items[i], items[j] = items[j], items[i]
		j--
	}

	return i, uint8(bestAxis), true
}
