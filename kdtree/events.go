package kdtree

import (
	"sort"

	"github.com/tinyrt/tinyrt/vecmath"
)

// eventKind orders same-position events so a sweep counts them correctly:
// an object ending exactly at the candidate plane must leave "above"
// before one starting there enters it, and a planar (zero-extent on this
// axis) object is counted separately so it can be assigned to whichever
// side is cheaper.
type eventKind uint8

const (
	eventEnd eventKind = iota
	eventPlanar
	eventBegin
)

type event struct {
	pos  float32
	kind eventKind
	id   int32
}

// buildEvents returns, for one axis, the begin/end/planar events of every
// item's (already node-bounds-clipped) box, sorted by (pos, kind, id).
func buildEvents(items []kdItem, axis int) []event {
	events := make([]event, 0, len(items)*2)
	for _, it := range items {
		lo, hi := it.box.Min[axis], it.box.Max[axis]
		if hi-lo < 1e-7 {
			events = append(events, event{pos: lo, kind: eventPlanar, id: it.id})
		} else {
			events = append(events, event{pos: lo, kind: eventBegin, id: it.id})
			events = append(events, event{pos: hi, kind: eventEnd, id: it.id})
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].pos != events[j].pos {
			return events[i].pos < events[j].pos
		}
		if events[i].kind != events[j].kind {
			return events[i].kind < events[j].kind
		}
		return events[i].id < events[j].id
	})
	return events
}

// splitBox returns bounds split into its below/above halves at
// axis=position.
func splitBox(bounds vecmath.AABB, axis int, position float32) (below, above vecmath.AABB) {
	below, above = bounds, bounds
	below.Max[axis] = position
	above.Min[axis] = position
	return below, above
}

// candidate is the best split found on one axis.
type candidate struct {
	axis   int
	pos    float32
	cost   float32
	nBelow int
	nAbove int
	found  bool
}

// emptyBonus discounts the cost of a split that carves off an empty
// half, the same heuristic pbrt-style kd builders use to prefer cutting
// along empty space even when the raw SAH numbers are close — without
// it, a sweep tends to keep splitting near the dense half of a scene and
// never isolates its empty margins.
const emptyBonus = 0.2

// bestSplitOnAxis sweeps axis's events once, evaluating the SAH cost of
// splitting at every distinct position, assigning planar items to
// whichever side costs less at that position.
func bestSplitOnAxis(items []kdItem, bounds vecmath.AABB, axis int, traversalCost, intersectCost float32) candidate {
	events := buildEvents(items, axis)
	parentArea := bounds.SurfaceArea()
	if parentArea == 0 {
		return candidate{}
	}

	n := len(items)
	nBelow, nAbove := 0, n

	best := candidate{}
	i := 0
	for i < len(events) {
		pos := events[i].pos
		pEnd, pPlanar, pBegin := 0, 0, 0
		for i < len(events) && events[i].pos == pos && events[i].kind == eventEnd {
			pEnd++
			i++
		}
		for i < len(events) && events[i].pos == pos && events[i].kind == eventPlanar {
			pPlanar++
			i++
		}
		for i < len(events) && events[i].pos == pos && events[i].kind == eventBegin {
			pBegin++
			i++
		}

		nAbove -= pEnd + pPlanar

		if pos > bounds.Min[axis] && pos < bounds.Max[axis] {
			below, above := splitBox(bounds, axis, pos)
			belowArea, aboveArea := below.SurfaceArea(), above.SurfaceArea()

			evalCost := func(nL, nR int) float32 {
				cost := traversalCost + intersectCost*(float32(nL)*belowArea+float32(nR)*aboveArea)/parentArea
				if nL == 0 || nR == 0 {
					cost *= 1 - emptyBonus
				}
				return cost
			}

			costPlanarBelow := evalCost(nBelow+pPlanar, nAbove)
			costPlanarAbove := evalCost(nBelow, nAbove+pPlanar)

			cost, nl, na := costPlanarBelow, nBelow+pPlanar, nAbove
			if costPlanarAbove < cost {
				cost, nl, na = costPlanarAbove, nBelow, nAbove+pPlanar
			}

			if !best.found || cost < best.cost {
				best = candidate{axis: axis, pos: pos, cost: cost, nBelow: nl, nAbove: na, found: true}
			}
		}

		nBelow += pBegin + pPlanar
	}

	return best
}
