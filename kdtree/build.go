package kdtree

import (
	"github.com/pkg/errors"
	"github.com/tinyrt/tinyrt/objset"
	"github.com/tinyrt/tinyrt/vecmath"
)

// Options controls a kd-tree build.
type Options struct {
	// LeafThreshold is the object count at or below which a range always
	// becomes a leaf, regardless of what the SAH sweep would prefer.
	LeafThreshold int
	// MaxDepth bounds recursion as a backstop against pathological
	// clipping (many near-coincident split planes).
	MaxDepth int
	// TraversalCost and IntersectCost are the relative costs feeding the
	// SAH sweep, the same roles they play in bvh.SAHBuilder.
	TraversalCost, IntersectCost float32
}

// DefaultOptions returns reasonable defaults: pbrt-style depth bound of
// 8 + 1.3*log2(N) is computed per-build in Build; LeafThreshold mirrors
// bvh's.
func DefaultOptions() Options {
	return Options{LeafThreshold: 4, TraversalCost: 1.0, IntersectCost: 1.0}
}

// ErrEmptyObjectSet is returned by Build over an empty object set.
var ErrEmptyObjectSet = errors.New("kdtree: cannot build over an empty object set")

// kdItem is one object as carried through the build: its id, and its box
// clipped to the current node's bounds (perfect clipping means this
// shrinks on every descent, unlike bvh's builders which track a fixed
// per-object AABB throughout).
type kdItem struct {
	id  int32
	box vecmath.AABB
}

type builder struct {
	objects objset.Clippable
	opts    Options
	nodes   []Node
	refs    []int32
	maxD    int
}

// Build constructs a kd-tree over objects using a SAH sweep with perfect
// clipping. objects must implement Clippable — BasicMesh does.
func Build(objects objset.Clippable, opts Options) (*Tree, error) {
	n := objects.Count()
	if n == 0 {
		return nil, ErrEmptyObjectSet
	}
	if opts.LeafThreshold <= 0 {
		opts.LeafThreshold = 4
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = depthBound(n)
	}
	if opts.TraversalCost <= 0 {
		opts.TraversalCost = 1.0
	}
	if opts.IntersectCost <= 0 {
		opts.IntersectCost = 1.0
	}

	bounds := objects.AABB()
	items := make([]kdItem, n)
	for i := 0; i < n; i++ {
		items[i] = kdItem{id: int32(i), box: objects.ObjectAABB(i)}
	}

	b := &builder{objects: objects, opts: opts}
	b.build(items, bounds, 0)

	return &Tree{Nodes: b.nodes, ObjectRefs: b.refs, Bounds: bounds, maxDepth: b.maxD}, nil
}

// depthBound is pbrt's rule of thumb: enough depth to let a balanced
// split reach single-object leaves, plus headroom for imbalance.
func depthBound(n int) int {
	depth := 0
	for v := n; v > 1; v >>= 1 {
		depth++
	}
	return 8 + (depth*13)/10
}

func (b *builder) makeLeafNode(idx int32, items []kdItem) {
	first := int32(len(b.refs))
	for _, it := range items {
		b.refs = append(b.refs, it.id)
	}
	b.nodes[idx] = makeLeaf(len(items), first)
}

func (b *builder) build(items []kdItem, bounds vecmath.AABB, depth int) int32 {
	idx := int32(len(b.nodes))
	b.nodes = append(b.nodes, Node{})
	if depth > b.maxD {
		b.maxD = depth
	}

	if len(items) <= b.opts.LeafThreshold || depth >= b.opts.MaxDepth {
		b.makeLeafNode(idx, items)
		return idx
	}

	leafCost := b.opts.IntersectCost * float32(len(items))
	best := candidate{cost: leafCost}
	for axis := 0; axis < 3; axis++ {
		c := bestSplitOnAxis(items, bounds, axis, b.opts.TraversalCost, b.opts.IntersectCost)
		if c.found && c.cost < best.cost {
			best = c
		}
	}

	if !best.found || best.cost >= leafCost {
		b.makeLeafNode(idx, items)
		return idx
	}

	axis, pos := best.axis, best.pos
	belowBox, aboveBox := splitBox(bounds, axis, pos)

	var belowItems, aboveItems []kdItem
	for _, it := range items {
		lo, hi := it.box.Min[axis], it.box.Max[axis]
		switch {
		case hi <= pos:
			belowItems = append(belowItems, it)
		case lo >= pos:
			aboveItems = append(aboveItems, it)
		default:
			left, right := b.objects.Clip(int(it.id), it.box, axis, pos)
			if !left.IsEmpty() {
				belowItems = append(belowItems, kdItem{id: it.id, box: left})
			}
			if !right.IsEmpty() {
				aboveItems = append(aboveItems, kdItem{id: it.id, box: right})
			}
		}
	}

	if len(belowItems) == 0 || len(aboveItems) == 0 {
		// Clipping can degrade a seemingly good event-sweep split into a
		// one-sided partition (every object straddles but clips entirely
		// to one side); splitting further would not terminate the
		// recursion, so fall back to a leaf.
		b.makeLeafNode(idx, items)
		return idx
	}

	b.build(belowItems, belowBox, depth+1)
	aboveIdx := b.build(aboveItems, aboveBox, depth+1)
	b.nodes[idx] = makeInner(axis, pos, aboveIdx)
	return idx
}
