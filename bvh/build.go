package bvh

import (
	"github.com/tinyrt/tinyrt/objset"
	"github.com/tinyrt/tinyrt/vecmath"
)

// buildItem is one object as seen by a builder: its id in the original
// object set, its AABB, and the AABB's center (the point every builder
// partitions on). Builders never touch objset.Set directly once this
// slice is computed — they only reorder buildItems.
type buildItem struct {
	id       int32
	box      vecmath.AABB
	centroid vecmath.Vec3
}

// partitionFunc reorders items in place and reports the split point
// (the first mid items go left, the rest go right) and the axis the
// split was made on. ok is false when the builder decides the range
// should be a leaf instead (e.g. SAH finds no split cheaper than not
// splitting).
type partitionFunc func(items []buildItem) (mid int, axis uint8, ok bool)

// Builder builds a Tree over an object set. MedianCutBuilder and
// SAHBuilder are the two provided implementations.
type Builder interface {
	Build(objects objset.Set) (*Tree, error)
}

// Options controls the shape of a built tree; both builders share it.
type Options struct {
	// LeafThreshold is the largest object count a leaf may hold; ranges
	// at or below it are never split further.
	LeafThreshold int
	// MaxDepth bounds recursion depth as a backstop against degenerate
	// inputs (many coincident centroids) that would otherwise recurse
	// until LeafThreshold is reached one object at a time.
	MaxDepth int
}

// DefaultOptions returns a small leaf threshold with depth capped well
// below any stack-overflow risk.
func DefaultOptions() Options {
	return Options{LeafThreshold: 4, MaxDepth: 64}
}

type builderState struct {
	items        []buildItem
	nodes        []Node
	opts         Options
	maxDepthSeen int32
}

func newBuilderState(n int, opts Options) *builderState {
	return &builderState{items: make([]buildItem, n), opts: opts}
}

func boundsOf(items []buildItem) vecmath.AABB {
	box := vecmath.EmptyAABB()
	for _, it := range items {
		box = box.Union(it.box)
	}
	return box
}

// build fills s.nodes[nodeIdx] and, if the range warrants a split,
// recurses into two freshly reserved, consecutive child slots.
func (s *builderState) build(nodeIdx, lo, hi, depth int32, partition partitionFunc) {
	if depth > s.maxDepthSeen {
		s.maxDepthSeen = depth
	}
	items := s.items[lo:hi]
	box := boundsOf(items)
	count := hi - lo

	if int(count) <= s.opts.LeafThreshold || int(depth) >= s.opts.MaxDepth {
		s.nodes[nodeIdx] = Node{Bounds: box, FirstObject: lo, Count: uint16(count)}
		return
	}

	mid, axis, ok := partition(items)
	if !ok || mid <= 0 || mid >= len(items) {
		s.nodes[nodeIdx] = Node{Bounds: box, FirstObject: lo, Count: uint16(count)}
		return
	}

	split := lo + int32(mid)
	leftIdx := int32(len(s.nodes))
	s.nodes = append(s.nodes, Node{}, Node{})
	s.nodes[nodeIdx] = Node{Bounds: box, Left: leftIdx, Axis: axis}

	s.build(leftIdx, lo, split, depth+1, partition)
	s.build(leftIdx+1, split, hi, depth+1, partition)
}

// buildTree is the shared entry point both builders call once they have
// a partitionFunc: compute per-object bounds/centroids, recurse, then
// emit the leaf object-reference permutation.
func buildTree(objects objset.Set, opts Options, partition partitionFunc) (*Tree, error) {
	n := objects.Count()
	if n == 0 {
		return nil, ErrEmptyObjectSet
	}

	state := newBuilderState(n, opts)
	for i := 0; i < n; i++ {
		box := objects.ObjectAABB(i)
		state.items[i] = buildItem{id: int32(i), box: box, centroid: box.Center()}
	}

	state.nodes = append(state.nodes, Node{})
	state.build(0, 0, int32(n), 0, partition)

	refs := make([]int32, n)
	for i, it := range state.items {
		refs[i] = it.id
	}

	return &Tree{Nodes: state.nodes, ObjectRefs: refs, maxDepth: int(state.maxDepthSeen)}, nil
}
