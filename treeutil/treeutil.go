// Package treeutil holds introspection helpers shared by every
// acceleration structure: a common Stats shape reported by
// GetMemoryUsage()-style calls, and an array-remap helper that reorders an
// object set into a built tree's leaf order (used by
// qbvh.Tree.RemapToRefOrder) — one place instead of a copy per structure.
package treeutil

import "github.com/tinyrt/tinyrt/objset"

// Stats summarizes a built structure for tuning and tests.
type Stats struct {
	NodeCount      int
	LeafCount      int
	MaxDepth       int
	ObjectRefCount int
	UsedBytes      int
	AllocatedBytes int
}

// RemapObjects applies perm to objects (objects.Remap(perm)) and returns
// the inverse permutation: inverse[oldID] = newID. A caller holding a
// leaf-object order (a permutation of [0,N)), such as
// qbvh.Tree.RemapToRefOrder after a build, calls this to both reorder the
// object set's backing storage and learn where each original id ended up.
func RemapObjects(objects objset.Set, perm []int) []int {
	objects.Remap(perm)

	inverse := make([]int, len(perm))
	for newID, oldID := range perm {
		inverse[oldID] = newID
	}
	return inverse
}
