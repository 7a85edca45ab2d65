// Package kdtree implements an SAH-built kd-tree with perfect triangle
// clipping: an 8-byte packed node (a float32 split position or a leaf
// object count sharing one 32-bit word with a 2-bit axis tag and a
// 30-bit child/object index), built by a cost-driven sweep over per-axis
// split-candidate events, and walked with an explicit near/far stack.
// Because clipping can place a straddling object on both sides of a
// plane, object references may be duplicated across leaves; traversal
// pairs naturally with a non-Null mailbox.
package kdtree

import "math"

// leafAxis is the sentinel axis value marking a node as a leaf; 0, 1, 2
// mark an inner node split on x, y, z respectively.
const leafAxis = 3

const indexMask = 1<<30 - 1

// Node is one packed 8-byte entry. Do not construct one directly — use
// makeLeaf/makeInner.
type Node struct {
	data        uint32 // leaf: object count. inner: float32 split position bits.
	indexAndTag uint32 // top 2 bits: axis, or leafAxis for a leaf. low 30 bits: index.
}

func makeLeaf(count int, firstObject int32) Node {
	return Node{
		data:        uint32(count),
		indexAndTag: uint32(leafAxis)<<30 | uint32(firstObject)&indexMask,
	}
}

func makeInner(axis int, splitPos float32, aboveChild int32) Node {
	return Node{
		data:        math.Float32bits(splitPos),
		indexAndTag: uint32(axis)<<30 | uint32(aboveChild)&indexMask,
	}
}

// IsLeaf reports whether n is a leaf node.
func (n *Node) IsLeaf() bool {
	return n.indexAndTag>>30 == leafAxis
}

// Axis returns the split axis of an inner node (0, 1 or 2).
func (n *Node) Axis() int {
	return int(n.indexAndTag >> 30)
}

// SplitPos returns the split-plane position of an inner node.
func (n *Node) SplitPos() float32 {
	return math.Float32frombits(n.data)
}

// ObjectCount returns a leaf's object count.
func (n *Node) ObjectCount() int32 {
	return int32(n.data)
}

// FirstObject returns a leaf's first index into the tree's ObjectRefs.
func (n *Node) FirstObject() int32 {
	return int32(n.indexAndTag & indexMask)
}

// AboveChild returns an inner node's "above the split" child index. The
// "below" child is always stored immediately after its parent in the
// node array (index+1), so it needs no field of its own.
func (n *Node) AboveChild() int32 {
	return int32(n.indexAndTag & indexMask)
}
