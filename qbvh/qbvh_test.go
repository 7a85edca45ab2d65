package qbvh

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tinyrt/tinyrt/bvh"
	"github.com/tinyrt/tinyrt/mailbox"
	"github.com/tinyrt/tinyrt/objset"
	"github.com/tinyrt/tinyrt/vecmath"
)

func gridMesh(n int) *objset.BasicMesh {
	var verts []vecmath.Vec3
	var idx []int32
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			base := int32(len(verts))
			fx, fy := float32(x)*2, float32(y)*2
			verts = append(verts,
				vecmath.NewVec3(fx, fy, 0),
				vecmath.NewVec3(fx+1, fy, 0),
				vecmath.NewVec3(fx, fy+1, 0),
			)
			idx = append(idx, base, base+1, base+2)
		}
	}
	return objset.NewBasicMesh(verts, idx)
}

func TestBuildSatisfiesInvariants(t *testing.T) {
	mesh := gridMesh(8)
	tree, err := Build(mesh, bvh.DefaultOptions(), 16, 1.0, 1.0)
	require.NoError(t, err)
	require.NoError(t, CheckQBVH(tree, mesh))
}

func TestBuildEmptyObjectSetFails(t *testing.T) {
	mesh := objset.NewBasicMesh(nil, nil)
	_, err := Build(mesh, bvh.DefaultOptions(), 16, 1.0, 1.0)
	require.ErrorIs(t, err, ErrEmptyObjectSet)
}

func TestSmallMeshCollapsesToSingleLeafLane(t *testing.T) {
	mesh := gridMesh(1)
	tree, err := Build(mesh, bvh.DefaultOptions(), 16, 1.0, 1.0)
	require.NoError(t, err)
	require.Len(t, tree.Nodes, 1)
	require.EqualValues(t, 1, tree.Nodes[0].Count[0])
}

func TestRaycastAgreesWithUnderlyingBVH(t *testing.T) {
	mesh := gridMesh(8)
	sah := bvh.NewSAHBuilder(bvh.DefaultOptions(), 16, 1.0, 1.0)
	binaryTree, err := sah.Build(mesh)
	require.NoError(t, err)
	qt := CollapseFromBVH(binaryTree)

	ray := vecmath.NewRay(vecmath.NewVec3(4.25, 6.25, -5), vecmath.NewVec3(0, 0, 1), 0, 1e30)

	hitBVH := objset.NewMiss()
	rayBVH := ray
	foundBVH := bvh.Raycast[mailbox.Null](binaryTree, mesh, &rayBVH, &hitBVH, mailbox.Null{}, make([]int32, binaryTree.StackSize()))

	hitQBVH := objset.NewMiss()
	rayQBVH := ray
	foundQBVH := Raycast[mailbox.Null](qt, mesh, &rayQBVH, &hitQBVH, mailbox.Null{}, make([]int32, qt.StackSize()))

	require.Equal(t, foundBVH, foundQBVH)
	if foundBVH {
		require.Equal(t, hitBVH.ObjectIndex, hitQBVH.ObjectIndex)
		require.InDelta(t, rayBVH.MaxDistance, rayQBVH.MaxDistance, 1e-4)
	}
}

func TestRaycastMissesEmptySpace(t *testing.T) {
	mesh := gridMesh(4)
	tree, err := Build(mesh, bvh.DefaultOptions(), 16, 1.0, 1.0)
	require.NoError(t, err)

	ray := vecmath.NewRay(vecmath.NewVec3(1000, 1000, -5), vecmath.NewVec3(0, 0, 1), 0, 1e30)
	hit := objset.NewMiss()
	found := Raycast[mailbox.Null](tree, mesh, &ray, &hit, mailbox.Null{}, make([]int32, tree.StackSize()))
	require.False(t, found)
}

func TestRemapToRefOrderPreservesHits(t *testing.T) {
	meshA := gridMesh(6)
	meshB := gridMesh(6)

	plain, err := Build(meshA, bvh.DefaultOptions(), 16, 1.0, 1.0)
	require.NoError(t, err)

	remapped, err := Build(meshB, bvh.DefaultOptions(), 16, 1.0, 1.0)
	require.NoError(t, err)
	remapped.RemapToRefOrder(meshB)
	require.NoError(t, CheckQBVH(remapped, meshB))

	ray := vecmath.NewRay(vecmath.NewVec3(4.25, 6.25, -5), vecmath.NewVec3(0, 0, 1), 0, 1e30)

	rayA := ray
	hitA := objset.NewMiss()
	foundA := Raycast[mailbox.Null](plain, meshA, &rayA, &hitA, mailbox.Null{}, make([]int32, plain.StackSize()))

	rayB := ray
	hitB := objset.NewMiss()
	foundB := Raycast[mailbox.Null](remapped, meshB, &rayB, &hitB, mailbox.Null{}, make([]int32, remapped.StackSize()))

	// Object ids differ after the remap, but both must hit the same
	// geometry at the same distance.
	require.Equal(t, foundA, foundB)
	require.InDelta(t, rayA.MaxDistance, rayB.MaxDistance, 1e-5)
	require.Equal(t, meshA.ObjectAABB(int(hitA.ObjectIndex)), meshB.ObjectAABB(int(hitB.ObjectIndex)))
}

func box(x float32) vecmath.AABB {
	return vecmath.AABB{Min: vecmath.NewVec3(x, 0, 0), Max: vecmath.NewVec3(x+1, 1, 1)}
}

func usedLanes(n *Node) []int {
	var lanes []int
	for i := 0; i < 4; i++ {
		if !n.Bounds.Child(i).IsEmpty() {
			lanes = append(lanes, i)
		}
	}
	return lanes
}

func TestCollapseBothLeafChildrenYieldsTwoLanes(t *testing.T) {
	bt := &bvh.Tree{
		Nodes: []bvh.Node{
			{Bounds: box(0), Left: 1},
			{Bounds: box(0), FirstObject: 0, Count: 1},
			{Bounds: box(1), FirstObject: 1, Count: 1},
		},
		ObjectRefs: []int32{0, 1},
	}

	qt := CollapseFromBVH(bt)
	require.Len(t, qt.Nodes, 1)
	root := &qt.Nodes[0]
	require.Equal(t, []int{0, 1}, usedLanes(root))
	require.EqualValues(t, 1, root.Count[0])
	require.EqualValues(t, 1, root.Count[1])
}

func TestCollapseBothInnerChildrenLiftsFourGrandchildren(t *testing.T) {
	bt := &bvh.Tree{
		Nodes: []bvh.Node{
			{Bounds: box(0), Left: 1},
			{Bounds: box(0), Left: 3},
			{Bounds: box(2), Left: 5},
			{Bounds: box(0), FirstObject: 0, Count: 1},
			{Bounds: box(1), FirstObject: 1, Count: 1},
			{Bounds: box(2), FirstObject: 2, Count: 1},
			{Bounds: box(3), FirstObject: 3, Count: 1},
		},
		ObjectRefs: []int32{0, 1, 2, 3},
	}

	qt := CollapseFromBVH(bt)
	require.Len(t, qt.Nodes, 1)
	root := &qt.Nodes[0]
	require.Equal(t, []int{0, 1, 2, 3}, usedLanes(root))
	for i := 0; i < 4; i++ {
		require.EqualValues(t, 1, root.Count[i])
		require.EqualValues(t, i, root.FirstObject[i])
	}
}

func TestCollapseMixedChildrenYieldsExactlyThreeLanes(t *testing.T) {
	// Left child is a leaf; right child is inner with one grandchild that
	// is itself inner. The collapse must stop at the two grandchildren —
	// exactly three lanes, with the inner grandchild becoming a child
	// node of its own rather than being expanded into this one.
	bt := &bvh.Tree{
		Nodes: []bvh.Node{
			{Bounds: box(0), Left: 1},
			{Bounds: box(0), FirstObject: 0, Count: 1},
			{Bounds: box(1), Left: 3},
			{Bounds: box(1), Left: 5},
			{Bounds: box(3), FirstObject: 1, Count: 1},
			{Bounds: box(1), FirstObject: 2, Count: 1},
			{Bounds: box(2), FirstObject: 3, Count: 1},
		},
		ObjectRefs: []int32{0, 1, 2, 3},
	}

	qt := CollapseFromBVH(bt)
	require.Len(t, qt.Nodes, 2)

	root := &qt.Nodes[0]
	require.Equal(t, []int{0, 1, 2}, usedLanes(root))
	require.EqualValues(t, 1, root.Count[0]) // the leaf child
	require.EqualValues(t, 0, root.FirstObject[0])
	require.EqualValues(t, 0, root.Count[1]) // the inner grandchild, not expanded here
	require.EqualValues(t, 1, root.Child[1])
	require.EqualValues(t, 1, root.Count[2]) // the leaf grandchild
	require.EqualValues(t, 1, root.FirstObject[2])

	// The inner grandchild collapses separately: its two leaves, nothing
	// more.
	child := &qt.Nodes[1]
	require.Equal(t, []int{0, 1}, usedLanes(child))
	require.EqualValues(t, 2, child.FirstObject[0])
	require.EqualValues(t, 3, child.FirstObject[1])
}
