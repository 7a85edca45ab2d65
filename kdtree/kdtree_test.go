package kdtree

import (
	"testing"

	"github.com/stretchr/testify/require"
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

func TestBuildEmptyObjectSetFails(t *testing.T) {
	mesh := objset.NewBasicMesh(nil, nil)
	_, err := Build(mesh, DefaultOptions())
	require.ErrorIs(t, err, ErrEmptyObjectSet)
}

func TestBuildSatisfiesInvariants(t *testing.T) {
	mesh := gridMesh(6)
	tree, err := Build(mesh, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, CheckKDTree(tree, mesh))
}

func TestRaycastFindsClosestTriangle(t *testing.T) {
	mesh := gridMesh(5)
	tree, err := Build(mesh, DefaultOptions())
	require.NoError(t, err)

	ray := vecmath.NewRay(vecmath.NewVec3(2.25, 4.25, -5), vecmath.NewVec3(0, 0, 1), 0, 1e30)
	hit := objset.NewMiss()
	stack := tree.NewStack()

	found := Raycast[mailbox.Null](tree, mesh, &ray, &hit, mailbox.Null{}, stack)
	require.True(t, found)
	require.True(t, hit.Hit())
	require.InDelta(t, float32(5), ray.MaxDistance, 1e-4)
}

func TestRaycastMissesEmptySpace(t *testing.T) {
	mesh := gridMesh(5)
	tree, err := Build(mesh, DefaultOptions())
	require.NoError(t, err)

	ray := vecmath.NewRay(vecmath.NewVec3(1000, 1000, -5), vecmath.NewVec3(0, 0, 1), 0, 1e30)
	hit := objset.NewMiss()
	stack := tree.NewStack()

	found := Raycast[mailbox.Null](tree, mesh, &ray, &hit, mailbox.Null{}, stack)
	require.False(t, found)
}

func TestRaycastSingleTriangleLeafWithFIFOMailbox(t *testing.T) {
	// A single long thin triangle with LeafThreshold 1: the root is one
	// leaf holding it, and a ray through its middle, cast with a FIFO
	// mailbox, must report that triangle.
	mesh := objset.NewBasicMesh(
		[]vecmath.Vec3{
			vecmath.NewVec3(0, 0, 0),
			vecmath.NewVec3(20, 0, 0),
			vecmath.NewVec3(0, 1, 0),
		},
		[]int32{0, 1, 2},
	)
	tree, err := Build(mesh, Options{LeafThreshold: 1, TraversalCost: 1, IntersectCost: 1})
	require.NoError(t, err)

	ray := vecmath.NewRay(vecmath.NewVec3(10, 0.25, -1), vecmath.NewVec3(0, 0, 1), 0, 1e30)
	hit := objset.NewMiss()
	mb := mailbox.NewFIFO(4)
	stack := tree.NewStack()

	found := Raycast[*mailbox.FIFO](tree, mesh, &ray, &hit, mb, stack)
	require.True(t, found)
	require.EqualValues(t, 0, hit.ObjectIndex)
}
