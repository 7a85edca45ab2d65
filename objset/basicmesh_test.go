package objset

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tinyrt/tinyrt/vecmath"
)

func singleTriangleMesh() *BasicMesh {
	return NewBasicMesh(
		[]vecmath.Vec3{
			vecmath.NewVec3(0, 0, 0),
			vecmath.NewVec3(1, 0, 0),
			vecmath.NewVec3(0, 1, 0),
		},
		[]int32{0, 1, 2},
	)
}

func TestBasicMeshRayIntersectUpdatesHit(t *testing.T) {
	mesh := singleTriangleMesh()
	ray := vecmath.NewRay(vecmath.NewVec3(0.25, 0.25, -1), vecmath.NewVec3(0, 0, 1), 0, 1e30)
	hit := NewMiss()

	updated := mesh.RayIntersect(&ray, &hit, 0)
	require.True(t, updated)
	require.True(t, hit.Hit())
	require.EqualValues(t, 0, hit.ObjectIndex)
	require.InDelta(t, float32(1), ray.MaxDistance, 1e-5)
}

func TestBasicMeshRayIntersectMissLeavesHitUntouched(t *testing.T) {
	mesh := singleTriangleMesh()
	ray := vecmath.NewRay(vecmath.NewVec3(5, 5, -1), vecmath.NewVec3(0, 0, 1), 0, 1e30)
	hit := NewMiss()

	updated := mesh.RayIntersect(&ray, &hit, 0)
	require.False(t, updated)
	require.False(t, hit.Hit())
}

func TestBasicMeshRemapReordersTriangles(t *testing.T) {
	mesh := NewBasicMesh(
		[]vecmath.Vec3{
			vecmath.NewVec3(0, 0, 0), vecmath.NewVec3(1, 0, 0), vecmath.NewVec3(0, 1, 0),
			vecmath.NewVec3(5, 5, 5), vecmath.NewVec3(6, 5, 5), vecmath.NewVec3(5, 6, 5),
		},
		[]int32{0, 1, 2, 3, 4, 5},
	)

	original1 := mesh.ObjectAABB(1)
	mesh.Remap([]int{1, 0})
	require.Equal(t, original1, mesh.ObjectAABB(0))
}

func TestBasicMeshCount(t *testing.T) {
	mesh := singleTriangleMesh()
	require.Equal(t, 1, mesh.Count())
}
