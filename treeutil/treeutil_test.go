package treeutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tinyrt/tinyrt/objset"
	"github.com/tinyrt/tinyrt/vecmath"
)

func threeTriangleMesh() *objset.BasicMesh {
	var verts []vecmath.Vec3
	var idx []int32
	for i := 0; i < 3; i++ {
		base := int32(len(verts))
		x := float32(i) * 2
		verts = append(verts,
			vecmath.NewVec3(x, 0, 0),
			vecmath.NewVec3(x+1, 0, 0),
			vecmath.NewVec3(x, 1, 0),
		)
		idx = append(idx, base, base+1, base+2)
	}
	return objset.NewBasicMesh(verts, idx)
}

func TestRemapObjectsAppliesPermutation(t *testing.T) {
	mesh := threeTriangleMesh()
	want := mesh.ObjectAABB(2)

	RemapObjects(mesh, []int{2, 0, 1})
	require.Equal(t, want, mesh.ObjectAABB(0))
}

func TestRemapObjectsReturnsInverse(t *testing.T) {
	mesh := threeTriangleMesh()
	inverse := RemapObjects(mesh, []int{2, 0, 1})

	// perm[newID] = oldID, so inverse[oldID] = newID.
	require.Equal(t, []int{1, 2, 0}, inverse)
}
