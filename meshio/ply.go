// Package meshio loads mesh files into objset.BasicMesh. It is a
// collaborator, not core: the acceleration structures see geometry only
// through objset.Set and never depend on a file format.
package meshio

import (
	"io"

	"github.com/chenzhekl/goply"
	"github.com/pkg/errors"
	"github.com/tinyrt/tinyrt/objset"
	"github.com/tinyrt/tinyrt/vecmath"
)

// LoadPLY parses a binary or ASCII PLY stream holding a triangle mesh
// ("vertex" elements with x/y/z properties, "face" elements with a
// vertex_indices list property) into a BasicMesh, recentered so its
// bounds are centered on the x/z origin and its lowest point sits at
// y = 0 — the usual convention for dropping a loaded model onto a scene
// floor.
func LoadPLY(r io.Reader) (*objset.BasicMesh, error) {
	parser := goply.New(r)

	rawVertices := parser.Elements("vertex")
	rawFaces := parser.Elements("face")
	if len(rawVertices) == 0 || len(rawFaces) == 0 {
		return nil, errors.New("meshio: PLY stream has no vertex/face elements")
	}

	vertices := make([]vecmath.Vec3, len(rawVertices))
	for i, v := range rawVertices {
		x, errX := propertyFloat(v, "x")
		y, errY := propertyFloat(v, "y")
		z, errZ := propertyFloat(v, "z")
		if errX != nil || errY != nil || errZ != nil {
			return nil, errors.Errorf("meshio: vertex %d missing x/y/z property", i)
		}
		vertices[i] = vecmath.NewVec3(x, y, z)
	}

	var indices []int32
	for i, f := range rawFaces {
		face, err := propertyIndices(f)
		if err != nil {
			return nil, errors.Wrapf(err, "meshio: face %d", i)
		}
		// Fan-triangulate any polygon with more than 3 vertices.
		for k := 1; k+1 < len(face); k++ {
			indices = append(indices, face[0], face[k], face[k+1])
		}
	}
	if len(indices) == 0 {
		return nil, errors.New("meshio: PLY stream has no triangulable faces")
	}

	recenter(vertices)
	return objset.NewBasicMesh(vertices, indices), nil
}

// recenter translates vertices in place so the mesh's AABB is centered
// on x and z and its minimum y sits at 0.
func recenter(vertices []vecmath.Vec3) {
	box := vecmath.AABBFromPoints(vertices...)
	center := box.Center()
	minY := box.Min[1]

	for i, v := range vertices {
		vertices[i] = vecmath.NewVec3(v[0]-center[0], v[1]-minY, v[2]-center[2])
	}
}

func propertyFloat(props map[string]interface{}, key string) (float32, error) {
	v, ok := props[key]
	if !ok {
		return 0, errors.Errorf("meshio: missing property %q", key)
	}
	switch n := v.(type) {
	case float32:
		return n, nil
	case float64:
		return float32(n), nil
	default:
		return 0, errors.Errorf("meshio: property %q has unexpected type %T", key, v)
	}
}

func propertyIndices(props map[string]interface{}) ([]int32, error) {
	v, ok := props["vertex_indices"]
	if !ok {
		v, ok = props["vertex_index"]
	}
	if !ok {
		return nil, errors.New("meshio: face element has no vertex_indices property")
	}

	switch raw := v.(type) {
	case []int:
		out := make([]int32, len(raw))
		for i, n := range raw {
			out[i] = int32(n)
		}
		return out, nil
	case []int32:
		return raw, nil
	case []float64:
		out := make([]int32, len(raw))
		for i, n := range raw {
			out[i] = int32(n)
		}
		return out, nil
	default:
		return nil, errors.Errorf("meshio: vertex_indices has unexpected type %T", v)
	}
}
