package geometry

import (
	ovomath "github.com/Faultbox/ovokit/pkg/math"
	"github.com/Faultbox/ovokit/pkg/ovo"
)

// Pack converts the split mesh into an OVO level of detail.
func (r *Result) Pack() ovo.LOD {
	lod := ovo.LOD{
		Vertices: make([]ovo.Vertex, len(r.Vertices)),
		Faces:    r.Faces,
	}
	for i, v := range r.Vertices {
		lod.Vertices[i] = ovo.Vertex{
			Position: v.Position,
			Normal:   ovo.PackNormal(v.Normal),
			UV:       ovo.PackUV(v.UV),
			Tangent:  ovo.PackTangent(v.Tangent),
		}
	}
	return lod
}

// Unpack converts an OVO level of detail back into a triangle mesh. Each
// face carries the UVs of its vertices.
func Unpack(lod ovo.LOD) *Mesh {
	m := &Mesh{
		Positions: make([]ovomath.Vec3, len(lod.Vertices)),
		Normals:   make([]ovomath.Vec3, len(lod.Vertices)),
		Polygons:  make([][]int, len(lod.Faces)),
		UVs:       make([][]ovomath.Vec2, len(lod.Faces)),
	}
	uvs := make([]ovomath.Vec2, len(lod.Vertices))
	for i, v := range lod.Vertices {
		m.Positions[i] = v.Position
		m.Normals[i] = v.UnpackedNormal()
		uvs[i] = v.UnpackedUV()
	}
	for i, f := range lod.Faces {
		m.Polygons[i] = []int{int(f[0]), int(f[1]), int(f[2])}
		m.UVs[i] = []ovomath.Vec2{uvs[f[0]], uvs[f[1]], uvs[f[2]]}
	}
	return m
}
