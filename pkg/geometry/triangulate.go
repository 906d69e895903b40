package geometry

import (
	"fmt"

	ovomath "github.com/Faultbox/ovokit/pkg/math"
)

// Triangulate converts polygons to triangles. Triangles are kept as is,
// quads split into (0,1,2),(0,2,3) and larger polygons fan out from
// corner 0. Corner UVs follow their corners.
func Triangulate(m *Mesh) (*Triangles, error) {
	t := &Triangles{
		Positions: m.Positions,
		Normals:   m.Normals,
		Tangents:  m.Tangents,
		Faces:     make([][3]int, 0, m.FaceCount()),
	}
	hasLayer := m.UVs != nil
	if hasLayer {
		t.UVs = make([][3]ovomath.Vec2, 0, m.FaceCount())
		t.HasUV = make([]bool, 0, m.FaceCount())
	}

	for pi, poly := range m.Polygons {
		if len(poly) < 3 {
			return nil, fmt.Errorf("%w: polygon %d", ErrDegenerate, pi)
		}

		var uvs []ovomath.Vec2
		if hasLayer && pi < len(m.UVs) && len(m.UVs[pi]) == len(poly) {
			uvs = m.UVs[pi]
		}

		for k := 1; k+1 < len(poly); k++ {
			t.Faces = append(t.Faces, [3]int{poly[0], poly[k], poly[k+1]})
			if !hasLayer {
				continue
			}
			if uvs != nil {
				t.UVs = append(t.UVs, [3]ovomath.Vec2{uvs[0], uvs[k], uvs[k+1]})
				t.HasUV = append(t.HasUV, true)
			} else {
				t.UVs = append(t.UVs, [3]ovomath.Vec2{})
				t.HasUV = append(t.HasUV, false)
			}
		}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
