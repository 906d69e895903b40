// Package geometry prepares polygon meshes for the OVO vertex layout:
// triangulation, per-vertex UV splitting, normals, bounds and LOD levels.
package geometry

import (
	"errors"
	"fmt"

	ovomath "github.com/Faultbox/ovokit/pkg/math"
)

// Geometry errors.
var (
	ErrFaceIndex    = errors.New("face index out of range")
	ErrDegenerate   = errors.New("polygon has fewer than 3 corners")
	ErrNonMonotonic = errors.New("lod level grows in size")
)

// Mesh is a polygon mesh as a scene provider hands it over.
type Mesh struct {
	Positions []ovomath.Vec3
	// Normals and Tangents are per vertex. Either may be nil.
	Normals  []ovomath.Vec3
	Tangents []ovomath.Vec3
	Polygons [][]int
	// UVs holds one UV per polygon corner, indexed like Polygons. A nil
	// layer, a polygon past the end of the layer, or a polygon with the
	// wrong number of corners has no UV data.
	UVs [][]ovomath.Vec2
}

// FaceCount returns the number of triangles the mesh triangulates to.
func (m *Mesh) FaceCount() int {
	n := 0
	for _, p := range m.Polygons {
		if len(p) >= 3 {
			n += len(p) - 2
		}
	}
	return n
}

// Triangles is a triangulated mesh with face-varying UVs.
type Triangles struct {
	Positions []ovomath.Vec3
	Normals   []ovomath.Vec3
	Tangents  []ovomath.Vec3
	Faces     [][3]int
	// UVs[i] holds the corner UVs of Faces[i]; HasUV[i] reports whether
	// face i carries UV data at all. Both may be shorter than Faces.
	UVs   [][3]ovomath.Vec2
	HasUV []bool
}

// faceUV returns the corner UVs of face f, if any.
func (t *Triangles) faceUV(f int) ([3]ovomath.Vec2, bool) {
	if f >= len(t.UVs) || f >= len(t.HasUV) || !t.HasUV[f] {
		return [3]ovomath.Vec2{}, false
	}
	return t.UVs[f], true
}

// Validate checks that every face index addresses a position.
func (t *Triangles) Validate() error {
	n := len(t.Positions)
	for i, f := range t.Faces {
		for _, idx := range f {
			if idx < 0 || idx >= n {
				return fmt.Errorf("%w: face %d index %d (%d vertices)", ErrFaceIndex, i, idx, n)
			}
		}
	}
	return nil
}
