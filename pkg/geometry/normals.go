package geometry

import (
	ovomath "github.com/Faultbox/ovokit/pkg/math"
)

// ComputeNormals returns area-weighted vertex normals. Vertices no face
// touches get a zero normal.
func ComputeNormals(positions []ovomath.Vec3, faces [][3]int) []ovomath.Vec3 {
	normals := make([]ovomath.Vec3, len(positions))
	for _, f := range faces {
		a, b, c := positions[f[0]], positions[f[1]], positions[f[2]]
		// The cross product length is twice the triangle area.
		n := b.Sub(a).Cross(c.Sub(a))
		for _, idx := range f {
			normals[idx] = normals[idx].Add(n)
		}
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	return normals
}
