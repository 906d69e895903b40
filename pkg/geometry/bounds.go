package geometry

import (
	ovomath "github.com/Faultbox/ovokit/pkg/math"
)

// Bounds describes the extent of a mesh in object space.
type Bounds struct {
	// Radius is the largest distance of any position from the origin.
	Radius float32
	Min    ovomath.Vec3
	Max    ovomath.Vec3
}

// ComputeBounds measures positions. An empty slice yields zero bounds.
func ComputeBounds(positions []ovomath.Vec3) Bounds {
	if len(positions) == 0 {
		return Bounds{}
	}

	b := Bounds{Min: positions[0], Max: positions[0]}
	for _, p := range positions {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
		if l := p.Length(); l > b.Radius {
			b.Radius = l
		}
	}
	return b
}

// Bounds measures the split vertices.
func (r *Result) Bounds() Bounds {
	ps := make([]ovomath.Vec3, len(r.Vertices))
	for i, v := range r.Vertices {
		ps[i] = v.Position
	}
	return ComputeBounds(ps)
}
