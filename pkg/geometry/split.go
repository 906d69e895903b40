package geometry

import (
	"math"
	"slices"

	ovomath "github.com/Faultbox/ovokit/pkg/math"
)

// DefaultUVPrecision is the number of decimals UVs are rounded to before
// they are compared.
const DefaultUVPrecision = 5

// SplitOptions configures Split.
type SplitOptions struct {
	// Precision is the number of decimals used to merge nearly equal UVs.
	// Zero or less means DefaultUVPrecision.
	Precision int
}

// Vertex is an output vertex carrying exactly one UV.
type Vertex struct {
	Position ovomath.Vec3
	Normal   ovomath.Vec3
	Tangent  ovomath.Vec3
	UV       ovomath.Vec2
	Source   int // index of the input position
}

// Result is a split mesh ready for packing.
type Result struct {
	Vertices []Vertex
	Faces    [][3]uint32
	// Defaulted counts vertices that had faces but no UV and were given (0,0).
	Defaulted int
	// Fallbacks counts face corners that could not be matched and were
	// pointed at the first copy of their vertex instead.
	Fallbacks int
}

type uvKey struct {
	u, v int64
}

// Split reconciles face-varying UVs with one UV per vertex. Every input
// vertex is emitted once per distinct rounded UV among the faces that use
// it, in input vertex order and first-seen UV order; vertices no face
// uses are dropped. Faces are remapped onto the new vertices.
//
// The output can hold many more vertices than the input on meshes with
// dense UV seams.
func Split(t *Triangles, opts SplitOptions) (*Result, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	prec := opts.Precision
	if prec <= 0 {
		prec = DefaultUVPrecision
	}
	scale := math.Pow10(prec)
	keyOf := func(uv ovomath.Vec2) uvKey {
		return uvKey{
			u: int64(math.Round(float64(uv.X) * scale)),
			v: int64(math.Round(float64(uv.Y) * scale)),
		}
	}

	n := len(t.Positions)
	normals := t.Normals
	if len(normals) != n {
		normals = ComputeNormals(t.Positions, t.Faces)
	}
	tangents := t.Tangents
	if len(tangents) != n {
		tangents = nil
	}

	// Collect distinct UVs per vertex in first-seen order.
	keys := make([][]uvKey, n)
	used := make([]bool, n)
	for f, face := range t.Faces {
		uvs, ok := t.faceUV(f)
		for c, v := range face {
			used[v] = true
			if !ok {
				continue
			}
			k := keyOf(uvs[c])
			if !slices.Contains(keys[v], k) {
				keys[v] = append(keys[v], k)
			}
		}
	}

	res := &Result{}
	base := make([]int, n)
	for v := 0; v < n; v++ {
		if !used[v] {
			base[v] = -1
			continue
		}
		if len(keys[v]) == 0 {
			keys[v] = []uvKey{{}}
			res.Defaulted++
		}

		base[v] = len(res.Vertices)
		for _, k := range keys[v] {
			out := Vertex{
				Position: t.Positions[v],
				Normal:   normals[v],
				UV: ovomath.Vec2{
					X: float32(float64(k.u) / scale),
					Y: float32(float64(k.v) / scale),
				},
				Source: v,
			}
			if tangents != nil {
				out.Tangent = tangents[v]
			}
			res.Vertices = append(res.Vertices, out)
		}
	}

	res.Faces = make([][3]uint32, len(t.Faces))
	for f, face := range t.Faces {
		uvs, ok := t.faceUV(f)
		for c, v := range face {
			var k uvKey
			if ok {
				k = keyOf(uvs[c])
			}
			i := slices.Index(keys[v], k)
			if i < 0 {
				// Corner without UV on a vertex whose UVs came from other faces.
				i = 0
				res.Fallbacks++
			}
			res.Faces[f][c] = uint32(base[v] + i)
		}
	}

	return res, nil
}
