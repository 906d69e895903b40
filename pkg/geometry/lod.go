package geometry

import (
	"fmt"
)

// LODOptions decides when and how a mesh gets extra levels of detail.
type LODOptions struct {
	// FaceThreshold is the triangle count above which levels are generated.
	FaceThreshold int
	// Ratios are the decimation ratios per level; level 0 is always 1.
	Ratios []float32
}

// DefaultLODOptions returns the standard LOD policy.
func DefaultLODOptions() LODOptions {
	return LODOptions{
		FaceThreshold: 300000,
		Ratios:        []float32{1.0, 0.8, 0.5, 0.3, 0.1},
	}
}

// Plan returns the decimation ratios for a mesh with faceCount triangles.
// Meshes at or below the threshold get the single ratio 1.
func (o LODOptions) Plan(faceCount int) []float32 {
	if o.FaceThreshold <= 0 || faceCount <= o.FaceThreshold || len(o.Ratios) == 0 {
		return []float32{1}
	}

	plan := []float32{1}
	for _, r := range o.Ratios {
		if r > 0 && r < 1 {
			plan = append(plan, r)
		}
	}
	return plan
}

// SplitLevels triangulates and splits every level. levels[0] must be the
// original geometry; each later level supplies its own UV layer.
func SplitLevels(levels []*Mesh, opts SplitOptions) ([]*Result, error) {
	out := make([]*Result, 0, len(levels))
	for i, m := range levels {
		tri, err := Triangulate(m)
		if err != nil {
			return nil, fmt.Errorf("lod %d: %w", i, err)
		}
		res, err := Split(tri, opts)
		if err != nil {
			return nil, fmt.Errorf("lod %d: %w", i, err)
		}
		out = append(out, res)
	}
	return out, nil
}

// CheckMonotonic reports the first level that has more vertices or faces
// than the level before it. Such files are still valid.
func CheckMonotonic(levels []*Result) error {
	for i := 1; i < len(levels); i++ {
		prev, cur := levels[i-1], levels[i]
		if len(cur.Vertices) > len(prev.Vertices) || len(cur.Faces) > len(prev.Faces) {
			return fmt.Errorf("%w: level %d has %d vertices/%d faces, level %d has %d/%d",
				ErrNonMonotonic, i, len(cur.Vertices), len(cur.Faces),
				i-1, len(prev.Vertices), len(prev.Faces))
		}
	}
	return nil
}
