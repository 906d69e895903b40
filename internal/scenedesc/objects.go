package scenedesc

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/ovokit/pkg/geometry"
	ovomath "github.com/Faultbox/ovokit/pkg/math"
	"github.com/Faultbox/ovokit/pkg/ovo"
	"github.com/Faultbox/ovokit/pkg/scene"
)

// lodTolerance is how far a requested ratio may be from a described one.
const lodTolerance = 0.01

type nodeObject struct {
	n    *Node
	kids []scene.Object
}

type meshObject struct{ *nodeObject }

type lightObject struct{ *nodeObject }

func newObject(n *Node) scene.Object {
	base := &nodeObject{n: n}
	for _, c := range n.Children {
		base.kids = append(base.kids, newObject(c))
	}

	k, _ := n.kind()
	switch k {
	case scene.KindMesh:
		return &meshObject{base}
	case scene.KindLight:
		return &lightObject{base}
	default:
		return base
	}
}

func (o *nodeObject) ID() string { return o.n.ID }
func (o *nodeObject) Name() string { return o.n.Name }
func (o *nodeObject) Transform() ovomath.Mat4 { return o.n.transform() }
func (o *nodeObject) Children() []scene.Object { return o.kids }
func (o *nodeObject) Target() string { return o.n.Target }

func (o *nodeObject) Kind() scene.Kind {
	k, _ := o.n.kind()
	return k
}

func (o *meshObject) Geometry() (*geometry.Mesh, error) {
	if o.n.Mesh == nil {
		return nil, nil
	}
	return o.n.Mesh.geometry(), nil
}

func (o *meshObject) MaterialName() string { return o.n.Material }

func (o *meshObject) MeshSubtype() ovo.MeshSubtype {
	st, _ := o.n.meshSubtype()
	return st
}

func (o *meshObject) Physics() *ovo.Physics {
	if o.n.Physics == nil {
		return nil
	}
	p, _ := o.n.Physics.record()
	return p
}

// Decimate returns the described level closest to ratio, or nil when no
// level is close enough.
func (o *meshObject) Decimate(ratio float32) (*geometry.Mesh, error) {
	for _, l := range o.n.LODs {
		if l.Mesh != nil && math32.Abs(l.Ratio-ratio) <= lodTolerance {
			return l.Mesh.geometry(), nil
		}
	}
	return nil, nil
}

func (o *lightObject) LightParams() ovo.LightParams {
	if o.n.Light == nil {
		p, _ := (&Light{}).params()
		return p
	}
	p, _ := o.n.Light.params()
	return p
}

func (m *Mesh) geometry() *geometry.Mesh {
	g := &geometry.Mesh{
		Positions: make([]ovomath.Vec3, len(m.Positions)),
		Polygons:  m.Polygons,
	}
	for i, p := range m.Positions {
		g.Positions[i] = p.vec()
	}
	if len(m.Normals) > 0 {
		g.Normals = make([]ovomath.Vec3, len(m.Normals))
		for i, n := range m.Normals {
			g.Normals[i] = n.vec()
		}
	}
	if len(m.Tangents) > 0 {
		g.Tangents = make([]ovomath.Vec3, len(m.Tangents))
		for i, t := range m.Tangents {
			g.Tangents[i] = t.vec()
		}
	}
	if m.UVs != nil {
		g.UVs = make([][]ovomath.Vec2, len(m.UVs))
		for i, corners := range m.UVs {
			g.UVs[i] = make([]ovomath.Vec2, len(corners))
			for j, uv := range corners {
				g.UVs[i][j] = uv.vec()
			}
		}
	}
	return g
}
