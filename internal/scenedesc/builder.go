package scenedesc

import (
	"fmt"

	"github.com/chewxy/math32"
	xencoding "golang.org/x/text/encoding"

	"github.com/Faultbox/ovokit/internal/importer"
	"github.com/Faultbox/ovokit/pkg/encoding"
	"github.com/Faultbox/ovokit/pkg/geometry"
	ovomath "github.com/Faultbox/ovokit/pkg/math"
	"github.com/Faultbox/ovokit/pkg/ovo"
	"github.com/Faultbox/ovokit/pkg/scene"
)

// Builder collects imported objects into a description. It implements
// importer.ObjectFactory.
type Builder struct {
	scene     *Scene
	materials map[string]bool
	legacy    xencoding.Encoding
}

// NewBuilder creates a builder with an empty scene. Names that are not
// valid UTF-8 are decoded from legacy; nil replaces the bad bytes.
func NewBuilder(legacy xencoding.Encoding) *Builder {
	return &Builder{scene: &Scene{}, materials: make(map[string]bool), legacy: legacy}
}

func (b *Builder) text(s string) string {
	return encoding.ToUTF8(s, b.legacy)
}

// Scene returns the description built so far.
func (b *Builder) Scene() *Scene {
	return b.scene
}

// CreateObject converts one imported object. Top-level objects become
// scene nodes right away; the others wait for Attach.
func (b *Builder) CreateObject(kind scene.Kind, obj *importer.Object) (importer.Handle, error) {
	n := &Node{
		Name:   b.text(obj.Name),
		Matrix: rowsOf(obj.Transform),
		Target: b.text(obj.Record.Base().Target),
	}
	if kind != scene.KindNode {
		n.Kind = kind.String()
	}

	switch rec := obj.Record.(type) {
	case *ovo.Mesh:
		n.Subtype = meshSubtypeName(rec.Subtype)
		n.Material = b.text(rec.Material)
		if len(rec.LODs) > 0 {
			n.Mesh = meshOf(rec.LODs[0])
			full := len(rec.LODs[0].Faces)
			for _, lod := range rec.LODs[1:] {
				n.LODs = append(n.LODs, LOD{Ratio: lodRatio(len(lod.Faces), full), Mesh: meshOf(lod)})
			}
		}
		if rec.Physics != nil {
			n.Physics = physicsOf(rec.Physics)
		}
	case *ovo.Light:
		n.Light = lightOf(rec.LightParams)
	}

	if obj.Material != nil {
		b.AddMaterial(obj.Material)
	}
	if obj.Parent < 0 {
		b.scene.Nodes = append(b.scene.Nodes, n)
	}
	return n, nil
}

// Attach appends child to parent's children.
func (b *Builder) Attach(child, parent importer.Handle) error {
	c, ok := child.(*Node)
	if !ok {
		return fmt.Errorf("scenedesc: attach: unexpected child %T", child)
	}
	p, ok := parent.(*Node)
	if !ok {
		return fmt.Errorf("scenedesc: attach: unexpected parent %T", parent)
	}
	p.Children = append(p.Children, c)
	return nil
}

// AddMaterial adds m unless a material with the same name exists.
func (b *Builder) AddMaterial(m *ovo.Material) {
	if b.materials[m.Name] {
		return
	}
	b.materials[m.Name] = true

	d := &Material{
		Name:      b.text(m.Name),
		BaseColor: ptr(vec3Of(m.BaseColor)),
		Emission:  ptr(vec3Of(m.Emission)),
		Roughness: ptr(m.Roughness),
		Metallic:  ptr(m.Metallic),
		Alpha:     ptr(m.Alpha),
	}
	for i, tex := range m.Textures {
		if tex == "" {
			continue
		}
		if d.Textures == nil {
			d.Textures = make(map[string]string)
		}
		d.Textures[ovo.SlotNames[i]] = b.text(tex)
	}
	b.scene.Materials = append(b.scene.Materials, d)
}

func ptr[T any](v T) *T { return &v }

// rowsOf returns m row by row. Mat4 is column-major, so the rows are the
// columns of the transpose.
func rowsOf(m ovomath.Mat4) *[4][4]float32 {
	t := m.Transpose()
	var rows [4][4]float32
	for r := range rows {
		rows[r] = [4]float32(t[r*4 : r*4+4])
	}
	return &rows
}

// lodRatio returns the face ratio of a level rounded to two decimals.
func lodRatio(faces, full int) float32 {
	if full == 0 {
		return 0
	}
	return math32.Round(float32(faces)/float32(full)*100) / 100
}

func meshOf(lod ovo.LOD) *Mesh {
	g := geometry.Unpack(lod)
	m := &Mesh{
		Positions: make([]Vec3, len(g.Positions)),
		Normals:   make([]Vec3, len(g.Normals)),
		Polygons:  g.Polygons,
		UVs:       make([][]Vec2, len(g.UVs)),
	}
	for i, p := range g.Positions {
		m.Positions[i] = vec3Of(p)
	}
	for i, n := range g.Normals {
		m.Normals[i] = vec3Of(n)
	}
	for i, corners := range g.UVs {
		m.UVs[i] = make([]Vec2, len(corners))
		for j, uv := range corners {
			m.UVs[i][j] = Vec2{uv.X, uv.Y}
		}
	}
	return m
}

func physicsOf(p *ovo.Physics) *Physics {
	d := &Physics{
		Type:                "dynamic",
		ContinuousCollision: p.ContinuousCollision,
		CollideWithBodies:   p.CollideWithBodies,
		Hull:                p.Hull.String(),
		MassCenter:          ptr(vec3Of(p.MassCenter)),
		Mass:                ptr(p.Mass),
		StaticFriction:      ptr(p.StaticFriction),
		DynamicFriction:     ptr(p.DynamicFriction),
		Bounciness:          ptr(p.Bounciness),
		LinearDamping:       ptr(p.LinearDamping),
		AngularDamping:      ptr(p.AngularDamping),
	}
	if p.ObjectType == ovo.PhysicsStatic {
		d.Type = "static"
	}
	for _, h := range p.Hulls {
		hull := Hull{Centroid: vec3Of(h.Centroid), Faces: h.Faces}
		for _, v := range h.Vertices {
			hull.Vertices = append(hull.Vertices, vec3Of(v))
		}
		d.Hulls = append(d.Hulls, hull)
	}
	return d
}

func lightOf(p ovo.LightParams) *Light {
	l := &Light{
		Color:        ptr(vec3Of(p.Color)),
		Radius:       p.Radius,
		Cutoff:       p.Cutoff,
		SpotExponent: p.SpotExponent,
		CastShadows:  p.CastShadows,
		Volumetric:   p.Volumetric,
	}
	switch p.Subtype {
	case ovo.LightDirectional:
		l.Type = "directional"
	case ovo.LightSpot:
		l.Type = "spot"
	default:
		l.Type = "omni"
	}
	if p.Subtype != ovo.LightOmni {
		l.Direction = ptr(vec3Of(p.Direction))
	}
	return l
}
