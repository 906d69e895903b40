// Package scenedesc reads and writes YAML scene descriptions. A
// description stands in for a host application scene: it feeds the
// exporter and is rebuilt by the importer.
package scenedesc

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/ovokit/internal/exporter"
	ovomath "github.com/Faultbox/ovokit/pkg/math"
	"github.com/Faultbox/ovokit/pkg/ovo"
	"github.com/Faultbox/ovokit/pkg/scene"
)

// ErrInvalidScene is returned for descriptions that cannot be used.
var ErrInvalidScene = errors.New("invalid scene description")

// Vec2 is a 2D vector written as a flow sequence.
type Vec2 [2]float32

// Vec3 is a 3D vector written as a flow sequence.
type Vec3 [3]float32

func (v Vec2) vec() ovomath.Vec2 { return ovomath.Vec2{X: v[0], Y: v[1]} }
func (v Vec3) vec() ovomath.Vec3 { return ovomath.Vec3{X: v[0], Y: v[1], Z: v[2]} }

func vec3Of(v ovomath.Vec3) Vec3 { return Vec3{v.X, v.Y, v.Z} }

// Scene is a complete description.
type Scene struct {
	Materials []*Material `yaml:"materials,omitempty"`
	Nodes     []*Node     `yaml:"nodes"`

	objects []scene.Object
}

// Material describes one material. Omitted values take the exporter
// defaults.
type Material struct {
	Name      string            `yaml:"name"`
	BaseColor *Vec3             `yaml:"base_color,omitempty,flow"`
	Emission  *Vec3             `yaml:"emission,omitempty,flow"`
	Roughness *float32          `yaml:"roughness,omitempty"`
	Metallic  *float32          `yaml:"metallic,omitempty"`
	Alpha     *float32          `yaml:"alpha,omitempty"`
	Textures  map[string]string `yaml:"textures,omitempty"`
}

// Transform is a translate, rotate, scale decomposition. Rotation is in
// degrees and applied X, then Y, then Z.
type Transform struct {
	Translate *Vec3 `yaml:"translate,omitempty,flow"`
	RotateDeg *Vec3 `yaml:"rotate_deg,omitempty,flow"`
	Scale     *Vec3 `yaml:"scale,omitempty,flow"`
}

// Node describes one object and its children.
type Node struct {
	Name     string         `yaml:"name"`
	ID       string         `yaml:"id,omitempty"`
	Kind     string         `yaml:"kind,omitempty"`
	Xform    *Transform     `yaml:"transform,omitempty"`
	Matrix   *[4][4]float32 `yaml:"matrix,omitempty,flow"`
	Target   string         `yaml:"target,omitempty"`
	Material string         `yaml:"material,omitempty"`
	Subtype  string         `yaml:"subtype,omitempty"`
	Mesh     *Mesh          `yaml:"mesh,omitempty"`
	LODs     []LOD          `yaml:"lods,omitempty"`
	Physics  *Physics       `yaml:"physics,omitempty"`
	Light    *Light         `yaml:"light,omitempty"`
	Children []*Node        `yaml:"children,omitempty"`
}

// Mesh is polygon geometry. UVs holds one UV per polygon corner.
type Mesh struct {
	Positions []Vec3   `yaml:"positions,flow"`
	Normals   []Vec3   `yaml:"normals,omitempty,flow"`
	Tangents  []Vec3   `yaml:"tangents,omitempty,flow"`
	Polygons  [][]int  `yaml:"polygons,flow"`
	UVs       [][]Vec2 `yaml:"uvs,omitempty,flow"`
}

// LOD is a reduced level of detail offered to the exporter.
type LOD struct {
	Ratio float32 `yaml:"ratio"`
	Mesh  *Mesh   `yaml:"mesh"`
}

// Hull is a custom collision hull.
type Hull struct {
	Centroid Vec3        `yaml:"centroid,flow"`
	Vertices []Vec3      `yaml:"vertices,flow"`
	Faces    [][3]uint32 `yaml:"faces,flow"`
}

// Physics describes a rigid body. Omitted values take the defaults of
// ovo.DefaultPhysics.
type Physics struct {
	Type                string   `yaml:"type,omitempty"` // static or dynamic
	ContinuousCollision bool     `yaml:"continuous_collision,omitempty"`
	CollideWithBodies   bool     `yaml:"collide_with_bodies,omitempty"`
	Hull                string   `yaml:"hull,omitempty"`
	MassCenter          *Vec3    `yaml:"mass_center,omitempty,flow"`
	Mass                *float32 `yaml:"mass,omitempty"`
	StaticFriction      *float32 `yaml:"static_friction,omitempty"`
	DynamicFriction     *float32 `yaml:"dynamic_friction,omitempty"`
	Bounciness          *float32 `yaml:"bounciness,omitempty"`
	LinearDamping       *float32 `yaml:"linear_damping,omitempty"`
	AngularDamping      *float32 `yaml:"angular_damping,omitempty"`
	Hulls               []Hull   `yaml:"hulls,omitempty"`
}

// Light describes a light source.
type Light struct {
	Type         string  `yaml:"type,omitempty"` // omni, directional or spot
	Color        *Vec3   `yaml:"color,omitempty,flow"`
	Radius       float32 `yaml:"radius,omitempty"`
	Direction    *Vec3   `yaml:"direction,omitempty,flow"`
	Cutoff       float32 `yaml:"cutoff,omitempty"`
	SpotExponent float32 `yaml:"spot_exponent,omitempty"`
	CastShadows  bool    `yaml:"cast_shadows,omitempty"`
	Volumetric   bool    `yaml:"volumetric,omitempty"`
}

// Load reads a description file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a description. Nodes without an ID get a random one.
func Parse(data []byte) (*Scene, error) {
	s := &Scene{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing scene: %w", err)
	}
	if err := s.prepare(); err != nil {
		return nil, err
	}
	return s, nil
}

// Marshal encodes the description as YAML.
func (s *Scene) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encoding scene: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// prepare checks every node, fills in missing IDs and builds the object
// views handed to the exporter.
func (s *Scene) prepare() error {
	names := make(map[string]bool)
	for _, m := range s.Materials {
		if m.Name == "" {
			return fmt.Errorf("%w: material without a name", ErrInvalidScene)
		}
		for slot := range m.Textures {
			if slotIndex(slot) < 0 {
				return fmt.Errorf("%w: material %q: unknown texture slot %q", ErrInvalidScene, m.Name, slot)
			}
		}
		names[m.Name] = true
	}

	var check func(n *Node) error
	check = func(n *Node) error {
		if n == nil {
			return fmt.Errorf("%w: empty node", ErrInvalidScene)
		}
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		if _, err := n.kind(); err != nil {
			return fmt.Errorf("%w: node %q: %v", ErrInvalidScene, n.Name, err)
		}
		if _, err := n.meshSubtype(); err != nil {
			return fmt.Errorf("%w: node %q: %v", ErrInvalidScene, n.Name, err)
		}
		if n.Physics != nil {
			if _, err := n.Physics.record(); err != nil {
				return fmt.Errorf("%w: node %q: %v", ErrInvalidScene, n.Name, err)
			}
		}
		if n.Light != nil {
			if _, err := n.Light.params(); err != nil {
				return fmt.Errorf("%w: node %q: %v", ErrInvalidScene, n.Name, err)
			}
		}
		for _, c := range n.Children {
			if err := check(c); err != nil {
				return err
			}
		}
		return nil
	}
	for _, n := range s.Nodes {
		if err := check(n); err != nil {
			return err
		}
	}

	s.objects = nil
	s.Objects()
	return nil
}

// Objects returns the top-level objects for the exporter. Nodes added
// after Parse get their missing IDs here.
func (s *Scene) Objects() []scene.Object {
	if s.objects == nil {
		var assign func(n *Node)
		assign = func(n *Node) {
			if n.ID == "" {
				n.ID = uuid.NewString()
			}
			for _, c := range n.Children {
				assign(c)
			}
		}
		for _, n := range s.Nodes {
			assign(n)
			s.objects = append(s.objects, newObject(n))
		}
	}
	return s.objects
}

// MaterialSources returns the materials for the exporter.
func (s *Scene) MaterialSources() []exporter.MaterialSource {
	out := make([]exporter.MaterialSource, len(s.Materials))
	for i, m := range s.Materials {
		out[i] = m
	}
	return out
}

// MaterialRecord applies the defaults and returns the OVO material.
func (m *Material) MaterialRecord() ovo.Material {
	rec := ovo.DefaultMaterial(m.Name)
	if m.BaseColor != nil {
		rec.BaseColor = m.BaseColor.vec()
	}
	if m.Emission != nil {
		rec.Emission = m.Emission.vec()
	}
	if m.Roughness != nil {
		rec.Roughness = *m.Roughness
	}
	if m.Metallic != nil {
		rec.Metallic = *m.Metallic
	}
	if m.Alpha != nil {
		rec.Alpha = *m.Alpha
	}
	for slot, tex := range m.Textures {
		if i := slotIndex(slot); i >= 0 {
			rec.Textures[i] = tex
		}
	}
	return rec
}

func slotIndex(name string) int {
	for i, s := range ovo.SlotNames {
		if s == name {
			return i
		}
	}
	return -1
}

func (n *Node) kind() (scene.Kind, error) {
	if n.Kind != "" {
		return scene.ParseKind(n.Kind)
	}
	switch {
	case n.Mesh != nil:
		return scene.KindMesh, nil
	case n.Light != nil:
		return scene.KindLight, nil
	default:
		return scene.KindNode, nil
	}
}

var meshSubtypes = map[string]ovo.MeshSubtype{
	"":              ovo.MeshDefault,
	"default":       ovo.MeshDefault,
	"normal_mapped": ovo.MeshNormalMapped,
	"tessellated":   ovo.MeshTessellated,
}

func (n *Node) meshSubtype() (ovo.MeshSubtype, error) {
	st, ok := meshSubtypes[n.Subtype]
	if !ok {
		return 0, fmt.Errorf("unknown mesh subtype %q", n.Subtype)
	}
	return st, nil
}

func meshSubtypeName(st ovo.MeshSubtype) string {
	switch st {
	case ovo.MeshNormalMapped:
		return "normal_mapped"
	case ovo.MeshTessellated:
		return "tessellated"
	default:
		return ""
	}
}

// transform returns the local matrix. An explicit matrix wins over the
// decomposition.
func (n *Node) transform() ovomath.Mat4 {
	if n.Matrix != nil {
		return ovomath.FromRows(*n.Matrix)
	}
	m := ovomath.Identity()
	if n.Xform == nil {
		return m
	}
	if t := n.Xform.Translate; t != nil {
		m = m.Mul(ovomath.Translate(t[0], t[1], t[2]))
	}
	if r := n.Xform.RotateDeg; r != nil {
		m = m.Mul(ovomath.RotateZ(ovomath.Radians(r[2]))).
			Mul(ovomath.RotateY(ovomath.Radians(r[1]))).
			Mul(ovomath.RotateX(ovomath.Radians(r[0])))
	}
	if s := n.Xform.Scale; s != nil {
		m = m.Mul(ovomath.Scale(s[0], s[1], s[2]))
	}
	return m
}

func (p *Physics) record() (*ovo.Physics, error) {
	rec := ovo.DefaultPhysics()
	switch p.Type {
	case "", "dynamic":
		rec.ObjectType = ovo.PhysicsDynamic
	case "static":
		rec.ObjectType = ovo.PhysicsStatic
	default:
		return nil, fmt.Errorf("unknown physics type %q", p.Type)
	}
	if p.Hull != "" {
		h, ok := ovo.ParseHullType(p.Hull)
		if !ok {
			return nil, fmt.Errorf("unknown hull type %q", p.Hull)
		}
		rec.Hull = h
	}
	rec.ContinuousCollision = p.ContinuousCollision
	rec.CollideWithBodies = p.CollideWithBodies
	if p.MassCenter != nil {
		rec.MassCenter = p.MassCenter.vec()
	}
	for _, f := range []struct {
		src *float32
		dst *float32
	}{
		{p.Mass, &rec.Mass},
		{p.StaticFriction, &rec.StaticFriction},
		{p.DynamicFriction, &rec.DynamicFriction},
		{p.Bounciness, &rec.Bounciness},
		{p.LinearDamping, &rec.LinearDamping},
		{p.AngularDamping, &rec.AngularDamping},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	for _, h := range p.Hulls {
		hull := ovo.Hull{Centroid: h.Centroid.vec(), Faces: h.Faces}
		for _, v := range h.Vertices {
			hull.Vertices = append(hull.Vertices, v.vec())
		}
		rec.Hulls = append(rec.Hulls, hull)
	}
	return &rec, nil
}

var lightTypes = map[string]ovo.LightSubtype{
	"":            ovo.LightOmni,
	"omni":        ovo.LightOmni,
	"directional": ovo.LightDirectional,
	"spot":        ovo.LightSpot,
}

func (l *Light) params() (ovo.LightParams, error) {
	st, ok := lightTypes[l.Type]
	if !ok {
		return ovo.LightParams{}, fmt.Errorf("unknown light type %q", l.Type)
	}
	p := ovo.LightParams{
		Subtype:      st,
		Color:        ovomath.Vec3{X: 1, Y: 1, Z: 1},
		Radius:       l.Radius,
		Direction:    ovo.Forward,
		Cutoff:       l.Cutoff,
		SpotExponent: l.SpotExponent,
		CastShadows:  l.CastShadows,
		Volumetric:   l.Volumetric,
	}
	if l.Color != nil {
		p.Color = l.Color.vec()
	}
	if l.Direction != nil {
		p.Direction = l.Direction.vec()
	}
	return p, nil
}
