package ovo

import (
	"fmt"
	"io"

	ovomath "github.com/Faultbox/ovokit/pkg/math"
)

// HullType is the collision shape used for a physics-enabled mesh.
type HullType uint8

const (
	HullUndefined HullType = iota
	HullSphere
	HullBox
	HullCapsule
	HullConvex
	HullOriginal
	HullCustom
	HullConcave
	hullTypeCount
)

var hullNames = [...]string{"Undefined", "Sphere", "Box", "Capsule", "Convex", "Original", "Custom", "Concave"}

// String returns the hull type name.
func (h HullType) String() string {
	if h < hullTypeCount {
		return hullNames[h]
	}
	return fmt.Sprintf("Unknown(%d)", uint8(h))
}

// ParseHullType parses a case-sensitive hull name as returned by String.
func ParseHullType(s string) (HullType, bool) {
	for i, name := range hullNames {
		if name == s {
			return HullType(i), true
		}
	}
	return HullUndefined, false
}

// Physics object types.
const (
	PhysicsStatic  uint8 = 0
	PhysicsDynamic uint8 = 1
)

// Hull is one custom collision hull.
type Hull struct {
	Centroid ovomath.Vec3
	Vertices []ovomath.Vec3
	Faces    [][3]uint32
}

// Physics is the fixed-layout rigid body block carried by a mesh. The
// codec packs it but does not interpret it.
type Physics struct {
	ObjectType          uint8
	ContinuousCollision bool
	CollideWithBodies   bool
	Hull                HullType
	MassCenter          ovomath.Vec3
	Mass                float32
	StaticFriction      float32
	DynamicFriction     float32
	Bounciness          float32
	LinearDamping       float32
	AngularDamping      float32
	Hulls               []Hull
}

// Validate checks that every face index addresses a hull vertex.
func (h *Hull) Validate() error {
	n := uint32(len(h.Vertices))
	for i, f := range h.Faces {
		for _, idx := range f {
			if idx >= n {
				return fmt.Errorf("face %d index %d out of range (%d vertices)", i, idx, n)
			}
		}
	}
	return nil
}

// Validate checks the hull type and every hull.
func (p *Physics) Validate() error {
	if p.Hull >= hullTypeCount {
		return fmt.Errorf("hull type %d out of range", uint8(p.Hull))
	}
	for i := range p.Hulls {
		if err := p.Hulls[i].Validate(); err != nil {
			return fmt.Errorf("hull %d: %w", i, err)
		}
	}
	return nil
}

// DefaultPhysics returns the parameters used when a provider leaves them unset.
func DefaultPhysics() Physics {
	return Physics{
		ObjectType:      PhysicsDynamic,
		Hull:            HullBox,
		Mass:            1,
		StaticFriction:  0.5,
		DynamicFriction: 0.5,
		Bounciness:      0,
		LinearDamping:   0.04,
		AngularDamping:  0.1,
	}
}

func encodePhysics(w *writer, p *Physics) {
	w.u8(p.ObjectType)
	w.bool(p.ContinuousCollision)
	w.bool(p.CollideWithBodies)
	w.u8(uint8(p.Hull))
	w.vec3(p.MassCenter)
	w.f32(p.Mass)
	w.f32(p.StaticFriction)
	w.f32(p.DynamicFriction)
	w.f32(p.Bounciness)
	w.f32(p.LinearDamping)
	w.f32(p.AngularDamping)
	w.u32(uint32(len(p.Hulls)))
	w.u32(0) // padding
	w.u64(0) // reserved
	w.u64(0) // reserved

	for _, h := range p.Hulls {
		w.u32(uint32(len(h.Vertices)))
		w.u32(uint32(len(h.Faces)))
		w.vec3(h.Centroid)
		for _, v := range h.Vertices {
			w.vec3(v)
		}
		for _, f := range h.Faces {
			w.u32(f[0])
			w.u32(f[1])
			w.u32(f[2])
		}
	}
}

func decodePhysics(r *reader) (*Physics, error) {
	p := &Physics{}
	var err error

	if p.ObjectType, err = r.u8("physics object type"); err != nil {
		return nil, err
	}
	if p.ContinuousCollision, err = r.bool("physics continuous collision"); err != nil {
		return nil, err
	}
	if p.CollideWithBodies, err = r.bool("physics collide flag"); err != nil {
		return nil, err
	}
	hull, err := r.u8("physics hull type")
	if err != nil {
		return nil, err
	}
	p.Hull = HullType(hull)
	if p.Hull >= hullTypeCount {
		return nil, fmt.Errorf("hull type %d out of range", hull)
	}
	if p.MassCenter, err = r.vec3("physics mass center"); err != nil {
		return nil, err
	}

	for _, f := range []struct {
		dst  *float32
		what string
	}{
		{&p.Mass, "physics mass"},
		{&p.StaticFriction, "physics static friction"},
		{&p.DynamicFriction, "physics dynamic friction"},
		{&p.Bounciness, "physics bounciness"},
		{&p.LinearDamping, "physics linear damping"},
		{&p.AngularDamping, "physics angular damping"},
	} {
		if *f.dst, err = r.f32(f.what); err != nil {
			return nil, err
		}
	}

	// Each hull carries at least its two counts and centroid.
	hullCount, err := r.count("physics hull count", 20)
	if err != nil {
		return nil, err
	}
	if _, err := r.u32("physics padding"); err != nil {
		return nil, err
	}
	if _, err := r.u64("physics reserved"); err != nil {
		return nil, err
	}
	if _, err := r.u64("physics reserved"); err != nil {
		return nil, err
	}

	if hullCount > 0 {
		p.Hulls = make([]Hull, hullCount)
	}
	for i := range p.Hulls {
		h := &p.Hulls[i]
		nv, err := r.u32("hull vertex count")
		if err != nil {
			return nil, err
		}
		nf, err := r.u32("hull face count")
		if err != nil {
			return nil, err
		}
		if h.Centroid, err = r.vec3("hull centroid"); err != nil {
			return nil, err
		}
		if uint64(nv)*12+uint64(nf)*12 > uint64(r.remaining()) {
			return nil, &MalformedPrimitiveError{Offset: r.offset(), What: "hull data", Err: io.ErrUnexpectedEOF}
		}
		h.Vertices = make([]ovomath.Vec3, nv)
		for j := range h.Vertices {
			if h.Vertices[j], err = r.vec3("hull vertex"); err != nil {
				return nil, err
			}
		}
		h.Faces = make([][3]uint32, nf)
		for j := range h.Faces {
			if err := r.read("hull face", &h.Faces[j]); err != nil {
				return nil, err
			}
		}
		if err := h.Validate(); err != nil {
			return nil, fmt.Errorf("hull %d: %w", i, err)
		}
	}
	return p, nil
}
