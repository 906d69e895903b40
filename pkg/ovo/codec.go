package ovo

import (
	"fmt"
)

// Decode decodes a chunk payload into a typed record. Unknown chunk types
// are returned as *Opaque. A malformed payload of a known type returns an
// *InvalidRecordError.
func Decode(c Chunk) (Record, error) {
	r := newReader(c.Data, c.Offset+ChunkHeaderSize)

	var (
		rec Record
		err error
	)
	switch c.Type {
	case ChunkObject:
		rec, err = decodeVersion(r)
	case ChunkNode:
		rec, err = decodeNode(r)
	case ChunkMaterial:
		rec, err = decodeMaterial(r)
	case ChunkLight:
		rec, err = decodeLight(r)
	case ChunkMesh:
		rec, err = decodeMesh(r)
	default:
		return &Opaque{Type: c.Type, Data: c.Data}, nil
	}
	if err != nil {
		return nil, invalid(c.Type, "decoding payload", err)
	}
	return rec, nil
}

// Encode encodes a record into a chunk payload.
func Encode(rec Record) (Chunk, error) {
	w := &writer{}

	switch v := rec.(type) {
	case *Version:
		w.u32(v.Version)
	case *Node:
		encodeNode(w, v)
	case *Material:
		encodeMaterial(w, v)
	case *Light:
		encodeLight(w, v)
	case *Mesh:
		if err := encodeMesh(w, v); err != nil {
			return Chunk{}, invalid(ChunkMesh, v.Name, err)
		}
	case *Opaque:
		return Chunk{Type: v.Type, Data: v.Data}, nil
	default:
		return Chunk{}, fmt.Errorf("ovo: cannot encode record type %T", rec)
	}
	return Chunk{Type: rec.ChunkType(), Data: w.bytes()}, nil
}

func decodeVersion(r *reader) (*Version, error) {
	v, err := r.u32("version")
	if err != nil {
		return nil, err
	}
	return &Version{Version: v}, nil
}

func encodeNode(w *writer, n *Node) {
	w.str(n.Name)
	w.mat4(n.Transform)
	w.u32(n.ChildCount)
	w.ref(n.Target)
}

func decodeNodeInto(r *reader, n *Node) error {
	var err error
	if n.Name, err = r.str("node name"); err != nil {
		return err
	}
	if n.Transform, err = r.mat4("node matrix"); err != nil {
		return err
	}
	if n.ChildCount, err = r.u32("child count"); err != nil {
		return err
	}
	if n.Target, err = r.ref("target name"); err != nil {
		return err
	}
	return nil
}

func decodeNode(r *reader) (*Node, error) {
	n := &Node{}
	if err := decodeNodeInto(r, n); err != nil {
		return nil, err
	}
	return n, nil
}

func encodeMaterial(w *writer, m *Material) {
	w.str(m.Name)
	w.vec3(m.Emission)
	w.vec3(m.BaseColor)
	w.f32(m.Roughness)
	w.f32(m.Metallic)
	w.f32(m.Alpha)
	for _, t := range m.Textures {
		w.ref(t)
	}
}

func decodeMaterial(r *reader) (*Material, error) {
	m := &Material{}
	var err error
	if m.Name, err = r.str("material name"); err != nil {
		return nil, err
	}
	if m.Emission, err = r.vec3("emission"); err != nil {
		return nil, err
	}
	if m.BaseColor, err = r.vec3("base color"); err != nil {
		return nil, err
	}
	if m.Roughness, err = r.f32("roughness"); err != nil {
		return nil, err
	}
	if m.Metallic, err = r.f32("metallic"); err != nil {
		return nil, err
	}
	if m.Alpha, err = r.f32("alpha"); err != nil {
		return nil, err
	}
	for i := range m.Textures {
		if m.Textures[i], err = r.ref(SlotNames[i] + " texture"); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func encodeLight(w *writer, l *Light) {
	encodeNode(w, &l.Node)
	w.u8(uint8(l.Subtype))
	w.vec3(l.Color)
	w.f32(l.Radius)
	w.vec3(l.Direction)
	w.f32(l.Cutoff)
	w.f32(l.SpotExponent)
	w.bool(l.CastShadows)
	w.bool(l.Volumetric)
}

func decodeLight(r *reader) (*Light, error) {
	l := &Light{}
	if err := decodeNodeInto(r, &l.Node); err != nil {
		return nil, err
	}

	sub, err := r.u8("light subtype")
	if err != nil {
		return nil, err
	}
	l.Subtype = LightSubtype(sub)
	if l.Subtype > LightSpot {
		return nil, fmt.Errorf("light subtype %d out of range", sub)
	}
	if l.Color, err = r.vec3("light color"); err != nil {
		return nil, err
	}
	if l.Radius, err = r.f32("light radius"); err != nil {
		return nil, err
	}
	if l.Direction, err = r.vec3("light direction"); err != nil {
		return nil, err
	}
	if l.Cutoff, err = r.f32("light cutoff"); err != nil {
		return nil, err
	}
	if l.SpotExponent, err = r.f32("spot exponent"); err != nil {
		return nil, err
	}
	if l.CastShadows, err = r.bool("shadow flag"); err != nil {
		return nil, err
	}
	if l.Volumetric, err = r.bool("volumetric flag"); err != nil {
		return nil, err
	}
	return l, nil
}

func encodeMesh(w *writer, m *Mesh) error {
	for i, lod := range m.LODs {
		if err := checkFaces(lod); err != nil {
			return fmt.Errorf("lod %d: %w", i, err)
		}
	}
	if m.Physics != nil {
		if err := m.Physics.Validate(); err != nil {
			return fmt.Errorf("physics: %w", err)
		}
	}

	encodeNode(w, &m.Node)
	w.u8(uint8(m.Subtype))
	w.ref(m.Material)
	w.f32(m.Radius)
	w.vec3(m.BBoxMin)
	w.vec3(m.BBoxMax)

	w.bool(m.Physics != nil)
	if m.Physics != nil {
		encodePhysics(w, m.Physics)
	}

	// lod_count must be at least 1: an empty mesh is one empty level.
	lods := m.LODs
	if len(lods) == 0 {
		lods = []LOD{{}}
	}
	w.u32(uint32(len(lods)))
	for _, lod := range lods {
		w.u32(uint32(len(lod.Vertices)))
		w.u32(uint32(len(lod.Faces)))
		for _, v := range lod.Vertices {
			w.vec3(v.Position)
			w.u32(v.Normal)
			w.u32(v.UV)
			w.u32(v.Tangent)
		}
		for _, f := range lod.Faces {
			w.u32(f[0])
			w.u32(f[1])
			w.u32(f[2])
		}
	}
	return nil
}

func checkFaces(lod LOD) error {
	n := uint32(len(lod.Vertices))
	for i, f := range lod.Faces {
		for _, idx := range f {
			if idx >= n {
				return fmt.Errorf("face %d index %d out of range (%d vertices)", i, idx, n)
			}
		}
	}
	return nil
}

func decodeMesh(r *reader) (*Mesh, error) {
	m := &Mesh{}
	if err := decodeNodeInto(r, &m.Node); err != nil {
		return nil, err
	}

	sub, err := r.u8("mesh subtype")
	if err != nil {
		return nil, err
	}
	m.Subtype = MeshSubtype(sub)
	if m.Subtype > MeshTessellated {
		return nil, fmt.Errorf("mesh subtype %d out of range", sub)
	}
	if m.Material, err = r.ref("material name"); err != nil {
		return nil, err
	}
	if m.Radius, err = r.f32("bounding radius"); err != nil {
		return nil, err
	}
	if m.BBoxMin, err = r.vec3("bbox min"); err != nil {
		return nil, err
	}
	if m.BBoxMax, err = r.vec3("bbox max"); err != nil {
		return nil, err
	}

	hasPhysics, err := r.bool("physics flag")
	if err != nil {
		return nil, err
	}
	if hasPhysics {
		if m.Physics, err = decodePhysics(r); err != nil {
			return nil, fmt.Errorf("physics: %w", err)
		}
	}

	// Each level carries at least its two counts.
	lodCount, err := r.count("lod count", 8)
	if err != nil {
		return nil, err
	}
	if lodCount > 0 {
		m.LODs = make([]LOD, lodCount)
	}
	for i := range m.LODs {
		if err := decodeLOD(r, &m.LODs[i]); err != nil {
			return nil, fmt.Errorf("lod %d: %w", i, err)
		}
	}
	return m, nil
}

func decodeLOD(r *reader, lod *LOD) error {
	start := r.offset()
	vc, err := r.u32("vertex count")
	if err != nil {
		return err
	}
	fc, err := r.u32("face count")
	if err != nil {
		return err
	}
	if uint64(vc)*vertexSize+uint64(fc)*faceSize > uint64(r.remaining()) {
		return &MalformedPrimitiveError{Offset: start, What: "lod counts", Err: fmt.Errorf("%d vertices and %d faces exceed %d remaining bytes", vc, fc, r.remaining())}
	}

	lod.Vertices = make([]Vertex, vc)
	for i := range lod.Vertices {
		v := &lod.Vertices[i]
		if v.Position, err = r.vec3("vertex position"); err != nil {
			return err
		}
		if v.Normal, err = r.u32("vertex normal"); err != nil {
			return err
		}
		if v.UV, err = r.u32("vertex uv"); err != nil {
			return err
		}
		if v.Tangent, err = r.u32("vertex tangent"); err != nil {
			return err
		}
	}

	lod.Faces = make([][3]uint32, fc)
	for i := range lod.Faces {
		if err := r.read("face", &lod.Faces[i]); err != nil {
			return err
		}
	}
	return checkFaces(*lod)
}
