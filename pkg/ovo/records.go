package ovo

import (
	"fmt"

	ovomath "github.com/Faultbox/ovokit/pkg/math"
)

// FormatVersion is the OVO version written by this package.
const FormatVersion uint32 = 8

// Record is a decoded chunk payload.
type Record interface {
	ChunkType() ChunkType
}

// SceneRecord is a record that takes part in the node hierarchy:
// *Node, *Mesh or *Light.
type SceneRecord interface {
	Record
	Base() *Node
}

// Version is the OBJECT chunk that opens every file.
type Version struct {
	Version uint32
}

func (*Version) ChunkType() ChunkType { return ChunkObject }

// Opaque preserves a chunk this package does not interpret so it can be
// written back unchanged.
type Opaque struct {
	Type ChunkType
	Data []byte
}

func (o *Opaque) ChunkType() ChunkType { return o.Type }

// Node is a plain transform node. Mesh and Light embed it.
type Node struct {
	Name string
	// Transform is local to the parent record. Direct children of a
	// RootName record carry the axis correction in their transform.
	Transform  ovomath.Mat4
	ChildCount uint32
	// Target names another node; empty means none.
	Target string
}

func (*Node) ChunkType() ChunkType { return ChunkNode }

// Base returns the node fields.
func (n *Node) Base() *Node { return n }

// MeshSubtype selects the shading path for a mesh.
type MeshSubtype uint8

const (
	MeshDefault      MeshSubtype = 0
	MeshNormalMapped MeshSubtype = 1
	MeshTessellated  MeshSubtype = 2
)

// String returns the subtype name.
func (s MeshSubtype) String() string {
	switch s {
	case MeshDefault:
		return "Default"
	case MeshNormalMapped:
		return "NormalMapped"
	case MeshTessellated:
		return "Tessellated"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(s))
	}
}

// Vertex is one packed vertex as stored on disk (24 bytes).
type Vertex struct {
	Position ovomath.Vec3
	Normal   uint32 // snorm 10-10-10-2, see PackNormal
	UV       uint32 // two half floats, see PackUV
	Tangent  uint32 // snorm 10-10-10-2 or 0
}

// vertexSize is the encoded size of a Vertex.
const vertexSize = 24

// faceSize is the encoded size of a triangle.
const faceSize = 12

// UnpackedNormal decodes the vertex normal.
func (v Vertex) UnpackedNormal() ovomath.Vec3 { return UnpackNormal(v.Normal) }

// UnpackedUV decodes the texture coordinate.
func (v Vertex) UnpackedUV() ovomath.Vec2 { return UnpackUV(v.UV) }

// LOD is one level of detail. Every face index is < len(Vertices).
type LOD struct {
	Vertices []Vertex
	Faces    [][3]uint32
}

// Mesh is a node with geometry.
type Mesh struct {
	Node
	Subtype MeshSubtype
	// Material names a MATERIAL record; empty means none.
	Material string
	Radius   float32
	BBoxMin  ovomath.Vec3
	BBoxMax  ovomath.Vec3
	Physics  *Physics // nil when the mesh has no physics block
	// LODs[0] is the full-detail geometry.
	LODs []LOD
}

func (*Mesh) ChunkType() ChunkType { return ChunkMesh }

// VertexCount returns the vertex count of LOD 0.
func (m *Mesh) VertexCount() int {
	if len(m.LODs) == 0 {
		return 0
	}
	return len(m.LODs[0].Vertices)
}

// FaceCount returns the face count of LOD 0.
func (m *Mesh) FaceCount() int {
	if len(m.LODs) == 0 {
		return 0
	}
	return len(m.LODs[0].Faces)
}

// LightSubtype is the light shape.
type LightSubtype uint8

const (
	LightOmni        LightSubtype = 0
	LightDirectional LightSubtype = 1
	LightSpot        LightSubtype = 2
)

// String returns the subtype name.
func (s LightSubtype) String() string {
	switch s {
	case LightOmni:
		return "Omni"
	case LightDirectional:
		return "Directional"
	case LightSpot:
		return "Spot"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(s))
	}
}

// LightParams holds the light-specific fields of a LIGHT record.
type LightParams struct {
	Subtype      LightSubtype
	Color        ovomath.Vec3
	Radius       float32
	Direction    ovomath.Vec3
	Cutoff       float32 // degrees
	SpotExponent float32
	CastShadows  bool
	Volumetric   bool
}

// Light is a node that emits light.
type Light struct {
	Node
	LightParams
}

func (*Light) ChunkType() ChunkType { return ChunkLight }

// Texture slots of a material, in file order.
const (
	SlotAlbedo = iota
	SlotNormal
	SlotHeight
	SlotRoughness
	SlotMetallic
	SlotCount
)

// SlotNames holds the texture slot names indexed by slot.
var SlotNames = [SlotCount]string{"albedo", "normal", "height", "roughness", "metallic"}

// Material is a PBR material. Empty texture names mean no texture.
type Material struct {
	Name      string
	Emission  ovomath.Vec3
	BaseColor ovomath.Vec3
	Roughness float32
	Metallic  float32
	Alpha     float32
	Textures  [SlotCount]string
}

func (*Material) ChunkType() ChunkType { return ChunkMaterial }

// DefaultMaterial returns a material with the exporter defaults.
func DefaultMaterial(name string) Material {
	return Material{
		Name:      name,
		BaseColor: ovomath.Vec3{X: 0.8, Y: 0.8, Z: 0.8},
		Roughness: 0.5,
		Alpha:     1,
	}
}
