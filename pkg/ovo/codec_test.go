package ovo

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ovomath "github.com/Faultbox/ovokit/pkg/math"
)

func roundTrip(t *testing.T, rec Record) Record {
	t.Helper()
	c, err := Encode(rec)
	require.NoError(t, err)
	assert.Equal(t, rec.ChunkType(), c.Type)

	got, err := Decode(c)
	require.NoError(t, err)
	return got
}

func sampleMesh() *Mesh {
	return &Mesh{
		Node: Node{
			Name:       "Cube",
			Transform:  ovomath.Translate(1, 2, 3),
			ChildCount: 1,
		},
		Subtype:  MeshNormalMapped,
		Material: "Steel",
		Radius:   1.732,
		BBoxMin:  ovomath.Vec3{X: -1, Y: -1, Z: -1},
		BBoxMax:  ovomath.Vec3{X: 1, Y: 1, Z: 1},
		LODs: []LOD{
			{
				Vertices: []Vertex{
					{Position: ovomath.Vec3{X: 0}, Normal: PackNormal(ovomath.Vec3{Z: 1}), UV: PackUV(ovomath.Vec2{})},
					{Position: ovomath.Vec3{X: 1}, Normal: PackNormal(ovomath.Vec3{Z: 1}), UV: PackUV(ovomath.Vec2{X: 1})},
					{Position: ovomath.Vec3{Y: 1}, Normal: PackNormal(ovomath.Vec3{Z: 1}), UV: PackUV(ovomath.Vec2{Y: 1}), Tangent: PackTangent(ovomath.Vec3{X: 1})},
				},
				Faces: [][3]uint32{{0, 1, 2}},
			},
			{
				Vertices: []Vertex{{}, {}, {}},
				Faces:    [][3]uint32{{0, 1, 2}},
			},
		},
	}
}

func TestNodeRoundTrip(t *testing.T) {
	n := &Node{Name: "Empty", Transform: ovomath.RotateY(0.5), ChildCount: 3, Target: "Cube"}
	assert.Equal(t, n, roundTrip(t, n))

	untargeted := &Node{Name: "Empty", Transform: ovomath.Identity()}
	c, err := Encode(untargeted)
	require.NoError(t, err)
	assert.Contains(t, string(c.Data), NoneName)
	assert.Equal(t, untargeted, roundTrip(t, untargeted))
}

func TestVersionRoundTrip(t *testing.T) {
	c, err := Encode(&Version{Version: FormatVersion})
	require.NoError(t, err)
	assert.Equal(t, []byte{8, 0, 0, 0}, c.Data)
	assert.Equal(t, &Version{Version: 8}, roundTrip(t, &Version{Version: 8}))
}

func TestMaterialRoundTrip(t *testing.T) {
	m := DefaultMaterial("Steel")
	m.Metallic = 1
	m.Emission = ovomath.Vec3{X: 0.1}
	m.Textures[SlotAlbedo] = "steel_albedo.dds"
	m.Textures[SlotRoughness] = "steel_rough.dds"

	got := roundTrip(t, &m)
	assert.Equal(t, &m, got)
}

func TestLightRoundTrip(t *testing.T) {
	l := &Light{
		Node: Node{Name: "Sun", Transform: ovomath.Identity()},
		LightParams: LightParams{
			Subtype:     LightDirectional,
			Color:       ovomath.Vec3{X: 1, Y: 0.9, Z: 0.8},
			Direction:   ovomath.Vec3{Y: -1},
			Cutoff:      0.5,
			CastShadows: true,
		},
	}
	assert.Equal(t, l, roundTrip(t, l))
}

func TestLightInvalidSubtype(t *testing.T) {
	l := &Light{Node: Node{Name: "L"}, LightParams: LightParams{Subtype: 7}}
	c, err := Encode(l)
	require.NoError(t, err)

	_, err = Decode(c)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	var ire *InvalidRecordError
	require.ErrorAs(t, err, &ire)
	assert.Equal(t, ChunkLight, ire.Kind)
}

func TestMeshRoundTrip(t *testing.T) {
	m := sampleMesh()
	assert.Equal(t, m, roundTrip(t, m))
}

func TestMeshWithPhysicsRoundTrip(t *testing.T) {
	m := sampleMesh()
	p := DefaultPhysics()
	p.Hull = HullCustom
	p.Hulls = []Hull{{
		Centroid: ovomath.Vec3{Y: 0.5},
		Vertices: []ovomath.Vec3{{}, {X: 1}, {Y: 1}},
		Faces:    [][3]uint32{{0, 1, 2}},
	}}
	m.Physics = &p

	assert.Equal(t, m, roundTrip(t, m))
}

func TestMeshHullFaceOutOfRange(t *testing.T) {
	m := sampleMesh()
	p := DefaultPhysics()
	p.Hull = HullCustom
	p.Hulls = []Hull{{
		Vertices: []ovomath.Vec3{{}, {X: 1}, {Y: 1}},
		Faces:    [][3]uint32{{0, 1, 7}},
	}}
	m.Physics = &p

	_, err := Encode(m)
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.ErrorContains(t, err, "hull 0")

	p.Hulls[0].Faces[0][2] = 2
	_, err = Encode(m)
	assert.NoError(t, err)
}

func TestPhysicsValidate(t *testing.T) {
	p := DefaultPhysics()
	assert.NoError(t, p.Validate())

	p.Hull = HullType(200)
	assert.ErrorContains(t, p.Validate(), "hull type 200")

	p.Hull = HullCustom
	p.Hulls = []Hull{{}, {Faces: [][3]uint32{{0, 0, 0}}}}
	assert.ErrorContains(t, p.Validate(), "hull 1")
}

func TestMeshEmptyWritesOneLevel(t *testing.T) {
	m := &Mesh{Node: Node{Name: "Empty", Transform: ovomath.Identity()}}
	c, err := Encode(m)
	require.NoError(t, err)

	// lod_count 1, vertex count 0, face count 0 close the payload.
	tail := c.Data[len(c.Data)-12:]
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(tail[0:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(tail[4:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(tail[8:]))

	got, err := Decode(c)
	require.NoError(t, err)
	mesh := got.(*Mesh)
	require.Len(t, mesh.LODs, 1)
	assert.Zero(t, mesh.VertexCount())
}

func TestMeshZeroLODCountDecodesEmpty(t *testing.T) {
	m := &Mesh{Node: Node{Name: "Empty", Transform: ovomath.Identity()}}
	c, err := Encode(m)
	require.NoError(t, err)

	// Rewrite the payload as lod_count 0 with no levels.
	data := append([]byte(nil), c.Data[:len(c.Data)-12]...)
	data = binary.LittleEndian.AppendUint32(data, 0)

	got, err := Decode(Chunk{Type: ChunkMesh, Data: data})
	require.NoError(t, err)
	assert.Empty(t, got.(*Mesh).LODs)
	assert.Zero(t, got.(*Mesh).FaceCount())
}

func TestMeshFaceIndexOutOfRange(t *testing.T) {
	m := sampleMesh()
	m.LODs[0].Faces[0][2] = 3

	_, err := Encode(m)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestMeshTruncatedPayload(t *testing.T) {
	c, err := Encode(sampleMesh())
	require.NoError(t, err)

	for _, cut := range []int{1, 10, 100, len(c.Data) - 1} {
		_, err := Decode(Chunk{Type: ChunkMesh, Data: c.Data[:cut], Offset: 1000})
		require.Error(t, err, "cut at %d", cut)
		assert.ErrorIs(t, err, ErrInvalidRecord)
		assert.ErrorIs(t, err, ErrMalformedPrimitive)

		var mpe *MalformedPrimitiveError
		require.ErrorAs(t, err, &mpe)
		assert.GreaterOrEqual(t, mpe.Offset, int64(1000+ChunkHeaderSize))
	}
}

func TestDecodeTrailingBytesIgnored(t *testing.T) {
	c, err := Encode(&Node{Name: "N", Transform: ovomath.Identity()})
	require.NoError(t, err)

	c.Data = append(c.Data, 0xAA, 0xBB)
	got, err := Decode(c)
	require.NoError(t, err)
	assert.Equal(t, "N", got.(*Node).Name)
}

func TestUnknownChunkIsOpaque(t *testing.T) {
	c := Chunk{Type: ChunkTexture, Data: []byte{1, 2, 3}}
	rec, err := Decode(c)
	require.NoError(t, err)

	op, ok := rec.(*Opaque)
	require.True(t, ok)
	assert.Equal(t, ChunkTexture, op.ChunkType())

	again, err := Encode(op)
	require.NoError(t, err)
	assert.Equal(t, c.Type, again.Type)
	assert.Equal(t, c.Data, again.Data)
}
