package exporter

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/ovokit/pkg/geometry"
	ovomath "github.com/Faultbox/ovokit/pkg/math"
	"github.com/Faultbox/ovokit/pkg/ovo"
	"github.com/Faultbox/ovokit/pkg/scene"
)

type testNode struct {
	name   string
	kind   scene.Kind
	xf     ovomath.Mat4
	kids   []scene.Object
	target string
}

func (n *testNode) ID() string { return "id-" + n.name }
func (n *testNode) Name() string { return n.name }
func (n *testNode) Kind() scene.Kind { return n.kind }
func (n *testNode) Transform() ovomath.Mat4 { return n.xf }
func (n *testNode) Children() []scene.Object { return n.kids }
func (n *testNode) Target() string { return n.target }

type testMesh struct {
	*testNode
	geo      *geometry.Mesh
	geoErr   error
	material string
	phys     *ovo.Physics
}

func (m *testMesh) Geometry() (*geometry.Mesh, error) { return m.geo, m.geoErr }
func (m *testMesh) MaterialName() string { return m.material }
func (m *testMesh) MeshSubtype() ovo.MeshSubtype { return ovo.MeshDefault }
func (m *testMesh) Physics() *ovo.Physics { return m.phys }

type decimatedMesh struct {
	*testMesh
	ratios []float32
}

func (d *decimatedMesh) Decimate(ratio float32) (*geometry.Mesh, error) {
	d.ratios = append(d.ratios, ratio)
	return triangle(), nil
}

type testLight struct {
	*testNode
	params ovo.LightParams
}

func (l *testLight) LightParams() ovo.LightParams { return l.params }

type testMaterial ovo.Material

func (m testMaterial) MaterialRecord() ovo.Material { return ovo.Material(m) }

func node(name string, kids ...scene.Object) *testNode {
	return &testNode{name: name, kind: scene.KindNode, xf: ovomath.Identity(), kids: kids}
}

func mesh(name, material string) *testMesh {
	n := node(name)
	n.kind = scene.KindMesh
	return &testMesh{testNode: n, geo: quad(), material: material}
}

func light(name string, p ovo.LightParams) *testLight {
	n := node(name)
	n.kind = scene.KindLight
	return &testLight{testNode: n, params: p}
}

func material(name string) testMaterial {
	return testMaterial(ovo.DefaultMaterial(name))
}

func quad() *geometry.Mesh {
	return &geometry.Mesh{
		Positions: []ovomath.Vec3{{X: 0}, {X: 1}, {X: 1, Y: 1}, {Y: 1}},
		Polygons:  [][]int{{0, 1, 2, 3}},
		UVs:       [][]ovomath.Vec2{{{X: 0}, {X: 1}, {X: 1, Y: 1}, {Y: 1}}},
	}
}

func triangle() *geometry.Mesh {
	return &geometry.Mesh{
		Positions: []ovomath.Vec3{{X: 0}, {X: 1}, {Y: 1}},
		Polygons:  [][]int{{0, 1, 2}},
	}
}

func sceneRecords(f *ovo.File) []ovo.SceneRecord {
	return f.SceneRecords()
}

func names(recs []ovo.SceneRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Base().Name
	}
	return out
}

func TestBuildHierarchy(t *testing.T) {
	cube := mesh("Cube", "Red")
	lamp := light("Lamp", ovo.LightParams{Subtype: ovo.LightOmni, Color: ovomath.Vec3{X: 1, Y: 1, Z: 1}})
	root := node("Root", cube, lamp)
	root.xf = ovomath.Translate(1, 2, 3)

	e := New(DefaultOptions(), nil)
	f, rep, err := e.Build(context.Background(), []scene.Object{root}, []MaterialSource{material("Red")})
	require.NoError(t, err)

	assert.Equal(t, ovo.FormatVersion, f.Version())
	require.IsType(t, &ovo.Material{}, f.Records[1])

	recs := sceneRecords(f)
	assert.Equal(t, []string{ovo.RootName, "Root", "Cube", "Lamp"}, names(recs))
	assert.Equal(t, uint32(1), recs[0].Base().ChildCount)
	assert.Equal(t, uint32(2), recs[1].Base().ChildCount)

	want := scene.AxisCorrection().Mul(ovomath.Translate(1, 2, 3))
	assert.True(t, recs[1].Base().Transform.ApproxEqual(want, 1e-6))
	assert.Equal(t, ovomath.Identity(), recs[2].Base().Transform)

	m := recs[2].(*ovo.Mesh)
	assert.Equal(t, "Red", m.Material)
	require.Len(t, m.LODs, 1)
	assert.Len(t, m.LODs[0].Vertices, 4)
	assert.Len(t, m.LODs[0].Faces, 2)
	assert.InDelta(t, 1.4142, m.Radius, 1e-3)

	l := recs[3].(*ovo.Light)
	assert.Equal(t, float32(180), l.Cutoff)
	assert.Equal(t, ovo.Forward, l.Direction)

	assert.Empty(t, rep.Warnings)
	assert.Equal(t, 1, rep.Materials)
	assert.Equal(t, 2, rep.Nodes)
	assert.Equal(t, 1, rep.Meshes)
	assert.Equal(t, 1, rep.Lights)
	assert.Equal(t, 4, rep.Vertices)
	assert.Equal(t, 2, rep.Faces)
}

func TestMaterialOrder(t *testing.T) {
	roots := []scene.Object{mesh("A", "Used2"), mesh("B", "Used1"), mesh("C", "Used2")}
	mats := []MaterialSource{material("Unused"), material("Used1"), material("Used2"), material("Used1")}

	f, rep, err := New(DefaultOptions(), nil).Build(context.Background(), roots, mats)
	require.NoError(t, err)

	var got []string
	for _, m := range f.Materials() {
		got = append(got, m.Name)
	}
	assert.Equal(t, []string{"Used2", "Used1", "Unused"}, got)
	assert.Equal(t, 3, rep.Materials)
}

func TestUnresolvedMaterial(t *testing.T) {
	f, rep, err := New(DefaultOptions(), nil).Build(context.Background(),
		[]scene.Object{mesh("A", "Missing")}, nil)
	require.NoError(t, err)

	m := sceneRecords(f)[1].(*ovo.Mesh)
	assert.Empty(t, m.Material)
	require.Len(t, rep.Warnings, 1)
	assert.Equal(t, "A", rep.Warnings[0].Object)
	assert.ErrorIs(t, rep.Warnings[0].Err, ovo.ErrUnresolvedReference)
}

func TestTargets(t *testing.T) {
	a := node("A")
	a.target = "B"
	c := node("C")
	c.target = "Nowhere"

	f, rep, err := New(DefaultOptions(), nil).Build(context.Background(),
		[]scene.Object{a, node("B"), c}, nil)
	require.NoError(t, err)

	recs := sceneRecords(f)
	assert.Equal(t, "B", recs[1].Base().Target)
	assert.Empty(t, recs[3].Base().Target)
	require.Len(t, rep.Warnings, 1)

	var ref *ovo.UnresolvedReferenceError
	require.ErrorAs(t, rep.Warnings[0].Err, &ref)
	assert.Equal(t, "Nowhere", ref.Name)
}

func TestIncludeFilters(t *testing.T) {
	root := node("Root", mesh("Cube", ""), light("Lamp", ovo.LightParams{}))

	opts := DefaultOptions()
	opts.IncludeLights = false
	f, rep, err := New(opts, nil).Build(context.Background(), []scene.Object{root}, nil)
	require.NoError(t, err)

	recs := sceneRecords(f)
	assert.Equal(t, []string{ovo.RootName, "Root", "Cube"}, names(recs))
	assert.Equal(t, uint32(1), recs[1].Base().ChildCount)
	assert.Zero(t, rep.Lights)

	opts = DefaultOptions()
	opts.IncludeMeshes = false
	f, _, err = New(opts, nil).Build(context.Background(), []scene.Object{root}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{ovo.RootName, "Root", "Lamp"}, names(sceneRecords(f)))
}

func TestDegradedMeshes(t *testing.T) {
	broken := mesh("Broken", "")
	broken.geoErr = errors.New("modifier failed")
	empty := mesh("Empty", "")
	empty.geo = &geometry.Mesh{}
	bad := mesh("Bad", "")
	bad.geo = &geometry.Mesh{Positions: []ovomath.Vec3{{}}, Polygons: [][]int{{0, 1, 2}}}
	none := mesh("None", "")
	none.geo = nil

	f, rep, err := New(DefaultOptions(), nil).Build(context.Background(),
		[]scene.Object{broken, empty, bad, none}, nil)
	require.NoError(t, err)

	for _, rec := range sceneRecords(f)[1:] {
		m := rec.(*ovo.Mesh)
		assert.Zero(t, m.VertexCount(), m.Name)
	}
	require.Len(t, rep.Warnings, 4)
	assert.ErrorIs(t, rep.Warnings[1].Err, ErrEmptyMesh)
	assert.ErrorIs(t, rep.Warnings[2].Err, geometry.ErrFaceIndex)
	assert.ErrorIs(t, rep.Warnings[3].Err, ErrNoGeometry)

	// Degraded meshes still encode.
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
}

func TestBadHullsAreDropped(t *testing.T) {
	good := ovo.Hull{
		Vertices: []ovomath.Vec3{{}, {X: 1}, {Y: 1}},
		Faces:    [][3]uint32{{0, 1, 2}},
	}
	bad := ovo.Hull{
		Vertices: []ovomath.Vec3{{}, {X: 1}, {Y: 1}},
		Faces:    [][3]uint32{{0, 1, 7}},
	}

	hulls := mesh("Hulls", "")
	p := ovo.DefaultPhysics()
	p.Hull = ovo.HullCustom
	p.Hulls = []ovo.Hull{bad, good}
	hulls.phys = &p

	unknown := mesh("Unknown", "")
	q := ovo.DefaultPhysics()
	q.Hull = ovo.HullType(42)
	unknown.phys = &q

	plain := mesh("Plain", "")

	var buf bytes.Buffer
	rep, err := New(DefaultOptions(), nil).Export(context.Background(), &buf,
		[]scene.Object{hulls, unknown, plain}, nil)
	require.NoError(t, err)
	require.Len(t, rep.Warnings, 2)
	assert.Equal(t, "Hulls", rep.Warnings[0].Object)
	assert.Contains(t, rep.Warnings[0].Err.Error(), "hull 0")
	assert.Equal(t, "Unknown", rep.Warnings[1].Object)

	// The provider's physics is left alone.
	assert.Len(t, p.Hulls, 2)

	f, err := ovo.Read(&buf)
	require.NoError(t, err)
	recs := sceneRecords(f)
	require.Len(t, recs, 4)

	got := recs[1].(*ovo.Mesh)
	require.NotNil(t, got.Physics)
	assert.Equal(t, []ovo.Hull{good}, got.Physics.Hulls)
	assert.Nil(t, recs[2].(*ovo.Mesh).Physics)
	assert.Equal(t, 4, recs[3].(*ovo.Mesh).VertexCount())
}

func TestLevelsOfDetail(t *testing.T) {
	dm := &decimatedMesh{testMesh: mesh("Dense", "")}

	opts := DefaultOptions()
	opts.LOD = geometry.LODOptions{FaceThreshold: 1, Ratios: []float32{1, 0.5, 0.25}}
	f, rep, err := New(opts, nil).Build(context.Background(), []scene.Object{dm}, nil)
	require.NoError(t, err)

	assert.Equal(t, []float32{0.5, 0.25}, dm.ratios)
	m := sceneRecords(f)[1].(*ovo.Mesh)
	require.Len(t, m.LODs, 3)
	assert.Len(t, m.LODs[1].Faces, 1)
	assert.Empty(t, rep.Warnings)
}

func TestTextureResolver(t *testing.T) {
	mat := material("Skin")
	mat.Textures[ovo.SlotAlbedo] = "skin.png"
	mat.Textures[ovo.SlotNormal] = "missing.png"

	opts := DefaultOptions()
	opts.Textures = TextureResolverFunc(func(_ context.Context, material, slot, ref string) (string, error) {
		if ref == "missing.png" {
			return "", os.ErrNotExist
		}
		return "textures/" + ref, nil
	})

	f, rep, err := New(opts, nil).Build(context.Background(), nil, []MaterialSource{mat})
	require.NoError(t, err)

	m, ok := f.Material("Skin")
	require.True(t, ok)
	assert.Equal(t, "textures/skin.png", m.Textures[ovo.SlotAlbedo])
	assert.Empty(t, m.Textures[ovo.SlotNormal])
	require.Len(t, rep.Warnings, 1)
	assert.ErrorIs(t, rep.Warnings[0].Err, os.ErrNotExist)
}

func TestExportDecodes(t *testing.T) {
	root := node("Root", mesh("Cube", "Red"), node("Empty"))
	var buf bytes.Buffer

	rep, err := New(DefaultOptions(), nil).Export(context.Background(), &buf,
		[]scene.Object{root}, []MaterialSource{material("Red")})
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), rep.Bytes)

	f, err := ovo.Read(&buf)
	require.NoError(t, err)
	tree, err := scene.Rebuild(f.SceneRecords(), scene.RebuildOptions{StrictSingleRoot: true})
	require.NoError(t, err)
	assert.Equal(t, 4, tree.Len())
	assert.True(t, tree.IsFileRoot(tree.Roots[0]))
}

func TestExportCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(DefaultOptions(), nil).Export(ctx, &bytes.Buffer{}, []scene.Object{node("A")}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExportFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.ovo")
	e := New(DefaultOptions(), nil)

	rep, err := e.ExportFile(context.Background(), path, []scene.Object{node("A")}, nil)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, rep.Bytes, info.Size())

	// A failed export leaves the previous file and no temp files behind.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.ExportFile(ctx, path, []scene.Object{node("B")}, nil)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "scene.ovo", entries[0].Name())

	f, err := ovo.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A", f.SceneRecords()[1].Base().Name)
}

func TestExportFileDirect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.ovo")
	opts := DefaultOptions()
	opts.AtomicWrite = false

	_, err := New(opts, nil).ExportFile(context.Background(), path, []scene.Object{node("A")}, nil)
	require.NoError(t, err)
	_, err = ovo.ReadFile(path)
	assert.NoError(t, err)
}
