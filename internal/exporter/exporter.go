// Package exporter writes a host scene to an OVO file.
//
// Objects are flattened in pre-order, meshes are split so every vertex
// carries one UV, and problems with a single object degrade that object
// instead of failing the export.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/ovokit/internal/report"
	"github.com/Faultbox/ovokit/pkg/geometry"
	"github.com/Faultbox/ovokit/pkg/ovo"
	"github.com/Faultbox/ovokit/pkg/scene"
)

// Export errors.
var (
	ErrNoGeometry = errors.New("mesh has no geometry")
	ErrEmptyMesh  = errors.New("mesh has no vertices")
)

// Report summarizes an export.
type Report struct {
	Warnings   []report.Warning
	Duplicates []string
	Materials  int
	Nodes      int
	Meshes     int
	Lights     int
	Vertices   int
	Faces      int
	Bytes      int64
}

// Exporter converts scenes into OVO files.
type Exporter struct {
	opts Options
	log  *zap.Logger
}

// New creates an exporter. A nil logger disables logging.
func New(opts Options, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{opts: opts, log: log}
}

// build holds the state of one export.
type build struct {
	ctx      context.Context
	warn     *report.Warnings
	rep      *Report
	names    map[string]bool
	material map[string]bool
}

// Build converts the scene into records without writing them.
func (e *Exporter) Build(ctx context.Context, roots []scene.Object, mats []MaterialSource) (*ovo.File, *Report, error) {
	flat, err := scene.Flatten(roots, scene.FlattenOptions{
		Root:    e.opts.RootPolicy,
		Include: e.opts.include,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("flattening scene: %w", err)
	}

	b := &build{
		ctx:      ctx,
		warn:     report.New(e.log),
		rep:      &Report{Duplicates: flat.Duplicates},
		names:    make(map[string]bool, len(flat.Entries)),
		material: make(map[string]bool),
	}
	for _, id := range flat.Duplicates {
		e.log.Debug("object reached twice, emitted once", zap.String("id", id))
	}
	for i := range flat.Entries {
		b.names[flat.Entries[i].Name] = true
	}

	file := ovo.NewFile()

	materials, err := e.materials(b, flat, mats)
	if err != nil {
		return nil, nil, err
	}
	for i := range materials {
		file.Records = append(file.Records, &materials[i])
	}
	b.rep.Materials = len(materials)

	recs, err := scene.Records(flat, func(entry *scene.Entry) (ovo.SceneRecord, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return e.record(b, entry), nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("exporting objects: %w", err)
	}
	for _, rec := range recs {
		file.Records = append(file.Records, rec)
		switch r := rec.(type) {
		case *ovo.Mesh:
			b.rep.Meshes++
			b.rep.Vertices += r.VertexCount()
			b.rep.Faces += r.FaceCount()
		case *ovo.Light:
			b.rep.Lights++
		default:
			b.rep.Nodes++
		}
	}

	b.rep.Warnings = b.warn.List()
	e.log.Debug("scene built",
		zap.Int("records", len(file.Records)),
		zap.Int("warnings", len(b.rep.Warnings)))
	return file, b.rep, nil
}

// Export builds the scene and writes it to w.
func (e *Exporter) Export(ctx context.Context, w io.Writer, roots []scene.Object, mats []MaterialSource) (*Report, error) {
	file, rep, err := e.Build(ctx, roots, mats)
	if err != nil {
		return nil, err
	}
	cw := &countingWriter{w: w}
	if err := file.Write(cw); err != nil {
		return nil, fmt.Errorf("writing OVO stream: %w", err)
	}
	rep.Bytes = cw.n
	return rep, nil
}

// ExportFile exports to path. With AtomicWrite the data goes to a
// temporary file in the same directory that replaces path only on success.
func (e *Exporter) ExportFile(ctx context.Context, path string, roots []scene.Object, mats []MaterialSource) (*Report, error) {
	if !e.opts.AtomicWrite {
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("creating output: %w", err)
		}
		rep, err := e.Export(ctx, f, roots, mats)
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing output: %w", cerr)
		}
		return rep, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	rep, err := e.Export(ctx, tmp, roots, mats)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmpPath, path)
	}
	if err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("exporting %s: %w", path, err)
	}

	e.log.Info("exported", zap.String("path", path), zap.Int64("bytes", rep.Bytes))
	return rep, nil
}

// materials orders the materials: those referenced by emitted meshes in
// traversal order, then the rest in the order given. Names are unique.
func (e *Exporter) materials(b *build, flat *scene.Flat, mats []MaterialSource) ([]ovo.Material, error) {
	byName := make(map[string]ovo.Material, len(mats))
	var order []string
	for _, src := range mats {
		m := src.MaterialRecord()
		if m.Name == "" || m.Name == ovo.NoneName {
			b.warn.Add("material", fmt.Errorf("%w: material without a name", ovo.ErrInvalidRecord))
			continue
		}
		if _, dup := byName[m.Name]; dup {
			e.log.Debug("duplicate material ignored", zap.String("material", m.Name))
			continue
		}
		byName[m.Name] = m
		order = append(order, m.Name)
	}

	var out []ovo.Material
	add := func(name string) error {
		m := byName[name]
		if err := e.resolveTextures(b, &m); err != nil {
			return err
		}
		out = append(out, m)
		b.material[name] = true
		return nil
	}

	for i := range flat.Entries {
		mo, ok := flat.Entries[i].Object.(scene.MeshObject)
		if !ok {
			continue
		}
		name := mo.MaterialName()
		if name == "" || b.material[name] {
			continue
		}
		if _, ok := byName[name]; !ok {
			continue
		}
		if err := add(name); err != nil {
			return nil, err
		}
	}
	for _, name := range order {
		if b.material[name] {
			continue
		}
		if err := add(name); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (e *Exporter) resolveTextures(b *build, m *ovo.Material) error {
	if e.opts.Textures == nil {
		return nil
	}
	for slot, ref := range m.Textures {
		if ref == "" {
			continue
		}
		if err := b.ctx.Err(); err != nil {
			return err
		}
		name, err := e.opts.Textures.ResolveTexture(b.ctx, m.Name, ovo.SlotNames[slot], ref)
		if err != nil {
			b.warn.Add(m.Name, fmt.Errorf("%s texture %q: %w", ovo.SlotNames[slot], ref, err))
			name = ""
		}
		m.Textures[slot] = name
	}
	return nil
}

// record builds the record of one flattened object. Name, transform and
// child count are filled in by the caller.
func (e *Exporter) record(b *build, entry *scene.Entry) ovo.SceneRecord {
	var rec ovo.SceneRecord
	switch o := entry.Object.(type) {
	case scene.MeshObject:
		rec = e.mesh(b, entry.Name, o)
	case scene.LightObject:
		rec = &ovo.Light{LightParams: ovo.NormalizeLight(o.LightParams())}
	default:
		rec = &ovo.Node{}
	}

	if t, ok := entry.Object.(scene.Targeter); ok {
		if target := t.Target(); target != "" {
			if b.names[target] {
				rec.Base().Target = target
			} else {
				b.warn.Add(entry.Name, &ovo.UnresolvedReferenceError{Kind: "target", Name: target})
			}
		}
	}

	e.log.Debug("object",
		zap.String("name", entry.Name),
		zap.Stringer("kind", scene.KindOf(rec)),
		zap.Uint32("children", entry.ChildCount))
	return rec
}

func (e *Exporter) mesh(b *build, name string, o scene.MeshObject) *ovo.Mesh {
	m := &ovo.Mesh{
		Subtype: o.MeshSubtype(),
		Physics: e.physics(b, name, o.Physics()),
	}

	if mat := o.MaterialName(); mat != "" {
		if b.material[mat] {
			m.Material = mat
		} else {
			b.warn.Add(name, &ovo.UnresolvedReferenceError{Kind: "material", Name: mat})
		}
	}

	levels, err := e.levels(b, name, o)
	if err != nil {
		b.warn.Add(name, err)
		return m
	}

	bounds := levels[0].Bounds()
	m.Radius, m.BBoxMin, m.BBoxMax = bounds.Radius, bounds.Min, bounds.Max
	for _, lvl := range levels {
		m.LODs = append(m.LODs, lvl.Pack())
	}
	return m
}

// physics drops the hulls that would not decode. A hull type the format
// does not know drops the whole block.
func (e *Exporter) physics(b *build, name string, p *ovo.Physics) *ovo.Physics {
	if p == nil {
		return nil
	}
	if p.Validate() == nil {
		return p
	}

	out := *p
	out.Hulls = nil
	for i := range p.Hulls {
		if err := p.Hulls[i].Validate(); err != nil {
			b.warn.Add(name, fmt.Errorf("dropping physics hull %d: %w", i, err))
			continue
		}
		out.Hulls = append(out.Hulls, p.Hulls[i])
	}
	if err := out.Validate(); err != nil {
		b.warn.Add(name, fmt.Errorf("dropping physics: %w", err))
		return nil
	}
	return &out
}

// levels returns the split geometry of every level of detail.
func (e *Exporter) levels(b *build, name string, o scene.MeshObject) ([]*geometry.Result, error) {
	geo, err := o.Geometry()
	if err != nil {
		return nil, fmt.Errorf("reading geometry: %w", err)
	}
	if geo == nil {
		return nil, ErrNoGeometry
	}

	meshes := []*geometry.Mesh{geo}
	plan := e.opts.LOD.Plan(geo.FaceCount())
	if len(plan) > 1 {
		d, ok := o.(scene.Decimator)
		if !ok {
			e.log.Debug("no decimator, single level", zap.String("name", name), zap.Int("faces", geo.FaceCount()))
		}
		for _, ratio := range plan[1:] {
			if !ok {
				break
			}
			lvl, err := d.Decimate(ratio)
			if err != nil {
				b.warn.Add(name, fmt.Errorf("decimating to %.2f: %w", ratio, err))
				break
			}
			if lvl != nil {
				meshes = append(meshes, lvl)
			}
		}
	}

	levels, err := geometry.SplitLevels(meshes, geometry.SplitOptions{Precision: e.opts.UVPrecision})
	if err != nil {
		return nil, err
	}
	if len(levels[0].Vertices) == 0 {
		return nil, ErrEmptyMesh
	}
	if err := geometry.CheckMonotonic(levels); err != nil {
		b.warn.Add(name, err)
	}

	for i, lvl := range levels {
		if lvl.Defaulted > 0 || lvl.Fallbacks > 0 {
			e.log.Debug("uv split adjustments",
				zap.String("name", name),
				zap.Int("lod", i),
				zap.Int("defaulted", lvl.Defaulted),
				zap.Int("fallbacks", lvl.Fallbacks))
		}
	}
	return levels, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
