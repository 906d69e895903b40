// Package importer reads an OVO file and hands its objects to a host
// scene through an ObjectFactory.
package importer

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/ovokit/internal/config"
	"github.com/Faultbox/ovokit/internal/report"
	ovomath "github.com/Faultbox/ovokit/pkg/math"
	"github.com/Faultbox/ovokit/pkg/ovo"
	"github.com/Faultbox/ovokit/pkg/scene"
)

// Options controls an import.
type Options struct {
	// StrictHierarchy rejects files with more than one top-level record.
	StrictHierarchy bool
	// AxisCorrection undoes the export axis correction on the direct
	// children of the file root.
	AxisCorrection bool
	// KeepRoot creates an object for the root record as well.
	KeepRoot bool
	// Materials resolves mesh material names. Nil uses the file's own
	// MATERIAL records.
	Materials MaterialResolver
}

// DefaultOptions returns the options used when no config is given.
func DefaultOptions() Options {
	return Options{AxisCorrection: true}
}

// OptionsFromConfig converts the import section of the config file.
func OptionsFromConfig(c config.ImportConfig) Options {
	return Options{
		StrictHierarchy: c.StrictHierarchy,
		AxisCorrection:  c.AxisCorrection,
		KeepRoot:        c.KeepRoot,
	}
}

// MaterialResolver looks up materials by name.
type MaterialResolver interface {
	Resolve(name string) (*ovo.Material, bool)
}

type fileMaterials struct {
	byName map[string]*ovo.Material
}

func newFileMaterials(f *ovo.File) *fileMaterials {
	fm := &fileMaterials{byName: make(map[string]*ovo.Material)}
	for _, m := range f.Materials() {
		if _, ok := fm.byName[m.Name]; !ok {
			fm.byName[m.Name] = m
		}
	}
	return fm
}

func (fm *fileMaterials) Resolve(name string) (*ovo.Material, bool) {
	m, ok := fm.byName[name]
	return m, ok
}

// Object is one imported scene object.
type Object struct {
	// Index is the node index in Result.Tree.
	Index  int
	Kind   scene.Kind
	Record ovo.SceneRecord
	Name   string
	// Transform is local to Parent with the axis correction undone.
	Transform ovomath.Mat4
	// Parent indexes Result.Objects, -1 for top-level objects.
	Parent int
	// Material is nil when the mesh has none or it did not resolve.
	Material *ovo.Material
	// Target is the tree index of the target node, -1 for none.
	Target int
	// Orientation turns ovo.Forward onto a light's direction. It is the
	// identity for everything but directional and spot lights.
	Orientation ovomath.Quat
}

// Frame returns the local transform with the light orientation applied,
// so its -Z axis is where a light points.
func (o *Object) Frame() ovomath.Mat4 {
	return o.Transform.Mul(o.Orientation.ToMat4())
}

// Handle is whatever the host uses to refer to a created object.
type Handle any

// ObjectFactory creates host objects. Objects are created parents
// first, and each child is attached right after it is created.
type ObjectFactory interface {
	CreateObject(kind scene.Kind, obj *Object) (Handle, error)
	Attach(child, parent Handle) error
}

// Result is a completed import.
type Result struct {
	File     *ovo.File
	Tree     *scene.Tree
	Objects  []*Object
	Handles  []Handle
	Warnings []report.Warning
}

// Importer reads OVO files.
type Importer struct {
	opts Options
	log  *zap.Logger
}

// New creates an importer. A nil logger disables logging.
func New(opts Options, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{opts: opts, log: log}
}

// ImportFile imports the file at path.
func (im *Importer) ImportFile(ctx context.Context, path string, factory ObjectFactory) (*Result, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening OVO file: %w", err)
	}
	defer fh.Close()

	res, err := im.Import(ctx, fh, factory)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", path, err)
	}
	return res, nil
}

// Import decodes r, rebuilds the hierarchy and creates every object
// through factory. A nil factory only decodes and resolves.
func (im *Importer) Import(ctx context.Context, r io.Reader, factory ObjectFactory) (*Result, error) {
	f, err := ovo.Read(r)
	if err != nil {
		return nil, err
	}

	warn := report.New(im.log)
	if v := f.Version(); v != ovo.FormatVersion {
		warn.Add("", fmt.Errorf("file version %d, expected %d", v, ovo.FormatVersion))
	}

	tree, err := im.rebuild(ctx, f)
	if err != nil {
		return nil, err
	}

	materials := im.opts.Materials
	if materials == nil {
		materials = newFileMaterials(f)
	}

	res := &Result{File: f, Tree: tree}
	handles := make(map[int]Handle)
	outIndex := make(map[int]int)

	err = tree.Walk(func(i, depth int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		node := &tree.Nodes[i]
		if im.isRoot(tree, i) && !im.opts.KeepRoot {
			return nil
		}

		obj := im.object(tree, i, materials, warn)
		if p, ok := outIndex[node.Parent]; ok && node.Parent >= 0 {
			obj.Parent = p
		}
		outIndex[i] = len(res.Objects)
		res.Objects = append(res.Objects, obj)

		im.log.Debug("object",
			zap.Int("index", i),
			zap.Int("depth", depth),
			zap.String("name", obj.Name),
			zap.Stringer("kind", obj.Kind))

		if factory == nil {
			return nil
		}
		h, err := factory.CreateObject(obj.Kind, obj)
		if err != nil {
			return fmt.Errorf("creating %q: %w", obj.Name, err)
		}
		handles[i] = h
		res.Handles = append(res.Handles, h)
		if parent, ok := handles[node.Parent]; ok && node.Parent >= 0 {
			if err := factory.Attach(h, parent); err != nil {
				return fmt.Errorf("attaching %q: %w", obj.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.Warnings = warn.List()
	im.log.Debug("import done",
		zap.Int("objects", len(res.Objects)),
		zap.Int("warnings", len(res.Warnings)))
	return res, nil
}

func (im *Importer) rebuild(ctx context.Context, f *ovo.File) (*scene.Tree, error) {
	b := scene.NewRebuilder(scene.RebuildOptions{StrictSingleRoot: im.opts.StrictHierarchy})
	for _, rec := range f.SceneRecords() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.Push(rec); err != nil {
			return nil, err
		}
	}
	return b.Finish()
}

// isRoot reports whether node i is a file root or a presentation root.
func (im *Importer) isRoot(tree *scene.Tree, i int) bool {
	return tree.Nodes[i].Synthetic || tree.IsFileRoot(i)
}

func (im *Importer) object(tree *scene.Tree, i int, materials MaterialResolver, warn *report.Warnings) *Object {
	node := &tree.Nodes[i]
	base := node.Record.Base()

	obj := &Object{
		Index:     i,
		Kind:      tree.Kind(i),
		Record:    node.Record,
		Name:      base.Name,
		Transform: base.Transform,
		Parent:    -1,
		Target:    -1,

		Orientation: ovomath.QuatIdentity(),
	}
	if l, ok := node.Record.(*ovo.Light); ok {
		obj.Orientation = ovo.LightOrientation(l)
	}

	if im.opts.AxisCorrection && tree.IsFileRoot(node.Parent) {
		obj.Transform = scene.InverseAxisCorrection().Mul(obj.Transform)
	}

	if m, ok := node.Record.(*ovo.Mesh); ok && m.Material != "" {
		if mat, ok := materials.Resolve(m.Material); ok {
			obj.Material = mat
		} else {
			warn.Add(obj.Name, &ovo.UnresolvedReferenceError{Kind: "material", Name: m.Material})
		}
	}

	if base.Target != "" {
		if t, ok := tree.Find(base.Target); ok {
			obj.Target = t
		} else {
			warn.Add(obj.Name, &ovo.UnresolvedReferenceError{Kind: "target", Name: base.Target})
		}
	}
	return obj
}
