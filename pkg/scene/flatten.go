package scene

import (
	"errors"
	"fmt"

	ovomath "github.com/Faultbox/ovokit/pkg/math"
	"github.com/Faultbox/ovokit/pkg/ovo"
)

// ErrMissingID is returned when an object has an empty ID.
var ErrMissingID = errors.New("scene object has no ID")

// RootPolicy decides when Flatten emits a RootName record.
type RootPolicy int

const (
	// RootAlways emits the root record for every scene, which is what
	// existing OVO consumers expect.
	RootAlways RootPolicy = iota
	// RootForest emits it only when there is more than one real root.
	RootForest
)

// String returns the policy name used in configuration files.
func (p RootPolicy) String() string {
	switch p {
	case RootAlways:
		return "always"
	case RootForest:
		return "forest"
	default:
		return fmt.Sprintf("RootPolicy(%d)", int(p))
	}
}

// ParseRootPolicy parses "always" or "forest".
func ParseRootPolicy(s string) (RootPolicy, error) {
	switch s {
	case "", "always":
		return RootAlways, nil
	case "forest":
		return RootForest, nil
	default:
		return RootAlways, fmt.Errorf("unknown root policy %q", s)
	}
}

// FlattenOptions configures Flatten.
type FlattenOptions struct {
	Root RootPolicy
	// Include reports whether an object is emitted. An excluded object
	// takes its whole subtree with it. Nil includes everything.
	Include func(Object) bool
}

// Entry is one record of the flattened stream.
type Entry struct {
	// Object is nil for the RootName record.
	Object     Object
	Name       string
	Transform  ovomath.Mat4
	ChildCount uint32
	Depth      int
	Parent     int // index into Flat.Entries, -1 at the top
	// Corrected is set when AxisCorrection was applied to Transform.
	Corrected bool
}

// Synthetic reports whether e is the RootName record.
func (e *Entry) Synthetic() bool {
	return e.Object == nil
}

// Flat is the result of Flatten.
type Flat struct {
	Entries []Entry
	// Duplicates lists IDs reached more than once; only the first
	// occurrence is emitted.
	Duplicates []string
}

type flattener struct {
	opts FlattenOptions
	seen map[string]bool
	out  *Flat
}

// Flatten walks roots in pre-order and returns one entry per emitted
// object with its emitted child count. Children that are filtered out or
// were already emitted elsewhere do not count. Direct children of the
// RootName record get AxisCorrection composed on the left.
func Flatten(roots []Object, opts FlattenOptions) (*Flat, error) {
	f := &flattener{
		opts: opts,
		seen: make(map[string]bool),
		out:  &Flat{},
	}

	top, err := f.selectChildren(roots)
	if err != nil {
		return nil, err
	}

	parent, depth := -1, 0
	withRoot := opts.Root == RootAlways || len(top) > 1
	if withRoot {
		f.out.Entries = append(f.out.Entries, Entry{
			Name:       ovo.RootName,
			Transform:  ovomath.Identity(),
			ChildCount: uint32(len(top)),
			Parent:     -1,
		})
		parent, depth = 0, 1
	}

	for _, o := range top {
		if err := f.emit(o, parent, depth, withRoot); err != nil {
			return nil, err
		}
	}
	return f.out, nil
}

// selectChildren filters objs and reserves the survivors, so a node that
// also appears deeper in an earlier sibling's subtree is emitted here and
// counted exactly once.
func (f *flattener) selectChildren(objs []Object) ([]Object, error) {
	var out []Object
	for _, o := range objs {
		if o == nil {
			continue
		}
		if f.opts.Include != nil && !f.opts.Include(o) {
			continue
		}
		id := o.ID()
		if id == "" {
			return nil, fmt.Errorf("%w: %q", ErrMissingID, o.Name())
		}
		if f.seen[id] {
			f.out.Duplicates = append(f.out.Duplicates, id)
			continue
		}
		f.seen[id] = true
		out = append(out, o)
	}
	return out, nil
}

func (f *flattener) emit(o Object, parent, depth int, correct bool) error {
	kids, err := f.selectChildren(o.Children())
	if err != nil {
		return err
	}

	t := o.Transform()
	if correct {
		t = AxisCorrection().Mul(t)
	}

	idx := len(f.out.Entries)
	f.out.Entries = append(f.out.Entries, Entry{
		Object:     o,
		Name:       o.Name(),
		Transform:  t,
		ChildCount: uint32(len(kids)),
		Depth:      depth,
		Parent:     parent,
		Corrected:  correct,
	})

	for _, k := range kids {
		if err := f.emit(k, idx, depth+1, false); err != nil {
			return err
		}
	}
	return nil
}
