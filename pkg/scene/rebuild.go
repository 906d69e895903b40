package scene

import (
	"errors"
	"fmt"

	ovomath "github.com/Faultbox/ovokit/pkg/math"
	"github.com/Faultbox/ovokit/pkg/ovo"
)

// ErrHierarchyMalformed is returned when child counts do not balance.
var ErrHierarchyMalformed = errors.New("malformed hierarchy")

// HierarchyError describes where a record stream stopped balancing.
type HierarchyError struct {
	Index   int    // record index in stream order
	Name    string // record name
	Pending uint32 // children still expected
	Reason  string
}

func (e *HierarchyError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("malformed hierarchy at record %d (%q): %s", e.Index, e.Name, e.Reason)
	}
	return fmt.Sprintf("malformed hierarchy: record %d (%q) still expects %d children at end of stream",
		e.Index, e.Name, e.Pending)
}

func (e *HierarchyError) Unwrap() error {
	return ErrHierarchyMalformed
}

// State is the rebuild state machine state.
type State int

const (
	// StateExpecting waits for the next record.
	StateExpecting State = iota
	// StateClosing pops ancestors whose children have all arrived.
	StateClosing
	// StateAttaching links the record to the open ancestor.
	StateAttaching
	// StateDone is reached when the stream ended with nothing pending.
	StateDone
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateExpecting:
		return "Expecting"
	case StateClosing:
		return "Closing"
	case StateAttaching:
		return "Attaching"
	case StateDone:
		return "Done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// RebuildOptions configures Rebuild.
type RebuildOptions struct {
	// StrictSingleRoot rejects a record that arrives after the first
	// top-level subtree has closed instead of adding another root.
	StrictSingleRoot bool
}

type frame struct {
	node      int
	remaining uint32
}

// Rebuilder reconstructs parent links from records fed in file order.
// It is single pass and never looks ahead.
type Rebuilder struct {
	opts  RebuildOptions
	tree  *Tree
	stack []frame
	tops  []int
	state State
	err   error
}

// NewRebuilder creates an empty rebuilder.
func NewRebuilder(opts RebuildOptions) *Rebuilder {
	return &Rebuilder{opts: opts, tree: &Tree{}}
}

// State returns the current state.
func (b *Rebuilder) State() State {
	return b.state
}

// Push consumes the next record.
func (b *Rebuilder) Push(rec ovo.SceneRecord) error {
	if b.err != nil {
		return b.err
	}
	if b.state == StateDone {
		return errors.New("scene: push after finish")
	}

	b.state = StateClosing
	b.closeFinished()

	b.state = StateAttaching
	idx := len(b.tree.Nodes)
	node := TreeNode{Record: rec, Parent: -1}

	if len(b.stack) > 0 {
		top := &b.stack[len(b.stack)-1]
		top.remaining--
		node.Parent = top.node
		parent := &b.tree.Nodes[top.node]
		parent.Children = append(parent.Children, idx)
	} else {
		if b.opts.StrictSingleRoot && len(b.tops) > 0 {
			b.err = &HierarchyError{
				Index:  idx,
				Name:   rec.Base().Name,
				Reason: "record arrives after the root subtree is complete",
			}
			return b.err
		}
		b.tops = append(b.tops, idx)
	}

	b.tree.Nodes = append(b.tree.Nodes, node)
	if n := rec.Base().ChildCount; n > 0 {
		b.stack = append(b.stack, frame{node: idx, remaining: n})
	}

	b.state = StateExpecting
	return nil
}

func (b *Rebuilder) closeFinished() {
	for len(b.stack) > 0 && b.stack[len(b.stack)-1].remaining == 0 {
		b.stack = b.stack[:len(b.stack)-1]
	}
}

// Finish ends the stream and returns the tree. Any record still waiting
// for children makes the stream malformed. Several top-level records are
// placed under a synthetic RootName node.
func (b *Rebuilder) Finish() (*Tree, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.state == StateDone {
		return b.tree, nil
	}

	b.state = StateClosing
	b.closeFinished()
	if len(b.stack) > 0 {
		// The innermost open record is the one that ran short.
		top := b.stack[len(b.stack)-1]
		b.err = &HierarchyError{
			Index:   top.node,
			Name:    b.tree.Name(top.node),
			Pending: top.remaining,
		}
		return nil, b.err
	}

	if len(b.tops) > 1 {
		root := len(b.tree.Nodes)
		b.tree.Nodes = append(b.tree.Nodes, TreeNode{
			Record: &ovo.Node{
				Name:       ovo.RootName,
				Transform:  ovomath.Identity(),
				ChildCount: uint32(len(b.tops)),
			},
			Parent:    -1,
			Children:  b.tops,
			Synthetic: true,
		})
		for _, t := range b.tops {
			b.tree.Nodes[t].Parent = root
		}
		b.tree.Roots = []int{root}
	} else {
		b.tree.Roots = b.tops
	}

	b.state = StateDone
	return b.tree, nil
}

// Rebuild reconstructs the tree of a complete record stream.
func Rebuild(recs []ovo.SceneRecord, opts RebuildOptions) (*Tree, error) {
	b := NewRebuilder(opts)
	for _, rec := range recs {
		if err := b.Push(rec); err != nil {
			return nil, err
		}
	}
	return b.Finish()
}

// Records converts flattened entries into scene records with names,
// transforms and child counts set. Callers fill in mesh and light data.
func Records(flat *Flat, build func(e *Entry) (ovo.SceneRecord, error)) ([]ovo.SceneRecord, error) {
	out := make([]ovo.SceneRecord, 0, len(flat.Entries))
	for i := range flat.Entries {
		e := &flat.Entries[i]
		var rec ovo.SceneRecord
		if build != nil && !e.Synthetic() {
			var err error
			if rec, err = build(e); err != nil {
				return nil, err
			}
		}
		if rec == nil {
			rec = &ovo.Node{}
		}
		base := rec.Base()
		base.Name = e.Name
		base.Transform = e.Transform
		base.ChildCount = e.ChildCount
		out = append(out, rec)
	}
	return out, nil
}
