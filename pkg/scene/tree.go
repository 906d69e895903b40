package scene

import (
	"github.com/Faultbox/ovokit/pkg/ovo"
)

// TreeNode is one node of a rebuilt tree. Links are indices into Tree.Nodes.
type TreeNode struct {
	Record   ovo.SceneRecord
	Parent   int // -1 for top-level nodes
	Children []int
	// Synthetic marks the presentation root added when a stream has
	// several top-level records.
	Synthetic bool
}

// Tree is a scene hierarchy stored in an arena in file order.
type Tree struct {
	Nodes []TreeNode
	Roots []int
}

// Len returns the number of nodes, including a synthetic root.
func (t *Tree) Len() int {
	return len(t.Nodes)
}

// Kind returns the kind of node i.
func (t *Tree) Kind(i int) Kind {
	return KindOf(t.Nodes[i].Record)
}

// Name returns the record name of node i.
func (t *Tree) Name(i int) string {
	return t.Nodes[i].Record.Base().Name
}

// IsFileRoot reports whether node i is a RootName record read from the
// file, whose direct children carry the axis correction.
func (t *Tree) IsFileRoot(i int) bool {
	if i < 0 || i >= len(t.Nodes) {
		return false
	}
	n := &t.Nodes[i]
	return !n.Synthetic && n.Parent == -1 && n.Record.Base().Name == ovo.RootName
}

// Walk visits every node in pre-order. Returning an error stops the walk.
func (t *Tree) Walk(fn func(i, depth int) error) error {
	var visit func(i, depth int) error
	visit = func(i, depth int) error {
		if err := fn(i, depth); err != nil {
			return err
		}
		for _, c := range t.Nodes[i].Children {
			if err := visit(c, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range t.Roots {
		if err := visit(r, 0); err != nil {
			return err
		}
	}
	return nil
}

// Find returns the index of the first node with the given name.
func (t *Tree) Find(name string) (int, bool) {
	for i := range t.Nodes {
		if t.Nodes[i].Record.Base().Name == name {
			return i, true
		}
	}
	return -1, false
}
