package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/chewxy/math32"
	"github.com/spf13/cobra"

	ovomath "github.com/Faultbox/ovokit/pkg/math"
	"github.com/Faultbox/ovokit/pkg/ovo"
	"github.com/Faultbox/ovokit/pkg/scene"
)

func newTreeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree <file.ovo>",
		Short: "Print the object hierarchy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ovo.ReadFile(args[0])
			if err != nil {
				return err
			}
			tree, err := scene.Rebuild(f.SceneRecords(), scene.RebuildOptions{
				StrictSingleRoot: a.cfg.Import.StrictHierarchy,
			})
			if err != nil {
				return err
			}
			renderTree(cmd.OutOrStdout(), tree)
			return nil
		},
	}
	cmd.Flags().BoolVar(&a.overrides.Strict, "strict", false, "reject files with more than one top-level record")
	return cmd
}

// renderTree prints one line per node with box drawing guides.
func renderTree(w io.Writer, tree *scene.Tree) {
	var visit func(i int, prefix string, last, top bool)
	visit = func(i int, prefix string, last, top bool) {
		branch, next := "", prefix
		if !top {
			branch, next = "├── ", prefix+"│   "
			if last {
				branch, next = "└── ", prefix+"    "
			}
		}
		fmt.Fprintf(w, "%s%s%s\n", styleDim.Render(prefix+branch), nodeLabel(tree, i), nodeDetail(tree, i))

		kids := tree.Nodes[i].Children
		for k, c := range kids {
			visit(c, next, k == len(kids)-1, false)
		}
	}
	for _, r := range tree.Roots {
		visit(r, "", true, true)
	}
}

func nodeLabel(tree *scene.Tree, i int) string {
	name := tree.Name(i)
	if tree.Nodes[i].Synthetic || name == ovo.RootName {
		return styleRoot.Render(name)
	}
	return kindStyles[tree.Kind(i)].Render(name)
}

// formatVec prints v with two decimals. Adding 0 after rounding turns
// -0 into 0 so float noise never shows up as a sign.
func formatVec(v ovomath.Vec3) string {
	r := func(f float32) float32 { return math32.Round(f*100)/100 + 0 }
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", r(v.X), r(v.Y), r(v.Z))
}

func nodeDetail(tree *scene.Tree, i int) string {
	var parts []string
	switch r := tree.Nodes[i].Record.(type) {
	case *ovo.Mesh:
		parts = append(parts, fmt.Sprintf("mesh %d verts %d faces", r.VertexCount(), r.FaceCount()))
		if len(r.LODs) > 1 {
			parts = append(parts, fmt.Sprintf("%d lods", len(r.LODs)))
		}
		if r.Material != "" {
			parts = append(parts, "material "+r.Material)
		}
		if r.Physics != nil {
			parts = append(parts, "physics "+r.Physics.Hull.String())
		}
	case *ovo.Light:
		parts = append(parts, strings.ToLower(r.Subtype.String())+" light")
		parts = append(parts, "at "+formatVec(r.Transform.Translation()))
		if r.Subtype != ovo.LightOmni {
			dir := ovo.LightOrientation(r).Rotate(ovo.Forward)
			parts = append(parts, "points "+formatVec(r.Transform.TransformDirection(dir).Normalize()))
		}
	}
	if tree.Nodes[i].Synthetic {
		parts = append(parts, "synthetic")
	}
	if t := tree.Nodes[i].Record.Base().Target; t != "" {
		parts = append(parts, "target "+t)
	}
	if len(parts) == 0 {
		return ""
	}
	return styleDim.Render(" (" + strings.Join(parts, ", ") + ")")
}
