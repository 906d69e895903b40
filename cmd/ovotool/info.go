package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Faultbox/ovokit/pkg/ovo"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file.ovo>",
		Short: "Show version, chunk histogram and object counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, args[0])
		},
	}
}

func runInfo(cmd *cobra.Command, path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return err
	}
	f, err := ovo.ReadFile(path)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, styleTitle.Render(path))
	printField(w, "Version", f.Version())
	printField(w, "Size", fmt.Sprintf("%d bytes", st.Size()))
	printField(w, "Chunks", len(f.Records))

	var meshes, lights, nodes, vertices, faces, lods int
	for _, rec := range f.SceneRecords() {
		switch r := rec.(type) {
		case *ovo.Mesh:
			meshes++
			vertices += r.VertexCount()
			faces += r.FaceCount()
			lods += len(r.LODs)
		case *ovo.Light:
			lights++
		default:
			nodes++
		}
	}
	printField(w, "Materials", len(f.Materials()))
	printField(w, "Nodes", nodes)
	printField(w, "Meshes", fmt.Sprintf("%d (%d levels, %d vertices, %d faces in LOD 0)", meshes, lods, vertices, faces))
	printField(w, "Lights", lights)

	hist := f.Histogram()
	types := make([]ovo.ChunkType, 0, len(hist))
	for t := range hist {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Chunks by type:")
	for _, t := range types {
		fmt.Fprintf(w, "  %s %-12s %s\n", styleDim.Render(iconInfo), t, styleNumber.Render(fmt.Sprint(hist[t])))
	}
	return nil
}
