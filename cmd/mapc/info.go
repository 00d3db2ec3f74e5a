package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Faultbox/almond/internal/level"
)

var infoCmd = &cobra.Command{
	Use:   "info <file.map>",
	Short: "List entities and brushes with their mesh sizes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lvl, err := newLoader().Load(args[0])
		if err != nil {
			return err
		}
		writeInfo(cmd.OutOrStdout(), lvl)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func writeInfo(w io.Writer, lvl *level.Level) {
	fmt.Fprintf(w, "Map: %s\n", lvl.Path)
	fmt.Fprintf(w, "Entities: %d  Meshes: %d  Failed: %d\n", len(lvl.Entities), len(lvl.Meshes), lvl.Failed())
	fmt.Fprintf(w, "Vertices: %d  Triangles: %d\n", lvl.VertexCount(), lvl.TriangleCount())
	if lvl.HasSpawn {
		fmt.Fprintf(w, "Spawn: (%.3f, %.3f, %.3f)\n", lvl.Spawn.X, lvl.Spawn.Y, lvl.Spawn.Z)
	}
	if len(lvl.Meshes) > 0 {
		box := lvl.Bounds()
		fmt.Fprintf(w, "Bounds: (%.3f, %.3f, %.3f) - (%.3f, %.3f, %.3f)\n",
			box.Min.X, box.Min.Y, box.Min.Z, box.Max.X, box.Max.Y, box.Max.Z)
	}

	for i, e := range lvl.Entities {
		fmt.Fprintf(w, "\n[%d] %s (%d brushes)\n", i, e.ClassName, e.Brushes)
		for _, m := range lvl.MeshesOf(i) {
			fmt.Fprintf(w, "  brush %d: %d vertices, %d triangles\n", m.Brush, len(m.Vertices), m.TriangleCount())
		}
		for _, f := range lvl.Failures {
			if f.Entity == i {
				fmt.Fprintf(w, "  brush %d: FAILED: %v\n", f.Brush, f.Err)
			}
		}
	}
}
