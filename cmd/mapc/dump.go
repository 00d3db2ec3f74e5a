package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/almond/internal/level"
)

var flagOutput string

var dumpCmd = &cobra.Command{
	Use:   "dump <file.map>",
	Short: "Write the built meshes as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lvl, err := newLoader().Load(args[0])
		if err != nil {
			return err
		}

		if flagOutput == "" {
			return writeDump(cmd.OutOrStdout(), lvl)
		}

		f, err := os.Create(flagOutput)
		if err != nil {
			return fmt.Errorf("creating %s: %w", flagOutput, err)
		}
		if err := writeDump(f, lvl); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", flagOutput, err)
		}
		return nil
	},
}

func init() {
	dumpCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(dumpCmd)
}

type levelDump struct {
	Map    string      `yaml:"map,omitempty"`
	Spawn  *[3]float32 `yaml:"spawn,omitempty,flow"`
	Meshes []meshDump  `yaml:"meshes"`
	Failed []failDump  `yaml:"failed,omitempty"`
}

type meshDump struct {
	Entity    int          `yaml:"entity"`
	Brush     int          `yaml:"brush"`
	ClassName string       `yaml:"classname"`
	Vertices  []vertexDump `yaml:"vertices"`
	Indices   []uint16     `yaml:"indices,flow"`
}

type vertexDump struct {
	Position [3]float32 `yaml:"p,flow"`
	TexCoord [2]float32 `yaml:"uv,flow"`
}

type failDump struct {
	Entity int    `yaml:"entity"`
	Brush  int    `yaml:"brush"`
	Error  string `yaml:"error"`
}

func dumpLevel(lvl *level.Level) levelDump {
	d := levelDump{Map: lvl.Path, Meshes: make([]meshDump, 0, len(lvl.Meshes))}
	if lvl.HasSpawn {
		d.Spawn = &[3]float32{lvl.Spawn.X, lvl.Spawn.Y, lvl.Spawn.Z}
	}

	for _, m := range lvl.Meshes {
		md := meshDump{
			Entity:    m.Entity,
			Brush:     m.Brush,
			ClassName: lvl.Entities[m.Entity].ClassName,
			Vertices:  make([]vertexDump, len(m.Vertices)),
			Indices:   m.Indices,
		}
		for i, v := range m.Vertices {
			md.Vertices[i] = vertexDump{
				Position: [3]float32{v.Position.X, v.Position.Y, v.Position.Z},
				TexCoord: [2]float32{v.TexCoord.X, v.TexCoord.Y},
			}
		}
		d.Meshes = append(d.Meshes, md)
	}

	for _, f := range lvl.Failures {
		d.Failed = append(d.Failed, failDump{Entity: f.Entity, Brush: f.Brush, Error: f.Err.Error()})
	}
	return d
}

func writeDump(w io.Writer, lvl *level.Level) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(dumpLevel(lvl)); err != nil {
		return fmt.Errorf("encoding dump: %w", err)
	}
	return enc.Close()
}
