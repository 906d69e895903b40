package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Faultbox/ovokit/internal/exporter"
	"github.com/Faultbox/ovokit/internal/logger"
	"github.com/Faultbox/ovokit/internal/report"
	"github.com/Faultbox/ovokit/internal/scenedesc"
	"github.com/Faultbox/ovokit/internal/textures"
)

func newBuildCmd(a *app) *cobra.Command {
	var output, textureDir string
	var noLights, noMeshes, skipTextures, failOnWarnings bool

	cmd := &cobra.Command{
		Use:   "build <scene.yaml>",
		Short: "Export a YAML scene description to OVO",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := scenedesc.Load(args[0])
			if err != nil {
				return err
			}

			opts, err := exporter.OptionsFromConfig(a.cfg.Export)
			if err != nil {
				return err
			}
			if noLights {
				opts.IncludeLights = false
			}
			if noMeshes {
				opts.IncludeMeshes = false
			}

			if !skipTextures {
				if textureDir == "" {
					textureDir = filepath.Dir(args[0])
				}
				opts.Textures = &textures.DirResolver{Dir: textureDir, Log: logger.Named("textures")}
			}

			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".ovo"
			}

			ex := exporter.New(opts, logger.Named("export"))
			rep, err := ex.ExportFile(cmd.Context(), output, s.Objects(), s.MaterialSources())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printSuccess(w, "%s (%d bytes)", output, rep.Bytes)
			printField(w, "Materials", rep.Materials)
			printField(w, "Nodes", rep.Nodes)
			printField(w, "Meshes", fmt.Sprintf("%d (%d vertices, %d faces)", rep.Meshes, rep.Vertices, rep.Faces))
			printField(w, "Lights", rep.Lights)
			printWarnings(w, rep.Warnings)
			if failOnWarnings {
				if err := report.Join(rep.Warnings); err != nil {
					return fmt.Errorf("%d warnings: %w", len(rep.Warnings), err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: input name with .ovo)")
	cmd.Flags().BoolVar(&noLights, "no-lights", false, "skip lights")
	cmd.Flags().BoolVar(&noMeshes, "no-meshes", false, "skip meshes")
	cmd.Flags().StringVar(&textureDir, "textures", "", "directory texture paths are relative to (default: the scene's directory)")
	cmd.Flags().BoolVar(&skipTextures, "skip-textures", false, "write texture names without checking the files")
	cmd.Flags().BoolVar(&failOnWarnings, "fail-on-warnings", false, "exit with an error when any object was degraded")
	return cmd
}
