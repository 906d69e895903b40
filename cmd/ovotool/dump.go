package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/ovokit/internal/importer"
	"github.com/Faultbox/ovokit/internal/logger"
	"github.com/Faultbox/ovokit/internal/scenedesc"
	"github.com/Faultbox/ovokit/pkg/encoding"
)

func newDumpCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "dump <file.ovo>",
		Short: "Print a decoded file as a YAML scene description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			legacy, err := encoding.Lookup(a.cfg.Import.NameEncoding)
			if err != nil {
				return err
			}
			b := scenedesc.NewBuilder(legacy)
			im := importer.New(importer.OptionsFromConfig(a.cfg.Import), logger.Named("import"))
			res, err := im.ImportFile(cmd.Context(), args[0], b)
			if err != nil {
				return err
			}
			for _, m := range res.File.Materials() {
				b.AddMaterial(m)
			}
			printWarnings(cmd.ErrOrStderr(), res.Warnings)

			data, err := b.Scene().Marshal()
			if err != nil {
				return err
			}
			if output != "" {
				return os.WriteFile(output, data, 0644)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}
