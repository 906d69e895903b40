package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/ovokit/internal/importer"
	"github.com/Faultbox/ovokit/internal/logger"
	"github.com/Faultbox/ovokit/internal/report"
)

type validation struct {
	path     string
	objects  int
	warnings []report.Warning
	err      error
}

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file.ovo>...",
		Short: "Decode files and check their hierarchy",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, a, args)
		},
	}
	cmd.Flags().IntVarP(&a.overrides.Workers, "workers", "j", 0, "files checked in parallel (default from config)")
	cmd.Flags().BoolVar(&a.overrides.Strict, "strict", false, "reject files with more than one top-level record")
	return cmd
}

// runValidate checks every file with at most validate.workers running at
// once and reports them in argument order.
func runValidate(cmd *cobra.Command, a *app, paths []string) error {
	log := logger.Named("validate")
	im := importer.New(importer.OptionsFromConfig(a.cfg.Import), log)

	results := make([]validation, len(paths))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(a.cfg.Validate.Workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			res := validation{path: path}
			r, err := im.ImportFile(ctx, path, nil)
			if err != nil {
				res.err = err
			} else {
				res.objects = len(r.Objects)
				res.warnings = r.Warnings
			}
			results[i] = res
			log.Debug("validated", zap.String("path", path), zap.Error(err))
			// Per-file failures are collected, not returned, so the
			// other files are still checked.
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	var errs error
	for _, res := range results {
		if res.err != nil {
			fmt.Fprintf(w, "%s %s: %v\n", styleError.Render(iconError), res.path, res.err)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", res.path, res.err))
			continue
		}
		printSuccess(w, "%s (%d objects)", res.path, res.objects)
		printWarnings(w, res.warnings)
	}

	if n := len(multierr.Errors(errs)); n > 0 {
		return fmt.Errorf("%d of %d files invalid: %w", n, len(paths), errs)
	}
	return nil
}
