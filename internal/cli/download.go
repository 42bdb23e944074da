package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newDownloadCmd creates the download command: resolve the closure and
// materialize every artifact under the output directory.
//
// Examples:
//
//	caravel download -o ./libs
//	caravel download ./service -o ./libs
//	caravel download com.google.guava:guava:31.1-jre -o ./libs
func newDownloadCmd(configPath *string) *cobra.Command {
	opts := resolveOpts{configPath: configPath}
	outDir := "libs"

	cmd := &cobra.Command{
		Use:   "download [project-dir | coordinate...]",
		Short: "Resolve and download a project's artifacts",
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			logger := loggerFromContext(ctx)

			res, err := opts.buildResolver(ctx)
			if err != nil {
				return err
			}

			prog := newProgress(logger)
			spin := newSpinner(ctx, "Resolving dependencies…")
			spin.Start()
			artifacts, err := resolveTarget(ctx, res, args)
			spin.Stop()
			if err != nil {
				return err
			}
			logger.Info("resolution complete", "artifacts", len(artifacts))

			spin = newSpinner(ctx, fmt.Sprintf("Downloading %d artifacts…", len(artifacts)))
			spin.Start()
			err = res.Download(ctx, outDir, artifacts)
			spin.Stop()
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Downloaded %d artifacts to %s", len(artifacts), outDir))

			printSuccess("Artifacts in %s", outDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", outDir, "output directory")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "parallel resolves per level (default 8)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the HTTP response cache")
	return cmd
}
