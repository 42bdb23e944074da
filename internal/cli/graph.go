package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/caravel-cli/caravel/pkg/render"
)

// newGraphCmd creates the graph command: resolve the project and export
// the walked dependency graph as DOT, SVG, or PNG.
//
// The output format follows the file extension of --out; without an
// output path the DOT source is written to stdout.
func newGraphCmd(configPath *string) *cobra.Command {
	opts := resolveOpts{configPath: configPath}
	detailed := false

	cmd := &cobra.Command{
		Use:   "graph [project-dir]",
		Short: "Export the dependency graph as DOT, SVG, or PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			logger := loggerFromContext(ctx)

			res, err := opts.buildResolver(ctx)
			if err != nil {
				return err
			}

			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			prog := newProgress(logger)
			roots, err := res.ResolveGraph(ctx, dir)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Walked graph below %d direct dependencies", len(roots)))

			dot := render.ToDOT(roots, render.Options{Detailed: detailed})

			if opts.output == "" {
				fmt.Print(dot)
				return nil
			}

			var data []byte
			switch strings.ToLower(filepath.Ext(opts.output)) {
			case ".svg":
				data, err = render.RenderSVG(dot)
			case ".png":
				data, err = render.RenderPNG(dot)
			case ".dot", ".gv":
				data = []byte(dot)
			default:
				return fmt.Errorf("unsupported graph format %q (use .dot, .svg, or .png)", opts.output)
			}
			if err != nil {
				return err
			}

			if err := os.WriteFile(opts.output, data, 0o644); err != nil {
				return err
			}
			printSuccess("Wrote graph to %s", opts.output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "out", "o", "", "output file (.dot, .svg, .png; stdout DOT if empty)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include packaging and repository in node labels")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the HTTP response cache")
	return cmd
}
