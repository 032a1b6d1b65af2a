package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linkroute/pkg/errors"
	"github.com/matzehuels/linkroute/pkg/pipeline"
	"github.com/matzehuels/linkroute/pkg/render"
)

// treeCommand creates the tree command, which draws the link hierarchy of
// a scene as a Graphviz diagram.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		format   string
		output   string
		detailed bool
		noRoute  bool
	)

	cmd := &cobra.Command{
		Use:   "tree [scene]",
		Short: "Draw the link hierarchy of a scene",
		Long: `Draw the link hierarchy of a scene as a Graphviz diagram.

Links are diamonds, regions are boxes. Nested links hang below the region
that owns them. By default the scene is routed first so links without a
reachable fork are marked; --no-route skips routing.

The dot format writes Graphviz source; svg lays it out with the embedded
Graphviz engine.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateFormat(format, pipeline.FormatDOT, pipeline.FormatSVG); err != nil {
				return err
			}
			return c.runTree(cmd.Context(), args[0], format, output, detailed, !noRoute)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatDOT, "output format: dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout for dot, <scene>.tree.svg for svg)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "list props and fork positions in the labels")
	cmd.Flags().BoolVar(&noRoute, "no-route", false, "skip routing")

	return cmd
}

func (c *CLI) runTree(ctx context.Context, input, format, output string, detailed, routed bool) error {
	runner, err := c.newRunner(true)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts := c.Config.PipelineOptions()
	opts.ScenePath = input
	opts.Logger = c.Logger

	s, roots, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	if routed {
		field, _, err := runner.FieldWithCacheInfo(ctx, s, opts)
		if err != nil {
			return err
		}
		runner.Route(ctx, roots, field, opts)
	}

	dot := render.ToDOT(roots, render.DOTOptions{Detailed: detailed})
	data := []byte(dot)
	if format == pipeline.FormatSVG {
		if data, err = render.RenderDOTSVG(ctx, dot); err != nil {
			return fmt.Errorf("lay out tree: %w", err)
		}
		if output == "" {
			output = strings.TrimSuffix(input, filepath.Ext(input)) + ".tree.svg"
		}
	}

	if output == "" {
		_, err := io.WriteString(c.out, dot)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printSuccess(c.out, "Wrote link tree")
	printFile(c.out, output)
	return nil
}
