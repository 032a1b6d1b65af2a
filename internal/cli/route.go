package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/linkroute/pkg/errors"
	"github.com/matzehuels/linkroute/pkg/httputil"
	"github.com/matzehuels/linkroute/pkg/pipeline"
	"github.com/matzehuels/linkroute/pkg/route"
)

// routeFlags holds the route command's flags. Only flags the user set
// override the loaded config.
type routeFlags struct {
	formats     string
	output      string
	jobs        int
	noCache     bool
	refresh     bool
	labels      bool
	bundle      bool
	costOverlay bool
	transparent bool
	scale       float64
	strokeWidth float64
	cellSize    float64
	smooth      int
	inherit     string
}

// routeCommand creates the route command.
func (c *CLI) routeCommand() *cobra.Command {
	f := routeFlags{jobs: defaultJobs}

	cmd := &cobra.Command{
		Use:   "route [scene...]",
		Short: "Route the links of one or more scenes",
		Long: `Route the links of one or more scenes and write the results.

Each scene is a TOML, YAML or JSON document listing the viewport, optional
busy areas or cost image, and the links with their regions. Every link gets a
fork point and a path to each of its regions that avoids costly areas.

Outputs are written next to each scene as <scene>.<format> unless --output
names a directory, or a file when routing one scene to one format.

Cost fields and rendered outputs are cached locally.`,
		Example: `  linkroute route desktop.toml
  linkroute route -f svg,json --labels --bundle scenes/*.yaml -o out/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.routeOptions(cmd, f)
			if err != nil {
				return err
			}
			return c.runRoute(cmd.Context(), args, opts, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, json, dot (comma-separated)")
	fl.StringVarP(&f.output, "output", "o", "", "output directory, or output file for a single scene and format")
	fl.IntVarP(&f.jobs, "jobs", "j", f.jobs, "scenes routed in parallel")
	fl.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	fl.BoolVar(&f.refresh, "refresh", false, "recompute cached cost fields and outputs")

	fl.Float64Var(&f.cellSize, "cell-size", 0, "grid pitch in pixels (default from config)")
	fl.IntVar(&f.smooth, "smooth", 0, "smoothing iterations per path, negative disables")
	fl.StringVar(&f.inherit, "inherit", "", "nested fork placement: average, replace, none")
	fl.BoolVar(&f.bundle, "bundle", false, "bundle sibling paths")

	fl.BoolVar(&f.labels, "labels", false, "draw region labels")
	fl.BoolVar(&f.costOverlay, "cost-overlay", false, "draw the cost field under the links")
	fl.BoolVar(&f.transparent, "transparent", false, "transparent PNG background")
	fl.Float64Var(&f.scale, "scale", 0, "PNG scale factor")
	fl.Float64Var(&f.strokeWidth, "stroke-width", 0, "path stroke width")

	return cmd
}

// routeOptions merges the set flags into the configured pipeline options.
func (c *CLI) routeOptions(cmd *cobra.Command, f routeFlags) (pipeline.Options, error) {
	fl := cmd.Flags()
	opts := c.Config.PipelineOptions()
	opts.Formats = parseFormats(f.formats)
	opts.Refresh = f.refresh
	opts.Logger = c.Logger

	if f.jobs < 1 {
		return opts, errors.New(errors.ErrCodeInvalidInput, "--jobs must be at least 1")
	}
	if fl.Changed("cell-size") {
		opts.Route.CellSize = f.cellSize
	}
	if fl.Changed("smooth") {
		opts.Route.SmoothIterations = f.smooth
	}
	if fl.Changed("inherit") {
		opts.Route.Inherit = route.InheritMode(f.inherit)
	}
	if fl.Changed("bundle") {
		opts.Route.Bundle = f.bundle
	}
	if fl.Changed("labels") {
		opts.Render.Labels = f.labels
	}
	if fl.Changed("cost-overlay") {
		opts.Render.CostOverlay = f.costOverlay
	}
	if fl.Changed("transparent") {
		opts.Render.Transparent = f.transparent
	}
	if fl.Changed("scale") {
		opts.Render.Scale = f.scale
	}
	if fl.Changed("stroke-width") {
		opts.Render.StrokeWidth = f.strokeWidth
	}

	// Validate up front so a bad flag fails once, not once per scene.
	probe := opts
	probe.ScenePath = "-"
	if err := probe.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}

// sceneOutcome is the result of routing one scene.
type sceneOutcome struct {
	input string
	res   *pipeline.Result
	files []string
}

func (c *CLI) runRoute(ctx context.Context, inputs []string, opts pipeline.Options, f routeFlags) error {
	runner, err := c.newRunner(f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	single := len(inputs) == 1 && len(opts.Formats) == 1
	if f.output != "" && !(single && isOutputFile(f.output, opts.Formats[0])) {
		if err := os.MkdirAll(f.output, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	p := newProgress(c.Logger)
	spin := newSpinner(ctx, os.Stderr, fmt.Sprintf("Routing %d scene(s)...", len(inputs)))
	spin.Start()
	defer spin.Stop()

	outcomes := make([]sceneOutcome, len(inputs))
	var finished atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.jobs)
	for i, input := range inputs {
		g.Go(func() error {
			sceneOpts := opts
			sceneOpts.ScenePath = input
			res, err := runner.Execute(gctx, sceneOpts)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			files, err := writeArtifacts(res.Artifacts, opts.Formats, input, f.output, single)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			outcomes[i] = sceneOutcome{input: input, res: res, files: files}
			spin.Update("Routing scenes (%d/%d)...", finished.Add(1), len(inputs))
			return nil
		})
	}
	err = g.Wait()
	spin.Stop()
	if err != nil {
		if spin.Cancelled() {
			return ctx.Err()
		}
		printError(c.out, "Routing failed")
		return err
	}

	for _, o := range outcomes {
		printSuccess(c.out, "Routed %s", o.input)
		printStats(c.out, o.res.Stats.LinkCount, o.res.Stats.RegionCount, o.res.Routing.Stats.Unreachable, o.res.CacheInfo.RenderHit)
		for _, file := range o.files {
			printFile(c.out, file)
		}
		if o.res.Routing.Stats.Unreachable > 0 {
			printWarning(c.out, "%d region(s) could not be reached from their fork", o.res.Routing.Stats.Unreachable)
		}
	}
	p.done("routed scenes", "count", len(inputs))
	return nil
}

// isOutputFile reports whether output names a file of the given format
// rather than a directory.
func isOutputFile(output, format string) bool {
	return strings.EqualFold(strings.TrimPrefix(filepath.Ext(output), "."), format)
}

// outputPath returns where the artifact of format for input goes.
func outputPath(input, output, format string, single bool) string {
	if single && output != "" && isOutputFile(output, format) {
		return output
	}
	if httputil.IsURL(input) {
		// Remote scenes land in the working directory.
		if u, err := url.Parse(input); err == nil {
			input = path.Base(u.Path)
		}
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	dir := output
	if dir == "" {
		dir = filepath.Dir(input)
	}
	out := filepath.Join(dir, base+"."+format)
	if filepath.Clean(out) == filepath.Clean(input) {
		// A JSON scene routed to JSON must not overwrite itself.
		out = filepath.Join(dir, base+".routed."+format)
	}
	return out
}

// writeArtifacts writes every format's artifact and returns the paths in
// format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string, single bool) ([]string, error) {
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		p := outputPath(input, output, format, single)
		if err := os.WriteFile(p, artifacts[format], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}
