package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linkroute/pkg/cache"
	"github.com/matzehuels/linkroute/pkg/pipeline"
	"github.com/matzehuels/linkroute/pkg/server"
)

// serveCommand creates the serve command for the HTTP preview server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve routing previews over HTTP",
		Long: `Serve routing previews over HTTP.

POST a scene to /route and receive the rendered result:

  curl --data-binary @scene.json -H 'Content-Type: application/json' \
      'http://127.0.0.1:8080/route?format=svg&labels=true'

The server stops gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.Config.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, noCache bool) error {
	cc, err := c.newCache(noCache)
	if err != nil {
		return err
	}
	// Preview entries live beside CLI entries under their own key prefix.
	runner := pipeline.NewRunner(cc, cache.NewScopedKeyer(cache.NewDefaultKeyer(), "preview:"), c.Logger)
	defer runner.Close()

	srv := server.New(c.Config.Server, runner, c.Config.PipelineOptions(), c.Logger)
	if err := srv.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	c.Logger.Info("server stopped")
	return nil
}
