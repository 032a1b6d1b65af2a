// Package cli implements the linkroute command-line interface.
//
// # Commands
//
// The main commands are:
//   - route: Route the links of one or more scenes and write SVG, PNG, JSON or DOT
//   - tree: Draw the link hierarchy of a scene with Graphviz
//   - serve: Run the HTTP preview server
//   - cache: Manage the local artifact cache
//   - version: Print build information
//
// # Configuration
//
// Settings come from the built-in defaults, a linkroute.toml (or .yaml,
// .json) config file and LINKROUTE_* environment variables; see
// package config. Command flags override all three.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Logs go to
// stderr; command output goes to stdout.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linkroute/pkg/buildinfo"
)

// versionCommand prints the build information.
func (c *CLI) versionCommand() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildinfo.Get()
			if short {
				fmt.Fprintln(c.out, info.Version)
				return nil
			}
			printKeyValue(c.out, "version", info.Version)
			printKeyValue(c.out, "commit", info.Commit)
			printKeyValue(c.out, "built", info.Date)
			printKeyValue(c.out, "go", info.GoVersion)
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print the version only")
	return cmd
}
