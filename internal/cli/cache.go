package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linkroute/pkg/cache"
)

// cacheCommand groups the subcommands that manage the local cache of cost
// fields and rendered outputs.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local cost field and artifact cache",
		Long: `Manage the local cache.

Decoded cost images and rendered outputs are kept under the cache directory
(cache_dir in the config, LINKROUTE_CACHE_DIR in the environment) so that
routing an unchanged scene again is instant.`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Remove all cached entries",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, args []string) error { return c.runCacheClear() },
		},
		&cobra.Command{
			Use:   "info",
			Short: "Show the cache directory, entry count and size",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, args []string) error { return c.runCacheInfo() },
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache directory",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := fmt.Fprintln(c.out, c.Config.CacheDir)
				return err
			},
		},
	)
	return cmd
}

func (c *CLI) openFileCache() (*cache.FileCache, error) {
	fc, err := cache.NewFileCache(c.Config.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return fc, nil
}

func (c *CLI) runCacheClear() error {
	fc, err := c.openFileCache()
	if err != nil {
		return err
	}
	n, err := fc.Clear()
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	if n == 0 {
		printInfo(c.out, "Cache is empty")
		return nil
	}
	printSuccess(c.out, "Cleared %d cached entries", n)
	printDetail(c.out, "Directory: %s", fc.Dir())
	return nil
}

func (c *CLI) runCacheInfo() error {
	fc, err := c.openFileCache()
	if err != nil {
		return err
	}
	n, size, err := fc.Stats()
	if err != nil {
		return fmt.Errorf("read cache: %w", err)
	}
	printKeyValue(c.out, "directory", fc.Dir())
	printKeyValue(c.out, "entries", strconv.Itoa(n))
	printKeyValue(c.out, "size", humanBytes(size))
	return nil
}
