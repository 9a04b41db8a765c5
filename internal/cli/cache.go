package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stormbolt/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cacheStatsCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var filter cache.Filter
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete cached artifacts (file backend)",
		Example: `  stormbolt cache clear
  stormbolt cache clear --format png --format svg
  stormbolt cache clear --expired`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, ok, err := c.openFileCache()
			if err != nil || !ok {
				return err
			}
			count, err := fc.Prune(filter)
			if err != nil {
				return err
			}
			if count == 0 {
				printInfo("Nothing to clear")
				return nil
			}
			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&filter.Formats, "format", nil, "only clear these artifact formats (png, json, dot, svg, strike)")
	cmd.Flags().BoolVar(&filter.ExpiredOnly, "expired", false, "only clear entries past their TTL")
	return cmd
}

// cacheStatsCommand creates the "cache stats" subcommand.
func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cached entries per artifact format (file backend)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, ok, err := c.openFileCache()
			if err != nil || !ok {
				return err
			}
			usage, err := fc.Usage()
			if err != nil {
				return err
			}
			if len(usage) == 0 {
				printInfo("Cache is empty")
				return nil
			}
			fmt.Fprintln(c.Out, usageTable(usage))
			return nil
		},
	}
}

// openFileCache opens the configured file cache. ok is false, with a warning
// printed, when another backend is configured.
func (c *CLI) openFileCache() (*cache.FileCache, bool, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, false, err
	}
	if backend := cache.Backend(cfg.Cache.Backend); backend != cache.BackendFile {
		printWarning("cache commands only manage the file backend (configured: %s)", backend)
		printDetail("Remote entries expire after %s", cfg.Cache.TTL)
		return nil, false, nil
	}
	dir, err := c.fileCacheDir()
	if err != nil {
		return nil, false, err
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, false, err
	}
	return fc, true, nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.fileCacheDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.Out, dir)
			return nil
		},
	}
}

// fileCacheDir returns the configured file cache directory.
func (c *CLI) fileCacheDir() (string, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return dir, nil
}
