package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stormbolt/pkg/buildinfo"
	"github.com/matzehuels/stormbolt/pkg/cache"
	"github.com/matzehuels/stormbolt/pkg/config"
	"github.com/matzehuels/stormbolt/pkg/pipeline"
	"github.com/matzehuels/stormbolt/pkg/worker"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "stormbolt"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives command output. Defaults to stdout.
	Out io.Writer
	// Err receives spinner progress. Defaults to stderr.
	Err io.Writer

	configPath string
	verbose    bool
	config     *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
		Err:    os.Stderr,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Stormbolt generates and renders procedural lightning strikes",
		Long:         `Stormbolt grows fractal lightning bolts, renders them with a glow and core pass, and reports a shake intensity for each strike. Strikes can be written to disk, served over HTTP or watched live in the terminal.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/stormbolt/config.toml)")

	// Register all subcommands
	root.AddCommand(c.strikeCommand())
	root.AddCommand(c.topologyCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config
// =============================================================================

// loadConfig reads the config file once per invocation.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.config != nil {
		return *c.config, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	c.config = &cfg
	return cfg, nil
}

// resolvedConfigPath returns the file loadConfig reads.
func (c *CLI) resolvedConfigPath() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	return config.DefaultPath()
}

// =============================================================================
// Runner Factory
// =============================================================================

// newWorker creates a worker from the generator and style sections.
func (c *CLI) newWorker(cfg config.Config) *worker.Worker {
	return worker.New(
		worker.WithParams(cfg.Generator),
		worker.WithStyle(cfg.Style),
		worker.WithLogger(c.Logger),
	)
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	// Redis applies the prefix itself; other backends scope through the keyer.
	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" && cfg.Cache.Backend != string(cache.BackendRedis) {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Cache.Prefix)
	}
	runner := pipeline.NewRunner(c.newWorker(cfg), store, keyer, c.Logger)
	if ttl := cfg.Cache.TTL.Duration; ttl > 0 {
		runner.TTL = ttl
	}
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil && cfg.Cache.Dir == "" && cfg.Cache.Backend == string(cache.BackendFile) {
		c.Logger.Warn("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, cfg.CacheOptions(dir))
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/stormbolt/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatPNG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
