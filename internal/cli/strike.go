package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/stormbolt/pkg/errors"
	"github.com/matzehuels/stormbolt/pkg/pipeline"
)

// strikeOpts holds the command-line flags for the strike command.
type strikeOpts struct {
	width    int
	height   int
	seed     string // decimal or 0x hex; empty means random
	count    int
	formats  []string
	output   string // file path (single artifact) or base path
	scale    float64
	detailed bool
	noCache  bool
	refresh  bool
}

// strikeCommand creates the strike command.
func (c *CLI) strikeCommand() *cobra.Command {
	var formatsStr string
	opts := strikeOpts{
		width:  pipeline.DefaultWidth,
		height: pipeline.DefaultHeight,
		count:  1,
		scale:  pipeline.DefaultScale,
	}

	cmd := &cobra.Command{
		Use:   "strike",
		Short: "Generate strikes and write them to disk",
		Long: `Generate one or more lightning strikes.

With --seed the strike is reproducible and its artifacts are cached. With
--count N, seeds seed, seed+1, ... seed+N-1 are used; without --seed every
strike is random.`,
		Example: `  stormbolt strike --seed 42
  stormbolt strike --width 1920 --height 1080 --format png,json -o storm
  stormbolt strike --count 5 --seed 100 --scale 0.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), cfg, opts.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			rows, err := c.runStrike(cmd.Context(), runner, opts)
			if err != nil {
				return err
			}
			if len(rows) > 1 {
				fmt.Fprintln(c.Out, strikeTable(rows))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.width, "width", opts.width, "canvas width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", opts.height, "canvas height in pixels")
	cmd.Flags().StringVar(&opts.seed, "seed", "", "random seed (decimal or 0x hex); random when empty")
	cmd.Flags().IntVarP(&opts.count, "count", "n", opts.count, "number of strikes")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): png (default), json, dot, svg (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single strike and format) or base path")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor in (0, 4]")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label topology nodes with step and segment counts")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "regenerate cached strikes")

	return cmd
}

// runStrike executes every requested strike and writes its artifacts.
func (c *CLI) runStrike(ctx context.Context, runner *pipeline.Runner, opts strikeOpts) ([]strikeRow, error) {
	if opts.count < 1 {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "count must be at least 1, got %d", opts.count)
	}

	var base *uint64
	if opts.seed != "" {
		s, err := apperr.ParseSeed(opts.seed)
		if err != nil {
			return nil, err
		}
		base = &s
	}

	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	rows := make([]strikeRow, 0, opts.count)

	// Batches report progress on a spinner and list their files at the end;
	// the summary table replaces per-strike stats.
	var spin *Spinner
	var written []string
	if opts.count > 1 {
		spin = c.newSpinner(ctx, strikeProgress(1, opts.count))
		spin.Start()
		defer spin.Stop()
	}

	for i := range opts.count {
		if err := ctx.Err(); err != nil {
			return rows, err
		}
		if spin != nil {
			spin.SetMessage(strikeProgress(i+1, opts.count))
		}

		popts := pipeline.Options{
			Width:    opts.width,
			Height:   opts.height,
			Formats:  opts.formats,
			Scale:    opts.scale,
			Detailed: opts.detailed,
			Refresh:  opts.refresh,
			Logger:   logger,
		}
		if base != nil {
			s := *base + uint64(i)
			popts.Seed = &s
		}

		res, err := runner.Execute(ctx, popts)
		if err != nil {
			return rows, err
		}

		row, err := strikeRowFrom(res)
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)

		for _, format := range popts.Formats {
			path := artifactPath(opts, res.Seed, format)
			if err := writeArtifact(path, res.Artifacts[format]); err != nil {
				return rows, err
			}
			written = append(written, path)
		}

		if spin == nil {
			printSuccess("Strike %s", StyleNumber.Render(fmt.Sprint(res.Seed)))
			printStrikeStats(row.Segments, row.Branches, row.Shake, row.Cached)
		}
	}

	if spin != nil {
		spin.Stop()
	}
	for _, path := range written {
		printFile(path)
	}
	prog.done(fmt.Sprintf("Generated %d strike(s)", len(rows)))
	return rows, nil
}

func strikeProgress(n, total int) string {
	return fmt.Sprintf("Striking %d/%d...", n, total)
}

// strikeRowFrom builds a table row from a fresh or cached result.
func strikeRowFrom(res *pipeline.Result) (strikeRow, error) {
	row := strikeRow{Seed: res.Seed, Cached: res.CacheInfo.Hit}
	if !res.CacheInfo.Hit {
		resp := res.Response
		row.Segments = len(resp.Segments)
		row.Branches = len(resp.Branches)
		row.MaxWidth = resp.MaxWidth
		row.Shake = resp.ShakeIntensity
		row.Struck = resp.DidStrike
		return row, nil
	}
	// Cached runs carry no worker response; read the summary when present.
	data, ok := res.Artifacts[pipeline.FormatJSON]
	if !ok {
		return row, nil
	}
	var sum pipeline.Summary
	if err := json.Unmarshal(data, &sum); err != nil {
		return row, fmt.Errorf("read cached summary: %w", err)
	}
	row.Segments = len(sum.Segments)
	row.Branches = len(sum.Branches)
	row.MaxWidth = sum.MaxWidth
	row.Shake = sum.ShakeIntensity
	row.Struck = sum.DidStrike
	return row, nil
}

// artifactPath chooses the output file for one artifact.
// A single strike in a single format is written to --output verbatim.
func artifactPath(opts strikeOpts, seed uint64, format string) string {
	if opts.output != "" && opts.count == 1 && len(opts.formats) == 1 && filepath.Ext(opts.output) != "" {
		return opts.output
	}
	base := opts.output
	if base == "" {
		base = "strike"
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if opts.count > 1 || opts.seed != "" {
		base = fmt.Sprintf("%s-%d", base, seed)
	}
	return base + "." + format
}

func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
