package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/stormbolt/pkg/errors"
	"github.com/matzehuels/stormbolt/pkg/pipeline"
)

// topologyCommand creates the topology command, which exports the branch
// spawn tree of one strike.
func (c *CLI) topologyCommand() *cobra.Command {
	var (
		width, height int
		seedStr       string
		format        string
		output        string
		detailed      bool
	)

	cmd := &cobra.Command{
		Use:   "topology",
		Short: "Export the branch spawn tree of a strike as SVG or DOT",
		Example: `  stormbolt topology --seed 42 > tree.svg
  stormbolt topology --seed 42 --format dot --detailed -o tree.dot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != pipeline.FormatSVG && format != pipeline.FormatDOT {
				return apperr.New(apperr.ErrCodeInvalidFormat, "topology format must be svg or dot, got %q", format)
			}
			opts := pipeline.Options{
				Width:    width,
				Height:   height,
				Formats:  []string{format},
				Detailed: detailed,
			}
			if seedStr != "" {
				s, err := apperr.ParseSeed(seedStr)
				if err != nil {
					return err
				}
				opts.Seed = &s
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			spinner := c.newSpinner(cmd.Context(), "Rendering topology...")
			spinner.Start()
			res, err := runner.Execute(cmd.Context(), opts)
			if err != nil {
				spinner.StopWithError("Topology failed")
				return err
			}
			spinner.Stop()
			data := res.Artifacts[format]
			if output == "" {
				_, err := c.Out.Write(data)
				return err
			}
			if err := writeArtifact(output, data); err != nil {
				return err
			}
			printSuccess("Topology for seed %s", StyleNumber.Render(fmt.Sprint(res.Seed)))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", pipeline.DefaultWidth, "canvas width in pixels")
	cmd.Flags().IntVar(&height, "height", pipeline.DefaultHeight, "canvas height in pixels")
	cmd.Flags().StringVar(&seedStr, "seed", "", "random seed (decimal or 0x hex); random when empty")
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatSVG, "output format: svg or dot")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label nodes with step and segment counts")

	return cmd
}
