package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stitchgrid/pkg/errors"
	"github.com/matzehuels/stitchgrid/pkg/pipeline"
)

// generateFlags holds command-line flags that are not pipeline options.
type generateFlags struct {
	formats string
	output  string
	noCache bool
	watch   bool
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var flags generateFlags
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "generate [image]",
		Short: "Generate a cross-stitch pattern from an image",
		Long: `Generate a cross-stitch pattern from an image.

The image is resized to width x height units of --per-unit stitches each,
reduced to --colors representative colors, and every color is mapped to the
nearest thread of the catalog (embedded DMC by default).

Output formats:
  png   pixel art, one block per stitch
  ids   chart with the thread ID printed in every stitch
  svg   vector chart with the color key
  pdf   printable chart with labels and the color key (needs rsvg-convert)
  key   legend of the threads used, ordered by hue
  json  grid and thread assignments for other tools

With --watch the pattern is regenerated whenever the image or the catalog
file changes. Results are cached locally for faster subsequent runs.`,
		Example: `  stitchgrid generate photo.jpg
  stitchgrid generate photo.jpg -f png,ids,key --colors 32
  stitchgrid generate photo.jpg -f pdf -o pattern.pdf --width 6 --height 8
  stitchgrid generate photo.jpg --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(flags.formats)
			applyConfig(cmd, c.Config.Generate, &opts)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			opts.Logger = c.Logger

			runner, err := c.newRunner(flags.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			if flags.watch {
				return c.runWatch(cmd.Context(), runner, args[0], opts, flags.output)
			}
			if _, err := c.runGenerate(cmd.Context(), runner, args[0], opts, flags.output); err != nil {
				return err
			}
			printNextStep("Explore it interactively", "stitchgrid view "+args[0])
			return nil
		},
	}

	// Output flags
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): png (default), ids, svg, pdf, key, json (comma-separated)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "regenerate when the image or catalog changes")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results")

	// Generation flags
	addGenerationFlags(cmd, &opts)

	// Render flags
	cmd.Flags().IntVar(&opts.PixelScale, "pixel-scale", 0, "pixel art size of one stitch in pixels (default 4)")
	cmd.Flags().IntVar(&opts.CellSize, "cell-size", 0, "thread-ID chart size of one stitch in pixels (default 64)")
	cmd.Flags().BoolVar(&opts.GridLines, "grid-lines", false, "draw stitch borders on the thread-ID chart")
	cmd.Flags().BoolVar(&opts.Labels, "labels", false, "print thread IDs in SVG cells")

	return cmd
}

// addGenerationFlags registers the flags shared by generate and view.
func addGenerationFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().IntVar(&opts.Width, "width", pipeline.DefaultUnits,
		fmt.Sprintf("pattern width in units (%d-%d)", pipeline.MinUnits, pipeline.MaxUnits))
	cmd.Flags().IntVar(&opts.Height, "height", pipeline.DefaultUnits,
		fmt.Sprintf("pattern height in units (%d-%d)", pipeline.MinUnits, pipeline.MaxUnits))
	cmd.Flags().IntVar(&opts.PerUnit, "per-unit", pipeline.DefaultPerUnit,
		fmt.Sprintf("stitches per unit (%d-%d)", pipeline.MinPerUnit, pipeline.MaxPerUnit))
	cmd.Flags().IntVarP(&opts.Colors, "colors", "c", pipeline.DefaultColors,
		fmt.Sprintf("number of colors (%d-%d)", pipeline.MinColors, pipeline.MaxColors))
	cmd.Flags().StringVar(&opts.Filter, "filter", "lanczos", "resample filter: lanczos, catmullrom, bilinear, nearest")
	cmd.Flags().StringVar(&opts.Metric, "metric", "rgb", "color distance: rgb, ciede2000")
	cmd.Flags().StringVar(&opts.Clusterer, "clusterer", pipeline.DefaultClusterer, "quantizer: minibatch (deterministic), lloyd")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", pipeline.DefaultSeed, "random seed for the minibatch quantizer")
	cmd.Flags().StringVar(&opts.CatalogPath, "catalog", "", "thread catalog CSV (id,name,r,g,b); embedded DMC by default")
}

// runGenerate executes the pipeline for one image and writes the artifacts.
func (c *CLI) runGenerate(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options, output string) (*pipeline.Result, error) {
	data, err := readImage(input)
	if err != nil {
		return nil, err
	}
	opts.Image = data
	opts.ImageName = filepath.Base(input)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Generating %s...", opts.String()))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Generation failed")
		return nil, err
	}
	spinner.Stop()

	paths, err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
	})
	if err != nil {
		return nil, err
	}

	g := result.Generation.Grid
	printSuccess("Generated pattern %s", StyleNumber.Render(result.ID()))
	printPatternStats(g.Width, g.Height, result.Stats.Threads, result.CacheInfo.GenerateHit)
	for _, p := range paths {
		printFile(p)
	}
	return result, nil
}

// readImage reads an input image file.
func readImage(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "image %s", path)
		}
		return nil, fmt.Errorf("read image: %w", err)
	}
	return data, nil
}

// PrintError prints a failed command's error with its user-facing message.
func PrintError(err error) {
	printError("%s", displayError(err))
}

// displayError formats an error for terminal output.
func displayError(err error) string {
	msg := errors.UserMessage(err)
	if code := errors.GetCode(err); code != "" && errors.IsDefect(err) {
		msg += " (" + strings.ToLower(string(code)) + ")"
	}
	return msg
}
