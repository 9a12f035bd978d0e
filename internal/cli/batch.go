package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/glitchgen/pkg/batch"
	"github.com/matzehuels/glitchgen/pkg/errors"
	"github.com/matzehuels/glitchgen/pkg/imagebuf"
)

// rangeFlags binds --min/--max to an effect range.
type rangeFlags struct {
	min, max int
}

func (r *rangeFlags) register(cmd *cobra.Command, what string) {
	cmd.Flags().IntVar(&r.min, "min", 0, "minimum effects per "+what+" (inclusive; config value if 0)")
	cmd.Flags().IntVar(&r.max, "max", 0, "maximum effects per "+what+" (exclusive; config value if 0)")
}

// apply overrides the bounds of def that were set on the command line.
func (r rangeFlags) apply(def batch.EffectRange) batch.EffectRange {
	if r.min != 0 {
		def.Min = r.min
	}
	if r.max != 0 {
		def.Max = r.max
	}
	return def
}

// spinnerProgress reports batch progress through sp.
func spinnerProgress(sp *Spinner, verb string) batch.Progress {
	return func(index, total int) {
		sp.SetMessage("%s %d of %d", verb, index+1, total)
	}
}

// =============================================================================
// variations
// =============================================================================

func (c *CLI) variationsCommand() *cobra.Command {
	var (
		output    string
		count     int
		rng       rangeFlags
		collage   string
		noCollage bool
	)

	cmd := &cobra.Command{
		Use:   "variations <input>",
		Short: "Write a batch of random variations and a collage",
		Long: `Generate independent random variations of one image. Each variation starts
from the original, gets a random number of effects (compression excluded) and is
written as NN.png. The results are tiled into Collage.png.`,
		Example: `  glitchgen variations photo.jpg
  glitchgen variations photo.jpg -n 20 --min 2 --max 6 -o out/ --collage clip`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			s, cfg, err := c.newSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			if err := s.Load(ctx, args[0]); err != nil {
				return err
			}

			opts := cfg.VariationOptions()
			if count != 0 {
				opts.Count = count
			}
			opts.Range = rng.apply(opts.Range)
			if collage != "" {
				if opts.Collage, err = batch.ParseCollagePolicy(collage); err != nil {
					return err
				}
			}
			opts.OutputDir = output
			opts.NoCollage = noCollage

			sp := newSpinnerWithContext(ctx, "Creating images...")
			opts.Progress = spinnerProgress(sp, "Creating image")
			sp.Start()
			prog := newProgress(logger)
			res, err := s.Variations(ctx, opts)
			if res != nil {
				defer res.Release()
			}
			if err != nil {
				sp.StopWithError("Variations failed")
				return err
			}
			sp.Stop()
			prog.done(fmt.Sprintf("Wrote %d variations", len(res.Variations)-res.Failed()))

			printVariationResult(res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (default: a new temp directory)")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of variations (config value if 0)")
	rng.register(cmd, "variation")
	cmd.Flags().StringVar(&collage, "collage", "", "collage policy for mismatched sizes: letterbox, clip or reject")
	cmd.Flags().BoolVar(&noCollage, "no-collage", false, "skip "+batch.CollageFile)

	return cmd
}

func printVariationResult(res *batch.VariationResult) {
	if failed := res.Failed(); failed > 0 {
		printWarning("%d of %d variations failed", failed, len(res.Variations))
	} else {
		printSuccess("Created %d variations", len(res.Variations))
	}
	printKeyValue("Directory", res.Dir)
	for _, v := range res.Variations {
		if v.Err != nil {
			printError("%s: %s", batch.VariationFile(v.Index), errors.UserMessage(v.Err))
			continue
		}
		printDetail("%s  %s", filepath.Base(v.Path), strings.Join(v.Effects, ", "))
	}
	switch {
	case res.CollagePath != "":
		printFile(res.CollagePath)
	case res.CollageErr != nil:
		printWarning("collage: %s", errors.UserMessage(res.CollageErr))
	}
}

// =============================================================================
// folder
// =============================================================================

func (c *CLI) folderCommand() *cobra.Command {
	var (
		output string
		rng    rangeFlags
	)

	cmd := &cobra.Command{
		Use:   "folder <files...>",
		Short: "Glitch many images into a timestamped directory",
		Long: `Apply one random run (compression excluded) to every input and save each as
<name>.png in "Glitched <date time>" next to the first input. Files that fail
are reported and skipped; the command only fails if every file failed.`,
		Example: `  glitchgen folder shots/*.jpg
  glitchgen folder a.png b.png --min 1 --max 3 -o out/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFolder(cmd.Context(), args, output, rng)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (default: \"Glitched <timestamp>\" next to the first input)")
	rng.register(cmd, "file")

	return cmd
}

func (c *CLI) runFolder(ctx context.Context, args []string, output string, rng rangeFlags) error {
	logger := loggerFromContext(ctx)

	paths := make([]string, 0, len(args))
	for _, p := range args {
		if !imagebuf.IsInputPath(p) {
			logger.Warn("skipping non-image file", "path", p)
			continue
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no image files among %d arguments", len(args))
	}

	s, cfg, err := c.newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	opts := cfg.FolderOptions()
	opts.Range = rng.apply(opts.Range)
	opts.OutputDir = output

	sp := newSpinnerWithContext(ctx, "Processing...")
	opts.Progress = spinnerProgress(sp, "Processing")
	sp.Start()
	prog := newProgress(logger)
	res, err := s.ProcessFolder(ctx, paths, opts)
	if err != nil {
		sp.StopWithError("Folder batch failed")
		return err
	}
	sp.Stop()
	prog.done(fmt.Sprintf("Processed %d files", len(res.Files)))

	printFolderResult(res)
	if res.Succeeded() == 0 {
		return errors.New(errors.ErrCodeSourceSave, "all %d files failed", len(res.Files))
	}
	return nil
}

func printFolderResult(res *batch.FolderResult) {
	rows := make([][]string, 0, len(res.Files))
	for _, f := range res.Files {
		status, detail := StyleSuccess.Render(iconSuccess), strings.Join(f.Effects, ", ")
		if f.Err != nil {
			status, detail = styleIconError.Render(iconError), errors.UserMessage(f.Err)
		}
		rows = append(rows, []string{status, filepath.Base(f.Input), detail})
	}
	fmt.Println(newTable("", "Input", "Effects").Rows(rows...).Render())

	if failed := res.Failed(); failed > 0 {
		printWarning("%d of %d files failed", failed, len(res.Files))
	} else {
		printSuccess("Glitched %d files", len(res.Files))
	}
	printFile(res.Dir)
}
