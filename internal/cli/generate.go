package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/glitchgen/pkg/effects"
)

const (
	defaultGenerateWidth  = 800
	defaultGenerateHeight = 600
)

func (c *CLI) generateCommand() *cobra.Command {
	var (
		output        string
		width, height int
		random        bool
	)

	cmd := &cobra.Command{
		Use:   "generate <generator>",
		Short: "Create a new image from a generator",
		Long: `Create a new image with one of the generator effects and export it.
With --random a random multiple run is applied on top.

Generators: ` + strings.Join(generatorNames(effects.Default()), ", "),
		Example: `  glitchgen generate plasma -o plasma.png
  glitchgen generate circles --width 1920 --height 1080 --random -o wall.jpg`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return generatorNames(effects.Default()), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			s, _, err := c.newSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			prog := newProgress(logger)
			if err := s.Generate(ctx, args[0], width, height); err != nil {
				return err
			}
			var chain []string
			if random {
				res, err := s.RandomMultiple(ctx)
				if err != nil {
					return err
				}
				chain = res.Names()
			}
			if err := s.Export(output); err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Generated %dx%d image", width, height))

			printSuccess("Generated %s", args[0])
			if random {
				printEffectChain(chain)
			}
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "generated.png", "output file (.png, .jpg, .jpeg)")
	cmd.Flags().IntVar(&width, "width", defaultGenerateWidth, "image width in pixels")
	cmd.Flags().IntVar(&height, "height", defaultGenerateHeight, "image height in pixels")
	cmd.Flags().BoolVar(&random, "random", false, "apply a random multiple run after generating")

	return cmd
}

// generatorNames returns the lowercase names of the catalog's generators.
func generatorNames(cat *effects.Catalog) []string {
	gens := cat.Generators()
	names := make([]string, len(gens))
	for i, e := range gens {
		names[i] = strings.ToLower(e.Name)
	}
	return names
}
