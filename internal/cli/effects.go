package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/glitchgen/pkg/effects"
	"github.com/matzehuels/glitchgen/pkg/errors"
)

func (c *CLI) effectsCommand() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "effects",
		Short: "List the effect catalog",
		Long: `List every effect by category. Effects tagged "compression" are skipped by
random runs unless compression is allowed; effects tagged "corruption" are
skipped in safe mode. Names are case-insensitive and may be given either as
"Name" or "Category/Name".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := effects.Default()
			list := cat.All()
			if category != "" {
				list = cat.ByCategory(category)
				if len(list) == 0 {
					return errors.New(errors.ErrCodeInvalidInput, "unknown category %q (have %v)", category, cat.Categories())
				}
			}
			fmt.Println(renderEffectTable(list))
			printDetail("%d effects in %d categories", len(list), countCategories(list))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "only list one category")
	_ = cmd.RegisterFlagCompletionFunc("category", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return effects.Default().Categories(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func countCategories(list []effects.Effect) int {
	seen := make(map[string]bool)
	for _, e := range list {
		seen[e.Category] = true
	}
	return len(seen)
}
