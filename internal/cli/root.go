package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/glitchgen/pkg/buildinfo"
	"github.com/matzehuels/glitchgen/pkg/config"
	"github.com/matzehuels/glitchgen/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "glitchgen applies randomized glitch effects to images",
		Long: `glitchgen is a glitch art engine. It applies corruption, compression, noise,
color and geometric effects to images, one at a time or as random runs, keeps
an undoable history of every step and can produce whole batches of variations.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			hooks := newLogHooks(c.Logger)
			observability.SetPipelineHooks(hooks)
			observability.SetHistoryHooks(hooks)
			observability.SetBatchHooks(hooks)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/glitchgen/config.toml)")
	flags.Uint64Var(&c.seed, "seed", 0, "random seed (0 uses the config value or the clock)")
	flags.StringVar(&c.backend, "history", "", "history backend: "+config.BackendFile+", "+config.BackendMemory+" or "+config.BackendRedis)

	root.AddCommand(c.applyCommand())
	root.AddCommand(c.variationsCommand())
	root.AddCommand(c.folderCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.effectsCommand())
	root.AddCommand(c.studioCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}
