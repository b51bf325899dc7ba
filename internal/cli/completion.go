package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/pipeline"
	"github.com/matzehuels/forcegraph/pkg/sim"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for forcegraph.

Graph arguments of layout, render, watch and serve complete to *.json files.
--format and --seeding complete to their accepted values.

  $ source <(forcegraph completion bash)
  $ forcegraph completion zsh > "${fpath[1]}/_forcegraph"
  $ forcegraph completion fish > ~/.config/fish/completions/forcegraph.fish
  PS> forcegraph completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return nil
		},
	}

	return cmd
}

// registerCompletions attaches argument and flag completions to the
// subcommands of root.
func registerCompletions(root *cobra.Command) {
	for _, cmd := range root.Commands() {
		switch cmd.Name() {
		case "layout", "render", "watch", "serve":
			cmd.ValidArgsFunction = completeGraphFiles
			_ = cmd.RegisterFlagCompletionFunc("seeding", fixedValues(sim.SeedPhyllotaxis.String(), sim.SeedRandom.String()))
		case "config":
			for _, sub := range cmd.Commands() {
				_ = sub.RegisterFlagCompletionFunc("format", fixedValues("toml", "yaml"))
			}
		}
		if cmd.Name() == "render" {
			_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
		}
	}
}

// completeGraphFiles offers JSON files for the single graph argument.
func completeGraphFiles(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeFormats completes the last entry of a comma-separated format list.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix := ""
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix = toComplete[:i+1]
	}
	names := pipeline.FormatNames()
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, prefix+name)
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func fixedValues(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}
