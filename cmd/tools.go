package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	toolsPkg "github.com/yeisme/smartrepo/pkg/tools"
)

var (
	toolsFormat string

	toolsCmd = &cobra.Command{
		Use:     "tools",
		Short:   "Inspect the external tools used by optional analysis steps",
		Long:    `smartrepo tools shows which optional tools (radon, bandit, mermaid-cli) are installed and how to install the missing ones.`,
		Aliases: []string{"tool", "t"},
	}

	toolsCheckCmd = &cobra.Command{
		Use:   "check",
		Short: "Check which external tools are available",
		Example: strings.TrimSpace(`
  smartrepo tools check
  smartrepo tools check --format json
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := toolsPkg.Check(toolsPkg.Known(smartCtx.Config.Tools))
			for _, s := range st {
				if !s.Available {
					log.Debug().Str("tool", s.Name).Str("install", s.Install).Msg("tool not found")
				}
			}
			return toolsPkg.PrintStatuses(st, toolsFormat, cmd.OutOrStdout())
		},
		Aliases: []string{"ls", "list"},
	}

	toolsSearchCmd = &cobra.Command{
		Use:   "search [query]",
		Short: "Fuzzy search the known tools",
		Long:  `smartrepo tools search matches the query against tool names; without a query an interactive finder is opened.`,
		Example: strings.TrimSpace(`
  smartrepo tools search rad
  smartrepo tools search
`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := toolsPkg.SearchCommandOptions{Format: toolsFormat}
			if len(args) > 0 {
				opts.Query = args[0]
			}
			return toolsPkg.ExecuteSearchCommand(toolsPkg.Known(smartCtx.Config.Tools), opts, cmd.OutOrStdout())
		},
		Aliases: []string{"find", "s"},
	}
)

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.AddCommand(toolsCheckCmd, toolsSearchCmd)

	toolsCmd.PersistentFlags().StringVarP(&toolsFormat, "format", "f", "table", "Output format (table, json, yaml)")
}
