package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/yeisme/smartrepo/pkg/project"
)

var browseCmd = &cobra.Command{
	Use:   "browse [output_root]",
	Short: "Browse generated analyses in the terminal",
	Long: strings.TrimSpace(`
Open an interactive browser over the analysis directories found under
output_root (default ./smartrepo-analysis, or the current directory).

Keys:
  enter      open analysis / view file
  esc        back
  /          filter
  q          quit`),
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := project.BrowseOptions{}
		if len(args) > 0 {
			opts.Root = args[0]
		}
		return project.ExecuteBrowseCommand(opts, cmd.OutOrStdout())
	},
	Aliases: []string{"b", "view"},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
