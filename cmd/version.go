package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yeisme/smartrepo/pkg/style"
	"github.com/yeisme/smartrepo/pkg/utils/version"
)

var (
	// Version command flags
	versionDetailed bool
	versionJSON     bool
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `
Display version information for smartrepo.

Examples:
  # Show short version info (default)
  smartrepo version

  # Show detailed version info
  smartrepo version --detailed

  # Show version info in JSON format
  smartrepo version --json

Notes:
  - The analyzer version is also written into ai-summary.json as analyzer_version.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		switch {
		case versionJSON:
			return style.PrintJSON(out, version.Get())
		case versionDetailed:
			_, err := fmt.Fprintln(out, version.Long())
			return err
		default:
			_, err := fmt.Fprintln(out, version.Short())
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolVarP(&versionDetailed, "detailed", "d", false, "show detailed version information")
	versionCmd.Flags().BoolVarP(&versionJSON, "json", "j", false, "output version information in JSON format")
}
