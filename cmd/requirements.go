package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/yeisme/smartrepo/pkg/project"
)

var (
	requirementsOptions project.RequirementsOptions

	createRequirementsCmd = &cobra.Command{
		Use:   "create-requirements",
		Short: "Write requirements.txt for the optional Python tools",
		Long: strings.TrimSpace(`
Write a requirements.txt listing the Python tools used by optional steps
(radon for --complexity, bandit for --security).

Examples:
  smartrepo create-requirements
  smartrepo create-requirements --path tools/requirements.txt --force`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return project.ExecuteCreateRequirementsCommand(requirementsOptions, cmd.OutOrStdout())
		},
		Aliases: []string{"requirements", "req"},
	}
)

func init() {
	rootCmd.AddCommand(createRequirementsCmd)

	createRequirementsCmd.Flags().StringVarP(&requirementsOptions.Path, "path", "p", "requirements.txt", "target file")
	createRequirementsCmd.Flags().BoolVarP(&requirementsOptions.Force, "force", "F", false, "overwrite an existing file")
}
