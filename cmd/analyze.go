package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/yeisme/smartrepo/pkg/project"
)

var (
	analyzeOptions project.AnalyzeOptions

	analyzeCmd = &cobra.Command{
		Use:   "analyze [project_path]",
		Short: "Analyze a project and generate documentation",
		Long: strings.TrimSpace(`
Analyze a project directory and write the generated documents into
<project_path>/smartrepo-analysis (or --output):

  readme-enhanced.md   enhanced README
  architecture.mmd     mermaid architecture diagram
  ai-summary.json      machine-readable summary
  prompt-ready.md      chunked digest ready to paste into an LLM

Examples:
  # 1. Analyze the current directory
  smartrepo analyze .

  # 2. Custom output directory with detailed logs
  smartrepo analyze ./myproject -o ./docs/analysis -v

  # 3. Compute cyclomatic complexity and maintainability (radon for Python files)
  smartrepo analyze ./myproject --complexity

  # 4. Lint with pylint, flake8 and eslint; coverage.xml is picked up when present
  smartrepo analyze ./myproject --lint

  # 5. Security scan with bandit and AI file summaries
  smartrepo analyze ./myproject --security --ai-key $GEMINI_KEY

  # 6. Analyze every subproject of a monorepo, or only the matching ones
  smartrepo analyze ./platform --monorepo
  smartrepo analyze ./platform --monorepo --only api

  # 7. Print the summary as JSON
  smartrepo analyze . --json

  # 8. Re-run on every change
  smartrepo analyze . --watch

Notes:
  - Missing optional tools (radon, bandit, pylint, flake8, eslint, mmdc) only
    skip the matching step;
    run 'smartrepo tools check' to see what is installed.
  - Files that cannot be read are skipped, use -v to see them.
  - Failing to write the output directory aborts the command.`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return project.ExecuteAnalyzeCommand(smartCtx, analyzeOptions, args, cmd.OutOrStdout())
		},
		Aliases: []string{"a", "scan"},
	}
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	f := analyzeCmd.Flags()
	f.StringVarP(&analyzeOptions.Output, "output", "o", "", "output directory (default <project_path>/smartrepo-analysis)")
	f.BoolVarP(&analyzeOptions.Verbose, "verbose", "v", false, "verbose logging, print skipped files and error details")
	f.BoolVar(&analyzeOptions.Complexity, "complexity", false, "compute cyclomatic complexity")
	f.BoolVar(&analyzeOptions.Security, "security", false, "scan Python files with bandit")
	f.BoolVar(&analyzeOptions.Lint, "lint", false, "run pylint, flake8 and eslint on matching files")
	f.StringVar(&analyzeOptions.AIKey, "ai-key", "", "Gemini API key for AI file summaries (or SMARTREPO_AI_KEY)")
	f.BoolVar(&analyzeOptions.Monorepo, "monorepo", false, "analyze each subproject separately")
	f.StringVar(&analyzeOptions.Only, "only", "", "with --monorepo, only analyze subprojects matching the query")
	f.BoolVar(&analyzeOptions.Pick, "pick", false, "with --monorepo, pick one subproject interactively")
	f.BoolVar(&analyzeOptions.HTML, "html", false, "also export readme-enhanced.html")
	f.BoolVar(&analyzeOptions.JSON, "json", false, "print the summary as JSON")
	f.BoolVar(&analyzeOptions.Preview, "preview", false, "render the generated README in the terminal")
	f.BoolVarP(&analyzeOptions.Watch, "watch", "w", false, "re-run the analysis when files change")
	f.BoolVar(&analyzeOptions.NoProgress, "no-progress", false, "disable the progress bar")
}
