package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yeisme/smartrepo/pkg/configs"
	"github.com/yeisme/smartrepo/pkg/utils/schema"
)

var (
	noColor bool

	configCmd = &cobra.Command{
		Use:     "config",
		Short:   "Manage smartrepo configuration",
		Long:    `smartrepo config allows you to view, validate and create smartrepo configuration files.`,
		Aliases: []string{"c"},
	}

	configValidateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Validate smartrepo configuration",
		Long:  `smartrepo config validate checks that the configuration file can be read and decoded.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fileUsed := smartCtx.Viper.ConfigFileUsed()
			if fileUsed == "" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No config file found, using defaults")
				return err
			}
			if err := smartCtx.Viper.ReadInConfig(); err != nil {
				return fmt.Errorf("config file %s: %w", fileUsed, err)
			}
			var cfg configs.Config
			if err := smartCtx.Viper.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("config file %s: %w", fileUsed, err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Config file is valid: %s\n", fileUsed)
			return err
		},
		Aliases: []string{"check", "verify"},
	}

	configListCmd = &cobra.Command{
		Use:   "list [section]",
		Short: "List smartrepo configuration",
		Long: `smartrepo config list displays the current configuration settings.

You can specify a section to display only that part of the configuration:
  - app: Application settings
  - log: Logging settings
  - analyze: Walker, metrics and generator settings
  - tools: External tool binaries and install hints
  - ai: AI summary settings

Examples:
  smartrepo config list                    # Show all configuration (viper raw data)
  smartrepo config list --all              # Show all configuration with defaults
  smartrepo config list analyze            # Show only analyze settings
  smartrepo config list --format yaml      # Output in YAML format
  smartrepo config list --json             # Output in JSON format
  smartrepo config list tools --all --json # Show tools config with defaults in JSON`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			section := ""
			if len(args) > 0 {
				section = args[0]
			}
			format := configs.GetOutputFormatFromFlags(cmd)
			showAll, _ := cmd.Flags().GetBool("all")

			data, err := configs.GetConfigSection(smartCtx.Viper, section, showAll)
			if err != nil {
				return fmt.Errorf("get config section: %w", err)
			}
			return configs.OutputData(data, format, cmd.OutOrStdout(), !noColor)
		},
		Aliases: []string{"ls"},
	}

	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize smartrepo configuration",
		Long: `smartrepo config init creates a new configuration file with default settings.

Examples:
  smartrepo config init                                  # Create .smartrepo.yaml in current directory
  smartrepo config init --path ~/.config/smartrepo/smartrepo.yaml
  smartrepo config init --format toml                    # Create TOML format config`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("path")
			formatStr, _ := cmd.Flags().GetString("format")

			format, err := configs.ParseOutputFormat(formatStr)
			if err != nil {
				return err
			}
			if format == configs.FormatText {
				return fmt.Errorf("text format is not supported for config files")
			}
			if path == "" {
				path = ".smartrepo." + string(format)
			}
			if err := configs.CreateDefaultConfig(path, format); err != nil {
				return fmt.Errorf("create config file: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Config file created successfully: %s\n", path)
			return err
		},
		Args: cobra.NoArgs,
	}

	configSchemaCmd = &cobra.Command{
		Use:   "schema [config|summary]",
		Short: "Print a JSON schema",
		Long: `smartrepo config schema prints the JSON schema of the configuration file (default)
or of the generated ai-summary.json.

Examples:
  smartrepo config schema > smartrepo.schema.json
  smartrepo config schema summary`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"config", "summary"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := "config"
			if len(args) > 0 {
				kind = strings.ToLower(args[0])
			}
			switch kind {
			case "config":
				return schema.GenConfigSchema(cmd.OutOrStdout())
			case "summary":
				return schema.GenSummarySchema(cmd.OutOrStdout())
			default:
				return fmt.Errorf("unknown schema %q, expected config or summary", kind)
			}
		},
	}
)

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(
		configListCmd,
		configValidateCmd,
		configInitCmd,
		configSchemaCmd,
	)

	configListCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color output")
	configListCmd.Flags().StringP("format", "f", "", fmt.Sprintf("Output format (%s)", strings.Join(configs.ValidFormats(), ", ")))
	configListCmd.Flags().Bool("yaml", false, "Output in YAML format")
	configListCmd.Flags().Bool("json", false, "Output in JSON format")
	configListCmd.Flags().Bool("toml", false, "Output in TOML format")
	configListCmd.Flags().Bool("text", false, "Output in plain text format")
	configListCmd.Flags().BoolP("all", "a", false, "Show complete configuration with defaults (processed struct)")

	configInitCmd.Flags().StringP("path", "p", "", "Path to the config file")
	configInitCmd.Flags().StringP("format", "f", "yaml", "Format of the config file (yaml, json, toml)")
}
