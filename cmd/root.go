// Package cmd provides the command-line interface of smartrepo
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	gctx "github.com/yeisme/smartrepo/pkg/context"
	"github.com/yeisme/smartrepo/pkg/project"
	log2 "github.com/yeisme/smartrepo/pkg/utils/log"
	"github.com/yeisme/smartrepo/pkg/utils/version"
)

var (
	smartCtx *gctx.SmartRepoContext
	log      log2.Logger

	// Global flags
	globalFlags       gctx.GlobalFlags
	versionEnableFlag bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "smartrepo",
	Short: "smartrepo analyzes a project and generates documentation for humans and AI",
	Long: strings.TrimSpace(`
smartrepo scans a local project directory, detects its language and framework,
collects lightweight code metrics and writes an enhanced README, a mermaid
architecture diagram, a JSON summary and an AI-ready prompt digest.`),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionEnableFlag {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Short())
			return err
		}
		return cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		ctx, err := gctx.InitSmartRepoContext(globalFlags, verbose)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if parent := cmd.Context(); parent != nil {
			ctx = ctx.WithContext(parent)
		}
		smartCtx = ctx
		log = ctx.Logger

		log.Debug().Msgf("Execute Command: %s %s", "smartrepo", strings.Join(os.Args[1:], " "))
		return nil
	},
}

// Execute runs the root command. Errors print "Error: <msg>" and exit with code 1.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func execute(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
			printError(os.Stderr, err, debug.Stack())
		}
	}()
	if err = rootCmd.ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err, nil)
	}
	return err
}

// printError prints the message, and with --verbose or --debug the error chain and a stack trace.
func printError(w io.Writer, err error, stack []byte) {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	if !detailedErrors() {
		return
	}
	_, _ = fmt.Fprintln(w, "\nError chain:")
	for _, line := range project.ErrorChain(err) {
		_, _ = fmt.Fprintf(w, "  %s\n", line)
	}
	if stack == nil {
		stack = debug.Stack()
	}
	_, _ = fmt.Fprintf(w, "\nStack:\n%s", stack)
}

func detailedErrors() bool {
	return analyzeOptions.Verbose || globalFlags.Debug
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigPath, "config", "c", "", "config file")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.Debug, "debug", false, "enable debug mode (prints additional information)")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.Quiet, "quiet", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.LogJSON, "log-json", false, "write logs as JSON")
	rootCmd.Flags().BoolVarP(&versionEnableFlag, "version", "v", false, "show version information")
}
