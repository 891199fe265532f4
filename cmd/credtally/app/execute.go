package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/credtally/credtally/internal/cmd/output"
	"github.com/credtally/credtally/pkg/errors"
)

// ErrDiscrepancies is returned by compare in strict mode when the
// report is not clean, so main exits non-zero.
var ErrDiscrepancies = errors.New("software_credits does not match the repository")

// Execute runs the credtally CLI application with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "credtally",
		Short:   "Third-party attribution auditing",
		Version: a.version,
		Long: `Credtally keeps a repository's software_credits attribution file honest.

It scans the repository for third-party components (declared dependencies,
vendored code, bundled assets), parses the software_credits file, and
reconciles the two inventories: what is used but not credited, credited but
no longer used, or credited at the wrong version.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default is $HOME/.credtally.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringP("format", "o", "", "output format: table, json, yaml")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("credtally {{.Version}}\n")

	rootCmd.AddCommand(a.NewScanCommand())
	rootCmd.AddCommand(a.NewCompareCommand())
	rootCmd.AddCommand(a.NewDraftCommand())
	rootCmd.AddCommand(a.NewAboutboxCommand())
	rootCmd.AddCommand(a.NewVersionCommand())

	return rootCmd
}

// setupCommand runs before any command and folds parsed flag values
// into the configuration, then reinitializes the logger.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	format := mustGetString(cmd, "format")
	logLevel := mustGetString(cmd, "log-level")

	parsed, err := output.ParseFormat(format)
	if err != nil {
		return err
	}

	a.config.UpdateFromFlags(verbose, quiet, noColor, string(parsed), logLevel)

	logger := NewLogger(a.config)
	a.logger = &logger

	return nil
}

// ExitOnError prints an error to stderr and exits with status 1. Meant
// for top-level error handling in main.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
