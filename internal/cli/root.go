// Package cli implements the cobra-based CLI commands for ladderfit.
//
// Each subcommand (serve, cables, calc, routes, config) is defined in its own file
// within this package. This file defines the root command that serves as the
// parent for all subcommands and handles global flags.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/ladderfit/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	jsonOutput bool

	// verbose enables [verbose] trace lines on stderr and lowers the
	// default log level to debug.
	verbose bool

	// configPath is the optional YAML or JSONC configuration file.
	configPath string

	// catalogPath overrides catalog.path from the configuration.
	catalogPath string

	// logLevel overrides log.level from the configuration.
	logLevel string
)

// Version, Commit and Date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
//
// The root command itself does not perform any action. It only provides
// help text and global flags; the work is done by the subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ladderfit",
		Short: "Cable ladder width calculator",
		Long: `ladderfit serves a catalog of electrical cables and works out how wide a
cable ladder or tray must be to carry a chosen set of cables.

Cables can be laid flat side by side, bundled in trefoil groups of three, or
spaced with a gap after every cable. The required width is matched against
the standard manufactured ladder widths to recommend a ladder.`,

		// Errors are printed by Execute in text or JSON form, so cobra's own
		// usage and error output are silenced.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML or JSONC configuration file")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Path to the cable catalog CSV (overrides catalog.path)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides log.level)")

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewCablesCommand())
	rootCmd.AddCommand(NewCalcCommand())
	rootCmd.AddCommand(NewRoutesCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// CLIError values carry their own exit codes; other errors exit with 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		var cliErr *model.CLIError
		if errors.As(err, &cliErr) {
			printError(os.Stderr, cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(os.Stderr, err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError writes an error message to w in the appropriate format
// (JSON or text) based on the --json global flag. Execute passes stderr
// because stdout is reserved for command output.
func printError(w io.Writer, message string, underlying error) {
	if jsonOutput {
		detail := map[string]interface{}{
			"message": message,
		}
		if underlying != nil {
			detail["detail"] = underlying.Error()
		}
		data, _ := json.MarshalIndent(map[string]interface{}{"error": detail}, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	if underlying != nil {
		fmt.Fprintf(w, "Error: %s: %v\n", message, underlying)
	} else {
		fmt.Fprintf(w, "Error: %s\n", message)
	}
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}
