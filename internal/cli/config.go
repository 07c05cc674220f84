// config.go implements the "ladderfit config" command, which
// prints the effective configuration after defaults, file and flags are
// merged.

package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewConfigCommand creates the "config" cobra command.
func NewConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration ladderfit would run with: built-in defaults,
overlaid by --config, then by --catalog and --log-level.

The output is YAML, or JSON with --json, and can be saved as a starting
configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(cmd.OutOrStdout())
		},
	}
}

func runConfig(out io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
