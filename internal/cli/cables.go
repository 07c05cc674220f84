// cables.go implements the "ladderfit cables" command.
//
// The cables command prints the loaded catalog as a text table or, with
// --json, as the same record objects served by GET /api/cables.

package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/ladderfit/internal/model"
)

// cablesFlags holds the flag values for the cables command.
type cablesFlags struct {
	// cableType filters records by cable_type, case-insensitively.
	cableType string
}

// NewCablesCommand creates the "cables" cobra command.
func NewCablesCommand() *cobra.Command {
	flags := &cablesFlags{}

	cmd := &cobra.Command{
		Use:   "cables",
		Short: "List the cable catalog",
		Long: `List every cable in the catalog with its display name, type and the
dimensions used for sizing.

Examples:
  ladderfit cables
  ladderfit cables --type power
  ladderfit cables --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCables(cmd.OutOrStdout(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.cableType, "type", "", "Only show cables of this cable_type")

	return cmd
}

func runCables(out io.Writer, flags *cablesFlags) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	cables := rt.catalog.Filter(flags.cableType)
	VerboseLog("%d of %d cables match type %q", len(cables), rt.catalog.Len(), flags.cableType)

	if IsJSONOutput() {
		return printCablesJSON(out, cables)
	}
	printCablesText(out, cables)
	return nil
}

// printCablesJSON writes {"cables": [...]} with an empty array, not null,
// when nothing matches.
func printCablesJSON(out io.Writer, cables []model.Cable) error {
	result := struct {
		Cables []model.Cable `json:"cables"`
	}{Cables: make([]model.Cable, 0, len(cables))}
	result.Cables = append(result.Cables, cables...)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))
	return nil
}

// printCablesText writes the catalog as an aligned table:
//
//	ID   NAME                     TYPE       CORES  SIZE(mm²)  DIAM(mm)  WEIGHT(kg/m)
//	1    Olex 1C 16mm²            Power      1      16         9.3       1
func printCablesText(out io.Writer, cables []model.Cable) {
	if len(cables) == 0 {
		fmt.Fprintln(out, "No cables found.")
		return
	}

	fmt.Fprintf(out, "%-4s %-28s %-12s %-6s %-10s %-9s %s\n",
		"ID", "NAME", "TYPE", "CORES", "SIZE(mm²)", "DIAM(mm)", "WEIGHT(kg/m)")
	for _, c := range cables {
		fmt.Fprintf(out, "%-4s %-28s %-12s %-6d %-10s %-9s %s\n",
			c.ID,
			c.Name,
			dashIfEmpty(c.CableType),
			c.Cores,
			FormatMM(c.ConductorSizeMM2),
			FormatMM(c.OverallDiameterMM),
			FormatMM(c.WeightPerMeterKG),
		)
	}
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
