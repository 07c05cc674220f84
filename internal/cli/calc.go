// calc.go implements the "ladderfit calc" command.
//
// The calc command computes the required ladder width for cables given on
// the command line, either by catalog id (--cable) or by overall diameter
// (--diameter), and recommends a standard ladder width.

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mmr-tortoise/ladderfit/internal/model"
	"github.com/mmr-tortoise/ladderfit/internal/sizing"
)

// calcFlags holds the flag values for the calc command.
type calcFlags struct {
	// cables are "id" or "id:qty" catalog references.
	cables []string

	// diameters are "d" or "d:qty" ad hoc cables in mm.
	diameters []string

	// layout is flat, trefoil or spaced. Empty uses sizing.layout.
	layout string

	// spacing overrides sizing.spacing_mm when the flag is set.
	spacing    float64
	spacingSet bool
}

// NewCalcCommand creates the "calc" cobra command.
func NewCalcCommand() *cobra.Command {
	flags := &calcFlags{}

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate the required ladder width for a set of cables",
		Long: `Calculate the ladder width required to lay the given cables and
recommend the smallest standard width that holds them.

Cables are referenced by catalog id with --cable, or by overall diameter in
mm with --diameter. Either form accepts an optional ":quantity" suffix and
can be repeated.

Layouts:
  flat     cables side by side, spacing between neighbours
  trefoil  groups of three, each two diameters wide plus spacing
  spaced   spacing after every cable

Examples:
  ladderfit calc --cable 1:3 --cable 4
  ladderfit calc --diameter 26.5:6 --layout trefoil
  ladderfit calc --cable 2:4 --layout spaced --spacing 20 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.spacingSet = cmd.Flags().Changed("spacing")
			return runCalc(cmd.OutOrStdout(), flags)
		},
	}

	cmd.Flags().StringArrayVar(&flags.cables, "cable", nil, "Catalog cable id with optional quantity, e.g. 3:4 (repeatable)")
	cmd.Flags().StringArrayVar(&flags.diameters, "diameter", nil, "Overall diameter in mm with optional quantity, e.g. 26.5:2 (repeatable)")
	cmd.Flags().StringVar(&flags.layout, "layout", "", "Layout: flat, trefoil, spaced (default from configuration)")
	cmd.Flags().Float64Var(&flags.spacing, "spacing", 0, "Spacing between cables in mm (default from configuration)")

	return cmd
}

// calcResultJSON is the --json output of the calc command.
type calcResultJSON struct {
	sizing.Estimate
	LayoutRecognized bool `json:"layout_recognized"`
}

func runCalc(out io.Writer, flags *calcFlags) error {
	requests, err := buildSelectionRequests(flags.cables, flags.diameters)
	if err != nil {
		return model.WrapCLIError(model.ExitInvalidInput, "invalid cable argument", err)
	}
	if len(requests) == 0 {
		return model.NewCLIError(model.ExitInvalidInput, "at least one --cable or --diameter is required")
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	layout, recognized := rt.cfg.DefaultLayout(), true
	if flags.layout != "" {
		layout, recognized = model.ResolveLayout(flags.layout)
		if !recognized {
			VerboseLog("Unknown layout %q, calculating as %s", flags.layout, layout)
		}
	}
	spacing := rt.cfg.Sizing.SpacingMM
	if flags.spacingSet {
		spacing = flags.spacing
	}

	selections, err := rt.catalog.Resolve(requests)
	if err != nil {
		return model.WrapCLIError(model.ExitInvalidInput, "invalid selection", err)
	}

	est, err := sizing.Run(selections, layout, spacing, rt.cfg.Ladder.Widths)
	if err != nil {
		if errors.Is(err, model.ErrEmptyCatalog) {
			return model.WrapCLIError(model.ExitConfigError, "no ladder widths configured", err)
		}
		return model.WrapCLIError(model.ExitInvalidInput, "calculation failed", err)
	}
	rt.logger.Debug("calculated ladder width",
		zap.String("layout", layout.String()),
		zap.Float64("spacing_mm", spacing),
		zap.Float64("required_width_mm", est.RequiredWidthMM),
		zap.Float64("ladder_width_mm", est.Recommendation.WidthMM))

	if IsJSONOutput() {
		data, err := json.MarshalIndent(calcResultJSON{Estimate: est, LayoutRecognized: recognized}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}
	printEstimateText(out, est)
	return nil
}

// buildSelectionRequests parses --cable and --diameter values, cables first.
func buildSelectionRequests(cables, diameters []string) ([]model.SelectionRequest, error) {
	requests := make([]model.SelectionRequest, 0, len(cables)+len(diameters))
	for _, arg := range cables {
		id, qty, err := splitQuantity(arg)
		if err != nil {
			return nil, fmt.Errorf("--cable %q: %w", arg, err)
		}
		if id == "" {
			return nil, fmt.Errorf("--cable %q: cable id is empty", arg)
		}
		requests = append(requests, model.SelectionRequest{CableID: id, Quantity: qty})
	}
	for _, arg := range diameters {
		req, err := ParseDiameterArg(arg)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// ParseDiameterArg parses a --diameter value of the form "d" or "d:qty".
// The diameter must be a positive number of millimetres.
func ParseDiameterArg(arg string) (model.SelectionRequest, error) {
	value, qty, err := splitQuantity(arg)
	if err != nil {
		return model.SelectionRequest{}, fmt.Errorf("--diameter %q: %w", arg, err)
	}
	d, err := strconv.ParseFloat(value, 64)
	if err != nil || !model.IsFinite(d) {
		return model.SelectionRequest{}, fmt.Errorf("--diameter %q: %w: diameter is not a finite number", arg, model.ErrInvalidSelection)
	}
	if d <= 0 {
		return model.SelectionRequest{}, fmt.Errorf("--diameter %q: %w: diameter must be positive", arg, model.ErrInvalidSelection)
	}
	return model.SelectionRequest{DiameterMM: d, Quantity: qty}, nil
}

// splitQuantity splits "value:qty" into its parts. A missing quantity is
// returned as nil, which counts as one cable.
func splitQuantity(arg string) (string, *int, error) {
	value, qtyStr, found := strings.Cut(strings.TrimSpace(arg), ":")
	value = strings.TrimSpace(value)
	if !found {
		return value, nil, nil
	}
	qty, err := strconv.Atoi(strings.TrimSpace(qtyStr))
	if err != nil || qty < 1 {
		return "", nil, fmt.Errorf("%w: quantity must be a positive integer", model.ErrInvalidSelection)
	}
	return value, model.Qty(qty), nil
}

// printEstimateText writes a human-readable estimate:
//
//	Layout:          flat
//	Spacing:         10 mm
//	Cables:          3
//	Required width:  90 mm
//	Ladder width:    100 mm
func printEstimateText(out io.Writer, est sizing.Estimate) {
	fmt.Fprintf(out, "%-16s %s\n", "Layout:", est.Layout)
	fmt.Fprintf(out, "%-16s %s mm\n", "Spacing:", FormatMM(est.SpacingMM))
	fmt.Fprintf(out, "%-16s %d\n", "Cables:", est.Summary.CableCount)
	fmt.Fprintf(out, "%-16s %s mm²\n", "Cross-section:", FormatMM(roundTo(est.Summary.TotalCrossSectionMM2, 1)))
	if est.Summary.TotalWeightKgPerM > 0 {
		fmt.Fprintf(out, "%-16s %s kg/m\n", "Weight:", FormatMM(roundTo(est.Summary.TotalWeightKgPerM, 2)))
	}
	fmt.Fprintf(out, "%-16s %s mm\n", "Required width:", FormatMM(roundTo(est.RequiredWidthMM, 1)))
	fmt.Fprintf(out, "%-16s %s mm\n", "Ladder width:", FormatMM(est.Recommendation.WidthMM))
	if !est.Recommendation.Fits {
		fmt.Fprintf(out, "Warning: required width exceeds the largest ladder by %s mm\n",
			FormatMM(roundTo(est.Recommendation.ShortfallMM, 1)))
	}
}

// FormatMM renders a measurement without trailing zeros, e.g. 9.3 or 300.
func FormatMM(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// roundTo rounds v to the given number of decimal places for display.
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
