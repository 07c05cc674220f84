// routes.go implements the "ladderfit routes" command.
//
// The routes command sizes every cable route in a YAML or JSONC file and
// reports each route's ladder width together with cable length and weight
// over the route distance.

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mmr-tortoise/ladderfit/internal/config"
	"github.com/mmr-tortoise/ladderfit/internal/model"
	"github.com/mmr-tortoise/ladderfit/internal/sizing"
)

// NewRoutesCommand creates the "routes" cobra command.
func NewRoutesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes FILE",
		Short: "Size a batch of cable routes from a file",
		Long: `Size the cable ladder for every route listed in FILE (.yaml, .yml,
.json or .jsonc) and total the cable length and weight over each route.

Each route has a name, an optional from/to, distance_m and a list of
selections in the same form as POST /api/calculate. A selection may carry its
own layout; setting allow_mixed_installation or allow_mixed_cable_type to
false rejects a route that mixes them.

Example file:
  routes:
    - name: MSB to DB-1
      distance_m: 25
      selections:
        - cable_id: "1"
          quantity: 3
        - diameter_mm: 18.5
          layout: trefoil

Examples:
  ladderfit routes site.yaml
  ladderfit routes site.jsonc --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoutes(cmd.OutOrStdout(), args[0])
		},
	}
	return cmd
}

// routesResultJSON is the --json output of the routes command.
type routesResultJSON struct {
	Routes []sizing.RouteEstimate `json:"routes"`
	Totals sizing.RouteTotals     `json:"totals"`
}

func runRoutes(out io.Writer, path string) error {
	requests, err := config.LoadRoutes(path)
	if err != nil {
		return model.WrapCLIError(model.ExitInvalidInput, "failed to load routes", err)
	}
	VerboseLog("Loaded %d routes from %s", len(requests), path)

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	routes := make([]model.Route, 0, len(requests))
	for i, req := range requests {
		route, err := rt.catalog.ResolveRoute(req, rt.cfg.DefaultLayout(), rt.cfg.Sizing.SpacingMM)
		if err != nil {
			return model.WrapCLIError(model.ExitInvalidInput,
				fmt.Sprintf("invalid route #%d %q", i+1, req.Name), err)
		}
		if !route.LayoutRecognized {
			VerboseLog("Route %q has an unknown layout, calculating it as flat", route.Name)
		}
		routes = append(routes, route)
	}

	estimates, totals, err := sizing.RunRoutes(routes, rt.cfg.Ladder.Widths)
	if err != nil {
		if errors.Is(err, model.ErrEmptyCatalog) {
			return model.WrapCLIError(model.ExitConfigError, "no ladder widths configured", err)
		}
		return model.WrapCLIError(model.ExitInvalidInput, "calculation failed", err)
	}
	rt.logger.Debug("sized routes",
		zap.Int("routes", totals.Routes),
		zap.Int("oversized", totals.Oversized),
		zap.Float64("cable_length_m", totals.CableLengthM))

	if IsJSONOutput() {
		data, err := json.MarshalIndent(routesResultJSON{Routes: estimates, Totals: totals}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}
	printRoutesText(out, estimates, totals)
	return nil
}

// printRoutesText writes one row per route followed by the batch totals:
//
//	ROUTE            DIST(m)  LAYOUT   CABLES  WIDTH(mm)  LADDER(mm)  WEIGHT(kg)
//	MSB to DB-1      25       flat     3       90         100         87.5
func printRoutesText(out io.Writer, estimates []sizing.RouteEstimate, totals sizing.RouteTotals) {
	if len(estimates) == 0 {
		fmt.Fprintln(out, "No routes found.")
		return
	}

	fmt.Fprintf(out, "%-24s %-8s %-8s %-7s %-10s %-11s %s\n",
		"ROUTE", "DIST(m)", "LAYOUT", "CABLES", "WIDTH(mm)", "LADDER(mm)", "WEIGHT(kg)")
	for _, r := range estimates {
		ladder := FormatMM(r.Recommendation.WidthMM)
		if !r.Recommendation.Fits {
			ladder += "!"
		}
		fmt.Fprintf(out, "%-24s %-8s %-8s %-7d %-10s %-11s %s\n",
			dashIfEmpty(r.Name),
			FormatMM(r.DistanceM),
			r.Layout,
			r.Summary.CableCount,
			FormatMM(roundTo(r.RequiredWidthMM, 1)),
			ladder,
			FormatMM(roundTo(r.TotalWeightKg, 2)),
		)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%-16s %d\n", "Routes:", totals.Routes)
	fmt.Fprintf(out, "%-16s %s m\n", "Ladder length:", FormatMM(roundTo(totals.LadderLengthM, 2)))
	fmt.Fprintf(out, "%-16s %s m\n", "Cable length:", FormatMM(roundTo(totals.CableLengthM, 2)))
	fmt.Fprintf(out, "%-16s %s kg\n", "Total weight:", FormatMM(roundTo(totals.TotalWeightKg, 2)))
	if totals.Oversized > 0 {
		fmt.Fprintf(out, "Warning: %d route(s) exceed the largest ladder (marked !)\n", totals.Oversized)
	}
}
