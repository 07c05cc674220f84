package sizing

import (
	"fmt"

	"github.com/mmr-tortoise/ladderfit/internal/model"
)

// RouteEstimate is the Estimate of one cable route plus the quantities that
// depend on its length.
type RouteEstimate struct {
	Name             string  `json:"name"`
	From             string  `json:"from,omitempty"`
	To               string  `json:"to,omitempty"`
	DistanceM        float64 `json:"distance_m"`
	LayoutRecognized bool    `json:"layout_recognized"`
	Estimate

	// CableLengthM is the total cable length pulled: cables × distance.
	CableLengthM float64 `json:"cable_length_m"`

	// TotalWeightKg is the known cable weight per metre × distance.
	TotalWeightKg float64 `json:"total_weight_kg"`
}

// RouteTotals aggregates a batch of routes.
type RouteTotals struct {
	Routes        int     `json:"routes"`
	LadderLengthM float64 `json:"ladder_length_m"`
	CableLengthM  float64 `json:"cable_length_m"`
	TotalWeightKg float64 `json:"total_weight_kg"`
	Oversized     int     `json:"oversized"`
}

// RunRoute sizes the ladder of one route and derives its length totals.
func RunRoute(route model.Route, widths model.LadderWidths) (RouteEstimate, error) {
	est, err := RunWithPolicy(route.Selections, route.Layout, route.SpacingMM, widths, route.Policy)
	if err != nil {
		return RouteEstimate{}, err
	}

	re := RouteEstimate{
		Name:             route.Name,
		From:             route.From,
		To:               route.To,
		DistanceM:        route.DistanceM,
		LayoutRecognized: route.LayoutRecognized,
		Estimate:         est,
		CableLengthM:     float64(est.Summary.CableCount) * route.DistanceM,
		TotalWeightKg:    est.Summary.TotalWeightKgPerM * route.DistanceM,
	}
	if !model.IsFinite(re.CableLengthM) || !model.IsFinite(re.TotalWeightKg) {
		return RouteEstimate{}, fmt.Errorf("%w: length totals overflow", model.ErrInvalidRoute)
	}
	return re, nil
}

// RunRoutes sizes every route in order. The first failing route aborts the
// batch; its error names the route by position and name.
func RunRoutes(routes []model.Route, widths model.LadderWidths) ([]RouteEstimate, RouteTotals, error) {
	estimates := make([]RouteEstimate, 0, len(routes))
	totals := RouteTotals{Routes: len(routes)}
	for i, r := range routes {
		re, err := RunRoute(r, widths)
		if err != nil {
			return nil, RouteTotals{}, fmt.Errorf("route #%d %q: %w", i+1, r.Name, err)
		}
		estimates = append(estimates, re)

		totals.LadderLengthM += r.DistanceM
		totals.CableLengthM += re.CableLengthM
		totals.TotalWeightKg += re.TotalWeightKg
		if !re.Recommendation.Fits {
			totals.Oversized++
		}
	}
	if !model.IsFinite(totals.LadderLengthM) || !model.IsFinite(totals.CableLengthM) || !model.IsFinite(totals.TotalWeightKg) {
		return nil, RouteTotals{}, fmt.Errorf("%w: batch totals overflow", model.ErrInvalidRoute)
	}
	return estimates, totals, nil
}
