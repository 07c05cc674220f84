package sizing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/ladderfit/internal/model"
)

func testRoutes() []model.Route {
	return []model.Route{
		{
			Name: "MSB to DB-1", From: "MSB", To: "DB-1", DistanceM: 25,
			Layout: model.LayoutFlat, LayoutRecognized: true, SpacingMM: 10,
			Selections: []model.CableSelection{
				{DiameterMM: 20, Quantity: 2, WeightPerMeterKG: 1.5},
				{DiameterMM: 30, WeightPerMeterKG: 0.5},
			},
		},
		{
			Name: "DB-1 to pump", DistanceM: 40,
			Layout: model.LayoutTrefoil, LayoutRecognized: true, SpacingMM: 10,
			Selections: []model.CableSelection{
				{DiameterMM: 400, Quantity: 9},
			},
		},
	}
}

func TestRunRoute(t *testing.T) {
	got, err := RunRoute(testRoutes()[0], model.DefaultLadderWidths())
	require.NoError(t, err)

	assert.Equal(t, "MSB to DB-1", got.Name)
	assert.InDelta(t, 90.0, got.RequiredWidthMM, 1e-9)
	assert.Equal(t, 100.0, got.Recommendation.WidthMM)
	assert.InDelta(t, 75.0, got.CableLengthM, 1e-9)
	// (2*1.5 + 0.5) kg/m * 25 m
	assert.InDelta(t, 87.5, got.TotalWeightKg, 1e-9)
}

func TestRunRoutes(t *testing.T) {
	estimates, totals, err := RunRoutes(testRoutes(), model.DefaultLadderWidths())
	require.NoError(t, err)
	require.Len(t, estimates, 2)

	// 3 groups * (800 + 10) = 2430 mm, beyond the largest ladder.
	assert.False(t, estimates[1].Recommendation.Fits)
	assert.Equal(t, RouteTotals{
		Routes:        2,
		LadderLengthM: 65,
		CableLengthM:  75 + 9*40,
		TotalWeightKg: 87.5,
		Oversized:     1,
	}, totals)
}

func TestRunRoutes_NamesFailingRoute(t *testing.T) {
	routes := testRoutes()
	routes[1].Policy = model.MixPolicy{SingleLayout: true}
	routes[1].Selections = append(routes[1].Selections, model.CableSelection{DiameterMM: 10, Layout: model.LayoutSpaced})

	_, _, err := RunRoutes(routes, model.DefaultLadderWidths())
	require.ErrorIs(t, err, model.ErrMixedLayout)
	assert.Contains(t, err.Error(), `route #2 "DB-1 to pump"`)
}

func TestRunRoute_WeightOverflow(t *testing.T) {
	route := model.Route{
		Name: "long", DistanceM: math.MaxFloat64, Layout: model.LayoutFlat,
		Selections: []model.CableSelection{{DiameterMM: 10, Quantity: 2, WeightPerMeterKG: 5}},
	}
	_, err := RunRoute(route, model.DefaultLadderWidths())
	assert.ErrorIs(t, err, model.ErrInvalidRoute)
}

func TestRunRoutes_Empty(t *testing.T) {
	estimates, totals, err := RunRoutes(nil, model.DefaultLadderWidths())
	require.NoError(t, err)
	assert.Empty(t, estimates)
	assert.Equal(t, RouteTotals{}, totals)
}
