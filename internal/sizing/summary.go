package sizing

import (
	"math"

	"github.com/mmr-tortoise/ladderfit/internal/model"
)

// Summary aggregates physical totals for a selection list. It complements the
// required width with the figures used for ladder fill and load checks.
type Summary struct {
	CableCount           int     `json:"cable_count"`
	TotalCrossSectionMM2 float64 `json:"total_cross_section_mm2"`

	// TotalWeightKgPerM only counts selections with a known weight.
	TotalWeightKgPerM float64 `json:"total_weight_kg_per_m"`
}

// CrossSectionArea returns the circular cross-section area in mm² of a cable
// with the given overall diameter.
func CrossSectionArea(diameterMM float64) float64 {
	r := diameterMM / 2
	return math.Pi * r * r
}

// Summarize totals cable count, cross-section area and weight per metre.
// Selections are assumed to be valid; call CalculateRequiredWidth first.
func Summarize(selections []model.CableSelection) Summary {
	var s Summary
	for _, sel := range selections {
		qty := sel.Count()
		s.CableCount += qty
		s.TotalCrossSectionMM2 += CrossSectionArea(sel.DiameterMM) * float64(qty)
		s.TotalWeightKgPerM += sel.WeightPerMeterKG * float64(qty)
	}
	return s
}
