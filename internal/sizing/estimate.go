package sizing

import (
	"fmt"

	"github.com/mmr-tortoise/ladderfit/internal/model"
)

// Estimate is the combined answer for one selection list: the required
// width, the recommended ladder and the physical totals.
type Estimate struct {
	Layout          model.Layout         `json:"layout"`
	SpacingMM       float64              `json:"spacing_mm"`
	RequiredWidthMM float64              `json:"required_width_mm"`
	Groups          []LayoutGroup        `json:"groups"`
	Recommendation  model.Recommendation `json:"recommendation"`
	Summary         Summary              `json:"summary"`
}

// Run computes the required width for selections, matches it against
// widths and totals the selection. Selections may mix layouts; see
// RunWithPolicy to restrict that.
//
// Layout is stored as given; an unrecognized layout is computed as flat, so
// callers that accept free-form layout strings should resolve them first
// with model.ResolveLayout.
func Run(selections []model.CableSelection, layout model.Layout, spacing float64, widths model.LadderWidths) (Estimate, error) {
	return RunWithPolicy(selections, layout, spacing, widths, model.MixPolicy{})
}

// RunWithPolicy is Run with a MixPolicy checked before sizing.
func RunWithPolicy(selections []model.CableSelection, layout model.Layout, spacing float64, widths model.LadderWidths, policy model.MixPolicy) (Estimate, error) {
	required, groups, err := GroupedWidth(selections, layout, spacing, policy)
	if err != nil {
		return Estimate{}, err
	}
	rec, err := Recommend(required, widths)
	if err != nil {
		return Estimate{}, err
	}
	summary := Summarize(selections)
	if !model.IsFinite(summary.TotalCrossSectionMM2) || !model.IsFinite(summary.TotalWeightKgPerM) {
		return Estimate{}, fmt.Errorf("%w: cross-section or weight total overflows", model.ErrInvalidSelection)
	}
	if groups == nil {
		groups = []LayoutGroup{}
	}
	return Estimate{
		Layout:          layout,
		SpacingMM:       spacing,
		RequiredWidthMM: required,
		Groups:          groups,
		Recommendation:  rec,
		Summary:         summary,
	}, nil
}
