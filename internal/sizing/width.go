package sizing

import (
	"fmt"

	"github.com/mmr-tortoise/ladderfit/internal/model"
)

const (
	// DefaultSpacingMM is the gap left between cables when the caller does
	// not choose one.
	DefaultSpacingMM = 10.0

	// trefoilGroupSize is the number of cables in one triangular bundle.
	trefoilGroupSize = 3
)

// CalculateRequiredWidth returns the lateral width in mm needed to lay the
// given selections on a ladder using layout, with spacing mm between cables.
//
// An empty selection list always yields 0, whatever the layout or spacing.
// An unrecognized layout is computed as LayoutFlat.
//
// Every selection is laid in layout; per-line Layout fields are ignored here
// and honoured by GroupedWidth.
//
// The trefoil estimate uses the single largest diameter of the whole input as
// the footprint of every group, not the largest diameter per group.
//
// Returns ErrInvalidSelection for a non-positive or non-finite diameter, a
// negative quantity, or selections too large for a finite width, and
// ErrInvalidSpacing for a negative or non-finite spacing.
func CalculateRequiredWidth(selections []model.CableSelection, layout model.Layout, spacing float64) (float64, error) {
	if len(selections) == 0 {
		return 0, nil
	}
	if !model.IsFinite(spacing) || spacing < 0 {
		return 0, fmt.Errorf("%w: %g mm must be a non-negative number", model.ErrInvalidSpacing, spacing)
	}

	var (
		count       int
		totalDiam   float64
		maxDiameter float64
	)
	for i, s := range selections {
		if err := s.Validate(); err != nil {
			return 0, fmt.Errorf("selection #%d: %w", i+1, err)
		}
		qty := s.Count()
		count += qty
		totalDiam += s.DiameterMM * float64(qty)
		if s.DiameterMM > maxDiameter {
			maxDiameter = s.DiameterMM
		}
	}

	var width float64
	switch layout {
	case model.LayoutTrefoil:
		groups := (count + trefoilGroupSize - 1) / trefoilGroupSize
		width = float64(groups) * (2*maxDiameter + spacing)
	case model.LayoutSpaced:
		width = totalDiam + spacing*float64(count)
	default:
		width = totalDiam + spacing*float64(count-1)
	}
	if !model.IsFinite(width) {
		return 0, fmt.Errorf("%w: required width overflows", model.ErrInvalidSelection)
	}
	return width, nil
}
