package sizing

import (
	"github.com/mmr-tortoise/ladderfit/internal/model"
)

// Recommend picks the smallest width in widths that is at least required.
//
// Algorithm:
//  1. Sort a copy of widths ascending (the caller's slice is not touched).
//  2. Return the first width >= required with Fits set.
//  3. If none is large enough, return the largest width with Fits unset and
//     ShortfallMM set to the missing span. This is a best-effort answer, not
//     an error, so callers must check Fits before trusting the width.
//
// Returns ErrEmptyCatalog when widths has no entries.
func Recommend(required float64, widths model.LadderWidths) (model.Recommendation, error) {
	if len(widths) == 0 {
		return model.Recommendation{}, model.ErrEmptyCatalog
	}

	sorted := widths.Sorted()
	for _, w := range sorted {
		if w >= required {
			return model.Recommendation{
				WidthMM:         w,
				RequiredWidthMM: required,
				Fits:            true,
			}, nil
		}
	}

	largest := sorted[len(sorted)-1]
	return model.Recommendation{
		WidthMM:         largest,
		RequiredWidthMM: required,
		Fits:            false,
		ShortfallMM:     required - largest,
	}, nil
}

// RecommendLadderWidth returns only the width chosen by Recommend. When the
// requirement exceeds every catalog width the largest width is returned
// silently; use Recommend to detect that case.
func RecommendLadderWidth(required float64, widths model.LadderWidths) (float64, error) {
	rec, err := Recommend(required, widths)
	if err != nil {
		return 0, err
	}
	return rec.WidthMM, nil
}
