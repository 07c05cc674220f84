package sizing

import (
	"fmt"
	"strings"

	"github.com/mmr-tortoise/ladderfit/internal/model"
)

// LayoutGroup is the part of a calculation laid in one layout.
type LayoutGroup struct {
	Layout          model.Layout `json:"layout"`
	CableCount      int          `json:"cable_count"`
	RequiredWidthMM float64      `json:"required_width_mm"`
}

// GroupedWidth splits selections by their effective layout (the line's own
// Layout, or layout when the line has none), sizes each group with
// CalculateRequiredWidth and returns the sum. Groups are listed in order of
// first appearance and are laid side by side without an extra gap between
// them.
//
// policy is checked before sizing: ErrMixedLayout or ErrMixedCableType is
// returned when the selections break it. An empty selection list yields 0
// and no groups.
func GroupedWidth(selections []model.CableSelection, layout model.Layout, spacing float64, policy model.MixPolicy) (float64, []LayoutGroup, error) {
	if len(selections) == 0 {
		return 0, nil, nil
	}
	if err := checkPolicy(selections, layout, policy); err != nil {
		return 0, nil, err
	}

	var (
		order    []model.Layout
		byLayout = make(map[model.Layout][]model.CableSelection)
	)
	for _, s := range selections {
		l := effectiveLayout(s, layout)
		if _, seen := byLayout[l]; !seen {
			order = append(order, l)
		}
		byLayout[l] = append(byLayout[l], s)
	}

	var total float64
	groups := make([]LayoutGroup, 0, len(order))
	for _, l := range order {
		members := byLayout[l]
		width, err := CalculateRequiredWidth(members, l, spacing)
		if err != nil {
			return 0, nil, fmt.Errorf("%s group: %w", l, err)
		}
		count := 0
		for _, m := range members {
			count += m.Count()
		}
		total += width
		groups = append(groups, LayoutGroup{Layout: l, CableCount: count, RequiredWidthMM: width})
	}
	if !model.IsFinite(total) {
		return 0, nil, fmt.Errorf("%w: required width overflows", model.ErrInvalidSelection)
	}
	return total, groups, nil
}

// effectiveLayout returns the layout a selection is laid in. Unknown values
// resolve to flat, as they do for the calculation layout.
func effectiveLayout(s model.CableSelection, layout model.Layout) model.Layout {
	l := layout
	if s.Layout != "" {
		l = s.Layout
	}
	resolved, _ := model.ResolveLayout(l.String())
	return resolved
}

func checkPolicy(selections []model.CableSelection, layout model.Layout, policy model.MixPolicy) error {
	if policy.SingleLayout {
		first := effectiveLayout(selections[0], layout)
		for i, s := range selections[1:] {
			if l := effectiveLayout(s, layout); l != first {
				return fmt.Errorf("selection #%d: %w: %s after %s", i+2, model.ErrMixedLayout, l, first)
			}
		}
	}
	if policy.SingleCableType {
		var first string
		for i, s := range selections {
			if s.CableType == "" {
				continue
			}
			if first == "" {
				first = s.CableType
				continue
			}
			if !strings.EqualFold(s.CableType, first) {
				return fmt.Errorf("selection #%d: %w: %s after %s", i+1, model.ErrMixedCableType, s.CableType, first)
			}
		}
	}
	return nil
}
