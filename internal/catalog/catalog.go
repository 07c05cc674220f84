package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mmr-tortoise/ladderfit/internal/model"
)

// Catalog is the read-only cable catalog. It is built once by Load (or New)
// and never mutated afterwards.
type Catalog struct {
	source   string
	cables   []model.Cable
	byID     map[string]int
	issues   []RowIssue
	fallback bool
}

// New builds a Catalog from already decoded cables. Cables without an ID are
// numbered by position. It is mainly used by tests and by callers that
// assemble a catalog in memory.
func New(cables []model.Cable) *Catalog {
	owned := make([]model.Cable, len(cables))
	copy(owned, cables)
	for i := range owned {
		if owned[i].ID == "" {
			owned[i].ID = strconv.Itoa(i + 1)
		}
	}
	return newCatalog("", owned, nil, false)
}

func newCatalog(source string, cables []model.Cable, issues []RowIssue, fallback bool) *Catalog {
	byID := make(map[string]int, len(cables))
	for i, c := range cables {
		// First occurrence wins for duplicate IDs passed to New.
		if _, exists := byID[c.ID]; !exists {
			byID[c.ID] = i
		}
	}
	return &Catalog{
		source:   source,
		cables:   cables,
		byID:     byID,
		issues:   issues,
		fallback: fallback,
	}
}

// All returns a copy of every cable in file order.
func (c *Catalog) All() []model.Cable {
	out := make([]model.Cable, len(c.cables))
	copy(out, c.cables)
	return out
}

// Len returns the number of cables.
func (c *Catalog) Len() int {
	return len(c.cables)
}

// Lookup returns the cable with the given ID.
func (c *Catalog) Lookup(id string) (model.Cable, bool) {
	i, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return model.Cable{}, false
	}
	return c.cables[i], true
}

// Filter returns the cables whose cable_type matches cableType,
// case-insensitively. An empty cableType returns every cable.
func (c *Catalog) Filter(cableType string) []model.Cable {
	if cableType == "" {
		return c.All()
	}
	var out []model.Cable
	for _, cable := range c.cables {
		if strings.EqualFold(cable.CableType, cableType) {
			out = append(out, cable)
		}
	}
	return out
}

// Issues returns the cell substitutions made while loading.
func (c *Catalog) Issues() []RowIssue {
	out := make([]RowIssue, len(c.issues))
	copy(out, c.issues)
	return out
}

// Source returns the path the catalog was loaded from, or "" for an
// in-memory catalog.
func (c *Catalog) Source() string {
	return c.source
}

// Fallback reports whether the catalog file was missing and the default
// record is being served instead.
func (c *Catalog) Fallback() bool {
	return c.fallback
}

// Resolve projects selection requests onto CableSelections.
//
// A request naming a CableID takes that cable's diameter, weight and type; a
// request with only DiameterMM is used as-is. A per-line layout is resolved
// with model.ResolveLayout. Returns ErrUnknownCable for an ID not in the
// catalog and ErrInvalidSelection for a request that names neither or gives
// an explicit quantity below 1. Diameter values are validated later by
// sizing.CalculateRequiredWidth.
func (c *Catalog) Resolve(requests []model.SelectionRequest) ([]model.CableSelection, error) {
	selections := make([]model.CableSelection, 0, len(requests))
	for i, req := range requests {
		qty := 0
		if req.Quantity != nil {
			if *req.Quantity < 1 {
				return nil, fmt.Errorf("selection #%d: %w: quantity %d must be at least 1", i+1, model.ErrInvalidSelection, *req.Quantity)
			}
			qty = *req.Quantity
		}

		var sel model.CableSelection
		switch {
		case strings.TrimSpace(req.CableID) != "":
			cable, ok := c.Lookup(req.CableID)
			if !ok {
				return nil, fmt.Errorf("selection #%d: %w: %q", i+1, model.ErrUnknownCable, req.CableID)
			}
			sel = cable.Selection(qty)
		case req.DiameterMM != 0:
			sel = model.CableSelection{DiameterMM: req.DiameterMM, Quantity: qty}
		default:
			return nil, fmt.Errorf("selection #%d: %w: cable_id or diameter_mm is required", i+1, model.ErrInvalidSelection)
		}
		if req.Layout != "" {
			sel.Layout, _ = model.ResolveLayout(req.Layout)
		}
		selections = append(selections, sel)
	}
	return selections, nil
}

// ResolveRoute applies defaults to req and resolves its selections. The
// route layout and spacing fall back to defaultLayout and defaultSpacingMM.
// Returns ErrInvalidRoute for a negative or non-finite distance.
func (c *Catalog) ResolveRoute(req model.RouteRequest, defaultLayout model.Layout, defaultSpacingMM float64) (model.Route, error) {
	if !model.IsFinite(req.DistanceM) || req.DistanceM < 0 {
		return model.Route{}, fmt.Errorf("%w: distance %g m must not be negative", model.ErrInvalidRoute, req.DistanceM)
	}

	route := model.Route{
		Name:             strings.TrimSpace(req.Name),
		From:             strings.TrimSpace(req.From),
		To:               strings.TrimSpace(req.To),
		DistanceM:        req.DistanceM,
		Layout:           defaultLayout,
		LayoutRecognized: model.SelectionLayoutsRecognized(req.Selections),
		SpacingMM:        defaultSpacingMM,
		Policy:           model.MixPolicyFromFlags(req.AllowMixedInstallation, req.AllowMixedCableType),
	}
	if req.Layout != "" {
		var known bool
		route.Layout, known = model.ResolveLayout(req.Layout)
		route.LayoutRecognized = route.LayoutRecognized && known
	}
	if req.SpacingMM != nil {
		route.SpacingMM = *req.SpacingMM
	}

	selections, err := c.Resolve(req.Selections)
	if err != nil {
		return model.Route{}, err
	}
	route.Selections = selections
	return route, nil
}
