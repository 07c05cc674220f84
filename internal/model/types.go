// Package model defines the domain types for ladderfit.
//
// Catalog records (Cable) are read-only after startup. Selection and
// recommendation types are transient: they are built for a single
// computation and discarded.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Layout is the packing convention used when laying cables on a ladder.
//
// Unrecognized values are not an error anywhere in the system: they resolve
// to LayoutFlat (see ResolveLayout).
type Layout string

const (
	// LayoutFlat lays cables side by side with spacing only between
	// adjacent cables (n-1 gaps).
	LayoutFlat Layout = "flat"

	// LayoutTrefoil bundles cables in triangular groups of three.
	LayoutTrefoil Layout = "trefoil"

	// LayoutSpaced gives every cable, including the last, trailing spacing.
	LayoutSpaced Layout = "spaced"
)

// String returns the string representation of Layout.
func (l Layout) String() string {
	return string(l)
}

// IsValid checks whether the Layout value is one of the defined layouts.
func (l Layout) IsValid() bool {
	switch l {
	case LayoutFlat, LayoutTrefoil, LayoutSpaced:
		return true
	default:
		return false
	}
}

// ResolveLayout converts a string to the effective Layout. Matching is
// case-insensitive and ignores surrounding whitespace. The second return
// value reports whether s named a known layout; when it is false the
// returned layout is LayoutFlat.
func ResolveLayout(s string) (Layout, bool) {
	layout := Layout(strings.ToLower(strings.TrimSpace(s)))
	if !layout.IsValid() {
		return LayoutFlat, false
	}
	return layout, true
}

// Layouts returns every defined layout in display order.
func Layouts() []Layout {
	return []Layout{LayoutFlat, LayoutTrefoil, LayoutSpaced}
}

// CableSelection is one line of a width computation: a cable diameter and how
// many cables of that diameter are laid.
//
// It is a projection of catalog fields, not the full catalog record.
type CableSelection struct {
	// DiameterMM is the overall cable diameter in millimetres. Must be a
	// finite value > 0.
	DiameterMM float64 `json:"diameter_mm"`

	// Quantity is the number of cables. Zero means the default of 1;
	// negative values are invalid.
	Quantity int `json:"quantity,omitempty"`

	// WeightPerMeterKG is the cable mass per metre, when known from the
	// catalog. Zero when the selection was given as a bare diameter.
	WeightPerMeterKG float64 `json:"weight_per_meter_kg,omitempty"`

	// Layout overrides the layout of the calculation for this line. Empty
	// means the calculation layout applies.
	Layout Layout `json:"layout,omitempty"`

	// CableType is the catalog cable_type, empty for a bare diameter.
	CableType string `json:"cable_type,omitempty"`
}

// Count returns the effective quantity, applying the default of 1.
func (s CableSelection) Count() int {
	if s.Quantity == 0 {
		return 1
	}
	return s.Quantity
}

// Validate checks the CableSelection invariants: a finite positive diameter,
// a non-negative quantity and a finite non-negative weight.
func (s CableSelection) Validate() error {
	if !IsFinite(s.DiameterMM) || s.DiameterMM <= 0 {
		return fmt.Errorf("%w: diameter %g mm must be a positive number", ErrInvalidSelection, s.DiameterMM)
	}
	if s.Quantity < 0 {
		return fmt.Errorf("%w: quantity %d must be at least 1", ErrInvalidSelection, s.Quantity)
	}
	if !IsFinite(s.WeightPerMeterKG) || s.WeightPerMeterKG < 0 {
		return fmt.Errorf("%w: weight %g kg/m must not be negative", ErrInvalidSelection, s.WeightPerMeterKG)
	}
	return nil
}

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// SelectionRequest is the boundary form of a selection, as received from the
// HTTP API, the CLI or a route file. Exactly one of CableID or DiameterMM is
// expected; CableID wins when both are set.
type SelectionRequest struct {
	CableID    string  `json:"cable_id,omitempty" yaml:"cable_id,omitempty"`
	DiameterMM float64 `json:"diameter_mm,omitempty" yaml:"diameter_mm,omitempty"`

	// Quantity is nil when omitted, which counts as one cable. An explicit
	// value must be at least 1.
	Quantity *int `json:"quantity,omitempty" yaml:"quantity,omitempty"`

	// Layout optionally lays this line differently from the rest of the
	// calculation. Unrecognized values resolve to flat.
	Layout string `json:"layout,omitempty" yaml:"layout,omitempty"`
}

// Qty returns a pointer to n, for building SelectionRequest literals.
func Qty(n int) *int {
	return &n
}

// SelectionLayoutsRecognized reports whether every per-line layout in reqs is
// empty or names a known layout.
func SelectionLayoutsRecognized(reqs []SelectionRequest) bool {
	for _, r := range reqs {
		if r.Layout == "" {
			continue
		}
		if _, ok := ResolveLayout(r.Layout); !ok {
			return false
		}
	}
	return true
}

// MixPolicy restricts how selections may be combined on one ladder. The zero
// value allows any mix.
type MixPolicy struct {
	// SingleLayout rejects a calculation whose lines use more than one
	// effective layout.
	SingleLayout bool `json:"single_layout"`

	// SingleCableType rejects a calculation that mixes catalog cable
	// types. Bare diameters have no type and never conflict.
	SingleCableType bool `json:"single_cable_type"`
}

// MixPolicyFromFlags builds a MixPolicy from the optional "allow mixed"
// flags of the boundary forms. An omitted flag allows mixing.
func MixPolicyFromFlags(allowMixedInstallation, allowMixedCableType *bool) MixPolicy {
	return MixPolicy{
		SingleLayout:    allowMixedInstallation != nil && !*allowMixedInstallation,
		SingleCableType: allowMixedCableType != nil && !*allowMixedCableType,
	}
}

// RouteRequest is the boundary form of a cable route between two boards, as
// received from the HTTP API or a route file.
type RouteRequest struct {
	Name string `json:"name" yaml:"name"`
	From string `json:"from,omitempty" yaml:"from,omitempty"`
	To   string `json:"to,omitempty" yaml:"to,omitempty"`

	// DistanceM is the route length in metres. Must be finite and >= 0.
	DistanceM float64 `json:"distance_m" yaml:"distance_m"`

	// Layout and SpacingMM default to the server or CLI defaults.
	Layout    string   `json:"layout,omitempty" yaml:"layout,omitempty"`
	SpacingMM *float64 `json:"spacing_mm,omitempty" yaml:"spacing_mm,omitempty"`

	AllowMixedInstallation *bool `json:"allow_mixed_installation,omitempty" yaml:"allow_mixed_installation,omitempty"`
	AllowMixedCableType    *bool `json:"allow_mixed_cable_type,omitempty" yaml:"allow_mixed_cable_type,omitempty"`

	Selections []SelectionRequest `json:"selections" yaml:"selections"`
}

// Route is a cable run whose selections have been resolved against the
// catalog and whose defaults have been applied.
type Route struct {
	Name      string
	From      string
	To        string
	DistanceM float64

	Layout           Layout
	LayoutRecognized bool
	SpacingMM        float64
	Policy           MixPolicy

	Selections []CableSelection
}

// LadderWidths is the set of standard manufactured ladder/tray widths in mm.
type LadderWidths []float64

// DefaultLadderWidths returns a fresh copy of the standard width catalog.
func DefaultLadderWidths() LadderWidths {
	return LadderWidths{100, 150, 200, 300, 400, 500, 600, 700, 800, 1000}
}

// Sorted returns an ascending copy of the widths. The receiver is not
// modified.
func (w LadderWidths) Sorted() LadderWidths {
	sorted := make(LadderWidths, len(w))
	copy(sorted, w)
	sort.Float64s(sorted)
	return sorted
}

// Validate checks that every width is a finite positive number.
func (w LadderWidths) Validate() error {
	if len(w) == 0 {
		return ErrEmptyCatalog
	}
	for i, width := range w {
		if !IsFinite(width) || width <= 0 {
			return fmt.Errorf("ladder width #%d (%g mm) must be positive", i+1, width)
		}
	}
	return nil
}

// Recommendation is the outcome of matching a required width against the
// ladder catalog.
//
// When no catalog width is large enough, WidthMM is the largest width, Fits
// is false and ShortfallMM holds the missing span.
type Recommendation struct {
	WidthMM         float64 `json:"width_mm"`
	RequiredWidthMM float64 `json:"required_width_mm"`
	Fits            bool    `json:"fits"`
	ShortfallMM     float64 `json:"shortfall_mm"`
}

// Cable is one record of the cable catalog.
//
// Known CSV columns are decoded into typed fields; any other column is kept
// verbatim in Extra so the JSON form carries every CSV column.
type Cable struct {
	ID                string
	Name              string
	Brand             string
	CableType         string
	Description       string
	Cores             int
	ConductorSizeMM2  float64
	ConductorType     string
	Insulation        string
	Sheath            string
	VoltageRating     string
	OverallDiameterMM float64
	WeightPerMeterKG  float64

	// Extra holds CSV columns that have no typed field, keyed by header.
	Extra map[string]string
}

// Selection projects the cable onto a CableSelection with the given quantity.
func (c Cable) Selection(quantity int) CableSelection {
	return CableSelection{
		DiameterMM:       c.OverallDiameterMM,
		Quantity:         quantity,
		WeightPerMeterKG: c.WeightPerMeterKG,
		CableType:        c.CableType,
	}
}

// MarshalJSON encodes the cable as a flat object keyed by the catalog's
// column names, with extra columns merged in. Typed fields take precedence
// over an Extra entry of the same name.
func (c Cable) MarshalJSON() ([]byte, error) {
	obj := make(map[string]interface{}, len(c.Extra)+13)
	for k, v := range c.Extra {
		obj[k] = v
	}
	obj["id"] = c.ID
	obj["name"] = c.Name
	obj["brand"] = c.Brand
	obj["cable_type"] = c.CableType
	obj["cable_description"] = c.Description
	obj["cores"] = c.Cores
	obj["conductor_size_mm2"] = c.ConductorSizeMM2
	obj["conductor_type"] = c.ConductorType
	obj["insulation"] = c.Insulation
	obj["sheath"] = c.Sheath
	obj["voltage_rating"] = c.VoltageRating
	obj["overall_diameter_mm"] = c.OverallDiameterMM
	obj["weight_per_meter_kg"] = c.WeightPerMeterKG
	return json.Marshal(obj)
}

// ExitCode defines the CLI exit codes.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates the configuration file could not be read
	// or failed validation.
	ExitConfigError ExitCode = 2

	// ExitCatalogError indicates the cable catalog could not be loaded.
	// A missing catalog file is not an error (the default record is used).
	ExitCatalogError ExitCode = 3

	// ExitInvalidInput indicates a selection, layout or spacing argument
	// was rejected.
	ExitInvalidInput ExitCode = 4

	// ExitAddressInUse indicates the server listen address is taken.
	ExitAddressInUse ExitCode = 5
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
