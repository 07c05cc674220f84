package model

import "errors"

var (
	// ErrInvalidSelection is returned when a cable selection has a
	// non-positive or non-finite diameter, a quantity below 1, or names
	// neither a catalog cable nor a diameter. It is also returned when a
	// selection is too large to compute a finite width.
	ErrInvalidSelection = errors.New("invalid cable selection")

	// ErrInvalidSpacing is returned for a negative or non-finite
	// inter-cable spacing.
	ErrInvalidSpacing = errors.New("invalid cable spacing")

	// ErrEmptyCatalog is returned when the ladder width catalog has no
	// entries.
	ErrEmptyCatalog = errors.New("ladder width catalog is empty")

	// ErrUnknownCable is returned when a selection references a cable ID
	// that is not in the catalog.
	ErrUnknownCable = errors.New("unknown cable")

	// ErrMixedLayout is returned when a MixPolicy forbids mixing layouts
	// and the selections use more than one.
	ErrMixedLayout = errors.New("mixed installation layouts are not allowed")

	// ErrMixedCableType is returned when a MixPolicy forbids mixing cable
	// types and the selections use more than one.
	ErrMixedCableType = errors.New("mixed cable types are not allowed")

	// ErrInvalidRoute is returned for a route with a negative or
	// non-finite distance, or whose totals overflow.
	ErrInvalidRoute = errors.New("invalid route")
)
