// Package sizing implements the cable ladder width computations.
//
// CalculateRequiredWidth estimates the lateral span needed to lay a set of
// cable selections under one of three layouts:
//
//	flat:    D + spacing*(n-1)
//	spaced:  D + spacing*n
//	trefoil: ceil(n/3) * (2*M + spacing)
//
// where n is the total cable count, D the sum of diameters weighted by
// quantity and M the largest diameter in the whole selection.
//
// RecommendLadderWidth and Recommend pick the smallest standard ladder width
// that holds the required width, falling back to the largest width when none
// does. All functions are pure.
package sizing
