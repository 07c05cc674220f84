// Package catalog loads the cable catalog from a CSV file.
//
// The catalog is read once at startup and is read-only afterwards, so a
// *Catalog can be shared by concurrent HTTP handlers without locking.
//
// Key responsibilities:
//   - Parse the CSV into model.Cable records, coercing numeric columns
//   - Synthesize the display name ("<brand> <cores>C <size>mm²")
//   - Substitute the built-in default record when the file is missing
//   - Record per-cell coercion problems as RowIssues instead of failing
//   - Project SelectionRequests onto CableSelections by cable ID
package catalog
