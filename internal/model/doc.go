// Package model defines the domain types and value objects for ladderfit.
//
// This package contains pure data structures with no external dependencies.
// Cable records come from the catalog loaded once at startup; everything else
// (CableSelection, Layout, Recommendation) is transient and built per request.
//
// The package also defines the sentinel errors shared by the sizing, catalog
// and server packages, and the exit codes (ExitCode) and custom error type
// (CLIError) used for OS process exit handling.
package model
