// Package diagnostic provides structured errors, warnings and notes produced
// while loading a table mapping and planning its row expansion.
//
// Key capabilities:
//   - Configuration errors keyed by a stable code (missing source, bad path, ...)
//   - Warnings for heuristically inferred joins
//   - Suggestions for misspelled datatypes and computed functions
package diagnostic
