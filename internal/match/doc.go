// Package match provides identifier normalization and edit-distance helpers.
//
// Key functions:
//   - NormalizeIdent: folds registrantId, registrant_id and REGISTRANT-ID to one form
//   - IsIdentifier: reports whether a field name looks like a join key
//   - Suggest: ranks known names by edit distance for "did you mean" hints
package match
