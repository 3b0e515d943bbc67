// Package plan discovers the array axes of a table mapping and how they
// relate, producing an immutable Plan that is computed once per mapping and
// shared by every document processed with it.
//
// Discovery pipeline:
//  1. Walk every path lookup field; each expansion marker opens an axis named
//     by the path prefix up to and including the marker
//  2. Nest axes found inside another axis's elements under that axis
//  3. Bind every field to the deepest axis its path crosses
//  4. Apply declared joins, then infer the remaining ones from identifier names
//     (each inferred join is reported as a warning)
//  5. Group top-level axes into independent components, each driven by the
//     axis that has no incoming join
package plan
