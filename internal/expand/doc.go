// Package expand enumerates the row contexts of a document under a plan.
//
// Each component of the plan contributes a set of partial rows: the driver
// axis elements in source order, each crossed with its child axes and then
// extended through the component's joins. Independent components are combined
// as a cross-product where earlier components vary slowest.
package expand
