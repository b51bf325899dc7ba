// Package quadtree implements the Barnes–Hut spatial index used by the
// force simulation.
//
// A [Tree] is built from a snapshot of point positions at the start of a force
// pass and discarded afterwards; it never mutates the points it indexes.
// Every cell records the number of points below it, their centroid and the
// largest point radius in the subtree, which is all the many-body and
// collision forces need:
//
//   - [Tree.Accumulate] sums a pairwise law over all other points, replacing
//     distant cells by a single pseudo-body at their centroid when
//     size/distance < theta. theta = 0 degenerates to the exact pairwise sum.
//   - [Tree.Visit] walks cells in pre-order so callers can prune whole
//     subtrees, e.g. cells too far away to overlap a query disc.
//
// # Self-exclusion
//
// A cell whose bounds contain the queried point is never approximated, and
// leaves compare indices, so a point never contributes to its own result
// even when it shares a location with other points.
//
// # Coincident points
//
// Subdivision stops at [DefaultMaxDepth] or when all points of a cell
// coincide; such a leaf holds every coincident point. A zero separation is
// replaced by a tiny offset drawn from [Options.Jitter] so the law never sees
// a zero-length delta. The jitter is seeded, so runs stay reproducible.
package quadtree
