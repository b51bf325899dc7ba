// Package force implements the forces of the layout simulation.
//
// Bodies live in a dense slice owned by the simulation; a body's index is its
// stable handle, and an [Edge] refers to its endpoints by index. Forces never
// move bodies directly (with the exception of [Center], which translates the
// whole layout): they add to body velocities and leave integration to the
// caller.
//
// The forces are modelled on d3-force:
//
//   - [Link]: springs along edges with rest length Distance(weight), split
//     between endpoints by degree.
//   - [ManyBody]: pairwise repulsion (or attraction) through a Barnes–Hut
//     [quadtree.Tree], with a strength that can track the viewport width.
//   - [X], [Y]: per-axis pull towards a target coordinate.
//   - [Collide]: resolves overlapping discs of radius + padding.
//   - [Center]: translates the layout so its mean sits at a target.
//
// Every force is applied once per tick with the current cooling alpha,
// in the order chosen by the simulation.
package force
