// pkg/shareable/doc.go

// Package shareable implements an immutable, structurally shared B*-tree.
//
// A Dict is a value: Add and Remove never modify the receiver, they return a
// new Dict whose root shares every untouched subtree with the old one. Old
// values stay fully usable, so any number of goroutines may read, iterate or
// derive from the same Dict without synchronisation.
//
// Layout:
//   - Every bucket holds at most Capacity slots in ascending key order
//   - A leaf bucket holds the key/value entries
//   - An inner bucket holds (boundary key, child) slots, where the boundary
//     is an upper bound for every key in the child, plus one "greater" child
//     for keys above every boundary
//   - All leaves are at the same depth; every bucket except the root is at
//     least half full
//
// Insertion splits a full bucket before descending into it, so a split never
// has to propagate upwards. Removal that leaves a child under half full
// rebuilds the child's parent from the flattened slots of all its children,
// which also lowers the tree by one level when the result fits in a single
// bucket.
package shareable
