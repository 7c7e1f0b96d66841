// Package tree provides the schema-less value model every other statetree
// package operates on.
//
// A state tree is built from plain maps, ordered sequences and scalars.
// This package imports nothing internal; all other packages import tree.
//
// Key design constraints:
//   - Value is a sealed interface (Null, String, Int, Float, Bool, Array, Object)
//   - A nil Value means "absent"; JSON null is the explicit Null{}
//   - Trees are immutable by convention: writers copy the spine they change
//     and share every other subtree by reference (see Same)
//   - Object keys are iterated in RFC 8785 order (SortedKeys) for determinism
package tree
