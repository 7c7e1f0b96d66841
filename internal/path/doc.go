// Package path parses dot-separated path strings and reads and writes the
// values they address inside a tree.Value.
//
// A path is parsed once into a sequence of segments:
//
//	"party.0.hp"  -> Key("party"), Index(0), Key("hp")
//	"party.*.hp"  -> Key("party"), Wildcard, Key("hp")   (ParsePattern only)
//
// Digit-only segments in canonical decimal form ("0", "12", not "007") parse
// as Index. An Index applied to an Object addresses the key with the same
// decimal spelling, so "scores.3" works whether scores is an array or a map
// keyed by numbers. The empty string is the root path.
//
// Writes are copy-on-write: Set and Delete reallocate only the containers on
// the path's spine and reuse every other subtree by reference. Wildcards are
// never valid in a write path.
package path
