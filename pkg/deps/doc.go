// Package deps resolves the transitive dependencies of a lingo project.
//
// # Overview
//
// Resolution happens in two phases:
//
//  1. [Puller.Pull] walks the dependency declarations breadth first. Every
//     package is fetched into a scratch directory, checksummed, moved into
//     the content-addressed store and its Lingo.toml parsed. The result is a
//     tree of [TreeNode] values, one per (name, source) pair encountered.
//  2. [Flatten] reduces that tree to exactly one node per package name by
//     intersecting every requirement declared for the name and selecting the
//     highest version that satisfies all of them.
//
// The flat selection is what the lock file records.
//
// # Cycles and diamonds
//
// Packages are identified by name and source (including any git lock). A
// package reached a second time through another path is not fetched again;
// the existing node is linked as a child of the new parent and the new
// requirement is checked against it. Mutually dependent packages therefore
// resolve instead of looping, and [TreeNode.Aggregate] visits every node
// exactly once.
//
// # Selection
//
// When several candidates of one name satisfy all requirements the highest
// version wins. Equal versions are resolved by the smallest depth below the
// project and then by discovery order, which makes the choice independent
// of map iteration. [FlattenStrict] instead reports AMBIGUOUS_VERSION when
// the tied candidates differ in content.
package deps
