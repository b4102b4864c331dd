// Package params models a module's tunable parameters as a tree.
//
// A parameter subtree is the `cfg` mapping of one module entry in the robot
// configuration document. Every node of that mapping is classified exactly once
// into a Node variant:
//   - *Group: a nested mapping, walked in document order
//   - IntLeaf: an integer scalar, editable
//   - FloatLeaf: a real-valued scalar, editable
//   - Unsupported: sequences, strings, booleans, nulls and aliases
//
// Editable leaves are exposed as Descriptors. A leaf's type is fixed when the
// tree is loaded: text typed for an IntLeaf must parse as an integer, and a
// FloatLeaf is rendered with six fractional digits.
//
// Each leaf is addressed by a Path from the subtree root. ResolveCommandName
// maps a Path to the command name understood by the remote module, which is
// currently the last path component.
package params
