// Package paramsync keeps edited parameters, the remote process and the
// configuration document in step.
//
// An Engine holds one Binding per editable leaf. A Binding ties a leaf of a
// module's parameter subtree to the command name it resolves to and to the
// Sender that carries its commands. Two flows use it:
//
//   - Apply parses one edit with the leaf's fixed type and, when it parses,
//     sends it to the remote module. Nothing is acknowledged.
//   - PullAll copies the text of every binding back into the document, leaf
//     by leaf, skipping any leaf whose text does not parse.
//
// The document is only written to disk by SaveToStore, which callers run
// after PullAll.
package paramsync
