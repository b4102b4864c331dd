// Package tui is the interactive parameter editor: one tab per module, one
// row per editable leaf. Enter edits and applies a value on the remote
// process, ctrl+s writes every edited value back into the document.
package tui
