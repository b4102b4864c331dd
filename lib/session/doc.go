// Package session wires a loaded document, the sync engine and one command
// channel per configured module into a single editing session. Front ends
// (the TUI editor and the one-shot CLI commands) drive a Session rather than
// the lower layers.
package session
