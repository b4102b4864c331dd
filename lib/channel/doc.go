// Package channel implements the command channel to a remote module.
//
// A Channel is one TCP connection carrying one module's command stream. Every
// command is a single UTF-8 line:
//
//	<moduleTag> <commandName> <argument>\n
//
// Lines are written whole under a mutex, so concurrent senders never
// interleave bytes. The protocol is fire-and-forget: nothing is ever read back
// from the remote side. When a write fails the channel drops its connection
// and every later send is a silent no-op; there is no reconnect.
package channel
