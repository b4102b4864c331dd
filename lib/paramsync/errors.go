package paramsync

import "errors"

// ErrNotConnected is returned by Apply for a binding registered without a
// sender, typically because its channel could not be established.
var ErrNotConnected = errors.New("module has no command channel")
