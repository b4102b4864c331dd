package channel

import (
	"errors"
	"fmt"
)

// ErrInvalidToken is returned for a command token that is empty or contains
// whitespace, which would corrupt the line framing.
var ErrInvalidToken = errors.New("command token is empty or contains whitespace")

// ConnectionError reports that a channel could not be established.
type ConnectionError struct {
	Address string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot connect to %s: %v", e.Address, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
