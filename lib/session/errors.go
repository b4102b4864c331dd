package session

import "errors"

var (
	ErrUnknownModule    = errors.New("unknown module tag")
	ErrUnknownParameter = errors.New("unknown parameter path")
)
