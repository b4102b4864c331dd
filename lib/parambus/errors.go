package parambus

import "errors"

var (
	ErrEmptyLine        = errors.New("empty command line")
	ErrUnknownModule    = errors.New("no module registered under that name")
	ErrMissingCommand   = errors.New("command line has no command")
	ErrMissingArgument  = errors.New("command needs an argument")
	ErrUnknownParameter = errors.New("unknown parameter")
)
