package params

import (
	"errors"
	"fmt"
)

var (
	ErrNotFinite    = errors.New("value is not a finite number")
	ErrUnknownType  = errors.New("unknown leaf type")
	ErrPathNotFound = errors.New("path does not resolve to a numeric leaf")
	ErrTypeMismatch = errors.New("value type differs from leaf type")
)

// ValidationError reports edited text that does not parse as the leaf's
// fixed type. Nothing is sent or stored when it is returned.
type ValidationError struct {
	Path Path
	Type LeafType
	Text string
	Err  error
}

func (e *ValidationError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("%s: %q is not a valid %s value", e.Path, e.Text, e.Type)
	}
	return fmt.Sprintf("%q is not a valid %s value", e.Text, e.Type)
}

func (e *ValidationError) Unwrap() error { return e.Err }
