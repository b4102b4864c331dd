package document

import (
	"errors"
	"fmt"
)

// ErrNilDocument is returned when saving a nil document.
var ErrNilDocument = errors.New("nil document")

// ParseWarning describes why a document was loaded empty.
type ParseWarning struct {
	Path string
	Err  error
}

func (w *ParseWarning) Error() string {
	return fmt.Sprintf("document %s could not be loaded, using an empty document: %v", w.Path, w.Err)
}

func (w *ParseWarning) Unwrap() error { return w.Err }

// IOError reports a failed save. The file on disk is left as it was.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("save %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
