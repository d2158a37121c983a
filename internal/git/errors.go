package git

import (
	"errors"
	"fmt"
)

// ErrObjectNotFound is returned when the object store lacks a hash that a
// tree references. It signals a store/tree mismatch and is never retried.
var ErrObjectNotFound = errors.New("object not found")

// InputShapeError reports a malformed change tuple.
type InputShapeError struct {
	Index  int
	Reason string
}

func (e *InputShapeError) Error() string {
	return fmt.Sprintf("malformed change at index %d: %s", e.Index, e.Reason)
}

// FileAccessError reports a working-directory read failure.
type FileAccessError struct {
	Path string
	Op   string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}
