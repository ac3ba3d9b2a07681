package skyqa

import (
	"errors"
	"fmt"
)

// ErrObjectNotFound is returned by Catalog.Lookup when the object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// StorageError reports a failed query against the backing catalog.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// InferenceError reports that the reader failed to produce an answer.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference: %v", e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// MissingFieldError is returned when a context template references an attribute
// the object does not carry.
type MissingFieldError struct {
	Field  string
	Object string
}

func (e *MissingFieldError) Error() string {
	if e.Object == "" {
		return fmt.Sprintf("missing field %s", e.Field)
	}
	return fmt.Sprintf("missing field %s on %q", e.Field, e.Object)
}
