package chat

import (
	"errors"
	"fmt"
)

// ErrBackendUnavailable means no assistant backend is configured.
var ErrBackendUnavailable = errors.New("assistant backend unavailable")

// BackendError is a transient transport or parse failure.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("assistant backend %s failed: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
