package oerror

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is wrapped by every error returned because a caller passed a parameter outside
// of the range an operation accepts.
var ErrInvalidArgument = errors.New("invalid argument")

type ReplicaError struct {
	Err string
}

func New(format string, args ...any) *ReplicaError {
	if len(args) == 0 {
		return &ReplicaError{Err: format}
	}
	return &ReplicaError{Err: fmt.Sprintf(format, args...)}
}

func (e *ReplicaError) Error() string {
	return e.Err
}

// InvalidArgument returns an error wrapping ErrInvalidArgument with the formatted message.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
