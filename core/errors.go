package core

import (
	"errors"
	"fmt"

	"github.com/nasdf/quill/object"
)

var (
	// ErrMalformedOperation is returned when an operation references an unknown
	// object or is not valid for its target.
	ErrMalformedOperation = errors.New("malformed operation")
	// ErrTargetNotFound is returned when a list operation references an
	// unknown or deleted position.
	ErrTargetNotFound = fmt.Errorf("%w: target not found", ErrMalformedOperation)
	// ErrUnsatisfiableDependency is returned for batches whose dependencies can never be met.
	ErrUnsatisfiableDependency = errors.New("unsatisfiable dependency")
	// ErrReadOnly is returned when mutating outside of a change.
	ErrReadOnly = errors.New("document is read only outside of a change")
	// ErrChangeInProgress is returned when a change is started while another one is open.
	ErrChangeInProgress = errors.New("change already in progress")
	// ErrDuplicateObjectID is returned when an object id is created twice.
	ErrDuplicateObjectID = errors.New("duplicate object id")
	// ErrIdentityCollision is returned when two different batches share an actor and sequence number.
	ErrIdentityCollision = errors.New("batch identity collision")
	// ErrPendingLimit is returned when too many batches are waiting for their dependencies.
	ErrPendingLimit = errors.New("pending batch limit exceeded")
)

// OperationError describes the operation that caused a batch to be rejected.
type OperationError struct {
	Actor  object.ActorID
	Seq    uint64
	Index  int
	Action Action
	Err    error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("batch %s/%d op %d (%s): %s", e.Actor, e.Seq, e.Index, e.Action, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedOperation, fmt.Sprintf(format, args...))
}
