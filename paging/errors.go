package paging

import (
	"errors"
	"fmt"
)

var (
	// ErrDone is returned by Engine.Next once the sequence is exhausted.
	ErrDone = errors.New("paging: no more items")

	// ErrCanceled reports that the enumeration was canceled by the caller.
	ErrCanceled = errors.New("paging: enumeration canceled")

	// ErrUnexpectedData reports a response the engine cannot trust.
	ErrUnexpectedData = errors.New("paging: unexpected data")

	// ErrContinuationLoop matches every *ContinuationLoopError.
	ErrContinuationLoop = errors.New("paging: continuation loop")
)

// ContinuationLoopError is raised when the server keeps handing back the
// same continuation marker.
type ContinuationLoopError struct {
	List     string
	Marker   Marker
	Fetches  int
	Behavior LoopBehavior
}

func (e *ContinuationLoopError) Error() string {
	return fmt.Sprintf("continuation loop in %s: marker %s repeated after %d fetches (behavior %s)",
		e.List, e.Marker, e.Fetches, e.Behavior)
}

// Is lets callers match the error with ErrContinuationLoop or ErrUnexpectedData.
func (e *ContinuationLoopError) Is(target error) bool {
	return target == ErrContinuationLoop || target == ErrUnexpectedData
}

// IsContinuationLoop reports whether err is or wraps a continuation loop error.
func IsContinuationLoop(err error) bool {
	var loopErr *ContinuationLoopError
	return errors.As(err, &loopErr)
}

// DecodeError wraps a failure to decode one raw item.
type DecodeError struct {
	List  string
	Batch int
	Index int
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s batch %d item %d: %v", e.List, e.Batch, e.Index, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
