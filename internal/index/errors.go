package index

import "errors"

var (
	// ErrCollectAfterFinalize means the host delivered declarations after the
	// final pass was signalled.
	ErrCollectAfterFinalize = errors.New("declarations discovered after finalization")
	// ErrResolveTwice means Finalize was called more than once.
	ErrResolveTwice = errors.New("resolution entered twice")
	// ErrEmitState means Emit was called outside the Resolving state.
	ErrEmitState = errors.New("emit called in invalid session state")
	// ErrFaulted is returned by every operation of a faulted session.
	ErrFaulted = errors.New("session is faulted")
	// ErrUnknownType means the hierarchy has no node for a referenced type.
	ErrUnknownType = errors.New("type missing from hierarchy")
	// ErrAncestorCycle means an ancestor chain loops back on itself.
	ErrAncestorCycle = errors.New("ancestor chain contains a cycle")
)
