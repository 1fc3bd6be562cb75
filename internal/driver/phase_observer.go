package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a pipeline phase boundary.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration // set on PhaseEnd
	Err     error         // set on PhaseEnd when the phase failed
}

// PhaseObserver receives phase events emitted by Generate and Check.
type PhaseObserver func(PhaseEvent)
