package index

import (
	"context"
	"errors"
	"fmt"

	"busindex/internal/diag"
	"busindex/internal/source"
)

// State is the lifecycle state of a Session.
type State uint8

const (
	StateIdle State = iota
	StateCollecting
	StateResolving
	StateEmitted
	StateDone
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCollecting:
		return "collecting"
	case StateResolving:
		return "resolving"
	case StateEmitted:
		return "emitted"
	case StateDone:
		return "done"
	case StateFaulted:
		return "faulted"
	}
	return "unknown"
}

// Emitter writes the merged table to an artifact.
type Emitter interface {
	Emit(ctx context.Context, t *Table) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ctx context.Context, t *Table) error

// Emit implements Emitter.
func (f EmitterFunc) Emit(ctx context.Context, t *Table) error { return f(ctx, t) }

// Config wires a session to its host.
type Config struct {
	Hierarchy Hierarchy
	Namespace Namespace
	Reporter  diag.Reporter
}

type declKey struct {
	owner  TypeID
	method string
	event  string
}

// Session owns the registry, skip set and merged table of one indexing run.
// It is not safe for concurrent use; the host drives it pass by pass.
type Session struct {
	hier     Hierarchy
	ns       Namespace
	reporter diag.Reporter

	state    State
	registry *Registry
	skip     *SkipSet
	table    *Table
	seen     map[declKey]struct{}
	passes   int
	fault    error
}

// NewSession creates a session in the Idle state. Diagnostics are deduplicated
// so a declaration re-delivered by a later pass is reported once.
func NewSession(cfg Config) *Session {
	rep := cfg.Reporter
	if rep == nil {
		rep = diag.NopReporter{}
	}
	return &Session{
		hier:     cfg.Hierarchy,
		ns:       cfg.Namespace,
		reporter: diag.NewDedupReporter(rep),
		state:    StateIdle,
		registry: NewRegistry(),
		seen:     make(map[declKey]struct{}),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Registry exposes the accumulated declarations (read-only use).
func (s *Session) Registry() *Registry { return s.registry }

// Skipped returns the types flagged for reflective fallback; nil before Finalize.
func (s *Session) Skipped() *SkipSet { return s.skip }

// Table returns the merged table; nil before a successful Finalize.
func (s *Session) Table() *Table { return s.table }

// Err returns the fault that ended the session, if any.
func (s *Session) Err() error { return s.fault }

// Passes returns how many passes were collected.
func (s *Session) Passes() int { return s.passes }

// Collect validates and registers one pass of candidates.
func (s *Session) Collect(p Pass) error {
	switch s.state {
	case StateFaulted:
		return ErrFaulted
	case StateResolving, StateEmitted, StateDone:
		if len(p.Candidates) == 0 {
			return nil
		}
		s.violation(diag.SesCollectAfterFinalize,
			fmt.Sprintf("Unexpected processing state: %d declarations still arriving in state %s", len(p.Candidates), s.state))
		return ErrCollectAfterFinalize
	}

	s.passes++
	number := p.Number
	if number == 0 {
		number = s.passes
	}
	msg := fmt.Sprintf("Processing pass %d, new candidates: %d", number, len(p.Candidates))
	if p.Label != "" {
		msg = fmt.Sprintf("Processing pass %d (%s), new candidates: %d", number, p.Label, len(p.Candidates))
	}
	diag.ReportInfo(s.reporter, diag.SesInfo, source.NoLocation, msg).Emit()

	if len(p.Candidates) == 0 {
		return nil
	}
	s.state = StateCollecting
	for _, c := range p.Candidates {
		decl, ok := Validate(c, s.reporter)
		if !ok {
			continue
		}
		key := declKey{owner: decl.Declaring, method: decl.Method, event: decl.Event.Key}
		if _, dup := s.seen[key]; dup {
			continue
		}
		s.seen[key] = struct{}{}
		s.registry.Register(decl)
	}
	return nil
}

// Finalize signals that no more passes will arrive and runs the visibility
// resolver and the hierarchy merger, exactly once. With nothing registered it
// warns and moves straight to Done with an empty table.
func (s *Session) Finalize() (table *Table, err error) {
	switch s.state {
	case StateFaulted:
		return nil, ErrFaulted
	case StateResolving, StateEmitted, StateDone:
		s.violation(diag.SesResolveTwice,
			fmt.Sprintf("Unexpected processing state: resolution requested again in state %s", s.state))
		return nil, ErrResolveTwice
	}
	s.state = StateResolving

	defer func() {
		if rec := recover(); rec != nil {
			table, err = nil, s.faultWith(fmt.Errorf("panic during resolution: %v", rec))
		}
	}()

	if s.registry.Len() == 0 {
		diag.ReportWarning(s.reporter, diag.SubNoneFound, source.NoLocation,
			"No eventbus:subscribe annotations found").Emit()
		s.skip = NewSkipSet()
		s.table = &Table{}
		s.state = StateDone
		return s.table, nil
	}
	if s.hier == nil {
		return nil, s.faultWith(errors.New("no type hierarchy configured"))
	}

	skip, err := ResolveVisibility(s.registry, s.hier, s.ns, s.reporter)
	if err != nil {
		return nil, s.faultWith(fmt.Errorf("visibility resolution: %w", err))
	}
	merged, err := Merge(s.registry, skip, s.hier, s.ns, s.reporter)
	if err != nil {
		return nil, s.faultWith(fmt.Errorf("hierarchy merge: %w", err))
	}
	s.skip = skip
	s.table = merged
	return merged, nil
}

// Emit hands the merged table to e. Valid only right after a Finalize that
// found declarations.
func (s *Session) Emit(ctx context.Context, e Emitter) error {
	switch s.state {
	case StateFaulted:
		return ErrFaulted
	case StateResolving:
	default:
		s.violation(diag.SesEmitState, fmt.Sprintf("Unexpected processing state: emit requested in state %s", s.state))
		return ErrEmitState
	}
	if err := e.Emit(ctx, s.table); err != nil {
		diag.ReportError(s.reporter, diag.SesEmitFailed, source.NoLocation,
			fmt.Sprintf("could not write subscriber index: %v", err)).Emit()
		s.state = StateFaulted
		s.fault = err
		return err
	}
	s.state = StateEmitted
	return nil
}

// Close ends a resolved session. A faulted session returns its fault; closing
// before Finalize is an error and leaves the state unchanged.
func (s *Session) Close() error {
	switch s.state {
	case StateEmitted, StateDone:
		s.state = StateDone
		return nil
	case StateFaulted:
		return s.fault
	case StateResolving:
		// resolved but the host chose not to emit
		s.state = StateDone
		return nil
	}
	return fmt.Errorf("close in state %s: session was never finalized", s.state)
}

func (s *Session) violation(code diag.Code, msg string) {
	diag.ReportError(s.reporter, code, source.NoLocation, msg).Emit()
	s.state = StateFaulted
	if s.fault == nil {
		s.fault = errors.New(msg)
	}
}

func (s *Session) faultWith(err error) error {
	diag.ReportError(s.reporter, diag.SesStructuralFault, source.NoLocation,
		fmt.Sprintf("Unexpected error in busindex: %v", err)).Emit()
	s.state = StateFaulted
	s.fault = err
	return err
}
