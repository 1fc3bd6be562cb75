package index

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"busindex/internal/diag"
	"busindex/subscriber"
)

func TestScenarioPublicSubscriber(t *testing.T) {
	h := MapHierarchy{}
	h.Add(node("Foo", true, TypeID{}))
	f := newFixture(h)

	if err := f.session.Collect(Pass{Candidates: []Candidate{method("Foo", "OnEvent", basicExpr("string"))}}); err != nil {
		t.Fatalf("collect: %v", err)
	}
	table, err := f.session.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	want := []Subscriber{{
		Type: tid("Foo"),
		Loc:  h[tid("Foo")].Loc,
		Entries: []Entry{{Declaration: Declaration{
			Declaring:  tid("Foo"),
			Method:     "OnEvent",
			Event:      basicExpr("string"),
			ThreadMode: subscriber.Main,
			Priority:   0,
			Sticky:     false,
			Loc:        method("Foo", "OnEvent", basicExpr("string")).Loc,
		}}},
	}}
	if diff := cmp.Diff(want, table.Subscribers); diff != "" {
		t.Fatalf("table mismatch (-want +got):\n%s", diff)
	}
	if f.session.State() != StateResolving {
		t.Errorf("expected resolving, got %s", f.session.State())
	}
}

func TestScenarioNonPublicType(t *testing.T) {
	h := MapHierarchy{}
	h.Add(TypeNode{ID: tid("bar"), Public: false})
	f := newFixture(h)

	c := method("bar", "OnEvent", basicExpr("string"))
	if err := f.session.Collect(Pass{Candidates: []Candidate{c}}); err != nil {
		t.Fatalf("collect: %v", err)
	}
	table, err := f.session.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if table.Len() != 0 {
		t.Fatalf("bar must not be indexed: %+v", table)
	}
	if !f.session.Skipped().Contains(tid("bar")) || f.session.Skipped().Len() != 1 {
		t.Fatalf("expected skip set {bar}, got %v", f.session.Skipped().Types())
	}
	notes := f.codes(diag.FbClassNotPublic)
	if len(notes) != 1 || notes[0].Severity != diag.SevInfo || !strings.Contains(notes[0].Message, "class is not public") {
		t.Fatalf("expected one info 'class is not public', got %v", notes)
	}
}

func TestScenarioOverrideWins(t *testing.T) {
	h := MapHierarchy{}
	h.Add(node("Base", true, TypeID{}))
	h.Add(node("Derived", true, tid("Base")))
	f := newFixture(h)

	err := f.session.Collect(Pass{Candidates: []Candidate{
		method("Base", "OnEvent", basicExpr("int")),
		method("Derived", "OnEvent", basicExpr("int")),
	}})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	table, err := f.session.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	derived, ok := table.Lookup(tid("Derived"))
	if !ok {
		t.Fatalf("Derived missing from table")
	}
	if len(derived.Entries) != 1 {
		t.Fatalf("expected exactly one entry, got %+v", derived.Entries)
	}
	if derived.Entries[0].Declaring != tid("Derived") || derived.Entries[0].Inherited {
		t.Errorf("override must be attributed to Derived: %+v", derived.Entries[0])
	}
	if base, ok := table.Lookup(tid("Base")); !ok || len(base.Entries) != 1 {
		t.Errorf("Base keeps its own entry: %+v", base)
	}
}

func TestScenarioNothingFound(t *testing.T) {
	f := newFixture(MapHierarchy{})
	if err := f.session.Collect(Pass{Label: "example.com/app"}); err != nil {
		t.Fatalf("collect: %v", err)
	}
	if f.session.State() != StateIdle {
		t.Fatalf("empty pass must not leave Idle, got %s", f.session.State())
	}
	table, err := f.session.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if table.Len() != 0 {
		t.Fatalf("expected empty table")
	}
	if f.session.State() != StateDone {
		t.Fatalf("expected done, got %s", f.session.State())
	}
	warnings := f.codes(diag.SubNoneFound)
	if len(warnings) != 1 || warnings[0].Severity != diag.SevWarning {
		t.Fatalf("expected one warning, got %v", f.bag.Items())
	}
	if f.bag.HasErrors() {
		t.Fatalf("no errors expected: %v", f.bag.Items())
	}
	emitted := false
	err = f.session.Emit(context.Background(), EmitterFunc(func(context.Context, *Table) error {
		emitted = true
		return nil
	}))
	if !errors.Is(err, ErrEmitState) || emitted {
		t.Fatalf("emit after an empty session must be refused, err=%v emitted=%v", err, emitted)
	}
}

func TestRepeatedDeliveryRegistersOnce(t *testing.T) {
	h := MapHierarchy{}
	h.Add(node("Foo", true, TypeID{}))
	f := newFixture(h)

	valid := method("Foo", "OnEvent", basicExpr("string"))
	invalid := method("Foo", "OnOther", basicExpr("string"))
	invalid.Params = nil

	for i := 0; i < 3; i++ {
		if err := f.session.Collect(Pass{Candidates: []Candidate{valid, invalid}}); err != nil {
			t.Fatalf("collect %d: %v", i, err)
		}
	}
	if got := f.session.Registry().Count(); got != 1 {
		t.Fatalf("expected one declaration, got %d", got)
	}
	if got := len(f.codes(diag.SubParamCount)); got != 1 {
		t.Fatalf("expected one parameter-count error, got %d", got)
	}
	if f.session.Passes() != 3 {
		t.Errorf("expected 3 passes, got %d", f.session.Passes())
	}
}

func TestRegistryKeepsOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(Declaration{Declaring: tid("B"), Method: "One"})
	r.Register(Declaration{Declaring: tid("A"), Method: "Two"})
	r.Register(Declaration{Declaring: tid("B"), Method: "Three"})

	if diff := cmp.Diff([]TypeID{tid("B"), tid("A")}, r.Types()); diff != "" {
		t.Fatalf("types order (-want +got):\n%s", diff)
	}
	methods, ok := r.MethodsOf(tid("B"))
	if !ok || len(methods) != 2 || methods[1].Method != "Three" {
		t.Fatalf("unexpected methods %+v", methods)
	}
	if _, ok := r.MethodsOf(tid("Unknown")); ok {
		t.Fatalf("unknown type must not be found")
	}
	if r.Len() != 2 || r.Count() != 3 {
		t.Errorf("len=%d count=%d", r.Len(), r.Count())
	}
}

func TestFinalizeTwiceFaults(t *testing.T) {
	h := MapHierarchy{}
	h.Add(node("Foo", true, TypeID{}))
	f := newFixture(h)
	_ = f.session.Collect(Pass{Candidates: []Candidate{method("Foo", "OnEvent", basicExpr("string"))}})

	if _, err := f.session.Finalize(); err != nil {
		t.Fatalf("first finalize: %v", err)
	}
	if _, err := f.session.Finalize(); !errors.Is(err, ErrResolveTwice) {
		t.Fatalf("expected ErrResolveTwice, got %v", err)
	}
	if f.session.State() != StateFaulted {
		t.Fatalf("expected faulted, got %s", f.session.State())
	}
	if len(f.codes(diag.SesResolveTwice)) != 1 {
		t.Fatalf("violation must be reported")
	}
	if err := f.session.Emit(context.Background(), EmitterFunc(func(context.Context, *Table) error { return nil })); !errors.Is(err, ErrFaulted) {
		t.Fatalf("faulted session must refuse emit, got %v", err)
	}
}

func TestCollectAfterEmitFaults(t *testing.T) {
	h := MapHierarchy{}
	h.Add(node("Foo", true, TypeID{}))
	f := newFixture(h)
	_ = f.session.Collect(Pass{Candidates: []Candidate{method("Foo", "OnEvent", basicExpr("string"))}})
	if _, err := f.session.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	var got *Table
	err := f.session.Emit(context.Background(), EmitterFunc(func(_ context.Context, tbl *Table) error {
		got = tbl
		return nil
	}))
	if err != nil || got.Len() != 1 {
		t.Fatalf("emit: err=%v table=%v", err, got)
	}
	if f.session.State() != StateEmitted {
		t.Fatalf("expected emitted, got %s", f.session.State())
	}

	if err := f.session.Collect(Pass{}); err != nil {
		t.Fatalf("empty pass after emit is harmless, got %v", err)
	}
	err = f.session.Collect(Pass{Candidates: []Candidate{method("Foo", "OnLate", basicExpr("int"))}})
	if !errors.Is(err, ErrCollectAfterFinalize) {
		t.Fatalf("expected ErrCollectAfterFinalize, got %v", err)
	}
	if f.session.State() != StateFaulted || len(f.codes(diag.SesCollectAfterFinalize)) != 1 {
		t.Fatalf("late declarations must fault loudly: %s %v", f.session.State(), f.bag.Items())
	}
	if f.session.Registry().Count() != 1 {
		t.Fatalf("late declaration must not be absorbed")
	}
}

func TestEmitFailureFaults(t *testing.T) {
	h := MapHierarchy{}
	h.Add(node("Foo", true, TypeID{}))
	f := newFixture(h)
	_ = f.session.Collect(Pass{Candidates: []Candidate{method("Foo", "OnEvent", basicExpr("string"))}})
	if _, err := f.session.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	boom := errors.New("disk full")
	err := f.session.Emit(context.Background(), EmitterFunc(func(context.Context, *Table) error { return boom }))
	if !errors.Is(err, boom) || f.session.State() != StateFaulted {
		t.Fatalf("expected fault, got err=%v state=%s", err, f.session.State())
	}
	if !errors.Is(f.session.Close(), boom) {
		t.Errorf("Close must report the fault")
	}
}

func TestCloseLifecycle(t *testing.T) {
	h := MapHierarchy{}
	h.Add(node("Foo", true, TypeID{}))
	f := newFixture(h)
	if err := f.session.Close(); err == nil {
		t.Fatalf("closing an unfinalized session must fail")
	}
	_ = f.session.Collect(Pass{Candidates: []Candidate{method("Foo", "OnEvent", basicExpr("string"))}})
	_, _ = f.session.Finalize()
	_ = f.session.Emit(context.Background(), EmitterFunc(func(context.Context, *Table) error { return nil }))
	if err := f.session.Close(); err != nil || f.session.State() != StateDone {
		t.Fatalf("close: err=%v state=%s", err, f.session.State())
	}
}

func TestStructuralFaults(t *testing.T) {
	t.Run("missing ancestor node", func(t *testing.T) {
		h := MapHierarchy{}
		h.Add(node("Foo", true, tid("Ghost")))
		f := newFixture(h)
		_ = f.session.Collect(Pass{Candidates: []Candidate{method("Foo", "OnEvent", basicExpr("string"))}})
		table, err := f.session.Finalize()
		if !errors.Is(err, ErrUnknownType) || table != nil {
			t.Fatalf("expected ErrUnknownType and no table, got %v %v", err, table)
		}
		if f.session.State() != StateFaulted || len(f.codes(diag.SesStructuralFault)) != 1 {
			t.Fatalf("fault must be reported")
		}
	})
	t.Run("cycle", func(t *testing.T) {
		h := MapHierarchy{}
		h.Add(node("A", true, tid("B")))
		h.Add(node("B", true, tid("A")))
		f := newFixture(h)
		_ = f.session.Collect(Pass{Candidates: []Candidate{method("A", "OnEvent", basicExpr("string"))}})
		if _, err := f.session.Finalize(); !errors.Is(err, ErrAncestorCycle) {
			t.Fatalf("expected ErrAncestorCycle, got %v", err)
		}
	})
	t.Run("panicking hierarchy", func(t *testing.T) {
		f := newFixture(panicHierarchy{})
		_ = f.session.Collect(Pass{Candidates: []Candidate{method("A", "OnEvent", basicExpr("string"))}})
		if _, err := f.session.Finalize(); err == nil || f.session.State() != StateFaulted {
			t.Fatalf("panic must fault the session, err=%v", err)
		}
		if err := f.session.Collect(Pass{Candidates: []Candidate{method("A", "OnEvent", basicExpr("string"))}}); !errors.Is(err, ErrFaulted) {
			t.Fatalf("expected ErrFaulted, got %v", err)
		}
	})
}

type panicHierarchy struct{}

func (panicHierarchy) Node(TypeID) (TypeNode, bool) { panic("malformed type information") }
