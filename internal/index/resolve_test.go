package index

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"busindex/internal/diag"
)

func collectAndFinalize(t *testing.T, f *fixture, cs ...Candidate) *Table {
	t.Helper()
	if err := f.session.Collect(Pass{Candidates: cs}); err != nil {
		t.Fatalf("collect: %v", err)
	}
	table, err := f.session.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return table
}

func TestNonPublicAncestorSkipsDerived(t *testing.T) {
	h := MapHierarchy{}
	h.Add(node("base", false, TypeID{}))
	h.Add(node("Derived", true, tid("base")))
	f := newFixture(h)

	table := collectAndFinalize(t, f, method("Derived", "OnEvent", basicExpr("string")))
	if table.Len() != 0 || !f.session.Skipped().Contains(tid("Derived")) {
		t.Fatalf("Derived must fall back: table=%+v", table)
	}
	if got := f.codes(diag.FbSuperNotPublic); len(got) != 1 {
		t.Fatalf("expected one FBK2002, got %v", f.bag.Items())
	}
}

func TestNonPublicEventType(t *testing.T) {
	h := MapHierarchy{}
	h.Add(node("Foo", true, TypeID{}))
	f := newFixture(h)

	table := collectAndFinalize(t, f,
		method("Foo", "OnEvent", basicExpr("string")),
		method("Foo", "OnSecret", namedExpr(appPkg, "secret", false)),
	)
	if table.Len() != 0 || !f.session.Skipped().Contains(tid("Foo")) {
		t.Fatalf("a public type with a non-public own event must fall back")
	}
	if got := f.codes(diag.FbEventNotPublic); len(got) != 1 {
		t.Fatalf("expected one FBK2003, got %v", f.bag.Items())
	}
}

func TestAncestorNonPublicEventType(t *testing.T) {
	h := MapHierarchy{}
	h.Add(node("Base", true, TypeID{}))
	h.Add(node("Derived", true, tid("Base")))
	f := newFixture(h)

	table := collectAndFinalize(t, f,
		method("Base", "OnSecret", namedExpr(appPkg, "secret", false)),
		method("Derived", "OnEvent", basicExpr("string")),
	)
	if table.Len() != 0 {
		t.Fatalf("both types must fall back, got %+v", table)
	}
	if len(f.codes(diag.FbEventNotPublic)) != 1 || len(f.codes(diag.FbSuperEventNotPublic)) != 1 {
		t.Fatalf("expected FBK2003 for Base and FBK2004 for Derived, got %v", f.bag.Items())
	}
}

func TestFirstViolationWins(t *testing.T) {
	h := MapHierarchy{}
	h.Add(node("base", false, TypeID{}))
	h.Add(node("Derived", true, tid("base")))
	f := newFixture(h)

	collectAndFinalize(t, f, method("Derived", "OnSecret", namedExpr(appPkg, "secret", false)))
	skipped := f.codes(diag.FbEventNotPublic)
	if len(skipped) != 1 || len(f.codes(diag.FbSuperNotPublic)) != 0 {
		t.Fatalf("only the first violation along the walk is reported, got %v", f.bag.Items())
	}
}

func TestPlatformAncestorEndsWalk(t *testing.T) {
	platform := TypeID{PkgPath: "sync", Name: "mutexWrapper"}
	h := MapHierarchy{}
	h.Add(node("Foo", true, platform))
	// Deliberately absent from h: a platform ancestor is never looked up.
	f := newFixture(h)

	table := collectAndFinalize(t, f, method("Foo", "OnEvent", basicExpr("string")))
	if table.Len() != 1 || f.session.Skipped().Len() != 0 {
		t.Fatalf("platform ancestor must neither fault nor force fallback: %+v", table)
	}
}

func TestInheritedOrderNearestFirst(t *testing.T) {
	h := MapHierarchy{}
	h.Add(node("Base", true, TypeID{}))
	h.Add(node("Mid", true, tid("Base")))
	h.Add(node("Leaf", true, tid("Mid")))
	f := newFixture(h)

	table := collectAndFinalize(t, f,
		method("Base", "OnA", basicExpr("string")),
		method("Base", "OnB", basicExpr("int")),
		method("Mid", "OnB", basicExpr("int")),
		method("Leaf", "OnC", basicExpr("bool")),
		method("Leaf", "OnA", basicExpr("float64")),
	)

	leaf, ok := table.Lookup(tid("Leaf"))
	if !ok {
		t.Fatalf("Leaf missing")
	}
	type row struct {
		Declaring string
		Method    string
		Event     string
		Inherited bool
	}
	var got []row
	for _, e := range leaf.Entries {
		got = append(got, row{e.Declaring.Name, e.Method, e.Event.Key, e.Inherited})
	}
	want := []row{
		{"Leaf", "OnC", "bool", false},
		{"Leaf", "OnA", "float64", false},
		{"Mid", "OnB", "int", true},
		{"Base", "OnA", "string", true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entries (-want +got):\n%s", diff)
	}

	var order []string
	for _, s := range table.Subscribers {
		order = append(order, s.Type.Name)
	}
	if diff := cmp.Diff([]string{"Base", "Leaf", "Mid"}, order); diff != "" {
		t.Fatalf("subscribers must be sorted by type (-want +got):\n%s", diff)
	}
	if table.Entries() != 2+2+4 {
		t.Errorf("unexpected entry total %d", table.Entries())
	}
}

func TestResolutionIsIdempotent(t *testing.T) {
	h := MapHierarchy{}
	h.Add(node("Base", true, TypeID{}))
	h.Add(node("Derived", true, tid("Base")))
	h.Add(node("hidden", false, TypeID{}))

	reg := NewRegistry()
	for _, c := range []Candidate{
		method("Base", "OnA", basicExpr("string")),
		method("Derived", "OnA", basicExpr("string")),
		method("Derived", "OnB", namedExpr("example.com/app/events", "Login", true)),
		method("hidden", "OnA", basicExpr("string")),
	} {
		decl, ok := Validate(c, diag.NopReporter{})
		if !ok {
			t.Fatalf("candidate rejected: %+v", c)
		}
		reg.Register(decl)
	}
	ns := NewNamespace(appPkg)

	run := func() *Table {
		skip, err := ResolveVisibility(reg, h, ns, diag.NopReporter{})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		table, err := Merge(reg, skip, h, ns, diag.NopReporter{})
		if err != nil {
			t.Fatalf("merge: %v", err)
		}
		return table
	}
	first, second := run(), run()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second run differs (-first +second):\n%s", diff)
	}
	if first.Len() != 2 {
		t.Fatalf("expected Base and Derived, got %d", first.Len())
	}
}

func TestNamespaceContains(t *testing.T) {
	ns := NewNamespace("example.com/app/", "example.com/lib/...", " ")
	tests := map[string]bool{
		"example.com/app":        true,
		"example.com/app/events": true,
		"example.com/apparel":    false,
		"example.com/lib/x":      true,
		"sync":                   false,
	}
	for path, want := range tests {
		if got := ns.Contains(path); got != want {
			t.Errorf("Contains(%q) = %v, want %v", path, got, want)
		}
	}
	if !NewNamespace().Contains("anything") {
		t.Errorf("empty namespace contains everything")
	}
	if diff := cmp.Diff([]string{"example.com/app", "example.com/lib"}, ns.Prefixes()); diff != "" {
		t.Errorf("prefixes (-want +got):\n%s", diff)
	}
}

func TestChain(t *testing.T) {
	h := MapHierarchy{}
	h.Add(node("A", true, TypeID{}))
	h.Add(node("B", true, tid("A")))
	h.Add(node("C", true, tid("B")))
	got, err := Chain(h, NewNamespace(appPkg), tid("C"))
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if diff := cmp.Diff([]TypeID{tid("C"), tid("B"), tid("A")}, got); diff != "" {
		t.Fatalf("chain (-want +got):\n%s", diff)
	}
}
