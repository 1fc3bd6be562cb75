package index

import (
	"strings"

	"busindex/internal/source"
	"busindex/subscriber"
)

// TypeID identifies a declared type by import path and name.
type TypeID struct {
	PkgPath string
	Name    string
}

// IsZero reports whether the id is unset (no ancestor, no receiver).
func (id TypeID) IsZero() bool {
	return id.PkgPath == "" && id.Name == ""
}

func (id TypeID) String() string {
	if id.PkgPath == "" {
		return id.Name
	}
	return id.PkgPath + "." + id.Name
}

// Short returns the package-name-qualified form, e.g. "events.Login".
func (id TypeID) Short() string {
	if id.PkgPath == "" {
		return id.Name
	}
	pkg := id.PkgPath
	if i := strings.LastIndexByte(pkg, '/'); i >= 0 {
		pkg = pkg[i+1:]
	}
	return pkg + "." + id.Name
}

// Less orders ids by package path then name.
func (id TypeID) Less(other TypeID) bool {
	if id.PkgPath != other.PkgPath {
		return id.PkgPath < other.PkgPath
	}
	return id.Name < other.Name
}

// TypeExpr is a Go type expression as seen by the host.
//
// Text keeps package references as $N placeholders indexing into Pkgs so the
// emitter can choose import names, e.g. Text "*$0.Login", Pkgs
// ["example.com/app/events"].
type TypeExpr struct {
	Key    string // fully qualified canonical form, used for signature identity
	Text   string
	Pkgs   []string
	Name   string // short display form
	Public bool
}

func (t TypeExpr) String() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Key
}

// TypeNode is a declared type together with its single ancestor link.
// Ancestor is a lookup relation only; the zero TypeID means "no ancestor".
type TypeNode struct {
	ID       TypeID
	Public   bool
	Ancestor TypeID
	Embeds   []TypeID // embedded named types in declaration order
	Loc      source.Location
}

// Hierarchy resolves type nodes. Implementations must return every type that
// appears as a declaring type or as an in-namespace ancestor.
type Hierarchy interface {
	Node(id TypeID) (TypeNode, bool)
}

// MapHierarchy is a Hierarchy backed by a map. Useful for hosts that build
// the whole graph up front and for synthetic chains in tests.
type MapHierarchy map[TypeID]TypeNode

// Node implements Hierarchy.
func (m MapHierarchy) Node(id TypeID) (TypeNode, bool) {
	n, ok := m[id]
	return n, ok
}

// Add inserts or replaces a node.
func (m MapHierarchy) Add(n TypeNode) {
	m[n.ID] = n
}

// Namespace is the set of import-path prefixes owned by the indexed codebase.
// Types outside it are platform types: ancestor walks stop there.
type Namespace struct {
	prefixes []string
}

// NewNamespace builds a namespace from import-path prefixes. An empty namespace
// contains every package.
func NewNamespace(prefixes ...string) Namespace {
	out := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		p = strings.TrimSuffix(strings.TrimSpace(p), "/...")
		p = strings.TrimSuffix(p, "/")
		if p != "" {
			out = append(out, p)
		}
	}
	return Namespace{prefixes: out}
}

// Contains reports whether pkgPath belongs to the application.
func (ns Namespace) Contains(pkgPath string) bool {
	if len(ns.prefixes) == 0 {
		return true
	}
	for _, p := range ns.prefixes {
		if pkgPath == p || strings.HasPrefix(pkgPath, p+"/") {
			return true
		}
	}
	return false
}

// Prefixes returns a copy of the configured prefixes.
func (ns Namespace) Prefixes() []string {
	return append([]string(nil), ns.prefixes...)
}

// Annotation is the decoded subscribe payload.
type Annotation struct {
	ThreadMode subscriber.ThreadMode
	Priority   int
	Sticky     bool
}

// CandidateKind tells what kind of declaration carried the annotation.
type CandidateKind uint8

const (
	KindMethod CandidateKind = iota
	KindFunc                 // package-level function, the Go "static" method
	KindOther                // type, var or const declaration
)

func (k CandidateKind) String() string {
	switch k {
	case KindMethod:
		return "method"
	case KindFunc:
		return "func"
	default:
		return "declaration"
	}
}

// Candidate is one "newly discovered annotated declaration" notification.
type Candidate struct {
	Kind       CandidateKind
	Owner      TypeID // receiver base type; zero for KindFunc and KindOther
	Name       string
	Exported   bool
	Params     []TypeExpr
	Annotation Annotation
	PayloadErr error // annotation arguments could not be decoded
	Loc        source.Location
}

// Pass is one batch of candidates delivered by the host.
type Pass struct {
	Number     int    // 0 lets the session number passes itself
	Label      string // e.g. the package path
	Candidates []Candidate
}

// Declaration is an accepted subscriber method. Immutable once created.
type Declaration struct {
	Declaring  TypeID
	Method     string
	Event      TypeExpr
	ThreadMode subscriber.ThreadMode
	Priority   int
	Sticky     bool
	Loc        source.Location
}

// Signature is the identity used for override suppression.
type Signature struct {
	Method string
	Event  string
}

// Signature returns the (method name, parameter type) key.
func (d Declaration) Signature() Signature {
	return Signature{Method: d.Method, Event: d.Event.Key}
}

// Display renders "Type.Method(Event)".
func (d Declaration) Display() string {
	return d.Declaring.Name + "." + d.Method + "(" + d.Event.String() + ")"
}

// Entry is one method in a subscriber's final list.
type Entry struct {
	Declaration
	// Inherited is true when Declaring is an ancestor of the subscriber type.
	Inherited bool
}

// Subscriber is the merged, deduplicated entry list of one eligible type.
type Subscriber struct {
	Type    TypeID
	Loc     source.Location
	Entries []Entry
}

// Table is the merged index handed to emitters. Subscribers are sorted by type.
type Table struct {
	Subscribers []Subscriber
}

// Len returns the number of subscriber types.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Subscribers)
}

// Lookup returns the subscriber entry for id.
func (t *Table) Lookup(id TypeID) (Subscriber, bool) {
	if t == nil {
		return Subscriber{}, false
	}
	for _, s := range t.Subscribers {
		if s.Type == id {
			return s, true
		}
	}
	return Subscriber{}, false
}

// Entries returns the total number of entries across subscribers.
func (t *Table) Entries() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, s := range t.Subscribers {
		n += len(s.Entries)
	}
	return n
}
