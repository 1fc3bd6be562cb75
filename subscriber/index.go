// Package subscriber holds the lookup types referenced by generated subscriber
// indexes. A dispatcher asks an Index for the methods of a subscriber type and
// falls back to reflective discovery when the type is not indexed.
package subscriber

import "reflect"

// Method describes one subscriber method as recorded at generation time.
type Method struct {
	// Declaring is the type that declares the method. For inherited entries it is
	// the embedded ancestor, not the subscriber type the entry is listed under.
	Declaring  reflect.Type
	Name       string
	Event      reflect.Type
	ThreadMode ThreadMode
	Priority   int
	Sticky     bool
}

// Index resolves subscriber methods for a subscriber type.
type Index interface {
	// Lookup returns the methods for t. ok is false when t is not indexed and
	// the caller must discover methods reflectively.
	Lookup(t reflect.Type) (methods []Method, ok bool)
}

// Table is the concrete index emitted by busindex.
type Table map[reflect.Type][]Method

// Lookup implements Index.
func (t Table) Lookup(typ reflect.Type) ([]Method, bool) {
	if t == nil || typ == nil {
		return nil, false
	}
	methods, ok := t[typ]
	return methods, ok
}

// Chain consults several indexes in order; the first hit wins.
type Chain []Index

// Lookup implements Index.
func (c Chain) Lookup(typ reflect.Type) ([]Method, bool) {
	for _, idx := range c {
		if idx == nil {
			continue
		}
		if methods, ok := idx.Lookup(typ); ok {
			return methods, true
		}
	}
	return nil, false
}
