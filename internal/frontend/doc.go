// Package frontend turns Go packages into indexing input.
//
// Packages are loaded with golang.org/x/tools/go/packages. Every root package
// is scanned for //eventbus: directives on declarations; annotated
// declarations become index.Candidates, one index.Pass per package, ordered so
// that a package is delivered after the packages it imports. The frontend also
// builds the index.Hierarchy from go/types: a struct type's ancestor is the
// type of its first embedded field.
package frontend
