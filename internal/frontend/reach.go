package frontend

import (
	"go/types"
	"strings"
)

// reach decides which packages the generated table may import. Types from
// packages outside reach cannot be named by the artifact and count as
// non-public.
type reach struct {
	from string // import path of the output package; empty skips the internal rule
}

func (r reach) importable(p *types.Package) bool {
	if p == nil {
		return true
	}
	if p.Name() == "main" {
		return false
	}
	return r.from == "" || internalAllowed(r.from, p.Path())
}

// internalAllowed applies the go command's internal rule: a path with an
// "internal" element may only be imported from the tree rooted at the parent
// of that element.
func internalAllowed(from, pkgPath string) bool {
	s := "/" + pkgPath + "/"
	i := strings.LastIndex(s, "/internal/")
	if i < 0 {
		return true
	}
	parent := strings.Trim(s[:i], "/")
	if parent == "" {
		// standard library internals
		return false
	}
	return from == parent || strings.HasPrefix(from, parent+"/")
}
