package frontend

import (
	"go/types"
	"strconv"

	"busindex/internal/index"
)

// typeExpr describes t for the index. Package references in Text become $N
// placeholders indexing into Pkgs.
func typeExpr(t types.Type, r reach) index.TypeExpr {
	var pkgs []string
	slots := make(map[string]int)
	text := types.TypeString(t, func(p *types.Package) string {
		i, ok := slots[p.Path()]
		if !ok {
			i = len(pkgs)
			slots[p.Path()] = i
			pkgs = append(pkgs, p.Path())
		}
		return "$" + strconv.Itoa(i)
	})
	return index.TypeExpr{
		Key:    types.TypeString(t, nil),
		Text:   text,
		Pkgs:   pkgs,
		Name:   types.TypeString(t, (*types.Package).Name),
		Public: r.isPublic(t, make(map[types.Type]bool)),
	}
}

// isPublic reports whether t can be spelled from the output package.
func (r reach) isPublic(t types.Type, seen map[types.Type]bool) bool {
	if seen[t] {
		return true
	}
	seen[t] = true

	switch t := t.(type) {
	case *types.Basic:
		return t.Kind() != types.Invalid
	case *types.Alias:
		return r.isPublic(types.Unalias(t), seen)
	case *types.Pointer:
		return r.isPublic(t.Elem(), seen)
	case *types.Slice:
		return r.isPublic(t.Elem(), seen)
	case *types.Array:
		return r.isPublic(t.Elem(), seen)
	case *types.Chan:
		return r.isPublic(t.Elem(), seen)
	case *types.Map:
		return r.isPublic(t.Key(), seen) && r.isPublic(t.Elem(), seen)
	case *types.Signature:
		return r.tuplePublic(t.Params(), seen) && r.tuplePublic(t.Results(), seen)
	case *types.Struct:
		for i := 0; i < t.NumFields(); i++ {
			f := t.Field(i)
			if !f.Exported() || !r.isPublic(f.Type(), seen) {
				return false
			}
		}
		return true
	case *types.Interface:
		for i := 0; i < t.NumExplicitMethods(); i++ {
			m := t.ExplicitMethod(i)
			if !m.Exported() || !r.isPublic(m.Type(), seen) {
				return false
			}
		}
		for i := 0; i < t.NumEmbeddeds(); i++ {
			if !r.isPublic(t.EmbeddedType(i), seen) {
				return false
			}
		}
		return true
	case *types.Named:
		obj := t.Obj()
		if obj.Pkg() == nil {
			return true // error, comparable
		}
		if !obj.Exported() || isLocal(obj) || !r.importable(obj.Pkg()) {
			return false
		}
		args := t.TypeArgs()
		for i := 0; i < args.Len(); i++ {
			if !r.isPublic(args.At(i), seen) {
				return false
			}
		}
		return true
	}
	// type parameters, tuples and anything newer
	return false
}

func (r reach) tuplePublic(tup *types.Tuple, seen map[types.Type]bool) bool {
	for i := 0; i < tup.Len(); i++ {
		if !r.isPublic(tup.At(i).Type(), seen) {
			return false
		}
	}
	return true
}

// isLocal reports whether obj is declared inside a function.
func isLocal(obj types.Object) bool {
	return obj.Pkg() != nil && obj.Parent() != nil && obj.Parent() != obj.Pkg().Scope()
}
