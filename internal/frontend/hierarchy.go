package frontend

import (
	"fmt"
	"go/token"
	"go/types"
	"sort"

	"busindex/internal/diag"
	"busindex/internal/index"
	"busindex/internal/source"
)

func typeID(obj *types.TypeName) index.TypeID {
	if obj == nil || obj.Pkg() == nil {
		return index.TypeID{}
	}
	return index.TypeID{PkgPath: obj.Pkg().Path(), Name: obj.Name()}
}

// namedOf strips pointers and aliases and returns the named type, if any.
func namedOf(t types.Type) *types.Named {
	t = types.Unalias(t)
	if p, ok := t.(*types.Pointer); ok {
		t = types.Unalias(p.Elem())
	}
	n, _ := t.(*types.Named)
	return n
}

// embeddedOf returns the named types of n's embedded fields in declaration order.
func embeddedOf(n *types.Named) []*types.Named {
	st, ok := n.Underlying().(*types.Struct)
	if !ok {
		return nil
	}
	var out []*types.Named
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Embedded() {
			continue
		}
		if e := namedOf(f.Type()); e != nil {
			out = append(out, e)
		}
	}
	return out
}

// addChain records n and every type reachable through embedded fields into
// out. The ancestor starts as the first embed; Program.PreferAncestors moves
// it to the first application embed once the namespace is known.
func addChain(fset *token.FileSet, n *types.Named, out map[index.TypeID]index.TypeNode, r reach) {
	work := []*types.Named{n}
	for len(work) > 0 {
		n := work[len(work)-1].Origin()
		work = work[:len(work)-1]
		id := typeID(n.Obj())
		if id.IsZero() {
			continue
		}
		if _, done := out[id]; done {
			continue
		}
		obj := n.Obj()
		node := index.TypeNode{
			ID:     id,
			Public: obj.Exported() && !isLocal(obj) && n.TypeParams().Len() == 0 && r.importable(obj.Pkg()),
			Loc:    source.FromPosition(fset.Position(obj.Pos())),
		}
		for _, e := range embeddedOf(n) {
			node.Embeds = append(node.Embeds, typeID(e.Obj()))
			work = append(work, e)
		}
		if len(node.Embeds) > 0 {
			node.Ancestor = node.Embeds[0]
		}
		out[id] = node
	}
}

// PreferAncestors points every type's ancestor at its first embed inside ns,
// so that a leading platform embed such as sync.Mutex does not hide the
// application type embedded after it. Types embedding several application
// types get an info diagnostic naming the one used.
func (p *Program) PreferAncestors(ns index.Namespace, rep diag.Reporter) {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	ids := make([]index.TypeID, 0)
	for id, n := range p.Hierarchy {
		if len(n.Embeds) > 1 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

	for _, id := range ids {
		n := p.Hierarchy[id]
		var app []index.TypeID
		for _, e := range n.Embeds {
			if ns.Contains(e.PkgPath) {
				app = append(app, e)
			}
		}
		if len(app) == 0 {
			continue
		}
		n.Ancestor = app[0]
		p.Hierarchy[id] = n
		if len(app) > 1 && ns.Contains(id.PkgPath) {
			diag.ReportInfo(rep, diag.SubEmbedsMany, n.Loc,
				fmt.Sprintf("%s embeds %d application types; inherited subscribers come from %s only",
					id.Short(), len(app), app[0].Short())).Emit()
		}
	}
}
