package index

import (
	"fmt"

	"busindex/internal/diag"
)

// ResolveVisibility decides which registered types need the reflective
// fallback. For each type the chain is walked from the type outward; at every
// node the node's own visibility is checked first, then the event types of the
// declarations registered directly on that node. The first violation adds the
// starting type to the skip set and ends its walk, so each type gets at most
// one diagnostic.
func ResolveVisibility(reg *Registry, h Hierarchy, ns Namespace, r diag.Reporter) (*SkipSet, error) {
	skip := NewSkipSet()
	for _, id := range reg.Types() {
		err := walkChain(h, ns, id, func(node TypeNode) bool {
			if !node.Public {
				if skip.Add(id) {
					var msg string
					code := diag.FbClassNotPublic
					if node.ID == id {
						msg = fmt.Sprintf("Falling back to reflection because class is not public: %s cannot be named by the generated table", id.Short())
					} else {
						code = diag.FbSuperNotPublic
						msg = fmt.Sprintf("Falling back to reflection because %s has a non-public super class %s", id.Short(), node.ID.Short())
					}
					diag.ReportInfo(r, code, node.Loc, msg).Emit()
				}
				return false
			}
			decls, _ := reg.MethodsOf(node.ID)
			for _, decl := range decls {
				if decl.Event.Public {
					continue
				}
				if skip.Add(id) {
					var msg string
					code := diag.FbEventNotPublic
					if node.ID == id {
						msg = fmt.Sprintf("Falling back to reflection because event type is not public: %s in %s", decl.Event, decl.Display())
					} else {
						code = diag.FbSuperEventNotPublic
						msg = fmt.Sprintf("Falling back to reflection because %s has a super class using a non-public event type: %s",
							id.Short(), decl.Display())
					}
					diag.ReportInfo(r, code, node.Loc, msg).Emit()
				}
				return false
			}
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	return skip, nil
}
