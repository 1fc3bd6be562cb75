package index

import (
	"fmt"
	"sort"

	"busindex/internal/diag"
)

// Merge builds the final entry list of every registered type not in skip:
// own declarations in discovery order, then each ancestor's declarations
// nearest first. A signature already present suppresses later ones, so an
// override in a more derived type wins. Types left without entries are absent.
func Merge(reg *Registry, skip *SkipSet, h Hierarchy, ns Namespace, r diag.Reporter) (*Table, error) {
	table := &Table{}
	for _, id := range reg.Types() {
		if skip.Contains(id) {
			continue
		}
		sub := Subscriber{Type: id}
		seen := make(map[Signature]struct{})
		err := walkChain(h, ns, id, func(node TypeNode) bool {
			if node.ID == id {
				sub.Loc = node.Loc
			}
			decls, _ := reg.MethodsOf(node.ID)
			for _, decl := range decls {
				sig := decl.Signature()
				if _, dup := seen[sig]; dup {
					continue
				}
				seen[sig] = struct{}{}
				sub.Entries = append(sub.Entries, Entry{Declaration: decl, Inherited: node.ID != id})
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		if len(sub.Entries) == 0 {
			continue
		}
		table.Subscribers = append(table.Subscribers, sub)
	}

	sort.Slice(table.Subscribers, func(i, j int) bool {
		return table.Subscribers[i].Type.Less(table.Subscribers[j].Type)
	})
	for _, sub := range table.Subscribers {
		for _, e := range sub.Entries {
			diag.ReportInfo(r, diag.SubIndexed, e.Loc,
				fmt.Sprintf("Indexed subscriber %s for %s", e.Display(), sub.Type.Short())).Emit()
		}
	}
	return table, nil
}
