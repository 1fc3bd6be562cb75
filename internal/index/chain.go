package index

import "fmt"

// walkChain visits start and then each ancestor, nearest first. The walk ends
// when visit returns false, when a node has no ancestor, or when the ancestor
// lies outside ns. A node missing from h or a repeated node is a structural fault.
func walkChain(h Hierarchy, ns Namespace, start TypeID, visit func(TypeNode) bool) error {
	seen := make(map[TypeID]struct{}, 4)
	cur := start
	for {
		if _, dup := seen[cur]; dup {
			return fmt.Errorf("%w: %s reached twice from %s", ErrAncestorCycle, cur, start)
		}
		seen[cur] = struct{}{}

		node, ok := h.Node(cur)
		if !ok {
			return fmt.Errorf("%w: %s (walking from %s)", ErrUnknownType, cur, start)
		}
		if !visit(node) {
			return nil
		}
		if node.Ancestor.IsZero() || !ns.Contains(node.Ancestor.PkgPath) {
			return nil
		}
		cur = node.Ancestor
	}
}

// Chain returns start and its in-namespace ancestors, nearest first.
func Chain(h Hierarchy, ns Namespace, start TypeID) ([]TypeID, error) {
	var out []TypeID
	err := walkChain(h, ns, start, func(n TypeNode) bool {
		out = append(out, n.ID)
		return true
	})
	return out, err
}
