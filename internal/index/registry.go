package index

// Registry accumulates accepted declarations per declaring type.
// Insertion order is kept both for types and for each type's methods.
type Registry struct {
	byType map[TypeID][]Declaration
	order  []TypeID
	count  int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byType: make(map[TypeID][]Declaration)}
}

// Register appends decl to its declaring type's list.
func (r *Registry) Register(decl Declaration) {
	list, ok := r.byType[decl.Declaring]
	if !ok {
		r.order = append(r.order, decl.Declaring)
	}
	r.byType[decl.Declaring] = append(list, decl)
	r.count++
}

// MethodsOf returns the declarations of id. Unknown types yield (nil, false)
// and leave the registry untouched.
func (r *Registry) MethodsOf(id TypeID) ([]Declaration, bool) {
	list, ok := r.byType[id]
	return list, ok
}

// Types returns declaring types in first-registration order.
func (r *Registry) Types() []TypeID {
	return append([]TypeID(nil), r.order...)
}

// Len returns the number of declaring types.
func (r *Registry) Len() int {
	return len(r.order)
}

// Count returns the number of declarations.
func (r *Registry) Count() int {
	return r.count
}

// SkipSet holds types that must use the reflective fallback.
type SkipSet struct {
	set   map[TypeID]struct{}
	order []TypeID
}

// NewSkipSet creates an empty set.
func NewSkipSet() *SkipSet {
	return &SkipSet{set: make(map[TypeID]struct{})}
}

// Add inserts id and reports whether it was newly added.
func (s *SkipSet) Add(id TypeID) bool {
	if _, ok := s.set[id]; ok {
		return false
	}
	s.set[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// Contains reports membership.
func (s *SkipSet) Contains(id TypeID) bool {
	if s == nil {
		return false
	}
	_, ok := s.set[id]
	return ok
}

// Len returns the number of skipped types.
func (s *SkipSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Types returns skipped types in insertion order.
func (s *SkipSet) Types() []TypeID {
	if s == nil {
		return nil
	}
	return append([]TypeID(nil), s.order...)
}
