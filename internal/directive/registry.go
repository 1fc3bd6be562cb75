package directive

import (
	"sort"
	"sync"
)

// Registry collects every directive of the namespace found while scanning
// sources. Frontend workers add to it concurrently.
type Registry struct {
	mu         sync.Mutex
	directives []Directive
	byName     map[string][]int // name -> indices into directives
}

// NewRegistry creates an empty directive registry.
func NewRegistry() *Registry {
	return &Registry{
		directives: make([]Directive, 0),
		byName:     make(map[string][]int),
	}
}

// Add registers a directive.
func (r *Registry) Add(d Directive) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := len(r.directives)
	r.directives = append(r.directives, d)
	r.byName[d.Name] = append(r.byName[d.Name], idx)
}

// All returns every directive sorted by location.
func (r *Registry) All() []Directive {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]Directive(nil), r.directives...)
	sortByLocation(out)
	return out
}

// FilterByName returns directives matching any of the given names, sorted by
// location. If names is empty, returns all directives.
func (r *Registry) FilterByName(names ...string) []Directive {
	if len(names) == 0 {
		return r.All()
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []Directive
	for _, name := range names {
		for _, idx := range r.byName[name] {
			result = append(result, r.directives[idx])
		}
	}
	sortByLocation(result)
	return result
}

// Unknown returns directives whose name is not in known, sorted by location.
func (r *Registry) Unknown(known ...string) []Directive {
	allowed := make(map[string]bool, len(known))
	for _, name := range known {
		allowed[name] = true
	}
	var result []Directive
	for _, d := range r.All() {
		if !allowed[d.Name] {
			result = append(result, d)
		}
	}
	return result
}

// Len returns the total number of directives.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.directives)
}

func sortByLocation(ds []Directive) {
	sort.SliceStable(ds, func(i, j int) bool {
		return ds[i].Loc.Less(ds[j].Loc)
	})
}
