package bake

// Ancestors is the set of notes on the active recursion path. Values are
// never mutated after construction; With returns a fresh copy, so sibling
// expansions built from the same parent set stay independent.
type Ancestors struct {
	ids map[string]struct{}
}

// Has reports whether id is on the path.
func (a Ancestors) Has(id string) bool {
	_, ok := a.ids[id]
	return ok
}

// With returns a new set holding a's members plus id.
func (a Ancestors) With(id string) Ancestors {
	ids := make(map[string]struct{}, len(a.ids)+1)
	for k := range a.ids {
		ids[k] = struct{}{}
	}
	ids[id] = struct{}{}
	return Ancestors{ids: ids}
}

// Len returns the depth of the path.
func (a Ancestors) Len() int { return len(a.ids) }
