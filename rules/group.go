package rules

// Group is an AND over All, optionally gated by AnyOf alternatives: when
// AnyOf is non-empty at least one member group must fully hold as well.
// The zero Group is vacuously satisfied.
type Group struct {
	All   []Predicate
	AnyOf []Group
}

// Empty reports whether the group imposes no constraint at all.
func (g Group) Empty() bool {
	return len(g.All) == 0 && len(g.AnyOf) == 0
}

// Satisfies evaluates g against state. Member groups of AnyOf are evaluated
// with the same semantics, to any depth.
func Satisfies(state StateView, g Group) bool {
	for _, p := range g.All {
		if p == nil {
			continue
		}
		if !p.Holds(state) {
			return false
		}
	}
	if len(g.AnyOf) == 0 {
		return true
	}
	for _, alt := range g.AnyOf {
		if Satisfies(state, alt) {
			return true
		}
	}
	return false
}

// conditions collects every expr condition in the tree so they can be
// compiled up front.
func (g Group) conditions() []*Condition {
	var out []*Condition
	for _, p := range g.All {
		if c, ok := p.(*Condition); ok {
			out = append(out, c)
		}
	}
	for _, alt := range g.AnyOf {
		out = append(out, alt.conditions()...)
	}
	return out
}
