package gen

import "sort"

// Selection is an immutable set of choice-site names, declaring which
// choices in a Trace are treated as observed for projection and weight
// computation.
type Selection struct {
	names map[string]struct{}
}

// Select builds a Selection from the given site names. Duplicates collapse.
func Select(names ...string) Selection {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return Selection{names: set}
}

// Has reports whether name is in the selection.
func (s Selection) Has(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Len returns the number of selected sites.
func (s Selection) Len() int { return len(s.names) }

// Names returns the selected site names in sorted order.
func (s Selection) Names() []string {
	out := make([]string, 0, len(s.names))
	for name := range s.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Union returns a new Selection containing the sites of both selections.
func (s Selection) Union(other Selection) Selection {
	out := make(map[string]struct{}, len(s.names)+len(other.names))
	for name := range s.names {
		out[name] = struct{}{}
	}
	for name := range other.names {
		out[name] = struct{}{}
	}
	return Selection{names: out}
}
