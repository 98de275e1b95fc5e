package framework

import "strings"

// NameFilter selects descriptors by name. Matching is case-sensitive
// substring containment by default, or whole-name equality when Exact is
// set. An empty pattern list selects every descriptor.
type NameFilter struct {
	Patterns []string
	Exact    bool
}

func (f NameFilter) IsDefined() bool {
	return len(f.Patterns) != 0
}

func (f NameFilter) Matches(name string) bool {
	if len(f.Patterns) == 0 {
		return true
	}
	for _, p := range f.Patterns {
		if f.Exact {
			if name == p {
				return true
			}
		} else if strings.Contains(name, p) {
			return true
		}
	}
	return false
}

func (f NameFilter) String() string {
	var ss []string
	for _, p := range f.Patterns {
		ss = append(ss, `"`+p+`"`)
	}
	return strings.Join(ss, " or ")
}
