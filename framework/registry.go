package framework

import (
	"emperror.dev/errors"
)

// Registry is the immutable, stable-ordered collection of every descriptor
// known to the harness. It is populated exactly once, before any execution.
type Registry struct {
	descriptors []*TestDescriptor
	byName      map[string]*TestDescriptor
}

// NewRegistry validates and indexes the given descriptors. Descriptors that
// run against device nodes are implicitly privileged, since creating them
// requires root; the registry normalizes that here so resolution never has
// to special-case file types.
func NewRegistry(descriptors []*TestDescriptor) (*Registry, error) {
	r := &Registry{byName: make(map[string]*TestDescriptor, len(descriptors))}
	for _, d := range descriptors {
		if d.Name == "" {
			return nil, errors.New("descriptor with empty name")
		}
		if _, dup := r.byName[d.Name]; dup {
			return nil, errors.Errorf("duplicate descriptor name %q", d.Name)
		}
		if d.Serialized != (d.SerializedFn != nil) || d.Serialized == (d.Fn != nil) {
			return nil, errors.Errorf("descriptor %q: exactly one of Fn or SerializedFn must be set, matching Serialized", d.Name)
		}
		for _, ft := range d.FileTypes {
			if ft.Privileged() {
				d.RequiresPrivilege = true
				break
			}
		}
		r.byName[d.Name] = d
		r.descriptors = append(r.descriptors, d)
	}
	return r, nil
}

// All returns every descriptor in registration order.
func (r *Registry) All() []*TestDescriptor {
	return r.descriptors
}

// Get returns the descriptor with the exact given name, or nil.
func (r *Registry) Get(name string) *TestDescriptor {
	return r.byName[name]
}

// Match returns the descriptors selected by the filter, preserving
// registration order.
func (r *Registry) Match(filter NameFilter) []*TestDescriptor {
	var out []*TestDescriptor
	for _, d := range r.descriptors {
		if filter.Matches(d.Name) {
			out = append(out, d)
		}
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.descriptors)
}
