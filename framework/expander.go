package framework

// RunInstance is one concrete execution unit: a descriptor narrowed to a
// single file-type variant, or the descriptor itself when it is untyped.
// Instances of the same descriptor share no mutable state.
type RunInstance struct {
	Descriptor *TestDescriptor
	ID         TestID

	// FileType is the variant this instance runs against; only meaningful
	// when Typed is set.
	FileType FileType
	Typed    bool
}

// Expand turns an approved descriptor into its run instances, one per
// declared file type in declaration order, or exactly one untyped instance
// when the descriptor declares no types. The ordering matters for
// reproducible output, not for correctness.
func Expand(d *TestDescriptor) []RunInstance {
	if len(d.FileTypes) == 0 {
		return []RunInstance{{
			Descriptor: d,
			ID:         TestID{Path: []string{d.Name}},
		}}
	}
	instances := make([]RunInstance, 0, len(d.FileTypes))
	for _, ft := range d.FileTypes {
		instances = append(instances, RunInstance{
			Descriptor: d,
			ID:         TestID{Path: []string{d.Name, ft.String()}},
			FileType:   ft,
			Typed:      true,
		})
	}
	return instances
}
