// Package fstests contains the test-case library: POSIX filesystem
// semantics checks expressed as descriptors for the framework engine. Each
// file contributes the cases for one syscall area through a plain
// constructor function; AllDescriptors concatenates them. Registration is
// explicit, there is no runtime scanning.
package fstests

import (
	"github.com/posixfs/fs-contract-tests/framework"
)

// AllDescriptors returns every test case known to the suite, in stable
// registration order.
func AllDescriptors() []*framework.TestDescriptor {
	var out []*framework.TestDescriptor
	for _, group := range [][]*framework.TestDescriptor{
		chmodCases(),
		chownCases(),
		epermCases(),
		fallocateCases(),
		linkCases(),
		mkdirCases(),
		mkfifoCases(),
		openCases(),
		renameCases(),
		rmdirCases(),
		symlinkCases(),
		unlinkCases(),
		utimensatCases(),
	} {
		out = append(out, group...)
	}
	return out
}

// NewRegistry builds the immutable registry of the full suite.
func NewRegistry() (*framework.Registry, error) {
	return framework.NewRegistry(AllDescriptors())
}

// Docs maps descriptor names to their documentation, for verbose console
// output.
func Docs() map[string]string {
	out := make(map[string]string)
	for _, d := range AllDescriptors() {
		out[d.Name] = d.Documentation
	}
	return out
}
