package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryPreservesOrderAndLookup(t *testing.T) {
	a := &TestDescriptor{Name: "chmod/ctime", Fn: func(*T, *TestContext) {}}
	b := &TestDescriptor{Name: "rmdir/enoent", Fn: func(*T, *TestContext) {}}
	registry, err := NewRegistry([]*TestDescriptor{a, b})
	require.NoError(t, err)

	assert.Equal(t, 2, registry.Len())
	assert.Equal(t, []*TestDescriptor{a, b}, registry.All())
	assert.Same(t, b, registry.Get("rmdir/enoent"))
	assert.Nil(t, registry.Get("rmdir"))

	matched := registry.Match(NameFilter{Patterns: []string{"ctime"}})
	require.Len(t, matched, 1)
	assert.Same(t, a, matched[0])
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	_, err := NewRegistry([]*TestDescriptor{
		{Name: "x", Fn: func(*T, *TestContext) {}},
		{Name: "x", Fn: func(*T, *TestContext) {}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestRegistryRejectsEmptyName(t *testing.T) {
	_, err := NewRegistry([]*TestDescriptor{{Fn: func(*T, *TestContext) {}}})
	require.Error(t, err)
}

func TestRegistryRejectsMismatchedBodies(t *testing.T) {
	_, err := NewRegistry([]*TestDescriptor{{
		Name:       "x",
		Serialized: true,
		Fn:         func(*T, *TestContext) {},
	}})
	require.Error(t, err)

	_, err = NewRegistry([]*TestDescriptor{{
		Name:         "y",
		SerializedFn: func(*T, *SerializedTestContext) {},
	}})
	require.Error(t, err)
}

func TestRegistryNormalizesDevicePrivilege(t *testing.T) {
	d := &TestDescriptor{
		Name:      "mknod/devices",
		FileTypes: []FileType{Char},
		Fn:        func(*T, *TestContext) {},
	}
	_, err := NewRegistry([]*TestDescriptor{d})
	require.NoError(t, err)
	assert.True(t, d.RequiresPrivilege, "device file types imply privilege")
}
