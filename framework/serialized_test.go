package framework

import (
	"os"
	"os/user"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/posixfs/fs-contract-tests/config"
)

func TestWithUmaskRestoresPreviousMask(t *testing.T) {
	ctx := NewSerializedTestContext(testConfig(), t.TempDir())
	defer ctx.Teardown()

	previous := unix.Umask(0o022)
	defer unix.Umask(previous)

	ran := false
	ctx.WithUmask(0o077, func() {
		ran = true
		assert.Equal(t, 0o077, unix.Umask(0o077))
	})
	assert.True(t, ran)
	assert.Equal(t, 0o022, unix.Umask(0o022))
}

func TestWithUmaskRestoresOnPanic(t *testing.T) {
	ctx := NewSerializedTestContext(testConfig(), t.TempDir())
	defer ctx.Teardown()

	previous := unix.Umask(0o022)
	defer unix.Umask(previous)

	require.Panics(t, func() {
		ctx.WithUmask(0o077, func() {
			panic("boom")
		})
	})
	assert.Equal(t, 0o022, unix.Umask(0o022))
}

func TestAbandonedContextRefusesSwitching(t *testing.T) {
	ctx := NewSerializedTestContext(testConfig(), t.TempDir())
	defer ctx.Teardown()

	ctx.abandon()
	require.Panics(t, func() {
		ctx.WithUmask(0o077, func() {})
	})
	require.Panics(t, func() {
		ctx.AsUser(config.DummyAuthEntry{}, nil, func() {})
	})
	assert.False(t, identityHeld.Load(), "an abandoned context must not take the identity token")
}

// rootDummyAuthConfig builds a configuration with a usable dummy identity,
// or skips: switching uid requires root, and an identity to switch to.
func rootDummyAuthConfig(t *testing.T) *config.Config {
	t.Helper()
	if os.Geteuid() != 0 {
		t.Skip("identity switching requires root")
	}
	u, err := user.Lookup("nobody")
	if err != nil {
		t.Skip("no 'nobody' user to switch to")
	}
	g, err := user.LookupGroupId(u.Gid)
	if err != nil {
		t.Skip("cannot resolve nobody's group")
	}

	cfg := testConfig()
	parsed, err := config.Parse([]byte(
		"[dummy_auth]\nentries = [[\"" + u.Username + "\", \"" + g.Name + "\"], [\"" +
			u.Username + "\", \"" + g.Name + "\"], [\"" + u.Username + "\", \"" + g.Name + "\"]]\n"))
	require.NoError(t, err)
	cfg.DummyAuth = parsed.DummyAuth
	return cfg
}

func serializedRootContext(t *testing.T) (*SerializedTestContext, config.DummyAuthEntry) {
	t.Helper()
	ctx := NewSerializedTestContext(rootDummyAuthConfig(t), t.TempDir())
	t.Cleanup(ctx.Teardown)
	entry, err := ctx.NextDummyEntry()
	require.NoError(t, err)
	return ctx, entry
}

func TestAsUserSwitchesAndRestoresIdentity(t *testing.T) {
	ctx, entry := serializedRootContext(t)

	origUID := unix.Geteuid()
	origGID := unix.Getegid()

	ctx.AsUser(entry, nil, func() {
		assert.EqualValues(t, entry.UID, unix.Geteuid())
		assert.EqualValues(t, entry.GID, unix.Getegid())
	})

	assert.Equal(t, origUID, unix.Geteuid())
	assert.Equal(t, origGID, unix.Getegid())
	assert.NoError(t, ctx.RestorationError())
}

func TestAsUserRestoresIdentityOnPanic(t *testing.T) {
	ctx, entry := serializedRootContext(t)

	origUID := unix.Geteuid()
	require.Panics(t, func() {
		ctx.AsUser(entry, nil, func() {
			panic("body failed")
		})
	})
	assert.Equal(t, origUID, unix.Geteuid())
	assert.NoError(t, ctx.RestorationError())
}

func TestAsUserRejectsNesting(t *testing.T) {
	ctx, entry := serializedRootContext(t)

	require.Panics(t, func() {
		ctx.AsUser(entry, nil, func() {
			ctx.AsUser(entry, nil, func() {})
		})
	})
	assert.NoError(t, ctx.RestorationError())
}
