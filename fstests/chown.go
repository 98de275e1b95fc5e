package fstests

import (
	"golang.org/x/sys/unix"

	"github.com/posixfs/fs-contract-tests/framework"
)

func chownCases() []*framework.TestDescriptor {
	return []*framework.TestDescriptor{
		{
			Name:              "chown/ctime",
			Documentation:     "a successful chown updates the ctime of the target",
			RequiresPrivilege: true,
			Guards:            []framework.Guard{dummyAuthConfigured},
			FileTypes: []framework.FileType{
				framework.Regular, framework.Dir, framework.Fifo,
			},
			Fn: func(t *framework.T, ctx *framework.TestContext) {
				path, createErr := ctx.Create(ctx.FileType())
				path = requireCreated(t, path, createErr)
				entry, err := ctx.NextDummyEntry()
				if err != nil {
					t.Fatalf("%s", err)
				}
				assertCtimeChanged(t, ctx, path, func() {
					if err := unix.Chown(path, int(entry.UID), int(entry.GID)); err != nil {
						t.Fatalf("chown %s: %s", path, err)
					}
				})
			},
		},
		{
			Name:              "chown/eperm",
			Documentation:     "chown by a non-owner fails with EPERM and leaves ctime untouched",
			RequiresPrivilege: true,
			Serialized:        true,
			Guards:            []framework.Guard{dummyAuthConfigured},
			SerializedFn: func(t *framework.T, ctx *framework.SerializedTestContext) {
				path, createErr := ctx.Create(framework.Regular)
				path = requireCreated(t, path, createErr)
				entry, err := ctx.NextDummyEntry()
				if err != nil {
					t.Fatalf("%s", err)
				}
				other, err := ctx.NextDummyEntry()
				if err != nil {
					t.Fatalf("%s", err)
				}
				framework.AssertTimesUnchanged().
					Path(path, framework.Ctime).
					Execute(t, ctx.TestContext, true, func() {
						ctx.AsUser(entry, nil, func() {
							err := unix.Chown(path, int(other.UID), int(other.GID))
							requireErrno(t, "chown", err, unix.EPERM)
						})
					})
			},
		},
	}
}
