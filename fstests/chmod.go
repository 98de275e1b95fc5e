package fstests

import (
	"golang.org/x/sys/unix"

	"github.com/posixfs/fs-contract-tests/framework"
)

func chmodCases() []*framework.TestDescriptor {
	return []*framework.TestDescriptor{
		{
			Name:          "chmod/ctime",
			Documentation: "a successful chmod updates the ctime of the target",
			FileTypes: []framework.FileType{
				framework.Regular, framework.Dir, framework.Fifo,
				framework.Block, framework.Char, framework.Socket,
			},
			Fn: func(t *framework.T, ctx *framework.TestContext) {
				path, createErr := ctx.Create(ctx.FileType())
				path = requireCreated(t, path, createErr)
				assertCtimeChanged(t, ctx, path, func() {
					if err := unix.Chmod(path, 0o444); err != nil {
						t.Fatalf("chmod %s: %s", path, err)
					}
				})
			},
		},
		{
			Name:              "chmod/failed_chmod_unchanged_ctime",
			Documentation:     "a chmod rejected with EPERM leaves the ctime untouched",
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
				framework.AssertTimesUnchanged().
					Path(path, framework.Ctime).
					Execute(t, ctx.TestContext, true, func() {
						ctx.AsUser(entry, nil, func() {
							requireErrno(t, "chmod", unix.Chmod(path, 0o400), unix.EPERM)
						})
					})
			},
		},
	}
}
