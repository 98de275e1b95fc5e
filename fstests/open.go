package fstests

import (
	"golang.org/x/sys/unix"

	"github.com/posixfs/fs-contract-tests/framework"
)

func openCases() []*framework.TestDescriptor {
	return []*framework.TestDescriptor{
		{
			Name:          "open/create_parent_times",
			Documentation: "creating a file with O_CREAT updates the parent's mtime and ctime",
			Fn: func(t *framework.T, ctx *framework.TestContext) {
				path := ctx.GenPath()
				assertParentTimesChanged(t, ctx, func() {
					fd, err := unix.Open(path, unix.O_CREAT|unix.O_WRONLY, 0o644)
					if err != nil {
						t.Fatalf("open %s: %s", path, err)
					}
					unix.Close(fd)
				})
			},
		},
		{
			Name:          "open/umask",
			Documentation: "the creation mode of a file is filtered through the process umask",
			Serialized:    true,
			SerializedFn: func(t *framework.T, ctx *framework.SerializedTestContext) {
				path := ctx.GenPath()
				ctx.WithUmask(0o022, func() {
					fd, err := unix.Open(path, unix.O_CREAT|unix.O_WRONLY, 0o666)
					if err != nil {
						t.Fatalf("open %s: %s", path, err)
					}
					unix.Close(fd)
				})
				var st unix.Stat_t
				if err := unix.Stat(path, &st); err != nil {
					t.Fatalf("stat %s: %s", path, err)
				}
				if perm := st.Mode & 0o777; perm != 0o644 {
					t.Errorf("mode after umask 022: expected 0644, observed %04o", perm)
				}
			},
		},
		{
			Name:          "open/enoent",
			Documentation: "opening a nonexistent path without O_CREAT fails with ENOENT",
			Fn: func(t *framework.T, ctx *framework.TestContext) {
				_, err := unix.Open(ctx.GenPath(), unix.O_RDONLY, 0)
				requireErrno(t, "open", err, unix.ENOENT)
			},
		},
	}
}
