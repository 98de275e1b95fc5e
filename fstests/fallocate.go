package fstests

import (
	"golang.org/x/sys/unix"

	"github.com/posixfs/fs-contract-tests/config"
	"github.com/posixfs/fs-contract-tests/framework"
)

func fallocateCases() []*framework.TestDescriptor {
	return []*framework.TestDescriptor{
		{
			Name:             "posix_fallocate/ctime_mtime",
			Documentation:    "allocating space in a file updates its ctime and mtime",
			RequiredFeatures: []config.Feature{config.FeaturePosixFallocate},
			Fn: func(t *framework.T, ctx *framework.TestContext) {
				path, createErr := ctx.Create(framework.Regular)
				path = requireCreated(t, path, createErr)
				fd, err := unix.Open(path, unix.O_WRONLY, 0)
				if err != nil {
					t.Fatalf("open %s: %s", path, err)
				}
				defer unix.Close(fd)
				framework.AssertTimesChanged().
					Path(path, framework.Ctime|framework.Mtime).
					Execute(t, ctx, true, func() {
						if err := unix.Fallocate(fd, 0, 0, 4096); err != nil {
							t.Fatalf("fallocate %s: %s", path, err)
						}
					})
				var st unix.Stat_t
				if err := unix.Stat(path, &st); err != nil {
					t.Fatalf("stat %s: %s", path, err)
				}
				if st.Size != 4096 {
					t.Errorf("%s: size: expected 4096, observed %d", path, st.Size)
				}
			},
		},
	}
}
