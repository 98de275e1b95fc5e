package fstests

import (
	"golang.org/x/sys/unix"

	"github.com/posixfs/fs-contract-tests/framework"
)

// fsImmutableFL is FS_IMMUTABLE_FL from <linux/fs.h>; x/sys/unix does not
// define the inode flag constants on linux.
const fsImmutableFL = 0x00000010

func epermCases() []*framework.TestDescriptor {
	return []*framework.TestDescriptor{
		{
			Name:              "eperm/immutable_flag",
			Documentation:     "operations on an immutable file fail with EPERM and change no times",
			RequiresPrivilege: true,
			RequiredFlags:     []string{"UF_IMMUTABLE"},
			Fn: func(t *framework.T, ctx *framework.TestContext) {
				path, createErr := ctx.Create(framework.Regular)
				path = requireCreated(t, path, createErr)
				fd, err := unix.Open(path, unix.O_RDONLY, 0)
				if err != nil {
					t.Fatalf("open %s: %s", path, err)
				}
				defer unix.Close(fd)

				flags, err := unix.IoctlGetInt(fd, unix.FS_IOC_GETFLAGS)
				if err != nil {
					t.SkipWithReason("filesystem does not support inode flags")
				}
				if err := unix.IoctlSetPointerInt(fd, unix.FS_IOC_SETFLAGS, flags|fsImmutableFL); err != nil {
					t.SkipWithReason("filesystem does not support the immutable flag")
				}
				// The flag must come off before teardown or the context
				// directory cannot be removed.
				defer func() {
					_ = unix.IoctlSetPointerInt(fd, unix.FS_IOC_SETFLAGS, flags)
				}()

				framework.AssertTimesUnchanged().
					Path(path, framework.Ctime).
					Execute(t, ctx, true, func() {
						requireErrno(t, "unlink", unix.Unlink(path), unix.EPERM)
						requireErrno(t, "chmod", unix.Chmod(path, 0o777), unix.EPERM)
					})
			},
		},
	}
}
