package framework

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/apex/log"
	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/posixfs/fs-contract-tests/config"
)

const defaultSymlinkTarget = "test"

// TestContext is the isolated filesystem subtree owned by exactly one run
// instance. It is created immediately before the instance executes and torn
// down unconditionally afterwards.
type TestContext struct {
	cfg       *config.Config
	basePath  string
	fileType  FileType
	typed     bool
	entries   []string
	authIndex int
	naptime   time.Duration
}

// NewTestContext wraps an existing, empty directory as a context. The
// directory must be unique to this context; the runner generates it.
func NewTestContext(cfg *config.Config, basePath string) *TestContext {
	return &TestContext{
		cfg:      cfg,
		basePath: basePath,
		naptime:  cfg.Settings.NaptimeDuration(),
	}
}

// BasePath returns the root directory unique to this context.
func (c *TestContext) BasePath() string {
	return c.basePath
}

// Config returns the active configuration. The context never mutates it.
func (c *TestContext) Config() *config.Config {
	return c.cfg
}

// FileType returns the file-type variant this instance runs against.
// Untyped instances report Regular.
func (c *TestContext) FileType() FileType {
	return c.fileType
}

// GenPath generates a unique path under the base directory without creating
// anything, for negative-existence tests.
func (c *TestContext) GenPath() string {
	return filepath.Join(c.basePath, randomName())
}

// Nap sleeps just long enough for filesystem timestamps to register a
// change.
func (c *TestContext) Nap() {
	time.Sleep(c.naptime)
}

// NextDummyEntry hands out a fresh identity from the configured dummy_auth
// entries. Each call within one context returns a different entry.
func (c *TestContext) NextDummyEntry() (config.DummyAuthEntry, error) {
	entries := c.cfg.DummyAuth.Resolved()
	if c.authIndex >= len(entries) {
		return config.DummyAuthEntry{}, newSetupError("dummy auth",
			errors.Errorf("no dummy_auth entry available (requested %d, configured %d)", c.authIndex+1, len(entries)))
	}
	entry := entries[c.authIndex]
	c.authIndex++
	return entry, nil
}

// NewEntry returns a builder for a filesystem entry of the given type under
// the base directory.
func (c *TestContext) NewEntry(ft FileType) *EntryBuilder {
	return &EntryBuilder{ctx: c, fileType: ft, symlinkTarget: defaultSymlinkTarget}
}

// Create creates an entry of the given type with a generated unique name
// and the default mode, records it for teardown, and returns its path.
func (c *TestContext) Create(ft FileType) (string, error) {
	return c.NewEntry(ft).Create()
}

// CreateNameMax creates an entry whose name is exactly NAME_MAX bytes long.
func (c *TestContext) CreateNameMax(ft FileType) (string, error) {
	return c.NewEntry(ft).Name(randomNameLen(unix.NAME_MAX)).Create()
}

// CreatePathMax creates an entry whose absolute path length is as close to
// PATH_MAX as the base directory allows, building intermediate directories
// as needed.
func (c *TestContext) CreatePathMax(ft FileType) (string, error) {
	const component = unix.NAME_MAX / 2
	// - 1 for the terminating null the limit accounts for.
	budget := unix.PathMax - 1 - len(c.basePath)

	dir := c.basePath
	for budget > component+1 {
		dir = filepath.Join(dir, randomNameLen(component-1))
		budget -= component
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", newSetupError("mkdir for path max", err)
	}
	c.record(dir)
	if budget < 2 {
		budget = 2
	}
	return c.NewEntry(ft).Name(filepath.Join(dir, randomNameLen(budget-1))).absolute().Create()
}

func (c *TestContext) record(path string) {
	c.entries = append(c.entries, path)
}

// Teardown removes every recorded entry in reverse creation order, then the
// base directory itself. Removal problems are logged and swallowed: a
// dangling directory must never abort the rest of the suite. Directories
// first get their owner permissions forced back so a test that dropped
// search permission cannot block its own cleanup.
func (c *TestContext) Teardown() {
	restorePermissions(c.basePath)

	for i := len(c.entries) - 1; i >= 0; i-- {
		err := os.Remove(c.entries[i])
		if err != nil && !os.IsNotExist(err) {
			log.WithField("path", c.entries[i]).WithError(err).Warn("failed to remove test entry")
		}
	}
	if err := os.RemoveAll(c.basePath); err != nil {
		log.WithField("path", c.basePath).WithError(err).Warn("failed to remove context directory")
	}
}

func restorePermissions(base string) {
	_ = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			info, err := d.Info()
			if err == nil && info.Mode().Perm()&0o700 != 0o700 {
				_ = os.Chmod(path, info.Mode().Perm()|0o700)
			}
		}
		return nil
	})
}

// EntryBuilder creates one filesystem entry with optional overrides for
// name, mode and symlink target.
type EntryBuilder struct {
	ctx           *TestContext
	fileType      FileType
	name          string
	nameAbsolute  bool
	mode          uint32
	modeSet       bool
	symlinkTarget string
}

// Name overrides the generated name. A relative name is placed under the
// context base directory.
func (b *EntryBuilder) Name(name string) *EntryBuilder {
	b.name = name
	return b
}

func (b *EntryBuilder) absolute() *EntryBuilder {
	b.nameAbsolute = true
	return b
}

// Mode overrides the default creation mode (0755 for directories, 0644
// otherwise). The process umask still applies.
func (b *EntryBuilder) Mode(mode uint32) *EntryBuilder {
	b.mode = mode
	b.modeSet = true
	return b
}

// SymlinkTarget overrides the placeholder target used for symlink entries.
func (b *EntryBuilder) SymlinkTarget(target string) *EntryBuilder {
	b.symlinkTarget = target
	return b
}

// Create creates the entry and records it for teardown. Failure is a
// SetupError: it ends the instance unless the failure itself is what the
// test observes.
func (b *EntryBuilder) Create() (string, error) {
	path := b.finalPath()
	mode := b.mode
	if !b.modeSet {
		if b.fileType == Dir {
			mode = 0o755
		} else {
			mode = 0o644
		}
	}

	var err error
	switch b.fileType {
	case Regular:
		var f *os.File
		f, err = os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, os.FileMode(mode))
		if err == nil {
			err = f.Close()
		}
	case Dir:
		err = unix.Mkdir(path, mode)
	case Fifo:
		err = unix.Mkfifo(path, mode)
	case Block:
		err = unix.Mknod(path, unix.S_IFBLK|mode, 0)
	case Char:
		err = unix.Mknod(path, unix.S_IFCHR|mode, 0)
	case Socket:
		err = bindUnixSocket(path)
		if err == nil && b.modeSet {
			err = unix.Chmod(path, mode)
		}
	case Symlink:
		err = unix.Symlink(b.symlinkTarget, path)
	}
	if err != nil {
		return "", newSetupError("creating "+b.fileType.String()+" entry", err)
	}
	b.ctx.record(path)
	return path, nil
}

func (b *EntryBuilder) finalPath() string {
	if b.name == "" {
		return filepath.Join(b.ctx.basePath, randomName())
	}
	if b.nameAbsolute || filepath.IsAbs(b.name) {
		return b.name
	}
	return filepath.Join(b.ctx.basePath, b.name)
}

func bindUnixSocket(path string) error {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return err
	}
	defer unix.Close(fd)
	return unix.Bind(fd, &unix.SockaddrUnix{Name: path})
}

// randomName returns a 32-character unique name.
func randomName() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// randomNameLen returns a unique name padded or truncated to exactly n
// bytes.
func randomNameLen(n int) string {
	name := randomName()
	for len(name) < n {
		name += strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return name[:n]
}
