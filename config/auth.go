package config

import (
	"os/user"
	"strconv"

	"emperror.dev/errors"
)

// dummyAuthEntryCount is the number of [username, groupname] pairs the
// configuration must supply. Tests switch between distinct identities to
// observe cross-user permission behavior, and three is the most any single
// case consumes.
const dummyAuthEntryCount = 3

// DummyAuthEntry is one resolved identity available for privilege-switching
// tests.
type DummyAuthEntry struct {
	Username string
	Group    string
	UID      uint32
	GID      uint32
}

// DummyAuthConfig carries the identities used by serialized tests. The
// raw entries come from the configuration file; Resolved is populated at
// load time from the system user database.
type DummyAuthConfig struct {
	Entries [][]string `toml:"entries"`

	resolved []DummyAuthEntry
}

// Resolved returns the resolved entries, in configuration order. Empty
// when no dummy_auth section was configured.
func (c *DummyAuthConfig) Resolved() []DummyAuthEntry {
	return c.resolved
}

// HasEntries reports whether identities are available for serialized
// tests.
func (c *DummyAuthConfig) HasEntries() bool {
	return len(c.resolved) > 0
}

func (c *DummyAuthConfig) resolve() error {
	if len(c.Entries) == 0 {
		return nil
	}
	if len(c.Entries) != dummyAuthEntryCount {
		return errors.Errorf("dummy_auth.entries must contain exactly %d [username, groupname] pairs, got %d",
			dummyAuthEntryCount, len(c.Entries))
	}
	for _, pair := range c.Entries {
		if len(pair) != 2 {
			return errors.Errorf("dummy_auth entry %v must be a [username, groupname] pair", pair)
		}
		entry, err := resolveEntry(pair[0], pair[1])
		if err != nil {
			return err
		}
		c.resolved = append(c.resolved, entry)
	}
	return nil
}

func resolveEntry(username, groupname string) (DummyAuthEntry, error) {
	u, err := user.Lookup(username)
	if err != nil {
		return DummyAuthEntry{}, errors.Wrapf(err, "resolving dummy user %q", username)
	}
	g, err := user.LookupGroup(groupname)
	if err != nil {
		return DummyAuthEntry{}, errors.Wrapf(err, "resolving dummy group %q", groupname)
	}
	uid, err := strconv.ParseUint(u.Uid, 10, 32)
	if err != nil {
		return DummyAuthEntry{}, errors.Wrapf(err, "uid of %q", username)
	}
	gid, err := strconv.ParseUint(g.Gid, 10, 32)
	if err != nil {
		return DummyAuthEntry{}, errors.Wrapf(err, "gid of %q", groupname)
	}
	return DummyAuthEntry{
		Username: username,
		Group:    groupname,
		UID:      uint32(uid),
		GID:      uint32(gid),
	}, nil
}
