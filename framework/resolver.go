package framework

import (
	"fmt"
	"os"
	"strings"

	"github.com/posixfs/fs-contract-tests/config"
)

// Resolution is the decision for one descriptor: run it, or skip it with a
// reason.
type Resolution struct {
	Approved bool
	Reason   string
}

func approved() Resolution {
	return Resolution{Approved: true}
}

func skipped(reason string) Resolution {
	return Resolution{Reason: reason}
}

// Resolve decides whether a descriptor runs under the active configuration.
// Checks apply in a fixed order: privilege, required features, required
// file flags, then guards in declaration order. The whole decision is
// side-effect free and idempotent: identical inputs always yield the
// identical resolution.
func Resolve(d *TestDescriptor, cfg *config.Config, candidatePath string) Resolution {
	if d.RequiresPrivilege && os.Geteuid() != 0 {
		return skipped("requires root privileges")
	}

	var missing []string
	for _, f := range d.RequiredFeatures {
		if !cfg.Features.IsEnabled(f) {
			missing = append(missing, string(f))
		}
	}
	if len(missing) > 0 {
		return skipped(fmt.Sprintf("requires features: %s", strings.Join(missing, ", ")))
	}

	var unsupported []string
	for _, flag := range d.RequiredFlags {
		if !cfg.Features.HasFileFlag(flag) {
			unsupported = append(unsupported, flag)
		}
	}
	if len(unsupported) > 0 {
		return skipped(fmt.Sprintf("file flags %s aren't supported", strings.Join(unsupported, ", ")))
	}

	for _, guard := range d.Guards {
		if err := guard(cfg, candidatePath); err != nil {
			return skipped(err.Error())
		}
	}

	return approved()
}
